/*
 * Copyright 2025 Prism Project Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package debug

import (
	"github.com/prismlab/prism/opt"
)

// A Stats records statistics about the optimizer.
type Stats struct {
	Optimizer OptStats
}

// An OptStats records counters of the pass executor.
type OptStats struct {
	Runs     int
	Rounds   int
	Rewrites int
}

// GetStats returns statistics of the optimizer.
func GetStats() Stats {
	return Stats{
		Optimizer: OptStats{
			Runs:     int(opt.RunCount),
			Rounds:   int(opt.RoundCount),
			Rewrites: int(opt.RewriteCount),
		},
	}
}
