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

package prism

import (
	"fmt"

	"github.com/prismlab/prism/internal/opts"
	"github.com/prismlab/prism/opt"
	"go.uber.org/zap"
)

// Option is the property setter function for opt.Config.
type Option func(*opt.Config)

// WithMaxRounds sets the round budget of the pass pipeline.
//
// Every round applies each registered pass once, and the pipeline stops at
// the first round that makes no progress. A function that is still changing
// when the budget runs out fails with a ConvergenceError.
//
// The default value of this option is "64".
func WithMaxRounds(n int) Option {
	if n < 1 {
		panic(fmt.Sprintf("prism: invalid round budget: %d", n))
	} else {
		return func(o *opt.Config) { o.MaxRounds = n }
	}
}

// WithValidation makes the pipeline re-validate the function after every
// pass that reports progress.
//
// Validation catches broken passes right where they broke the function, at
// the cost of a full structural and SSA check per mutation. It is meant for
// tests and debugging, not production pipelines.
//
// This option is off by default, it can also be switched on for the whole
// process with the `PRISM_VALIDATE_PASSES` environment variable.
func WithValidation(v bool) Option {
	return func(o *opt.Config) { o.Validate = v }
}

// WithLogger routes per-pass progress logging to the given logger at debug
// level. The default logger discards everything.
func WithLogger(l *zap.Logger) Option {
	if l == nil {
		panic("prism: nil logger")
	} else {
		return func(o *opt.Config) { o.Logger = l }
	}
}

// SetMaxRounds sets the default round budget for all executors from now on.
//
// This value can also be configured with the `PRISM_MAX_PASS_ROUNDS`
// environment variable.
//
// The default value of this option is "64".
//
// Returns the old opts.MaxRounds value.
func SetMaxRounds(n int) int {
	if n < 1 {
		panic(fmt.Sprintf("prism: invalid round budget: %d", n))
	}
	n, opts.MaxRounds = opts.MaxRounds, n
	return n
}
