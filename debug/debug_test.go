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
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/prismlab/prism/ir"
	"github.com/prismlab/prism/opt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetStats(t *testing.T) {
	b := ir.CreateFunction("stats")
	ov := b.Var("out", ir.TypeInt32())

	/* a branch the pass rewrites exactly once */
	c := b.Load(b.Var("c", ir.TypeBool()))
	v := b.Const(ir.TypeInt32(), 1)
	b.PushIf(c)
	b.PushElse()
	b.Store(ov, v)
	b.PopIf()
	b.Return()
	fn := b.Build()

	before := GetStats()
	_, err := opt.CreateExecutor(opt.Config{}).Run(fn)
	require.NoError(t, err)

	after := GetStats()
	assert.Equal(t, before.Optimizer.Runs+1, after.Optimizer.Runs)
	assert.Equal(t, before.Optimizer.Rounds+2, after.Optimizer.Rounds)
	assert.Equal(t, before.Optimizer.Rewrites+1, after.Optimizer.Rewrites)
	spew.Dump(after)
}
