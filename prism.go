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
	"github.com/prismlab/prism/ir"
	"github.com/prismlab/prism/opt"
)

// Simplify applies the if-canonicalization pass to fn once and reports
// whether anything changed. Callers that want a fixpoint should use
// Optimize instead.
func Simplify(fn *ir.Func) bool {
	return opt.IfCanon{}.Apply(fn)
}

// Optimize runs the full pass pipeline on fn until it stops changing.
func Optimize(fn *ir.Func, options ...Option) error {
	var cfg opt.Config
	for _, o := range options {
		o(&cfg)
	}
	_, err := opt.CreateExecutor(cfg).Run(fn)
	return err
}

// OptimizeAll runs the full pass pipeline on every function concurrently,
// one worker per function. Functions never share a worker, so they need no
// locking of their own.
func OptimizeAll(fns []*ir.Func, options ...Option) error {
	var cfg opt.Config
	for _, o := range options {
		o(&cfg)
	}
	return opt.CreateExecutor(cfg).RunAll(fns)
}
