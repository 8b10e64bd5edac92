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

package opt

import (
    `fmt`
    `sync`
    `sync/atomic`

    `dario.cat/mergo`
    `github.com/bytedance/gopkg/util/gopool`
    `github.com/pkg/errors`
    `github.com/prismlab/prism/internal/opts`
    `github.com/prismlab/prism/ir`
    `go.uber.org/zap`
)

// Pass transforms a function in place and reports whether it changed
// anything. Passes keep no state of their own across applications.
type Pass interface {
    Apply(fn *ir.Func) bool
}

type PassDescriptor struct {
    Pass Pass
    Name string
}

// Passes is the pipeline, applied in order within every round.
var Passes = [...]PassDescriptor {
    { Name: "If Canonicalization", Pass: new(IfCanon) },
}

/* optimizer counters */
var (
    RunCount     uint64 = 0
    RoundCount   uint64 = 0
    RewriteCount uint64 = 0
)

// ConvergenceError means a pipeline was still making progress when its
// round budget ran out.
type ConvergenceError struct {
    Func   string
    Rounds int
}

func (self ConvergenceError) Error() string {
    return fmt.Sprintf("function %q did not converge after %d rounds", self.Func, self.Rounds)
}

// Config controls an Executor. Zero fields fall back to the package
// defaults, which are tunable through PRISM_* environment variables.
type Config struct {
    MaxRounds int
    Validate  bool
    Logger    *zap.Logger
}

func defaults() Config {
    return Config {
        MaxRounds : opts.MaxRounds,
        Validate  : opts.ValidatePasses,
        Logger    : zap.NewNop(),
    }
}

// Executor drives the pass table over functions until they stop changing.
type Executor struct {
    cfg Config
}

// CreateExecutor builds an Executor from cfg, filling every zero field from
// the defaults.
func CreateExecutor(cfg Config) *Executor {
    if err := mergo.Merge(&cfg, defaults()); err != nil {
        panic("prism: invalid executor config: " + err.Error())
    }
    return &Executor { cfg: cfg }
}

// Run executes the pass table on fn, round after round, until a full round
// makes no progress. It returns the number of mutating rounds. Functions
// that still change when the round budget runs out yield a ConvergenceError.
func (self *Executor) Run(fn *ir.Func) (int, error) {
    log := self.cfg.Logger
    atomic.AddUint64(&RunCount, 1)

    /* round after round until fixpoint */
    for round := 0; round < self.cfg.MaxRounds; round++ {
        prog := false
        atomic.AddUint64(&RoundCount, 1)

        /* apply every pass in order */
        for _, p := range Passes {
            if !p.Pass.Apply(fn) {
                continue
            }

            /* the pass mutated the function, caches are gone already but
             * make staleness explicit for anything the pass forgot */
            prog = true
            fn.Invalidate()
            log.Debug("pass made progress",
                zap.String("func", fn.Name),
                zap.String("pass", p.Name),
                zap.Int("round", round),
            )

            /* optionally re-validate after every mutating pass */
            if self.cfg.Validate {
                if err := fn.Validate(); err != nil {
                    return round, errors.Wrapf(err, "pass %q broke function %q", p.Name, fn.Name)
                }
            }
        }

        /* a quiet round means fixpoint */
        if !prog {
            return round, nil
        }
    }
    return self.cfg.MaxRounds, ConvergenceError { Func: fn.Name, Rounds: self.cfg.MaxRounds }
}

// RunAll optimizes every function concurrently on the shared worker pool,
// one goroutine per function. A single function is only ever touched by one
// goroutine. The first error wins, the rest of the functions still finish.
func (self *Executor) RunAll(fns []*ir.Func) error {
    var ret  error
    var once sync.Once
    var wg   sync.WaitGroup

    /* one pooled goroutine per function */
    for _, fn := range fns {
        fn := fn
        wg.Add(1)
        gopool.Go(func() {
            defer wg.Done()
            if _, e := self.Run(fn); e != nil {
                once.Do(func() { ret = e })
            }
        })
    }

    /* wait for every function to settle */
    wg.Wait()
    return ret
}
