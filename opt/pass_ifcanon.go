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
    `os`
    `sync/atomic`

    `github.com/davecgh/go-spew/spew`
    `github.com/prismlab/prism/internal/opts`
    `github.com/prismlab/prism/ir`
)

// IfCanon rewrites if-constructs with an empty fall-through then-arm and a
// non-trivial else-arm into canonical form: the condition is inverted with
// a freshly defined negation, the arm contents change places, and phis that
// key on the two boundary blocks are re-keyed so that every value still
// arrives over the same semantic edge.
type IfCanon struct{}

/* _IfSite is everything a rule may touch besides the construct itself:
 * the enclosing list, the construct's index in it, and where break and
 * continue jumps land at this nesting level */
type _IfSite struct {
    list []ir.CfNode
    idx  int
    brk  *ir.Block
    cont *ir.Block
}

type _IfRule struct {
    name  string
    apply func(fn *ir.Func, nif *ir.If, st _IfSite) bool
}

/* rules are tried in order on every if-construct, new rewrites go here */
var _IfRules = [...]_IfRule {
    { name: "invert-empty-then", apply: ruleInvertEmptyThen },
}

var _SpewConf = spew.ConfigState {
    Indent   : "    ",
    SortKeys : true,
}

func (IfCanon) Apply(fn *ir.Func) bool {
    hits := make(map[string]uint64, len(_IfRules))
    prog := walklist(fn, fn.Body, nil, nil, hits)

    /* dump per-rule hit counts when pass debugging is enabled */
    if opts.DebugPasses {
        fmt.Fprintf(os.Stderr, "prism: rule hits on %s:\n", fn.Name)
        _SpewConf.Fdump(os.Stderr, hits)
    }

    /* anything cached on the function is stale after a rewrite */
    if prog {
        fn.Invalidate()
    }
    return prog
}

func walklist(fn *ir.Func, list []ir.CfNode, brk *ir.Block, cont *ir.Block, hits map[string]uint64) bool {
    ret := false

    /* visit children before the construct itself, inner rewrites never
     * disturb outer ones */
    for i, node := range list {
        switch p := node.(type) {
            case *ir.Block: {
                break
            }

            case *ir.If: {
                if walklist(fn, p.Then, brk, cont, hits) {
                    ret = true
                }
                if walklist(fn, p.Else, brk, cont, hits) {
                    ret = true
                }
                if applyrules(fn, p, _IfSite { list: list, idx: i, brk: brk, cont: cont }, hits) {
                    ret = true
                }
            }

            case *ir.Loop: {
                if walklist(fn, p.Body, list[i + 1].(*ir.Block), p.Header(), hits) {
                    ret = true
                }
            }

            default: {
                panic("unreachable")
            }
        }
    }
    return ret
}

func applyrules(fn *ir.Func, nif *ir.If, st _IfSite, hits map[string]uint64) bool {
    ret := false

    /* every rule gets a shot, hits feed the debug dump and the counters */
    for _, rule := range _IfRules {
        if rule.apply(fn, nif, st) {
            ret = true
            hits[rule.name]++
            atomic.AddUint64(&RewriteCount, 1)
        }
    }
    return ret
}

/* rekeyPhis swaps the keys tb and eb in every phi of bb, phis keyed by
 * neither or by only one of the two come out right as well */
func rekeyPhis(bb *ir.Block, tb *ir.Block, eb *ir.Block) {
    if bb == nil {
        return
    }
    for _, p := range bb.Phi {
        tv, tok := p.V[tb]
        ev, eok := p.V[eb]

        /* pairwise exchange, absent keys stay absent */
        if eok { p.V[tb] = ev } else { delete(p.V, tb) }
        if tok { p.V[eb] = tv } else { delete(p.V, eb) }
    }
}

func ruleInvertEmptyThen(fn *ir.Func, nif *ir.If, st _IfSite) bool {
    if !nif.ThenTrivial() || nif.ElseTrivial() {
        return false
    }

    /* boundary blocks and the construct's neighbours, the alternation
     * invariant guarantees both neighbours are blocks */
    tb := nif.LastThen()
    eb := nif.LastElse()
    hb := st.list[st.idx - 1].(*ir.Block)
    mb := st.list[st.idx + 1].(*ir.Block)

    /* negate the condition with a fresh value at the end of the header,
     * the one position that dominates both arm entries */
    cv := fn.NewValue(fn.TypeOf(nif.Cond))
    hb.Ins = append(hb.Ins, &ir.Unary { Op: ir.OpNot, R: cv, V: nif.Cond })
    nif.Cond = cv

    /* exchange the contents of the boundary blocks, the blocks themselves
     * stay pinned to their structural roles */
    tb.Phi, eb.Phi = eb.Phi, tb.Phi
    tb.Ins, eb.Ins = eb.Ins, tb.Ins
    tb.Term, eb.Term = eb.Term, tb.Term

    /* the new then-arm is the old else-arm with tb taking over the last
     * slot, the new else-arm is just the emptied eb */
    nif.Then = nif.Else
    nif.Then[len(nif.Then) - 1] = tb
    nif.Else = []ir.CfNode { eb }

    /* every edge that used to leave eb now leaves tb and vice versa, so
     * the phis at the targets of those edges swap the two keys; phis inside
     * the moved arm keep their keys, their predecessors moved with them */
    rekeyPhis(mb, tb, eb)

    /* a migrated jump moved its edge too: break lands after the enclosing
     * loop, continue lands at its header, return leaves the function */
    if tb.Term != nil {
        switch tb.Term.Kind {
            case ir.JumpBreak    : rekeyPhis(st.brk, tb, eb)
            case ir.JumpContinue : rekeyPhis(st.cont, tb, eb)
            case ir.JumpReturn   : break
            default              : panic("unreachable")
        }
    }
    return true
}
