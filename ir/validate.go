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

package ir

import (
    mapset `github.com/deckarep/golang-set/v2`
    `github.com/pkg/errors`
)

type _CondSite struct {
    cond Value
    head *Block
}

type _Validator struct {
    fn    *Func
    ids   map[int]bool
    seen  map[*Block]bool
    defs  map[Value]*Block
    conds []_CondSite
}

// Validate checks the function for structural and SSA consistency: control
// flow lists alternate between blocks and compound constructs and are
// delimited by blocks, every block occurs exactly once in the tree, jumps
// stay within their meaning, every value has exactly one definition that
// dominates all of its uses, and phi key sets match the live predecessors
// of their blocks exactly. Unreachable blocks are only checked structurally.
func (self *Func) Validate() error {
    vv := _Validator {
        fn   : self,
        ids  : make(map[int]bool),
        seen : make(map[*Block]bool),
        defs : make(map[Value]*Block),
    }

    /* structural checks must pass before edges and dominance make sense */
    if err := vv.structure(self.Body, 0); err != nil {
        return errors.Wrapf(err, "prism: invalid function %s", self.Name)
    }

    /* SSA checks over the live portion of the graph */
    if err := vv.ssacheck(); err != nil {
        return errors.Wrapf(err, "prism: invalid function %s", self.Name)
    }
    return nil
}

func (self *_Validator) structure(list []CfNode, nest int) error {
    if len(list) == 0 {
        return errors.New("empty control flow list")
    }

    /* lists alternate between blocks and compound constructs, and both
     * start and end with a block, so a compound construct always has a
     * block on either side */
    if len(list) % 2 == 0 {
        return errors.New("control flow list must end with a block")
    }

    /* validate every node */
    for i, node := range list {
        if _, ok := node.(*Block); ok != (i % 2 == 0) {
            return errors.Errorf("control flow list must alternate between blocks and constructs at index %d", i)
        }

        /* check the node itself */
        switch p := node.(type) {
            case *Block: {
                if err := self.block(p, nest); err != nil {
                    return err
                }
            }

            case *If: {
                self.conds = append(self.conds, _CondSite { cond: p.Cond, head: list[i - 1].(*Block) })
                if err := self.structure(p.Then, nest); err != nil {
                    return err
                }
                if err := self.structure(p.Else, nest); err != nil {
                    return err
                }
            }

            case *Loop: {
                if err := self.structure(p.Body, nest + 1); err != nil {
                    return err
                }
            }

            default: {
                panic("unreachable")
            }
        }
    }
    return nil
}

func (self *_Validator) block(bb *Block, nest int) error {
    if bb == nil {
        return errors.New("nil block in control flow list")
    }

    /* blocks occur exactly once, under exactly one ID */
    if self.seen[bb] {
        return errors.Errorf("block %s occurs more than once", bb.Name())
    } else if self.ids[bb.Id] {
        return errors.Errorf("duplicate block ID %d", bb.Id)
    }

    /* register the block */
    self.ids[bb.Id] = true
    self.seen[bb] = true

    /* break and continue are only meaningful inside loops */
    if bb.Term != nil && bb.Term.Kind != JumpReturn && nest == 0 {
        return errors.Errorf("%s outside of a loop in %s", bb.Term, bb.Name())
    }

    /* phis live in the phi list and jumps in the terminator slot, neither
     * may hide among the ordinary instructions */
    for _, p := range bb.Ins {
        switch p.(type) {
            case *Phi  : return errors.Errorf("misplaced phi in %s", bb.Name())
            case *Jump : return errors.Errorf("misplaced jump in %s", bb.Name())
        }
    }

    /* phis need at least one incoming edge */
    for _, p := range bb.Phi {
        if len(p.V) == 0 {
            return errors.Errorf("phi %s of %s has no sources", p.R, bb.Name())
        }
    }
    return nil
}

func (self *_Validator) define(v Value, bb *Block) error {
    if _, ok := self.fn.types[v]; !ok {
        return errors.Errorf("definition of unallocated value %s in %s", v, bb.Name())
    } else if dp, ok := self.defs[v]; ok {
        return errors.Errorf("value %s defined in both %s and %s", v, dp.Name(), bb.Name())
    } else {
        self.defs[v] = bb
        return nil
    }
}

func (self *_Validator) usecheck(v Value, bb *Block, dt *DomTree, local map[Value]bool) error {
    dp, ok := self.defs[v]

    /* must be defined somewhere */
    if !ok {
        return errors.Errorf("use of undefined value %s in %s", v, bb.Name())
    }

    /* definitions in the same block must come first, definitions in other
     * blocks must dominate this one */
    if dp == bb {
        if !local[v] {
            return errors.Errorf("value %s used before its definition in %s", v, bb.Name())
        }
    } else {
        if !dt.Dominates(dp, bb) {
            return errors.Errorf("definition of %s in %s does not dominate its use in %s", v, dp.Name(), bb.Name())
        }
    }
    return nil
}

func (self *_Validator) ssacheck() error {
    dt := self.fn.Dominance()
    pm := self.fn.Predecessors()

    /* collect every definition site first, phis and instructions alike */
    for _, bb := range self.fn.BlockOrder() {
        for _, p := range bb.Phi {
            if err := self.define(p.R, bb); err != nil {
                return err
            }
        }
        for _, p := range bb.Ins {
            if def, ok := p.(Definitions); ok {
                for _, d := range def.Definitions() {
                    if err := self.define(*d, bb); err != nil {
                        return err
                    }
                }
            }
        }
    }

    /* then check uses, for live blocks only */
    for _, bb := range self.fn.BlockOrder() {
        if _, ok := pm[bb]; ok {
            if err := self.liveblock(bb, dt, pm[bb]) ; err != nil {
                return err
            }
        }
    }

    /* branch conditions are used at the end of their header block */
    for _, cc := range self.conds {
        if _, ok := pm[cc.head]; ok && cc.head.FallsThrough() {
            if dp, ok := self.defs[cc.cond]; !ok {
                return errors.Errorf("use of undefined value %s as condition of %s", cc.cond, cc.head.Name())
            } else if !dt.Dominates(dp, cc.head) {
                return errors.Errorf("definition of %s in %s does not dominate the branch in %s", cc.cond, dp.Name(), cc.head.Name())
            } else if !self.fn.TypeOf(cc.cond).IsBool() {
                return errors.Errorf("condition %s of %s is not a boolean", cc.cond, cc.head.Name())
            }
        }
    }
    return nil
}

func (self *_Validator) liveblock(bb *Block, dt *DomTree, preds []*Block) error {
    want := mapset.NewSet[*Block](preds...)
    local := make(map[Value]bool, len(bb.Phi))

    /* phi sources are read at the end of the matching predecessor, and the
     * key set must be exactly the live predecessor set */
    for _, p := range bb.Phi {
        have := mapset.NewSet[*Block]()
        for pred, v := range p.V {
            if pred == nil || v == nil {
                return errors.Errorf("phi %s of %s has a nil edge", p.R, bb.Name())
            }
            have.Add(pred)
            if dp, ok := self.defs[*v]; !ok {
                return errors.Errorf("use of undefined value %s in phi %s of %s", *v, p.R, bb.Name())
            } else if !dt.Dominates(dp, pred) {
                return errors.Errorf("definition of %s in %s does not reach the %s edge of phi %s", *v, dp.Name(), pred.Name(), p.R)
            } else if self.fn.TypeOf(*v) != self.fn.TypeOf(p.R) {
                return errors.Errorf("phi %s of %s mixes types", p.R, bb.Name())
            }
        }
        if !have.Equal(want) {
            return errors.Errorf("phi %s keys do not match the live predecessors of %s", p.R, bb.Name())
        }
        local[p.R] = true
    }

    /* ordinary uses are checked in instruction order */
    for _, p := range bb.Ins {
        if use, ok := p.(Usages); ok {
            for _, v := range use.Usages() {
                if err := self.usecheck(*v, bb, dt, local); err != nil {
                    return err
                }
            }
        }
        if def, ok := p.(Definitions); ok {
            for _, d := range def.Definitions() {
                local[*d] = true
            }
        }
    }
    return nil
}
