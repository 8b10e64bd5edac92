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
    `fmt`

    `github.com/oleiade/lane`
)

/* cache validity bits */
const (
    _M_order = 1 << iota
    _M_doms
)

// Func owns everything that belongs to a single function: the structured
// control flow tree, the SSA value numbering and the declared variables.
// A Func is not safe for concurrent mutation, one goroutine works on one
// Func at a time.
type Func struct {
    Name  string
    Body  []CfNode
    mask  uint8
    maxv  Value
    vars  []*Var
    arena []*Block
    types map[Value]Type
    order []*Block
    doms  *DomTree
}

func newFunc(name string) *Func {
    return &Func {
        Name  : name,
        types : make(map[Value]Type),
    }
}

// NewValue allocates a fresh SSA value of type t. Values are never reused,
// every definition in the function gets its own.
func (self *Func) NewValue(t Type) Value {
    self.maxv++
    self.types[self.maxv] = t
    return self.maxv
}

// TypeOf returns the type a value was allocated with, it panics for values
// that do not belong to this function.
func (self *Func) TypeOf(v Value) Type {
    if t, ok := self.types[v]; ok {
        return t
    } else {
        panic(fmt.Sprintf("prism: no such value: %s", v))
    }
}

// NewVar declares a named variable of type t.
func (self *Func) NewVar(name string, t Type) *Var {
    p := &Var { Id: len(self.vars), Name: name, T: t }
    self.vars = append(self.vars, p)
    return p
}

func (self *Func) Vars() []*Var {
    return self.vars
}

/* blocks live in a per-function append-only arena, IDs index into it */
func (self *Func) newBlock() *Block {
    p := &Block { Id: len(self.arena) }
    self.arena = append(self.arena, p)
    return p
}

// Blocks returns every block ever created on this function in creation
// order, indexable by block ID. Blocks that were rewritten out of the tree
// still show up here.
func (self *Func) Blocks() []*Block {
    return self.arena
}

func (self *Func) NumBlocks() int {
    return len(self.arena)
}

func (self *Func) Entry() *Block {
    return firstblock(self.Body)
}

// MergeBlock returns the block immediately after the given if-construct in
// its enclosing list, which is where both arms join. It panics if the
// construct does not belong to this function.
func (self *Func) MergeBlock(nif *If) *Block {
    if bb := mergeblock(self.Body, nif); bb != nil {
        return bb
    } else {
        panic("prism: no such construct")
    }
}

// Invalidate drops every derived structure cached on the function. Callers
// that mutate the control flow tree must invalidate before anything reads
// the caches again.
func (self *Func) Invalidate() {
    self.mask = 0
    self.order = nil
    self.doms = nil
}

// BlockOrder returns every block of the function in structural order, the
// order blocks appear when reading the control flow tree top to bottom,
// then-arm before else-arm. The result is cached until the next Invalidate.
func (self *Func) BlockOrder() []*Block {
    if self.mask & _M_order == 0 {
        self.order = blockorder(self.Body, nil)
        self.mask |= _M_order
    }
    return self.order
}

// Dominance returns the dominator tree over the live portion of the control
// flow graph. The result is cached until the next Invalidate.
func (self *Func) Dominance() *DomTree {
    if self.mask & _M_doms == 0 {
        dt := BuildDomTree(self.Entry(), self.Successors())
        self.doms = &dt
        self.mask |= _M_doms
    }
    return self.doms
}

// Successors computes the successor sets of every block from the control
// flow tree. Edges are derived on demand and never cached, they are cheap
// to recompute and easy to get stale.
func (self *Func) Successors() map[*Block][]*Block {
    ret := make(map[*Block][]*Block, len(self.arena))
    addsuccs(self.Body, ret, nil, nil, nil)
    return ret
}

// Predecessors computes the predecessor sets over live edges only, edges
// whose source block is reachable from the entry block. Phis key on this
// exact set.
func (self *Func) Predecessors() map[*Block][]*Block {
    src := self.Entry()
    succ := self.Successors()

    /* queue of blocks to visit */
    q := lane.NewQueue()
    ret := make(map[*Block][]*Block, len(self.arena))
    vis := map[*Block]bool { src: true }

    /* standard BFS over the live part of the graph */
    for q.Enqueue(src); !q.Empty(); {
        bb := q.Dequeue().(*Block)
        for _, sb := range succ[bb] {
            ret[sb] = append(ret[sb], bb)
            if !vis[sb] {
                vis[sb] = true
                q.Enqueue(sb)
            }
        }
    }

    /* entry always has an entry in the map, even without predecessors */
    if _, ok := ret[src]; !ok {
        ret[src] = nil
    }
    return ret
}

func mergeblock(list []CfNode, nif *If) *Block {
    for i, node := range list {
        switch p := node.(type) {
            case *Block: {
                break
            }

            case *If: {
                if p == nif {
                    return firstblock(list[i + 1:])
                } else if bb := mergeblock(p.Then, nif); bb != nil {
                    return bb
                } else if bb := mergeblock(p.Else, nif); bb != nil {
                    return bb
                }
            }

            case *Loop: {
                if bb := mergeblock(p.Body, nif); bb != nil {
                    return bb
                }
            }

            default: {
                panic("unreachable")
            }
        }
    }
    return nil
}

func blockorder(list []CfNode, ret []*Block) []*Block {
    for _, node := range list {
        switch p := node.(type) {
            case *Block : ret = append(ret, p)
            case *If    : ret = blockorder(p.Else, blockorder(p.Then, ret))
            case *Loop  : ret = blockorder(p.Body, ret)
            default     : panic("unreachable")
        }
    }
    return ret
}

/* entryof resolves the block control enters when it reaches a node */
func entryof(node CfNode) []*Block {
    switch p := node.(type) {
        case *Block : return []*Block { p }
        case *If    : return []*Block { firstblock(p.Then), firstblock(p.Else) }
        case *Loop  : return []*Block { p.Header() }
        default     : panic("unreachable")
    }
}

/* jumptarget resolves where a jump of a given kind lands */
func jumptarget(kind JumpKind, brk *Block, cont *Block) *Block {
    switch kind {
        case JumpBreak    : return brk
        case JumpContinue : return cont
        case JumpReturn   : return nil
        default           : panic("unreachable")
    }
}

func addsuccs(list []CfNode, ret map[*Block][]*Block, next *Block, brk *Block, cont *Block) {
    for i, node := range list {
        switch p := node.(type) {
            case *Block: {
                if _, ok := ret[p]; !ok {
                    ret[p] = nil
                }

                /* jumps go where the jump kind says, blocks without one fall
                 * through to the next construct, the last block of the list
                 * falls through to the list's own continuation */
                if p.Term != nil {
                    if tb := jumptarget(p.Term.Kind, brk, cont); tb != nil {
                        ret[p] = append(ret[p], tb)
                    }
                } else if i != len(list) - 1 {
                    ret[p] = append(ret[p], entryof(list[i + 1])...)
                } else if next != nil {
                    ret[p] = append(ret[p], next)
                }
            }

            case *If: {
                mb := firstblock(list[i + 1:])
                addsuccs(p.Then, ret, mb, brk, cont)
                addsuccs(p.Else, ret, mb, brk, cont)
            }

            case *Loop: {
                hb := p.Header()
                addsuccs(p.Body, ret, hb, firstblock(list[i + 1:]), hb)
            }

            default: {
                panic("unreachable")
            }
        }
    }
}
