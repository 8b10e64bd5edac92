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
)

// CfNode is a node of the structured control flow tree: a basic block, an
// if-construct or a loop. Control flow lists alternate between blocks and
// compound constructs, and always start and end with a block, so every
// construct has a block right before it and right after it.
type CfNode interface {
    cfnode()
}

func (*Block) cfnode() {}
func (*If)    cfnode() {}
func (*Loop)  cfnode() {}

// Block is a basic block. Phis stay at the very top, the terminator (if
// any) comes last, everything else lives in Ins in execution order.
type Block struct {
    Id   int
    Phi  []*Phi
    Ins  []Node
    Term *Jump
}

func (self *Block) Name() string {
    return fmt.Sprintf("bb_%d", self.Id)
}

func (self *Block) String() string {
    return blockstr(self, 0)
}

// IsEmpty reports whether the block carries no phis and no instructions.
// The terminator is a separate concern, see FallsThrough.
func (self *Block) IsEmpty() bool {
    return len(self.Phi) == 0 && len(self.Ins) == 0
}

// FallsThrough reports whether control leaving this block continues with
// the structurally next construct rather than following a jump.
func (self *Block) FallsThrough() bool {
    return self.Term == nil
}

// If is a two-armed conditional. Both arms are always present, an absent
// source-level else still materializes as a single empty block. The block
// right before the If in its enclosing list computes Cond, the block right
// after it is the merge point of both arms.
type If struct {
    Cond Value
    Then []CfNode
    Else []CfNode
}

func (self *If) FirstThen() *Block {
    return firstblock(self.Then)
}

func (self *If) FirstElse() *Block {
    return firstblock(self.Else)
}

func (self *If) LastThen() *Block {
    return lastblock(self.Then)
}

func (self *If) LastElse() *Block {
    return lastblock(self.Else)
}

// ThenTrivial reports whether the then-arm is a single block with nothing
// in it at all.
func (self *If) ThenTrivial() bool {
    return trivial(self.Then)
}

// ElseTrivial reports whether the else-arm is a single block with nothing
// in it at all. An arm that only contains a jump is not trivial, removing
// it would change where control goes.
func (self *If) ElseTrivial() bool {
    return trivial(self.Else)
}

// Loop repeats its body forever, exits happen through break jumps within
// the body. Continue jumps target the header block, break jumps target the
// block right after the loop in its enclosing list.
type Loop struct {
    Body []CfNode
}

func (self *Loop) Header() *Block {
    return firstblock(self.Body)
}

func (self *Loop) Last() *Block {
    return lastblock(self.Body)
}

func trivial(list []CfNode) bool {
    if len(list) != 1 {
        return false
    } else if bb, ok := list[0].(*Block); !ok {
        return false
    } else {
        return bb.IsEmpty() && bb.FallsThrough()
    }
}

func firstblock(list []CfNode) *Block {
    if len(list) == 0 {
        panic("prism: empty control flow list")
    } else if bb, ok := list[0].(*Block); !ok {
        panic("prism: control flow list must start with a block")
    } else {
        return bb
    }
}

func lastblock(list []CfNode) *Block {
    if len(list) == 0 {
        panic("prism: empty control flow list")
    } else if bb, ok := list[len(list) - 1].(*Block); !ok {
        panic("prism: control flow list must end with a block")
    } else {
        return bb
    }
}
