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
    `sort`
    `strings`
)

// Node is the closed set of instructions. The set of kinds is fixed and
// small, passes are expected to switch over it exhaustively.
type Node interface {
    fmt.Stringer
    irnode()
}

func (*Const)    irnode() {}
func (*Unary)    irnode() {}
func (*Binary)   irnode() {}
func (*LoadVar)  irnode() {}
func (*StoreVar) irnode() {}
func (*Phi)      irnode() {}
func (*Jump)     irnode() {}

// Usages is implemented by instructions that read SSA values. The returned
// pointers alias the operand slots, so passes may rewrite them in place.
type Usages interface {
    Node
    Usages() []*Value
}

// Definitions is implemented by instructions that define SSA values.
type Definitions interface {
    Node
    Definitions() []*Value
}

type Const struct {
    R Value
    T Type
    V int64
}

func (self *Const) String() string {
    return fmt.Sprintf("%s = const.%s %d", self.R, self.T, self.V)
}

func (self *Const) Definitions() []*Value {
    return []*Value { &self.R }
}

type UnaryOp uint8

const (
    OpNot UnaryOp = iota
    OpNeg
    OpMov
)

func (self UnaryOp) String() string {
    switch self {
        case OpNot : return "not"
        case OpNeg : return "neg"
        case OpMov : return "mov"
        default    : panic("unreachable")
    }
}

type Unary struct {
    Op UnaryOp
    R  Value
    V  Value
}

func (self *Unary) String() string {
    return fmt.Sprintf("%s = %s %s", self.R, self.Op, self.V)
}

func (self *Unary) Usages() []*Value {
    return []*Value { &self.V }
}

func (self *Unary) Definitions() []*Value {
    return []*Value { &self.R }
}

type BinaryOp uint8

const (
    OpAdd BinaryOp = iota
    OpSub
    OpMul
    OpAnd
    OpOr
    OpXor
    CmpEq
    CmpNe
    CmpLt
    CmpGe
)

func (self BinaryOp) String() string {
    switch self {
        case OpAdd : return "+"
        case OpSub : return "-"
        case OpMul : return "*"
        case OpAnd : return "&"
        case OpOr  : return "|"
        case OpXor : return "^"
        case CmpEq : return "=="
        case CmpNe : return "!="
        case CmpLt : return "<"
        case CmpGe : return ">="
        default    : panic("unreachable")
    }
}

// IsComparison reports whether the operator produces a boolean result
// regardless of its operand types.
func (self BinaryOp) IsComparison() bool {
    return self >= CmpEq
}

type Binary struct {
    Op BinaryOp
    R  Value
    X  Value
    Y  Value
}

func (self *Binary) String() string {
    return fmt.Sprintf("%s = %s %s %s", self.R, self.X, self.Op, self.Y)
}

func (self *Binary) Usages() []*Value {
    return []*Value { &self.X, &self.Y }
}

func (self *Binary) Definitions() []*Value {
    return []*Value { &self.R }
}

type LoadVar struct {
    R Value
    V *Var
}

func (self *LoadVar) String() string {
    return fmt.Sprintf("%s = load %s", self.R, self.V)
}

func (self *LoadVar) Definitions() []*Value {
    return []*Value { &self.R }
}

type StoreVar struct {
    V *Var
    S Value
}

func (self *StoreVar) String() string {
    return fmt.Sprintf("store %s, %s", self.V, self.S)
}

func (self *StoreVar) Usages() []*Value {
    return []*Value { &self.S }
}

// Phi merges one SSA value per live predecessor edge of its block. The key
// set of V must equal the live predecessor set exactly whenever the IR is
// considered valid. Phis live only in Block.Phi, at the top of the block.
type Phi struct {
    R Value
    V map[*Block]*Value
}

func (self *Phi) String() string {
    nb := len(self.V)
    ret := make([]string, 0, nb)
    src := make([]struct{b int; v Value}, 0, nb)

    /* add each edge */
    for bb, val := range self.V {
        src = append(src, struct{b int; v Value}{b: bb.Id, v: *val})
    }

    /* sort by block ID */
    sort.Slice(src, func(i int, j int) bool {
        return src[i].b < src[j].b
    })

    /* dump as string */
    for _, p := range src {
        ret = append(ret, fmt.Sprintf("bb_%d: %s", p.b, p.v))
    }

    /* join them together */
    return fmt.Sprintf(
        "%s = φ(%s)",
        self.R,
        strings.Join(ret, ", "),
    )
}

func (self *Phi) Usages() (r []*Value) {
    r = make([]*Value, 0, len(self.V))
    for _, v := range self.V { r = append(r, v) }
    return
}

func (self *Phi) Definitions() []*Value {
    return []*Value { &self.R }
}

type JumpKind uint8

const (
    JumpBreak JumpKind = iota
    JumpContinue
    JumpReturn
)

func (self JumpKind) String() string {
    switch self {
        case JumpBreak    : return "break"
        case JumpContinue : return "continue"
        case JumpReturn   : return "return"
        default           : panic("unreachable")
    }
}

// Jump is the only terminator kind. It lives in Block.Term, never in
// Block.Ins, so a jump is always the last instruction of its block.
type Jump struct {
    Kind JumpKind
}

func (self *Jump) String() string {
    return self.Kind.String()
}
