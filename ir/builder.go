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

type _FrameKind uint8

const (
    _F_then _FrameKind = iota
    _F_else
    _F_loop
)

type _Frame struct {
    kind _FrameKind
    nif  *If
    loop *Loop
    save []CfNode
}

// Builder constructs a Func one block at a time. Push and pop methods nest
// control flow constructs, emit methods append instructions to the block
// that is currently open. Builders are single-use, Build finalizes the
// function and the builder must not be touched afterwards.
type Builder struct {
    fn    *Func
    cur   *Block
    list  []CfNode
    loops int
    stack []*_Frame
}

// CreateFunction starts building a function with the given name. The entry
// block is open and ready for instructions.
func CreateFunction(name string) *Builder {
    fn := newFunc(name)
    return &Builder {
        fn  : fn,
        cur : fn.newBlock(),
    }
}

/* seal closes the open block into the current region list */
func (self *Builder) seal() {
    self.list = append(self.list, self.cur)
    self.cur = nil
}

func (self *Builder) pop() *_Frame {
    if n := len(self.stack); n == 0 {
        panic("prism: no open control flow construct")
    } else {
        p := self.stack[n - 1]
        self.stack = self.stack[:n - 1]
        return p
    }
}

func (self *Builder) emit(v Node) {
    if self.cur.Term != nil {
        panic("prism: instruction after terminator")
    } else {
        self.cur.Ins = append(self.cur.Ins, v)
    }
}

func (self *Builder) setterm(kind JumpKind) {
    if self.cur.Term != nil {
        panic("prism: block is already terminated")
    } else {
        self.cur.Term = &Jump { Kind: kind }
    }
}

// Block returns the block that is currently open. The pointer stays valid
// after the block is closed, which is how callers get hold of the blocks
// they want to key phis on.
func (self *Builder) Block() *Block {
    return self.cur
}

// Var declares a named variable on the function under construction.
func (self *Builder) Var(name string, t Type) *Var {
    return self.fn.NewVar(name, t)
}

// PushIf closes the current block as the header of a new if-construct and
// opens the first block of its then-arm. The condition must be a boolean
// value. The returned construct is not wired into the tree until the
// matching PopIf.
func (self *Builder) PushIf(cond Value) *If {
    if !self.fn.TypeOf(cond).IsBool() {
        panic("prism: condition must be a boolean value")
    }

    /* the block computing the condition becomes the header */
    self.seal()
    self.stack = append(self.stack, &_Frame { kind: _F_then, nif: &If { Cond: cond }, save: self.list })
    self.list = nil
    self.cur = self.fn.newBlock()
    return self.stack[len(self.stack) - 1].nif
}

// PushElse closes the then-arm of the innermost if-construct and opens the
// first block of its else-arm.
func (self *Builder) PushElse() {
    p := self.pop()

    /* must pair up with a PushIf */
    if p.kind != _F_then {
        panic("prism: else without a matching if")
    }

    /* seal the then-arm, reopen for the else-arm */
    self.seal()
    p.kind = _F_else
    p.nif.Then = self.list
    self.list = nil
    self.cur = self.fn.newBlock()
    self.stack = append(self.stack, p)
}

// PopIf closes the innermost if-construct and opens the merge block after
// it. An if-construct without a PushElse gets a single empty block as its
// else-arm.
func (self *Builder) PopIf() {
    p := self.pop()
    self.seal()

    /* materialize the else-arm if there isn't one */
    switch p.kind {
        case _F_then : p.nif.Then, self.list = self.list, []CfNode { self.fn.newBlock() }
        case _F_else : break
        default      : panic("prism: pop if without a matching if")
    }

    /* rebuild the enclosing region around the construct */
    p.nif.Else = self.list
    self.list = append(p.save, p.nif)
    self.cur = self.fn.newBlock()
}

// PushLoop closes the current block and opens the header block of a new
// loop. The returned construct is not wired into the tree until the
// matching PopLoop.
func (self *Builder) PushLoop() *Loop {
    self.seal()
    self.stack = append(self.stack, &_Frame { kind: _F_loop, loop: new(Loop), save: self.list })
    self.list = nil
    self.cur = self.fn.newBlock()
    self.loops++
    return self.stack[len(self.stack) - 1].loop
}

// PopLoop closes the innermost loop and opens the block after it, which is
// where break jumps inside the loop land.
func (self *Builder) PopLoop() {
    p := self.pop()

    /* must pair up with a PushLoop */
    if p.kind != _F_loop {
        panic("prism: pop loop without a matching loop")
    }

    /* rebuild the enclosing region around the loop */
    self.seal()
    p.loop.Body = self.list
    self.list = append(p.save, p.loop)
    self.cur = self.fn.newBlock()
    self.loops--
}

// Break terminates the current block with a break jump. It panics outside
// of loops.
func (self *Builder) Break() {
    if self.loops == 0 {
        panic("prism: break outside of a loop")
    } else {
        self.setterm(JumpBreak)
    }
}

// Continue terminates the current block with a continue jump. It panics
// outside of loops.
func (self *Builder) Continue() {
    if self.loops == 0 {
        panic("prism: continue outside of a loop")
    } else {
        self.setterm(JumpContinue)
    }
}

// Return terminates the current block with a return jump.
func (self *Builder) Return() {
    self.setterm(JumpReturn)
}

func (self *Builder) Const(t Type, v int64) Value {
    r := self.fn.NewValue(t)
    self.emit(&Const { R: r, T: t, V: v })
    return r
}

func (self *Builder) Unary(op UnaryOp, v Value) Value {
    r := self.fn.NewValue(self.fn.TypeOf(v))
    self.emit(&Unary { Op: op, R: r, V: v })
    return r
}

func (self *Builder) Binary(op BinaryOp, x Value, y Value) Value {
    rt := self.fn.TypeOf(x)

    /* comparisons produce booleans no matter the operands */
    if op.IsComparison() {
        rt = TypeBool()
    }

    /* allocate the result */
    r := self.fn.NewValue(rt)
    self.emit(&Binary { Op: op, R: r, X: x, Y: y })
    return r
}

func (self *Builder) Load(v *Var) Value {
    r := self.fn.NewValue(v.T)
    self.emit(&LoadVar { R: r, V: v })
    return r
}

func (self *Builder) Store(v *Var, s Value) {
    self.emit(&StoreVar { V: v, S: s })
}

// Phi emits a phi at the top of the current block, keyed by the exact
// predecessor blocks given in v. Phis must come before everything else in
// their block.
func (self *Builder) Phi(t Type, v map[*Block]Value) Value {
    if len(self.cur.Ins) != 0 || self.cur.Term != nil {
        panic("prism: phi must come before any other instruction")
    }

    /* allocate the result */
    r := self.fn.NewValue(t)
    m := make(map[*Block]*Value, len(v))

    /* build the source map */
    for bb, val := range v {
        m[bb] = valueref(val)
    }

    /* append to the phi section of the block */
    self.cur.Phi = append(self.cur.Phi, &Phi { R: r, V: m })
    return r
}

// Build seals the function and returns it. The builder must be balanced,
// every pushed construct popped.
func (self *Builder) Build() (fn *Func) {
    if self.fn == nil {
        panic("prism: function already built")
    }

    /* all constructs must have been closed */
    if len(self.stack) != 0 {
        panic("prism: unbalanced control flow constructs")
    }

    /* seal the last block and hand the function over */
    self.seal()
    fn, self.fn = self.fn, nil
    fn.Body, self.list = self.list, nil
    return
}
