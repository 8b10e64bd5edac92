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
    `testing`

    `github.com/stretchr/testify/assert`
)

func TestBlock_Emptiness(t *testing.T) {
    bb := new(Block)
    assert.Equal(t, "bb_0", bb.Name())
    assert.True(t, bb.IsEmpty())
    assert.True(t, bb.FallsThrough())

    /* a terminator alone does not make a block non-empty */
    bb.Term = &Jump { Kind: JumpReturn }
    assert.True(t, bb.IsEmpty())
    assert.False(t, bb.FallsThrough())

    /* phis and instructions do */
    assert.False(t, (&Block { Phi: []*Phi { new(Phi) } }).IsEmpty())
    assert.False(t, (&Block { Ins: []Node { new(Const) } }).IsEmpty())
}

func TestIf_Arms(t *testing.T) {
    b := CreateFunction("arms")
    c := b.Load(b.Var("c", TypeBool()))

    /* then-arm spans three nodes, else-arm is a single block */
    nif := b.PushIf(c)
    t0 := b.Block()
    b.PushIf(c)
    b.PopIf()
    t1 := b.Block()
    b.PushElse()
    e0 := b.Block()
    b.PopIf()
    b.Return()
    b.Build()

    assert.Same(t, t0, nif.FirstThen())
    assert.Same(t, t1, nif.LastThen())
    assert.Same(t, e0, nif.FirstElse())
    assert.Same(t, e0, nif.LastElse())
}

func TestIf_Trivial(t *testing.T) {
    b := CreateFunction("triv")
    c := b.Load(b.Var("c", TypeBool()))

    /* empty then-arm, else-arm with content */
    nif := b.PushIf(c)
    b.PushElse()
    b.Const(TypeInt32(), 1)
    b.PopIf()
    b.Return()
    b.Build()

    assert.True(t, nif.ThenTrivial())
    assert.False(t, nif.ElseTrivial())

    /* a lone jump keeps an arm non-trivial */
    jf := &If {
        Then: []CfNode { &Block { Term: &Jump { Kind: JumpReturn } } },
        Else: []CfNode { new(Block) },
    }
    assert.False(t, jf.ThenTrivial())
    assert.True(t, jf.ElseTrivial())

    /* multi-node arms are never trivial */
    mf := &If { Then: []CfNode { new(Block), &If{}, new(Block) } }
    assert.False(t, mf.ThenTrivial())
}

func TestLoop_Bounds(t *testing.T) {
    b := CreateFunction("bounds")
    c := b.Load(b.Var("c", TypeBool()))

    loop := b.PushLoop()
    head := b.Block()
    b.PushIf(c)
    b.Break()
    b.PopIf()
    last := b.Block()
    b.PopLoop()
    b.Return()
    b.Build()

    assert.Same(t, head, loop.Header())
    assert.Same(t, last, loop.Last())
}

func TestCfList_Bounds(t *testing.T) {
    assert.PanicsWithValue(t, "prism: empty control flow list", func() { firstblock(nil) })
    assert.PanicsWithValue(t, "prism: empty control flow list", func() { lastblock(nil) })
    assert.PanicsWithValue(t, "prism: control flow list must start with a block", func() { firstblock([]CfNode { new(If) }) })
    assert.PanicsWithValue(t, "prism: control flow list must end with a block", func() { lastblock([]CfNode { new(Block), new(Loop) }) })
}
