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
    `testing`

    `github.com/brianvoe/gofakeit/v6`
    `github.com/prismlab/prism/ir`
    `github.com/stretchr/testify/assert`
    `github.com/stretchr/testify/require`
)

func ref(v ir.Value) *ir.Value {
    p := v
    return &p
}

/* canonical reports whether no if-construct in the tree still has an empty
 * fall-through then-arm next to a non-trivial else-arm */
func canonical(list []ir.CfNode) bool {
    for _, node := range list {
        switch p := node.(type) {
            case *ir.Block: {
                break
            }

            case *ir.If: {
                if p.ThenTrivial() && !p.ElseTrivial() {
                    return false
                }
                if !canonical(p.Then) || !canonical(p.Else) {
                    return false
                }
            }

            case *ir.Loop: {
                if !canonical(p.Body) {
                    return false
                }
            }
        }
    }
    return true
}

type _EmptyThen struct {
    fn    *ir.Func
    nif   *ir.If
    entry *ir.Block
    tb    *ir.Block
    eb    *ir.Block
    mb    *ir.Block
    cond  ir.Value
    tv    ir.Value
    ev    ir.Value
}

/* if (c) {} else { out = 2 } with a two-way phi at the merge */
func emptythen() _EmptyThen {
    b := ir.CreateFunction("empty_then")
    cv := b.Var("c", ir.TypeBool())
    ov := b.Var("out", ir.TypeInt32())

    /* entry defines the condition and the value the then-path keeps */
    c := b.Load(cv)
    tv := b.Const(ir.TypeInt32(), 1)
    entry := b.Block()

    /* empty then-arm, else-arm stores */
    nif := b.PushIf(c)
    tb := b.Block()
    b.PushElse()
    ev := b.Const(ir.TypeInt32(), 2)
    b.Store(ov, ev)
    eb := b.Block()
    b.PopIf()

    /* merge joins the two paths */
    mv := b.Phi(ir.TypeInt32(), map[*ir.Block]ir.Value { tb: tv, eb: ev })
    b.Store(ov, mv)
    b.Return()
    mb := b.Block()

    return _EmptyThen {
        fn    : b.Build(),
        nif   : nif,
        entry : entry,
        tb    : tb,
        eb    : eb,
        mb    : mb,
        cond  : c,
        tv    : tv,
        ev    : ev,
    }
}

func TestIfCanon_InvertEmptyThen(t *testing.T) {
    s := emptythen()
    require.NoError(t, s.fn.Validate())
    require.True(t, IfCanon{}.Apply(s.fn))

    /* the condition is a fresh negation at the end of the header */
    not := s.entry.Ins[len(s.entry.Ins) - 1].(*ir.Unary)
    assert.Equal(t, ir.OpNot, not.Op)
    assert.Equal(t, s.cond, not.V)
    assert.Equal(t, not.R, s.nif.Cond)
    assert.True(t, s.fn.TypeOf(s.nif.Cond).IsBool())

    /* the boundary blocks stay pinned, their contents changed places */
    require.Equal(t, []ir.CfNode { s.tb }, s.nif.Then)
    require.Equal(t, []ir.CfNode { s.eb }, s.nif.Else)
    assert.Len(t, s.tb.Ins, 2)
    assert.True(t, s.eb.IsEmpty())
    assert.True(t, s.eb.FallsThrough())
    assert.False(t, s.nif.ThenTrivial())
    assert.True(t, s.nif.ElseTrivial())

    /* the merge phi swaps the two keys, values keep their edges */
    phi := s.mb.Phi[0]
    require.Contains(t, phi.V, s.tb)
    require.Contains(t, phi.V, s.eb)
    assert.Equal(t, s.ev, *phi.V[s.tb])
    assert.Equal(t, s.tv, *phi.V[s.eb])

    /* still a valid function, and a fixpoint of the pass */
    require.NoError(t, s.fn.Validate())
    str := s.fn.String()
    require.False(t, IfCanon{}.Apply(s.fn))
    assert.Equal(t, str, s.fn.String())
    println(s.fn.String())
}

func TestIfCanon_ElseReturn(t *testing.T) {
    b := ir.CreateFunction("else_return")
    cv := b.Var("c", ir.TypeBool())
    ov := b.Var("out", ir.TypeInt32())

    /* if (c) {} else { return } */
    c := b.Load(cv)
    tv := b.Const(ir.TypeInt32(), 1)
    b.PushIf(c)
    tb := b.Block()
    b.PushElse()
    b.Return()
    eb := b.Block()
    b.PopIf()

    /* the merge is only reached over the then edge */
    mv := b.Phi(ir.TypeInt32(), map[*ir.Block]ir.Value { tb: tv })
    b.Store(ov, mv)
    b.Return()
    mb := b.Block()
    fn := b.Build()
    require.NoError(t, fn.Validate())

    /* a jump keeps the else-arm non-trivial, so the rule fires */
    require.True(t, IfCanon{}.Apply(fn))
    require.NotNil(t, tb.Term)
    assert.Equal(t, ir.JumpReturn, tb.Term.Kind)
    assert.True(t, eb.FallsThrough())

    /* the lone merge edge now comes from eb */
    phi := mb.Phi[0]
    require.Contains(t, phi.V, eb)
    require.NotContains(t, phi.V, tb)
    assert.Equal(t, tv, *phi.V[eb])
    require.NoError(t, fn.Validate())
}

func TestIfCanon_LoopBreak(t *testing.T) {
    b := ir.CreateFunction("loop_break")
    cv := b.Var("c", ir.TypeBool())

    /* loop { if (c) {} else { break } } */
    c := b.Load(cv)
    bv := b.Const(ir.TypeInt32(), 7)
    b.PushLoop()
    b.PushIf(c)
    tb := b.Block()
    b.PushElse()
    b.Break()
    eb := b.Block()
    b.PopIf()
    b.PopLoop()

    /* the block after the loop phis on the break edge */
    b.Phi(ir.TypeInt32(), map[*ir.Block]ir.Value { eb: bv })
    b.Return()
    after := b.Block()
    fn := b.Build()
    require.NoError(t, fn.Validate())

    /* the migrated break drags its phi key along */
    require.True(t, IfCanon{}.Apply(fn))
    require.NotNil(t, tb.Term)
    assert.Equal(t, ir.JumpBreak, tb.Term.Kind)

    phi := after.Phi[0]
    require.Contains(t, phi.V, tb)
    require.NotContains(t, phi.V, eb)
    assert.Equal(t, bv, *phi.V[tb])
    require.NoError(t, fn.Validate())
}

func TestIfCanon_LoopContinue(t *testing.T) {
    b := ir.CreateFunction("loop_continue")
    cv := b.Var("c", ir.TypeBool())

    /* loop { head; if (c) {} else { continue } ; tail } */
    c := b.Load(cv)
    i0 := b.Const(ir.TypeInt32(), 0)
    i1 := b.Const(ir.TypeInt32(), 1)
    i2 := b.Const(ir.TypeInt32(), 2)
    entry := b.Block()
    b.PushLoop()
    head := b.Block()
    b.PushIf(c)
    tb := b.Block()
    b.PushElse()
    b.Continue()
    eb := b.Block()
    b.PopIf()
    tail := b.Block()
    b.PopLoop()
    b.Return()
    fn := b.Build()

    /* the header phi keys on the entry and both back edges */
    head.Phi = []*ir.Phi {{
        R: fn.NewValue(ir.TypeInt32()),
        V: map[*ir.Block]*ir.Value { entry: ref(i0), eb: ref(i1), tail: ref(i2) },
    }}
    require.NoError(t, fn.Validate())

    /* the migrated continue drags its phi key along */
    require.True(t, IfCanon{}.Apply(fn))
    require.NotNil(t, tb.Term)
    assert.Equal(t, ir.JumpContinue, tb.Term.Kind)

    phi := head.Phi[0]
    require.Contains(t, phi.V, tb)
    require.NotContains(t, phi.V, eb)
    assert.Equal(t, i1, *phi.V[tb])
    assert.Equal(t, i0, *phi.V[entry])
    assert.Equal(t, i2, *phi.V[tail])
    require.NoError(t, fn.Validate())
}

func TestIfCanon_Skips(t *testing.T) {
    t.Run("both arms trivial", func(t *testing.T) {
        b := ir.CreateFunction("noop")
        b.PushIf(b.Load(b.Var("c", ir.TypeBool())))
        b.PopIf()
        b.Return()
        fn := b.Build()

        str := fn.String()
        require.False(t, IfCanon{}.Apply(fn))
        assert.Equal(t, str, fn.String())
    })

    t.Run("then holds only a jump", func(t *testing.T) {
        b := ir.CreateFunction("guard")
        ov := b.Var("out", ir.TypeInt32())
        v := b.Const(ir.TypeInt32(), 3)
        b.PushIf(b.Load(b.Var("c", ir.TypeBool())))
        b.Return()
        b.PushElse()
        b.Store(ov, v)
        b.PopIf()
        b.Return()
        fn := b.Build()

        /* an arm that only jumps is not removable, leave it alone */
        str := fn.String()
        require.False(t, IfCanon{}.Apply(fn))
        assert.Equal(t, str, fn.String())
    })

    t.Run("already canonical", func(t *testing.T) {
        b := ir.CreateFunction("canon")
        ov := b.Var("out", ir.TypeInt32())
        v := b.Const(ir.TypeInt32(), 3)
        b.PushIf(b.Load(b.Var("c", ir.TypeBool())))
        b.Store(ov, v)
        b.PopIf()
        b.Return()
        fn := b.Build()

        str := fn.String()
        require.False(t, IfCanon{}.Apply(fn))
        assert.Equal(t, str, fn.String())
    })

    t.Run("both arms with content", func(t *testing.T) {
        b := ir.CreateFunction("full")
        ov := b.Var("out", ir.TypeInt32())
        v := b.Const(ir.TypeInt32(), 3)
        w := b.Const(ir.TypeInt32(), 4)
        b.PushIf(b.Load(b.Var("c", ir.TypeBool())))
        b.Store(ov, v)
        b.PushElse()
        b.Store(ov, w)
        b.PopIf()
        b.Return()
        fn := b.Build()

        str := fn.String()
        require.False(t, IfCanon{}.Apply(fn))
        assert.Equal(t, str, fn.String())
    })
}

func TestIfCanon_Nested(t *testing.T) {
    b := ir.CreateFunction("nested")
    cv := b.Var("c", ir.TypeBool())
    ov := b.Var("out", ir.TypeInt32())

    /* both the outer and the inner construct have an empty then-arm */
    c := b.Load(cv)
    v := b.Const(ir.TypeInt32(), 9)
    outer := b.PushIf(c)
    b.PushElse()
    inner := b.PushIf(c)
    b.PushElse()
    b.Store(ov, v)
    b.PopIf()
    b.PopIf()
    b.Return()
    fn := b.Build()
    require.NoError(t, fn.Validate())

    /* one application canonicalizes the whole nest, inner before outer */
    rc := RewriteCount
    require.True(t, IfCanon{}.Apply(fn))
    assert.Equal(t, uint64(2), RewriteCount - rc)
    assert.True(t, canonical(fn.Body))
    assert.False(t, outer.ThenTrivial())
    assert.False(t, inner.ThenTrivial())
    require.NoError(t, fn.Validate())
    require.False(t, IfCanon{}.Apply(fn))
}

func TestIfCanon_MultiNodeElse(t *testing.T) {
    b := ir.CreateFunction("wide")
    cv := b.Var("c", ir.TypeBool())
    ov := b.Var("out", ir.TypeInt32())

    /* entry */
    c := b.Load(cv)
    base := b.Const(ir.TypeInt32(), 0)

    /* outer then-arm is empty, the else-arm spans three nodes */
    outer := b.PushIf(c)
    otb := b.Block()
    b.PushElse()
    b.Const(ir.TypeInt32(), 1)
    e0 := b.Block()

    /* the inner construct is already canonical and must not move */
    inner := b.PushIf(c)
    iv := b.Const(ir.TypeInt32(), 3)
    itb := b.Block()
    b.PushElse()
    ev := b.Const(ir.TypeInt32(), 4)
    ieb := b.Block()
    b.PopIf()

    /* the in-arm phi keys on the inner arms */
    pv := b.Phi(ir.TypeInt32(), map[*ir.Block]ir.Value { itb: iv, ieb: ev })
    e1 := b.Block()
    b.PopIf()

    /* the merge phi keys on the outer boundary blocks */
    mv := b.Phi(ir.TypeInt32(), map[*ir.Block]ir.Value { otb: base, e1: pv })
    b.Store(ov, mv)
    b.Return()
    mb := b.Block()
    fn := b.Build()
    require.NoError(t, fn.Validate())
    require.True(t, IfCanon{}.Apply(fn))

    /* the arm list moved as a whole, only the boundary blocks swapped */
    require.Equal(t, []ir.CfNode { e0, inner, otb }, outer.Then)
    require.Equal(t, []ir.CfNode { e1 }, outer.Else)
    assert.True(t, e1.IsEmpty())

    /* the in-arm phi went with its block and kept its keys */
    require.Len(t, otb.Phi, 1)
    require.Contains(t, otb.Phi[0].V, itb)
    require.Contains(t, otb.Phi[0].V, ieb)

    /* the merge phi swapped the boundary keys */
    phi := mb.Phi[0]
    assert.Equal(t, pv, *phi.V[otb])
    assert.Equal(t, base, *phi.V[e1])
    require.NoError(t, fn.Validate())
}

func TestIfCanon_RekeyPhis(t *testing.T) {
    tb := new(ir.Block)
    eb := new(ir.Block)
    xb := new(ir.Block)

    newphi := func(v map[*ir.Block]*ir.Value) *ir.Block {
        return &ir.Block { Phi: []*ir.Phi {{ R: ir.Value(1), V: v }} }
    }

    /* keyed by both: pairwise swap */
    a, c := ref(10), ref(11)
    bb := newphi(map[*ir.Block]*ir.Value { tb: a, eb: c })
    rekeyPhis(bb, tb, eb)
    assert.Equal(t, map[*ir.Block]*ir.Value { tb: c, eb: a }, bb.Phi[0].V)

    /* keyed by tb only: the key moves to eb */
    bb = newphi(map[*ir.Block]*ir.Value { tb: a, xb: c })
    rekeyPhis(bb, tb, eb)
    assert.Equal(t, map[*ir.Block]*ir.Value { eb: a, xb: c }, bb.Phi[0].V)

    /* keyed by eb only: the key moves to tb */
    bb = newphi(map[*ir.Block]*ir.Value { eb: c })
    rekeyPhis(bb, tb, eb)
    assert.Equal(t, map[*ir.Block]*ir.Value { tb: c }, bb.Phi[0].V)

    /* keyed by neither: untouched */
    bb = newphi(map[*ir.Block]*ir.Value { xb: c })
    rekeyPhis(bb, tb, eb)
    assert.Equal(t, map[*ir.Block]*ir.Value { xb: c }, bb.Phi[0].V)

    /* no block at all: nothing to do */
    rekeyPhis(nil, tb, eb)
}

/* genbody grows a random nest of branches with random arm contents */
func genbody(f *gofakeit.Faker, b *ir.Builder, c ir.Value, depth int) {
    for i, n := 0, f.Number(1, 4); i < n; i++ {
        switch {
            case f.Number(0, 3) == 0: {
                b.Const(ir.TypeInt32(), int64(f.Number(0, 255)))
            }

            case depth < 4 && f.Bool(): {
                b.PushIf(c)
                if f.Bool() {
                    genbody(f, b, c, depth + 1)
                }
                if f.Bool() {
                    b.PushElse()
                    if f.Bool() {
                        genbody(f, b, c, depth + 1)
                    }
                }
                b.PopIf()
            }
        }
    }
}

func TestIfCanon_Random(t *testing.T) {
    f := gofakeit.New(0xc401)
    for i := 0; i < 32; i++ {
        t.Run(fmt.Sprintf("g%d", i), func(t *testing.T) {
            b := ir.CreateFunction("rand")
            c := b.Load(b.Var("c", ir.TypeBool()))
            genbody(f, b, c, 0)
            b.Return()
            fn := b.Build()
            require.NoError(t, fn.Validate())

            /* one application reaches the canonical fixpoint */
            IfCanon{}.Apply(fn)
            require.NoError(t, fn.Validate())
            require.True(t, canonical(fn.Body))

            /* and stays there */
            str := fn.String()
            require.False(t, IfCanon{}.Apply(fn))
            require.Equal(t, str, fn.String())
        })
    }
}
