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

type TypeKind uint8

const (
    KindBool TypeKind = iota
    KindInt
    KindFloat
)

func (self TypeKind) String() string {
    switch self {
        case KindBool  : return "b"
        case KindInt   : return "i"
        case KindFloat : return "f"
        default        : panic("unreachable")
    }
}

// Type is a scalar or vector numeric type.
type Type struct {
    Kind  TypeKind
    Bits  uint8
    Lanes uint8
}

func TypeBool() Type {
    return Type { Kind: KindBool, Bits: 1, Lanes: 1 }
}

func TypeInt32() Type {
    return Type { Kind: KindInt, Bits: 32, Lanes: 1 }
}

func TypeFloat32() Type {
    return Type { Kind: KindFloat, Bits: 32, Lanes: 1 }
}

// Vec widens t to an n-lane vector of the same scalar kind.
func Vec(t Type, n int) Type {
    if n <= 0 || n > 0xff {
        panic(fmt.Sprintf("prism: invalid vector width: %d", n))
    } else {
        return Type { Kind: t.Kind, Bits: t.Bits, Lanes: uint8(n) }
    }
}

// IsBool reports whether the type is a scalar boolean, the only shape a
// branch condition may have.
func (self Type) IsBool() bool {
    return self.Kind == KindBool && self.Lanes <= 1
}

func (self Type) IsVector() bool {
    return self.Lanes > 1
}

func (self Type) String() string {
    if self.Lanes <= 1 {
        return fmt.Sprintf("%s%d", self.Kind, self.Bits)
    } else {
        return fmt.Sprintf("%s%dx%d", self.Kind, self.Bits, self.Lanes)
    }
}
