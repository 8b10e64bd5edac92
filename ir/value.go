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

// Value identifies an SSA value. Values are dense per function and produced
// only by (*Func).NewValue, ids are never reused. None is the zero Value.
type Value uint32

const (
    None Value = 0
)

func (self Value) String() string {
    if self == None {
        return "%∅"
    } else {
        return fmt.Sprintf("%%%d", uint32(self))
    }
}

// Var is a shader-level variable (an input, output or scratch slot),
// referenced by LoadVar and StoreVar instructions. It is not an SSA value.
type Var struct {
    Id   int
    Name string
    T    Type
}

func (self *Var) String() string {
    return "@" + self.Name
}

func valueref(v Value) (r *Value) {
    r = new(Value)
    *r = v
    return
}
