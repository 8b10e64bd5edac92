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
    `strings`
)

func blockstr(bb *Block, nest int) string {
    idt := strings.Repeat("    ", nest)
    buf := []string { fmt.Sprintf("%s%s:", idt, bb.Name()) }

    /* phis always come first */
    for _, p := range bb.Phi {
        buf = append(buf, idt + "    " + p.String())
    }

    /* then the instructions in order */
    for _, p := range bb.Ins {
        buf = append(buf, idt + "    " + p.String())
    }

    /* terminator, if any */
    if bb.Term != nil {
        buf = append(buf, idt + "    " + bb.Term.String())
    }
    return strings.Join(buf, "\n")
}

func liststr(list []CfNode, nest int) string {
    idt := strings.Repeat("    ", nest)
    buf := make([]string, 0, len(list))

    /* render every node at this nesting level */
    for _, node := range list {
        switch p := node.(type) {
            case *Block: {
                buf = append(buf, blockstr(p, nest))
            }

            case *If: {
                buf = append(buf, fmt.Sprintf(
                    "%sif %s {\n%s\n%s} else {\n%s\n%s}",
                    idt,
                    p.Cond,
                    liststr(p.Then, nest + 1),
                    idt,
                    liststr(p.Else, nest + 1),
                    idt,
                ))
            }

            case *Loop: {
                buf = append(buf, fmt.Sprintf(
                    "%sloop {\n%s\n%s}",
                    idt,
                    liststr(p.Body, nest + 1),
                    idt,
                ))
            }

            default: {
                panic("unreachable")
            }
        }
    }
    return strings.Join(buf, "\n")
}

func (self *Func) String() string {
    return fmt.Sprintf("func %s {\n%s\n}", self.Name, liststr(self.Body, 1))
}
