// Copyright 2025 EngFlow Inc. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package lexer

import "fmt"

// Cursor is a 1-based line/column position in the source text.
type Cursor struct {
	Line, Column int
}

// CursorInit is the position at the very beginning of a file.
var CursorInit = Cursor{Line: 1, Column: 1}

func (c Cursor) String() string {
	return fmt.Sprintf("%d:%d", c.Line, c.Column)
}

// Advanced returns the cursor after consuming a single rune, r.
func (c Cursor) Advanced(r rune) Cursor {
	if r == '\n' {
		return Cursor{Line: c.Line + 1, Column: 1}
	}
	return Cursor{Line: c.Line, Column: c.Column + 1}
}
