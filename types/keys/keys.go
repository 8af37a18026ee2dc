/*
 *	Copyright 2023 Jan Pfeifer
 *
 *	Licensed under the Apache License, Version 2.0 (the "License");
 *	you may not use this file except in compliance with the License.
 *	You may obtain a copy of the License at
 *
 *	http://www.apache.org/licenses/LICENSE-2.0
 *
 *	Unless required by applicable law or agreed to in writing, software
 *	distributed under the License is distributed on an "AS IS" BASIS,
 *	WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 *	See the License for the specific language governing permissions and
 *	limitations under the License.
 */

// Package keys defines Key, the symbolic identifier used to name the inputs
// (leaves) of an expression graph.
//
// A Key packs a one-character tag and a numeric index into a single uint64,
// so that `x1`, `x2`, `y1`, ... are distinct, cheap to compare and usable as
// map keys. Create them with Symbol:
//
//	k := keys.Symbol('x', 1)
//	k.Chr()    // 'x'
//	k.Index()  // 1
//	k.String() // "x1"
//
// Keys carry no dimension information: the dimension of the value a Key
// refers to is only known once the key is bound in an exprs.Values container.
package keys

import (
	"fmt"

	"github.com/gomlx/exceptions"
)

// Key is a symbolic identifier for an expression leaf: a one-character tag
// plus an index, packed into a uint64.
//
// The zero Key is valid but reserved: it is the key of constants and other
// non-leaf values, and Symbol never returns it.
type Key uint64

// indexBits is the number of low bits reserved for the index; the character
// tag lives in the bits above it.
const indexBits = 56

// MaxIndex is the largest index Symbol accepts.
const MaxIndex = uint64(1)<<indexBits - 1

// Symbol returns the Key for the given character tag and index.
//
// The tag must be a printable ASCII character ('!' to '~'), which keeps
// String() output readable. It panics on an invalid tag or an index larger
// than MaxIndex.
func Symbol(chr rune, index uint64) Key {
	if chr < '!' || chr > '~' {
		exceptions.Panicf("keys.Symbol(%q, %d): tag must be a printable ASCII character", chr, index)
	}
	if index > MaxIndex {
		exceptions.Panicf("keys.Symbol(%q, %d): index overflows the %d bits available", chr, index, indexBits)
	}
	return Key(uint64(chr)<<indexBits | index)
}

// Chr returns the character tag of the key.
func (k Key) Chr() rune {
	return rune(uint64(k) >> indexBits)
}

// Index returns the numeric index of the key.
func (k Key) Index() uint64 {
	return uint64(k) & MaxIndex
}

// String implements fmt.Stringer, formatting the key as tag followed by
// index, e.g. "x1".
func (k Key) String() string {
	if k == 0 {
		return "(none)"
	}
	return fmt.Sprintf("%c%d", k.Chr(), k.Index())
}
