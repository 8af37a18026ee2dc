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

package exprs

import (
	"fmt"
	"strings"

	. "github.com/gomlx/exceptions"
	"github.com/gomlx/exprgraph/types"
	"github.com/gomlx/exprgraph/types/keys"
	"github.com/pkg/errors"
)

// Values maps symbolic keys to concrete values, supplying the inputs for
// expression evaluation. Keys are unique: inserting the same key twice
// panics.
//
// Values is not modified by evaluation, so one container can serve any
// number of expressions.
type Values struct {
	data map[keys.Key]types.Manifold
}

// NewValues returns an empty Values container.
func NewValues() *Values {
	return &Values{data: make(map[keys.Key]types.Manifold)}
}

// Insert binds key to value. It panics if the key is already bound or the
// value is nil.
func (v *Values) Insert(key keys.Key, value types.Manifold) {
	if value == nil {
		Panicf("Values.Insert(%s): value cannot be nil", key)
	}
	if _, found := v.data[key]; found {
		Panicf("Values.Insert(%s): key already bound", key)
	}
	v.data[key] = value
}

// At returns the value bound to key, panicking if the key is missing. See
// Get for the error-returning variant.
func (v *Values) At(key keys.Key) types.Manifold {
	value, found := v.data[key]
	if !found {
		Panicf("Values.At(%s): key not bound", key)
	}
	return value
}

// Get returns the value bound to key, or an error if the key is missing.
func (v *Values) Get(key keys.Key) (types.Manifold, error) {
	value, found := v.data[key]
	if !found {
		return nil, errors.Errorf("Values.Get(%s): key not bound among the %d keys inserted", key, len(v.data))
	}
	return value, nil
}

// Has returns whether key is bound.
func (v *Values) Has(key keys.Key) bool {
	_, found := v.data[key]
	return found
}

// Len returns the number of bound keys.
func (v *Values) Len() int {
	return len(v.data)
}

// Keys returns the bound keys in increasing order.
func (v *Values) Keys() []keys.Key {
	set := types.MakeSet[keys.Key](len(v.data))
	for key := range v.data {
		set.Insert(key)
	}
	return types.Sorted(set)
}

// Memory returns the approximate number of bytes held by the bound values,
// counting 8 bytes per tangent-space dimension.
func (v *Values) Memory() uint64 {
	var total uint64
	for _, value := range v.data {
		total += 8 * uint64(value.Dim())
	}
	return total
}

// String lists the bound keys and values in key order.
func (v *Values) String() string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Values{%d entries", len(v.data)))
	for _, key := range v.Keys() {
		b.WriteString(fmt.Sprintf(", %s: %s", key, v.data[key]))
	}
	b.WriteString("}")
	return b.String()
}
