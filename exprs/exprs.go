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

// Package exprs implements a small automatic-differentiation expression
// graph over vector-valued functions.
//
// The main elements of the package are:
//
//   - Expr: a node of the expression graph. Leaves refer to named inputs by
//     a symbolic keys.Key; inner nodes apply a differentiable function to
//     the values of their inputs. Expressions are immutable once built and
//     may share sub-expressions (the graph is a DAG, not necessarily a tree).
//
//   - Values: the container supplying concrete values for the leaves at
//     evaluation time, a mapping from keys.Key to types.Manifold.
//
//   - Evaluation: Expr.Value evaluates the expression alone, while
//     Expr.ValueAndJacobians additionally propagates Jacobians from the
//     root back to every distinct leaf key using the chain rule.
//
// Differentiable functions follow an optional-Jacobian convention: they
// take one `*mat.Dense` output argument per input, and fill it with the
// local Jacobian (d output / d input) only when it is non-nil:
//
//	func Square(x types.Manifold, jac *mat.Dense) types.Manifold {
//		v := x.(vector.Vector)
//		if jac != nil {
//			jac.CloneFrom(...)  // d Square(v) / d v
//		}
//		return v.CwiseProduct(v)
//	}
//
//	x := exprs.Leaf('x', 1)
//	y := exprs.Apply1(Square, x)
//	z := exprs.Apply1(Square, y)
//
//	values := exprs.NewValues()
//	values.Insert(keys.Symbol('x', 1), vector.New(1, 2, 3))
//	result, jacobians := z.ValueAndJacobians(values)
//	// jacobians[keys.Symbol('x', 1)] is dz/dx.
//
// Value never asks the functions for Jacobians (it always passes nil), so
// evaluation without derivatives costs no matrix work.
//
// Error handling follows the panic discipline of github.com/gomlx/exceptions:
// structural mistakes (missing keys, functions that do not provide a
// requested Jacobian, dimension mismatches) panic with a formatted error,
// to be caught at the top level with exceptions.TryCatch.
package exprs

import (
	"fmt"
	"reflect"
	"runtime"
	"strings"

	. "github.com/gomlx/exceptions"
	"github.com/gomlx/exprgraph/types"
	"github.com/gomlx/exprgraph/types/keys"
	"gonum.org/v1/gonum/mat"
)

// UnaryFn is a differentiable function of one value. When jac is non-nil
// the function must fill it with the Jacobian of the output with respect
// to x, an output.Dim()×x.Dim() matrix.
type UnaryFn func(x types.Manifold, jac *mat.Dense) types.Manifold

// BinaryFn is a differentiable function of two values. When jacA (jacB) is
// non-nil the function must fill it with the Jacobian of the output with
// respect to a (b).
type BinaryFn func(a, b types.Manifold, jacA, jacB *mat.Dense) types.Manifold

type exprKind int

const (
	kindInvalid exprKind = iota
	kindLeaf
	kindConstant
	kindUnary
	kindBinary
)

// Expr is a node in an expression graph. Build expressions with Leaf,
// Constant, Apply1 and Apply2; evaluate them with Value or
// ValueAndJacobians.
//
// Expr values are immutable and safe to share among larger expressions.
type Expr struct {
	kind exprKind

	key      keys.Key       // kindLeaf
	constant types.Manifold // kindConstant

	name   string // function name, for printing
	unary  UnaryFn
	binary BinaryFn
	inputs []*Expr
}

// Leaf returns an expression that evaluates to the value bound to
// keys.Symbol(chr, index) in the Values container.
func Leaf(chr rune, index uint64) *Expr {
	return LeafKey(keys.Symbol(chr, index))
}

// LeafKey is like Leaf for an already-constructed Key.
func LeafKey(key keys.Key) *Expr {
	if key == 0 {
		Panicf("exprs.LeafKey: invalid (zero) key")
	}
	return &Expr{kind: kindLeaf, key: key}
}

// Constant returns an expression that always evaluates to value. It has no
// keys, and no Jacobians are propagated through it.
func Constant(value types.Manifold) *Expr {
	if value == nil {
		Panicf("exprs.Constant: value cannot be nil")
	}
	return &Expr{kind: kindConstant, constant: value}
}

// Apply1 returns the expression fn(x).
func Apply1(fn UnaryFn, x *Expr) *Expr {
	if fn == nil || x == nil {
		Panicf("exprs.Apply1: function and input must be non-nil")
	}
	return &Expr{kind: kindUnary, name: fnName(fn), unary: fn, inputs: []*Expr{x}}
}

// Apply2 returns the expression fn(a, b).
func Apply2(fn BinaryFn, a, b *Expr) *Expr {
	if fn == nil || a == nil || b == nil {
		Panicf("exprs.Apply2: function and inputs must be non-nil")
	}
	return &Expr{kind: kindBinary, name: fnName(fn), binary: fn, inputs: []*Expr{a, b}}
}

// fnName extracts a short printable name for a function value, used by
// Expr.String. Closures come out as the enclosing function plus ".funcN".
func fnName(fn any) string {
	f := runtime.FuncForPC(reflect.ValueOf(fn).Pointer())
	if f == nil {
		return "fn"
	}
	name := f.Name()
	if idx := strings.LastIndexByte(name, '/'); idx >= 0 {
		name = name[idx+1:]
	}
	if idx := strings.IndexByte(name, '.'); idx >= 0 {
		name = name[idx+1:]
	}
	return name
}

// Keys returns the set of leaf keys this expression depends on.
func (e *Expr) Keys() types.Set[keys.Key] {
	set := types.MakeSet[keys.Key]()
	e.visit(func(node *Expr) {
		if node.kind == kindLeaf {
			set.Insert(node.key)
		}
	})
	return set
}

// SortedKeys returns the leaf keys in increasing order.
func (e *Expr) SortedKeys() []keys.Key {
	return types.Sorted(e.Keys())
}

// Dims returns the dimension of each leaf key, looked up in the given
// Values container. It panics if any key is missing from values.
func (e *Expr) Dims(values *Values) map[keys.Key]int {
	dims := make(map[keys.Key]int)
	for key := range e.Keys() {
		dims[key] = values.At(key).Dim()
	}
	return dims
}

// NumNodes returns the number of distinct nodes in the expression graph.
func (e *Expr) NumNodes() int {
	count := 0
	e.visit(func(*Expr) { count++ })
	return count
}

// visit calls fn once for every distinct node of the DAG, in post-order.
func (e *Expr) visit(fn func(*Expr)) {
	seen := make(map[*Expr]bool)
	var recurse func(node *Expr)
	recurse = func(node *Expr) {
		if seen[node] {
			return
		}
		seen[node] = true
		for _, input := range node.inputs {
			recurse(input)
		}
		fn(node)
	}
	recurse(e)
}

// String renders the expression as a function-call chain, e.g. "g(f(x1))".
func (e *Expr) String() string {
	switch e.kind {
	case kindLeaf:
		return e.key.String()
	case kindConstant:
		return fmt.Sprintf("const%s", e.constant)
	case kindUnary, kindBinary:
		parts := make([]string, len(e.inputs))
		for i, input := range e.inputs {
			parts[i] = input.String()
		}
		return fmt.Sprintf("%s(%s)", e.name, strings.Join(parts, ", "))
	}
	return "invalid"
}
