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
	. "github.com/gomlx/exceptions"
	"github.com/gomlx/exprgraph/types"
	"github.com/gomlx/exprgraph/types/keys"
	"gonum.org/v1/gonum/mat"
	"k8s.io/klog/v2"
)

// This file implements evaluation of an expression, with Jacobians
// propagated by reverse-mode accumulation.
//
// Conventions used below:
//
//   - root node: the expression ValueAndJacobians was called on. Jacobians
//     are always of the root's output with respect to leaf keys.
//   - local Jacobian: the derivative of one node's output with respect to
//     one of its direct inputs, as filled in by the node's UnaryFn/BinaryFn.
//   - adjoint: the accumulated Jacobian of the root with respect to a
//     node's output. The adjoint of the root is the identity; the adjoint
//     of an input is the sum, over its consumers, of the consumer's adjoint
//     times the consumer's local Jacobian for that input (the chain rule).
//
// The forward pass computes every node's value (and, when requested, its
// local Jacobians) in post-order; the reverse pass then walks the same
// order backwards, so every node's consumers are processed before the node
// itself and adjoints are complete when used.

// Jacobians maps a leaf key to the Jacobian of the evaluated expression's
// output with respect to that key's value.
type Jacobians map[keys.Key]*mat.Dense

// Of returns the Jacobian for the given key, panicking if the expression
// did not depend on it.
//
// The returned matrix is a copy: mutating it does not affect the stored
// Jacobians.
func (j Jacobians) Of(key keys.Key) *mat.Dense {
	jac, found := j[key]
	if !found {
		Panicf("Jacobians.Of(%s): expression does not depend on this key", key)
	}
	clone := &mat.Dense{}
	clone.CloneFrom(jac)
	return clone
}

// nodeEval holds the forward-pass results for one node.
type nodeEval struct {
	expr  *Expr
	value types.Manifold

	// localJacs has one entry per input of expr, filled only when
	// Jacobians were requested.
	localJacs []*mat.Dense
}

// Value evaluates the expression against the given values. No Jacobians
// are computed: the differentiable functions all receive nil Jacobian
// arguments.
func (e *Expr) Value(values *Values) types.Manifold {
	order := e.forward(values, false)
	return order[len(order)-1].value
}

// ValueAndJacobians evaluates the expression and the Jacobians of its
// output with respect to every leaf key it depends on.
//
// A key that appears in several leaves gets the sum of the contributions
// through each occurrence, as the chain rule dictates.
func (e *Expr) ValueAndJacobians(values *Values) (types.Manifold, Jacobians) {
	order := e.forward(values, true)
	root := order[len(order)-1]

	// Reverse sweep: push adjoints from the root towards the leaves.
	adjoints := make(map[*Expr]*mat.Dense, len(order))
	adjoints[root.expr] = identity(root.value.Dim())
	jacobians := make(Jacobians)
	for i := len(order) - 1; i >= 0; i-- {
		node := order[i]
		adjoint := adjoints[node.expr]
		if node.expr.kind == kindLeaf {
			jacobians[node.expr.key] = accumulate(jacobians[node.expr.key], adjoint)
			continue
		}
		for j, input := range node.expr.inputs {
			if input.kind == kindConstant {
				continue
			}
			local := node.localJacs[j]
			rows, cols := adjoint.Dims()
			lRows, lCols := local.Dims()
			if cols != lRows {
				Panicf("expression %q: adjoint (%d×%d) and local Jacobian for input #%d (%d×%d) have "+
					"incompatible dimensions", node.expr.name, rows, cols, j, lRows, lCols)
			}
			var contribution mat.Dense
			contribution.Mul(adjoint, local)
			adjoints[input] = accumulate(adjoints[input], &contribution)
		}
	}
	if klog.V(2).Enabled() {
		klog.Infof("evaluated %s: %d nodes, %d jacobians", e, len(order), len(jacobians))
	}
	return root.value, jacobians
}

// forward evaluates every distinct node reachable from e in post-order,
// returning the evaluation order (root last).
func (e *Expr) forward(values *Values, withJacobians bool) (order []*nodeEval) {
	byExpr := make(map[*Expr]*nodeEval)
	var recurse func(node *Expr) *nodeEval
	recurse = func(node *Expr) *nodeEval {
		if ne, found := byExpr[node]; found {
			return ne
		}
		ne := &nodeEval{expr: node}
		switch node.kind {
		case kindLeaf:
			ne.value = values.At(node.key)
		case kindConstant:
			ne.value = node.constant
		case kindUnary:
			x := recurse(node.inputs[0])
			if withJacobians {
				jac := &mat.Dense{}
				ne.value = node.unary(x.value, jac)
				checkLocalJacobian(node, 0, jac, ne.value, x.value)
				ne.localJacs = []*mat.Dense{jac}
			} else {
				ne.value = node.unary(x.value, nil)
			}
		case kindBinary:
			a := recurse(node.inputs[0])
			b := recurse(node.inputs[1])
			if withJacobians {
				jacA, jacB := &mat.Dense{}, &mat.Dense{}
				ne.value = node.binary(a.value, b.value, jacA, jacB)
				checkLocalJacobian(node, 0, jacA, ne.value, a.value)
				checkLocalJacobian(node, 1, jacB, ne.value, b.value)
				ne.localJacs = []*mat.Dense{jacA, jacB}
			} else {
				ne.value = node.binary(a.value, b.value, nil, nil)
			}
		default:
			Panicf("cannot evaluate invalid expression node")
		}
		if ne.value == nil {
			Panicf("expression %q returned a nil value", node.name)
		}
		byExpr[node] = ne
		order = append(order, ne)
		return ne
	}
	recurse(e)
	return
}

// checkLocalJacobian panics if the function behind node did not fill the
// requested Jacobian, or filled it with the wrong dimensions. Jacobians of
// constant inputs are exempt, they are never used.
func checkLocalJacobian(node *Expr, inputIdx int, jac *mat.Dense, output, input types.Manifold) {
	if node.inputs[inputIdx].kind == kindConstant {
		return
	}
	if jac.IsEmpty() {
		Panicf("expression %q does not provide a Jacobian for input #%d, it cannot be used "+
			"with ValueAndJacobians", node.name, inputIdx)
	}
	rows, cols := jac.Dims()
	if rows != output.Dim() || cols != input.Dim() {
		Panicf("expression %q: Jacobian for input #%d is %d×%d, want %d×%d",
			node.name, inputIdx, rows, cols, output.Dim(), input.Dim())
	}
}

// accumulate adds delta into dst, cloning on first use so callers can hand
// over shared matrices safely.
func accumulate(dst *mat.Dense, delta *mat.Dense) *mat.Dense {
	if dst == nil {
		dst = &mat.Dense{}
		dst.CloneFrom(delta)
		return dst
	}
	dst.Add(dst, delta)
	return dst
}

// identity returns the dim×dim identity matrix.
func identity(dim int) *mat.Dense {
	m := mat.NewDense(dim, dim, nil)
	for i := 0; i < dim; i++ {
		m.Set(i, i, 1)
	}
	return m
}
