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

// Package vector provides Vector, a dense float64 vector backed by gonum's
// mat.VecDense that satisfies the types.Manifold interface, so it can be
// used directly as the value of expression leaves and results.
//
// Jacobians with respect to Vector values are plain `*mat.Dense` matrices.
package vector

import (
	"fmt"
	"math"
	"strings"

	"github.com/gomlx/exceptions"
	"github.com/gomlx/exprgraph/types"
	"gonum.org/v1/gonum/mat"
)

// Vector is a dense float64 vector. The zero value is not usable, create
// one with New or Zeros.
//
// It embeds *mat.VecDense, so all of gonum's vector operations are
// available on it.
type Vector struct {
	*mat.VecDense
}

// New creates a Vector with the given components.
func New(values ...float64) Vector {
	if len(values) == 0 {
		exceptions.Panicf("vector.New: cannot create an empty (zero-dimensional) vector")
	}
	return Vector{mat.NewVecDense(len(values), values)}
}

// Zeros creates a Vector of the given dimension with all components zero.
func Zeros(dim int) Vector {
	if dim <= 0 {
		exceptions.Panicf("vector.Zeros(%d): dimension must be positive", dim)
	}
	return Vector{mat.NewVecDense(dim, nil)}
}

// FromVec wraps an existing mat.VecDense.
func FromVec(v *mat.VecDense) Vector {
	if v == nil || v.Len() == 0 {
		exceptions.Panicf("vector.FromVec: vector is nil or empty")
	}
	return Vector{v}
}

// Dim implements types.Manifold: the dimension of a vector space is its
// length.
func (v Vector) Dim() int {
	return v.Len()
}

// Equals implements types.Manifold. It returns false if other is not a
// Vector or has a different dimension.
func (v Vector) Equals(other types.Manifold, tol float64) bool {
	o, ok := other.(Vector)
	if !ok || o.Len() != v.Len() {
		return false
	}
	for i := 0; i < v.Len(); i++ {
		if math.Abs(v.AtVec(i)-o.AtVec(i)) > tol {
			return false
		}
	}
	return true
}

// String formats the vector as "(v0, v1, ...)".
func (v Vector) String() string {
	parts := make([]string, v.Len())
	for i := range parts {
		parts[i] = fmt.Sprintf("%g", v.AtVec(i))
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// CwiseProduct returns the component-wise (Hadamard) product of v and o.
func (v Vector) CwiseProduct(o Vector) Vector {
	if o.Len() != v.Len() {
		exceptions.Panicf("Vector.CwiseProduct: dimensions differ, %d vs %d", v.Len(), o.Len())
	}
	result := mat.NewVecDense(v.Len(), nil)
	result.MulElemVec(v.VecDense, o.VecDense)
	return Vector{result}
}

// Add returns the component-wise sum of v and the given vectors.
func (v Vector) Add(others ...Vector) Vector {
	result := mat.NewVecDense(v.Len(), nil)
	result.CopyVec(v.VecDense)
	for _, o := range others {
		if o.Len() != v.Len() {
			exceptions.Panicf("Vector.Add: dimensions differ, %d vs %d", v.Len(), o.Len())
		}
		result.AddVec(result, o.VecDense)
	}
	return Vector{result}
}

// Clone returns a copy of v that shares no storage with it.
func (v Vector) Clone() Vector {
	result := mat.NewVecDense(v.Len(), nil)
	result.CopyVec(v.VecDense)
	return Vector{result}
}

// Identity returns the dim×dim identity matrix, the Jacobian of a value
// with respect to itself.
func Identity(dim int) *mat.Dense {
	m := mat.NewDense(dim, dim, nil)
	for i := 0; i < dim; i++ {
		m.Set(i, i, 1)
	}
	return m
}

// Diagonal returns the square matrix with the components of v on the
// diagonal and zeros elsewhere.
func Diagonal(v Vector) *mat.Dense {
	m := mat.NewDense(v.Len(), v.Len(), nil)
	for i := 0; i < v.Len(); i++ {
		m.Set(i, i, v.AtVec(i))
	}
	return m
}
