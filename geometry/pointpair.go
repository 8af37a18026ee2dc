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

// Package geometry shows how a user-defined composite type plugs into the
// expression machinery: PointPair bundles two R³ points, implements
// types.Manifold and exposes differentiable Create/Transform operations
// that can be composed with exprs.Apply1/Apply2.
package geometry

import (
	"fmt"

	"github.com/gomlx/exceptions"
	"github.com/gomlx/exprgraph/types"
	"github.com/gomlx/exprgraph/types/vector"
	"gonum.org/v1/gonum/mat"
)

// pointDim is the dimension of each of the two points of a PointPair.
const pointDim = 3

// PointPair is a composite value of two R³ points. Its tangent space is
// the direct sum of the two points' tangent spaces, so Dim() == 6, with
// the first point's coordinates first.
type PointPair struct {
	first  vector.Vector
	second vector.Vector
}

// NewPointPair creates a PointPair from two 3-dimensional vectors.
func NewPointPair(first, second vector.Vector) PointPair {
	if first.Dim() != pointDim || second.Dim() != pointDim {
		exceptions.Panicf("geometry.NewPointPair: points must have dimension %d, got %d and %d",
			pointDim, first.Dim(), second.Dim())
	}
	return PointPair{first: first.Clone(), second: second.Clone()}
}

// First returns the first point.
func (p PointPair) First() vector.Vector { return p.first }

// Second returns the second point.
func (p PointPair) Second() vector.Vector { return p.second }

// Dim implements types.Manifold.
func (p PointPair) Dim() int { return 2 * pointDim }

// Equals implements types.Manifold: both points must match within tol.
func (p PointPair) Equals(other types.Manifold, tol float64) bool {
	o, ok := other.(PointPair)
	if !ok {
		return false
	}
	return p.first.Equals(o.first, tol) && p.second.Equals(o.second, tol)
}

// String implements types.Manifold.
func (p PointPair) String() string {
	return fmt.Sprintf("PointPair{%s, %s}", p.first, p.second)
}

// Create is the differentiable factory for PointPair, usable with
// exprs.Apply2. The Jacobians with respect to the two points are the 6×3
// blocks [I;0] and [0;I]: each point maps straight into its half of the
// pair's tangent space.
func Create(first, second types.Manifold, jacFirst, jacSecond *mat.Dense) types.Manifold {
	f, ok := first.(vector.Vector)
	if !ok {
		exceptions.Panicf("geometry.Create: first argument must be a vector.Vector, got %T", first)
	}
	s, ok := second.(vector.Vector)
	if !ok {
		exceptions.Panicf("geometry.Create: second argument must be a vector.Vector, got %T", second)
	}
	pair := NewPointPair(f, s)
	if jacFirst != nil {
		jacFirst.Reset()
		jacFirst.ReuseAs(2*pointDim, pointDim)
		jacFirst.Zero()
		for i := 0; i < pointDim; i++ {
			jacFirst.Set(i, i, 1)
		}
	}
	if jacSecond != nil {
		jacSecond.Reset()
		jacSecond.ReuseAs(2*pointDim, pointDim)
		jacSecond.Zero()
		for i := 0; i < pointDim; i++ {
			jacSecond.Set(pointDim+i, i, 1)
		}
	}
	return pair
}

// Transform returns first + second + z. The Jacobian with respect to the
// pair is the 3×6 block [I I]; with respect to z it is the identity.
func (p PointPair) Transform(z vector.Vector, jacPair, jacZ *mat.Dense) vector.Vector {
	if z.Dim() != pointDim {
		exceptions.Panicf("PointPair.Transform: z must have dimension %d, got %d", pointDim, z.Dim())
	}
	if jacPair != nil {
		jacPair.Reset()
		jacPair.ReuseAs(pointDim, 2*pointDim)
		jacPair.Zero()
		for i := 0; i < pointDim; i++ {
			jacPair.Set(i, i, 1)
			jacPair.Set(i, pointDim+i, 1)
		}
	}
	if jacZ != nil {
		jacZ.CloneFrom(vector.Identity(pointDim))
	}
	return p.first.Add(p.second, z)
}

// TransformFn adapts PointPair.Transform to the exprs.BinaryFn signature,
// so a transform node can be built with exprs.Apply2.
func TransformFn(pair, z types.Manifold, jacPair, jacZ *mat.Dense) types.Manifold {
	p, ok := pair.(PointPair)
	if !ok {
		exceptions.Panicf("geometry.TransformFn: first argument must be a PointPair, got %T", pair)
	}
	zv, ok := z.(vector.Vector)
	if !ok {
		exceptions.Panicf("geometry.TransformFn: second argument must be a vector.Vector, got %T", z)
	}
	return p.Transform(zv, jacPair, jacZ)
}
