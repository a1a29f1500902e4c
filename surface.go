/*
 * surface.go, part of spindock.
 *
 * Copyright 2024 Raul Mera <rmera{at}usachDOTcl>
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

package dock

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/spatial/r3"
)

//Names of the per-point attributes the library knows about.
const (
	Electrostatic = "electrostatic"
	Lipophilic    = "lipophilic"
)

//Face is a triangle of a surface mesh, given as 0-based point indexes.
type Face [3]int

//Transformer is anything that can move points and turn vectors.
//align.Transform implements it.
type Transformer interface {
	Apply(p r3.Vec) r3.Vec
	Rotate(v r3.Vec) r3.Vec
}

//Surface is a molecular surface: an ordered set of points, each with its unit
//normal, plus optional per-point scalar attributes. The name identifies the
//surface for caching purposes, so two different surfaces should not share it.
//A Surface is never modified after creation.
type Surface struct {
	name    string
	points  []r3.Vec
	normals []r3.Vec
	faces   []Face
	attrs   map[string][]float64
}

//NewSurface returns a validated surface. Points, normals and attributes are copied.
//Normals are normalized. Faces and attrs can be nil.
func NewSurface(name string, points, normals []r3.Vec, faces []Face, attrs map[string][]float64) (*Surface, error) {
	S := &Surface{
		name:    name,
		points:  append([]r3.Vec(nil), points...),
		normals: make([]r3.Vec, len(normals)),
		faces:   append([]Face(nil), faces...),
		attrs:   make(map[string][]float64, len(attrs)),
	}
	for i, n := range normals {
		l := r3.Norm(n)
		if l == 0 || math.IsNaN(l) || math.IsInf(l, 0) {
			return nil, NewError(BadNormal, fmt.Sprintf("normal %d of %s", i, name), true, "NewSurface")
		}
		S.normals[i] = r3.Scale(1/l, n)
	}
	for k, v := range attrs {
		S.attrs[k] = append([]float64(nil), v...)
	}
	if err := S.Validate(); err != nil {
		return nil, errDecorate(err, "NewSurface")
	}
	return S, nil
}

//Validate checks the surface invariants: there is at least one point, there are as many
//normals as points, every attribute has one value per point and faces refer to existing points.
func (S *Surface) Validate() error {
	if len(S.points) == 0 {
		return NewError(EmptySurface, S.name, true, "Validate")
	}
	if len(S.points) != len(S.normals) {
		return NewError(BadSurface, fmt.Sprintf("%s: %d points, %d normals", S.name, len(S.points), len(S.normals)), true, "Validate")
	}
	for k, v := range S.attrs {
		if len(v) != len(S.points) {
			return NewError(AttributeLength, fmt.Sprintf("%s: attribute %q has %d values for %d points", S.name, k, len(v), len(S.points)), true, "Validate")
		}
	}
	for i, f := range S.faces {
		for _, v := range f {
			if v < 0 || v >= len(S.points) {
				return NewError(BadSurface, fmt.Sprintf("%s: face %d refers to point %d", S.name, i, v), true, "Validate")
			}
		}
	}
	return nil
}

func (S *Surface) Name() string { return S.name }

//Len returns the number of points in the surface.
func (S *Surface) Len() int { return len(S.points) }

func (S *Surface) Point(i int) r3.Vec { return S.points[i] }

func (S *Surface) Normal(i int) r3.Vec { return S.normals[i] }

//Points returns the points of the surface. The slice must not be modified.
func (S *Surface) Points() []r3.Vec { return S.points }

//Normals returns the normals of the surface. The slice must not be modified.
func (S *Surface) Normals() []r3.Vec { return S.normals }

//Faces returns the mesh triangles, if any. The slice must not be modified.
func (S *Surface) Faces() []Face { return S.faces }

//Attribute returns the values of the named per-point attribute, and whether
//the surface has it. The slice must not be modified.
func (S *Surface) Attribute(name string) ([]float64, bool) {
	v, ok := S.attrs[name]
	return v, ok
}

//AttributeNames returns the sorted names of the attributes of the surface.
func (S *Surface) AttributeNames() []string {
	ret := make([]string, 0, len(S.attrs))
	for k := range S.attrs {
		ret = append(ret, k)
	}
	sort.Strings(ret)
	return ret
}

//WithAttribute returns a copy of the surface with the attribute name set to values.
func (S *Surface) WithAttribute(name string, values []float64) (*Surface, error) {
	if len(values) != len(S.points) {
		return nil, NewError(AttributeLength, fmt.Sprintf("%s: attribute %q has %d values for %d points", S.name, name, len(values), len(S.points)), true, "WithAttribute")
	}
	ret := S.shallow()
	ret.attrs = make(map[string][]float64, len(S.attrs)+1)
	for k, v := range S.attrs {
		ret.attrs[k] = v
	}
	ret.attrs[name] = append([]float64(nil), values...)
	return ret, nil
}

//Rename returns a copy of the surface with a different name. Use it when a modified
//surface must not share cached descriptors with the original.
func (S *Surface) Rename(name string) *Surface {
	ret := S.shallow()
	ret.name = name
	return ret
}

func (S *Surface) shallow() *Surface {
	return &Surface{name: S.name, points: S.points, normals: S.normals, faces: S.faces, attrs: S.attrs}
}

//Transform returns a new surface with the points moved by T and the normals rotated
//by it. Name, faces and attributes are shared with the receiver.
func (S *Surface) Transform(T Transformer) *Surface {
	ret := S.shallow()
	ret.points = make([]r3.Vec, len(S.points))
	ret.normals = make([]r3.Vec, len(S.normals))
	for i, p := range S.points {
		ret.points[i] = T.Apply(p)
		ret.normals[i] = r3.Unit(T.Rotate(S.normals[i]))
	}
	return ret
}

//Bounds returns the box that contains all the points, enlarged by margin in every direction.
func (S *Surface) Bounds(margin float64) r3.Box {
	inf := math.Inf(1)
	min := r3.Vec{X: inf, Y: inf, Z: inf}
	max := r3.Vec{X: -inf, Y: -inf, Z: -inf}
	for _, p := range S.points {
		min.X = math.Min(min.X, p.X)
		min.Y = math.Min(min.Y, p.Y)
		min.Z = math.Min(min.Z, p.Z)
		max.X = math.Max(max.X, p.X)
		max.Y = math.Max(max.Y, p.Y)
		max.Z = math.Max(max.Z, p.Z)
	}
	m := r3.Vec{X: margin, Y: margin, Z: margin}
	return r3.Box{Min: r3.Sub(min, m), Max: r3.Add(max, m)}
}

//Diameter returns the largest distance between two points of the surface.
//It is quadratic in the number of points.
func (S *Surface) Diameter() float64 {
	var d float64
	for i, p := range S.points {
		for _, q := range S.points[i+1:] {
			d = math.Max(d, r3.Norm(r3.Sub(p, q)))
		}
	}
	return d
}

//AverageEdgeLength returns the mean length of the edges of the mesh triangles,
//or 0 if the surface has no faces.
func (S *Surface) AverageEdgeLength() float64 {
	if len(S.faces) == 0 {
		return 0
	}
	var sum float64
	for _, f := range S.faces {
		sum += Distance(S.points[f[0]], S.points[f[1]])
		sum += Distance(S.points[f[1]], S.points[f[2]])
		sum += Distance(S.points[f[2]], S.points[f[0]])
	}
	return sum / float64(3*len(S.faces))
}
