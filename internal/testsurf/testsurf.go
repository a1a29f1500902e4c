/*
 * testsurf.go, part of spindock.
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

//Package testsurf builds small synthetic surfaces for the tests of spindock.
package testsurf

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/spatial/r3"

	dock "github.com/rmera/spindock"
)

//Ellipsoid returns n points evenly spread over the ellipsoid with semi-axes
//a, b, c centered at the origin, with their outward normals.
func Ellipsoid(n int, a, b, c float64) (points, normals []r3.Vec) {
	golden := math.Pi * (3 - math.Sqrt(5))
	for i := 0; i < n; i++ {
		z := 1 - 2*(float64(i)+0.5)/float64(n)
		r := math.Sqrt(1 - z*z)
		phi := golden * float64(i)
		u := r3.Vec{X: r * math.Cos(phi), Y: r * math.Sin(phi), Z: z}
		p := r3.Vec{X: a * u.X, Y: b * u.Y, Z: c * u.Z}
		points = append(points, p)
		normals = append(normals, r3.Unit(r3.Vec{X: p.X / (a * a), Y: p.Y / (b * b), Z: p.Z / (c * c)}))
	}
	return points, normals
}

//Cloud returns n pseudo-random points in a box of the given side, with random
//unit normals. The same seed gives the same cloud.
func Cloud(n int, side float64, seed int64) (points, normals []r3.Vec) {
	rnd := rand.New(rand.NewSource(seed))
	for i := 0; i < n; i++ {
		points = append(points, r3.Vec{X: side * rnd.Float64(), Y: side * rnd.Float64(), Z: side * rnd.Float64()})
		var v r3.Vec
		for r3.Norm(v) < 0.1 {
			v = r3.Vec{X: rnd.NormFloat64(), Y: rnd.NormFloat64(), Z: rnd.NormFloat64()}
		}
		normals = append(normals, r3.Unit(v))
	}
	return points, normals
}

//Surface is dock.NewSurface without faces, panicking on error.
func Surface(name string, points, normals []r3.Vec, attrs map[string][]float64) *dock.Surface {
	S, err := dock.NewSurface(name, points, normals, nil, attrs)
	if err != nil {
		panic(err)
	}
	return S
}

//Flipped returns a copy of S, with the given name, where every normal points the other way.
func Flipped(S *dock.Surface, name string) *dock.Surface {
	normals := make([]r3.Vec, S.Len())
	for i, n := range S.Normals() {
		normals[i] = r3.Scale(-1, n)
	}
	attrs := make(map[string][]float64)
	for _, k := range S.AttributeNames() {
		attrs[k], _ = S.Attribute(k)
	}
	return Surface(name, S.Points(), normals, attrs)
}
