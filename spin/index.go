/*
 * index.go, part of spindock.
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

package spin

import (
	"gonum.org/v1/gonum/spatial/kdtree"
	"gonum.org/v1/gonum/spatial/r3"

	dock "github.com/rmera/spindock"
)

//point is a surface point that remembers its index in the surface.
type point struct {
	r3.Vec
	index int
}

func (p point) coord(d kdtree.Dim) float64 {
	switch d {
	case 0:
		return p.X
	case 1:
		return p.Y
	default:
		return p.Z
	}
}

//Compare returns the signed distance of p from the plane passing through c and
//perpendicular to the dimension d.
func (p point) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	return p.coord(d) - c.(point).coord(d)
}

func (p point) Dims() int { return 3 }

//Distance returns the squared euclidean distance between p and c.
func (p point) Distance(c kdtree.Comparable) float64 {
	d := r3.Sub(p.Vec, c.(point).Vec)
	return r3.Dot(d, d)
}

type points []point

func (p points) Index(i int) kdtree.Comparable        { return p[i] }
func (p points) Len() int                             { return len(p) }
func (p points) Slice(start, end int) kdtree.Interface { return p[start:end] }
func (p points) Pivot(d kdtree.Dim) int {
	return plane{Dim: d, points: p}.Pivot()
}

//plane is the sort.Interface used to find the median of the points along one dimension.
type plane struct {
	kdtree.Dim
	points
}

func (p plane) Less(i, j int) bool {
	return p.points[i].coord(p.Dim) < p.points[j].coord(p.Dim)
}
func (p plane) Swap(i, j int) { p.points[i], p.points[j] = p.points[j], p.points[i] }
func (p plane) Slice(start, end int) kdtree.SortSlicer {
	p.points = p.points[start:end]
	return p
}
func (p plane) Pivot() int { return kdtree.Partition(p, kdtree.MedianOfMedians(p)) }

//Index answers fixed-radius neighbour queries over the points of a surface.
//It is safe for concurrent use.
type Index struct {
	tree *kdtree.Tree
	S    *dock.Surface
}

//NewIndex builds the k-d tree for the points of S.
func NewIndex(S *dock.Surface) *Index {
	pts := make(points, S.Len())
	for i, p := range S.Points() {
		pts[i] = point{Vec: p, index: i}
	}
	return &Index{tree: kdtree.New(pts, false), S: S}
}

//Within appends to dst, and returns, the indexes of the points that are closer
//than radius to q, in no particular order.
func (I *Index) Within(dst []int, q r3.Vec, radius float64) []int {
	r2 := radius * radius
	keep := kdtree.NewDistKeeper(r2)
	I.tree.NearestSet(keep, point{Vec: q, index: -1})
	for _, c := range keep.Heap {
		//the keeper starts with a sentinel with no point.
		if c.Comparable == nil || c.Dist >= r2 {
			continue
		}
		dst = append(dst, c.Comparable.(point).index)
	}
	return dst
}
