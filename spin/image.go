/*
 * image.go, part of spindock.
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
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r3"
	"gonum.org/v1/gonum/stat"
)

//Image is the spin image of one surface point: a 2D histogram of the
//neighbouring points within a radius, over their height along the normal
//(rows, from +radius down to -radius) and their distance to the normal line
//(columns). Each neighbour is spread over the 4 closest bins by bilinear
//interpolation. An Image is never modified after creation.
type Image struct {
	point int
	rows  int
	cols  int
	bins  []float64
}

//Dims returns the number of rows and columns of the spin images computed with
//the given radius and bin size. With 2*radius/binSize an integer, reflecting the
//rows of an image maps it exactly onto the image of the same point with the
//normal flipped.
func Dims(radius, binSize float64) (rows, cols int) {
	rows = int(math.Ceil(2*radius/binSize)) + 1
	cols = int(math.Ceil(radius/binSize)) + 1
	return rows, cols
}

//Compute returns the spin image of the point i of the surface indexed by idx.
func Compute(idx *Index, i int, radius, binSize float64) *Image {
	I, _ := compute(idx, i, radius, binSize, nil)
	return I
}

//compute returns the image and the neighbour buffer, for reuse.
func compute(idx *Index, i int, radius, binSize float64, neigh []int) (*Image, []int) {
	S := idx.S
	rows, cols := Dims(radius, binSize)
	I := &Image{point: i, rows: rows, cols: cols, bins: make([]float64, rows*cols)}
	base := S.Point(i)
	normal := S.Normal(i)
	neigh = idx.Within(neigh[:0], base, radius)
	for _, k := range neigh {
		v := r3.Sub(S.Point(k), base)
		b := r3.Dot(normal, v)
		a := math.Sqrt(math.Max(0, r3.Dot(v, v)-b*b))
		x := (radius - b) / binSize
		y := a / binSize
		r := int(math.Floor(x))
		c := int(math.Floor(y))
		//rounding can put a point right at the border.
		r = min(max(r, 0), rows-2)
		c = min(max(c, 0), cols-2)
		fa := x - float64(r)
		fb := y - float64(c)
		I.add(r, c, (1-fa)*(1-fb))
		I.add(r+1, c, fa*(1-fb))
		I.add(r, c+1, (1-fa)*fb)
		I.add(r+1, c+1, fa*fb)
	}
	return I, neigh
}

func (I *Image) add(r, c int, w float64) {
	I.bins[r*I.cols+c] += w
}

//Point returns the index of the surface point the image belongs to.
func (I *Image) Point() int { return I.point }

func (I *Image) Dims() (rows, cols int) { return I.rows, I.cols }

func (I *Image) At(r, c int) float64 { return I.bins[r*I.cols+c] }

//Total returns the accumulated weight in the image.
func (I *Image) Total() float64 { return floats.Sum(I.bins) }

//Correlator computes image correlations, reusing its buffers.
//A Correlator must not be used by more than one goroutine at a time.
type Correlator struct {
	p, q []float64
}

//Correlate returns the Pearson correlation between a and b reflected along
//the depth axis, so that row k of a is compared with row rows-1-k of b.
//Only bins where at least one of the images is non-zero are taken into account.
//It returns 0 if either image is empty, if the coefficient is undefined,
//or if the images have different dimensions.
func (C *Correlator) Correlate(a, b *Image) float64 {
	if a.rows != b.rows || a.cols != b.cols {
		return 0
	}
	C.p = C.p[:0]
	C.q = C.q[:0]
	var sumP, sumQ float64
	for r := 0; r < a.rows; r++ {
		arow := a.bins[r*a.cols : (r+1)*a.cols]
		brow := b.bins[(b.rows-1-r)*b.cols : (b.rows-r)*b.cols]
		for c, p := range arow {
			q := brow[c]
			if p != 0 || q != 0 {
				C.p = append(C.p, p)
				C.q = append(C.q, q)
				sumP += p
				sumQ += q
			}
		}
	}
	if sumP == 0 || sumQ == 0 {
		return 0
	}
	corr := stat.Correlation(C.p, C.q, nil)
	if math.IsNaN(corr) || math.IsInf(corr, 0) {
		return 0
	}
	return corr
}

//Correlation is Correlator.Correlate with fresh buffers.
func Correlation(a, b *Image) float64 {
	var C Correlator
	return C.Correlate(a, b)
}

//Stack is the list of spin images of every point of a surface, in point order.
type Stack []*Image
