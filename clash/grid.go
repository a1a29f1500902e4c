/*
 * grid.go, part of spindock.
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

package clash

import (
	"context"
	"fmt"
	"math"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/spatial/r3"

	dock "github.com/rmera/spindock"
)

//Field gives the signed distance from any point in space to a surface,
//positive outside and negative inside.
type Field interface {
	Distance(p r3.Vec) float64
}

//Grid is a signed distance field sampled on a regular grid around a surface.
//A cell holds the signed distance to the surface point, among those within
//the splat window, closest to the cell. Cells that no surface point reaches
//hold math.MaxFloat64. A Grid is read-only after construction and can be
//used from several goroutines.
type Grid struct {
	min, max r3.Vec
	step     float64
	nx, ny   int
	nz       int
	dist     []float64
}

//signed returns the distance from p to c, negative if c is on the inner side
//of the plane with normal n through p.
func signed(p, n, c r3.Vec) float64 {
	k := r3.Sub(c, p)
	d := r3.Norm(k)
	if r3.Dot(n, k) >= 0 {
		return d
	}
	return -d
}

//NewGrid builds the distance grid of S. The grid covers the bounding box
//of S enlarged by margin, with cells every step A. Each surface point sets
//the cells within window A (per axis) of it. The points are split among
//workers goroutines, each filling a grid of its own, and the partial grids are
//merged keeping, per cell, the value with the smaller magnitude.
func NewGrid(ctx context.Context, S *dock.Surface, step, margin, window float64, workers int) (*Grid, error) {
	if S.Len() == 0 {
		return nil, dock.NewError(dock.EmptySurface, S.Name(), true, "NewGrid")
	}
	if !(step > 0) || !(window > 0) || !(margin >= 0) {
		return nil, dock.NewError(dock.BadOptions, fmt.Sprintf("grid step %g, margin %g, window %g", step, margin, window), true, "NewGrid")
	}
	box := S.Bounds(margin)
	G := &Grid{min: box.Min, max: box.Max, step: step}
	G.nx = int(math.Round((box.Max.X-box.Min.X)/step)) + 1
	G.ny = int(math.Round((box.Max.Y-box.Min.Y)/step)) + 1
	G.nz = int(math.Round((box.Max.Z-box.Min.Z)/step)) + 1
	cells := G.nx * G.ny * G.nz
	k := int(math.Round(window / step))

	chunks := dock.Chunks(S.Len(), workers)
	partial := make([][]float64, len(chunks))
	g, gctx := errgroup.WithContext(ctx)
	for n, c := range chunks {
		n, c := n, c
		g.Go(func() error {
			d := newCells(cells)
			for i := c[0]; i < c[1]; i++ {
				if i%64 == 0 {
					if err := gctx.Err(); err != nil {
						return err
					}
				}
				G.splat(d, S.Point(i), S.Normal(i), k)
			}
			partial[n] = d
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, dock.ErrDecorate(err, "NewGrid")
	}
	G.dist = partial[0]
	if len(partial) == 1 {
		return G, nil
	}
	//the merge is split over cell ranges, keeping the chunk order within each cell.
	g, gctx = errgroup.WithContext(ctx)
	for _, c := range dock.Chunks(cells, workers) {
		c := c
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			for _, d := range partial[1:] {
				for i := c[0]; i < c[1]; i++ {
					if math.Abs(G.dist[i]) > math.Abs(d[i]) {
						G.dist[i] = d[i]
					}
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, dock.ErrDecorate(err, "NewGrid")
	}
	return G, nil
}

func newCells(n int) []float64 {
	d := make([]float64, n)
	for i := range d {
		d[i] = math.MaxFloat64
	}
	return d
}

//splat writes the signed distance from p to every cell within k cells
//of it, where it is smaller in magnitude than the current value.
func (G *Grid) splat(d []float64, p, n r3.Vec, k int) {
	kx, ky, kz := G.cell(p)
	for iz := max(0, kz-k); iz <= min(G.nz-1, kz+k); iz++ {
		for iy := max(0, ky-k); iy <= min(G.ny-1, ky+k); iy++ {
			for ix := max(0, kx-k); ix <= min(G.nx-1, kx+k); ix++ {
				i := G.index(ix, iy, iz)
				s := signed(p, n, G.center(ix, iy, iz))
				if math.Abs(d[i]) > math.Abs(s) {
					d[i] = s
				}
			}
		}
	}
}

func (G *Grid) cell(p r3.Vec) (int, int, int) {
	return int(math.Round((p.X - G.min.X) / G.step)),
		int(math.Round((p.Y - G.min.Y) / G.step)),
		int(math.Round((p.Z - G.min.Z) / G.step))
}

func (G *Grid) index(ix, iy, iz int) int {
	return ix + iy*G.nx + iz*G.nx*G.ny
}

func (G *Grid) center(ix, iy, iz int) r3.Vec {
	return r3.Vec{
		X: G.min.X + float64(ix)*G.step,
		Y: G.min.Y + float64(iy)*G.step,
		Z: G.min.Z + float64(iz)*G.step,
	}
}

//Contains returns true if p is within the bounds of the grid.
func (G *Grid) Contains(p r3.Vec) bool {
	return p.X >= G.min.X && p.Y >= G.min.Y && p.Z >= G.min.Z &&
		p.X <= G.max.X && p.Y <= G.max.Y && p.Z <= G.max.Z
}

//Distance returns the value of the cell nearest to p, or +Inf if p is
//outside the grid.
func (G *Grid) Distance(p r3.Vec) float64 {
	if !G.Contains(p) {
		return math.Inf(1)
	}
	ix, iy, iz := G.cell(p)
	return G.dist[G.index(ix, iy, iz)]
}

//Snap returns the center of the cell nearest to p, and false if p is outside the grid.
func (G *Grid) Snap(p r3.Vec) (r3.Vec, bool) {
	if !G.Contains(p) {
		return r3.Vec{}, false
	}
	return G.center(G.cell(p)), true
}

//Dims returns the number of cells along each axis.
func (G *Grid) Dims() (nx, ny, nz int) { return G.nx, G.ny, G.nz }

func (G *Grid) Step() float64 { return G.step }

func (G *Grid) Bounds() r3.Box { return r3.Box{Min: G.min, Max: G.max} }

//SignedDistance returns the signed distance from c to the closest point of S,
//by brute force. The sign is given by the normal of that point.
//The first point wins among equally close ones.
func SignedDistance(S *dock.Surface, c r3.Vec) float64 {
	ret := math.MaxFloat64
	for i, p := range S.Points() {
		s := signed(p, S.Normal(i), c)
		if math.Abs(ret) > math.Abs(s) {
			ret = s
		}
	}
	return ret
}

//MaxPenetration returns the most negative distance of the points in F,
//or +Inf if there are no points.
func MaxPenetration(F Field, points []r3.Vec) float64 {
	ret := math.Inf(1)
	for _, p := range points {
		ret = math.Min(ret, F.Distance(p))
	}
	return ret
}
