/*
 * potential.go, part of spindock.
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

//Package potential computes per-point attributes of a surface from the
//atoms of the molecule it belongs to: a Coulomb electrostatic potential with
//a distance-dependent dielectric, and a molecular lipophilic potential built
//from atomic fragmental contributions.
package potential

import (
	"context"
	"math"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r3"
	"gonum.org/v1/gonum/stat"

	dock "github.com/rmera/spindock"
)

//MinDistance is the smallest distance, in A, used in the Coulomb term.
const MinDistance = 2.0

//Dielectric returns the relative permittivity at distance d (A): 4 up to
//6 A, 80 from 8 A on, and a linear ramp between them.
func Dielectric(d float64) float64 {
	switch {
	case d <= 6:
		return 4
	case d < 8:
		return 38*d - 224
	}
	return 80
}

//Coulomb returns the contribution of a charge q at distance d.
func Coulomb(q, d float64) float64 {
	d = math.Max(MinDistance, d)
	return q / (d * Dielectric(d))
}

//MLP returns the lipophilic contribution of an atom with fragmental
//contribution f at distance d.
func MLP(f, d float64) float64 {
	return 100 * f * math.Exp(-d)
}

//perPoint evaluates f on every point, in parallel chunks.
func perPoint(ctx context.Context, points []r3.Vec, workers int, f func(p r3.Vec) float64) ([]float64, error) {
	ret := make([]float64, len(points))
	g, ctx := errgroup.WithContext(ctx)
	for _, c := range dock.Chunks(len(points), workers) {
		c := c
		g.Go(func() error {
			for i := c[0]; i < c[1]; i++ {
				if (i-c[0])%64 == 0 {
					if err := ctx.Err(); err != nil {
						return err
					}
				}
				ret[i] = f(points[i])
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return ret, nil
}

//Electrostatic returns the electrostatic potential of the atoms at each point,
//as the sum of Coulomb terms over the atomic partial charges.
func Electrostatic(ctx context.Context, points []r3.Vec, atoms []*dock.Atom, workers int) ([]float64, error) {
	charged := make([]*dock.Atom, 0, len(atoms))
	for _, a := range atoms {
		if a.Charge != 0 {
			charged = append(charged, a)
		}
	}
	return perPoint(ctx, points, workers, func(p r3.Vec) float64 {
		var sum float64
		for _, a := range charged {
			sum += Coulomb(a.Charge, r3.Norm(r3.Sub(p, a.Pos)))
		}
		return sum
	})
}

//Lipophilic returns the molecular lipophilic potential of the atoms at each
//point. contrib maps "RES_ATOM" keys to fragmental contributions; atoms
//without an entry do not contribute.
func Lipophilic(ctx context.Context, points []r3.Vec, atoms []*dock.Atom, contrib map[string]float64, workers int) ([]float64, error) {
	type source struct {
		pos r3.Vec
		f   float64
	}
	var known []source
	for _, a := range atoms {
		if f, ok := contrib[a.ResAtom()]; ok {
			known = append(known, source{a.Pos, f})
		}
	}
	return perPoint(ctx, points, workers, func(p r3.Vec) float64 {
		var sum float64
		for _, s := range known {
			sum += MLP(s.f, r3.Norm(r3.Sub(p, s.pos)))
		}
		return sum
	})
}

//Annotate returns a copy of S with the electrostatic attribute computed from
//atoms and, if contrib is not nil, the lipophilic attribute.
func Annotate(ctx context.Context, S *dock.Surface, atoms []*dock.Atom, contrib map[string]float64, workers int) (*dock.Surface, error) {
	e, err := Electrostatic(ctx, S.Points(), atoms, workers)
	if err != nil {
		return nil, dock.ErrDecorate(err, "Annotate")
	}
	ret, err := S.WithAttribute(dock.Electrostatic, e)
	if err != nil {
		return nil, dock.ErrDecorate(err, "Annotate")
	}
	if contrib == nil {
		return ret, nil
	}
	l, err := Lipophilic(ctx, S.Points(), atoms, contrib, workers)
	if err != nil {
		return nil, dock.ErrDecorate(err, "Annotate")
	}
	ret, err = ret.WithAttribute(dock.Lipophilic, l)
	if err != nil {
		return nil, dock.ErrDecorate(err, "Annotate")
	}
	return ret, nil
}

//Summary returns the minimum, maximum and mean of values, or NaNs if
//values is empty.
func Summary(values []float64) (min, max, mean float64) {
	if len(values) == 0 {
		return math.NaN(), math.NaN(), math.NaN()
	}
	return floats.Min(values), floats.Max(values), stat.Mean(values, nil)
}
