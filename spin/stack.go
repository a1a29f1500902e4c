/*
 * stack.go, part of spindock.
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
	"context"

	"golang.org/x/sync/errgroup"

	dock "github.com/rmera/spindock"
)

//ComputeStack returns the spin images of every point of S, computed by
//workers goroutines.
func ComputeStack(ctx context.Context, S *dock.Surface, radius, binSize float64, workers int) (Stack, error) {
	if S.Len() == 0 {
		return nil, dock.NewError(dock.EmptySurface, S.Name(), true, "ComputeStack")
	}
	idx := NewIndex(S)
	stack := make(Stack, S.Len())
	g, ctx := errgroup.WithContext(ctx)
	for _, c := range dock.Chunks(S.Len(), workers) {
		c := c
		g.Go(func() error {
			var neigh []int
			for i := c[0]; i < c[1]; i++ {
				if i%256 == 0 {
					if err := ctx.Err(); err != nil {
						return err
					}
				}
				stack[i], neigh = compute(idx, i, radius, binSize, neigh)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, dock.ErrDecorate(err, "ComputeStack")
	}
	return stack, nil
}
