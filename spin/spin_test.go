/*
 * spin_test.go, part of spindock.
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
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dock "github.com/rmera/spindock"
	"github.com/rmera/spindock/internal/testsurf"
)

func ellipsoid(name string) *dock.Surface {
	p, n := testsurf.Ellipsoid(400, 9, 7, 5)
	return testsurf.Surface(name, p, n, nil)
}

func TestDims(Te *testing.T) {
	r, c := Dims(6, 1)
	assert.Equal(Te, 13, r)
	assert.Equal(Te, 7, c)
	r, c = Dims(6, 0.5)
	assert.Equal(Te, 25, r)
	assert.Equal(Te, 13, c)
	r, c = Dims(5, 2)
	assert.Equal(Te, 6, r)
	assert.Equal(Te, 4, c)
}

func TestWithin(Te *testing.T) {
	S := ellipsoid("e")
	idx := NewIndex(S)
	for _, i := range []int{0, 57, 200, 399} {
		got := idx.Within(nil, S.Point(i), 4)
		sort.Ints(got)
		var want []int
		for j, p := range S.Points() {
			if dock.Distance(p, S.Point(i)) < 4 {
				want = append(want, j)
			}
		}
		assert.Equal(Te, want, got, "point %d", i)
	}
}

func TestImage(Te *testing.T) {
	S := ellipsoid("e")
	I := Compute(NewIndex(S), 10, 6, 1)
	assert.Equal(Te, 10, I.Point())
	var n int
	for _, p := range S.Points() {
		if dock.Distance(p, S.Point(10)) < 6 {
			n++
		}
	}
	//the bilinear weights of each neighbour add up to 1.
	assert.InDelta(Te, float64(n), I.Total(), 1e-9)
	//the base point itself.
	assert.Greater(Te, I.At(6, 0), 0.99)
}

//The image of a point correlates perfectly with the image of the same point
//seen from the other side of the surface.
func TestSelfCorrelation(Te *testing.T) {
	ctx := context.Background()
	S := ellipsoid("e")
	F := testsurf.Flipped(S, "flipped")
	a, err := ComputeStack(ctx, S, 6, 1, 4)
	require.NoError(Te, err)
	b, err := ComputeStack(ctx, F, 6, 1, 3)
	require.NoError(Te, err)
	var C Correlator
	for i := 0; i < S.Len(); i += 13 {
		assert.InDelta(Te, 1.0, C.Correlate(a[i], b[i]), 1e-9, "point %d", i)
		assert.InDelta(Te, C.Correlate(a[i], a[i+1]), C.Correlate(a[i+1], a[i]), 1e-12)
		assert.LessOrEqual(Te, C.Correlate(a[i], a[i+1]), 1.0+1e-12)
	}
}

func TestCorrelationEdgeCases(Te *testing.T) {
	empty := &Image{rows: 13, cols: 7, bins: make([]float64, 13*7)}
	S := ellipsoid("e")
	I := Compute(NewIndex(S), 0, 6, 1)
	assert.Equal(Te, 0.0, Correlation(empty, I))
	assert.Equal(Te, 0.0, Correlation(I, empty))
	other := Compute(NewIndex(S), 0, 6, 0.5)
	assert.Equal(Te, 0.0, Correlation(I, other))
	//a single non-zero bin on each side has no variance.
	one := &Image{rows: 13, cols: 7, bins: make([]float64, 13*7)}
	one.add(6, 0, 1)
	assert.Equal(Te, 0.0, Correlation(one, one))
}

func TestCache(Te *testing.T) {
	C, err := NewCache(2)
	require.NoError(Te, err)
	S := ellipsoid("e")
	var wg sync.WaitGroup
	stacks := make([]Stack, 8)
	for i := range stacks {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			st, _, err := C.Stack(context.Background(), S, 6, 1, 2)
			assert.NoError(Te, err)
			stacks[i] = st
		}(i)
	}
	wg.Wait()
	hits, misses := C.Stats()
	assert.Equal(Te, int64(1), misses)
	assert.Equal(Te, int64(7), hits)
	for _, st := range stacks[1:] {
		assert.Same(Te, stacks[0][0], st[0])
	}
	_, cached, err := C.Stack(context.Background(), S, 6, 0.5, 2)
	require.NoError(Te, err)
	assert.False(Te, cached)
	assert.Equal(Te, 2, C.Len())
	_, err = NewCache(0)
	assert.Error(Te, err)
	_, err = ComputeStack(context.Background(), S, 6, 1, 2)
	require.NoError(Te, err)
	C.Purge()
	assert.Equal(Te, 0, C.Len())
	_, cached, err = C.Stack(context.Background(), S, 6, 1, 2)
	require.NoError(Te, err)
	assert.False(Te, cached)
	assert.Equal(Te, 1, C.Len())
}

//Callers with a live context get the stack even if the goroutine that
//started the computation they wait on was cancelled.
func TestCacheCancelled(Te *testing.T) {
	C, err := NewCache(2)
	require.NoError(Te, err)
	S := ellipsoid("e")
	cancelled, cancel := context.WithCancel(context.Background())
	cancel()
	for round := 0; round < 5; round++ {
		C.Purge()
		var wg sync.WaitGroup
		errs := make([]error, 16)
		for i := range errs {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				ctx := context.Background()
				if i%2 == 0 {
					ctx = cancelled
				}
				_, _, errs[i] = C.Stack(ctx, S, 6, 1, 2)
			}(i)
		}
		wg.Wait()
		for i, err := range errs {
			if i%2 == 1 {
				assert.NoError(Te, err, "round %d, caller %d", round, i)
			}
		}
	}
	st, cached, err := C.Stack(context.Background(), S, 6, 1, 2)
	require.NoError(Te, err)
	assert.True(Te, cached)
	assert.Len(Te, st, S.Len())
}
