/*
 * cache.go, part of spindock.
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
	"errors"
	"fmt"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	dock "github.com/rmera/spindock"
)

//Cache keeps the spin image stacks of the most recently used surfaces.
//Stacks are keyed by surface name and descriptor parameters, and each one is
//computed at most once even when requested by several goroutines at the same time.
//A Cache is safe for concurrent use.
type Cache struct {
	stacks *lru.Cache[string, Stack]
	group  singleflight.Group
	hits   atomic.Int64
	misses atomic.Int64
}

//NewCache returns a cache that keeps up to size stacks.
func NewCache(size int) (*Cache, error) {
	l, err := lru.New[string, Stack](size)
	if err != nil {
		return nil, dock.NewError(dock.BadOptions, err.Error(), true, "NewCache")
	}
	return &Cache{stacks: l}, nil
}

func key(S *dock.Surface, radius, binSize float64) string {
	return fmt.Sprintf("%s|%g|%g", S.Name(), radius, binSize)
}

//Stack returns the spin images of S, computing them with ComputeStack if
//they are not in the cache. The second return value is false if this call
//computed the stack. A computation started by a caller whose context is
//then cancelled is started again for the callers that were waiting on it.
func (C *Cache) Stack(ctx context.Context, S *dock.Surface, radius, binSize float64, workers int) (Stack, bool, error) {
	k := key(S, radius, binSize)
	if st, ok := C.stacks.Get(k); ok && len(st) == S.Len() {
		C.hits.Add(1)
		return st, true, nil
	}
	for {
		computed := false
		v, err, shared := C.group.Do(k, func() (interface{}, error) {
			if st, ok := C.stacks.Get(k); ok && len(st) == S.Len() {
				return st, nil
			}
			st, err := ComputeStack(ctx, S, radius, binSize, workers)
			if err != nil {
				if cerr := ctx.Err(); cerr != nil {
					return nil, cerr
				}
				return nil, err
			}
			computed = true
			C.stacks.Add(k, st)
			return st, nil
		})
		if err != nil && shared && ctx.Err() == nil &&
			(errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)) {
			continue
		}
		if err != nil {
			return nil, false, dock.ErrDecorate(err, "Cache.Stack")
		}
		if computed {
			C.misses.Add(1)
		} else {
			C.hits.Add(1)
		}
		return v.(Stack), !computed, nil
	}
}

//Len returns the number of stacks in the cache.
func (C *Cache) Len() int { return C.stacks.Len() }

//Purge empties the cache.
func (C *Cache) Purge() { C.stacks.Purge() }

//Stats returns the number of requests served from the cache and the number
//of stacks computed.
func (C *Cache) Stats() (hits, misses int64) {
	return C.hits.Load(), C.misses.Load()
}
