/*
 * chunks.go, part of spindock.
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

//Chunks splits the range [0,n) in at most parts contiguous chunks of nearly
//equal size, returned as [begin, end) pairs. It returns no chunks for n <= 0.
func Chunks(n, parts int) [][2]int {
	if n <= 0 {
		return nil
	}
	if parts < 1 {
		parts = 1
	}
	if parts > n {
		parts = n
	}
	ret := make([][2]int, 0, parts)
	size, extra := n/parts, n%parts
	begin := 0
	for i := 0; i < parts; i++ {
		end := begin + size
		if i < extra {
			end++
		}
		ret = append(ret, [2]int{begin, end})
		begin = end
	}
	return ret
}
