/*
 * contrib.go, part of spindock.
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

package surfio

import (
	"bufio"
	"io"
	"strconv"
	"strings"
)

//ReadContributions reads a table of atomic fragmental contributions to
//lipophilicity. Each line has a residue name, an atom name and the value.
//Blank lines and lines starting with # are skipped. The keys of the
//returned map are "RES_ATOM", as given by dock.Atom.ResAtom.
func ReadContributions(in io.Reader, name string) (map[string]float64, error) {
	ret := make(map[string]float64)
	s := bufio.NewScanner(in)
	line := 0
	for s.Scan() {
		line++
		f := strings.Fields(s.Text())
		if len(f) == 0 || strings.HasPrefix(f[0], "#") {
			continue
		}
		if len(f) < 3 {
			return nil, badFile(name, line, "%d fields, need residue, atom and value", len(f))
		}
		v, err := strconv.ParseFloat(f[2], 64)
		if err != nil {
			return nil, badFile(name, line, "%v", err)
		}
		ret[f[0]+"_"+f[1]] = v
	}
	if err := s.Err(); err != nil {
		return nil, err
	}
	return ret, nil
}

//ReadContributionsFile reads the contribution table in the file fname.
func ReadContributionsFile(fname string) (map[string]float64, error) {
	f, err := Open(fname)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadContributions(f, fname)
}
