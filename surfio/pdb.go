/*
 * pdb.go, part of spindock.
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
	"fmt"
	"io"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"

	dock "github.com/rmera/spindock"
)

//Structure is the content of the ATOM and HETATM records of a PDB or PQR
//file. Only the first model is read. The records are kept so the structure
//can be written back with other coordinates.
type Structure struct {
	Atoms []*dock.Atom
	lines []string
	pqr   bool
}

//Coords returns the positions of the atoms.
func (S *Structure) Coords() []r3.Vec {
	ret := make([]r3.Vec, len(S.Atoms))
	for i, a := range S.Atoms {
		ret[i] = a.Pos
	}
	return ret
}

func isAtom(line string) bool {
	return strings.HasPrefix(line, "ATOM") || strings.HasPrefix(line, "HETATM")
}

func field(line string, from, to int) string {
	if from >= len(line) {
		return ""
	}
	if to > len(line) {
		to = len(line)
	}
	return strings.TrimSpace(line[from:to])
}

//readPDBLine parses a fixed-column ATOM or HETATM record.
func readPDBLine(line string) (*dock.Atom, error) {
	if len(line) < 54 {
		return nil, fmt.Errorf("record too short (%d characters)", len(line))
	}
	var err error
	errs := make([]error, 3)
	at := new(dock.Atom)
	at.ID, err = strconv.Atoi(field(line, 6, 11))
	if err != nil {
		at.ID = -1 //serials overflow in large structures.
	}
	at.Name = field(line, 12, 16)
	at.MolName = field(line, 17, 20)
	at.Chain = field(line, 21, 22)
	at.MolID, _ = strconv.Atoi(field(line, 22, 26))
	at.Pos.X, errs[0] = strconv.ParseFloat(field(line, 30, 38), 64)
	at.Pos.Y, errs[1] = strconv.ParseFloat(field(line, 38, 46), 64)
	at.Pos.Z, errs[2] = strconv.ParseFloat(field(line, 46, 54), 64)
	for _, e := range errs {
		if e != nil {
			return nil, e
		}
	}
	return at, nil
}

//readPQRLine parses a whitespace-separated PQR record: record, serial, name,
//residue, optional chain, residue number, x, y, z, charge and radius.
func readPQRLine(line string) (*dock.Atom, error) {
	f := strings.Fields(line)
	if len(f) < 10 {
		return nil, fmt.Errorf("PQR record with %d fields", len(f))
	}
	n := len(f)
	vals := make([]float64, 5)
	for i, s := range f[n-5:] {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, err
		}
		vals[i] = v
	}
	at := new(dock.Atom)
	at.ID, _ = strconv.Atoi(f[1])
	at.Name = f[2]
	at.MolName = f[3]
	resid := f[n-6]
	if n >= 11 {
		at.Chain = f[4]
	}
	at.MolID, _ = strconv.Atoi(resid)
	at.Pos = r3.Vec{X: vals[0], Y: vals[1], Z: vals[2]}
	at.Charge = vals[3]
	at.Radius = vals[4]
	return at, nil
}

func readStructure(in io.Reader, name string, pqr bool) (*Structure, error) {
	parse := readPDBLine
	if pqr {
		parse = readPQRLine
	}
	S := &Structure{pqr: pqr}
	s := bufio.NewScanner(in)
	line := 0
	for s.Scan() {
		line++
		l := s.Text()
		if strings.HasPrefix(l, "ENDMDL") {
			break
		}
		if !isAtom(l) {
			continue
		}
		at, err := parse(l)
		if err != nil {
			return nil, badFile(name, line, "%v", err)
		}
		S.Atoms = append(S.Atoms, at)
		S.lines = append(S.lines, l)
	}
	if err := s.Err(); err != nil {
		return nil, err
	}
	return S, nil
}

//ReadPDB reads the atoms of the first model of PDB data.
func ReadPDB(in io.Reader, name string) (*Structure, error) {
	return readStructure(in, name, false)
}

//ReadPQR reads the atoms, with their charges and radii, of PQR data.
func ReadPQR(in io.Reader, name string) (*Structure, error) {
	return readStructure(in, name, true)
}

//ReadStructureFile reads a PQR file if the name (without compression
//extension) ends in .pqr, and a PDB file otherwise.
func ReadStructureFile(fname string) (*Structure, error) {
	f, err := Open(fname)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	n := strings.ToLower(fname)
	for _, ext := range []string{".gz", ".zst", ".zstd"} {
		n = strings.TrimSuffix(n, ext)
	}
	if strings.HasSuffix(n, ".pqr") {
		return ReadPQR(f, fname)
	}
	return ReadPDB(f, fname)
}

//WritePDB writes the records of S with the atoms moved by T. Only the
//coordinate columns (31-54) of each PDB record change. Records read from
//PQR data are written as new PDB ATOM records.
func WritePDB(out io.Writer, S *Structure, T dock.Transformer) error {
	w := bufio.NewWriter(out)
	for i, l := range S.lines {
		at := S.Atoms[i]
		p := T.Apply(at.Pos)
		coords := fmt.Sprintf("%8.3f%8.3f%8.3f", p.X, p.Y, p.Z)
		if !S.pqr && len(l) >= 54 {
			fmt.Fprintf(w, "%s%s%s\n", l[:30], coords, l[54:])
			continue
		}
		name := at.Name
		if len(name) < 4 {
			name = " " + name
		}
		chain := at.Chain
		if chain == "" {
			chain = " "
		}
		fmt.Fprintf(w, "ATOM  %5d %-4s %3s %1s%4d    %s%6.2f%6.2f\n", at.ID%100000, name, at.MolName, chain[:1], at.MolID%10000, coords, 1.0, 0.0)
	}
	fmt.Fprint(w, "END\n")
	return w.Flush()
}
