/*
 * obj.go, part of spindock.
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

//Package surfio reads and writes the files around a docking run: OBJ
//surfaces, PDB and PQR structures, fragmental contribution tables and
//ranked poses. Files with a .gz or .zst extension are compressed.
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

func badFile(name string, line int, format string, a ...interface{}) error {
	return dock.NewError(dock.BadFile, fmt.Sprintf("%s:%d: ", name, line)+fmt.Sprintf(format, a...), true)
}

func parseVec(f []string) (r3.Vec, error) {
	var c [3]float64
	var err error
	for i := range c {
		c[i], err = strconv.ParseFloat(f[i], 64)
		if err != nil {
			return r3.Vec{}, err
		}
	}
	return r3.Vec{X: c[0], Y: c[1], Z: c[2]}, nil
}

//ReadOBJ reads a surface from Wavefront OBJ data. Only the v, vn and f
//records are read; there must be one vn per v, in the same order. Faces are
//triangles with 1-based vertex indexes, written as "i", "i/t", "i//n" or
//"i/t/n". The name identifies the surface in the descriptor cache.
func ReadOBJ(in io.Reader, name string) (*dock.Surface, error) {
	var points, normals []r3.Vec
	var faces []dock.Face
	s := bufio.NewScanner(in)
	s.Buffer(make([]byte, 64*1024), 1024*1024)
	line := 0
	for s.Scan() {
		line++
		f := strings.Fields(s.Text())
		if len(f) == 0 || strings.HasPrefix(f[0], "#") {
			continue
		}
		switch f[0] {
		case "v", "vn":
			if len(f) < 4 {
				return nil, badFile(name, line, "%s record with %d values", f[0], len(f)-1)
			}
			v, err := parseVec(f[1:4])
			if err != nil {
				return nil, badFile(name, line, "%v", err)
			}
			if f[0] == "v" {
				points = append(points, v)
			} else {
				normals = append(normals, v)
			}
		case "f":
			if len(f) != 4 {
				return nil, badFile(name, line, "only triangular faces are supported, got %d vertices", len(f)-1)
			}
			var face dock.Face
			for i, v := range f[1:] {
				n, err := strconv.Atoi(strings.SplitN(v, "/", 2)[0])
				if err != nil {
					return nil, badFile(name, line, "%v", err)
				}
				face[i] = n - 1
			}
			faces = append(faces, face)
		}
	}
	if err := s.Err(); err != nil {
		return nil, err
	}
	S, err := dock.NewSurface(name, points, normals, faces, nil)
	if err != nil {
		return nil, dock.ErrDecorate(err, "ReadOBJ")
	}
	return S, nil
}

//ReadOBJFile reads the OBJ file fname. If name is empty, the file name is
//used as the name of the surface.
func ReadOBJFile(fname, name string) (*dock.Surface, error) {
	f, err := Open(fname)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	if name == "" {
		name = fname
	}
	return ReadOBJ(f, name)
}

//WriteOBJ writes the points, normals and faces of S as OBJ.
func WriteOBJ(out io.Writer, S *dock.Surface) error {
	w := bufio.NewWriter(out)
	fmt.Fprintf(w, "# %s, written by spindock\n", S.Name())
	for _, p := range S.Points() {
		fmt.Fprintf(w, "v %.6f %.6f %.6f\n", p.X, p.Y, p.Z)
	}
	for _, n := range S.Normals() {
		fmt.Fprintf(w, "vn %.6f %.6f %.6f\n", n.X, n.Y, n.Z)
	}
	for _, f := range S.Faces() {
		fmt.Fprintf(w, "f %d//%d %d//%d %d//%d\n", f[0]+1, f[0]+1, f[1]+1, f[1]+1, f[2]+1, f[2]+1)
	}
	return w.Flush()
}

//WritePLY writes S as an ASCII PLY mesh where the points in highlight are
//red and the rest are white. It is meant to show the points of a clique.
func WritePLY(out io.Writer, S *dock.Surface, highlight []int) error {
	hl := make(map[int]bool, len(highlight))
	for _, i := range highlight {
		hl[i] = true
	}
	w := bufio.NewWriter(out)
	fmt.Fprintf(w, "ply\nformat ascii 1.0\ncomment %s\n", S.Name())
	fmt.Fprintf(w, "element vertex %d\n", S.Len())
	for _, p := range []string{"x", "y", "z", "nx", "ny", "nz"} {
		fmt.Fprintf(w, "property float %s\n", p)
	}
	fmt.Fprint(w, "property uchar red\nproperty uchar green\nproperty uchar blue\n")
	fmt.Fprintf(w, "element face %d\nproperty list uchar int vertex_indices\nend_header\n", len(S.Faces()))
	for i, p := range S.Points() {
		n := S.Normal(i)
		gb := 255
		if hl[i] {
			gb = 0
		}
		fmt.Fprintf(w, "%.6f %.6f %.6f %.6f %.6f %.6f 255 %d %d\n", p.X, p.Y, p.Z, n.X, n.Y, n.Z, gb, gb)
	}
	for _, f := range S.Faces() {
		fmt.Fprintf(w, "3 %d %d %d\n", f[0], f[1], f[2])
	}
	return w.Flush()
}
