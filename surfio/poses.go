/*
 * poses.go, part of spindock.
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
	"encoding/json"
	"io"

	"gonum.org/v1/gonum/mat"

	dock "github.com/rmera/spindock"
	"github.com/rmera/spindock/align"
	"github.com/rmera/spindock/engine"
	"github.com/rmera/spindock/histo"
)

//Pose is the serialized form of a scored pose. Depths counts the moved
//ligand points in each penetration bucket, deepest first.
type Pose struct {
	Rank   int               `json:"rank"`
	Score  float64           `json:"score"`
	Matrix [][]float64       `json:"matrix"`
	Clique []dock.PointMatch `json:"clique,omitempty"`
	Depths *histo.Data       `json:"depths,omitempty"`
}

//Report is the serialized form of a docking run.
type Report struct {
	RunID    string  `json:"run_id"`
	Variant  string  `json:"variant"`
	Receptor string  `json:"receptor"`
	Ligand   string  `json:"ligand"`
	Pairs    int     `json:"pairs"`
	Edges    int     `json:"edges"`
	Cliques  int     `json:"cliques"`
	Elapsed  float64 `json:"elapsed_seconds"`
	Poses    []Pose  `json:"poses"`
	//Depths adds up the depths of all the poses of the run, not only those in the report.
	Depths *histo.Data `json:"depths,omitempty"`
}

//NewReport builds the report of res with at most n poses. If n < 1 all
//poses are included.
func NewReport(res *engine.Result, n int) *Report {
	if n < 1 || n > len(res.Poses) {
		n = len(res.Poses)
	}
	R := &Report{
		RunID:    res.RunID.String(),
		Variant:  res.Variant.String(),
		Receptor: res.Receptor,
		Ligand:   res.Ligand,
		Pairs:    res.Pairs,
		Edges:    res.Edges,
		Cliques:  res.Cliques,
		Elapsed:  res.Elapsed.Seconds(),
		Poses:    make([]Pose, n),
		Depths:   res.Depths,
	}
	for i, p := range res.Poses[:n] {
		R.Poses[i] = Pose{Rank: i + 1, Score: p.Score, Matrix: p.Transform.Rows(), Clique: p.Clique, Depths: p.Depths}
	}
	return R
}

//WritePoses writes the report of res, with at most n poses, as indented JSON.
func WritePoses(out io.Writer, res *engine.Result, n int) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(NewReport(res, n))
}

//ReadReport reads a report written by WritePoses.
func ReadReport(in io.Reader, name string) (*Report, error) {
	R := new(Report)
	if err := json.NewDecoder(in).Decode(R); err != nil {
		return nil, badFile(name, 0, "%v", err)
	}
	return R, nil
}

//ReadPoses reads the transformations of the poses in a report, in rank order.
func ReadPoses(in io.Reader, name string) ([]align.Transform, error) {
	R, err := ReadReport(in, name)
	if err != nil {
		return nil, err
	}
	ret := make([]align.Transform, len(R.Poses))
	for i, p := range R.Poses {
		if len(p.Matrix) != 4 {
			return nil, badFile(name, 0, "pose %d: matrix with %d rows", p.Rank, len(p.Matrix))
		}
		data := make([]float64, 0, 16)
		for _, row := range p.Matrix {
			if len(row) != 4 {
				return nil, badFile(name, 0, "pose %d: matrix row with %d columns", p.Rank, len(row))
			}
			data = append(data, row...)
		}
		ret[i], err = align.FromMatrix(mat.NewDense(4, 4, data))
		if err != nil {
			return nil, dock.ErrDecorate(err, "ReadPoses")
		}
	}
	return ret, nil
}

//ReadPosesFile reads the pose transformations in the report file fname.
func ReadPosesFile(fname string) ([]align.Transform, error) {
	f, err := Open(fname)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadPoses(f, fname)
}
