/*
 * histo.go, part of spindock.
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

//Package histo implements histograms with fixed dividers on top of gonum's stat.Histogram.
//spindock uses them to count penetration depths in buckets.
package histo

import (
	"encoding/json"
	"errors"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

//Data is a histogram. Bin i counts the values v with dividers[i] <= v < dividers[i+1].
//Values outside [dividers[0], dividers[len(dividers)-1]) are not counted.
type Data struct {
	total    int
	dividers []float64
	histo    []float64
}

type jsonData struct {
	Total    int       `json:"total"`
	Dividers []float64 `json:"dividers"`
	Histo    []float64 `json:"histo"`
}

func (D *Data) MarshalJSON() ([]byte, error) {
	return json.Marshal(jsonData{Total: D.total, Dividers: D.dividers, Histo: D.histo})
}

//UnmarshalJSON reads a histogram written by MarshalJSON. It fails if
//the dividers are not sorted or do not match the number of bins.
func (D *Data) UnmarshalJSON(b []byte) error {
	var j jsonData
	if err := json.Unmarshal(b, &j); err != nil {
		return err
	}
	if len(j.Dividers) < 2 || !sort.Float64sAreSorted(j.Dividers) || len(j.Histo) != len(j.Dividers)-1 {
		return errors.New("spindock/histo: ill-formed histogram")
	}
	D.total, D.dividers, D.histo = j.Total, j.Dividers, j.Histo
	return nil
}

//NewData returns a new histogram from the dividers and rawdata given.
//rawdata can be nil. In that case, an empty histogram is created.
//It panics if there are fewer than 2 dividers or they are not sorted.
func NewData(dividers []float64, rawdata []float64) *Data {
	if len(dividers) < 2 || !sort.Float64sAreSorted(dividers) {
		panic("spindock/histo.NewData: at least 2 sorted dividers needed")
	}
	d := new(Data)
	//I prefer to copy the slice to avoid somebody changing it from outside
	d.dividers = append([]float64(nil), dividers...)
	d.histo = make([]float64, len(dividers)-1)
	if rawdata != nil {
		d.ReHisto(rawdata)
	}
	return d
}

//Total returns the number of values counted in the histogram.
func (D *Data) Total() int { return D.total }

//View returns the bins of the histogram. Changes to the slice affect the histogram.
func (D *Data) View() []float64 {
	return D.histo
}

//Add adds the histograms a and b putting the result in the receiver.
//The receiver can be one of the operands.
func (D *Data) Add(a, b *Data) {
	if !floats.Equal(a.dividers, b.dividers) {
		panic("spindock/histo.Data.Add: Dividers must match in added histograms")
	}
	if len(D.histo) != len(a.histo) {
		D.histo = make([]float64, len(a.histo))
	}
	floats.AddTo(D.histo, a.histo, b.histo)
	D.total = a.total + b.total
	D.dividers = append([]float64(nil), a.dividers...)
}

//ReHisto replaces the contents of the histogram with the counts of rawdata.
//rawdata is sorted in place.
func (D *Data) ReHisto(rawdata []float64) {
	dividers := D.dividers
	sort.Float64s(rawdata)
	//stat.Histograms just panics instead of omitting the values that are off limits
	//so we remove them here before the call.
	maxi := sort.SearchFloat64s(rawdata, dividers[len(dividers)-1])
	mini := sort.SearchFloat64s(rawdata, dividers[0])
	rawdata = rawdata[mini:maxi]
	D.total = len(rawdata) //as this could have been modified
	if len(rawdata) == 0 {
		D.histo = make([]float64, len(dividers)-1)
		return
	}
	D.histo = stat.Histogram(nil, dividers, rawdata, nil)
}
