/*
 * atom.go, part of spindock.
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

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"
)

//Atom contains the atomic information needed to compute per-point attributes
//and to write transformed structures.
type Atom struct {
	ID      int     //PDB serial number
	Name    string  //PDB name
	MolName string  //PDB residue name
	Chain   string  //One-character PDB chain
	MolID   int     //PDB residue number
	Charge  float64 //Partial charge, only read from PQR files.
	Radius  float64 //Also from PQR files.
	Pos     r3.Vec
}

//ResAtom returns the "RESIDUE_ATOM" key used in fragmental contribution tables.
func (A *Atom) ResAtom() string {
	return A.MolName + "_" + A.Name
}

func (A *Atom) String() string {
	return fmt.Sprintf("%d %s %s %d %s", A.ID, A.Name, A.MolName, A.MolID, A.Chain)
}
