/*
 * errors.go, part of spindock.
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
	"errors"
	"fmt"
	"strings"
)

//Messages for the different kinds of Error.
const (
	BadSurface      = "points and normals differ in length"
	EmptySurface    = "surface has no points"
	AttributeLength = "attribute length differs from the number of points"
	BadNormal       = "normal is not a finite, non-zero vector"
	DegenerateFit   = "degenerate fit: fewer than 3 non-collinear points"
	TaskFailure     = "clique search task failed"
	BadOptions      = "invalid options"
	BadMatches      = "point match refers to a point outside the surface"
	BadMatrix       = "matrix has the wrong dimensions"
	NoAttribute     = "surface lacks a required attribute"
	BadFile         = "malformed input file"
)

//Error is the error type for the whole library. Besides the message, it carries
//a "decoration": the list of functions it went through on its way up, and whether
//it is critical. Non-critical errors leave the computation in a usable state.
type Error struct {
	message  string
	detail   string
	deco     []string
	critical bool
}

//NewError returns an Error with the given message (normally one of the
//constants of this package), detail and caller.
func NewError(message, detail string, critical bool, caller ...string) Error {
	return Error{message: message, detail: detail, critical: critical, deco: caller}
}

func (err Error) Error() string {
	ret := "spindock: " + err.message
	if err.detail != "" {
		ret += ": " + err.detail
	}
	if len(err.deco) > 0 {
		ret += fmt.Sprintf(" (%s)", strings.Join(err.deco, " <- "))
	}
	return ret
}

//Decorate adds deco to the list of callers and returns the list.
//An empty string just returns the current list.
func (err *Error) Decorate(deco string) []string {
	if deco != "" {
		err.deco = append(err.deco, deco)
	}
	return err.deco
}

//Message returns the kind of the error, one of the message constants.
func (err Error) Message() string { return err.message }

func (err Error) Critical() bool { return err.critical }

//errDecorate adds caller to err if err is an Error, and returns it.
//Other errors are wrapped in a critical Error.
func errDecorate(err error, caller string) error {
	if err == nil {
		return nil
	}
	var e Error
	if errors.As(err, &e) {
		e.Decorate(caller)
		return e
	}
	return NewError(err.Error(), "", true, caller)
}

//ErrDecorate is errDecorate for the subpackages.
func ErrDecorate(err error, caller string) error {
	return errDecorate(err, caller)
}

func isKind(err error, message string) bool {
	var e Error
	return errors.As(err, &e) && e.message == message
}

//IsDegenerateFit returns true if err comes from a superposition with too few,
//or collinear, points.
func IsDegenerateFit(err error) bool { return isKind(err, DegenerateFit) }

//IsBadSurface returns true if err signals an ill-formed surface.
func IsBadSurface(err error) bool {
	return isKind(err, BadSurface) || isKind(err, EmptySurface) || isKind(err, AttributeLength) || isKind(err, BadNormal)
}

//IsNoAttribute returns true if err signals a surface without an attribute
//needed by the requested computation.
func IsNoAttribute(err error) bool { return isKind(err, NoAttribute) }

//IsBadFile returns true if err comes from parsing an ill-formed file.
func IsBadFile(err error) bool { return isKind(err, BadFile) }

//IsTaskFailure returns true if err comes from a failed clique search task.
func IsTaskFailure(err error) bool { return isKind(err, TaskFailure) }

//IsBadOptions returns true if err signals an invalid set of options.
func IsBadOptions(err error) bool { return isKind(err, BadOptions) }
