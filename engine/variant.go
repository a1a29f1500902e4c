/*
 * variant.go, part of spindock.
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

package engine

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	dock "github.com/rmera/spindock"
	"github.com/rmera/spindock/match"
)

//Variant selects how point pairs are scored before the clique search.
type Variant int

const (
	//Geometry uses only the spin image correlation.
	Geometry Variant = iota
	//Electrostatic adds the electrostatic complementarity of the points.
	Electrostatic
	//Lipophilic adds the lipophilic similarity of the points.
	Lipophilic
	//Combined runs the three searches above and joins their cliques.
	Combined
)

var variantNames = [...]string{"geometry", "electrostatic", "lipophilic", "combined"}

func (v Variant) String() string {
	if v < 0 || int(v) >= len(variantNames) {
		return fmt.Sprintf("Variant(%d)", int(v))
	}
	return variantNames[v]
}

//ParseVariant returns the variant with the given name, case insensitive.
func ParseVariant(s string) (Variant, error) {
	for i, n := range variantNames {
		if strings.EqualFold(strings.TrimSpace(s), n) {
			return Variant(i), nil
		}
	}
	return Geometry, dock.NewError(dock.BadOptions, fmt.Sprintf("unknown variant %q", s), true, "ParseVariant")
}

func (v Variant) MarshalText() ([]byte, error) { return []byte(v.String()), nil }

func (v *Variant) UnmarshalText(b []byte) error {
	p, err := ParseVariant(string(b))
	if err != nil {
		return err
	}
	*v = p
	return nil
}

//search is one top-K pair search with its bonus.
type search struct {
	name  string
	bonus match.Bonus
}

//searches returns the pair searches needed for v. For Combined, the attribute
//searches whose attribute is missing in either surface are skipped.
func searches(rec, lig *dock.Surface, v Variant, log *zap.Logger) ([]search, error) {
	geo := search{name: Geometry.String()}
	switch v {
	case Geometry:
		return []search{geo}, nil
	case Electrostatic:
		b, err := match.Electrostatic(rec, lig)
		if err != nil {
			return nil, dock.ErrDecorate(err, "searches")
		}
		return []search{{name: v.String(), bonus: b}}, nil
	case Lipophilic:
		b, err := match.Lipophilic(rec, lig)
		if err != nil {
			return nil, dock.ErrDecorate(err, "searches")
		}
		return []search{{name: v.String(), bonus: b}}, nil
	case Combined:
		ret := []search{geo}
		for _, a := range []struct {
			v Variant
			f func(rec, lig *dock.Surface) (match.Bonus, error)
		}{{Electrostatic, match.Electrostatic}, {Lipophilic, match.Lipophilic}} {
			b, err := a.f(rec, lig)
			if dock.IsNoAttribute(err) {
				log.Warn("skipping search", zap.String("search", a.v.String()), zap.Error(err))
				continue
			}
			if err != nil {
				return nil, dock.ErrDecorate(err, "searches")
			}
			ret = append(ret, search{name: a.v.String(), bonus: b})
		}
		return ret, nil
	}
	return nil, dock.NewError(dock.BadOptions, fmt.Sprintf("unknown variant %d", int(v)), true, "searches")
}
