/*
 * doc.go, part of spindock.
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

/*Package dock is the main package of spindock. It provides the surface, point
correspondence and option types shared by the docking engine and its
subpackages, plus the error type all of them return.

	**spindock capabilities**

	Computes spin-image shape descriptors for every point of a molecular surface
	and correlates them between a receptor and a ligand surface.

	Keeps the best correlated point pairs, optionally blending electrostatic or
	lipophilic complementarity into the score.

	Builds a compatibility graph over the point pairs and enumerates its maximal
	cliques in parallel, pruning cliques whose implied superposition makes the
	surfaces face the same way.

	Superimposes each clique (Kabsch/SVD) and ranks the resulting rigid
	transformations with a signed distance grid over the receptor surface.

The subpackages are:

	v3        Nx3 coordinate matrices on top of gonum.
	spin      spin images, their correlation and a concurrent descriptor cache.
	match     top-K correlated point pairs and the bonus strategies.
	compat    the compatibility graph.
	clique    parallel maximal clique enumeration.
	align     rigid superposition and 4x4 transforms.
	clash     the signed distance grid and the penetration score.
	histo     fixed-divider histograms.
	engine    the docking pipeline.
	surfio    surface, PDB and pose files.
	potential per-point electrostatic and lipophilic potentials.
	dockplot  score plots.

The engine performs no I/O. Reading surfaces and writing results is done by
surfio and by the spindock command.
*/
package dock
