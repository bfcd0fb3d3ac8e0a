/*
Copyright © 2025 the BEM authors.
This file is part of BEM.

BEM is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

BEM is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with BEM.  If not, see <http://www.gnu.org/licenses/>.
*/

package bem

import (
	"fmt"
	"math"
	"sort"
)

// Station is a blade element: a spanwise location on the blade with its
// local geometry.
type Station struct {
	R         float64 // spanwise position [m]
	Chord     float64 // [m]
	Twist     float64 // [degrees]
	AirfoilID int
	Airfoil   *Airfoil

	// Dr is the spanwise length represented by the station [m]. It is
	// calculated by NewRotor.
	Dr float64
}

// Rotor is the blade geometry of a turbine. The stations are sorted by
// ascending radius and are not modified by solutions, so a single
// Rotor can be shared by concurrent solutions.
type Rotor struct {
	stations []Station

	// TipRadius is the largest station radius [m].
	TipRadius float64

	// Area is the area swept by the blades [m²].
	Area float64
}

// NewRotor creates a rotor from the given stations. Every station
// must refer to an airfoil with a polar, because a station without
// aerodynamic data cannot be solved.
func NewRotor(stations []Station) (*Rotor, error) {
	if len(stations) == 0 {
		return nil, fmt.Errorf("bem: rotor has no blade stations")
	}
	s := append([]Station(nil), stations...)
	sort.SliceStable(s, func(i, j int) bool { return s[i].R < s[j].R })
	for i, st := range s {
		if st.Airfoil == nil || st.Airfoil.Polar == nil {
			return nil, fmt.Errorf("bem: station %d at r=%g m has no airfoil data (airfoil id %d)",
				i, st.R, st.AirfoilID)
		}
		if st.Airfoil.Polar.Len() == 0 {
			return nil, fmt.Errorf("bem: station %d at r=%g m has an empty polar", i, st.R)
		}
	}
	dr := Discretization(radii(s))
	for i := range s {
		s[i].Dr = dr[i]
	}
	r := &Rotor{
		stations:  s,
		TipRadius: s[len(s)-1].R,
	}
	r.Area = math.Pi * r.TipRadius * r.TipRadius
	return r, nil
}

// Len returns the number of stations.
func (r *Rotor) Len() int { return len(r.stations) }

// Station returns the station with index i.
func (r *Rotor) Station(i int) Station { return r.stations[i] }

// Stations returns a copy of the rotor stations.
func (r *Rotor) Stations() []Station {
	return append([]Station(nil), r.stations...)
}

// Solidity returns the local solidity of station i for a rotor with
// numBlades blades.
func (r *Rotor) Solidity(i, numBlades int) float64 {
	s := r.stations[i]
	return Solidity(s.Chord, s.R, numBlades)
}

func radii(s []Station) []float64 {
	r := make([]float64, len(s))
	for i, st := range s {
		r[i] = st.R
	}
	return r
}

// Solidity returns the fraction of the annulus at radius r [m] that is
// covered by numBlades blades with the given chord [m]. The result is
// limited to the range [0, 1], and is 1 at r = 0.
func Solidity(chord, r float64, numBlades int) float64 {
	if r == 0 {
		return 1
	}
	σ := float64(numBlades) * chord / (2 * math.Pi * r)
	return math.Max(0, math.Min(σ, 1))
}

// Discretization returns the spanwise length represented by each
// station given the sorted station radii r. The end stations represent
// half of the distance to their neighbor and interior stations represent
// half of the distance between their two neighbors.
func Discretization(r []float64) []float64 {
	dr := make([]float64, len(r))
	n := len(r)
	if n < 2 {
		return dr
	}
	dr[0] = (r[1] - r[0]) / 2
	dr[n-1] = (r[n-1] - r[n-2]) / 2
	for i := 1; i < n-1; i++ {
		dr[i] = (r[i+1] - r[i-1]) / 2
	}
	return dr
}
