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

	"github.com/sirupsen/logrus"
)

// AeroState is the converged aerodynamic state of a blade element at
// one operating point.
type AeroState struct {
	R        float64 // spanwise position [m]
	Solidity float64

	A      float64 // axial induction factor
	APrime float64 // tangential induction factor

	Alpha float64 // angle of attack [degrees]
	Phi   float64 // flow angle [rad]
	Cl    float64 // lift coefficient
	Cd    float64 // drag coefficient
	Cn    float64 // normal force coefficient
	Ct    float64 // tangential force coefficient

	// F is the tip and hub loss factor, which is 1 unless loss
	// corrections are enabled.
	F float64

	// Iterations is the number of fixed-point iterations that were
	// carried out and Converged is whether the last one met the
	// tolerance.
	Iterations int
	Converged  bool
}

// PointState is the aerodynamic state at an arbitrary spanwise position,
// along with the blade geometry interpolated to that position.
type PointState struct {
	AeroState
	Chord float64 // [m]
	Twist float64 // [degrees]
}

// Solver calculates the induction factors and loads of the blade
// elements of a rotor. A Solver holds no state that changes during a
// solution, so it can be used concurrently.
type Solver struct {
	Config

	// Log receives warnings about stations that do not converge.
	Log logrus.FieldLogger
}

// NewSolver returns a solver with the given configuration.
func NewSolver(c Config) (*Solver, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &Solver{Config: c, Log: logrus.StandardLogger()}, nil
}

// element is the geometry and aerodynamic data needed to solve one
// spanwise position.
type element struct {
	r, chord, twist float64
	coefficients    func(alpha float64) (cl, cd float64)
}

// SolveStation solves the induction factors of rotor station i at
// operating point op.
func (s *Solver) SolveStation(rotor *Rotor, i int, op OperatingPoint) AeroState {
	st := rotor.stations[i]
	return s.iterate(element{
		r:            st.R,
		chord:        st.Chord,
		twist:        st.Twist,
		coefficients: st.Airfoil.Polar.Coefficients,
	}, rotor.TipRadius, op)
}

// SolveAt solves the induction factors at spanwise position r [m], which
// does not need to coincide with a station. Chord and twist are linearly
// interpolated between the two stations that bracket r, and the lift and
// drag coefficients are blended between the polars of the same two
// stations. Positions outside of the blade take the geometry and polar
// of the nearest end station.
func (s *Solver) SolveAt(rotor *Rotor, r float64, op OperatingPoint) PointState {
	s1, s2, w := rotor.bracket(r)
	el := element{
		r:     r,
		chord: (1-w)*s1.Chord + w*s2.Chord,
		twist: (1-w)*s1.Twist + w*s2.Twist,
		coefficients: func(alpha float64) (cl, cd float64) {
			cl1, cd1 := s1.Airfoil.Polar.Coefficients(alpha)
			cl2, cd2 := s2.Airfoil.Polar.Coefficients(alpha)
			return (1-w)*cl1 + w*cl2, (1-w)*cd1 + w*cd2
		},
	}
	return PointState{
		AeroState: s.iterate(el, rotor.TipRadius, op),
		Chord:     el.chord,
		Twist:     el.twist,
	}
}

// bracket returns the stations on either side of r and the weight of
// the outer one.
func (r *Rotor) bracket(radius float64) (s1, s2 Station, w float64) {
	n := len(r.stations)
	i := sort.Search(n, func(i int) bool { return r.stations[i].R >= radius })
	switch {
	case i == 0:
		return r.stations[0], r.stations[0], 1
	case i == n:
		return r.stations[n-1], r.stations[n-1], 1
	}
	s1, s2 = r.stations[i-1], r.stations[i]
	return s1, s2, (radius - s1.R) / (s2.R - s1.R)
}

// iterate runs the fixed-point iteration for the induction factors.
func (s *Solver) iterate(el element, tipRadius float64, op OperatingPoint) AeroState {
	V, omega, r := op.WindSpeed, op.Omega, el.r
	theta := (op.Pitch + el.twist) * degToRad
	sigma := Solidity(el.chord, r, op.NumBlades)

	state := AeroState{R: r, Solidity: sigma, F: 1}
	a, aPrime := s.AGuess, s.APrimeGuess
	for it := 1; it <= s.MaxIterations; it++ {
		phi := math.Atan2((1-a)*V, (1+aPrime)*omega*r)
		alpha := (phi - theta) * radToDeg
		cl, cd := el.coefficients(alpha)
		sinPhi, cosPhi := math.Sincos(phi)
		cn := cl*cosPhi + cd*sinPhi
		ct := cl*sinPhi - cd*cosPhi

		F := s.Corrections.LossFactor(op.NumBlades, r, tipRadius, phi)
		aNew := inductionUpdate(4*F*sinPhi*sinPhi, sigma*cn, 1, a)
		aPrimeNew := inductionUpdate(4*F*sinPhi*cosPhi, sigma*ct, -1, aPrime)
		if s.Corrections.Glauert {
			aNew = glauert(aNew, F, phi, sigma, cn)
		}

		state.Alpha, state.Cl, state.Cd, state.Cn, state.Ct, state.F = alpha, cl, cd, cn, ct, F
		state.Iterations = it
		converged := math.Abs(a-aNew) < s.Tolerance && math.Abs(aPrime-aPrimeNew) < s.Tolerance
		a, aPrime = aNew, aPrimeNew
		if converged {
			state.Converged = true
			break
		}
	}
	state.A, state.APrime = a, aPrime
	state.Phi = math.Atan2((1-a)*V, (1+aPrime)*omega*r)

	if !state.Converged {
		s.log().WithFields(logrus.Fields{
			"r":          r,
			"wind_speed": V,
			"iterations": state.Iterations,
			"a":          a,
			"a_prime":    aPrime,
		}).Warn("bem: induction factors did not converge")
	}
	return state
}

// inductionUpdate returns 1/(num/den + k). The previous value is kept
// when den is zero or the result is not finite.
func inductionUpdate(num, den, k, prev float64) float64 {
	if den == 0 {
		return prev
	}
	v := 1 / (num/den + k)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return prev
	}
	return v
}

func (s *Solver) log() logrus.FieldLogger {
	if s.Log == nil {
		return logrus.StandardLogger()
	}
	return s.Log
}

func (s AeroState) String() string {
	return fmt.Sprintf("AeroState(r=%g, a=%g, a_prime=%g, alpha=%g°, phi=%g°, cl=%g, cd=%g, "+
		"cn=%g, ct=%g, converged=%v)", s.R, s.A, s.APrime, s.Alpha, s.Phi*radToDeg,
		s.Cl, s.Cd, s.Cn, s.Ct, s.Converged)
}
