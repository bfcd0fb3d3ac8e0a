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
	"math"
	"testing"

	"github.com/kr/pretty"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
)

func TestSolveStation(t *testing.T) {
	rotor := testRotor(t)
	s := testSolver(t)
	op := testOperatingPoint(8)

	st := s.SolveStation(rotor, 4, op) // r = 20 m
	if !st.Converged {
		t.Fatalf("station did not converge: %v", st)
	}
	if st.R != 20 {
		t.Errorf("r = %g", st.R)
	}
	if st.A <= 0 || st.A >= 0.5 {
		t.Errorf("axial induction %g is not in the expected range", st.A)
	}
	if st.APrime <= 0 || st.APrime >= 0.1 {
		t.Errorf("tangential induction %g is not in the expected range", st.APrime)
	}
	wantPhi := math.Atan2((1-st.A)*op.WindSpeed, (1+st.APrime)*op.Omega*st.R)
	if st.Phi != wantPhi {
		t.Errorf("phi = %g, want %g", st.Phi, wantPhi)
	}
	cl, cd := rotor.Station(4).Airfoil.Polar.Coefficients(st.Alpha)
	if cl != st.Cl || cd != st.Cd {
		t.Errorf("coefficients (%g, %g) do not match polar (%g, %g)", st.Cl, st.Cd, cl, cd)
	}
	if st.F != 1 {
		t.Errorf("loss factor should be 1 without corrections, is %g", st.F)
	}

	// The same inputs give the same result.
	st2 := s.SolveStation(rotor, 4, op)
	if diff := pretty.Diff(st, st2); len(diff) != 0 {
		t.Errorf("repeated solution differs: %v", diff)
	}
}

func TestSolveStationNotConverged(t *testing.T) {
	rotor := testRotor(t)
	c := DefaultConfig()
	c.MaxIterations = 2
	s, err := NewSolver(c)
	if err != nil {
		t.Fatal(err)
	}
	logger, hook := logtest.NewNullLogger()
	s.Log = logger

	st := s.SolveStation(rotor, 4, testOperatingPoint(8))
	if st.Converged {
		t.Fatal("station should not have converged")
	}
	if st.Iterations != 2 {
		t.Errorf("iterations = %d, want 2", st.Iterations)
	}
	if len(hook.AllEntries()) != 1 {
		t.Fatalf("have %d log entries, want 1", len(hook.AllEntries()))
	}
	e := hook.LastEntry()
	if e.Level != logrus.WarnLevel {
		t.Errorf("log level = %v", e.Level)
	}
	if e.Data["r"] != 20. || e.Data["iterations"] != 2 {
		t.Errorf("log fields = %v", e.Data)
	}

	// Stopping early leaves the last iterate in place.
	sUnlimited := testSolver(t)
	sUnlimited.Log = logger
	full := sUnlimited.SolveStation(rotor, 4, testOperatingPoint(8))
	if full.A == st.A {
		t.Error("non-converged result should differ from the converged one")
	}
}

func TestSolveStationZeroCoefficients(t *testing.T) {
	p, err := NewPolar([]PolarSample{{Alpha: 0, Cl: 0, Cd: 0}})
	if err != nil {
		t.Fatal(err)
	}
	rotor, err := NewRotor([]Station{
		{R: 5, Chord: 1, Airfoil: &Airfoil{Polar: p}},
		{R: 10, Chord: 1, Airfoil: &Airfoil{Polar: p}},
	})
	if err != nil {
		t.Fatal(err)
	}
	c := DefaultConfig()
	c.AGuess, c.APrimeGuess = 0.1, 0.01
	s, err := NewSolver(c)
	if err != nil {
		t.Fatal(err)
	}
	st := s.SolveStation(rotor, 0, testOperatingPoint(10))
	if st.A != 0.1 || st.APrime != 0.01 {
		t.Errorf("induction factors should keep their initial values: %v", st)
	}
	if !st.Converged || st.Iterations != 1 {
		t.Errorf("converged=%v after %d iterations", st.Converged, st.Iterations)
	}
}

func TestSolveAt(t *testing.T) {
	rotor := testRotor(t)
	s := testSolver(t)
	op := testOperatingPoint(8)

	t.Run("station", func(t *testing.T) {
		for _, i := range []int{0, 4, 9} {
			r := rotor.Station(i).R
			ps := s.SolveAt(rotor, r, op)
			if diff := pretty.Diff(ps.AeroState, s.SolveStation(rotor, i, op)); len(diff) != 0 {
				t.Errorf("r=%g: %v", r, diff)
			}
			if ps.Chord != rotor.Station(i).Chord || ps.Twist != rotor.Station(i).Twist {
				t.Errorf("r=%g: geometry (%g, %g)", r, ps.Chord, ps.Twist)
			}
		}
	})
	t.Run("between", func(t *testing.T) {
		ps := s.SolveAt(rotor, 18, op)
		s1, s2 := rotor.Station(3), rotor.Station(4)
		if absDifferent(ps.Chord, (s1.Chord+s2.Chord)/2, 1e-12) {
			t.Errorf("chord = %g", ps.Chord)
		}
		if absDifferent(ps.Twist, (s1.Twist+s2.Twist)/2, 1e-12) {
			t.Errorf("twist = %g", ps.Twist)
		}
		if absDifferent(ps.Solidity, Solidity(ps.Chord, 18, op.NumBlades), 1e-15) {
			t.Errorf("solidity = %g", ps.Solidity)
		}
		if !ps.Converged || ps.R != 18 {
			t.Errorf("state = %v", ps.AeroState)
		}
	})
	t.Run("outside", func(t *testing.T) {
		tip := rotor.Station(rotor.Len() - 1)
		ps := s.SolveAt(rotor, 45, op)
		if ps.Chord != tip.Chord || ps.Twist != tip.Twist {
			t.Errorf("beyond tip: geometry (%g, %g), want (%g, %g)", ps.Chord, ps.Twist, tip.Chord, tip.Twist)
		}
		root := rotor.Station(0)
		ps = s.SolveAt(rotor, 1, op)
		if ps.Chord != root.Chord || ps.Twist != root.Twist {
			t.Errorf("inside root: geometry (%g, %g), want (%g, %g)", ps.Chord, ps.Twist, root.Chord, root.Twist)
		}
	})
}

func TestInductionUpdate(t *testing.T) {
	if v := inductionUpdate(1, 0, 1, 0.3); v != 0.3 {
		t.Errorf("zero denominator: %g", v)
	}
	if v := inductionUpdate(1, 1, -1, 0.3); v != 0.3 {
		t.Errorf("infinite update: %g", v)
	}
	if v := inductionUpdate(3, 1, 1, 0); v != 0.25 {
		t.Errorf("have %g, want 0.25", v)
	}
	if v := inductionUpdate(math.Inf(1), math.Inf(1), 1, 0.2); v != 0.2 {
		t.Errorf("NaN update: %g", v)
	}
}

// At convergence the induction factors are fixed points of the momentum
// balance: a = 1/(4 sin²φ/(σCn) + 1) and a' = 1/(4 sinφ cosφ/(σCt) - 1).
func TestSolveStationFixedPoint(t *testing.T) {
	rotor := testRotor(t)
	c := DefaultConfig()
	c.Tolerance = 1e-11
	c.MaxIterations = 5000
	s, err := NewSolver(c)
	if err != nil {
		t.Fatal(err)
	}
	for _, v := range []float64{6, 8, 11} {
		op := testOperatingPoint(v)
		for i := 0; i < rotor.Len(); i++ {
			st := s.SolveStation(rotor, i, op)
			if !st.Converged {
				t.Fatalf("v=%g, r=%g: did not converge", v, st.R)
			}
			sinPhi, cosPhi := math.Sincos(st.Phi)
			wantA := 1 / (4*sinPhi*sinPhi/(st.Solidity*st.Cn) + 1)
			wantAPrime := 1 / (4*sinPhi*cosPhi/(st.Solidity*st.Ct) - 1)
			if different(st.A, wantA, 1e-6) {
				t.Errorf("v=%g, r=%g: a = %g, want %g", v, st.R, st.A, wantA)
			}
			if different(st.APrime, wantAPrime, 1e-6) {
				t.Errorf("v=%g, r=%g: a' = %g, want %g", v, st.R, st.APrime, wantAPrime)
			}
		}
	}
}
