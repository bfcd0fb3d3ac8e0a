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
)

func TestLossFactor(t *testing.T) {
	var none Corrections
	if F := none.LossFactor(3, 39, 40, 0.1); F != 1 {
		t.Errorf("disabled loss factor = %g", F)
	}

	tip := Corrections{TipLoss: true}
	if F := tip.LossFactor(3, 40, 40, 0.1); F != minLossFactor {
		t.Errorf("tip loss at the tip = %g, want %g", F, minLossFactor)
	}
	inner, outer := tip.LossFactor(3, 20, 40, 0.1), tip.LossFactor(3, 36, 40, 0.1)
	if !(inner > outer) || inner > 1 || outer <= 0 {
		t.Errorf("tip loss should decrease toward the tip: F(20)=%g, F(36)=%g", inner, outer)
	}
	// f = 3/2 * 4 / (36 * sin(0.1))
	want := 2 / math.Pi * math.Acos(math.Exp(-1.5*4/(36*math.Sin(0.1))))
	if absDifferent(outer, want, 1e-14) {
		t.Errorf("F(36) = %g, want %g", outer, want)
	}

	hub := Corrections{HubRadius: 2}
	if F := hub.LossFactor(3, 2, 40, 0.3); F != minLossFactor {
		t.Errorf("hub loss at the hub = %g", F)
	}
	both := Corrections{TipLoss: true, HubRadius: 2}
	if F := both.LossFactor(3, 4, 40, 0.3); !(F < tip.LossFactor(3, 4, 40, 0.3)) {
		t.Errorf("combined loss factor %g should be less than tip loss alone", F)
	}

	// Zero flow angle makes the exponent infinite, so there is no loss.
	if F := tip.LossFactor(3, 20, 40, 0); absDifferent(F, 1, 1e-15) {
		t.Errorf("loss factor at zero flow angle = %g", F)
	}
}

func TestGlauert(t *testing.T) {
	// 4 sin²(π/6) / (0.5 * 2) = 1, so the uncorrected induction is 0.5.
	a := glauert(0.5, 1, math.Pi/6, 0.5, 2)
	if absDifferent(a, 0.44559962546824694, 1e-12) {
		t.Errorf("corrected induction = %.17g", a)
	}
	if a := glauert(0.15, 1, math.Pi/6, 0.5, 2); a != 0.15 {
		t.Errorf("lightly loaded induction should not change: %g", a)
	}
	if a := glauert(0.5, 1, math.Pi/6, 0, 2); a != 0.5 {
		t.Errorf("zero solidity should not change induction: %g", a)
	}
	// The correction is continuous at the critical induction, where K = 4.
	phi := math.Asin(math.Sqrt(0.5))
	if a := glauert(GlauertCriticalInduction+1e-12, 1, phi, 0.5, 1); absDifferent(a, GlauertCriticalInduction, 1e-9) {
		t.Errorf("correction is discontinuous: %g", a)
	}
}

func TestSolveCorrections(t *testing.T) {
	rotor := testRotor(t)
	op := testOperatingPoint(8)
	base, err := testSolver(t).Solve(rotor, op)
	if err != nil {
		t.Fatal(err)
	}

	c := DefaultConfig()
	c.Corrections.TipLoss = true
	s, err := NewSolver(c)
	if err != nil {
		t.Fatal(err)
	}
	tip, err := s.Solve(rotor, op)
	if err != nil {
		t.Fatal(err)
	}
	if !(tip.Thrust < base.Thrust) || !(tip.Power < base.Power) {
		t.Errorf("tip loss should reduce loads: thrust %g -> %g, power %g -> %g",
			base.Thrust, tip.Thrust, base.Power, tip.Power)
	}
	if F := tip.States[rotor.Len()-2].F; !(F < 1) {
		t.Errorf("outer station loss factor = %g", F)
	}

	c.Corrections.Glauert = true
	s, err = NewSolver(c)
	if err != nil {
		t.Fatal(err)
	}
	g, err := s.Solve(rotor, op)
	if err != nil {
		t.Fatal(err)
	}
	if math.IsNaN(g.Power) || !(g.Power > 0) {
		t.Errorf("power with all corrections = %g", g.Power)
	}
}
