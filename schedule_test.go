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

func TestSchedulePitchAndOmega(t *testing.T) {
	s, err := NewSchedule([]ScheduleRow{
		{WindSpeed: 4, Pitch: 0, RPM: 5},
		{WindSpeed: 10, Pitch: 0, RPM: 7.5, AeroPower: 15e6},
		{WindSpeed: 20, Pitch: 20, RPM: 7.5},
	})
	if err != nil {
		t.Fatal(err)
	}
	for _, test := range []struct {
		v, pitch, rpm float64
	}{
		{v: 4, pitch: 0, rpm: 5},
		{v: 7, pitch: 0, rpm: 6.25},
		{v: 15, pitch: 10, rpm: 7.5},
		{v: 0, pitch: 0, rpm: 5},    // below cut-in
		{v: 30, pitch: 20, rpm: 7.5}, // above cut-out
	} {
		pitch, omega := s.PitchAndOmega(test.v)
		if absDifferent(pitch, test.pitch, 1e-12) {
			t.Errorf("v=%g: pitch=%g, want %g", test.v, pitch, test.pitch)
		}
		if absDifferent(omega, test.rpm*2*math.Pi/60, 1e-12) {
			t.Errorf("v=%g: omega=%g, want %g", test.v, omega, test.rpm*2*math.Pi/60)
		}
	}
	if min, max := s.Range(); min != 4 || max != 20 {
		t.Errorf("range = [%g, %g]", min, max)
	}
	if rows := s.Rows(); rows[1].AeroPower != 15e6 || absDifferent(rows[1].Omega(), 7.5*rpmToRads, 1e-15) {
		t.Errorf("rows = %+v", rows)
	}
}

func TestScheduleSingleRow(t *testing.T) {
	s, err := NewSchedule([]ScheduleRow{{WindSpeed: 8, Pitch: 2, RPM: 60 / (2 * math.Pi)}})
	if err != nil {
		t.Fatal(err)
	}
	for _, v := range []float64{0, 8, 25} {
		pitch, omega := s.PitchAndOmega(v)
		if pitch != 2 || absDifferent(omega, 1, 1e-14) {
			t.Errorf("v=%g: pitch=%g, omega=%g", v, pitch, omega)
		}
	}
}

func TestNewScheduleErrors(t *testing.T) {
	if _, err := NewSchedule(nil); err == nil {
		t.Error("empty schedule should be an error")
	}
	if _, err := NewSchedule([]ScheduleRow{{WindSpeed: 5}, {WindSpeed: 5}}); err == nil {
		t.Error("duplicate wind speeds should be an error")
	}
	if _, err := NewSchedule([]ScheduleRow{{WindSpeed: 6}, {WindSpeed: 5}}); err == nil {
		t.Error("unsorted wind speeds should be an error")
	}
}

func TestNewOperatingPoint(t *testing.T) {
	s := testSchedule(t)
	op := NewOperatingPoint(s, 10, 1.2, 2)
	if op.WindSpeed != 10 || op.Rho != 1.2 || op.NumBlades != 2 || op.Pitch != 0 {
		t.Errorf("operating point = %v", op)
	}
	if absDifferent(op.Omega, testOmega, 1e-14) {
		t.Errorf("omega = %g, want %g", op.Omega, testOmega)
	}
	if tsr := op.TipSpeedRatio(40); absDifferent(tsr, 4.8, 1e-12) {
		t.Errorf("tip speed ratio = %g, want 4.8", tsr)
	}
	if absDifferent(op.RPM(), testOmega/rpmToRads, 1e-12) {
		t.Errorf("rpm = %g", op.RPM())
	}
	op.WindSpeed = 0
	if tsr := op.TipSpeedRatio(40); tsr != 0 {
		t.Errorf("tip speed ratio at zero wind = %g", tsr)
	}
}
