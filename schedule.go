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

import "fmt"

// ScheduleRow is one control point of an operational schedule.
type ScheduleRow struct {
	WindSpeed float64 // m/s
	Pitch     float64 // degrees
	RPM       float64 // rotations per minute

	// AeroPower [W] and AeroThrust [N] are reference values reported
	// alongside the schedule. They are not used in calculations.
	AeroPower, AeroThrust float64
}

// Omega returns the rotor angular velocity of the row [rad/s].
func (r ScheduleRow) Omega() float64 { return r.RPM * rpmToRads }

// Schedule is the control law of a turbine: blade pitch and rotor
// speed as functions of wind speed. It is immutable and safe for
// concurrent use.
type Schedule struct {
	rows       []ScheduleRow
	pitch, rpm tableFunc
}

// NewSchedule creates a schedule from rows, which must be sorted by
// ascending wind speed without duplicates.
func NewSchedule(rows []ScheduleRow) (*Schedule, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("bem: operational schedule has no rows")
	}
	ws := make([]float64, len(rows))
	pitch := make([]float64, len(rows))
	rpm := make([]float64, len(rows))
	for i, r := range rows {
		if i > 0 && !(r.WindSpeed > rows[i-1].WindSpeed) {
			return nil, fmt.Errorf("bem: schedule wind speeds must be strictly increasing; "+
				"row %d (%g m/s) follows %g m/s", i, r.WindSpeed, rows[i-1].WindSpeed)
		}
		ws[i], pitch[i], rpm[i] = r.WindSpeed, r.Pitch, r.RPM
	}
	s := &Schedule{rows: append([]ScheduleRow(nil), rows...)}
	var err error
	if s.pitch, err = newTableFunc(ws, pitch); err != nil {
		return nil, fmt.Errorf("bem: fitting schedule pitch: %v", err)
	}
	if s.rpm, err = newTableFunc(ws, rpm); err != nil {
		return nil, fmt.Errorf("bem: fitting schedule rotor speed: %v", err)
	}
	return s, nil
}

// PitchAndOmega returns the blade pitch [degrees] and rotor angular
// velocity [rad/s] at windSpeed [m/s]. Wind speeds outside of the
// schedule are given the values of the nearest end of the schedule.
func (s *Schedule) PitchAndOmega(windSpeed float64) (pitch, omega float64) {
	return s.pitch.Predict(windSpeed), s.rpm.Predict(windSpeed) * rpmToRads
}

// Rows returns a copy of the schedule table.
func (s *Schedule) Rows() []ScheduleRow {
	return append([]ScheduleRow(nil), s.rows...)
}

// Len returns the number of control points.
func (s *Schedule) Len() int { return len(s.rows) }

// Range returns the lowest and highest wind speeds in the schedule.
func (s *Schedule) Range() (min, max float64) {
	return s.rows[0].WindSpeed, s.rows[len(s.rows)-1].WindSpeed
}
