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

// OperatingPoint is the condition that a rotor is solved for.
type OperatingPoint struct {
	WindSpeed float64 // free-stream wind speed [m/s]
	Rho       float64 // air density [kg/m³]
	NumBlades int

	// Pitch [degrees] and Omega [rad/s] are interpolated from the
	// operational schedule.
	Pitch, Omega float64
}

// NewOperatingPoint returns the operating point at windSpeed, with pitch
// and rotor speed taken from the schedule.
func NewOperatingPoint(s *Schedule, windSpeed, rho float64, numBlades int) OperatingPoint {
	pitch, omega := s.PitchAndOmega(windSpeed)
	return OperatingPoint{
		WindSpeed: windSpeed,
		Rho:       rho,
		NumBlades: numBlades,
		Pitch:     pitch,
		Omega:     omega,
	}
}

// TipSpeedRatio returns the ratio of blade tip speed to wind speed for
// a rotor with the given tip radius [m]. It is zero when the wind speed
// is zero.
func (op OperatingPoint) TipSpeedRatio(tipRadius float64) float64 {
	if op.WindSpeed == 0 {
		return 0
	}
	return op.Omega * tipRadius / op.WindSpeed
}

// RPM returns the rotor speed in rotations per minute.
func (op OperatingPoint) RPM() float64 { return op.Omega / rpmToRads }

func (op OperatingPoint) String() string {
	return fmt.Sprintf("OperatingPoint(wind_speed=%g m/s, rho=%g kg/m³, num_blades=%d, "+
		"pitch=%g°, omega=%g rad/s)", op.WindSpeed, op.Rho, op.NumBlades, op.Pitch, op.Omega)
}
