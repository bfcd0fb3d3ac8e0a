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

// Package bem estimates the aerodynamic performance of a wind turbine rotor
// using Blade Element Momentum theory.
//
// A Rotor is built from blade stations, each of which refers to an Airfoil
// holding a lift and drag Polar. A Schedule maps wind speed to blade pitch
// and rotor speed. For a given OperatingPoint, a Solver iterates the axial
// and tangential induction factors at every station and integrates the
// elemental loads into rotor thrust, torque, and power. A Sweeper repeats
// the calculation over a range of wind speeds to produce performance curves.
package bem

import (
	"fmt"
	"math"
)

// Version gives the version number.
const Version = "0.3.0"

// Default values for solver configuration.
const (
	DefaultAirDensity    = 1.225 // kg/m³
	DefaultNumBlades     = 3
	DefaultMaxIterations = 100
	DefaultTolerance     = 1.e-5
)

// BetzLimit is the theoretical maximum power coefficient of an ideal
// actuator disk (16/27).
const BetzLimit = 16. / 27.

const (
	degToRad  = math.Pi / 180.
	radToDeg  = 180. / math.Pi
	rpmToRads = 2. * math.Pi / 60.
)

// Config holds the numerical and environmental parameters of a solution.
type Config struct {
	// AGuess and APrimeGuess are the initial values of the axial and
	// tangential induction factors at every station.
	AGuess, APrimeGuess float64

	// MaxIterations is the maximum number of fixed-point iterations
	// per station.
	MaxIterations int

	// Tolerance is the convergence threshold for the change in both
	// induction factors between iterations.
	Tolerance float64

	AirDensity float64 // kg/m³
	NumBlades  int

	// Corrections are optional extensions to the baseline algorithm.
	// None are enabled by default.
	Corrections Corrections
}

// DefaultConfig returns the default solver configuration.
func DefaultConfig() Config {
	return Config{
		MaxIterations: DefaultMaxIterations,
		Tolerance:     DefaultTolerance,
		AirDensity:    DefaultAirDensity,
		NumBlades:     DefaultNumBlades,
	}
}

// Validate returns an error if the configuration cannot be used to
// run a solution.
func (c Config) Validate() error {
	if c.MaxIterations < 1 {
		return fmt.Errorf("bem: MaxIterations=%d but should be >= 1", c.MaxIterations)
	}
	if !(c.Tolerance > 0) {
		return fmt.Errorf("bem: Tolerance=%g but should be > 0", c.Tolerance)
	}
	if !(c.AirDensity > 0) {
		return fmt.Errorf("bem: AirDensity=%g but should be > 0", c.AirDensity)
	}
	if c.NumBlades < 1 {
		return fmt.Errorf("bem: NumBlades=%d but should be >= 1", c.NumBlades)
	}
	return c.Corrections.validate()
}
