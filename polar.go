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

	"gonum.org/v1/gonum/interp"
)

// PolarSample is one row of an airfoil polar table.
type PolarSample struct {
	Alpha float64 // angle of attack [degrees]
	Cl    float64 // lift coefficient
	Cd    float64 // drag coefficient
	Cm    float64 // moment coefficient
}

// Polar holds the lift and drag coefficients of an airfoil as a function
// of angle of attack. Coefficients are linearly interpolated between
// samples and held constant beyond the first and last samples.
// A Polar is immutable and safe for concurrent use.
type Polar struct {
	samples []PolarSample
	cl, cd  tableFunc
}

// NewPolar creates a polar from samples, which must be sorted by
// ascending angle of attack without duplicate angles.
func NewPolar(samples []PolarSample) (*Polar, error) {
	if len(samples) == 0 {
		return nil, fmt.Errorf("bem: polar has no samples")
	}
	alpha := make([]float64, len(samples))
	cl := make([]float64, len(samples))
	cd := make([]float64, len(samples))
	for i, s := range samples {
		if i > 0 && !(s.Alpha > samples[i-1].Alpha) {
			return nil, fmt.Errorf("bem: polar angles of attack must be strictly increasing; "+
				"sample %d (%g°) follows %g°", i, s.Alpha, samples[i-1].Alpha)
		}
		alpha[i], cl[i], cd[i] = s.Alpha, s.Cl, s.Cd
	}
	p := &Polar{samples: append([]PolarSample(nil), samples...)}
	var err error
	if p.cl, err = newTableFunc(alpha, cl); err != nil {
		return nil, fmt.Errorf("bem: fitting lift coefficients: %v", err)
	}
	if p.cd, err = newTableFunc(alpha, cd); err != nil {
		return nil, fmt.Errorf("bem: fitting drag coefficients: %v", err)
	}
	return p, nil
}

// Coefficients returns the lift and drag coefficients at angle of
// attack alpha [degrees].
func (p *Polar) Coefficients(alpha float64) (cl, cd float64) {
	return p.cl.Predict(alpha), p.cd.Predict(alpha)
}

// Samples returns a copy of the polar table.
func (p *Polar) Samples() []PolarSample {
	return append([]PolarSample(nil), p.samples...)
}

// Len returns the number of samples in the table.
func (p *Polar) Len() int { return len(p.samples) }

// tableFunc is a bounded linear interpolation of a table.
type tableFunc interface {
	Predict(x float64) float64
}

// constFunc is used for tables with a single sample, which gonum's
// interpolators cannot fit.
type constFunc float64

func (c constFunc) Predict(float64) float64 { return float64(c) }

// newTableFunc fits a piecewise linear function to xs and ys. xs must be
// strictly increasing. Predictions outside of the range of xs return the
// value at the nearest end of the table.
func newTableFunc(xs, ys []float64) (tableFunc, error) {
	if len(xs) == 1 {
		return constFunc(ys[0]), nil
	}
	var pl interp.PiecewiseLinear
	if err := pl.Fit(xs, ys); err != nil {
		return nil, err
	}
	return &pl, nil
}

// Point is a two-dimensional coordinate.
type Point struct {
	X, Y float64
}

// Airfoil holds the shape and aerodynamic data of an airfoil.
type Airfoil struct {
	Name       string
	Reynolds   float64
	Control    int
	InclUAData bool // whether unsteady aerodynamic data is included

	RefCoord Point   // aerodynamic reference point, normalized by chord
	Shape    []Point // shape coordinates, normalized by chord

	Polar *Polar
}

func (a *Airfoil) String() string {
	n := 0
	if a.Polar != nil {
		n = a.Polar.Len()
	}
	return fmt.Sprintf("Airfoil(name=%s, reynolds=%g, control=%d, incl_ua_data=%v, "+
		"num_shape_coords=%d, num_aero_data=%d)",
		a.Name, a.Reynolds, a.Control, a.InclUAData, len(a.Shape), n)
}
