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
	"io"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// Plot sizes.
const (
	plotWidth  = 6 * vg.Inch
	plotHeight = 4 * vg.Inch
)

// CurveVariables are the names of the curve variables that can be
// plotted, with their axis labels.
var CurveVariables = map[string]string{
	"power":  "Power (W)",
	"thrust": "Thrust (N)",
	"torque": "Torque (N m)",
	"cp":     "Power coefficient (-)",
	"ct":     "Thrust coefficient (-)",
}

func (c *Curve) variable(name string) ([]float64, error) {
	switch name {
	case "power":
		return c.Power, nil
	case "thrust":
		return c.Thrust, nil
	case "torque":
		return c.Torque, nil
	case "cp":
		return c.CP, nil
	case "ct":
		return c.CT, nil
	}
	return nil, fmt.Errorf("bem: invalid curve variable %q", name)
}

func xys(x, y []float64) plotter.XYs {
	xy := make(plotter.XYs, len(x))
	for i := range x {
		xy[i].X = x[i]
		xy[i].Y = y[i]
	}
	return xy
}

// CurvePlot creates a plot of the curve variable with the given name
// against wind speed. Valid names are the keys of CurveVariables.
func CurvePlot(c *Curve, name string) (*plot.Plot, error) {
	y, err := c.variable(name)
	if err != nil {
		return nil, err
	}
	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s curve", name)
	p.X.Label.Text = "Wind speed (m/s)"
	p.Y.Label.Text = CurveVariables[name]
	if err := plotutil.AddLinePoints(p, xys(c.WindSpeed, y)); err != nil {
		return nil, err
	}
	p.Add(plotter.NewGrid())
	return p, nil
}

// WriteCurvePlot writes a PNG image of the curve variable with the given
// name to w.
func WriteCurvePlot(w io.Writer, c *Curve, name string) error {
	p, err := CurvePlot(c, name)
	if err != nil {
		return err
	}
	wt, err := p.WriterTo(plotWidth, plotHeight, "png")
	if err != nil {
		return err
	}
	_, err = wt.WriteTo(w)
	return err
}

// SaveCurvePlots saves PNG images of the power, thrust, torque, and power
// coefficient curves in dir.
func SaveCurvePlots(dir string, c *Curve) ([]string, error) {
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return nil, fmt.Errorf("bem: creating plot directory: %v", err)
	}
	var files []string
	for _, name := range []string{"power", "thrust", "torque", "cp"} {
		p, err := CurvePlot(c, name)
		if err != nil {
			return nil, err
		}
		file := filepath.Join(dir, name+"_curve.png")
		if err := p.Save(plotWidth, plotHeight, file); err != nil {
			return nil, fmt.Errorf("bem: saving plot: %v", err)
		}
		files = append(files, file)
	}
	return files, nil
}

// AirfoilPlot creates a plot of the shapes of the given airfoils.
func AirfoilPlot(airfoils ...*Airfoil) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = "Airfoil Shapes"
	p.X.Label.Text = "x/c"
	p.Y.Label.Text = "y/c"
	var lines []interface{}
	for _, af := range airfoils {
		if len(af.Shape) == 0 {
			continue
		}
		xy := make(plotter.XYs, len(af.Shape))
		for i, pt := range af.Shape {
			xy[i].X, xy[i].Y = pt.X, pt.Y
		}
		lines = append(lines, af.Name, xy)
	}
	if len(lines) == 0 {
		return nil, fmt.Errorf("bem: no airfoil shapes to plot")
	}
	if err := plotutil.AddLines(p, lines...); err != nil {
		return nil, err
	}
	p.Add(plotter.NewGrid())
	// Equal aspect ratio for the plot dimensions used.
	p.Y.Min, p.Y.Max = -0.5*float64(plotHeight/plotWidth), 0.5*float64(plotHeight/plotWidth)
	p.X.Min, p.X.Max = 0, 1
	return p, nil
}

// PlanformPlot creates a plot of blade chord and twist as a function
// of spanwise position.
func PlanformPlot(rotor *Rotor) (*plot.Plot, error) {
	n := rotor.Len()
	r, chord, twist := make([]float64, n), make([]float64, n), make([]float64, n)
	for i, s := range rotor.stations {
		r[i], chord[i], twist[i] = s.R, s.Chord, s.Twist
	}
	p := plot.New()
	p.Title.Text = "Blade planform"
	p.X.Label.Text = "Spanwise position (m)"
	p.Y.Label.Text = "Chord (m), twist (degrees)"
	if err := plotutil.AddLinePoints(p, "chord", xys(r, chord), "twist", xys(r, twist)); err != nil {
		return nil, err
	}
	p.Add(plotter.NewGrid())
	return p, nil
}

// SavePlot saves p as an image at path. The format is chosen by the
// file extension.
func SavePlot(p *plot.Plot, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
		return fmt.Errorf("bem: creating plot directory: %v", err)
	}
	return p.Save(plotWidth, plotHeight, path)
}
