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
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

var pngHeader = []byte("\x89PNG")

func TestCurvePlots(t *testing.T) {
	c := testCurve(t)
	for name := range CurveVariables {
		var b bytes.Buffer
		if err := WriteCurvePlot(&b, c, name); err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if !bytes.HasPrefix(b.Bytes(), pngHeader) {
			t.Errorf("%s: output is not a PNG image", name)
		}
	}
	if err := WriteCurvePlot(new(bytes.Buffer), c, "efficiency"); err == nil {
		t.Error("invalid variable should be an error")
	}

	files, err := SaveCurvePlots(t.TempDir(), c)
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 4 || filepath.Base(files[0]) != "power_curve.png" {
		t.Errorf("files = %v", files)
	}
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			t.Error(err)
		}
	}
}

func TestShapePlots(t *testing.T) {
	af := &Airfoil{Name: "test", Shape: []Point{{X: 1}, {X: 0.5, Y: 0.08}, {X: 0}, {X: 0.5, Y: -0.05}, {X: 1}}}
	p, err := AirfoilPlot(af, &Airfoil{Name: "no shape"})
	if err != nil {
		t.Fatal(err)
	}
	dir := t.TempDir()
	if err := SavePlot(p, filepath.Join(dir, "airfoils.png")); err != nil {
		t.Fatal(err)
	}
	if _, err := AirfoilPlot(&Airfoil{Name: "no shape"}); err == nil {
		t.Error("plotting no shapes should be an error")
	}

	p, err = PlanformPlot(testRotor(t))
	if err != nil {
		t.Fatal(err)
	}
	if err := SavePlot(p, filepath.Join(dir, "planform", "planform.png")); err != nil {
		t.Fatal(err)
	}
}
