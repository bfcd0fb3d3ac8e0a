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
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/pgzip"
	"github.com/kr/pretty"
	"github.com/parquet-go/parquet-go"
	"github.com/tealeg/xlsx"
)

func testCurve(t *testing.T) *Curve {
	sw := testSweeper(t, SweepConfig{VMin: 5, VMax: 15, NumPoints: 5, NumBlades: 3, Rho: DefaultAirDensity})
	c, err := sw.Curve(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func TestWriteReport(t *testing.T) {
	rotor := testRotor(t)
	op := NewOperatingPoint(testSchedule(t), 10, DefaultAirDensity, DefaultNumBlades)
	sol, err := testSolver(t).Solve(rotor, op)
	if err != nil {
		t.Fatal(err)
	}
	var b bytes.Buffer
	if err := WriteReport(&b, "test rotor", sol); err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{
		"=== Wind Turbine Simulation Results ===",
		"Data Source: test rotor",
		"Wind Speed: 10.00 m/s",
		"Air Density: ",
		"Number of Blades: 3",
		"Total Thrust: ",
		"Power Coefficient (CP): ",
	} {
		if !strings.Contains(b.String(), want) {
			t.Errorf("report is missing %q:\n%s", want, b.String())
		}
	}
	if strings.Contains(b.String(), "did not converge") {
		t.Error("report should not contain a convergence warning")
	}

	b.Reset()
	if err := WritePointState(&b, testSolver(t).SolveAt(rotor, 30, op)); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(b.String(), "Aerodynamic data at radius 30.00 m:\n") {
		t.Errorf("point state:\n%s", b.String())
	}
}

func TestWriteStationsCSV(t *testing.T) {
	rotor := testRotor(t)
	sol, err := testSolver(t).Solve(rotor, testOperatingPoint(8))
	if err != nil {
		t.Fatal(err)
	}
	var b bytes.Buffer
	if err := WriteStationsCSV(&b, rotor, sol); err != nil {
		t.Fatal(err)
	}
	records, err := csv.NewReader(&b).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != rotor.Len()+1 {
		t.Fatalf("%d records", len(records))
	}
	if records[1][0] != "4" || records[1][15] != "true" {
		t.Errorf("first station = %v", records[1])
	}
}

func TestSaveCurve(t *testing.T) {
	c := testCurve(t)
	dir := t.TempDir()

	t.Run("csv", func(t *testing.T) {
		path := filepath.Join(dir, "curve.csv")
		if err := SaveCurve(path, c); err != nil {
			t.Fatal(err)
		}
		f, err := os.Open(path)
		if err != nil {
			t.Fatal(err)
		}
		defer f.Close()
		records, err := csv.NewReader(f).ReadAll()
		if err != nil {
			t.Fatal(err)
		}
		if diff := pretty.Diff(records[0], curveHeader); len(diff) != 0 {
			t.Error(diff)
		}
		if len(records) != 6 || records[3][0] != "10" {
			t.Errorf("records = %v", records)
		}
	})
	t.Run("parquet.gz", func(t *testing.T) {
		path := filepath.Join(dir, "sub", "curve.parquet.gz")
		if err := SaveCurve(path, c); err != nil {
			t.Fatal(err)
		}
		f, err := os.Open(path)
		if err != nil {
			t.Fatal(err)
		}
		defer f.Close()
		gz, err := pgzip.NewReader(f)
		if err != nil {
			t.Fatal(err)
		}
		var b bytes.Buffer
		if _, err := b.ReadFrom(gz); err != nil {
			t.Fatal(err)
		}
		points, err := parquet.Read[CurvePoint](bytes.NewReader(b.Bytes()), int64(b.Len()))
		if err != nil {
			t.Fatal(err)
		}
		if diff := pretty.Diff(points, c.Points()); len(diff) != 0 {
			t.Error(diff)
		}
	})
	t.Run("xlsx", func(t *testing.T) {
		path := filepath.Join(dir, "curve.xlsx")
		if err := SaveCurve(path, c); err != nil {
			t.Fatal(err)
		}
		f, err := xlsx.OpenFile(path)
		if err != nil {
			t.Fatal(err)
		}
		s, ok := f.Sheet["performance"]
		if !ok {
			t.Fatal("missing sheet")
		}
		if v := s.Cell(0, 5).Value; v != "power" {
			t.Errorf("header = %s", v)
		}
		v, err := s.Cell(3, 0).Float()
		if err != nil {
			t.Fatal(err)
		}
		if v != 10 {
			t.Errorf("wind speed = %g", v)
		}
	})
	t.Run("invalid", func(t *testing.T) {
		for _, name := range []string{"curve.txt", "curve.xlsx.gz"} {
			if err := SaveCurve(filepath.Join(dir, name), c); err == nil {
				t.Errorf("%s: expected an error", name)
			}
		}
	})
}
