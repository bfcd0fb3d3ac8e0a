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
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/klauspost/pgzip"
	"github.com/parquet-go/parquet-go"
	"github.com/tealeg/xlsx"
)

// WriteReport writes a text summary of sol to w. dataSource is a
// description of where the rotor data came from.
func WriteReport(w io.Writer, dataSource string, sol *Solution) error {
	u, err := sol.Units()
	if err != nil {
		return err
	}
	var b strings.Builder
	fmt.Fprintln(&b, "=== Wind Turbine Simulation Results ===")
	fmt.Fprintf(&b, "\nData Source: %s\n", dataSource)
	fmt.Fprintln(&b, "\n=== Operational Conditions ===")
	fmt.Fprintf(&b, "Wind Speed: %.2f m/s\n", sol.WindSpeed)
	fmt.Fprintf(&b, "Air Density: %.2f kg/m^3\n", sol.Rho)
	fmt.Fprintf(&b, "Number of Blades: %d\n", sol.NumBlades)
	fmt.Fprintf(&b, "Pitch: %.2f deg\n", sol.Pitch)
	fmt.Fprintf(&b, "Rotor Speed: %.2f rpm\n", sol.RPM())
	fmt.Fprintln(&b, "\n=== Results ===")
	fmt.Fprintf(&b, "Total Thrust: %.2f N\n", u.Thrust.Value())
	fmt.Fprintf(&b, "Total Torque: %.2f Nm\n", u.Torque.Value())
	fmt.Fprintf(&b, "Total Power: %.2f W\n", u.Power.Value())
	fmt.Fprintf(&b, "Thrust Coefficient (CT): %.4f\n", u.CT.Value())
	fmt.Fprintf(&b, "Power Coefficient (CP): %.4f\n", u.CP.Value())
	if sol.NotConverged > 0 {
		fmt.Fprintf(&b, "\nWarning: %d of %d stations did not converge\n", sol.NotConverged, len(sol.States))
	}
	_, err = io.WriteString(w, b.String())
	return err
}

// WritePointState writes the aerodynamic state at a single spanwise
// position to w.
func WritePointState(w io.Writer, ps PointState) error {
	_, err := fmt.Fprintf(w, `Aerodynamic data at radius %.2f m:
Radius: %.2f m
Chord: %.4f m
Twist: %.2f degrees
Axial induction factor (a): %.4f
Tangential induction factor (a'): %.4f
Angle of attack (alpha): %.2f degrees
Lift coefficient (Cl): %.4f
Drag coefficient (Cd): %.4f
Flow angle (phi): %.2f degrees
Normal force coefficient (Cn): %.4f
Tangential force coefficient (Ct): %.4f
Converged: %v (%d iterations)
`, ps.R, ps.R, ps.Chord, ps.Twist, ps.A, ps.APrime, ps.Alpha, ps.Cl, ps.Cd, ps.Phi*radToDeg,
		ps.Cn, ps.Ct, ps.Converged, ps.Iterations)
	return err
}

func formatFloat(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }

var stationHeader = []string{"r", "dr", "chord", "twist", "airfoil_id", "solidity",
	"a", "a_prime", "alpha", "phi", "cl", "cd", "cn", "ct", "F", "converged",
	"v_rel", "lift", "drag", "fn", "ft", "dT", "dM"}

// WriteStationsCSV writes the state and loads of every station of sol
// to w in CSV format.
func WriteStationsCSV(w io.Writer, rotor *Rotor, sol *Solution) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(stationHeader); err != nil {
		return err
	}
	for i, s := range sol.States {
		st := rotor.Station(i)
		l := sol.Loads[i]
		row := []string{formatFloat(st.R), formatFloat(st.Dr), formatFloat(st.Chord),
			formatFloat(st.Twist), strconv.Itoa(st.AirfoilID), formatFloat(s.Solidity),
			formatFloat(s.A), formatFloat(s.APrime), formatFloat(s.Alpha),
			formatFloat(s.Phi * radToDeg), formatFloat(s.Cl), formatFloat(s.Cd),
			formatFloat(s.Cn), formatFloat(s.Ct), formatFloat(s.F), strconv.FormatBool(s.Converged),
			formatFloat(l.VRel), formatFloat(l.L), formatFloat(l.D), formatFloat(l.Fn),
			formatFloat(l.Ft), formatFloat(l.DT), formatFloat(l.DM)}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// CurvePoint is one row of a performance curve.
type CurvePoint struct {
	WindSpeed    float64 `parquet:"wind_speed"`
	Pitch        float64 `parquet:"pitch"`
	Omega        float64 `parquet:"omega"`
	Thrust       float64 `parquet:"thrust"`
	Torque       float64 `parquet:"torque"`
	Power        float64 `parquet:"power"`
	CT           float64 `parquet:"ct"`
	CP           float64 `parquet:"cp"`
	NotConverged int32   `parquet:"not_converged"`
}

// Points returns the curve as a list of rows.
func (c *Curve) Points() []CurvePoint {
	p := make([]CurvePoint, c.Len())
	for i := range p {
		p[i] = CurvePoint{
			WindSpeed:    c.WindSpeed[i],
			Pitch:        c.Pitch[i],
			Omega:        c.Omega[i],
			Thrust:       c.Thrust[i],
			Torque:       c.Torque[i],
			Power:        c.Power[i],
			CT:           c.CT[i],
			CP:           c.CP[i],
			NotConverged: int32(c.NotConverged[i]),
		}
	}
	return p
}

var curveHeader = []string{"wind_speed", "pitch", "omega", "thrust", "torque", "power", "ct", "cp", "not_converged"}

func (p CurvePoint) values() []float64 {
	return []float64{p.WindSpeed, p.Pitch, p.Omega, p.Thrust, p.Torque, p.Power, p.CT, p.CP,
		float64(p.NotConverged)}
}

// WriteCurveCSV writes c to w in CSV format.
func WriteCurveCSV(w io.Writer, c *Curve) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(curveHeader); err != nil {
		return err
	}
	for _, p := range c.Points() {
		v := p.values()
		row := make([]string, len(v))
		for i, x := range v {
			row[i] = formatFloat(x)
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteCurveParquet writes c to w in Apache Parquet format.
func WriteCurveParquet(w io.Writer, c *Curve) error {
	pw := parquet.NewGenericWriter[CurvePoint](w)
	if _, err := pw.Write(c.Points()); err != nil {
		return fmt.Errorf("bem: writing parquet: %v", err)
	}
	if err := pw.Close(); err != nil {
		return fmt.Errorf("bem: writing parquet: %v", err)
	}
	return nil
}

// WriteCurveXLSX saves c to a Microsoft Excel file at path.
func WriteCurveXLSX(path string, c *Curve) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("performance")
	if err != nil {
		return fmt.Errorf("bem: creating xlsx sheet: %v", err)
	}
	row := sheet.AddRow()
	for _, h := range curveHeader {
		row.AddCell().Value = h
	}
	for _, p := range c.Points() {
		row := sheet.AddRow()
		for _, v := range p.values() {
			row.AddCell().SetFloat(v)
		}
	}
	if err := f.Save(path); err != nil {
		return fmt.Errorf("bem: saving xlsx file: %v", err)
	}
	return nil
}

// gzipFile closes the gzip writer before the file it writes to.
type gzipFile struct {
	*pgzip.Writer
	f *os.File
}

func (g gzipFile) Close() error {
	if err := g.Writer.Close(); err != nil {
		g.f.Close()
		return err
	}
	return g.f.Close()
}

// CreateOutput creates the file at path, along with its directory.
// If path ends in ".gz", the output is gzip compressed.
func CreateOutput(path string) (io.WriteCloser, error) {
	if err := os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
		return nil, fmt.Errorf("bem: creating output directory: %v", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("bem: creating output file: %v", err)
	}
	if strings.HasSuffix(path, ".gz") {
		return gzipFile{Writer: pgzip.NewWriter(f), f: f}, nil
	}
	return f, nil
}

// SaveCurve saves c to path. The format is chosen by the file
// extension: ".csv", ".parquet", or ".xlsx". CSV and Parquet files can
// additionally be compressed by adding ".gz" to the file name.
func SaveCurve(path string, c *Curve) error {
	ext := filepath.Ext(strings.TrimSuffix(path, ".gz"))
	var write func(io.Writer, *Curve) error
	switch ext {
	case ".xlsx":
		if strings.HasSuffix(path, ".gz") {
			return fmt.Errorf("bem: compressed xlsx output is not supported (%s)", path)
		}
		if err := os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
			return fmt.Errorf("bem: creating output directory: %v", err)
		}
		return WriteCurveXLSX(path, c)
	case ".csv":
		write = WriteCurveCSV
	case ".parquet":
		write = WriteCurveParquet
	default:
		return fmt.Errorf("bem: unsupported curve output format %q (%s)", ext, path)
	}
	w, err := CreateOutput(path)
	if err != nil {
		return err
	}
	if err := write(w, c); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}
