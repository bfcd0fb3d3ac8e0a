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
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// isComment returns whether line is a comment or header line in one
// of the AeroDyn-style input formats.
func isComment(line string, markers string) bool {
	return line == "" || strings.ContainsRune(markers, rune(line[0]))
}

// parseFloats parses all of fields as floating point numbers.
func parseFloats(fields []string) ([]float64, bool) {
	v := make([]float64, len(fields))
	for i, f := range fields {
		var err error
		if v[i], err = strconv.ParseFloat(f, 64); err != nil {
			return nil, false
		}
	}
	return v, true
}

// ReadBlade reads blade stations from an AeroDyn blade definition file,
// which has one row per station with the columns
// r, curve offset, sweep, curve angle, twist, chord, and airfoil ID.
// Header and comment lines and malformed rows are skipped. The airfoils
// of the returned stations are not set; use AssignAirfoils.
func ReadBlade(r io.Reader) ([]Station, error) {
	var stations []Station
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if isComment(line, "-=!") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 7 {
			continue
		}
		v, ok := parseFloats(fields[:6])
		if !ok {
			continue
		}
		id, err := strconv.Atoi(fields[6])
		if err != nil {
			continue
		}
		stations = append(stations, Station{R: v[0], Twist: v[4], Chord: v[5], AirfoilID: id})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("bem: reading blade file: %v", err)
	}
	return stations, nil
}

// ReadSchedule reads an operational schedule, which has one row per
// control point with the columns wind speed [m/s], pitch [degrees],
// rotor speed [rpm], aerodynamic power [W] and aerodynamic thrust [N].
// Comment lines and rows without exactly five numbers are skipped.
func ReadSchedule(r io.Reader) ([]ScheduleRow, error) {
	var rows []ScheduleRow
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if isComment(line, "-=!#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 5 {
			continue
		}
		v, ok := parseFloats(fields)
		if !ok {
			continue
		}
		rows = append(rows, ScheduleRow{
			WindSpeed:  v[0],
			Pitch:      v[1],
			RPM:        v[2],
			AeroPower:  v[3],
			AeroThrust: v[4],
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("bem: reading operational schedule: %v", err)
	}
	return rows, nil
}

// ReadPolar reads an AeroDyn airfoil polar file into af, setting its
// Reynolds number, control setting, unsteady aerodynamics flag, and
// polar. Table rows that follow the NumAlf line are read as
// angle of attack [degrees], lift, drag, and moment coefficients.
func ReadPolar(r io.Reader, af *Airfoil) error {
	var samples []PolarSample
	inTable := false
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		fields := strings.Fields(line)
		switch {
		case len(fields) == 0:
			continue
		case strings.Contains(line, "! Reynolds number in millions"):
			if re, err := strconv.ParseFloat(fields[0], 64); err == nil {
				af.Reynolds = re * 1.e6
			}
			continue
		case strings.Contains(line, "Ctrl"):
			if c, err := strconv.Atoi(fields[0]); err == nil {
				af.Control = c
			}
			continue
		case strings.Contains(line, "InclUAdata"):
			af.InclUAData = strings.EqualFold(fields[0], "true")
			continue
		case strings.Contains(line, "NumAlf"):
			inTable = true
			continue
		}
		if !inTable || len(fields) < 4 {
			continue
		}
		v, ok := parseFloats(fields[:4])
		if !ok {
			continue
		}
		samples = append(samples, PolarSample{Alpha: v[0], Cl: v[1], Cd: v[2], Cm: v[3]})
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("bem: reading polar: %v", err)
	}
	p, err := NewPolar(samples)
	if err != nil {
		return err
	}
	af.Polar = p
	return nil
}

// ReadAirfoilCoords reads an AeroDyn airfoil coordinate file into af,
// setting its reference point and shape.
func ReadAirfoilCoords(r io.Reader, af *Airfoil) error {
	const (
		none = iota
		ref
		shape
	)
	section := none
	numCoords := 0
	af.Shape = af.Shape[:0]
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		fields := strings.Fields(line)
		switch {
		case len(fields) == 0:
			continue
		case strings.Contains(line, "NumCoords"):
			if n, err := strconv.Atoi(fields[0]); err == nil {
				numCoords = n
			}
			continue
		case strings.Contains(line, "! x-y coordinate of airfoil reference"):
			section = ref
			continue
		case strings.Contains(line, "! coordinates of airfoil shape"):
			section = shape
			continue
		case line[0] == '!':
			continue
		}
		if len(fields) != 2 {
			continue
		}
		v, ok := parseFloats(fields)
		if !ok {
			continue
		}
		switch section {
		case ref:
			af.RefCoord = Point{X: v[0], Y: v[1]}
			section = none
		case shape:
			if numCoords == 0 || len(af.Shape) < numCoords {
				af.Shape = append(af.Shape, Point{X: v[0], Y: v[1]})
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("bem: reading airfoil coordinates: %v", err)
	}
	return nil
}

// airfoilID extracts the airfoil number from a coordinate file name
// such as "IEA-15-240-RWT_AF07_Coords.txt".
func airfoilID(path string) (string, error) {
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	parts := strings.Split(stem, "_")
	for i := len(parts) - 1; i >= 0; i-- {
		if strings.HasPrefix(parts[i], "AF") && len(parts[i]) > 2 {
			id := parts[i][2:]
			if _, err := strconv.Atoi(id); err == nil {
				return id, nil
			}
		}
	}
	return "", fmt.Errorf("bem: can't find airfoil number in file name %s", path)
}

// LoadAirfoils reads the airfoil coordinate files matching coordsGlob,
// and for each one the polar file given by polarTemplate with "{id}"
// replaced by the airfoil number in the coordinate file name. The
// returned airfoils are keyed by airfoil number.
func LoadAirfoils(coordsGlob, polarTemplate string) (map[int]*Airfoil, error) {
	files, err := filepath.Glob(coordsGlob)
	if err != nil {
		return nil, fmt.Errorf("bem: finding airfoil files: %v", err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("bem: no airfoil coordinate files match %s", coordsGlob)
	}
	sort.Strings(files)
	airfoils := make(map[int]*Airfoil)
	for _, file := range files {
		id, err := airfoilID(file)
		if err != nil {
			return nil, err
		}
		af := &Airfoil{Name: "Airfoil " + id}
		if err := readFile(file, func(r io.Reader) error { return ReadAirfoilCoords(r, af) }); err != nil {
			return nil, err
		}
		polarFile := strings.Replace(polarTemplate, "{id}", id, -1)
		if err := readFile(polarFile, func(r io.Reader) error { return ReadPolar(r, af) }); err != nil {
			return nil, err
		}
		n, _ := strconv.Atoi(id)
		airfoils[n] = af
	}
	return airfoils, nil
}

func readFile(path string, f func(io.Reader) error) error {
	r, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("bem: %v", err)
	}
	defer r.Close()
	if err := f(r); err != nil {
		return fmt.Errorf("%v (file %s)", err, path)
	}
	return nil
}

// AssignAirfoils sets the airfoil of each station according to its
// airfoil ID. It returns the IDs that are not in airfoils.
func AssignAirfoils(stations []Station, airfoils map[int]*Airfoil) (missing []int) {
	seen := make(map[int]bool)
	for i, s := range stations {
		af, ok := airfoils[s.AirfoilID]
		if !ok {
			if !seen[s.AirfoilID] {
				missing = append(missing, s.AirfoilID)
				seen[s.AirfoilID] = true
			}
			continue
		}
		stations[i].Airfoil = af
	}
	return missing
}
