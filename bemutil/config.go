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


package bemutil

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/lnashier/viper"
	"github.com/spatialmodel/bem"
	"github.com/spatialmodel/bem/cloud"
	"github.com/spf13/cast"
)

// DataSource describes where the files describing a turbine are.
type DataSource struct {
	// Name is a description of the turbine data set.
	Name string

	BladeFile            string
	AirfoilCoordsGlob    string
	AirfoilPolarTemplate string
	ScheduleFile         string
}

// LoadDataSource reads the data source file given by the DataSource
// configuration variable, if there is one, and then overrides its
// fields with any of the BladeFile, AirfoilCoordsGlob,
// AirfoilPolarTemplate, and ScheduleFile configuration variables
// that are set.
func LoadDataSource(cfg *viper.Viper) (*DataSource, error) {
	ds := new(DataSource)
	if f := os.ExpandEnv(cfg.GetString("DataSource")); f != "" {
		var err error
		ds, err = ReadDataSource(f)
		if err != nil {
			return nil, err
		}
	}
	for _, v := range []struct {
		name      string
		dst       *string
		localOnly bool // airfoil files are matched by pattern on disk
	}{
		{"BladeFile", &ds.BladeFile, false},
		{"AirfoilCoordsGlob", &ds.AirfoilCoordsGlob, true},
		{"AirfoilPolarTemplate", &ds.AirfoilPolarTemplate, true},
		{"ScheduleFile", &ds.ScheduleFile, false},
	} {
		if s := os.ExpandEnv(cfg.GetString(v.name)); s != "" {
			*v.dst = s
		}
		if *v.dst == "" {
			return nil, fmt.Errorf("bem: the %s configuration variable is not specified", v.name)
		}
		if v.localOnly && isRemote(*v.dst) {
			return nil, fmt.Errorf("bem: %s must be a local path, not %s", v.name, *v.dst)
		}
	}
	if ds.Name == "" {
		ds.Name = filepath.Base(filepath.Dir(ds.BladeFile))
	}
	return ds, nil
}

// ReadDataSource reads a data source description from the TOML file
// at location f, which can be a local file, a URL, or a blob storage
// location. Relative paths in the file are resolved against the
// directory containing f.
func ReadDataSource(f string) (*DataSource, error) {
	local := maybeDownload(context.TODO(), f, outChan())
	ds := new(DataSource)
	if _, err := toml.DecodeFile(local, ds); err != nil {
		return nil, fmt.Errorf("bem: reading data source file: %v", err)
	}
	ds.BladeFile = resolve(f, os.ExpandEnv(ds.BladeFile))
	ds.AirfoilCoordsGlob = resolve(f, os.ExpandEnv(ds.AirfoilCoordsGlob))
	ds.AirfoilPolarTemplate = resolve(f, os.ExpandEnv(ds.AirfoilPolarTemplate))
	ds.ScheduleFile = resolve(f, os.ExpandEnv(ds.ScheduleFile))
	if ds.Name == "" {
		ds.Name = strings.TrimSuffix(filepath.Base(f), filepath.Ext(f))
	}
	return ds, nil
}

// resolve returns p relative to the directory containing base, unless
// p is empty, absolute, or remote.
func resolve(base, p string) string {
	if p == "" || filepath.IsAbs(p) || isRemote(p) {
		return p
	}
	if isRemote(base) {
		i := strings.Index(base, "://")
		return base[:i+3] + path.Join(path.Dir(base[i+3:]), p)
	}
	return filepath.Join(filepath.Dir(base), p)
}

// SolverConfig unmarshals a viper configuration for the
// induction factor solver.
func SolverConfig(cfg *viper.Viper) (bem.Config, error) {
	c := bem.Config{
		AGuess:        cfg.GetFloat64("AGuess"),
		APrimeGuess:   cfg.GetFloat64("APrimeGuess"),
		MaxIterations: cfg.GetInt("MaxIterations"),
		Tolerance:     cfg.GetFloat64("Tolerance"),
		AirDensity:    cfg.GetFloat64("AirDensity"),
		NumBlades:     cfg.GetInt("NumBlades"),
		Corrections: bem.Corrections{
			TipLoss:   cfg.GetBool("TipLoss"),
			HubRadius: cfg.GetFloat64("HubRadius"),
			Glauert:   cfg.GetBool("Glauert"),
		},
	}
	if err := c.Validate(); err != nil {
		return c, fmt.Errorf("parsing solver configuration: %v", err)
	}
	return c, nil
}

// SweepConfig unmarshals a viper configuration for a wind speed sweep
// using the air density and number of blades in c.
func SweepConfig(cfg *viper.Viper, c bem.Config) bem.SweepConfig {
	return bem.SweepConfig{
		VMin:      cfg.GetFloat64("Sweep.MinWindSpeed"),
		VMax:      cfg.GetFloat64("Sweep.MaxWindSpeed"),
		NumPoints: cfg.GetInt("Sweep.NumPoints"),
		NumBlades: c.NumBlades,
		Rho:       c.AirDensity,
	}
}

// checkOutputDir makes sure that the output directory is specified and
// exists, and expands any environment variables. Local directories
// are created if necessary.
func checkOutputDir(dir string) (string, error) {
	if dir == "" {
		return "", fmt.Errorf(`you need to specify an output directory configuration variable (for example: OutputDir="results")`)
	}
	dir = os.ExpandEnv(dir)
	if cloud.IsBlob(dir) {
		bucketName, _, err := cloud.Split(dir)
		if err != nil {
			return dir, err
		}
		bucket, err := cloud.OpenBucket(context.TODO(), bucketName)
		if err != nil {
			return dir, fmt.Errorf("bem: error when checking OutputDir location: %v", err)
		}
		bucket.Close()
		return dir, nil
	}
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return dir, fmt.Errorf("bem: creating OutputDir: %v", err)
	}
	return dir, nil
}

// outputPath returns the location of the file name in directory dir.
func outputPath(dir, name string) string {
	if cloud.IsBlob(dir) {
		return strings.TrimSuffix(dir, "/") + "/" + name
	}
	return filepath.Join(dir, name)
}

// checkLogFile fills in a default value for the log file path if one isn't
// specified.
func checkLogFile(logFile, outputDir string) string {
	if logFile == "" {
		return outputPath(outputDir, "bem.log")
	}
	return os.ExpandEnv(logFile)
}

// expandStringSlice expands the environment variables in a slice of strings.
func expandStringSlice(s []string) []string {
	for i := 0; i < len(s); i++ {
		s[i] = os.ExpandEnv(s[i])
	}
	return s
}

// toIntSliceE converts a configuration value to a slice of integers,
// accounting for the fact that it might be a JSON array if it was set
// from a command line argument.
func toIntSliceE(s interface{}) ([]int, error) {
	switch v := s.(type) {
	case nil:
		return nil, nil
	case string:
		if v == "" {
			return nil, nil
		}
		var o []int
		if err := json.Unmarshal([]byte(v), &o); err != nil {
			return nil, err
		}
		return o, nil
	default:
		return cast.ToIntSliceE(v)
	}
}
