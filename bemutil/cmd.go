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


// Package bemutil contains the command-line interface for the bem
// rotor performance model.
package bemutil

import (
	"context"
	"fmt"
	"os"

	"github.com/lnashier/viper"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/bem"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Cfg holds configuration information.
var Cfg *viper.Viper

var options []struct {
	name, usage, shorthand string
	defaultVal             interface{}
	flagsets               []*pflag.FlagSet
}

func init() {
	// Flag sets that need the rotor description.
	inputFlags := []*pflag.FlagSet{solveCmd.Flags(), stationCmd.Flags(), sweepCmd.Flags(), plotCmd.Flags()}
	// Flag sets that run the solver.
	solverFlags := []*pflag.FlagSet{solveCmd.Flags(), stationCmd.Flags(), sweepCmd.Flags()}
	// Flag sets that write output files.
	outputFlags := []*pflag.FlagSet{solveCmd.Flags(), sweepCmd.Flags(), plotCmd.Flags()}

	// Options are the configuration options available to bem.
	options = []struct {
		name, usage, shorthand string
		defaultVal             interface{}
		flagsets               []*pflag.FlagSet
	}{
		{
			name: "config",
			usage: `
              config specifies the configuration file location.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "DataSource",
			usage: `
              DataSource is the path to a TOML file giving the name of the
              turbine data set and the locations of its blade, airfoil, and
              operational schedule files. Relative paths in the file are
              relative to the directory containing it. Any of the files can be
              overridden using the BladeFile, AirfoilCoordsGlob,
              AirfoilPolarTemplate, and ScheduleFile options.`,
			shorthand:  "d",
			defaultVal: "",
			flagsets:   inputFlags,
		},
		{
			name: "BladeFile",
			usage: `
              BladeFile is the path to the AeroDyn blade definition file. It
              can be a local file, a URL, or a blob storage location
              (e.g., s3://bucket/blade.dat).`,
			defaultVal: "",
			flagsets:   inputFlags,
		},
		{
			name: "AirfoilCoordsGlob",
			usage: `
              AirfoilCoordsGlob is a glob pattern matching the airfoil
              coordinate files. Each file name must contain the airfoil
              number in the format 'AF##', for example
              'IEA-15-240-RWT_AF07_Coords.txt'. It must be a local path;
              URLs and blob storage locations are not supported.`,
			defaultVal: "",
			flagsets:   inputFlags,
		},
		{
			name: "AirfoilPolarTemplate",
			usage: `
              AirfoilPolarTemplate is the path to the airfoil polar files,
              where '{id}' is replaced with the airfoil number from
              the corresponding coordinate file. It must be a local path.`,
			defaultVal: "",
			flagsets:   inputFlags,
		},
		{
			name: "ScheduleFile",
			usage: `
              ScheduleFile is the path to the operational schedule file,
              with columns of wind speed [m/s], pitch [deg], rotor speed [rpm],
              aerodynamic power [kW], and aerodynamic thrust [kN].`,
			defaultVal: "",
			flagsets:   inputFlags,
		},
		{
			name: "WindSpeed",
			usage: `
              WindSpeed is the free-stream wind speed [m/s] for a single
              operating point.`,
			shorthand:  "v",
			defaultVal: 10.0,
			flagsets:   []*pflag.FlagSet{solveCmd.Flags(), stationCmd.Flags()},
		},
		{
			name: "Radius",
			usage: `
              Radius is the radial position [m] at which to calculate the
              aerodynamic state of the blade.`,
			shorthand:  "r",
			defaultVal: 30.0,
			flagsets:   []*pflag.FlagSet{stationCmd.Flags()},
		},
		{
			name: "AirDensity",
			usage: `
              AirDensity is the density of the air [kg/m³].`,
			defaultVal: bem.DefaultAirDensity,
			flagsets:   solverFlags,
		},
		{
			name: "NumBlades",
			usage: `
              NumBlades is the number of rotor blades.`,
			defaultVal: bem.DefaultNumBlades,
			flagsets:   solverFlags,
		},
		{
			name: "AGuess",
			usage: `
              AGuess is the initial guess for the axial induction factor.`,
			defaultVal: 0.0,
			flagsets:   solverFlags,
		},
		{
			name: "APrimeGuess",
			usage: `
              APrimeGuess is the initial guess for the tangential induction
              factor.`,
			defaultVal: 0.0,
			flagsets:   solverFlags,
		},
		{
			name: "MaxIterations",
			usage: `
              MaxIterations is the maximum number of induction factor
              iterations at each blade station.`,
			defaultVal: bem.DefaultMaxIterations,
			flagsets:   solverFlags,
		},
		{
			name: "Tolerance",
			usage: `
              Tolerance is the convergence threshold for the change in the
              induction factors between iterations.`,
			defaultVal: bem.DefaultTolerance,
			flagsets:   solverFlags,
		},
		{
			name: "TipLoss",
			usage: `
              TipLoss specifies whether to apply the Prandtl tip loss
              correction.`,
			defaultVal: false,
			flagsets:   solverFlags,
		},
		{
			name: "HubRadius",
			usage: `
              HubRadius is the hub radius [m]. If it is greater than zero, the
              Prandtl hub loss correction is applied.`,
			defaultVal: 0.0,
			flagsets:   solverFlags,
		},
		{
			name: "Glauert",
			usage: `
              Glauert specifies whether to apply the Glauert correction for
              heavily loaded stations.`,
			defaultVal: false,
			flagsets:   solverFlags,
		},
		{
			name: "Sweep.MinWindSpeed",
			usage: `
              Sweep.MinWindSpeed is the lowest wind speed [m/s] in the
              performance curves.`,
			defaultVal: 3.0,
			flagsets:   []*pflag.FlagSet{sweepCmd.Flags()},
		},
		{
			name: "Sweep.MaxWindSpeed",
			usage: `
              Sweep.MaxWindSpeed is the highest wind speed [m/s] in the
              performance curves.`,
			defaultVal: 25.0,
			flagsets:   []*pflag.FlagSet{sweepCmd.Flags()},
		},
		{
			name: "Sweep.NumPoints",
			usage: `
              Sweep.NumPoints is the number of evenly spaced wind speeds in the
              performance curves.`,
			defaultVal: 100,
			flagsets:   []*pflag.FlagSet{sweepCmd.Flags()},
		},
		{
			name: "Sweep.OutputFiles",
			usage: `
              Sweep.OutputFiles are the names of the files in OutputDir that the
              performance curves are saved to. The format is chosen by the
              extension: '.csv', '.parquet', or '.xlsx'. '.csv' and '.parquet'
              files can be compressed by adding '.gz'.`,
			defaultVal: []string{"performance.csv", "performance.xlsx"},
			flagsets:   []*pflag.FlagSet{sweepCmd.Flags()},
		},
		{
			name: "OutputDir",
			usage: `
              OutputDir is the directory where output files are written. It can
              be a blob storage location (e.g., gs://bucket/results).`,
			shorthand:  "o",
			defaultVal: "results",
			flagsets:   outputFlags,
		},
		{
			name: "LogFile",
			usage: `
              LogFile is the path to the desired logfile location. It can
              include environment variables. If LogFile is left blank, the
              log is written to 'bem.log' in OutputDir.`,
			defaultVal: "",
			flagsets:   outputFlags,
		},
		{
			name: "PlotAirfoils",
			usage: `
              PlotAirfoils are the numbers of the airfoils whose shapes are
              plotted. If empty, all airfoils are plotted.`,
			defaultVal: []int{},
			flagsets:   []*pflag.FlagSet{plotCmd.Flags()},
		},
	}

	Cfg = viper.New()

	// Set the prefix for configuration environment variables.
	Cfg.SetEnvPrefix("BEM")

	for _, option := range options {
		for i, set := range option.flagsets {
			if i != 0 { // We don't want to create the same flag twice.
				set.AddFlag(option.flagsets[0].Lookup(option.name))
				continue
			}
			switch v := option.defaultVal.(type) {
			case string:
				set.StringP(option.name, option.shorthand, v, option.usage)
			case []string:
				set.StringSliceP(option.name, option.shorthand, v, option.usage)
			case bool:
				set.BoolP(option.name, option.shorthand, v, option.usage)
			case int:
				set.IntP(option.name, option.shorthand, v, option.usage)
			case []int:
				set.IntSliceP(option.name, option.shorthand, v, option.usage)
			case float64:
				set.Float64P(option.name, option.shorthand, v, option.usage)
			default:
				panic("invalid argument type")
			}
			Cfg.BindPFlag(option.name, set.Lookup(option.name))
			Cfg.BindEnv(option.name)
		}
	}
}

func init() {
	// Link the commands together.
	Root.AddCommand(versionCmd)
	Root.AddCommand(solveCmd)
	Root.AddCommand(stationCmd)
	Root.AddCommand(sweepCmd)
	Root.AddCommand(plotCmd)
}

// outChan returns a channel printing to standard output.
func outChan() chan string {
	outChan := make(chan string)
	go func() {
		for {
			msg := <-outChan
			fmt.Print(msg)
		}
	}()
	return outChan
}

// setConfig finds and reads in the configuration file, if there is one.
func setConfig() error {
	if cfgpath := Cfg.GetString("config"); cfgpath != "" {
		Cfg.SetConfigFile(os.ExpandEnv(cfgpath))
		if err := Cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("bem: problem reading configuration file: %v", err)
		}
	}
	return nil
}

// Root is the main command.
var Root = &cobra.Command{
	Use:   "bem",
	Short: "A wind turbine rotor performance model.",
	Long: `bem estimates the aerodynamic performance of a wind turbine rotor
using Blade Element Momentum theory. Use the subcommands specified below to
access the model functionality.

Refer to the subcommand documentation for configuration options and default settings.
Configuration can be changed by using a configuration file (and providing the
path to the file using the --config flag), by using command-line arguments,
or by setting environment variables in the format 'BEM_var' where 'var' is the
name of the variable to be set. Many configuration variables are additionally
allowed to contain environment variables within them.
Refer to https://github.com/spf13/viper for additional configuration information.`,
	DisableAutoGenTag: true,
	PersistentPreRunE: func(*cobra.Command, []string) error { return setConfig() },
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  "version prints the version number of this version of bem.",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("bem v%s\n", bem.Version)
	},
	DisableAutoGenTag: true,
}

// solveCmd calculates rotor performance at a single wind speed.
var solveCmd = &cobra.Command{
	Use:   "solve",
	Short: "Calculate rotor performance at one wind speed.",
	Long: `solve calculates the induction factors and loads at every blade station
for the wind speed given by WindSpeed, and the resulting rotor thrust, torque,
power, and thrust and power coefficients. A summary report and a table of
station results are written to OutputDir.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		outputDir, err := checkOutputDir(Cfg.GetString("OutputDir"))
		if err != nil {
			return err
		}
		in, c, err := loadRun(cmd)
		if err != nil {
			return err
		}
		return Solve(cmd.OutOrStdout(), checkLogFile(Cfg.GetString("LogFile"), outputDir),
			outputDir, in, c, Cfg.GetFloat64("WindSpeed"))
	},
	DisableAutoGenTag: true,
}

// stationCmd calculates the aerodynamic state at one radial position.
var stationCmd = &cobra.Command{
	Use:   "station",
	Short: "Calculate the aerodynamic state at one radius.",
	Long: `station calculates the induction factors, flow angles, and force
coefficients at the radial position given by Radius and the wind speed given
by WindSpeed. Chord and twist are linearly interpolated between the
neighboring blade stations.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		in, c, err := loadRun(cmd)
		if err != nil {
			return err
		}
		return Station(cmd.OutOrStdout(), logrus.StandardLogger(), in, c,
			Cfg.GetFloat64("WindSpeed"), Cfg.GetFloat64("Radius"))
	},
	DisableAutoGenTag: true,
}

// sweepCmd calculates performance curves.
var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Calculate performance curves.",
	Long: `sweep calculates rotor thrust, torque, power, and thrust and power
coefficients at evenly spaced wind speeds between Sweep.MinWindSpeed and
Sweep.MaxWindSpeed. The curves are saved to the files in Sweep.OutputFiles
and plotted as images in OutputDir.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		outputDir, err := checkOutputDir(Cfg.GetString("OutputDir"))
		if err != nil {
			return err
		}
		in, c, err := loadRun(cmd)
		if err != nil {
			return err
		}
		sc := SweepConfig(Cfg, c)
		return Sweep(context.Background(), cmd.OutOrStdout(),
			checkLogFile(Cfg.GetString("LogFile"), outputDir), outputDir,
			expandStringSlice(Cfg.GetStringSlice("Sweep.OutputFiles")), in, c, sc)
	},
	DisableAutoGenTag: true,
}

// plotCmd plots the rotor geometry.
var plotCmd = &cobra.Command{
	Use:   "plot",
	Short: "Plot airfoil shapes and the blade planform.",
	Long: `plot creates images of the shapes of the airfoils given in PlotAirfoils
and of the chord and twist distributions along the blade, and saves them
in OutputDir.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		outputDir, err := checkOutputDir(Cfg.GetString("OutputDir"))
		if err != nil {
			return err
		}
		ds, err := LoadDataSource(Cfg)
		if err != nil {
			return err
		}
		in, err := LoadInputs(ds, outChan())
		if err != nil {
			return err
		}
		ids, err := toIntSliceE(Cfg.Get("PlotAirfoils"))
		if err != nil {
			return fmt.Errorf("bem: PlotAirfoils: %v", err)
		}
		return Plot(cmd.OutOrStdout(), checkLogFile(Cfg.GetString("LogFile"), outputDir), outputDir, in, ids)
	},
	DisableAutoGenTag: true,
}

// loadRun reads the rotor description and the solver configuration.
func loadRun(cmd *cobra.Command) (*Inputs, bem.Config, error) {
	c, err := SolverConfig(Cfg)
	if err != nil {
		return nil, c, err
	}
	ds, err := LoadDataSource(Cfg)
	if err != nil {
		return nil, c, err
	}
	in, err := LoadInputs(ds, outChan())
	return in, c, err
}
