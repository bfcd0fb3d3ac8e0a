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
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/bem"
	"gonum.org/v1/gonum/floats"
)

// Inputs holds a turbine description read from a DataSource.
type Inputs struct {
	Name     string
	Rotor    *bem.Rotor
	Schedule *bem.Schedule
	Airfoils map[int]*bem.Airfoil
}

// LoadInputs reads the blade, airfoil, and schedule files of ds.
// The blade and schedule files are downloaded first if they are remote.
// c, if not nil, is a channel across which download errors will be sent.
func LoadInputs(ds *DataSource, c chan string) (*Inputs, error) {
	ctx := context.TODO()
	in := &Inputs{Name: ds.Name}

	var stations []bem.Station
	err := readInput(maybeDownload(ctx, ds.BladeFile, c), func(r io.Reader) (err error) {
		stations, err = bem.ReadBlade(r)
		return err
	})
	if err != nil {
		return nil, err
	}

	in.Airfoils, err = bem.LoadAirfoils(ds.AirfoilCoordsGlob, ds.AirfoilPolarTemplate)
	if err != nil {
		return nil, err
	}
	if missing := bem.AssignAirfoils(stations, in.Airfoils); len(missing) > 0 {
		return nil, fmt.Errorf("bem: the blade file %s refers to airfoils %v, which are not "+
			"matched by AirfoilCoordsGlob %s", ds.BladeFile, missing, ds.AirfoilCoordsGlob)
	}
	if in.Rotor, err = bem.NewRotor(stations); err != nil {
		return nil, err
	}

	var rows []bem.ScheduleRow
	err = readInput(maybeDownload(ctx, ds.ScheduleFile, c), func(r io.Reader) (err error) {
		rows, err = bem.ReadSchedule(r)
		return err
	})
	if err != nil {
		return nil, err
	}
	if in.Schedule, err = bem.NewSchedule(rows); err != nil {
		return nil, fmt.Errorf("%v (file %s)", err, ds.ScheduleFile)
	}
	return in, nil
}

func readInput(path string, f func(io.Reader) error) error {
	r, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("bem: opening input file: %v", err)
	}
	defer r.Close()
	return f(r)
}

// newLogger returns a logger writing to standard error and to a new
// file at logFile.
func newLogger(logFile string) (*logrus.Logger, *os.File, error) {
	if err := os.MkdirAll(filepath.Dir(logFile), os.ModePerm); err != nil {
		return nil, nil, fmt.Errorf("bem: problem creating log file directory: %v", err)
	}
	f, err := os.Create(logFile)
	if err != nil {
		return nil, nil, fmt.Errorf("bem: problem creating log file: %v", err)
	}
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
		DisableSorting:  true,
	})
	log.SetOutput(io.MultiWriter(os.Stderr, f))
	return log, f, nil
}

// withOutput runs f with a logger writing to logFile and an uploader
// for the output files, and then uploads any output files that are
// going to blob storage.
func withOutput(logFile string, f func(log logrus.FieldLogger, upload *uploader) error) error {
	startTime := time.Now()
	var upload uploader
	log, logfile, err := newLogger(upload.maybeUpload(logFile))
	if err != nil {
		return err
	}
	err = f(log, &upload)
	if err != nil {
		log.WithError(err).Error("bem: run failed")
	} else {
		log.WithField("duration", time.Since(startTime).Round(time.Millisecond)).Info("bem: run complete")
	}
	logfile.Close()
	if err != nil {
		return err
	}
	return upload.uploadOutput(context.TODO())
}

// writeOutput creates the output file path and writes to it using f.
func writeOutput(path string, f func(io.Writer) error) error {
	w, err := bem.CreateOutput(path)
	if err != nil {
		return err
	}
	if err := f(w); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

// Solve calculates the performance of the rotor in in at the given
// wind speed. A summary report is written to out and to the file
// "results.txt" in outputDir, and the state and loads of every blade
// station are written to "stations.csv" in outputDir.
func Solve(out io.Writer, logFile, outputDir string, in *Inputs, c bem.Config, windSpeed float64) error {
	return withOutput(logFile, func(log logrus.FieldLogger, upload *uploader) error {
		solver, err := bem.NewSolver(c)
		if err != nil {
			return err
		}
		solver.Log = log
		op := bem.NewOperatingPoint(in.Schedule, windSpeed, c.AirDensity, c.NumBlades)
		log.WithFields(logrus.Fields{
			"data_source": in.Name,
			"stations":    in.Rotor.Len(),
			"wind_speed":  op.WindSpeed,
			"pitch":       op.Pitch,
			"rpm":         op.RPM(),
		}).Info("bem: solving operating point")

		sol, err := solver.Solve(in.Rotor, op)
		if err != nil {
			return err
		}
		log.WithFields(logrus.Fields{
			"tip_speed_ratio": sol.TipSpeedRatio(in.Rotor),
			"not_converged":   sol.NotConverged,
		}).Info("bem: solution complete")

		err = writeOutput(upload.maybeUpload(outputPath(outputDir, "results.txt")), func(w io.Writer) error {
			return bem.WriteReport(io.MultiWriter(w, out), in.Name, sol)
		})
		if err != nil {
			return err
		}
		return writeOutput(upload.maybeUpload(outputPath(outputDir, "stations.csv")), func(w io.Writer) error {
			return bem.WriteStationsCSV(w, in.Rotor, sol)
		})
	})
}

// Station calculates the aerodynamic state at radius r of the rotor in in
// at the given wind speed and writes it to out.
func Station(out io.Writer, log logrus.FieldLogger, in *Inputs, c bem.Config, windSpeed, r float64) error {
	solver, err := bem.NewSolver(c)
	if err != nil {
		return err
	}
	solver.Log = log
	if r < 0 || r > in.Rotor.TipRadius {
		log.WithFields(logrus.Fields{
			"r":          r,
			"tip_radius": in.Rotor.TipRadius,
		}).Warn("bem: radius is outside of the blade; using the nearest station")
	}
	op := bem.NewOperatingPoint(in.Schedule, windSpeed, c.AirDensity, c.NumBlades)
	return bem.WritePointState(out, solver.SolveAt(in.Rotor, r, op))
}

// curvePlots are the curves that Sweep plots.
var curvePlots = []string{"power", "thrust", "torque", "cp"}

// Sweep calculates the performance curves of the rotor in in and saves
// them to the given files in outputDir, along with plots of the
// power, thrust, torque, and power coefficient curves.
func Sweep(ctx context.Context, out io.Writer, logFile, outputDir string, files []string, in *Inputs, c bem.Config, sc bem.SweepConfig) error {
	return withOutput(logFile, func(log logrus.FieldLogger, upload *uploader) error {
		solver, err := bem.NewSolver(c)
		if err != nil {
			return err
		}
		solver.Log = log
		sw, err := bem.NewSweeper(solver, in.Rotor, in.Schedule, sc)
		if err != nil {
			return err
		}
		if lo, hi := in.Schedule.Range(); sc.VMin < lo || sc.VMax > hi {
			log.WithFields(logrus.Fields{
				"schedule_min": lo,
				"schedule_max": hi,
			}).Warn("bem: sweep extends beyond the operational schedule; the nearest pitch and rotor speed are used")
		}
		curve, err := sw.Curve(ctx)
		if err != nil {
			return err
		}

		for _, name := range files {
			if err := bem.SaveCurve(upload.maybeUpload(outputPath(outputDir, name)), curve); err != nil {
				return err
			}
		}
		for _, name := range curvePlots {
			err := writeOutput(upload.maybeUpload(outputPath(outputDir, name+"_curve.png")), func(w io.Writer) error {
				return bem.WriteCurvePlot(w, curve, name)
			})
			if err != nil {
				return err
			}
		}

		i := floats.MaxIdx(curve.Power)
		fmt.Fprintf(out, "Calculated %d wind speeds from %.2f to %.2f m/s.\n", curve.Len(), sc.VMin, sc.VMax)
		fmt.Fprintf(out, "Maximum power: %.2f W at %.2f m/s (CP = %.4f)\n", curve.Power[i], curve.WindSpeed[i], curve.CP[i])
		j := floats.MaxIdx(curve.CP)
		fmt.Fprintf(out, "Maximum power coefficient: %.4f at %.2f m/s\n", curve.CP[j], curve.WindSpeed[j])
		notConverged := 0
		for _, n := range curve.NotConverged {
			notConverged += n
		}
		if notConverged > 0 {
			fmt.Fprintf(out, "Warning: %d station solutions did not converge\n", notConverged)
		}
		return nil
	})
}

// Plot saves images of the shapes of the airfoils with the given IDs
// and of the blade planform to outputDir. If ids is empty, all
// airfoils are plotted.
func Plot(out io.Writer, logFile, outputDir string, in *Inputs, ids []int) error {
	return withOutput(logFile, func(log logrus.FieldLogger, upload *uploader) error {
		if len(ids) == 0 {
			for id := range in.Airfoils {
				ids = append(ids, id)
			}
			sort.Ints(ids)
		}
		airfoils := make([]*bem.Airfoil, len(ids))
		for i, id := range ids {
			af, ok := in.Airfoils[id]
			if !ok {
				return fmt.Errorf("bem: airfoil %d is not in the data source", id)
			}
			airfoils[i] = af
		}
		log.WithField("airfoils", ids).Info("bem: plotting airfoils")

		p, err := bem.AirfoilPlot(airfoils...)
		if err != nil {
			return err
		}
		files := []string{outputPath(outputDir, "airfoils.png"), outputPath(outputDir, "planform.png")}
		if err := bem.SavePlot(p, upload.maybeUpload(files[0])); err != nil {
			return err
		}
		p, err = bem.PlanformPlot(in.Rotor)
		if err != nil {
			return err
		}
		if err := bem.SavePlot(p, upload.maybeUpload(files[1])); err != nil {
			return err
		}
		for _, f := range files {
			fmt.Fprintf(out, "Saved %s\n", f)
		}
		return nil
	})
}
