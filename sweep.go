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
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/ctessum/requestcache"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/bem/internal/hash"
	"gonum.org/v1/gonum/floats"
)

// SweepConfig specifies the range of wind speeds of a performance
// curve and the conditions it is calculated at.
type SweepConfig struct {
	VMin, VMax float64 // wind speed range [m/s]
	NumPoints  int
	NumBlades  int
	Rho        float64 // air density [kg/m³]
}

// Validate returns an error if the configuration does not describe a
// usable sweep.
func (c SweepConfig) Validate() error {
	if c.NumPoints < 1 {
		return fmt.Errorf("bem: sweep NumPoints=%d but should be >= 1", c.NumPoints)
	}
	if c.VMax < c.VMin {
		return fmt.Errorf("bem: sweep maximum wind speed (%g) is less than minimum (%g)", c.VMax, c.VMin)
	}
	if c.NumBlades < 1 {
		return fmt.Errorf("bem: sweep NumBlades=%d but should be >= 1", c.NumBlades)
	}
	if !(c.Rho > 0) {
		return fmt.Errorf("bem: sweep air density=%g but should be > 0", c.Rho)
	}
	return nil
}

// WindSpeeds returns NumPoints evenly spaced wind speeds from VMin to
// VMax, inclusive. A single point is placed at VMin.
func (c SweepConfig) WindSpeeds() []float64 {
	v := make([]float64, c.NumPoints)
	if c.NumPoints == 1 {
		v[0] = c.VMin
		return v
	}
	return floats.Span(v, c.VMin, c.VMax)
}

// Curve holds rotor performance as a function of wind speed. All of the
// fields have one value per wind speed.
type Curve struct {
	WindSpeed []float64 // [m/s]
	Thrust    []float64 // [N]
	Torque    []float64 // [N m]
	Power     []float64 // [W]
	CT, CP    []float64

	Pitch []float64 // [degrees]
	Omega []float64 // [rad/s]

	// NotConverged is the number of stations that did not converge at
	// each wind speed.
	NotConverged []int
}

func newCurve(n int) *Curve {
	return &Curve{
		WindSpeed:    make([]float64, n),
		Thrust:       make([]float64, n),
		Torque:       make([]float64, n),
		Power:        make([]float64, n),
		CT:           make([]float64, n),
		CP:           make([]float64, n),
		Pitch:        make([]float64, n),
		Omega:        make([]float64, n),
		NotConverged: make([]int, n),
	}
}

// Len returns the number of wind speeds in the curve.
func (c *Curve) Len() int { return len(c.WindSpeed) }

func (c *Curve) set(i int, sol *Solution) {
	c.WindSpeed[i] = sol.WindSpeed
	c.Thrust[i] = sol.Thrust
	c.Torque[i] = sol.Torque
	c.Power[i] = sol.Power
	c.CT[i] = sol.CT
	c.CP[i] = sol.CP
	c.Pitch[i] = sol.Pitch
	c.Omega[i] = sol.Omega
	c.NotConverged[i] = sol.NotConverged
}

func (c *Curve) clone() *Curve {
	o := newCurve(c.Len())
	copy(o.WindSpeed, c.WindSpeed)
	copy(o.Thrust, c.Thrust)
	copy(o.Torque, c.Torque)
	copy(o.Power, c.Power)
	copy(o.CT, c.CT)
	copy(o.CP, c.CP)
	copy(o.Pitch, c.Pitch)
	copy(o.Omega, c.Omega)
	copy(o.NotConverged, c.NotConverged)
	return o
}

// Sweeper calculates performance curves of a rotor operated according
// to a schedule. Curves are calculated when they are first requested
// and kept until the sweep configuration changes.
type Sweeper struct {
	solver   *Solver
	rotor    *Rotor
	schedule *Schedule

	mu    sync.RWMutex
	cfg   SweepConfig
	cache *requestcache.Cache

	// Log receives progress messages.
	Log logrus.FieldLogger
}

// sweepRequest identifies a curve in the cache.
type sweepRequest struct {
	Sweep  SweepConfig
	Solver Config
}

// NewSweeper creates a sweeper for rotor and schedule, using solver to
// solve the individual operating points.
func NewSweeper(solver *Solver, rotor *Rotor, schedule *Schedule, cfg SweepConfig) (*Sweeper, error) {
	if solver == nil || rotor == nil || schedule == nil {
		return nil, fmt.Errorf("bem: sweeper requires a solver, a rotor, and a schedule")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	sw := &Sweeper{
		solver:   solver,
		rotor:    rotor,
		schedule: schedule,
		cfg:      cfg,
		Log:      solver.log(),
	}
	sw.cache = requestcache.NewCache(func(ctx context.Context, request interface{}) (interface{}, error) {
		return sw.sweep(ctx, request.(sweepRequest).Sweep)
	}, runtime.GOMAXPROCS(-1), requestcache.Deduplicate(), requestcache.Memory(4))
	return sw, nil
}

// Config returns the current sweep configuration.
func (sw *Sweeper) Config() SweepConfig {
	sw.mu.RLock()
	defer sw.mu.RUnlock()
	return sw.cfg
}

// SetConfig changes the sweep configuration. The next call to Curve
// recalculates the curve if the configuration differs from the previous
// one.
func (sw *Sweeper) SetConfig(cfg SweepConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	sw.mu.Lock()
	sw.cfg = cfg
	sw.mu.Unlock()
	return nil
}

// Curve returns the performance curve for the current sweep
// configuration.
func (sw *Sweeper) Curve(ctx context.Context) (*Curve, error) {
	req := sweepRequest{Sweep: sw.Config(), Solver: sw.solver.Config}
	result, err := sw.cache.NewRequest(ctx, req, hash.Key(req.Sweep, req.Solver)).Result()
	if err != nil {
		return nil, err
	}
	return result.(*Curve).clone(), nil
}

// Calculations returns the number of curves that have been calculated
// rather than retrieved from the cache.
func (sw *Sweeper) Calculations() int {
	r := sw.cache.Requests()
	return r[len(r)-1]
}

// sweep solves the rotor at every wind speed of cfg. Wind speeds are
// solved concurrently.
func (sw *Sweeper) sweep(ctx context.Context, cfg SweepConfig) (*Curve, error) {
	speeds := cfg.WindSpeeds()
	curve := newCurve(len(speeds))
	sw.Log.WithFields(logrus.Fields{
		"min_wind_speed": cfg.VMin,
		"max_wind_speed": cfg.VMax,
		"num_points":     cfg.NumPoints,
	}).Info("bem: calculating performance curve")

	nprocs := runtime.GOMAXPROCS(0)
	errs := make([]error, nprocs)
	var wg sync.WaitGroup
	wg.Add(nprocs)
	for pp := 0; pp < nprocs; pp++ {
		go func(pp int) {
			defer wg.Done()
			for ii := pp; ii < len(speeds); ii += nprocs {
				if err := ctx.Err(); err != nil {
					errs[pp] = err
					return
				}
				op := NewOperatingPoint(sw.schedule, speeds[ii], cfg.Rho, cfg.NumBlades)
				sol, err := sw.solver.Solve(sw.rotor, op)
				if err != nil {
					errs[pp] = err
					return
				}
				curve.set(ii, sol)
			}
		}(pp)
	}
	wg.Wait()
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return curve, nil
}
