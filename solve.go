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
	"runtime"
	"sync"
)

// Solution is the result of solving a rotor at one operating point.
// States and Loads are indexed by rotor station.
type Solution struct {
	OperatingPoint
	Performance

	States []AeroState
	Loads  []ElementLoads

	// NotConverged is the number of stations whose induction factors
	// did not converge.
	NotConverged int
}

// Solve calculates the aerodynamic state and loads of every station of
// rotor at operating point op, and the rotor totals. Stations are solved
// concurrently.
func (s *Solver) Solve(rotor *Rotor, op OperatingPoint) (*Solution, error) {
	if rotor == nil || rotor.Len() == 0 {
		return nil, fmt.Errorf("bem: rotor has no blade stations")
	}
	if !(op.Rho > 0) {
		return nil, fmt.Errorf("bem: air density=%g but should be > 0", op.Rho)
	}
	if op.NumBlades < 1 {
		return nil, fmt.Errorf("bem: number of blades=%d but should be >= 1", op.NumBlades)
	}

	n := rotor.Len()
	sol := &Solution{
		OperatingPoint: op,
		States:         make([]AeroState, n),
		Loads:          make([]ElementLoads, n),
	}

	nprocs := runtime.GOMAXPROCS(0)
	var wg sync.WaitGroup
	wg.Add(nprocs)
	for pp := 0; pp < nprocs; pp++ {
		go func(pp int) {
			for ii := pp; ii < n; ii += nprocs {
				sol.States[ii] = s.SolveStation(rotor, ii, op)
				sol.Loads[ii] = elementLoads(rotor.stations[ii], sol.States[ii], op)
			}
			wg.Done()
		}(pp)
	}
	wg.Wait()

	for _, st := range sol.States {
		if !st.Converged {
			sol.NotConverged++
		}
	}
	sol.Performance = newPerformance(sol.Loads, op, rotor.Area)
	return sol, nil
}

// Units returns the rotor totals with units attached.
func (sol *Solution) Units() (PerformanceUnits, error) {
	return sol.Performance.Units(sol.Omega)
}

// TipSpeedRatio returns the tip speed ratio of the solution.
func (sol *Solution) TipSpeedRatio(rotor *Rotor) float64 {
	return sol.OperatingPoint.TipSpeedRatio(rotor.TipRadius)
}
