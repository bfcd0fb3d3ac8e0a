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
	"math"
)

// Corrections holds the settings for optional corrections to the
// baseline BEM algorithm. The zero value disables all corrections.
type Corrections struct {
	// TipLoss enables the Prandtl tip loss factor.
	TipLoss bool

	// HubRadius [m] enables the Prandtl hub loss factor when it is
	// greater than zero.
	HubRadius float64

	// Glauert enables Spera's form of the Glauert correction for
	// heavily loaded stations, where the axial induction factor exceeds
	// GlauertCriticalInduction.
	Glauert bool
}

// GlauertCriticalInduction is the axial induction factor above which
// the Glauert correction is applied.
const GlauertCriticalInduction = 0.2

// minLossFactor keeps the induction update finite at the blade tip,
// where the Prandtl factor goes to zero.
const minLossFactor = 1.e-4

// Enabled returns whether any correction is turned on.
func (c Corrections) Enabled() bool {
	return c.TipLoss || c.HubRadius > 0 || c.Glauert
}

func (c Corrections) validate() error {
	if c.HubRadius < 0 || math.IsNaN(c.HubRadius) {
		return fmt.Errorf("bem: HubRadius=%g but should be >= 0", c.HubRadius)
	}
	return nil
}

// LossFactor returns the combined Prandtl tip and hub loss factor F
// for a station at radius r [m] on a rotor with numBlades blades and
// tip radius tipRadius [m], given flow angle phi [rad]. It is 1 when
// neither loss correction is enabled.
func (c Corrections) LossFactor(numBlades int, r, tipRadius, phi float64) float64 {
	F := 1.
	if !c.TipLoss && !(c.HubRadius > 0) {
		return F
	}
	sinPhi := math.Abs(math.Sin(phi))
	B := float64(numBlades)
	if c.TipLoss {
		F *= prandtl(B / 2 * (tipRadius - r) / (r * sinPhi))
	}
	if c.HubRadius > 0 {
		F *= prandtl(B / 2 * (r - c.HubRadius) / (c.HubRadius * sinPhi))
	}
	return math.Max(F, minLossFactor)
}

// prandtl returns (2/π)·acos(exp(-f)). A non-positive or undefined
// exponent means the station is at or beyond the edge of the blade.
func prandtl(f float64) float64 {
	if !(f > 0) {
		return 0
	}
	return 2 / math.Pi * math.Acos(math.Exp(-f))
}

// glauert returns the corrected axial induction factor of a heavily
// loaded station, following Spera (1994). a is the uncorrected value,
// F is the loss factor, sigma is the local solidity and cn is the normal
// force coefficient. The uncorrected value is returned when a is below
// GlauertCriticalInduction or the correction is undefined.
func glauert(a, F, phi, sigma, cn float64) float64 {
	const ac = GlauertCriticalInduction
	if !(a > ac) || sigma*cn == 0 {
		return a
	}
	sinPhi := math.Sin(phi)
	K := 4 * F * sinPhi * sinPhi / (sigma * cn)
	k := K * (1 - 2*ac)
	corrected := 0.5 * (2 + k - math.Sqrt((k+2)*(k+2)+4*(K*ac*ac-1)))
	if math.IsNaN(corrected) || math.IsInf(corrected, 0) {
		return a
	}
	return corrected
}
