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

	"github.com/ctessum/unit"
)

// ElementLoads are the forces acting on a blade element.
type ElementLoads struct {
	VRel float64 // relative wind speed [m/s]
	L    float64 // lift per unit span [N/m]
	D    float64 // drag per unit span [N/m]
	Fn   float64 // normal force per unit span [N/m]
	Ft   float64 // tangential force per unit span [N/m]

	// DT [N] and DM [N m] are the thrust and torque of the annulus
	// swept by the element, from momentum theory.
	DT, DM float64
}

// elementLoads calculates the loads on station st with aerodynamic
// state s at operating point op.
func elementLoads(st Station, s AeroState, op OperatingPoint) ElementLoads {
	V, omega, rho, r := op.WindSpeed, op.Omega, op.Rho, st.R
	axial := (1 - s.A) * V
	tangential := (1 + s.APrime) * omega * r
	vRel := math.Sqrt(axial*axial + tangential*tangential)

	q := 0.5 * rho * vRel * vRel * st.Chord
	l, d := q*s.Cl, q*s.Cd
	sinPhi, cosPhi := math.Sincos(s.Phi)
	return ElementLoads{
		VRel: vRel,
		L:    l,
		D:    d,
		Fn:   l*cosPhi + d*sinPhi,
		Ft:   l*sinPhi - d*cosPhi,
		DT:   s.F * 4 * math.Pi * r * rho * V * V * s.A * (1 - s.A) * st.Dr,
		DM:   s.F * 4 * math.Pi * r * r * r * rho * V * omega * s.APrime * (1 - s.A) * st.Dr,
	}
}

// Performance holds the integrated loads of a rotor at one operating
// point.
type Performance struct {
	Thrust float64 // [N]
	Torque float64 // [N m]
	Power  float64 // [W]
	CT     float64 // thrust coefficient
	CP     float64 // power coefficient
}

// newPerformance calculates the rotor totals from the elemental thrust
// and torque, which are summed in station order.
func newPerformance(loads []ElementLoads, op OperatingPoint, area float64) Performance {
	var p Performance
	for _, l := range loads {
		p.Thrust += l.DT
		p.Torque += l.DM
	}
	p.Power = p.Torque * op.Omega

	V := op.WindSpeed
	if denom := 0.5 * op.Rho * area * V * V; denom != 0 {
		p.CT = p.Thrust / denom
	}
	if denom := 0.5 * op.Rho * area * V * V * V; denom != 0 {
		p.CP = p.Power / denom
	}
	return p
}

// PerformanceUnits is a version of Performance where the values carry
// their physical dimensions.
type PerformanceUnits struct {
	Thrust, Torque, Power, Omega *unit.Unit
	CT, CP                       *unit.Unit
}

var newtonMeter = unit.Joule

var newton = unit.Dimensions{
	unit.MassDim:   1,
	unit.LengthDim: 1,
	unit.TimeDim:   -2,
}

// Units returns the performance values with units attached, given the
// rotor angular velocity omega [rad/s]. It returns an error if power is
// not dimensionally consistent with torque times angular velocity.
func (p Performance) Units(omega float64) (PerformanceUnits, error) {
	u := PerformanceUnits{
		Thrust: unit.New(p.Thrust, newton),
		Torque: unit.New(p.Torque, newtonMeter),
		Omega:  unit.New(omega, unit.Herz),
		CT:     unit.New(p.CT, unit.Dimless),
		CP:     unit.New(p.CP, unit.Dimless),
	}
	u.Power = unit.Mul(u.Torque, u.Omega)
	if err := u.Power.Check(unit.Watt); err != nil {
		return u, fmt.Errorf("bem: power: %v", err)
	}
	return u, nil
}

func (p Performance) String() string {
	return fmt.Sprintf("Performance(thrust=%g N, torque=%g N m, power=%g W, ct=%g, cp=%g)",
		p.Thrust, p.Torque, p.Power, p.CT, p.CP)
}
