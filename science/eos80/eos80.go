/*
Copyright © 2023 the BGCData authors.
This file is part of BGCData.

BGCData is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

BGCData is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with BGCData.  If not, see <http://www.gnu.org/licenses/>.
*/

// Package eos80 implements the parts of the EOS-80 equation of state of
// seawater (UNESCO 1983) that are needed to derive pressure, potential
// temperature and density from observed depth, temperature and salinity.
//
// Temperatures given to and returned by the functions in this package are
// on the ITS-90 scale; conversions to the IPTS-68 scale used by the UNESCO
// formulas are done internally.
package eos80

import "math"

const deg2rad = math.Pi / 180

// T68 converts an ITS-90 temperature to the IPTS-68 scale.
func T68(t90 float64) float64 { return t90 * 1.00024 }

// T90 converts an IPTS-68 temperature to the ITS-90 scale.
func T90(t68 float64) float64 { return t68 / 1.00024 }

// Pres returns the pressure [db] at the given depth [m] and latitude [degrees],
// using the formula of Saunders (1981).
func Pres(depth, lat float64) float64 {
	x := math.Sin(math.Abs(lat) * deg2rad)
	c1 := 5.92e-3 + x*x*5.25e-3
	return ((1 - c1) - math.Sqrt((1-c1)*(1-c1)-8.84e-6*depth)) / 4.42e-6
}

// Adtg returns the adiabatic temperature gradient [°C/db] of seawater
// with salinity s [psu], temperature t [°C] and pressure p [db].
func Adtg(s, t, p float64) float64 {
	const (
		a0 = 3.5803e-5
		a1 = 8.5258e-6
		a2 = -6.836e-8
		a3 = 6.6228e-10

		b0 = 1.8932e-6
		b1 = -4.2393e-8

		c0 = 1.8741e-8
		c1 = -6.7795e-10
		c2 = 8.733e-12
		c3 = -5.4481e-14

		d0 = -1.1351e-10
		d1 = 2.7759e-12

		e0 = -4.6206e-13
		e1 = 1.8676e-14
		e2 = -2.1687e-16
	)
	t68 := T68(t)
	ds := s - 35
	return a0 + (a1+(a2+a3*t68)*t68)*t68 +
		(b0+b1*t68)*ds +
		((c0+(c1+(c2+c3*t68)*t68)*t68)+(d0+d1*t68)*ds)*p +
		(e0+(e1+e2*t68)*t68)*p*p
}

// Ptmp returns the potential temperature [°C] of a parcel of seawater with
// salinity s [psu] and temperature t [°C] at pressure p [db], brought
// adiabatically to the reference pressure pr [db]. It integrates Adtg with
// the fourth order Runge-Kutta scheme of Fofonoff (1977).
func Ptmp(s, t, p, pr float64) float64 {
	delP := pr - p
	delTh := delP * Adtg(s, t, p)
	th := T68(t) + 0.5*delTh
	q := delTh

	delTh = delP * Adtg(s, T90(th), p+0.5*delP)
	th += (1 - 1/math.Sqrt2) * (delTh - q)
	q = (2-math.Sqrt2)*delTh + (-2+3/math.Sqrt2)*q

	delTh = delP * Adtg(s, T90(th), p+0.5*delP)
	th += (1 + 1/math.Sqrt2) * (delTh - q)
	q = (2+math.Sqrt2)*delTh + (-2-3/math.Sqrt2)*q

	delTh = delP * Adtg(s, T90(th), p+delP)
	return T90(th + (delTh-2*q)/6)
}

// Smow returns the density [kg/m³] of Standard Mean Ocean Water (pure water)
// at temperature t [°C].
func Smow(t float64) float64 {
	const (
		a0 = 999.842594
		a1 = 6.793952e-2
		a2 = -9.095290e-3
		a3 = 1.001685e-4
		a4 = -1.120083e-6
		a5 = 6.536332e-9
	)
	t68 := T68(t)
	return a0 + (a1+(a2+(a3+(a4+a5*t68)*t68)*t68)*t68)*t68
}

// Dens0 returns the density [kg/m³] of seawater with salinity s [psu] and
// temperature t [°C] at atmospheric pressure (p = 0).
func Dens0(s, t float64) float64 {
	const (
		b0 = 8.24493e-1
		b1 = -4.0899e-3
		b2 = 7.6438e-5
		b3 = -8.2467e-7
		b4 = 5.3875e-9

		c0 = -5.72466e-3
		c1 = 1.0227e-4
		c2 = -1.6546e-6

		d0 = 4.8314e-4
	)
	t68 := T68(t)
	return Smow(t) +
		(b0+(b1+(b2+(b3+b4*t68)*t68)*t68)*t68)*s +
		(c0+(c1+c2*t68)*t68)*s*math.Sqrt(s) +
		d0*s*s
}

// SigmaT returns the density anomaly σt [kg/m³] of seawater with salinity
// s [psu] and temperature t [°C].
func SigmaT(s, t float64) float64 {
	return Dens0(s, t) - 1000
}
