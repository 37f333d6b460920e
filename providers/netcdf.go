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

package providers

import (
	"github.com/spatialmodel/bgcdata"
	"github.com/spatialmodel/bgcdata/source"
)

// Argo returns the data source of the Argo float profiles.
func Argo(cfg Config, t Templates) (*source.DataSource, error) {
	b := &setBuilder{t: t}
	vs, err := b.set(bgcdata.Roles{
		Provider:  b.tpl(ProviderKey).NotInFile(),
		Expocode:  b.tpl(ExpocodeKey).NotInFile(),
		Date:      b.tpl(DateKey).InFileAs(as("TIME")...),
		Year:      b.tpl(YearKey).NotInFile(),
		Month:     b.tpl(MonthKey).NotInFile(),
		Day:       b.tpl(DayKey).NotInFile(),
		Hour:      b.tpl(HourKey).NotInFile(),
		Longitude: b.tpl(LongitudeKey).InFileAs(as("LONGITUDE")...),
		Latitude:  b.tpl(LatitudeKey).InFileAs(as("LATITUDE")...),
		Depth:     b.tpl(DepthKey).InFileAs(as("PRES_ADJUSTED")...).RemoveWhenNaN().CorrectWith(negativeAbs),
	},
		b.tpl(TemperatureKey).InFileAs(
			bgcdata.FlaggedAlias("TEMP_ADJUSTED", "TEMP_ADJUSTED_QC", 1),
			bgcdata.FlaggedAlias("TEMP", "TEMP_QC", 1),
		),
		b.tpl(SalinityKey).InFileAs(
			bgcdata.FlaggedAlias("PSAL_ADJUSTED", "PSAL_ADJUSTED_QC", 1),
			bgcdata.FlaggedAlias("PSAL", "PSAL_QC", 1),
		),
		b.tpl(OxygenKey).InFileAs(as("DOX2_ADJUSTED", "DOX2")...).CorrectWith(bgcdata.UmolPerKgToMmolPerM3),
		b.tpl(PhosphateKey).NotInFile(),
		b.tpl(NitrateKey).NotInFile(),
		b.tpl(SilicateKey).NotInFile(),
		b.tpl(ChlorophyllKey).InFileAs(
			bgcdata.FlaggedAlias("CPHL_ADJUSTED", "CPHL_ADJUSTED_QC", 1),
			bgcdata.FlaggedAlias("CPHL", "CPHL_QC", 1),
		).RemoveWhenAllNaN().CorrectWith(belowDetection),
	)
	if err != nil {
		return nil, err
	}
	return newSource("ARGO", source.NetCDF, cfg, `.*\.nc`, vs, source.ReadOptions{}), nil
}

// CMEMS returns the data source of the Copernicus in situ profiles.
func CMEMS(cfg Config, t Templates) (*source.DataSource, error) {
	b := &setBuilder{t: t}
	vs, err := b.set(bgcdata.Roles{
		Provider:  b.tpl(ProviderKey).NotInFile(),
		Expocode:  b.tpl(ExpocodeKey).NotInFile(),
		Date:      b.tpl(DateKey).InFileAs(as("TIME")...),
		Year:      b.tpl(YearKey).NotInFile(),
		Month:     b.tpl(MonthKey).NotInFile(),
		Day:       b.tpl(DayKey).NotInFile(),
		Hour:      b.tpl(HourKey).NotInFile(),
		Longitude: b.tpl(LongitudeKey).InFileAs(as("LONGITUDE")...),
		Latitude:  b.tpl(LatitudeKey).InFileAs(as("LATITUDE")...),
		Depth:     b.tpl(DepthKey).InFileAs(as("DEPH", "PRES")...).RemoveWhenNaN().CorrectWith(negativeAbs),
	},
		b.tpl(TemperatureKey).InFileAs(bgcdata.FlaggedAlias("TEMP", "TEMP_QC", 1)),
		b.tpl(SalinityKey).InFileAs(bgcdata.FlaggedAlias("PSAL", "PSAL_QC", 1)),
		b.tpl(OxygenKey).InFileAs(as("DOX1")...).CorrectWith(bgcdata.DoxyMLPerLToMmolPerM3),
		b.tpl(PhosphateKey).InFileAs(bgcdata.FlaggedAlias("PHOS", "PHOS_QC", 1)).RemoveWhenAllNaN(),
		b.tpl(NitrateKey).InFileAs(bgcdata.FlaggedAlias("NTRA", "NTRA_QC", 1)).RemoveWhenAllNaN(),
		b.tpl(SilicateKey).InFileAs(bgcdata.FlaggedAlias("SLCA", "SLCA_QC", 1)).RemoveWhenAllNaN(),
		b.tpl(ChlorophyllKey).InFileAs(bgcdata.FlaggedAlias("CPHL", "CPHL_QC", 1)).RemoveWhenAllNaN(),
	)
	if err != nil {
		return nil, err
	}
	return newSource("CMEMS", source.NetCDF, cfg, `.*\.nc`, vs, source.ReadOptions{}), nil
}

// ESACCIOC returns the data source of the ESA CCI ocean colour daily
// chlorophyll products, stored in one folder per year. Its category should
// be source.SatelliteCategory.
func ESACCIOC(cfg Config, t Templates) (*source.DataSource, error) {
	b := &setBuilder{t: t}
	vs, err := b.set(bgcdata.Roles{
		Provider:  b.tpl(ProviderKey).NotInFile(),
		Expocode:  b.tpl(ExpocodeKey).NotInFile(),
		Date:      b.tpl(DateKey).InFileAs(as("time")...),
		Year:      b.tpl(YearKey).NotInFile(),
		Month:     b.tpl(MonthKey).NotInFile(),
		Day:       b.tpl(DayKey).NotInFile(),
		Hour:      b.tpl(HourKey).NotInFile(),
		Longitude: b.tpl(LongitudeKey).InFileAs(as("lon")...),
		Latitude:  b.tpl(LatitudeKey).InFileAs(as("lat")...),
		Depth:     b.tpl(DepthKey).NotInFile().SetDefault(0.),
	},
		b.tpl(TemperatureKey).NotInFile(),
		b.tpl(SalinityKey).NotInFile(),
		b.tpl(OxygenKey).NotInFile(),
		b.tpl(PhosphateKey).NotInFile(),
		b.tpl(NitrateKey).NotInFile(),
		b.tpl(SilicateKey).NotInFile(),
		b.tpl(ChlorophyllKey).InFileAs(as("chlor_a")...).RemoveWhenNaN(),
	)
	if err != nil {
		return nil, err
	}
	return newSource("ESACCI-OC", source.NetCDF, cfg, "{years}/.*-{years}{months}{days}-.*.nc", vs,
		source.ReadOptions{}), nil
}
