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

// unitsRow skips the line holding the units, below the header.
var unitsRow = source.CSVOptions{SkipRows: []int{1}}

// Clivar returns the data source of the CLIVAR cruises.
func Clivar(cfg Config, t Templates) (*source.DataSource, error) {
	b := &setBuilder{t: t}
	vs, err := b.set(bgcdata.Roles{
		Provider:  b.tpl(ProviderKey).NotInFile(),
		Expocode:  b.tpl(ExpocodeKey).InFileAs(as("EXPOCODE")...),
		Date:      b.tpl(DateKey).InFileAs(as("DATE")...),
		Year:      b.tpl(YearKey).NotInFile(),
		Month:     b.tpl(MonthKey).NotInFile(),
		Day:       b.tpl(DayKey).NotInFile(),
		Hour:      b.tpl(HourKey).NotInFile(),
		Longitude: b.tpl(LongitudeKey).InFileAs(as("LONGITUDE")...),
		Latitude:  b.tpl(LatitudeKey).InFileAs(as("LATITUDE")...),
		Depth:     b.tpl(DepthKey).InFileAs(as("CTDPRS")...).RemoveWhenNaN().CorrectWith(negate),
	},
		b.tpl(TemperatureKey).InFileAs(as("CTDTMP")...),
		b.tpl(SalinityKey).InFileAs(bgcdata.FlaggedAlias("CTDSAL", "CTDSAL_FLAG_W", 2)),
		b.tpl(OxygenKey).InFileAs(bgcdata.FlaggedAlias("OXYGEN", "OXYGEN_FLAG_W", 2)).
			CorrectWith(bgcdata.UmolPerKgToMmolPerM3),
		b.tpl(PhosphateKey).InFileAs(bgcdata.FlaggedAlias("PHSPHT", "PHSPHT_FLAG_W", 2)).RemoveWhenAllNaN(),
		b.tpl(NitrateKey).InFileAs(bgcdata.FlaggedAlias("NITRAT", "NITRAT_FLAG_W", 2)).RemoveWhenAllNaN(),
		b.tpl(SilicateKey).InFileAs(bgcdata.FlaggedAlias("SILCAT", "SILCAT_FLAG_W", 2)).RemoveWhenAllNaN(),
		b.tpl(ChlorophyllKey).NotInFile(),
	)
	if err != nil {
		return nil, err
	}
	return newSource("CLIVAR", source.CSV, cfg, "clivar_({years})[0-9][0-9][0-9][0-9]_.*.csv", vs,
		source.ReadOptions{CSV: unitsRow}), nil
}

// GLODAPv2 returns the data source of the yearly GLODAPv2 files.
func GLODAPv2(cfg Config, t Templates) (*source.DataSource, error) {
	b := &setBuilder{t: t}
	vs, err := b.set(bgcdata.Roles{
		Provider:  b.tpl(ProviderKey).NotInFile(),
		Expocode:  b.tpl(ExpocodeKey).InFileAs(as("cruise")...),
		Date:      b.tpl(DateKey).NotInFile(),
		Year:      b.tpl(YearKey).InFileAs(as("YEAR")...),
		Month:     b.tpl(MonthKey).InFileAs(as("MONTH")...),
		Day:       b.tpl(DayKey).InFileAs(as("DAY")...),
		Hour:      b.tpl(HourKey).InFileAs(as("hour")...),
		Longitude: b.tpl(LongitudeKey).InFileAs(as("LONGITUDE")...),
		Latitude:  b.tpl(LatitudeKey).InFileAs(as("LATITUDE")...),
		Depth:     b.tpl(DepthKey).InFileAs(as("DEPTH")...).RemoveWhenNaN().CorrectWith(negate),
	},
		b.tpl(TemperatureKey).InFileAs(as("THETA")...),
		b.tpl(SalinityKey).InFileAs(as("SALNTY")...),
		b.tpl(OxygenKey).InFileAs(as("OXYGEN")...).CorrectWith(bgcdata.UmolPerKgToMmolPerM3),
		b.tpl(PhosphateKey).InFileAs(as("PHSPHT")...).RemoveWhenAllNaN(),
		b.tpl(NitrateKey).InFileAs(as("NITRAT")...).RemoveWhenAllNaN(),
		b.tpl(SilicateKey).InFileAs(as("SILCAT")...).RemoveWhenAllNaN(),
		b.tpl(ChlorophyllKey).NotInFile().RemoveWhenAllNaN(),
	)
	if err != nil {
		return nil, err
	}
	return newSource("GLODAPv2", source.CSV, cfg, "glodapv2_{years}.csv", vs,
		source.ReadOptions{CSV: unitsRow}), nil
}

// GLODAP2022 returns the data source of the GLODAPv2.2022 merged file.
func GLODAP2022(cfg Config, t Templates) (*source.DataSource, error) {
	b := &setBuilder{t: t}
	vs, err := b.set(bgcdata.Roles{
		Provider:  b.tpl(ProviderKey).NotInFile(),
		Expocode:  b.tpl(ExpocodeKey).InFileAs(as("G2expocode")...),
		Date:      b.tpl(DateKey).NotInFile(),
		Year:      b.tpl(YearKey).InFileAs(as("G2year")...),
		Month:     b.tpl(MonthKey).InFileAs(as("G2month")...),
		Day:       b.tpl(DayKey).InFileAs(as("G2day")...),
		Hour:      b.tpl(HourKey).InFileAs(as("G2hour")...),
		Longitude: b.tpl(LongitudeKey).InFileAs(as("G2longitude")...),
		Latitude:  b.tpl(LatitudeKey).InFileAs(as("G2latitude")...),
		Depth:     b.tpl(DepthKey).InFileAs(as("G2depth")...).RemoveWhenNaN().CorrectWith(negate),
	},
		b.tpl(TemperatureKey).InFileAs(as("G2temperature")...),
		b.tpl(SalinityKey).InFileAs(bgcdata.FlaggedAlias("G2salinity", "G2salinityf", 2)),
		b.tpl(OxygenKey).InFileAs(bgcdata.FlaggedAlias("G2oxygen", "G2oxygenf", 2)).
			CorrectWith(bgcdata.UmolPerKgToMmolPerM3),
		b.tpl(PhosphateKey).InFileAs(bgcdata.FlaggedAlias("G2phosphate", "G2phosphatef", 2)).RemoveWhenAllNaN(),
		b.tpl(NitrateKey).InFileAs(bgcdata.FlaggedAlias("G2nitrate", "G2nitratef", 2)).RemoveWhenAllNaN(),
		b.tpl(SilicateKey).InFileAs(bgcdata.FlaggedAlias("G2silicate", "G2silicatef", 2)).RemoveWhenAllNaN(),
		b.tpl(ChlorophyllKey).NotInFile().RemoveWhenAllNaN(),
	)
	if err != nil {
		return nil, err
	}
	return newSource("GLODAP_2022", source.CSV, cfg, `GLODAPv2\.2022_all\.csv`, vs,
		source.ReadOptions{CSV: source.CSVOptions{NAValues: []string{"-9999"}}}), nil
}

// ICES returns the data source of the ICES yearly extractions.
func ICES(cfg Config, t Templates) (*source.DataSource, error) {
	b := &setBuilder{t: t}
	vs, err := b.set(bgcdata.Roles{
		Provider:  b.tpl(ProviderKey).NotInFile(),
		Expocode:  b.tpl(ExpocodeKey).InFileAs(as("Cruise")...),
		Date:      b.tpl(DateKey).InFileAs(as("DATE")...),
		Year:      b.tpl(YearKey).NotInFile(),
		Month:     b.tpl(MonthKey).NotInFile(),
		Day:       b.tpl(DayKey).NotInFile(),
		Hour:      b.tpl(HourKey).NotInFile(),
		Longitude: b.tpl(LongitudeKey).InFileAs(as("LONGITUDE")...),
		Latitude:  b.tpl(LatitudeKey).InFileAs(as("LATITUDE")...),
		Depth:     b.tpl(DepthKey).InFileAs(as("DEPTH")...).RemoveWhenNaN().CorrectWith(negate),
	},
		b.tpl(TemperatureKey).InFileAs(as("CTDTMP")...),
		b.tpl(SalinityKey).InFileAs(as("CTDSAL")...),
		b.tpl(OxygenKey).InFileAs(as("DOXY")...).CorrectWith(bgcdata.DoxyMLPerLToMmolPerM3),
		b.tpl(PhosphateKey).InFileAs(as("PHOS")...).RemoveWhenAllNaN(),
		b.tpl(NitrateKey).InFileAs(as("NTRA")...).RemoveWhenAllNaN(),
		b.tpl(SilicateKey).InFileAs(as("SLCA")...).RemoveWhenAllNaN(),
		b.tpl(ChlorophyllKey).InFileAs(as("CPHL")...).RemoveWhenAllNaN(),
	)
	if err != nil {
		return nil, err
	}
	return newSource("ICES", source.CSV, cfg, "ices_{years}.csv", vs,
		source.ReadOptions{CSV: unitsRow}), nil
}

// IMR returns the data source of the IMR whitespace separated files.
func IMR(cfg Config, t Templates) (*source.DataSource, error) {
	b := &setBuilder{t: t}
	vs, err := b.set(bgcdata.Roles{
		Provider:  b.tpl(ProviderKey).NotInFile(),
		Expocode:  b.tpl(ExpocodeKey).NotInFile(),
		Date:      b.tpl(DateKey).NotInFile(),
		Year:      b.tpl(YearKey).InFileAs(as("Year")...),
		Month:     b.tpl(MonthKey).InFileAs(as("Month")...),
		Day:       b.tpl(DayKey).InFileAs(as("Day")...),
		Hour:      b.tpl(HourKey).NotInFile(),
		Longitude: b.tpl(LongitudeKey).InFileAs(as("Long")...),
		Latitude:  b.tpl(LatitudeKey).InFileAs(as("Lati")...),
		Depth:     b.tpl(DepthKey).InFileAs(as("Depth")...).RemoveWhenNaN(),
	},
		b.tpl(TemperatureKey).InFileAs(as("Temp")...),
		b.tpl(SalinityKey).InFileAs(as("Saln.")...),
		b.tpl(OxygenKey).InFileAs(as("Oxygen", "Doxy")...).CorrectWith(bgcdata.DoxyMLPerLToMmolPerM3),
		b.tpl(PhosphateKey).InFileAs(as("Phosphate")...).RemoveWhenAllNaN(),
		b.tpl(NitrateKey).InFileAs(as("Nitrate")...).RemoveWhenAllNaN(),
		b.tpl(SilicateKey).InFileAs(as("Silicate")...).RemoveWhenAllNaN(),
		b.tpl(ChlorophyllKey).InFileAs(as("Chl.")...).RemoveWhenAllNaN(),
	)
	if err != nil {
		return nil, err
	}
	return newSource("IMR", source.CSV, cfg, "imr_{years}.csv", vs,
		source.ReadOptions{CSV: source.CSVOptions{SkipRows: []int{1}, Whitespace: true}}), nil
}

// NMDC returns the data source of the NMDC merged file.
func NMDC(cfg Config, t Templates) (*source.DataSource, error) {
	b := &setBuilder{t: t}
	vs, err := b.set(bgcdata.Roles{
		Provider:  b.tpl(ProviderKey).NotInFile(),
		Expocode:  b.tpl(ExpocodeKey).InFileAs(as("SDN_CRUISE")...),
		Date:      b.tpl(DateKey).InFileAs(as("Time")...),
		Year:      b.tpl(YearKey).NotInFile(),
		Month:     b.tpl(MonthKey).NotInFile(),
		Day:       b.tpl(DayKey).NotInFile(),
		Hour:      b.tpl(HourKey).NotInFile(),
		Longitude: b.tpl(LongitudeKey).InFileAs(as("Longitude")...),
		Latitude:  b.tpl(LatitudeKey).InFileAs(as("Latitude")...),
		Depth:     b.tpl(DepthKey).InFileAs(as("depth")...).RemoveWhenNaN().CorrectWith(negate),
	},
		b.tpl(TemperatureKey).NotInFile(),
		b.tpl(SalinityKey).NotInFile(),
		b.tpl(OxygenKey).InFileAs(as("DOW")...).CorrectWith(bgcdata.DoxyMLPerLToMmolPerM3),
		b.tpl(PhosphateKey).InFileAs(bgcdata.FlaggedAlias("Phosphate", "Phosphate_SEADATANET_QC", 1)).RemoveWhenAllNaN(),
		b.tpl(NitrateKey).InFileAs(bgcdata.FlaggedAlias("Nitrate", "Nitrate_SEADATANET_QC", 1)).RemoveWhenAllNaN(),
		b.tpl(SilicateKey).InFileAs(bgcdata.FlaggedAlias("Silicate", "Silicate_SEADATANET_QC", 1)).RemoveWhenAllNaN(),
		b.tpl(ChlorophyllKey).InFileAs(bgcdata.FlaggedAlias("ChlA", "ChlA_SEADATANET_QC", 1)).RemoveWhenAllNaN(),
	)
	if err != nil {
		return nil, err
	}
	return newSource("NMDC", source.CSV, cfg, `NMDC_1990-2019_all\.csv`, vs,
		source.ReadOptions{CSV: unitsRow}), nil
}
