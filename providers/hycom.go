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

// HYCOM returns the data source of the HYCOM-ECOSMO simulation archives.
// Chlorophyll is computed from the diatom and flagellate fields.
func HYCOM(cfg Config, t Templates) (*source.DataSource, error) {
	b := &setBuilder{t: t}
	chl := bgcdata.NewChlorophyllFromDiatomFlagellate(
		b.tpl(DiatomKey).InFileAs(as("ECO_diac")...),
		b.tpl(FlagellateKey).InFileAs(as("ECO_flac")...),
	)
	chl.CopyVarInfosFrom(b.tpl(ChlorophyllKey))
	vs, err := b.set(bgcdata.Roles{
		Provider:  b.tpl(ProviderKey).NotInFile().SetDefault("HYCOM"),
		Expocode:  b.tpl(ExpocodeKey).NotInFile(),
		Date:      b.tpl(DateKey).NotInFile(),
		Year:      b.tpl(YearKey).NotInFile(),
		Month:     b.tpl(MonthKey).NotInFile(),
		Day:       b.tpl(DayKey).NotInFile(),
		Hour:      b.tpl(HourKey).NotInFile(),
		Longitude: b.tpl(LongitudeKey).InFileAs(as("plon")...),
		Latitude:  b.tpl(LatitudeKey).InFileAs(as("plat")...),
		Depth:     b.tpl(DepthKey).InFileAs(as("thknss")...),
	},
		b.tpl(TemperatureKey).InFileAs(as("temp")...),
		b.tpl(SalinityKey).InFileAs(as("salin")...),
		b.tpl(OxygenKey).InFileAs(as("ECO_oxy")...),
		b.tpl(PhosphateKey).InFileAs(as("ECO_pho")...).CorrectWith(bgcdata.PhosphateMgCPerM3ToUmolPerL),
		b.tpl(NitrateKey).InFileAs(as("ECO_no3")...).CorrectWith(bgcdata.NitrateMgCPerM3ToUmolPerL),
		b.tpl(SilicateKey).InFileAs(as("ECO_sil")...).CorrectWith(bgcdata.SilicateMgCPerM3ToUmolPerL),
		chl.Variable(),
	)
	if err != nil {
		return nil, err
	}
	return newSource("HYCOM", source.ABFiles, cfg, `archm\.{years}_[0-9]*_[0-9]*\.a`, vs,
		source.ReadOptions{GridBasename: cfg.RegionalGridBasename}), nil
}
