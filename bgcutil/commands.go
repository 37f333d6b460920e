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

package bgcutil

import (
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/bgcdata"
	"github.com/spatialmodel/bgcdata/compare"
	"github.com/spatialmodel/bgcdata/providers"
	"github.com/spatialmodel/bgcdata/tracers"
	"gonum.org/v1/plot/vg"
)

// Inputs describes the data files written by SaveData.
type Inputs struct {
	Dir      string
	Defaults *Defaults
	Category string
	Priority []string
	Domain   Domain
}

// Files returns the data files of the loading directory.
func (in Inputs) Files() ([]string, error) {
	files, err := filepath.Glob(filepath.Join(os.ExpandEnv(in.Dir), "*.txt"))
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("bgcutil: no data file in %s", in.Dir)
	}
	sort.Strings(files)
	return files, nil
}

// Load reads the data files, removes their duplicated rows and returns
// them with the constraints of the domain.
func (in Inputs) Load() (*bgcdata.Storer, *bgcdata.Constraints, error) {
	files, err := in.Files()
	if err != nil {
		return nil, nil, err
	}
	s, err := bgcdata.ReadFiles(files, in.Defaults.ReadOptions(in.Category))
	if err != nil {
		return nil, nil, err
	}
	s.RemoveDuplicates(in.Priority)
	c, err := in.Domain.Constraints(s.Variables)
	if err != nil {
		return nil, nil, err
	}
	return s, c, nil
}

// physicalNames holds the names of the variables defining water masses.
type physicalNames struct {
	pressure, ptemperature, salinity, sigmaT string
}

// addPhysicalFeatures adds the pressure, potential temperature and
// sigma-t to s when they are missing.
func addPhysicalFeatures(s *bgcdata.Storer, d *Defaults) (physicalNames, error) {
	var names physicalNames
	sal, err := d.Template(providers.SalinityKey)
	if err != nil {
		return names, err
	}
	temp, err := d.Template(providers.TemperatureKey)
	if err != nil {
		return names, err
	}
	vs := s.Variables
	for _, n := range []string{sal.Name, temp.Name, vs.DepthName(), vs.LatitudeName()} {
		if !vs.Has(n) {
			return names, errors.Wrapf(bgcdata.ErrFeatureConstruction, "no %s variable in the data", n)
		}
	}
	salinity, temperature := vs.MustGet(sal.Name), vs.MustGet(temp.Name)
	pressure := bgcdata.NewPressure(vs.MustGet(vs.DepthName()), vs.MustGet(vs.LatitudeName()))
	if !vs.Has(pressure.Variable().Name) {
		if err := s.InsertFeature(pressure); err != nil {
			return names, err
		}
	}
	ptemp := bgcdata.NewPotentialTemperature(salinity, temperature, s.Variables.MustGet(pressure.Variable().Name))
	if !s.Variables.Has(ptemp.Variable().Name) {
		if err := s.InsertFeature(ptemp); err != nil {
			return names, err
		}
	}
	sigmaT := bgcdata.NewSigmaT(salinity, temperature)
	if !s.Variables.Has(sigmaT.Variable().Name) {
		if err := s.InsertFeature(sigmaT); err != nil {
			return names, err
		}
	}
	return physicalNames{
		pressure:     pressure.Variable().Name,
		ptemperature: ptemp.Variable().Name,
		salinity:     sal.Name,
		sigmaT:       sigmaT.Variable().Name,
	}, nil
}

// waterMasses returns the water masses of the given acronyms.
func waterMasses(d *Defaults, acronyms []string) ([]*bgcdata.WaterMass, error) {
	out := make([]*bgcdata.WaterMass, len(acronyms))
	for i, a := range acronyms {
		wm, err := d.WaterMass(a)
		if err != nil {
			return nil, err
		}
		out[i] = wm
	}
	return out, nil
}

// aggregatedCategory returns the category of an aggregated file name such
// as "bgc_in_situ_20200101-20200131.txt".
func aggregatedCategory(path string) string {
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	name = strings.TrimPrefix(name, "bgc_")
	if i := strings.LastIndex(name, "_"); i > 0 {
		return name[:i]
	}
	return name
}

// SaveData loads the data of the providers within the domain and saves it
// in dir, one file per date range of g. Every aggregated file is then read
// back and rewritten without its duplicated rows, the rows of the first
// providers of priority being kept.
func SaveData(d *Defaults, names, variables []string, dir string, g bgcdata.DateRangeGenerator, domain Domain, priority []string) error {
	for _, name := range names {
		ds, err := d.Source(name)
		if err != nil {
			return err
		}
		if err := ds.SetSavingOrder(variables); err != nil {
			return err
		}
		c, err := domain.Constraints(ds.Variables)
		if err != nil {
			return err
		}
		bgcdata.Log.WithField("provider", name).Info("loading and saving provider data")
		if err := ds.LoadAndSave(dir, g, c); err != nil {
			return err
		}
	}
	files, err := filepath.Glob(filepath.Join(dir, "*.txt"))
	if err != nil {
		return err
	}
	for _, f := range files {
		s, err := bgcdata.ReadFile(f, d.ReadOptions(aggregatedCategory(f)))
		if err != nil {
			return err
		}
		n := s.Data.Len()
		s.RemoveDuplicates(priority)
		bgcdata.Log.WithFields(logrus.Fields{"file": f, "removed": n - s.Data.Len()}).Info("removed duplicates")
		if err := os.Remove(f); err != nil {
			return err
		}
		var order []string
		if len(variables) > 0 {
			order = variables
		}
		if err := bgcdata.SaveStorer(s, f, order, true); err != nil {
			return err
		}
	}
	return nil
}

// Compare loads the simulated profiles of provider model closest to the
// observations, interpolates them at the observed depths and evaluates
// them on variables. The matched observations and simulations are saved
// in dir along with the results table, which is returned.
func Compare(d *Defaults, in Inputs, dir, model string, variables []string) (string, error) {
	obs, c, err := in.Load()
	if err != nil {
		return "", err
	}
	obs = c.ApplyToStorer(obs)
	obs.Data.ResetIndex()
	ds, err := d.Source(model)
	if err != nil {
		return "", err
	}
	sel, err := compare.FromDataSource(obs, compare.NewNearestNeighborStrategy(), ds)
	if err != nil {
		return "", err
	}
	sims, err := sel.LoadAll(c)
	if err != nil {
		return "", err
	}
	ip, err := compare.NewInterpolator(sims, sims.Variables.DepthName(), variables)
	if err != nil {
		return "", err
	}
	interpolated, err := ip.InterpolateStorer(obs)
	if err != nil {
		return "", err
	}
	matched := obs.SliceUsingIndex(interpolated.Data.Index)
	if err := bgcdata.SaveStorer(matched, filepath.Join(dir, "observations.txt"), nil, true); err != nil {
		return "", err
	}
	if err := bgcdata.SaveStorer(interpolated, filepath.Join(dir, "simulations.txt"), nil, true); err != nil {
		return "", err
	}
	table, err := resultsTable(matched, interpolated, variables)
	if err != nil {
		return "", err
	}
	results := filepath.Join(dir, "results.txt")
	if err := ioutil.WriteFile(results, []byte(in.Domain.Header()+"\n"+table), 0644); err != nil {
		return "", fmt.Errorf("bgcutil: writing %s: %v", results, err)
	}
	return table, nil
}

// resultsTable evaluates the simulations against the observations on
// variables: RMSE, bias and the regression of simulations on observations.
func resultsTable(obs, sim *bgcdata.Storer, variables []string) (string, error) {
	rmse, err := compare.NewRMSE(variables...).EvaluateStorers(obs, sim)
	if err != nil {
		return "", err
	}
	bias, err := compare.NewBias(variables...).EvaluateStorers(obs, sim)
	if err != nil {
		return "", err
	}
	reg, err := compare.Regression(obs, sim, variables...)
	if err != nil {
		return "", err
	}
	return compare.Table(append([]*compare.Result{rmse, bias}, compare.RegressionColumns(reg)...)...), nil
}

// ExtractWaterMass saves, in dir, the data of every water mass of
// acronyms in its own file. If flag is not empty, all the data is saved in
// a single file instead, with the water mass name in variable flag.
func ExtractWaterMass(d *Defaults, in Inputs, dir string, acronyms []string, flag string) error {
	s, c, err := in.Load()
	if err != nil {
		return err
	}
	s = c.ApplyToStorer(s)
	names, err := addPhysicalFeatures(s, d)
	if err != nil {
		return err
	}
	wms, err := waterMasses(d, acronyms)
	if err != nil {
		return err
	}
	if flag != "" {
		for _, wm := range wms {
			if s, err = wm.FlagInStorer(s, flag, names.ptemperature, names.salinity, names.sigmaT, true); err != nil {
				return err
			}
		}
		return bgcdata.SaveStorer(s, filepath.Join(dir, "flagged_water_masses.txt"), nil, true)
	}
	for _, wm := range wms {
		sub, err := wm.ExtractFromStorer(s, names.ptemperature, names.salinity, names.sigmaT)
		if err != nil {
			return err
		}
		bgcdata.Log.WithFields(logrus.Fields{"water_mass": wm.Acronym, "rows": sub.Data.Len()}).Info("extracted water mass")
		if err := bgcdata.SaveStorer(sub, filepath.Join(dir, "water_mass_"+wm.Acronym+".txt"), nil, true); err != nil {
			return err
		}
	}
	return nil
}

// ExtractData saves the data of the domain, and inside the polygon mask
// if given, in dir as extracted_domain_data with extension ext ("txt",
// "xlsx", "shp" or "nc"). It returns the path of the saved file.
func ExtractData(in Inputs, dir, mask, ext string) (string, error) {
	s, c, err := in.Load()
	if err != nil {
		return "", err
	}
	polygon, err := parseMask(mask)
	if err != nil {
		return "", err
	}
	if polygon != nil {
		lat := s.Variables.MustGet(s.Variables.LatitudeName()).Label()
		lon := s.Variables.MustGet(s.Variables.LongitudeName()).Label()
		c.AddPolygon(lat, lon, polygon)
	}
	switch ext = strings.TrimPrefix(ext, "."); ext {
	case "txt", "xlsx", "shp", "nc":
	default:
		return "", errors.Wrapf(bgcdata.ErrInvalidParameterKey, "unknown extraction format %q", ext)
	}
	path := filepath.Join(dir, "extracted_domain_data."+ext)
	out := c.ApplyToStorer(s)
	bgcdata.Log.WithFields(logrus.Fields{"rows": out.Data.Len(), "file": path}).Info("saving extracted data")
	return path, bgcdata.SaveStorer(out, path, nil, true)
}

// PlotOptions are the options shared by the plot commands.
type PlotOptions struct {
	Variable        string
	Title, Suptitle string
	// Format is the image extension, such as "png" or "pdf".
	Format string
}

func (o PlotOptions) path(dir, kind string) string {
	name := kind
	if o.Variable != "" {
		name += "_" + o.Variable
	}
	format := o.Format
	if format == "" {
		format = "png"
	}
	return filepath.Join(dir, name+"."+strings.TrimPrefix(format, "."))
}

// PlotDensity plots the density of the data points of the variable on a
// map whose bins are latBin by lonBin degrees.
func PlotDensity(in Inputs, dir string, o PlotOptions, latBin, lonBin float64, considerDepth bool) (string, error) {
	s, c, err := in.Load()
	if err != nil {
		return "", err
	}
	p := tracers.NewDensityPlotter(s, c)
	p.SetBinsSize(latBin, lonBin)
	p.SetDensityType(considerDepth)
	dm := in.Domain
	p.SetMapBoundaries(dm.LatitudeMin, dm.LatitudeMax, dm.LongitudeMin, dm.LongitudeMax)
	path := o.path(dir, "density")
	return path, p.Save(path, o.Variable, o.Title, o.Suptitle)
}

// PlotProfile plots the mean of the variable per date range and depth
// range. depths is either a single depth interval width or the depth
// boundaries.
func PlotProfile(in Inputs, dir string, o PlotOptions, interval string, length int, depths []float64) (string, error) {
	s, c, err := in.Load()
	if err != nil {
		return "", err
	}
	p, err := tracers.NewEvolutionProfile(s, c)
	if err != nil {
		return "", err
	}
	p.SetDateIntervals(interval, length)
	switch len(depths) {
	case 0:
	case 1:
		p.SetDepthInterval(depths[0])
	default:
		p.SetDepthBounds(depths)
	}
	path := o.path(dir, "profile")
	return path, p.Save(path, o.Variable, o.Title, o.Suptitle)
}

// PlotTS plots the temperature salinity diagram of the data.
func PlotTS(d *Defaults, in Inputs, dir string, o PlotOptions) (string, error) {
	s, c, err := in.Load()
	if err != nil {
		return "", err
	}
	names, err := addPhysicalFeatures(s, d)
	if err != nil {
		return "", err
	}
	temp, err := d.Template(providers.TemperatureKey)
	if err != nil {
		return "", err
	}
	o.Variable = ""
	path := o.path(dir, "ts_diagram")
	return path, tracers.NewTemperatureSalinityDiagram(s, c, names.salinity, temp.Name, names.ptemperature).
		Save(path, o.Title, o.Suptitle)
}

// PlotBoxplot plots the distribution of the variable per period. Given
// water masses, one box plot is drawn per water mass.
func PlotBoxplot(d *Defaults, in Inputs, dir string, o PlotOptions, period string, acronyms []string) (string, error) {
	s, c, err := in.Load()
	if err != nil {
		return "", err
	}
	path := o.path(dir, "boxplot")
	if len(acronyms) == 0 {
		return path, tracers.NewVariableBoxplot(s, c).Save(path, o.Variable, period, o.Title, o.Suptitle)
	}
	names, err := addPhysicalFeatures(s, d)
	if err != nil {
		return "", err
	}
	wms, err := waterMasses(d, acronyms)
	if err != nil {
		return "", err
	}
	figures := make([]*tracers.Figure, len(wms))
	for i, wm := range wms {
		sub, err := wm.ExtractFromStorer(s, names.ptemperature, names.salinity, names.sigmaT)
		if err != nil {
			return "", err
		}
		title := wm.Name
		if o.Title != "" {
			title = o.Title + " - " + wm.Name
		}
		if figures[i], err = tracers.NewVariableBoxplot(sub, c).Figure(o.Variable, period, title, o.Suptitle); err != nil {
			return "", err
		}
	}
	cols := 2
	if len(figures) < cols {
		cols = len(figures)
	}
	rows := (len(figures) + cols - 1) / cols
	w := tracers.DefaultWidth * vg.Length(cols)
	h := tracers.DefaultHeight * vg.Length(rows)
	return path, tracers.SaveTiles(path, figures, cols, w, h)
}

// PlotPressure plots the variable against the pressure for every water
// mass of acronyms.
func PlotPressure(d *Defaults, in Inputs, dir string, o PlotOptions, acronyms []string) (string, error) {
	s, c, err := in.Load()
	if err != nil {
		return "", err
	}
	names, err := addPhysicalFeatures(s, d)
	if err != nil {
		return "", err
	}
	wms, err := waterMasses(d, acronyms)
	if err != nil {
		return "", err
	}
	p, err := tracers.NewWaterMassVariableComparison(s, c, names.pressure, names.ptemperature, names.salinity, names.sigmaT)
	if err != nil {
		return "", err
	}
	path := o.path(dir, "pressure")
	return path, p.Save(path, o.Variable, wms, o.Title, o.Suptitle)
}

// PlotHistogram plots the histogram of the variable.
func PlotHistogram(in Inputs, dir string, o PlotOptions) (string, error) {
	s, c, err := in.Load()
	if err != nil {
		return "", err
	}
	path := o.path(dir, "histogram")
	return path, tracers.NewVariableHistogram(s, c).Save(path, o.Variable, o.Title, o.Suptitle)
}
