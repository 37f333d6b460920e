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

// Package bgcutil holds the command line interface of BGCData.
package bgcutil

import (
	"context"
	"fmt"
	"math"
	"os"

	"github.com/lnashier/viper"
	"github.com/spatialmodel/bgcdata"
	"github.com/spf13/cast"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Cfg holds configuration information.
var Cfg *viper.Viper

var options []struct {
	name, usage, shorthand string
	defaultVal             interface{}
	flagsets               []*pflag.FlagSet
}

func init() {
	plotSets := func() []*pflag.FlagSet {
		return []*pflag.FlagSet{plotDensityCmd.Flags(), plotProfileCmd.Flags(), plotTSCmd.Flags(),
			plotBoxplotCmd.Flags(), plotPressureCmd.Flags(), plotHistogramCmd.Flags()}
	}

	// Options are the configuration options available to BGCData.
	options = []struct {
		name, usage, shorthand string
		defaultVal             interface{}
		flagsets               []*pflag.FlagSet
	}{
		{
			name: "config",
			usage: `
              config specifies the configuration file location.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "verbose",
			usage: `
              verbose sets the amount of logged messages: 0 for warnings
              only, 1 for the main processing steps and 2 for every step.`,
			shorthand:  "v",
			defaultVal: 1,
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "variables_file",
			usage: `
              variables_file is the TOML file holding the default variables.
              The embedded defaults are used when it is empty.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "water_masses_file",
			usage: `
              water_masses_file is the TOML file holding the water masses.
              The embedded defaults are used when it is empty.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "providers_file",
			usage: `
              providers_file is the TOML file holding the locations of the
              providers files. The embedded defaults are used when it is empty.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "loading_dir",
			usage: `
              loading_dir is the directory holding the data files saved by
              save-data. It can include environment variables.`,
			defaultVal: "bgc_data",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "saving_dir",
			usage: `
              saving_dir is the directory where outputs are written. It can
              include environment variables or be a blob storage location
              such as gs://bucket/dir or s3://bucket/dir.`,
			defaultVal: "outputs",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "existing_dir",
			usage: `
              existing_dir tells what to do when saving_dir already holds
              data: 'raise' an error, 'merge' the outputs with the existing
              files or 'clean' the directory first.`,
			defaultVal: RaiseExisting,
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "category",
			usage: `
              category is the category of the data read from loading_dir.`,
			defaultVal: "in_situ",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "date_min",
			usage: `
              date_min is the first day of the data, formatted as YYYYMMDD.
              Empty means unbounded.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "date_max",
			usage: `
              date_max is the last day of the data, formatted as YYYYMMDD.
              Empty means unbounded.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "latitude_min",
			usage: `
              latitude_min is the southern limit of the data [deg_N].`,
			defaultVal: math.NaN(),
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "latitude_max",
			usage: `
              latitude_max is the northern limit of the data [deg_N].`,
			defaultVal: math.NaN(),
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "longitude_min",
			usage: `
              longitude_min is the western limit of the data [deg_E].`,
			defaultVal: math.NaN(),
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "longitude_max",
			usage: `
              longitude_max is the eastern limit of the data [deg_E].`,
			defaultVal: math.NaN(),
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "depth_min",
			usage: `
              depth_min is the deepest depth of the data [meters]. Depths
              are negative below the surface.`,
			defaultVal: math.NaN(),
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "depth_max",
			usage: `
              depth_max is the shallowest depth of the data [meters].`,
			defaultVal: math.NaN(),
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "expocodes_to_load",
			usage: `
              expocodes_to_load restricts the data to these cruises. Empty
              keeps every cruise.`,
			defaultVal: []string{},
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "priority",
			usage: `
              priority lists the providers whose rows are kept first when
              removing duplicated rows.`,
			defaultVal: []string{"GLODAP_2022", "GLODAPv2", "CLIVAR", "ICES", "IMR", "NMDC", "CMEMS", "ARGO"},
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "providers",
			usage: `
              providers are the providers whose data is loaded by save-data.`,
			defaultVal: []string{"GLODAPv2", "CLIVAR", "ICES", "IMR", "NMDC", "CMEMS", "ARGO"},
			flagsets:   []*pflag.FlagSet{saveDataCmd.Flags()},
		},
		{
			name: "variables",
			usage: `
              variables are the saved variables, in order. Empty saves every
              variable.`,
			defaultVal: []string{"PROVIDER", "EXPOCODE", "DATE", "YEAR", "MONTH", "DAY", "HOUR",
				"LATITUDE", "LONGITUDE", "DEPH", "TEMP", "PSAL", "DOX2", "PHOS", "NTRA", "SLCA", "CPHL"},
			flagsets: []*pflag.FlagSet{saveDataCmd.Flags()},
		},
		{
			name: "interval",
			usage: `
              interval is the length of the date ranges: day, week, month,
              year or custom.`,
			defaultVal: "month",
			flagsets:   []*pflag.FlagSet{saveDataCmd.Flags(), plotProfileCmd.Flags()},
		},
		{
			name: "custom_interval",
			usage: `
              custom_interval is the number of days of the date ranges when
              interval is custom.`,
			defaultVal: 8,
			flagsets:   []*pflag.FlagSet{saveDataCmd.Flags(), plotProfileCmd.Flags()},
		},
		{
			name: "model",
			usage: `
              model is the provider of the simulations compared to the
              observations.`,
			defaultVal: "HYCOM",
			flagsets:   []*pflag.FlagSet{compareCmd.Flags()},
		},
		{
			name: "compared_variables",
			usage: `
              compared_variables are the variables evaluated by compare.`,
			defaultVal: []string{"TEMP", "PSAL"},
			flagsets:   []*pflag.FlagSet{compareCmd.Flags()},
		},
		{
			name: "water_masses",
			usage: `
              water_masses are the acronyms of the water masses to extract
              or plot.`,
			defaultVal: []string{"AW", "AAW", "NSAIW", "NSDW"},
			flagsets:   []*pflag.FlagSet{extractWaterMassCmd.Flags(), plotBoxplotCmd.Flags(), plotPressureCmd.Flags()},
		},
		{
			name: "flag_variable",
			usage: `
              flag_variable is the variable receiving the name of the water
              mass of every row. When empty, each water mass is saved in its
              own file.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{extractWaterMassCmd.Flags()},
		},
		{
			name: "polygon",
			usage: `
              polygon is a GeoJSON polygon, or the path of a file holding
              one, the extracted data must lie in.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{extractDataCmd.Flags()},
		},
		{
			name: "extraction_format",
			usage: `
              extraction_format is the format of the extracted data: txt,
              xlsx, shp or nc.`,
			defaultVal: "txt",
			flagsets:   []*pflag.FlagSet{extractDataCmd.Flags()},
		},
		{
			name: "variable",
			usage: `
              variable is the plotted variable. The density plot also accepts
              'all' to count every data point.`,
			defaultVal: "PHOS",
			flagsets:   plotSets(),
		},
		{
			name: "title",
			usage: `
              title is the title of the plot. A default title is used when
              it is empty.`,
			defaultVal: "",
			flagsets:   plotSets(),
		},
		{
			name: "suptitle",
			usage: `
              suptitle is written above the whole figure.`,
			defaultVal: "",
			flagsets:   plotSets(),
		},
		{
			name: "plot_format",
			usage: `
              plot_format is the image format of the plots: png, jpg, svg,
              pdf or eps.`,
			defaultVal: "png",
			flagsets:   plotSets(),
		},
		{
			name: "bins_size",
			usage: `
              bins_size is the size of the density bins in degrees, either a
              number or a [latitude, longitude] JSON array.`,
			defaultVal: "[0.5, 1.5]",
			flagsets:   []*pflag.FlagSet{plotDensityCmd.Flags()},
		},
		{
			name: "consider_depth",
			usage: `
              consider_depth counts every depth of a profile in the density
              plot instead of the profile alone.`,
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{plotDensityCmd.Flags()},
		},
		{
			name: "depth_interval",
			usage: `
              depth_interval is either the width of the depth ranges of the
              profile plot [meters] or a JSON array of depth boundaries.`,
			defaultVal: "[0, -10, -20, -50, -100, -200, -500, -1000]",
			flagsets:   []*pflag.FlagSet{plotProfileCmd.Flags()},
		},
		{
			name: "period",
			usage: `
              period groups the values of the box plots: week, month or year.`,
			defaultVal: "week",
			flagsets:   []*pflag.FlagSet{plotBoxplotCmd.Flags()},
		},
	}

	Cfg = viper.New()

	// Set the prefix for configuration environment variables.
	Cfg.SetEnvPrefix("BGCDATA")
	Cfg.AutomaticEnv()

	for _, option := range options {
		for i, set := range option.flagsets {
			if i != 0 { // The same flag is shared by the other sets.
				set.AddFlag(option.flagsets[0].Lookup(option.name))
				continue
			}
			switch v := option.defaultVal.(type) {
			case string:
				set.StringP(option.name, option.shorthand, v, option.usage)
			case []string:
				set.StringSliceP(option.name, option.shorthand, v, option.usage)
			case bool:
				set.BoolP(option.name, option.shorthand, v, option.usage)
			case int:
				set.IntP(option.name, option.shorthand, v, option.usage)
			case float64:
				set.Float64P(option.name, option.shorthand, v, option.usage)
			default:
				panic("invalid argument type")
			}
			Cfg.BindPFlag(option.name, set.Lookup(option.name))
		}
	}
}

func init() {
	// Link the commands together.
	Root.AddCommand(versionCmd)
	Root.AddCommand(saveDataCmd)
	Root.AddCommand(compareCmd)
	Root.AddCommand(extractWaterMassCmd)
	Root.AddCommand(extractDataCmd)
	Root.AddCommand(plotDensityCmd)
	Root.AddCommand(plotProfileCmd)
	Root.AddCommand(plotTSCmd)
	Root.AddCommand(plotBoxplotCmd)
	Root.AddCommand(plotPressureCmd)
	Root.AddCommand(plotHistogramCmd)
}

// setConfig finds and reads in the configuration file, if there is one.
// Values of the file having a type hint are type checked first.
func setConfig() error {
	if cfgpath := os.ExpandEnv(Cfg.GetString("config")); cfgpath != "" {
		local, err := maybeDownload(context.TODO(), cfgpath)
		if err != nil {
			return err
		}
		tp, err := NewTomlParser(local, true)
		if err != nil {
			return err
		}
		if err := tp.CheckHinted(); err != nil {
			return err
		}
		Cfg.SetConfigFile(local)
		if err := Cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("bgcdata: problem reading configuration file: %v", err)
		}
	}
	bgcdata.SetVerbose(Cfg.GetInt("verbose"))
	return nil
}

// Root is the main command.
var Root = &cobra.Command{
	Use:   "bgcdata",
	Short: "Biogeochemical ocean data tools.",
	Long: `bgcdata loads the biogeochemical data of in situ, satellite and model
providers, saves it in a common format, compares simulations to observations
and plots the data. Use the subcommands specified below to access the
functionality.

Configuration can be changed by using a configuration file (and providing the
path to the file using the --config flag), by using command-line arguments,
or by setting environment variables in the format 'BGCDATA_var' where 'var' is
the name of the variable to be set. Paths can contain environment variables.`,
	DisableAutoGenTag: true,
	PersistentPreRunE: func(*cobra.Command, []string) error { return setConfig() },
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  "version prints the version number of this version of BGCData.",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("BGCData v%s\n", bgcdata.Version)
	},
	DisableAutoGenTag: true,
}

// loadDefaults reads the default variables, water masses and providers.
func loadDefaults() (*Defaults, error) {
	ctx := context.TODO()
	paths := make([]string, 3)
	for i, name := range []string{"variables_file", "water_masses_file", "providers_file"} {
		p := os.ExpandEnv(Cfg.GetString(name))
		if p == "" {
			continue
		}
		var err error
		if paths[i], err = maybeDownload(ctx, p); err != nil {
			return nil, err
		}
	}
	return LoadDefaults(paths[0], paths[1], paths[2])
}

// domain returns the domain of the configuration.
func domain() (Domain, error) {
	var d Domain
	var err error
	if d.DateMin, err = parseDate(Cfg.GetString("date_min")); err != nil {
		return d, err
	}
	if d.DateMax, err = parseDate(Cfg.GetString("date_max")); err != nil {
		return d, err
	}
	bounds := []struct {
		name string
		dst  *float64
	}{
		{"latitude_min", &d.LatitudeMin},
		{"latitude_max", &d.LatitudeMax},
		{"longitude_min", &d.LongitudeMin},
		{"longitude_max", &d.LongitudeMax},
		{"depth_min", &d.DepthMin},
		{"depth_max", &d.DepthMax},
	}
	for _, b := range bounds {
		if *b.dst, err = toFloat(Cfg.Get(b.name)); err != nil {
			return d, fmt.Errorf("bgcdata: %s: %v", b.name, err)
		}
	}
	d.Expocodes = cast.ToStringSlice(Cfg.Get("expocodes_to_load"))
	return d, nil
}

// inputs returns the description of the data to read.
func inputs(d *Defaults) (Inputs, error) {
	dm, err := domain()
	if err != nil {
		return Inputs{}, err
	}
	return Inputs{
		Dir:      os.ExpandEnv(Cfg.GetString("loading_dir")),
		Defaults: d,
		Category: Cfg.GetString("category"),
		Priority: cast.ToStringSlice(Cfg.Get("priority")),
		Domain:   dm,
	}, nil
}

// plotOptions returns the options of the plot commands.
func plotOptions() PlotOptions {
	return PlotOptions{
		Variable: Cfg.GetString("variable"),
		Title:    Cfg.GetString("title"),
		Suptitle: Cfg.GetString("suptitle"),
		Format:   Cfg.GetString("plot_format"),
	}
}

// run prepares the saving directory and runs f with the defaults, the
// inputs and the saving directory. Outputs written for a blob storage
// location are uploaded afterwards.
func run(f func(d *Defaults, in Inputs, dir string) error) error {
	d, err := loadDefaults()
	if err != nil {
		return err
	}
	in, err := inputs(d)
	if err != nil {
		return err
	}
	u := new(uploader)
	dir, err := u.maybeUploadDir(os.ExpandEnv(Cfg.GetString("saving_dir")))
	if err != nil {
		return err
	}
	if dir, err = savingDir(dir, Cfg.GetString("existing_dir")); err != nil {
		return err
	}
	if err := f(d, in, dir); err != nil {
		return err
	}
	return u.upload(context.TODO())
}

var saveDataCmd = &cobra.Command{
	Use:   "save-data",
	Short: "Load and save the providers data",
	Long: `save-data loads the data of the providers within the configured domain
and saves it in saving_dir, in one file per date range and per provider and in
one aggregated file per date range. The aggregated files are then read back and
rewritten without duplicated rows.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(func(d *Defaults, in Inputs, dir string) error {
			if in.Domain.DateMin.IsZero() || in.Domain.DateMax.IsZero() {
				return fmt.Errorf("bgcdata: save-data needs both date_min and date_max")
			}
			g := bgcdata.DateRangeGenerator{
				Start:          in.Domain.DateMin,
				End:            in.Domain.DateMax,
				Interval:       Cfg.GetString("interval"),
				IntervalLength: Cfg.GetInt("custom_interval"),
			}
			return SaveData(d, cast.ToStringSlice(Cfg.Get("providers")), cast.ToStringSlice(Cfg.Get("variables")),
				dir, g, in.Domain, in.Priority)
		})
	},
	DisableAutoGenTag: true,
}

var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Compare simulations to observations",
	Long: `compare loads the simulated profiles closest to the observations of
loading_dir, interpolates them at the observed depths, saves the matched
observations and simulations and prints the RMSE and bias of the compared
variables.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(func(d *Defaults, in Inputs, dir string) error {
			table, err := Compare(d, in, dir, Cfg.GetString("model"), cast.ToStringSlice(Cfg.Get("compared_variables")))
			if err != nil {
				return err
			}
			cmd.Print(table)
			return nil
		})
	},
	DisableAutoGenTag: true,
}

var extractWaterMassCmd = &cobra.Command{
	Use:   "extract-watermass",
	Short: "Extract or flag water masses",
	Long: `extract-watermass saves the data of every water mass in its own file or,
when flag_variable is set, saves all the data with the name of the water mass
of every row in flag_variable.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(func(d *Defaults, in Inputs, dir string) error {
			return ExtractWaterMass(d, in, dir, cast.ToStringSlice(Cfg.Get("water_masses")), Cfg.GetString("flag_variable"))
		})
	},
	DisableAutoGenTag: true,
}

var extractDataCmd = &cobra.Command{
	Use:   "extract-data",
	Short: "Extract the data of a domain",
	Long: `extract-data saves the data of the configured domain, and inside polygon
if given, in saving_dir/extracted_domain_data with the extraction_format
extension.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(func(d *Defaults, in Inputs, dir string) error {
			mask := os.ExpandEnv(Cfg.GetString("polygon"))
			if mask != "" && mask[0] != '{' {
				var err error
				if mask, err = maybeDownload(context.TODO(), mask); err != nil {
					return err
				}
			}
			path, err := ExtractData(in, dir, mask, Cfg.GetString("extraction_format"))
			if err != nil {
				return err
			}
			cmd.Printf("saved %s\n", path)
			return nil
		})
	},
	DisableAutoGenTag: true,
}

// plotCmd returns a plot command running f.
func plotCmd(use, short, long string, f func(d *Defaults, in Inputs, dir string, o PlotOptions) (string, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Long:  long,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(func(d *Defaults, in Inputs, dir string) error {
				path, err := f(d, in, dir, plotOptions())
				if err != nil {
					return err
				}
				cmd.Printf("saved %s\n", path)
				return nil
			})
		},
		DisableAutoGenTag: true,
	}
}

var plotDensityCmd = plotCmd("plot-density", "Plot the density of data points",
	`plot-density maps the number of data points of variable per bin of
bins_size degrees.`,
	func(d *Defaults, in Inputs, dir string, o PlotOptions) (string, error) {
		lat, lon, err := binsSize(Cfg.Get("bins_size"))
		if err != nil {
			return "", err
		}
		return PlotDensity(in, dir, o, lat, lon, Cfg.GetBool("consider_depth"))
	})

var plotProfileCmd = plotCmd("plot-profile", "Plot the evolution of a profile",
	`plot-profile plots the mean of variable per date range and per depth range.`,
	func(d *Defaults, in Inputs, dir string, o PlotOptions) (string, error) {
		depths, err := toFloatSlice(Cfg.Get("depth_interval"))
		if err != nil {
			return "", err
		}
		return PlotProfile(in, dir, o, Cfg.GetString("interval"), Cfg.GetInt("custom_interval"), depths)
	})

var plotTSCmd = plotCmd("plot-ts", "Plot a temperature salinity diagram",
	`plot-ts plots the temperature salinity diagram of the data, with the
sigma-t isolines.`,
	func(d *Defaults, in Inputs, dir string, o PlotOptions) (string, error) {
		return PlotTS(d, in, dir, o)
	})

var plotBoxplotCmd = plotCmd("plot-boxplot", "Plot the distribution of a variable",
	`plot-boxplot draws the box plots of variable per period, one figure per
water mass.`,
	func(d *Defaults, in Inputs, dir string, o PlotOptions) (string, error) {
		return PlotBoxplot(d, in, dir, o, Cfg.GetString("period"), cast.ToStringSlice(Cfg.Get("water_masses")))
	})

var plotPressureCmd = plotCmd("plot-pressure", "Plot a variable against the pressure",
	`plot-pressure plots variable against the pressure for every water mass.`,
	func(d *Defaults, in Inputs, dir string, o PlotOptions) (string, error) {
		return PlotPressure(d, in, dir, o, cast.ToStringSlice(Cfg.Get("water_masses")))
	})

var plotHistogramCmd = plotCmd("plot-histogram", "Plot the histogram of a variable",
	`plot-histogram plots the histogram of variable with its normal fit.`,
	func(d *Defaults, in Inputs, dir string, o PlotOptions) (string, error) {
		return PlotHistogram(in, dir, o)
	})
