/*
Copyright © 2020 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"os"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/pkg/profile"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/notargets/gofield/InputParameters"
)

var (
	cfgFile  string
	profiler interface{ Stop() }
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "gofield",
	Short: "Field analysis on structured and unstructured domains",
	Long: `
Builds a domain and a field from a YAML dataset description and evaluates
the field: point probes, gradients and streamlines.

gofield probe -I dataset.yaml`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if viper.GetBool("verbose") {
			log.SetLevel(log.DebugLevel)
		}
		switch viper.GetString("profile") {
		case "":
		case "cpu":
			profiler = profile.Start(profile.CPUProfile, profile.ProfilePath("."))
		case "mem":
			profiler = profile.Start(profile.MemProfile, profile.ProfilePath("."))
		default:
			log.Warnf("unknown profile mode %q, want cpu or mem", viper.GetString("profile"))
		}
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if profiler != nil {
			profiler.Stop()
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.gofield.yaml)")
	rootCmd.PersistentFlags().StringP("inputFile", "I", "", "YAML dataset description")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "log construction and evaluation details")
	rootCmd.PersistentFlags().String("profile", "", "write a cpu or mem profile to the current directory")
	rootCmd.PersistentFlags().IntP("parallel", "p", 0, "goroutines used for batch evaluation, 0 uses every CPU")
	rootCmd.PersistentFlags().Int("newtonIterations", 0, "iteration cap for locating points in curved cells, overrides the dataset")
	rootCmd.PersistentFlags().Float64("newtonTolerance", 0, "relative residual tolerance of the cell point search, overrides the dataset")
	rootCmd.PersistentFlags().Float64("containsTolerance", 0, "widening of cells in membership tests, overrides the dataset")
	for _, name := range []string{"inputFile", "verbose", "profile", "parallel",
		"newtonIterations", "newtonTolerance", "containsTolerance"} {
		if err := viper.BindPFlag(name, rootCmd.PersistentFlags().Lookup(name)); err != nil {
			panic(err)
		}
	}
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := homedir.Dir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		// Search config in home directory with name ".gofield" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigName(".gofield")
	}
	viper.SetEnvPrefix("GOFIELD")
	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		log.Debugf("using config file: %s", viper.ConfigFileUsed())
	}
}

// loadDataset reads and validates the dataset named by --inputFile.
func loadDataset() (ds *InputParameters.Dataset, err error) {
	var (
		fileName = viper.GetString("inputFile")
		contents []byte
	)
	if len(fileName) == 0 {
		err = fmt.Errorf("must supply a dataset file (-I, --inputFile), example:%s", exampleDataset)
		return
	}
	if contents, err = os.ReadFile(fileName); err != nil {
		return
	}
	ds = &InputParameters.Dataset{}
	if err = ds.Parse(contents); err != nil {
		return
	}
	// Runtime settings from flags, environment or the config file win
	if p := viper.GetInt("parallel"); p > 0 {
		ds.ParallelDegree = p
	}
	if n := viper.GetInt("newtonIterations"); n > 0 {
		ds.Newton.MaxIterations = n
	}
	if tol := viper.GetFloat64("newtonTolerance"); tol > 0 {
		ds.Newton.Tolerance = tol
	}
	if tol := viper.GetFloat64("containsTolerance"); tol > 0 {
		ds.Newton.ContainsTolerance = tol
	}
	err = ds.Validate()
	return
}

const exampleDataset = `
########################################
Title: "Rotation"
Grid:
  Type: Uniform
  Extent: [21, 21]
  Origin: [-1, -1]
  Spacing: [0.1, 0.1]
Field:
  Function: rotation # One of constant, linear, radial, wave, uniform, rotation, sink
Streamline:
  Method: RK4
  StepSize: 0.01
  MaxSteps: 600
  Seeds: [[0.5, 0]]
Probes: [[0.25, 0.25]]
########################################
`
