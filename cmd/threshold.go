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
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/notargets/gofield/InputParameters"
	"github.com/notargets/gofield/domain"
	"github.com/notargets/gofield/field"
)

// ThresholdCmd represents the threshold command
var ThresholdCmd = &cobra.Command{
	Use:   "threshold",
	Short: "List the domain points where the field exceeds a limit",
	Long: `
Evaluates the field at every point of the domain and prints the points whose
first component is above the limit.

gofield threshold -I dataset.yaml -l 0.5`,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		var ds *InputParameters.Dataset
		if ds, err = loadDataset(); err != nil {
			return
		}
		t, _ := cmd.Flags().GetFloat64("time")
		limit, _ := cmd.Flags().GetFloat64("limit")
		return runThreshold(os.Stdout, ds, t, limit)
	},
}

func init() {
	rootCmd.AddCommand(ThresholdCmd)
	ThresholdCmd.Flags().Float64P("time", "t", 0, "time at which the field is evaluated")
	ThresholdCmd.Flags().Float64P("limit", "l", 0, "points with a larger first component are listed")
}

func runThreshold(w io.Writer, ds *InputParameters.Dataset, t, limit float64) (err error) {
	var (
		d       domain.Domain
		f       *field.Field
		indices []int
	)
	if d, err = ds.BuildGrid(); err != nil {
		return
	}
	if f, err = ds.BuildField(d); err != nil {
		return
	}
	indices, err = field.Threshold(f, t, field.Above(limit), ds.ParallelDegree,
		field.WithNewton(ds.NewtonOptions()))
	if err != nil {
		return
	}
	fmt.Fprintf(w, "%d of %d points above %g\n", len(indices), d.NumPoints(), limit)
	for _, i := range indices {
		fmt.Fprintf(w, "%d: %8.5f\n", i, d.Point(i))
	}
	return
}
