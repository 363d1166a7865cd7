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
	"github.com/notargets/gofield/cellcomplex"
	"github.com/notargets/gofield/domain"
	"github.com/notargets/gofield/utils"
)

// InfoCmd represents the info command
var InfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Describe the domain and field of a dataset",
	Long: `
Builds the dataset's domain and field and prints their shape, bounds and
cell statistics.

gofield info -I dataset.yaml`,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		var ds *InputParameters.Dataset
		if ds, err = loadDataset(); err != nil {
			return
		}
		ds.Print()
		return runInfo(os.Stdout, ds)
	},
}

func init() {
	rootCmd.AddCommand(InfoCmd)
}

func runInfo(w io.Writer, ds *InputParameters.Dataset) (err error) {
	var d domain.Domain
	if d, err = ds.BuildGrid(); err != nil {
		return
	}
	fmt.Fprintf(w, "Structuring: %s\n", d.Structuring())
	fmt.Fprintf(w, "Dimension: %d\n", d.Dimension())
	fmt.Fprintf(w, "Points: %d\n", d.NumPoints())
	if ext := d.Extents(); ext != nil {
		fmt.Fprintf(w, "Extents: %v\n", ext)
	}
	fmt.Fprintf(w, "Bounds: %s\n", d.Bounds())
	if g, ok := d.(domain.Grid); ok {
		fmt.Fprintf(w, "Topological Dimension: %d\n", g.TopologicalDimension())
		fmt.Fprintf(w, "Cells: %d\n", g.NumCells())
		if uc, ok := g.Complex().(*cellcomplex.Unstructured); ok {
			fmt.Fprintf(w, "%s", uc.Statistics())
		}
	}
	f, err := ds.BuildField(d)
	if err != nil {
		return
	}
	lo, hi := f.TimeRange()
	fmt.Fprintf(w, "Field: %s on %s, %d values, %d time steps [%g, %g], %s\n",
		f.Layout(), f.Part(), f.NumValues(), f.NumTimeSteps(), lo, hi, f.TimeBehavior())
	fmt.Fprintf(w, "Values: %s, %d bytes\n", f.Values().Precision(), f.Values().Bytes())
	fmt.Fprintf(w, "Memory: %s\n", utils.GetMemUsage())
	return
}
