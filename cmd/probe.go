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

// ProbeCmd represents the probe command
var ProbeCmd = &cobra.Command{
	Use:   "probe",
	Short: "Evaluate the field at the dataset's probe points",
	Long: `
Evaluates the field at every probe point of the dataset, in parallel, and
optionally its gradient.

gofield probe -I dataset.yaml -t 0.5 --gradient`,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		var ds *InputParameters.Dataset
		if ds, err = loadDataset(); err != nil {
			return
		}
		t, _ := cmd.Flags().GetFloat64("time")
		gradient, _ := cmd.Flags().GetBool("gradient")
		return runProbe(os.Stdout, ds, t, gradient)
	},
}

func init() {
	rootCmd.AddCommand(ProbeCmd)
	ProbeCmd.Flags().Float64P("time", "t", 0, "time at which the field is evaluated")
	ProbeCmd.Flags().BoolP("gradient", "g", false, "also print the gradient at each probe")
}

func runProbe(w io.Writer, ds *InputParameters.Dataset, t float64, gradient bool) (err error) {
	var (
		d domain.Domain
		f *field.Field
	)
	if d, err = ds.BuildGrid(); err != nil {
		return
	}
	if f, err = ds.BuildField(d); err != nil {
		return
	}
	opt := field.WithNewton(ds.NewtonOptions())
	values, errs, err := field.EvaluateMany(f, ds.Probes, t, ds.ParallelDegree, opt)
	if err != nil {
		return
	}
	var ev *field.Evaluator
	if gradient {
		if ev, err = f.MakeEvaluator(opt); err != nil {
			return
		}
	}
	for i, p := range ds.Probes {
		if errs[i] != nil {
			fmt.Fprintf(w, "%v: %v\n", p, errs[i])
			continue
		}
		fmt.Fprintf(w, "%v: %8.5f", p, values[i])
		if ev != nil {
			if g, gerr := ev.Gradient(p, t, nil); gerr == nil {
				fmt.Fprintf(w, " grad %8.5f", g)
			}
		}
		fmt.Fprintln(w)
	}
	return
}
