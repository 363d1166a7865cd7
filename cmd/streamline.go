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
	"github.com/notargets/gofield/streamline"
)

// StreamlineCmd represents the streamline command
var StreamlineCmd = &cobra.Command{
	Use:   "streamline",
	Short: "Trace streamlines of a vector field from the dataset's seeds",
	Long: `
Integrates streamlines of the dataset's vector field with Euler or RK4 steps
and prints their points.

gofield streamline -I dataset.yaml`,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		var ds *InputParameters.Dataset
		if ds, err = loadDataset(); err != nil {
			return
		}
		summary, _ := cmd.Flags().GetBool("summary")
		return runStreamlines(os.Stdout, ds, summary)
	},
}

func init() {
	rootCmd.AddCommand(StreamlineCmd)
	StreamlineCmd.Flags().BoolP("summary", "s", false, "print only the end point, length and reason of each line")
}

func runStreamlines(w io.Writer, ds *InputParameters.Dataset, summary bool) (err error) {
	var (
		d    domain.Domain
		f    *field.Field
		ev   *field.Evaluator
		opts streamline.Options
	)
	if d, err = ds.BuildGrid(); err != nil {
		return
	}
	if f, err = ds.BuildField(d); err != nil {
		return
	}
	if ev, err = f.MakeEvaluator(field.WithNewton(ds.NewtonOptions())); err != nil {
		return
	}
	if opts, err = ds.StreamlineOptions(); err != nil {
		return
	}
	for i, seed := range ds.Streamline.Seeds {
		var line streamline.Line
		if line, err = streamline.Trace(ev, seed, opts); err != nil {
			return fmt.Errorf("seed %d %v: %w", i, seed, err)
		}
		end := line.Points[len(line.Points)-1]
		fmt.Fprintf(w, "Line %d: %d points, length %8.5f, end %8.5f, %s\n",
			i, len(line.Points), line.Length(), end, line.Reason)
		if summary {
			continue
		}
		for _, p := range line.Points {
			fmt.Fprintf(w, "  %8.5f\n", p)
		}
	}
	return
}
