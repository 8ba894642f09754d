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

	"github.com/spf13/cobra"

	"github.com/notargets/softweld/InputParameters"
	"github.com/notargets/softweld/softbody"
	"github.com/notargets/softweld/utils"
)

// StatsCmd represents the stats command
var StatsCmd = &cobra.Command{
	Use:   "stats meshfile",
	Short: "Report how many vertices of a mesh weld into each node",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ip := InputParameters.NewWeldParameters()
		ip.MeshFile = args[0]
		return RunStats(ip, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(StatsCmd)
}

// RunStats welds the mesh named by ip without writing anything and prints the
// mesh and body counts to w.
func RunStats(ip *InputParameters.WeldParameters, w io.Writer) error {
	src, msh, err := loadSource(ip)
	if err != nil {
		return err
	}
	body, err := softbody.NewBody(src)
	if err != nil {
		return fmt.Errorf("%s: %w", ip.MeshFile, err)
	}
	fmt.Fprintf(w, "Mesh: %s\n", ip.MeshFile)
	fmt.Fprint(w, msh.Statistics())
	fmt.Fprintf(w, "Nodes: %d\n", body.NumNodes())
	fmt.Fprintf(w, "Duplicate vertices: %d\n", body.IndexMap().Duplicates())
	fmt.Fprintf(w, "Links: %d, Faces: %d, Tetras: %d\n", body.NumLinks(), body.NumFaces(), body.NumTetras())
	for _, kind := range []utils.ElementType{utils.Line, utils.Triangle, utils.Tet} {
		if n := body.DegenerateGroups(kind); n > 0 {
			fmt.Fprintf(w, "Degenerate %s elements: %d\n", kind, n)
		}
	}
	return nil
}
