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
	"strconv"

	"github.com/go-gl/mathgl/mgl64"
	perf "github.com/hodgesds/perf-utils"
	"github.com/pkg/profile"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/notargets/softweld/InputParameters"
	"github.com/notargets/softweld/logger"
	"github.com/notargets/softweld/mesh"
	"github.com/notargets/softweld/softbody"
	"github.com/notargets/softweld/utils"
)

// WeldCmd represents the weld command
var WeldCmd = &cobra.Command{
	Use:   "weld [meshfile]",
	Short: "Weld a mesh into a soft body and optionally write it as YAML",
	Long: `Reads a Gambit (.neu), Gmsh 2.2 (.msh) or SU2 (.su2) mesh, merges coincident
vertices into nodes, remaps the line, triangle and tetrahedron connectivity onto
the nodes and writes the result when an output file is given.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ip, err := weldParameters(cmd, args)
		if err != nil {
			return err
		}
		if cpuProfile, _ := cmd.Flags().GetString("cpuprofile"); cpuProfile != "" {
			defer profile.Start(profile.CPUProfile, profile.ProfilePath(cpuProfile), profile.Quiet).Stop()
		}
		countInstructions, _ := cmd.Flags().GetBool("perf")
		_, err = RunWeld(ip, countInstructions)
		return err
	},
}

func init() {
	rootCmd.AddCommand(WeldCmd)
	addWeldFlags(WeldCmd)
}

func addWeldFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("input", "I", "", "YAML file for weld parameters like:\n\t- MeshFile\n\t- BendingDistance\n\t- Scale, Translate")
	cmd.Flags().StringP("output", "o", "", "write the welded body to this YAML file")
	cmd.Flags().IntP("bending", "b", 0, "generate bending links up to this many hops, 0 disables")
	cmd.Flags().IntP("parallel", "p", 1, "number of partitions used to remap each connectivity buffer")
	cmd.Flags().Float64P("scale", "s", 1, "uniform scale applied to the nodes")
	cmd.Flags().StringSlice("translate", nil, "translation applied after scaling, as x,y,z")
	cmd.Flags().String("cpuprofile", "", "write a CPU profile into this directory")
	cmd.Flags().Bool("perf", false, "count CPU instructions spent assembling the body")
}

// weldParameters starts from the --input file, when given, and lets the
// positional mesh file and explicitly set flags override it.
func weldParameters(cmd *cobra.Command, args []string) (ip *InputParameters.WeldParameters, err error) {
	flags := cmd.Flags()
	ip = InputParameters.NewWeldParameters()
	if input, _ := flags.GetString("input"); input != "" {
		if ip, err = InputParameters.ReadWeldParameters(input); err != nil {
			return nil, err
		}
	}
	if len(args) == 1 {
		ip.MeshFile = args[0]
	}
	if flags.Changed("output") {
		ip.Output, _ = flags.GetString("output")
	}
	if flags.Changed("bending") {
		ip.BendingDistance, _ = flags.GetInt("bending")
	}
	if flags.Changed("parallel") {
		ip.ParallelDegree, _ = flags.GetInt("parallel")
	}
	if flags.Changed("scale") {
		ip.Scale, _ = flags.GetFloat64("scale")
	}
	if flags.Changed("translate") {
		t, _ := flags.GetStringSlice("translate")
		if len(t) != 3 {
			return nil, fmt.Errorf("--translate needs three components, got %d", len(t))
		}
		for i, c := range t {
			if ip.Translate[i], err = strconv.ParseFloat(c, 64); err != nil {
				return nil, fmt.Errorf("--translate: %w", err)
			}
		}
	}
	if len(ip.MeshFile) == 0 {
		return nil, fmt.Errorf("must supply a mesh file as an argument or as MeshFile in the --input file")
	}
	if err = ip.Validate(); err != nil {
		return nil, err
	}
	return ip, nil
}

// loadSource reads the mesh and splits its elements into the soft body's
// connectivity buffers.
func loadSource(ip *InputParameters.WeldParameters) (src softbody.Source, msh *mesh.Mesh, err error) {
	if msh, err = mesh.ReadMeshFile(ip.MeshFile); err != nil {
		return
	}
	logger.Log.Info("mesh read",
		zap.String("file", ip.MeshFile),
		zap.Int("vertices", msh.NumVertices),
		zap.Int("elements", msh.NumElements))
	src = softbody.Source{
		Positions:      msh.Positions(),
		ParallelDegree: ip.ParallelDegree,
	}
	src.Links, src.Faces, src.Tetras, err = msh.Connectivity()
	return
}

// RunWeld builds the body described by ip, applies its transform and bending
// constraints and writes it to ip.Output when set.
func RunWeld(ip *InputParameters.WeldParameters, countInstructions bool) (body *softbody.Body, err error) {
	src, _, err := loadSource(ip)
	if err != nil {
		return nil, err
	}

	var (
		ran      bool
		buildErr error
	)
	build := func() error {
		ran = true
		body, buildErr = softbody.NewBody(src)
		return buildErr
	}
	if countInstructions {
		pv, err := perf.CPUInstructions(build)
		switch {
		case err == nil:
			logger.Log.Info("body assembly", zap.Uint64("instructions", pv.Value))
		case !ran:
			logger.Log.Warn("instruction counting unavailable", zap.Error(err))
		}
	}
	if !ran {
		_ = build()
	}
	if buildErr != nil {
		return nil, fmt.Errorf("%s: %w", ip.MeshFile, buildErr)
	}

	if !ip.IsIdentityTransform() {
		s, t := ip.Scale, ip.Translate
		body.Transform(mgl64.Translate3D(t[0], t[1], t[2]).Mul4(mgl64.Scale3D(s, s, s)))
	}
	if ip.BendingDistance > 0 {
		if err = body.GenerateBendingConstraints(ip.BendingDistance); err != nil {
			return nil, err
		}
	}
	logBody(body)

	if len(ip.Output) != 0 {
		if err = writeBody(body, ip.Output); err != nil {
			return nil, err
		}
		logger.Log.Info("body written", zap.String("file", ip.Output))
	}
	logger.Log.Debug("memory", utils.MemUsage()...)
	return body, nil
}

func logBody(body *softbody.Body) {
	c := body.BoundingCenter()
	logger.Log.Info("body welded",
		zap.Int("vertices", len(body.IndexMap())),
		zap.Int("nodes", body.NumNodes()),
		zap.Int("duplicates", body.IndexMap().Duplicates()),
		zap.Int("links", body.NumLinks()),
		zap.Int("faces", body.NumFaces()),
		zap.Int("tetras", body.NumTetras()),
		zap.Int("bending", body.NumBending()),
		zap.Float64s("center", []float64{c.X, c.Y, c.Z}))
	for _, kind := range []utils.ElementType{utils.Line, utils.Triangle, utils.Tet} {
		if n := body.DegenerateGroups(kind); n > 0 {
			logger.Log.Warn("degenerate elements after welding",
				zap.Stringer("type", kind), zap.Int("count", n))
		}
	}
}

func writeBody(body *softbody.Body, filename string) (err error) {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return body.WriteYAML(f)
}
