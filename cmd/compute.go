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
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/notargets/gomorse/InputParameters"
	"github.com/notargets/gomorse/logging"
	"github.com/notargets/gomorse/pipeline"
	"github.com/notargets/gomorse/readfiles"
	"github.com/notargets/gomorse/store"
)

type ComputeModel struct {
	GridFile string
	ICFile   string
	StoreDir string
	Key      string
}

const exampleFile = `
########################################
Title: "Test Case"
Field: "sin(x)*cos(y) + 0.1*x" # or FieldFile: values.txt
MaxPersistence: 0.5            # omit to simplify completely
Thresholds: [0, 0.1, 0.5]
Verify: true
Segment: true
Compression: zstd              # none, zstd or lz4
########################################
`

func init() {
	rootCmd.AddCommand(newComputeCmd())
}

func newComputeCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "compute",
		Short: "Compute and simplify the Morse complex of a field on a mesh",
		Long: `
Reads a triangle mesh in SU2 (.su2), Gambit neutral (.neu) or Gmsh 2.2 (.msh)
format and samples the scalar field named in the input parameters file. Then
builds the gradient, extracts the Morse complex and cancels pairs by increasing
persistence.

gomorse compute -F mesh.su2 -I params.yaml [--store dir]`,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			m := &ComputeModel{}
			if m.GridFile, err = cmd.Flags().GetString("gridFile"); err != nil {
				return
			}
			if m.ICFile, err = cmd.Flags().GetString("inputConditionsFile"); err != nil {
				return
			}
			m.StoreDir, _ = cmd.Flags().GetString("store")
			m.Key, _ = cmd.Flags().GetString("key")
			var ip *InputParameters.MorseParameters
			if ip, err = processInput(m); err != nil {
				return
			}
			var log *logging.Logger
			if log, err = newLogger(cmd.ErrOrStderr()); err != nil {
				return
			}
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			_, err = RunCompute(ctx, m, ip, cmd.OutOrStdout(), log)
			return
		},
	}
	c.Flags().StringP("gridFile", "F", "", "Grid file to read in SU2 (.su2), Gambit (.neu) or Gmsh (.msh) format")
	c.Flags().StringP("inputConditionsFile", "I", "", "YAML file for input parameters like:\n\t- Field\n\t- MaxPersistence")
	c.Flags().String("store", "", "directory of a result store to save the report in")
	c.Flags().String("key", "", "store key for the report, defaults to the title or the grid file name")
	return c
}

func processInput(m *ComputeModel) (ip *InputParameters.MorseParameters, err error) {
	var msgs []string
	if len(m.GridFile) == 0 {
		msgs = append(msgs, "must supply a grid file (-F, --gridFile) in .su2, .neu or .msh format")
	}
	if len(m.ICFile) == 0 {
		msgs = append(msgs, "must supply an input parameters file (-I, --inputConditionsFile), for example:"+exampleFile)
	}
	if len(msgs) != 0 {
		return nil, errors.New(strings.Join(msgs, "\n"))
	}
	var data []byte
	if data, err = os.ReadFile(m.ICFile); err != nil {
		return nil, errors.Wrap(err, "unable to read input parameters")
	}
	ip = &InputParameters.MorseParameters{}
	if err = ip.Parse(data); err != nil {
		return nil, errors.Wrap(err, m.ICFile)
	}
	if ip.Field == "" && ip.FieldFile == "" {
		return nil, errors.Errorf("%s: one of Field and FieldFile must be set", m.ICFile)
	}
	// field files are relative to the parameters file
	if ip.FieldFile != "" && !filepath.IsAbs(ip.FieldFile) {
		ip.FieldFile = filepath.Join(filepath.Dir(m.ICFile), ip.FieldFile)
	}
	return
}

func ReadMesh(gridFile string) (*readfiles.Mesh, error) {
	switch strings.ToLower(filepath.Ext(gridFile)) {
	case ".su2":
		return readfiles.ReadSU2File(gridFile)
	case ".neu":
		return readfiles.ReadGambitFile(gridFile)
	case ".msh":
		return readfiles.ReadGmshFile(gridFile)
	}
	return nil, errors.Errorf("unknown grid file type %q, use .su2, .neu or .msh", gridFile)
}

// RunCompute analyses the mesh and field named by m and ip, prints the report to
// out and saves it when a store directory is given.
func RunCompute(ctx context.Context, m *ComputeModel, ip *InputParameters.MorseParameters,
	out io.Writer, log *logging.Logger) (report *pipeline.Report, err error) {
	var (
		mesh   *readfiles.Mesh
		values []float64
		res    *pipeline.Result
		codec  store.Codec
	)
	if codec, err = store.ParseCodec(ip.Compression); err != nil {
		return
	}
	if mesh, err = ReadMesh(m.GridFile); err != nil {
		return
	}
	log.Info("mesh read", "file", m.GridFile, "points", len(mesh.Points), "triangles", len(mesh.Triangles))
	if values, err = pipeline.FieldValues(mesh, ip.Field, ip.FieldFile); err != nil {
		return
	}
	cfg := pipeline.Config{
		Title:           ip.Title,
		Threshold:       ip.Threshold(),
		Thresholds:      ip.SortedThresholds(),
		Workers:         ip.Workers,
		Verify:          ip.Verify,
		Segment:         ip.Segment,
		InvariantChecks: ip.InvariantChecks,
		Logger:          log,
	}
	if res, err = pipeline.Run(ctx, mesh, values, cfg); err != nil {
		return
	}
	report = res.Report
	ip.Print(out)
	fmt.Fprintln(out)
	report.Print(out)

	if m.StoreDir == "" {
		return
	}
	key := m.Key
	if key == "" {
		key = reportKey(ip.Title, m.GridFile)
	}
	var s *store.Store
	if s, err = store.Open(store.Options{Dir: m.StoreDir, Codec: codec, Logger: log}); err != nil {
		return
	}
	defer func() {
		if cerr := s.Close(); err == nil {
			err = cerr
		}
	}()
	if err = s.Put(key, report); err != nil {
		return
	}
	fmt.Fprintf(out, "stored as %q in %s (%s)\n", key, m.StoreDir, codec)
	return
}

func reportKey(title, gridFile string) string {
	if title = strings.TrimSpace(title); title != "" {
		return title
	}
	base := filepath.Base(gridFile)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
