package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chazu/meshbool/pkg/engine"
	"github.com/chazu/meshbool/pkg/graph"
	"github.com/chazu/meshbool/pkg/meshio"
	"github.com/chazu/meshbool/pkg/preview"
	"github.com/chazu/meshbool/pkg/tessellate"
	"github.com/spf13/cobra"
)

func newRunCmd(a *app) *cobra.Command {
	var (
		outDir, format string
		asJSON         bool
	)
	cmd := &cobra.Command{
		Use:   "run SCENE",
		Short: "Evaluate a scene script and write its outputs",
		Long: `Evaluate a Lisp scene script and write one mesh file per (output "name" ...)
form into the output directory, named after the output.

Example scene:
  (def plate (box 4 4 0.5 :material "steel"))
  (def hole (translate (cylinder :height 2 :radius 0.5) (vec3 2 2 0)))
  (output "plate" (difference plate hole))

With --json nothing is written; the triangulated outputs, grouped by material,
are printed for a viewer together with any errors and warnings.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			if asJSON {
				return a.printPreview(cmd.OutOrStdout(), args[0], string(src))
			}

			scene, evalErrs, err := engine.NewEngine(a.engineOptions()...).Evaluate(string(src))
			if err != nil {
				return err
			}
			if len(evalErrs) > 0 {
				for _, e := range evalErrs {
					fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s\n", args[0], e.Error())
				}
				return fmt.Errorf("%s: %d evaluation errors", args[0], len(evalErrs))
			}
			for _, f := range graph.Validate(scene) {
				a.logger.Warn("scene warning", "file", args[0], "finding", f.Error())
			}

			meshes, err := tessellate.Tessellate(scene, a.driver())
			if err != nil {
				return err
			}
			if format == "" {
				format = a.v.GetString(keyOutputFormat)
			}
			f, err := meshio.ParseFormat(format)
			if err != nil {
				return err
			}
			if err := os.MkdirAll(outDir, 0o755); err != nil {
				return err
			}
			for _, m := range meshes {
				if strings.ContainsAny(m.Name, `/\`) {
					return fmt.Errorf("output name %q is not a file name", m.Name)
				}
				path := filepath.Join(outDir, m.Name+"."+string(f))
				if err := a.writeMesh(cmd.OutOrStdout(), path, m); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), path)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&outDir, "output", "o", ".", "output directory")
	cmd.Flags().StringVarP(&format, "format", "f", "", "mesh format: obj or stl (default from output.format)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print triangle buffers and diagnostics as JSON instead of writing files")
	return cmd
}

// printPreview prints the viewer form of a script. Script errors are part of the
// JSON and also fail the command.
func (a *app) printPreview(w io.Writer, name, src string) error {
	res := preview.New(a.driver(), a.logger, a.engineOptions()...).Evaluate(src)
	enc := json.NewEncoder(w)
	if err := enc.Encode(res); err != nil {
		return err
	}
	if len(res.Errors) > 0 {
		return fmt.Errorf("%s: %s", name, res.Errors[0].Message)
	}
	return nil
}

func (a *app) engineOptions() []engine.Option {
	return []engine.Option{engine.WithTimeout(a.v.GetDuration(keyEvalTimeout))}
}
