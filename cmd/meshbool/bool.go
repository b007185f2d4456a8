package main

import (
	"fmt"
	"io"

	"github.com/chazu/meshbool/pkg/bridge"
	"github.com/chazu/meshbool/pkg/meshio"
	"github.com/spf13/cobra"
)

func newBoolCmd(a *app) *cobra.Command {
	var (
		opName   string
		outPath  string
		noMerge  bool
		outStats bool
	)
	cmd := &cobra.Command{
		Use:   "bool LEFT RIGHT",
		Short: "Combine two mesh files",
		Long: `Compute union, intersection or difference of two OBJ or STL meshes.

Examples:
  meshbool bool --op union a.obj b.obj -o out.obj
  meshbool bool --op difference plate.stl drill.obj -o part.stl
  meshbool bool --op intersection a.obj b.obj > out.obj`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			op, err := bridge.ParseOp(opName)
			if err != nil {
				return err
			}
			left, err := meshio.ReadFile(args[0])
			if err != nil {
				return err
			}
			right, err := meshio.ReadFile(args[1])
			if err != nil {
				return err
			}

			res, stats, err := meshio.Combine(a.driver(bridge.WithPreUnion(!noMerge)), left, right, op)
			if err != nil {
				return err
			}
			res.Name = op.String()

			a.logger.Info("boolean operation complete",
				"op", op.String(),
				"left", args[0],
				"right", args[1],
				"polys", stats.Polys,
				"untagged", stats.Untagged())
			if outStats {
				printStats(cmd.ErrOrStderr(), stats)
			}
			return a.writeMesh(cmd.OutOrStdout(), outPath, res)
		},
	}
	cmd.Flags().StringVar(&opName, "op", "union", "operation: union, intersection or difference")
	cmd.Flags().StringVarP(&outPath, "output", "o", "", "output file (default stdout)")
	cmd.Flags().BoolVar(&noMerge, "no-pre-union", false, "do not merge overlapping components of each operand first")
	cmd.Flags().BoolVar(&outStats, "stats", false, "print export statistics to stderr")
	return cmd
}

// writeMesh writes m to path, or to stdout when path is empty or "-".
func (a *app) writeMesh(stdout io.Writer, path string, m *meshio.Mesh) error {
	f, err := a.outputFormat(path)
	if err != nil {
		return err
	}
	if path == "" || path == "-" {
		return meshio.Write(stdout, m, f)
	}
	if err := meshio.WriteFile(path, m, f); err != nil {
		return err
	}
	a.logger.Debug("wrote mesh", "path", path, "format", string(f), "polys", len(m.Polys))
	return nil
}

func printStats(w io.Writer, s bridge.ExportStats) {
	fmt.Fprintf(w, "vertices:        %d\n", s.Verts)
	fmt.Fprintf(w, "edges:           %d (%d open)\n", s.Edges, s.OpenEdges)
	fmt.Fprintf(w, "loops:           %d\n", s.Loops)
	fmt.Fprintf(w, "polygons:        %d\n", s.Polys)
	fmt.Fprintf(w, "untagged polys:  %d\n", s.UntaggedPolys)
	fmt.Fprintf(w, "untagged edges:  %d\n", s.UntaggedEdges)
	fmt.Fprintf(w, "untagged loops:  %d\n", s.UntaggedLoops)
}
