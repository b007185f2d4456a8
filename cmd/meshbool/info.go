package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/chazu/meshbool/pkg/bridge"
	"github.com/chazu/meshbool/pkg/meshio"
	"github.com/spf13/cobra"
)

// meshInfo summarises one mesh file.
type meshInfo struct {
	Name      string         `json:"name"`
	Vertices  int            `json:"vertices"`
	Edges     int            `json:"edges"`
	Polygons  int            `json:"polygons"`
	Volume    float64        `json:"volume"`
	Min       [3]float64     `json:"min"`
	Max       [3]float64     `json:"max"`
	Closed    bool           `json:"closed"`
	Materials map[string]int `json:"materials,omitempty"`
}

func newInfoCmd(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "info MESH...",
		Short: "Summarise mesh files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var infos []meshInfo
			for _, path := range args {
				m, err := meshio.ReadFile(path)
				if err != nil {
					return err
				}
				info, err := describe(a, m)
				if err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
				infos = append(infos, info)
			}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(infos)
			}
			for _, info := range infos {
				printInfo(cmd.OutOrStdout(), info)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

// describe measures m. Closedness is judged by the kernel after import, so
// it reflects what a boolean operation would see.
func describe(a *app, m *meshio.Mesh) (meshInfo, error) {
	if err := m.Validate(); err != nil {
		return meshInfo{}, err
	}
	h, err := bridge.Import(a.kernel, m)
	if err != nil {
		return meshInfo{}, err
	}
	defer h.Release()

	bb := m.Bounds()
	info := meshInfo{
		Name:     m.Name,
		Vertices: len(m.Verts),
		Edges:    len(m.Edges),
		Polygons: len(m.Polys),
		Volume:   m.Volume(),
		Min:      [3]float64{bb.Min.X, bb.Min.Y, bb.Min.Z},
		Max:      [3]float64{bb.Max.X, bb.Max.Y, bb.Max.Z},
		Closed:   h.Solid().IsClosed(),
	}
	for _, p := range m.Polys {
		if p.Material == "" {
			continue
		}
		if info.Materials == nil {
			info.Materials = make(map[string]int)
		}
		info.Materials[p.Material]++
	}
	return info, nil
}

func printInfo(w io.Writer, info meshInfo) {
	fmt.Fprintf(w, "%s\n", info.Name)
	fmt.Fprintf(w, "  vertices:  %d\n", info.Vertices)
	fmt.Fprintf(w, "  edges:     %d\n", info.Edges)
	fmt.Fprintf(w, "  polygons:  %d\n", info.Polygons)
	fmt.Fprintf(w, "  volume:    %g\n", info.Volume)
	fmt.Fprintf(w, "  bounds:    (%g, %g, %g) .. (%g, %g, %g)\n",
		info.Min[0], info.Min[1], info.Min[2], info.Max[0], info.Max[1], info.Max[2])
	fmt.Fprintf(w, "  closed:    %t\n", info.Closed)
	if len(info.Materials) > 0 {
		names := make([]string, 0, len(info.Materials))
		for name := range info.Materials {
			names = append(names, name)
		}
		sort.Strings(names)
		parts := make([]string, len(names))
		for i, name := range names {
			parts[i] = fmt.Sprintf("%s=%d", name, info.Materials[name])
		}
		fmt.Fprintf(w, "  materials: %s\n", strings.Join(parts, " "))
	}
}
