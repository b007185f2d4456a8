// Command meshbool runs boolean operations on polygon meshes and renders
// CSG scene scripts to mesh files.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "meshbool:", err)
		os.Exit(1)
	}
}
