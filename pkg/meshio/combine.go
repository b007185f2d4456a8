package meshio

import (
	"errors"
	"fmt"

	"github.com/chazu/meshbool/pkg/bridge"
)

// ErrOperationFailed is returned by Combine when the kernel could not
// classify the operands.
var ErrOperationFailed = errors.New("meshio: boolean operation failed")

// Combine imports left and right, evaluates op with d and exports the
// result into a new mesh whose polygons inherit their source materials.
// All bridge handles are released before Combine returns.
func Combine(d *bridge.Driver, left, right *Mesh, op bridge.Op) (*Mesh, bridge.ExportStats, error) {
	lh, err := bridge.Import(d.Kernel(), left)
	if err != nil {
		return nil, bridge.ExportStats{}, fmt.Errorf("meshio: import %q: %w", left.Name, err)
	}
	defer lh.Release()
	rh, err := bridge.Import(d.Kernel(), right)
	if err != nil {
		return nil, bridge.ExportStats{}, fmt.Errorf("meshio: import %q: %w", right.Name, err)
	}
	defer rh.Release()

	res, ok, err := d.Compute(lh, rh, op)
	if err != nil {
		return nil, bridge.ExportStats{}, err
	}
	defer res.Release()
	if !ok {
		return nil, bridge.ExportStats{}, fmt.Errorf("%w: %s of %q and %q", ErrOperationFailed, op, left.Name, right.Name)
	}

	out := NewResult(left, right)
	stats, err := bridge.Export(res, out)
	if err != nil {
		return nil, bridge.ExportStats{}, err
	}
	out.Left, out.Right = nil, nil
	return out, stats, nil
}
