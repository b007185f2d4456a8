//go:build !manifold

package manifold

import (
	"errors"

	"github.com/chazu/meshbool/pkg/kernel"
)

// ErrUnavailable is returned by New in builds without the manifold tag.
var ErrUnavailable = errors.New("manifold kernel not available: build with -tags=manifold")

// New reports ErrUnavailable. Build with -tags=manifold to enable.
func New() (kernel.Kernel, error) {
	return nil, ErrUnavailable
}
