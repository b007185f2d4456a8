package bridge

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/chazu/meshbool/pkg/kernel"
	"github.com/chazu/meshbool/pkg/metrics"
	"github.com/deadsy/sdfx/sdf"
	"github.com/google/uuid"
)

// overlapSlack widens component boxes in the normalised frame before the
// surface crossing test runs.
const overlapSlack = 1e-9

// Driver runs boolean operations on imported handles. It holds no
// per-operation state; a Driver may serve any number of sequential calls.
type Driver struct {
	kernel   kernel.Kernel
	logger   *slog.Logger
	metrics  *metrics.Metrics
	preUnion bool
}

// Option configures a Driver.
type Option func(*Driver)

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(d *Driver) {
		if l != nil {
			d.logger = l
		}
	}
}

// WithMetrics records operation outcomes in m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(d *Driver) {
		d.metrics = m
	}
}

// WithPreUnion enables or disables merging of overlapping connected
// components inside each operand before the operation. Enabled by default.
func WithPreUnion(on bool) Option {
	return func(d *Driver) {
		d.preUnion = on
	}
}

// NewDriver returns a driver backed by k.
func NewDriver(k kernel.Kernel, opts ...Option) *Driver {
	d := &Driver{
		kernel:   k,
		logger:   slog.Default(),
		preUnion: true,
	}
	for _, o := range opts {
		o(d)
	}
	return d
}

// Kernel returns the kernel operands must be imported into.
func (d *Driver) Kernel() kernel.Kernel { return d.kernel }

// Compute evaluates op on left and right and returns a new handle owning
// the result.
//
// An unknown op returns ErrInvalidOperator before any geometry is touched.
// Geometry the kernel cannot classify is not an error: Compute returns a
// result handle with a nil solid and false. Any other failure is
// returned as an error and no handle is produced.
//
// Both operands are tagged LEFT and RIGHT. Pre-union may replace an
// operand's solid; callers must re-read Solid() afterwards. A result of an
// earlier Compute may be passed back in: its tags are then rewritten to
// point into its own exported mesh (see Tag).
func (d *Driver) Compute(left, right *Handle, op Op) (*Handle, bool, error) {
	kop, valid := op.kernelOp()
	if !valid {
		return nil, false, ErrInvalidOperator
	}
	if err := left.usable(); err != nil {
		return nil, false, fmt.Errorf("bridge: %s: left operand: %w", op, err)
	}
	if err := right.usable(); err != nil {
		return nil, false, fmt.Errorf("bridge: %s: right operand: %w", op, err)
	}
	if left == right {
		right = right.clone()
	}

	start := time.Now()
	r := NewRescale(combinedBounds(left.solid, right.solid))
	r.Apply(left.solid)
	r.Apply(right.solid)
	defer func() {
		r.Undo(left.solid)
		r.Undo(right.solid)
	}()

	if err := Tag(left, SideLeft); err != nil {
		return nil, false, fmt.Errorf("bridge: %s: %w", op, err)
	}
	if err := Tag(right, SideRight); err != nil {
		return nil, false, fmt.Errorf("bridge: %s: %w", op, err)
	}

	if d.preUnion {
		if err := d.unionIntersections(left); err != nil {
			return d.fail(op, left, right, start, err)
		}
		if err := d.unionIntersections(right); err != nil {
			return d.fail(op, left, right, start, err)
		}
	}

	res, err := d.kernel.Compute(left.solid, right.solid, kop, kernel.ClassifyEdge)
	if err != nil {
		return d.fail(op, left, right, start, err)
	}
	tags, nf, ne, err := propagate(res, left.tags, right.tags)
	if err != nil {
		d.metrics.RecordOperation(op.String(), metrics.ResultError, 0)
		return nil, false, fmt.Errorf("bridge: %s: %w", op, err)
	}
	r.Undo(res.Solid)

	out := &Handle{ID: uuid.New(), solid: res.Solid, tags: tags}
	d.metrics.RecordOperation(op.String(), metrics.ResultOK, time.Since(start).Seconds())
	d.metrics.RecordUntagged(nf, ne)
	if nf > 0 || ne > 0 {
		d.logger.Debug("untagged result elements",
			"op", op.String(),
			"result", out.ID.String(),
			"faces", nf,
			"half_edges", ne)
	}
	return out, true, nil
}

// fail converts kernel geometry errors into an unsuccessful result and
// passes everything else through.
func (d *Driver) fail(op Op, left, right *Handle, start time.Time, err error) (*Handle, bool, error) {
	if kernel.IsGeometry(err) {
		d.logger.Warn("boolean operation failed",
			"op", op.String(),
			"left", left.ID.String(),
			"right", right.ID.String(),
			"error", err)
		d.metrics.RecordOperation(op.String(), metrics.ResultGeometry, time.Since(start).Seconds())
		return &Handle{ID: uuid.New()}, false, nil
	}
	d.metrics.RecordOperation(op.String(), metrics.ResultError, 0)
	return nil, false, fmt.Errorf("bridge: %s: %w", op, err)
}

// unionIntersections replaces h's solid by one in which connected
// components whose surfaces cross have been unioned together. Components
// that touch, or nest inside another as cavities or islands, stay apart.
// Tags are carried through each union.
func (d *Driver) unionIntersections(h *Handle) error {
	comps := h.solid.Manifolds()
	if len(comps) < 2 {
		return nil
	}

	parts := make([]*kernel.Solid, len(comps))
	boxes := make([]sdf.Box3, len(comps))
	for i, c := range comps {
		parts[i] = h.solid.Extract(c.Faces)
		boxes[i] = parts[i].BoundingBox()
	}
	parent := make([]int, len(comps))
	for i := range parent {
		parent[i] = i
	}
	find := func(x int) int {
		for parent[x] != x {
			parent[x] = parent[parent[x]]
			x = parent[x]
		}
		return x
	}
	grouped := false
	for i := range comps {
		for j := i + 1; j < len(comps); j++ {
			if ri, rj := find(i), find(j); ri != rj &&
				overlaps(boxes[i], boxes[j], overlapSlack) && surfacesCross(parts[i], parts[j]) {
				parent[max(ri, rj)] = min(ri, rj)
				grouped = true
			}
		}
	}
	if !grouped {
		return nil
	}

	clusters := make(map[int][]int)
	var roots []int
	for i := range comps {
		r := find(i)
		if _, ok := clusters[r]; !ok {
			roots = append(roots, r)
		}
		clusters[r] = append(clusters[r], i)
	}

	var (
		solids []*kernel.Solid
		tags   []tagSet
		merges int
	)
	for _, r := range roots {
		members := clusters[r]
		acc := parts[members[0]]
		accTags := h.tags.extract(comps[members[0]].Faces)
		for _, m := range members[1:] {
			next := parts[m]
			nextTags := h.tags.extract(comps[m].Faces)
			res, err := d.kernel.Compute(acc, next, kernel.OpUnion, kernel.ClassifyEdge)
			if err != nil {
				return err
			}
			merged, _, _, err := propagate(res, accTags, nextTags)
			if err != nil {
				return err
			}
			acc, accTags = res.Solid, merged
			merges++
		}
		solids = append(solids, acc)
		tags = append(tags, accTags)
	}

	d.logger.Debug("pre-union merged operand components",
		"handle", h.ID.String(),
		"components", len(comps),
		"merges", merges)
	d.metrics.RecordMerges(merges)
	h.solid = kernel.Concat(solids...)
	h.tags = concatTags(tags...)
	return nil
}

