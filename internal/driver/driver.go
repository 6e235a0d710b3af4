package driver

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/operator-framework/searchtree/pkg/search"
)

// ErrStop can be returned by a solution handler to end the search
// without an error.
var ErrStop = errors.New("stop search")

// SolutionHandler is called with the tree positioned at every closed
// leaf. The store holds the leaf's state while it runs.
type SolutionHandler func(t search.Tree) error

// UUIDProviderFn returns the id of a new run.
type UUIDProviderFn func() (uuid.UUID, error)

// Result summarizes a run.
type Result struct {
	RunID       string
	Activations int
	Solutions   int
	// Exhausted is set when every node of the tree was explored.
	Exhausted bool
	// LimitReached is set when the run stopped at its iteration limit.
	LimitReached bool
	// Technique is the last technique requested by an action, if any.
	Technique search.Technique
}

// DepthFirst explores a tree depth first: it activates the current open
// node with its current goal, follows the first open child, and
// backtracks when a node has none left. Technique changes returned by
// activations replace its goal, technique and iteration limit.
type DepthFirst struct {
	tree         search.Tree
	goal         search.Goal
	technique    search.Technique
	limit        int
	maxSolutions int
	onSolution   SolutionHandler
	logger       *logrus.Entry
	metrics      *Metrics
	nextUUIDFn   UUIDProviderFn
}

type Option func(d *DepthFirst)

// WithGoal sets the goal activations start out with.
func WithGoal(g search.Goal) Option {
	return func(d *DepthFirst) {
		d.goal = g
	}
}

// WithLimit caps the number of activations. Zero means no limit.
func WithLimit(n int) Option {
	return func(d *DepthFirst) {
		d.limit = n
	}
}

// WithMaxSolutions stops the run after n solutions. Zero means no
// limit.
func WithMaxSolutions(n int) Option {
	return func(d *DepthFirst) {
		d.maxSolutions = n
	}
}

func WithSolutionHandler(h SolutionHandler) Option {
	return func(d *DepthFirst) {
		d.onSolution = h
	}
}

func WithLogger(l *logrus.Entry) Option {
	return func(d *DepthFirst) {
		d.logger = l
	}
}

func WithMetrics(m *Metrics) Option {
	return func(d *DepthFirst) {
		d.metrics = m
	}
}

func WithUUIDProvider(fn UUIDProviderFn) Option {
	return func(d *DepthFirst) {
		d.nextUUIDFn = fn
	}
}

var defaults = []Option{
	func(d *DepthFirst) {
		if d.logger == nil {
			d.logger = logrus.NewEntry(logrus.New())
		}
	},
	func(d *DepthFirst) {
		if d.metrics == nil {
			d.metrics = NewMetrics(nil)
		}
	},
	func(d *DepthFirst) {
		if d.nextUUIDFn == nil {
			d.nextUUIDFn = uuid.NewRandom
		}
	},
	func(d *DepthFirst) {
		if d.onSolution == nil {
			d.onSolution = func(search.Tree) error { return nil }
		}
	},
}

func New(tree search.Tree, options ...Option) *DepthFirst {
	d := &DepthFirst{tree: tree}
	for _, option := range append(options, defaults...) {
		option(d)
	}
	return d
}

func (d *DepthFirst) runID() string {
	id, err := d.nextUUIDFn()
	if err != nil {
		return fmt.Sprintf("run-%d (with error: %s)", time.Now().UnixNano(), err)
	}
	return id.String()
}

// Run explores the tree from its current node until it is exhausted, a
// limit is reached, the solution handler stops it or ctx is done.
// Propagation failures only prune the failing node; any other error
// from a goal or a solution handler ends the run.
func (d *DepthFirst) Run(ctx context.Context) (Result, error) {
	res := Result{RunID: d.runID()}
	logger := d.logger.WithField("run", res.RunID)
	logger.Info("search started")

	for {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		if d.tree.CurrentNode().State() == search.Open {
			if d.limit > 0 && res.Activations >= d.limit {
				res.LimitReached = true
				logger.WithField("activations", res.Activations).Info("iteration limit reached")
				return res, nil
			}
			done, err := d.activate(logger, &res)
			if err != nil || done {
				return res, err
			}
		}

		if d.tree.MoveToNextOpenChild() {
			continue
		}
		if !d.backtrack() {
			res.Exhausted = true
			logger.WithFields(logrus.Fields{
				"activations": res.Activations,
				"solutions":   res.Solutions,
			}).Info("search exhausted")
			return res, nil
		}
	}
}

// activate runs the current node and reports whether the run is over.
func (d *DepthFirst) activate(logger *logrus.Entry, res *Result) (bool, error) {
	n := d.tree.CurrentNode()
	res.Activations++
	d.metrics.Activations.Inc()

	change, err := n.Activate(d.goal)
	if err != nil {
		if !search.IsPropagationFailure(err) {
			return true, err
		}
		d.metrics.Failures.Inc()
		logger.WithField("node", n.String()).WithError(err).Debug("pruned")
		return false, nil
	}
	if change != nil {
		d.apply(logger, change, res)
	}
	if d.tree.ChildCount() > 0 {
		return false, nil
	}

	res.Solutions++
	d.metrics.Solutions.Inc()
	logger.WithFields(logrus.Fields{
		"node":     d.tree.UniqueNodeID(),
		"depth":    d.tree.Depth(),
		"solution": res.Solutions,
	}).Info("solution found")
	if err := d.onSolution(d.tree); err != nil {
		if errors.Is(err, ErrStop) {
			return true, nil
		}
		return true, err
	}
	return d.maxSolutions > 0 && res.Solutions >= d.maxSolutions, nil
}

func (d *DepthFirst) apply(logger *logrus.Entry, change *search.TechniqueChange, res *Result) {
	fields := logrus.Fields{}
	if g, ok := change.Goal(); ok {
		d.goal = g
		fields["goal"] = fmt.Sprintf("%T", g)
	}
	if t, ok := change.Technique(); ok {
		d.technique = t
		res.Technique = t
		fields["technique"] = fmt.Sprintf("%v", t)
	}
	if limit, ok := change.Limit(); ok {
		d.limit = limit
		fields["limit"] = limit
	}
	logger.WithFields(fields).Info("technique changed")
}

// backtrack moves up until a node with an open child is found and moves
// to that child. It returns false once the root has no open child left.
func (d *DepthFirst) backtrack() bool {
	for d.tree.MoveToParent() {
		d.metrics.Backtracks.Inc()
		if d.tree.MoveToNextOpenChild() {
			return true
		}
	}
	return false
}
