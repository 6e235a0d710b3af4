package search

import "fmt"

// Reference is a detached copy of a node's coordinate. It stays usable
// after the node it was taken from is deactivated, rebuilt or freed,
// and lets a tree navigate back to that coordinate.
type Reference struct {
	depth     int
	binary    bool
	path      PathAddress
	closed    bool
	goal      Goal
	objective float64
}

func referenceFor(n Node) Reference {
	goal, objective, _ := n.Goal()
	return Reference{
		depth:     n.Depth(),
		binary:    n.Binary(),
		path:      n.Path(),
		closed:    n.State() == Closed || n.State() == Deactivated,
		goal:      goal,
		objective: objective,
	}
}

func (r Reference) Depth() int {
	return r.depth
}

func (r Reference) Binary() bool {
	return r.binary
}

func (r Reference) Path() PathAddress {
	return r.path
}

// Closed reports whether the node had run its action when the
// reference was taken.
func (r Reference) Closed() bool {
	return r.closed
}

// Goal returns the goal and objective value recorded at the node.
func (r Reference) Goal() (Goal, float64, bool) {
	return r.goal, r.objective, r.goal != nil
}

// Matches reports whether n sits at the referenced coordinate.
func (r Reference) Matches(n Node) bool {
	return !n.IsZero() && n.Depth() == r.depth && n.Binary() == r.binary && n.Path().Equal(r.path)
}

func (r Reference) String() string {
	return fmt.Sprintf("ref(depth=%d path=%s closed=%t)", r.depth, r.path, r.closed)
}
