package search

// Goal is the optimization objective consulted by node activation. It
// is passed explicitly to Activate and travels back to the driver
// inside technique-change overlays; nothing in this package holds on
// to a global goal.
type Goal interface {
	// BestObjectiveValue returns the best objective value known so
	// far.
	BestObjectiveValue() float64
	// UpdateBoundForOpenNode tightens the search bounds before an
	// open node is expanded. A propagation failure prunes the node.
	UpdateBoundForOpenNode() error
	// ReturnBoundToObjectiveValue restores the bound recorded when a
	// node was first activated.
	ReturnBoundToObjectiveValue(value float64)
}

// Technique is an opaque search technique handed from an action to
// the driver through a technique-change overlay. This package never
// inspects it.
type Technique interface{}
