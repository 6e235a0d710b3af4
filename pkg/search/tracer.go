package search

import (
	"fmt"
	"io"
)

// Move names the kind of step a tree took.
type Move string

const (
	MoveDescend Move = "descend"
	MoveAscend  Move = "ascend"
	MoveJump    Move = "jump"
	MoveRebuild Move = "rebuild"
)

type SearchPosition interface {
	Move() Move
	Node() Node
	Depth() int
}

type Tracer interface {
	Trace(p SearchPosition)
}

type DefaultTracer struct{}

func (DefaultTracer) Trace(_ SearchPosition) {
}

type LoggingTracer struct {
	Writer io.Writer
}

func (t LoggingTracer) Trace(p SearchPosition) {
	fmt.Fprintf(t.Writer, "---\nMove: %s\n", p.Move())
	n := p.Node()
	fmt.Fprintf(t.Writer, "Node:\n- depth: %d\n- path: %s\n- state: %s\n", p.Depth(), n.Path(), n.State())
}

type position struct {
	move Move
	node Node
}

func (p position) Move() Move {
	return p.move
}

func (p position) Node() Node {
	return p.node
}

func (p position) Depth() int {
	return p.node.Depth()
}
