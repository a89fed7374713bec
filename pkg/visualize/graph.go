// Package visualize renders a scheduler's live operator dataflow as a DOT
// graph: one node per operator, colored by its current status, with an
// edge from every operator whose completion event feeds another
// operator's precondition to that dependent operator.
package visualize

import (
	"fmt"

	"github.com/emicklei/dot"

	"github.com/l7mp/depart/pkg/event"
	"github.com/l7mp/depart/pkg/scheduler"
)

var statusColor = map[scheduler.Status]string{
	scheduler.StatusCreated:    "gray",
	scheduler.StatusReady:      "gold",
	scheduler.StatusRunning:    "dodgerblue",
	scheduler.StatusFinalizing: "dodgerblue",
	scheduler.StatusCompleting: "dodgerblue",
	scheduler.StatusDone:       "forestgreen",
	scheduler.StatusCancelled:  "firebrick",
}

// Graph renders the scheduler's current snapshot as a directed DOT graph.
// A precondition that isn't any known operator's completion event (an
// external event) gets its own small diamond node so the graph still shows
// where an operator's dependency chain originates. An operator whose
// precondition is event.NoEvent gets no incoming edge.
func Graph(s *scheduler.Scheduler) *dot.Graph {
	g := dot.NewGraph(dot.Directed)
	g.Attr("rankdir", "LR")

	edges := s.Snapshot()

	byCompletion := make(map[event.ID]uint64, len(edges))
	for _, e := range edges {
		if e.Completion != event.NoEvent {
			byCompletion[e.Completion] = e.ID
		}
	}

	nodes := make(map[uint64]dot.Node, len(edges))
	for _, e := range edges {
		n := g.Node(fmt.Sprintf("op%d", e.ID))
		n.Attr("label", fmt.Sprintf("op %d\n%s", e.ID, e.Status))
		n.Attr("style", "filled")
		n.Attr("fillcolor", statusColor[e.Status])
		if e.Fingerprint != "" {
			n.Attr("tooltip", e.Fingerprint)
		}
		nodes[e.ID] = n
	}

	externalSources := make(map[event.ID]dot.Node)
	for _, e := range edges {
		dst := nodes[e.ID]
		if e.Precondition == event.NoEvent {
			continue
		}
		if srcID, ok := byCompletion[e.Precondition]; ok {
			g.Edge(nodes[srcID], dst)
			continue
		}
		src, ok := externalSources[e.Precondition]
		if !ok {
			src = g.Node(fmt.Sprintf("ext%s", e.Precondition))
			src.Attr("label", e.Precondition.String())
			src.Attr("shape", "diamond")
			externalSources[e.Precondition] = src
		}
		g.Edge(src, dst)
	}

	return g
}

// String renders the scheduler's current snapshot as DOT source, for
// writing to a file or piping straight into `dot -Tsvg`.
func String(s *scheduler.Scheduler) string {
	return Graph(s).String()
}
