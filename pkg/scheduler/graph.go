package scheduler

import (
	"fmt"
	"strings"

	"github.com/honeybbq/rosreconcile/pkg/resource"
)

// GraphNode is one mutation of the batch, numbered by input position.
type GraphNode struct {
	Index int    `json:"index"`
	Label string `json:"label"`
	Empty bool   `json:"empty,omitempty"`
}

// GraphEdge means "From depends on To" through Ref.
type GraphEdge struct {
	From int                `json:"from"`
	To   int                `json:"to"`
	Ref  resource.Reference `json:"ref"`
}

// Graph is the dependency view of a batch, for DOT and Mermaid export.
type Graph struct {
	Nodes []GraphNode `json:"nodes"`
	Edges []GraphEdge `json:"edges"`
	// Order is the scheduled order of node indexes, nil when the batch could
	// not be ordered.
	Order []int `json:"order"`
}

// BuildGraph links each mutation to the batch members providing its
// dependencies. The graph is returned even when ordering fails so the
// blocked part can be inspected.
func BuildGraph(seed []resource.Reference, muts []resource.ResourceMutation) (Graph, error) {
	g := Graph{Nodes: make([]GraphNode, len(muts))}
	providers := make(map[resource.Reference][]int)
	for i, m := range muts {
		g.Nodes[i] = GraphNode{Index: i, Label: m.String(), Empty: m.Empty()}
		for _, r := range m.Provides {
			providers[r] = append(providers[r], i)
		}
	}
	for i, m := range muts {
		for _, d := range m.Depends {
			for _, p := range providers[d] {
				if p == i {
					continue
				}
				g.Edges = append(g.Edges, GraphEdge{From: i, To: p, Ref: d})
			}
		}
	}
	ord, err := order(seed, muts)
	if err != nil {
		return g, err
	}
	g.Order = ord
	return g, nil
}

// DOT exports Graphviz DOT text.
func (g Graph) DOT() string {
	var b strings.Builder
	b.WriteString("digraph mutations {\n")
	b.WriteString("  rankdir=LR;\n")
	for _, n := range g.Nodes {
		style := ""
		if n.Empty {
			style = ", style=dashed"
		}
		b.WriteString(fmt.Sprintf("  n%d [label=\"%s\"%s];\n", n.Index, escapeDOT(n.Label), style))
	}
	for _, e := range g.Edges {
		b.WriteString(fmt.Sprintf("  n%d -> n%d [label=\"%s\"];\n", e.From, e.To, escapeDOT(e.Ref.String())))
	}
	b.WriteString("}\n")
	return b.String()
}

// Mermaid exports Mermaid graph text.
func (g Graph) Mermaid() string {
	var b strings.Builder
	b.WriteString("graph TD\n")
	for _, n := range g.Nodes {
		b.WriteString(fmt.Sprintf("    n%d[\"%s\"]\n", n.Index, escapeMermaid(n.Label)))
	}
	for _, e := range g.Edges {
		b.WriteString(fmt.Sprintf("    n%d -->|%s| n%d\n", e.From, escapeMermaid(e.Ref.String()), e.To))
	}
	return b.String()
}

func escapeDOT(s string) string {
	return strings.ReplaceAll(s, "\"", "\\\"")
}

func escapeMermaid(s string) string {
	return strings.NewReplacer("\"", "#quot;", "|", "#124;").Replace(s)
}
