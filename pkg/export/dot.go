package export

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/depscout/depscout/pkg/resolve"
)

// edgeColors distinguishes provenance kinds in the rendered graph.
var edgeColors = map[resolve.EdgeKind]string{
	resolve.EdgeParent:        "firebrick",
	resolve.EdgeDependency:    "black",
	resolve.EdgeManagedDep:    "gray60",
	resolve.EdgeBOM:           "darkorange",
	resolve.EdgePlugin:        "steelblue",
	resolve.EdgeManagedPlugin: "lightsteelblue",
	resolve.EdgePluginDep:     "slateblue",
	resolve.EdgeModule:        "forestgreen",
}

// ToDOT converts the provenance edges of a resolution run to Graphviz
// DOT format. Nodes are the group:artifact:version triples; edge color
// encodes how the target was reached.
func ToDOT(edges []resolve.Edge) string {
	var buf bytes.Buffer
	buf.WriteString("digraph provenance {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	seen := make(map[string]bool)
	node := func(id string) {
		if !seen[id] {
			seen[id] = true
			fmt.Fprintf(&buf, "  %q [label=%q];\n", id, nodeLabel(id))
		}
	}
	for _, e := range edges {
		node(e.From)
		node(e.To)
	}

	buf.WriteString("\n")
	for _, e := range edges {
		color := edgeColors[e.Kind]
		if color == "" {
			color = "black"
		}
		fmt.Fprintf(&buf, "  %q -> %q [color=%q, tooltip=%q];\n", e.From, e.To, color, string(e.Kind))
	}

	buf.WriteString("}\n")
	return buf.String()
}

// nodeLabel breaks a group:artifact:version triple over two lines so
// wide coordinates stay readable.
func nodeLabel(id string) string {
	parts := strings.SplitN(id, ":", 3)
	if len(parts) == 3 {
		return parts[0] + "\n" + parts[1] + " " + parts[2]
	}
	return id
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(dot string) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}

// RenderPNG renders a DOT graph to PNG using Graphviz.
func RenderPNG(dot string) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
