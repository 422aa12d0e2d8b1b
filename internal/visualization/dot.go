// Package visualization renders stored network topologies in various output formats.
package visualization

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/nvandessel/netgen/internal/constants"
	"github.com/nvandessel/netgen/internal/store"
	"github.com/nvandessel/netgen/internal/utils"
)

// Format specifies the output format for graph rendering.
type Format string

const (
	FormatDOT  Format = "dot"
	FormatJSON Format = "json"
)

// templateColors is cycled through in order of first appearance so every
// instance of a population template shares a fill color.
var templateColors = []string{
	"steelblue",
	"tomato",
	"mediumseagreen",
	"goldenrod",
	"orchid",
	"lightsalmon",
	"cadetblue",
	"khaki",
}

// edgeStyles maps edge kinds to DOT styles.
var edgeStyles = map[string]string{
	constants.EdgeKindTract: "solid",
	constants.EdgeKindDrive: "dashed",
}

// Render renders gs in the given format.
func Render(ctx context.Context, gs store.GraphStore, format Format) (string, error) {
	switch format {
	case "", FormatDOT:
		return RenderDOT(ctx, gs)
	case FormatJSON:
		graph, err := RenderJSON(ctx, gs)
		if err != nil {
			return "", err
		}
		data, err := json.MarshalIndent(graph, "", "  ")
		if err != nil {
			return "", fmt.Errorf("marshal graph: %w", err)
		}
		return string(data) + "\n", nil
	}
	return "", fmt.Errorf("unsupported graph format: %s (valid: dot, json)", format)
}

// RenderDOT produces a Graphviz DOT representation of the stored topology.
// Population instances are boxes colored by template; handles are diamonds.
func RenderDOT(ctx context.Context, gs store.GraphStore) (string, error) {
	nodes, err := loadNodes(ctx, gs)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("digraph netgen {\n")
	b.WriteString("  rankdir=LR;\n")
	b.WriteString("  node [shape=box, style=filled, fontname=\"Helvetica\"];\n")
	b.WriteString("  edge [fontname=\"Helvetica\", fontsize=10];\n\n")

	colors := make(map[string]string)
	for _, node := range nodes {
		if node.Kind == constants.NodeKindHandle {
			b.WriteString(fmt.Sprintf("  %q [shape=diamond, fillcolor=\"lightgray\", tooltip=%q];\n",
				node.ID, "handle "+utils.GetString(node.Content, "handle", "")))
			continue
		}

		tmpl := utils.GetString(node.Content, "template", node.ID)
		color, ok := colors[tmpl]
		if !ok {
			color = templateColors[len(colors)%len(templateColors)]
			colors[tmpl] = color
		}
		label := node.ID
		if size, ok := utils.GetMap(node.Content, "data")[constants.ParamSize].(float64); ok {
			label = fmt.Sprintf("%s\nN=%g", node.ID, size)
		}
		b.WriteString(fmt.Sprintf("  %q [label=%q, fillcolor=%q, tooltip=%q];\n",
			node.ID, label, color, "template "+tmpl))
	}
	b.WriteString("\n")

	edges, err := CollectEdges(ctx, gs, nodes)
	if err != nil {
		return "", err
	}
	for _, edge := range edges {
		style := edgeStyles[edge.Kind]
		if style == "" {
			style = "solid"
		}
		b.WriteString(fmt.Sprintf("  %q -> %q [label=%q, style=%s, tooltip=\"con=%g eff=%g\"];\n",
			edge.Source, edge.Target, edgeLabel(edge), style, edge.Connectivity, edge.Efficacy))
	}

	b.WriteString("}\n")
	return b.String(), nil
}

// RenderJSON produces a JSON graph representation with nodes and edges arrays.
func RenderJSON(ctx context.Context, gs store.GraphStore) (map[string]interface{}, error) {
	nodes, err := loadNodes(ctx, gs)
	if err != nil {
		return nil, err
	}

	jsonNodes := make([]map[string]interface{}, 0, len(nodes))
	for _, node := range nodes {
		entry := map[string]interface{}{
			"id":      node.ID,
			"kind":    node.Kind,
			"path":    utils.GetStringSlice(node.Content, "path"),
			"indices": utils.GetIntSlice(node.Content, "indices"),
		}
		if node.Kind == constants.NodeKindHandle {
			entry["handle"] = utils.GetString(node.Content, "handle", "")
		} else {
			entry["template"] = utils.GetString(node.Content, "template", "")
			if size, ok := utils.GetMap(node.Content, "data")[constants.ParamSize].(float64); ok {
				entry["size"] = size
			}
		}
		jsonNodes = append(jsonNodes, entry)
	}

	edges, err := CollectEdges(ctx, gs, nodes)
	if err != nil {
		return nil, err
	}
	jsonEdges := make([]map[string]interface{}, 0, len(edges))
	for _, edge := range edges {
		jsonEdges = append(jsonEdges, map[string]interface{}{
			"source":       edge.Source,
			"target":       edge.Target,
			"kind":         edge.Kind,
			"name":         edge.Name,
			"receptor":     edge.Receptor,
			"connectivity": edge.Connectivity,
			"efficacy":     edge.Efficacy,
		})
	}

	return map[string]interface{}{
		"nodes":      jsonNodes,
		"edges":      jsonEdges,
		"node_count": len(jsonNodes),
		"edge_count": len(jsonEdges),
	}, nil
}

// CollectEdges gathers the outbound edges of a set of nodes, in node order.
func CollectEdges(ctx context.Context, gs store.GraphStore, nodes []store.Node) ([]store.Edge, error) {
	var result []store.Edge
	for _, node := range nodes {
		edges, err := gs.GetEdges(ctx, node.ID, store.DirectionOutbound, "")
		if err != nil {
			return nil, fmt.Errorf("get edges for node %s: %w", node.ID, err)
		}
		result = append(result, edges...)
	}
	return result, nil
}

// loadNodes returns population instances followed by handle instances.
func loadNodes(ctx context.Context, gs store.GraphStore) ([]store.Node, error) {
	pops, err := gs.QueryNodes(ctx, map[string]interface{}{"kind": constants.NodeKindPopulation})
	if err != nil {
		return nil, fmt.Errorf("query nodes: %w", err)
	}
	handles, err := gs.QueryNodes(ctx, map[string]interface{}{"kind": constants.NodeKindHandle})
	if err != nil {
		return nil, fmt.Errorf("query nodes: %w", err)
	}
	return append(pops, handles...), nil
}

// edgeLabel names an edge by its connection name, falling back to the receptor.
func edgeLabel(e store.Edge) string {
	label := e.Name
	if label == "" {
		label = e.Receptor
	} else if e.Receptor != "" {
		label += " (" + e.Receptor + ")"
	}
	return truncate(label, 40)
}

// truncate shortens a string to maxLen, adding "..." if truncated.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
