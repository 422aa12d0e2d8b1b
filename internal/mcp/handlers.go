package mcp

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/nvandessel/netgen/internal/constants"
	"github.com/nvandessel/netgen/internal/models"
	"github.com/nvandessel/netgen/internal/pathutil"
	"github.com/nvandessel/netgen/internal/ratelimit"
	"github.com/nvandessel/netgen/internal/store"
	"github.com/nvandessel/netgen/internal/topology"
	"github.com/nvandessel/netgen/internal/visualization"
)

// registerTools registers all MCP tools with the server.
func (s *Server) registerTools() {
	sdk.AddTool(s.server, &sdk.Tool{
		Name:        constants.ToolGenerate,
		Description: "Generate a network topology from a model file and keep it for graph and event queries",
	}, s.handleGenerate)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        constants.ToolGraph,
		Description: "Render the generated topology as DOT (Graphviz) or JSON",
	}, s.handleGraph)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        constants.ToolValidate,
		Description: "Check a model file for unknown names, missing dimensions and invalid patterns without generating",
	}, s.handleValidate)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        constants.ToolEvents,
		Description: "List the event sequence of the last generated topology",
	}, s.handleEvents)
}

// handleGenerate implements the netgen_generate tool.
func (s *Server) handleGenerate(ctx context.Context, req *sdk.CallToolRequest, args GenerateInput) (_ *sdk.CallToolResult, _ GenerateOutput, retErr error) {
	start := time.Now()
	defer func() {
		s.auditTool(constants.ToolGenerate, start, retErr, sanitizeToolParams(map[string]interface{}{
			"model": args.Model, "seed": derefInt(args.Seed), "strict": derefBool(args.Strict),
		}))
	}()

	if err := ratelimit.CheckLimit(s.toolLimiters, constants.ToolGenerate); err != nil {
		return nil, GenerateOutput{}, err
	}

	res, info, err := s.generate(ctx, args.Model, args.Seed, args.Strict)
	if err != nil {
		return nil, GenerateOutput{}, err
	}

	ids := make([]string, len(res.Instances))
	for i, inst := range res.Instances {
		ids[i] = inst.ID
	}
	var warnings []string
	for _, is := range res.Issues {
		warnings = append(warnings, is.String())
	}

	return nil, GenerateOutput{
		RunID:       info.ID,
		Seed:        info.Seed,
		Populations: len(res.Instances),
		Handles:     len(res.Handles),
		Tracts:      res.TractCount(),
		Drives:      res.DriveCount(),
		Events:      len(res.Events),
		InstanceIDs: ids,
		Connections: res.Stats,
		Warnings:    warnings,
	}, nil
}

// handleGraph implements the netgen_graph tool.
func (s *Server) handleGraph(ctx context.Context, req *sdk.CallToolRequest, args GraphInput) (_ *sdk.CallToolResult, _ GraphOutput, retErr error) {
	start := time.Now()
	defer func() {
		s.auditTool(constants.ToolGraph, start, retErr, sanitizeToolParams(map[string]interface{}{
			"model": args.Model, "format": args.Format, "seed": derefInt(args.Seed),
		}))
	}()

	if err := ratelimit.CheckLimit(s.toolLimiters, constants.ToolGraph); err != nil {
		return nil, GraphOutput{}, err
	}

	if args.Model != "" {
		if _, _, err := s.generate(ctx, args.Model, args.Seed, nil); err != nil {
			return nil, GraphOutput{}, err
		}
	} else if err := s.requireRun(ctx); err != nil {
		return nil, GraphOutput{}, err
	}

	format := args.Format
	if format == "" {
		format = string(visualization.FormatJSON)
	}

	switch visualization.Format(format) {
	case visualization.FormatDOT:
		dot, err := visualization.RenderDOT(ctx, s.store)
		if err != nil {
			return nil, GraphOutput{}, fmt.Errorf("render DOT: %w", err)
		}
		nodes, edges, err := s.counts(ctx)
		if err != nil {
			return nil, GraphOutput{}, err
		}
		return nil, GraphOutput{Format: format, Graph: dot, NodeCount: nodes, EdgeCount: edges}, nil

	case visualization.FormatJSON:
		graph, err := visualization.RenderJSON(ctx, s.store)
		if err != nil {
			return nil, GraphOutput{}, fmt.Errorf("render JSON: %w", err)
		}
		nodeCount, _ := graph["node_count"].(int)
		edgeCount, _ := graph["edge_count"].(int)
		return nil, GraphOutput{Format: format, Graph: graph, NodeCount: nodeCount, EdgeCount: edgeCount}, nil
	}
	return nil, GraphOutput{}, fmt.Errorf("unsupported format %q (valid: dot, json)", format)
}

// handleValidate implements the netgen_validate tool.
func (s *Server) handleValidate(ctx context.Context, req *sdk.CallToolRequest, args ValidateInput) (_ *sdk.CallToolResult, _ ValidateOutput, retErr error) {
	start := time.Now()
	defer func() {
		s.auditTool(constants.ToolValidate, start, retErr, sanitizeToolParams(map[string]interface{}{
			"model": args.Model, "strict": derefBool(args.Strict),
		}))
	}()

	if err := ratelimit.CheckLimit(s.toolLimiters, constants.ToolValidate); err != nil {
		return nil, ValidateOutput{}, err
	}

	m, _, err := s.loadModel(args.Model)
	if err != nil {
		return nil, ValidateOutput{}, err
	}

	strict := s.strict
	if args.Strict != nil {
		strict = *args.Strict
	}

	issues := topology.Validate(m)
	out := ValidateOutput{Issues: make([]topology.Issue, 0, len(issues))}
	for _, is := range issues {
		if is.Fatal(strict) {
			out.Errors++
		} else {
			out.Warnings++
		}
		out.Issues = append(out.Issues, is)
	}
	out.Valid = out.Errors == 0
	return nil, out, nil
}

// handleEvents implements the netgen_events tool.
func (s *Server) handleEvents(ctx context.Context, req *sdk.CallToolRequest, args EventsInput) (_ *sdk.CallToolResult, _ EventsOutput, retErr error) {
	start := time.Now()
	defer func() {
		s.auditTool(constants.ToolEvents, start, retErr, sanitizeToolParams(map[string]interface{}{}))
	}()

	if err := ratelimit.CheckLimit(s.toolLimiters, constants.ToolEvents); err != nil {
		return nil, EventsOutput{}, err
	}
	if err := s.requireRun(ctx); err != nil {
		return nil, EventsOutput{}, err
	}

	info, err := store.LoadRunInfo(ctx, s.store)
	if err != nil {
		return nil, EventsOutput{}, err
	}
	events, err := s.store.Events(ctx)
	if err != nil {
		return nil, EventsOutput{}, fmt.Errorf("read events: %w", err)
	}
	return nil, EventsOutput{RunID: info.ID, Events: events, Count: len(events)}, nil
}

// loadModel resolves path under the server root and loads the model.
// The returned name is the path relative to the root.
func (s *Server) loadModel(path string) (*models.Model, string, error) {
	if path == "" {
		return nil, "", fmt.Errorf("'model' parameter is required")
	}
	abs, err := pathutil.Resolve(s.root, path)
	if err != nil {
		return nil, "", err
	}
	m, err := models.LoadModel(abs)
	if err != nil {
		return nil, "", err
	}
	name, err := filepath.Rel(s.root, abs)
	if err != nil {
		name = pathutil.RedactPath(abs)
	}
	return m, name, nil
}

// generate runs the engine on a model file and replaces the stored topology.
func (s *Server) generate(ctx context.Context, path string, seed *int64, strict *bool) (*topology.Result, store.RunInfo, error) {
	m, name, err := s.loadModel(path)
	if err != nil {
		return nil, store.RunInfo{}, err
	}

	opts := topology.Options{Logger: s.logger, Strict: s.strict}
	if strict != nil {
		opts.Strict = *strict
	}
	runSeed := s.seed
	if seed != nil {
		runSeed = *seed
	}
	opts.Rand = topology.NewRand(runSeed)

	res, err := topology.Generate(ctx, m, opts)
	if err != nil {
		return nil, store.RunInfo{}, err
	}
	info, err := store.SaveResult(ctx, s.store, res, store.RunInfo{Model: name, Seed: runSeed})
	if err != nil {
		return nil, store.RunInfo{}, fmt.Errorf("save topology: %w", err)
	}
	return res, info, nil
}

// requireRun returns an error when nothing has been generated yet.
func (s *Server) requireRun(ctx context.Context) error {
	id, err := s.store.GetMeta(ctx, store.MetaRunID)
	if err != nil {
		return err
	}
	if id == "" {
		return fmt.Errorf("no topology generated yet: call %s or pass 'model'", constants.ToolGenerate)
	}
	return nil
}

func (s *Server) counts(ctx context.Context) (int, int, error) {
	nodes, err := s.store.QueryNodes(ctx, map[string]interface{}{})
	if err != nil {
		return 0, 0, fmt.Errorf("query nodes: %w", err)
	}
	edges, err := s.store.GetEdges(ctx, "", store.DirectionBoth, "")
	if err != nil {
		return 0, 0, fmt.Errorf("get edges: %w", err)
	}
	return len(nodes), len(edges), nil
}

func derefInt(p *int64) interface{} {
	if p == nil {
		return "(default)"
	}
	return *p
}

func derefBool(p *bool) interface{} {
	if p == nil {
		return "(default)"
	}
	return *p
}
