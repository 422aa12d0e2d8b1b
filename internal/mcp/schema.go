package mcp

import (
	"github.com/nvandessel/netgen/internal/models"
	"github.com/nvandessel/netgen/internal/topology"
)

// GenerateInput defines the input for the netgen_generate tool.
type GenerateInput struct {
	Model  string `json:"model" jsonschema:"Path of the model YAML file, relative to the server root"`
	Seed   *int64 `json:"seed,omitempty" jsonschema:"Seed of the randbool stream (default: server seed)"`
	Strict *bool  `json:"strict,omitempty" jsonschema:"Fail on references to unknown populations, handles or receptors"`
}

// GenerateOutput defines the output for the netgen_generate tool.
type GenerateOutput struct {
	RunID       string                    `json:"run_id" jsonschema:"Identifier of the generation run"`
	Seed        int64                     `json:"seed" jsonschema:"Seed used for randbool patterns"`
	Populations int                       `json:"populations" jsonschema:"Number of population instances"`
	Handles     int                       `json:"handles" jsonschema:"Number of handle instances"`
	Tracts      int                       `json:"tracts" jsonschema:"Number of population to population tracts"`
	Drives      int                       `json:"drives" jsonschema:"Number of handle to population tracts"`
	Events      int                       `json:"events" jsonschema:"Number of events including EndTrial"`
	InstanceIDs []string                  `json:"instance_ids" jsonschema:"Population instance identifiers in generation order"`
	Connections []topology.ConnectionStat `json:"connections" jsonschema:"Per connection template statistics"`
	Warnings    []string                  `json:"warnings,omitempty" jsonschema:"Non-fatal validation issues"`
}

// GraphInput defines the input for the netgen_graph tool.
type GraphInput struct {
	Model  string `json:"model,omitempty" jsonschema:"Model YAML to generate first; empty renders the last generated topology"`
	Format string `json:"format,omitempty" jsonschema:"Output format: dot or json (default: json)"`
	Seed   *int64 `json:"seed,omitempty" jsonschema:"Seed of the randbool stream when generating"`
}

// GraphOutput defines the output for the netgen_graph tool.
type GraphOutput struct {
	Format    string      `json:"format" jsonschema:"Format of the rendered graph"`
	Graph     interface{} `json:"graph" jsonschema:"DOT source or JSON graph"`
	NodeCount int         `json:"node_count" jsonschema:"Number of nodes"`
	EdgeCount int         `json:"edge_count" jsonschema:"Number of edges"`
}

// ValidateInput defines the input for the netgen_validate tool.
type ValidateInput struct {
	Model  string `json:"model" jsonschema:"Path of the model YAML file, relative to the server root"`
	Strict *bool  `json:"strict,omitempty" jsonschema:"Treat unknown names as errors"`
}

// ValidateOutput defines the output for the netgen_validate tool.
type ValidateOutput struct {
	Valid    bool             `json:"valid" jsonschema:"True when generation would succeed"`
	Errors   int              `json:"errors" jsonschema:"Number of fatal issues"`
	Warnings int              `json:"warnings" jsonschema:"Number of non-fatal issues"`
	Issues   []topology.Issue `json:"issues" jsonschema:"All issues found"`
}

// EventsInput defines the input for the netgen_events tool.
type EventsInput struct{}

// EventsOutput defines the output for the netgen_events tool.
type EventsOutput struct {
	RunID  string         `json:"run_id" jsonschema:"Identifier of the stored run"`
	Events []models.Event `json:"events" jsonschema:"Stored event sequence in simulator order"`
	Count  int            `json:"count" jsonschema:"Number of events"`
}
