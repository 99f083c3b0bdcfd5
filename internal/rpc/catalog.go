package rpc

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// ToolName identifies one of the fixed tools.
type ToolName string

const (
	ToolGetStats    ToolName = "get_stats"
	ToolCreateJob   ToolName = "create_job"
	ToolAddLabor    ToolName = "add_labor"
	ToolAddMaterial ToolName = "add_material"
)

// Tool is a catalog entry as published by tools/list.
type Tool struct {
	Name        ToolName        `json:"name"`
	Description string          `json:"description"`
	InputSchema json.RawMessage `json:"inputSchema"`
}

var catalog = []Tool{
	{
		Name:        ToolGetStats,
		Description: "Get aggregated job margin statistics for the authenticated contractor account.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {},
			"required": [],
			"additionalProperties": false
		}`),
	},
	{
		Name:        ToolCreateJob,
		Description: "Create a new job for tracking labor and material costs.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"name": {"type": "string", "minLength": 1, "description": "Job name/description"},
				"client_name": {"type": "string", "description": "Client name"},
				"job_type": {"type": "string", "enum": ["residential", "commercial"], "description": "Type of job"},
				"estimated_revenue": {"type": "number", "minimum": 0, "maximum": 1000000000, "description": "Estimated revenue in dollars"}
			},
			"required": ["name"],
			"additionalProperties": false
		}`),
	},
	{
		Name:        ToolAddLabor,
		Description: "Add a labor entry to a job.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"job_id": {"type": "string", "minLength": 1, "description": "Job UUID"},
				"tech_name": {"type": "string", "minLength": 1, "description": "Technician name"},
				"hours": {"type": "number", "minimum": 0, "maximum": 1000000000, "description": "Hours worked"},
				"hourly_rate": {"type": "number", "minimum": 0, "maximum": 1000000000, "description": "Hourly rate in dollars"},
				"date": {"type": "string", "pattern": "^[0-9]{4}-[0-9]{2}-[0-9]{2}$", "description": "Date (YYYY-MM-DD)"}
			},
			"required": ["job_id", "tech_name", "hours", "hourly_rate"],
			"additionalProperties": false
		}`),
	},
	{
		Name:        ToolAddMaterial,
		Description: "Add a material cost entry to a job.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"job_id": {"type": "string", "minLength": 1, "description": "Job UUID"},
				"description": {"type": "string", "minLength": 1, "description": "Material description"},
				"cost": {"type": "number", "minimum": 0, "maximum": 1000000000, "description": "Material cost in dollars"},
				"date": {"type": "string", "pattern": "^[0-9]{4}-[0-9]{2}-[0-9]{2}$", "description": "Date (YYYY-MM-DD)"}
			},
			"required": ["job_id", "description", "cost"],
			"additionalProperties": false
		}`),
	},
}

// Catalog returns the published tools in a stable order.
func Catalog() []Tool {
	out := make([]Tool, len(catalog))
	copy(out, catalog)
	return out
}

func lookupTool(name string) (ToolName, bool) {
	for _, t := range catalog {
		if string(t.Name) == name {
			return t.Name, true
		}
	}
	return "", false
}

func compileSchemas() (map[ToolName]*jsonschema.Schema, error) {
	out := make(map[ToolName]*jsonschema.Schema, len(catalog))
	for _, t := range catalog {
		c := jsonschema.NewCompiler()
		c.Draft = jsonschema.Draft2020
		url := fmt.Sprintf("https://jobmargin.local/tools/%s.schema.json", t.Name)
		if err := c.AddResource(url, strings.NewReader(string(t.InputSchema))); err != nil {
			return nil, fmt.Errorf("load %s schema: %w", t.Name, err)
		}
		compiled, err := c.Compile(url)
		if err != nil {
			return nil, fmt.Errorf("compile %s schema: %w", t.Name, err)
		}
		out[t.Name] = compiled
	}
	return out, nil
}
