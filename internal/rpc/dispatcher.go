package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/Simplici0/jobmargin/internal/auth"
	"github.com/Simplici0/jobmargin/internal/costing"
	"github.com/Simplici0/jobmargin/internal/jobs"
)

const (
	protocolVersion = "2024-11-05"
	serverName      = "contractormargin-mcp"
	serverVersion   = "1.0.0"

	authRequiredText = "Authentication required. Please log in."
)

// Service is the subset of the jobs service the tools call.
type Service interface {
	Stats(ctx context.Context, ownerID string) (jobs.Stats, error)
	CreateJob(ctx context.Context, ownerID string, in jobs.CreateJobInput) (costing.Job, error)
	AddLabor(ctx context.Context, ownerID string, in jobs.AddLaborInput) (costing.LaborEntry, error)
	AddMaterial(ctx context.Context, ownerID string, in jobs.AddMaterialInput) (costing.MaterialEntry, error)
}

// Dispatcher routes envelopes to the protocol methods and tools.
type Dispatcher struct {
	svc     Service
	schemas map[ToolName]*jsonschema.Schema
	logger  *slog.Logger
}

// NewDispatcher compiles the tool schemas and returns a Dispatcher.
func NewDispatcher(svc Service, logger *slog.Logger) (*Dispatcher, error) {
	schemas, err := compileSchemas()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{svc: svc, schemas: schemas, logger: logger}, nil
}

// Handle processes one request body for caller. A zero caller is unauthenticated.
// It returns false when the request is a notification that gets no response.
func (d *Dispatcher) Handle(ctx context.Context, caller auth.Identity, body []byte) (Response, bool) {
	trimmed := bytes.TrimSpace(body)
	if !json.Valid(trimmed) {
		return failure(nullID, CodeParseError, "Parse error"), true
	}

	var req Request
	if trimmed[0] != '{' || json.Unmarshal(trimmed, &req) != nil {
		return failure(nullID, CodeInvalidRequest, "Invalid Request"), true
	}
	if req.Method == "" {
		return failure(req.ID, CodeInvalidRequest, "Invalid Request"), true
	}

	if req.IsNotification() && strings.HasPrefix(req.Method, "notifications/") {
		return Response{}, false
	}

	switch req.Method {
	case "initialize":
		return success(req.ID, InitializeResult{
			ProtocolVersion: protocolVersion,
			Capabilities:    map[string]any{"tools": map[string]any{}},
			ServerInfo:      ServerInfo{Name: serverName, Version: serverVersion},
		}), true
	case "tools/list":
		return success(req.ID, map[string]any{"tools": Catalog()}), true
	case "tools/call":
		return success(req.ID, d.call(ctx, caller, req.Params)), true
	default:
		return failure(req.ID, CodeMethodNotFound, fmt.Sprintf("Method not found: %s", req.Method)), true
	}
}

func (d *Dispatcher) call(ctx context.Context, caller auth.Identity, raw json.RawMessage) ToolResult {
	var params callParams
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &params); err != nil {
			return errorResult("Invalid params: " + err.Error())
		}
	}

	if caller.OwnerID == "" {
		d.audit(ctx, params.Name, "", "unauthenticated")
		return errorResult(authRequiredText)
	}

	name, ok := lookupTool(params.Name)
	if !ok {
		d.audit(ctx, params.Name, caller.OwnerID, "unknown_tool")
		return errorResult(fmt.Sprintf("Tool not found: %s", params.Name))
	}

	args := params.Arguments
	if len(bytes.TrimSpace(args)) == 0 || bytes.Equal(bytes.TrimSpace(args), []byte("null")) {
		args = json.RawMessage("{}")
	}
	if err := d.validate(name, args); err != nil {
		d.audit(ctx, string(name), caller.OwnerID, "invalid_arguments")
		return errorResult("Invalid arguments: " + err.Error())
	}

	result, err := d.run(ctx, caller.OwnerID, name, args)
	if err != nil {
		d.logger.ErrorContext(ctx, "tool call failed", "tool", name, "owner_id", caller.OwnerID, "error", err)
		d.audit(ctx, string(name), caller.OwnerID, "error")
		return errorResult("Error: " + describe(err))
	}
	d.audit(ctx, string(name), caller.OwnerID, "ok")
	return result
}

func (d *Dispatcher) validate(name ToolName, args json.RawMessage) error {
	var v any
	if err := json.Unmarshal(args, &v); err != nil {
		return err
	}
	schema, ok := d.schemas[name]
	if !ok {
		return fmt.Errorf("no schema for %s", name)
	}
	if err := schema.Validate(v); err != nil {
		var verr *jsonschema.ValidationError
		if errors.As(err, &verr) {
			return errors.New(leafMessage(verr))
		}
		return err
	}
	return nil
}

// leafMessage returns the most specific cause of a schema violation.
func leafMessage(e *jsonschema.ValidationError) string {
	for len(e.Causes) > 0 {
		e = e.Causes[0]
	}
	loc := e.InstanceLocation
	if loc == "" {
		loc = "/"
	}
	return loc + ": " + e.Message
}

func (d *Dispatcher) run(ctx context.Context, ownerID string, name ToolName, args json.RawMessage) (ToolResult, error) {
	switch name {
	case ToolGetStats:
		stats, err := d.svc.Stats(ctx, ownerID)
		if err != nil {
			return ToolResult{}, err
		}
		text, err := json.MarshalIndent(stats, "", "  ")
		if err != nil {
			return ToolResult{}, fmt.Errorf("encode stats: %w", err)
		}
		return textResult(string(text)), nil

	case ToolCreateJob:
		var in jobs.CreateJobInput
		if err := json.Unmarshal(args, &in); err != nil {
			return ToolResult{}, fmt.Errorf("decode arguments: %w", err)
		}
		job, err := d.svc.CreateJob(ctx, ownerID, in)
		if err != nil {
			return ToolResult{}, err
		}
		return textResult(fmt.Sprintf("Job created: %s (ID: %s)", job.Name, job.ID)), nil

	case ToolAddLabor:
		var in jobs.AddLaborInput
		if err := json.Unmarshal(args, &in); err != nil {
			return ToolResult{}, fmt.Errorf("decode arguments: %w", err)
		}
		entry, err := d.svc.AddLabor(ctx, ownerID, in)
		if err != nil {
			return ToolResult{}, err
		}
		return textResult(fmt.Sprintf("Labor added: %s, %sh @ $%s/hr = $%.2f",
			entry.TechName, formatNumber(entry.Hours), formatNumber(entry.HourlyRate), entry.Cost())), nil

	case ToolAddMaterial:
		var in jobs.AddMaterialInput
		if err := json.Unmarshal(args, &in); err != nil {
			return ToolResult{}, fmt.Errorf("decode arguments: %w", err)
		}
		entry, err := d.svc.AddMaterial(ctx, ownerID, in)
		if err != nil {
			return ToolResult{}, err
		}
		return textResult(fmt.Sprintf("Material added: %s — $%s", entry.Description, formatNumber(entry.Cost))), nil
	}

	return ToolResult{}, fmt.Errorf("tool %s has no handler", name)
}

func (d *Dispatcher) audit(ctx context.Context, tool, ownerID, outcome string) {
	d.logger.InfoContext(ctx, "tool call", "tool", tool, "owner_id", ownerID, "outcome", outcome)
}

func describe(err error) string {
	switch {
	case errors.Is(err, jobs.ErrNotFound):
		return "job not found"
	default:
		var verr *jobs.ValidationError
		if errors.As(err, &verr) {
			return verr.Message
		}
		return err.Error()
	}
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
