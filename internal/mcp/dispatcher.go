// ABOUTME: Dispatcher for the query_transaction tool: discovery and invocation.
// ABOUTME: Maps arguments, calls the MSU gateway once, and annotates the JSON reply.

package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/2389/msu-mcp/internal/annotate"
	"github.com/2389/msu-mcp/internal/msu"
)

// ErrUnknownTool indicates a tools/call for a name this server does not expose.
var ErrUnknownTool = errors.New("unknown tool")

// Gateway performs one outbound query and returns the decoded JSON body.
type Gateway interface {
	Query(ctx context.Context, form msu.Form) (any, error)
}

// DispatcherConfig holds everything a Dispatcher needs. All of it is
// read-only after construction.
type DispatcherConfig struct {
	Gateway     Gateway
	Credentials msu.Credentials
	ErrorCodes  annotate.Lookup
	Logger      *slog.Logger
}

// Dispatcher serves tool discovery and invocation. It keeps no state between
// calls, so one Dispatcher can serve concurrent invocations.
type Dispatcher struct {
	gateway   Gateway
	creds     msu.Credentials
	annotator *annotate.Annotator
	tool      msu.Descriptor
	schema    json.RawMessage
	logger    *slog.Logger
}

// NewDispatcher creates a Dispatcher with the given configuration.
func NewDispatcher(cfg DispatcherConfig) (*Dispatcher, error) {
	if cfg.Gateway == nil {
		return nil, errors.New("gateway is required")
	}
	if cfg.ErrorCodes == nil {
		return nil, errors.New("error code table is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Dispatcher{
		gateway:   cfg.Gateway,
		creds:     cfg.Credentials,
		annotator: annotate.New(cfg.ErrorCodes),
		tool:      msu.QueryTransaction,
		schema:    msu.QueryTransaction.InputSchema(),
		logger:    logger,
	}, nil
}

// ListTools returns the descriptor of the one supported tool.
func (d *Dispatcher) ListTools() []MCPToolInfo {
	return []MCPToolInfo{{
		Name:        d.tool.Name,
		Description: d.tool.Description,
		InputSchema: d.schema,
	}}
}

// CallTool runs the named tool. It fails with ErrUnknownTool before any
// network traffic when name is not query_transaction. Gateway failures are
// returned as-is (msu.ErrTransport, *msu.APIError, msu.ErrInvalidResponse).
// Error codes inside a successful reply are annotated, never treated as failures.
func (d *Dispatcher) CallTool(ctx context.Context, name string, arguments json.RawMessage) (*MCPCallToolResult, error) {
	if name != d.tool.Name {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTool, name)
	}

	args, err := msu.DecodeQueryArgs(arguments)
	if err != nil {
		return nil, err
	}

	form := msu.BuildQueryForm(d.creds, args)

	body, err := d.gateway.Query(ctx, form)
	if err != nil {
		return nil, err
	}

	text, err := formatResult(d.annotator.Annotate(body))
	if err != nil {
		return nil, err
	}

	return &MCPCallToolResult{
		Content: []MCPContent{{Type: "text", Text: text}},
	}, nil
}

// formatResult renders v as JSON indented by two spaces.
func formatResult(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return "", fmt.Errorf("encoding result: %w", err)
	}
	return string(bytes.TrimRight(buf.Bytes(), "\n")), nil
}
