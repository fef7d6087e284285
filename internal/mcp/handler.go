// ABOUTME: Transport-independent JSON-RPC method routing for the MCP server.
// ABOUTME: Maps dispatcher failures onto JSON-RPC errors and logs each tool call.

package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/2389/msu-mcp/internal/msu"
)

// ServerName is reported in serverInfo.
const ServerName = "msu-mcp"

// Error kinds carried in JSONRPCError.Data so clients can branch without
// parsing messages.
const (
	ErrorKindUnknownTool      = "unknown_tool"
	ErrorKindInvalidArguments = "invalid_arguments"
	ErrorKindTransport        = "transport"
	ErrorKindGateway          = "gateway"
	ErrorKindInvalidResponse  = "invalid_response"
	ErrorKindCancelled        = "cancelled"
	ErrorKindInternal         = "internal"
)

// Handler answers JSON-RPC requests using a Dispatcher.
type Handler struct {
	dispatcher *Dispatcher
	version    string
	logger     *slog.Logger
}

// NewHandler creates a Handler. version is reported in serverInfo.
func NewHandler(d *Dispatcher, version string, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{dispatcher: d, version: version, logger: logger}
}

// HandleMessage decodes one JSON-RPC message and returns the encoded reply.
// It returns nil for notifications.
func (h *Handler) HandleMessage(ctx context.Context, data []byte) []byte {
	req, errResp := decodeRequest(data)
	if errResp != nil {
		return h.encode(errResp)
	}

	resp := h.Handle(ctx, req)
	if resp == nil {
		return nil
	}
	return h.encode(resp)
}

// decodeRequest parses one JSON-RPC message. Bytes that are not JSON get a
// parse error; JSON that does not fit the request shape is an invalid request.
func decodeRequest(data []byte) (*JSONRPCRequest, *JSONRPCResponse) {
	if !json.Valid(data) {
		return nil, errorResponse(nullID, JSONRPCParseError, "invalid JSON", nil)
	}
	var req JSONRPCRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, errorResponse(nullID, JSONRPCInvalidRequest, "invalid request", nil)
	}
	return &req, nil
}

// Handle routes a decoded request. It returns nil for notifications.
func (h *Handler) Handle(ctx context.Context, req *JSONRPCRequest) *JSONRPCResponse {
	if req.JSONRPC != "2.0" {
		return errorResponse(idOrNull(req.ID), JSONRPCInvalidRequest, "invalid JSON-RPC version", nil)
	}
	if req.Method == "" {
		return errorResponse(idOrNull(req.ID), JSONRPCInvalidRequest, "method is required", nil)
	}

	if req.IsNotification() {
		if strings.HasPrefix(req.Method, "notifications/") {
			h.logger.Debug("accepted MCP notification", "method", req.Method)
		} else {
			h.logger.Warn("received notification for non-notification method", "method", req.Method)
		}
		return nil
	}

	switch req.Method {
	case "initialize":
		return h.handleInitialize(req)
	case "ping":
		return resultResponse(req.ID, struct{}{})
	case "tools/list":
		return resultResponse(req.ID, MCPListToolsResult{Tools: h.dispatcher.ListTools()})
	case "tools/call":
		return h.handleToolsCall(ctx, req)
	default:
		return errorResponse(req.ID, JSONRPCMethodNotFound, "method not found: "+req.Method, nil)
	}
}

// handleInitialize answers the MCP handshake.
func (h *Handler) handleInitialize(req *JSONRPCRequest) *JSONRPCResponse {
	var params MCPInitializeParams
	if len(req.Params) > 0 {
		if err := json.Unmarshal(req.Params, &params); err != nil {
			return errorResponse(req.ID, JSONRPCInvalidParams, "invalid params", nil)
		}
	}

	version := negotiateProtocolVersion(params.ProtocolVersion)
	h.logger.Info("MCP client initialized",
		"client", params.ClientInfo.Name,
		"client_version", params.ClientInfo.Version,
		"protocol_version", version,
	)

	return resultResponse(req.ID, MCPInitializeResult{
		ProtocolVersion: version,
		Capabilities: map[string]any{
			"tools": map[string]any{"listChanged": false},
		},
		ServerInfo: MCPImplementation{Name: ServerName, Version: h.version},
	})
}

// handleToolsCall handles tools/call requests.
func (h *Handler) handleToolsCall(ctx context.Context, req *JSONRPCRequest) *JSONRPCResponse {
	var params MCPCallToolParams
	if len(req.Params) > 0 {
		if err := json.Unmarshal(req.Params, &params); err != nil {
			return errorResponse(req.ID, JSONRPCInvalidParams, "invalid params", nil)
		}
	}
	if params.Name == "" {
		return errorResponse(req.ID, JSONRPCInvalidParams, "tool name is required", nil)
	}

	// Generate request ID for correlation
	requestID := uuid.New().String()
	start := time.Now()

	h.logger.Debug("tools/call",
		"tool_name", params.Name,
		"request_id", requestID,
		"arguments_bytes", len(params.Arguments),
	)

	result, err := h.dispatcher.CallTool(ctx, params.Name, params.Arguments)
	if err != nil {
		return h.toolError(req.ID, params.Name, requestID, err)
	}

	h.logger.Info("tools/call complete",
		"tool_name", params.Name,
		"request_id", requestID,
		"duration", time.Since(start),
	)

	return resultResponse(req.ID, result)
}

// toolError converts a dispatcher failure into a JSON-RPC error.
func (h *Handler) toolError(id json.RawMessage, toolName, requestID string, err error) *JSONRPCResponse {
	code := JSONRPCInternalError
	data := map[string]any{"request_id": requestID}

	var apiErr *msu.APIError
	switch {
	case errors.Is(err, ErrUnknownTool):
		code = JSONRPCInvalidParams
		data["kind"] = ErrorKindUnknownTool
	case errors.Is(err, msu.ErrInvalidArguments):
		code = JSONRPCInvalidParams
		data["kind"] = ErrorKindInvalidArguments
	case errors.Is(err, msu.ErrTransport):
		data["kind"] = ErrorKindTransport
	case errors.As(err, &apiErr):
		data["kind"] = ErrorKindGateway
		data["status"] = apiErr.StatusCode
	case errors.Is(err, msu.ErrInvalidResponse):
		data["kind"] = ErrorKindInvalidResponse
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		data["kind"] = ErrorKindCancelled
	default:
		data["kind"] = ErrorKindInternal
	}

	h.logger.Warn("tool execution failed",
		"tool_name", toolName,
		"request_id", requestID,
		"kind", data["kind"],
		"error", err,
	)

	return errorResponse(id, code, err.Error(), data)
}

func (h *Handler) encode(resp *JSONRPCResponse) []byte {
	data, err := json.Marshal(resp)
	if err != nil {
		h.logger.Warn("failed to encode JSON-RPC response", "error", err)
		data, _ = json.Marshal(errorResponse(resp.ID, JSONRPCInternalError, "failed to encode response", nil))
	}
	return data
}

func idOrNull(id json.RawMessage) json.RawMessage {
	if len(id) == 0 {
		return nullID
	}
	return id
}

func resultResponse(id json.RawMessage, result any) *JSONRPCResponse {
	return &JSONRPCResponse{JSONRPC: "2.0", ID: id, Result: result}
}

func errorResponse(id json.RawMessage, code int, message string, data any) *JSONRPCResponse {
	return &JSONRPCResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &JSONRPCError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}
