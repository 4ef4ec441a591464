package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"runtime/debug"

	"fsserver/internal/logging"

	mcpgo "github.com/mark3labs/mcp-go/mcp"
)

// Dispatcher routes JSON-RPC requests to the resource provider and the tool
// executor. It is the only place where errors become JSON-RPC error codes.
// It keeps no per-request state and is safe for concurrent use.
type Dispatcher struct {
	resources *ResourceProvider
	tools     *ToolExecutor
	info      serverInfo
	logger    *logging.AppLogger
}

// NewDispatcher creates a dispatcher announcing itself as name/version.
func NewDispatcher(resources *ResourceProvider, tools *ToolExecutor, name, version string, logger *logging.AppLogger) *Dispatcher {
	return &Dispatcher{
		resources: resources,
		tools:     tools,
		info:      serverInfo{Name: name, Version: version},
		logger:    logger,
	}
}

// HandleMessage processes one raw JSON-RPC message. ok is false when no
// response must be sent, which is the case for notifications.
func (d *Dispatcher) HandleMessage(ctx context.Context, data []byte) (resp *response, ok bool) {
	var req request
	if err := json.Unmarshal(data, &req); err != nil {
		if !json.Valid(data) {
			return newError(nullID, codeParseError, "Parse error: "+err.Error()), true
		}
		return newError(nullID, codeInvalidRequest, "Invalid Request: "+err.Error()), true
	}

	if req.JSONRPC != jsonrpcVersion {
		return newError(req.ID, codeInvalidRequest, "Invalid Request: unsupported JSON-RPC version"), true
	}
	if req.Method == "" {
		return newError(req.ID, codeInvalidRequest, "Invalid Request: method is required"), true
	}

	// Notifications are handled for their side effects only.
	if req.isNotification() {
		d.logger.Debug("Notification received", "method", req.Method)
		d.Handle(ctx, &req)
		return nil, false
	}

	return d.Handle(ctx, &req), true
}

// Handle runs one request and always returns a response carrying req.ID.
// A panic inside a handler is reported as an internal error.
func (d *Dispatcher) Handle(ctx context.Context, req *request) (resp *response) {
	d.logger.LogRequest(req.Method, string(req.ID))
	logger := d.logger.With("method", req.Method, "id", string(req.ID))
	if logger.IsDebug() && len(req.Params) > 0 {
		logger.DebugObject("params", string(req.Params))
	}

	defer func() {
		if r := recover(); r != nil {
			logger.Error("Handler panic", "panic", r, "stack", string(debug.Stack()))
			resp = newError(req.ID, codeInternalError, fmt.Sprintf("Internal error: %v", r))
		}
	}()

	result, err := d.dispatch(ctx, req)
	if err != nil {
		return errorResponse(logger, req, err)
	}
	return newResult(req.ID, result)
}

func (d *Dispatcher) dispatch(ctx context.Context, req *request) (any, error) {
	switch req.Method {
	case methodInitialize:
		return d.handleInitialize()
	case methodPing:
		return struct{}{}, nil
	case methodResourcesList:
		return d.resources.List(ctx), nil
	case methodResourcesRead:
		return d.handleResourcesRead(ctx, req.Params)
	case methodToolsList:
		return d.tools.List(), nil
	case methodToolsCall:
		return d.handleToolsCall(ctx, req.Params)
	default:
		return nil, &rpcError{Code: codeMethodNotFound, Message: "Method not found: " + req.Method}
	}
}

func errorResponse(logger *logging.AppLogger, req *request, err error) *response {
	var rpcErr *rpcError
	if errors.As(err, &rpcErr) {
		logger.Debug("Request rejected", "code", rpcErr.Code, "error", rpcErr.Message)
		return newError(req.ID, rpcErr.Code, rpcErr.Message)
	}

	logger.Error("Request failed", "error", err)
	return newError(req.ID, codeInternalError, "Internal error: "+err.Error())
}

func (d *Dispatcher) handleInitialize() (any, error) {
	return initializeResult{
		ProtocolVersion: protocolVersion,
		Capabilities:    defaultCapabilities(),
		ServerInfo:      d.info,
	}, nil
}

func (d *Dispatcher) handleResourcesRead(ctx context.Context, raw json.RawMessage) (any, error) {
	var params resourcesReadParams
	if err := decodeParams(raw, &params); err != nil {
		return nil, err
	}

	// A missing or non-string uri is reported by the provider as error content.
	uri, _ := params.URI.(string)
	return d.resources.Read(ctx, uri), nil
}

func (d *Dispatcher) handleToolsCall(ctx context.Context, raw json.RawMessage) (any, error) {
	var params toolsCallParams
	if err := decodeParams(raw, &params); err != nil {
		return nil, err
	}

	name, _ := params.Name.(string)
	if name == "" {
		return mcpgo.NewToolResultError("Error: Tool name is required"), nil
	}

	args := map[string]any{}
	if len(params.Arguments) > 0 && string(params.Arguments) != "null" {
		if err := json.Unmarshal(params.Arguments, &args); err != nil {
			return mcpgo.NewToolResultError("Error: Invalid arguments: arguments must be an object"), nil
		}
	}

	result, err := d.tools.Call(ctx, name, args)
	if err != nil {
		// Only faults reach here; they become internal errors.
		return nil, err
	}
	return result, nil
}

// decodeParams decodes the params object. Absent or null params decode as
// an empty object; anything other than an object is an invalid-params error.
func decodeParams(raw json.RawMessage, v any) error {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return &rpcError{Code: codeInvalidParams, Message: "Invalid params: params must be an object"}
	}
	return nil
}
