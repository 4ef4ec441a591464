package mcp

import (
	"encoding/json"

	mcpgo "github.com/mark3labs/mcp-go/mcp"
)

// protocolVersion is the MCP protocol version advertised by initialize. It
// is returned regardless of the version the client asks for.
const protocolVersion = "2024-11-05"

const jsonrpcVersion = mcpgo.JSONRPC_VERSION

// JSON-RPC 2.0 standard error codes.
const (
	codeParseError     = mcpgo.PARSE_ERROR
	codeInvalidRequest = mcpgo.INVALID_REQUEST
	codeMethodNotFound = mcpgo.METHOD_NOT_FOUND
	codeInvalidParams  = mcpgo.INVALID_PARAMS
	codeInternalError  = mcpgo.INTERNAL_ERROR
)

// Method names.
const (
	methodInitialize    = "initialize"
	methodPing          = "ping"
	methodResourcesList = "resources/list"
	methodResourcesRead = "resources/read"
	methodToolsList     = "tools/list"
	methodToolsCall     = "tools/call"
)

// request is a JSON-RPC 2.0 request or notification. The id is kept as raw
// bytes so it is echoed exactly as received.
type request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// isNotification returns true if this request has no ID, indicating
// it is a JSON-RPC 2.0 notification that expects no response.
func (r *request) isNotification() bool {
	return len(r.ID) == 0
}

// response is a JSON-RPC 2.0 response. Exactly one of Result or Error is set.
type response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  any             `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
}

// rpcError is a JSON-RPC 2.0 error object.
type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *rpcError) Error() string {
	return e.Message
}

var nullID = json.RawMessage("null")

func newResult(id json.RawMessage, result any) *response {
	return &response{JSONRPC: jsonrpcVersion, ID: id, Result: result}
}

func newError(id json.RawMessage, code int, message string) *response {
	if len(id) == 0 {
		id = nullID
	}
	return &response{JSONRPC: jsonrpcVersion, ID: id, Error: &rpcError{Code: code, Message: message}}
}

// --- MCP protocol types ---

// Capabilities is the fixed capability set advertised by initialize.
type Capabilities struct {
	Resources resourceCapability `json:"resources"`
	Tools     struct{}           `json:"tools"`
	Prompts   struct{}           `json:"prompts"`
	Roots     rootsCapability    `json:"roots"`
}

type resourceCapability struct {
	Subscribe   bool `json:"subscribe"`
	ListChanged bool `json:"listChanged"`
}

type rootsCapability struct {
	ListChanged bool `json:"listChanged"`
}

// defaultCapabilities returns the capability set; callers get their own copy.
func defaultCapabilities() Capabilities {
	return Capabilities{
		Resources: resourceCapability{Subscribe: true, ListChanged: true},
		Roots:     rootsCapability{ListChanged: true},
	}
}

// serverInfo identifies the MCP server.
type serverInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// initializeResult is the server's initialize response.
type initializeResult struct {
	ProtocolVersion string       `json:"protocolVersion"`
	Capabilities    Capabilities `json:"capabilities"`
	ServerInfo      serverInfo   `json:"serverInfo"`
}

// resourcesReadParams is the client's resources/read request parameters.
type resourcesReadParams struct {
	URI any `json:"uri"`
}

// toolsCallParams is the client's tools/call request parameters.
type toolsCallParams struct {
	Name      any             `json:"name"`
	Arguments json.RawMessage `json:"arguments,omitempty"`
}
