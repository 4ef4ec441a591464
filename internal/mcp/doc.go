// Package mcp implements a Model Context Protocol (MCP) server that gives AI
// assistants sandboxed access to one or more project directories.
//
// The server speaks JSON-RPC 2.0 over stdin/stdout, one JSON document per
// line. It exposes the project roots and their important files as resources
// and offers five file tools.
//
// # Implementation
//
// Transport, dispatch and error mapping are implemented here. Resource and
// tool payloads use the types of the mcp-go library
// (github.com/mark3labs/mcp-go) so that results serialize exactly like any
// other mcp-go based server. Tool input schemas are reflected from the
// argument structs with invopop/jsonschema.
//
// # Methods
//
//   - initialize: protocol version, capabilities and server info
//   - ping: empty result
//   - resources/list, resources/read: project roots and important files
//   - tools/list, tools/call: search_files, read_file, write_file,
//     list_directory and file_stats
//
// # Errors
//
// Failures a client can act on (denied paths, missing files, disallowed
// extensions) are reported inside a successful result: tool results carry
// isError and an "Error: " message, resource reads return a text/plain
// content item. Only protocol problems and internal faults become JSON-RPC
// error objects.
//
// # Security
//
// Security is handled through the sandbox, filemanager and fileops packages:
//   - Every path is resolved to its canonical form and must stay under a root
//   - Symlinks leading out of a root are refused
//   - Reads and writes are limited to allow-listed extensions
//   - Writes are atomic
//
// # Concurrency
//
// Each incoming line is handled on its own goroutine. Responses are written
// whole under a lock and may arrive in any order; clients correlate them by id.
//
// # Usage
//
//	fsserver serve --root /path/to/project
//
// # References
//
// - MCP Specification: https://modelcontextprotocol.io/specification
// - mcp-go Library: https://github.com/mark3labs/mcp-go
package mcp
