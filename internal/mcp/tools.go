package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"fsserver/internal/filemanager"
	"fsserver/internal/fserr"
	"fsserver/internal/logging"
	"fsserver/internal/validation"

	"github.com/invopop/jsonschema"
	mcpgo "github.com/mark3labs/mcp-go/mcp"
)

// Tool names.
const (
	ToolSearchFiles   = "search_files"
	ToolReadFile      = "read_file"
	ToolWriteFile     = "write_file"
	ToolListDirectory = "list_directory"
	ToolFileStats     = "file_stats"
)

const defaultMaxResults = 20

// SearchFilesArgs are the arguments of search_files.
type SearchFilesArgs struct {
	Pattern         string `json:"pattern" jsonschema:"required,description=Pattern to search for"`
	SearchInContent bool   `json:"search_in_content,omitempty" jsonschema:"description=Whether to also search file contents,default=false"`
	MaxResults      int    `json:"max_results,omitempty" jsonschema:"description=Maximum number of results,default=20,minimum=1"`
}

// ReadFileArgs are the arguments of read_file.
type ReadFileArgs struct {
	Path string `json:"path" jsonschema:"required,description=Path of the file to read"`
}

// WriteFileArgs are the arguments of write_file.
type WriteFileArgs struct {
	Path    string `json:"path" jsonschema:"required,description=Path of the file to write"`
	Content string `json:"content" jsonschema:"required,description=File content"`
}

// ListDirectoryArgs are the arguments of list_directory.
type ListDirectoryArgs struct {
	Path string `json:"path,omitempty" jsonschema:"description=Directory to list (defaults to the project root)"`
}

// FileStatsArgs are the arguments of file_stats.
type FileStatsArgs struct {
	Path string `json:"path,omitempty" jsonschema:"description=Directory to summarize (defaults to the project root)"`
}

// toolFunc runs a tool on raw arguments and returns its text output.
type toolFunc func(ctx context.Context, args map[string]any) (string, error)

type toolEntry struct {
	tool   mcpgo.Tool
	schema *jsonschema.Schema
	run    toolFunc
}

// ToolExecutor holds the tool catalogue and runs tool calls.
type ToolExecutor struct {
	fileManager *filemanager.FileManager
	logger      *logging.AppLogger
	tools       []*toolEntry
	byName      map[string]*toolEntry
}

// NewToolExecutor registers the five file tools.
func NewToolExecutor(fm *filemanager.FileManager, logger *logging.AppLogger) (*ToolExecutor, error) {
	e := &ToolExecutor{
		fileManager: fm,
		logger:      logger,
		byName:      make(map[string]*toolEntry),
	}

	root := fm.Sandbox().Primary()

	registrations := []error{
		register(e, ToolSearchFiles, "Search files by name or content", true,
			func() SearchFilesArgs { return SearchFilesArgs{MaxResults: defaultMaxResults} },
			e.searchFiles),
		register(e, ToolReadFile, "Read the content of a file", true,
			func() ReadFileArgs { return ReadFileArgs{} },
			e.readFile),
		register(e, ToolWriteFile, "Write content to a file", false,
			func() WriteFileArgs { return WriteFileArgs{} },
			e.writeFile),
		register(e, ToolListDirectory, "List the contents of a directory", true,
			func() ListDirectoryArgs { return ListDirectoryArgs{Path: root} },
			e.listDirectory),
		register(e, ToolFileStats, "Report file system statistics", true,
			func() FileStatsArgs { return FileStatsArgs{Path: root} },
			e.fileStats),
	}
	for _, err := range registrations {
		if err != nil {
			return nil, err
		}
	}

	return e, nil
}

// register adds a tool whose arguments decode into T. The input schema is
// reflected from T and checked before handler runs.
func register[T any](e *ToolExecutor, name, description string, readOnly bool, defaults func() T, handler func(context.Context, T) (string, error)) error {
	schema := validation.SchemaFor[T]()
	raw, err := validation.MarshalSchema(schema)
	if err != nil {
		return fmt.Errorf("failed to build schema for %s: %w", name, err)
	}

	tool := mcpgo.NewToolWithRawSchema(name, description, raw)
	destructive := !readOnly
	tool.Annotations.ReadOnlyHint = &readOnly
	tool.Annotations.DestructiveHint = &destructive

	entry := &toolEntry{
		tool:   tool,
		schema: schema,
		run: func(ctx context.Context, args map[string]any) (string, error) {
			typed, err := validation.Decode(schema, args, defaults())
			if err != nil {
				return "", err
			}
			return handler(ctx, typed)
		},
	}

	e.tools = append(e.tools, entry)
	e.byName[name] = entry
	return nil
}

// Tools returns the tool descriptors in registration order.
func (e *ToolExecutor) Tools() []mcpgo.Tool {
	out := make([]mcpgo.Tool, len(e.tools))
	for i, entry := range e.tools {
		out[i] = entry.tool
	}
	return out
}

// List returns the tools/list result.
func (e *ToolExecutor) List() *mcpgo.ListToolsResult {
	return &mcpgo.ListToolsResult{Tools: e.Tools()}
}

// Call runs the named tool. Expected failures, unknown tools included, come
// back as a result flagged isError; only a Fault is returned as an error.
func (e *ToolExecutor) Call(ctx context.Context, name string, args map[string]any) (*mcpgo.CallToolResult, error) {
	entry, ok := e.byName[name]
	if !ok {
		e.logger.Warn("Unknown tool requested", "tool", name)
		return mcpgo.NewToolResultError("Unknown tool: " + name), nil
	}

	start := time.Now()
	text, err := entry.run(ctx, args)
	if err != nil {
		if fserr.IsFault(err) {
			e.logger.Error("Tool fault", "tool", name, "error", err)
			return nil, err
		}
		if fserr.IsKind(err, fserr.PermissionDenied) {
			e.logger.Warn("Tool call denied", "tool", name, "error", err)
		} else {
			e.logger.Info("Tool call failed", "tool", name, "kind", fserr.KindOf(err), "error", err)
		}
		e.logger.LogToolCall(name, true, start)
		return mcpgo.NewToolResultError("Error: " + err.Error()), nil
	}

	e.logger.LogToolCall(name, false, start)
	return mcpgo.NewToolResultText(text), nil
}

// marshalText renders v as indented JSON without HTML escaping.
func marshalText(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return "", fserr.NewFault(err, "cannot encode result")
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}
