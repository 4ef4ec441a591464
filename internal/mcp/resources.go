package mcp

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"fsserver/internal/filemanager"
	"fsserver/internal/fserr"
	"fsserver/internal/logging"

	mcpgo "github.com/mark3labs/mcp-go/mcp"
)

const fileScheme = "file://"

// ResourceProvider exposes the roots and their important files as resources.
type ResourceProvider struct {
	fileManager *filemanager.FileManager
	logger      *logging.AppLogger
}

// NewResourceProvider creates a provider backed by fm.
func NewResourceProvider(fm *filemanager.FileManager, logger *logging.AppLogger) *ResourceProvider {
	return &ResourceProvider{fileManager: fm, logger: logger}
}

// List returns one directory resource per root followed by that root's
// important files. Files that disappear while listing are left out.
func (p *ResourceProvider) List(ctx context.Context) *mcpgo.ListResourcesResult {
	resources := make([]mcpgo.Resource, 0)

	for _, root := range p.fileManager.Sandbox().Paths() {
		if ctx.Err() != nil {
			break
		}

		resources = append(resources, mcpgo.NewResource(
			fileScheme+root,
			fmt.Sprintf("Project root (%s)", filepath.Base(root)),
			mcpgo.WithResourceDescription("Project root directory: "+root),
			mcpgo.WithMIMEType(filemanager.MimeDirectory),
		))

		files, err := p.fileManager.ImportantFiles(root)
		if err != nil {
			p.logger.Error("Cannot scan root for resources", "root", root, "error", err)
			continue
		}

		for _, path := range files {
			info, err := p.fileManager.Info(path)
			if err != nil {
				p.logger.Debug("Skipping resource", "path", path, "error", err)
				continue
			}

			name, err := filepath.Rel(root, path)
			if err != nil {
				name = path
			}

			resources = append(resources, mcpgo.NewResource(
				fileScheme+path,
				filepath.ToSlash(name),
				mcpgo.WithResourceDescription(p.fileManager.Describe(path, info.Size)),
				mcpgo.WithMIMEType(info.MimeType),
			))
		}
	}

	p.logger.Debug("Listed resources", "count", len(resources))
	return &mcpgo.ListResourcesResult{Resources: resources}
}

// Read returns the content of a file:// resource. Directories yield a JSON
// listing of their children. Every failure is reported as a text/plain
// content starting with "Error: ", never as an error.
func (p *ResourceProvider) Read(ctx context.Context, uri string) *mcpgo.ReadResourceResult {
	contents, err := p.read(uri)
	if err != nil {
		p.logger.Warn("Resource read failed", "uri", uri, "error", err)
		contents = &mcpgo.TextResourceContents{
			URI:      uri,
			MIMEType: filemanager.MimeTextPlain,
			Text:     "Error: " + err.Error(),
		}
	}

	return &mcpgo.ReadResourceResult{
		Contents: []mcpgo.ResourceContents{contents},
	}
}

func (p *ResourceProvider) read(uri string) (*mcpgo.TextResourceContents, error) {
	if strings.TrimSpace(uri) == "" {
		return nil, fserr.New(fserr.InvalidArgument, "URI is required")
	}

	path, ok := strings.CutPrefix(uri, fileScheme)
	if !ok {
		return nil, fserr.New(fserr.UnsupportedFormat, "Unsupported URI scheme")
	}

	info, err := p.fileManager.Info(path)
	if err != nil {
		return nil, err
	}

	if info.IsDirectory {
		var listing any
		items, err := p.fileManager.Children(info.Path)
		if err != nil {
			listing = []map[string]string{{"error": err.Error()}}
		} else {
			listing = items
		}

		text, err := marshalText(listing)
		if err != nil {
			return nil, err
		}
		return &mcpgo.TextResourceContents{URI: uri, MIMEType: filemanager.MimeJSON, Text: text}, nil
	}

	text, err := p.fileManager.ReadText(info.Path)
	if err != nil {
		return nil, err
	}
	return &mcpgo.TextResourceContents{URI: uri, MIMEType: filemanager.TextMimeType(info.Path), Text: text}, nil
}
