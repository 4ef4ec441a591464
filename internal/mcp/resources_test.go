package mcp

import (
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	mcpgo "github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readText(t *testing.T, result *mcpgo.ReadResourceResult) *mcpgo.TextResourceContents {
	t.Helper()

	require.Len(t, result.Contents, 1)
	text, ok := result.Contents[0].(*mcpgo.TextResourceContents)
	require.True(t, ok, "expected text contents, got %T", result.Contents[0])
	return text
}

func TestResourcesList(t *testing.T) {
	server, root := newTestServer(t, map[string]string{
		"README.md":        "---\ndescription: Project overview\n---\n# Readme",
		"src/app.py":       "print()",
		"image.png":        "binary",
		".venv/lib.py":     "hidden",
		"docs/guide.md":    "# Guide",
		"package.json":     "{}",
		"deep/nested/x.go": "package x",
	})

	result := server.resources.List(context.Background())

	require.NotEmpty(t, result.Resources)
	rootResource := result.Resources[0]
	assert.Equal(t, "file://"+root, rootResource.URI)
	assert.Equal(t, "Project root ("+filepath.Base(root)+")", rootResource.Name)
	assert.Equal(t, "application/vnd.directory", rootResource.MIMEType)
	assert.Equal(t, "Project root directory: "+root, rootResource.Description)

	names := map[string]mcpgo.Resource{}
	var order []string
	for _, r := range result.Resources[1:] {
		names[r.Name] = r
		order = append(order, r.Name)
	}

	assert.Equal(t, []string{"README.md", "package.json"}, order[:2], "priority files come first")
	assert.Contains(t, names, "src/app.py")
	assert.Contains(t, names, "docs/guide.md")
	assert.Contains(t, names, "deep/nested/x.go")
	assert.NotContains(t, names, "image.png")
	assert.NotContains(t, names, ".venv/lib.py")

	readme := names["README.md"]
	assert.Equal(t, "file://"+filepath.Join(root, "README.md"), readme.URI)
	assert.True(t, strings.HasPrefix(readme.Description, "Project overview - File size: "), readme.Description)
	assert.Equal(t, "File size: 7 bytes", names["src/app.py"].Description)
}

func TestResourcesRead(t *testing.T) {
	server, root := newTestServer(t, map[string]string{
		"a.py":          "x = 1\n",
		"data.json":     `{"k": 1}`,
		"bad.txt":       "ok\xffok",
		"blob.bin":      "binary",
		"sub/b.md":      "# b",
		"sub/.git/HEAD": "ref",
	})
	ctx := context.Background()

	t.Run("file", func(t *testing.T) {
		uri := "file://" + filepath.Join(root, "a.py")
		content := readText(t, server.resources.Read(ctx, uri))

		assert.Equal(t, uri, content.URI)
		assert.Equal(t, "x = 1\n", content.Text)
		assert.Equal(t, "text/x-python", content.MIMEType)
	})

	t.Run("json file", func(t *testing.T) {
		content := readText(t, server.resources.Read(ctx, "file://"+filepath.Join(root, "data.json")))
		assert.Equal(t, "application/json", content.MIMEType)
	})

	t.Run("invalid bytes are replaced", func(t *testing.T) {
		content := readText(t, server.resources.Read(ctx, "file://"+filepath.Join(root, "bad.txt")))
		assert.Equal(t, "ok\uFFFDok", content.Text)
	})

	t.Run("directory lists children", func(t *testing.T) {
		content := readText(t, server.resources.Read(ctx, "file://"+filepath.Join(root, "sub")))
		assert.Equal(t, "application/json", content.MIMEType)

		var items []struct {
			Name string `json:"name"`
		}
		require.NoError(t, json.Unmarshal([]byte(content.Text), &items))
		require.Len(t, items, 1)
		assert.Equal(t, "b.md", items[0].Name)
	})

	errorCases := []struct {
		name string
		uri  string
		want string
	}{
		{"disallowed extension", "file://" + filepath.Join(root, "blob.bin"), "Error: File type not allowed"},
		{"outside root", "file://" + filepath.Dir(root), "Error: Access denied"},
		{"other scheme", "https://example.com", "Error: Unsupported URI scheme"},
		{"missing file", "file://" + filepath.Join(root, "missing.py"), "Error: "},
	}

	for _, tt := range errorCases {
		t.Run(tt.name, func(t *testing.T) {
			content := readText(t, server.resources.Read(ctx, tt.uri))
			assert.Equal(t, "text/plain", content.MIMEType)
			assert.True(t, strings.HasPrefix(content.Text, tt.want), content.Text)
		})
	}
}
