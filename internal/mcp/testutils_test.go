package mcp

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"fsserver/internal/config"
	"fsserver/internal/logging"

	"github.com/stretchr/testify/require"
)

// createTestRoot builds a project directory from a map of relative paths to
// contents. Keys ending in "/" are created as empty directories.
func createTestRoot(t *testing.T, files map[string]string) string {
	t.Helper()

	root, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)

	for rel, content := range files {
		full := filepath.Join(root, rel)
		if strings.HasSuffix(rel, "/") {
			require.NoError(t, os.MkdirAll(full, 0755))
			continue
		}
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0644))
	}

	return root
}

// newTestServer returns an initialized server rooted at a fresh directory.
func newTestServer(t *testing.T, files map[string]string) (*Server, string) {
	t.Helper()

	root := createTestRoot(t, files)
	cfg := config.DefaultConfig()
	cfg.ProjectRoot = root

	logger, _ := logging.NewTestLogger()
	server := NewServer(&cfg, logger)
	require.NoError(t, server.InitializeComponents())

	return server, root
}

// roundTrip sends one raw message through the dispatcher and decodes the
// response as it would appear on the wire.
func roundTrip(t *testing.T, d *Dispatcher, message string) map[string]any {
	t.Helper()

	resp, ok := d.HandleMessage(context.Background(), []byte(message))
	require.True(t, ok, "expected a response for %s", message)

	data, err := encodeResponse(resp)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	return decoded
}

// rpcRequest builds a JSON-RPC request line.
func rpcRequest(t *testing.T, id any, method string, params any) string {
	t.Helper()

	msg := map[string]any{"jsonrpc": "2.0", "id": id, "method": method}
	if params != nil {
		msg["params"] = params
	}
	data, err := json.Marshal(msg)
	require.NoError(t, err)
	return string(data)
}

// callTool runs tools/call and returns the text of the single content item
// and the isError flag.
func callTool(t *testing.T, d *Dispatcher, name string, args map[string]any) (string, bool) {
	t.Helper()

	resp := roundTrip(t, d, rpcRequest(t, 1, methodToolsCall, map[string]any{"name": name, "arguments": args}))
	require.NotContains(t, resp, "error", "tools/call must not fail at the protocol level")

	result := resp["result"].(map[string]any)
	content := result["content"].([]any)
	require.Len(t, content, 1)

	item := content[0].(map[string]any)
	require.Equal(t, "text", item["type"])

	isError, _ := result["isError"].(bool)
	return item["text"].(string), isError
}

func errorCode(t *testing.T, resp map[string]any) int {
	t.Helper()

	errObj, ok := resp["error"].(map[string]any)
	require.True(t, ok, "expected an error response, got %v", resp)
	return int(errObj["code"].(float64))
}
