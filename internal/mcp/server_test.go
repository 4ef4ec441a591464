package mcp

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"fsserver/internal/config"
	"fsserver/internal/logging"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestNewServer(t *testing.T) {
	cfg := config.DefaultConfig()
	logger, _ := logging.NewTestLogger()

	server := NewServer(&cfg, logger)

	require.NotNil(t, server)
	assert.Same(t, &cfg, server.config)
	assert.Same(t, logger, server.logger)
	assert.Nil(t, server.fileManager, "components should not be initialized before use")
	assert.Nil(t, server.dispatcher)
}

func TestInitializeComponents(t *testing.T) {
	server, root := newTestServer(t, map[string]string{"README.md": "# hi"})

	require.NotNil(t, server.fileManager)
	require.NotNil(t, server.resources)
	require.NotNil(t, server.tools)
	require.NotNil(t, server.dispatcher)
	assert.Equal(t, []string{root}, server.fileManager.Sandbox().Paths())

	dispatcher := server.dispatcher
	require.NoError(t, server.InitializeComponents())
	assert.Same(t, dispatcher, server.dispatcher, "second call must be a no-op")
}

func TestInitializeComponentsErrors(t *testing.T) {
	logger, _ := logging.NewTestLogger()

	t.Run("missing config", func(t *testing.T) {
		err := NewServer(nil, logger).InitializeComponents()
		assert.Error(t, err)
	})

	t.Run("missing root", func(t *testing.T) {
		cfg := config.DefaultConfig()
		cfg.ProjectRoot = filepath.Join(t.TempDir(), "does-not-exist")

		err := NewServer(&cfg, logger).InitializeComponents()
		assert.Error(t, err)
	})

	t.Run("empty allow-list", func(t *testing.T) {
		cfg := config.DefaultConfig()
		cfg.ProjectRoot = t.TempDir()
		cfg.AllowedExtensions = nil

		err := NewServer(&cfg, logger).InitializeComponents()
		assert.Error(t, err)
	})
}

func TestServerExtraRoots(t *testing.T) {
	primary := createTestRoot(t, map[string]string{"a.py": "a"})
	extra := createTestRoot(t, map[string]string{"b.py": "b"})

	cfg := config.DefaultConfig()
	cfg.ProjectRoot = primary
	cfg.ExtraRoots = []string{extra}

	logger, _ := logging.NewTestLogger()
	server := NewServer(&cfg, logger)

	result, err := server.CallTool(context.Background(), ToolReadFile, map[string]any{"path": filepath.Join(extra, "b.py")})
	require.NoError(t, err)
	assert.False(t, result.IsError)

	result, err = server.CallTool(context.Background(), ToolSearchFiles, map[string]any{"pattern": ".py"})
	require.NoError(t, err)
	require.False(t, result.IsError)

	text := resultText(t, result)
	assert.Less(t, strings.Index(text, filepath.Join(primary, "a.py")), strings.Index(text, filepath.Join(extra, "b.py")),
		"results follow root order")
}

func TestServerTools(t *testing.T) {
	server, _ := newTestServer(t, nil)

	tools, err := server.Tools()
	require.NoError(t, err)

	var names []string
	for _, tool := range tools {
		names = append(names, tool.Name)
	}
	assert.Equal(t, []string{ToolSearchFiles, ToolReadFile, ToolWriteFile, ToolListDirectory, ToolFileStats}, names)
}

func TestServerServe(t *testing.T) {
	defer goleak.VerifyNone(t)

	root := createTestRoot(t, map[string]string{"README.md": "# Project"})
	cfg := config.DefaultConfig()
	cfg.ProjectRoot = root
	cfg.ServerName = "custom"
	cfg.ServerVersion = "9.9.9"

	logger, _ := logging.NewTestLogger()
	server := NewServer(&cfg, logger)

	input := rpcRequest(t, 1, methodInitialize, map[string]any{}) + "\n" +
		rpcRequest(t, 2, methodResourcesList, nil) + "\n"

	var out bytes.Buffer
	require.NoError(t, server.Serve(context.Background(), strings.NewReader(input), &out))
	require.NoError(t, server.Stop())

	responses := decodeLines(t, out.Bytes())
	require.Len(t, responses, 2)

	for _, resp := range responses {
		result := resp["result"].(map[string]any)
		switch resp["id"] {
		case float64(1):
			assert.Equal(t, map[string]any{"name": "custom", "version": "9.9.9"}, result["serverInfo"])
		case float64(2):
			resources := result["resources"].([]any)
			require.Len(t, resources, 2)
			assert.Equal(t, "file://"+root, resources[0].(map[string]any)["uri"])
			assert.Equal(t, "file://"+filepath.Join(root, "README.md"), resources[1].(map[string]any)["uri"])
		default:
			t.Fatalf("unexpected id %v", resp["id"])
		}
	}
}
