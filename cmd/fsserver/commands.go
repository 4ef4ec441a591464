package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"slices"
	"strings"
	"syscall"

	"fsserver/internal/config"
	"fsserver/internal/logging"
	"fsserver/internal/mcp"

	"github.com/charmbracelet/lipgloss"
	mcpgo "github.com/mark3labs/mcp-go/mcp"
	"github.com/spf13/cobra"
)

// globalFlags are shared by every subcommand.
type globalFlags struct {
	configPath string
	root       string
}

func newRootCommand(logger *logging.AppLogger) *cobra.Command {
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:           config.APP_NAME,
		Short:         "Sandboxed filesystem server for the Model Context Protocol",
		Long:          longRoot,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&flags.configPath, "config", "", "config file (default is $XDG_CONFIG_HOME/"+config.APP_NAME+"/config.yaml)")
	root.PersistentFlags().StringVar(&flags.root, "root", "", "project root directory (overrides config and "+config.ProjectRootEnv+")")

	root.AddCommand(
		newServeCommand(flags, logger),
		newToolsCommand(flags, logger),
		newCallCommand(flags, logger),
		newInitCommand(flags),
		newVersionCommand(),
	)
	return root
}

// loadConfig resolves the configuration and applies command-line overrides.
func loadConfig(flags *globalFlags) (*config.Config, error) {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if flags.root != "" {
		cfg.ProjectRoot = flags.root
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("invalid --root: %w", err)
		}
	}
	return cfg, nil
}

func newServeCommand(flags *globalFlags, logger *logging.AppLogger) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve MCP requests on stdin/stdout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			server := mcp.NewServer(cfg, logger)
			defer server.Stop()

			return server.Serve(ctx, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}

var (
	toolNameStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212")).
			Bold(true)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")).
			Bold(true)

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	badgeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("214")).
			Padding(0, 1)
)

func newToolsCommand(flags *globalFlags, logger *logging.AppLogger) *cobra.Command {
	return &cobra.Command{
		Use:   "tools",
		Short: "List the available tools and their arguments",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}

			tools, err := mcp.NewServer(cfg, logger).Tools()
			if err != nil {
				return err
			}

			return renderTools(cmd.OutOrStdout(), tools)
		},
	}
}

// schemaSummary is the subset of a tool input schema shown by renderTools.
type schemaSummary struct {
	Properties map[string]struct {
		Type        string `json:"type"`
		Description string `json:"description"`
	} `json:"properties"`
	Required []string `json:"required"`
}

func renderTools(w io.Writer, tools []mcpgo.Tool) error {
	var sb strings.Builder
	bullet := "│ "

	for i, tool := range tools {
		if i > 0 {
			sb.WriteString("\n")
		}

		sb.WriteString(toolNameStyle.Render(tool.Name))
		if tool.Annotations.DestructiveHint != nil && *tool.Annotations.DestructiveHint {
			sb.WriteString(" " + badgeStyle.Render("writes"))
		}
		sb.WriteString("\n")
		sb.WriteString(bullet + valueStyle.Render(tool.Description) + "\n")

		var schema schemaSummary
		if err := json.Unmarshal(tool.RawInputSchema, &schema); err != nil {
			return fmt.Errorf("invalid schema for %s: %w", tool.Name, err)
		}

		// Schema properties come back unordered; list required ones first.
		names := append([]string{}, schema.Required...)
		for name := range schema.Properties {
			if !slices.Contains(schema.Required, name) {
				names = append(names, name)
			}
		}
		slices.Sort(names[len(schema.Required):])

		for _, name := range names {
			prop := schema.Properties[name]
			label := name
			if slices.Contains(schema.Required, name) {
				label += "*"
			}
			sb.WriteString(bullet + labelStyle.Render(label+": ") + valueStyle.Render(fmt.Sprintf("%s  %s", prop.Type, prop.Description)) + "\n")
		}
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

func newCallCommand(flags *globalFlags, logger *logging.AppLogger) *cobra.Command {
	var rawArgs string

	cmd := &cobra.Command{
		Use:   "call <tool>",
		Short: "Run one tool and print its output",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}

			toolArgs := map[string]any{}
			if rawArgs != "" {
				if err := json.Unmarshal([]byte(rawArgs), &toolArgs); err != nil {
					return fmt.Errorf("--args must be a JSON object: %w", err)
				}
			}

			result, err := mcp.NewServer(cfg, logger).CallTool(cmd.Context(), args[0], toolArgs)
			if err != nil {
				return err
			}

			for _, content := range result.Content {
				if text, ok := content.(mcpgo.TextContent); ok {
					fmt.Fprintln(cmd.OutOrStdout(), text.Text)
				}
			}

			if result.IsError {
				return errors.New("tool reported an error")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&rawArgs, "args", "", "tool arguments as a JSON object")
	return cmd
}

func newInitCommand(flags *globalFlags) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := flags.configPath
			if path == "" {
				path = config.ConfigPath()
			}

			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("config file already exists at %s (use --force to overwrite)", path)
			}

			cfg := config.DefaultConfig()
			if flags.root != "" {
				cfg.ProjectRoot = flags.root
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid config: %w", err)
			}

			if err := cfg.SaveTo(path); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing config file")
	return cmd
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the server version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", config.DefaultServerName, config.DefaultServerVersion)
		},
	}
}

const longRoot = `
fsserver exposes one or more project directories to AI assistants over the
Model Context Protocol. Requests arrive as JSON-RPC 2.0 on stdin, one per line,
and responses are written to stdout.

Every path is resolved to its canonical form and must stay inside a configured
root. Only allow-listed text formats can be read or written.
`
