package mcp

import (
	"context"
	"fmt"
	"strings"

	"fsserver/internal/filemanager"
)

// searchOutput is the JSON document returned by search_files.
type searchOutput struct {
	Pattern      string                     `json:"pattern"`
	ResultsCount int                        `json:"results_count"`
	Results      []filemanager.SearchResult `json:"results"`
}

func (e *ToolExecutor) searchFiles(ctx context.Context, args SearchFilesArgs) (string, error) {
	results, err := e.fileManager.Search(args.Pattern, args.SearchInContent, args.MaxResults)
	if err != nil {
		return "", err
	}

	return marshalText(searchOutput{
		Pattern:      args.Pattern,
		ResultsCount: len(results),
		Results:      results,
	})
}

func (e *ToolExecutor) readFile(ctx context.Context, args ReadFileArgs) (string, error) {
	content, err := e.fileManager.ReadText(args.Path)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("File: %s\n%s\n%s", args.Path, strings.Repeat("=", 50), content), nil
}

func (e *ToolExecutor) writeFile(ctx context.Context, args WriteFileArgs) (string, error) {
	if _, err := e.fileManager.WriteText(args.Path, args.Content); err != nil {
		return "", err
	}

	return "File saved successfully: " + args.Path, nil
}

func (e *ToolExecutor) listDirectory(ctx context.Context, args ListDirectoryArgs) (string, error) {
	listing, err := e.fileManager.ListDirectory(args.Path)
	if err != nil {
		return "", err
	}

	return marshalText(listing)
}

func (e *ToolExecutor) fileStats(ctx context.Context, args FileStatsArgs) (string, error) {
	stats, err := e.fileManager.Stats(args.Path)
	if err != nil {
		return "", err
	}

	return marshalText(stats)
}
