package filemanager

import (
	"bytes"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/adrg/frontmatter"
)

// maxFrontmatterFileSize bounds how much of a file is read for its description.
const maxFrontmatterFileSize = 1 << 20

// maxDescriptionLength truncates long frontmatter descriptions.
const maxDescriptionLength = 500

var markdownExtensions = []string{
	".md", ".mdown", ".mkdn", ".mkd", ".markdown",
}

// documentFrontmatter is the part of a markdown header used in descriptions.
type documentFrontmatter struct {
	Description string `yaml:"description"`
	Title       string `yaml:"title,omitempty"`
}

func isMarkdownFile(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return slices.Contains(markdownExtensions, ext)
}

// markdownDescription returns the frontmatter description of a markdown file,
// falling back to its title. It returns "" for other files, missing headers
// and anything that cannot be read or parsed.
func markdownDescription(path string) string {
	if !isMarkdownFile(path) {
		return ""
	}

	st, err := os.Stat(path)
	if err != nil || !st.Mode().IsRegular() || st.Size() > maxFrontmatterFileSize {
		return ""
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return ""
	}

	var matter documentFrontmatter
	if _, err := frontmatter.Parse(bytes.NewReader(content), &matter); err != nil {
		return ""
	}

	summary := strings.TrimSpace(matter.Description)
	if summary == "" {
		summary = strings.TrimSpace(matter.Title)
	}
	summary = strings.Join(strings.Fields(summary), " ")

	if runes := []rune(summary); len(runes) > maxDescriptionLength {
		summary = string(runes[:maxDescriptionLength])
	}
	return summary
}
