package filemanager

import (
	"mime"
	"path/filepath"
	"strings"
)

const (
	MimeOctetStream = "application/octet-stream"
	MimeTextPlain   = "text/plain"
	MimeJSON        = "application/json"
	MimeDirectory   = "application/vnd.directory"
)

// sourceTypes covers the allow-listed formats the platform table may not know.
var sourceTypes = map[string]string{
	".txt":  "text/plain",
	".md":   "text/markdown",
	".py":   "text/x-python",
	".js":   "text/javascript",
	".ts":   "text/x-typescript",
	".json": "application/json",
	".yaml": "application/yaml",
	".yml":  "application/yaml",
	".html": "text/html",
	".css":  "text/css",
	".sql":  "application/sql",
	".sh":   "application/x-sh",
	".bash": "application/x-sh",
	".csv":  "text/csv",
	".xml":  "application/xml",
	".toml": "application/toml",
	".rst":  "text/x-rst",
	".go":   "text/x-go",
}

// guessMimeType returns the media type for name without parameters, or ""
// when the extension is unknown.
func guessMimeType(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	if ext == "" {
		return ""
	}
	if t, ok := sourceTypes[ext]; ok {
		return t
	}

	t := mime.TypeByExtension(ext)
	if t == "" {
		return ""
	}
	mediaType, _, err := mime.ParseMediaType(t)
	if err != nil {
		return ""
	}
	return mediaType
}

// MimeType returns the media type reported in FileInfo.
func MimeType(name string) string {
	if t := guessMimeType(name); t != "" {
		return t
	}
	return MimeOctetStream
}

// TextMimeType returns the media type reported when file content is read.
func TextMimeType(name string) string {
	if t := guessMimeType(name); t != "" {
		return t
	}
	return MimeTextPlain
}
