package filemanager

// FileInfo describes one file or directory. It is computed per query and never cached.
type FileInfo struct {
	Name        string `json:"name"`
	Path        string `json:"path"`
	Size        int64  `json:"size"`
	Modified    string `json:"modified"`
	IsDirectory bool   `json:"is_directory"`
	MimeType    string `json:"mime_type"`

	// Error is set instead of the stat fields when the entry could not be read.
	Error string `json:"error,omitempty"`
}

// SearchResult is one hit of a file search.
type SearchResult struct {
	Path      string   `json:"path"`
	MatchType string   `json:"match_type"`
	Info      FileInfo `json:"info"`
}

const (
	MatchFilename = "filename"
	MatchContent  = "content"
)

// SizedFile is an entry of Stats.LargestFiles.
type SizedFile struct {
	Path string `json:"path"`
	Size int64  `json:"size"`
}

// Stats aggregates a directory subtree.
type Stats struct {
	TotalFiles       int            `json:"total_files"`
	TotalDirectories int            `json:"total_directories"`
	TotalSize        int64          `json:"total_size"`
	FileTypes        map[string]int `json:"file_types"`
	LargestFiles     []SizedFile    `json:"largest_files"`
}

// DirectoryListing is the list_directory result.
type DirectoryListing struct {
	Directory string     `json:"directory"`
	Items     []FileInfo `json:"items"`
}
