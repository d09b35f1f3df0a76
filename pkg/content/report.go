package content

import "time"

// Report is the result of one content scan.
type Report struct {
	Root         string `json:"root"`
	FilesScanned int    `json:"files_scanned"`
	FilesFailed  int    `json:"files_failed"`

	// Colors and Fonts list used tokens in theme order.
	Colors []TokenUsage `json:"colors"`
	Fonts  []TokenUsage `json:"fonts"`

	UnusedColors []string `json:"unused_colors"`
	UnusedFonts  []string `json:"unused_fonts"`

	// Unknown lists color classes that name a configured palette but a
	// shade the theme does not define.
	Unknown []TokenUsage `json:"unknown,omitempty"`

	Errors    []FileError   `json:"errors,omitempty"`
	CacheHits int           `json:"cache_hits"`
	Duration  time.Duration `json:"duration_ns"`
}

// TokenUsage counts occurrences of one token across content files.
type TokenUsage struct {
	Token     string   `json:"token"`
	ClassName string   `json:"class_name"`
	Count     int      `json:"count"`
	Files     []string `json:"files"`
}
