package rosconfig

import "time"

// RenderOptions controls target construction and script rendering.
type RenderOptions struct {
	Strict           bool          // Fail on any warnings if true
	GenerationTag    string        // Optional comment written at the top of the script
	Timeout          time.Duration // Maximum time allowed for rendering
	IncludeAuxiliary bool          // Whether to include auxiliary files in output
	DeviceVersion    string        // RouterOS version the target is built for, empty for latest
}

// ParseOptions controls reading exported scripts.
type ParseOptions struct {
	AllowUnknown   bool              // Keep statements other than add/set instead of failing
	Timeout        time.Duration     // Maximum time allowed for parsing
	SourceMetadata map[string]string // Metadata about the source (version, origin, etc.)
	BestEffort     bool              // Continue parsing on non-fatal errors
}
