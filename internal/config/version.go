package config

// Application info
const (
	AppName    = "cbmflow"
	AppVersion = "1.0.0"
)

// Build metadata, set with -ldflags "-X cbmflow/internal/config.Commit=...".
var (
	Commit    = "unknown"
	BuildTime = "unknown"
)
