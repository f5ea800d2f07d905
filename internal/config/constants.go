package config

// Constants defining default values for application configuration
const (
	DefaultDBFileName = "bookmarks.db"
	DefaultAppDirName = "newsdeck"

	DefaultNewsAPIBaseURL = "https://newsapi.org/v2"
	DefaultCountry        = "us"

	DefaultServerPort = 8080
	DefaultServerHost = "" // Empty string means all interfaces

	DefaultUpstreamTimeoutSec = 10 // Connect and receive timeouts for upstream calls

	DefaultLogLevel = "info"
)
