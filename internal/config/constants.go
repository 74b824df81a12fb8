package config

const (
	// MaxPort is the largest valid TCP port.
	MaxPort = 65535

	// LogLevelDebug enables debug logging.
	LogLevelDebug = "debug"
	// LogLevelInfo enables info logging.
	LogLevelInfo = "info"
	// LogLevelWarn enables warning logging.
	LogLevelWarn = "warn"
	// LogLevelError enables error logging.
	LogLevelError = "error"
	// LogLevelFatal enables fatal logging.
	LogLevelFatal = "fatal"

	// LogFormatJSON selects the JSON log format.
	LogFormatJSON = "json"
	// LogFormatText selects the text log format.
	LogFormatText = "text"

	// DefaultDBPort is the MySQL port RDS instances listen on.
	DefaultDBPort = 3306

	// DefaultTokenExpirySeconds is the token validity window. 900 seconds is
	// also the maximum RDS accepts.
	DefaultTokenExpirySeconds = 900
	// MaxTokenExpirySeconds is the server-side maximum validity window.
	MaxTokenExpirySeconds = 900

	// DefaultHTTPHost is the default sidecar bind host. The sidecar vends
	// bearer tokens, so it binds to loopback unless told otherwise.
	DefaultHTTPHost = "127.0.0.1"
	// DefaultHTTPPort is the default sidecar port.
	DefaultHTTPPort = 9010

	// DefaultConnectTimeoutSeconds bounds the single blocking connection
	// attempt.
	DefaultConnectTimeoutSeconds = 10

	// DefaultLogLevel is the default log level.
	DefaultLogLevel = LogLevelInfo
	// DefaultLogFormat is the default log format.
	DefaultLogFormat = LogFormatText
)

// Validator is implemented by every config section.
type Validator interface {
	Validate() error
}

var validLogLevels = map[string]bool{
	LogLevelDebug: true,
	LogLevelInfo:  true,
	LogLevelWarn:  true,
	LogLevelError: true,
	LogLevelFatal: true,
}

var validLogFormats = map[string]bool{
	LogFormatJSON: true,
	LogFormatText: true,
}
