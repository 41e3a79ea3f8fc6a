// Package ports defines the interfaces between the review engine and its host.
package ports

// LogLevel represents the severity level of a log message.
type LogLevel int

const (
	// LevelDebug is used for component-internal details such as state transitions.
	LevelDebug LogLevel = iota
	// LevelInfo is used for user-visible progress.
	LevelInfo
	// LevelWarn is used for recoverable problems such as a missed seek signal.
	LevelWarn
	// LevelError is used for failures that end an operation.
	LevelError
	// LevelQuiet suppresses all log output.
	LevelQuiet
)

func (l LogLevel) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	case LevelQuiet:
		return "quiet"
	default:
		return "unknown"
	}
}

// ParseLogLevel parses a level name, defaulting to LevelInfo.
func ParseLogLevel(s string) LogLevel {
	switch s {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	case "quiet", "silent":
		return LevelQuiet
	default:
		return LevelInfo
	}
}

// Logger is a leveled logger whose messages are translatable keys.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})

	// WithComponent returns a Logger that prefixes messages with the component name.
	WithComponent(component string) Logger
}
