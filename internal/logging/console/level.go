package console

import "strings"

// Level orders entry severities.
type Level uint8

const (
	LevelTrace Level = iota
	LevelDebug
	LevelInfo
	LevelWarn
	LevelError
	LevelFatal
)

var levelNames = [...]string{"TRACE", "DEBUG", "INFO", "WARN", "ERROR", "FATAL"}

func (l Level) String() string {
	if int(l) < len(levelNames) {
		return levelNames[l]
	}
	return "INFO"
}

// ParseLevel maps a configured level name onto a Level. An empty name is INFO;
// unknown names report false.
func ParseLevel(value string) (Level, bool) {
	name := strings.ToUpper(strings.TrimSpace(value))
	switch name {
	case "":
		return LevelInfo, true
	case "WARNING":
		return LevelWarn, true
	}
	for i, candidate := range levelNames {
		if candidate == name {
			return Level(i), true
		}
	}
	return LevelInfo, false
}
