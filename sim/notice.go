package sim

import (
	"go.uber.org/zap"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

type Level int

const (
	LevelInfo Level = iota
	LevelSuccess
	LevelWarning
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelSuccess:
		return "success"
	case LevelWarning:
		return "warning"
	case LevelError:
		return "error"
	}
	return "info"
}

// Notice is a human-readable message for the presentation layer.
type Notice struct {
	Level Level
	Text  string
}

// money formats with thousands separators, e.g. 89,950.00.
var printer = message.NewPrinter(language.English)

func (e *Engine) notify(level Level, format string, args ...any) {
	n := Notice{Level: level, Text: printer.Sprintf(format, args...)}
	e.notices = append(e.notices, n)
	e.log.Debug("notice", zap.Stringer("level", level), zap.String("text", n.Text))
}
