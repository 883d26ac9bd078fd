package mailbox

import "go.uber.org/zap"

var (
	_ Logger           = (*ZapLogger)(nil)
	_ StructuredLogger = (*ZapLogger)(nil)
)

// ZapLogger adapts a zap.SugaredLogger to the mailbox logging interfaces.
// It satisfies both Logger and StructuredLogger, so the structured path is
// preferred automatically when it is supplied as Config.Logger.
type ZapLogger struct {
	s *zap.SugaredLogger
}

// NewZapLogger wraps the given sugared logger. A nil argument uses the
// global zap logger.
func NewZapLogger(s *zap.SugaredLogger) *ZapLogger {
	if s == nil {
		s = zap.S()
	}
	return &ZapLogger{s: s}
}

func (l *ZapLogger) Debugf(format string, args ...any) {
	l.s.Debugf(format, args...)
}

func (l *ZapLogger) Debugw(msg string, keyvals ...any) {
	l.s.Debugw(msg, keyvals...)
}
