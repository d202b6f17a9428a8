package archetype

import "github.com/sirupsen/logrus"

// Config holds process-wide, non-World configuration: the debug/release
// logging split called for by the error handling design. It deliberately
// holds no entity, archetype or registry state — that all lives on World.
var Config config = config{logger: logrus.StandardLogger()}

type config struct {
	debug  bool
	logger *logrus.Logger
}

// SetDebug toggles verbose lifecycle logging.
func (c *config) SetDebug(on bool) {
	c.debug = on
}

// Debug reports whether debug logging is enabled.
func (c *config) Debug() bool {
	return c.debug
}

// SetLogger installs a custom logger. A nil logger restores the standard
// logrus logger.
func (c *config) SetLogger(l *logrus.Logger) {
	if l == nil {
		l = logrus.StandardLogger()
	}
	c.logger = l
}

func (c *config) logf(format string, args ...any) {
	if !c.debug {
		return
	}
	c.logger.Debugf(format, args...)
}
