package diag

import (
	"fmt"

	log "github.com/sirupsen/logrus"
)

// Log accumulates the free-text diagnostics produced during a run. Every
// message is prefixed with ERROR, WARNING or NOTICE and also written to the
// logger at the matching level.
type Log struct {
	messages []string
}

// New returns an empty Log.
func New() *Log {
	return &Log{}
}

// Errorf records a non-fatal error.
func (l *Log) Errorf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	log.Error(msg)
	l.messages = append(l.messages, "ERROR: "+msg)
}

// Warnf records a warning.
func (l *Log) Warnf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	log.Warn(msg)
	l.messages = append(l.messages, "WARNING: "+msg)
}

// Noticef records an informational notice.
func (l *Log) Noticef(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	log.Info(msg)
	l.messages = append(l.messages, "NOTICE: "+msg)
}

// Messages returns a copy of the recorded messages in order.
func (l *Log) Messages() []string {
	out := make([]string, len(l.messages))
	copy(out, l.messages)
	return out
}

// Len returns the number of recorded messages.
func (l *Log) Len() int {
	return len(l.messages)
}
