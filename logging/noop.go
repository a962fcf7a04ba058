package logging

// Noop discards all messages.
type Noop struct{}

// NewNoop creates a new no-op logger.
func NewNoop() *Noop {
	return &Noop{}
}

// Debug does nothing.
func (l *Noop) Debug(msg string, args ...interface{}) {}

// Info does nothing.
func (l *Noop) Info(msg string, args ...interface{}) {}

// Warn does nothing.
func (l *Noop) Warn(msg string, args ...interface{}) {}

// Error does nothing.
func (l *Noop) Error(msg string, args ...interface{}) {}

// WithComponent returns the same no-op logger.
func (l *Noop) WithComponent(component string) Logger {
	return l
}
