package logger

// NullLogger discards all output; used in tests and library call sites
// that don't want to force a logging dependency on their caller.
type NullLogger struct{}

func NewNullLogger() *NullLogger { return &NullLogger{} }

func (l *NullLogger) Debug(msg string, args ...any) {}
func (l *NullLogger) Info(msg string, args ...any)  {}
func (l *NullLogger) Warn(msg string, args ...any)  {}
func (l *NullLogger) Error(msg string, args ...any) {}

func (l *NullLogger) StartOperation(name string) OperationLogger { return &nullOperation{} }

type nullOperation struct{}

func (o *nullOperation) Update(msg string, args ...any)   {}
func (o *nullOperation) Complete(msg string, args ...any) {}
func (o *nullOperation) Fail(msg string, args ...any)     {}
