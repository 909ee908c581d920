package ulogger

// TestLogger discards everything. Use NewVerboseTestLogger when the output matters.
type TestLogger struct{}

func (l TestLogger) LogLevel() int {
	return 0
}

func (l TestLogger) SetLogLevel(_ string) {}

func (l TestLogger) Debugf(_ string, _ ...interface{}) {}

func (l TestLogger) Infof(_ string, _ ...interface{}) {}

func (l TestLogger) Warnf(_ string, _ ...interface{}) {}

func (l TestLogger) Errorf(_ string, _ ...interface{}) {}

func (l TestLogger) Fatalf(_ string, _ ...interface{}) {}

func (l TestLogger) New(_ string, _ ...Option) Logger {
	return TestLogger{}
}

func (l TestLogger) Duplicate(_ ...Option) Logger {
	return TestLogger{}
}
