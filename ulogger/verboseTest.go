package ulogger

import (
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/ordishs/gocore"
)

// VerboseTestLogger writes through t.Logf so output only shows for failing
// tests or with -v. Lines logged after the test has finished are dropped,
// since t.Logf panics once a test is complete.
type VerboseTestLogger struct {
	t       *testing.T
	mu      *sync.Mutex
	done    *atomic.Bool
	service string
	level   *atomic.Int32
}

func NewVerboseTestLogger(t *testing.T, options ...Option) *VerboseTestLogger {
	opts := DefaultOptions()
	opts.logLevel = "DEBUG"

	for _, o := range options {
		o(opts)
	}

	l := &VerboseTestLogger{
		t:     t,
		mu:    &sync.Mutex{},
		done:  &atomic.Bool{},
		level: &atomic.Int32{},
	}

	l.SetLogLevel(opts.logLevel)

	t.Cleanup(func() { l.done.Store(true) })

	return l
}

func (l *VerboseTestLogger) LogLevel() int {
	return int(l.level.Load())
}

func (l *VerboseTestLogger) SetLogLevel(level string) {
	lvl := gocore.INFO

	switch strings.ToUpper(level) {
	case "DEBUG":
		lvl = gocore.DEBUG
	case "WARN":
		lvl = gocore.WARN
	case "ERROR":
		lvl = gocore.ERROR
	case "FATAL":
		lvl = gocore.FATAL
	}

	l.level.Store(int32(lvl))
}

// New returns a logger tagged with service that shares this logger's test
// and level.
func (l *VerboseTestLogger) New(service string, _ ...Option) Logger {
	child := *l
	child.service = service

	return &child
}

func (l *VerboseTestLogger) Duplicate(_ ...Option) Logger {
	return l
}

func (l *VerboseTestLogger) Debugf(format string, args ...interface{}) {
	l.log(int(gocore.DEBUG), "DEBUG", format, args...)
}

func (l *VerboseTestLogger) Infof(format string, args ...interface{}) {
	l.log(int(gocore.INFO), "INFO", format, args...)
}

func (l *VerboseTestLogger) Warnf(format string, args ...interface{}) {
	l.log(int(gocore.WARN), "WARN", format, args...)
}

func (l *VerboseTestLogger) Errorf(format string, args ...interface{}) {
	l.log(int(gocore.ERROR), "ERROR", format, args...)
}

func (l *VerboseTestLogger) Fatalf(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.t.Fatalf(l.prefix("FATAL")+format, args...)
}

func (l *VerboseTestLogger) log(level int, name, format string, args ...interface{}) {
	if level < l.LogLevel() || l.done.Load() {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.t.Logf(l.prefix(name)+format, args...)
}

func (l *VerboseTestLogger) prefix(level string) string {
	if l.service == "" {
		return "[" + level + "] "
	}

	return "[" + level + "] " + l.service + ": "
}
