//go:build !tinygo

package gpioirq

import (
	"github.com/golang/glog"
)

func init() {
	globalLogger = &glogLogger{}
}

// glogLogger is the default host logger. Debug messages are emitted at
// verbosity 1 (-v=1).
type glogLogger struct{}

func (l *glogLogger) Debug(msg string) {
	glog.V(1).Info(msg)
}

func (l *glogLogger) Info(msg string) {
	glog.Info(msg)
}

func (l *glogLogger) Warn(msg string) {
	glog.Warning(msg)
}

func (l *glogLogger) Error(msg string) {
	glog.Error(msg)
}
