// Package logging hands out prefixed loggers that share one level.
package logging

import (
	"os"
	"sync"

	"github.com/charmbracelet/log"
)

var (
	mu      sync.Mutex
	level   = log.InfoLevel
	loggers []*log.Logger
)

// New returns a logger writing to stderr with prefix. Its level follows
// SetLevel.
func New(prefix string) *log.Logger {
	mu.Lock()
	defer mu.Unlock()
	l := log.NewWithOptions(os.Stderr, log.Options{Prefix: prefix, Level: level})
	loggers = append(loggers, l)
	return l
}

// SetLevel changes the level of the default logger and every logger made
// by New.
func SetLevel(l log.Level) {
	mu.Lock()
	defer mu.Unlock()
	level = l
	log.SetLevel(l)
	for _, lg := range loggers {
		lg.SetLevel(l)
	}
}
