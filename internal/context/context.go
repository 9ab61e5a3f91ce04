// Package context provides the m3utidy run context: logger, filesystem, clock and metrics.
package context

import (
	"io"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/tellytv/m3utidy/internal/metrics"
)

// CContext is a context struct that gets passed around the application.
type CContext struct {
	Fs      afero.Fs
	Log     *logrus.Logger
	Metrics *metrics.Metrics
	Now     func() time.Time
}

// Copy returns a cloned version of the input CContext with fresh metrics.
func (cc *CContext) Copy() *CContext {
	return &CContext{
		Fs:      cc.Fs,
		Log:     cc.Log,
		Metrics: metrics.New(),
		Now:     cc.Now,
	}
}

// NewLogger returns a logger writing timestamped text lines to out.
func NewLogger(out io.Writer, level logrus.Level) *logrus.Logger {
	return &logrus.Logger{
		Out: out,
		Formatter: &logrus.TextFormatter{
			FullTimestamp: true,
		},
		Hooks: make(logrus.LevelHooks),
		Level: level,
	}
}

// NewCContext returns an initialized CContext struct working on the OS filesystem.
func NewCContext(logLevel string) (*CContext, error) {
	level, levelErr := logrus.ParseLevel(logLevel)
	if levelErr != nil {
		return nil, errors.Wrapf(levelErr, "invalid log level %q", logLevel)
	}

	log := NewLogger(os.Stderr, level)

	context := &CContext{
		Fs:      afero.NewOsFs(),
		Log:     log,
		Metrics: metrics.New(),
		Now:     time.Now,
	}

	log.Debugln("Context: Context build complete")

	return context, nil
}
