// Package bleeplog centralizes structured logging for the recon stack on
// top of logrus, mirroring the channel split the Python original keeps
// between general user-facing output, debug traces, and enumeration
// detail, while writing a single structured stream instead of one file
// per channel.
package bleeplog

import (
	"os"
	"sync"

	"github.com/sirupsen/logrus"
)

// Channel identifies which logical log stream a message belongs to.
type Channel string

const (
	ChannelGeneral Channel = "general"
	ChannelDebug   Channel = "debug"
	ChannelEnum    Channel = "enumeration"
	ChannelAgent   Channel = "agent"
)

var (
	base     *logrus.Logger
	initOnce sync.Once
)

func logger() *logrus.Logger {
	initOnce.Do(func() {
		base = logrus.New()
		base.SetOutput(os.Stderr)
		base.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
		base.SetLevel(logrus.InfoLevel)
	})
	return base
}

// SetLevel adjusts the global log verbosity; the debug channel only
// actually emits once this is raised to logrus.DebugLevel.
func SetLevel(level logrus.Level) {
	logger().SetLevel(level)
}

// For returns an entry pre-tagged with channel, the idiomatic substitute
// for the Python original's per-channel file handlers.
func For(channel Channel) *logrus.Entry {
	return logger().WithField("channel", string(channel))
}

// Debug writes a line to the debug channel.
func Debug(args ...interface{}) { For(ChannelDebug).Debug(args...) }

// General writes a line to the general channel, the recon equivalent of
// print_and_log's default destination.
func General(args ...interface{}) { For(ChannelGeneral).Info(args...) }

// Enum writes a line to the enumeration channel.
func Enum(args ...interface{}) { For(ChannelEnum).Debug(args...) }

// Agent writes a line to the pairing-agent channel.
func Agent(args ...interface{}) { For(ChannelAgent).Info(args...) }
