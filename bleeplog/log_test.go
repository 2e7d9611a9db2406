package bleeplog

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func captureOutput(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	logger().SetOutput(&buf)
	t.Cleanup(func() { logger().SetOutput(os.Stderr) })
	return &buf
}

func TestForTagsEntryWithChannel(t *testing.T) {
	entry := For(ChannelAgent)
	assert.Equal(t, "agent", entry.Data["channel"])
}

func TestGeneralWritesToGeneralChannel(t *testing.T) {
	buf := captureOutput(t)

	General("adapter powered on")

	assert.Contains(t, buf.String(), "channel=general")
	assert.Contains(t, buf.String(), "adapter powered on")
}

func TestDebugIsSilentBelowDebugLevel(t *testing.T) {
	buf := captureOutput(t)
	SetLevel(logrus.InfoLevel)

	Debug("this should not appear")

	assert.Empty(t, buf.String())
}

func TestDebugEmitsOnceLevelRaised(t *testing.T) {
	buf := captureOutput(t)
	SetLevel(logrus.DebugLevel)
	t.Cleanup(func() { SetLevel(logrus.InfoLevel) })

	Debug("notification dispatched")

	assert.True(t, strings.Contains(buf.String(), "channel=debug"))
}

func TestEnumWritesToEnumerationChannel(t *testing.T) {
	buf := captureOutput(t)
	SetLevel(logrus.DebugLevel)
	t.Cleanup(func() { SetLevel(logrus.InfoLevel) })

	Enum("enumeration complete")

	assert.Contains(t, buf.String(), "channel=enumeration")
}
