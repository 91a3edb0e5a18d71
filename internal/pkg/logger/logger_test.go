package logger

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	require.Equal(t, DEBUG, ParseLevel("debug"))
	require.Equal(t, WARN, ParseLevel(" WARN "))
	require.Equal(t, INFO, ParseLevel("verbose"))
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(WARN, &buf)

	l.Info("hidden %d", 1)
	require.Empty(t, buf.String())

	l.Warn("shown %d", 2)
	require.Contains(t, buf.String(), "[WARN] shown 2")
}

func TestNamedPrefix(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(DEBUG, &buf).Named("reports")

	l.Debug("matched %d", 3)
	require.Contains(t, buf.String(), "[DEBUG] reports: matched 3")
}
