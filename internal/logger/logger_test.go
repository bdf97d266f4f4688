package logger

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogWritesMemoryAndFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "editor.txt")
	l := NewAt(path)

	l.Log("hello")
	l.Log("world")

	lines := l.Lines()
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "["))
	assert.True(t, strings.HasSuffix(lines[1], "] world"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(string(data), "\n"))
}

func TestSlogRecordsLandInLogger(t *testing.T) {
	l := NewAt("")
	log := Slog(l, slog.LevelInfo)

	log.Debug("hidden")
	log.Warn("detach gizmo widget", "err", "stuck")

	lines := l.Lines()
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], "level=WARN")
	assert.Contains(t, lines[0], `msg="detach gizmo widget"`)
	assert.Contains(t, lines[0], "err=stuck")
	assert.NotContains(t, lines[0], "time=")
}

func TestHistoryIsBounded(t *testing.T) {
	l := NewAt("")
	for i := 0; i < maxLines+10; i++ {
		l.Log(fmt.Sprint(i))
	}
	lines := l.Lines()
	assert.Len(t, lines, maxLines)
	assert.True(t, strings.HasSuffix(lines[0], "] 10"))

	tail := l.Tail(2)
	require.Len(t, tail, 2)
	assert.True(t, strings.HasSuffix(tail[1], fmt.Sprintf("] %d", maxLines+9)))
	assert.Nil(t, l.Tail(0))
}

func TestWriteSplitsLines(t *testing.T) {
	l := NewAt("")
	n, err := l.Write([]byte("a\r\n\nb\n"))
	require.NoError(t, err)
	assert.Equal(t, 6, n)
	assert.Len(t, l.Lines(), 2)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("debug"))
	assert.Equal(t, slog.LevelWarn, ParseLevel(" WARN "))
	assert.Equal(t, slog.LevelInfo, ParseLevel("chatty"))
}
