package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, LevelDebug, ParseLevel("debug"))
	assert.Equal(t, LevelWarn, ParseLevel("WARNING"))
	assert.Equal(t, LevelQuiet, ParseLevel("quiet"))
	assert.Equal(t, LevelInfo, ParseLevel("bogus"))
	assert.Equal(t, "error", LevelError.String())
}

func TestConsoleFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	log := NewWriterConsole(LevelInfo, &buf)

	log.Debug("hidden %d", 1)
	log.Info("loaded %s", "model.onnx")
	log.Error("boom")

	assert.Equal(t, "loaded model.onnx\nboom\n", buf.String())
}

func TestConsoleComponentPrefix(t *testing.T) {
	var buf bytes.Buffer
	log := NewWriterConsole(LevelDebug, &buf).WithComponent("ort")

	log.Debug("invoke")

	assert.Equal(t, "[ort] invoke\n", buf.String())
}

func TestConsoleQuiet(t *testing.T) {
	var buf bytes.Buffer
	log := NewWriterConsole(LevelQuiet, &buf)

	log.Error("nothing")

	assert.Empty(t, buf.String())
}

func TestNoop(t *testing.T) {
	var log Logger = NewNoop()
	log.Info("x")
	assert.Same(t, log, log.WithComponent("c"))
}

func TestConsoleColor(t *testing.T) {
	var buf bytes.Buffer
	log := NewWriterConsole(LevelDebug, &buf).WithColor(true)

	log.Debug("debug")
	log.Info("info")
	log.Warn("warn")
	log.WithComponent("tflite").Error("error")

	assert.Equal(t,
		colorGray+"debug"+colorReset+"\n"+
			"info\n"+
			colorYellow+"warn"+colorReset+"\n"+
			colorRed+colorCyan+"[tflite]"+colorReset+" error"+colorReset+"\n",
		buf.String())
}

func TestWriterConsoleDetectsTerminal(t *testing.T) {
	assert.False(t, NewWriterConsole(LevelInfo, &bytes.Buffer{}).color)

	f, err := os.Create(filepath.Join(t.TempDir(), "log.txt"))
	require.NoError(t, err)
	defer f.Close()
	assert.False(t, NewWriterConsole(LevelInfo, f).color, "regular files are not terminals")

	assert.False(t, NewWriterConsole(LevelInfo, &bytes.Buffer{}).WithColor(true).WithColor(false).color)
}
