package log

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func withBuffer(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := defaultLogger
	defaultLogger = newWithSyncer(zapcore.AddSync(&buf), nil)
	t.Cleanup(func() { defaultLogger = prev })
	return &buf
}

func TestLog_WritesCategoryAndFields(t *testing.T) {
	buf := withBuffer(t)

	Info(CatTheme, "Loaded theme", "theme", "dark", "rules", 12)

	out := buf.String()
	require.Contains(t, out, "INFO")
	require.Contains(t, out, "Loaded theme")
	require.Contains(t, out, `"cat": "theme"`)
	require.Contains(t, out, `"theme": "dark"`)
	require.Contains(t, out, `"rules": 12`)
}

func TestLog_OddFieldCount(t *testing.T) {
	buf := withBuffer(t)

	Warn(CatCascade, "Orphan", "skin")

	require.Contains(t, buf.String(), `"skin": "<missing>"`)
}

func TestLog_MinLevelFilters(t *testing.T) {
	buf := withBuffer(t)

	SetMinLevel(LevelWarn)
	Debug(CatEngine, "hidden")
	Error(CatEngine, "shown")

	require.NotContains(t, buf.String(), "hidden")
	require.Contains(t, buf.String(), "shown")
}

func TestLog_Disabled(t *testing.T) {
	buf := withBuffer(t)

	SetEnabled(false)
	Error(CatEngine, "dropped")

	require.Empty(t, buf.String())
}

func TestLog_ErrorErrNil(t *testing.T) {
	buf := withBuffer(t)

	ErrorErr(CatConfig, "Failed", nil)

	require.Contains(t, buf.String(), `"error": "<nil>"`)
}

func TestNamed_NopWithoutInit(t *testing.T) {
	prev := defaultLogger
	defaultLogger = nil
	t.Cleanup(func() { defaultLogger = prev })

	require.NotNil(t, Named("parser"))
}

func TestParseLevel(t *testing.T) {
	require.Equal(t, LevelInfo, ParseLevel("info"))
	require.Equal(t, LevelWarn, ParseLevel("warn"))
	require.Equal(t, LevelError, ParseLevel("error"))
	require.Equal(t, LevelDebug, ParseLevel("debug"))
	require.Equal(t, LevelDebug, ParseLevel("bogus"))
}
