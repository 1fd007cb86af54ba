package tracing

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	require.False(t, cfg.Enabled, "tracing should be disabled by default")
	require.Equal(t, "file", cfg.Exporter)
	require.Equal(t, 1.0, cfg.SampleRate)
	require.Equal(t, "skins", cfg.ServiceName)
}

func TestNewProvider_Disabled(t *testing.T) {
	provider, err := NewProvider(Config{})
	require.NoError(t, err)
	require.False(t, provider.Enabled())

	_, span := provider.Tracer().Start(context.Background(), SpanThemeLoad)
	require.False(t, span.SpanContext().IsValid(), "no-op spans carry no ids")
	span.End()

	require.NoError(t, provider.Shutdown(context.Background()))
}

func TestNewProvider_FileExporterWritesSpans(t *testing.T) {
	path := filepath.Join(t.TempDir(), "traces.jsonl")

	provider, err := NewProvider(Config{Enabled: true, Exporter: "file", FilePath: path})
	require.NoError(t, err)
	require.True(t, provider.Enabled())

	ctx, span := Start(context.Background(), provider.Tracer(), SpanEngineRecompute,
		attribute.String(AttrThemeID, "dark"),
		attribute.Int(AttrInstances, 3),
	)
	require.True(t, span.SpanContext().IsValid())
	_, child := Start(ctx, provider.Tracer(), SpanThemeLoad)
	End(child, errors.New("unknown target"))
	End(span, nil)

	require.NoError(t, provider.Shutdown(context.Background()))

	records := readRecords(t, path)
	require.Len(t, records, 2)

	byName := map[string]SpanRecord{}
	for _, r := range records {
		byName[r.Name] = r
	}
	require.Equal(t, "ERROR", byName[SpanThemeLoad].Status)
	require.Equal(t, "unknown target", byName[SpanThemeLoad].StatusMsg)
	require.Equal(t, byName[SpanEngineRecompute].SpanID, byName[SpanThemeLoad].ParentID)
	require.Equal(t, "dark", byName[SpanEngineRecompute].Attributes[AttrThemeID])
}

func TestNewProvider_Errors(t *testing.T) {
	_, err := NewProvider(Config{Enabled: true, Exporter: "file"})
	require.Error(t, err)

	_, err = NewProvider(Config{Enabled: true, Exporter: "carrier-pigeon"})
	require.ErrorContains(t, err, "unsupported exporter")
}

func TestNewProvider_NoneExporter(t *testing.T) {
	provider, err := NewProvider(Config{Enabled: true, Exporter: "none"})
	require.NoError(t, err)
	_, span := Start(context.Background(), provider.Tracer(), SpanEngineActivate)
	require.True(t, span.SpanContext().IsValid())
	End(span, nil)
	require.NoError(t, provider.Shutdown(context.Background()))
}

func TestStart_NilTracer(t *testing.T) {
	ctx, span := Start(context.Background(), nil, SpanThemeParse)
	require.NotNil(t, ctx)
	require.NotPanics(t, func() { End(span, errors.New("boom")) })
}

func TestFileExporter_AppendsAndCloses(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "traces.jsonl")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(`{"existing":"data"}`+"\n"), 0o600))

	exp, err := NewFileExporter(path)
	require.NoError(t, err)

	now := time.Now()
	stub := tracetest.SpanStub{
		Name:       SpanBaselineCheck,
		StartTime:  now,
		EndTime:    now.Add(250 * time.Millisecond),
		Status:     sdktrace.Status{Code: codes.Ok},
		Attributes: []attribute.KeyValue{attribute.String(AttrThemeID, "light")},
		Events: []sdktrace.Event{{
			Name:       "drift",
			Time:       now,
			Attributes: []attribute.KeyValue{attribute.String(AttrSkinID, "button")},
		}},
	}
	require.NoError(t, exp.ExportSpans(context.Background(), []sdktrace.ReadOnlySpan{stub.Snapshot()}))
	require.NoError(t, exp.Shutdown(context.Background()))
	require.NoError(t, exp.Shutdown(context.Background()))

	require.Error(t, exp.ExportSpans(context.Background(), []sdktrace.ReadOnlySpan{stub.Snapshot()}))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	var lines []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	require.Len(t, lines, 2, "existing content is kept")

	var rec SpanRecord
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &rec))
	require.Equal(t, SpanBaselineCheck, rec.Name)
	require.Equal(t, "OK", rec.Status)
	require.InDelta(t, 250.0, rec.DurationMs, 0.001)
	require.Len(t, rec.Events, 1)
	require.Equal(t, "button", rec.Events[0].Attributes[AttrSkinID])
}

func readRecords(t *testing.T, path string) []SpanRecord {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var out []SpanRecord
	dec := json.NewDecoder(f)
	for dec.More() {
		var r SpanRecord
		require.NoError(t, dec.Decode(&r))
		out = append(out, r)
	}
	return out
}
