package common

import (
	"bytes"
	"context"
	stderrors "errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"resumescore/internal/errors"
	"resumescore/internal/scoring"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *errors.Logger {
	return errors.NewLoggerTo(io.Discard, slog.LevelDebug)
}

func TestReadDocument(t *testing.T) {
	dir := t.TempDir()
	small := filepath.Join(dir, "resume.txt")
	require.NoError(t, os.WriteFile(small, []byte("Jane Doe"), 0600))
	large := filepath.Join(dir, "large.txt")
	require.NoError(t, os.WriteFile(large, bytes.Repeat([]byte("x"), 64), 0600))

	fp := NewFileProcessor(testLogger(), 32)

	data, err := fp.ReadDocument(small)
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", string(data))

	_, err = fp.ReadDocument(large)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeFileTooLarge))

	_, err = fp.ReadDocument(filepath.Join(dir, "missing.txt"))
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeFileNotFound))

	unlimited := NewFileProcessor(testLogger(), 0)
	_, err = unlimited.ReadDocument(large)
	assert.NoError(t, err)
}

func TestReadStream(t *testing.T) {
	fp := NewFileProcessor(testLogger(), 8)

	data, err := fp.ReadStream("stdin", strings.NewReader("short"))
	require.NoError(t, err)
	assert.Equal(t, "short", string(data))

	_, err = fp.ReadStream("stdin", strings.NewReader("much longer than eight bytes"))
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeFileTooLarge))
}

func TestWriteFileCreatesDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "out", "report.json")
	fp := NewFileProcessor(testLogger(), 0)

	require.NoError(t, fp.WriteFile(path, "{}"))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "{}", string(data))
}

func TestHandleOutput(t *testing.T) {
	report := scoring.Analyze("Jane Doe\njane@example.com")

	var stdout bytes.Buffer
	oh := NewOutputHandler(testLogger(), &stdout)
	require.NoError(t, oh.HandleOutput(report, CommandConfig{OutputFormat: "text"}))
	assert.Contains(t, stdout.String(), "=== RESUME SCORE ===")

	path := filepath.Join(t.TempDir(), "report.md")
	require.NoError(t, oh.HandleOutput(report, CommandConfig{OutputFormat: "markdown", OutputFile: path}))
	written, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(written), "# Resume Score")

	err = oh.HandleOutput("not a report", CommandConfig{OutputFormat: "text"})
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidFormat))
}

func TestRunCommand(t *testing.T) {
	ctx := context.Background()
	load := func(context.Context) (string, error) { return "Jane Doe\njane@example.com", nil }
	score := func(_ context.Context, text string) (*scoring.AnalysisReport, error) {
		return scoring.Analyze(text), nil
	}

	t.Run("writes output", func(t *testing.T) {
		var stdout bytes.Buffer
		err := RunCommand(ctx, testLogger(), NewOutputHandler(testLogger(), &stdout),
			CommandConfig{OutputFormat: "json"}, load, score)
		require.NoError(t, err)
		assert.Contains(t, stdout.String(), `"overall_score"`)
	})

	t.Run("check failure after output", func(t *testing.T) {
		var stdout bytes.Buffer
		tooLow := stderrors.New("score too low")
		err := RunCommand(ctx, testLogger(), NewOutputHandler(testLogger(), &stdout),
			CommandConfig{OutputFormat: "json"}, load, score,
			func(*scoring.AnalysisReport) error { return tooLow })
		assert.ErrorIs(t, err, tooLow)
		assert.NotEmpty(t, stdout.String())
	})

	t.Run("load failure", func(t *testing.T) {
		loadErr := stderrors.New("no input")
		err := RunCommand(ctx, testLogger(), NewOutputHandler(testLogger(), io.Discard),
			CommandConfig{OutputFormat: "json"},
			func(context.Context) (string, error) { return "", loadErr }, score)
		assert.ErrorIs(t, err, loadErr)
	})

	t.Run("unknown format", func(t *testing.T) {
		err := RunCommand(ctx, testLogger(), NewOutputHandler(testLogger(), io.Discard),
			CommandConfig{OutputFormat: "yaml"}, load, score)
		require.Error(t, err)
		assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidFormat))
	})
}
