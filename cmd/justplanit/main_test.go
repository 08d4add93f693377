package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joelkehle/justplanit/internal/validation/validationtest"
)

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := rootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeReport(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "report.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestVersion(t *testing.T) {
	out, _, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "justplanit dev\n", out)
}

func TestRenderMarkdownToStdout(t *testing.T) {
	in := writeReport(t, validationtest.ReportJSON)

	out, stderr, err := execute(t, "render", in, "--idea", "Meal kits for students")
	require.NoError(t, err)
	assert.Empty(t, stderr)
	assert.Contains(t, out, "Meal kits for students")
	assert.Contains(t, out, "HelloFresh")
}

func TestRenderHTMLFile(t *testing.T) {
	in := writeReport(t, validationtest.ReportJSON)
	outPath := filepath.Join(t.TempDir(), "report.html")

	_, _, err := execute(t, "render", in, "--out", outPath)
	require.NoError(t, err)

	blob, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(blob), "<!doctype html>"))
	assert.Contains(t, string(blob), "HelloFresh")
}

func TestRenderWarnsOnMissingSections(t *testing.T) {
	in := writeReport(t, `{"executive_summary": {"verdict": "GO", "viability_score": 7}}`)

	_, stderr, err := execute(t, "render", in)
	require.NoError(t, err)
	assert.Contains(t, stderr, "missing sections")
}

func TestRenderRejectsUnknownExtension(t *testing.T) {
	in := writeReport(t, validationtest.ReportJSON)

	_, _, err := execute(t, "render", in, "--out", filepath.Join(t.TempDir(), "report.docx"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported output extension")
}

func TestRenderBadJSON(t *testing.T) {
	in := writeReport(t, "not json")

	_, _, err := execute(t, "render", in)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode input JSON")
}

func TestValidateRejectsUnknownFormat(t *testing.T) {
	_, _, err := execute(t, "validate", "an idea", "--format", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown format")
}
