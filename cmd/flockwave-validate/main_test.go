package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/scott-cotton/cli"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	fw "github.com/collmot/flockwave-spec"
	"github.com/collmot/flockwave-spec/pkg/errorcode"
	"github.com/collmot/flockwave-spec/worker"
)

const (
	examplesDir = "../../doc/examples"
	pingMessage = `{"$fw.version":"1.0","id":"a","body":{"type":"SYS-PING"}}`
	badMessage  = `{"$fw.version":"1.0","id":"b","body":{"type":"NO-SUCH-TYPE"}}`
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func testSettings() Settings {
	s := DefaultSettings()
	s.Examples = examplesDir
	s.Color = ColorNever
	return s
}

func TestDefaultSettings(t *testing.T) {
	s := DefaultSettings()
	assert.Equal(t, "message.json", s.Schema)
	assert.Empty(t, s.Pointer)
	assert.True(t, s.AllowMultiple)
	assert.Equal(t, ColorAuto, s.Color)
	assert.NoError(t, s.check())
}

func TestLoadSettings(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yaml", `
schema: definitions.json
pointer: /uavStatusInfo
backend: gojsonschema
workers: 3
allowMultiple: false
color: never
logLevel: debug
`)
	s, err := LoadSettings(path)
	require.NoError(t, err)
	assert.Equal(t, "definitions.json", s.Schema)
	assert.Equal(t, "/uavStatusInfo", s.Pointer)
	assert.Equal(t, "gojsonschema", s.Backend)
	assert.Equal(t, 3, s.Workers)
	assert.False(t, s.AllowMultiple)
	assert.Equal(t, ColorNever, s.Color)
	// Unset keys keep their defaults.
	assert.Equal(t, "doc/examples", s.Examples)
	assert.Equal(t, OutputText, s.Output)
}

func TestLoadSettings_Errors(t *testing.T) {
	dir := t.TempDir()
	tests := map[string]string{
		"unknown key":   "schemas: message.json\n",
		"bad backend":   "backend: ajv\n",
		"bad color":     "color: sometimes\n",
		"bad output":    "output: xml\n",
		"bad log level": "logLevel: loud\n",
		"wrong type":    "workers: many\n",
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			path := writeFile(t, dir, strings.ReplaceAll(name, " ", "_")+".yaml", content)
			_, err := LoadSettings(path)
			assert.Error(t, err)
		})
	}

	_, err := LoadSettings(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestMainConfig_Settings(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yaml", "backend: gojsonschema\ncolor: always\n")

	cfg := &MainConfig{Config: path, Single: true, Strict: true, NoColor: true, Verbose: true}
	s, err := cfg.settings()
	require.NoError(t, err)
	assert.Equal(t, "gojsonschema", s.Backend)
	assert.False(t, s.AllowMultiple)
	assert.True(t, s.AssertFormat)
	assert.Equal(t, ColorNever, s.Color)
	assert.Equal(t, "debug", s.LogLevel)

	opts, err := s.Options()
	require.NoError(t, err)
	o := fw.Apply(opts...)
	assert.Equal(t, fw.BackendGoJSONSchema, o.Backend)
	assert.False(t, o.AllowMultiple)
	assert.True(t, o.AssertFormat)
}

func TestMainConfig_ConflictingColors(t *testing.T) {
	cfg := &MainConfig{Color: true, NoColor: true}
	_, err := cfg.settings()
	assert.ErrorIs(t, err, cli.ErrUsage)
}

func TestUseColor(t *testing.T) {
	var buf bytes.Buffer
	assert.True(t, useColor(ColorAlways, &buf))
	assert.False(t, useColor(ColorNever, &buf))
	assert.False(t, useColor(ColorAuto, &buf))
}

func TestFileJobs(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.json", pingMessage)
	writeFile(t, dir, "b.json", badMessage)
	writeFile(t, dir, "c.txt", "ignored")

	jobs, err := fileJobs([]string{filepath.Join(dir, "*.json"), "-"}, strings.NewReader(pingMessage))
	require.NoError(t, err)
	require.Len(t, jobs, 3)
	assert.Equal(t, filepath.Join(dir, "a.json"), jobs[0].Name)
	assert.Equal(t, filepath.Join(dir, "b.json"), jobs[1].Name)
	assert.Equal(t, "<stdin>", jobs[2].Name)
	for i, job := range jobs {
		assert.Equal(t, i, job.Index)
	}
	assert.Equal(t, pingMessage, string(jobs[2].Data))

	_, err = fileJobs([]string{filepath.Join(dir, "missing.json")}, nil)
	assert.Error(t, err)
}

func TestExampleJobs(t *testing.T) {
	jobs, err := exampleJobs(examplesDir)
	require.NoError(t, err)
	require.NotEmpty(t, jobs)
	for i := 1; i < len(jobs); i++ {
		assert.Less(t, jobs[i-1].Name, jobs[i].Name)
	}

	_, err = exampleJobs(t.TempDir())
	assert.Error(t, err)
}

func TestRun_Examples(t *testing.T) {
	for _, backend := range []string{"santhosh", "gojsonschema"} {
		t.Run(backend, func(t *testing.T) {
			s := testSettings()
			s.Backend = backend
			var out bytes.Buffer
			valid, err := run(context.Background(), s, nil, nil, &out)
			require.NoError(t, err)
			assert.True(t, valid, out.String())
			assert.Equal(t, "All tested messages were valid.\n", out.String())
		})
	}
}

func TestRun_Files(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "good.json", pingMessage)
	many := writeFile(t, dir, "many.json", "["+pingMessage+","+pingMessage+"]")
	empty := writeFile(t, dir, "empty.json", "[]")
	bad := writeFile(t, dir, "bad.json", badMessage)

	var out bytes.Buffer
	valid, err := run(context.Background(), testSettings(), []string{good, many, empty, bad}, nil, &out)
	require.NoError(t, err)
	assert.False(t, valid)

	lines := strings.Split(out.String(), "\n")
	require.GreaterOrEqual(t, len(lines), 6)
	assert.Equal(t, good+" is a valid Flockwave message.", lines[0])
	assert.Equal(t, many+" contains valid Flockwave messages.", lines[1])
	assert.Equal(t, empty+" contains no objects at all.", lines[2])
	assert.Equal(t, bad+" is not a valid Flockwave message.", lines[3])
	assert.Empty(t, lines[4])
	assert.NotEmpty(t, lines[5])
}

func TestRun_SingleRejectsArrays(t *testing.T) {
	dir := t.TempDir()
	many := writeFile(t, dir, "many.json", "["+pingMessage+"]")

	s := testSettings()
	s.AllowMultiple = false
	var out bytes.Buffer
	valid, err := run(context.Background(), s, []string{many}, nil, &out)
	require.NoError(t, err)
	assert.False(t, valid)
	assert.Contains(t, out.String(), "is not a valid Flockwave message.")
}

func TestRun_Pointer(t *testing.T) {
	s := testSettings()
	s.Schema = "definitions.json"
	s.Pointer = "/severity"
	var out bytes.Buffer
	valid, err := run(context.Background(), s, []string{"-"}, strings.NewReader(`"warning"`), &out)
	require.NoError(t, err)
	assert.True(t, valid)
	assert.Equal(t, "<stdin> is a valid Flockwave message.\n", out.String())
}

func TestRun_UnknownSchema(t *testing.T) {
	s := testSettings()
	s.Schema = "nope.json"
	_, err := run(context.Background(), s, []string{"-"}, strings.NewReader("{}"), &bytes.Buffer{})
	assert.ErrorIs(t, err, fw.ErrResourceNotFound)
}

func TestPrinter_JSON(t *testing.T) {
	result := &worker.BatchResult{
		Reports: []*fw.Report{
			{Source: "a.json", Count: 2},
			{Source: "b.json", Count: 0, Err: &fw.ValidationError{Message: "boom"}},
		},
		TotalJobs:     3,
		CompletedJobs: 2,
		FailedJobs:    1,
		TotalDuration: 1500 * time.Millisecond,
	}
	var buf bytes.Buffer
	require.NoError(t, newPrinter(&buf, false).json(result))

	var got batchOutput
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.False(t, got.Valid)
	assert.Equal(t, 3, got.Sources)
	assert.Equal(t, 2, got.Checked)
	assert.Equal(t, 2, got.Messages)
	assert.Equal(t, int64(1500), got.ElapsedMS)
	require.Len(t, got.Reports, 2)
	assert.True(t, got.Reports[0].Valid)
	assert.Equal(t, "boom", got.Reports[1].Error)
	assert.Equal(t, "b.json is not a valid Flockwave message.", got.Reports[1].Summary)
}

func TestPrinter_ExamplesFailure(t *testing.T) {
	result := &worker.BatchResult{
		Reports: []*fw.Report{
			{Source: "a.json", Count: 1},
			{Source: "b.json", Err: errors.New("failed to parse document")},
		},
	}
	var buf bytes.Buffer
	require.NoError(t, newPrinter(&buf, false).examples(result))
	assert.Equal(t, "b.json is not a valid Flockwave message.\n\nfailed to parse document\n", buf.String())
}

func TestWriteCodes(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeCodes(&buf, -1))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(t, lines, len(errorcode.Known())+1)
	assert.True(t, strings.HasPrefix(lines[0], "CODE"))

	buf.Reset()
	require.NoError(t, writeCodes(&buf, int(errorcode.SeverityCritical)))
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n")[1:] {
		assert.Contains(t, line, "critical")
	}
}

func TestWriteSchema(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeSchema(&buf, map[string]any{"type": "string"}, true))
	assert.Equal(t, "{\"type\":\"string\"}\n", buf.String())

	buf.Reset()
	require.NoError(t, writeSchema(&buf, map[string]any{"type": "string"}, false))
	assert.Equal(t, "{\n  \"type\": \"string\"\n}\n", buf.String())
}

func TestRun_Stream(t *testing.T) {
	dir := t.TempDir()
	log := writeFile(t, dir, "log.json", "["+pingMessage+","+badMessage+","+pingMessage+","+badMessage+"]")

	s := testSettings()
	s.Stream = true
	var out bytes.Buffer
	valid, err := run(context.Background(), s, []string{log}, nil, &out)
	require.NoError(t, err)
	assert.False(t, valid)

	text := out.String()
	assert.True(t, strings.HasPrefix(text, log+": message 1: "), text)
	assert.Contains(t, text, "\n"+log+": message 3: ")
	assert.Less(t, strings.Index(text, ": message 1: "), strings.Index(text, ": message 3: "))
	lines := strings.Split(strings.TrimSpace(text), "\n")
	assert.Equal(t, log+": Validated 4 messages: 2 invalid, 0 processing errors", lines[len(lines)-1])
}

func TestSettings_StreamConflicts(t *testing.T) {
	s := testSettings()
	s.Stream = true
	s.Output = OutputJSON
	assert.ErrorIs(t, s.check(), cli.ErrUsage)

	s = testSettings()
	s.Stream = true
	s.AllowMultiple = false
	assert.ErrorIs(t, s.check(), cli.ErrUsage)
}
