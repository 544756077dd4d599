// Package report tests.
package report

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/dokit-tools/dokit/pipeline"
)

func sampleReport() *pipeline.Report {
	return &pipeline.Report{
		Succeeded:    1,
		Failed:       1,
		SkippedEmpty: 1,
		Duration:     1500 * time.Millisecond,
		Results: []pipeline.FileResult{
			{RelPath: "README.md", Status: pipeline.StatusWritten, DocSpans: 4},
			{RelPath: "run.sh", Status: pipeline.StatusFailed, DocSpans: 1, Err: errors.New("backend down"), PassedThrough: true},
			{RelPath: "logo.png", Status: pipeline.StatusSkipped},
		},
	}
}

func TestRender_ListsFilesAndTotals(t *testing.T) {
	var buf bytes.Buffer
	Render(&buf, sampleReport(), "fr")
	out := buf.String()

	assert.Contains(t, out, "README.md")
	assert.Contains(t, out, "written")
	assert.Contains(t, out, "passthrough")
	assert.Contains(t, out, "French")
	assert.Contains(t, out, "ok 1 / failed 1 / skipped 1")
	assert.Contains(t, out, "run.sh: backend down")
}

func TestWriteYAML_RoundTrips(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteYAML(&buf, sampleReport(), "fr"))

	var doc struct {
		TargetLang string `yaml:"target_lang"`
		Succeeded  int    `yaml:"succeeded"`
		Failed     int    `yaml:"failed"`
		Files      []struct {
			Path   string `yaml:"path"`
			Status string `yaml:"status"`
		} `yaml:"files"`
		Failures []struct {
			Path   string `yaml:"path"`
			Reason string `yaml:"reason"`
		} `yaml:"failures"`
	}
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &doc))

	assert.Equal(t, "fr", doc.TargetLang)
	assert.Equal(t, 1, doc.Succeeded)
	assert.Equal(t, 1, doc.Failed)
	require.Len(t, doc.Files, 3)
	assert.Equal(t, "README.md", doc.Files[0].Path)
	require.Len(t, doc.Failures, 1)
	assert.Equal(t, "run.sh", doc.Failures[0].Path)
	assert.True(t, strings.Contains(doc.Failures[0].Reason, "backend down"))
}
