// Package report renders run outcomes for humans (a summary table) and
// machines (a YAML document).
package report

import (
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"
	"gopkg.in/yaml.v3"

	"github.com/dokit-tools/dokit/langmeta"
	"github.com/dokit-tools/dokit/pipeline"
)

// Render writes a per-file summary table followed by totals.
func Render(w io.Writer, rep *pipeline.Report, targetLang string) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"File", "Status", "Spans"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_CENTER, tablewriter.ALIGN_RIGHT})

	for _, res := range rep.Results {
		status := res.Status.String()
		if res.PassedThrough {
			status += " (passthrough)"
		}
		table.Append([]string{res.RelPath, status, fmt.Sprintf("%d", res.DocSpans)})
	}
	table.SetFooter([]string{
		fmt.Sprintf("%s %s", langmeta.Resolve(targetLang).Flag, langmeta.Name(targetLang)),
		fmt.Sprintf("ok %d / failed %d / skipped %d", rep.Succeeded, rep.Failed, rep.SkippedEmpty),
		fmt.Sprintf("%.1fs", rep.Duration.Seconds()),
	})
	table.Render()

	for _, f := range rep.Failures() {
		fmt.Fprintf(w, "  %s: %v\n", f.RelPath, f.Err)
	}
}

// yamlReport is the machine-readable run document.
type yamlReport struct {
	TargetLang   string        `yaml:"target_lang"`
	DurationSecs float64       `yaml:"duration_secs"`
	Succeeded    int           `yaml:"succeeded"`
	Failed       int           `yaml:"failed"`
	SkippedEmpty int           `yaml:"skipped_empty"`
	Files        []yamlFile    `yaml:"files"`
	Failures     []yamlFailure `yaml:"failures,omitempty"`
}

type yamlFile struct {
	Path          string `yaml:"path"`
	Status        string `yaml:"status"`
	Spans         int    `yaml:"spans"`
	PassedThrough bool   `yaml:"passed_through,omitempty"`
}

type yamlFailure struct {
	Path   string `yaml:"path"`
	Reason string `yaml:"reason"`
}

// WriteYAML emits the run report as YAML.
func WriteYAML(w io.Writer, rep *pipeline.Report, targetLang string) error {
	doc := yamlReport{
		TargetLang:   targetLang,
		DurationSecs: rep.Duration.Seconds(),
		Succeeded:    rep.Succeeded,
		Failed:       rep.Failed,
		SkippedEmpty: rep.SkippedEmpty,
	}
	for _, res := range rep.Results {
		doc.Files = append(doc.Files, yamlFile{
			Path:          res.RelPath,
			Status:        res.Status.String(),
			Spans:         res.DocSpans,
			PassedThrough: res.PassedThrough,
		})
	}
	for _, f := range rep.Failures() {
		doc.Failures = append(doc.Failures, yamlFailure{Path: f.RelPath, Reason: f.Err.Error()})
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	return enc.Close()
}
