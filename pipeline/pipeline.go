// Package pipeline orchestrates the translation run: extract, translate,
// reassemble, write, one state machine per file. Files are independent;
// a failure in one never corrupts or blocks another.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dokit-tools/dokit/extract"
	"github.com/dokit-tools/dokit/segment"
	"github.com/dokit-tools/dokit/translate"
)

// Status is the per-file state machine position.
type Status int

const (
	// StatusPending marks a file not processed yet (left behind only when
	// the run is canceled).
	StatusPending Status = iota
	// StatusExtracted: doc spans located, partition verified.
	StatusExtracted
	// StatusTranslated: backend returned a full positional batch.
	StatusTranslated
	// StatusReassembled: output content built, byte-identical outside doc
	// spans. Terminal in dry-run mode.
	StatusReassembled
	// StatusWritten: output file materialized. Terminal.
	StatusWritten
	// StatusSkipped: nothing to translate; the file was copied through.
	StatusSkipped
	// StatusFailed: terminal failure, Err says why.
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusExtracted:
		return "extracted"
	case StatusTranslated:
		return "translated"
	case StatusReassembled:
		return "reassembled"
	case StatusWritten:
		return "written"
	case StatusSkipped:
		return "skipped"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// FileResult is the outcome of one file's run.
type FileResult struct {
	RelPath string
	Status  Status
	// DocSpans is how many translatable fragments the file had.
	DocSpans int
	// PassedThrough is set when a failed file was emitted untranslated.
	PassedThrough bool
	Err           error
}

// Report summarizes a run.
type Report struct {
	Succeeded    int
	Failed       int
	SkippedEmpty int
	Duration     time.Duration
	Results      []FileResult
}

// Failures returns the failed results in input order.
func (r *Report) Failures() []FileResult {
	var out []FileResult
	for _, res := range r.Results {
		if res.Status == StatusFailed {
			out = append(out, res)
		}
	}
	return out
}

// Sink receives finished file content. writer.Writer satisfies it.
type Sink interface {
	Write(relPath, content string) error
}

// Options configures a run.
type Options struct {
	// TargetLang is the translation target, passed through to the backend.
	TargetLang string
	// Concurrency bounds the worker pool. Default: 4.
	Concurrency int
	// StopOnError aborts the run on the first failed file.
	StopOnError bool
	// PassthroughOnError writes failed files untranslated. They still count
	// as failed.
	PassthroughOnError bool
	// DryRun performs everything except writing output.
	DryRun bool
	// OnFile is invoked once per finished file, serialized.
	OnFile func(FileResult)
	// Logger receives structured run events; nil discards them.
	Logger *slog.Logger
}

func (o *Options) effectiveConcurrency() int {
	if o.Concurrency > 0 {
		return o.Concurrency
	}
	return 4
}

// Pipeline runs files through extract, translate, reassemble, write.
type Pipeline struct {
	translator translate.Translator
	sink       Sink
	opts       Options
	logger     *slog.Logger

	mu sync.Mutex
}

// New builds a pipeline. sink may be nil only with Options.DryRun set.
func New(translator translate.Translator, sink Sink, opts Options) *Pipeline {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Pipeline{translator: translator, sink: sink, opts: opts, logger: logger}
}

// Run processes all files with a bounded worker pool. The returned error is
// non-nil only when the run was aborted (stop-on-error or cancellation);
// per-file failures live in the report.
func (p *Pipeline) Run(ctx context.Context, files []segment.SourceFile) (*Report, error) {
	start := time.Now()
	results := make([]FileResult, len(files))
	for i, f := range files {
		results[i] = FileResult{RelPath: f.RelPath, Status: StatusPending}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.opts.effectiveConcurrency())
	for i, f := range files {
		i, f := i, f
		g.Go(func() error {
			// Stop admitting new files once the run is aborted; in-flight
			// files have already passed this check and drain normally.
			if gctx.Err() != nil {
				return nil
			}
			res := p.processFile(gctx, f)
			results[i] = res
			p.notify(res)
			if res.Status == StatusFailed && p.opts.StopOnError {
				return fmt.Errorf("%s: %w", f.RelPath, res.Err)
			}
			return nil
		})
	}
	runErr := g.Wait()
	if runErr == nil && ctx.Err() != nil {
		runErr = ctx.Err()
	}

	report := &Report{Duration: time.Since(start), Results: results}
	for _, res := range results {
		switch res.Status {
		case StatusWritten, StatusReassembled:
			report.Succeeded++
		case StatusSkipped:
			report.SkippedEmpty++
		case StatusFailed:
			report.Failed++
		}
	}
	return report, runErr
}

func (p *Pipeline) notify(res FileResult) {
	if p.opts.OnFile == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.opts.OnFile(res)
}

// processFile advances one file through the state machine. It never panics
// the run: every failure becomes a StatusFailed result.
func (p *Pipeline) processFile(ctx context.Context, f segment.SourceFile) FileResult {
	res := FileResult{RelPath: f.RelPath, Status: StatusPending}
	fail := func(err error) FileResult {
		res.Status = StatusFailed
		res.Err = err
		p.logger.Error("file failed", "path", f.RelPath, "err", err)
		if p.opts.PassthroughOnError && !p.opts.DryRun && p.sink != nil {
			if werr := p.sink.Write(f.RelPath, f.Content); werr == nil {
				res.PassedThrough = true
			} else {
				p.logger.Error("passthrough write failed", "path", f.RelPath, "err", werr)
			}
		}
		return res
	}

	// Unclassified files carry no known doc syntax; mirror them untouched.
	if f.Kind == segment.SyntaxUnknown {
		return p.skip(f, res)
	}

	segs, err := extract.Extract(f.Content, f.Kind)
	if err != nil {
		return fail(fmt.Errorf("extract: %w", err))
	}
	res.Status = StatusExtracted

	texts := segment.DocTexts(segs)
	res.DocSpans = len(texts)
	if len(texts) == 0 {
		return p.skip(f, res)
	}

	hint := translate.Hint{Syntax: f.Kind, Path: f.RelPath}
	translated, err := p.translator.Translate(ctx, texts, p.opts.TargetLang, hint)
	if err != nil {
		return fail(fmt.Errorf("translate: %w", err))
	}
	res.Status = StatusTranslated

	content, err := segment.Reassemble(segs, translated)
	if err != nil {
		return fail(fmt.Errorf("reassemble: %w", err))
	}
	res.Status = StatusReassembled

	if p.opts.DryRun {
		p.logger.Info("dry run, not writing", "path", f.RelPath, "spans", res.DocSpans)
		return res
	}
	if err := p.sink.Write(f.RelPath, content); err != nil {
		return fail(fmt.Errorf("write: %w", err))
	}
	res.Status = StatusWritten
	p.logger.Info("file translated", "path", f.RelPath, "spans", res.DocSpans)
	return res
}

func (p *Pipeline) skip(f segment.SourceFile, res FileResult) FileResult {
	res.Status = StatusSkipped
	if !p.opts.DryRun && p.sink != nil {
		if err := p.sink.Write(f.RelPath, f.Content); err != nil {
			res.Status = StatusFailed
			res.Err = fmt.Errorf("write: %w", err)
			return res
		}
	}
	p.logger.Debug("nothing to translate", "path", f.RelPath)
	return res
}
