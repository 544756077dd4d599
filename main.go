// dokit (Documentation Translation Kit) translates the documentation
// embedded in a source tree (comments, docstrings, markdown prose) into a
// target language while leaving all code byte-for-byte identical.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dokit-tools/dokit/cache"
	"github.com/dokit-tools/dokit/config"
	"github.com/dokit-tools/dokit/i18n"
	"github.com/dokit-tools/dokit/langmeta"
	"github.com/dokit-tools/dokit/pipeline"
	"github.com/dokit-tools/dokit/report"
	"github.com/dokit-tools/dokit/scan"
	"github.com/dokit-tools/dokit/segment"
	"github.com/dokit-tools/dokit/translate"
	"github.com/dokit-tools/dokit/writer"
)

// Version information (set via -ldflags during build)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// ANSI colors
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[0;31m"
	colorGreen  = "\033[0;32m"
	colorYellow = "\033[1;33m"
	colorBlue   = "\033[0;34m"
)

func logInfo(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorBlue+"[INFO]"+colorReset+" "+format+"\n", args...)
}

func logSuccess(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorGreen+"[OK]"+colorReset+" "+format+"\n", args...)
}

func logWarning(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorYellow+"[WARN]"+colorReset+" "+format+"\n", args...)
}

func logError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorRed+"[ERROR]"+colorReset+" "+format+"\n", args...)
}

// progressBar renders an ANSI bar for done/total files.
func progressBar(percent, width int) string {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	filled := width * percent / 100
	color := colorRed
	switch {
	case percent >= 100:
		color = colorGreen
	case percent >= 34:
		color = colorYellow
	}
	return fmt.Sprintf("%s%s%s%s %3d%%",
		color,
		strings.Repeat("█", filled),
		strings.Repeat("░", width-filled),
		colorReset,
		percent)
}

// ---------------------------------------------------------------------------
// Root command
// ---------------------------------------------------------------------------

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "dokit",
		Short: i18n.T("Translate documentation embedded in a source tree"),
		Long: `dokit: Documentation Translation Kit.

Walks a source tree, extracts the human-readable documentation (line and
block comments, Python docstrings, markdown prose), translates it with an
AI provider, and writes a mirrored tree where only the documentation text
changed. Code, markup, and whitespace survive byte-for-byte.

Commands:
  translate   Translate a source tree into a target language
  scan        Preview which files would be processed and how
  version     Show version information

Providers:
  openai   OpenAI (OPENAI_API_KEY)
  groq     Groq (GROQ_API_KEY)
  ollama   Ollama local server, no key needed
  gemini   Google AI (GEMINI_API_KEY)
  custom   Any OpenAI-compatible endpoint (--base-url)`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newTranslateCmd(),
		newScanCmd(),
		newVersionCmd(),
	)

	return root
}

func main() {
	i18n.Init("")
	config.Init()
	if err := newRootCmd().Execute(); err != nil {
		logError("%v", err)
		os.Exit(1)
	}
}

// ---------------------------------------------------------------------------
// version
// ---------------------------------------------------------------------------

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  `Display version, commit hash, and build date.`,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("dokit version %s\n", version)
			fmt.Printf("  commit:    %s\n", commit)
			fmt.Printf("  built:     %s\n", date)
		},
	}
}

// ---------------------------------------------------------------------------
// scan (read-only classification preview)
// ---------------------------------------------------------------------------

func newScanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Preview which files would be processed and how",
		Long: `Walk the source tree and show the syntax family assigned to each file.
Does not modify any files and needs no provider configuration.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			src, _ := cmd.Flags().GetString(config.KeySource)
			return runScan(src)
		},
	}
	cmd.Flags().String(config.KeySource, ".", "Source tree root")
	return cmd
}

func runScan(src string) error {
	files, err := scan.Walk(src)
	if err != nil {
		return err
	}

	counts := map[segment.SyntaxKind]int{}
	for _, f := range files {
		counts[f.Kind]++
		fmt.Printf("%-15s %s\n", f.Kind, f.RelPath)
	}
	fmt.Fprintln(os.Stderr, strings.Repeat("─", 60))
	for _, kind := range []segment.SyntaxKind{
		segment.SyntaxMarkdown, segment.SyntaxBlockComments,
		segment.SyntaxLineComments, segment.SyntaxDocstrings,
		segment.SyntaxUnknown,
	} {
		if counts[kind] > 0 {
			fmt.Fprintf(os.Stderr, "  %-15s %d\n", kind, counts[kind])
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// translate
// ---------------------------------------------------------------------------

func newTranslateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "translate",
		Short: "Translate a source tree into a target language",
		Long: `Translate all embedded documentation under --source and mirror the tree
under --output. Files without documentation (and files dokit cannot
segment) are copied through unchanged.

Configuration precedence: flags > DOKIT_* environment > dokit.yaml.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			config.BindFlags(cmd.Flags())
			reportPath, _ := cmd.Flags().GetString("report")
			return runTranslate(config.Load(), reportPath)
		},
	}

	flags := cmd.Flags()
	flags.StringP(config.KeyTargetLang, "l", "", "Target language (code or name, e.g. fr, pt_BR, French)")
	flags.StringP(config.KeySource, "s", ".", "Source tree root")
	flags.StringP(config.KeyOutput, "o", "translated", "Output directory (mirrored tree)")
	flags.String(config.KeyProvider, "openai", "Translation provider (openai, groq, ollama, gemini, custom)")
	flags.String(config.KeyModel, "", "Model identifier (provider default if empty)")
	flags.String(config.KeyAPIKey, "", "API key (falls back to provider env variable)")
	flags.String(config.KeyBaseURL, "", "API base URL override")
	flags.Int(config.KeyConcurrency, 4, "Parallel file workers")
	flags.Duration(config.KeyTimeout, 0, "Per-request timeout (provider default if zero)")
	flags.Int(config.KeyMaxRetries, 3, "Retries per failed request")
	flags.Int(config.KeyChunkSize, 40, "Fragments per request")
	flags.Bool(config.KeyStopOnError, false, "Abort the run on the first failed file")
	flags.Bool(config.KeyPassthrough, false, "Write failed files untranslated (still counted as failed)")
	flags.Bool(config.KeyNoCache, false, "Bypass the translation cache")
	flags.String(config.KeyCachePath, ".dokit-cache.db", "Translation cache database")
	flags.Bool(config.KeyDryRun, false, "Translate but do not write output")
	flags.BoolP(config.KeyVerbose, "v", false, "Verbose progress output")
	flags.String("report", "", "Write a YAML run report to this path")

	return cmd
}

func runTranslate(cfg config.Config, reportPath string) error {
	if cfg.TargetLang == "" {
		return fmt.Errorf("--target-language is required")
	}
	logger := config.NewLogger(cfg.Verbose)

	prov, err := translate.ResolveProvider(cfg.Provider, cfg.Model, cfg.APIKey, cfg.BaseURL, cfg.Timeout)
	if err != nil {
		return err
	}
	backend, err := translate.NewBackend(prov)
	if err != nil {
		return err
	}

	var tr translate.Translator = translate.NewClient(backend, translate.Options{
		ChunkSize:  cfg.ChunkSize,
		MaxRetries: cfg.MaxRetries,
		Timeout:    prov.Timeout,
		Verbose:    cfg.Verbose,
		OnLog: func(format string, args ...any) {
			logger.Info(fmt.Sprintf(format, args...))
		},
	})

	if !cfg.NoCache {
		store, err := cache.Open(cfg.CachePath)
		if err != nil {
			return err
		}
		defer store.Close()
		tr = &cache.Translator{Next: tr, Store: store, Provider: prov.ID, Model: prov.Model}
	}

	logInfo("%s", i18n.T("Scanning source tree..."))
	sources, err := loadSources(cfg.Source, cfg.Output)
	if err != nil {
		return err
	}
	if len(sources) == 0 {
		logWarning("%s", i18n.T("Nothing to translate"))
		return nil
	}
	meta := langmeta.Resolve(cfg.TargetLang)
	logInfo(i18n.N("%d file", "%d files", len(sources))+" → %s %s",
		len(sources), meta.Flag, meta.Name)

	// Graceful cancellation: stop admitting files, drain in-flight work.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)
	go func() {
		<-sigCh
		logWarning("Interrupted, draining in-flight files...")
		cancel()
	}()

	done := 0
	p := pipeline.New(tr, writer.New(cfg.Output), pipeline.Options{
		TargetLang:         cfg.TargetLang,
		Concurrency:        cfg.Concurrency,
		StopOnError:        cfg.StopOnError,
		PassthroughOnError: cfg.PassthroughOnError,
		DryRun:             cfg.DryRun,
		Logger:             logger,
		OnFile: func(res pipeline.FileResult) {
			done++
			if cfg.Verbose {
				logInfo("%s %-11s %s", progressBar(done*100/len(sources), 20), res.Status, res.RelPath)
			}
		},
	})

	rep, runErr := p.Run(ctx, sources)
	report.Render(os.Stderr, rep, cfg.TargetLang)
	if reportPath != "" {
		if err := writeYAMLReport(reportPath, rep, cfg.TargetLang); err != nil {
			logWarning("could not write report: %v", err)
		}
	}

	if runErr != nil {
		return runErr
	}
	if rep.Failed > 0 {
		return errors.New(fmt.Sprintf(i18n.N("%d file failed", "%d files failed", rep.Failed), rep.Failed))
	}
	logSuccess("%s", i18n.T("Translation complete"))
	return nil
}

// loadSources walks the source tree and reads every file, excluding
// anything already under the output directory when it nests inside the
// source tree.
func loadSources(srcRoot, outRoot string) ([]segment.SourceFile, error) {
	files, err := scan.Walk(srcRoot)
	if err != nil {
		return nil, err
	}

	skipPrefix := nestedOutputPrefix(srcRoot, outRoot)

	var sources []segment.SourceFile
	for _, f := range files {
		if skipPrefix != "" && (f.RelPath == skipPrefix || strings.HasPrefix(f.RelPath, skipPrefix+"/")) {
			continue
		}
		sf, err := scan.Load(srcRoot, f)
		if err != nil {
			return nil, err
		}
		sources = append(sources, sf)
	}
	return sources, nil
}

// nestedOutputPrefix returns the output directory as a slash-separated
// path relative to the source root, or "" when it lies outside.
func nestedOutputPrefix(srcRoot, outRoot string) string {
	absSrc, err := filepath.Abs(srcRoot)
	if err != nil {
		return ""
	}
	absOut, err := filepath.Abs(outRoot)
	if err != nil {
		return ""
	}
	rel, err := filepath.Rel(absSrc, absOut)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return ""
	}
	return filepath.ToSlash(rel)
}

func writeYAMLReport(path string, rep *pipeline.Report, targetLang string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return report.WriteYAML(f, rep, targetLang)
}
