// xmltrans — translates Android strings.xml resource files between languages
// while preserving XML structure and printf-style placeholders.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/Gorgorito12/WoL-traduccion-IA/android"
	"github.com/Gorgorito12/WoL-traduccion-IA/charset"
	"github.com/Gorgorito12/WoL-traduccion-IA/config"
	"github.com/Gorgorito12/WoL-traduccion-IA/i18n"
	"github.com/Gorgorito12/WoL-traduccion-IA/langmeta"
	"github.com/Gorgorito12/WoL-traduccion-IA/translate"
)

// Version information (set via -ldflags during build)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	labelInfo  = color.New(color.FgBlue).Sprint("[INFO]")
	labelOK    = color.New(color.FgGreen).Sprint("[OK]")
	labelWarn  = color.New(color.FgYellow, color.Bold).Sprint("[WARN]")
	labelError = color.New(color.FgRed).Sprint("[ERROR]")
)

func logInfo(format string, args ...any) {
	fmt.Fprintf(os.Stderr, labelInfo+" "+format+"\n", args...)
}

func logSuccess(format string, args ...any) {
	fmt.Fprintf(os.Stderr, labelOK+" "+format+"\n", args...)
}

func logWarning(format string, args ...any) {
	fmt.Fprintf(os.Stderr, labelWarn+" "+format+"\n", args...)
}

func logError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, labelError+" "+format+"\n", args...)
}

// ---------------------------------------------------------------------------
// Flags
// ---------------------------------------------------------------------------

type cliFlags struct {
	source             string
	target             string
	maxChars           int
	maxRetries         int
	provider           string
	model              string
	apiKey             string
	baseURL            string
	timeout            time.Duration
	configPath         string
	omitUntranslatable bool
	verbose            bool
	noProgress         bool
}

// ---------------------------------------------------------------------------
// Root command
// ---------------------------------------------------------------------------

func newRootCmd() *cobra.Command {
	flags := &cliFlags{}

	root := &cobra.Command{
		Use:   "xmltrans <input-path> <output-path>",
		Short: "Translate Android strings.xml files between languages",
		Long: `xmltrans — translate Android strings.xml resource files.

Reads a strings.xml file (UTF-8 or UTF-16, detected automatically),
translates the text of <string>, <string-array>, and <plurals> resources
with an external translation service, and writes UTF-8 output with Unix
line endings. Format placeholders (%1$s, %d, \n …) survive translation
untouched; comments, attributes, and element order round-trip unchanged.

Providers:
  google   Free Google Translate web endpoint (default, no credentials)
  openai   Any OpenAI-compatible chat completions endpoint (--api-key)`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTranslate(cmd.Context(), args[0], args[1], flags)
		},
	}

	root.Flags().StringVar(&flags.source, "source", "", "source language code (default en)")
	root.Flags().StringVar(&flags.target, "target", "", "target language code (default es)")
	root.Flags().IntVar(&flags.maxChars, "max-chars", 0, "max characters per translation request (default 3500)")
	root.Flags().IntVar(&flags.maxRetries, "max-retries", 0, "max retries per chunk (default 3)")
	root.Flags().StringVar(&flags.provider, "provider", "", "translation provider: google or openai (default google)")
	root.Flags().StringVar(&flags.model, "model", "", "model identifier (openai provider)")
	root.Flags().StringVar(&flags.apiKey, "api-key", "", "API key (openai provider; also $XMLTRANS_API_KEY)")
	root.Flags().StringVar(&flags.baseURL, "base-url", "", "override the provider API base URL")
	root.Flags().DurationVar(&flags.timeout, "timeout", 0, "per-request timeout")
	root.Flags().StringVar(&flags.configPath, "config", "", "path to .xmltrans.yaml (default: next to input file)")
	root.Flags().BoolVar(&flags.omitUntranslatable, "omit-untranslatable", false, "drop translatable=\"false\" resources from the output")
	root.Flags().BoolVarP(&flags.verbose, "verbose", "v", false, "verbose logging")
	root.Flags().BoolVar(&flags.noProgress, "no-progress", false, "disable the progress bar")

	root.AddCommand(
		newLanguagesCmd(),
		newVersionCmd(),
	)

	return root
}

func main() {
	i18n.Init("")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		logError("%v", err)
		os.Exit(1)
	}
}

// ---------------------------------------------------------------------------
// version / languages
// ---------------------------------------------------------------------------

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("xmltrans version %s\n", version)
			fmt.Printf("  commit:    %s\n", commit)
			fmt.Printf("  built:     %s\n", date)
		},
	}
}

func newLanguagesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "languages",
		Short: "List known language codes",
		Run: func(cmd *cobra.Command, args []string) {
			for _, code := range langmeta.Codes() {
				fmt.Printf("  %-6s %s\n", code, langmeta.Name(code))
			}
		},
	}
}

// ---------------------------------------------------------------------------
// Translation pipeline
// ---------------------------------------------------------------------------

func runTranslate(ctx context.Context, inputPath, outputPath string, flags *cliFlags) error {
	settings, err := resolveSettings(inputPath, flags)
	if err != nil {
		return err
	}
	for _, code := range []string{settings.Source, settings.Target} {
		if !langmeta.Known(code) {
			logWarning("unrecognized language code %q, passing it to the provider as-is", code)
		}
	}

	raw, err := os.ReadFile(inputPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf(i18n.T("Input file not found: %s"), inputPath)
		}
		return fmt.Errorf("reading %s: %w", inputPath, err)
	}

	text, enc, err := charset.Decode(raw)
	if err != nil {
		return err
	}
	if flags.verbose {
		logInfo(i18n.T("Detected %s input"), enc)
	}

	doc, err := android.Parse(text)
	if err != nil {
		return err
	}

	units := translate.BuildUnits(doc)
	if len(units) == 0 {
		return errors.New(i18n.T("Nothing to translate"))
	}
	unique := map[string]struct{}{}
	for _, u := range units {
		unique[u.Source] = struct{}{}
	}
	logInfo(i18n.T("Translating %d strings (%d unique) to %s (%s)"),
		len(units), len(unique), settings.Target, langmeta.Name(settings.Target))

	var bar *progressbar.ProgressBar
	if !flags.noProgress {
		settings.OnProgress = func(done, total int) {
			if bar == nil {
				bar = progressbar.NewOptions(total,
					progressbar.OptionSetDescription(i18n.T("Translating")),
					progressbar.OptionSetWriter(os.Stderr),
					progressbar.OptionClearOnFinish(),
				)
			}
			bar.Set(done)
		}
	}
	settings.OnWarn = logWarning
	if flags.verbose {
		settings.OnLog = logInfo
		settings.Verbose = true
	}

	if err := translate.Translate(ctx, doc, *settings); err != nil {
		return err
	}
	if bar != nil {
		bar.Finish()
	}

	out := doc.Marshal(android.MarshalOptions{OmitUntranslatable: flags.omitUntranslatable})
	if dir := filepath.Dir(outputPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}
	}
	if err := os.WriteFile(outputPath, out, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", outputPath, err)
	}

	logSuccess(i18n.T("Done: %s"), outputPath)
	return nil
}

// resolveSettings layers option sources: built-in defaults, then the
// .xmltrans.yaml config (explicit path or next to the input file), then
// command-line flags.
func resolveSettings(inputPath string, flags *cliFlags) (*translate.Options, error) {
	cfgPath := flags.configPath
	explicit := cfgPath != ""
	if !explicit {
		cfgPath = filepath.Join(filepath.Dir(inputPath), config.FileName)
	}
	cfg, err := config.Load(cfgPath, explicit)
	if err != nil {
		return nil, err
	}

	opts := &translate.Options{
		Source:     "en",
		Target:     "es",
		MaxChars:   cfg.MaxChars,
		MaxRetries: cfg.MaxRetries,
	}
	if cfg.SourceLang != "" {
		opts.Source = cfg.SourceLang
	}
	if cfg.TargetLang != "" {
		opts.Target = cfg.TargetLang
	}
	if flags.source != "" {
		opts.Source = flags.source
	}
	if flags.target != "" {
		opts.Target = flags.target
	}
	if flags.maxChars > 0 {
		opts.MaxChars = flags.maxChars
	}
	if flags.maxRetries > 0 {
		opts.MaxRetries = flags.maxRetries
	}
	opts.Source = langmeta.Normalize(opts.Source)
	opts.Target = langmeta.Normalize(opts.Target)

	providerID := translate.ProviderGoogle
	if cfg.Provider.ID != "" {
		providerID = cfg.Provider.ID
	}
	if flags.provider != "" {
		providerID = flags.provider
	}
	defaults := translate.DefaultProviders()
	prov, ok := defaults[providerID]
	if !ok {
		return nil, fmt.Errorf("unknown provider %q (want google or openai)", providerID)
	}

	if cfg.Provider.BaseURL != "" {
		prov.BaseURL = cfg.Provider.BaseURL
	}
	if cfg.Provider.Model != "" {
		prov.Model = cfg.Provider.Model
	}
	if cfg.Provider.APIKey != "" {
		prov.APIKey = cfg.Provider.APIKey
	}
	if cfg.Provider.Proxy != "" {
		prov.Proxy = cfg.Provider.Proxy
	}
	if t := cfg.Provider.Timeout(); t > 0 {
		prov.Timeout = t
	}
	if key := os.Getenv("XMLTRANS_API_KEY"); key != "" {
		prov.APIKey = key
	}
	if flags.baseURL != "" {
		prov.BaseURL = flags.baseURL
	}
	if flags.model != "" {
		prov.Model = flags.model
	}
	if flags.apiKey != "" {
		prov.APIKey = flags.apiKey
	}
	if flags.timeout > 0 {
		prov.Timeout = flags.timeout
	}

	opts.Provider = prov
	return opts, nil
}
