package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/jacoelho/yang"
)

const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

// usageError marks errors caused by the command line or config file.
type usageError struct{ err error }

func (e usageError) Error() string { return e.err.Error() }
func (e usageError) Unwrap() error { return e.err }

func usagef(format string, args ...any) error {
	return usageError{err: fmt.Errorf(format, args...)}
}

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return runWithArgs(ctx, os.Args[1:], os.Stdout, os.Stderr)
}

func runWithArgs(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	var (
		configPath string
		flags      config
	)
	cmd := &cobra.Command{
		Use:   "yangctx [flags] source[@revision][#semver] ...",
		Short: "Assemble YANG sources into a schema context",
		Long: `Fetches the named sources from a repository directory or URL, checks
that every import and include is satisfiable within them, builds the schema
context and prints its schema tree.

Sources may also be listed in the config file.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := defaultConfig()
			if configPath != "" {
				fileCfg, err := loadConfig(configPath)
				if err != nil {
					return usageError{err: err}
				}
				cfg = cfg.merge(fileCfg, nil)
			}
			cfg = cfg.merge(flags, cmd.Flags().Changed)
			cfg.Sources = append(cfg.Sources, args...)
			return assemble(cmd.Context(), cfg, stdout, stderr)
		},
	}
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetContext(ctx)
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError{err: err}
	})

	f := cmd.Flags()
	f.StringVarP(&configPath, "config", "c", "", "YAML config file")
	f.StringVarP(&flags.Repository, "repository", "r", "", "source directory or URL (default \".\")")
	f.StringVar(&flags.Mode, "mode", "", "identity mode: plain or semver (default \"plain\")")
	f.StringArrayVar(&flags.Features, "feature", nil, "enable only the named feature, as name or namespace:name (repeatable)")
	f.StringVarP(&flags.Format, "format", "o", "", "output format: text or json (default \"text\")")
	f.DurationVar(&flags.FetchTimeout, "timeout", 0, "fetch timeout (0 disables)")
	f.StringVar(&flags.LogLevel, "log-level", "", "log level: debug, info, warn or error (default \"warn\")")

	err := cmd.Execute()
	var silent silentError
	switch {
	case err == nil:
		return exitOK
	case errors.As(err, &silent):
		return exitFailure
	}
	if writeErr := writef(stderr, "error: %v\n", err); writeErr != nil {
		return exitFailure
	}
	var uerr usageError
	if errors.As(err, &uerr) {
		_ = writeln(stderr, cmd.UsageString())
		return exitUsage
	}
	return exitFailure
}

func assemble(ctx context.Context, cfg config, stdout, stderr io.Writer) error {
	if err := cfg.validate(); err != nil {
		return usageError{err: err}
	}
	mode, err := yang.ParseMode(cfg.Mode)
	if err != nil {
		return usageError{err: err}
	}
	ids := make([]yang.SourceIdentifier, len(cfg.Sources))
	for i, s := range cfg.Sources {
		id, err := yang.ParseSourceIdentifier(s)
		if err != nil {
			return usagef("source %q: %w", s, err)
		}
		ids[i] = id
	}
	logger, err := newLogger(cfg.LogLevel, stderr)
	if err != nil {
		return usageError{err: err}
	}
	defer func() { _ = logger.Sync() }()

	var features yang.FeaturePredicate
	if len(cfg.Features) > 0 {
		features = yang.EnabledFeatures(cfg.Features...)
	}
	factory, err := yang.NewFactory(yang.NewURLRepository(cfg.Repository), yang.NewFactoryOptions().
		WithLogger(logger).
		WithFetchTimeout(cfg.FetchTimeout))
	if err != nil {
		return usageError{err: err}
	}

	sc, err := factory.CreateSchemaContext(ctx, ids, mode, features)
	if err != nil {
		if writeErr := writeDiagnostics(cfg.Format, stdout, stderr, err); writeErr != nil {
			return errors.Join(err, writeErr)
		}
		return silentError{err: err}
	}
	return writeContext(cfg.Format, stdout, sc)
}

// silentError is a failure whose diagnostics were already written.
type silentError struct{ err error }

func (e silentError) Error() string { return e.err.Error() }
func (e silentError) Unwrap() error { return e.err }

func newLogger(level string, w io.Writer) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	encoder := zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	core := zapcore.NewCore(encoder, zapcore.AddSync(w), zap.NewAtomicLevelAt(lvl))
	return zap.New(core), nil
}

func writef(w io.Writer, format string, args ...any) error {
	_, err := fmt.Fprintf(w, format, args...)
	return err
}

func writeln(w io.Writer, args ...any) error {
	_, err := fmt.Fprintln(w, args...)
	return err
}
