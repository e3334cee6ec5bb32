// Package cli wires the rankrocket commands.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/FranksOps/rankrocket/internal/config"
	"github.com/FranksOps/rankrocket/internal/logging"
	"github.com/FranksOps/rankrocket/internal/metrics"
	"github.com/FranksOps/rankrocket/internal/storage"
	"github.com/FranksOps/rankrocket/internal/storage/csvbackend"
	"github.com/FranksOps/rankrocket/internal/storage/jsonbackend"
	"github.com/spf13/cobra"
)

// Options are the persistent flags shared by every command.
type Options struct {
	ConfigPath  string
	EnvFile     string
	LogLevel    string
	LogFile     string
	MetricsFile string
	LedgerPath  string

	// endpoint overrides, hidden
	SerpAPIBaseURL string
}

type app struct {
	opts    Options
	out     io.Writer
	errOut  io.Writer
	logger  *slog.Logger
	metrics *metrics.Recorder
	creds   config.Credentials
	cleanup func() error
}

// NewRootCommand builds the command tree. out receives command output and
// errOut receives logs.
func NewRootCommand(out, errOut io.Writer) *cobra.Command {
	return newApp(out, errOut).rootCommand()
}

func newApp(out, errOut io.Writer) *app {
	return &app{out: out, errOut: errOut, cleanup: func() error { return nil }}
}

func (a *app) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "rankrocket",
		Short:         "Local SEO content toolkit",
		Long:          `Generates FAQ pages, GMB keywords, background summaries and keyword volumes for local business clients.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.teardown()
		},
	}
	root.SetOut(a.out)
	root.SetErr(a.errOut)

	pf := root.PersistentFlags()
	pf.StringVarP(&a.opts.ConfigPath, "config", "c", "client_config.json", "client configuration file")
	pf.StringVar(&a.opts.EnvFile, "env-file", ".env", "dotenv file with API credentials")
	pf.StringVar(&a.opts.LogLevel, "log-level", "info", "`debug/info/warn/error`")
	pf.StringVar(&a.opts.LogFile, "log-file", "", "rotate logs into this file instead of stderr")
	pf.StringVar(&a.opts.MetricsFile, "metrics-file", "", "write Prometheus textfile metrics here on exit")
	pf.StringVar(&a.opts.LedgerPath, "ledger", "faq_ledger.jsonl", "FAQ ledger file (.jsonl or .csv), empty to disable")
	pf.StringVar(&a.opts.SerpAPIBaseURL, "serpapi-base-url", "", "override the SerpAPI endpoint")
	_ = pf.MarkHidden("serpapi-base-url")

	root.AddCommand(
		a.faqCommand(),
		a.gmbCommand(),
		a.backgroundCommand(),
		a.volumeCommand(),
		a.adsTokenCommand(),
		a.allCommand(),
		a.historyCommand(),
		a.configCommand(),
	)
	return root
}

func (a *app) setup() error {
	lc := logging.DefaultConfig()
	lc.Level = a.opts.LogLevel
	lc.FilePath = a.opts.LogFile
	logger, cleanup, err := logging.New(lc, a.errOut)
	if err != nil {
		return fmt.Errorf("setup logging: %w", err)
	}
	a.logger = logger
	a.cleanup = cleanup
	a.metrics = metrics.New()

	creds, err := config.LoadCredentials(a.opts.EnvFile)
	if err != nil {
		return err
	}
	a.creds = creds
	return nil
}

func (a *app) teardown() error {
	var errs []error
	if a.opts.MetricsFile != "" {
		errs = append(errs, a.metrics.WriteTextfile(a.opts.MetricsFile))
	}
	errs = append(errs, a.cleanup())
	return errors.Join(errs...)
}

// loadClient reads the client file and checks the named fields.
func (a *app) loadClient(fields ...string) (*config.Client, error) {
	c, err := config.Load(a.opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	if err := c.Require(fields...); err != nil {
		return nil, err
	}
	return c, nil
}

func (a *app) openLedger() (storage.Backend, error) {
	path := a.opts.LedgerPath
	if path == "" {
		return nil, nil
	}
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		return csvbackend.New(path)
	}
	return jsonbackend.New(path)
}

// Execute runs the CLI and returns the process exit code. Failures are
// logged with a plain-language explanation.
func Execute(ctx context.Context, args []string, out, errOut io.Writer) int {
	a := newApp(out, errOut)
	root := a.rootCommand()
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	if err == nil {
		return 0
	}

	// post-run hooks are skipped on failure
	if a.logger != nil {
		a.logger.Error("command failed", "err", err)
		if terr := a.teardown(); terr != nil {
			fmt.Fprintf(errOut, "Error: %v\n", terr)
		}
	}
	fmt.Fprintf(errOut, "Error: %v\nExplanation: %s\n", err, logging.Explain(err))
	return 1
}
