package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"blazehammer/internal/banner"
	"blazehammer/internal/cli"
	"blazehammer/internal/config"
	"blazehammer/internal/logging"
	"blazehammer/internal/metrics"
	"blazehammer/internal/parsers"
	"blazehammer/internal/placeholder"
	"blazehammer/internal/runner"
	"blazehammer/internal/stats"
	"blazehammer/internal/tui/live"
	"blazehammer/internal/tui/styles"

	apperrors "blazehammer/internal/errors"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const envPrefix = "BLAZEHAMMER"

func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, styles.Error.Render("Error: "+err.Error()))
		os.Exit(1)
	}
}

// newRootCmd builds the command tree. Every invocation gets its own viper so flags,
// config file and environment never leak between runs.
func newRootCmd() *cobra.Command {
	v := viper.New()

	var cfgFile string

	rootCmd := &cobra.Command{
		Use:   "blazehammer [url]",
		Short: "Blaze Hammer - HTTP load generator",
		Long: `
Blaze Hammer fires a fixed number of HTTP requests at one URL with bounded
concurrency and reports latency, throughput and status codes.

Payloads and headers are JSON documents whose strings may carry {placeholders}
that are expanded freshly for every request.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig(v, cfgFile)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := v.BindPFlags(cmd.Flags()); err != nil {
				return err
			}

			return runLoad(cmd, v, args)
		},
	}

	rootCmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), banner.GetString())
		cmd.Usage()
	})

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.blazehammer.yaml)")

	f := rootCmd.Flags()
	f.IntP("requests", "n", 100, "Number of requests to send")
	f.IntP("concurrency", "c", 100, "Maximum requests in flight")
	f.Float64P("delay", "d", 0, "Seconds each request waits before it competes for a slot")
	f.StringP("method", "m", runner.MethodGet, "HTTP method (GET or POST)")
	f.StringP("payload", "p", config.DefaultPayloadFile, "JSON payload document")
	f.String("headers", config.DefaultHeadersFile, "JSON headers document")
	f.Bool("disable-headers", false, "Do not send any custom headers")
	f.String("post-type", runner.PostJSON, "POST body encoding (json or form)")
	f.StringSlice("attach", nil, "File attachment as field=path, repeatable")
	f.Bool("print-payload", false, "Print the payload of every successful request")
	f.Bool("print-headers", false, "Print the headers of every successful request")
	f.Bool("print-response", false, "Print the response of every successful request")
	f.Duration("timeout", runner.DefaultTimeout, "Per-request timeout")
	f.String("parsers", "", "YAML parser tables for printed artifacts")
	f.Bool("tui", false, "Show the live terminal view")
	f.StringP("out", "o", "", "Output filename prefix for the CSV and summary reports")
	f.String("metrics-addr", "", "Serve Prometheus metrics on this address during the run")
	f.String("log-level", "info", "Log level (debug, info, warn, error)")
	f.String("log-format", logging.FormatText, "Log format (text or json)")

	rootCmd.AddCommand(newDiffCmd(), newDummyCmd())

	return rootCmd
}

func initConfig(v *viper.Viper, cfgFile string) error {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			v.AddConfigPath(home)
			v.SetConfigType("yaml")
			v.SetConfigName(".blazehammer")
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile == "" && (errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist)) {
			return nil
		}

		return fmt.Errorf("%w: %v", apperrors.ErrInvalidConfig, err)
	}

	return nil
}

// explicit reports whether a document path came from the user rather than the default.
func explicit(flags *pflag.FlagSet, v *viper.Viper, name, def string) bool {
	return flags.Changed(name) || v.GetString(name) != def
}

// buildConfig turns flags, config file and environment into a runner configuration.
// Documents are read here so a bad file fails before any request is sent.
func buildConfig(cmd *cobra.Command, v *viper.Viper, args []string) (runner.Config, error) {
	cfg := runner.Config{
		URL:         v.GetString("url"),
		Requests:    v.GetInt("requests"),
		Concurrency: v.GetInt("concurrency"),
		Delay:       time.Duration(v.GetFloat64("delay") * float64(time.Second)),
		Method:      strings.ToUpper(v.GetString("method")),
		PostType:    strings.ToLower(v.GetString("post-type")),
		Timeout:     v.GetDuration("timeout"),
		Print: runner.PrintFlags{
			Payload:  v.GetBool("print-payload"),
			Headers:  v.GetBool("print-headers"),
			Response: v.GetBool("print-response"),
		},
	}

	if len(args) > 0 {
		cfg.URL = args[0]
	}

	for _, raw := range v.GetStringSlice("attach") {
		a, err := runner.ParseAttachment(raw)
		if err != nil {
			return cfg, err
		}
		cfg.Attachments = append(cfg.Attachments, a)
	}

	flags := cmd.Flags()

	payloadPath := v.GetString("payload")
	payload, err := config.LoadOptional(payloadPath, explicit(flags, v, "payload", config.DefaultPayloadFile))
	if err != nil {
		return cfg, err
	}
	cfg.Payload = payload

	if !v.GetBool("disable-headers") {
		headersPath := v.GetString("headers")
		doc, err := config.LoadOptional(headersPath, explicit(flags, v, "headers", config.DefaultHeadersFile))
		if err != nil {
			return cfg, err
		}

		if cfg.Headers, err = config.Headers(doc); err != nil {
			return cfg, fmt.Errorf("%s: %w", headersPath, err)
		}
	}

	return cfg, nil
}

func runLoad(cmd *cobra.Command, v *viper.Viper, args []string) error {
	logger, err := logging.Setup(v.GetString("log-level"), v.GetString("log-format"), cmd.ErrOrStderr())
	if err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrInvalidConfig, err)
	}

	cfg, err := buildConfig(cmd, v, args)
	if err != nil {
		return err
	}

	set := parsers.Default()
	if path := v.GetString("parsers"); path != "" {
		if set, err = parsers.Load(path); err != nil {
			return err
		}
	}

	engine := placeholder.NewEngine(placeholder.WithErrorHook(func(tok placeholder.Token, err error) {
		logger.Warn("placeholder rejected", "token", tok.Raw, "error", err)
	}))

	out := cmd.OutOrStdout()
	console := cli.NewConsole(out)
	printer := cli.NewPrinter(console, set, cfg.Print)

	r, err := runner.NewRunner(cfg, make(runner.StatsUpdateChan, 100),
		runner.WithEngine(engine),
		runner.WithOutput(printer.Print),
		runner.WithLogger(logger),
	)
	if err != nil {
		return err
	}

	if addr := v.GetString("metrics-addr"); addr != "" {
		collector := metrics.NewCollector(r.ID)
		r.SetObserver(collector)

		srv := collector.Serve(addr)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			srv.Shutdown(shutdownCtx)
		}()

		logger.Info("metrics endpoint listening", "addr", addr)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cli.PrintHeader(out, r.Cfg, r.ID, time.Now())

	summary, err := execute(ctx, v.GetBool("tui"), console, r)
	if err != nil {
		return err
	}

	console.Print(cli.RenderSummary(summary))

	return cli.WriteReports(console, v.GetString("out"), r, summary)
}

func execute(ctx context.Context, tui bool, console *cli.Console, r *runner.Runner) (stats.Summary, error) {
	if !tui {
		return cli.Run(ctx, console, r), nil
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	return live.Run(ctx, cancel, r)
}
