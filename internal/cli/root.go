// Package cli is the ollamaproxy command line: serving the gateway plus a
// few inspection subcommands.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"ollamaproxy/internal/config"
)

// Version is stamped at build time with -ldflags "-X ollamaproxy/internal/cli.Version=...".
var Version = "dev"

// Options carries process inputs so tests can run commands in isolation.
type Options struct {
	Getenv config.Getenv
	Stdout io.Writer
	Stderr io.Writer
}

// fnServe is swapped out in tests.
var fnServe = serve

// flags holds raw flag values; only flags the user set override the config.
type flags struct {
	configPath  string
	envFile     string
	logLevel    string
	logFormat   string
	addr        string
	upstreamURL string
	catalogFile string
	corsOrigins string
}

func buildRootCmdWith(opts Options) *cobra.Command {
	var f flags
	root := &cobra.Command{
		Use:           "ollamaproxy",
		Short:         "Serve the Ollama API on top of an OpenAI-compatible backend",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd, &f, opts.Getenv)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			log := newLogger(opts.Stderr, cfg.LogFormat, cfg.LogLevel)
			return fnServe(cmd.Context(), cfg, log, nil)
		},
	}
	root.SetOut(opts.Stdout)
	root.SetErr(opts.Stderr)

	pf := root.PersistentFlags()
	pf.StringVar(&f.configPath, "config", "", "Config file (.yaml, .yml, .json, .toml)")
	pf.StringVar(&f.envFile, "env-file", ".env", "dotenv file read beneath the process environment; missing is fine")
	pf.StringVar(&f.logLevel, "log-level", "", "Log level: debug|info|warn|error")
	pf.StringVar(&f.logFormat, "log-format", "", "Log format: console|json")
	pf.StringVar(&f.catalogFile, "catalog-file", "", "Model catalog served on /api/tags")

	rf := root.Flags()
	rf.StringVar(&f.addr, "addr", "", "HTTP listen address (default :11434)")
	rf.StringVar(&f.upstreamURL, "upstream-url", "", "OpenAI-compatible base URL")
	rf.StringVar(&f.corsOrigins, "cors-origins", "", "Comma-separated allowed CORS origins; enables CORS")

	catalogCmd := &cobra.Command{
		Use:   "catalog",
		Short: "Print the model catalog served on /api/tags",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd, &f, opts.Getenv)
			if err != nil {
				return err
			}
			cat, err := loadCatalog(cfg)
			if err != nil {
				return err
			}
			format, _ := cmd.Flags().GetString("output")
			return printValue(cmd.OutOrStdout(), format, cat.Tags())
		},
	}
	catalogCmd.Flags().StringP("output", "o", "json", "Output format: json|yaml")

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration with secrets redacted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd, &f, opts.Getenv)
			if err != nil {
				return err
			}
			if cfg.APIKey != "" {
				cfg.APIKey = "<redacted>"
			}
			return printValue(cmd.OutOrStdout(), "yaml", cfg)
		},
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the build version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd, &f, opts.Getenv)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "ollamaproxy %s (reports Ollama %s)\n", Version, cfg.ReportedVersion)
			return err
		},
	}

	root.AddCommand(catalogCmd, configCmd, versionCmd)
	return root
}

// resolveConfig layers config file, .env and environment, then the flags the
// user actually set.
func resolveConfig(cmd *cobra.Command, f *flags, getenv config.Getenv) (config.Config, error) {
	cfg, err := config.Resolve(f.configPath, f.envFile, getenv)
	if err != nil {
		return cfg, err
	}
	changed := func(name string) bool {
		fl := cmd.Flags().Lookup(name)
		return fl != nil && fl.Changed
	}
	if changed("log-level") {
		cfg.LogLevel = f.logLevel
	}
	if changed("log-format") {
		cfg.LogFormat = f.logFormat
	}
	if changed("catalog-file") {
		cfg.CatalogFile = f.catalogFile
	}
	if changed("addr") {
		cfg.Addr = f.addr
	}
	if changed("upstream-url") {
		cfg.UpstreamURL = f.upstreamURL
	}
	if changed("cors-origins") {
		cfg.CORSAllowedOrigins = config.SplitCSV(f.corsOrigins)
		cfg.CORSEnabled = len(cfg.CORSAllowedOrigins) > 0
	}
	return cfg, nil
}

func printValue(w io.Writer, format string, v any) error {
	switch strings.ToLower(format) {
	case "yaml", "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	case "json", "":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	default:
		return fmt.Errorf("unknown output format %q (want json or yaml)", format)
	}
}

// MainWithArgs runs the command line and returns the process exit code.
func MainWithArgs(args []string) int {
	return mainWith(args, Options{Getenv: os.Getenv, Stdout: os.Stdout, Stderr: os.Stderr})
}

func mainWith(args []string, opts Options) int {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	root := buildRootCmdWith(opts)
	root.SetArgs(args)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(opts.Stderr, err.Error())
		return 1
	}
	return 0
}

// Main returns an exit code for use by cmd/ollamaproxy.
func Main() int { return MainWithArgs(os.Args[1:]) }
