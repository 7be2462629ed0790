package main

import (
	"errors"
	"io/fs"
	"time"

	"github.com/spf13/cobra"

	"github.com/bryanwahyu/checkdeck/internal/application"
	appchecks "github.com/bryanwahyu/checkdeck/internal/application/checks"
	"github.com/bryanwahyu/checkdeck/internal/config"
	"github.com/bryanwahyu/checkdeck/internal/infra/oracle"
)

var Version = "dev"

type rootOptions struct {
	configPath string
	delay      time.Duration
	seed       int64
	plain      bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "checkctl",
		Short:         "Run security checks from the terminal",
		Long:          "checkctl runs the checkdeck security checks locally, one at a time or as a full scan.",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.CompletionOptions.DisableDefaultCmd = true
	root.PersistentFlags().StringVar(&opts.configPath, "config", "config.yaml", "path to the config file")
	root.PersistentFlags().DurationVar(&opts.delay, "delay", 0, "override the simulated probe latency (e.g. 0s, 500ms)")
	root.PersistentFlags().Int64Var(&opts.seed, "seed", 0, "seed for the simulated oracle (0 = random)")
	root.PersistentFlags().BoolVar(&opts.plain, "plain", false, "no spinner, even on a terminal")

	root.AddCommand(newListCmd(opts), newRunCmd(opts))
	return root
}

// loadConfig falls back to defaults only when the default path is missing.
func loadConfig(cmd *cobra.Command, opts *rootOptions) (*config.Config, error) {
	cfg, err := config.Load(opts.configPath)
	if errors.Is(err, fs.ErrNotExist) && !cmd.Flags().Changed("config") {
		cfg, err = config.Default(), nil
	}
	if err != nil {
		return nil, err
	}
	if cmd.Flags().Changed("delay") {
		cfg.Oracle.Delay = opts.delay
	}
	if cmd.Flags().Changed("seed") {
		cfg.Oracle.Seed = opts.seed
	}
	return cfg, nil
}

type engine struct {
	svc   *appchecks.Service
	inbox *inbox
}

func newEngine(cfg *config.Config) (*engine, error) {
	defs := cfg.Definitions()
	reg, err := appchecks.NewRegistry(defs)
	if err != nil {
		return nil, err
	}
	clock := application.SystemClock{}
	probe, err := oracle.FromConfig(cfg, clock, defs)
	if err != nil {
		return nil, err
	}
	box := &inbox{}
	runner := appchecks.NewRunner(reg, probe, box, clock, appchecks.Options{ProbeTimeout: cfg.Oracle.Timeout})
	return &engine{
		svc:   appchecks.NewService(reg, runner, nil, nil, cfg.FeatureList()),
		inbox: box,
	}, nil
}
