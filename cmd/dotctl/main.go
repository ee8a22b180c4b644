// Copyright (C) PortalBilet.
// SPDX-License-Identifier: MIT

// Command dotctl operates the stage/prod deployments: it pulls remote
// Postgres databases to the local instance and inspects workloads
// running in the cluster.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/portalbilet/dotctl/internal/clierr"
	"github.com/portalbilet/dotctl/internal/config"
	"github.com/portalbilet/dotctl/internal/kube"
	"github.com/portalbilet/dotctl/internal/workload"
)

var (
	// BuildTag is set during build
	BuildTag = "dev"
	// BuildDate is set during build
	BuildDate = "unknown"
)

var (
	flagEnv     string
	flagConfig  string
	flagVerbose bool

	logger zerolog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "dotctl",
	Short: "Operate stage/prod deployments",
	Long: `dotctl - operator commands for the stage/prod deployments

dotctl pulls remote Postgres databases to your local instance and
inspects workloads running in the cluster:

  - show     live summary of running apps in an environment
  - pull     dump a remote database and restore it over a local one
  - log      follow an app's logs
  - config   print an app's effective configuration

Configuration is read from config.yml (see --config).

Environment Variables:
  DOTCTL_CONFIG           Path to the config file (default: ./config.yml)
`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger = newLogger(flagVerbose)
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errorPanel(clierr.Pretty(err)))
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagEnv, "env", config.EnvStage, "deployment environment (stage|prod)")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "path to the config file")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("dotctl version %s (built %s)\n", BuildTag, BuildDate)
		},
	})

	rootCmd.AddCommand(&cobra.Command{
		Use:                   "completion [bash|zsh|fish]",
		Short:                 "Generate shell completion script",
		ValidArgs:             []string{"bash", "zsh", "fish"},
		Args:                  cobra.ExactArgs(1),
		DisableFlagsInUseLine: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(os.Stdout)
			case "zsh":
				return cmd.Root().GenZshCompletion(os.Stdout)
			case "fish":
				return cmd.Root().GenFishCompletion(os.Stdout, true)
			default:
				return fmt.Errorf("unsupported shell: %s", args[0])
			}
		},
	})
}

func newLogger(verbose bool) zerolog.Logger {
	level := zerolog.WarnLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	writer := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}
	return zerolog.New(writer).Level(level).With().Timestamp().Logger()
}

// configPath resolves the config file location: flag, then environment,
// then the working directory.
func configPath() string {
	if flagConfig != "" {
		return flagConfig
	}
	if env := os.Getenv("DOTCTL_CONFIG"); env != "" {
		return env
	}
	return "config.yml"
}

func loadConfig() (*config.Config, error) {
	return config.Load(configPath())
}

// cacheDir is where dump files live while a pull is in flight.
func cacheDir() (string, error) {
	base, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("resolve cache dir: %w", err)
	}
	return filepath.Join(base, "dotctl"), nil
}

// newAggregator wires a workload aggregator against the environment's
// cluster.
func newAggregator(envCfg *config.Env) (*workload.Aggregator, error) {
	clientset, err := kube.NewClientset(envCfg.K8s)
	if err != nil {
		return nil, err
	}
	return &workload.Aggregator{Pods: kube.PodLister{Client: clientset}}, nil
}
