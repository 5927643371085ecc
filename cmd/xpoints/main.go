// Package main provides the xpoints CLI entry point.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/okian/xpoints/internal/config"
	"github.com/okian/xpoints/pkg/logger"
)

var version = "dev"

func main() {
	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

// cli holds state shared by every subcommand.
type cli struct {
	configPath string
	cfg        *config.Config
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	root := &cobra.Command{
		Use:   "xpoints",
		Short: "Fantasy points and expected points engine",
		Long: `xpoints scores player-match statistics under a fantasy rule set, compares
realized points with points expected from xG and xA, and exports the results.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.setup(cmd)
		},
	}
	root.PersistentFlags().StringVar(&c.configPath, "config", os.Getenv("XPOINTS_CONFIG"), "Path to a YAML config file")

	root.AddCommand(
		newAnalyzeCmd(c),
		newServeCmd(c),
		newRulesCmd(c),
	)
	return root
}

// setup loads configuration (defaults -> optional file -> env) and sets up logging.
func (c *cli) setup(cmd *cobra.Command) error {
	cfg, err := config.LoadFile(c.configPath)
	if err != nil {
		return err
	}
	c.cfg = cfg
	return logger.Init(
		logger.WithFormat(cfg.LogFormat),
		logger.WithLevel(cfg.LogLevel),
		logger.WithOutput(cmd.ErrOrStderr()),
	)
}
