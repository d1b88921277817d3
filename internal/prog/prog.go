// Public domain.

// Package prog implements the obs80 command.
package prog

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/soniakeys/exit"
	"github.com/spf13/cobra"

	"github.com/soniakeys/obs80/internal/config"
)

const versionString = "obs80 version 0.1"

// Main runs the command with os.Args and exits on error.
func Main() {
	defer exit.Handler()

	cfg, err := config.Load()
	if err != nil {
		exit.Log(err)
	}
	log := logrus.New()
	initLogger(log, cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := newRootCmd(cfg, log)
	if err := root.ExecuteContext(ctx); err != nil {
		if isBrokenPipe(err) {
			return // reader went away, as with head
		}
		exit.Log(err)
	}
}

func initLogger(log *logrus.Logger, cfg *config.Config) {
	log.SetOutput(os.Stderr)
	level, err := logrus.ParseLevel(cfg.Logger.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)

	if cfg.Logger.Format == "json" {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
}

// app carries what the subcommands share.
type app struct {
	cfg *config.Config
	log *logrus.Logger
}

func newRootCmd(cfg *config.Config, log *logrus.Logger) *cobra.Command {
	a := &app{cfg: cfg, log: log}
	root := &cobra.Command{
		Use:   "obs80",
		Short: "Select and rewrite MPC 80 column observations",
		Long: `obs80 reads astrometric observations in the MPC 80 column format.

It selects subsets by position, time, designation, observatory code, and
magnitude, writing the selected lines exactly as they were read.`,
		Version:       versionString,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(a.filterCmd(), a.listCmd(), a.checkCmd(), a.obscodesCmd())
	return root
}

// openInput opens fn, or stdin for "-".
func openInput(cmd *cobra.Command, fn string) (io.ReadCloser, error) {
	if fn == "-" {
		return io.NopCloser(cmd.InOrStdin()), nil
	}
	return os.Open(fn)
}

// isBrokenPipe reports whether the reader of our output closed early.
func isBrokenPipe(err error) bool {
	return err != nil && (errors.Is(err, syscall.EPIPE) || errors.Is(err, io.ErrClosedPipe))
}
