// Package cli implements the ragdemo command line.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"ragdemo/internal/config"
	"ragdemo/internal/logger"
	"ragdemo/internal/tui"
)

type options struct {
	cfgFile string
	load    []string
	userID  string

	cfg     *config.AppConfig
	cfgPath string
}

// NewRootCmd builds the ragdemo command tree.
func NewRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:   "ragdemo [files...]",
		Short: "RAG Demo: Vector DB + LLM",
		Long: `ragdemo shows how Retrieval-Augmented Generation works: documents go into an
in-memory vector store, questions retrieve the closest documents, and the
retrieved text is packed into the prompt sent to a hosted model.

Example usage:
  ragdemo                          # Start the terminal UI with an empty knowledge base
  ragdemo notes/*.md               # Preload files, then start the terminal UI
  ragdemo serve --load 'docs/**'   # Serve the HTTP API
  ragdemo ask "What is deep learning?" --mode compare --load docs/intro.txt`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			_ = godotenv.Load()
			var err error
			if opts.cfgFile != "" {
				opts.cfg, err = config.Load(opts.cfgFile)
				opts.cfgPath = opts.cfgFile
			} else {
				opts.cfg, opts.cfgPath, err = config.LoadDefault()
			}
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if opts.userID != "" {
				opts.cfg.Answer.UserID = opts.userID
			}
			return opts.cfg.Validate()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd, opts, args)
		},
	}
	root.PersistentFlags().StringVar(&opts.cfgFile, "config", "", "config file (default is ./ragdemo.yaml, then ~/.config/ragdemo/config.yaml)")
	root.PersistentFlags().StringSliceVar(&opts.load, "load", nil, "glob patterns of files to preload (supports **)")
	root.PersistentFlags().StringVar(&opts.userID, "user-id", "", "user id sent to the model (overrides answer.user_id)")

	root.AddCommand(newServeCmd(opts), newSearchCmd(opts), newAskCmd(opts), newConfigCmd(opts))
	return root
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func runTUI(cmd *cobra.Command, opts *options, args []string) error {
	log, err := logger.ForTUI(opts.cfg.Logging)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx := logger.WithLogger(cmd.Context(), log)
	app, err := newApp(opts.cfg, log)
	if err != nil {
		return err
	}
	banner, err := app.preload(ctx, cmd.ErrOrStderr(), append(opts.load, args...))
	if err != nil {
		return err
	}

	m := tui.New(ctx, app.svc, tui.Options{
		UserID:   opts.cfg.Answer.UserID,
		DefaultK: opts.cfg.Retrieval.SearchDefaultK,
		MaxK:     opts.cfg.Retrieval.SearchMaxK,
		Banner:   banner,
	})
	log.Info("starting terminal UI")
	if _, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run(); err != nil {
		log.Error("terminal UI stopped", zap.Error(err))
		return err
	}
	return nil
}
