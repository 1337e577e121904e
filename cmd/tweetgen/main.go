package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/timmy/viralpost/internal/app"
	"github.com/timmy/viralpost/internal/catalog"
	"github.com/timmy/viralpost/internal/config"
	"github.com/timmy/viralpost/internal/logger"
	"github.com/timmy/viralpost/internal/service"
)

var (
	version = "dev"
	commit  = "none"
)

// CLI holds the streams and constructors the commands use.
type CLI struct {
	Out  io.Writer
	Err  io.Writer
	Load func(path string) (*config.Config, error)
	Wire func(ctx context.Context, cfg *config.Config) (*app.App, error)
}

// DefaultCLI writes to the process streams and wires real services.
func DefaultCLI() *CLI {
	return &CLI{
		Out:  os.Stdout,
		Err:  os.Stderr,
		Load: config.Load,
		Wire: app.New,
	}
}

func main() {
	// Logs go to stderr so stdout stays machine readable.
	cfg := logger.LoadFromEnv()
	cfg.Output = os.Stderr
	logger.SetDefaultLogger(logger.New(cfg))
	defer logger.Sync()

	if err := newRootCmd(DefaultCLI()).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd(cli *CLI) *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "tweetgen",
		Short: "Turn raw thoughts into a ranked, ready to post tweet",
		Long: `tweetgen runs the post generation pipeline once and prints the result as JSON.

Examples:
  tweetgen generate --thoughts "my code finally compiled after 50 tries" --pipeline meme
  tweetgen generate -t "shipping on a friday" -p simple --previous "old post one" --previous "old post two"
  tweetgen templates
  tweetgen sessions --limit 5`,
		Version:       fmt.Sprintf("%s (commit: %s)", version, commit),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", os.Getenv("CONFIG_PATH"), "config file path")

	cmd.AddCommand(
		newGenerateCmd(cli, &configPath),
		newTemplatesCmd(cli),
		newSessionsCmd(cli, &configPath),
	)
	return cmd
}

func newGenerateCmd(cli *CLI, configPath *string) *cobra.Command {
	var req service.GenerateRequest

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a post from raw thoughts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			cfg, err := cli.Load(*configPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			a, err := cli.Wire(ctx, cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			res, err := a.Pipeline.Generate(ctx, &req)
			if err != nil {
				return fmt.Errorf("generation failed: %w", err)
			}
			return writeJSON(cli.Out, res)
		},
	}

	cmd.Flags().StringVarP(&req.RawThoughts, "thoughts", "t", "", "raw thoughts to turn into a post (required)")
	cmd.Flags().StringVarP(&req.PipelineType, "pipeline", "p", "simple", "pipeline type (simple, meme)")
	cmd.Flags().StringVarP(&req.MemeStyle, "style", "s", "", "meme style (Indian, Global)")
	cmd.Flags().StringArrayVar(&req.PreviousContent, "previous", nil, "previous post used for voice analysis (repeatable)")
	cmd.Flags().StringVar(&req.SessionID, "session", "", "session id (generated when empty)")
	_ = cmd.MarkFlagRequired("thoughts")

	return cmd
}

func newTemplatesCmd(cli *CLI) *cobra.Command {
	return &cobra.Command{
		Use:   "templates",
		Short: "Print the meme template catalog",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return writeJSON(cli.Out, catalog.Templates())
		},
	}
}

func newSessionsCmd(cli *CLI, configPath *string) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "List recent sessions kept in the database store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := cli.Load(*configPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			a, err := cli.Wire(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			if a.Repository == nil {
				return errors.New("sessions are only listed with session.store=database")
			}
			records, err := a.Repository.ListRecent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			return writeJSON(cli.Out, records)
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "number of sessions to list")
	return cmd
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
