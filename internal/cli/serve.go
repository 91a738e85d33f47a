package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/matzehuels/historygraph/internal/server"
	"github.com/matzehuels/historygraph/pkg/config"
	"github.com/matzehuels/historygraph/pkg/pipeline"
)

// serveCommand creates the serve command for the HTTP viewer API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr  string
		watch bool
		flags pipelineFlags
	)

	cmd := &cobra.Command{
		Use:   "serve [history.json]",
		Short: "Serve a commit history over HTTP",
		Long: `Serve a commit history over HTTP.

The history is laid out once at startup and kept in memory. With --watch
it is rebuilt whenever the input file changes; the previous version keeps
being served if a rebuild fails.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("addr") {
				addr = c.cfg.Server.Addr
			}
			if addr == "" {
				addr = config.DefaultAddr
			}
			if !cmd.Flags().Changed("watch") {
				watch = c.cfg.Server.Watch
			}
			return c.runServe(cmd.Context(), c.options(cmd, args[0], &flags), addr, watch, flags.noCache)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, else "+config.DefaultAddr+")")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "rebuild when the input file changes")
	cmd.Flags().BoolVar(&flags.detailed, "detailed", false, "show row, lane and refs in DAG labels")
	flags.addCacheFlags(cmd)
	flags.addLayoutFlags(cmd)
	flags.addRenderFlags(cmd)

	return cmd
}

func (c *CLI) runServe(ctx context.Context, opts pipeline.Options, addr string, watch, noCache bool) error {
	runner, err := c.newRunner(noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	srv, err := server.New(runner, opts, loggerFromContext(ctx))
	if err != nil {
		return err
	}

	spinner := newSpinnerWithContext(ctx, "Building scene...")
	spinner.Start()
	if err := srv.Rebuild(ctx); err != nil {
		spinner.StopWithError("Build failed")
		return err
	}
	spinner.Stop()

	if watch {
		if err := srv.Watch(ctx); err != nil {
			return fmt.Errorf("watch %s: %w", opts.Input, err)
		}
	}

	printSuccess("Serving %s", opts.Input)
	printKeyValue("URL", StyleLink.Render("http://"+addr+"/api/graph"))
	if watch {
		printKeyValue("Watching", opts.Input)
	}
	printNewline()

	err = srv.ListenAndServe(ctx, addr)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
