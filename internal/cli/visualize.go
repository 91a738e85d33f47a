package cli

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/historygraph/pkg/cache"
	"github.com/matzehuels/historygraph/pkg/errors"
	pkgio "github.com/matzehuels/historygraph/pkg/io"
	"github.com/matzehuels/historygraph/pkg/pipeline"
	"github.com/matzehuels/historygraph/pkg/scene"
)

// visualizeCommand creates the visualize command for rendering a saved
// scene.
func (c *CLI) visualizeCommand() *cobra.Command {
	var (
		output     string
		formatsStr string
		flags      pipelineFlags
	)

	cmd := &cobra.Command{
		Use:   "visualize [history.scene.json]",
		Short: "Render a scene computed by 'layout'",
		Long: `Render a scene computed by 'layout'.

The scene holds all positions, so this step only paints. The commit DAG is
not part of a scene, so the dot format is not available here; use 'render'
on the history instead.

Use 'render' as a shortcut to go directly from history to images.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := c.options(cmd, args[0], &flags)
			opts.Formats = pipeline.ParseFormats(formatsStr)
			if !cmd.Flags().Changed("format") {
				opts.Formats = []string{pipeline.FormatPNG}
			}
			if err := pipeline.ValidateFormats(opts.Formats); err != nil {
				return err
			}
			if slices.Contains(opts.Formats, pipeline.FormatDOT) {
				return errors.New(errors.ErrCodeUnsupported, "dot output needs the commit history, not a scene")
			}
			return c.runVisualize(cmd.Context(), opts, output, flags.noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output base path (default: input without .scene.json)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): png (default), svg, pdf, json")
	cmd.Flags().BoolVar(&flags.fullPage, "full-page", false, "render PNG as one image of the whole stage")
	flags.addCacheFlags(cmd)
	flags.addRenderFlags(cmd)

	return cmd
}

// runVisualize loads the scene and renders it.
func (c *CLI) runVisualize(ctx context.Context, opts pipeline.Options, output string, noCache bool) error {
	s, err := pkgio.ImportScene(opts.Input)
	if err != nil {
		return fmt.Errorf("load scene %s: %w", opts.Input, err)
	}
	encoded, err := scene.Marshal(s)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, "Rendering "+strings.Join(opts.Formats, ", ")+"...")
	spinner.Start()

	res, err := runner.Render(ctx, s, cache.Hash(encoded), nil, opts)
	if err != nil {
		spinner.StopWithError("Visualization failed")
		return fmt.Errorf("visualize: %w", err)
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	base := output
	if base == "" {
		base = strings.TrimSuffix(opts.Input, ".scene.json")
	}
	files := outputFiles(basePath(base, opts.Input), &pipeline.Result{Artifacts: res.Artifacts, Pages: res.Pages})
	if err := writeFiles(files); err != nil {
		return err
	}

	printSuccess("Rendered %d file(s)", len(files))
	for _, f := range files {
		printFile(f.path)
	}
	printStats(len(s.Commits), 0, res.Hit)
	return nil
}
