package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	pkgio "github.com/matzehuels/historygraph/pkg/io"
	"github.com/matzehuels/historygraph/pkg/pipeline"
)

// layoutCommand creates the layout command for computing a scene.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output string
		flags  pipelineFlags
	)

	cmd := &cobra.Command{
		Use:   "layout [history.json]",
		Short: "Compute the scene of a commit history",
		Long: `Compute the scene of a commit history.

The layout command reads a lane-annotated commit document and writes the
scene JSON: lines, commit dots, labels, messages and the total height.
The scene can be rendered with 'visualize'.

Results are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := c.options(cmd, args[0], &flags)
			opts.Formats = []string{pipeline.FormatJSON}
			return c.runLayout(cmd.Context(), opts, output, flags.noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.scene.json)")
	flags.addCacheFlags(cmd)
	flags.addLayoutFlags(cmd)

	return cmd
}

// runLayout computes the scene and writes it as JSON.
func (c *CLI) runLayout(ctx context.Context, opts pipeline.Options, output string, noCache bool) error {
	runner, err := c.newRunner(noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, "Computing layout...")
	spinner.Start()

	result, err := runner.Execute(ctx, opts)
	if err != nil {
		spinner.StopWithError("Layout failed")
		return fmt.Errorf("compute layout: %w", err)
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	outputPath := output
	if outputPath == "" {
		outputPath = strings.TrimSuffix(opts.Input, filepath.Ext(opts.Input)) + ".scene.json"
	}
	if err := pkgio.ExportScene(outputPath, result.Scene); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	printSuccess("Layout complete")
	printFile(outputPath)
	printStats(result.Stats.Commits, result.Import.Dangling, result.CacheInfo.SceneHit)
	printNewline()
	printNextStep("Render", appName+" visualize "+outputPath)

	return nil
}
