package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/historygraph/pkg/pipeline"
)

// renderCommand creates the render command for writing artifacts.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		output     string
		formatsStr string
		flags      pipelineFlags
	)

	cmd := &cobra.Command{
		Use:   "render [history.json]",
		Short: "Render a commit history to JSON, PNG, SVG, PDF or DOT",
		Long: `Render a commit history.

Formats (comma-separated with -f):
  json  scene JSON
  png   one image per viewport page (<base>-1.png, <base>-2.png, ...)
        or a single image of the whole stage with --full-page
  svg   the whole stage as SVG
  pdf   the whole stage as PDF (requires rsvg-convert)
  dot   graphviz node-link diagram of the commit DAG, as SVG`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := c.options(cmd, args[0], &flags)
			if cmd.Flags().Changed("format") {
				opts.Formats = pipeline.ParseFormats(formatsStr)
			}
			if err := pipeline.ValidateFormats(opts.Formats); err != nil {
				return err
			}
			return c.runRender(cmd.Context(), opts, output, flags.noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output base path (default: input without extension)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): json (default), png, svg, pdf, dot")
	cmd.Flags().BoolVar(&flags.fullPage, "full-page", false, "render PNG as one image of the whole stage")
	cmd.Flags().BoolVar(&flags.detailed, "detailed", false, "show row, lane and refs in DOT labels")
	flags.addCacheFlags(cmd)
	flags.addLayoutFlags(cmd)
	flags.addRenderFlags(cmd)

	return cmd
}

// runRender executes the pipeline and writes one file per artifact.
func (c *CLI) runRender(ctx context.Context, opts pipeline.Options, output string, noCache bool) error {
	runner, err := c.newRunner(noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, "Rendering "+strings.Join(opts.Formats, ", ")+"...")
	spinner.Start()

	result, err := runner.Execute(ctx, opts)
	if err != nil {
		spinner.StopWithError("Render failed")
		return err
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	files := outputFiles(basePath(output, opts.Input), result)
	if err := writeFiles(files); err != nil {
		return err
	}

	printSuccess("Rendered %d file(s)", len(files))
	for _, f := range files {
		printFile(f.path)
	}
	printStats(result.Stats.Commits, result.Import.Dangling, result.CacheInfo.SceneHit && result.CacheInfo.RenderHit)
	printDetail("layout %s · render %s", result.Stats.LayoutTime, result.Stats.RenderTime)
	if result.Stats.Pages > 1 {
		printNewline()
		printNextStep("Browse pages", appName+" view "+opts.Input)
	}
	return nil
}

// outputFile is one artifact to write.
type outputFile struct {
	path string
	data []byte
}

// outputFiles names the artifacts of a run. Multi-page PNG output gets
// one numbered file per page; DOT output is an SVG document.
func outputFiles(base string, result *pipeline.Result) []outputFile {
	var files []outputFile
	for _, format := range []string{pipeline.FormatJSON, pipeline.FormatPNG, pipeline.FormatSVG, pipeline.FormatPDF, pipeline.FormatDOT} {
		data, ok := result.Artifacts[format]
		if !ok {
			continue
		}
		switch {
		case format == pipeline.FormatJSON:
			files = append(files, outputFile{base + ".scene.json", data})
		case format == pipeline.FormatPNG && len(result.Pages) > 1:
			for i, page := range result.Pages {
				files = append(files, outputFile{fmt.Sprintf("%s-%d.png", base, i+1), page})
			}
		case format == pipeline.FormatDOT:
			files = append(files, outputFile{base + ".dag.svg", data})
		default:
			files = append(files, outputFile{base + "." + format, data})
		}
	}
	return files
}

func writeFiles(files []outputFile) error {
	for _, f := range files {
		if err := os.WriteFile(f.path, f.data, 0o644); err != nil {
			return fmt.Errorf("write output %s: %w", f.path, err)
		}
	}
	return nil
}

// basePath derives the base output path from the output and input file paths.
// If output is empty, it strips the extension from input.
// If output has a format extension (.svg, .png, etc.), it strips that extension.
func basePath(output, input string) string {
	if output == "" {
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	ext := filepath.Ext(output)
	if pipeline.ValidFormats[strings.TrimPrefix(ext, ".")] {
		return strings.TrimSuffix(output, ext)
	}
	return output
}
