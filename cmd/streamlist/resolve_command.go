package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"streamlist/internal/pipeline"
)

func newResolveCommand(ctx *commandContext) *cobra.Command {
	var filePath string
	var jsonOutput bool
	var concurrency int
	var pacingMillis int

	cmd := &cobra.Command{
		Use:   "resolve [title...]",
		Short: "Resolve titles and list where they stream",
		Long: "Resolve titles against TMDB and Watchmode and print where each one is streaming.\n" +
			"Titles come from arguments, --file (one per line), or stdin when neither is given.",
		RunE: func(cmd *cobra.Command, args []string) error {
			titles, err := collectTitles(cmd, args, filePath)
			if err != nil {
				return err
			}
			stack, err := ctx.ensureStack()
			if err != nil {
				return err
			}
			cfg, _ := ctx.ensureConfig()

			workers := cfg.Batch.Concurrency
			if cmd.Flags().Changed("concurrency") {
				workers = concurrency
			}
			pacing := cfg.BatchPacing()
			if cmd.Flags().Changed("pacing") {
				pacing = time.Duration(pacingMillis) * time.Millisecond
			}

			movies, err := stack.Runner.RunBatchWith(cmd.Context(), titles, workers, pacing)
			if err != nil {
				return fmt.Errorf("resolve titles: %w", err)
			}
			if jsonOutput {
				return writeJSON(cmd, movies)
			}
			renderMovies(cmd.OutOrStdout(), movies)
			return nil
		},
	}

	cmd.Flags().StringVarP(&filePath, "file", "f", "", "Read titles from a file, one per line")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	cmd.Flags().IntVar(&concurrency, "concurrency", pipeline.DefaultConcurrency, "Titles resolved in parallel per chunk")
	cmd.Flags().IntVar(&pacingMillis, "pacing", int(pipeline.DefaultPacing/time.Millisecond), "Pause between chunks in milliseconds")
	return cmd
}

// collectTitles gathers titles from args, a file, or stdin. Blank lines and
// lines starting with # are ignored.
func collectTitles(cmd *cobra.Command, args []string, filePath string) ([]string, error) {
	titles := append([]string(nil), args...)
	if path := strings.TrimSpace(filePath); path != "" {
		file, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open titles file: %w", err)
		}
		defer file.Close()
		lines, err := readTitleLines(file)
		if err != nil {
			return nil, fmt.Errorf("read titles file: %w", err)
		}
		titles = append(titles, lines...)
	}
	if len(titles) == 0 {
		lines, err := readTitleLines(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("read titles from stdin: %w", err)
		}
		titles = lines
	}
	titles = pipeline.CleanTitles(titles)
	if len(titles) == 0 {
		return nil, fmt.Errorf("no titles provided")
	}
	return titles, nil
}

func readTitleLines(r io.Reader) ([]string, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}
	return lines, scanner.Err()
}

func renderMovies(out io.Writer, movies []pipeline.Movie) {
	headers := []string{"Title", "Year", "Rating", "Runtime", "Genres", "Streaming"}
	rows := make([][]string, 0, len(movies))
	found := 0
	for _, m := range movies {
		if m.NotFound {
			rows = append(rows, []string{m.Title, "", "", "", "", highlight(out, "not found", text.Colors{text.FgRed})})
			continue
		}
		found++
		rows = append(rows, []string{
			m.Title,
			yearLabel(m.Year),
			strconv.FormatFloat(m.Rating, 'f', 1, 64),
			runtimeLabel(m.Runtime),
			strings.Join(m.Genres, ", "),
			sourcesLabel(out, m),
		})
	}
	fmt.Fprintln(out, renderTable(headers, rows, []columnAlignment{alignLeft, alignRight, alignRight, alignRight, alignLeft, alignLeft}))
	fmt.Fprintf(out, "%d of %d titles matched\n", found, len(movies))
}

func sourcesLabel(out io.Writer, m pipeline.Movie) string {
	if len(m.Sources) == 0 {
		return highlight(out, "none", text.Colors{text.Faint})
	}
	names := make([]string, 0, len(m.Sources))
	for _, s := range m.Sources {
		names = append(names, s.Name)
	}
	return strings.Join(names, ", ")
}

func yearLabel(year int) string {
	if year <= 0 {
		return ""
	}
	return strconv.Itoa(year)
}

func runtimeLabel(minutes int) string {
	if minutes <= 0 {
		return ""
	}
	return fmt.Sprintf("%dh%02dm", minutes/60, minutes%60)
}
