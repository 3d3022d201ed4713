// Package charts renders deck statistics as interactive HTML charts.
package charts

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sort"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/edhtools/deckforge/internal/deck"
)

// Config holds chart rendering options.
type Config struct {
	Title    string
	Subtitle string
	Width    string // e.g. "900px"
	Height   string // e.g. "500px"
	Theme    string
	Colors   []string
}

// DefaultConfig returns the default chart configuration.
func DefaultConfig() Config {
	return Config{
		Width:  "900px",
		Height: "500px",
		Theme:  "light",
		Colors: []string{"#5470C6", "#91CC75", "#FAC858", "#EE6666", "#73C0DE", "#3BA272"},
	}
}

var pipLabels = map[string]string{
	"W": "White",
	"U": "Blue",
	"B": "Black",
	"R": "Red",
	"G": "Green",
	"C": "Colorless",
}

var pipOrder = []string{"W", "U", "B", "R", "G", "C"}

var pipColors = map[string]string{
	"W": "#F8F6D8",
	"U": "#C1D7E9",
	"B": "#BAB1AB",
	"R": "#E49977",
	"G": "#A3C095",
	"C": "#CCCCCC",
}

// RenderManaCurve writes a bar chart of the deck's mana curve to outputPath.
func RenderManaCurve(stats *deck.Stats, config Config, outputPath string) error {
	bar := charts.NewBar()

	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			Width:  config.Width,
			Height: config.Height,
			Theme:  config.Theme,
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    config.Title,
			Subtitle: config.Subtitle,
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show:    opts.Bool(true),
			Trigger: "axis",
		}),
		charts.WithColorsOpts(opts.Colors{
			config.Colors[0],
		}),
	)

	buckets := make([]int, 0, len(stats.ManaCurve))
	for b := range stats.ManaCurve {
		buckets = append(buckets, b)
	}
	sort.Ints(buckets)

	xLabels := make([]string, len(buckets))
	yData := make([]opts.BarData, len(buckets))
	for i, b := range buckets {
		label := fmt.Sprintf("%d", b)
		if b >= 7 {
			label = "7+"
		}
		xLabels[i] = label
		yData[i] = opts.BarData{Value: stats.ManaCurve[b]}
	}

	bar.SetXAxis(xLabels).
		AddSeries("Cards", yData).
		SetSeriesOptions(
			charts.WithLabelOpts(opts.Label{
				Show:     opts.Bool(true),
				Position: "top",
			}),
		)

	return renderTo(bar, outputPath)
}

// RenderColorPie writes a pie chart of the deck's color pip distribution
// to outputPath.
func RenderColorPie(stats *deck.Stats, config Config, outputPath string) error {
	pie := charts.NewPie()

	pie.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			Width:  config.Width,
			Height: config.Height,
			Theme:  config.Theme,
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    config.Title,
			Subtitle: config.Subtitle,
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show: opts.Bool(true),
		}),
	)

	var data []opts.PieData
	for _, pip := range pipOrder {
		count, ok := stats.ColorPips[pip]
		if !ok || count == 0 {
			continue
		}
		data = append(data, opts.PieData{
			Name:  pipLabels[pip],
			Value: count,
			ItemStyle: &opts.ItemStyle{
				Color: pipColors[pip],
			},
		})
	}

	pie.AddSeries("Pips", data).
		SetSeriesOptions(
			charts.WithLabelOpts(opts.Label{
				Show:      opts.Bool(true),
				Formatter: "{b}: {c}",
			}),
		)

	return renderTo(pie, outputPath)
}

type renderable interface {
	Render(w io.Writer) error
}

func renderTo(chart renderable, outputPath string) error {
	f, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create chart file: %w", err)
	}
	defer f.Close()

	if err := chart.Render(f); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	return nil
}

// OpenInBrowser opens the given file in the default web browser.
func OpenInBrowser(filePath string) error {
	absPath, err := filepath.Abs(filePath)
	if err != nil {
		return fmt.Errorf("failed to get absolute path: %w", err)
	}

	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", absPath)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", absPath)
	case "linux":
		cmd = exec.Command("xdg-open", absPath)
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}

	return cmd.Start()
}
