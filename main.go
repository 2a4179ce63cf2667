package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/fieldfolio/fieldfolio/filter"
	"github.com/fieldfolio/fieldfolio/layout"
	"github.com/fieldfolio/fieldfolio/render"
	"github.com/fieldfolio/fieldfolio/report"
	"github.com/fieldfolio/fieldfolio/scene"
	"github.com/fieldfolio/fieldfolio/survey"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "fieldfolio: %v\n", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "fieldfolio",
		Usage: "build paginated PDF reports from site survey data",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "log-level", Value: "info", Usage: "debug, info, warn or error"},
			&cli.BoolFlag{Name: "log-json", Usage: "write logs as JSON"},
		},
		Commands: []*cli.Command{
			generateCommand(),
			checkCommand(),
		},
	}
}

func inputFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "collection", Usage: "GeoJSON feature collection", Required: true},
		&cli.StringFlag{Name: "styles", Usage: "YAML category styles"},
		&cli.StringFlag{Name: "report", Usage: "YAML report metadata"},
		&cli.StringFlag{Name: "data", Usage: "JSON bound to ${path} placeholders in the metadata"},
		&cli.StringFlag{Name: "filter", Usage: `feature filter, e.g. 'category == "Drainage" && severity >= high'`},
	}
}

func generateCommand() *cli.Command {
	return &cli.Command{
		Name:  "generate",
		Usage: "run the full export and write the PDF",
		Flags: append(inputFlags(),
			&cli.StringFlag{Name: "out-dir", Value: ".", Usage: "output directory"},
			&cli.Float64Flag{Name: "scale", Value: 2, Usage: "raster scale over 96 DPI"},
			&cli.StringFlag{Name: "padding", Usage: "page padding, e.g. 12mm, 0.5in or 36pt"},
			&cli.StringFlag{Name: "dump-pages", Usage: "directory for per-page PNG dumps"},
			&cli.StringFlag{Name: "debug-layout", Usage: "path for the pagination JSON dump"},
		),
		Action: runGenerate,
	}
}

func checkCommand() *cli.Command {
	return &cli.Command{
		Name:   "check",
		Usage:  "load and validate inputs without rendering",
		Flags:  inputFlags(),
		Action: runCheck,
	}
}

type inputs struct {
	collection *survey.Collection
	styles     *survey.StyleMap
	meta       *survey.Metadata
	filter     *filter.Filter
	baseDir    string
}

func loadInputs(c *cli.Context) (*inputs, error) {
	in := &inputs{styles: &survey.StyleMap{}}

	collectionPath := c.String("collection")
	collection, err := survey.LoadCollection(collectionPath)
	if err != nil {
		return nil, err
	}
	in.collection = collection
	in.baseDir = filepath.Dir(collectionPath)

	if path := c.String("styles"); path != "" {
		if in.styles, err = survey.LoadStyles(path); err != nil {
			return nil, err
		}
	}
	if path := c.String("report"); path != "" {
		var data any
		if raw := c.String("data"); raw != "" {
			if err := json.Unmarshal([]byte(raw), &data); err != nil {
				return nil, fmt.Errorf("parse data JSON: %w", err)
			}
		}
		if in.meta, err = survey.LoadMetadata(path, data); err != nil {
			return nil, err
		}
	}
	if src := c.String("filter"); src != "" {
		if in.filter, err = filter.Compile(src); err != nil {
			return nil, err
		}
	}
	return in, nil
}

func runGenerate(c *cli.Context) error {
	log := buildLogger(c)
	in, err := loadInputs(c)
	if err != nil {
		return err
	}
	if in.meta == nil {
		return fmt.Errorf("generate needs --report metadata")
	}
	var paddingMM float64
	if raw := c.String("padding"); raw != "" {
		l, err := layout.ParseLength(raw)
		if err != nil {
			return fmt.Errorf("parse padding: %w", err)
		}
		paddingMM = l.ToMM()
	}

	fonts, err := render.LoadFontSet()
	if err != nil {
		return fmt.Errorf("load fonts: %w", err)
	}
	comp := render.NewCompositor(fonts, render.Options{
		Fetcher: render.NewImageFetcher(in.baseDir, 0),
		Logger:  log,
	})

	gen := report.New(report.Config{
		Collection: in.collection,
		Styles:     in.styles,
		Meta:       in.meta,
		Filter:     in.filter,
		Renderer:   comp,
		Screens:    scene.NewRenderer(in.collection, in.styles, in.baseDir, log),
		OnProgress: func(message string) {
			if message != "" {
				fmt.Fprintf(os.Stderr, "  %s\n", message)
			}
		},
		OutDir:          c.String("out-dir"),
		Scale:           c.Float64("scale"),
		PaddingMM:       paddingMM,
		DebugLayoutPath: c.String("debug-layout"),
		DumpPagesDir:    c.String("dump-pages"),
		Log:             log,
	})

	path, err := gen.Generate(c.Context)
	if err != nil {
		return err
	}
	fmt.Printf("Wrote %s\n", path)
	return nil
}

func runCheck(c *cli.Context) error {
	in, err := loadInputs(c)
	if err != nil {
		return err
	}
	features := in.collection.Features
	if in.filter != nil {
		features = in.filter.Apply(features)
		fmt.Printf("Filter:     %s (%d of %d features match)\n",
			in.filter, len(features), len(in.collection.Features))
	}
	fmt.Printf("Features:   %d\n", len(features))

	byCategory := make(map[string]int)
	bySeverity := make(map[survey.Severity]int)
	for i := range features {
		byCategory[features[i].Properties.Category]++
		bySeverity[features[i].MaxSeverity()]++
	}
	categories := make([]string, 0, len(byCategory))
	for cat := range byCategory {
		categories = append(categories, cat)
	}
	sort.Strings(categories)
	fmt.Printf("Categories: %d\n", len(categories))
	for _, cat := range categories {
		name := cat
		if name == "" {
			name = "(uncategorised)"
		}
		styled := " "
		if _, ok := in.styles.Categories[cat]; ok {
			styled = "*"
		}
		fmt.Printf("  %s %-20s %d\n", styled, name, byCategory[cat])
	}
	for _, sev := range []survey.Severity{survey.SeverityCritical, survey.SeverityHigh, survey.SeverityMedium, survey.SeverityLow} {
		if n := bySeverity[sev]; n > 0 {
			fmt.Printf("  %-22s %d\n", sev, n)
		}
	}
	if in.meta != nil {
		fmt.Printf("Report:     %q, %d contributors\n", in.meta.Title, len(in.meta.Contributors))
	}
	return nil
}

func buildLogger(c *cli.Context) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(c.String("log-level")) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if c.Bool("log-json") {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}
