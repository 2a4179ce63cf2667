// Package report orchestrates a full export: it builds content blocks,
// paginates them, captures every page and binds the result into a PDF
// on disk.
package report

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/fieldfolio/fieldfolio/block"
	"github.com/fieldfolio/fieldfolio/filter"
	"github.com/fieldfolio/fieldfolio/layout"
	"github.com/fieldfolio/fieldfolio/render"
	"github.com/fieldfolio/fieldfolio/scene"
	"github.com/fieldfolio/fieldfolio/survey"
)

// PageRenderer measures candidate pages for the paginator and captures
// finalized pages into bitmaps. *render.Compositor implements it; tests
// substitute fakes.
type PageRenderer interface {
	layout.Measurer
	Capture(ctx context.Context, p *layout.Page, att render.Attachments, scale float64) (*render.RasterizedPage, error)
}

// MiniMapFunc renders a single-feature locator snapshot. scene.MiniMap
// is the default.
type MiniMapFunc func(f *survey.Feature, style survey.CategoryStyle, widthPx, heightPx int) image.Image

const (
	defaultScale          = 2.0
	defaultMiniMapWorkers = 4
)

// Config wires a Generator. Collection and Meta are required; every
// other collaborator has a working default.
type Config struct {
	Collection *survey.Collection
	Styles     *survey.StyleMap
	Meta       *survey.Metadata

	// Filter drops features before grouping when set.
	Filter *filter.Filter

	// Renderer measures and captures pages. Defaults to a compositor
	// over the built-in fonts.
	Renderer PageRenderer

	// Screens provides overview captures. Overview pages are skipped
	// entirely when nil.
	Screens scene.ScreenshotSource

	MiniMap        MiniMapFunc
	MiniMapWorkers int

	// OnProgress receives one human-readable line per stage change.
	OnProgress func(message string)

	OutDir    string
	Scale     float64
	PaddingMM float64

	// DebugLayoutPath dumps the pagination result as JSON when set.
	DebugLayoutPath string
	// DumpPagesDir writes every captured page as PNG when set.
	DumpPagesDir string

	Log *slog.Logger
}

// Generator runs exports one at a time. A second Generate while one is
// in flight fails with ErrBusy.
type Generator struct {
	cfg     Config
	log     *slog.Logger
	running atomic.Bool
	stage   atomic.Int32
}

func New(cfg Config) *Generator {
	log := cfg.Log
	if log == nil {
		log = slog.Default()
	}
	return &Generator{cfg: cfg, log: log}
}

// Stage reports where the current (or last) run got to.
func (g *Generator) Stage() Stage {
	return Stage(g.stage.Load())
}

func (g *Generator) setStage(s Stage, message string) {
	g.stage.Store(int32(s))
	g.progress(message)
}

func (g *Generator) progress(message string) {
	if g.cfg.OnProgress != nil {
		g.cfg.OnProgress(message)
	}
}

// Generate runs the whole pipeline and returns the path of the written
// PDF. On failure no output file exists and the progress indicator is
// cleared.
func (g *Generator) Generate(ctx context.Context) (string, error) {
	if !g.running.CompareAndSwap(false, true) {
		return "", ErrBusy
	}
	defer g.running.Store(false)

	path, err := g.run(ctx)
	if err != nil {
		g.stage.Store(int32(StageFailed))
		g.progress("")
		return "", err
	}
	g.setStage(StageSaved, fmt.Sprintf("Saved %s", filepath.Base(path)))
	return path, nil
}

func (g *Generator) run(ctx context.Context) (string, error) {
	cfg := &g.cfg
	g.setStage(StagePreparing, "Preparing inputs")

	if cfg.Collection == nil || cfg.Meta == nil {
		return "", &SetupError{Err: fmt.Errorf("collection and metadata are required")}
	}
	if cfg.Scale < 0 {
		return "", &SetupError{Err: fmt.Errorf("%w: scale %.2f", ErrBackendUnavailable, cfg.Scale)}
	}
	scale := cfg.Scale
	if scale == 0 {
		scale = defaultScale
	}
	renderer := cfg.Renderer
	if renderer == nil {
		fonts, err := render.LoadFontSet()
		if err != nil {
			return "", &SetupError{Err: fmt.Errorf("%w: %v", ErrBackendUnavailable, err)}
		}
		renderer = render.NewCompositor(fonts, render.Options{Logger: g.log})
	}
	mini := cfg.MiniMap
	if mini == nil {
		mini = scene.MiniMap
	}
	workers := cfg.MiniMapWorkers
	if workers <= 0 {
		workers = defaultMiniMapWorkers
	}
	styles := cfg.Styles
	if styles == nil {
		styles = &survey.StyleMap{}
	}

	features := cfg.Collection.Features
	if cfg.Filter != nil {
		features = cfg.Filter.Apply(features)
	}
	if len(features) == 0 {
		return "", &SetupError{Err: ErrNoFeatures}
	}
	builder := block.NewBuilder(styles, g.log)

	var pages []*render.RasterizedPage
	capture := func(stage Stage, p *layout.Page, att render.Attachments) error {
		rp, err := renderer.Capture(ctx, p, att, scale)
		if err != nil {
			return &CaptureError{Stage: stage, Page: len(pages) + 1, Err: err}
		}
		pages = append(pages, rp)
		return nil
	}

	g.setStage(StageTitlePage, "Rendering title page")
	if err := capture(StageTitlePage, g.fixedPage(builder.Title(cfg.Meta)), render.Attachments{}); err != nil {
		return "", err
	}

	g.setStage(StageTeamPage, "Rendering team page")
	if len(cfg.Meta.Contributors) > 0 {
		if err := capture(StageTeamPage, g.fixedPage(builder.Team(cfg.Meta)), render.Attachments{}); err != nil {
			return "", err
		}
	}

	g.setStage(StageLegendPage, "Rendering legend")
	if err := capture(StageLegendPage, g.fixedPage(builder.Legend(features)), render.Attachments{}); err != nil {
		return "", err
	}

	g.setStage(StageOverviewPages, "Capturing site overviews")
	if cfg.Screens != nil {
		if err := g.overviewPages(ctx, scale, capture); err != nil {
			return "", err
		}
	}

	g.setStage(StageDetailPages, "Building feature pages")
	groups := layout.BuildGroups(features, builder)
	result, err := layout.Paginate(groups, renderer, layout.Options{PaddingMM: cfg.PaddingMM})
	if err != nil {
		return "", fmt.Errorf("paginate: %w", err)
	}
	if cfg.DebugLayoutPath != "" {
		if err := layout.WriteDebugJSON(result, cfg.DebugLayoutPath); err != nil {
			g.log.Warn("layout dump failed", "path", cfg.DebugLayoutPath, "error", err)
		}
	}
	for _, p := range result.Pages {
		g.progress(fmt.Sprintf("Rendering %s", p.Header))
		att := g.renderMiniMaps(p, mini, workers, scale)
		if err := capture(StageDetailPages, p, att); err != nil {
			return "", err
		}
	}

	g.setStage(StageFooterPass, "Numbering pages")
	render.ApplyFooters(pages, cfg.Meta.Title)

	if cfg.DumpPagesDir != "" {
		g.dumpPages(pages)
	}

	data, err := render.AssemblePDF(pages, cfg.Meta)
	if err != nil {
		return "", fmt.Errorf("assemble pdf: %w", err)
	}
	outDir := cfg.OutDir
	if outDir == "" {
		outDir = "."
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}
	path := filepath.Join(outDir, Filename(cfg.Meta))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}
	return path, nil
}

// fixedPage wraps a single block in an unheaded portrait page.
func (g *Generator) fixedPage(b *block.Block) *layout.Page {
	p := layout.NewDetailPage("", false, []*block.Block{b})
	if g.cfg.PaddingMM > 0 {
		p.PaddingMM = g.cfg.PaddingMM
	}
	return p
}

// overviewPages captures one landscape page per available mode. The
// source's visibility is saved before each mutation and restored on
// every path.
func (g *Generator) overviewPages(ctx context.Context, scale float64, capture func(Stage, *layout.Page, render.Attachments) error) error {
	screens := g.cfg.Screens
	saved := screens.Visibility()
	for _, mode := range scene.Modes() {
		if !screens.Available(mode) {
			continue
		}
		g.progress(fmt.Sprintf("Capturing %s", mode.Label()))
		page := layout.NewOverviewPage(mode.Label())
		if g.cfg.PaddingMM > 0 {
			page.PaddingMM = g.cfg.PaddingMM
		}
		widthPx := int((page.WidthMM - 2*page.PaddingMM) * layout.PxPerMM * scale)
		heightPx := int((page.HeightMM - 2.5*page.PaddingMM) * layout.PxPerMM * scale)
		err := func() error {
			screens.SetVisibility(mode.Visibility())
			defer screens.SetVisibility(saved)
			shot, err := screens.Screenshot(ctx, widthPx, heightPx)
			if err != nil {
				return &CaptureError{Stage: StageOverviewPages, Page: 0, Err: err}
			}
			return capture(StageOverviewPages, page, render.Attachments{Overview: shot})
		}()
		if err != nil {
			return err
		}
	}
	return nil
}

// renderMiniMaps draws the locator maps for every feature on the page
// concurrently, bounded by the worker limit, and waits for all of them
// before the page is captured. The map is keyed by feature identity,
// not name, so duplicate names cannot collide.
func (g *Generator) renderMiniMaps(p *layout.Page, mini MiniMapFunc, workers int, scale float64) render.Attachments {
	type job struct {
		feature *survey.Feature
		style   survey.CategoryStyle
	}
	var jobs []job
	for _, b := range p.Blocks {
		if b.Kind == block.KindFeatureDetail && b.Feature != nil && b.Feature.Feature != nil {
			jobs = append(jobs, job{feature: b.Feature.Feature, style: b.Feature.Style})
		}
	}
	if len(jobs) == 0 {
		return render.Attachments{}
	}
	widthPx, heightPx := render.MiniMapPixelSize(scale)
	maps := make(map[*survey.Feature]image.Image, len(jobs))
	var mu sync.Mutex
	var wg sync.WaitGroup
	sem := make(chan struct{}, workers)
	for _, j := range jobs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			img := mini(j.feature, j.style, widthPx, heightPx)
			mu.Lock()
			maps[j.feature] = img
			mu.Unlock()
		}()
	}
	wg.Wait()
	return render.Attachments{MiniMaps: maps}
}

// dumpPages writes each captured page as PNG for diagnosis. Failures
// are logged and never fail the export.
func (g *Generator) dumpPages(pages []*render.RasterizedPage) {
	dir := g.cfg.DumpPagesDir
	if err := os.MkdirAll(dir, 0o755); err != nil {
		g.log.Warn("page dump failed", "dir", dir, "error", err)
		return
	}
	for i, p := range pages {
		path := filepath.Join(dir, fmt.Sprintf("page-%02d.png", i+1))
		f, err := os.Create(path)
		if err != nil {
			g.log.Warn("page dump failed", "path", path, "error", err)
			continue
		}
		if err := png.Encode(f, p.Image); err != nil {
			g.log.Warn("page dump failed", "path", path, "error", err)
		}
		f.Close()
	}
}
