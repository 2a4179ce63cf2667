// Package scene draws the map imagery in a report: the landscape site
// overview captures and the per-feature locator mini-maps.
package scene

import (
	"context"
	"image"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/gogpu/gg"
	"github.com/gogpu/gg/text"

	"github.com/fieldfolio/fieldfolio/fonts"
	"github.com/fieldfolio/fieldfolio/sanitize"
	"github.com/fieldfolio/fieldfolio/survey"
)

// OverviewMode selects the base layer of a site overview page.
type OverviewMode int

const (
	OverviewDefault OverviewMode = iota
	OverviewOrthophoto
	OverviewElevation
)

func (m OverviewMode) String() string {
	switch m {
	case OverviewOrthophoto:
		return "orthophoto"
	case OverviewElevation:
		return "elevation"
	}
	return "default"
}

// Label returns the page caption for the mode.
func (m OverviewMode) Label() string {
	switch m {
	case OverviewOrthophoto:
		return "Site overview (orthophoto)"
	case OverviewElevation:
		return "Site overview (elevation)"
	}
	return "Site overview"
}

// Visibility returns the layer set the mode is captured with.
func (m OverviewMode) Visibility() LayerVisibility {
	v := LayerVisibility{Features: true, Labels: true}
	switch m {
	case OverviewOrthophoto:
		v.Orthophoto = true
	case OverviewElevation:
		v.Elevation = true
	}
	return v
}

// Modes lists the overview modes in page order.
func Modes() []OverviewMode {
	return []OverviewMode{OverviewDefault, OverviewOrthophoto, OverviewElevation}
}

// LayerVisibility is the set of layers a capture shows.
type LayerVisibility struct {
	Features   bool
	Labels     bool
	Orthophoto bool
	Elevation  bool
}

// ScreenshotSource is the map backend overview pages are captured
// from. The generator saves, mutates and restores visibility around
// each mode's capture, so implementations need no locking of their
// own.
type ScreenshotSource interface {
	// Available reports whether the mode has data behind it.
	Available(mode OverviewMode) bool
	Visibility() LayerVisibility
	SetVisibility(v LayerVisibility)
	// Screenshot renders the currently visible layers.
	Screenshot(ctx context.Context, widthPx, heightPx int) (image.Image, error)
}

// labelSource is the shared font for map labels. nil when the face
// cannot be built, in which case labels are skipped.
var labelSource = sync.OnceValue(func() *text.FontSource {
	data, err := fonts.Load(fonts.Regular)
	if err != nil {
		return nil
	}
	src, err := text.NewFontSource(data)
	if err != nil {
		return nil
	}
	return src
})

// Renderer is the built-in ScreenshotSource. It draws the survey
// directly rather than driving an embedded map engine. Captures are
// sequential; the renderer is not safe for concurrent use.
type Renderer struct {
	collection *survey.Collection
	styles     *survey.StyleMap
	baseDir    string
	vis        LayerVisibility
	log        *slog.Logger
}

// NewRenderer builds a renderer over a collection. Imagery paths are
// resolved relative to baseDir.
func NewRenderer(collection *survey.Collection, styles *survey.StyleMap, baseDir string, log *slog.Logger) *Renderer {
	if styles == nil {
		styles = &survey.StyleMap{}
	}
	if log == nil {
		log = slog.Default()
	}
	return &Renderer{
		collection: collection,
		styles:     styles,
		baseDir:    baseDir,
		vis:        OverviewDefault.Visibility(),
		log:        log,
	}
}

func (r *Renderer) Available(mode OverviewMode) bool {
	switch mode {
	case OverviewOrthophoto:
		return r.collection.Imagery.Orthophoto != ""
	case OverviewElevation:
		return r.collection.Imagery.Elevation != ""
	}
	return true
}

func (r *Renderer) Visibility() LayerVisibility { return r.vis }

func (r *Renderer) SetVisibility(v LayerVisibility) { r.vis = v }

// Screenshot renders the visible layers over the whole survey extent.
func (r *Renderer) Screenshot(ctx context.Context, widthPx, heightPx int) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	dc := gg.NewContext(widthPx, heightPx)
	dc.ClearWithColor(gg.White)

	switch {
	case r.vis.Orthophoto:
		r.drawImagery(dc, r.collection.Imagery.Orthophoto, widthPx, heightPx)
	case r.vis.Elevation:
		r.drawImagery(dc, r.collection.Imagery.Elevation, widthPx, heightPx)
	default:
		drawGrid(dc, widthPx, heightPx)
	}

	vp := newViewport(r.collection.Bounds(), float64(widthPx), float64(heightPx), 40)
	if r.vis.Features {
		for i := range r.collection.Features {
			f := &r.collection.Features[i]
			drawGeometry(dc, vp, f.Geometry, r.styles.ForFeature(f))
		}
	}
	if r.vis.Labels {
		r.drawLabels(dc, vp)
	}
	return dc.Image(), nil
}

// drawImagery paints a raster base layer full bleed, falling back to
// the plain grid when the file cannot be read.
func (r *Renderer) drawImagery(dc *gg.Context, path string, widthPx, heightPx int) {
	img, err := gg.LoadImage(filepath.Join(r.baseDir, path))
	if err != nil {
		r.log.Warn("imagery unavailable, using base grid", "path", path, "err", err)
		drawGrid(dc, widthPx, heightPx)
		return
	}
	dc.DrawImageEx(img, gg.DrawImageOptions{
		DstWidth:  float64(widthPx),
		DstHeight: float64(heightPx),
	})
}

func (r *Renderer) drawLabels(dc *gg.Context, vp viewport) {
	src := labelSource()
	if src == nil {
		r.log.Warn("label font unavailable, skipping labels")
		return
	}
	dc.SetFont(src.Face(13))
	dc.SetRGBA(0.15, 0.17, 0.2, 1)
	for i := range r.collection.Features {
		f := &r.collection.Features[i]
		name, err := sanitize.Clean(f.Properties.Name)
		if err != nil || name == "" {
			continue
		}
		b := f.Geometry.Bounds()
		if b.Empty() {
			continue
		}
		x, y := vp.xy(b.Center())
		dc.DrawStringAnchored(name, x, y+6, 0.5, 1)
	}
}

// drawGrid paints the plain base layer: a light field with a faint
// square grid.
func drawGrid(dc *gg.Context, widthPx, heightPx int) {
	dc.SetHexColor("#f2f4f3")
	dc.DrawRectangle(0, 0, float64(widthPx), float64(heightPx))
	dc.Fill()
	dc.SetHexColor("#dde2e0")
	dc.SetLineWidth(1)
	const step = 64.0
	for x := step; x < float64(widthPx); x += step {
		dc.DrawLine(x, 0, x, float64(heightPx))
	}
	for y := step; y < float64(heightPx); y += step {
		dc.DrawLine(0, y, float64(widthPx), y)
	}
	dc.Stroke()
}

// drawGeometry paints one feature with its category style.
func drawGeometry(dc *gg.Context, vp viewport, g survey.Geometry, style survey.CategoryStyle) {
	fr, fg, fb, ok := parseHex(style.FillColor)
	if !ok {
		fr, fg, fb = 0.2, 0.53, 1
	}
	sr, sg, sb, ok := parseHex(style.Color)
	if !ok {
		sr, sg, sb = 0.2, 0.53, 1
	}

	switch g.Type {
	case survey.GeometryPoint:
		x, y := vp.xy(g.Point)
		r := style.Size
		if r <= 0 {
			r = 6
		}
		dc.DrawCircle(x, y, r)
		dc.SetRGBA(fr, fg, fb, style.FillOpacity)
		dc.FillPreserve()
		dc.SetRGBA(sr, sg, sb, style.Opacity)
		dc.SetLineWidth(style.Weight)
		dc.Stroke()
	case survey.GeometryLineString:
		if len(g.Line) < 2 {
			return
		}
		tracePath(dc, vp, g.Line, false)
		dc.SetRGBA(sr, sg, sb, style.Opacity)
		dc.SetLineWidth(style.Weight)
		dc.Stroke()
	case survey.GeometryPolygon:
		if len(g.Rings) == 0 {
			return
		}
		for _, ring := range g.Rings {
			if len(ring) < 3 {
				continue
			}
			tracePath(dc, vp, ring, true)
		}
		dc.SetFillRule(gg.FillRuleEvenOdd)
		dc.SetRGBA(fr, fg, fb, style.FillOpacity)
		dc.FillPreserve()
		dc.SetRGBA(sr, sg, sb, style.Opacity)
		dc.SetLineWidth(style.Weight)
		dc.Stroke()
	}
}

func tracePath(dc *gg.Context, vp viewport, coords []survey.Coord, closed bool) {
	for i, c := range coords {
		x, y := vp.xy(c)
		if i == 0 {
			dc.MoveTo(x, y)
		} else {
			dc.LineTo(x, y)
		}
	}
	if closed {
		dc.ClosePath()
	}
}

// parseHex reads #rgb, #rrggbb or #rrggbbaa into unit floats. The
// alpha digits are accepted and ignored; layer opacity comes from the
// style's own opacity fields.
func parseHex(s string) (r, g, b float64, ok bool) {
	if len(s) == 0 || s[0] != '#' {
		return 0, 0, 0, false
	}
	hex := s[1:]
	digit := func(c byte) (int, bool) {
		switch {
		case c >= '0' && c <= '9':
			return int(c - '0'), true
		case c >= 'a' && c <= 'f':
			return int(c-'a') + 10, true
		case c >= 'A' && c <= 'F':
			return int(c-'A') + 10, true
		}
		return 0, false
	}
	pair := func(i int) (float64, bool) {
		hi, ok1 := digit(hex[i])
		lo, ok2 := digit(hex[i+1])
		if !ok1 || !ok2 {
			return 0, false
		}
		return float64(hi*16+lo) / 255, true
	}
	switch len(hex) {
	case 3:
		hi, ok1 := digit(hex[0])
		mi, ok2 := digit(hex[1])
		lo, ok3 := digit(hex[2])
		if !ok1 || !ok2 || !ok3 {
			return 0, 0, 0, false
		}
		return float64(hi*17) / 255, float64(mi*17) / 255, float64(lo*17) / 255, true
	case 6, 8:
		var vals [3]float64
		for i := 0; i < 3; i++ {
			v, ok := pair(i * 2)
			if !ok {
				return 0, 0, 0, false
			}
			vals[i] = v
		}
		return vals[0], vals[1], vals[2], true
	}
	return 0, 0, 0, false
}
