package render

import (
	"fmt"
	"image"
	"image/color"
	"log/slog"

	"github.com/tdewolff/canvas"

	"github.com/fieldfolio/fieldfolio/block"
	"github.com/fieldfolio/fieldfolio/geo"
	"github.com/fieldfolio/fieldfolio/layout"
	"github.com/fieldfolio/fieldfolio/survey"
)

// Type sizes in points.
const (
	titleSizePt   = 24
	headingSizePt = 14
	nameSizePt    = 13
	obsSizePt     = 11
	bodySizePt    = 10
	smallSizePt   = 9
	chipSizePt    = 8
	captionSizePt = 8
	footerSizePt  = 8.5
)

// Mini-map slot beside the fact table on detail pages.
const (
	MiniMapWidthMM  = 46.0
	MiniMapHeightMM = 36.0
)

const (
	blockGapMM    = 6.0
	paraGapMM     = 2.0
	bulletIndent  = 5.0
	columnGapMM   = 6.0
	photoWidthMM  = 56.0
	photoHeightMM = 42.0
	photoGapMM    = 6.0
	captionGapMM  = 4.5
	ruleWidthMM   = 0.2
)

var (
	inkColor    = canvas.RGBA(0.12, 0.13, 0.15, 1)
	mutedColor  = canvas.RGBA(0.42, 0.45, 0.48, 1)
	ruleColor   = canvas.Hex("#d9dedc")
	chipMuted   = canvas.Hex("#6b7280")
	boxFill     = canvas.Hex("#f0f2f1")
	boxStroke   = canvas.Hex("#c4cac8")
	errorFill   = canvas.Hex("#fdf2f2")
	errorStroke = canvas.Hex("#e7c5c5")
	transparent = color.RGBA{}
)

// severityColor picks the chip colour for a rated severity.
func severityColor(sev survey.Severity) color.Color {
	switch sev {
	case survey.SeverityLow:
		return canvas.Hex("#65a30d")
	case survey.SeverityMedium:
		return canvas.Hex("#d97706")
	case survey.SeverityHigh:
		return canvas.Hex("#dc2626")
	case survey.SeverityCritical:
		return canvas.Hex("#7f1d1d")
	}
	return chipMuted
}

// Attachments carries the externally rendered imagery a page needs at
// capture time. Mini-maps are keyed by feature identity so features
// sharing a display name cannot collide.
type Attachments struct {
	MiniMaps map[*survey.Feature]image.Image
	Overview image.Image
}

// Compositor lays report pages out in millimetres and doubles as the
// measurer the paginator probes candidate pages with. Layout never
// touches the network; image slots are reserved at fixed sizes and
// resolved only when the page is captured.
type Compositor struct {
	fonts *FontSet
	fetch Fetcher
	log   *slog.Logger
}

// Options configures a Compositor.
type Options struct {
	// Fetcher resolves photo and logo sources. Defaults to a file
	// fetcher rooted at the working directory.
	Fetcher Fetcher
	Logger  *slog.Logger
}

func NewCompositor(fonts *FontSet, opts Options) *Compositor {
	fetch := opts.Fetcher
	if fetch == nil {
		fetch = NewImageFetcher("", 0)
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Compositor{fonts: fonts, fetch: fetch, log: log}
}

var _ layout.Measurer = (*Compositor)(nil)

// PageContentHeight reports the height in CSS pixels from the top
// content edge to the lowest laid out element, header included. The
// paginator compares it against the page budget.
func (c *Compositor) PageContentHeight(p *layout.Page) (float64, error) {
	lay := c.layoutPage(p)
	return (lay.bottom - p.PaddingMM) * layout.PxPerMM, nil
}

// Laid out primitives, all positions in mm from the page's top left.

type placedText struct {
	x        float64
	baseline float64
	line     *canvas.Text
}

type placedRect struct {
	x, y, w, h float64
	fill       color.Color
	stroke     color.Color
	strokeW    float64
}

type placedLine struct {
	x1, y1, x2, y2 float64
	col            color.Color
	w              float64
}

type placedCircle struct {
	cx, cy, r float64
	fill      color.Color
	stroke    color.Color
	strokeW   float64
}

type slotKind int

const (
	slotPhoto slotKind = iota
	slotLogo
	slotMiniMap
	slotOverview
)

// imageSlot reserves a box for an image resolved at capture time.
// owner names the feature a photo belongs to, for logs.
type imageSlot struct {
	kind       slotKind
	x, y, w, h float64
	src        string
	owner      string
	feature    *survey.Feature
}

type pageLayout struct {
	texts   []placedText
	rects   []placedRect
	lines   []placedLine
	circles []placedCircle
	slots   []imageSlot
	bottom  float64
}

func (l *pageLayout) addText(face *canvas.FontFace, s string, align canvas.TextAlign, x, baseline float64) {
	if s == "" {
		return
	}
	l.texts = append(l.texts, placedText{x: x, baseline: baseline, line: canvas.NewTextLine(face, s, align)})
}

func (l *pageLayout) addRule(x1, x2, y float64) {
	l.lines = append(l.lines, placedLine{x1: x1, y1: y, x2: x2, y2: y, col: ruleColor, w: ruleWidthMM})
}

// cursor threads the flow position through block layout.
type cursor struct {
	lay    *pageLayout
	x      float64
	y      float64
	width  float64
	bottom float64
}

func (c *Compositor) layoutPage(p *layout.Page) *pageLayout {
	lay := &pageLayout{}
	cur := &cursor{
		lay:    lay,
		x:      p.PaddingMM,
		y:      p.PaddingMM,
		width:  p.WidthMM - 2*p.PaddingMM,
		bottom: p.HeightMM - 1.5*p.PaddingMM,
	}
	if p.Kind == layout.PageOverview {
		c.layoutOverviewPage(cur, p)
		lay.bottom = cur.y
		return lay
	}
	if p.Header != "" {
		c.layoutHeader(cur, p)
	}
	for i, b := range p.Blocks {
		if i > 0 {
			cur.y += blockGapMM / 2
			lay.addRule(cur.x, cur.x+cur.width, cur.y)
			cur.y += blockGapMM / 2
		}
		switch b.Kind {
		case block.KindTitle:
			c.layoutTitle(cur, b.Title)
		case block.KindTeam:
			c.layoutTeam(cur, b.Team)
		case block.KindLegend:
			c.layoutLegend(cur, b.Legend)
		case block.KindFeatureDetail:
			c.layoutFeature(cur, b.Feature)
		case block.KindError:
			c.layoutError(cur, b.Error)
		}
	}
	lay.bottom = cur.y
	return lay
}

// layoutHeader places the page banner: the category name, a continued
// marker when the category spills over from the previous page, and a
// rule separating the banner from the content.
func (c *Compositor) layoutHeader(cur *cursor, p *layout.Page) {
	face := c.fonts.Face(headingSizePt, inkColor, canvas.FontBold)
	m := face.Metrics()
	baseline := cur.y + m.Ascent
	cur.lay.addText(face, p.Header, canvas.Left, cur.x, baseline)
	if p.Continued {
		cont := c.fonts.Face(smallSizePt, mutedColor, canvas.FontItalic)
		cur.lay.addText(cont, "(continued)", canvas.Left, cur.x+face.TextWidth(p.Header)+2.5, baseline)
	}
	cur.y += m.LineHeight + 1.5
	cur.lay.addRule(cur.x, cur.x+cur.width, cur.y)
	cur.y += 4
}

func (c *Compositor) layoutOverviewPage(cur *cursor, p *layout.Page) {
	face := c.fonts.Face(headingSizePt, inkColor, canvas.FontBold)
	m := face.Metrics()
	cur.lay.addText(face, p.Header, canvas.Left, cur.x, cur.y+m.Ascent)
	cur.y += m.LineHeight + 1.5
	cur.lay.addRule(cur.x, cur.x+cur.width, cur.y)
	cur.y += 4
	cur.lay.slots = append(cur.lay.slots, imageSlot{
		kind: slotOverview,
		x:    cur.x, y: cur.y,
		w: cur.width, h: cur.bottom - cur.y,
	})
	cur.y = cur.bottom
}

// layoutRich flows rich text paragraphs, indenting bullet items and
// switching faces per span.
func (c *Compositor) layoutRich(cur *cursor, rt block.RichText, sizePt float64, col color.Color) {
	base := c.fonts.Face(sizePt, col, canvas.FontRegular)
	m := base.Metrics()
	lineH := m.LineHeight
	if lineH <= 0 {
		lineH = sizePt * layout.PtToMm * 1.3
	}
	faceFor := func(sp block.Span) *canvas.FontFace {
		return c.fonts.Face(sizePt, col, spanStyle(sp))
	}
	for i, para := range rt {
		if i > 0 {
			cur.y += paraGapMM
		}
		indent := 0.0
		if para.Bullet {
			indent = bulletIndent
			cur.lay.addText(base, "•", canvas.Left, cur.x+1.2, cur.y+m.Ascent)
		}
		for _, ln := range wrapSpans(para.Spans, faceFor, cur.width-indent) {
			baseline := cur.y + m.Ascent
			fx := cur.x + indent
			for _, fr := range ln.frags {
				cur.lay.addText(fr.face, fr.text, canvas.Left, fx, baseline)
				fx += fr.width
			}
			cur.y += lineH
		}
	}
}

// layoutChip draws a severity pill anchored to the right edge.
func (c *Compositor) layoutChip(lay *pageLayout, sev survey.Severity, rightX, topY float64) {
	if sev == survey.SeverityUnknown {
		return
	}
	label := sev.String()
	face := c.fonts.Face(chipSizePt, canvas.White, canvas.FontBold)
	w := face.TextWidth(label) + 4.4
	h := 5.2
	lay.rects = append(lay.rects, placedRect{
		x: rightX - w, y: topY, w: w, h: h,
		fill: severityColor(sev), stroke: transparent,
	})
	lay.addText(face, label, canvas.Center, rightX-w/2, topY+0.72*h)
}

func (c *Compositor) layoutFacts(cur *cursor, facts []geo.Fact, width float64) {
	labelFace := c.fonts.Face(smallSizePt, mutedColor, canvas.FontRegular)
	valueFace := c.fonts.Face(smallSizePt, inkColor, canvas.FontRegular)
	m := labelFace.Metrics()
	rowH := 5.5
	for _, f := range facts {
		baseline := cur.y + m.Ascent + 0.6
		cur.lay.addText(labelFace, f.Label, canvas.Left, cur.x, baseline)
		cur.lay.addText(valueFace, f.Value, canvas.Right, cur.x+width, baseline)
		cur.y += rowH
		cur.lay.addRule(cur.x, cur.x+width, cur.y-1)
	}
}

func (c *Compositor) layoutPhotoRow(cur *cursor, images []survey.ImageRef, owner string) {
	capFace := c.fonts.Face(captionSizePt, mutedColor, canvas.FontItalic)
	cellH := photoHeightMM + captionGapMM
	x := cur.x
	rowY := cur.y
	for _, img := range images {
		if img.Src == "" {
			continue
		}
		if x+photoWidthMM > cur.x+cur.width+0.01 {
			x = cur.x
			rowY += cellH + 2
		}
		cur.lay.slots = append(cur.lay.slots, imageSlot{
			kind: slotPhoto,
			x:    x, y: rowY,
			w: photoWidthMM, h: photoHeightMM,
			src:   img.Src,
			owner: owner,
		})
		if img.Caption != "" {
			caption := truncateToWidth(img.Caption, photoWidthMM, capFace)
			cur.lay.addText(capFace, caption, canvas.Center, x+photoWidthMM/2, rowY+photoHeightMM+3.2)
		}
		x += photoWidthMM + photoGapMM
	}
	cur.y = rowY + cellH + 1
}

// layoutFeature places one feature detail: the heading row with the
// severity chip, the fact table beside the mini-map, the description,
// and each observation with its photos.
func (c *Compositor) layoutFeature(cur *cursor, d *block.FeatureData) {
	nameFace := c.fonts.Face(nameSizePt, inkColor, canvas.FontBold)
	nm := nameFace.Metrics()
	cur.lay.addText(nameFace, d.Name, canvas.Left, cur.x, cur.y+nm.Ascent)
	c.layoutChip(cur.lay, d.Severity, cur.x+cur.width, cur.y)
	cur.y += nm.LineHeight

	catFace := c.fonts.Face(smallSizePt, mutedColor, canvas.FontRegular)
	cm := catFace.Metrics()
	cur.lay.addText(catFace, d.Category, canvas.Left, cur.x, cur.y+cm.Ascent)
	cur.y += cm.LineHeight + 2.5

	factsW := cur.width - MiniMapWidthMM - columnGapMM
	topY := cur.y
	cur.lay.slots = append(cur.lay.slots, imageSlot{
		kind:    slotMiniMap,
		x:       cur.x + factsW + columnGapMM,
		y:       topY,
		w:       MiniMapWidthMM,
		h:       MiniMapHeightMM,
		feature: d.Feature,
	})
	c.layoutFacts(cur, d.Facts, factsW)
	if bottom := topY + MiniMapHeightMM; cur.y < bottom {
		cur.y = bottom
	}
	cur.y += 3

	if len(d.Description) > 0 {
		c.layoutRich(cur, d.Description, bodySizePt, inkColor)
		cur.y += 1.5
	}

	obsFace := c.fonts.Face(obsSizePt, inkColor, canvas.FontBold)
	om := obsFace.Metrics()
	for _, obs := range d.Observations {
		cur.y += 2
		cur.lay.addRule(cur.x, cur.x+cur.width, cur.y)
		cur.y += 3
		cur.lay.addText(obsFace, obs.Type, canvas.Left, cur.x, cur.y+om.Ascent)
		c.layoutChip(cur.lay, obs.Severity, cur.x+cur.width, cur.y)
		cur.y += om.LineHeight + 1
		if len(obs.Recommendation) > 0 {
			c.layoutRich(cur, obs.Recommendation, bodySizePt, inkColor)
			cur.y += 1.5
		}
		if len(obs.Images) > 0 {
			c.layoutPhotoRow(cur, obs.Images, d.Name)
		}
	}
}

// layoutError places the boxed notice that stands in for a feature
// whose fields could not be rendered.
func (c *Compositor) layoutError(cur *cursor, d *block.ErrorData) {
	const pad = 4.0
	nameFace := c.fonts.Face(obsSizePt, inkColor, canvas.FontBold)
	bodyFace := c.fonts.Face(smallSizePt, mutedColor, canvas.FontRegular)
	nm := nameFace.Metrics()
	bm := bodyFace.Metrics()

	reason := block.RichText{{Spans: []block.Span{{Text: d.Reason}}}}
	lines := wrapSpans(reason[0].Spans, func(block.Span) *canvas.FontFace { return bodyFace }, cur.width-2*pad)
	boxH := pad + nm.LineHeight + 1 + float64(len(lines))*bm.LineHeight + pad

	cur.lay.rects = append(cur.lay.rects, placedRect{
		x: cur.x, y: cur.y, w: cur.width, h: boxH,
		fill: errorFill, stroke: errorStroke, strokeW: ruleWidthMM,
	})
	y := cur.y + pad
	cur.lay.addText(nameFace, d.FeatureName, canvas.Left, cur.x+pad, y+nm.Ascent)
	y += nm.LineHeight + 1
	for _, ln := range lines {
		cur.lay.addText(bodyFace, ln.text(), canvas.Left, cur.x+pad, y+bm.Ascent)
		y += bm.LineHeight
	}
	cur.y += boxH
}

// layoutTitle places the cover: logo, title, status, the report
// description, and the client and project details.
func (c *Compositor) layoutTitle(cur *cursor, t *block.TitleData) {
	meta := t.Meta
	centerX := cur.x + cur.width/2

	if meta.Logo != "" {
		cur.lay.slots = append(cur.lay.slots, imageSlot{
			kind: slotLogo,
			x:    centerX - 22.5, y: cur.y + 6,
			w: 45, h: 28,
			src: meta.Logo,
		})
		cur.y += 6 + 28 + 10
	} else {
		cur.y += 16
	}

	titleFace := c.fonts.Face(titleSizePt, inkColor, canvas.FontBold)
	tm := titleFace.Metrics()
	titleSpans := []block.Span{{Text: meta.Title, Bold: true}}
	for _, ln := range wrapSpans(titleSpans, func(block.Span) *canvas.FontFace { return titleFace }, cur.width) {
		cur.lay.addText(titleFace, ln.text(), canvas.Center, centerX, cur.y+tm.Ascent)
		cur.y += tm.LineHeight
	}
	cur.y += 3

	if meta.ReportStatus != "" {
		face := c.fonts.Face(chipSizePt, mutedColor, canvas.FontBold)
		w := face.TextWidth(meta.ReportStatus) + 4.4
		h := 5.2
		cur.lay.rects = append(cur.lay.rects, placedRect{
			x: centerX - w/2, y: cur.y, w: w, h: h,
			fill: boxFill, stroke: boxStroke, strokeW: ruleWidthMM,
		})
		cur.lay.addText(face, meta.ReportStatus, canvas.Center, centerX, cur.y+0.72*h)
		cur.y += h + 6
	} else {
		cur.y += 4
	}

	if len(t.Description) > 0 {
		inset := 15.0
		sub := &cursor{lay: cur.lay, x: cur.x + inset, y: cur.y, width: cur.width - 2*inset, bottom: cur.bottom}
		c.layoutRich(sub, t.Description, bodySizePt, inkColor)
		cur.y = sub.y + 8
	}

	labelFace := c.fonts.Face(smallSizePt, mutedColor, canvas.FontRegular)
	valueFace := c.fonts.Face(bodySizePt, inkColor, canvas.FontRegular)
	valueBold := c.fonts.Face(bodySizePt, inkColor, canvas.FontBold)
	lm := labelFace.Metrics()
	labelW := 35.0
	rowH := 6.5
	row := func(label, value string, face *canvas.FontFace) {
		if value == "" {
			return
		}
		baseline := cur.y + lm.Ascent
		cur.lay.addText(labelFace, label, canvas.Left, cur.x, baseline)
		cur.lay.addText(face, value, canvas.Left, cur.x+labelW, baseline)
		cur.y += rowH
	}
	cur.y += 4
	cur.lay.addRule(cur.x, cur.x+cur.width, cur.y)
	cur.y += 4
	row("Prepared for", meta.ClientName, valueBold)
	row("Contact", meta.ClientContact, valueFace)
	row("Address", meta.ClientAddress, valueFace)
	row("Project", meta.ProjectID, valueFace)
	row("Date", meta.Date().Format("2 January 2006"), valueFace)
}

func (c *Compositor) layoutTeam(cur *cursor, t *block.TeamData) {
	c.layoutSectionHeading(cur, "Survey team")
	nameFace := c.fonts.Face(obsSizePt, inkColor, canvas.FontBold)
	roleFace := c.fonts.Face(smallSizePt, mutedColor, canvas.FontRegular)
	nm := nameFace.Metrics()
	rowH := 8.0
	for _, member := range t.Members {
		baseline := cur.y + nm.Ascent
		cur.lay.addText(nameFace, member.Name, canvas.Left, cur.x, baseline)
		cur.lay.addText(roleFace, member.Role, canvas.Left, cur.x+65, baseline)
		cur.lay.addText(roleFace, member.Email, canvas.Right, cur.x+cur.width, baseline)
		cur.y += rowH
		cur.lay.addRule(cur.x, cur.x+cur.width, cur.y-2)
	}
}

func (c *Compositor) layoutLegend(cur *cursor, l *block.LegendData) {
	c.layoutSectionHeading(cur, "Legend")
	nameFace := c.fonts.Face(bodySizePt, inkColor, canvas.FontRegular)
	countFace := c.fonts.Face(smallSizePt, mutedColor, canvas.FontRegular)
	nm := nameFace.Metrics()
	rowH := 8.0
	for _, row := range l.Rows {
		style := row.Style
		r := 2.6
		cur.lay.circles = append(cur.lay.circles, placedCircle{
			cx: cur.x + 4, cy: cur.y + rowH/2 - 1, r: r,
			fill:    withAlpha(hexOr(style.FillColor, "#3388ff"), style.FillOpacity),
			stroke:  withAlpha(hexOr(style.Color, "#3388ff"), style.Opacity),
			strokeW: 0.5,
		})
		baseline := cur.y + nm.Ascent
		cur.lay.addText(nameFace, row.Category, canvas.Left, cur.x+11, baseline)
		cur.lay.addText(countFace, fmt.Sprintf("%d", row.Count), canvas.Right, cur.x+cur.width, baseline)
		cur.y += rowH
		cur.lay.addRule(cur.x, cur.x+cur.width, cur.y-2)
	}
}

func (c *Compositor) layoutSectionHeading(cur *cursor, title string) {
	face := c.fonts.Face(headingSizePt, inkColor, canvas.FontBold)
	m := face.Metrics()
	cur.lay.addText(face, title, canvas.Left, cur.x, cur.y+m.Ascent)
	cur.y += m.LineHeight + 1.5
	cur.lay.addRule(cur.x, cur.x+cur.width, cur.y)
	cur.y += 5
}

func hexOr(s, fallback string) color.Color {
	if s == "" {
		s = fallback
	}
	return canvas.Hex(s)
}

func withAlpha(c color.Color, alpha float64) color.Color {
	if alpha <= 0 || alpha > 1 {
		alpha = 1
	}
	r, g, b, _ := c.RGBA()
	return color.NRGBA{
		R: uint8(r >> 8),
		G: uint8(g >> 8),
		B: uint8(b >> 8),
		A: uint8(alpha*255 + 0.5),
	}
}
