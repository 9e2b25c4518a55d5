package viewer

import (
	"fmt"
	"image/color"
	"math"
	"sort"

	"github.com/golang/geo/r3"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/sudorandom/globe-lines/pkg/geo"
	"github.com/sudorandom/globe-lines/pkg/globe"
	"github.com/sudorandom/globe-lines/pkg/marker"
)

const maxLegendRows = 8

type legendItem struct {
	Label string
	Color color.RGBA
	Count int
}

// regionLegend groups locations by region, largest first. Locations with
// no region are counted under "Other".
func regionLegend(locs []globe.Location) []legendItem {
	idx := make(map[string]int)
	var items []legendItem
	for _, l := range locs {
		label := l.Point.Region
		if label == "" {
			label = "Other"
		}
		i, ok := idx[label]
		if !ok {
			i = len(items)
			idx[label] = i
			items = append(items, legendItem{Label: label, Color: l.Color})
		}
		items[i].Count++
	}
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Count != items[j].Count {
			return items[i].Count > items[j].Count
		}
		return items[i].Label < items[j].Label
	})
	if len(items) > maxLegendRows {
		items = items[:maxLegendRows]
	}
	return items
}

// truncate shortens s to at most n runes, marking the cut with "...".
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

func minimapSize(width int) (int, int) {
	w := max(width/5, 200)
	return w, w / 2
}

// layout returns the margin and base font size for the current resolution.
func (v *Viewer) layout() (margin, fontSize float64) {
	if v.Width > 2000 {
		return 80, 36
	}
	return 40, 18
}

// drawPanel draws the shared box style: translucent fill, outline, accent
// bar and a dimmed title.
func (v *Viewer) drawPanel(screen *ebiten.Image, x, y, w, h, fontSize float64, title string) {
	vector.DrawFilledRect(screen, float32(x-10), float32(y-fontSize-15), float32(w), float32(h), ColorPanel, false)
	vector.StrokeRect(screen, float32(x-10), float32(y-fontSize-15), float32(w), float32(h), 1, ColorPanelEdge, false)
	vector.DrawFilledRect(screen, float32(x-10), float32(y-fontSize-15), 4, float32(fontSize+10), ColorAccent, false)

	if v.fontSource == nil {
		return
	}
	titleFace := &text.GoTextFace{Source: v.fontSource, Size: fontSize * 0.8}
	op := &text.DrawOptions{}
	op.GeoM.Translate(x+5, y-fontSize-5)
	op.ColorScale.Scale(1, 1, 1, 0.5)
	text.Draw(screen, title, titleFace, op)
}

func (v *Viewer) drawLegend(screen *ebiten.Image) {
	if len(v.legend) == 0 || v.fontSource == nil {
		return
	}
	margin, fontSize := v.layout()
	face := &text.GoTextFace{Source: v.fontSource, Size: fontSize * 0.8}
	rowH := fontSize + 10
	boxW := fontSize * 16
	boxH := rowH*float64(len(v.legend)) + fontSize + 25

	x := margin
	y := float64(v.Height) - margin - boxH + fontSize + 15
	v.drawPanel(screen, x, y, boxW, boxH, fontSize, "REGIONS")

	for i, it := range v.legend {
		ty := y + 10 + float64(i)*rowH
		r := float32(fontSize * 0.3)
		vector.DrawFilledCircle(screen, float32(x+fontSize/2), float32(ty+fontSize/2), r, opaque(it.Color), true)

		op := &text.DrawOptions{}
		op.GeoM.Translate(x+fontSize+10, ty)
		op.ColorScale.Scale(1, 1, 1, 0.8)
		text.Draw(screen, it.Label, face, op)

		count := fmt.Sprintf("%d", it.Count)
		tw, _ := text.Measure(count, face, 0)
		cop := &text.DrawOptions{}
		cop.GeoM.Translate(x+boxW-tw-25, ty)
		cop.ColorScale.Scale(1, 1, 1, 0.6)
		text.Draw(screen, count, face, cop)
	}
}

// zoneCounts tallies markers per visibility zone.
func zoneCounts(markers []*marker.Marker) (attached, limb, detached int) {
	for _, m := range markers {
		switch m.Zone {
		case marker.Attached:
			attached++
		case marker.Limb:
			limb++
		case marker.Detached:
			detached++
		}
	}
	return attached, limb, detached
}

func (v *Viewer) statusLines() []string {
	g := v.globe
	attached, limb, detached := zoneCounts(g.Markers().Projector.Markers())
	lines := []string{
		fmt.Sprintf("FPS        %6.1f", v.fps),
		fmt.Sprintf("FLY LINES  %6d", len(g.FlyLines().Lines)),
		fmt.Sprintf("LIVE ARCS  %6d", len(g.LiveArcs())),
		fmt.Sprintf("POINTS     %6d", len(g.Points().Locations)),
		fmt.Sprintf("MARKERS    %2d/%d/%d", attached, limb, detached),
		fmt.Sprintf("DISTANCE   %6.0f", v.orbit.Distance),
	}
	if c := g.Countries(); c != nil {
		lines = append(lines, fmt.Sprintf("BORDERS    %6d", len(c.Loops)))
	}
	if v.feed != nil {
		lines = append(lines, fmt.Sprintf("FEED       %6d", v.feedReceived))
	}
	if v.Soundtrack != nil {
		if t := v.Soundtrack.Current(); t.Song != "" {
			lines = append(lines, "NOW PLAYING", truncate(t.String(), 24))
		}
	}
	return lines
}

func (v *Viewer) drawStatus(screen *ebiten.Image) {
	if v.monoSource == nil {
		return
	}
	margin, fontSize := v.layout()
	lines := v.statusLines()
	face := &text.GoTextFace{Source: v.monoSource, Size: fontSize * 0.8}
	rowH := fontSize + 4
	boxW := fontSize * 14
	boxH := rowH*float64(len(lines)) + fontSize + 25

	x, y := margin, margin+fontSize+15
	v.drawPanel(screen, x, y, boxW, boxH, fontSize, "GLOBE")
	for i, line := range lines {
		op := &text.DrawOptions{}
		op.GeoM.Translate(x, y+5+float64(i)*rowH)
		op.ColorScale.Scale(1, 1, 1, 0.7)
		text.Draw(screen, line, face, op)
	}
}

// mapSegment reports whether a minimap segment should be drawn; segments
// that wrap around the antimeridian would streak across the map.
func mapSegment(x1, x2, width float64) bool {
	return math.Abs(x2-x1) < width/2
}

func (v *Viewer) drawMinimap(screen *ebiten.Image) {
	margin, fontSize := v.layout()
	w, h := minimapSize(v.Width)
	ox := float64(v.Width) - margin - float64(w)
	oy := float64(v.Height) - margin - float64(h)
	v.drawPanel(screen, ox, oy, float64(w)+20, float64(h)+fontSize+25, fontSize, "OVERVIEW")

	g := v.globe
	if c := g.Countries(); c != nil {
		for _, l := range c.Loops {
			v.drawMapPath(screen, ox, oy, float64(w), l.Points, ColorPanelEdge)
		}
	}
	for _, l := range g.FlyLines().Lines {
		v.drawMapPath(screen, ox, oy, float64(w), l.Curve.Sample(32), l.Color)
	}
	for _, l := range g.Points().Locations {
		x, y := v.minimap.Project(l.Point.Lat, l.Point.Lng)
		vector.DrawFilledCircle(screen, float32(ox+x), float32(oy+y), 2, opaque(l.Color), true)
	}

	// Camera position on the map.
	lat, lng := geo.FromPosition(v.pose.Position)
	cx, cy := v.minimap.Project(lat, lng)
	vector.StrokeCircle(screen, float32(ox+cx), float32(oy+cy), 5, 1, ColorAccent, true)
}

func (v *Viewer) drawMapPath(screen *ebiten.Image, ox, oy, width float64, pts []r3.Vector, c color.RGBA) {
	var px, py float64
	for i, p := range pts {
		lat, lng := geo.FromPosition(p)
		x, y := v.minimap.Project(lat, lng)
		if i > 0 && mapSegment(px, x, width) {
			vector.StrokeLine(screen, float32(ox+px), float32(oy+py), float32(ox+x), float32(oy+y), 1, fade(opaque(c), 0.7), true)
		}
		px, py = x, y
	}
}
