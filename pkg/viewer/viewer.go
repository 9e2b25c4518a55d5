// Package viewer renders a globe as an ebiten game: a wireframe of the
// engine's geometry with a status panel and a flat overview map.
package viewer

import (
	"bytes"
	"image/color"
	"log"
	"math"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/sudorandom/globe-lines/pkg/camera"
	"github.com/sudorandom/globe-lines/pkg/config"
	"github.com/sudorandom/globe-lines/pkg/geo"
	"github.com/sudorandom/globe-lines/pkg/globe"
	"github.com/sudorandom/globe-lines/pkg/ticker"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
)

// At most maxArcsPerFrame queued feed arcs start in one frame, or
// burstArcsPerFrame once the backlog passes burstBacklog.
const (
	maxArcsPerFrame   = 20
	burstArcsPerFrame = 100
	burstBacklog      = 200
)

const (
	dragSpeed = 0.005
	zoomStep  = 0.9
	starCount = 400
)

var (
	ColorBackground = color.RGBA{8, 10, 15, 255}
	ColorPanel      = color.RGBA{0, 0, 0, 100}
	ColorPanelEdge  = color.RGBA{36, 42, 53, 255}
	ColorAccent     = color.RGBA{0, 191, 255, 255}
	ColorLabel      = color.RGBA{255, 255, 255, 255}
	ColorDetached   = color.RGBA{255, 200, 0, 255}
)

type Viewer struct {
	Width, Height int
	CaptureDir    string

	// CaptureEvery saves a frame on this interval when set.
	CaptureEvery time.Duration

	// Soundtrack is optional background music, shut down by Close.
	Soundtrack *Soundtrack

	globe  *globe.Globe
	ticker *ticker.Manager
	orbit  *camera.Orbit
	lens   camera.Lens
	pose   camera.Pose
	feed   <-chan config.Arc

	stars      []star
	minimap    *geo.Mollweide
	fontSource *text.GoTextFaceSource
	monoSource *text.GoTextFaceSource

	dragging     bool
	lastX, lastY int
	focusIndex   int
	captureNext  bool
	lastCapture  time.Time
	frames       int
	fps          float64
	fpsWindow    time.Time
	scratch      []screenPoint
	waveScratch  []globe.Wave
	legend       []legendItem
	feedReceived int
}

// New wires g to a fresh ticker and an orbit camera built from the
// globe's camera settings.
func New(g *globe.Globe, width, height int) *Viewer {
	s, err := text.NewGoTextFaceSource(bytes.NewReader(goregular.TTF))
	if err != nil {
		log.Printf("[VIEWER] Failed to load font: %v", err)
	}
	m, err := text.NewGoTextFaceSource(bytes.NewReader(gomono.TTF))
	if err != nil {
		log.Printf("[VIEWER] Failed to load mono font: %v", err)
	}

	cam := g.Setting().CameraAttr
	orbit := camera.NewOrbit(cam.Distance)
	orbit.AutoRotate = cam.AutoRotate
	orbit.AutoRotateSpeed = cam.AutoRotateSpeed
	orbit.MinDistance = math.Max(orbit.MinDistance, g.Earth().Radius*1.1)

	mapW, mapH := minimapSize(width)
	v := &Viewer{
		Width:      width,
		Height:     height,
		globe:      g,
		ticker:     &ticker.Manager{},
		orbit:      orbit,
		lens:       camera.Lens{FovY: cam.Fov * math.Pi / 180, Width: width, Height: height, Near: 0.1},
		stars:      newStarfield(starCount, width, height, 1),
		minimap:    geo.NewMollweide(mapW, mapH, float64(mapW)/(2*math.Sqrt(8))*0.95),
		fontSource: s,
		monoSource: m,
		fpsWindow:  time.Now(),
	}
	v.pose = orbit.Pose()
	v.legend = regionLegend(g.Points().Locations)
	g.Subscribe(v.ticker)
	return v
}

// SetFeed attaches a channel of live arcs. Arcs are started from Update,
// never from the sending goroutine.
func (v *Viewer) SetFeed(ch <-chan config.Arc) { v.feed = ch }

func (v *Viewer) Update() error {
	dt := frameDelta(ebiten.TPS())
	v.handleInput()

	v.orbit.Update(dt)
	v.pose = v.orbit.Pose()
	v.feedReceived += drainArcs(v.feed, v.globe.AddArc)
	v.ticker.Tick(dt, v.pose)

	v.frames++
	if elapsed := time.Since(v.fpsWindow); elapsed >= time.Second {
		v.fps = float64(v.frames) / elapsed.Seconds()
		v.frames = 0
		v.fpsWindow = time.Now()
	}
	return nil
}

func frameDelta(tps int) time.Duration {
	if tps <= 0 {
		tps = ebiten.DefaultTPS
	}
	return time.Second / time.Duration(tps)
}

// drainArcs starts queued arcs, at most maxArcsPerFrame unless the backlog
// has grown past burstBacklog.
func drainArcs(ch <-chan config.Arc, add func(config.Arc)) int {
	if ch == nil {
		return 0
	}
	limit := maxArcsPerFrame
	if len(ch) > burstBacklog {
		limit = burstArcsPerFrame
	}
	n := 0
	for n < limit {
		select {
		case arc := <-ch:
			add(arc)
			n++
		default:
			return n
		}
	}
	return n
}

func (v *Viewer) handleInput() {
	if ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) {
		x, y := ebiten.CursorPosition()
		if v.dragging {
			v.orbit.Rotate(-float64(x-v.lastX)*dragSpeed, -float64(y-v.lastY)*dragSpeed)
		}
		v.dragging = true
		v.lastX, v.lastY = x, y
	} else {
		v.dragging = false
	}

	if _, wy := ebiten.Wheel(); wy != 0 {
		v.orbit.Zoom(math.Pow(zoomStep, wy))
	}
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		v.orbit.AutoRotate = !v.orbit.AutoRotate
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF) {
		v.focusNext()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyP) {
		v.captureNext = true
	}
}

// focusNext turns the camera to the next marker, or the next point when
// there are no markers.
func (v *Viewer) focusNext() {
	var targets [][2]float64
	for _, m := range v.globe.Setting().MarkerAttr.Markers {
		targets = append(targets, [2]float64{m.Lat, m.Lng})
	}
	if len(targets) == 0 {
		for _, l := range v.globe.Points().Locations {
			targets = append(targets, [2]float64{l.Point.Lat, l.Point.Lng})
		}
	}
	if len(targets) == 0 {
		return
	}
	t := targets[v.focusIndex%len(targets)]
	v.focusIndex++
	v.orbit.AutoRotate = false
	v.orbit.Focus(t[0], t[1])
}

func (v *Viewer) Draw(screen *ebiten.Image) {
	screen.Fill(ColorBackground)
	vw := view{lens: v.lens, pose: v.pose, radius: v.globe.Earth().Radius}

	v.drawStars(screen)
	v.drawEarth(screen, vw)
	v.drawCountries(screen, vw)
	v.drawFlyLines(screen, vw)
	v.drawLiveArcs(screen, vw)
	v.drawParticles(screen, vw)
	v.drawPoints(screen, vw)
	v.drawWaves(screen, vw)
	v.drawMarkers(screen, vw)

	v.drawMinimap(screen)
	v.drawLegend(screen)
	v.drawStatus(screen)

	now := time.Now()
	if v.captureNext {
		v.captureNext = false
		v.captureFrame(screen, "manual", now)
	} else if v.CaptureEvery > 0 && now.Sub(v.lastCapture) >= v.CaptureEvery {
		v.lastCapture = now
		v.captureFrame(screen, "auto", now)
	}
}

func (v *Viewer) Layout(w, h int) (int, int) { return v.Width, v.Height }

// Close unsubscribes and releases the globe.
func (v *Viewer) Close() {
	if v.Soundtrack != nil {
		v.Soundtrack.Shutdown()
	}
	v.globe.Destroy()
	v.ticker.Destroy()
}
