// Package globe assembles the earth, fly lines, points, waves, markers and
// country borders from a Setting and advances them once per frame.
package globe

import (
	"errors"
	"fmt"
	"image/color"
	"log"

	geojson "github.com/paulmach/go.geojson"
	"github.com/sudorandom/globe-lines/pkg/config"
	"github.com/sudorandom/globe-lines/pkg/scene"
	"github.com/sudorandom/globe-lines/pkg/ticker"
)

var ErrNilSetting = errors.New("globe: nil setting")

type EarthUniforms struct {
	Color              color.RGBA
	Atmosphere         color.RGBA
	AtmosphereAltitude float32
	ShowAtmosphere     bool
}

// EarthGroup is the globe body itself.
type EarthGroup struct {
	scene.Group

	Radius float64
	Entity *scene.Entity[EarthUniforms]
}

func newEarthGroup(s *config.Setting, reg *scene.Registry) *EarthGroup {
	attr := s.EarthAttr
	body, err := scene.ParseColor(attr.GlobeColor)
	if err != nil {
		log.Printf("[GLOBE] %v, using default globe color", err)
		body = color.RGBA{0x26, 0x39, 0x8c, 255}
	}
	halo, err := scene.ParseColor(s.AtmosphereAttr.AtmosphereColor)
	if err != nil {
		log.Printf("[GLOBE] %v, using default atmosphere color", err)
		halo = color.RGBA{0xa6, 0xe6, 0xff, 255}
	}

	b := scene.Sphere(attr.Radius, attr.Segments, attr.Segments/2)
	scene.FillColor(b, body)
	e := scene.NewEntity("earth", b, EarthUniforms{
		Color:              body,
		Atmosphere:         halo,
		AtmosphereAltitude: float32(s.AtmosphereAttr.AtmosphereAltitude),
		ShowAtmosphere:     s.AtmosphereAttr.ShowAtmosphere,
	})
	reg.Track(e)
	return &EarthGroup{Group: scene.Group{Name: "earth"}, Radius: attr.Radius, Entity: e}
}

type Globe struct {
	setting  *config.Setting
	scene    scene.Scene
	registry scene.Registry

	earth     *EarthGroup
	flyLines  *FlyLineGroup
	points    *PointGroup
	waves     *WaveGroup
	markers   *MarkerGroup
	countries *CountryGroup
	live      *LiveArcGroup

	nodes     []scene.Node
	ticker    *ticker.Manager
	sub       ticker.Subscription
	destroyed bool
}

// New builds every group from setting and attaches them to sc. Arcs that
// cannot be built are logged and skipped; invalid settings fail.
func New(setting *config.Setting, sc scene.Scene) (*Globe, error) {
	if setting == nil {
		return nil, ErrNilSetting
	}
	if err := setting.Validate(); err != nil {
		return nil, fmt.Errorf("globe: %w", err)
	}

	g := &Globe{setting: setting, scene: sc}
	g.earth = newEarthGroup(setting, &g.registry)

	var err error
	if g.flyLines, err = newFlyLineGroup(setting, &g.registry); err != nil {
		g.registry.DisposeAll()
		return nil, err
	}
	g.points = newPointGroup(setting, &g.registry)
	g.waves = newWaveGroup(setting, g.points.Locations, &g.registry)
	if g.markers, err = newMarkerGroup(setting, &g.registry); err != nil {
		g.registry.DisposeAll()
		return nil, err
	}
	g.live = &LiveArcGroup{Group: scene.Group{Name: "liveFlyLine"}}

	for _, n := range []scene.Node{g.earth, g.flyLines, g.points, g.waves, g.markers, g.live} {
		g.attach(n)
	}
	return g, nil
}

func (g *Globe) attach(n scene.Node) {
	g.nodes = append(g.nodes, n)
	if g.scene != nil {
		g.scene.Attach(n)
	}
}

// SetCountries projects border features onto the globe, replacing any
// borders set before.
func (g *Globe) SetCountries(fc *geojson.FeatureCollection) {
	if g.destroyed || fc == nil {
		return
	}
	if old := g.countries; old != nil {
		g.detach(old)
		g.registry.Untrack(old.Entity)
	}
	g.countries = newCountryGroup(g.setting, fc, &g.registry)
	g.attach(g.countries)
}

func (g *Globe) detach(n scene.Node) {
	for i, existing := range g.nodes {
		if existing == n {
			g.nodes = append(g.nodes[:i], g.nodes[i+1:]...)
			break
		}
	}
	if g.scene != nil {
		g.scene.Detach(n)
	}
}

// Subscribe registers the globe for frame ticks. Destroy removes it again.
func (g *Globe) Subscribe(m *ticker.Manager) {
	if g.destroyed || m == nil {
		return
	}
	if g.ticker != nil {
		g.ticker.Unsubscribe(g.sub)
	}
	g.ticker = m
	g.sub = m.Subscribe(g)
}

// Update advances every animated group by one frame. The camera in f must
// already be current.
func (g *Globe) Update(f ticker.Frame) {
	if g.destroyed {
		return
	}
	g.flyLines.update(f.Delta)
	g.waves.update(f.Delta)
	g.markers.update(f.Camera)
	g.live.update(f.Delta)
}

// Destroy stops ticking, detaches every group and releases all entities.
// It is safe to call more than once.
func (g *Globe) Destroy() {
	if g.destroyed {
		return
	}
	g.destroyed = true

	if g.ticker != nil {
		g.ticker.Unsubscribe(g.sub)
		g.ticker = nil
	}
	for i := len(g.nodes) - 1; i >= 0; i-- {
		if g.scene != nil {
			g.scene.Detach(g.nodes[i])
		}
	}
	g.nodes = nil
	g.live.dispose()
	g.registry.DisposeAll()
}

func (g *Globe) Destroyed() bool { return g.destroyed }

func (g *Globe) Nodes() []scene.Node { return g.nodes }

// Live counts entities that are still holding resources.
func (g *Globe) Live() int { return g.registry.Live() + len(g.live.Arcs) }

func (g *Globe) Setting() *config.Setting { return g.setting }
func (g *Globe) Earth() *EarthGroup { return g.earth }
func (g *Globe) FlyLines() *FlyLineGroup { return g.flyLines }
func (g *Globe) Points() *PointGroup { return g.points }
func (g *Globe) Waves() *WaveGroup { return g.waves }
func (g *Globe) Markers() *MarkerGroup { return g.markers }
func (g *Globe) Countries() *CountryGroup { return g.countries }
func (g *Globe) LiveArcs() []*LiveArc { return g.live.Arcs }
