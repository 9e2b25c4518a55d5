package globe

import (
	"log"
	"time"

	"github.com/sudorandom/globe-lines/pkg/config"
	"github.com/sudorandom/globe-lines/pkg/flow"
	"github.com/sudorandom/globe-lines/pkg/scene"
)

// MaxLiveArcs bounds the transient arcs kept alive at once. The oldest arc
// is dropped when a new one would exceed it.
const MaxLiveArcs = 512

// LiveArc is a transient fly line added after construction. It grows in,
// sends its particle across once and is then released.
type LiveArc struct {
	FlyLine
	Entity   *scene.Entity[flow.Uniforms]
	Animator *flow.Animator
}

func (a *LiveArc) expired() bool {
	st := a.Animator.State()
	return st.Elapsed >= st.GrowthDuration+1+st.FlowLength
}

// LiveArcGroup holds arcs streamed in at runtime.
type LiveArcGroup struct {
	scene.Group

	Arcs []*LiveArc
}

func (g *Globe) newLiveArc(arc config.Arc) (*LiveArc, error) {
	attr := g.setting.FlyLineAttr
	c, col, err := buildArc(arc, attr.CurveType, g.setting.EarthAttr.Radius)
	if err != nil {
		return nil, err
	}
	animator, err := flow.NewAnimator(attr.GrowthDuration, attr.FlyingLineLength, attr.FlowSpeed)
	if err != nil {
		return nil, err
	}
	buf := lineBuffer(c, attr.Segments, col, attr.FlyLineOpacity)
	return &LiveArc{
		FlyLine:  FlyLine{Arc: arc, Curve: c, Color: col, Range: scene.Range{Count: buf.Len()}},
		Entity:   scene.NewEntity("liveFlyLine", buf, animator.Uniforms()),
		Animator: animator,
	}, nil
}

// AddArc starts a transient fly line. Bad arcs are logged and ignored.
func (g *Globe) AddArc(arc config.Arc) {
	if g.destroyed {
		return
	}
	a, err := g.newLiveArc(arc)
	if err != nil {
		log.Printf("[FLYLINE] Skipping live %s: %v", arcLabel(arc), err)
		return
	}
	if len(g.live.Arcs) >= MaxLiveArcs {
		g.live.Arcs[0].Entity.Dispose()
		g.live.Arcs = g.live.Arcs[1:]
	}
	g.live.Arcs = append(g.live.Arcs, a)
}

func (l *LiveArcGroup) update(dt time.Duration) {
	active := l.Arcs[:0]
	for _, a := range l.Arcs {
		a.Animator.Update(dt)
		if a.expired() {
			a.Entity.Dispose()
			continue
		}
		a.Entity.Program.Uniforms = a.Animator.Uniforms()
		active = append(active, a)
	}
	for i := len(active); i < len(l.Arcs); i++ {
		l.Arcs[i] = nil
	}
	l.Arcs = active
}

func (l *LiveArcGroup) dispose() {
	for _, a := range l.Arcs {
		a.Entity.Dispose()
	}
	l.Arcs = nil
}
