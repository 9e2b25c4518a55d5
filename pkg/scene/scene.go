// Package scene holds the render-side data structures the globe builds:
// vertex buffers, programs with typed uniforms, entities and the registry
// that releases them.
package scene

import (
	"errors"
	"fmt"
	"image/color"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/sudorandom/globe-lines/pkg/geo"
)

var ErrInvalidColor = errors.New("invalid color")

// Node is something that can be attached to a Scene.
type Node interface {
	NodeName() string
}

// Scene is the attachment point for nodes. It never owns them.
type Scene interface {
	Attach(Node)
	Detach(Node)
}

// Group is a named node.
type Group struct {
	Name string
}

func (g *Group) NodeName() string { return g.Name }

// Root is a minimal in-memory Scene keeping nodes in attach order.
type Root struct {
	nodes []Node
}

func (r *Root) Attach(n Node) {
	for _, existing := range r.nodes {
		if existing == n {
			return
		}
	}
	r.nodes = append(r.nodes, n)
}

func (r *Root) Detach(n Node) {
	for i, existing := range r.nodes {
		if existing == n {
			r.nodes = append(r.nodes[:i], r.nodes[i+1:]...)
			return
		}
	}
}

func (r *Root) Nodes() []Node { return r.nodes }

// ParseColor accepts "#rrggbb" or "rrggbb" and returns an opaque color.
func ParseColor(s string) (color.RGBA, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "#") {
		s = "#" + s
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("%w %q: %v", ErrInvalidColor, s, err)
	}
	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}, nil
}

// Located is anything with a geographic position.
type Located interface {
	LatLng() (lat, lng float64)
}

// DedupePoints drops points sharing an exact latitude/longitude with an
// earlier point. The first occurrence wins and order is preserved.
func DedupePoints[T Located](points []T) []T {
	seen := make(map[string]struct{}, len(points))
	out := make([]T, 0, len(points))
	for _, p := range points {
		key := geo.PointKey(p.LatLng())
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, p)
	}
	return out
}
