package scene

import (
	"math"

	"github.com/golang/geo/r3"
)

// Sphere builds a latitude/longitude tessellated sphere centred on the
// origin. UVs run 0..1 around (u) and pole to pole (v).
func Sphere(radius float64, widthSegments, heightSegments int) *VertexBuffer {
	widthSegments = max(widthSegments, 3)
	heightSegments = max(heightSegments, 2)

	b := &VertexBuffer{}
	for iy := 0; iy <= heightSegments; iy++ {
		v := float64(iy) / float64(heightSegments)
		for ix := 0; ix <= widthSegments; ix++ {
			u := float64(ix) / float64(widthSegments)
			p := r3.Vector{
				X: -radius * math.Cos(u*2*math.Pi) * math.Sin(v*math.Pi),
				Y: radius * math.Cos(v*math.Pi),
				Z: radius * math.Sin(u*2*math.Pi) * math.Sin(v*math.Pi),
			}
			b.AppendVertex(p, float32(u), float32(1-v))
		}
	}

	stride := uint32(widthSegments + 1)
	for iy := 0; iy < heightSegments; iy++ {
		for ix := 0; ix < widthSegments; ix++ {
			a := uint32(iy)*stride + uint32(ix) + 1
			bb := uint32(iy)*stride + uint32(ix)
			c := uint32(iy+1)*stride + uint32(ix)
			d := uint32(iy+1)*stride + uint32(ix) + 1
			if iy != 0 {
				b.Indices = append(b.Indices, a, bb, d)
			}
			if iy != heightSegments-1 {
				b.Indices = append(b.Indices, bb, c, d)
			}
		}
	}
	return b
}

// Ring builds a closed loop of segments+1 vertices in the plane through the
// origin perpendicular to normal. The last vertex repeats the first.
func Ring(radius float64, segments int, normal r3.Vector) *VertexBuffer {
	segments = max(segments, 3)
	n := normal.Normalize()
	if n.Norm2() == 0 {
		n = r3.Vector{Y: 1}
	}
	e1 := n.Ortho()
	e2 := n.Cross(e1)

	b := &VertexBuffer{}
	for i := 0; i <= segments; i++ {
		u := float64(i) / float64(segments)
		a := u * 2 * math.Pi
		if i == segments {
			a = 0
		}
		p := e1.Mul(radius * math.Cos(a)).Add(e2.Mul(radius * math.Sin(a)))
		b.AppendVertex(p, float32(u), 0)
	}
	return b
}
