package scene

import (
	"image/color"

	"github.com/golang/geo/r3"
)

// Range is a contiguous run of vertices contributed by one source buffer.
type Range struct {
	Start, Count int
}

// VertexBuffer is a flat, GPU-style attribute store: three position floats,
// four color floats and two UV floats per vertex.
type VertexBuffer struct {
	Positions []float32
	Colors    []float32
	UVs       []float32
	Indices   []uint32
	Ranges    []Range
}

func (b *VertexBuffer) Len() int { return len(b.Positions) / 3 }

// AppendVertex adds one vertex with a transparent color and the UV (u, v).
func (b *VertexBuffer) AppendVertex(p r3.Vector, u, v float32) {
	b.Positions = append(b.Positions, float32(p.X), float32(p.Y), float32(p.Z))
	b.Colors = append(b.Colors, 0, 0, 0, 0)
	b.UVs = append(b.UVs, u, v)
}

func (b *VertexBuffer) Vertex(i int) r3.Vector {
	return r3.Vector{
		X: float64(b.Positions[i*3]),
		Y: float64(b.Positions[i*3+1]),
		Z: float64(b.Positions[i*3+2]),
	}
}

func (b *VertexBuffer) SetVertex(i int, p r3.Vector) {
	b.Positions[i*3] = float32(p.X)
	b.Positions[i*3+1] = float32(p.Y)
	b.Positions[i*3+2] = float32(p.Z)
}

func (b *VertexBuffer) U(i int) float32 { return b.UVs[i*2] }

func (b *VertexBuffer) Color(i int) color.RGBA {
	c := b.Colors[i*4 : i*4+4]
	return color.RGBA{
		R: uint8(c[0]*255 + 0.5),
		G: uint8(c[1]*255 + 0.5),
		B: uint8(c[2]*255 + 0.5),
		A: uint8(c[3]*255 + 0.5),
	}
}

// FillColor paints every vertex of b with c.
func FillColor(b *VertexBuffer, c color.RGBA) {
	n := b.Len()
	if len(b.Colors) != n*4 {
		b.Colors = make([]float32, n*4)
	}
	r, g, bl, a := float32(c.R)/255, float32(c.G)/255, float32(c.B)/255, float32(c.A)/255
	for i := 0; i < n; i++ {
		b.Colors[i*4] = r
		b.Colors[i*4+1] = g
		b.Colors[i*4+2] = bl
		b.Colors[i*4+3] = a
	}
}

// Translate moves every vertex of b by offset.
func Translate(b *VertexBuffer, offset r3.Vector) {
	for i := 0; i < b.Len(); i++ {
		b.SetVertex(i, b.Vertex(i).Add(offset))
	}
}

// Merge concatenates buffers into one, recording the vertex range each
// source occupies. Indices are rebased onto the merged vertex array.
func Merge(buffers ...*VertexBuffer) *VertexBuffer {
	var vertices, indices int
	for _, b := range buffers {
		vertices += b.Len()
		indices += len(b.Indices)
	}

	out := &VertexBuffer{
		Positions: make([]float32, 0, vertices*3),
		Colors:    make([]float32, 0, vertices*4),
		UVs:       make([]float32, 0, vertices*2),
		Ranges:    make([]Range, 0, len(buffers)),
	}
	if indices > 0 {
		out.Indices = make([]uint32, 0, indices)
	}

	for _, b := range buffers {
		base := out.Len()
		n := b.Len()
		out.Positions = append(out.Positions, b.Positions[:n*3]...)
		out.Colors = appendPadded(out.Colors, b.Colors, n*4)
		out.UVs = appendPadded(out.UVs, b.UVs, n*2)
		for _, idx := range b.Indices {
			out.Indices = append(out.Indices, idx+uint32(base))
		}
		out.Ranges = append(out.Ranges, Range{Start: base, Count: n})
	}
	return out
}

func appendPadded(dst, src []float32, want int) []float32 {
	if len(src) >= want {
		return append(dst, src[:want]...)
	}
	dst = append(dst, src...)
	for i := len(src); i < want; i++ {
		dst = append(dst, 0)
	}
	return dst
}
