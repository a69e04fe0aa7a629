package core

import (
	"github.com/go-gl/mathgl/mgl32"
)

type Color struct {
	R, G, B, A float32
}

var (
	ColorWhite = Color{1, 1, 1, 1}
	ColorBlack = Color{0, 0, 0, 1}
)

// Vec3 returns the RGB channels as a vector, dropping alpha.
func (c Color) Vec3() mgl32.Vec3 {
	return mgl32.Vec3{c.R, c.G, c.B}
}

// Premultiplied scales RGB by alpha.
func (c Color) Premultiplied() Color {
	return Color{R: c.R * c.A, G: c.G * c.A, B: c.B * c.A, A: c.A}
}

// ColorFromSlice builds a colour from 3 or 4 components; missing alpha is 1.
func ColorFromSlice(v []float32) Color {
	c := ColorWhite
	if len(v) > 0 {
		c.R = v[0]
	}
	if len(v) > 1 {
		c.G = v[1]
	}
	if len(v) > 2 {
		c.B = v[2]
	}
	if len(v) > 3 {
		c.A = v[3]
	}
	return c
}

// Vertex is the interleaved layout uploaded for every mesh:
// position (location 0), normal (1), texcoord (2).
type Vertex struct {
	Position mgl32.Vec3
	Normal   mgl32.Vec3
	UV       mgl32.Vec2
}

// VertexStride is the size in bytes of one interleaved Vertex.
const VertexStride = 8 * 4

type MeshData struct {
	Vertices []Vertex
	Indices  []uint32
}

// Flatten interleaves the vertices into the float layout the GPU expects.
func (d MeshData) Flatten() []float32 {
	out := make([]float32, 0, len(d.Vertices)*8)
	for _, v := range d.Vertices {
		out = append(out,
			v.Position[0], v.Position[1], v.Position[2],
			v.Normal[0], v.Normal[1], v.Normal[2],
			v.UV[0], v.UV[1],
		)
	}
	return out
}
