package scene

import (
	"github.com/go-gl/mathgl/mgl32"

	"mirror-engine/core"
)

// FrustumPlane is a plane in Hessian normal form: dot(N, p) + D = 0, with N
// pointing into the frustum.
type FrustumPlane struct {
	N mgl32.Vec3
	D float32
}

func (p FrustumPlane) Distance(pt mgl32.Vec3) float32 {
	return p.N.Dot(pt) + p.D
}

// Frustum holds the six clip planes: left, right, bottom, top, near, far.
type Frustum struct {
	Planes [6]FrustumPlane
}

// FrustumFromMatrix extracts the clip planes of a projection·view matrix
// (Gribb/Hartmann).
func FrustumFromMatrix(vp mgl32.Mat4) Frustum {
	r0, r1, r2, r3 := vp.Row(0), vp.Row(1), vp.Row(2), vp.Row(3)

	var f Frustum
	f.Planes[0] = normalizePlane(r3.Add(r0))
	f.Planes[1] = normalizePlane(r3.Sub(r0))
	f.Planes[2] = normalizePlane(r3.Add(r1))
	f.Planes[3] = normalizePlane(r3.Sub(r1))
	f.Planes[4] = normalizePlane(r3.Add(r2))
	f.Planes[5] = normalizePlane(r3.Sub(r2))
	return f
}

func normalizePlane(v mgl32.Vec4) FrustumPlane {
	n := v.Vec3()
	l := n.Len()
	if l == 0 {
		return FrustumPlane{}
	}
	return FrustumPlane{N: n.Mul(1 / l), D: v.W() / l}
}

// AABB is an axis-aligned bounding box.
type AABB struct {
	Min, Max mgl32.Vec3
}

// BoundsOf returns the local-space box around data. Empty data yields a
// zero box at the origin.
func BoundsOf(data core.MeshData) AABB {
	if len(data.Vertices) == 0 {
		return AABB{}
	}
	b := AABB{Min: data.Vertices[0].Position, Max: data.Vertices[0].Position}
	for _, v := range data.Vertices[1:] {
		for i := 0; i < 3; i++ {
			b.Min[i] = min(b.Min[i], v.Position[i])
			b.Max[i] = max(b.Max[i], v.Position[i])
		}
	}
	return b
}

func (b AABB) Center() mgl32.Vec3  { return b.Min.Add(b.Max).Mul(0.5) }
func (b AABB) Extents() mgl32.Vec3 { return b.Max.Sub(b.Min).Mul(0.5) }

// Transform returns the box enclosing b after the affine transform m.
func (b AABB) Transform(m mgl32.Mat4) AABB {
	c := mgl32.TransformCoordinate(b.Center(), m)
	e := b.Extents()
	var ext mgl32.Vec3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			a := m.At(i, j)
			if a < 0 {
				a = -a
			}
			ext[i] += a * e[j]
		}
	}
	return AABB{Min: c.Sub(ext), Max: c.Add(ext)}
}

// Intersects reports false only when b lies entirely outside one of the
// planes. It tests the corner furthest along each plane normal.
func (f *Frustum) Intersects(b AABB) bool {
	for _, p := range f.Planes {
		var corner mgl32.Vec3
		for i := 0; i < 3; i++ {
			if p.N[i] >= 0 {
				corner[i] = b.Max[i]
			} else {
				corner[i] = b.Min[i]
			}
		}
		if p.Distance(corner) < 0 {
			return false
		}
	}
	return true
}
