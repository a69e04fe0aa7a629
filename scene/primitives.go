package scene

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"mirror-engine/core"
)

// CreateSphere generates a UV-sphere.
func CreateSphere(radius float32, segments, rings int) core.MeshData {
	if segments < 3 {
		segments = 3
	}
	if rings < 2 {
		rings = 2
	}

	var data core.MeshData
	for ring := 0; ring <= rings; ring++ {
		phi := float64(ring) * math.Pi / float64(rings)
		sinPhi := float32(math.Sin(phi))
		cosPhi := float32(math.Cos(phi))

		for seg := 0; seg <= segments; seg++ {
			theta := float64(seg) * 2.0 * math.Pi / float64(segments)
			normal := mgl32.Vec3{
				sinPhi * float32(math.Cos(theta)),
				cosPhi,
				sinPhi * float32(math.Sin(theta)),
			}
			data.Vertices = append(data.Vertices, core.Vertex{
				Position: normal.Mul(radius),
				Normal:   normal,
				UV:       mgl32.Vec2{float32(seg) / float32(segments), float32(ring) / float32(rings)},
			})
		}
	}

	for ring := 0; ring < rings; ring++ {
		for seg := 0; seg < segments; seg++ {
			current := uint32(ring*(segments+1) + seg)
			next := current + uint32(segments+1)
			data.Indices = append(data.Indices,
				current, current+1, next,
				current+1, next+1, next,
			)
		}
	}
	return data
}

// CreateTorus generates a torus lying in the XZ plane.
func CreateTorus(majorRadius, minorRadius float32, majorSegments, minorSegments int) core.MeshData {
	if majorSegments < 3 {
		majorSegments = 3
	}
	if minorSegments < 3 {
		minorSegments = 3
	}

	var data core.MeshData
	for i := 0; i <= majorSegments; i++ {
		theta := float64(i) * 2.0 * math.Pi / float64(majorSegments)
		cosTheta := float32(math.Cos(theta))
		sinTheta := float32(math.Sin(theta))

		for j := 0; j <= minorSegments; j++ {
			phi := float64(j) * 2.0 * math.Pi / float64(minorSegments)
			cosPhi := float32(math.Cos(phi))
			sinPhi := float32(math.Sin(phi))

			data.Vertices = append(data.Vertices, core.Vertex{
				Position: mgl32.Vec3{
					(majorRadius + minorRadius*cosPhi) * cosTheta,
					minorRadius * sinPhi,
					(majorRadius + minorRadius*cosPhi) * sinTheta,
				},
				Normal: mgl32.Vec3{cosPhi * cosTheta, sinPhi, cosPhi * sinTheta}.Normalize(),
				UV:     mgl32.Vec2{float32(i) / float32(majorSegments), float32(j) / float32(minorSegments)},
			})
		}
	}

	for i := 0; i < majorSegments; i++ {
		for j := 0; j < minorSegments; j++ {
			current := uint32(i*(minorSegments+1) + j)
			next := uint32((i+1)*(minorSegments+1) + j)
			data.Indices = append(data.Indices, current, current+1, next)
			data.Indices = append(data.Indices, current+1, next+1, next)
		}
	}
	return data
}

// CreateCube generates an axis-aligned cube with per-face normals.
func CreateCube(size float32) core.MeshData {
	s := size / 2
	faces := []struct {
		normal mgl32.Vec3
		corner [4]mgl32.Vec3
	}{
		{mgl32.Vec3{0, 0, 1}, [4]mgl32.Vec3{{-s, -s, s}, {s, -s, s}, {s, s, s}, {-s, s, s}}},
		{mgl32.Vec3{0, 0, -1}, [4]mgl32.Vec3{{s, -s, -s}, {-s, -s, -s}, {-s, s, -s}, {s, s, -s}}},
		{mgl32.Vec3{0, 1, 0}, [4]mgl32.Vec3{{-s, s, s}, {s, s, s}, {s, s, -s}, {-s, s, -s}}},
		{mgl32.Vec3{0, -1, 0}, [4]mgl32.Vec3{{-s, -s, -s}, {s, -s, -s}, {s, -s, s}, {-s, -s, s}}},
		{mgl32.Vec3{1, 0, 0}, [4]mgl32.Vec3{{s, -s, s}, {s, -s, -s}, {s, s, -s}, {s, s, s}}},
		{mgl32.Vec3{-1, 0, 0}, [4]mgl32.Vec3{{-s, -s, -s}, {-s, -s, s}, {-s, s, s}, {-s, s, -s}}},
	}
	uvs := [4]mgl32.Vec2{{0, 0}, {1, 0}, {1, 1}, {0, 1}}

	var data core.MeshData
	for _, f := range faces {
		base := uint32(len(data.Vertices))
		for i, c := range f.corner {
			data.Vertices = append(data.Vertices, core.Vertex{Position: c, Normal: f.normal, UV: uvs[i]})
		}
		data.Indices = append(data.Indices, base, base+1, base+2, base+2, base+3, base)
	}
	return data
}
