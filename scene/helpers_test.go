package scene

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mirror-engine/gpu/gputest"
	"mirror-engine/shader"
)

func loadProgram(t *testing.T, dev *gputest.Device, vert, frag string) *shader.Program {
	t.Helper()
	p, err := shader.Load(dev, "410", shader.Source{Vertex: "testdata/" + vert, Fragment: "testdata/" + frag}, nil)
	require.NoError(t, err)
	return p
}

func assertVec3(t *testing.T, want, got mgl32.Vec3) {
	t.Helper()
	assert.True(t, want.ApproxEqualThreshold(got, 1e-4), "want %v, got %v", want, got)
}

func assertMat4(t *testing.T, want, got mgl32.Mat4) {
	t.Helper()
	assert.True(t, want.ApproxEqualThreshold(got, 1e-4), "want\n%v\ngot\n%v", want, got)
}
