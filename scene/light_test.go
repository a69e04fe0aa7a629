package scene

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mirror-engine/core"
	"mirror-engine/gpu"
	"mirror-engine/gpu/gputest"
)

func TestLightShadowMatricesLookAlongFaces(t *testing.T) {
	dev := gputest.New()
	l, err := NewLight(dev, NewPositionTable(), mgl32.Vec3{1, 2, 3}, core.ColorWhite, 128, 0.1, 25)
	require.NoError(t, err)

	dirs := []mgl32.Vec3{{1, 0, 0}, {-1, 0, 0}, {0, 1, 0}, {0, -1, 0}, {0, 0, 1}, {0, 0, -1}}
	for i, m := range l.ShadowMatrices() {
		// a point straight along the face direction lands in the centre of that face
		clip := m.Mul4x1(l.Position().Add(dirs[i].Mul(5)).Vec4(1))
		ndc := clip.Vec3().Mul(1 / clip.W())
		assert.InDelta(t, 0, ndc.X(), 1e-4, "face %d", i)
		assert.InDelta(t, 0, ndc.Y(), 1e-4, "face %d", i)
		assert.True(t, ndc.Z() > -1 && ndc.Z() < 1, "face %d depth %v", i, ndc.Z())
	}
}

func TestLightShadowPassBindsCubeTarget(t *testing.T) {
	dev := gputest.New()
	l, err := NewLight(dev, NewPositionTable(), mgl32.Vec3{}, core.ColorWhite, 256, 0.1, 25)
	require.NoError(t, err)
	assert.Equal(t, gpu.DepthCubeTarget, l.ShadowTarget().Kind)
	dev.Reset()

	l.BeginShadowPass()
	require.Len(t, dev.Calls, 3)
	assert.Equal(t, "BindTarget", dev.Calls[0].Op)
	assert.Equal(t, [4]int{0, 0, 256, 256}, dev.Calls[1].Value)
	assert.Equal(t, [2]bool{false, true}, dev.Calls[2].Value)

	fbo := l.ShadowTarget().FBO
	l.Destroy()
	l.Destroy()
	assert.Equal(t, 1, dev.Released("target", fbo))
}
