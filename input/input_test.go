package input

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"

	"mirror-engine/scene"
)

type fakeSource struct {
	keys    map[int]bool
	buttons map[int]bool
	x, y    float64
}

func newFakeSource() *fakeSource {
	return &fakeSource{keys: map[int]bool{}, buttons: map[int]bool{}}
}

func (f *fakeSource) IsKeyPressed(key int) bool       { return f.keys[key] }
func (f *fakeSource) IsMouseButtonPressed(b int) bool  { return f.buttons[b] }
func (f *fakeSource) GetCursorPos() (float64, float64) { return f.x, f.y }

var testKeys = Bindings{Forward: 1, Backward: 2, Left: 3, Right: 4, Up: 5, Down: 6, Look: 1}

func newCamera() *scene.ViewCamera {
	return scene.NewViewCamera(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{0, 0, -1}, mgl32.Vec3{0, 1, 0})
}

func TestProcessIdleLeavesCameraAlone(t *testing.T) {
	src := newFakeSource()
	p := NewProcessor(src, testKeys)
	cam := newCamera()

	assert.False(t, p.Process(cam, 0.016))
	assert.Equal(t, mgl32.Vec3{}, cam.Position)
}

func TestProcessMovement(t *testing.T) {
	tests := []struct {
		name string
		key  int
		want mgl32.Vec3
	}{
		{"forward", testKeys.Forward, mgl32.Vec3{0, 0, -2}},
		{"backward", testKeys.Backward, mgl32.Vec3{0, 0, 2}},
		{"left", testKeys.Left, mgl32.Vec3{-2, 0, 0}},
		{"right", testKeys.Right, mgl32.Vec3{2, 0, 0}},
		{"up", testKeys.Up, mgl32.Vec3{0, 2, 0}},
		{"down", testKeys.Down, mgl32.Vec3{0, -2, 0}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			src := newFakeSource()
			src.keys[tc.key] = true
			p := NewProcessor(src, testKeys)
			cam := newCamera()

			assert.True(t, p.Process(cam, 0.5))
			assert.True(t, tc.want.ApproxEqualThreshold(cam.Position, 1e-5), "got %v", cam.Position)
		})
	}
}

func TestLookNeedsHeldButton(t *testing.T) {
	src := newFakeSource()
	p := NewProcessor(src, testKeys)
	cam := newCamera()
	yaw := cam.Yaw

	p.Process(cam, 0.016)
	src.x = 100
	assert.False(t, p.Process(cam, 0.016), "cursor motion without the look button")
	assert.Equal(t, yaw, cam.Yaw)

	src.buttons[testKeys.Look] = true
	src.x = 120
	assert.False(t, p.Process(cam, 0.016), "first held frame anchors the cursor")
	assert.True(t, p.LookStarted())

	src.x = 140
	assert.True(t, p.Process(cam, 0.016))
	assert.InDelta(t, yaw+20*p.LookSpeed, cam.Yaw, 1e-4)
}

func TestLookPitchFollowsCursorUp(t *testing.T) {
	src := newFakeSource()
	src.buttons[testKeys.Look] = true
	p := NewProcessor(src, testKeys)
	cam := newCamera()

	p.Process(cam, 0.016)
	src.y = -10
	p.Process(cam, 0.016)
	assert.Greater(t, cam.Pitch, float32(0))
}

func TestCapturedMouseBlocksLook(t *testing.T) {
	src := newFakeSource()
	src.buttons[testKeys.Look] = true
	p := NewProcessor(src, testKeys)
	p.Captured = func() bool { return true }
	cam := newCamera()

	p.Process(cam, 0.016)
	src.x = 50
	assert.False(t, p.Process(cam, 0.016))
}
