package scene

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestPositionTable(t *testing.T) {
	tbl := NewPositionTable()
	a := tbl.Add(mgl32.Vec3{1, 0, 0})
	b := tbl.Add(mgl32.Vec3{0, 1, 0})
	assert.Equal(t, 2, tbl.Len())

	tbl.Translate(a, mgl32.Vec3{1, 1, 1})
	assert.Equal(t, mgl32.Vec3{2, 1, 1}, tbl.Get(a))
	assert.Equal(t, mgl32.Vec3{0, 1, 0}, tbl.Get(b))

	// unknown handles are ignored
	tbl.Set(NoPosition, mgl32.Vec3{9, 9, 9})
	tbl.Translate(PositionHandle(7), mgl32.Vec3{9, 9, 9})
	assert.Equal(t, mgl32.Vec3{}, tbl.Get(PositionHandle(7)))
}
