package scene

import "github.com/go-gl/mathgl/mgl32"

// PositionHandle indexes a slot in a PositionTable.
type PositionHandle int

// NoPosition never names a slot; the table ignores it.
const NoPosition PositionHandle = -1

// PositionTable stores world positions shared between entities. A mesh that
// follows a light holds the light's handle rather than a pointer into it, so
// the table can grow without invalidating anyone.
type PositionTable struct {
	positions []mgl32.Vec3
}

func NewPositionTable() *PositionTable {
	return &PositionTable{}
}

// Add allocates a new slot initialised to p.
func (t *PositionTable) Add(p mgl32.Vec3) PositionHandle {
	t.positions = append(t.positions, p)
	return PositionHandle(len(t.positions) - 1)
}

func (t *PositionTable) valid(h PositionHandle) bool {
	return h >= 0 && int(h) < len(t.positions)
}

// Get returns the position in slot h, or the origin for an unknown handle.
func (t *PositionTable) Get(h PositionHandle) mgl32.Vec3 {
	if !t.valid(h) {
		return mgl32.Vec3{}
	}
	return t.positions[h]
}

func (t *PositionTable) Set(h PositionHandle, p mgl32.Vec3) {
	if t.valid(h) {
		t.positions[h] = p
	}
}

func (t *PositionTable) Translate(h PositionHandle, d mgl32.Vec3) {
	if t.valid(h) {
		t.positions[h] = t.positions[h].Add(d)
	}
}

func (t *PositionTable) Len() int { return len(t.positions) }
