package renderer

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"mirror-engine/core"
	"mirror-engine/scene"
	"mirror-engine/shader"
)

// Passes selects the program each pass of RenderFrame draws with. A nil
// Shadow program skips shadow-map generation.
type Passes struct {
	Shadow *shader.Program
	Plain  *shader.Program
	Main   *shader.Program
	Floor  *shader.Program
}

// RenderFrame runs one frame: shadow cube maps, the floor reflection, the lit
// meshes into the default framebuffer, the floor, then the sky. The first two
// produce textures the later passes sample, so the order is fixed. Both
// framebuffers are cleared with clear premultiplied by its alpha.
func (w *World) RenderFrame(p Passes, cam *scene.ViewCamera, clear core.Color) {
	w.clearColor = clear.Premultiplied()

	if p.Shadow != nil {
		w.RenderShadowCubeMaps(p.Shadow)
	}
	w.RenderReflections(p.Plain, cam)

	w.dev.BindDefaultTarget(w.width, w.height)
	w.dev.Viewport(0, 0, w.width, w.height)
	w.dev.ClearColor(w.clearColor)
	w.dev.Clear(true, true)

	if w.Culling {
		f := scene.FrustumFromMatrix(w.perspective.Mul4(cam.ViewMatrix()))
		w.RenderVisibleMeshes(p.Main, &f)
	} else {
		w.RenderMeshes(p.Main)
	}
	w.RenderFloor(p.Floor)
	w.RenderSkybox(cam.ViewMatrix())
}

// RenderShadowCubeMaps renders every mesh into each light's depth cube map.
// The geometry stage of prog fans each triangle out to the six faces.
func (w *World) RenderShadowCubeMaps(prog *shader.Program) {
	for _, l := range w.lights {
		l.BeginShadowPass()
		for i, m := range l.ShadowMatrices() {
			prog.SetMat4fv(fmt.Sprintf("shadowMatrices[%d]", i), m)
		}
		prog.SetVec3f("lightPos", l.Position())
		prog.Set1f("far_plane", l.Far)
		for _, m := range w.meshes {
			m.Render(prog)
		}
	}
}

// RenderReflections draws the scene mirrored across the floor into the
// floor's reflection target. Without a floor it does nothing.
func (w *World) RenderReflections(prog *shader.Program, cam *scene.ViewCamera) {
	if w.floor == nil {
		return
	}
	target := w.floor.Target()
	w.dev.BindTarget(target)
	w.dev.Viewport(0, 0, target.Width, target.Height)
	w.dev.ClearColor(w.clearColor)
	w.dev.Clear(true, true)

	objects := make([]scene.Renderable, len(w.meshes))
	for i, m := range w.meshes {
		objects[i] = m
	}
	w.floor.Mirror(prog, objects, cam.ViewMatrix(), w.perspective, w.sky)
}

// RenderMeshes draws every mesh with prog, with each light's shadow cube map
// bound to texture unit 1+i.
func (w *World) RenderMeshes(prog *shader.Program) {
	w.RenderVisibleMeshes(prog, nil)
}

// RenderVisibleMeshes is RenderMeshes skipping meshes whose bounds fall
// outside f. A nil f draws everything. Only the camera pass culls: shadow
// and mirrored views see meshes the camera does not.
func (w *World) RenderVisibleMeshes(prog *shader.Program, f *scene.Frustum) {
	for i, l := range w.lights {
		l.BindShadowMap(1 + i)
	}
	w.culled = 0
	for _, m := range w.meshes {
		if f != nil && !f.Intersects(m.Bounds()) {
			w.culled++
			continue
		}
		m.Render(prog)
	}
}

// RenderFloor draws the reflective plane, if there is one.
func (w *World) RenderFloor(prog *shader.Program) {
	if w.floor == nil {
		return
	}
	w.floor.Render(prog)
}

// RenderSkybox draws the sky, if there is one. Translation is stripped from
// view by the skybox.
func (w *World) RenderSkybox(view mgl32.Mat4) {
	if w.sky == nil {
		return
	}
	w.sky.Render(view)
}
