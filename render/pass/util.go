// Package pass implements the built-in render passes and the helpers they
// share for cameras, lights and material textures.
package pass

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/plus3/facet/core/transform"
	"github.com/plus3/facet/ecs"
	"github.com/plus3/facet/render"
	"github.com/plus3/facet/render/gfx"
	"github.com/plus3/facet/render/pipe"
	"github.com/plus3/facet/render/shaders"
)

// TextureType is a material texture slot.
type TextureType int

const (
	Albedo TextureType = iota
	Emission
	Normal
	Metallic
	Roughness
)

func (t TextureType) String() string {
	switch t {
	case Albedo:
		return "albedo"
	case Emission:
		return "emission"
	case Normal:
		return "normal"
	case Metallic:
		return "metallic"
	case Roughness:
		return "roughness"
	}
	return fmt.Sprintf("TextureType(%d)", int(t))
}

// TriplanarPlane is one of the three projection planes.
type TriplanarPlane int

const (
	PlaneYZ TriplanarPlane = iota
	PlaneXZ
	PlaneXY
)

// TriplanarPlanes lists the planes in blend-weight order.
var TriplanarPlanes = [3]TriplanarPlane{PlaneYZ, PlaneXZ, PlaneXY}

func (p TriplanarPlane) String() string {
	switch p {
	case PlaneYZ:
		return "yz"
	case PlaneXZ:
		return "xz"
	case PlaneXY:
		return "xy"
	}
	return fmt.Sprintf("TriplanarPlane(%d)", int(p))
}

// Layer returns the layer of m projected on p.
func (p TriplanarPlane) Layer(m *render.TriplanarMaterial) *render.TriplanarLayer {
	switch p {
	case PlaneYZ:
		return &m.YZ
	case PlaneXZ:
		return &m.XZ
	default:
		return &m.XY
	}
}

// TriplanarTextureName is the shader name of a texture slot on a plane,
// e.g. "albedo_yz".
func TriplanarTextureName(t TextureType, p TriplanarPlane) string {
	return t.String() + "_" + p.String()
}

// CameraItem is the query item for camera entities.
type CameraItem struct {
	Camera *render.Camera
	Global *transform.GlobalTransform
}

// LightItem is the query item for light entities. Lights without a
// transform sit at the origin.
type LightItem struct {
	Light  *render.Light
	Global *transform.GlobalTransform `ecs:"optional"`
}

// CameraView is the resolved camera of a frame.
type CameraView struct {
	Proj     mgl32.Mat4
	View     mgl32.Mat4
	Position mgl32.Vec3
}

// GetCamera resolves the active camera, falling back to the first camera
// in cameras. It returns nil when there is no camera.
func GetCamera(active *render.ActiveCamera, cameras *ecs.Query[CameraItem]) *CameraView {
	var item *CameraItem
	if active != nil {
		item = cameras.View().GetRef(active.Entity)
	}
	if item == nil {
		for c := range cameras.Values() {
			item = &c
			break
		}
	}
	if item == nil {
		return nil
	}
	return &CameraView{
		Proj:     item.Camera.Proj,
		View:     item.Global.Inverse(),
		Position: item.Global.Position(),
	}
}

// SetupVertexArgs declares the VertexArgs block.
func SetupVertexArgs(b *pipe.EffectBuilder) {
	b.WithRawConstantBuffer(shaders.VertexArgs, shaders.VertexArgsSize, 1)
}

// SetVertexArgs writes projection, view and model matrices. A missing
// camera or transform contributes an identity matrix.
func SetVertexArgs(effect *pipe.Effect, camera *CameraView, global *transform.GlobalTransform) error {
	proj, view, model := mgl32.Ident4(), mgl32.Ident4(), mgl32.Ident4()
	if camera != nil {
		proj, view = camera.Proj, camera.View
	}
	if global != nil {
		model = global.M
	}
	var b gfx.Std140
	b.Mat4(proj).Mat4(view).Mat4(model)
	return effect.Update(shaders.VertexArgs, b.Floats())
}

// SetupLightBuffers declares the light blocks and the ambient and camera
// globals.
func SetupLightBuffers(b *pipe.EffectBuilder) {
	b.WithRawConstantBuffer(shaders.FragmentArgs, shaders.FragmentArgsSize, 1).
		WithRawConstantBuffer(shaders.PointLights, shaders.PointLightSize, shaders.MaxPointLights).
		WithRawConstantBuffer(shaders.DirectionalLights, shaders.DirectionalLightSize, shaders.MaxDirectionalLights).
		WithRawGlobal(shaders.AmbientColor, 3).
		WithRawGlobal(shaders.CameraPosition, 3)
}

// SetLightArgs packs every light into the light blocks. Point and spot
// lights fill PointLights, directional and sun lights fill
// DirectionalLights; lights beyond capacity are dropped.
func SetLightArgs(effect *pipe.Effect, lights *ecs.Query[LightItem], ambient *render.AmbientColor, camera *CameraView) error {
	var points, dirs gfx.Std140
	var nPoints, nDirs int
	for item := range lights.Values() {
		l := item.Light
		switch l.Kind {
		case render.PointLight, render.SpotLight:
			if nPoints == shaders.MaxPointLights {
				continue
			}
			var pos mgl32.Vec3
			if item.Global != nil {
				pos = item.Global.Position()
			}
			radius := l.Radius
			if l.Kind == render.SpotLight {
				radius = l.Range
			}
			points.Vec3(pos).Float(l.Intensity).Vec3(l.Color).Float(radius)
			nPoints++
		case render.DirectionalLight, render.SunLight:
			if nDirs == shaders.MaxDirectionalLights {
				continue
			}
			dirs.Vec3(l.Color).Align().Vec3(l.Direction).Align()
			nDirs++
		}
	}

	var args gfx.Std140
	args.Uint(uint32(nPoints)).Uint(uint32(nDirs)).Align()

	var amb, eye mgl32.Vec3
	if ambient != nil {
		amb = ambient.Color
	}
	if camera != nil {
		eye = camera.Position
	}

	for _, err := range []error{
		effect.Update(shaders.FragmentArgs, args.Floats()),
		effect.Update(shaders.PointLights, points.Floats()),
		effect.Update(shaders.DirectionalLights, dirs.Floats()),
		effect.UpdateGlobal(shaders.AmbientColor, amb[:]),
		effect.UpdateGlobal(shaders.CameraPosition, eye[:]),
	} {
		if err != nil {
			return err
		}
	}
	return nil
}

// SetupTriplanarTextures declares the textures of one plane with their
// offset blocks.
func SetupTriplanarTextures(b *pipe.EffectBuilder, textures []TextureType, plane TriplanarPlane) {
	for _, t := range textures {
		name := TriplanarTextureName(t, plane)
		b.WithTexture(name).WithRawConstantBuffer(shaders.OffsetName(name), shaders.TextureOffsetSize, 1)
	}
}

// SetupTriplanarArgs declares the TriplanarArgs block.
func SetupTriplanarArgs(b *pipe.EffectBuilder) {
	b.WithRawConstantBuffer(shaders.TriplanarArgs, shaders.TriplanarArgsSize, 1)
}

func layerTexture(layer *render.TriplanarLayer, t TextureType) (render.TextureHandle, render.TextureOffset) {
	switch t {
	case Albedo:
		return layer.Albedo, layer.AlbedoOffset
	case Emission:
		return layer.Emission, layer.EmissionOffset
	case Normal:
		return layer.Normal, layer.NormalOffset
	}
	return render.TextureHandle{}, render.TextureOffset{}
}

func defaultTexture(m *render.Material, t TextureType) (render.TextureHandle, render.TextureOffset) {
	switch t {
	case Albedo:
		return m.Albedo, m.AlbedoOffset
	case Emission:
		return m.Emission, m.EmissionOffset
	case Normal:
		return m.Normal, m.NormalOffset
	case Metallic:
		return m.Metallic, render.TextureOffset{}
	case Roughness:
		return m.Roughness, render.TextureOffset{}
	}
	return render.TextureHandle{}, render.TextureOffset{}
}

// TriplanarMesh is everything DrawTriplanarMesh needs for one draw.
// Material and Global may be nil.
type TriplanarMesh struct {
	Mesh     *render.Mesh
	Material *render.TriplanarMaterial
	Global   *transform.GlobalTransform
}

// DrawTriplanarMesh binds the mesh, its transform and the material
// textures of every plane, then draws it. Slots the material leaves empty,
// or whose texture is not loaded, fall back to defaults. Meshes that are
// nil or lack a buffer matching attrs are skipped.
func DrawTriplanarMesh(
	enc gfx.Encoder,
	effect *pipe.Effect,
	item TriplanarMesh,
	textures *render.AssetStorage[render.Texture],
	defaults *render.MaterialDefaults,
	camera *CameraView,
	attrs [][]render.AttributeFormat,
	types []TextureType,
) error {
	if item.Mesh == nil {
		return nil
	}

	buffers := make([]*render.VertexBuffer, 0, len(attrs))
	for _, a := range attrs {
		buf := item.Mesh.Buffer(a)
		if buf == nil {
			return nil
		}
		buffers = append(buffers, buf)
	}

	if err := SetVertexArgs(effect, camera, item.Global); err != nil {
		return err
	}

	material := item.Material
	if material == nil {
		material = &render.TriplanarMaterial{}
	}
	for _, plane := range TriplanarPlanes {
		layer := plane.Layer(material)
		for _, t := range types {
			handle, offset := layerTexture(layer, t)
			tex := textures.Get(handle)
			if tex == nil {
				handle, offset = defaultTexture(&defaults.Material, t)
				tex = textures.Get(handle)
			}

			name := TriplanarTextureName(t, plane)
			if err := effect.BindTexture(name, tex); err != nil {
				return err
			}
			u, v := offset.Ranges()
			if err := effect.Update(shaders.OffsetName(name), []float32{u[0], u[1], v[0], v[1]}); err != nil {
				return err
			}
		}
	}

	scale, sharpness := material.Params()
	if err := effect.Update(shaders.TriplanarArgs, []float32{scale, sharpness}); err != nil {
		return err
	}

	for _, buf := range buffers {
		effect.AddVertexBuffer(buf)
	}
	err := effect.Draw(gfx.SliceFor(item.Mesh), enc)
	effect.Clear()
	return err
}
