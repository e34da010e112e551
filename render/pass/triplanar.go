package pass

import (
	"fmt"

	"github.com/plus3/facet/core/transform"
	"github.com/plus3/facet/ecs"
	"github.com/plus3/facet/render"
	"github.com/plus3/facet/render/gfx"
	"github.com/plus3/facet/render/pipe"
	"github.com/plus3/facet/render/shaders"
)

var triplanarTextures = []TextureType{Albedo, Emission, Normal}

type triplanarItem struct {
	Mesh            *render.MeshHandle
	Material        *render.TriplanarMaterial
	Global          *transform.GlobalTransform
	Hidden          *render.Hidden          `ecs:"optional"`
	HiddenPropagate *render.HiddenPropagate `ecs:"optional"`
}

type orderedItem struct {
	Mesh     *render.MeshHandle
	Material *render.TriplanarMaterial  `ecs:"optional"`
	Global   *transform.GlobalTransform `ecs:"optional"`
}

type transparency struct {
	mask  gfx.ColorMask
	blend gfx.Blend
	depth gfx.DepthMode
}

// DrawTriplanar draws meshes with a TriplanarMaterial and simple lighting.
// V is the vertex format of the meshes; it must carry position, normal and
// texture coordinates.
//
// Without a Visibility resource every entity with a mesh, a material and a
// global transform is drawn unless it is Hidden or HiddenPropagate. With
// one, the visible unordered entities are drawn first, then the ordered
// ones, for which material and transform are optional.
type DrawTriplanar[V render.VertexFormat] struct {
	Active     ecs.Singleton[render.ActiveCamera]
	Cameras    ecs.Query[CameraItem]
	Ambient    ecs.Singleton[render.AmbientColor]
	Meshes     ecs.Singleton[render.AssetStorage[render.Mesh]]
	Textures   ecs.Singleton[render.AssetStorage[render.Texture]]
	Defaults   ecs.Singleton[render.MaterialDefaults]
	Visibility ecs.Singleton[render.Visibility]
	Lights     ecs.Query[LightItem]
	Drawable   ecs.Query[triplanarItem]
	Ordered    ecs.View[orderedItem]

	transparency *transparency
	attrs        []render.AttributeFormat
}

// NewDrawTriplanar creates an opaque pass.
func NewDrawTriplanar[V render.VertexFormat]() *DrawTriplanar[V] {
	return &DrawTriplanar[V]{}
}

// WithTransparency makes the pass blend its output. depth may be
// gfx.DepthNone to disable depth testing.
func (p *DrawTriplanar[V]) WithTransparency(mask gfx.ColorMask, blend gfx.Blend, depth gfx.DepthMode) *DrawTriplanar[V] {
	p.transparency = &transparency{mask: mask, blend: blend, depth: depth}
	return p
}

// Name implements pipe.Named.
func (p *DrawTriplanar[V]) Name() string { return "DrawTriplanar" }

// Compile implements pipe.Pass.
func (p *DrawTriplanar[V]) Compile(ne pipe.NewEffect) (*pipe.Effect, error) {
	var format V
	attrs, err := render.QueryAttributes(format, render.Position, render.Normal, render.TexCoord)
	if err != nil {
		return nil, fmt.Errorf("DrawTriplanar: %w", err)
	}
	p.attrs = attrs

	b := ne.Simple(shaders.BasicVertex, shaders.TriplanarFragment)
	b.WithRawVertexBuffer(attrs, format.Stride(), 0)
	SetupVertexArgs(b)
	SetupLightBuffers(b)
	SetupTriplanarArgs(b)
	for _, plane := range TriplanarPlanes {
		SetupTriplanarTextures(b, triplanarTextures, plane)
	}

	if t := p.transparency; t != nil {
		b.WithBlendedOutput(shaders.Color, t.mask, t.blend, t.depth)
	} else {
		b.WithOutput(shaders.Color, gfx.LessEqualWrite)
	}
	return b.Build()
}

// Apply implements pipe.Pass.
func (p *DrawTriplanar[V]) Apply(enc gfx.Encoder, effect *pipe.Effect, _ gfx.Factory) error {
	defaults := p.Defaults.Get()
	if defaults == nil {
		return render.ErrNoMaterialDefaults
	}
	meshes := p.Meshes.Get()
	textures := p.Textures.Get()

	camera := GetCamera(p.Active.Get(), &p.Cameras)
	if err := SetLightArgs(effect, &p.Lights, p.Ambient.Get(), camera); err != nil {
		return err
	}

	attrs := [][]render.AttributeFormat{p.attrs}
	draw := func(mesh *render.MeshHandle, material *render.TriplanarMaterial, global *transform.GlobalTransform) error {
		item := TriplanarMesh{Mesh: meshes.Get(*mesh), Material: material, Global: global}
		return DrawTriplanarMesh(enc, effect, item, textures, defaults, camera, attrs, triplanarTextures)
	}

	vis := p.Visibility.Get()
	if vis == nil {
		for item := range p.Drawable.Values() {
			if item.Hidden != nil || item.HiddenPropagate != nil {
				continue
			}
			if err := draw(item.Mesh, item.Material, item.Global); err != nil {
				return err
			}
		}
		return nil
	}

	for id, item := range p.Drawable.Iter() {
		if !vis.IsVisible(id) {
			continue
		}
		if err := draw(item.Mesh, item.Material, item.Global); err != nil {
			return err
		}
	}
	for _, id := range vis.VisibleOrdered {
		item := p.Ordered.Get(id)
		if item == nil {
			continue
		}
		if err := draw(item.Mesh, item.Material, item.Global); err != nil {
			return err
		}
	}
	return nil
}
