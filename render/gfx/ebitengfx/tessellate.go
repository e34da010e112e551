package ebitengfx

import (
	"fmt"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/plus3/facet/core/transform"
	"github.com/plus3/facet/render"
	"github.com/plus3/facet/render/gfx"
	"github.com/plus3/facet/render/shaders"
)

// pointFalloff matches the exponent the GLSL shader applies to point
// light distances.
const pointFalloff = 4

type triangle struct {
	v     [3]ebiten.Vertex
	depth float32
}

type pointLight struct {
	position mgl32.Vec3
	light    render.Light
}

type dirLight struct {
	color, direction mgl32.Vec3
}

type lighting struct {
	ambient mgl32.Vec3
	points  []pointLight
	dirs    []dirLight
}

func vec3At(data []float32, i int) mgl32.Vec3 {
	if i+3 > len(data) {
		return mgl32.Vec3{}
	}
	return mgl32.Vec3{data[i], data[i+1], data[i+2]}
}

func mat4At(data []float32, i int) mgl32.Mat4 {
	if i+16 > len(data) {
		return mgl32.Ident4()
	}
	var m mgl32.Mat4
	copy(m[:], data[i:i+16])
	return m
}

func readLighting(call gfx.DrawCall) lighting {
	var l lighting
	l.ambient = vec3At(call.Globals[shaders.AmbientColor], 0)

	args := call.Constants[shaders.FragmentArgs]
	if len(args) < 2 {
		return l
	}
	points := call.Constants[shaders.PointLights]
	for i := 0; i < int(args[0]); i++ {
		base := i * shaders.PointLightSize
		if base+shaders.PointLightSize > len(points) {
			break
		}
		l.points = append(l.points, pointLight{
			position: vec3At(points, base),
			light: render.Light{
				Kind:       render.PointLight,
				Intensity:  points[base+3],
				Color:      vec3At(points, base+4),
				Radius:     points[base+7],
				Smoothness: pointFalloff,
			},
		})
	}
	dirs := call.Constants[shaders.DirectionalLights]
	for i := 0; i < int(args[1]); i++ {
		base := i * shaders.DirectionalLightSize
		if base+shaders.DirectionalLightSize > len(dirs) {
			break
		}
		l.dirs = append(l.dirs, dirLight{
			color:     vec3At(dirs, base),
			direction: vec3At(dirs, base+4),
		})
	}
	return l
}

// at returns the light reaching a surface point with normal n.
func (l *lighting) at(p, n mgl32.Vec3) mgl32.Vec3 {
	sum := l.ambient
	for i := range l.points {
		pl := &l.points[i]
		toLight := pl.position.Sub(p)
		dist := toLight.Len()
		if dist == 0 {
			continue
		}
		diffuse := max(toLight.Mul(1/dist).Dot(n), 0)
		sum = sum.Add(pl.light.Color.Mul(pl.light.Intensity * diffuse * pl.light.Attenuation(dist)))
	}
	for _, d := range l.dirs {
		diffuse := max(d.direction.Mul(-1).Dot(n), 0)
		sum = sum.Add(d.color.Mul(diffuse))
	}
	return sum
}

func findAttribute(layout gfx.VertexBufferLayout, attr render.Attribute) (render.AttributeFormat, bool) {
	for _, a := range layout.Attributes {
		if a.Attribute == attr {
			return a, true
		}
	}
	return render.AttributeFormat{}, false
}

func clamp01(f float32) float32 {
	return min(max(f, 0), 1)
}

// tessellate projects the triangles of call onto a width by height
// target. Triangles crossing the camera plane or facing away are dropped.
// Depth is the mean NDC depth, larger being farther.
func tessellate(call gfx.DrawCall, width, height int) ([]triangle, error) {
	desc := call.Program.Desc()
	if len(desc.VertexBuffers) == 0 || len(call.VertexBuffers) == 0 {
		return nil, fmt.Errorf("%w: program %s has no vertex buffer", ErrUnsupported, desc.Name)
	}
	layout := desc.VertexBuffers[0]
	posAttr, okPos := findAttribute(layout, render.Position)
	normAttr, okNorm := findAttribute(layout, render.Normal)
	if !okPos || !okNorm {
		return nil, fmt.Errorf("%w: program %s needs positions and normals", ErrUnsupported, desc.Name)
	}
	buf := call.VertexBuffers[0]

	args := call.Constants[shaders.VertexArgs]
	proj, view, model := mat4At(args, 0), mat4At(args, 16), mat4At(args, 32)
	viewProj := proj.Mul4(view)
	normalMat := (&transform.GlobalTransform{M: model}).Normal()

	sharpness := float32(render.DefaultTriplanarSharpness)
	if t := call.Constants[shaders.TriplanarArgs]; len(t) >= 2 && t[1] > 0 {
		sharpness = t[1]
	}
	lights := readLighting(call)

	index := func(i uint32) int {
		if call.Slice.Indices != nil {
			return int(call.Slice.Indices[i] + call.Slice.BaseVertex)
		}
		return int(i)
	}

	w, h := float32(width), float32(height)
	count := call.Slice.Count() / 3 * 3
	tris := make([]triangle, 0, count/3)
	for first := call.Slice.Start; first < call.Slice.Start+count; first += 3 {
		var tri triangle
		visible := true
		for c := range 3 {
			vi := index(first + uint32(c))
			if vi < 0 || vi >= buf.Len() {
				return nil, fmt.Errorf(prefix+"index %d out of range of %d vertices", vi, buf.Len())
			}

			world := model.Mul4x1(buf.Vec3(vi, posAttr).Vec4(1)).Vec3()
			clip := viewProj.Mul4x1(world.Vec4(1))
			if clip.W() <= 1e-6 {
				visible = false
				break
			}
			ndc := clip.Vec3().Mul(1 / clip.W())

			n := normalMat.Mul3x1(buf.Vec3(vi, normAttr))
			if l := n.Len(); l > 0 {
				n = n.Mul(1 / l)
			}
			light := lights.at(world, n)
			weights := render.TriplanarWeights(n, sharpness)

			tri.v[c] = ebiten.Vertex{
				DstX:    (ndc.X() + 1) / 2 * w,
				DstY:    (1 - ndc.Y()) / 2 * h,
				ColorR:  clamp01(light.X()),
				ColorG:  clamp01(light.Y()),
				ColorB:  clamp01(light.Z()),
				ColorA:  weights.X(),
				Custom0: world.X(),
				Custom1: world.Y(),
				Custom2: world.Z(),
				Custom3: weights.Y(),
			}
			tri.depth += ndc.Z() / 3
		}
		if !visible || !frontFacing(&tri) {
			continue
		}
		tris = append(tris, tri)
	}
	return tris, nil
}

// frontFacing reports whether tri winds counter-clockwise as seen on
// screen. Screen space has y pointing down, which flips the sign.
func frontFacing(tri *triangle) bool {
	a, b, c := tri.v[0], tri.v[1], tri.v[2]
	area := (b.DstX-a.DstX)*(c.DstY-a.DstY) - (c.DstX-a.DstX)*(b.DstY-a.DstY)
	return area < 0 && !math32.IsNaN(area)
}
