package render

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

type face struct {
	n, u, v mgl32.Vec3
}

// Faces wound counter-clockwise seen from outside: u × v = n.
var cubeFaces = [6]face{
	{n: mgl32.Vec3{1, 0, 0}, u: mgl32.Vec3{0, 0, -1}, v: mgl32.Vec3{0, 1, 0}},
	{n: mgl32.Vec3{-1, 0, 0}, u: mgl32.Vec3{0, 0, 1}, v: mgl32.Vec3{0, 1, 0}},
	{n: mgl32.Vec3{0, 1, 0}, u: mgl32.Vec3{1, 0, 0}, v: mgl32.Vec3{0, 0, -1}},
	{n: mgl32.Vec3{0, -1, 0}, u: mgl32.Vec3{1, 0, 0}, v: mgl32.Vec3{0, 0, 1}},
	{n: mgl32.Vec3{0, 0, 1}, u: mgl32.Vec3{1, 0, 0}, v: mgl32.Vec3{0, 1, 0}},
	{n: mgl32.Vec3{0, 0, -1}, u: mgl32.Vec3{-1, 0, 0}, v: mgl32.Vec3{0, 1, 0}},
}

func (f face) quad(b *MeshBuilder[PosNormTex], center mgl32.Vec3, half float32) {
	corner := func(su, sv float32, tc mgl32.Vec2) uint32 {
		p := center.Add(f.u.Mul(su * half)).Add(f.v.Mul(sv * half))
		return b.Vertex(PosNormTex{Position: p, Normal: f.n, TexCoord: tc})
	}
	i0 := corner(-1, -1, mgl32.Vec2{0, 1})
	i1 := corner(1, -1, mgl32.Vec2{1, 1})
	i2 := corner(1, 1, mgl32.Vec2{1, 0})
	i3 := corner(-1, 1, mgl32.Vec2{0, 0})
	b.Quad(i0, i1, i2, i3)
}

// Cube returns an axis-aligned cube centred on the origin with the given
// half extent.
func Cube(half float32) *Mesh {
	var b MeshBuilder[PosNormTex]
	for _, f := range cubeFaces {
		f.quad(&b, f.n.Mul(half), half)
	}
	m, _ := b.Build()
	return m
}

// Plane returns a square in the XZ plane facing +Y.
func Plane(half float32) *Mesh {
	var b MeshBuilder[PosNormTex]
	cubeFaces[2].quad(&b, mgl32.Vec3{}, half)
	m, _ := b.Build()
	return m
}

// Sphere returns a UV sphere. rings and sectors are clamped to at least 2
// and 3.
func Sphere(radius float32, rings, sectors int) *Mesh {
	rings = max(rings, 2)
	sectors = max(sectors, 3)

	var b MeshBuilder[PosNormTex]
	for r := 0; r <= rings; r++ {
		theta := math32.Pi * float32(r) / float32(rings)
		st, ct := math32.Sincos(theta)
		for s := 0; s <= sectors; s++ {
			phi := 2 * math32.Pi * float32(s) / float32(sectors)
			sp, cp := math32.Sincos(phi)
			n := mgl32.Vec3{st * cp, ct, st * sp}
			b.Vertex(PosNormTex{
				Position: n.Mul(radius),
				Normal:   n,
				TexCoord: mgl32.Vec2{float32(s) / float32(sectors), float32(r) / float32(rings)},
			})
		}
	}

	row := uint32(sectors + 1)
	for r := uint32(0); r < uint32(rings); r++ {
		for s := uint32(0); s < uint32(sectors); s++ {
			a := r*row + s
			c := a + row
			b.Triangle(a, a+1, c).Triangle(a+1, c+1, c)
		}
	}
	m, _ := b.Build()
	return m
}
