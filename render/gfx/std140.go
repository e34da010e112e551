package gfx

import "github.com/go-gl/mathgl/mgl32"

// Std140 packs floats following std140 alignment: vec3 and vec4 align to
// four floats, matrices are stored as aligned columns and Align rounds up
// to the next struct or array element boundary.
type Std140 struct {
	data []float32
}

func (b *Std140) pad(to int) {
	for len(b.data)%to != 0 {
		b.data = append(b.data, 0)
	}
}

// Float appends a scalar.
func (b *Std140) Float(f float32) *Std140 {
	b.data = append(b.data, f)
	return b
}

// Uint appends an unsigned scalar converted to float. The data is uploaded
// as float32, so shaders declare such fields float and convert.
func (b *Std140) Uint(u uint32) *Std140 {
	return b.Float(float32(u))
}

// Vec2 appends a two-float aligned vector.
func (b *Std140) Vec2(v mgl32.Vec2) *Std140 {
	b.pad(2)
	b.data = append(b.data, v[:]...)
	return b
}

// Vec3 appends a vector aligned to four floats. A following scalar fills
// the fourth slot.
func (b *Std140) Vec3(v mgl32.Vec3) *Std140 {
	b.pad(4)
	b.data = append(b.data, v[:]...)
	return b
}

// Vec4 appends an aligned vector.
func (b *Std140) Vec4(v mgl32.Vec4) *Std140 {
	b.pad(4)
	b.data = append(b.data, v[:]...)
	return b
}

// Mat3 appends three padded columns.
func (b *Std140) Mat3(m mgl32.Mat3) *Std140 {
	for c := 0; c < 3; c++ {
		b.Vec3(m.Col(c))
		b.pad(4)
	}
	return b
}

// Mat4 appends four columns.
func (b *Std140) Mat4(m mgl32.Mat4) *Std140 {
	b.pad(4)
	b.data = append(b.data, m[:]...)
	return b
}

// Align pads to the next four-float boundary.
func (b *Std140) Align() *Std140 {
	b.pad(4)
	return b
}

// Floats returns the packed data.
func (b *Std140) Floats() []float32 {
	return b.data
}

// Len returns the packed length in floats.
func (b *Std140) Len() int {
	return len(b.data)
}

// Reset empties the buffer, keeping its storage.
func (b *Std140) Reset() {
	b.data = b.data[:0]
}
