package render

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// VertexBuffer is interleaved float32 vertex data.
type VertexBuffer struct {
	Attributes []AttributeFormat
	// Stride is the size of one vertex in bytes.
	Stride uint32
	Data   []float32
}

// Len returns the number of vertices in b.
func (b *VertexBuffer) Len() int {
	if b.Stride == 0 {
		return 0
	}
	return len(b.Data) * 4 / int(b.Stride)
}

// Has reports whether b carries every attribute of attrs at the same
// offset.
func (b *VertexBuffer) Has(attrs []AttributeFormat) bool {
	for _, want := range attrs {
		found := false
		for _, a := range b.Attributes {
			if a == want {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// Vec3 reads a 3-component attribute of vertex i.
func (b *VertexBuffer) Vec3(i int, attr AttributeFormat) mgl32.Vec3 {
	base := (i*int(b.Stride) + int(attr.Offset)) / 4
	return mgl32.Vec3{b.Data[base], b.Data[base+1], b.Data[base+2]}
}

// Vec2 reads a 2-component attribute of vertex i.
func (b *VertexBuffer) Vec2(i int, attr AttributeFormat) mgl32.Vec2 {
	base := (i*int(b.Stride) + int(attr.Offset)) / 4
	return mgl32.Vec2{b.Data[base], b.Data[base+1]}
}

// Mesh is vertex data plus optional indices.
type Mesh struct {
	Buffers []VertexBuffer
	Indices []uint32
}

// VertexCount returns the vertex count of the first buffer.
func (m *Mesh) VertexCount() int {
	if len(m.Buffers) == 0 {
		return 0
	}
	return m.Buffers[0].Len()
}

// ElementCount returns the number of vertices a draw submits: the index
// count for indexed meshes, the vertex count otherwise.
func (m *Mesh) ElementCount() int {
	if m.Indices != nil {
		return len(m.Indices)
	}
	return m.VertexCount()
}

// Buffer returns the first buffer that carries attrs, or nil.
func (m *Mesh) Buffer(attrs []AttributeFormat) *VertexBuffer {
	if m == nil {
		return nil
	}
	for i := range m.Buffers {
		if m.Buffers[i].Has(attrs) {
			return &m.Buffers[i]
		}
	}
	return nil
}

var errIndexRange = errors.New(prefix + "mesh index out of range")

// NewMesh builds a single-buffer mesh from vertices of one format.
// indices may be nil.
func NewMesh[V VertexFormat](vertices []V, indices []uint32) (*Mesh, error) {
	var format V
	for _, idx := range indices {
		if int(idx) >= len(vertices) {
			return nil, fmt.Errorf("%w: %d >= %d", errIndexRange, idx, len(vertices))
		}
	}

	data := make([]float32, 0, len(vertices)*int(format.Stride())/4)
	for _, v := range vertices {
		data = v.AppendFloats(data)
	}
	return &Mesh{
		Buffers: []VertexBuffer{{
			Attributes: format.Attributes(),
			Stride:     format.Stride(),
			Data:       data,
		}},
		Indices: indices,
	}, nil
}

// MeshBuilder accumulates vertices and indices of one format.
type MeshBuilder[V VertexFormat] struct {
	vertices []V
	indices  []uint32
}

// Vertex appends v and returns its index.
func (b *MeshBuilder[V]) Vertex(v V) uint32 {
	b.vertices = append(b.vertices, v)
	return uint32(len(b.vertices) - 1)
}

// Triangle appends one indexed triangle.
func (b *MeshBuilder[V]) Triangle(i0, i1, i2 uint32) *MeshBuilder[V] {
	b.indices = append(b.indices, i0, i1, i2)
	return b
}

// Quad appends two triangles a-b-c and a-c-d.
func (b *MeshBuilder[V]) Quad(a, c1, c2, d uint32) *MeshBuilder[V] {
	return b.Triangle(a, c1, c2).Triangle(a, c2, d)
}

// Build creates the mesh.
func (b *MeshBuilder[V]) Build() (*Mesh, error) {
	return NewMesh(b.vertices, b.indices)
}
