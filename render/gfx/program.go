package gfx

import (
	"github.com/plus3/facet/render"
)

// ShaderSet holds the sources of one program. Compiling them is the
// backend's business.
type ShaderSet struct {
	Vertex   []byte
	Fragment []byte
}

// VertexBufferLayout describes one bound vertex buffer.
type VertexBufferLayout struct {
	Attributes []render.AttributeFormat
	// Stride is the size of one element in bytes.
	Stride uint32
	// Rate is 0 for per-vertex data, n for data advancing every n
	// instances.
	Rate uint8
}

// ConstantBufferDesc declares a named uniform block of Size float32s.
type ConstantBufferDesc struct {
	Name string
	Size int
}

// GlobalDesc declares a named loose uniform of Size float32s.
type GlobalDesc struct {
	Name string
	Size int
}

// ProgramDesc is everything a backend needs to create a program.
type ProgramDesc struct {
	Name            string
	Shaders         ShaderSet
	VertexBuffers   []VertexBufferLayout
	ConstantBuffers []ConstantBufferDesc
	Globals         []GlobalDesc
	Textures        []string
	State           PipelineState
}

// Program is a backend program created by a Factory.
type Program interface {
	Desc() *ProgramDesc
}

// Factory creates backend resources.
type Factory interface {
	CreateProgram(desc ProgramDesc) (Program, error)
}

// Slice selects the vertices of a draw. With Indices set, Start and End
// index into Indices and BaseVertex is added to every index; otherwise
// they are vertex numbers.
type Slice struct {
	Start, End uint32
	BaseVertex uint32
	Instances  uint32
	Indices    []uint32
}

// Count returns the number of elements drawn per instance.
func (s Slice) Count() uint32 {
	if s.End < s.Start {
		return 0
	}
	return s.End - s.Start
}

// SliceFor returns the slice drawing all of mesh once.
func SliceFor(mesh *render.Mesh) Slice {
	return Slice{End: uint32(mesh.ElementCount()), Instances: 1, Indices: mesh.Indices}
}

// DrawCall is one recorded draw. Its maps and slices belong to the call.
type DrawCall struct {
	Program       Program
	Slice         Slice
	VertexBuffers []*render.VertexBuffer
	Constants     map[string][]float32
	Globals       map[string][]float32
	Textures      map[string]*render.Texture
}

// Encoder records commands for a frame.
type Encoder interface {
	Clear(target string, color [4]float32, depth float32)
	Draw(call DrawCall) error
}
