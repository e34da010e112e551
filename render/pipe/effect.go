// Package pipe turns passes into draw calls: passes compile effects
// (program plus bound data) once, then apply them every frame inside the
// stages of a Pipeline.
package pipe

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/plus3/facet/render"
	"github.com/plus3/facet/render/gfx"
)

const prefix = "pipe: "

func newPipeErr(reason string) error { return errors.New(prefix + reason) }

var (
	// ErrUndeclared is returned when binding data to a name the effect's
	// program does not declare.
	ErrUndeclared = newPipeErr("name not declared by the program")
	// ErrBufferSize is returned when constant data exceeds its declaration.
	ErrBufferSize = newPipeErr("data larger than declared buffer")
	// ErrVertexBuffers is returned by Draw when the bound vertex buffers do
	// not match the program's layouts.
	ErrVertexBuffers = newPipeErr("vertex buffers do not match program layout")
)

// NewEffect is handed to Pass.Compile to start building an effect.
type NewEffect struct {
	factory gfx.Factory
	name    string
}

// NewEffectFor returns a NewEffect creating programs with factory.
func NewEffectFor(factory gfx.Factory, name string) NewEffect {
	return NewEffect{factory: factory, name: name}
}

// Simple starts an effect from a vertex and a fragment shader.
func (ne NewEffect) Simple(vs, fs []byte) *EffectBuilder {
	return &EffectBuilder{
		factory: ne.factory,
		desc: gfx.ProgramDesc{
			Name:    ne.name,
			Shaders: gfx.ShaderSet{Vertex: vs, Fragment: fs},
		},
	}
}

// EffectBuilder accumulates a program description.
type EffectBuilder struct {
	factory gfx.Factory
	desc    gfx.ProgramDesc
}

// WithRawVertexBuffer declares a vertex buffer of the given layout. rate is
// zero for per-vertex data.
func (b *EffectBuilder) WithRawVertexBuffer(attrs []render.AttributeFormat, stride uint32, rate uint8) *EffectBuilder {
	b.desc.VertexBuffers = append(b.desc.VertexBuffers, gfx.VertexBufferLayout{
		Attributes: slices.Clone(attrs),
		Stride:     stride,
		Rate:       rate,
	})
	return b
}

// WithRawConstantBuffer declares a uniform block holding num elements of
// size float32s each.
func (b *EffectBuilder) WithRawConstantBuffer(name string, size, num int) *EffectBuilder {
	b.desc.ConstantBuffers = append(b.desc.ConstantBuffers, gfx.ConstantBufferDesc{Name: name, Size: size * max(num, 1)})
	return b
}

// WithRawGlobal declares a loose uniform of size float32s.
func (b *EffectBuilder) WithRawGlobal(name string, size int) *EffectBuilder {
	b.desc.Globals = append(b.desc.Globals, gfx.GlobalDesc{Name: name, Size: size})
	return b
}

// WithTexture declares a sampled texture.
func (b *EffectBuilder) WithTexture(name string) *EffectBuilder {
	b.desc.Textures = append(b.desc.Textures, name)
	return b
}

// WithOutput declares an opaque color output using every channel.
func (b *EffectBuilder) WithOutput(name string, depth gfx.DepthMode) *EffectBuilder {
	b.desc.State.Outputs = append(b.desc.State.Outputs, gfx.Output{Name: name, Mask: gfx.MaskAll})
	b.desc.State.Depth = depth
	return b
}

// WithBlendedOutput declares a blended color output.
func (b *EffectBuilder) WithBlendedOutput(name string, mask gfx.ColorMask, blend gfx.Blend, depth gfx.DepthMode) *EffectBuilder {
	b.desc.State.Outputs = append(b.desc.State.Outputs, gfx.Output{Name: name, Mask: mask, Blend: &blend})
	b.desc.State.Depth = depth
	return b
}

// Build creates the program and an effect with nothing bound.
func (b *EffectBuilder) Build() (*Effect, error) {
	if len(b.desc.State.Outputs) == 0 {
		return nil, newPipeErr("effect " + b.desc.Name + " declares no output")
	}
	program, err := b.factory.CreateProgram(b.desc)
	if err != nil {
		return nil, fmt.Errorf(prefix+"create program %s: %w", b.desc.Name, err)
	}
	return &Effect{
		program:   program,
		desc:      program.Desc(),
		constants: make(map[string][]float32),
		globals:   make(map[string][]float32),
		textures:  make(map[string]*render.Texture),
	}, nil
}

// Effect is a compiled program plus the data bound for the next draw.
type Effect struct {
	program gfx.Program
	desc    *gfx.ProgramDesc

	constants     map[string][]float32
	globals       map[string][]float32
	textures      map[string]*render.Texture
	vertexBuffers []*render.VertexBuffer
}

// Program returns the backend program.
func (e *Effect) Program() gfx.Program { return e.program }

func (e *Effect) constantSize(name string) (int, bool) {
	for _, c := range e.desc.ConstantBuffers {
		if c.Name == name {
			return c.Size, true
		}
	}
	return 0, false
}

// Update writes a constant buffer. Data shorter than the declaration is
// zero-padded by the backend.
func (e *Effect) Update(name string, data []float32) error {
	size, ok := e.constantSize(name)
	if !ok {
		return fmt.Errorf("%w: constant buffer %q", ErrUndeclared, name)
	}
	if len(data) > size {
		return fmt.Errorf("%w: %q holds %d floats, got %d", ErrBufferSize, name, size, len(data))
	}
	e.constants[name] = append(e.constants[name][:0], data...)
	return nil
}

// UpdateGlobal writes a loose uniform.
func (e *Effect) UpdateGlobal(name string, data []float32) error {
	for _, g := range e.desc.Globals {
		if g.Name != name {
			continue
		}
		if len(data) > g.Size {
			return fmt.Errorf("%w: %q holds %d floats, got %d", ErrBufferSize, name, g.Size, len(data))
		}
		e.globals[name] = append(e.globals[name][:0], data...)
		return nil
	}
	return fmt.Errorf("%w: global %q", ErrUndeclared, name)
}

// BindTexture binds a texture for the next draw.
func (e *Effect) BindTexture(name string, tex *render.Texture) error {
	if !slices.Contains(e.desc.Textures, name) {
		return fmt.Errorf("%w: texture %q", ErrUndeclared, name)
	}
	e.textures[name] = tex
	return nil
}

// AddVertexBuffer appends a vertex buffer for the next draw, in the order
// the layouts were declared.
func (e *Effect) AddVertexBuffer(buf *render.VertexBuffer) {
	e.vertexBuffers = append(e.vertexBuffers, buf)
}

// Constant returns the data last written to a constant buffer.
func (e *Effect) Constant(name string) []float32 {
	return e.constants[name]
}

// Draw submits one draw of slice with the bound data. Constants and
// globals persist across draws; Clear drops textures and vertex buffers.
func (e *Effect) Draw(slice gfx.Slice, enc gfx.Encoder) error {
	if len(e.vertexBuffers) != len(e.desc.VertexBuffers) {
		return fmt.Errorf("%w: %d bound, %d declared", ErrVertexBuffers, len(e.vertexBuffers), len(e.desc.VertexBuffers))
	}
	call := gfx.DrawCall{
		Program:       e.program,
		Slice:         slice,
		VertexBuffers: slices.Clone(e.vertexBuffers),
		Constants:     make(map[string][]float32, len(e.constants)),
		Globals:       make(map[string][]float32, len(e.globals)),
		Textures:      maps.Clone(e.textures),
	}
	for k, v := range e.constants {
		call.Constants[k] = slices.Clone(v)
	}
	for k, v := range e.globals {
		call.Globals[k] = slices.Clone(v)
	}
	return enc.Draw(call)
}

// Clear unbinds textures and vertex buffers.
func (e *Effect) Clear() {
	clear(e.textures)
	e.vertexBuffers = e.vertexBuffers[:0]
}
