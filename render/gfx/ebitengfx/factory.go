// Package ebitengfx draws pipe programs with ebiten. ebiten has neither a
// depth buffer nor vertex shaders, so the Encoder transforms and lights
// vertices on the CPU, orders triangles back to front and hands them to a
// Kage fragment shader when the frame is presented.
package ebitengfx

import (
	"errors"
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/plus3/facet/render/gfx"
	"github.com/plus3/facet/render/shaders"
)

const prefix = "ebitengfx: "

func newEbitenErr(reason string) error { return errors.New(prefix + reason) }

var (
	// ErrUnsupported is returned for programs without a Kage source.
	ErrUnsupported = newEbitenErr("no Kage source for program")
	// ErrForeignProgram is returned when drawing a program another
	// factory created.
	ErrForeignProgram = newEbitenErr("program was not created by this backend")
)

// DefaultSources returns the Kage sources of the built-in passes, keyed by
// pass name.
func DefaultSources() map[string][]byte {
	return map[string][]byte{
		"DrawTriplanar": shaders.TriplanarKage,
	}
}

// Program is a compiled Kage shader plus the description it was built
// from.
type Program struct {
	desc   gfx.ProgramDesc
	shader *ebiten.Shader
}

// Desc implements gfx.Program.
func (p *Program) Desc() *gfx.ProgramDesc { return &p.desc }

// Factory compiles programs by looking up the Kage source registered for
// the program name. The GLSL in the description is not used.
type Factory struct {
	Sources map[string][]byte
}

// NewFactory returns a factory knowing DefaultSources.
func NewFactory() *Factory {
	return &Factory{Sources: DefaultSources()}
}

// CreateProgram implements gfx.Factory.
func (f *Factory) CreateProgram(desc gfx.ProgramDesc) (gfx.Program, error) {
	src, ok := f.Sources[desc.Name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupported, desc.Name)
	}
	shader, err := ebiten.NewShader(src)
	if err != nil {
		return nil, fmt.Errorf(prefix+"compile %s: %w", desc.Name, err)
	}
	return &Program{desc: desc, shader: shader}, nil
}
