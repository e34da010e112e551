// Package record is a headless graphics backend that keeps every command
// it is given. Tests and benchmarks render through it.
package record

import (
	"errors"
	"sync"

	"github.com/plus3/facet/render/gfx"
)

// Program is a recorded program.
type Program struct {
	desc gfx.ProgramDesc
}

// Desc implements gfx.Program.
func (p *Program) Desc() *gfx.ProgramDesc { return &p.desc }

// Factory creates recorded programs. Fail, when set, is returned by the
// next CreateProgram call and then cleared.
type Factory struct {
	mu       sync.Mutex
	Programs []*Program
	Fail     error
}

// CreateProgram implements gfx.Factory.
func (f *Factory) CreateProgram(desc gfx.ProgramDesc) (gfx.Program, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.Fail; err != nil {
		f.Fail = nil
		return nil, err
	}
	p := &Program{desc: desc}
	f.Programs = append(f.Programs, p)
	return p, nil
}

// ClearOp is a recorded Clear.
type ClearOp struct {
	Target string
	Color  [4]float32
	Depth  float32
}

// Encoder records clears and draws.
type Encoder struct {
	Clears []ClearOp
	Draws  []gfx.DrawCall
}

var errForeignProgram = errors.New("record: draw with a program from another backend")

// Clear implements gfx.Encoder.
func (e *Encoder) Clear(target string, color [4]float32, depth float32) {
	e.Clears = append(e.Clears, ClearOp{Target: target, Color: color, Depth: depth})
}

// Draw implements gfx.Encoder.
func (e *Encoder) Draw(call gfx.DrawCall) error {
	if _, ok := call.Program.(*Program); !ok {
		return errForeignProgram
	}
	e.Draws = append(e.Draws, call)
	return nil
}

// Triangles returns the number of triangles drawn so far.
func (e *Encoder) Triangles() int {
	n := 0
	for _, d := range e.Draws {
		inst := max(d.Slice.Instances, 1)
		n += int(d.Slice.Count()*inst) / 3
	}
	return n
}

// Reset forgets every recorded command.
func (e *Encoder) Reset() {
	e.Clears = e.Clears[:0]
	e.Draws = e.Draws[:0]
}
