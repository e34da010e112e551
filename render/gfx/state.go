// Package gfx defines the graphics backend the renderer drives: program
// descriptions, pipeline state and the Factory and Encoder interfaces a
// backend implements.
package gfx

import "fmt"

// ColorMask selects the color channels an output writes.
type ColorMask uint8

const (
	MaskRed ColorMask = 1 << iota
	MaskGreen
	MaskBlue
	MaskAlpha

	MaskNone ColorMask = 0
	MaskAll            = MaskRed | MaskGreen | MaskBlue | MaskAlpha
)

// Factor is a blend factor.
type Factor int

const (
	FactorZero Factor = iota
	FactorOne
	FactorSrcAlpha
	FactorOneMinusSrcAlpha
	FactorDstAlpha
	FactorOneMinusDstAlpha
	FactorSrcColor
	FactorDstColor
)

// Equation combines the weighted source and destination.
type Equation int

const (
	EquationAdd Equation = iota
	EquationSub
	EquationRevSub
	EquationMin
	EquationMax
)

// BlendChannel is the blend function of color or alpha.
type BlendChannel struct {
	Equation Equation
	Source   Factor
	Dest     Factor
}

// Blend is the blend state of one output.
type Blend struct {
	Color BlendChannel
	Alpha BlendChannel
}

// Common blend states.
var (
	BlendReplace = Blend{
		Color: BlendChannel{Equation: EquationAdd, Source: FactorOne, Dest: FactorZero},
		Alpha: BlendChannel{Equation: EquationAdd, Source: FactorOne, Dest: FactorZero},
	}
	BlendAlpha = Blend{
		Color: BlendChannel{Equation: EquationAdd, Source: FactorSrcAlpha, Dest: FactorOneMinusSrcAlpha},
		Alpha: BlendChannel{Equation: EquationAdd, Source: FactorOne, Dest: FactorOneMinusSrcAlpha},
	}
	BlendAdd = Blend{
		Color: BlendChannel{Equation: EquationAdd, Source: FactorOne, Dest: FactorOne},
		Alpha: BlendChannel{Equation: EquationAdd, Source: FactorOne, Dest: FactorOne},
	}
)

// DepthMode is the depth test and write state.
type DepthMode int

const (
	DepthNone DepthMode = iota
	LessEqualTest
	LessEqualWrite
	LessTest
	LessWrite
)

// Test reports whether fragments are depth tested.
func (d DepthMode) Test() bool { return d != DepthNone }

// Write reports whether passing fragments write depth.
func (d DepthMode) Write() bool { return d == LessEqualWrite || d == LessWrite }

// Inclusive reports whether equal depth passes the test.
func (d DepthMode) Inclusive() bool { return d == LessEqualTest || d == LessEqualWrite }

func (d DepthMode) String() string {
	switch d {
	case DepthNone:
		return "none"
	case LessEqualTest:
		return "less_equal_test"
	case LessEqualWrite:
		return "less_equal_write"
	case LessTest:
		return "less_test"
	case LessWrite:
		return "less_write"
	}
	return fmt.Sprintf("DepthMode(%d)", int(d))
}

// Output is one color target a program writes. A nil Blend replaces the
// destination.
type Output struct {
	Name  string
	Mask  ColorMask
	Blend *Blend
}

// PipelineState is the fixed-function state of a program.
type PipelineState struct {
	Outputs []Output
	Depth   DepthMode
}

// Blended reports whether any output blends.
func (s *PipelineState) Blended() bool {
	for _, o := range s.Outputs {
		if o.Blend != nil {
			return true
		}
	}
	return false
}
