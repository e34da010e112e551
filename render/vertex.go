package render

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// Attribute names a per-vertex input.
type Attribute int

// Attributes. Every attribute is stored as float32 components.
const (
	Position Attribute = iota
	Normal
	Tangent
	TexCoord
	Color
)

// String implements fmt.Stringer.
func (a Attribute) String() string {
	switch a {
	case Position:
		return "position"
	case Normal:
		return "normal"
	case Tangent:
		return "tangent"
	case TexCoord:
		return "tex_coord"
	case Color:
		return "color"
	default:
		return fmt.Sprintf("Attribute(%d)", int(a))
	}
}

// Components returns the number of float32 components of a.
func (a Attribute) Components() int {
	switch a {
	case Position, Normal:
		return 3
	case TexCoord:
		return 2
	case Tangent, Color:
		return 4
	default:
		panic("invalid Attribute value")
	}
}

// Size returns the size of a in bytes.
func (a Attribute) Size() uint32 { return uint32(a.Components()) * 4 }

// AttributeFormat places an attribute at a byte offset inside a vertex.
type AttributeFormat struct {
	Attribute Attribute
	Offset    uint32
}

// VertexFormat describes an interleaved vertex layout. Implementations are
// plain structs of float32 vectors and must work on their zero value.
type VertexFormat interface {
	Attributes() []AttributeFormat
	Stride() uint32
	AppendFloats(dst []float32) []float32
}

func layout(attrs ...Attribute) []AttributeFormat {
	out := make([]AttributeFormat, len(attrs))
	var off uint32
	for i, a := range attrs {
		out[i] = AttributeFormat{Attribute: a, Offset: off}
		off += a.Size()
	}
	return out
}

var (
	posTexLayout         = layout(Position, TexCoord)
	posNormTexLayout     = layout(Position, Normal, TexCoord)
	posNormTangTexLayout = layout(Position, Normal, Tangent, TexCoord)
	posColorLayout       = layout(Position, Color)
)

// PosTex is a vertex with position and texture coordinates.
type PosTex struct {
	Position mgl32.Vec3
	TexCoord mgl32.Vec2
}

func (PosTex) Attributes() []AttributeFormat { return posTexLayout }
func (PosTex) Stride() uint32                { return 20 }

func (v PosTex) AppendFloats(dst []float32) []float32 {
	dst = append(dst, v.Position[:]...)
	return append(dst, v.TexCoord[:]...)
}

// PosNormTex is a vertex with position, normal and texture coordinates.
type PosNormTex struct {
	Position mgl32.Vec3
	Normal   mgl32.Vec3
	TexCoord mgl32.Vec2
}

func (PosNormTex) Attributes() []AttributeFormat { return posNormTexLayout }
func (PosNormTex) Stride() uint32                { return 32 }

func (v PosNormTex) AppendFloats(dst []float32) []float32 {
	dst = append(dst, v.Position[:]...)
	dst = append(dst, v.Normal[:]...)
	return append(dst, v.TexCoord[:]...)
}

// PosNormTangTex adds a tangent (w holds the bitangent sign) to PosNormTex.
type PosNormTangTex struct {
	Position mgl32.Vec3
	Normal   mgl32.Vec3
	Tangent  mgl32.Vec4
	TexCoord mgl32.Vec2
}

func (PosNormTangTex) Attributes() []AttributeFormat { return posNormTangTexLayout }
func (PosNormTangTex) Stride() uint32                { return 48 }

func (v PosNormTangTex) AppendFloats(dst []float32) []float32 {
	dst = append(dst, v.Position[:]...)
	dst = append(dst, v.Normal[:]...)
	dst = append(dst, v.Tangent[:]...)
	return append(dst, v.TexCoord[:]...)
}

// PosColor is a vertex with position and RGBA color.
type PosColor struct {
	Position mgl32.Vec3
	Color    mgl32.Vec4
}

func (PosColor) Attributes() []AttributeFormat { return posColorLayout }
func (PosColor) Stride() uint32                { return 28 }

func (v PosColor) AppendFloats(dst []float32) []float32 {
	dst = append(dst, v.Position[:]...)
	return append(dst, v.Color[:]...)
}

// ErrMissingAttributes is returned by QueryAttributes when the format lacks
// a requested attribute.
var ErrMissingAttributes = errors.New(prefix + "vertex format lacks queried attributes")

// QueryAttributes returns the formats of wanted, in the order given, with
// offsets relative to format.
func QueryAttributes(format VertexFormat, wanted ...Attribute) ([]AttributeFormat, error) {
	attrs := format.Attributes()
	out := make([]AttributeFormat, 0, len(wanted))
	for _, w := range wanted {
		found := false
		for _, a := range attrs {
			if a.Attribute == w {
				out = append(out, a)
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("%w: %T has no %v", ErrMissingAttributes, format, w)
		}
	}
	return out, nil
}
