package ebitengfx

import (
	"image/color"
	"slices"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/plus3/facet/render"
	"github.com/plus3/facet/render/gfx"
	"github.com/plus3/facet/render/shaders"
)

// ebiten indexes vertices with uint16.
const maxBatchVertices = 65535

// albedoTextures are the textures bound to image slots 0, 1 and 2.
var albedoTextures = [3]string{"albedo_yz", "albedo_xz", "albedo_xy"}

type batch struct {
	program  *Program
	tris     []triangle
	depth    float32
	blended  bool
	blend    ebiten.Blend
	scale    float32
	textures [3]*render.Texture
	// offsets are the u and v ranges of textures, flattened.
	offsets [12]float32
}

type imageKey struct {
	tex  *render.Texture
	w, h int
}

// Encoder records draws for one frame and presents them on an ebiten
// image. Opaque draws are presented back to front by mean depth, blended
// draws afterwards in submission order.
type Encoder struct {
	// Width and Height are the size of the target Present draws on.
	Width, Height int

	clearColor *color.NRGBA
	batches    []batch
	images     map[imageKey]*ebiten.Image
	white      *render.Texture

	verts []ebiten.Vertex
	inds  []uint16
}

// NewEncoder returns an encoder for a width by height target.
func NewEncoder(width, height int) *Encoder {
	return &Encoder{Width: width, Height: height}
}

// Resize changes the target size for subsequent draws.
func (e *Encoder) Resize(width, height int) {
	e.Width, e.Height = width, height
}

// BeginFrame implements pipe.FrameEncoder.
func (e *Encoder) BeginFrame() {
	e.clearColor = nil
	e.batches = e.batches[:0]
}

// Clear implements gfx.Encoder. Only the screen target is supported and
// depth is ignored.
func (e *Encoder) Clear(target string, c [4]float32, _ float32) {
	if target != "" {
		return
	}
	e.clearColor = &color.NRGBA{R: to8(c[0]), G: to8(c[1]), B: to8(c[2]), A: to8(c[3])}
}

func to8(f float32) uint8 {
	return uint8(clamp01(f)*255 + 0.5)
}

// Draw implements gfx.Encoder.
func (e *Encoder) Draw(call gfx.DrawCall) error {
	program, ok := call.Program.(*Program)
	if !ok {
		return ErrForeignProgram
	}
	b, err := e.record(call)
	if err != nil {
		return err
	}
	b.program = program
	if len(b.tris) > 0 {
		e.batches = append(e.batches, b)
	}
	return nil
}

func (e *Encoder) record(call gfx.DrawCall) (batch, error) {
	tris, err := tessellate(call, e.Width, e.Height)
	if err != nil {
		return batch{}, err
	}
	slices.SortStableFunc(tris, func(a, b triangle) int {
		switch {
		case a.depth > b.depth:
			return -1
		case a.depth < b.depth:
			return 1
		}
		return 0
	})

	b := batch{tris: tris, scale: render.DefaultTriplanarScale}
	for _, t := range tris {
		b.depth += t.depth
	}
	if len(tris) > 0 {
		b.depth /= float32(len(tris))
	}
	if args := call.Constants[shaders.TriplanarArgs]; len(args) > 0 && args[0] > 0 {
		b.scale = args[0]
	}
	state := call.Program.Desc().State
	b.blended = state.Blended()
	b.blend = ebitenBlend(state)
	for i, name := range albedoTextures {
		b.textures[i] = call.Textures[name]
		off := [4]float32{0, 1, 0, 1}
		if data := call.Constants[shaders.OffsetName(name)]; len(data) >= 4 {
			copy(off[:], data)
		}
		copy(b.offsets[i*4:], off[:])
	}
	return b, nil
}

// Triangles returns the number of triangles recorded this frame.
func (e *Encoder) Triangles() int {
	n := 0
	for _, b := range e.batches {
		n += len(b.tris)
	}
	return n
}

// ordered returns the batches in presentation order.
func (e *Encoder) ordered() []batch {
	out := slices.Clone(e.batches)
	slices.SortStableFunc(out, func(a, b batch) int {
		switch {
		case a.blended != b.blended:
			if a.blended {
				return 1
			}
			return -1
		case a.blended:
			return 0
		case a.depth > b.depth:
			return -1
		case a.depth < b.depth:
			return 1
		}
		return 0
	})
	return out
}

// Present draws the recorded frame on screen.
func (e *Encoder) Present(screen *ebiten.Image) {
	if e.clearColor != nil {
		screen.Fill(*e.clearColor)
	}
	for _, b := range e.ordered() {
		op := &ebiten.DrawTrianglesShaderOptions{
			Uniforms: map[string]any{"Scale": b.scale, "Offsets": b.offsets[:]},
			Blend:    b.blend,
		}
		w, h := commonSize(b.textures)
		for i, tex := range b.textures {
			op.Images[i] = e.image(tex, w, h)
		}

		for start := 0; start < len(b.tris); {
			end := min(len(b.tris), start+maxBatchVertices/3)
			e.verts, e.inds = e.verts[:0], e.inds[:0]
			for _, t := range b.tris[start:end] {
				for _, v := range t.v {
					e.inds = append(e.inds, uint16(len(e.verts)))
					e.verts = append(e.verts, v)
				}
			}
			screen.DrawTrianglesShader(e.verts, e.inds, b.program.shader, op)
			start = end
		}
	}
}

// commonSize returns the size every texture of a draw is scaled to. Kage
// samples all source images with the coordinates of the first.
func commonSize(textures [3]*render.Texture) (w, h int) {
	w, h = 1, 1
	for _, t := range textures {
		if t != nil {
			w, h = max(w, t.Width), max(h, t.Height)
		}
	}
	return w, h
}

func (e *Encoder) image(tex *render.Texture, w, h int) *ebiten.Image {
	if tex == nil {
		if e.white == nil {
			e.white = render.SolidColor(1, 1, 1, 1)
		}
		tex = e.white
	}
	key := imageKey{tex: tex, w: w, h: h}
	if img, ok := e.images[key]; ok {
		return img
	}
	if e.images == nil {
		e.images = make(map[imageKey]*ebiten.Image)
	}
	img := ebiten.NewImageFromImage(tex.Resize(w, h).Image())
	e.images[key] = img
	return img
}

// Forget drops the cached image of tex, e.g. after its asset was replaced.
func (e *Encoder) Forget(tex *render.Texture) {
	for key, img := range e.images {
		if key.tex == tex {
			img.Deallocate()
			delete(e.images, key)
		}
	}
}

var blendFactors = map[gfx.Factor]ebiten.BlendFactor{
	gfx.FactorZero:             ebiten.BlendFactorZero,
	gfx.FactorOne:              ebiten.BlendFactorOne,
	gfx.FactorSrcAlpha:         ebiten.BlendFactorSourceAlpha,
	gfx.FactorOneMinusSrcAlpha: ebiten.BlendFactorOneMinusSourceAlpha,
	gfx.FactorDstAlpha:         ebiten.BlendFactorDestinationAlpha,
	gfx.FactorOneMinusDstAlpha: ebiten.BlendFactorOneMinusDestinationAlpha,
	gfx.FactorSrcColor:         ebiten.BlendFactorSourceColor,
	gfx.FactorDstColor:         ebiten.BlendFactorDestinationColor,
}

var blendOperations = map[gfx.Equation]ebiten.BlendOperation{
	gfx.EquationAdd:    ebiten.BlendOperationAdd,
	gfx.EquationSub:    ebiten.BlendOperationSubtract,
	gfx.EquationRevSub: ebiten.BlendOperationReverseSubtract,
	gfx.EquationMin:    ebiten.BlendOperationMin,
	gfx.EquationMax:    ebiten.BlendOperationMax,
}

// ebitenBlend converts the blend of the first output. ebiten images hold
// premultiplied colors, so a source alpha factor on color becomes one.
func ebitenBlend(state gfx.PipelineState) ebiten.Blend {
	if len(state.Outputs) == 0 || state.Outputs[0].Blend == nil {
		return ebiten.BlendSourceOver
	}
	b := state.Outputs[0].Blend
	srcRGB := b.Color.Source
	if srcRGB == gfx.FactorSrcAlpha {
		srcRGB = gfx.FactorOne
	}
	return ebiten.Blend{
		BlendFactorSourceRGB:        blendFactors[srcRGB],
		BlendFactorSourceAlpha:      blendFactors[b.Alpha.Source],
		BlendFactorDestinationRGB:   blendFactors[b.Color.Dest],
		BlendFactorDestinationAlpha: blendFactors[b.Alpha.Dest],
		BlendOperationRGB:           blendOperations[b.Color.Equation],
		BlendOperationAlpha:         blendOperations[b.Alpha.Equation],
	}
}
