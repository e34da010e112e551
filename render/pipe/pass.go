package pipe

import (
	"reflect"
	"strings"

	"github.com/plus3/facet/render/gfx"
)

// Pass is one drawing technique. Compile runs once when the pipeline is
// built; Apply runs every frame.
//
// The Query and Singleton fields of a pass are bound to the world's storage
// with ecs.Bind before Compile, and refreshed before every Apply.
type Pass interface {
	Compile(effect NewEffect) (*Effect, error)
	Apply(enc gfx.Encoder, effect *Effect, factory gfx.Factory) error
}

// Named is implemented by passes that choose their display name.
type Named interface {
	Name() string
}

// PassName returns the name a pass is reported and logged under.
func PassName(p Pass) string {
	if n, ok := p.(Named); ok {
		return n.Name()
	}
	t := reflect.TypeOf(p)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	name := t.Name()
	if i := strings.IndexByte(name, '['); i >= 0 {
		name = name[:i]
	}
	return name
}
