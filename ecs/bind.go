package ecs

import "reflect"

// Binder is implemented by Query, View and Singleton. Bind calls Init on every
// exported struct field whose address implements it.
type Binder interface {
	Init(storage *Storage)
}

type executor interface {
	Execute()
}

// Bindings remembers the queries bound on one target.
type Bindings struct {
	queries []executor
	count   int
}

// Bind initializes the Query, View and Singleton fields of target, which must be
// a pointer to a struct. Embedded structs are walked recursively. Any other
// target binds nothing.
func Bind(target any, storage *Storage) *Bindings {
	b := &Bindings{}
	v := reflect.ValueOf(target)
	if v.Kind() != reflect.Ptr || v.Elem().Kind() != reflect.Struct {
		return b
	}
	b.bindStruct(v.Elem(), storage)
	return b
}

var binderType = reflect.TypeFor[Binder]()

func (b *Bindings) bindStruct(v reflect.Value, storage *Storage) {
	t := v.Type()
	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		if field.Kind() != reflect.Struct {
			continue
		}

		addr := field.Addr()
		if field.CanSet() && addr.Type().Implements(binderType) {
			addr.Interface().(Binder).Init(storage)
			b.count++
			if e, ok := addr.Interface().(executor); ok {
				b.queries = append(b.queries, e)
			}
			continue
		}

		// Exported fields promoted from unexported embedded structs stay
		// settable, so embedded structs are walked either way.
		if t.Field(i).Anonymous {
			b.bindStruct(field, storage)
		}
	}
}

// Refresh executes every bound query.
func (b *Bindings) Refresh() {
	for _, q := range b.queries {
		q.Execute()
	}
}

// Len returns the number of bound fields.
func (b *Bindings) Len() int {
	return b.count
}
