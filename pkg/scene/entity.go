package scene

// Disposer is anything holding render resources that must be released once.
type Disposer interface {
	Dispose()
	Disposed() bool
}

// Program is an opaque render program with a fixed uniform set U.
type Program[U any] struct {
	Name     string
	Uniforms U

	disposed bool
}

func NewProgram[U any](name string, uniforms U) *Program[U] {
	return &Program[U]{Name: name, Uniforms: uniforms}
}

func (p *Program[U]) Dispose()       { p.disposed = true }
func (p *Program[U]) Disposed() bool { return p.disposed }

// Entity bundles a vertex buffer with the program that draws it. Both are
// released together.
type Entity[U any] struct {
	Buffer  *VertexBuffer
	Program *Program[U]

	disposed bool
}

func NewEntity[U any](name string, buf *VertexBuffer, uniforms U) *Entity[U] {
	return &Entity[U]{Buffer: buf, Program: NewProgram(name, uniforms)}
}

func (e *Entity[U]) Dispose() {
	if e.disposed {
		return
	}
	e.disposed = true
	e.Program.Dispose()
	e.Buffer = nil
}

func (e *Entity[U]) Disposed() bool { return e.disposed }

// Registry tracks every entity a group allocated so they can be released
// in one pass and counted in tests.
type Registry struct {
	tracked []Disposer
}

func (r *Registry) Track(d Disposer) {
	r.tracked = append(r.tracked, d)
}

// Untrack disposes d and stops tracking it. Unknown entities are ignored.
func (r *Registry) Untrack(d Disposer) {
	for i, existing := range r.tracked {
		if existing == d {
			d.Dispose()
			r.tracked = append(r.tracked[:i], r.tracked[i+1:]...)
			return
		}
	}
}

// Len is the number of tracked entities, disposed or not.
func (r *Registry) Len() int { return len(r.tracked) }

// DisposeAll releases tracked entities in reverse allocation order.
func (r *Registry) DisposeAll() {
	for i := len(r.tracked) - 1; i >= 0; i-- {
		r.tracked[i].Dispose()
	}
	r.tracked = nil
}

// Live counts tracked entities that have not been disposed.
func (r *Registry) Live() int {
	n := 0
	for _, d := range r.tracked {
		if !d.Disposed() {
			n++
		}
	}
	return n
}
