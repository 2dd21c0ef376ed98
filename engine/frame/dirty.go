package frame

import "github.com/spaghettifunk/frameflight/engine/core"

// DirtyCounter counts the frame slots whose copy of an entity's constants is
// stale. Zero means every slot is current.
type DirtyCounter struct {
	pending int
}

// MarkDirty flags every slot of a ring of ringSize as stale.
func (d *DirtyCounter) MarkDirty(ringSize int) {
	d.pending = ringSize
}

func (d *DirtyCounter) IsDirty() bool {
	return d.pending > 0
}

// Pending returns the number of slots still waiting for an upload.
func (d *DirtyCounter) Pending() int {
	return d.pending
}

func (d *DirtyCounter) consume() {
	if d.pending > 0 {
		d.pending--
	}
}

// Dirtyable is an entity that owns constants in a per slot buffer.
type Dirtyable interface {
	DirtyCounter() *DirtyCounter
	ConstantIndex() int
}

// Propagator copies entity constants into one slot per frame until every slot
// of the ring holds the latest values.
type Propagator[E Dirtyable, C any] struct {
	ringSize int
	pack     func(E) C
}

// NewPropagator builds a propagator. pack converts an entity into its
// constant layout, transposing matrices.
func NewPropagator[E Dirtyable, C any](ringSize int, pack func(E) C) *Propagator[E, C] {
	return &Propagator[E, C]{ringSize: ringSize, pack: pack}
}

func (p *Propagator[E, C]) RingSize() int {
	return p.ringSize
}

func (p *Propagator[E, C]) MarkDirty(e E) {
	e.DirtyCounter().MarkDirty(p.ringSize)
}

// MaybeUpload writes e into buf if some slot is still stale and reports
// whether it did.
func (p *Propagator[E, C]) MaybeUpload(e E, buf *UploadBuffer[C]) (bool, error) {
	counter := e.DirtyCounter()
	if !counter.IsDirty() {
		return false, nil
	}
	if err := buf.CopyData(e.ConstantIndex(), p.pack(e)); err != nil {
		core.LogError(err.Error())
		return false, err
	}
	counter.consume()
	return true, nil
}

// UploadAll runs MaybeUpload over entities and returns the number of uploads.
func (p *Propagator[E, C]) UploadAll(entities []E, buf *UploadBuffer[C]) (int, error) {
	uploaded := 0
	for _, e := range entities {
		ok, err := p.MaybeUpload(e, buf)
		if err != nil {
			return uploaded, err
		}
		if ok {
			uploaded++
		}
	}
	return uploaded, nil
}
