package repository

import "time"

// Attribute names shared by every record; the store implementations map
// these patch fields onto the base record rather than the entity payload.
const (
	FieldUpdatedAt = "UpdatedAt"
	FieldUpdatedBy = "UpdatedBy"
)

// Patch is a typed partial update: only fields explicitly set are written.
// It replaces stringly-typed update-expression assembly; the store
// implementations translate it into their native update primitives.
type Patch struct {
	sets map[string]any
}

// NewPatch creates an empty patch.
func NewPatch() *Patch {
	return &Patch{sets: make(map[string]any)}
}

// Set records a field write. Setting the same field twice keeps the last
// value.
func (p *Patch) Set(field string, value any) *Patch {
	p.sets[field] = value
	return p
}

// SetIfPresent records a field write only when the pointer is non-nil,
// matching the optional-field semantics of update requests.
func SetIfPresent[T any](p *Patch, field string, value *T) *Patch {
	if value != nil {
		p.sets[field] = *value
	}
	return p
}

// Audit stamps the patch with the mutation's audit fields.
func (p *Patch) Audit(actor string, at time.Time) *Patch {
	p.sets[FieldUpdatedAt] = at
	p.sets[FieldUpdatedBy] = actor
	return p
}

// IsEmpty reports whether the patch writes nothing.
func (p *Patch) IsEmpty() bool {
	return len(p.sets) == 0
}

// Fields returns a copy of the recorded field writes.
func (p *Patch) Fields() map[string]any {
	out := make(map[string]any, len(p.sets))
	for k, v := range p.sets {
		out[k] = v
	}
	return out
}
