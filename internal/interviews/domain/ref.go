package domain

import (
	"encoding/json"
	"strings"

	"github.com/google/uuid"
)

// RefKind discriminates the two forms of Ref.
type RefKind int

const (
	// RefPending marks an entity that has not been written yet.
	RefPending RefKind = iota + 1
	// RefPersisted marks an entity with a store-assigned id.
	RefPersisted
)

// Ref identifies a task or criterion either by its persisted id or by a
// client key assigned before the first write. The zero Ref is invalid.
type Ref struct {
	kind      RefKind
	id        uuid.UUID
	clientKey string
}

// Persisted returns a ref for a stored entity.
func Persisted(id uuid.UUID) Ref {
	return Ref{kind: RefPersisted, id: id}
}

// Pending returns a ref for an entity known only by its client key.
func Pending(clientKey string) Ref {
	return Ref{kind: RefPending, clientKey: clientKey}
}

// NewPendingRef returns a pending ref with a fresh client key. Client keys
// never parse as UUIDs, so ParseRef round-trips them.
func NewPendingRef() Ref {
	return Pending("key-" + strings.ReplaceAll(uuid.NewString(), "-", "")[:16])
}

// ParseRef maps a UUID string to a persisted ref and anything else to a
// pending ref carrying s as its client key. An empty string yields a fresh
// pending ref.
func ParseRef(s string) Ref {
	s = strings.TrimSpace(s)
	if s == "" {
		return NewPendingRef()
	}
	if id, err := uuid.Parse(s); err == nil && id != uuid.Nil {
		return Persisted(id)
	}
	return Pending(s)
}

func (r Ref) Kind() RefKind          { return r.kind }
func (r Ref) IsPersisted() bool      { return r.kind == RefPersisted }
func (r Ref) IsPending() bool        { return r.kind == RefPending }
func (r Ref) IsZero() bool           { return r.kind == 0 }
func (r Ref) ClientKey() string      { return r.clientKey }
func (r Ref) PersistedID() uuid.UUID { return r.id }

// ID returns the persisted id and whether the ref is persisted.
func (r Ref) ID() (uuid.UUID, bool) {
	return r.id, r.kind == RefPersisted
}

// String returns the id for persisted refs and the client key otherwise.
func (r Ref) String() string {
	switch r.kind {
	case RefPersisted:
		return r.id.String()
	case RefPending:
		return r.clientKey
	default:
		return ""
	}
}

// MarshalJSON encodes the ref as its string form.
func (r Ref) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.String())
}

// UnmarshalJSON decodes a ref with ParseRef.
func (r *Ref) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*r = ParseRef(s)
	return nil
}
