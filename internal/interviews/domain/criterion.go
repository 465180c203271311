package domain

// Criterion is an evaluation criterion owned by an interview (general scope)
// or by one task (task scope).
type Criterion struct {
	Ref         Ref
	Name        string
	Description string
	Type        CriterionType
	Scope       Scope
}

// NewCriterion creates a pending criterion.
func NewCriterion(name, description string, typ CriterionType, scope Scope) Criterion {
	return Criterion{
		Ref:         NewPendingRef(),
		Name:        name,
		Description: description,
		Type:        typ,
		Scope:       scope,
	}
}

// Validate checks the criterion against the scope of its container.
func (c Criterion) Validate(container Scope) error {
	if c.Ref.IsZero() {
		return ErrUnreconciled
	}
	if !c.Type.IsValid() {
		return ErrInvalidCriterionType
	}
	if c.Scope != container {
		return ErrScopeMismatch
	}
	return nil
}

func cloneCriteria(criteria []Criterion) []Criterion {
	if criteria == nil {
		return nil
	}
	out := make([]Criterion, len(criteria))
	copy(out, criteria)
	return out
}
