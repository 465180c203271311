package domain

import "github.com/google/uuid"

// rowClaims tracks which returned rows have been matched.
type rowClaims struct {
	byID    map[uuid.UUID]int
	byKey   map[string]int
	claimed []bool
}

func newRowClaims(n int) *rowClaims {
	return &rowClaims{
		byID:    make(map[uuid.UUID]int, n),
		byKey:   make(map[string]int, n),
		claimed: make([]bool, n),
	}
}

func (c *rowClaims) add(idx int, id uuid.UUID, clientKey string) {
	if id != uuid.Nil {
		if _, dup := c.byID[id]; !dup {
			c.byID[id] = idx
		}
	}
	if clientKey != "" {
		if _, dup := c.byKey[clientKey]; !dup {
			c.byKey[clientKey] = idx
		}
	}
}

// claim matches a ref by persisted id or, for pending refs, by client key.
func (c *rowClaims) claim(ref Ref) (int, bool) {
	var (
		idx int
		ok  bool
	)
	switch ref.Kind() {
	case RefPersisted:
		idx, ok = c.byID[ref.PersistedID()]
	case RefPending:
		idx, ok = c.byKey[ref.ClientKey()]
	}
	if !ok || c.claimed[idx] {
		return 0, false
	}
	c.claimed[idx] = true
	return idx, true
}

// ReconcileTasks matches edited tasks to the rows returned by an upsert.
// Matching tries, in order: the persisted id, the echoed client key of a
// pending ref, and the unique unclaimed row with the same task order. The
// last rule only applies when no other edited task shares that order.
//
// Saved tasks take their columns from the row, keep the edited criteria,
// have no files and are sorted by order. Refs that found no row are
// returned in unmatched and have no saved task.
func ReconcileTasks(edited []Task, persisted []TaskRow) (saved []Task, unmatched []Ref) {
	claims := newRowClaims(len(persisted))
	for idx, row := range persisted {
		claims.add(idx, row.ID, row.ClientKey)
	}

	matched := make([]int, len(edited))
	orderCount := make(map[int]int, len(edited))
	for i, t := range edited {
		orderCount[t.Order]++
		matched[i] = -1
		if idx, ok := claims.claim(t.Ref); ok {
			matched[i] = idx
		}
	}

	for i, t := range edited {
		if matched[i] >= 0 || !t.Ref.IsPending() || orderCount[t.Order] != 1 {
			continue
		}
		candidate := -1
		for idx, row := range persisted {
			if claims.claimed[idx] || row.Order != t.Order {
				continue
			}
			if candidate >= 0 {
				candidate = -2
				break
			}
			candidate = idx
		}
		if candidate >= 0 {
			claims.claimed[candidate] = true
			matched[i] = candidate
		}
	}

	saved = make([]Task, 0, len(edited))
	for i, t := range edited {
		if matched[i] < 0 {
			unmatched = append(unmatched, t.Ref)
			continue
		}
		saved = append(saved, persisted[matched[i]].Task(cloneCriteria(t.Criteria)))
	}
	sortTasks(saved)
	return saved, unmatched
}

// ReconcileCriteria matches general and task criteria to the rows returned by
// a criteria upsert, by persisted id and then by client key. Matched criteria
// take their columns from the row.
func ReconcileCriteria(general []Criterion, saved []Task, persisted []CriterionRow) (reconciledGeneral []Criterion, reconciledTasks []Task, unmatched []Ref) {
	claims := newRowClaims(len(persisted))
	for idx, row := range persisted {
		claims.add(idx, row.ID, row.ClientKey)
	}

	resolve := func(criteria []Criterion) []Criterion {
		out := make([]Criterion, 0, len(criteria))
		for _, c := range criteria {
			idx, ok := claims.claim(c.Ref)
			if !ok {
				unmatched = append(unmatched, c.Ref)
				continue
			}
			out = append(out, persisted[idx].Criterion())
		}
		return out
	}

	reconciledGeneral = resolve(general)
	reconciledTasks = make([]Task, len(saved))
	for i, t := range saved {
		reconciledTasks[i] = t.Clone()
		reconciledTasks[i].Criteria = resolve(t.Criteria)
	}
	return reconciledGeneral, reconciledTasks, unmatched
}
