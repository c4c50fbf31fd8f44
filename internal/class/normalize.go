package class

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
)

// The query layer serializes joined relations as JSON. Depending on whether
// the join used to_json or json_agg, a to-one relation arrives as an object,
// an array of one, or null. The adapters below collapse all three to a
// single canonical optional value at the boundary so the ambiguity never
// leaks further in.

type trainerRelation struct {
	Trainer *Trainer
}

func (r *trainerRelation) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		r.Trainer = nil
		return nil
	case []byte:
		return r.UnmarshalJSON(v)
	case string:
		return r.UnmarshalJSON([]byte(v))
	default:
		return fmt.Errorf("unsupported trainer relation type %T", src)
	}
}

func (r *trainerRelation) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		r.Trainer = nil
		return nil
	}

	if data[0] == '[' {
		var list []Trainer
		if err := json.Unmarshal(data, &list); err != nil {
			return err
		}
		if len(list) == 0 {
			r.Trainer = nil
			return nil
		}
		r.Trainer = &list[0]
		return nil
	}

	var t Trainer
	if err := json.Unmarshal(data, &t); err != nil {
		return err
	}
	r.Trainer = &t
	return nil
}

type rawClassPayload struct {
	GymClass
	Trainer trainerRelation `json:"trainer"`
}

type classRelation struct {
	Class *GymClass
}

func (r *classRelation) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		r.Class = nil
		return nil
	case []byte:
		return r.UnmarshalJSON(v)
	case string:
		return r.UnmarshalJSON([]byte(v))
	default:
		return fmt.Errorf("unsupported class relation type %T", src)
	}
}

func (r *classRelation) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		r.Class = nil
		return nil
	}

	if data[0] == '[' {
		var list []rawClassPayload
		if err := json.Unmarshal(data, &list); err != nil {
			return err
		}
		if len(list) == 0 {
			r.Class = nil
			return nil
		}
		r.Class = collapseClass(list[0])
		return nil
	}

	var p rawClassPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	r.Class = collapseClass(p)
	return nil
}

func collapseClass(p rawClassPayload) *GymClass {
	c := p.GymClass
	c.Trainer = p.Trainer.Trainer
	return &c
}

// rawClassRow is a classes row with its trainer relation still in query
// shape.
type rawClassRow struct {
	GymClass
	TrainerRel trainerRelation `db:"trainer"`
}

// rawSessionRow is a class_sessions row with its parent class relation
// still in query shape.
type rawSessionRow struct {
	ClassSession
	ClassRel classRelation `db:"class"`
}

// TrainerLookup batch-resolves trainer identities for a set of ids.
type TrainerLookup func(ctx context.Context, ids []int) (map[int]Trainer, error)

// NormalizeClasses collapses relation shapes and backfills missing trainer
// identities with a single batched lookup. An id with no matching identity
// row yields a nil trainer, not an error.
func NormalizeClasses(ctx context.Context, rows []rawClassRow, lookup TrainerLookup) ([]GymClass, error) {
	classes := make([]GymClass, 0, len(rows))
	for _, row := range rows {
		c := row.GymClass
		c.Trainer = row.TrainerRel.Trainer
		classes = append(classes, c)
	}

	if err := backfillTrainers(ctx, classesAsRefs(classes), lookup); err != nil {
		return nil, err
	}

	return classes, nil
}

// NormalizeSessions collapses the class relation on each session row and
// backfills trainer identities on the embedded classes.
func NormalizeSessions(ctx context.Context, rows []rawSessionRow, lookup TrainerLookup) ([]ClassSession, error) {
	sessions := make([]ClassSession, 0, len(rows))
	for _, row := range rows {
		s := row.ClassSession
		s.Class = row.ClassRel.Class
		sessions = append(sessions, s)
	}

	refs := make([]*GymClass, 0, len(sessions))
	for i := range sessions {
		if sessions[i].Class != nil {
			refs = append(refs, sessions[i].Class)
		}
	}

	if err := backfillTrainers(ctx, refs, lookup); err != nil {
		return nil, err
	}

	return sessions, nil
}

func classesAsRefs(classes []GymClass) []*GymClass {
	refs := make([]*GymClass, 0, len(classes))
	for i := range classes {
		refs = append(refs, &classes[i])
	}
	return refs
}

func backfillTrainers(ctx context.Context, classes []*GymClass, lookup TrainerLookup) error {
	if lookup == nil {
		return nil
	}

	seen := make(map[int]bool)
	var missing []int
	for _, c := range classes {
		if c.Trainer != nil || c.TrainerID == nil {
			continue
		}
		if !seen[*c.TrainerID] {
			seen[*c.TrainerID] = true
			missing = append(missing, *c.TrainerID)
		}
	}

	// Empty batches short-circuit without issuing a lookup.
	if len(missing) == 0 {
		return nil
	}

	trainers, err := lookup(ctx, missing)
	if err != nil {
		return err
	}

	for _, c := range classes {
		if c.Trainer != nil || c.TrainerID == nil {
			continue
		}
		if t, ok := trainers[*c.TrainerID]; ok {
			trainer := t
			c.Trainer = &trainer
		}
	}

	return nil
}
