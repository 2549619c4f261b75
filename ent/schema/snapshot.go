package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// Snapshot is a point-in-time capture of per-subject learner state:
// lesson plans, mastery progress, criteria, and content logs. Commands
// restore from the latest snapshot instead of replaying the event log.
type Snapshot struct {
	ent.Schema
}

func (Snapshot) Fields() []ent.Field {
	return []ent.Field{
		field.Int64("sequence").
			Comment("How far into the event log this snapshot covers"),
		field.Time("timestamp").
			Default(time.Now).
			Comment("When the capture was taken"),
		field.JSON("data", map[string]any{}).
			Comment("Versioned subject-state payload"),
	}
}

func (Snapshot) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("timestamp"),
		index.Fields("sequence"),
	}
}
