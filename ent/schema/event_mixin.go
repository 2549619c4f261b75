package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
	"entgo.io/ent/schema/mixin"
)

// EventMixin is the shared base for the append-only event tables
// (LLM requests and learner answers). The sequence number is global
// across event types, so snapshots can record exactly how much of the
// log they cover.
type EventMixin struct {
	mixin.Schema
}

func (EventMixin) Fields() []ent.Field {
	return []ent.Field{
		field.Int64("sequence").
			Unique().
			Immutable().
			Comment("Global, monotonically increasing event sequence"),
		field.Time("timestamp").
			Default(time.Now).
			Immutable().
			Comment("UTC time the event was recorded"),
	}
}

func (EventMixin) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("sequence"),
		index.Fields("timestamp"),
	}
}
