package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// AnswerEvent records a single learner answer to generated lesson content.
type AnswerEvent struct {
	ent.Schema
}

func (AnswerEvent) Mixin() []ent.Mixin {
	return []ent.Mixin{EventMixin{}}
}

func (AnswerEvent) Fields() []ent.Field {
	return []ent.Field{
		field.String("subject").
			NotEmpty().
			Comment("Subject the learner is studying"),
		field.String("lesson_id").
			NotEmpty().
			Comment("Lesson the content belonged to"),
		field.String("content_type").
			Default("").
			Comment("multiple_choice, fill_blank, step_solver, ...; empty when not reported"),
		field.Bool("correct").
			Comment("Whether the answer was correct"),
	}
}

func (AnswerEvent) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("subject"),
		index.Fields("lesson_id"),
		index.Fields("correct"),
	}
}
