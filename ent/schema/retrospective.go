package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/edge"
	"entgo.io/ent/schema/field"
)

// Retrospective holds the schema definition for the Retrospective entity.
type Retrospective struct {
	ent.Schema
}

// Fields of the Retrospective.
func (Retrospective) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").Unique(),
		field.String("company_id"),
		field.String("review_date"),
		field.Text("keep").Optional(),
		field.Text("problem").Optional(),
		field.Text("try").Optional(),
	}
}

// Edges of the Retrospective.
func (Retrospective) Edges() []ent.Edge {
	return []ent.Edge{
		edge.From("company", Company.Type).Ref("retrospectives").Field("company_id").Unique().Required(),
	}
}
