package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/edge"
	"entgo.io/ent/schema/field"
)

// ExpertRequest holds the schema definition for the ExpertRequest entity.
type ExpertRequest struct {
	ent.Schema
}

// Fields of the ExpertRequest.
func (ExpertRequest) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").Unique(),
		field.String("company_id"),
		field.String("status").Optional(),
		field.String("urgency").Optional(),
		field.Time("requested_at").Optional(),
		field.Text("summary").Optional(),
		field.Text("problem").Optional(),
		field.Text("desired_expertise").Optional(),
		field.Strings("support_types").Optional(),
	}
}

// Edges of the ExpertRequest.
func (ExpertRequest) Edges() []ent.Edge {
	return []ent.Edge{
		edge.From("company", Company.Type).Ref("expert_requests").Field("company_id").Unique().Required(),
	}
}
