package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/edge"
	"entgo.io/ent/schema/field"
)

// Company holds the schema definition for the Company entity.
type Company struct {
	ent.Schema
}

// Fields of the Company.
func (Company) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").Unique(),
		field.String("name"),
		field.String("batch").Optional(),
		field.String("description").Optional(),
		field.Float("achievement_override").Optional().Nillable(),
	}
}

// Edges of the Company.
func (Company) Edges() []ent.Edge {
	return []ent.Edge{
		edge.To("sessions", Session.Type),
		edge.To("expert_requests", ExpertRequest.Type),
		edge.To("retrospectives", Retrospective.Type),
		edge.To("kpi_items", KpiItem.Type),
		edge.To("report_runs", ReportRun.Type),
	}
}
