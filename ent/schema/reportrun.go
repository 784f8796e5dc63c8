package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/schema/edge"
	"entgo.io/ent/schema/field"
)

// ReportRun holds the schema definition for the ReportRun entity.
type ReportRun struct {
	ent.Schema
}

// Fields of the ReportRun.
func (ReportRun) Fields() []ent.Field {
	return []ent.Field{
		field.String("company_id"),
		field.Text("narrative").Optional(),
		field.JSON("analyst_report", map[string]interface{}{}).Optional(),
		field.JSON("pulse_report", map[string]interface{}{}).Optional(),
		field.JSON("briefing", map[string]interface{}{}).Optional(),
		field.Time("created_at").Default(time.Now),
	}
}

// Edges of the ReportRun.
func (ReportRun) Edges() []ent.Edge {
	return []ent.Edge{
		edge.From("company", Company.Type).Ref("report_runs").Field("company_id").Unique().Required(),
	}
}
