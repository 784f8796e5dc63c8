package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/edge"
	"entgo.io/ent/schema/field"
)

// KpiItem holds the schema definition for the KpiItem entity.
type KpiItem struct {
	ent.Schema
}

// Fields of the KpiItem.
func (KpiItem) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").Unique(),
		field.String("company_id"),
		field.String("level").Optional(),
		field.String("name"),
		field.String("target").Optional(),
		field.Bool("achieved").Optional().Nillable(),
		field.Float("rate").Optional().Nillable(),
		field.String("rate_text").Optional(),
	}
}

// Edges of the KpiItem.
func (KpiItem) Edges() []ent.Edge {
	return []ent.Edge{
		edge.From("company", Company.Type).Ref("kpi_items").Field("company_id").Unique().Required(),
		edge.To("values", KpiValue.Type),
	}
}
