package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/edge"
	"entgo.io/ent/schema/field"
)

// KpiValue holds the schema definition for the KpiValue entity.
type KpiValue struct {
	ent.Schema
}

// Fields of the KpiValue.
func (KpiValue) Fields() []ent.Field {
	return []ent.Field{
		field.String("item_id"),
		field.String("period"),
		field.String("value").Optional(),
	}
}

// Edges of the KpiValue.
func (KpiValue) Edges() []ent.Edge {
	return []ent.Edge{
		edge.From("item", KpiItem.Type).Ref("values").Field("item_id").Unique().Required(),
	}
}
