package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/edge"
	"entgo.io/ent/schema/field"
)

// Session holds the schema definition for the Session entity.
type Session struct {
	ent.Schema
}

// Fields of the Session.
func (Session) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").Unique(),
		field.String("company_id"),
		field.String("date"),
		field.String("title").Optional(),
		field.Text("summary").Optional(),
		field.Text("follow_up").Optional(),
		field.Strings("session_types").Optional(),
		field.Strings("mentors").Optional(),
	}
}

// Edges of the Session.
func (Session) Edges() []ent.Edge {
	return []ent.Edge{
		edge.From("company", Company.Type).Ref("sessions").Field("company_id").Unique().Required(),
	}
}
