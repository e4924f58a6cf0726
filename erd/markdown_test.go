package erd

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderTablePrimaryKey(t *testing.T) {
	table := &Table{
		Name:    "users",
		Columns: []Column{{Name: "id", Type: "int", IsPrimaryKey: true}},
	}

	out := RenderTable(table)

	assert.Contains(t, out, "## users")
	assert.Contains(t, out, "| id | int |  | PK |  |")
}

func TestRenderTableKeysAndRelations(t *testing.T) {
	table := &Table{
		Name:        "orders",
		Description: "Customer orders",
		Columns: []Column{
			{Name: "id", Type: "int", Required: true, IsPrimaryKey: true},
			{Name: "user_id", Type: "int", IsForeignKey: true},
			{Name: "legacy_ref", Type: "int", IsPrimaryKey: true, IsForeignKey: true},
			{Name: "note", Type: "text", Description: "free text"},
		},
		Relations: []Relation{
			{
				Type:         "many-to-one",
				SourceTable:  "orders",
				SourceColumn: "user_id",
				TargetTable:  "users",
				TargetColumn: "id",
				Description:  "order owner",
			},
		},
	}

	out := RenderTable(table)

	assert.Contains(t, out, "Customer orders")
	assert.Contains(t, out, "| id | int | yes | PK |  |")
	assert.Contains(t, out, "| user_id | int |  | FK |  |")
	assert.Contains(t, out, "| legacy_ref | int |  | PK, FK |  |")
	assert.Contains(t, out, "| note | text |  |  | free text |")
	assert.Contains(t, out, "- many-to-one: orders.user_id → users.id (order owner)")
}

func TestRenderMarkdown(t *testing.T) {
	doc := testDocument()
	out := RenderMarkdown(doc)

	assert.True(t, strings.HasPrefix(out, "# Entity Relationship Diagram\n"))
	// Tables appear in source order.
	users := strings.Index(out, "## users")
	sessions := strings.Index(out, "## user_sessions")
	orders := strings.Index(out, "## orders")
	assert.Greater(t, sessions, users)
	assert.Greater(t, orders, sessions)
}

func TestRenderMarkdownEmpty(t *testing.T) {
	out := RenderMarkdown(&Document{})
	assert.Contains(t, out, "No tables defined.")
}
