package erd

import (
	"fmt"
	"strings"
)

// RenderMarkdown renders the whole document as one markdown page.
// The template is deterministic: tables in source order, columns in
// source order, relations after the column table.
func RenderMarkdown(doc *Document) string {
	var b strings.Builder
	b.WriteString("# Entity Relationship Diagram\n")

	if len(doc.Tables) == 0 {
		b.WriteString("\nNo tables defined.\n")
		return b.String()
	}

	for i := range doc.Tables {
		b.WriteString("\n")
		b.WriteString(RenderTable(&doc.Tables[i]))
	}
	return b.String()
}

// RenderTable renders a single table section.
func RenderTable(t *Table) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## %s\n", t.Name)
	if t.Description != "" {
		fmt.Fprintf(&b, "\n%s\n", t.Description)
	}

	b.WriteString("\n| Column | Type | Required | Key | Description |\n")
	b.WriteString("|--------|------|----------|-----|-------------|\n")
	for _, col := range t.Columns {
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s |\n",
			col.Name, col.Type, requiredCell(col), keyCell(col), col.Description)
	}

	if len(t.Relations) > 0 {
		b.WriteString("\n**Relations**\n\n")
		for _, rel := range t.Relations {
			fmt.Fprintf(&b, "- %s: %s.%s → %s.%s",
				rel.Type, rel.SourceTable, rel.SourceColumn, rel.TargetTable, rel.TargetColumn)
			if rel.Description != "" {
				fmt.Fprintf(&b, " (%s)", rel.Description)
			}
			b.WriteString("\n")
		}
	}
	return b.String()
}

func requiredCell(col Column) string {
	if col.Required {
		return "yes"
	}
	return ""
}

func keyCell(col Column) string {
	switch {
	case col.IsPrimaryKey && col.IsForeignKey:
		return "PK, FK"
	case col.IsPrimaryKey:
		return "PK"
	case col.IsForeignKey:
		return "FK"
	default:
		return ""
	}
}
