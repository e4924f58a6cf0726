package mongostore

import (
	"encoding/json"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
)

// RenderCollections renders a collection listing as a markdown table.
func RenderCollections(stats []CollectionStats) string {
	var b strings.Builder
	b.WriteString("# Collections\n\n")
	if len(stats) == 0 {
		b.WriteString("No collections found.\n")
		return b.String()
	}

	b.WriteString("| Name | Documents | Size (bytes) |\n")
	b.WriteString("|------|-----------|--------------|\n")
	for _, s := range stats {
		fmt.Fprintf(&b, "| %s | %d | %d |\n", s.Name, s.Count, s.Size)
	}
	return b.String()
}

// RenderSchema renders an inferred collection schema as a markdown table.
func RenderSchema(schema *CollectionSchema) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Collection: %s\n\n", schema.Name)
	if len(schema.Fields) == 0 {
		b.WriteString("No documents sampled; the collection is empty.\n")
		return b.String()
	}
	b.WriteString(RenderFieldTable(schema.Fields))
	return b.String()
}

// RenderFieldTable renders just the field table, without a heading.
func RenderFieldTable(fields []Field) string {
	var b strings.Builder
	b.WriteString("| Field | Type | Count |\n")
	b.WriteString("|-------|------|-------|\n")
	for _, f := range fields {
		fmt.Fprintf(&b, "| %s | %s | %d |\n", f.Name, f.Type, f.Count)
	}
	return b.String()
}

// RenderDocuments renders documents as a fenced JSON block under a
// heading.
func RenderDocuments(heading string, docs []bson.M) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", heading)
	if len(docs) == 0 {
		b.WriteString("No documents found.\n")
		return b.String()
	}
	b.WriteString(DocumentsBlock(docs))
	return b.String()
}

// DocumentsBlock renders documents as a fenced JSON block.
func DocumentsBlock(docs []bson.M) string {
	data, err := json.MarshalIndent(docs, "", "  ")
	if err != nil {
		return fmt.Sprintf("failed to encode documents: %v\n", err)
	}
	return fmt.Sprintf("```json\n%s\n```\n", data)
}

// RenderQueryResult renders a filtered query outcome: the echoed
// filter, the match counts, and the returned documents.
func RenderQueryResult(name string, result *QueryResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Query: %s\n\n", name)

	filter, err := json.Marshal(result.Query)
	if err == nil {
		fmt.Fprintf(&b, "Filter: `%s`\n\n", filter)
	}
	fmt.Fprintf(&b, "Returned %d of %d matching documents.\n\n", result.Count, result.Total)
	b.WriteString(DocumentsBlock(result.Data))
	return b.String()
}
