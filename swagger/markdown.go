package swagger

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// RenderMarkdown renders the document as one markdown page: info
// first, then each path's operations, then component schemas. Paths,
// response codes, and schema names are sorted for determinism.
func RenderMarkdown(doc *Document) string {
	var b strings.Builder

	title := doc.Info.Title
	if title == "" {
		title = "API Documentation"
	}
	fmt.Fprintf(&b, "# %s\n", title)
	if doc.Info.Version != "" {
		fmt.Fprintf(&b, "\nVersion: %s\n", doc.Info.Version)
	}
	if doc.Info.Description != "" {
		fmt.Fprintf(&b, "\n%s\n", doc.Info.Description)
	}

	if len(doc.Paths) > 0 {
		b.WriteString("\n## Paths\n")
		for _, path := range sortedKeys(doc.Paths) {
			renderPath(&b, path, doc.Paths[path])
		}
	}

	if doc.Components != nil && len(doc.Components.Schemas) > 0 {
		b.WriteString("\n## Schemas\n")
		for _, name := range sortedKeys(doc.Components.Schemas) {
			fmt.Fprintf(&b, "\n### %s\n\n", name)
			writeSchema(&b, doc.Components.Schemas[name])
		}
	}

	return b.String()
}

func renderPath(b *strings.Builder, path string, item PathItem) {
	for _, mo := range item.Operations() {
		op := mo.Operation
		fmt.Fprintf(b, "\n### %s %s\n", strings.ToUpper(mo.Method), path)
		if op.Summary != "" {
			fmt.Fprintf(b, "\n%s\n", op.Summary)
		}
		if op.Description != "" {
			fmt.Fprintf(b, "\n%s\n", op.Description)
		}

		if len(op.Parameters) > 0 {
			b.WriteString("\n**Parameters**\n\n")
			b.WriteString("| Name | In | Required | Description |\n")
			b.WriteString("|------|----|----------|-------------|\n")
			for _, p := range op.Parameters {
				required := ""
				if p.Required {
					required = "yes"
				}
				fmt.Fprintf(b, "| %s | %s | %s | %s |\n", p.Name, p.In, required, p.Description)
			}
		}

		if op.RequestBody != nil {
			b.WriteString("\n**Request Body**\n")
			if op.RequestBody.Description != "" {
				fmt.Fprintf(b, "\n%s\n", op.RequestBody.Description)
			}
			for _, mediaType := range sortedKeys(op.RequestBody.Content) {
				fmt.Fprintf(b, "\n`%s`\n\n", mediaType)
				writeSchema(b, op.RequestBody.Content[mediaType].Schema)
			}
		}

		if len(op.Responses) > 0 {
			b.WriteString("\n**Responses**\n")
			for _, code := range sortedKeys(op.Responses) {
				resp := op.Responses[code]
				fmt.Fprintf(b, "\n#### %s\n", code)
				if resp.Description != "" {
					fmt.Fprintf(b, "\n%s\n", resp.Description)
				}
				for _, mediaType := range sortedKeys(resp.Content) {
					fmt.Fprintf(b, "\n`%s`\n\n", mediaType)
					writeSchema(b, resp.Content[mediaType].Schema)
				}
			}
		}
	}
}

// writeSchema embeds a raw JSON schema verbatim in a fenced block.
func writeSchema(b *strings.Builder, schema json.RawMessage) {
	if len(schema) == 0 {
		return
	}
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, schema, "", "  "); err != nil {
		pretty.Reset()
		pretty.Write(schema)
	}
	fmt.Fprintf(b, "```json\n%s\n```\n", pretty.String())
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
