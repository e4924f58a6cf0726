package explorer

import (
	"fmt"
	"strings"

	"github.com/sourcequery/sourcequery/erd"
	"github.com/sourcequery/sourcequery/mongostore"
	"github.com/sourcequery/sourcequery/swagger"
)

// RenderMarkdown composes the combined document. Section order is
// fixed: ERD, then Swagger, then MongoDB. Each section shows either
// its rendered payload or its inline message.
func RenderMarkdown(result *Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Data Explorer: %s\n", result.EntityName)
	fmt.Fprintf(&b, "\nQuery: %s\n", result.Query)

	b.WriteString("\n## ERD\n\n")
	renderERDSlot(&b, result.Sources.ERD)

	b.WriteString("\n## API (Swagger)\n\n")
	renderSwaggerSlot(&b, result.Sources.Swagger)

	b.WriteString("\n## MongoDB\n\n")
	renderMongoSlot(&b, result.Sources.MongoDB)

	return b.String()
}

func renderERDSlot(b *strings.Builder, slot any) {
	switch v := slot.(type) {
	case *erd.Table:
		b.WriteString(erd.RenderTable(v))
	case Message:
		fmt.Fprintf(b, "_%s_\n", v.Message)
	default:
		b.WriteString("_no data_\n")
	}
}

func renderSwaggerSlot(b *strings.Builder, slot any) {
	switch v := slot.(type) {
	case *swagger.Document:
		b.WriteString(swagger.RenderMarkdown(v))
	case Message:
		fmt.Fprintf(b, "_%s_\n", v.Message)
	default:
		b.WriteString("_no data_\n")
	}
}

func renderMongoSlot(b *strings.Builder, slot any) {
	switch v := slot.(type) {
	case MongoResult:
		b.WriteString("### Schema\n\n")
		if v.Schema == nil || len(v.Schema.Fields) == 0 {
			b.WriteString("The collection is empty.\n")
		} else {
			b.WriteString(mongostore.RenderFieldTable(v.Schema.Fields))
		}
		if len(v.Sample) > 0 {
			b.WriteString("\n### Sample Documents\n\n")
			b.WriteString(mongostore.DocumentsBlock(v.Sample))
		}
	case Message:
		fmt.Fprintf(b, "_%s_\n", v.Message)
	default:
		b.WriteString("_no data_\n")
	}
}
