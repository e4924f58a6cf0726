package swagger

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDocument() *Document {
	return &Document{
		OpenAPI: "3.0.0",
		Info:    Info{Title: "Shop API", Version: "1.2.0"},
		Paths: map[string]PathItem{
			"/orders":      {Get: &Operation{Summary: "List orders"}},
			"/orders/{id}": {Get: &Operation{Summary: "Get one order"}},
			"/invoices":    {Get: &Operation{Summary: "List invoices"}},
		},
		Components: &Components{
			Schemas: map[string]json.RawMessage{
				"Order":        json.RawMessage(`{"type":"object"}`),
				"OrderItem":    json.RawMessage(`{"type":"object"}`),
				"InvoiceTotal": json.RawMessage(`{"type":"object"}`),
			},
		},
	}
}

func TestFetch(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"openapi": "3.0.0",
			"info": {"title": "Shop API", "version": "1.0.0"},
			"paths": {"/orders": {"get": {"summary": "List orders"}}}
		}`))
	}))
	defer ts.Close()

	client := NewClient(Options{Endpoint: ts.URL})
	doc, err := client.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Shop API", doc.Info.Title)
	require.Contains(t, doc.Paths, "/orders")
	assert.Equal(t, "List orders", doc.Paths["/orders"].Get.Summary)
}

func TestFetchNotConfigured(t *testing.T) {
	client := NewClient(Options{})
	_, err := client.Fetch(context.Background())
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestFilterPath(t *testing.T) {
	doc := testDocument()

	filtered := doc.FilterPath("/orders")
	require.Len(t, filtered.Paths, 1)
	assert.Contains(t, filtered.Paths, "/orders")

	// Exact match only: no prefix or substring matching.
	unchanged := doc.FilterPath("/orders/")
	assert.Len(t, unchanged.Paths, 3)

	// Silent no-op on an unknown key.
	unchanged = doc.FilterPath("/missing")
	assert.Len(t, unchanged.Paths, 3)
}

func TestNarrowExactMatchPreferred(t *testing.T) {
	doc := testDocument()

	narrowed, ok := doc.Narrow("orders")
	require.True(t, ok)
	require.Len(t, narrowed.Paths, 1)
	assert.Contains(t, narrowed.Paths, "/orders")
	assert.Nil(t, narrowed.Components)
}

func TestNarrowSubstringUnion(t *testing.T) {
	doc := testDocument()

	// No exact /order path exists, so the substring pass unions
	// matching paths and schemas.
	narrowed, ok := doc.Narrow("order")
	require.True(t, ok)
	assert.Contains(t, narrowed.Paths, "/orders")
	assert.Contains(t, narrowed.Paths, "/orders/{id}")
	assert.NotContains(t, narrowed.Paths, "/invoices")
	require.NotNil(t, narrowed.Components)
	assert.Contains(t, narrowed.Components.Schemas, "Order")
	assert.Contains(t, narrowed.Components.Schemas, "OrderItem")
	assert.NotContains(t, narrowed.Components.Schemas, "InvoiceTotal")
}

func TestNarrowSchemaOnlyMatch(t *testing.T) {
	doc := testDocument()

	narrowed, ok := doc.Narrow("invoicetotal")
	require.True(t, ok)
	assert.Empty(t, narrowed.Paths)
	require.NotNil(t, narrowed.Components)
	assert.Contains(t, narrowed.Components.Schemas, "InvoiceTotal")
}

func TestNarrowExactMatchNeedsOperations(t *testing.T) {
	doc := &Document{
		Paths: map[string]PathItem{
			"/orders":     {}, // no operations, so the exact pass must not win
			"/orders/new": {Post: &Operation{Summary: "Create"}},
		},
	}

	narrowed, ok := doc.Narrow("orders")
	require.True(t, ok)
	assert.Len(t, narrowed.Paths, 2)
}

func TestNarrowNoMatch(t *testing.T) {
	doc := testDocument()
	_, ok := doc.Narrow("customers")
	assert.False(t, ok)
}

func TestOperationsOrder(t *testing.T) {
	item := PathItem{
		Delete: &Operation{},
		Get:    &Operation{},
		Post:   &Operation{},
	}

	ops := item.Operations()
	require.Len(t, ops, 3)
	assert.Equal(t, "get", ops[0].Method)
	assert.Equal(t, "post", ops[1].Method)
	assert.Equal(t, "delete", ops[2].Method)
}
