// Package explorer fans a free-text query out to every configured
// source and merges the narrowed results into one response.
//
// The flow is: resolve an entity name from the query, look it up in
// each configured source concurrently, narrow each source's payload
// to the entity, and compose the slots in a fixed order (ERD, then
// Swagger, then MongoDB). Every requested source always appears in
// the output, either with data or with an explanatory message; a
// failure in one source never aborts the others. The only
// call-aborting failure is entity resolution.
//
// Example usage:
//
//	exp := explorer.New(explorer.Options{
//	    ERD:     erdClient,
//	    Swagger: swaggerClient,
//	    Store:   inspector,
//	})
//
//	result, err := exp.Explore(ctx, "show me the users table", explorer.ExploreOptions{})
//	if err != nil {
//	    // entity.ErrUnresolved is the only error surfaced here
//	}
//	fmt.Println(explorer.RenderMarkdown(result))
package explorer
