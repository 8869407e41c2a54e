package specification

import "net/url"

// Specification contributes query parameters to a collection request. The
// encoding follows PostgREST operator syntax (field=eq.value, order=...),
// which both the REST gateway and the in-memory gateway understand.
type Specification interface {
	Apply(query url.Values)
}
