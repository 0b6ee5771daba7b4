package diagram

import (
	"context"
	"strings"

	"github.com/turtacn/phdg/internal/domain/gibbs"
	"github.com/turtacn/phdg/pkg/errors"
)

// TableLoader loads a free-energy table from a source string.
type TableLoader interface {
	Load(ctx context.Context, source string) (*gibbs.Table, error)
}

// Router dispatches table sources to loaders by URL scheme.  Sources without
// a scheme, and file:// sources, go to the fallback loader.
type Router struct {
	fallback TableLoader
	loaders  map[string]TableLoader
}

// NewRouter returns a Router that sends plain paths to fallback.
func NewRouter(fallback TableLoader) *Router {
	return &Router{fallback: fallback, loaders: make(map[string]TableLoader)}
}

// Handle registers l for scheme, replacing any previous loader.
func (r *Router) Handle(scheme string, l TableLoader) {
	r.loaders[strings.ToLower(scheme)] = l
}

// Scheme returns the lower-cased scheme of source, or "file" when it has none.
func Scheme(source string) string {
	if i := strings.Index(source, "://"); i > 0 {
		return strings.ToLower(source[:i])
	}
	return "file"
}

// Load implements TableLoader.
func (r *Router) Load(ctx context.Context, source string) (*gibbs.Table, error) {
	scheme := Scheme(source)
	if l, ok := r.loaders[scheme]; ok {
		return l.Load(ctx, source)
	}
	if scheme == "file" && r.fallback != nil {
		return r.fallback.Load(ctx, source)
	}
	return nil, errors.Newf(errors.ErrCodeTableSchemeUnsupported, "no loader for scheme %q", scheme).WithDetail(source)
}

//Personal.AI order the ending
