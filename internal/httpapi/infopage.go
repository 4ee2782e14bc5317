package httpapi

import (
	"fmt"
	"net/http"

	"github.com/rmacdonaldsmith/georelay-go/pkg/geohash"
	"github.com/rmacdonaldsmith/georelay-go/pkg/scope"
)

// InfoPage handles GET / with a human-readable description of the scope the
// requested hostname lands in. Each subdomain gets its own page because each
// subdomain is its own isolated message partition.
func (h *Handlers) InfoPage(w http.ResponseWriter, r *http.Request) {
	bound := h.resolver.Resolve(r.Host)

	count := 0
	if stored, err := h.node.Store().Count(r.Context(), bound); err == nil {
		count = stored
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, infoPageHTML, r.Host, scopeTitle(bound), scopeDescription(bound), count)
}

func scopeTitle(s scope.Scope) string {
	if s.IsRoot() {
		return "Root scope"
	}
	if s.IsGeohash() {
		return "Geohash scope: " + s.Name()
	}
	return "Named scope: " + s.Name()
}

func scopeDescription(s scope.Scope) string {
	switch {
	case s.IsRoot():
		return "This is the default partition. Messages published here stay here; " +
			"messages carrying a location tag belong on the matching geohash subdomain."
	case s.IsGeohash():
		return fmt.Sprintf("This partition serves the geohash cell %q (precision %d). "+
			"Only messages whose first location tag names this exact cell are accepted; "+
			"neighboring and nested cells are separate partitions.", s.Name(), len(s.Name()))
	default:
		if len(s.Name()) <= geohash.MaxLength {
			return "This is a named partition. Its name is not a valid geohash, " +
				"so no location-tagged traffic routes here."
		}
		return "This is a named partition isolated from all location-based routing."
	}
}

const infoPageHTML = `<!DOCTYPE html>
<html>
<head>
<title>georelay - %s</title>
<style>
body { font-family: monospace; max-width: 42em; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.2em; }
.count { color: #555; }
</style>
</head>
<body>
<h1>%s</h1>
<p>%s</p>
<p class="count">%d messages stored in this scope.</p>
<p>API: POST /api/v1/messages &middot; GET /api/v1/messages &middot; GET /api/v1/messages/stream &middot; GET /health</p>
</body>
</html>
`
