// Package api provides the HTTP server, route wiring and API documentation.
package api

import (
	_ "embed"
	"encoding/json"
	"html/template"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/helixml/vodcast/infrastructure/api/middleware"
)

//go:embed openapi.json
var openapiJSON []byte

var docsPage = template.Must(template.New("docs").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <title>vodcast API</title>
    <link rel="stylesheet" type="text/css" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css">
    <style>body { margin: 0; background: #fafafa; }</style>
</head>
<body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js" charset="UTF-8"></script>
    <script>
        window.onload = function() {
            window.ui = SwaggerUIBundle({
                url: {{.SpecURL}},
                dom_id: '#swagger-ui',
                deepLinking: true,
                supportedSubmitMethods: ['get', 'head', 'post']
            });
        };
    </script>
</body>
</html>
`))

// DocsRouter serves the Swagger UI page and the OpenAPI document.
type DocsRouter struct {
	specURL string
}

// NewDocsRouter creates a documentation router whose page loads the
// OpenAPI document from specURL.
func NewDocsRouter(specURL string) *DocsRouter {
	return &DocsRouter{specURL: specURL}
}

// Routes returns the chi router for documentation endpoints.
func (d *DocsRouter) Routes() chi.Router {
	router := chi.NewRouter()
	router.Get("/", d.page)
	router.Get("/openapi.json", d.spec)
	return router
}

func (d *DocsRouter) page(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_ = docsPage.Execute(w, struct{ SpecURL string }{d.specURL})
}

// spec serves the OpenAPI document with its server URL pointed at the host
// the request came in on, so "Try it out" streams from this instance.
func (d *DocsRouter) spec(w http.ResponseWriter, r *http.Request) {
	var doc map[string]any
	if err := json.Unmarshal(openapiJSON, &doc); err != nil {
		middleware.WriteError(w, r, err, nil)
		return
	}
	doc["servers"] = []map[string]string{{"url": requestBaseURL(r) + "/api/v1"}}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		middleware.WriteError(w, r, err, nil)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(data)
}

func requestBaseURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := firstHeaderValue(r.Header.Get("X-Forwarded-Proto")); proto != "" {
		scheme = proto
	}
	host := r.Host
	if fwd := firstHeaderValue(r.Header.Get("X-Forwarded-Host")); fwd != "" {
		host = fwd
	}
	return scheme + "://" + host
}

func firstHeaderValue(v string) string {
	first, _, _ := strings.Cut(v, ",")
	return strings.TrimSpace(first)
}
