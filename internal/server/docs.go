package server

import (
	"encoding/json"
	"net/http"
	"path"
	"reflect"
	"strings"
	"sync"

	"github.com/danielgtaylor/huma/v2"
	"github.com/go-chi/chi/v5"
)

// security lists the schemes accepted by gated operations: a session token or the
// provider admin key.
var security = []map[string][]string{
	{"bearerAuth": {}},
	{"apiKeyAuth": {}},
}

func registerDocs(r chi.Router, basePath string) {
	page := strings.ReplaceAll(docsPage, "{{spec}}", path.Join("/", basePath, "openapi.json"))
	r.Get("/docs", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(page))
	})
}

// registerOpenAPI serves the document under the base path. It is rendered once, after
// every operation has been registered.
func registerOpenAPI(r chi.Router, api huma.API, basePath string) {
	render := sync.OnceValue(func() []byte {
		doc := api.OpenAPI()
		describeEnvelopeErrors(doc)
		describeCredentials(doc)
		out, _ := json.Marshal(doc)
		return out
	})
	r.Get(path.Join(basePath, "openapi.json"), func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write(render())
	})
}

// describeEnvelopeErrors documents the {success:false,message} body as the default
// response of each operation.
func describeEnvelopeErrors(doc *huma.OpenAPI) {
	if doc == nil || doc.Components == nil || doc.Components.Schemas == nil {
		return
	}
	schema := doc.Components.Schemas.Schema(reflect.TypeOf(apiError{}), true, "ErrorEnvelope")
	failure := &huma.Response{
		Description: "Failure envelope",
		Content:     map[string]*huma.MediaType{"application/json": {Schema: schema}},
	}
	for _, item := range doc.Paths {
		for _, op := range []*huma.Operation{item.Get, item.Post, item.Put, item.Patch, item.Delete} {
			if op == nil {
				continue
			}
			if op.Responses == nil {
				op.Responses = map[string]*huma.Response{}
			}
			op.Responses["default"] = failure
		}
	}
}

func describeCredentials(doc *huma.OpenAPI) {
	if doc == nil {
		return
	}
	if doc.Components == nil {
		doc.Components = &huma.Components{}
	}
	if doc.Components.SecuritySchemes == nil {
		doc.Components.SecuritySchemes = map[string]*huma.SecurityScheme{}
	}
	doc.Components.SecuritySchemes["bearerAuth"] = &huma.SecurityScheme{
		Type:         "http",
		Scheme:       "bearer",
		BearerFormat: "JWT",
		Description:  "access_token returned by POST /api/auth/login",
	}
	doc.Components.SecuritySchemes["apiKeyAuth"] = &huma.SecurityScheme{
		Type:        "apiKey",
		In:          "header",
		Name:        "X-Api-Key",
		Description: "provider admin key (auth.service_key)",
	}
}

const docsPage = `<!doctype html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <title>Taskboard API</title>
  <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css">
</head>
<body>
  <div id="ui"></div>
  <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js" crossorigin></script>
  <script>
    window.onload = function () {
      SwaggerUIBundle({ url: "{{spec}}", dom_id: "#ui", persistAuthorization: true });
    };
  </script>
</body>
</html>`
