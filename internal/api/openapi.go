package api

import (
	"regexp"
	"strings"

	"github.com/JaimeStill/halalcheck/internal/config"
	"github.com/JaimeStill/halalcheck/pkg/openapi"
	"github.com/JaimeStill/halalcheck/pkg/routes"
)

var pathParam = regexp.MustCompile(`\{(\w+)(\.\.\.)?\}`)

// buildSpec describes every registered route. Each operation is tagged with
// the first path segment and declares its path parameters. Collection
// listings also declare the paging query parameters.
func buildSpec(cfg *config.Config, groups ...routes.Group) *openapi.Spec {
	spec := openapi.NewSpec(cfg.API.OpenAPI.Title, cfg.Version)
	spec.SetDescription(cfg.API.OpenAPI.Description)
	spec.AddServer(cfg.API.BasePath)

	routes.Walk(func(path string, route routes.Route) {
		docPath := pathParam.ReplaceAllString(path, "{$1}")
		if docPath == "" {
			docPath = "/"
		}

		item, ok := spec.Paths[docPath]
		if !ok {
			item = &openapi.PathItem{}
			spec.Paths[docPath] = item
		}

		op := &openapi.Operation{
			Summary:   route.Method + " " + docPath,
			Tags:      []string{tag(docPath)},
			Responses: responsesFor(route.Method),
		}
		for _, m := range pathParam.FindAllStringSubmatch(path, -1) {
			param := openapi.PathParam(m[1], m[1])
			if m[2] != "" {
				param.Schema.Format = ""
				param.Description = "blob key, may contain slashes"
			}
			op.Parameters = append(op.Parameters, param)
		}
		if route.Method == "GET" && route.Pattern == "" {
			op.Parameters = append(op.Parameters, pageParams()...)
		}
		if route.Method == "POST" || route.Method == "PUT" {
			op.RequestBody = &openapi.RequestBody{
				Content: map[string]*openapi.MediaType{
					"application/json": {Schema: &openapi.Schema{Type: "object"}},
				},
			}
		}

		switch route.Method {
		case "GET":
			item.Get = op
		case "POST":
			item.Post = op
		case "PUT":
			item.Put = op
		case "DELETE":
			item.Delete = op
		}
	}, groups...)

	return spec
}

func tag(path string) string {
	segment, _, _ := strings.Cut(strings.TrimPrefix(path, "/"), "/")
	if segment == "" {
		return "api"
	}
	return segment
}

func responsesFor(method string) map[int]*openapi.Response {
	ok := &openapi.Response{Description: "Success"}
	responses := map[int]*openapi.Response{
		200: ok,
		400: openapi.ResponseRef("BadRequest"),
		404: openapi.ResponseRef("NotFound"),
	}
	if method != "GET" {
		responses[401] = openapi.ResponseRef("Unauthorized")
		responses[403] = openapi.ResponseRef("Forbidden")
	}
	if method == "POST" || method == "PUT" {
		responses[409] = openapi.ResponseRef("Conflict")
	}
	if method == "DELETE" {
		delete(responses, 200)
		responses[204] = &openapi.Response{Description: "Deleted"}
	}
	return responses
}

func pageParams() []*openapi.Parameter {
	return []*openapi.Parameter{
		openapi.QueryParam("page", "integer", "Page number (1-indexed)", false),
		openapi.QueryParam("page_size", "integer", "Results per page", false),
		openapi.QueryParam("search", "string", "Search query", false),
		openapi.QueryParam("sort", "string", "Comma-separated sort fields, - prefix for descending", false),
	}
}
