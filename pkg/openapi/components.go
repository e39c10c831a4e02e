package openapi

// FailureSchema is the envelope every error response carries.
var FailureSchema = &Schema{
	Type: "object",
	Properties: map[string]*Schema{
		"success": {Type: "boolean", Example: false},
		"message": {Type: "string", Description: "Error message"},
	},
	Required: []string{"success", "message"},
}

// NewComponents creates Components with the shared page request schema and
// the error responses used across the API.
func NewComponents() *Components {
	return &Components{
		Schemas: map[string]*Schema{
			"Failure": FailureSchema,
			"PageRequest": {
				Type: "object",
				Properties: map[string]*Schema{
					"page":      {Type: "integer", Description: "Page number (1-indexed)", Example: 1},
					"page_size": {Type: "integer", Description: "Results per page", Example: 20},
					"search":    {Type: "string", Description: "Search query"},
					"sort":      {Type: "string", Description: "Comma-separated sort fields. Prefix with - for descending. Example: name,-status"},
				},
			},
		},
		Responses: map[string]*Response{
			"BadRequest":   failure("Invalid request"),
			"Unauthorized": failure("Missing or invalid credentials"),
			"Forbidden":    failure("Caller lacks the required role"),
			"NotFound":     failure("Resource not found"),
			"Conflict":     failure("Duplicate or state conflict"),
		},
	}
}

func failure(description string) *Response {
	return &Response{
		Description: description,
		Content: map[string]*MediaType{
			"application/json": {Schema: SchemaRef("Failure")},
		},
	}
}
