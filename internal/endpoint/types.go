package endpoint

// ParamKind says where a parameter travels in the request.
type ParamKind string

const (
	ParamPath  ParamKind = "path"
	ParamQuery ParamKind = "query"
	ParamBody  ParamKind = "body"
)

// Parameter is one named parameter of an endpoint.
type Parameter struct {
	Name        string    `json:"name"`
	Kind        ParamKind `json:"kind"`
	Description string    `json:"description"`
	Required    bool      `json:"required,omitempty"`
}

// Descriptor describes one generated REST endpoint. Immutable once built.
type Descriptor struct {
	Method      string      `json:"method"`
	Path        string      `json:"path"`
	Description string      `json:"description"`
	Parameters  []Parameter `json:"parameters,omitempty"`

	// Set for discovered custom methods only.
	IsCustomMethod bool   `json:"custom_method,omitempty"`
	MethodName     string `json:"method_name,omitempty"`
	Source         string `json:"source,omitempty"`
}
