package postman

// Wire types for the collection service. An Item is either a folder
// (Items non-nil) or a request template (Request non-nil); the service
// uses the same node type for both.

// KV is one ordered key-value pair. Query strings and headers keep their
// order and may repeat keys, so they are slices, never maps.
type KV struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// URL is the parsed request URL.
type URL struct {
	Raw      string   `json:"raw"`
	Protocol string   `json:"protocol,omitempty"`
	Host     []string `json:"host,omitempty"`
	Path     []string `json:"path,omitempty"`
	Query    []KV     `json:"query,omitempty"`
}

// BodyOptions selects the body language for the service UI.
type BodyOptions struct {
	Raw struct {
		Language string `json:"language"`
	} `json:"raw"`
}

// Body is a raw request body.
type Body struct {
	Mode    string       `json:"mode"`
	Raw     string       `json:"raw"`
	Options *BodyOptions `json:"options,omitempty"`
}

// NewJSONBody wraps serialized JSON as a raw body.
func NewJSONBody(raw string) *Body {
	b := &Body{Mode: "raw", Raw: raw, Options: &BodyOptions{}}
	b.Options.Raw.Language = "json"
	return b
}

// Request is one request template.
type Request struct {
	Method      string `json:"method"`
	Header      []KV   `json:"header,omitempty"`
	URL         URL    `json:"url"`
	Body        *Body  `json:"body,omitempty"`
	Description string `json:"description,omitempty"`
}

// Item is one node of the collection tree.
type Item struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Items       []Item   `json:"item,omitempty"`
	Request     *Request `json:"request,omitempty"`
}

// IsFolder reports whether the item is a folder rather than a request.
func (i Item) IsFolder() bool {
	return i.Request == nil
}

// Info is the collection metadata block.
type Info struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Schema      string `json:"schema,omitempty"`
}

// CollectionSchema identifies the collection format version to the service.
const CollectionSchema = "https://schema.getpostman.com/json/collection/v2.1.0/collection.json"

// Collection is the full remote tree: metadata plus top-level items.
type Collection struct {
	Info     Info   `json:"info"`
	Items    []Item `json:"item"`
	Variable []KV   `json:"variable,omitempty"`
}

// Envelope wraps a collection the way the service's GET and PUT bodies do.
type Envelope struct {
	Collection Collection `json:"collection"`
}

// EnvironmentValue is one variable of a remote environment.
type EnvironmentValue struct {
	Key         string `json:"key"`
	Value       string `json:"value"`
	Enabled     bool   `json:"enabled"`
	Description string `json:"description,omitempty"`
}

// Environment is a remote variable set scoped to one site.
type Environment struct {
	Name   string             `json:"name"`
	Values []EnvironmentValue `json:"values"`
}

// EnvironmentEnvelope wraps an environment for create calls.
type EnvironmentEnvelope struct {
	Environment Environment `json:"environment"`
}

// Workspace is the subset of workspace metadata the client reads.
type Workspace struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
}
