package adjust

// FieldUpdate overrides the description of one method on a path.
type FieldUpdate struct {
	Method         string `yaml:"method"`
	NewDescription string `yaml:"new_description"`
}

// EndpointDescription groups description overrides by path.
type EndpointDescription struct {
	Path    string        `yaml:"path"`
	Updates []FieldUpdate `yaml:"updates"`
}

// EndpointSelection lists the methods on a path that stay in the
// generated collection. An empty selection list means no filtering.
type EndpointSelection struct {
	Path    string   `yaml:"path"`
	Methods []string `yaml:"methods"`
}

// Adjustments is the on-disk adjustments document.
type Adjustments struct {
	Descriptions []EndpointDescription `yaml:"descriptions,omitempty"`
	Endpoints    []EndpointSelection   `yaml:"endpoints,omitempty"`
}
