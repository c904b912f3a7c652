// Package render converts endpoint descriptors into request templates for
// the collection service: a display name derived from the method and path
// shape, a parsed URL, auth headers, and a body skeleton typed from the
// record type's field schema.
package render

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/recordkit/postsync/internal/endpoint"
	"github.com/recordkit/postsync/internal/logger"
	"github.com/recordkit/postsync/internal/postman"
	"github.com/recordkit/postsync/internal/schema"
	"go.uber.org/zap"
)

// structuralKinds never appear in request bodies.
var structuralKinds = map[schema.FieldKind]struct{}{
	schema.KindSectionBreak: {},
	schema.KindColumnBreak:  {},
	schema.KindTabBreak:     {},
	schema.KindHTML:         {},
	schema.KindButton:       {},
}

// systemFieldNames are platform-managed and must not be supplied by
// clients: audit fields, workflow fields, tree-position fields, and
// credential fields.
var systemFieldNames = map[string]struct{}{
	"creation":       {},
	"modified":       {},
	"modified_by":    {},
	"owner":          {},
	"docstatus":      {},
	"idx":            {},
	"amended_from":   {},
	"creation_date":  {},
	"modified_date":  {},
	"user":           {},
	"user_type":      {},
	"last_login":     {},
	"login_after":    {},
	"logout_time":    {},
	"last_ip":        {},
	"last_login_ip":  {},
	"lft":            {},
	"rgt":            {},
	"old_parent":     {},
	"workflow_state": {},
	"api_key":        {},
	"api_secret":     {},
}

// Renderer builds request templates against a fixed site base URL.
type Renderer struct {
	baseURL string
}

// NewRenderer creates a Renderer for the given site base URL.
func NewRenderer(baseURL string) *Renderer {
	return &Renderer{baseURL: strings.TrimSuffix(baseURL, "/")}
}

// Render produces the request template for one descriptor. A nil meta is
// not an error: body templates degrade to a generic skeleton.
func (r *Renderer) Render(desc endpoint.Descriptor, recordType string, meta *schema.RecordType) postman.Item {
	req := postman.Request{
		Method: desc.Method,
		Header: []postman.KV{
			{Key: "Content-Type", Value: "application/json"},
			{Key: "Authorization", Value: "token {{api_key}}"},
		},
		URL:         r.buildURL(desc.Path),
		Body:        r.buildBody(desc, recordType, meta),
		Description: buildDescription(desc, recordType),
	}

	return postman.Item{
		Name:    ItemName(desc, recordType),
		Request: &req,
	}
}

// ItemName derives the display label from the method and path shape.
func ItemName(desc endpoint.Descriptor, recordType string) string {
	if desc.IsCustomMethod {
		name := desc.MethodName
		if name == "" {
			name = "Custom Method"
		}
		return fmt.Sprintf("%s %s", desc.Method, name)
	}

	switch {
	case strings.Contains(desc.Path, endpoint.ReportViewPath):
		return fmt.Sprintf("Advanced %s Query", recordType)
	case desc.Method == "GET" && strings.Contains(desc.Path, "{name}"):
		return fmt.Sprintf("%s by ID", recordType)
	case desc.Method == "GET":
		return fmt.Sprintf("List %s Records", recordType)
	case desc.Method == "POST":
		return fmt.Sprintf("Create %s Record", recordType)
	case desc.Method == "PUT":
		return fmt.Sprintf("Update %s Record", recordType)
	case desc.Method == "DELETE":
		return fmt.Sprintf("Delete %s Record", recordType)
	default:
		return fmt.Sprintf("%s %s Operation", desc.Method, recordType)
	}
}

func buildDescription(desc endpoint.Descriptor, recordType string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Auto-generated API for %s record type", recordType)

	if desc.IsCustomMethod {
		fmt.Fprintf(&sb, "\n\nCustom Method: %s", desc.MethodName)
		fmt.Fprintf(&sb, "\nPath: %s", desc.Path)
		if len(desc.Parameters) > 0 {
			sb.WriteString("\n\nParameters:")
			for _, p := range desc.Parameters {
				fmt.Fprintf(&sb, "\n- %s (%s): %s", p.Name, p.Kind, p.Description)
			}
		}
	}

	return sb.String()
}

// buildURL parses base URL + path into the service's URL structure,
// keeping query pairs in order. Repeated keys produce repeated entries.
func (r *Renderer) buildURL(path string) postman.URL {
	full := r.baseURL + "/" + strings.TrimPrefix(path, "/")

	parsed, err := url.Parse(full)
	if err != nil {
		// Unparseable URLs still carry the raw string.
		return postman.URL{Raw: full}
	}

	var segments []string
	for _, seg := range strings.Split(parsed.Path, "/") {
		if seg != "" {
			segments = append(segments, seg)
		}
	}

	out := postman.URL{
		Raw:      full,
		Protocol: parsed.Scheme,
		Path:     segments,
	}
	if out.Protocol == "" {
		out.Protocol = "http"
	}
	if parsed.Host != "" {
		out.Host = []string{parsed.Host}
	}
	out.Query = parseOrderedQuery(parsed.RawQuery)

	return out
}

// parseOrderedQuery decodes a query string into ordered pairs. net/url's
// Values is a map, which loses order and folds repeated keys.
func parseOrderedQuery(rawQuery string) []postman.KV {
	if rawQuery == "" {
		return nil
	}

	var pairs []postman.KV
	for _, part := range strings.Split(rawQuery, "&") {
		if part == "" {
			continue
		}
		key, value, _ := strings.Cut(part, "=")
		if decoded, err := url.QueryUnescape(key); err == nil {
			key = decoded
		}
		if decoded, err := url.QueryUnescape(value); err == nil {
			value = decoded
		}
		pairs = append(pairs, postman.KV{Key: key, Value: value})
	}
	return pairs
}

func (r *Renderer) buildBody(desc endpoint.Descriptor, recordType string, meta *schema.RecordType) *postman.Body {
	switch desc.Method {
	case "POST", "PUT", "PATCH":
	default:
		return nil
	}

	if desc.IsCustomMethod {
		raw, err := indentJSON(map[string]interface{}{
			"args":   []string{"arg1", "arg2"},
			"kwargs": map[string]string{"key": "value"},
		})
		if err != nil {
			return nil
		}
		return postman.NewJSONBody(raw)
	}

	raw, err := indentJSON(FieldTemplate(recordType, meta))
	if err != nil {
		return nil
	}
	return postman.NewJSONBody(raw)
}

// FieldTemplate builds the body skeleton for a record type: one key per
// non-excluded field with a default typed by field kind. When meta is nil
// the template degrades to a fixed generic shape instead of failing.
func FieldTemplate(recordType string, meta *schema.RecordType) *orderedMap {
	template := newOrderedMap()
	template.setString("record_type", recordType)
	template.setString("name", "")

	if meta == nil {
		logger.Warn("No schema available, using generic body template",
			zap.String("record_type", recordType))
		template.setString("field1", "")
		template.setString("field2", "")
		template.setString("field3", "")
		return template
	}

	for _, field := range meta.Fields {
		if _, structural := structuralKinds[field.Kind]; structural {
			continue
		}
		if _, system := systemFieldNames[field.Name]; system {
			continue
		}
		if field.ReadOnly {
			continue
		}
		template.set(field.Name, defaultValue(field.Kind))
	}

	return template
}

// defaultValue returns a JSON default typed by field kind.
func defaultValue(kind schema.FieldKind) json.RawMessage {
	switch kind {
	case schema.KindInt, schema.KindCheck, schema.KindDuration, schema.KindRating:
		return json.RawMessage(`0`)
	case schema.KindFloat, schema.KindCurrency, schema.KindPercent:
		return json.RawMessage(`0.0`)
	case schema.KindTable:
		return json.RawMessage(`[]`)
	case schema.KindGeolocation:
		return json.RawMessage(`{"latitude": 0.0, "longitude": 0.0}`)
	default:
		return json.RawMessage(`""`)
	}
}
