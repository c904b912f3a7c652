// Package schema provides read-only access to record-type definitions:
// the field metadata the generator introspects when building endpoint
// descriptors and request-body templates.
package schema

// FieldKind enumerates the field types a record-type definition may carry.
// The values match the host platform's type names so definitions can be
// exported from it verbatim.
type FieldKind string

const (
	KindData        FieldKind = "Data"
	KindText        FieldKind = "Text"
	KindSmallText   FieldKind = "Small Text"
	KindLongText    FieldKind = "Long Text"
	KindInt         FieldKind = "Int"
	KindFloat       FieldKind = "Float"
	KindCurrency    FieldKind = "Currency"
	KindPercent     FieldKind = "Percent"
	KindCheck       FieldKind = "Check"
	KindSelect      FieldKind = "Select"
	KindLink        FieldKind = "Link"
	KindDynamicLink FieldKind = "Dynamic Link"
	KindDate        FieldKind = "Date"
	KindDatetime    FieldKind = "Datetime"
	KindTime        FieldKind = "Time"
	KindTable       FieldKind = "Table"
	KindAttach      FieldKind = "Attach"
	KindAttachImage FieldKind = "Attach Image"
	KindBarcode     FieldKind = "Barcode"
	KindCode        FieldKind = "Code"
	KindColor       FieldKind = "Color"
	KindGeolocation FieldKind = "Geolocation"
	KindDuration    FieldKind = "Duration"
	KindRating      FieldKind = "Rating"
	KindSignature   FieldKind = "Signature"
	KindPassword    FieldKind = "Password"
	KindReadOnly    FieldKind = "Read Only"

	// Structural kinds shape forms and never hold record data.
	KindSectionBreak FieldKind = "Section Break"
	KindColumnBreak  FieldKind = "Column Break"
	KindTabBreak     FieldKind = "Tab Break"
	KindHTML         FieldKind = "HTML"
	KindButton       FieldKind = "Button"
)

// FieldSchema describes one field of a record type.
type FieldSchema struct {
	Name     string    `yaml:"name" json:"name"`
	Label    string    `yaml:"label" json:"label"`
	Kind     FieldKind `yaml:"kind" json:"kind"`
	Required bool      `yaml:"required" json:"required"`
	ReadOnly bool      `yaml:"read_only" json:"read_only"`
	Hidden   bool      `yaml:"hidden" json:"hidden"`
	Options  string    `yaml:"options,omitempty" json:"options,omitempty"`
}

// RecordType is one record-type definition with its field metadata.
type RecordType struct {
	Name        string        `yaml:"name" json:"name"`
	Module      string        `yaml:"module" json:"module"`
	Description string        `yaml:"description,omitempty" json:"description,omitempty"`
	Custom      bool          `yaml:"custom" json:"custom"`
	IsChild     bool          `yaml:"is_child" json:"is_child"`
	Fields      []FieldSchema `yaml:"fields" json:"fields"`
}

// systemRecordTypes are platform-owned types that never get generated
// endpoints.
var systemRecordTypes = map[string]struct{}{
	"Record Type":     {},
	"Record Field":    {},
	"Custom Field":    {},
	"Property Setter": {},
	"Custom Perm":     {},
	"User":            {},
	"Role":            {},
	"Permission":      {},
	"Has Role":        {},
	"Communication":   {},
	"Version":         {},
	"Error Log":       {},
	"Activity Log":    {},
	"File":            {},
	"ToDo":            {},
	"Comment":         {},
	"Assignment":      {},
	"Tag":             {},
	"Tag Link":        {},
}

// IsSystemType reports whether name is a platform-owned record type.
func IsSystemType(name string) bool {
	_, ok := systemRecordTypes[name]
	return ok
}
