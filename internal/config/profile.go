// =============================================================================
// CSV to EDI Mapper - Mapping Profile
// =============================================================================
//
// A profile describes how one customer's CSV layout maps onto one template.
// The built-in profile is the Waitrose/TrueCommerce mapping; a YAML profile
// replaces any part of it.
//
// EXAMPLE PROFILE (profiles/waitrose.yaml):
//
//   name: waitrose
//   header_rules:
//     - field: CUST-ORDER
//       path: //Document/OrderHeader/CustOrder
//   line_rules:
//     - field: LINE-NO
//       path: LineNo
//   line_layout:
//     parent: //Document
//     prototype: OrderLine
//     trailer: DocTrailer
//     count_field: TotalLines
//   required_header_fields: [CUST-ORDER]
//   transformation_rules:
//     - field: LINE-PRICE
//       section: lines
//       actions:
//         - type: format_number
//           value: "2"
//   output:
//     prefix: WAITROSE
//     placeholder: UNKNOWN
//
// Sections left out of the file keep their built-in values.
//
// =============================================================================

package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/ginjaninja78/CSV-to-EDI-mapper/internal/document"
	"github.com/ginjaninja78/CSV-to-EDI-mapper/internal/mapping"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Sections a transformation rule can be scoped to.
const (
	SectionHeader = "header"
	SectionLines  = "lines"
)

// =============================================================================
// PROFILE TYPES
// =============================================================================

// Profile is a complete mapping configuration.
type Profile struct {
	// Name identifies the profile in logs.
	Name string `yaml:"name"`

	// HeaderRules map header fields onto document paths.
	HeaderRules []mapping.Rule `yaml:"header_rules" validate:"dive"`

	// LineRules map line fields onto paths inside one line subtree.
	LineRules []mapping.Rule `yaml:"line_rules" validate:"dive"`

	// LineLayout locates the repeating line group.
	LineLayout mapping.LineLayout `yaml:"line_layout"`

	// RequiredHeaderFields are checked by the structural validator.
	RequiredHeaderFields []string `yaml:"required_header_fields"`

	// TransformationRules rewrite field values before mapping.
	TransformationRules []TransformationRule `yaml:"transformation_rules" validate:"dive"`

	// Output controls the output file name.
	Output OutputSettings `yaml:"output"`
}

// OutputSettings controls output file naming.
type OutputSettings struct {
	Prefix      string `yaml:"prefix" validate:"excludesall=/\\"`
	Placeholder string `yaml:"placeholder" validate:"excludesall=/\\"`
}

// TransformationRule defines transformations for a specific field.
type TransformationRule struct {
	// Field is the CSV field to transform.
	Field string `yaml:"field" validate:"required"`

	// Section limits the rule to "header" or "lines". Empty applies to both.
	Section string `yaml:"section" validate:"omitempty,oneof=header lines"`

	// Actions are applied in order.
	Actions []TransformationAction `yaml:"actions" validate:"dive"`
}

// TransformationAction defines a single transformation action.
type TransformationAction struct {
	// Type is the transformation type (e.g., "prepend_string", "pad_zeros_to_length").
	// Keep the list in step with ApplyTransformation.
	Type string `yaml:"type" validate:"required,oneof=prepend_string append_string trim trim_left trim_right uppercase lowercase title_case replace regex_replace substring normalize_whitespace pad_zeros_to_length pad_spaces_to_length ensure_length format_number format_currency remove_leading_zeros extract_digits format_date lookup lookup_with_default if_empty_use_default if_empty_use_field"`

	// Value is the parameter for the transformation.
	Value string `yaml:"value"`

	// Find is used by replace and regex_replace.
	Find string `yaml:"find,omitempty"`

	// LookupTable is used by lookup and lookup_with_default.
	LookupTable map[string]string `yaml:"lookup_table,omitempty"`
}

// AppliesTo reports whether the rule covers the given section.
func (r TransformationRule) AppliesTo(section string) bool {
	return r.Section == "" || r.Section == section
}

// =============================================================================
// LOADING
// =============================================================================

// DefaultProfile returns the built-in Waitrose profile.
func DefaultProfile() *Profile {
	profile := &Profile{}
	applyProfileDefaults(profile)
	return profile
}

// LoadProfile reads a YAML mapping profile.
//
// PARAMETERS:
//   - filePath: The path to the profile file.
//
// RETURNS:
//   - The profile with defaults applied for every section left out.
//   - An error if the file cannot be read, parsed or validated.
func LoadProfile(filePath string) (*Profile, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read profile: %w", err)
	}

	var profile Profile
	if err := yaml.Unmarshal(data, &profile); err != nil {
		return nil, fmt.Errorf("failed to parse profile %s: %w", filePath, err)
	}

	if err := NormalizeProfile(&profile); err != nil {
		return nil, fmt.Errorf("invalid profile %s: %w", filePath, err)
	}

	return &profile, nil
}

// NormalizeProfile applies the built-in defaults to every empty section of a
// profile read from any source, then validates it.
func NormalizeProfile(profile *Profile) error {
	applyProfileDefaults(profile)
	return ValidateProfile(profile)
}

// applyProfileDefaults fills every empty section from the built-in profile.
func applyProfileDefaults(profile *Profile) {
	if profile.Name == "" {
		profile.Name = "waitrose"
	}
	if len(profile.HeaderRules) == 0 {
		profile.HeaderRules = mapping.DefaultHeaderRules()
	}
	if len(profile.LineRules) == 0 {
		profile.LineRules = mapping.DefaultLineRules()
	}
	if profile.LineLayout == (mapping.LineLayout{}) {
		profile.LineLayout = mapping.DefaultLineLayout()
	}
	if profile.RequiredHeaderFields == nil {
		profile.RequiredHeaderFields = []string{"CUST-ORDER"}
	}
	if profile.Output.Prefix == "" {
		profile.Output.Prefix = "WAITROSE"
	}
	if profile.Output.Placeholder == "" {
		profile.Output.Placeholder = "UNKNOWN"
	}
}

// ValidateProfile checks a profile's structure and every path expression.
func ValidateProfile(profile *Profile) error {
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := describe(validate.Struct(profile)); err != nil {
		return err
	}

	for _, rule := range profile.HeaderRules {
		if err := document.ValidatePath(rule.Path); err != nil {
			return fmt.Errorf("header rule %s: invalid path %q: %w", rule.Field, rule.Path, err)
		}
	}

	for _, rule := range profile.LineRules {
		if strings.HasPrefix(rule.Path, "/") {
			return fmt.Errorf("line rule %s: path %q must be relative to the line", rule.Field, rule.Path)
		}
		if err := document.ValidatePath(rule.Path); err != nil {
			return fmt.Errorf("line rule %s: invalid path %q: %w", rule.Field, rule.Path, err)
		}
	}

	layout := profile.LineLayout
	if err := document.ValidatePath(layout.Parent); err != nil {
		return fmt.Errorf("line layout: invalid parent %q: %w", layout.Parent, err)
	}
	if strings.Contains(layout.Prototype, "/") || strings.Contains(layout.Trailer, "/") {
		return fmt.Errorf("line layout: prototype and trailer must be element tags")
	}
	if layout.CountField != "" {
		if err := document.ValidatePath(layout.CountField); err != nil {
			return fmt.Errorf("line layout: invalid count field %q: %w", layout.CountField, err)
		}
	}

	return nil
}
