package service

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"gorm.io/datatypes"
)

// FieldClass partitions course columns into the classes the update guard
// recognises.
type FieldClass string

const (
	// FieldClassContent marks columns teachers may edit when holding
	// content-management permission.
	FieldClassContent FieldClass = "content"
	// FieldClassMetadata marks admin-only columns. Unrecognised fields fall
	// into this class, so unknown input is never teacher-writable.
	FieldClassMetadata FieldClass = "metadata"
	// FieldClassImmutable marks columns no update path may touch: creator
	// columns are written once, status only moves through publish calls.
	FieldClassImmutable FieldClass = "immutable"
)

var contentTextColumns = map[string]struct{}{
	"description":         {},
	"learning_objectives": {},
	"prerequisites":       {},
}

var contentJSONColumns = map[string]struct{}{
	"curriculum": {},
	"materials":  {},
	"resources":  {},
	"modules":    {},
	"lessons":    {},
}

var metadataColumns = map[string]struct{}{
	"title":                  {},
	"price":                  {},
	"subject":                {},
	"grade_level":            {},
	"difficulty_level":       {},
	"estimated_duration_min": {},
	"certificate_template":   {},
	"enrollment_limit":       {},
	"is_featured":            {},
	"tags":                   {},
}

var immutableColumns = map[string]struct{}{
	"id":              {},
	"status":          {},
	"published_at":    {},
	"created_by":      {},
	"created_by_role": {},
	"created_at":      {},
	"updated_at":      {},
}

// ClassifyCourseField returns the class of a single course field name.
func ClassifyCourseField(name string) FieldClass {
	normalized := strings.ToLower(strings.TrimSpace(name))
	if _, ok := immutableColumns[normalized]; ok {
		return FieldClassImmutable
	}
	if _, ok := contentTextColumns[normalized]; ok {
		return FieldClassContent
	}
	if _, ok := contentJSONColumns[normalized]; ok {
		return FieldClassContent
	}
	if _, ok := metadataColumns[normalized]; ok {
		return FieldClassMetadata
	}
	return FieldClassMetadata
}

// FieldClassification groups a payload's field names by class.
type FieldClassification struct {
	Content   []string
	Metadata  []string
	Immutable []string
}

// RestrictedFieldsError reports an update touching fields the caller may
// not write. The whole update is rejected; no field is applied.
type RestrictedFieldsError struct {
	Fields []string
}

func (e *RestrictedFieldsError) Error() string {
	return "update touches restricted fields: " + strings.Join(e.Fields, ", ")
}

// ContentFieldGuard classifies proposed course updates and normalises the
// surviving values for persistence.
type ContentFieldGuard struct {
	sanitizer *bluemonday.Policy
}

// NewContentFieldGuard constructs the guard with a strict sanitizer for
// string-valued fields.
func NewContentFieldGuard() *ContentFieldGuard {
	return &ContentFieldGuard{sanitizer: bluemonday.StrictPolicy()}
}

// Classify partitions the payload's field names. The slices come back
// sorted so rejection messages and audit entries are stable.
func (g *ContentFieldGuard) Classify(fields map[string]interface{}) FieldClassification {
	var classification FieldClassification
	for name := range fields {
		normalized := strings.ToLower(strings.TrimSpace(name))
		switch ClassifyCourseField(normalized) {
		case FieldClassContent:
			classification.Content = append(classification.Content, normalized)
		case FieldClassImmutable:
			classification.Immutable = append(classification.Immutable, normalized)
		default:
			classification.Metadata = append(classification.Metadata, normalized)
		}
	}

	sort.Strings(classification.Content)
	sort.Strings(classification.Metadata)
	sort.Strings(classification.Immutable)
	return classification
}

// NormalizeContent prepares content-column updates: text columns are
// sanitized strings, structured columns are marshalled to JSON.
func (g *ContentFieldGuard) NormalizeContent(fields map[string]interface{}, names []string) (map[string]interface{}, error) {
	updates := make(map[string]interface{}, len(names))
	for _, name := range names {
		value, ok := lookupField(fields, name)
		if !ok {
			continue
		}

		if _, isText := contentTextColumns[name]; isText {
			text, ok := value.(string)
			if !ok {
				return nil, fmt.Errorf("%w: field %q expects a string", ErrInvalidArgument, name)
			}
			updates[name] = strings.TrimSpace(g.sanitizer.Sanitize(text))
			continue
		}

		payload, err := json.Marshal(value)
		if err != nil {
			return nil, fmt.Errorf("%w: field %q is not serializable", ErrInvalidArgument, name)
		}
		updates[name] = datatypes.JSON(payload)
	}

	return updates, nil
}

// NormalizeMetadata prepares metadata-column updates for admin-tier
// callers: strings are sanitized, tags are marshalled, scalars pass through.
func (g *ContentFieldGuard) NormalizeMetadata(fields map[string]interface{}, names []string) (map[string]interface{}, error) {
	updates := make(map[string]interface{}, len(names))
	for _, name := range names {
		value, ok := lookupField(fields, name)
		if !ok {
			continue
		}
		if _, known := metadataColumns[name]; !known {
			// Unknown fields classified as metadata have no column to land in.
			continue
		}

		if name == "tags" {
			payload, err := json.Marshal(value)
			if err != nil {
				return nil, fmt.Errorf("%w: field %q is not serializable", ErrInvalidArgument, name)
			}
			updates[name] = datatypes.JSON(payload)
			continue
		}

		if text, isString := value.(string); isString {
			updates[name] = strings.TrimSpace(g.sanitizer.Sanitize(text))
			continue
		}
		updates[name] = value
	}

	return updates, nil
}

func lookupField(fields map[string]interface{}, normalized string) (interface{}, bool) {
	for name, value := range fields {
		if strings.ToLower(strings.TrimSpace(name)) == normalized {
			return value, true
		}
	}
	return nil, false
}
