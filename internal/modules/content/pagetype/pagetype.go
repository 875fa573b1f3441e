// Package pagetype defines the closed set of page archetypes and, for
// each one, its typed content payload, default constructor, validator
// and repeating-list operations. Adding an archetype means adding a
// case to the dispatcher below plus its content type; everything else
// (page CRUD, preview, content ops) picks it up from there.
package pagetype

import (
	"encoding/json"

	"github.com/gwd-cms/core/internal/pkg/response"
)

// PageType identifies one page archetype.
type PageType string

const (
	Home          PageType = "home"
	AboutUs       PageType = "about-us"
	Admissions    PageType = "admissions"
	Contact       PageType = "contact"
	Programs      PageType = "programs"
	ProgramDetail PageType = "program-detail"
	Centres       PageType = "centres"
	CentreDetail  PageType = "centre-detail"
	Enquiry       PageType = "enquiry"
	Generic       PageType = "generic"
)

// All returns every archetype in declaration order.
func All() []PageType {
	return []PageType{
		Home, AboutUs, Admissions, Contact, Programs,
		ProgramDetail, Centres, CentreDetail, Enquiry, Generic,
	}
}

// Valid reports whether t is a known archetype.
func Valid(t PageType) bool {
	_, ok := For(t)
	return ok
}

// Spec bundles everything the rest of the system needs to know about
// one archetype.
type Spec struct {
	Type PageType

	// New returns the default-initialized content document. All list
	// sections start empty (but present), so defaults always validate.
	New func() map[string]interface{}

	// Validate checks a content document against the archetype shape
	// and returns per-field errors with nested paths.
	Validate func(content map[string]interface{}) []response.FieldError

	// Lists enumerates the repeating sections and their cardinality
	// bounds for the content-ops endpoint.
	Lists []ListSpec
}

// For maps an archetype to its Spec. The switch is exhaustive over the
// closed enum; unknown types return ok=false.
func For(t PageType) (Spec, bool) {
	switch t {
	case Home:
		return homeSpec, true
	case AboutUs:
		return aboutSpec, true
	case Admissions:
		return admissionsSpec, true
	case Contact:
		return contactSpec, true
	case Programs:
		return programsSpec, true
	case ProgramDetail:
		return programDetailSpec, true
	case Centres:
		return centresSpec, true
	case CentreDetail:
		return centreDetailSpec, true
	case Enquiry:
		return enquirySpec, true
	case Generic:
		return genericSpec, true
	}
	return Spec{}, false
}

// Defaults returns the default content document for t, or nil for an
// unknown archetype.
func Defaults(t PageType) map[string]interface{} {
	spec, ok := For(t)
	if !ok {
		return nil
	}
	return spec.New()
}

// toMap converts a typed content struct to its JSON document form.
func toMap(v interface{}) map[string]interface{} {
	b, err := json.Marshal(v)
	if err != nil {
		return map[string]interface{}{}
	}
	var m map[string]interface{}
	if err := json.Unmarshal(b, &m); err != nil {
		return map[string]interface{}{}
	}
	return m
}

// decode converts a JSON document back into a typed content struct.
func decode(content map[string]interface{}, out interface{}) error {
	b, err := json.Marshal(content)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, out)
}
