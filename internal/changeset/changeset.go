// Package changeset implements the field-map diffing used to decide
// whether an incoming import payload actually differs from what is
// already stored, so re-imports of untouched files are cheap (reported
// as "ignored" rather than "upserted"). Fields use the typed-nil/zero
// distinction (a *float64-style optional) to tell "not supplied" apart
// from "supplied as zero", generalised into a reusable field-map diff
// over arbitrary values instead of a single hand-written struct
// comparison.
package changeset

import "reflect"

// Projection extracts a comparable value out of an incoming payload.
// Returning (nil, false) means the field is absent from the payload
// (undefined), which compares equal to an explicit nil.
type Projection func(incoming any) (value any, present bool)

// FieldMap pairs an existing-side field name with how to pull the
// corresponding value out of the incoming payload.
type FieldMap map[string]Projection

// Field builds a Projection that reads a fixed key out of a
// map[string]any-shaped incoming payload.
func Field(key string) Projection {
	return func(incoming any) (any, bool) {
		m, ok := incoming.(map[string]any)
		if !ok {
			return nil, false
		}
		v, ok := m[key]
		return v, ok
	}
}

// HasChanges compares existing against incoming using fieldMap.
//
// existing == nil means there is nothing to compare against (the
// creation path) and always reports changed. Otherwise every mapped
// field is compared after normalising "missing" and "explicit nil" to
// the same value; a nil is never considered equal to zero, empty
// string, or false.
func HasChanges(existing map[string]any, incoming any, fieldMap FieldMap) bool {
	if existing == nil {
		return true
	}
	for existingKey, project := range fieldMap {
		existingValue := existing[existingKey]
		incomingValue, present := project(incoming)
		if !present {
			incomingValue = nil
		}
		if !equal(existingValue, incomingValue) {
			return true
		}
	}
	return false
}

// equal compares two projected field values. Fields can be slices or
// maps (e.g. a recipe's ingredient lines), which are not comparable
// with ==, so this always falls back to a deep comparison.
func equal(a, b any) bool {
	return reflect.DeepEqual(a, b)
}
