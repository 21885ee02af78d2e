package changeset

import "testing"

func TestHasChanges_NilExistingIsAlwaysChanged(t *testing.T) {
	if !HasChanges(nil, map[string]any{"name": "flour"}, FieldMap{"name": Field("name")}) {
		t.Fatal("expected creation path to report changed")
	}
}

func TestHasChanges_IdenticalIsUnchanged(t *testing.T) {
	existing := map[string]any{"name": "flour", "category": "dry"}
	incoming := map[string]any{"name": "flour", "category": "dry"}
	fm := FieldMap{"name": Field("name"), "category": Field("category")}
	if HasChanges(existing, incoming, fm) {
		t.Fatal("expected unchanged")
	}
}

func TestHasChanges_DifferingFieldIsChanged(t *testing.T) {
	existing := map[string]any{"name": "flour"}
	incoming := map[string]any{"name": "rye flour"}
	fm := FieldMap{"name": Field("name")}
	if !HasChanges(existing, incoming, fm) {
		t.Fatal("expected changed")
	}
}

func TestHasChanges_MissingEqualsNilButNotZero(t *testing.T) {
	existing := map[string]any{"notes": nil}
	incoming := map[string]any{}
	fm := FieldMap{"notes": Field("notes")}
	if HasChanges(existing, incoming, fm) {
		t.Fatal("expected missing incoming field to equal nil existing field")
	}

	existing2 := map[string]any{"count": 0}
	incoming2 := map[string]any{}
	fm2 := FieldMap{"count": Field("count")}
	if !HasChanges(existing2, incoming2, fm2) {
		t.Fatal("expected nil to not equal zero")
	}
}
