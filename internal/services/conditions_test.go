package services

import (
	"testing"
)

func TestParseConditions_EmptyDocument(t *testing.T) {
	for _, doc := range []string{"", "   ", "{}"} {
		set, err := ParseConditions(doc)
		if err != nil {
			t.Fatalf("ParseConditions(%q): %v", doc, err)
		}
		if len(set) != 0 {
			t.Errorf("ParseConditions(%q) = %v, want empty set", doc, set)
		}
		if !set.Matches(EventContext{"anything": "goes"}) {
			t.Errorf("empty set must match everything")
		}
	}
}

func TestParseConditions_BareValueBecomesEquals(t *testing.T) {
	set, err := ParseConditions(`{"priority": "high", "count": 3}`)
	if err != nil {
		t.Fatalf("ParseConditions: %v", err)
	}
	if set["priority"].Op != OpEquals || set["priority"].Value != "high" {
		t.Errorf("priority condition = %+v", set["priority"])
	}
	if set["count"].Op != OpEquals {
		t.Errorf("count condition = %+v", set["count"])
	}
}

func TestParseConditions_OperatorForm(t *testing.T) {
	set, err := ParseConditions(`{"title": {"operator": "contains", "value": "bug"}}`)
	if err != nil {
		t.Fatalf("ParseConditions: %v", err)
	}
	if set["title"].Op != OpContains || set["title"].Value != "bug" {
		t.Errorf("title condition = %+v", set["title"])
	}
}

func TestParseConditions_UnknownOperatorRejected(t *testing.T) {
	if _, err := ParseConditions(`{"x": {"operator": "matchesRegex", "value": ".*"}}`); err == nil {
		t.Fatal("expected error for unknown operator")
	}
}

func TestParseConditions_InvalidJSONRejected(t *testing.T) {
	if _, err := ParseConditions(`{broken`); err == nil {
		t.Fatal("expected error for invalid json")
	}
}

func TestParseConditions_ObjectWithoutOperatorFallsBackToEquals(t *testing.T) {
	// Objects that don't carry an operator key compare as whole values.
	set, err := ParseConditions(`{"meta": {"color": "red"}}`)
	if err != nil {
		t.Fatalf("ParseConditions: %v", err)
	}
	if set["meta"].Op != OpEquals {
		t.Errorf("meta condition = %+v", set["meta"])
	}
}

func TestConditionSet_Matches(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		evt  EventContext
		want bool
	}{
		{"equals string", `{"listTitle": "Done"}`, EventContext{"listTitle": "Done"}, true},
		{"equals int vs float", `{"n": 2}`, EventContext{"n": 2}, true},
		{"missing field", `{"listTitle": "Done"}`, EventContext{}, false},
		{"contains string slice", `{"labels": {"operator": "contains", "value": "urgent"}}`,
			EventContext{"labels": []string{"urgent", "backend"}}, true},
		{"contains interface slice", `{"labels": {"operator": "contains", "value": "urgent"}}`,
			EventContext{"labels": []interface{}{"urgent"}}, true},
		{"contains miss", `{"labels": {"operator": "contains", "value": "frontend"}}`,
			EventContext{"labels": []string{"urgent"}}, false},
		{"contains non-container", `{"n": {"operator": "contains", "value": 1}}`,
			EventContext{"n": 12}, false},
		{"greaterThan", `{"n": {"operator": "greaterThan", "value": 1}}`, EventContext{"n": 2}, true},
		{"greaterThan equal is no-match", `{"n": {"operator": "greaterThan", "value": 2}}`, EventContext{"n": 2}, false},
		{"greaterThan incomparable", `{"n": {"operator": "greaterThan", "value": 1}}`, EventContext{"n": "two"}, false},
		{"lessThan", `{"n": {"operator": "lessThan", "value": 5}}`, EventContext{"n": 2}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set, err := ParseConditions(tt.doc)
			if err != nil {
				t.Fatalf("ParseConditions: %v", err)
			}
			if got := set.Matches(tt.evt); got != tt.want {
				t.Errorf("Matches = %v, want %v", got, tt.want)
			}
		})
	}
}
