package genai

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestExtractJSONObjectWrappedInProse(t *testing.T) {
	original := map[string]any{"name": "Go basics", "items": []any{map[string]any{"question": "Q1"}}}
	inner, _ := json.Marshal(original)
	text := "Voici le QCM demandé:\n```json\n" + string(inner) + "\n```\nBonne chance !"

	raw, err := ExtractJSON(text)
	if err != nil {
		t.Fatalf("ExtractJSON: %v", err)
	}
	var got map[string]any
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("unmarshal extracted: %v", err)
	}
	if !reflect.DeepEqual(got, original) {
		t.Fatalf("round-trip mismatch: got %v want %v", got, original)
	}
}

func TestExtractJSONArrayWrappedInProse(t *testing.T) {
	text := "Sure! Here it is: [1, 2, 3] — enjoy."
	raw, err := ExtractJSON(text)
	if err != nil {
		t.Fatalf("ExtractJSON: %v", err)
	}
	var got []int
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("unmarshal extracted: %v", err)
	}
	if !reflect.DeepEqual(got, []int{1, 2, 3}) {
		t.Fatalf("got %v", got)
	}
}

func TestExtractJSONBareText(t *testing.T) {
	raw, err := ExtractJSON(`"just a string"`)
	if err != nil {
		t.Fatalf("ExtractJSON: %v", err)
	}
	var got string
	if err := json.Unmarshal(raw, &got); err != nil || got != "just a string" {
		t.Fatalf("got %q err %v", got, err)
	}
}

func TestExtractJSONObjectPreferredOverArray(t *testing.T) {
	// Both bracket kinds present: the object attempt runs first.
	text := `prefix {"a": [1,2]} suffix`
	raw, err := ExtractJSON(text)
	if err != nil {
		t.Fatalf("ExtractJSON: %v", err)
	}
	var got map[string][]int
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(got["a"]) != 2 {
		t.Fatalf("got %v", got)
	}
}

func TestExtractJSONFallsThroughBrokenObject(t *testing.T) {
	// The outermost {...} is not valid JSON, but the array is.
	text := `{broken ... [4,5,6] trailing`
	// No closing brace: object attempt is skipped, array attempt succeeds.
	raw, err := ExtractJSON(text)
	if err != nil {
		t.Fatalf("ExtractJSON: %v", err)
	}
	var got []int
	if err := json.Unmarshal(raw, &got); err != nil || len(got) != 3 {
		t.Fatalf("got %v err %v", got, err)
	}
}

func TestExtractJSONUnparsableText(t *testing.T) {
	if _, err := ExtractJSON("no json here at all"); err == nil {
		t.Fatal("expected a parse error")
	}
	if _, err := ExtractJSON("{not json} and [not json either]"); err == nil {
		t.Fatal("expected a parse error")
	}
}
