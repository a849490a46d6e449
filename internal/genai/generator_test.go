package genai

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

type stubBackend struct {
	name  string
	text  string
	err   error
	calls int
}

func (b *stubBackend) Name() string { return b.name }
func (b *stubBackend) Generate(ctx context.Context, prompt string) (string, error) {
	b.calls++
	return b.text, b.err
}

func TestSelectorNoBackendGoesStraightToFallback(t *testing.T) {
	sel := &Selector{}
	res := sel.Generate(context.Background(), Request{Count: 3, Difficulty: "entretien"})
	if res.Backend != FallbackBackend {
		t.Fatalf("backend = %q, want %q", res.Backend, FallbackBackend)
	}
	if res.Reason != FailUnavailable {
		t.Fatalf("reason = %q, want %q", res.Reason, FailUnavailable)
	}
	if len(res.Quiz.Items) != 3 {
		t.Fatalf("items = %d, want 3", len(res.Quiz.Items))
	}
}

func TestSelectorFallsBackOnInvokeError(t *testing.T) {
	b := &stubBackend{name: "gemini-2.5-flash", err: errors.New("boom")}
	sel := &Selector{Primary: b}
	res := sel.Generate(context.Background(), Request{Count: 2, Difficulty: "entretien"})
	if b.calls != 1 {
		t.Fatalf("backend invoked %d times, want 1", b.calls)
	}
	if res.Backend != FallbackBackend || res.Reason != FailInvoke {
		t.Fatalf("backend=%q reason=%q", res.Backend, res.Reason)
	}
	if res.Cause == nil {
		t.Fatal("cause not carried along the transition")
	}
}

func TestSelectorFallsBackOnUnparsableOutput(t *testing.T) {
	b := &stubBackend{name: "gemini-2.5-flash", text: "sorry, I cannot do that"}
	sel := &Selector{Primary: b}
	res := sel.Generate(context.Background(), Request{Count: 2, Difficulty: "entretien"})
	if res.Backend != FallbackBackend || res.Reason != FailExtract {
		t.Fatalf("backend=%q reason=%q", res.Backend, res.Reason)
	}
}

func TestSelectorFallsBackOnSchemaViolation(t *testing.T) {
	cases := map[string]string{
		"missing question":    `{"items":[{"choices":["a","b","c","d"],"answer_index":0}]}`,
		"missing choices":     `{"items":[{"question":"q?"}]}`,
		"too few choices":     `{"items":[{"question":"q?","choices":["a","b"]}]}`,
		"answer out of range": `{"items":[{"question":"q?","choices":["a","b","c","d"],"answer_index":7}]}`,
		"empty items":         `{"items":[]}`,
	}
	for label, text := range cases {
		b := &stubBackend{name: "gemini-2.5-flash", text: text}
		sel := &Selector{Primary: b}
		res := sel.Generate(context.Background(), Request{Count: 5, Difficulty: "entretien"})
		if res.Backend != FallbackBackend || res.Reason != FailSchema {
			t.Fatalf("%s: backend=%q reason=%q", label, res.Backend, res.Reason)
		}
		// Fallback totality: the result is still a complete, valid quiz.
		if len(res.Quiz.Items) != 5 {
			t.Fatalf("%s: items = %d, want 5", label, len(res.Quiz.Items))
		}
	}
}

func TestSelectorPrimarySuccess(t *testing.T) {
	b := &stubBackend{
		name: "gemini-2.5-flash",
		text: "Voici:\n```json\n" + `{
			"name": "Algo",
			"items": [
				{"question":"Q1 ?","choices":["a","b","c","d","e"],"answer_index":2,"skill":"go"},
				{"question":"Q2 ?","choices":["a","b","c","d"]}
			]
		}` + "\n```",
	}
	sel := &Selector{Primary: b}
	res := sel.Generate(context.Background(), Request{Count: 10, Difficulty: "entretien"})

	if res.Backend != "gemini-2.5-flash" || res.Reason != FailNone {
		t.Fatalf("backend=%q reason=%q", res.Backend, res.Reason)
	}
	if res.Quiz.Name == nil || *res.Quiz.Name != "Algo" {
		t.Fatalf("name = %v, want Algo", res.Quiz.Name)
	}
	if len(res.Quiz.Items) != 2 {
		t.Fatalf("items = %d, want 2", len(res.Quiz.Items))
	}
	it := res.Quiz.Items[0]
	if len(it.Choices) != 4 {
		t.Fatalf("extra choices not truncated: %v", it.Choices)
	}
	if it.AnswerIndex != 2 {
		t.Fatalf("answer_index = %d", it.AnswerIndex)
	}
	if it.ID == "" {
		t.Fatal("missing id not defaulted")
	}
	if res.Quiz.Items[1].AnswerIndex != 0 {
		t.Fatalf("absent answer_index should default to 0, got %d", res.Quiz.Items[1].AnswerIndex)
	}
}

func TestSelectorHonorsCountLimit(t *testing.T) {
	items := ""
	for i := 0; i < 8; i++ {
		if i > 0 {
			items += ","
		}
		items += fmt.Sprintf(`{"question":"Q%d ?","choices":["a","b","c","d"],"answer_index":0}`, i)
	}
	b := &stubBackend{name: "m", text: `{"items":[` + items + `]}`}
	sel := &Selector{Primary: b}
	res := sel.Generate(context.Background(), Request{Count: 3, Difficulty: "entretien"})
	if len(res.Quiz.Items) != 3 {
		t.Fatalf("items = %d, want 3", len(res.Quiz.Items))
	}
}

func TestSelectorBareArrayPayload(t *testing.T) {
	b := &stubBackend{name: "m",
		text: `[{"question":"Q ?","choices":["a","b","c","d"],"answer_index":1}]`}
	sel := &Selector{Primary: b}
	req := Request{Count: 5, Difficulty: "entretien"}
	name := "mon qcm"
	req.Name = &name
	res := sel.Generate(context.Background(), req)
	if res.Reason != FailNone {
		t.Fatalf("reason = %q, cause %v", res.Reason, res.Cause)
	}
	// A bare array has no name: the caller-supplied one wins.
	if res.Quiz.Name == nil || *res.Quiz.Name != "mon qcm" {
		t.Fatalf("name = %v", res.Quiz.Name)
	}
}

func TestSelectorEmptyExtractedNameFallsBackToCallerName(t *testing.T) {
	b := &stubBackend{name: "m",
		text: `{"name":"","items":[{"question":"Q ?","choices":["a","b","c","d"],"answer_index":0}]}`}
	sel := &Selector{Primary: b}
	req := Request{Count: 1, Difficulty: "entretien"}
	name := "mon qcm"
	req.Name = &name
	res := sel.Generate(context.Background(), req)
	if res.Reason != FailNone {
		t.Fatalf("reason = %q, cause %v", res.Reason, res.Cause)
	}
	if res.Quiz.Name == nil || *res.Quiz.Name != "mon qcm" {
		t.Fatalf("name = %v, want caller-supplied name", res.Quiz.Name)
	}
}

func TestFallbackSkillCycling(t *testing.T) {
	skills := []string{"s0", "s1", "s2"}
	quiz := generateFallback(Request{Skills: skills, Count: 7, Difficulty: "entretien"})
	if len(quiz.Items) != 7 {
		t.Fatalf("items = %d, want 7", len(quiz.Items))
	}
	for i, it := range quiz.Items {
		want := skills[i%3]
		if it.Skill == nil || *it.Skill != want {
			t.Fatalf("item %d skill = %v, want %q", i, it.Skill, want)
		}
		if len(it.Choices) != 4 {
			t.Fatalf("item %d has %d choices", i, len(it.Choices))
		}
		if it.AnswerIndex != 0 {
			t.Fatalf("item %d answer_index = %d", i, it.AnswerIndex)
		}
		if it.ID == "" {
			t.Fatalf("item %d missing id", i)
		}
	}
}

func TestFallbackWithoutSkills(t *testing.T) {
	quiz := generateFallback(Request{Count: 2, Difficulty: "facile"})
	for i, it := range quiz.Items {
		if it.Skill != nil {
			t.Fatalf("item %d skill = %v, want nil", i, *it.Skill)
		}
	}
}
