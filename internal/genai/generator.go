package genai

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/google/uuid"

	"github.com/balansoire/auto-qcm/internal/qcm"
)

// FallbackBackend is the backend name recorded when the deterministic
// generator served the request. Usage counters are keyed on it.
const FallbackBackend = "fallback"

// Backend produces free text from a prompt. May block for seconds, may fail.
type Backend interface {
	Name() string
	Generate(ctx context.Context, prompt string) (string, error)
}

// Request are the caller-supplied generation parameters, already clamped by
// the service layer.
type Request struct {
	Skills     []string
	Count      int
	Name       *string
	Difficulty string
}

// FailReason says why the primary path was abandoned. Empty on primary
// success.
type FailReason string

const (
	FailNone        FailReason = ""
	FailUnavailable FailReason = "backend_unavailable"
	FailInvoke      FailReason = "invoke_error"
	FailExtract     FailReason = "extract_error"
	FailSchema      FailReason = "schema_error"
)

// Result is the normalized output of either generation path.
type Result struct {
	Quiz    qcm.Quiz
	Backend string
	Reason  FailReason
	Cause   error
}

// Selector runs the two-state primary-then-fallback machine. Each state is
// tried at most once; the fallback performs no I/O and cannot fail.
type Selector struct {
	Primary Backend // nil when no backend is configured
}

func (s *Selector) Generate(ctx context.Context, req Request) Result {
	if s.Primary == nil {
		return s.fallback(req, FailUnavailable, fmt.Errorf("no generation backend configured"))
	}

	text, err := s.Primary.Generate(ctx, buildPrompt(req))
	if err != nil {
		return s.fallback(req, FailInvoke, err)
	}
	raw, err := ExtractJSON(text)
	if err != nil {
		return s.fallback(req, FailExtract, err)
	}
	quiz, err := buildQuiz(raw, req)
	if err != nil {
		return s.fallback(req, FailSchema, err)
	}
	return Result{Quiz: quiz, Backend: s.Primary.Name()}
}

func (s *Selector) fallback(req Request, reason FailReason, cause error) Result {
	log.Printf("[autoqcm] primary generation failed (%s), using fallback: %v", reason, cause)
	return Result{
		Quiz:    generateFallback(req),
		Backend: FallbackBackend,
		Reason:  reason,
		Cause:   cause,
	}
}

func buildPrompt(req Request) string {
	return fmt.Sprintf(
		"Tu génères un QCM JSON en français. Réponds UNIQUEMENT en JSON.\n"+
			"Structure attendue: {\"name\": string?, \"items\": [ { \"id\": string, \"question\": string, "+
			"\"choices\": [string,string,string,string], \"answer_index\": 0..3, \"skill\": string?, \"explanation\": string? } ] }\n"+
			"Compétences: %v. Nombre de questions: %d. Niveau de difficulté / style: %s. "+
			"Règles: une seule bonne réponse, langue FR.",
		req.Skills, req.Count, req.Difficulty)
}

// genItem is the loosely-shaped item the model returns, decoded once here.
// Internal code only ever sees qcm.Item.
type genItem struct {
	ID          string   `json:"id"`
	Question    string   `json:"question"`
	Choices     []string `json:"choices"`
	AnswerIndex *float64 `json:"answer_index"`
	Skill       *string  `json:"skill"`
	Explanation *string  `json:"explanation"`
}

type genDoc struct {
	Name  *string   `json:"name"`
	Items []genItem `json:"items"`
}

func buildQuiz(raw json.RawMessage, req Request) (qcm.Quiz, error) {
	var doc genDoc
	if len(raw) > 0 && raw[0] == '[' {
		if err := json.Unmarshal(raw, &doc.Items); err != nil {
			return qcm.Quiz{}, err
		}
	} else {
		if err := json.Unmarshal(raw, &doc); err != nil {
			return qcm.Quiz{}, err
		}
	}
	if len(doc.Items) == 0 {
		return qcm.Quiz{}, fmt.Errorf("payload has no items")
	}

	items := make([]qcm.Item, 0, req.Count)
	for _, gi := range doc.Items {
		if len(items) == req.Count {
			break
		}
		if gi.Question == "" {
			return qcm.Quiz{}, fmt.Errorf("item missing question")
		}
		if len(gi.Choices) == 0 {
			return qcm.Quiz{}, fmt.Errorf("item %q missing choices", gi.Question)
		}
		it := qcm.Item{
			ID:          gi.ID,
			Question:    gi.Question,
			Choices:     gi.Choices,
			Skill:       gi.Skill,
			Explanation: gi.Explanation,
		}
		if it.ID == "" {
			it.ID = uuid.New().String()
		}
		if len(it.Choices) > 4 {
			it.Choices = it.Choices[:4]
		}
		if gi.AnswerIndex != nil {
			it.AnswerIndex = int(*gi.AnswerIndex)
		}
		if err := qcm.ValidateItem(&it); err != nil {
			return qcm.Quiz{}, err
		}
		items = append(items, it)
	}

	// An empty extracted name counts as absent: the caller-supplied one wins.
	name := doc.Name
	if name == nil || *name == "" {
		name = req.Name
	}
	return qcm.Quiz{Name: name, Items: items}, nil
}

// generateFallback manufactures a deterministic placeholder quiz. Skills
// cycle over the items; without skills the fixed wording is used.
func generateFallback(req Request) qcm.Quiz {
	explanation := "Réponse par défaut (fallback)."
	items := make([]qcm.Item, 0, req.Count)
	for i := 0; i < req.Count; i++ {
		var skill *string
		label := "Compétence"
		if len(req.Skills) > 0 {
			s := req.Skills[i%len(req.Skills)]
			skill = &s
			label = s
		}
		expl := explanation
		items = append(items, qcm.Item{
			ID:          uuid.New().String(),
			Question:    fmt.Sprintf("[Fallback %s] Question %d sur %s ?", req.Difficulty, i+1, label),
			Choices:     []string{"Choix A", "Choix B", "Choix C", "Choix D"},
			AnswerIndex: 0,
			Skill:       skill,
			Explanation: &expl,
		})
	}
	return qcm.Quiz{Name: req.Name, Items: items}
}
