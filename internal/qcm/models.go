package qcm

import (
	"fmt"
	"time"
)

// Item is one multiple-choice question. Exactly four choices, one correct
// answer indexed into them.
type Item struct {
	ID          string   `json:"id"`
	Question    string   `json:"question"`
	Choices     []string `json:"choices"`
	AnswerIndex int      `json:"answer_index"`
	Skill       *string  `json:"skill"`
	Explanation *string  `json:"explanation"`
}

// Quiz is an ordered set of items. Item order is display order.
type Quiz struct {
	Name  *string `json:"name"`
	Items []Item  `json:"items"`
}

// Record is a persisted quiz owned by the caller that saved it. Immutable
// once created, removed only by explicit deletion.
type Record struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Name      *string   `json:"name"`
	Quiz      Quiz      `json:"qcm"`
	Score     *int      `json:"score"`
	CreatedAt time.Time `json:"created_at"`
}

// Summary is a history row: the record without its embedded quiz.
type Summary struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Name      *string   `json:"name"`
	Score     *int      `json:"score"`
	CreatedAt time.Time `json:"created_at"`
}

// ValidateItem enforces the item invariants at the API boundary. Extra
// choices beyond four are truncated; anything else out of shape is rejected.
func ValidateItem(it *Item) error {
	if it.Question == "" {
		return fmt.Errorf("item %q: question required", it.ID)
	}
	if len(it.Choices) > 4 {
		it.Choices = it.Choices[:4]
	}
	if len(it.Choices) != 4 {
		return fmt.Errorf("item %q: expected 4 choices, got %d", it.ID, len(it.Choices))
	}
	if it.AnswerIndex < 0 || it.AnswerIndex >= len(it.Choices) {
		return fmt.Errorf("item %q: answer_index %d out of range", it.ID, it.AnswerIndex)
	}
	return nil
}

// ValidateQuiz applies ValidateItem to every item.
func ValidateQuiz(q *Quiz) error {
	for i := range q.Items {
		if err := ValidateItem(&q.Items[i]); err != nil {
			return err
		}
	}
	return nil
}
