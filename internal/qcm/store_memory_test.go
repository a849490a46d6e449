package qcm

import (
	"context"
	"errors"
	"testing"
	"time"
)

func testRecord(id, user string, created time.Time) Record {
	name := "quiz " + id
	return Record{
		ID:     id,
		UserID: user,
		Name:   &name,
		Quiz: Quiz{Name: &name, Items: []Item{
			{ID: "i1", Question: "Q ?", Choices: []string{"a", "b", "c", "d"}, AnswerIndex: 1},
		}},
		CreatedAt: created,
	}
}

func TestMemoryStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	rec := testRecord("r1", "u1", time.Now().UTC())

	if err := s.Save(ctx, rec); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := s.Get(ctx, "r1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.UserID != "u1" || len(got.Quiz.Items) != 1 {
		t.Fatalf("got %+v", got)
	}

	if err := s.Delete(ctx, "r1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Get(ctx, "r1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get after delete: %v", err)
	}
	// Idempotent: deleting again is not an error.
	if err := s.Delete(ctx, "r1"); err != nil {
		t.Fatalf("second Delete: %v", err)
	}
}

func TestMemoryStoreHistoryOrdering(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	base := time.Now().UTC()

	for i, id := range []string{"old", "mid", "new"} {
		if err := s.Save(ctx, testRecord(id, "u1", base.Add(time.Duration(i)*time.Minute))); err != nil {
			t.Fatalf("Save %s: %v", id, err)
		}
	}
	if err := s.Save(ctx, testRecord("other", "u2", base)); err != nil {
		t.Fatalf("Save other: %v", err)
	}

	out, err := s.ListByUser(ctx, "u1")
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(out) != 3 {
		t.Fatalf("len = %d, want 3", len(out))
	}
	for i, want := range []string{"new", "mid", "old"} {
		if out[i].ID != want {
			t.Fatalf("out[%d] = %s, want %s", i, out[i].ID, want)
		}
	}
}

func TestMemoryStoreConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	done := make(chan struct{})
	for g := 0; g < 4; g++ {
		go func(g int) {
			defer func() { done <- struct{}{} }()
			for i := 0; i < 50; i++ {
				id := string(rune('a'+g)) + "-rec"
				_ = s.Save(ctx, testRecord(id, "u1", time.Now()))
				_, _ = s.Get(ctx, id)
				_, _ = s.ListByUser(ctx, "u1")
				_ = s.Delete(ctx, id)
			}
		}(g)
	}
	for g := 0; g < 4; g++ {
		<-done
	}
}
