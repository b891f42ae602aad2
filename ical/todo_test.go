package ical

import (
	"testing"
	"time"
)

func TestTodoOverdue(t *testing.T) {
	todo := NewTodo()
	if todo.HasDue() {
		t.Error("fresh todo must have no due")
	}
	if todo.IsOverdue() {
		t.Error("a todo without a due date can't be overdue")
	}

	todo.SetDue(time.Now().Add(-time.Hour))
	if !todo.IsOverdue() {
		t.Error("past due must read overdue")
	}

	todo.SetDue(time.Now().Add(time.Hour))
	if todo.IsOverdue() {
		t.Error("future due must not read overdue")
	}
}

func TestTodoComplete(t *testing.T) {
	todo := NewTodo()
	if todo.IsComplete() {
		t.Error("fresh todo must not be complete")
	}
	if err := todo.SetPercent(100); err != nil {
		t.Fatal(err)
	}
	if !todo.IsComplete() {
		t.Error("percent 100 must read complete")
	}
}

func TestTodoValidation(t *testing.T) {
	todo := NewTodo()
	if err := todo.SetPercent(101); !IsKind(err, KindValidation) {
		t.Errorf("percent > 100: expected a validation error, got %v", err)
	}
	if err := todo.SetPriority(10); !IsKind(err, KindValidation) {
		t.Errorf("priority > 9: expected a validation error, got %v", err)
	}
	if err := todo.SetDuration(-time.Minute); !IsKind(err, KindValidation) {
		t.Errorf("negative duration: expected a validation error, got %v", err)
	}
}

func TestTodoBump(t *testing.T) {
	due := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	todo := NewTodo().SetDue(due)

	todo.Bump(Shift{Days: 2}, false)
	if !todo.Due().Equal(due.AddDate(0, 0, 2)) {
		t.Errorf("due not shifted: %v", todo.Due())
	}

	empty := NewTodo()
	empty.Bump(Shift{Days: 2}, false)
	if empty.HasDue() {
		t.Error("bump without force must leave an empty due alone")
	}

	before := time.Now()
	empty.Bump(Shift{Hours: 1}, true)
	if !empty.HasDue() {
		t.Fatal("forced bump must initialize the due date")
	}
	if empty.Due().Before(before) {
		t.Error("forced bump should start from the current instant")
	}
}

func TestTodoOrderingAndIdentity(t *testing.T) {
	early := NewTodo().SetDue(time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC))
	late := NewTodo().SetDue(time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC))
	if !early.Less(late) || late.Less(early) {
		t.Error("todos must order by due")
	}

	a := NewTodo().SetName("alpha")
	b := NewTodo().SetName("beta")
	if !a.Less(b) {
		t.Error("todos without due must order by name")
	}
	if a.Equal(b) {
		t.Error("distinct UIDs must not be equal")
	}
	b.SetUID(a.UID())
	if !a.Equal(b) || a.Hash() != b.Hash() {
		t.Error("equality and hash must key on the UID alone")
	}
}

func TestTodoSpan(t *testing.T) {
	due := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	todo := NewTodo().SetDue(due)

	begin, end := todo.span()
	if !begin.Equal(due) || !end.Equal(due) {
		t.Errorf("due-only span should collapse to the due instant, got [%v, %v]", begin, end)
	}

	if err := todo.SetDuration(2 * time.Hour); err != nil {
		t.Fatal(err)
	}
	begin, end = todo.span()
	if !begin.Equal(due.Add(-2*time.Hour)) || !end.Equal(due) {
		t.Errorf("span with duration: got [%v, %v]", begin, end)
	}
}

func TestTodoCloneIndependence(t *testing.T) {
	todo := NewTodo().SetName("original").SetCategories([]string{"work"})
	todo.unused.AppendLine("X-CUSTOM", "kept")

	clone := todo.Clone()
	clone.SetName("mutated")
	clone.SetCategories([]string{"home"})
	clone.unused.AppendLine("X-OTHER", "added")

	if todo.Name() != "original" {
		t.Error("mutating the clone changed the source name")
	}
	if categories := todo.Categories(); len(categories) != 1 || categories[0] != "work" {
		t.Error("mutating the clone changed the source categories")
	}
	if todo.unused.Len() != 1 {
		t.Error("the clone shares its unused container with the source")
	}
}
