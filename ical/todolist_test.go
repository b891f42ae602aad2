package ical

import (
	"testing"
	"time"
)

func TestTodoListCategories(t *testing.T) {
	a := NewTodo().SetCategories([]string{"work", "urgent"})
	b := NewTodo().SetCategories([]string{"home", "work"})
	c := NewTodo()
	list := NewTodoList(a, b, c)

	categories := list.Categories()
	want := []string{"home", "urgent", "work"}
	if len(categories) != len(want) {
		t.Fatalf("got %v, want %v", categories, want)
	}
	for i, category := range want {
		if categories[i] != category {
			t.Errorf("got %v, want %v", categories, want)
			break
		}
	}
}

func TestTodoListBump(t *testing.T) {
	due := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	dated := NewTodo().SetDue(due)
	undated := NewTodo()
	list := NewTodoList(dated, undated)

	list.Bump(Shift{Days: 1}, false)
	if !dated.Due().Equal(due.AddDate(0, 0, 1)) {
		t.Errorf("dated todo not bumped: %v", dated.Due())
	}
	if undated.HasDue() {
		t.Error("undated todo bumped without force")
	}

	list.Bump(Shift{Days: 1}, true)
	if !undated.HasDue() {
		t.Error("forced bump must initialize empty dues")
	}
}

func TestTodoListRange(t *testing.T) {
	day := func(d, h int) time.Time {
		return time.Date(2024, 1, d, h, 0, 0, 0, time.UTC)
	}
	monday := NewTodo().SetDue(day(1, 10))
	tuesday := NewTodo().SetDue(day(2, 10))
	list := NewTodoList(monday, tuesday)

	matched, err := list.Between(day(1, 0), day(2, 0), ModeBoth)
	if err != nil {
		t.Fatal(err)
	}
	if len(matched) != 1 || !matched[0].Equal(monday) {
		t.Errorf("expected only the monday todo, got %d matches", len(matched))
	}

	on := list.On(day(2, 23))
	if len(on) != 1 || !on[0].Equal(tuesday) {
		t.Errorf("expected only the tuesday todo, got %d matches", len(on))
	}
}

func TestTodoListRangeSkipsDateless(t *testing.T) {
	due := time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC)
	dated := NewTodo().SetDue(due)
	undated := NewTodo().SetName("no due")
	list := NewTodoList(dated, undated)

	for _, mode := range []RangeMode{ModeBegin, ModeEnd, ModeBoth, ModeAny} {
		matched, err := list.Between(time.Time{}, due.AddDate(0, 0, 1), mode)
		if err != nil {
			t.Fatal(err)
		}
		if len(matched) != 1 || !matched[0].Equal(dated) {
			t.Errorf("mode %s: a todo without a due must never match, got %d matches", mode, len(matched))
		}
	}
}

func TestTodoListConcatDedup(t *testing.T) {
	first := NewTodo().SetUID("shared").SetName("first wins")
	second := NewTodo().SetUID("shared").SetName("second loses")
	other := NewTodo().SetName("kept")

	merged := NewTodoList(first).Concat(NewTodoList(second, other))
	if merged.Len() != 2 {
		t.Fatalf("expected 2 todos, got %d", merged.Len())
	}
	if merged.Get(0).Name() != "first wins" {
		t.Error("dedup must preserve the first occurrence's fields")
	}

	doubled := merged.Concat(merged)
	if doubled.Len() != merged.Len() {
		t.Errorf("concat of a list with itself must keep its length, got %d", doubled.Len())
	}
}

func TestTodoListCloneIndependence(t *testing.T) {
	todo := NewTodo().SetName("original")
	list := NewTodoList(todo)

	clone := list.Clone()
	clone.Get(0).SetName("mutated")
	if todo.Name() != "original" {
		t.Error("clone must own deep copies of its todos")
	}
}
