package shardmap

import (
	"strconv"
	"sync"
	"testing"
)

func TestMap_GetSetDelete(t *testing.T) {
	// Arrange
	m := New[int](4)

	// Act
	m.Set("a", 1)
	m.Set("b", 2)
	m.Delete("b")

	// Assert
	if v, ok := m.Get("a"); !ok || v != 1 {
		t.Fatalf("Get(a) = %d,%v want 1,true", v, ok)
	}
	if _, ok := m.Get("b"); ok {
		t.Fatalf("Get(b) found a deleted key")
	}
	if m.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", m.Len())
	}
}

func TestMap_SetIfAbsent(t *testing.T) {
	m := New[string](0)

	if !m.SetIfAbsent("k", "first") {
		t.Fatalf("first SetIfAbsent should succeed")
	}
	if m.SetIfAbsent("k", "second") {
		t.Fatalf("second SetIfAbsent should fail")
	}
	if v, _ := m.Get("k"); v != "first" {
		t.Fatalf("Get(k) = %q, want first", v)
	}
}

func TestMap_ComputeActions(t *testing.T) {
	// Arrange
	m := New[int](2)
	m.Set("x", 10)

	// Act & Assert
	m.Compute("x", func(cur int, exists bool) (int, Action) {
		if !exists || cur != 10 {
			t.Fatalf("Compute saw %d,%v want 10,true", cur, exists)
		}
		return 99, Keep
	})
	if v, _ := m.Get("x"); v != 10 {
		t.Fatalf("Keep changed value to %d", v)
	}

	m.Compute("x", func(cur int, _ bool) (int, Action) { return cur + 1, Store })
	if v, _ := m.Get("x"); v != 11 {
		t.Fatalf("Store gave %d, want 11", v)
	}

	m.Compute("x", func(cur int, _ bool) (int, Action) { return 0, Remove })
	if _, ok := m.Get("x"); ok {
		t.Fatalf("Remove left key in place")
	}

	m.Compute("missing", func(cur int, exists bool) (int, Action) {
		if exists {
			t.Fatalf("missing key reported as existing")
		}
		return 0, Keep
	})
	if m.Len() != 0 {
		t.Fatalf("Len() = %d, want 0", m.Len())
	}
}

func TestMap_ComputeIsAtomicPerKey(t *testing.T) {
	// Arrange
	m := New[int](8)
	const workers = 64
	const perWorker = 200

	// Act
	var wg sync.WaitGroup
	for range workers {
		wg.Go(func() {
			for range perWorker {
				m.Compute("counter", func(cur int, _ bool) (int, Action) {
					return cur + 1, Store
				})
			}
		})
	}
	wg.Wait()

	// Assert
	if v, _ := m.Get("counter"); v != workers*perWorker {
		t.Fatalf("counter = %d, want %d", v, workers*perWorker)
	}
}

func TestMap_DeleteIf(t *testing.T) {
	// Arrange
	m := New[int](4)
	for i := range 20 {
		m.Set(strconv.Itoa(i), i)
	}

	// Act
	removed := m.DeleteIf(func(_ string, v int) bool { return v%2 == 0 })

	// Assert
	if removed != 10 {
		t.Fatalf("DeleteIf removed %d, want 10", removed)
	}
	if m.Len() != 10 {
		t.Fatalf("Len() = %d, want 10", m.Len())
	}
	if _, ok := m.Get("4"); ok {
		t.Fatalf("even key survived DeleteIf")
	}
}
