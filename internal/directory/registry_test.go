package directory

import (
	"testing"

	"github.com/duoshoumiao/bilibilisearch/internal/directory/mockbili"
	"github.com/duoshoumiao/bilibilisearch/internal/models"
)

// resetRegistry is a helper to ensure a clean state for each test run.
func resetRegistry() {
	registry = make(map[string]models.Directory)
}

func TestDirectoryRegistry(t *testing.T) {
	resetRegistry()
	Register(mockbili.New())

	t.Run("Get All Backends", func(t *testing.T) {
		all := GetAll()
		if len(all) != 1 {
			t.Fatalf("Expected 1 backend, got %d", len(all))
		}
		if all[0].ID != "mockbili" {
			t.Errorf("Expected backend ID 'mockbili', got '%s'", all[0].ID)
		}
	})

	t.Run("Get Existing Backend", func(t *testing.T) {
		d, ok := Get("mockbili")
		if !ok {
			t.Fatal("Expected to find backend 'mockbili', but it was not found")
		}
		if d.GetInfo().Name != "Mockbili" {
			t.Errorf("Expected backend name 'Mockbili', got '%s'", d.GetInfo().Name)
		}
	})

	t.Run("Get Non-existent Backend", func(t *testing.T) {
		_, ok := Get("nonexistent")
		if ok {
			t.Fatal("Expected not to find backend 'nonexistent', but it was found")
		}
	})

	t.Run("Panic on Duplicate Registration", func(t *testing.T) {
		defer func() {
			if r := recover(); r == nil {
				t.Error("Expected registration of a duplicate backend to panic, but it did not")
			}
		}()
		// This should cause a panic
		Register(mockbili.New())
	})
}
