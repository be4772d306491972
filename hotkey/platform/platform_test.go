package platform

import (
	"errors"
	"slices"
	"testing"

	"hotkeyd/hotkey"
)

func TestNewFake(t *testing.T) {
	b, err := New("fake")
	if err != nil {
		t.Fatal(err)
	}
	if b.Name() != "fake" {
		t.Fatalf("got %s backend", b.Name())
	}
}

func TestNewFromEnv(t *testing.T) {
	t.Setenv("HOTKEYD_BACKEND", "fake")
	b, err := New("")
	if err != nil {
		t.Fatal(err)
	}
	if b.Name() != "fake" {
		t.Fatalf("got %s backend", b.Name())
	}
}

func TestNewUnknown(t *testing.T) {
	if _, err := New("wayland"); !errors.Is(err, hotkey.ErrUnsupported) {
		t.Fatalf("got %v, want ErrUnsupported", err)
	}
}

func TestNames(t *testing.T) {
	names := Names()
	if !slices.Contains(names, "fake") || !slices.Contains(names, defaultBackend) {
		t.Fatalf("names = %v", names)
	}
	if !slices.IsSorted(names) {
		t.Fatalf("names not sorted: %v", names)
	}
}
