package serverstate

import "testing"

func TestMemoryStore(t *testing.T) {
	prev := UseStore(NewMemoryStore())
	defer UseStore(prev)

	if got := GetState(); got != StatusNotReady {
		t.Fatalf("initial state = %q; want %q", got, StatusNotReady)
	}
	if IsDraining() {
		t.Fatalf("initial draining = true; want false")
	}

	if !MarkReady() {
		t.Fatalf("MarkReady refused on a fresh store")
	}
	if got := GetState(); got != StatusReady {
		t.Fatalf("state after MarkReady = %q; want %q", got, StatusReady)
	}

	StartDrain()
	if got := GetState(); got != StatusDraining {
		t.Fatalf("state after StartDrain = %q; want %q", got, StatusDraining)
	}
	if !IsDraining() {
		t.Fatalf("IsDraining = false; want true")
	}

	if MarkReady() {
		t.Fatalf("MarkReady succeeded while draining")
	}
	if !IsDraining() || GetState() != StatusDraining {
		t.Fatalf("MarkReady cleared the drain")
	}
}

func TestUseStoreIgnoresNil(t *testing.T) {
	ms := NewMemoryStore()
	prev := UseStore(ms)
	defer UseStore(prev)

	if got := UseStore(nil); got != ms {
		t.Fatalf("UseStore(nil) returned %v; want current store", got)
	}
	if current() != ms {
		t.Fatalf("nil store replaced the active store")
	}
}
