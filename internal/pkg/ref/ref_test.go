package ref

import (
	"strings"
	"sync"
	"testing"
)

func TestNewFormat(t *testing.T) {
	r := New(PrefixCustomer)
	if !strings.HasPrefix(r, "CUS-") {
		t.Errorf("expected CUS- prefix, got %s", r)
	}
	// ULID is always 26 characters
	if len(r) != len("CUS-")+26 {
		t.Errorf("unexpected reference length: %s", r)
	}
}

func TestInvoiceFormat(t *testing.T) {
	r := Invoice("REG")
	if !strings.HasPrefix(r, "INV-REG-") {
		t.Errorf("expected INV-REG- prefix, got %s", r)
	}
}

func TestNoCollisionsUnderConcurrency(t *testing.T) {
	const perWorker = 200
	const workers = 8

	var mu sync.Mutex
	seen := make(map[string]bool, perWorker*workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				r := Invoice("PLN")
				mu.Lock()
				if seen[r] {
					t.Errorf("duplicate reference generated: %s", r)
				}
				seen[r] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if len(seen) != perWorker*workers {
		t.Errorf("expected %d unique references, got %d", perWorker*workers, len(seen))
	}
}
