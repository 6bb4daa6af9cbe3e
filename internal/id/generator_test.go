package id

import (
	"strings"
	"sync"
	"testing"
)

func TestIDs_PrefixedAndUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		r := NewRequestID()
		if !strings.HasPrefix(r, RequestPrefix) {
			t.Fatalf("request id %q missing prefix", r)
		}
		if seen[r] {
			t.Fatalf("duplicate id %q", r)
		}
		seen[r] = true
	}

	if c := NewClientID(); !strings.HasPrefix(c, ClientPrefix) {
		t.Errorf("client id %q missing prefix", c)
	}
}

func TestIDs_UniqueUnderConcurrentBurst(t *testing.T) {
	const workers, perWorker = 8, 500

	var mu sync.Mutex
	seen := make(map[string]bool, workers*perWorker)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				c := NewClientID()
				mu.Lock()
				if seen[c] {
					t.Errorf("duplicate id %q", c)
				}
				seen[c] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
}

func TestIDs_RandomSuffixLength(t *testing.T) {
	r := strings.TrimPrefix(NewRequestID(), RequestPrefix)
	if len(r) <= RandomChars {
		t.Errorf("id %q shorter than its random part", r)
	}
}
