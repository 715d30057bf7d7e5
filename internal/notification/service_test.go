package notification

import (
	"fmt"
	"sync"
	"testing"
)

func TestHistoryAdvancedDedup(t *testing.T) {
	s := &Service{lastHistoryID: make(map[string]uint64)}

	if !s.historyAdvanced("user-1", 10) {
		t.Fatal("first notification should advance")
	}
	if s.historyAdvanced("user-1", 10) {
		t.Error("redelivery of the same history id should be skipped")
	}
	if s.historyAdvanced("user-1", 9) {
		t.Error("an older history id should be skipped")
	}
	if !s.historyAdvanced("user-1", 11) {
		t.Error("a newer history id should advance")
	}

	// Users are tracked independently
	if !s.historyAdvanced("user-2", 5) {
		t.Error("another user's first notification should advance")
	}
}

func TestHistoryAdvancedConcurrentDeliveries(t *testing.T) {
	s := &Service{lastHistoryID: make(map[string]uint64)}

	var wg sync.WaitGroup
	for g := 0; g < 16; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			userID := fmt.Sprintf("user-%d", g%4)
			for i := uint64(1); i <= 200; i++ {
				s.historyAdvanced(userID, i)
			}
		}(g)
	}
	wg.Wait()

	for g := 0; g < 4; g++ {
		userID := fmt.Sprintf("user-%d", g)
		if got := s.lastHistoryID[userID]; got != 200 {
			t.Errorf("%s last history id = %d, want 200", userID, got)
		}
	}
}
