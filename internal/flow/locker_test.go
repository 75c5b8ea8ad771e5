package flow

import (
	"sync"
	"testing"
)

func TestContactLockerSerializesSameKey(t *testing.T) {
	locker := NewContactLocker()
	counter := 0

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := locker.Lock("t1|5581999990000")
			defer unlock()
			counter++
		}()
	}
	wg.Wait()

	if counter != 50 {
		t.Errorf("expected 50 serialized increments, got %d", counter)
	}
}

func TestContactLockerIndependentKeys(t *testing.T) {
	locker := NewContactLocker()

	unlockA := locker.Lock("t1|a")
	// A different key must not block even while a is held.
	done := make(chan struct{})
	go func() {
		unlockB := locker.Lock("t1|b")
		unlockB()
		close(done)
	}()
	<-done
	unlockA()
}

func TestContactLockerReleasesEntries(t *testing.T) {
	locker := NewContactLocker()
	unlock := locker.Lock("t1|a")
	unlock()

	locker.mu.Lock()
	remaining := len(locker.locks)
	locker.mu.Unlock()
	if remaining != 0 {
		t.Errorf("expected lock table to be empty after release, got %d entries", remaining)
	}
}
