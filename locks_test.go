package goCred

import (
	"sync"
	"testing"
)

func TestLockTableSerializesSameKey(t *testing.T) {
	var table lockTable

	const workers = 8
	const perWorker = 500
	counter := 0

	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				unlock := table.lock("alice")
				counter++
				unlock()
			}
		}()
	}
	wg.Wait()

	if counter != workers*perWorker {
		t.Fatalf("expected %d, got %d", workers*perWorker, counter)
	}
	if table.size() != 0 {
		t.Fatalf("expected empty table, got %d", table.size())
	}
}

func TestLockTableIndependentKeys(t *testing.T) {
	var table lockTable

	unlockA := table.lock("alice")
	defer unlockA()

	done := make(chan struct{})
	go func() {
		table.lock("bob")()
		close(done)
	}()
	<-done

	if table.size() != 1 {
		t.Fatalf("expected only alice held, got %d", table.size())
	}
}
