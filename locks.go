package goCred

import "sync"

// lockTable hands out one mutex per username. Entries are dropped once no
// caller holds or waits on them.
type lockTable struct {
	mu    sync.Mutex
	locks map[string]*userLock
}

type userLock struct {
	mu   sync.Mutex
	refs int
}

// lock blocks until username is free and returns the matching unlock.
func (t *lockTable) lock(username string) func() {
	t.mu.Lock()
	if t.locks == nil {
		t.locks = make(map[string]*userLock)
	}
	l, ok := t.locks[username]
	if !ok {
		l = &userLock{}
		t.locks[username] = l
	}
	l.refs++
	t.mu.Unlock()

	l.mu.Lock()

	return func() {
		l.mu.Unlock()

		t.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(t.locks, username)
		}
		t.mu.Unlock()
	}
}

func (t *lockTable) size() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.locks)
}
