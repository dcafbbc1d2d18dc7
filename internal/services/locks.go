package services

import "sync"

// keyedMutex serializes mutations per record. Every contract, listing and
// user row gets its own lock; a logical operation takes the locks of all
// rows it mutates before opening its database transaction, always in
// contract -> listing -> user order so two operations can never deadlock.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*sync.Mutex)}
}

// recordLocks is the single lock table shared by every service. A user row
// mutated by the wallet must exclude the contract manager debiting the same
// user, and a listing edit must exclude a concurrent reservation, so the
// table has to span service boundaries.
var recordLocks = newKeyedMutex()

// Lock acquires the mutex for key and returns its unlock function.
func (k *keyedMutex) Lock(key string) func() {
	k.mu.Lock()
	m, ok := k.locks[key]
	if !ok {
		m = &sync.Mutex{}
		k.locks[key] = m
	}
	k.mu.Unlock()

	m.Lock()
	return m.Unlock
}
