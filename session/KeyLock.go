package session

import (
	"hash/fnv"
	"sync"
)

// KeyLock serializes access per session id so that two concurrent turns for
// one session cannot clobber each other's write. Locks are striped by key
// hash, so unrelated sessions may occasionally share a stripe.
type KeyLock struct {
	stripes []sync.Mutex
}

func NewKeyLock(stripes int) *KeyLock {
	if stripes <= 0 {
		stripes = 64
	}
	return &KeyLock{stripes: make([]sync.Mutex, stripes)}
}

// Lock blocks until the stripe for key is held and returns the unlock func.
func (l *KeyLock) Lock(key string) func() {
	h := fnv.New32a()
	h.Write([]byte(key))
	stripe := &l.stripes[int(h.Sum32())%len(l.stripes)]
	stripe.Lock()
	return stripe.Unlock
}
