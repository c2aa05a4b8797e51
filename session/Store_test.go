package session

import (
	"sync"
	"testing"
	"time"

	"github.com/meetsik24/Split-Bill-Platform-Backend/model"
)

func TestGetOrCreateFresh(t *testing.T) {
	store := NewMemoryStore(0)
	sess, err := store.GetOrCreate("sess-1", "+255712345678")
	if err != nil {
		t.Fatalf("GetOrCreate failed: %v", err)
	}
	if sess.Step != model.StepAmount {
		t.Fatalf("fresh session step = %s, want %s", sess.Step, model.StepAmount)
	}
	if sess.PhoneNumber != "+255712345678" {
		t.Fatalf("phone = %s", sess.PhoneNumber)
	}
	if len(sess.MemberPhones) != 0 {
		t.Fatalf("fresh session has members: %v", sess.MemberPhones)
	}
	// not stored until Put
	count, _ := store.Count()
	if count != 0 {
		t.Fatalf("count = %d, want 0", count)
	}
}

func TestPutAndGetOrCreateRoundTrip(t *testing.T) {
	store := NewMemoryStore(0)
	sess, _ := store.GetOrCreate("sess-1", "+255712345678")
	sess.Step = model.StepMembers
	sess.Amount = 50000
	if err := store.Put("sess-1", sess); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	got, err := store.GetOrCreate("sess-1", "+255712345678")
	if err != nil {
		t.Fatalf("GetOrCreate failed: %v", err)
	}
	if got.Step != model.StepMembers || got.Amount != 50000 {
		t.Fatalf("stored state lost: %+v", got)
	}

	count, _ := store.Count()
	if count != 1 {
		t.Fatalf("count = %d, want 1", count)
	}
}

func TestPutReturnsCopies(t *testing.T) {
	store := NewMemoryStore(0)
	sess, _ := store.GetOrCreate("sess-1", "+255712345678")
	store.Put("sess-1", sess)

	first, _ := store.GetOrCreate("sess-1", "+255712345678")
	first.Amount = 999

	second, _ := store.GetOrCreate("sess-1", "+255712345678")
	if second.Amount == 999 {
		t.Fatal("mutation of a borrowed session leaked into the store")
	}
}

func TestRemoveIsIdempotent(t *testing.T) {
	store := NewMemoryStore(0)
	sess, _ := store.GetOrCreate("sess-1", "+255712345678")
	store.Put("sess-1", sess)
	if err := store.Remove("sess-1"); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if err := store.Remove("sess-1"); err != nil {
		t.Fatalf("second Remove failed: %v", err)
	}
	got, _ := store.Get("sess-1")
	if got != nil {
		t.Fatal("session still present after Remove")
	}
}

func TestClear(t *testing.T) {
	store := NewMemoryStore(0)
	for _, id := range []string{"a", "b", "c"} {
		sess, _ := store.GetOrCreate(id, "+255712345678")
		store.Put(id, sess)
	}
	if err := store.Clear(); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	count, _ := store.Count()
	if count != 0 {
		t.Fatalf("count after Clear = %d", count)
	}
}

func TestLazyExpiry(t *testing.T) {
	store := NewMemoryStore(20 * time.Millisecond)
	sess, _ := store.GetOrCreate("sess-1", "+255712345678")
	sess.Step = model.StepConfirm
	store.Put("sess-1", sess)

	time.Sleep(40 * time.Millisecond)

	got, _ := store.Get("sess-1")
	if got != nil {
		t.Fatal("expired session still visible via Get")
	}
	fresh, _ := store.GetOrCreate("sess-1", "+255712345678")
	if fresh.Step != model.StepAmount {
		t.Fatalf("expired session resumed at %s, want fresh dialogue", fresh.Step)
	}
}

func TestSweep(t *testing.T) {
	store := NewMemoryStore(10 * time.Millisecond)
	sess, _ := store.GetOrCreate("sess-1", "+255712345678")
	store.Put("sess-1", sess)
	time.Sleep(30 * time.Millisecond)
	store.sweep()

	store.mu.RLock()
	_, ok := store.sessions["sess-1"]
	store.mu.RUnlock()
	if ok {
		t.Fatal("sweep left expired session behind")
	}
}

func TestKeyLockSerializesSameKey(t *testing.T) {
	locks := NewKeyLock(8)
	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := locks.Lock("sess-1")
			defer unlock()
			counter++
		}()
	}
	wg.Wait()
	if counter != 50 {
		t.Fatalf("counter = %d, want 50", counter)
	}
}
