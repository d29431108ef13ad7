package editor

import "testing"

func TestLockSetAcquireRelease(t *testing.T) {
	locks := NewLockSet()
	release, ok := locks.Acquire("a")
	if !ok {
		t.Fatalf("first acquire must succeed")
	}
	if !locks.Locked("a") {
		t.Fatalf("id not reported locked")
	}
	if _, ok := locks.Acquire("a"); ok {
		t.Fatalf("second acquire of a held id must fail")
	}
	release()
	if locks.Locked("a") {
		t.Fatalf("id still locked after release")
	}
	// release is idempotent: a second call must not free a new owner's lock
	release2, ok := locks.Acquire("a")
	if !ok {
		t.Fatalf("reacquire after release must succeed")
	}
	release()
	if !locks.Locked("a") {
		t.Fatalf("stale release freed the new owner's lock")
	}
	release2()
}

func TestLockSetIsPerID(t *testing.T) {
	locks := NewLockSet()
	if _, ok := locks.Acquire("a"); !ok {
		t.Fatalf("acquire a")
	}
	if _, ok := locks.Acquire("b"); !ok {
		t.Fatalf("locking a must not affect b")
	}
	if locks.Len() != 2 {
		t.Fatalf("expected 2 held locks, got %d", locks.Len())
	}
}
