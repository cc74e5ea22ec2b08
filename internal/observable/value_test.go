package observable

import (
	"sync"
	"testing"
)

func TestSetNotifiesEachObserverOnce(t *testing.T) {
	v := New([]int{})

	var a, b int
	v.Subscribe(func([]int) { a++ })
	v.Subscribe(func([]int) { b++ })

	v.Set([]int{1, 2, 3})

	if a != 1 || b != 1 {
		t.Fatalf("expected one notification each, got a=%d b=%d", a, b)
	}
	if got := v.Get(); len(got) != 3 {
		t.Fatalf("unexpected value %v", got)
	}
}

func TestUnsubscribe(t *testing.T) {
	v := New(0)
	calls := 0
	cancel := v.Subscribe(func(int) { calls++ })
	v.Set(1)
	cancel()
	cancel()
	v.Set(2)
	if calls != 1 {
		t.Fatalf("expected 1 call got %d", calls)
	}
}

func TestConcurrentUpdate(t *testing.T) {
	v := New(0)
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v.Update(func(n int) int { return n + 1 })
		}()
	}
	wg.Wait()
	if v.Get() != 100 {
		t.Fatalf("expected 100 got %d", v.Get())
	}
}
