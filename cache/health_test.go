package cache

import (
	"errors"
	"sync"
	"testing"
	"time"
)

func TestHealthCache_InitialState(t *testing.T) {
	hc := NewHealthCache(30 * time.Second)

	valid, err := hc.Get()
	if valid {
		t.Error("New cache should not be valid initially")
	}
	if err != nil {
		t.Errorf("New cache should hold no error, got %v", err)
	}
}

func TestHealthCache_Check(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	hc := NewHealthCache(30 * time.Second)
	hc.now = func() time.Time { return now }

	probes := 0
	down := errors.New("store down")
	probe := func() error {
		probes++
		return down
	}

	if err := hc.Check(probe); !errors.Is(err, down) {
		t.Fatalf("Check() = %v, want %v", err, down)
	}
	if err := hc.Check(probe); !errors.Is(err, down) {
		t.Fatalf("cached Check() = %v, want %v", err, down)
	}
	if probes != 1 {
		t.Errorf("probes within TTL = %d, want 1", probes)
	}

	now = now.Add(31 * time.Second)
	hc.Check(probe)
	if probes != 2 {
		t.Errorf("probes after TTL = %d, want 2", probes)
	}

	hc.Invalidate()
	hc.Check(probe)
	if probes != 3 {
		t.Errorf("probes after Invalidate = %d, want 3", probes)
	}
}

func TestHealthCache_ZeroTTL(t *testing.T) {
	hc := NewHealthCache(0)

	probes := 0
	for i := 0; i < 3; i++ {
		hc.Check(func() error { probes++; return nil })
	}
	if probes != 3 {
		t.Errorf("probes = %d, want 3 with caching disabled", probes)
	}
}

func TestHealthCache_ConcurrentAccess(t *testing.T) {
	hc := NewHealthCache(time.Second)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				hc.Set(nil)
			} else {
				hc.Check(func() error { return nil })
			}
		}(i)
	}
	wg.Wait()

	if valid, err := hc.Get(); !valid || err != nil {
		t.Errorf("Get() = %v, %v; want valid with no error", valid, err)
	}
}
