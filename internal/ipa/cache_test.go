package ipa

import (
	"errors"
	"testing"
)

func TestCacheComputesOncePerKey(t *testing.T) {
	cache := NewCache()
	key := Key{Voice: "en-us", Text: "run"}

	calls := 0
	compute := func() (string, error) {
		calls++
		return "rʌn", nil
	}

	for i := 0; i < 3; i++ {
		got, err := cache.GetOrCompute(key, compute)
		if err != nil {
			t.Fatalf("GetOrCompute returned error: %v", err)
		}
		if got != "rʌn" {
			t.Fatalf("unexpected value: %q", got)
		}
	}

	if calls != 1 {
		t.Fatalf("expected compute to run once, ran %d times", calls)
	}
	if cache.Misses() != 1 || cache.Hits() != 2 || cache.Len() != 1 {
		t.Fatalf("unexpected counters: misses=%d hits=%d len=%d", cache.Misses(), cache.Hits(), cache.Len())
	}
}

func TestCacheKeysAreExactTriples(t *testing.T) {
	cache := NewCache()
	calls := 0
	compute := func() (string, error) {
		calls++
		return "x", nil
	}

	keys := []Key{
		{Voice: "en-us", Text: "run"},
		{Voice: "en-gb", Text: "run"},
		{Voice: "en-us", StripZeroWidth: true, Text: "run"},
		{Voice: "en-us", Text: "jog"},
	}
	for _, key := range keys {
		if _, err := cache.GetOrCompute(key, compute); err != nil {
			t.Fatalf("GetOrCompute returned error: %v", err)
		}
	}

	if calls != len(keys) {
		t.Fatalf("expected %d computes, got %d", len(keys), calls)
	}
}

func TestCacheDoesNotStoreFailures(t *testing.T) {
	cache := NewCache()
	key := Key{Voice: "en-us", Text: "run"}

	boom := errors.New("espeak exploded")
	if _, err := cache.GetOrCompute(key, func() (string, error) { return "", boom }); !errors.Is(err, boom) {
		t.Fatalf("expected compute error, got %v", err)
	}
	if cache.Len() != 0 {
		t.Fatal("failed compute must not populate the cache")
	}

	got, err := cache.GetOrCompute(key, func() (string, error) { return "ok", nil })
	if err != nil || got != "ok" {
		t.Fatalf("expected recovery on next compute, got %q, %v", got, err)
	}
}
