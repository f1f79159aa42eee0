package cache

import (
	"errors"
	"testing"
)

func TestGetOrComputeRetriesFailure(t *testing.T) {
	c := New[string, int]()
	calls := 0
	factory := func() (int, error) {
		calls++
		if calls == 1 {
			return 0, errors.New("not ready")
		}
		return 42, nil
	}

	if _, err := c.GetOrCompute("generator", factory); err == nil {
		t.Fatalf("first GetOrCompute() error = nil, want failure")
	}
	if _, ok := c.Peek("generator"); ok {
		t.Fatalf("failed computation was cached")
	}
	v, err := c.GetOrCompute("generator", factory)
	if err != nil {
		t.Fatalf("second GetOrCompute() error = %v", err)
	}
	if v != 42 {
		t.Errorf("second GetOrCompute() = %d, want 42", v)
	}
	v, err = c.GetOrCompute("generator", factory)
	if err != nil || v != 42 {
		t.Errorf("third GetOrCompute() = %d, %v, want 42", v, err)
	}
	if calls != 2 {
		t.Errorf("factory called %d times, want 2", calls)
	}
}

func TestKeysAreIndependent(t *testing.T) {
	c := New[string, string]()
	for _, k := range []string{"a", "b", "a", "c", "b"} {
		k := k
		v, err := c.GetOrCompute(k, func() (string, error) { return k + k, nil })
		if err != nil {
			t.Fatalf("GetOrCompute(%q) error = %v", k, err)
		}
		if v != k+k {
			t.Errorf("GetOrCompute(%q) = %q", k, v)
		}
	}
	if c.Len() != 3 {
		t.Errorf("Len() = %d, want 3", c.Len())
	}
}
