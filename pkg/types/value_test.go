package types

import (
	"errors"
	"testing"
)

func TestValueCanonicalNormalizes(t *testing.T) {
	// Same object, different spelling: key order and whitespace differ.
	a := Value(`{"b": 1, "a": {"y": true, "x": null}}`)
	b := Value(`{"a":{"x":null,"y":true},"b":1}`)

	ca, err := a.Canonical()
	if err != nil {
		t.Fatal(err)
	}
	cb, err := b.Canonical()
	if err != nil {
		t.Fatal(err)
	}
	if ca != cb {
		t.Errorf("canonical forms differ: %q vs %q", ca, cb)
	}
}

func TestValueCanonicalPreservesNumbers(t *testing.T) {
	v := Value(`{"big": 9007199254740993, "f": 1.5}`)
	canon, err := v.Canonical()
	if err != nil {
		t.Fatal(err)
	}
	// Integers above 2^53 must not be rounded through float64.
	if canon != `{"big":9007199254740993,"f":1.5}` {
		t.Errorf("unexpected canonical form: %q", canon)
	}
}

func TestValueCanonicalRejectsMalformed(t *testing.T) {
	for _, raw := range []string{``, `{`, `not json`, `{"a":}`} {
		_, err := Value(raw).Canonical()
		if !errors.Is(err, ErrMalformedValue) {
			t.Errorf("Canonical(%q) should fail with ErrMalformedValue, got %v", raw, err)
		}
	}
}
