package key_test

import (
	"errors"
	"fmt"

	"github.com/jonwraymond/buildcache/key"
)

func ExampleNewDefaultKeyer() {
	keyer := key.NewDefaultKeyer()

	k1, _ := keyer.Key("straight", key.Args{"length": 10, "width": 1})
	fmt.Println("Name:", k1.Name)

	// Deterministic - same binding produces the same key
	k2, _ := keyer.Key("straight", key.Args{"width": 1, "length": 10})
	fmt.Println("Keys match:", k1.Name == k2.Name && k1.Hash == k2.Hash)

	// Different binding produces a different key
	k3, _ := keyer.Key("straight", key.Args{"length": 12, "width": 1})
	fmt.Println("Different args, different key:", k1.Name != k3.Name)
	// Output:
	// Name: straight_length10_width1
	// Keys match: true
	// Different args, different key: true
}

func ExampleCanonicalize() {
	// Map ordering doesn't affect the canonical form - keys are sorted
	c, _ := key.Canonicalize(map[string]any{"width": 1, "length": 10})
	fmt.Println(string(c))
	// Output:
	// {"length":10,"width":1}
}

func ExampleCanonicalize_nonDeterministic() {
	_, err := key.Canonicalize(map[string]any{"cb": func() {}})
	fmt.Println("rejected:", errors.Is(err, key.ErrNonDeterministicInput))
	// Output:
	// rejected: true
}

func ExampleNewKeyerWithPolicy() {
	keyer := key.NewKeyerWithPolicy(key.NamePolicy{MaxLength: 24, HashLength: 6})

	k, _ := keyer.Key("coupler", key.Args{"gap": 0.25, "length": 18.5, "dy": 4.8})
	fmt.Println("len <= 24:", len(k.Name) <= 24)
	// Output:
	// len <= 24: true
}
