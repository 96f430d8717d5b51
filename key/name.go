package key

import (
	"crypto/sha256"
	"encoding/hex"
	"reflect"
	"sort"
	"strconv"
	"strings"
)

// NamePolicy controls how readable artifact names are derived.
type NamePolicy struct {
	// MaxLength is the maximum name length. Names that would exceed it are
	// truncated and given a hash tail. Default: 128.
	MaxLength int

	// HashLength is the number of hash characters appended to truncated
	// names and to composite argument values. Default: 8.
	HashLength int

	// Separator joins the factory id and argument tokens. Must be ASCII so
	// truncation can slice at byte boundaries. Default: "_".
	Separator string
}

// DefaultNamePolicy returns the default naming policy.
func DefaultNamePolicy() NamePolicy {
	return NamePolicy{
		MaxLength:  128,
		HashLength: 8,
		Separator:  "_",
	}
}

func (p NamePolicy) withDefaults() NamePolicy {
	d := DefaultNamePolicy()
	if p.HashLength <= 0 || p.HashLength > 64 {
		p.HashLength = d.HashLength
	}
	if p.Separator == "" {
		p.Separator = d.Separator
	}
	// MaxLength must leave room for at least one head character plus the
	// separator and hash tail, or truncation cannot honor it.
	if p.MaxLength <= p.HashLength+len(p.Separator) {
		p.MaxLength = d.MaxLength
	}
	return p
}

// name derives the readable cache name for a binding whose full canonical
// hash is already known.
// Format: <factoryID>_<param><value>_... sorted by parameter name, e.g.
// "straight_length10_width1p5". Composite values render as short hashes.
func (p NamePolicy) name(factoryID string, args Args, hash string) (string, error) {
	p = p.withDefaults()

	names := make([]string, 0, len(args))
	for n := range args {
		names = append(names, n)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString(factoryID)
	for _, n := range names {
		token, err := p.valueToken(args[n])
		if err != nil {
			return "", err
		}
		b.WriteString(p.Separator)
		b.WriteString(sanitizeToken(n))
		b.WriteString(token)
	}

	name := b.String()
	if len(name) > p.MaxLength {
		// All name bytes are ASCII (factory ids are validated, tokens are
		// sanitized), so slicing cannot split a rune. A factory id longer
		// than the head is truncated with everything else.
		head := p.MaxLength - p.HashLength - len(p.Separator)
		name = name[:head] + p.Separator + hash[:p.HashLength]
	}
	return name, nil
}

// valueToken renders one argument value for use inside a name.
// Scalars render literally; composites collapse to a short canonical hash.
func (p NamePolicy) valueToken(v any) (string, error) {
	rv := reflect.ValueOf(v)
	for rv.IsValid() && (rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface) {
		if rv.IsNil() {
			rv = reflect.Value{}
			break
		}
		rv = rv.Elem()
	}
	if !rv.IsValid() {
		return "nil", nil
	}

	switch rv.Kind() {
	case reflect.Bool:
		return strconv.FormatBool(rv.Bool()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return sanitizeToken(strconv.FormatInt(rv.Int(), 10)), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(rv.Uint(), 10), nil
	case reflect.Float32, reflect.Float64:
		canonical, err := Canonicalize(rv.Interface())
		if err != nil {
			return "", err
		}
		return sanitizeToken(string(canonical)), nil
	case reflect.String:
		return sanitizeToken(rv.String()), nil
	default:
		// Composite value: hash its canonical form so the name stays short
		// while remaining deterministic.
		h, err := canonicalHash(rv.Interface())
		if err != nil {
			return "", err
		}
		return h[:p.HashLength], nil
	}
}

// canonicalHash returns the hex SHA-256 of a single value's canonical form.
func canonicalHash(v any) (string, error) {
	canonical, err := Canonicalize(v)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:]), nil
}

// sanitizeToken maps a raw token into name-safe characters.
// Decimal points become "p" and minus signs "m" so numeric values stay
// readable ("1.5" -> "1p5", "-2" -> "m2"); anything else non-alphanumeric
// is dropped.
func sanitizeToken(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.':
			b.WriteByte('p')
		case r == '-':
			b.WriteByte('m')
		}
	}
	if b.Len() == 0 {
		return "x"
	}
	return b.String()
}
