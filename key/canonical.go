package key

import (
	"fmt"
	"math"
	"reflect"
	"sort"
	"strconv"
)

// Canonicalizer lets a custom argument type define its own canonical form.
// Types that implement it are serialized as the returned string; the string
// must be stable across processes and invocations.
type Canonicalizer interface {
	CanonicalKey() (string, error)
}

var canonicalizerType = reflect.TypeOf((*Canonicalizer)(nil)).Elem()

// Canonicalize produces a deterministic, order-independent serialization of
// v. The form is canonical JSON: object keys sorted bytewise, floats in
// shortest round-trip notation, no insignificant whitespace.
//
// Values without a stable serialization (functions, channels, NaN/Inf,
// maps with non-string keys) fail with ErrNonDeterministicInput.
func Canonicalize(v any) ([]byte, error) {
	return appendCanonical(nil, reflect.ValueOf(v))
}

func appendCanonical(dst []byte, rv reflect.Value) ([]byte, error) {
	if !rv.IsValid() {
		return append(dst, "null"...), nil
	}

	if rv.Type().Implements(canonicalizerType) {
		if rv.Kind() == reflect.Pointer && rv.IsNil() {
			return append(dst, "null"...), nil
		}
		s, err := rv.Interface().(Canonicalizer).CanonicalKey()
		if err != nil {
			return nil, fmt.Errorf("key: canonicalize %s: %w", rv.Type(), err)
		}
		return strconv.AppendQuote(dst, s), nil
	}

	switch rv.Kind() {
	case reflect.Interface, reflect.Pointer:
		if rv.IsNil() {
			return append(dst, "null"...), nil
		}
		return appendCanonical(dst, rv.Elem())

	case reflect.Bool:
		return strconv.AppendBool(dst, rv.Bool()), nil

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.AppendInt(dst, rv.Int(), 10), nil

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.AppendUint(dst, rv.Uint(), 10), nil

	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, fmt.Errorf("key: float value %v: %w", f, ErrNonDeterministicInput)
		}
		bits := 64
		if rv.Kind() == reflect.Float32 {
			bits = 32
		}
		return strconv.AppendFloat(dst, f, 'g', -1, bits), nil

	case reflect.String:
		return strconv.AppendQuote(dst, rv.String()), nil

	case reflect.Slice, reflect.Array:
		return appendCanonicalList(dst, rv)

	case reflect.Map:
		return appendCanonicalMap(dst, rv)

	case reflect.Struct:
		return appendCanonicalStruct(dst, rv)

	default:
		// Func, Chan, Complex, UnsafePointer, Uintptr
		return nil, fmt.Errorf("key: %s value: %w", rv.Kind(), ErrNonDeterministicInput)
	}
}

func appendCanonicalList(dst []byte, rv reflect.Value) ([]byte, error) {
	if rv.Kind() == reflect.Slice && rv.IsNil() {
		return append(dst, "null"...), nil
	}
	var err error
	dst = append(dst, '[')
	for i := 0; i < rv.Len(); i++ {
		if i > 0 {
			dst = append(dst, ',')
		}
		dst, err = appendCanonical(dst, rv.Index(i))
		if err != nil {
			return nil, err
		}
	}
	return append(dst, ']'), nil
}

func appendCanonicalMap(dst []byte, rv reflect.Value) ([]byte, error) {
	if rv.Type().Key().Kind() != reflect.String {
		return nil, fmt.Errorf("key: map keyed by %s: %w", rv.Type().Key(), ErrNonDeterministicInput)
	}
	if rv.IsNil() {
		return append(dst, "null"...), nil
	}

	keys := make([]string, 0, rv.Len())
	for _, k := range rv.MapKeys() {
		keys = append(keys, k.String())
	}
	sort.Strings(keys)

	var err error
	dst = append(dst, '{')
	for i, k := range keys {
		if i > 0 {
			dst = append(dst, ',')
		}
		dst = strconv.AppendQuote(dst, k)
		dst = append(dst, ':')
		dst, err = appendCanonical(dst, rv.MapIndex(reflect.ValueOf(k).Convert(rv.Type().Key())))
		if err != nil {
			return nil, err
		}
	}
	return append(dst, '}'), nil
}

func appendCanonicalStruct(dst []byte, rv reflect.Value) ([]byte, error) {
	rt := rv.Type()

	names := make([]string, 0, rt.NumField())
	fields := make(map[string]reflect.Value, rt.NumField())
	for i := 0; i < rt.NumField(); i++ {
		f := rt.Field(i)
		if f.PkgPath != "" {
			continue // unexported
		}
		names = append(names, f.Name)
		fields[f.Name] = rv.Field(i)
	}
	sort.Strings(names)

	var err error
	dst = append(dst, '{')
	for i, name := range names {
		if i > 0 {
			dst = append(dst, ',')
		}
		dst = strconv.AppendQuote(dst, name)
		dst = append(dst, ':')
		dst, err = appendCanonical(dst, fields[name])
		if err != nil {
			return nil, err
		}
	}
	return append(dst, '}'), nil
}
