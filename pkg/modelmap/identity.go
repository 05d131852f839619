package modelmap

import "reflect"

// SameInstance reports whether a and b refer to the same object. Pointers,
// maps, channels, funcs and unsafe pointers compare by address; slices compare
// by backing array and length. Two nil interfaces are the same instance.
// Everything else (structs, strings, numbers held by value) is a copy, and a
// copy is never the same instance as anything, equal or not.
//
// Func values compare by code pointer, so distinct closures over the same
// literal are indistinguishable. Zero-size values may share an address, and
// distinct empty slices over the same base pointer have equal length, so both
// can report two separate instances as the same one.
func SameInstance(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	va := reflect.ValueOf(a)
	vb := reflect.ValueOf(b)
	if va.Type() != vb.Type() {
		return false
	}

	switch va.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Chan, reflect.Func, reflect.UnsafePointer:
		return va.Pointer() == vb.Pointer()
	case reflect.Slice:
		return va.Pointer() == vb.Pointer() && va.Len() == vb.Len()
	default:
		return false
	}
}
