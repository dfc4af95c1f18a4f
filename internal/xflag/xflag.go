//go:build go1.21

// Package xflag gives internal/debug a debug-only knob (the log filter
// pattern) without an explicit init function or a hand-rolled flag.Value.
package xflag

import "flag"

// Func registers a flag named name parsed by fn and returns a pointer to
// its value, allocating the storage itself so the caller doesn't need to
// declare a variable and a flag.Value implementation separately.
func Func[T any](name, usage string, fn func(string) (T, error)) *T {
	v := new(T)
	flag.Func(name, usage, func(s string) (err error) {
		*v, err = fn(s)
		return err
	})
	return v
}
