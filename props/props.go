// Package props converts generated *Properties structs to and from the
// map[string]interface{} shape BlueZ's D-Bus methods expect for options
// arguments (RegisterApplication, StartNotify, ReadValue, ...).
package props

import (
	"strings"

	"github.com/fatih/structs"
)

// ToMap flattens a *Properties struct into a map keyed by its dbus tag name
// (falling back to the Go field name), skipping fields tagged
// "ignore"/"omitEmpty" when empty, matching the teacher's ToMap convention.
func ToMap(v interface{}) map[string]interface{} {
	s := structs.New(v)
	out := map[string]interface{}{}
	for _, f := range s.Fields() {
		if !f.IsExported() {
			continue
		}
		tag := f.Tag("dbus")
		opts := strings.Split(tag, ",")
		name := f.Name()
		skip := false
		omitEmpty := false
		for _, o := range opts {
			switch o {
			case "ignore":
				skip = true
			case "omitEmpty":
				omitEmpty = true
			case "", "writable":
			default:
				name = o
			}
		}
		if skip {
			continue
		}
		val := f.Value()
		if omitEmpty && f.IsZero() {
			continue
		}
		out[name] = val
	}
	return out
}
