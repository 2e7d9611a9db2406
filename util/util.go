// Package util holds small reflection helpers shared by the generated
// bindings under bluez/profile/.
package util

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/godbus/dbus"
)

// MapToStruct copies a map[string]dbus.Variant (as returned by
// Properties.GetAll) into the exported fields of the struct pointed to by
// target, matching fields by their "dbus" tag or, failing that, by name.
func MapToStruct(target interface{}, in map[string]dbus.Variant) error {
	rv := reflect.ValueOf(target)
	if rv.Kind() != reflect.Ptr || rv.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("util: MapToStruct: target must be a pointer to struct")
	}
	elem := rv.Elem()
	t := elem.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if field.PkgPath != "" {
			continue // unexported
		}
		tag := field.Tag.Get("dbus")
		if tag == "ignore" {
			continue
		}
		name := field.Name
		for _, part := range strings.Split(tag, ",") {
			if part != "" && part != "ignore" && part != "omitEmpty" && part != "writable" {
				name = part
			}
		}

		variant, ok := in[name]
		if !ok {
			continue
		}
		fv := elem.Field(i)
		if !fv.CanSet() {
			continue
		}
		setFieldFromVariant(fv, variant)
	}
	return nil
}

func setFieldFromVariant(fv reflect.Value, variant dbus.Variant) {
	val := reflect.ValueOf(variant.Value())
	if !val.IsValid() {
		return
	}
	if val.Type().AssignableTo(fv.Type()) {
		fv.Set(val)
		return
	}
	if val.Type().ConvertibleTo(fv.Type()) {
		fv.Set(val.Convert(fv.Type()))
	}
}
