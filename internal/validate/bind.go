package validate

import (
	"fmt"
	"net/url"
	"reflect"
)

// Bind copies values into the string fields of dst, which must point to a
// form struct. Fields are matched by their form tag; fields without one or
// with a non-string type are left untouched.
func Bind(values url.Values, dst any) error {
	rv := reflect.ValueOf(dst)
	if rv.Kind() != reflect.Pointer || rv.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("binding form: %T is not a pointer to a struct", dst)
	}
	rv = rv.Elem()
	rt := rv.Type()
	for i := range rt.NumField() {
		f := rt.Field(i)
		name := f.Tag.Get("form")
		if name == "" || name == "-" || f.Type.Kind() != reflect.String || !f.IsExported() {
			continue
		}
		if vs, ok := values[name]; ok && len(vs) > 0 {
			rv.Field(i).SetString(vs[0])
		}
	}
	return nil
}
