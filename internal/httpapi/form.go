package httpapi

import (
	"fmt"
	"net/http"
	"reflect"
	"strings"
)

// decodeForm copies form values into dst using `json` tags, so request types
// declare their field names once and accept both encodings. Only string
// fields are supported; every form-capable request here is all strings.
func decodeForm(r *http.Request, dst any) error {
	v := reflect.ValueOf(dst)
	if v.Kind() != reflect.Pointer || v.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("form decode target must be a struct pointer")
	}
	v = v.Elem()
	t := v.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() || field.Type.Kind() != reflect.String {
			continue
		}
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			continue
		}
		if value := r.PostFormValue(name); value != "" {
			v.Field(i).SetString(value)
		}
	}
	return nil
}
