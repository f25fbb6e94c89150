package utils

import (
	"reflect"
	"strings"
)

// TrimStrings trims string and *string fields on a pointer-to-struct DTO.
// Nil pointers stay nil. Numeric fields are left untouched.
func TrimStrings(dto any) {
	v := reflect.ValueOf(dto)
	if v.Kind() != reflect.Ptr || v.IsNil() {
		return
	}
	s := v.Elem()
	if s.Kind() != reflect.Struct {
		return
	}
	for i := 0; i < s.NumField(); i++ {
		f := s.Field(i)
		if !f.CanSet() {
			continue
		}
		switch f.Kind() {
		case reflect.String:
			f.SetString(strings.TrimSpace(f.String()))
		case reflect.Ptr:
			if !f.IsNil() && f.Elem().Kind() == reflect.String {
				f.Elem().SetString(strings.TrimSpace(f.Elem().String()))
			}
		}
	}
}
