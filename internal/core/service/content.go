package service

import (
	"errors"
	"reflect"
	"strings"

	"github.com/bellavista/carehome-cms/internal/core/domain"
	"github.com/bellavista/carehome-cms/internal/pkg/sanitize"
)

// Audit verbs for content changes.
const (
	actionCreate  = "create"
	actionUpdate  = "update"
	actionDelete  = "delete"
	actionRestore = "restore"
	actionBackup  = "backup"
)

// setText copies a sanitized src into dst when src was sent.
func setText(dst *string, src *string) {
	if src != nil {
		*dst = sanitize.Text(*src)
	}
}

// setList copies a sanitized list into dst when src was sent.
func setList(dst *[]string, src *[]string) {
	if src != nil {
		*dst = sanitize.Slice(*src)
	}
}

func setBool(dst *bool, src *bool) {
	if src != nil {
		*dst = *src
	}
}

func setInt(dst *int, src *int) {
	if src != nil {
		*dst = *src
	}
}

// requireText adds a field error when a create request omitted field or sent
// only whitespace and markup.
func requireText(v *domain.ValidationError, field string, src *string) {
	if src == nil || sanitize.Text(*src) == "" {
		v.Add(field, "is required")
	}
}

// changedFields lists the fields an input struct carries, keyed by JSON
// name. Nil pointers are skipped so partial updates only report what the
// caller sent.
func changedFields(in any) map[string]any {
	rv := reflect.ValueOf(in)
	if rv.Kind() == reflect.Pointer {
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil
	}

	out := make(map[string]any)
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		f := rt.Field(i)
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" || !f.IsExported() {
			continue
		}
		fv := rv.Field(i)
		switch {
		case fv.Kind() == reflect.Pointer && fv.IsNil():
			continue
		case fv.Kind() == reflect.Pointer:
			out[name] = fv.Elem().Interface()
		case !fv.IsZero():
			out[name] = fv.Interface()
		}
	}
	return out
}

// truncate cuts s to at most n runes.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func isNotFound(err error) bool {
	return errors.Is(err, domain.ErrNotFound)
}
