// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

package output

import (
	"fmt"
	"io"
	"reflect"
	"sort"
	"strings"

	"github.com/apex/log"
)

// Tag is one attribute path discovered from a model's json struct tags. It
// is what the --schema flag prints.
type Tag struct {
	Name string
	Kind string
}

// NewTag builds a Tag from a json tag value and the holder path of the
// enclosing struct. Skipped ("-") and unnamed fields return the zero Tag.
func NewTag(h string, s string) Tag {
	name, _, _ := strings.Cut(s, ",")
	if name == "" || name == "-" {
		return Tag{}
	}
	if h != "" {
		name = h + "." + name
	}
	return Tag{Name: name}
}

// Print returns the tag as it would be passed to --attrs.
func (t Tag) Print() string {
	if t.Kind == "" {
		return t.Name
	}
	return fmt.Sprintf("%-40s %s", t.Name, t.Kind)
}

// DumpSchema writes the sorted attribute paths available for typ.
func DumpSchema(w io.Writer, typ reflect.Type) {
	for typ.Kind() == reflect.Ptr || typ.Kind() == reflect.Slice {
		typ = typ.Elem()
	}
	if typ.Kind() != reflect.Struct {
		log.Debugf("not a struct: %s", typ)
		return
	}

	tags := DumpSchemaWalker("", typ, 0)
	if len(tags) == 0 {
		log.Debugf("No tags found for type: %s", typ.Name())
		return
	}

	sort.Slice(tags, func(i, j int) bool {
		return tags[i].Name < tags[j].Name
	})

	fmt.Fprintln(w, "Schema for", typ.Name(), "--")
	for _, tag := range tags {
		fmt.Fprintln(w, tag.Print())
	}
	fmt.Fprintln(w, "")
	fmt.Fprintln(w,
		`Paths are gjson paths usable in --attrs, --filter and --sort. Use
--output=raw to see the complete payload.`)
}

const maxSchemaDepth = 2

// DumpSchemaWalker recursively walks a struct type discovering json tags.
// Slices of structs are walked with the gjson # selector.
func DumpSchemaWalker(holder string, typ reflect.Type, depth int) []Tag {
	tags := make([]Tag, 0)

	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)

		tagValue, ok := field.Tag.Lookup("json")
		if !ok {
			continue
		}

		tag := NewTag(holder, tagValue)
		if tag.Name == "" {
			continue
		}

		ft := field.Type
		if ft.Kind() == reflect.Ptr {
			ft = ft.Elem()
		}
		tag.Kind = kindName(ft)
		tags = append(tags, tag)

		if depth >= maxSchemaDepth {
			continue
		}

		switch {
		case ft.Kind() == reflect.Struct && ft.PkgPath() != "time":
			tags = append(tags, DumpSchemaWalker(tag.Name, ft, depth+1)...)
		case ft.Kind() == reflect.Slice && ft.Elem().Kind() == reflect.Struct:
			tags = append(tags, DumpSchemaWalker(tag.Name+".#", ft.Elem(), depth+1)...)
		}
	}

	return tags
}

func kindName(t reflect.Type) string {
	switch t.Kind() {
	case reflect.Struct:
		if t.PkgPath() == "time" {
			return "time"
		}
		return "object"
	case reflect.Slice:
		return "list"
	case reflect.Map:
		return "map"
	case reflect.Float32, reflect.Float64,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "number"
	default:
		return t.Kind().String()
	}
}
