// Package envvar applies environment variable overrides to config fields.
// Each setter is a no-op when name is empty or the variable is unset, and
// leaves the field unchanged when the value does not parse.
package envvar

import (
	"os"
	"strconv"
	"strings"
)

func lookup(name string) (string, bool) {
	if name == "" {
		return "", false
	}
	v := os.Getenv(name)
	return v, v != ""
}

// String overrides *field with the value of name.
func String(name string, field *string) {
	if v, ok := lookup(name); ok {
		*field = v
	}
}

// Int overrides *field with the integer value of name. Values that
// overflow T are ignored.
func Int[T ~int | ~int32 | ~int64](name string, field *T) {
	v, ok := lookup(name)
	if !ok {
		return
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || int64(T(n)) != n {
		return
	}
	*field = T(n)
}

// Bool overrides *field with the boolean value of name.
func Bool(name string, field *bool) {
	if v, ok := lookup(name); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			*field = b
		}
	}
}

// List overrides *field with the comma-separated value of name, dropping
// blank entries.
func List(name string, field *[]string) {
	v, ok := lookup(name)
	if !ok {
		return
	}
	var items []string
	for item := range strings.SplitSeq(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	*field = items
}
