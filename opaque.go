package laguz

import (
	"bytes"
	"context"
	"encoding/json"
	"net/url"
	"reflect"
	"regexp"
	"strings"
	"sync"
	"time"
)

// Opaque marks a value that must never be wrapped or tracked, even when its
// shape would otherwise qualify as a container.
type Opaque interface {
	LaguzOpaque()
}

// IsOpaque reports whether v is an opaque built-in: a value returned as-is
// from every read and never wrapped.
func IsOpaque(v any) bool {
	switch v.(type) {
	case nil:
		return false
	case Opaque:
		return true
	case error:
		return true
	case time.Time, *time.Time, time.Duration, *time.Location:
		return true
	case *regexp.Regexp:
		return true
	case []byte, json.RawMessage, *bytes.Buffer, *bytes.Reader, *strings.Builder, *strings.Reader:
		return true
	case *url.URL, url.Values:
		return true
	case context.Context:
		return true
	case *sync.Map, *sync.WaitGroup, *sync.Mutex, *sync.RWMutex, *sync.Once:
		return true
	}
	switch reflect.TypeOf(v).Kind() {
	case reflect.Chan, reflect.Func, reflect.UnsafePointer:
		return true
	}
	return false
}

// kind classifies values for the engine.
type kind int

const (
	kindLeaf kind = iota
	kindObject
	kindArray
	kindMap
	kindSet
)

// classify returns the container kind of v. Opaque values and nil
// containers are leaves; only the four raw shapes (and *[]any, the form an
// array takes once it lives in a tree) are containers.
func classify(v any) kind {
	if v == nil || IsOpaque(v) {
		return kindLeaf
	}
	switch c := v.(type) {
	case map[string]any:
		if c != nil {
			return kindObject
		}
	case []any:
		return kindArray
	case *[]any:
		if c != nil {
			return kindArray
		}
	case map[any]any:
		if c != nil {
			return kindMap
		}
	case map[any]struct{}:
		if c != nil {
			return kindSet
		}
	}
	return kindLeaf
}
