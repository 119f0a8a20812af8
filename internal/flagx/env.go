package flagx

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Env reads typed values from environment variables sharing a prefix.
// Missing or empty variables leave the destination untouched; malformed
// values are reported so the loader can fail loudly.
type Env struct {
	Prefix string
	lookup func(string) (string, bool)
}

func NewEnv(prefix string) *Env {
	return &Env{Prefix: prefix, lookup: os.LookupEnv}
}

func (e *Env) get(name string) (string, bool) {
	lookup := e.lookup
	if lookup == nil {
		lookup = os.LookupEnv
	}
	v, ok := lookup(e.Prefix + name)
	if !ok || strings.TrimSpace(v) == "" {
		return "", false
	}
	return v, true
}

func (e *Env) String(dst *string, name string) {
	if v, ok := e.get(name); ok {
		*dst = v
	}
}

func (e *Env) Int(dst *int, name string) error {
	v, ok := e.get(name)
	if !ok {
		return nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return fmt.Errorf("%s%s: %w", e.Prefix, name, err)
	}
	*dst = n
	return nil
}

func (e *Env) Bool(dst *bool, name string) error {
	v, ok := e.get(name)
	if !ok {
		return nil
	}
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		return fmt.Errorf("%s%s: %w", e.Prefix, name, err)
	}
	*dst = b
	return nil
}

func (e *Env) Duration(dst *time.Duration, name string) error {
	v, ok := e.get(name)
	if !ok {
		return nil
	}
	d, err := time.ParseDuration(strings.TrimSpace(v))
	if err != nil {
		return fmt.Errorf("%s%s: %w", e.Prefix, name, err)
	}
	*dst = d
	return nil
}
