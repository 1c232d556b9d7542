// Package env reads harness settings from .env files and the
// process environment.
package env

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
)

// Prefix is prepended to every harness setting name.
const Prefix = "HARNESS_"

// Loader defines the interface for environment variable lookup.
type Loader interface {
	// Load reads KEY=value pairs from a .env file.
	Load(path string) error
	// Lookup returns a variable and whether it is set. The
	// process environment takes precedence over loaded files.
	Lookup(key string) (string, bool)
	// Get retrieves a variable, or "" when unset.
	Get(key string) string
	// GetWithDefault retrieves a variable with a fallback.
	GetWithDefault(key, defaultValue string) string
	// Bool parses a boolean variable.
	Bool(key string) (value, ok bool, err error)
	// Float parses a float variable.
	Float(key string) (value float64, ok bool, err error)
}

// DefaultLoader implements Loader with .env file support.
type DefaultLoader struct {
	mu   sync.RWMutex
	vars map[string]string
}

// NewLoader creates an empty DefaultLoader.
func NewLoader() *DefaultLoader {
	return &DefaultLoader{
		vars: make(map[string]string),
	}
}

// Load reads a .env file. Blank lines and # comments are
// skipped, surrounding quotes are removed from values, and an
// optional "export " prefix is accepted.
func (l *DefaultLoader) Load(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open env file %s: %w", path, err)
	}
	defer file.Close()

	l.mu.Lock()
	defer l.mu.Unlock()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimPrefix(line, "export ")
		key, value, found := strings.Cut(line, "=")
		if !found {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.Trim(strings.TrimSpace(value), `"'`)
		l.vars[key] = value
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read env file %s: %w", path, err)
	}
	return nil
}

// Lookup returns the variable from the process environment or,
// failing that, from loaded files.
func (l *DefaultLoader) Lookup(key string) (string, bool) {
	if v, ok := os.LookupEnv(key); ok {
		return v, true
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	v, ok := l.vars[key]
	return v, ok
}

// Get retrieves a variable, or "" when unset.
func (l *DefaultLoader) Get(key string) string {
	v, _ := l.Lookup(key)
	return v
}

// GetWithDefault retrieves a variable, returning defaultValue
// when it is unset or empty.
func (l *DefaultLoader) GetWithDefault(key, defaultValue string) string {
	if v := l.Get(key); v != "" {
		return v
	}
	return defaultValue
}

// Bool parses a boolean variable. ok is false when the
// variable is unset or empty.
func (l *DefaultLoader) Bool(key string) (bool, bool, error) {
	v := l.Get(key)
	if v == "" {
		return false, false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, false, fmt.Errorf("parse %s: %w", key, err)
	}
	return b, true, nil
}

// Float parses a float variable. ok is false when the variable
// is unset or empty.
func (l *DefaultLoader) Float(key string) (float64, bool, error) {
	v := l.Get(key)
	if v == "" {
		return 0, false, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, false, fmt.Errorf("parse %s: %w", key, err)
	}
	return f, true, nil
}
