package permissions

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Definition describes one grantable action in the static permission catalog.
type Definition struct {
	Code   string
	Name   string
	Module string
}

type registry struct {
	mu          sync.RWMutex
	definitions map[string]*Definition
}

var catalog = &registry{
	definitions: make(map[string]*Definition),
}

var (
	errNilDefinition = errors.New("permission: nil definition")
	errEmptyCode     = errors.New("permission: code is required")
	errDuplicateCode = errors.New("permission: already registered")
)

// Register adds a permission definition to the static catalog.
func Register(def *Definition) error {
	if def == nil {
		return errNilDefinition
	}

	code := strings.TrimSpace(def.Code)
	if code == "" {
		return errEmptyCode
	}

	cp := *def
	cp.Code = code
	cp.Module = strings.TrimSpace(cp.Module)

	catalog.mu.Lock()
	defer catalog.mu.Unlock()

	if _, exists := catalog.definitions[code]; exists {
		return fmt.Errorf("%w: %s", errDuplicateCode, code)
	}

	catalog.definitions[code] = &cp
	return nil
}

// Get returns a copy of the definition when registered.
func Get(code string) (*Definition, bool) {
	catalog.mu.RLock()
	defer catalog.mu.RUnlock()

	def, ok := catalog.definitions[code]
	if !ok {
		return nil, false
	}
	cp := *def
	return &cp, true
}

// GetAll returns a copy of all registered definitions keyed by code.
func GetAll() map[string]*Definition {
	catalog.mu.RLock()
	defer catalog.mu.RUnlock()

	out := make(map[string]*Definition, len(catalog.definitions))
	for code, def := range catalog.definitions {
		cp := *def
		out[code] = &cp
	}
	return out
}

// GetByModule gathers definitions registered under the specified module.
func GetByModule(module string) []*Definition {
	catalog.mu.RLock()
	defer catalog.mu.RUnlock()

	module = strings.TrimSpace(module)
	var defs []*Definition
	for _, def := range catalog.definitions {
		if def.Module == module {
			cp := *def
			defs = append(defs, &cp)
		}
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].Code < defs[j].Code })
	return defs
}

// Codes returns every registered permission code in sorted order.
func Codes() []string {
	catalog.mu.RLock()
	defer catalog.mu.RUnlock()

	codes := make([]string, 0, len(catalog.definitions))
	for code := range catalog.definitions {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// MustExist panics when the code was never registered. Route wiring calls
// this once at startup so a typo in a gate fails fast instead of silently
// denying forever.
func MustExist(code string) string {
	if _, ok := Get(code); !ok {
		panic(fmt.Sprintf("permission: unknown code %q", code))
	}
	return code
}
