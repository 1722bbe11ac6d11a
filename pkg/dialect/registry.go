package dialect

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/schemaforge-labs/schemaforge/pkg/schema"
)

// Dialect registry. Concrete dialects register themselves in init(), so
// importing pkg/dialects/<name> (or the pkg/dialects umbrella) is what
// makes a dialect available.
var (
	dialectsMu sync.RWMutex
	dialects   = make(map[string]*Dialect)
	aliases    = make(map[string]string)
)

// Get returns a dialect by canonical name or alias.
func Get(name string) (*Dialect, bool) {
	key := strings.ToLower(strings.TrimSpace(name))
	dialectsMu.RLock()
	defer dialectsMu.RUnlock()
	if canonical, ok := aliases[key]; ok {
		key = canonical
	}
	d, ok := dialects[key]
	return d, ok
}

// Register adds a dialect to the global registry. Called by dialect
// implementations in their init() functions. An incomplete type mapping or
// a name collision is a defect in the dialect definition itself, so both
// panic rather than return an error.
func Register(d *Dialect) {
	if err := checkComplete(d); err != nil {
		panic(fmt.Sprintf("dialect %q: %v", d.Name, err))
	}

	key := strings.ToLower(d.Name)
	dialectsMu.Lock()
	defer dialectsMu.Unlock()
	if _, exists := dialects[key]; exists {
		panic(fmt.Sprintf("dialect %q registered twice", d.Name))
	}
	dialects[key] = d
	for _, alias := range d.Aliases {
		aliases[strings.ToLower(alias)] = key
	}
}

// List returns the canonical names of all registered dialects, sorted.
func List() []string {
	dialectsMu.RLock()
	defer dialectsMu.RUnlock()
	names := make([]string, 0, len(dialects))
	for name := range dialects {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// checkComplete verifies the type mapping is total over the abstract
// vocabulary. Missing entries are build-time defects, never runtime error
// paths.
func checkComplete(d *Dialect) error {
	for _, dt := range schema.DataTypes() {
		if dt == schema.TypeEnum && d.EnumInline {
			continue
		}
		if d.Types[dt] == "" {
			return fmt.Errorf("missing type mapping for %q", dt)
		}
	}
	if d.AutoIncrement == AutoIncrementSerial && len(d.SerialTypes) == 0 {
		return fmt.Errorf("serial auto-increment style declared without serial types")
	}
	if (d.AutoIncrement == AutoIncrementKeywordAfterType || d.AutoIncrement == AutoIncrementKeywordAfterNull) && d.AutoIncrementKeyword == "" {
		return fmt.Errorf("keyword auto-increment style declared without a keyword")
	}
	if d.NowExpr == "" || d.UUIDExpr == "" {
		return fmt.Errorf("default-expression synonyms are not fully mapped")
	}
	return nil
}
