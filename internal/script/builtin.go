package script

import (
	"embed"
	"path"
	"sort"
	"strings"

	"github.com/vango-dev/reactive/internal/errors"
)

//go:embed scenarios/*.yaml
var builtinFS embed.FS

// BuiltinNames returns the names of the embedded scenarios in sorted order.
func BuiltinNames() []string {
	entries, err := builtinFS.ReadDir("scenarios")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, strings.TrimSuffix(entry.Name(), ".yaml"))
	}
	sort.Strings(names)
	return names
}

// Builtin loads an embedded scenario by name.
func Builtin(name string) (*Scenario, error) {
	file := path.Join("scenarios", name+".yaml")
	data, err := builtinFS.ReadFile(file)
	if err != nil {
		return nil, errors.New("R060").
			WithDetailf("no built-in scenario named %q", name).
			WithSuggestion("Run 'reactive demo --list' to see the available scenarios")
	}
	return Parse(data, file)
}
