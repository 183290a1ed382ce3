package module

import (
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
)

// FSResolver resolves bare import names against a filesystem root, trying
// `<name>.lm`, `<name>.lm.md`, `<name>.lumen.md`, then `<name>/mod.lm` in
// that order.
type FSResolver struct {
	Root string
}

// Resolve implements Resolver.
func (r FSResolver) Resolve(name string) (string, bool) {
	candidates := []string{
		name + ".lm",
		name + ".lm.md",
		name + ".lumen.md",
		filepath.Join(name, "mod.lm"),
	}

	for _, rel := range candidates {
		full := filepath.Join(r.Root, rel)

		matches, err := doublestar.FilepathGlob(full)
		if err != nil || len(matches) == 0 {
			if _, statErr := os.Stat(full); statErr != nil {
				continue
			}

			matches = []string{full}
		}

		data, err := os.ReadFile(matches[0])
		if err != nil {
			continue
		}

		return string(data), true
	}

	return "", false
}

// AsResolver adapts r to the Resolver function type.
func (r FSResolver) AsResolver() Resolver {
	return r.Resolve
}
