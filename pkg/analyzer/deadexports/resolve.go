package deadexports

import (
	"path"
	"strings"
)

// defaultExtensions are tried in order when a specifier omits the extension.
var defaultExtensions = []string{".ts", ".tsx", ".js", ".jsx"}

// DefaultRootAlias maps "~/..." specifiers onto the src tree, the common
// bundler convention.
const (
	DefaultRootAlias   = "~/"
	DefaultAliasTarget = "src"
)

// Resolver maps import specifiers to canonical project file keys.
// Resolution is purely lexical against the set of scanned files; bare
// package specifiers never resolve.
type Resolver struct {
	files       map[string]bool
	rootAlias   string
	aliasTarget string
	extensions  []string
}

// NewResolver creates a resolver over the given canonical file keys.
func NewResolver(files []string, rootAlias, aliasTarget string, extensions []string) *Resolver {
	set := make(map[string]bool, len(files))
	for _, f := range files {
		set[f] = true
	}
	if len(extensions) == 0 {
		extensions = defaultExtensions
	}
	return &Resolver{
		files:       set,
		rootAlias:   rootAlias,
		aliasTarget: aliasTarget,
		extensions:  extensions,
	}
}

// Resolve maps a specifier, as written in fromFile, to a canonical file key.
// Relative specifiers resolve against fromFile's directory; root-alias
// specifiers resolve against the alias target. Candidates are tried in
// order: the exact path, each known extension, then index files.
func (r *Resolver) Resolve(spec, fromFile string) (string, bool) {
	var base string
	switch {
	case strings.HasPrefix(spec, "."):
		base = path.Join(path.Dir(fromFile), spec)
	case r.rootAlias != "" && strings.HasPrefix(spec, r.rootAlias):
		base = path.Join(r.aliasTarget, spec[len(r.rootAlias):])
	default:
		return "", false
	}
	base = path.Clean(base)
	if base == ".." || strings.HasPrefix(base, "../") {
		return "", false
	}

	if r.files[base] {
		return base, true
	}
	for _, ext := range r.extensions {
		if cand := base + ext; r.files[cand] {
			return cand, true
		}
	}
	for _, ext := range r.extensions {
		if cand := base + "/index" + ext; r.files[cand] {
			return cand, true
		}
	}
	return "", false
}
