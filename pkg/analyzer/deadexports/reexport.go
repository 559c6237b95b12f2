package deadexports

// maxChainDepth bounds re-export chain traversal. Chains deeper than this
// are pathological; traversal stops and the last resolvable hop becomes
// the origin.
const maxChainDepth = 10

// chainBuilder flattens re-export chains into a direct origin-to-aliases
// mapping so that liveness checks never walk chains at query time.
type chainBuilder struct {
	files    map[string]*FileAnalysis
	resolver *Resolver
}

// chainSet maps each origin key to every alias key that exposes it.
type chainSet struct {
	aliases map[SymbolKey][]SymbolKey
}

// AliasesOf returns all alias keys under which origin is exposed.
func (c *chainSet) AliasesOf(origin SymbolKey) []SymbolKey {
	return c.aliases[origin]
}

// Build walks every re-export in the project and records, per origin,
// the full set of exposed alias keys. Cycles are broken with a visited
// set; unresolvable hops terminate the chain at the last resolvable file.
func (b *chainBuilder) Build() *chainSet {
	cs := &chainSet{aliases: make(map[SymbolKey][]SymbolKey)}
	for file, fa := range b.files {
		for i := range fa.Exports {
			exp := &fa.Exports[i]
			if !exp.IsReexport {
				continue
			}
			target, ok := b.resolver.Resolve(exp.Source, file)
			if !ok {
				continue
			}
			switch {
			case exp.Namespace:
				// export * as ns: every origin behind target gains the
				// namespace key as an alias.
				alias := SymbolKey{File: file, Name: exp.Name}
				for _, name := range b.exposedNames(target, make(map[string]bool), 0) {
					cs.add(b.originOf(target, name, make(map[SymbolKey]bool), 0), alias)
				}
			case exp.Wildcard:
				// export *: names re-surface under the same name; the
				// default export does not propagate through wildcards.
				for _, name := range b.exposedNames(target, make(map[string]bool), 0) {
					if name == "default" {
						continue
					}
					origin := b.originOf(target, name, make(map[SymbolKey]bool), 0)
					cs.add(origin, SymbolKey{File: file, Name: name})
				}
			default:
				origin := b.originOf(target, exp.OriginalName, make(map[SymbolKey]bool), 0)
				cs.add(origin, SymbolKey{File: file, Name: exp.Name})
			}
		}
	}
	return cs
}

func (c *chainSet) add(origin, alias SymbolKey) {
	if origin == alias {
		return
	}
	for _, a := range c.aliases[origin] {
		if a == alias {
			return
		}
	}
	c.aliases[origin] = append(c.aliases[origin], alias)
}

// originOf follows re-exports from (file, name) down to the defining
// export. If the name is not found, or a hop does not resolve, the
// current position is treated as the origin.
func (b *chainBuilder) originOf(file, name string, visited map[SymbolKey]bool, depth int) SymbolKey {
	key := SymbolKey{File: file, Name: name}
	if depth >= maxChainDepth || visited[key] {
		return key
	}
	visited[key] = true

	fa, ok := b.files[file]
	if !ok {
		return key
	}
	if exp := fa.ExportByName(name); exp != nil {
		if !exp.IsReexport {
			return key
		}
		target, ok := b.resolver.Resolve(exp.Source, file)
		if !ok {
			return key
		}
		return b.originOf(target, exp.OriginalName, visited, depth+1)
	}

	// Not exported directly: the name may arrive through a wildcard.
	for i := range fa.Exports {
		exp := &fa.Exports[i]
		if !exp.Wildcard {
			continue
		}
		target, ok := b.resolver.Resolve(exp.Source, file)
		if !ok {
			continue
		}
		if b.exposes(target, name, make(map[string]bool), depth+1) {
			return b.originOf(target, name, visited, depth+1)
		}
	}
	return key
}

// exposedNames returns every name a file exposes, following wildcard
// re-exports. The default export is excluded from wildcard propagation.
func (b *chainBuilder) exposedNames(file string, visited map[string]bool, depth int) []string {
	if depth >= maxChainDepth || visited[file] {
		return nil
	}
	visited[file] = true

	fa, ok := b.files[file]
	if !ok {
		return nil
	}
	seen := make(map[string]bool)
	var names []string
	for i := range fa.Exports {
		exp := &fa.Exports[i]
		if exp.Wildcard {
			target, ok := b.resolver.Resolve(exp.Source, file)
			if !ok {
				continue
			}
			for _, name := range b.exposedNames(target, visited, depth+1) {
				if name != "default" && !seen[name] {
					seen[name] = true
					names = append(names, name)
				}
			}
			continue
		}
		if exp.Name != "" && !seen[exp.Name] {
			seen[exp.Name] = true
			names = append(names, exp.Name)
		}
	}
	return names
}

// exposes reports whether a file exposes the given name.
func (b *chainBuilder) exposes(file, name string, visited map[string]bool, depth int) bool {
	for _, n := range b.exposedNames(file, visited, depth) {
		if n == name {
			return true
		}
	}
	return false
}
