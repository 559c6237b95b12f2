package deadexports

// depGraph is the project-wide symbol dependency graph. Edges run from a
// symbol to the symbols it uses; file pseudo-keys carry import edges so a
// file's imports keep their targets alive independently of its exports.
type depGraph struct {
	dependencies map[SymbolKey][]SymbolKey
	dependents   map[SymbolKey][]SymbolKey
	edges        map[[2]SymbolKey]bool

	// imported holds every key directly named by an import statement,
	// including all exports of namespace-imported files.
	imported map[SymbolKey]bool

	// sideEffect marks files imported purely for side effects.
	sideEffect map[string]bool

	keys map[SymbolKey]bool
}

func newDepGraph() *depGraph {
	return &depGraph{
		dependencies: make(map[SymbolKey][]SymbolKey),
		dependents:   make(map[SymbolKey][]SymbolKey),
		edges:        make(map[[2]SymbolKey]bool),
		imported:     make(map[SymbolKey]bool),
		sideEffect:   make(map[string]bool),
		keys:         make(map[SymbolKey]bool),
	}
}

func (g *depGraph) addKey(k SymbolKey) {
	g.keys[k] = true
}

// addEdge records that from uses to. Self edges and duplicates are dropped.
func (g *depGraph) addEdge(from, to SymbolKey) {
	if from == to {
		return
	}
	e := [2]SymbolKey{from, to}
	if g.edges[e] {
		return
	}
	g.edges[e] = true
	g.dependencies[from] = append(g.dependencies[from], to)
	g.dependents[to] = append(g.dependents[to], from)
	g.keys[from] = true
	g.keys[to] = true
}

func (g *depGraph) markImported(k SymbolKey) {
	g.imported[k] = true
	g.keys[k] = true
}

// buildGraph constructs the dependency graph from per-file analyses.
func buildGraph(pc *projectContext) *depGraph {
	g := newDepGraph()

	for file, fa := range pc.files {
		fileKey := FileKey(file)
		g.addKey(fileKey)

		for _, imp := range fa.Imports {
			target, ok := pc.resolver.Resolve(imp.Source, file)
			if !ok {
				continue
			}
			switch imp.Kind {
			case ImportSideEffect:
				g.sideEffect[target] = true
				g.addEdge(fileKey, FileKey(target))
			case ImportNamespace:
				// A namespace import can reach any export of the target,
				// so every export counts as imported.
				for _, name := range pc.chains.exposedNames(target, make(map[string]bool), 0) {
					tk := SymbolKey{File: target, Name: name}
					g.addEdge(fileKey, tk)
					g.markImported(tk)
				}
			default:
				tk := SymbolKey{File: target, Name: imp.OriginalName}
				g.addEdge(fileKey, tk)
				g.markImported(tk)
			}
		}

		for i := range fa.Exports {
			exp := &fa.Exports[i]
			if exp.Name == "" {
				continue
			}
			key := SymbolKey{File: file, Name: exp.Name}
			g.addKey(key)
			// Tie an exposed name to the local symbol behind it, e.g.
			// `export default foo` or `export { foo as bar }`.
			if !exp.IsReexport && exp.OriginalName != "" && exp.OriginalName != exp.Name {
				g.addEdge(key, SymbolKey{File: file, Name: exp.OriginalName})
			}
		}

		for _, sym := range fa.Symbols {
			from := SymbolKey{File: file, Name: sym.Name}
			g.addKey(from)
			uses := fa.SymbolUses[sym.Name]
			if len(uses) == 0 {
				continue
			}
			for _, other := range fa.Symbols {
				if other.Name == sym.Name {
					continue
				}
				if uses[other.Name] {
					g.addEdge(from, SymbolKey{File: file, Name: other.Name})
				}
			}
		}
	}

	return g
}
