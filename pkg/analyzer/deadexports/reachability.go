package deadexports

import (
	"sort"
	"strings"

	"github.com/RoaringBitmap/roaring/v2"
)

// marker performs the liveness analysis over the dependency graph.
// Symbol keys are interned to dense ids so the dead sets can live in
// roaring bitmaps rather than hash sets.
type marker struct {
	pc     *projectContext
	g      *depGraph
	chains *chainSet
	pol    policy

	ids    map[SymbolKey]uint32
	sorted []SymbolKey
	dead   *roaring.Bitmap // directly dead exports
	tdead  *roaring.Bitmap // transitively dead symbols
	passes int
}

// policy carries the reporting knobs that affect liveness decisions.
type policy struct {
	barrelMode     string
	pageDirs       []string
	exemptSuffixes []string
	maxPasses      int
	reportable     func(file string) bool
}

func newMarker(pc *projectContext, g *depGraph, chains *chainSet, pol policy) *marker {
	m := &marker{
		pc:     pc,
		g:      g,
		chains: chains,
		pol:    pol,
		ids:    make(map[SymbolKey]uint32, len(g.keys)),
		dead:   roaring.New(),
		tdead:  roaring.New(),
	}
	m.sorted = make([]SymbolKey, 0, len(g.keys))
	for k := range g.keys {
		m.sorted = append(m.sorted, k)
	}
	sort.Slice(m.sorted, func(i, j int) bool {
		return m.sorted[i].String() < m.sorted[j].String()
	})
	for i, k := range m.sorted {
		m.ids[k] = uint32(i)
	}
	return m
}

func (m *marker) id(k SymbolKey) (uint32, bool) {
	id, ok := m.ids[k]
	return id, ok
}

// IsDead reports whether the key is dead, directly or transitively.
func (m *marker) IsDead(k SymbolKey) bool {
	id, ok := m.ids[k]
	if !ok {
		return false
	}
	return m.dead.Contains(id) || m.tdead.Contains(id)
}

// IsTransitive reports whether the key was promoted rather than directly dead.
func (m *marker) IsTransitive(k SymbolKey) bool {
	id, ok := m.ids[k]
	return ok && m.tdead.Contains(id)
}

// importedAnywhere reports whether the key, or any re-export alias of it,
// is named by an import somewhere in the project.
func (m *marker) importedAnywhere(k SymbolKey) bool {
	if m.g.imported[k] {
		return true
	}
	for _, alias := range m.chains.AliasesOf(k) {
		if m.g.imported[alias] {
			return true
		}
	}
	return false
}

// exempt reports whether an export is excluded from dead reporting:
// framework entry defaults in page directories, interfaces and types
// realized via implements clauses, suffix conventions, and barrel file
// exports under the lenient policy.
func (m *marker) exempt(file string, exp *Export) bool {
	if m.pol.barrelMode != BarrelStrict && isBarrelFile(file) {
		return true
	}
	if exp.Name == "default" && m.isPageFile(file) {
		return true
	}
	for _, suf := range m.pol.exemptSuffixes {
		if suf != "" && strings.HasSuffix(exp.Name, suf) {
			return true
		}
	}
	if exp.Kind == KindInterface || exp.Kind == KindType {
		if m.pc.implements[exp.Name] {
			return true
		}
	}
	return false
}

// isPageFile reports whether the file lives under a framework routing
// directory or is itself a page module.
func (m *marker) isPageFile(file string) bool {
	for _, dir := range m.pol.pageDirs {
		if dir == "" {
			continue
		}
		if strings.HasPrefix(file, dir+"/") || strings.Contains(file, "/"+dir+"/") {
			return true
		}
	}
	base := file
	if i := strings.LastIndexByte(file, '/'); i >= 0 {
		base = file[i+1:]
	}
	return strings.Contains(base, "page")
}

// internallyUsed reports whether the exported name (or the local symbol
// behind it) is referenced elsewhere in its own file.
func (m *marker) internallyUsed(fa *FileAnalysis, exp *Export) bool {
	self := []string{exp.Name}
	if exp.OriginalName != "" && exp.OriginalName != exp.Name {
		self = append(self, exp.OriginalName)
	}
	for _, name := range self {
		if fa.UsedOutside(name, self...) {
			return true
		}
	}
	return false
}

// Mark runs the direct pass followed by transitive promotion sweeps.
func (m *marker) Mark() {
	m.markDirect()
	m.markTransitive()
}

// markDirect flags exports that nothing imports, no alias of which is
// imported, and which nothing else in their own file references.
func (m *marker) markDirect() {
	for _, file := range m.pc.keys {
		fa := m.pc.files[file]
		if !m.pol.reportable(file) {
			continue
		}
		for i := range fa.Exports {
			exp := &fa.Exports[i]
			if exp.Name == "" {
				continue
			}
			key := SymbolKey{File: file, Name: exp.Name}
			if exp.IsReexport {
				// Aliases are accounted to their origin, except under the
				// strict barrel policy where unimported barrel entries are
				// flagged in their own right.
				if m.pol.barrelMode == BarrelStrict && isBarrelFile(file) && !m.g.imported[key] {
					if id, ok := m.id(key); ok {
						m.dead.Add(id)
					}
				}
				continue
			}
			if m.exempt(file, exp) {
				continue
			}
			if m.importedAnywhere(key) {
				continue
			}
			if m.internallyUsed(fa, exp) {
				continue
			}
			if id, ok := m.id(key); ok {
				m.dead.Add(id)
			}
		}
	}
}

// markTransitive repeatedly promotes symbols whose every dependent is
// already dead. Sweeps are bounded by maxPasses as a safety valve; a
// sweep with no promotions terminates the loop early.
func (m *marker) markTransitive() {
	for pass := 1; pass <= m.pol.maxPasses; pass++ {
		m.passes = pass
		changed := false
		for _, k := range m.sorted {
			if k.IsFile() || m.IsDead(k) {
				continue
			}
			if m.promotable(k) {
				if id, ok := m.id(k); ok {
					m.tdead.Add(id)
					changed = true
				}
			}
		}
		if !changed {
			break
		}
	}
}

// promotable reports whether a live symbol is reachable only from dead
// code: it has at least one dependent and every dependent is dead. File
// pseudo-key dependents carry import edges, so an imported symbol is
// promoted once every file importing it has lost its last live export.
func (m *marker) promotable(k SymbolKey) bool {
	fa, ok := m.pc.files[k.File]
	if !ok || !m.pol.reportable(k.File) {
		return false
	}
	// Origins imported through a re-export alias stay live; alias
	// imports are not tracked per importing file.
	for _, alias := range m.chains.AliasesOf(k) {
		if m.g.imported[alias] {
			return false
		}
	}
	if exp := fa.ExportByName(k.Name); exp != nil {
		if exp.IsReexport || m.exempt(k.File, exp) {
			return false
		}
	}
	if fa.TopUses[k.Name] {
		return false
	}

	deps := m.g.dependents[k]
	if len(deps) == 0 {
		return false
	}
	for _, d := range deps {
		if d.IsFile() {
			if !m.fileDead(d.File) {
				return false
			}
			continue
		}
		if !m.IsDead(d) {
			return false
		}
	}
	return true
}

// fileDead reports whether a file is dead in the current state: it has
// at least one named export and every one of them is dead. Files with no
// exports, test files, and files imported for side effects stay live.
func (m *marker) fileDead(file string) bool {
	fa, ok := m.pc.files[file]
	if !ok || !m.pol.reportable(file) || m.g.sideEffect[file] {
		return false
	}
	named := 0
	for i := range fa.Exports {
		exp := &fa.Exports[i]
		if exp.Name == "" {
			continue
		}
		named++
		if !m.IsDead(SymbolKey{File: file, Name: exp.Name}) {
			return false
		}
	}
	return named > 0
}

// chainSize counts the dead symbols removable together with start: the
// closure of dead dependencies reachable from it, including itself.
func (m *marker) chainSize(start SymbolKey) int {
	visited := map[SymbolKey]bool{start: true}
	queue := []SymbolKey{start}
	count := 0
	for head := 0; head < len(queue); head++ {
		k := queue[head]
		if !m.IsDead(k) {
			continue
		}
		count++
		for _, dep := range m.g.dependencies[k] {
			if dep.IsFile() || visited[dep] {
				continue
			}
			visited[dep] = true
			queue = append(queue, dep)
		}
	}
	return count
}
