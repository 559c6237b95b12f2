package deadexports

import (
	"fmt"
	"path"
	"sort"
	"strings"

	"gonum.org/v1/gonum/stat"
)

// aggregator folds the marker state into the final issue list.
type aggregator struct {
	pc           *projectContext
	g            *depGraph
	m            *marker
	checkImports bool
	checkLocals  bool
}

// Build assembles the ordered issue list and summary. Symbol issues in
// fully dead files fold into a single file issue, and file issues in
// fully dead folders fold into a folder issue.
func (ag *aggregator) Build() *Analysis {
	analysis := &Analysis{Issues: make([]Issue, 0)}

	deadFiles := make(map[string]bool)
	for _, file := range ag.pc.keys {
		if ag.m.fileDead(file) {
			deadFiles[file] = true
		}
	}
	deadFolders := ag.deadFolders(deadFiles)

	var chainSizes []float64

	for _, key := range ag.m.sorted {
		if key.IsFile() || !ag.m.IsDead(key) {
			continue
		}
		if !ag.m.pol.reportable(key.File) {
			continue
		}
		direct := !ag.m.IsTransitive(key)
		if direct {
			chainSizes = append(chainSizes, float64(ag.m.chainSize(key)))
		}
		if deadFiles[key.File] {
			continue // folded into the file issue
		}
		analysis.Issues = append(analysis.Issues, ag.symbolIssue(key, direct))
	}

	for _, file := range ag.pc.keys {
		if !deadFiles[file] {
			continue
		}
		if deadFolders[path.Dir(file)] {
			continue // folded into the folder issue
		}
		analysis.Issues = append(analysis.Issues, ag.fileIssue(file))
	}

	for folder, count := range deadFolders {
		if !count {
			continue
		}
		analysis.Issues = append(analysis.Issues, ag.folderIssue(folder, deadFiles))
	}

	if ag.checkImports {
		analysis.Issues = append(analysis.Issues, ag.unusedImports()...)
	}
	if ag.checkLocals {
		analysis.Issues = append(analysis.Issues, ag.unusedSymbols()...)
	}

	sort.Slice(analysis.Issues, func(i, j int) bool {
		a, b := analysis.Issues[i], analysis.Issues[j]
		if a.File != b.File {
			return a.File < b.File
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		if a.Symbol != b.Symbol {
			return a.Symbol < b.Symbol
		}
		return a.Kind < b.Kind
	})

	ag.buildSummary(analysis, deadFiles, deadFolders, chainSizes)
	return analysis
}

func (ag *aggregator) symbolIssue(key SymbolKey, direct bool) Issue {
	issue := Issue{
		Kind:      IssueDeadSymbol,
		File:      key.File,
		Line:      ag.symbolLine(key),
		Symbol:    key.Name,
		ChainSize: ag.m.chainSize(key),
	}
	if direct {
		issue.Severity = SeverityError
		issue.Message = fmt.Sprintf("Export '%s' is never imported", key.Name)
		if issue.ChainSize > 1 {
			issue.Recommendation = fmt.Sprintf("Remove '%s'; %d symbols become removable with it", key.Name, issue.ChainSize)
		} else {
			issue.Recommendation = fmt.Sprintf("Remove '%s' or delete the export keyword if it is still used locally", key.Name)
		}
	} else {
		issue.Severity = SeverityWarning
		issue.Transitive = true
		issue.Message = fmt.Sprintf("'%s' is only referenced by dead code", key.Name)
		issue.Recommendation = fmt.Sprintf("Remove '%s' together with its dead dependents", key.Name)
	}
	issue.ContextHash = computeContextHash(issue.Kind, issue.File, issue.Symbol, issue.Line)
	return issue
}

func (ag *aggregator) fileIssue(file string) Issue {
	count := ag.symbolCount(file)
	issue := Issue{
		Kind:           IssueDeadFile,
		File:           file,
		Line:           1,
		Symbol:         FileSymbol,
		Severity:       SeverityError,
		Message:        fmt.Sprintf("File is never imported (%d symbols)", count),
		Recommendation: "Delete the file",
		SymbolCount:    count,
	}
	issue.ContextHash = computeContextHash(issue.Kind, issue.File, issue.Symbol, issue.Line)
	return issue
}

func (ag *aggregator) folderIssue(folder string, deadFiles map[string]bool) Issue {
	count := 0
	for file := range deadFiles {
		if path.Dir(file) == folder {
			count++
		}
	}
	issue := Issue{
		Kind:           IssueDeadFolder,
		File:           folder,
		Line:           1,
		Symbol:         FolderSymbol,
		Severity:       SeverityError,
		Message:        fmt.Sprintf("All %d files in this folder are dead", count),
		Recommendation: "Delete the folder",
		SymbolCount:    count,
	}
	issue.ContextHash = computeContextHash(issue.Kind, issue.File, issue.Symbol, issue.Line)
	return issue
}

// deadFolders returns folders where every directly contained analyzable,
// non-test file is dead. Folders need at least two such files to qualify.
func (ag *aggregator) deadFolders(deadFiles map[string]bool) map[string]bool {
	members := make(map[string][]string)
	for _, file := range ag.pc.keys {
		if !ag.m.pol.reportable(file) {
			continue
		}
		dir := path.Dir(file)
		members[dir] = append(members[dir], file)
	}

	folders := make(map[string]bool)
	for dir, files := range members {
		if len(files) < 2 {
			continue
		}
		allDead := true
		for _, file := range files {
			if !deadFiles[file] {
				allDead = false
				break
			}
		}
		if allDead {
			folders[dir] = true
		}
	}
	return folders
}

// symbolCount approximates how many declarations a dead file removes:
// its exposed names plus unexported locals.
func (ag *aggregator) symbolCount(file string) int {
	fa := ag.pc.files[file]
	local := make(map[string]bool)
	count := 0
	for _, sym := range fa.Symbols {
		if !local[sym.Name] {
			local[sym.Name] = true
			count++
		}
	}
	for i := range fa.Exports {
		exp := &fa.Exports[i]
		if exp.Name == "" || local[exp.Name] || local[exp.OriginalName] {
			continue
		}
		count++
	}
	return count
}

func (ag *aggregator) symbolLine(key SymbolKey) uint32 {
	fa := ag.pc.files[key.File]
	if fa == nil {
		return 1
	}
	if exp := fa.ExportByName(key.Name); exp != nil && exp.Line > 0 {
		return exp.Line
	}
	for _, sym := range fa.Symbols {
		if sym.Name == key.Name {
			return sym.Line
		}
	}
	return 1
}

// unusedImports flags import bindings never referenced in their file.
// Type-only and side-effect imports are skipped.
func (ag *aggregator) unusedImports() []Issue {
	var issues []Issue
	for _, file := range ag.pc.keys {
		if !ag.m.pol.reportable(file) {
			continue
		}
		fa := ag.pc.files[file]
		for _, imp := range fa.Imports {
			if imp.Kind == ImportSideEffect || imp.TypeOnly || imp.Name == "" {
				continue
			}
			if fa.Used[imp.Name] {
				continue
			}
			issue := Issue{
				Kind:           IssueUnusedImport,
				File:           file,
				Line:           imp.Line,
				Symbol:         imp.Name,
				Severity:       SeverityWarning,
				Message:        fmt.Sprintf("Import '%s' is never used", imp.Name),
				Recommendation: "Remove the import",
			}
			issue.ContextHash = computeContextHash(issue.Kind, issue.File, issue.Symbol, issue.Line)
			issues = append(issues, issue)
		}
	}
	return issues
}

// unusedSymbols flags unexported locals that nothing in their file
// references. Interfaces, type aliases and underscore-prefixed names are
// skipped; symbols already reported dead are not repeated.
func (ag *aggregator) unusedSymbols() []Issue {
	var issues []Issue
	for _, file := range ag.pc.keys {
		if !ag.m.pol.reportable(file) {
			continue
		}
		fa := ag.pc.files[file]
		for _, sym := range fa.Symbols {
			if sym.Exported || strings.HasPrefix(sym.Name, "_") {
				continue
			}
			if sym.Kind == KindInterface || sym.Kind == KindType {
				continue
			}
			if ag.exportedLater(fa, sym.Name) {
				continue
			}
			if fa.UsedOutside(sym.Name, sym.Name) {
				continue
			}
			if ag.m.IsDead(SymbolKey{File: file, Name: sym.Name}) {
				continue
			}
			issue := Issue{
				Kind:           IssueUnusedSymbol,
				File:           file,
				Line:           sym.Line,
				Symbol:         sym.Name,
				Severity:       SeverityError,
				Message:        fmt.Sprintf("'%s' is declared but never used", sym.Name),
				Recommendation: fmt.Sprintf("Remove '%s' or prefix it with an underscore if intentional", sym.Name),
			}
			issue.ContextHash = computeContextHash(issue.Kind, issue.File, issue.Symbol, issue.Line)
			issues = append(issues, issue)
		}
	}
	return issues
}

// exportedLater reports whether a local declared without the export
// keyword is exposed through a later export clause or default export.
func (ag *aggregator) exportedLater(fa *FileAnalysis, name string) bool {
	for i := range fa.Exports {
		exp := &fa.Exports[i]
		if exp.IsReexport {
			continue
		}
		if exp.Name == name || exp.OriginalName == name {
			return true
		}
	}
	return false
}

func (ag *aggregator) buildSummary(analysis *Analysis, deadFiles, deadFolders map[string]bool, chainSizes []float64) {
	s := &analysis.Summary
	s.FilesAnalyzed = len(ag.pc.files)
	for _, k := range ag.m.sorted {
		if !k.IsFile() {
			s.SymbolsTracked++
		}
	}
	s.DeadExports = int(ag.m.dead.GetCardinality())
	s.TransitiveDead = int(ag.m.tdead.GetCardinality())
	s.DeadFiles = len(deadFiles)
	s.DeadFolders = len(deadFolders)
	s.Passes = ag.m.passes
	for _, issue := range analysis.Issues {
		switch issue.Kind {
		case IssueUnusedImport:
			s.UnusedImports++
		case IssueUnusedSymbol:
			s.UnusedSymbols++
		}
	}

	if len(chainSizes) > 0 {
		sort.Float64s(chainSizes)
		s.MeanChainSize = stat.Mean(chainSizes, nil)
		s.P90ChainSize = stat.Quantile(0.9, stat.Empirical, chainSizes, nil)
	}
}
