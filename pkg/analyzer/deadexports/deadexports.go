// Package deadexports detects exported symbols, files and folders in
// TypeScript and JavaScript codebases that nothing imports. Per-file
// facts are extracted concurrently, import specifiers are resolved to
// project files, re-export chains are flattened, and a dependency graph
// drives a direct pass plus transitive promotion sweeps.
package deadexports

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
	"github.com/panbanda/vestige/internal/fileproc"
	"github.com/panbanda/vestige/pkg/analyzer"
	"github.com/panbanda/vestige/pkg/parser"
)

// Barrel file policies. Lenient treats index files as public surface and
// never reports their entries; strict flags barrel entries that nothing
// imports.
const (
	BarrelLenient = "lenient"
	BarrelStrict  = "strict"
)

// DefaultMaxPasses bounds the transitive promotion sweeps.
const DefaultMaxPasses = 10

// DefaultPageDirs are framework routing directories whose default
// exports are loaded by convention rather than by import.
var DefaultPageDirs = []string{"pages", "app", "routes"}

// DefaultExemptSuffixes are naming conventions excluded from reporting.
var DefaultExemptSuffixes = []string{"Props", "Config"}

// Analyzer detects dead exports across a project.
type Analyzer struct {
	parser    *parser.Parser
	extractor SourceExtractor

	root         string
	workers      int
	maxPasses    int
	maxFileSize  int64
	rootAlias    string
	aliasTarget  string
	extensions   []string
	barrelMode   string
	pageDirs     []string
	suffixes     []string
	checkImports bool
	checkLocals  bool
	ignore       gitignore.Matcher
	progress     fileproc.ProgressFunc
}

// Compile-time check that Analyzer implements analyzer.FileAnalyzer[*Analysis]
var _ analyzer.FileAnalyzer[*Analysis] = (*Analyzer)(nil)

// Option is a functional option for configuring Analyzer.
type Option func(*Analyzer)

// WithRoot sets the project root; file keys are reported relative to it.
func WithRoot(root string) Option {
	return func(a *Analyzer) {
		a.root = root
	}
}

// WithWorkers sets the parse worker count (<= 0 means 2x NumCPU).
func WithWorkers(n int) Option {
	return func(a *Analyzer) {
		a.workers = n
	}
}

// WithMaxPasses caps the transitive promotion sweeps.
func WithMaxPasses(n int) Option {
	return func(a *Analyzer) {
		if n > 0 {
			a.maxPasses = n
		}
	}
}

// WithMaxFileSize sets the maximum file size to analyze (0 = no limit).
func WithMaxFileSize(maxSize int64) Option {
	return func(a *Analyzer) {
		a.maxFileSize = maxSize
	}
}

// WithRootAlias sets the specifier prefix that resolves against target,
// e.g. "~/" against "src".
func WithRootAlias(alias, target string) Option {
	return func(a *Analyzer) {
		a.rootAlias = alias
		a.aliasTarget = target
	}
}

// WithExtensions overrides the extension resolution order.
func WithExtensions(exts []string) Option {
	return func(a *Analyzer) {
		if len(exts) > 0 {
			a.extensions = exts
		}
	}
}

// WithBarrelMode selects the barrel file policy.
func WithBarrelMode(mode string) Option {
	return func(a *Analyzer) {
		if mode == BarrelLenient || mode == BarrelStrict {
			a.barrelMode = mode
		}
	}
}

// WithPageDirs overrides the framework routing directories.
func WithPageDirs(dirs []string) Option {
	return func(a *Analyzer) {
		a.pageDirs = dirs
	}
}

// WithExemptSuffixes overrides the exempt name suffixes.
func WithExemptSuffixes(suffixes []string) Option {
	return func(a *Analyzer) {
		a.suffixes = suffixes
	}
}

// WithUnusedImports toggles unused import reporting.
func WithUnusedImports(enabled bool) Option {
	return func(a *Analyzer) {
		a.checkImports = enabled
	}
}

// WithUnusedSymbols toggles unused local symbol reporting.
func WithUnusedSymbols(enabled bool) Option {
	return func(a *Analyzer) {
		a.checkLocals = enabled
	}
}

// WithIgnorePatterns excludes files matching the gitignore-style
// patterns from reporting. Ignored files still contribute imports.
func WithIgnorePatterns(patterns []string) Option {
	return func(a *Analyzer) {
		ps := make([]gitignore.Pattern, 0, len(patterns))
		for _, p := range patterns {
			if p = strings.TrimSpace(p); p != "" {
				ps = append(ps, gitignore.ParsePattern(p, nil))
			}
		}
		if len(ps) > 0 {
			a.ignore = gitignore.NewMatcher(ps)
		}
	}
}

// WithProgress sets a callback invoked once per processed file.
func WithProgress(fn fileproc.ProgressFunc) Option {
	return func(a *Analyzer) {
		a.progress = fn
	}
}

// WithExtractor replaces the default AST extractor.
func WithExtractor(e SourceExtractor) Option {
	return func(a *Analyzer) {
		if e != nil {
			a.extractor = e
		}
	}
}

// New creates a new dead export analyzer.
func New(opts ...Option) *Analyzer {
	a := &Analyzer{
		parser:       parser.New(),
		extractor:    NewExtractor(),
		maxPasses:    DefaultMaxPasses,
		rootAlias:    DefaultRootAlias,
		aliasTarget:  DefaultAliasTarget,
		extensions:   defaultExtensions,
		barrelMode:   BarrelLenient,
		pageDirs:     DefaultPageDirs,
		suffixes:     DefaultExemptSuffixes,
		checkImports: true,
		checkLocals:  true,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// projectContext holds the cross-file state shared by the analysis phases.
type projectContext struct {
	root       string
	files      map[string]*FileAnalysis
	keys       []string // sorted canonical keys
	resolver   *Resolver
	chains     *chainBuilder
	implements map[string]bool
}

// AnalyzeFile extracts symbol facts for a single file.
func (a *Analyzer) AnalyzeFile(path string) (*FileAnalysis, error) {
	result, err := a.parser.ParseFile(path)
	if err != nil {
		return nil, err
	}
	return a.extractor.Extract(result, a.canonicalKey(path)), nil
}

// Analyze runs the full pipeline over the given files: concurrent
// extraction, chain flattening, graph construction, liveness marking and
// aggregation. Unreadable or unparseable files contribute empty facts
// rather than failing the run.
func (a *Analyzer) Analyze(ctx context.Context, files []string) (*Analysis, error) {
	analysis := &Analysis{Issues: make([]Issue, 0)}
	if len(files) == 0 {
		return analysis, nil
	}

	type fileResult struct {
		key string
		fa  *FileAnalysis
	}

	results, _ := fileproc.MapFilesWithContext(ctx, files, a.workers, func(psr *parser.Parser, path string) (fileResult, error) {
		key := a.canonicalKey(path)
		if a.maxFileSize > 0 {
			info, err := os.Stat(path)
			if err == nil && info.Size() > a.maxFileSize {
				return fileResult{key: key, fa: NewFileAnalysis(key)}, nil
			}
		}
		result, err := psr.ParseFile(path)
		if err != nil {
			return fileResult{key: key, fa: NewFileAnalysis(key)}, nil
		}
		return fileResult{key: key, fa: a.extractor.Extract(result, key)}, nil
	}, a.progress)

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("analysis canceled: %w", err)
	}

	pc := &projectContext{
		root:       a.root,
		files:      make(map[string]*FileAnalysis, len(results)),
		implements: make(map[string]bool),
	}
	for _, r := range results {
		if _, dup := pc.files[r.key]; dup {
			continue
		}
		pc.files[r.key] = r.fa
		pc.keys = append(pc.keys, r.key)
		for name := range r.fa.Implements {
			pc.implements[name] = true
		}
	}
	sort.Strings(pc.keys)

	pc.resolver = NewResolver(pc.keys, a.rootAlias, a.aliasTarget, a.extensions)
	pc.chains = &chainBuilder{files: pc.files, resolver: pc.resolver}

	chains := pc.chains.Build()
	g := buildGraph(pc)

	m := newMarker(pc, g, chains, policy{
		barrelMode:     a.barrelMode,
		pageDirs:       a.pageDirs,
		exemptSuffixes: a.suffixes,
		maxPasses:      a.maxPasses,
		reportable:     a.reportable,
	})
	m.Mark()

	ag := &aggregator{
		pc:           pc,
		g:            g,
		m:            m,
		checkImports: a.checkImports,
		checkLocals:  a.checkLocals,
	}
	return ag.Build(), nil
}

// reportable reports whether issues may be raised against a file. Test
// files and ignored files still contribute imports to the graph.
func (a *Analyzer) reportable(file string) bool {
	if IsTestFile(file) {
		return false
	}
	if a.ignore != nil && a.ignore.Match(strings.Split(file, "/"), false) {
		return false
	}
	return true
}

// canonicalKey converts an absolute or relative path to the canonical
// slash-separated project-relative form used in keys and reports.
func (a *Analyzer) canonicalKey(path string) string {
	if a.root != "" {
		if rel, err := filepath.Rel(a.root, path); err == nil && !strings.HasPrefix(rel, "..") {
			return filepath.ToSlash(rel)
		}
	}
	return filepath.ToSlash(filepath.Clean(path))
}

// Close releases parser resources.
func (a *Analyzer) Close() {
	a.parser.Close()
}
