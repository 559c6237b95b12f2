package deadexports

import (
	"encoding/hex"
	"strconv"
	"strings"

	"github.com/zeebo/blake3"
)

// ImportKind classifies how an import binds names from another module.
type ImportKind string

const (
	ImportNamed      ImportKind = "named"
	ImportDefault    ImportKind = "default"
	ImportNamespace  ImportKind = "namespace"
	ImportSideEffect ImportKind = "side_effect"
)

// String returns the string representation.
func (k ImportKind) String() string {
	return string(k)
}

// Import represents a single binding introduced by an import statement.
type Import struct {
	Name         string     `json:"name"`          // local binding name ("" for side-effect imports)
	OriginalName string     `json:"original_name"` // exported name at the source module ("default" for default imports)
	Source       string     `json:"source"`        // module specifier as written
	Line         uint32     `json:"line"`
	Kind         ImportKind `json:"kind"`
	TypeOnly     bool       `json:"type_only"`
}

// SymbolKind classifies a top-level declaration.
type SymbolKind string

const (
	KindFunction  SymbolKind = "function"
	KindClass     SymbolKind = "class"
	KindInterface SymbolKind = "interface"
	KindType      SymbolKind = "type"
	KindEnum      SymbolKind = "enum"
	KindConst     SymbolKind = "const"
	KindLet       SymbolKind = "let"
	KindVar       SymbolKind = "var"
)

// String returns the string representation.
func (k SymbolKind) String() string {
	return string(k)
}

// Export represents one name a file exposes to the rest of the project.
// Default exports are keyed under the name "default" with the declared
// name (if any) preserved in OriginalName.
type Export struct {
	Name         string     `json:"name"`
	OriginalName string     `json:"original_name,omitempty"`
	Kind         SymbolKind `json:"kind,omitempty"`
	Line         uint32     `json:"line"`
	TypeOnly     bool       `json:"type_only"`
	IsReexport   bool       `json:"is_reexport"`
	Source       string     `json:"source,omitempty"` // module specifier for re-exports
	Wildcard     bool       `json:"wildcard"`         // export * from "..."
	Namespace    bool       `json:"namespace"`        // export * as ns from "..."
}

// LocalSymbol represents a top-level declaration in a file, exported or not.
type LocalSymbol struct {
	Name     string     `json:"name"`
	Kind     SymbolKind `json:"kind"`
	Line     uint32     `json:"line"`
	EndLine  uint32     `json:"end_line"`
	Exported bool       `json:"exported"`
}

// FileAnalysis holds the per-file facts the reachability passes consume.
// Usage identifiers are tracked per top-level symbol (the identifiers
// appearing inside that symbol's declaration, excluding its own defining
// name) plus a separate set for identifiers outside any declaration.
type FileAnalysis struct {
	Path       string                     `json:"path"` // canonical project-relative key
	Lines      int                        `json:"lines"`
	Imports    []Import                   `json:"imports"`
	Exports    []Export                   `json:"exports"`
	Symbols    []LocalSymbol              `json:"symbols"`
	SymbolUses map[string]map[string]bool `json:"-"` // symbol name -> identifiers used in its span
	TopUses    map[string]bool            `json:"-"` // identifiers used outside all top-level symbols
	Used       map[string]bool            `json:"-"` // union of the above
	Implements map[string]bool            `json:"-"` // names appearing in implements/extends clauses
}

// NewFileAnalysis creates an empty analysis for a canonical file key.
func NewFileAnalysis(key string) *FileAnalysis {
	return &FileAnalysis{
		Path:       key,
		Imports:    make([]Import, 0),
		Exports:    make([]Export, 0),
		Symbols:    make([]LocalSymbol, 0),
		SymbolUses: make(map[string]map[string]bool),
		TopUses:    make(map[string]bool),
		Used:       make(map[string]bool),
		Implements: make(map[string]bool),
	}
}

// UsedOutside reports whether name is referenced anywhere in the file
// other than inside the declarations named by self.
func (f *FileAnalysis) UsedOutside(name string, self ...string) bool {
	if f.TopUses[name] {
		return true
	}
	skip := make(map[string]bool, len(self))
	for _, s := range self {
		skip[s] = true
	}
	for sym, uses := range f.SymbolUses {
		if skip[sym] {
			continue
		}
		if uses[name] {
			return true
		}
	}
	return false
}

// ExportByName returns the export record for an exposed name, if any.
func (f *FileAnalysis) ExportByName(name string) *Export {
	for i := range f.Exports {
		if f.Exports[i].Name == name {
			return &f.Exports[i]
		}
	}
	return nil
}

// FileSymbol is the pseudo-symbol name representing a whole file in the
// dependency graph. Imports hang off this node so that a file's own
// imports keep their targets alive independently of the file's exports.
const FileSymbol = "__file__"

// FolderSymbol is the pseudo-symbol name used for folder-level issues.
const FolderSymbol = "__folder__"

// SymbolKey uniquely identifies a symbol as a (file, name) pair.
// File is the canonical project-relative path.
type SymbolKey struct {
	File string `json:"file"`
	Name string `json:"name"`
}

// FileKey returns the pseudo-key representing the file itself.
func FileKey(path string) SymbolKey {
	return SymbolKey{File: path, Name: FileSymbol}
}

// IsFile reports whether the key is a file pseudo-key.
func (k SymbolKey) IsFile() bool {
	return k.Name == FileSymbol
}

// String returns file:name for debugging and stable map iteration ordering.
func (k SymbolKey) String() string {
	return k.File + ":" + k.Name
}

// IssueKind classifies a reported finding.
type IssueKind string

const (
	IssueDeadSymbol   IssueKind = "dead_symbol"
	IssueDeadFile     IssueKind = "dead_file"
	IssueDeadFolder   IssueKind = "dead_folder"
	IssueUnusedImport IssueKind = "unused_import"
	IssueUnusedSymbol IssueKind = "unused_symbol"
)

// String returns the string representation.
func (k IssueKind) String() string {
	return string(k)
}

// Severity indicates how actionable an issue is.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// String returns the string representation.
func (s Severity) String() string {
	return string(s)
}

// Issue is a single reported finding.
type Issue struct {
	Kind           IssueKind `json:"kind"`
	File           string    `json:"file"`
	Line           uint32    `json:"line"`
	Symbol         string    `json:"symbol"`
	Severity       Severity  `json:"severity"`
	Message        string    `json:"message"`
	Recommendation string    `json:"recommendation,omitempty"`
	Transitive     bool      `json:"transitive,omitempty"`
	ChainSize      int       `json:"chain_size,omitempty"`   // dead symbols removable together with this one
	SymbolCount    int       `json:"symbol_count,omitempty"` // symbols in a dead file, files in a dead folder
	ContextHash    string    `json:"context_hash,omitempty"`
}

// Summary provides aggregate statistics for a run.
type Summary struct {
	FilesAnalyzed  int     `json:"files_analyzed"`
	SymbolsTracked int     `json:"symbols_tracked"`
	DeadExports    int     `json:"dead_exports"`
	TransitiveDead int     `json:"transitive_dead"`
	DeadFiles      int     `json:"dead_files"`
	DeadFolders    int     `json:"dead_folders"`
	UnusedImports  int     `json:"unused_imports"`
	UnusedSymbols  int     `json:"unused_symbols"`
	Passes         int     `json:"passes"`
	MeanChainSize  float64 `json:"mean_chain_size,omitempty"`
	P90ChainSize   float64 `json:"p90_chain_size,omitempty"`
}

// Analysis is the full result of a dead export analysis.
type Analysis struct {
	Issues  []Issue `json:"issues"`
	Summary Summary `json:"summary"`
}

// IsTestFile reports whether the path belongs to test or story code.
// Test files contribute imports to the graph but are never reported on.
func IsTestFile(path string) bool {
	base := path
	if i := strings.LastIndexByte(path, '/'); i >= 0 {
		base = path[i+1:]
	}
	return strings.Contains(base, ".test.") ||
		strings.Contains(base, ".spec.") ||
		strings.Contains(base, ".stories.") ||
		strings.Contains(path, "/__tests__/") ||
		strings.HasPrefix(path, "__tests__/") ||
		strings.Contains(path, "/__mocks__/") ||
		strings.HasPrefix(path, "__mocks__/")
}

// isBarrelFile reports whether the path is an index module.
func isBarrelFile(path string) bool {
	base := path
	if i := strings.LastIndexByte(path, '/'); i >= 0 {
		base = path[i+1:]
	}
	if i := strings.IndexByte(base, '.'); i >= 0 {
		base = base[:i]
	}
	return base == "index"
}

// computeContextHash produces a short stable fingerprint for an issue so
// downstream tooling can track findings across runs.
func computeContextHash(kind IssueKind, file, symbol string, line uint32) string {
	data := string(kind) + ":" + file + ":" + symbol + ":" + strconv.FormatUint(uint64(line), 10)
	hash := blake3.Sum256([]byte(data))
	return hex.EncodeToString(hash[:8])
}
