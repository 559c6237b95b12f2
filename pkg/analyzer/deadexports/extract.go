package deadexports

import (
	"bytes"
	"strings"

	"github.com/panbanda/vestige/pkg/parser"
	sitter "github.com/smacker/go-tree-sitter"
)

// SourceExtractor produces per-file symbol facts from a parsed AST.
// Implementations must be safe for concurrent use; the default extractor
// is stateless.
type SourceExtractor interface {
	Extract(result *parser.ParseResult, key string) *FileAnalysis
}

// NewExtractor returns the default AST-based extractor.
func NewExtractor() SourceExtractor {
	return astExtractor{}
}

type astExtractor struct{}

// Extract walks the top-level statements of a module and collects imports,
// exports, local symbols and identifier usage. Usage inside import/export
// clauses is excluded so that `import { foo }` does not count as a use of foo.
func (astExtractor) Extract(result *parser.ParseResult, key string) *FileAnalysis {
	fa := NewFileAnalysis(key)
	if result == nil || result.Tree == nil {
		return fa
	}
	fa.Lines = bytes.Count(result.Source, []byte{'\n'}) + 1

	root := result.Tree.RootNode()
	source := result.Source

	for i := range int(root.NamedChildCount()) {
		stmt := root.NamedChild(i)
		switch stmt.Type() {
		case "import_statement":
			collectImport(stmt, source, fa)
		case "export_statement":
			collectExport(stmt, source, fa)
		default:
			if syms := collectDeclaration(stmt, source, fa, false); syms == nil {
				// Plain statement: identifiers used at module top level.
				collectUses(stmt, source, nil, fa.TopUses)
			}
		}
	}

	// Used is the union of top-level and per-symbol usage.
	for name := range fa.TopUses {
		fa.Used[name] = true
	}
	for _, uses := range fa.SymbolUses {
		for name := range uses {
			fa.Used[name] = true
		}
	}
	return fa
}

// collectImport records the bindings introduced by one import statement.
func collectImport(stmt *sitter.Node, source []byte, fa *FileAnalysis) {
	src := stripQuotes(parser.GetNodeText(stmt.ChildByFieldName("source"), source))
	if src == "" {
		return
	}
	line := stmt.StartPoint().Row + 1
	typeOnly := hasKeywordChild(stmt, "type")

	var clause *sitter.Node
	for i := range int(stmt.NamedChildCount()) {
		if c := stmt.NamedChild(i); c.Type() == "import_clause" {
			clause = c
			break
		}
	}
	if clause == nil {
		fa.Imports = append(fa.Imports, Import{
			Source: src,
			Line:   line,
			Kind:   ImportSideEffect,
		})
		return
	}

	for i := range int(clause.NamedChildCount()) {
		part := clause.NamedChild(i)
		switch part.Type() {
		case "identifier":
			fa.Imports = append(fa.Imports, Import{
				Name:         parser.GetNodeText(part, source),
				OriginalName: "default",
				Source:       src,
				Line:         line,
				Kind:         ImportDefault,
				TypeOnly:     typeOnly,
			})
		case "namespace_import":
			for j := range int(part.NamedChildCount()) {
				if id := part.NamedChild(j); id.Type() == "identifier" {
					fa.Imports = append(fa.Imports, Import{
						Name:         parser.GetNodeText(id, source),
						OriginalName: "*",
						Source:       src,
						Line:         line,
						Kind:         ImportNamespace,
						TypeOnly:     typeOnly,
					})
				}
			}
		case "named_imports":
			for j := range int(part.NamedChildCount()) {
				spec := part.NamedChild(j)
				if spec.Type() != "import_specifier" {
					continue
				}
				name := parser.GetNodeText(spec.ChildByFieldName("name"), source)
				if name == "" {
					continue
				}
				local := name
				if alias := spec.ChildByFieldName("alias"); alias != nil {
					local = parser.GetNodeText(alias, source)
				}
				fa.Imports = append(fa.Imports, Import{
					Name:         local,
					OriginalName: name,
					Source:       src,
					Line:         spec.StartPoint().Row + 1,
					Kind:         ImportNamed,
					TypeOnly:     typeOnly || hasKeywordChild(spec, "type"),
				})
			}
		}
	}
}

// collectExport records the names exposed by one export statement, along
// with any local declaration it carries.
func collectExport(stmt *sitter.Node, source []byte, fa *FileAnalysis) {
	line := stmt.StartPoint().Row + 1
	typeOnly := hasKeywordChild(stmt, "type")
	src := stripQuotes(parser.GetNodeText(stmt.ChildByFieldName("source"), source))

	if src != "" {
		collectReexport(stmt, source, fa, src, line, typeOnly)
		return
	}

	if hasKeywordChild(stmt, "default") {
		exp := Export{Name: "default", Line: line}
		if decl := stmt.ChildByFieldName("declaration"); decl != nil {
			syms := collectDeclaration(decl, source, fa, true)
			if len(syms) > 0 {
				exp.OriginalName = syms[0].Name
				exp.Kind = syms[0].Kind
			}
		} else if value := stmt.ChildByFieldName("value"); value != nil {
			if value.Type() == "identifier" {
				exp.OriginalName = parser.GetNodeText(value, source)
			}
			collectUses(value, source, nil, fa.TopUses)
		}
		fa.Exports = append(fa.Exports, exp)
		return
	}

	if decl := stmt.ChildByFieldName("declaration"); decl != nil {
		for _, sym := range collectDeclaration(decl, source, fa, true) {
			fa.Exports = append(fa.Exports, Export{
				Name:         sym.Name,
				OriginalName: sym.Name,
				Kind:         sym.Kind,
				Line:         sym.Line,
				TypeOnly:     typeOnly,
			})
		}
		return
	}

	// export { a, b as c }
	for i := range int(stmt.NamedChildCount()) {
		clause := stmt.NamedChild(i)
		if clause.Type() != "export_clause" {
			continue
		}
		for j := range int(clause.NamedChildCount()) {
			spec := clause.NamedChild(j)
			if spec.Type() != "export_specifier" {
				continue
			}
			name := parser.GetNodeText(spec.ChildByFieldName("name"), source)
			if name == "" {
				continue
			}
			exposed := name
			if alias := spec.ChildByFieldName("alias"); alias != nil {
				exposed = parser.GetNodeText(alias, source)
			}
			fa.Exports = append(fa.Exports, Export{
				Name:         exposed,
				OriginalName: name,
				Line:         spec.StartPoint().Row + 1,
				TypeOnly:     typeOnly || hasKeywordChild(spec, "type"),
			})
		}
	}
}

// collectReexport handles the export-from forms: named, wildcard and namespace.
func collectReexport(stmt *sitter.Node, source []byte, fa *FileAnalysis, src string, line uint32, typeOnly bool) {
	handled := false
	for i := range int(stmt.NamedChildCount()) {
		part := stmt.NamedChild(i)
		switch part.Type() {
		case "namespace_export":
			// export * as ns from "..."
			handled = true
			for j := range int(part.NamedChildCount()) {
				if id := part.NamedChild(j); id.Type() == "identifier" {
					fa.Exports = append(fa.Exports, Export{
						Name:       parser.GetNodeText(id, source),
						Line:       line,
						TypeOnly:   typeOnly,
						IsReexport: true,
						Source:     src,
						Namespace:  true,
					})
				}
			}
		case "export_clause":
			// export { a, b as c } from "..."
			handled = true
			for j := range int(part.NamedChildCount()) {
				spec := part.NamedChild(j)
				if spec.Type() != "export_specifier" {
					continue
				}
				name := parser.GetNodeText(spec.ChildByFieldName("name"), source)
				if name == "" {
					continue
				}
				exposed := name
				if alias := spec.ChildByFieldName("alias"); alias != nil {
					exposed = parser.GetNodeText(alias, source)
				}
				fa.Exports = append(fa.Exports, Export{
					Name:         exposed,
					OriginalName: name,
					Line:         spec.StartPoint().Row + 1,
					TypeOnly:     typeOnly || hasKeywordChild(spec, "type"),
					IsReexport:   true,
					Source:       src,
				})
			}
		}
	}
	if !handled {
		// export * from "..."
		fa.Exports = append(fa.Exports, Export{
			Line:       line,
			TypeOnly:   typeOnly,
			IsReexport: true,
			Source:     src,
			Wildcard:   true,
		})
	}
}

// collectDeclaration records the top-level symbols declared by node and
// their identifier usage. Returns nil when node is not a declaration,
// and a non-nil (possibly empty) slice when it is.
func collectDeclaration(node *sitter.Node, source []byte, fa *FileAnalysis, exported bool) []LocalSymbol {
	switch node.Type() {
	case "function_declaration", "generator_function_declaration":
		return declareNamed(node, source, fa, KindFunction, exported)
	case "class_declaration", "abstract_class_declaration":
		syms := declareNamed(node, source, fa, KindClass, exported)
		collectHeritage(node, source, fa)
		return syms
	case "interface_declaration":
		return declareNamed(node, source, fa, KindInterface, exported)
	case "type_alias_declaration":
		return declareNamed(node, source, fa, KindType, exported)
	case "enum_declaration":
		return declareNamed(node, source, fa, KindEnum, exported)
	case "lexical_declaration":
		kind := KindConst
		if c := node.Child(0); c != nil && parser.GetNodeText(c, source) == "let" {
			kind = KindLet
		}
		return declareVariables(node, source, fa, kind, exported)
	case "variable_declaration":
		return declareVariables(node, source, fa, KindVar, exported)
	}
	return nil
}

// declareNamed handles declarations with a single name field.
func declareNamed(node *sitter.Node, source []byte, fa *FileAnalysis, kind SymbolKind, exported bool) []LocalSymbol {
	nameNode := node.ChildByFieldName("name")
	name := parser.GetNodeText(nameNode, source)
	if name == "" {
		// Anonymous default export declarations carry no local symbol.
		return []LocalSymbol{}
	}
	sym := LocalSymbol{
		Name:     name,
		Kind:     kind,
		Line:     node.StartPoint().Row + 1,
		EndLine:  node.EndPoint().Row + 1,
		Exported: exported,
	}
	fa.Symbols = append(fa.Symbols, sym)
	uses := ensureUses(fa, name)
	collectUses(node, source, nameNode, uses)
	return []LocalSymbol{sym}
}

// declareVariables handles const/let/var declarations, including
// destructuring patterns where each binding becomes its own symbol.
func declareVariables(node *sitter.Node, source []byte, fa *FileAnalysis, kind SymbolKind, exported bool) []LocalSymbol {
	var syms []LocalSymbol
	for i := range int(node.NamedChildCount()) {
		decl := node.NamedChild(i)
		if decl.Type() != "variable_declarator" {
			continue
		}
		nameNode := decl.ChildByFieldName("name")
		if nameNode == nil {
			continue
		}

		var names []string
		if nameNode.Type() == "identifier" {
			names = []string{parser.GetNodeText(nameNode, source)}
		} else {
			names = patternBindings(nameNode, source)
		}

		for _, name := range names {
			if name == "" {
				continue
			}
			sym := LocalSymbol{
				Name:     name,
				Kind:     kind,
				Line:     decl.StartPoint().Row + 1,
				EndLine:  decl.EndPoint().Row + 1,
				Exported: exported,
			}
			fa.Symbols = append(fa.Symbols, sym)
			syms = append(syms, sym)
			uses := ensureUses(fa, name)
			if value := decl.ChildByFieldName("value"); value != nil {
				collectUses(value, source, nil, uses)
			}
			if typ := decl.ChildByFieldName("type"); typ != nil {
				collectUses(typ, source, nil, uses)
			}
		}
	}
	if syms == nil {
		return []LocalSymbol{}
	}
	return syms
}

// patternBindings extracts the bound names from a destructuring pattern.
func patternBindings(pattern *sitter.Node, source []byte) []string {
	var names []string
	parser.WalkTyped(pattern, source, func(n *sitter.Node, nodeType string, src []byte) bool {
		switch nodeType {
		case "shorthand_property_identifier_pattern", "identifier":
			names = append(names, parser.GetNodeText(n, src))
		case "pair_pattern":
			// `{ key: bound }` binds the value side only.
			if v := n.ChildByFieldName("value"); v != nil {
				names = append(names, patternBindings(v, src)...)
			}
			return false
		}
		return true
	})
	return names
}

// collectHeritage records implements/extends names so that interfaces and
// types realized by classes stay exempt from dead export reporting.
func collectHeritage(class *sitter.Node, source []byte, fa *FileAnalysis) {
	parser.WalkTyped(class, source, func(n *sitter.Node, nodeType string, src []byte) bool {
		switch nodeType {
		case "implements_clause", "extends_clause":
			parser.WalkTyped(n, src, func(id *sitter.Node, idType string, s []byte) bool {
				if idType == "identifier" || idType == "type_identifier" {
					fa.Implements[parser.GetNodeText(id, s)] = true
				}
				return true
			})
			return false
		case "class_body":
			return false
		}
		return true
	})
}

// identifier node types counted as usage. Property accesses like a.b
// surface b as property_identifier, which is deliberately excluded.
var usageNodeTypes = map[string]bool{
	"identifier":                    true,
	"type_identifier":               true,
	"shorthand_property_identifier": true,
}

// collectUses adds every identifier inside node to the given set,
// skipping the subtree rooted at skip (the defining name node).
func collectUses(node *sitter.Node, source []byte, skip *sitter.Node, into map[string]bool) {
	parser.WalkTyped(node, source, func(n *sitter.Node, nodeType string, src []byte) bool {
		if skip != nil && n.StartByte() == skip.StartByte() && n.EndByte() == skip.EndByte() {
			return false
		}
		if usageNodeTypes[nodeType] {
			into[parser.GetNodeText(n, src)] = true
		}
		return true
	})
}

func ensureUses(fa *FileAnalysis, name string) map[string]bool {
	uses, ok := fa.SymbolUses[name]
	if !ok {
		uses = make(map[string]bool)
		fa.SymbolUses[name] = uses
	}
	return uses
}

// hasKeywordChild reports whether node has an anonymous child token with
// the given text, e.g. the `type` in `import type` or the `default` in
// `export default`.
func hasKeywordChild(node *sitter.Node, keyword string) bool {
	for i := range int(node.ChildCount()) {
		c := node.Child(i)
		if !c.IsNamed() && c.Type() == keyword {
			return true
		}
	}
	return false
}

// stripQuotes removes the surrounding quotes from a string literal.
func stripQuotes(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && (s[0] == '"' || s[0] == '\'' || s[0] == '`') {
		return s[1 : len(s)-1]
	}
	return s
}
