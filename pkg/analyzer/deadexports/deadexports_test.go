package deadexports

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"testing"
)

func writeProject(t *testing.T, files map[string]string) (string, []string) {
	t.Helper()
	dir := t.TempDir()
	paths := make([]string, 0, len(files))
	for name, content := range files {
		p := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(p, []byte(content), 0644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return dir, paths
}

func analyzeProject(t *testing.T, files map[string]string, opts ...Option) *Analysis {
	t.Helper()
	dir, paths := writeProject(t, files)
	a := New(append([]Option{WithRoot(dir)}, opts...)...)
	defer a.Close()
	result, err := a.Analyze(context.Background(), paths)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	return result
}

func findIssue(result *Analysis, kind IssueKind, file, symbol string) *Issue {
	for i := range result.Issues {
		issue := &result.Issues[i]
		if issue.Kind == kind && issue.File == file && issue.Symbol == symbol {
			return issue
		}
	}
	return nil
}

func countIssues(result *Analysis, kind IssueKind) int {
	n := 0
	for _, issue := range result.Issues {
		if issue.Kind == kind {
			n++
		}
	}
	return n
}

func TestNew(t *testing.T) {
	a := New()
	if a == nil {
		t.Fatal("New() returned nil")
	}
	if a.maxPasses != DefaultMaxPasses {
		t.Errorf("maxPasses = %d, want %d", a.maxPasses, DefaultMaxPasses)
	}
	if a.barrelMode != BarrelLenient {
		t.Errorf("barrelMode = %q, want %q", a.barrelMode, BarrelLenient)
	}
	if !a.checkImports || !a.checkLocals {
		t.Error("supplementary checks should default to enabled")
	}
	a.Close()
}

func TestNewWithOptions(t *testing.T) {
	a := New(
		WithWorkers(4),
		WithMaxPasses(3),
		WithMaxFileSize(1024),
		WithBarrelMode(BarrelStrict),
		WithRootAlias("@/", "app"),
		WithUnusedImports(false),
		WithUnusedSymbols(false),
	)
	defer a.Close()

	if a.workers != 4 {
		t.Errorf("workers = %d, want 4", a.workers)
	}
	if a.maxPasses != 3 {
		t.Errorf("maxPasses = %d, want 3", a.maxPasses)
	}
	if a.maxFileSize != 1024 {
		t.Errorf("maxFileSize = %d, want 1024", a.maxFileSize)
	}
	if a.barrelMode != BarrelStrict {
		t.Errorf("barrelMode = %q, want strict", a.barrelMode)
	}
	if a.rootAlias != "@/" || a.aliasTarget != "app" {
		t.Errorf("root alias = %q -> %q", a.rootAlias, a.aliasTarget)
	}
	if a.checkImports || a.checkLocals {
		t.Error("supplementary checks should be disabled")
	}
}

func TestAnalyzeEmpty(t *testing.T) {
	a := New()
	defer a.Close()

	result, err := a.Analyze(context.Background(), nil)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if len(result.Issues) != 0 {
		t.Errorf("expected no issues, got %d", len(result.Issues))
	}
}

func TestUnimportedExport(t *testing.T) {
	result := analyzeProject(t, map[string]string{
		"used.ts": `export function helper() { return 1; }
export function unusedHelper() { return 2; }
`,
		"main.ts": `import { helper } from './used';
helper();
`,
	})

	issue := findIssue(result, IssueDeadSymbol, "used.ts", "unusedHelper")
	if issue == nil {
		t.Fatal("expected dead_symbol issue for unusedHelper")
	}
	if issue.Severity != SeverityError {
		t.Errorf("severity = %s, want error", issue.Severity)
	}
	if issue.Transitive {
		t.Error("directly dead export should not be transitive")
	}
	if issue.Line != 2 {
		t.Errorf("line = %d, want 2", issue.Line)
	}
	if got := findIssue(result, IssueDeadSymbol, "used.ts", "helper"); got != nil {
		t.Errorf("helper is imported, got issue: %+v", got)
	}
	if result.Summary.DeadExports != 1 {
		t.Errorf("DeadExports = %d, want 1", result.Summary.DeadExports)
	}
}

func TestImportedExportNeverFlagged(t *testing.T) {
	result := analyzeProject(t, map[string]string{
		"a.ts":    `export const value = 42;`,
		"main.ts": `import { value } from './a';` + "\nconsole.log(value);\n",
	})
	if n := countIssues(result, IssueDeadSymbol); n != 0 {
		t.Errorf("expected no dead symbols, got %d", n)
	}
}

func TestAliasedImportKeepsOriginalAlive(t *testing.T) {
	result := analyzeProject(t, map[string]string{
		"a.ts":    `export function foo() { return 1; }`,
		"main.ts": `import { foo as renamed } from './a';` + "\nrenamed();\n",
	})
	if got := findIssue(result, IssueDeadSymbol, "a.ts", "foo"); got != nil {
		t.Errorf("aliased import should keep foo alive, got %+v", got)
	}
}

func TestDefaultExport(t *testing.T) {
	result := analyzeProject(t, map[string]string{
		"widget.ts": `export default function Widget() { return null; }`,
		"other.ts":  `export default class Other {}`,
		"main.ts":   `import Widget from './widget';` + "\nWidget();\n",
	})

	if got := findIssue(result, IssueDeadSymbol, "widget.ts", "default"); got != nil {
		t.Errorf("imported default should be alive, got %+v", got)
	}
	// other.ts's default is dead, which makes the whole file dead.
	if findIssue(result, IssueDeadFile, "other.ts", FileSymbol) == nil {
		t.Error("expected dead_file issue for other.ts")
	}
}

func TestNamespaceImportKeepsAllExportsAlive(t *testing.T) {
	result := analyzeProject(t, map[string]string{
		"util.ts": `export function one() { return 1; }
export function two() { return 2; }
`,
		"main.ts": `import * as util from './util';` + "\nutil.one();\n",
	})
	if n := countIssues(result, IssueDeadSymbol); n != 0 {
		t.Errorf("namespace import should keep every export alive, got %d issues", n)
	}
}

func TestInternalUseKeepsExportAlive(t *testing.T) {
	result := analyzeProject(t, map[string]string{
		"fmt.ts": `export function pad(s: string) { return s; }
export function render(s: string) { return pad(s); }
`,
		"main.ts": `import { render } from './fmt';` + "\nrender('x');\n",
	})
	if got := findIssue(result, IssueDeadSymbol, "fmt.ts", "pad"); got != nil {
		t.Errorf("pad is used by live render, got %+v", got)
	}
}

func TestStringLiteralIsNotUsage(t *testing.T) {
	result := analyzeProject(t, map[string]string{
		"a.ts": `export function helper() { return 1; }`,
		"main.ts": `import { helper } from './a';
helper();
export const label = "unusedThing";
// unusedThing mentioned in a comment
`,
		"entry.ts": `import { label } from './main';` + "\nconsole.log(label);\n",
		"b.ts":     `export function unusedThing() { return 2; }`,
	})
	if findIssue(result, IssueDeadSymbol, "b.ts", "unusedThing") == nil &&
		findIssue(result, IssueDeadFile, "b.ts", FileSymbol) == nil {
		t.Error("string/comment mentions must not count as usage")
	}
	if got := findIssue(result, IssueDeadSymbol, "a.ts", "helper"); got != nil {
		t.Errorf("helper is imported by a live file, got %+v", got)
	}
}

func TestReExportChainKeepsOriginAlive(t *testing.T) {
	result := analyzeProject(t, map[string]string{
		"a.ts":    `export function foo() { return 1; }`,
		"b.ts":    `export { foo } from './a';`,
		"main.ts": `import { foo } from './b';` + "\nfoo();\n",
	})
	if got := findIssue(result, IssueDeadSymbol, "a.ts", "foo"); got != nil {
		t.Errorf("origin behind re-export chain should be alive, got %+v", got)
	}
	if n := countIssues(result, IssueDeadFile); n != 0 {
		t.Errorf("expected no dead files, got %d", n)
	}
}

func TestWildcardReExport(t *testing.T) {
	result := analyzeProject(t, map[string]string{
		"impl.ts": `export function alpha() { return 1; }
export function beta() { return 2; }
`,
		"barrel.ts": `export * from './impl';`,
		"main.ts":   `import { alpha } from './barrel';` + "\nalpha();\n",
	})
	if got := findIssue(result, IssueDeadSymbol, "impl.ts", "alpha"); got != nil {
		t.Errorf("alpha reached through wildcard should be alive, got %+v", got)
	}
	if findIssue(result, IssueDeadSymbol, "impl.ts", "beta") == nil {
		t.Error("beta is never imported and should be dead")
	}
}

func TestReExportCycleTerminates(t *testing.T) {
	result := analyzeProject(t, map[string]string{
		"a.ts": `export * from './b';
export function fromA() { return 1; }
`,
		"b.ts": `export * from './a';
export function fromB() { return 2; }
`,
		"main.ts": `import { fromA } from './b';` + "\nfromA();\n",
	})
	if got := findIssue(result, IssueDeadSymbol, "a.ts", "fromA"); got != nil {
		t.Errorf("fromA imported through the cycle should be alive, got %+v", got)
	}
}

func TestRootAliasResolution(t *testing.T) {
	result := analyzeProject(t, map[string]string{
		"src/lib/helper.ts": `export function deep() { return 1; }`,
		"src/main.ts":       `import { deep } from '~/lib/helper';` + "\ndeep();\n",
	})
	if got := findIssue(result, IssueDeadSymbol, "src/lib/helper.ts", "deep"); got != nil {
		t.Errorf("root alias import should resolve, got %+v", got)
	}
}

func TestTransitiveDeadAcrossFiles(t *testing.T) {
	result := analyzeProject(t, map[string]string{
		"util.ts": `export function util() { return 1; }`,
		"orphan.ts": `import { util } from './util';
export function orphanFn() { return util(); }
`,
		"used.ts": `export function helper() { return 1; }`,
		"main.ts": `import { helper } from './used';` + "\nhelper();\n",
	})

	if findIssue(result, IssueDeadFile, "orphan.ts", FileSymbol) == nil {
		t.Error("expected dead_file issue for orphan.ts")
	}
	if findIssue(result, IssueDeadFile, "util.ts", FileSymbol) == nil {
		t.Error("util.ts is only imported by dead orphan.ts, expected dead_file")
	}
	// Symbol issues fold into the file issues.
	if got := findIssue(result, IssueDeadSymbol, "orphan.ts", "orphanFn"); got != nil {
		t.Errorf("symbol issue should fold into dead_file, got %+v", got)
	}
	if result.Summary.TransitiveDead == 0 {
		t.Error("expected transitively dead symbols in summary")
	}
}

func TestTransitiveDeadChainAcrossThreeFiles(t *testing.T) {
	result := analyzeProject(t, map[string]string{
		"base.ts": `export function base() { return 1; }`,
		"mid.ts": `import { base } from './base';
export function mid() { return base(); }
`,
		"top.ts": `import { mid } from './mid';
export function top() { return mid(); }
`,
		"main.ts": `export {};`,
	})

	for _, file := range []string{"base.ts", "mid.ts", "top.ts"} {
		if findIssue(result, IssueDeadFile, file, FileSymbol) == nil {
			t.Errorf("expected dead_file issue for %s", file)
		}
	}
	if result.Summary.TransitiveDead != 2 {
		t.Errorf("TransitiveDead = %d, want 2", result.Summary.TransitiveDead)
	}
	if result.Summary.DeadExports != 1 {
		t.Errorf("DeadExports = %d, want 1", result.Summary.DeadExports)
	}
}

func TestChainSize(t *testing.T) {
	result := analyzeProject(t, map[string]string{
		"chain.ts": `export function deadChain() { return step1(); }
function step1() { return step2(); }
function step2() { return 1; }
export function live() { return 2; }
`,
		"main.ts": `import { live } from './chain';` + "\nlive();\n",
	})

	issue := findIssue(result, IssueDeadSymbol, "chain.ts", "deadChain")
	if issue == nil {
		t.Fatal("expected dead_symbol issue for deadChain")
	}
	if issue.ChainSize != 3 {
		t.Errorf("ChainSize = %d, want 3", issue.ChainSize)
	}

	step1 := findIssue(result, IssueDeadSymbol, "chain.ts", "step1")
	if step1 == nil {
		t.Fatal("expected transitive issue for step1")
	}
	if !step1.Transitive || step1.Severity != SeverityWarning {
		t.Errorf("step1 should be a transitive warning, got %+v", step1)
	}
	if findIssue(result, IssueDeadSymbol, "chain.ts", "step2") == nil {
		t.Error("expected transitive issue for step2")
	}
	// Helpers swallowed by the dead chain must not double-report.
	if findIssue(result, IssueUnusedSymbol, "chain.ts", "step1") != nil {
		t.Error("dead step1 should not also be an unused_symbol")
	}
	if result.Summary.MeanChainSize == 0 {
		t.Error("expected chain statistics in summary")
	}
}

func TestDeadFolder(t *testing.T) {
	result := analyzeProject(t, map[string]string{
		"legacy/old1.ts": `export function a() { return 1; }`,
		"legacy/old2.ts": `export function b() { return 2; }`,
		"used.ts":        `export function helper() { return 1; }`,
		"main.ts":        `import { helper } from './used';` + "\nhelper();\n",
	})

	if findIssue(result, IssueDeadFolder, "legacy", FolderSymbol) == nil {
		t.Fatal("expected dead_folder issue for legacy")
	}
	if findIssue(result, IssueDeadFile, "legacy/old1.ts", FileSymbol) != nil {
		t.Error("dead_file issues inside a dead folder should fold into it")
	}
	if result.Summary.DeadFolders != 1 {
		t.Errorf("DeadFolders = %d, want 1", result.Summary.DeadFolders)
	}
}

func TestSingleDeadFileIsNotAFolder(t *testing.T) {
	result := analyzeProject(t, map[string]string{
		"lone/old.ts": `export function a() { return 1; }`,
		"main.ts":     `export {};`,
	})
	if countIssues(result, IssueDeadFolder) != 0 {
		t.Error("folders need at least two analyzable files to be reported")
	}
	if findIssue(result, IssueDeadFile, "lone/old.ts", FileSymbol) == nil {
		t.Error("expected dead_file issue for lone/old.ts")
	}
}

func TestPartiallyDeadFolderNotReported(t *testing.T) {
	result := analyzeProject(t, map[string]string{
		"mixed/dead.ts": `export function gone() { return 1; }`,
		"mixed/live.ts": `export function kept() { return 2; }`,
		"main.ts":       `import { kept } from './mixed/live';` + "\nkept();\n",
	})
	if countIssues(result, IssueDeadFolder) != 0 {
		t.Error("a folder with a live file must not be reported as dead")
	}
	if findIssue(result, IssueDeadFile, "mixed/dead.ts", FileSymbol) == nil {
		t.Error("the dead file inside the mixed folder should still be reported")
	}
}

func TestTestFilesContributeImportsButNoIssues(t *testing.T) {
	result := analyzeProject(t, map[string]string{
		"mod.ts": `export function tested() { return 1; }
export function untested() { return 2; }
`,
		"mod.test.ts": `import { tested } from './mod';
export function testUtil() { return tested(); }
`,
		"main.ts": `export {};`,
	})

	if got := findIssue(result, IssueDeadSymbol, "mod.ts", "tested"); got != nil {
		t.Errorf("test file imports keep symbols alive, got %+v", got)
	}
	if findIssue(result, IssueDeadSymbol, "mod.ts", "untested") == nil {
		t.Error("untested export should be dead")
	}
	for _, issue := range result.Issues {
		if issue.File == "mod.test.ts" {
			t.Errorf("test files must not be reported on, got %+v", issue)
		}
	}
}

func TestBarrelLenient(t *testing.T) {
	result := analyzeProject(t, map[string]string{
		"pkg/a.ts":     `export function a() { return 1; }`,
		"pkg/b.ts":     `export function b() { return 2; }`,
		"pkg/index.ts": `export { a } from './a';` + "\n" + `export { b } from './b';`,
		"main.ts":      `import { a } from './pkg';` + "\na();\n",
	})

	for _, issue := range result.Issues {
		if issue.File == "pkg/index.ts" {
			t.Errorf("lenient mode must not flag barrel entries, got %+v", issue)
		}
	}
	// The unexported origin is still dead even in lenient mode.
	if findIssue(result, IssueDeadSymbol, "pkg/b.ts", "b") == nil &&
		findIssue(result, IssueDeadFile, "pkg/b.ts", FileSymbol) == nil {
		t.Error("origin b is never imported and should be reported")
	}
}

func TestBarrelStrict(t *testing.T) {
	result := analyzeProject(t, map[string]string{
		"pkg/a.ts":     `export function a() { return 1; }`,
		"pkg/b.ts":     `export function b() { return 2; }`,
		"pkg/index.ts": `export { a } from './a';` + "\n" + `export { b } from './b';`,
		"main.ts":      `import { a } from './pkg';` + "\na();\n",
	}, WithBarrelMode(BarrelStrict))

	found := false
	for _, issue := range result.Issues {
		if issue.File == "pkg/index.ts" && issue.Symbol == "b" {
			found = true
		}
	}
	if !found {
		t.Error("strict mode should flag the unimported barrel entry b")
	}
}

func TestPageDefaultExempt(t *testing.T) {
	result := analyzeProject(t, map[string]string{
		"pages/home.tsx": `export default function Home() { return null; }`,
		"main.ts":        `export {};`,
	})
	if got := findIssue(result, IssueDeadSymbol, "pages/home.tsx", "default"); got != nil {
		t.Errorf("page default exports are framework entry points, got %+v", got)
	}
	if got := findIssue(result, IssueDeadFile, "pages/home.tsx", FileSymbol); got != nil {
		t.Errorf("page files must not be dead files, got %+v", got)
	}
}

func TestImplementsExemption(t *testing.T) {
	result := analyzeProject(t, map[string]string{
		"shapes.ts": `export interface Shape { area(): number }
class Circle implements Shape { area() { return 3; } }
new Circle();
`,
		"main.ts": `export {};`,
	})
	if got := findIssue(result, IssueDeadSymbol, "shapes.ts", "Shape"); got != nil {
		t.Errorf("implemented interface should be exempt, got %+v", got)
	}
}

func TestExemptSuffixes(t *testing.T) {
	result := analyzeProject(t, map[string]string{
		"button.ts": `export interface ButtonProps { label: string }
export function orphaned() { return 1; }
`,
		"main.ts": `export {};`,
	})
	if got := findIssue(result, IssueDeadSymbol, "button.ts", "ButtonProps"); got != nil {
		t.Errorf("Props suffix should be exempt, got %+v", got)
	}
	if findIssue(result, IssueDeadSymbol, "button.ts", "orphaned") == nil {
		t.Error("orphaned should still be dead")
	}
}

func TestUnusedImport(t *testing.T) {
	result := analyzeProject(t, map[string]string{
		"a.ts": `export function helper() { return 1; }
export function extra() { return 2; }
`,
		"main.ts": `import { helper, extra } from './a';
import type { Kind } from './types';
helper();
`,
		"types.ts": `export type Kind = string;`,
	})

	issue := findIssue(result, IssueUnusedImport, "main.ts", "extra")
	if issue == nil {
		t.Fatal("expected unused_import for extra")
	}
	if issue.Severity != SeverityWarning {
		t.Errorf("severity = %s, want warning", issue.Severity)
	}
	if findIssue(result, IssueUnusedImport, "main.ts", "Kind") != nil {
		t.Error("type-only imports should be skipped")
	}
	// Imported names count as used even when the import is unused.
	if findIssue(result, IssueDeadSymbol, "a.ts", "extra") != nil {
		t.Error("imported extra should not be a dead symbol")
	}
}

func TestUnusedLocalSymbol(t *testing.T) {
	result := analyzeProject(t, map[string]string{
		"mod.ts": `export function live() { return 1; }
function internal() { return 2; }
const _scratch = 3;
`,
		"main.ts": `import { live } from './mod';` + "\nlive();\n",
	})

	issue := findIssue(result, IssueUnusedSymbol, "mod.ts", "internal")
	if issue == nil {
		t.Fatal("expected unused_symbol for internal")
	}
	if issue.Severity != SeverityError {
		t.Errorf("severity = %s, want error", issue.Severity)
	}
	if findIssue(result, IssueUnusedSymbol, "mod.ts", "_scratch") != nil {
		t.Error("underscore-prefixed locals are intentional and skipped")
	}
}

func TestUnderscorePrefixedExportStillReported(t *testing.T) {
	// The underscore convention covers locals; an export is public API
	// regardless of its name.
	result := analyzeProject(t, map[string]string{
		"mod.ts": `export function _hidden() { return 1; }
export function visible() { return 2; }
`,
		"main.ts": `import { visible } from './mod';` + "\nvisible();\n",
	})
	if findIssue(result, IssueDeadSymbol, "mod.ts", "_hidden") == nil {
		t.Error("expected dead_symbol issue for _hidden")
	}
}

func TestMutuallyRecursiveExportsStayLive(t *testing.T) {
	// Neither is promotable because each has a live dependent; the pair
	// is left unreported rather than speculatively removed.
	result := analyzeProject(t, map[string]string{
		"pair.ts": `export function even(n: number) { return n === 0 || odd(n - 1); }
export function odd(n: number) { return n !== 0 && even(n - 1); }
`,
		"main.ts": `export {};`,
	})
	if findIssue(result, IssueDeadSymbol, "pair.ts", "even") != nil ||
		findIssue(result, IssueDeadSymbol, "pair.ts", "odd") != nil {
		t.Error("mutually recursive exported pair should stay unreported")
	}
}

func TestIgnorePatterns(t *testing.T) {
	result := analyzeProject(t, map[string]string{
		"gen/schema.ts": `export function generated() { return 1; }`,
		"main.ts":       `export {};`,
	}, WithIgnorePatterns([]string{"gen/"}))

	for _, issue := range result.Issues {
		if issue.File == "gen/schema.ts" {
			t.Errorf("ignored files must not be reported, got %+v", issue)
		}
	}
}

func TestUnreadableFileYieldsEmptyFacts(t *testing.T) {
	dir, paths := writeProject(t, map[string]string{
		"a.ts": `export function ok() { return 1; }`,
	})
	paths = append(paths, filepath.Join(dir, "missing.ts"))

	a := New(WithRoot(dir))
	defer a.Close()
	result, err := a.Analyze(context.Background(), paths)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	for _, issue := range result.Issues {
		if issue.File == "missing.ts" {
			t.Errorf("missing file produced issue %+v", issue)
		}
	}
}

func TestCanceledContext(t *testing.T) {
	dir, paths := writeProject(t, map[string]string{
		"a.ts": `export function ok() { return 1; }`,
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	a := New(WithRoot(dir))
	defer a.Close()
	if _, err := a.Analyze(ctx, paths); err == nil {
		t.Error("expected error from canceled context")
	}
}

func TestDeterministicOutput(t *testing.T) {
	files := map[string]string{
		"a.ts":    `export function one() { return 1; }` + "\n" + `export function deadA() { return 0; }`,
		"b.ts":    `export function two() { return 2; }` + "\n" + `export function deadB() { return 0; }`,
		"c.ts":    `export function deadC() { return deadHelper(); }` + "\n" + `function deadHelper() { return 3; }`,
		"main.ts": `import { one } from './a';` + "\n" + `import { two } from './b';` + "\none(); two();\n",
	}

	first := analyzeProject(t, files, WithWorkers(4))
	for range 3 {
		next := analyzeProject(t, files, WithWorkers(4))
		if !reflect.DeepEqual(stripHashes(first.Issues), stripHashes(next.Issues)) {
			t.Fatal("issue list is not deterministic across runs")
		}
		if first.Summary != next.Summary {
			t.Fatalf("summary differs across runs: %+v vs %+v", first.Summary, next.Summary)
		}
	}
}

// stripHashes removes context hashes before comparison; they are derived
// from the other fields anyway.
func stripHashes(issues []Issue) []Issue {
	out := make([]Issue, len(issues))
	copy(out, issues)
	for i := range out {
		out[i].ContextHash = ""
	}
	return out
}

func TestAnalyzeFileSingle(t *testing.T) {
	dir, paths := writeProject(t, map[string]string{
		"single.ts": `import { x } from './dep';
export function visible() { return x; }
`,
	})

	a := New(WithRoot(dir))
	defer a.Close()
	fa, err := a.AnalyzeFile(paths[0])
	if err != nil {
		t.Fatalf("AnalyzeFile failed: %v", err)
	}
	if fa.Path != "single.ts" {
		t.Errorf("Path = %q, want single.ts", fa.Path)
	}
	if len(fa.Imports) != 1 || len(fa.Exports) != 1 {
		t.Errorf("imports = %d, exports = %d, want 1 and 1", len(fa.Imports), len(fa.Exports))
	}
}
