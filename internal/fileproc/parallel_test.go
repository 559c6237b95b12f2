package fileproc

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"sync/atomic"
	"testing"

	"github.com/panbanda/vestige/pkg/parser"
)

func writeFixtures(t *testing.T, n int) []string {
	t.Helper()
	dir := t.TempDir()
	files := make([]string, 0, n)
	for i := 0; i < n; i++ {
		path := filepath.Join(dir, "file"+string(rune('a'+i))+".ts")
		if err := os.WriteFile(path, []byte(`export const x = 1;`), 0644); err != nil {
			t.Fatalf("write: %v", err)
		}
		files = append(files, path)
	}
	return files
}

func TestMapFiles(t *testing.T) {
	files := writeFixtures(t, 5)

	results := MapFiles(files, func(p *parser.Parser, path string) (string, error) {
		if _, err := p.ParseFile(path); err != nil {
			return "", err
		}
		return filepath.Base(path), nil
	})

	if len(results) != len(files) {
		t.Fatalf("results = %d, want %d", len(results), len(files))
	}
	sort.Strings(results)
	if results[0] != "filea.ts" {
		t.Errorf("results[0] = %q", results[0])
	}
}

func TestMapFilesEmpty(t *testing.T) {
	results := MapFiles(nil, func(p *parser.Parser, path string) (int, error) {
		return 0, nil
	})
	if results != nil {
		t.Errorf("expected nil results, got %v", results)
	}
}

func TestMapFilesNSkipsErrors(t *testing.T) {
	files := writeFixtures(t, 3)
	files = append(files, "/nonexistent/missing.ts")

	var errCount atomic.Int32
	var progress atomic.Int32
	results := MapFilesN(files, 2, func(p *parser.Parser, path string) (string, error) {
		if _, err := os.Stat(path); err != nil {
			return "", err
		}
		return path, nil
	}, func() {
		progress.Add(1)
	}, func(path string, err error) {
		errCount.Add(1)
	})

	if len(results) != 3 {
		t.Errorf("results = %d, want 3", len(results))
	}
	if errCount.Load() != 1 {
		t.Errorf("errors = %d, want 1", errCount.Load())
	}
	if progress.Load() != int32(len(files)) {
		t.Errorf("progress calls = %d, want %d", progress.Load(), len(files))
	}
}

func TestMapFilesWithContext(t *testing.T) {
	files := writeFixtures(t, 4)

	results, errs := MapFilesWithContext(context.Background(), files, 0, func(p *parser.Parser, path string) (int, error) {
		result, err := p.ParseFile(path)
		if err != nil {
			return 0, err
		}
		return int(result.Tree.RootNode().NamedChildCount()), nil
	}, nil)

	if errs != nil {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if len(results) != len(files) {
		t.Errorf("results = %d, want %d", len(results), len(files))
	}
}

func TestMapFilesWithContextCollectsErrors(t *testing.T) {
	files := writeFixtures(t, 2)
	sentinel := errors.New("boom")

	results, errs := MapFilesWithContext(context.Background(), files, 0, func(p *parser.Parser, path string) (string, error) {
		if filepath.Base(path) == "fileb.ts" {
			return "", sentinel
		}
		return path, nil
	}, nil)

	if len(results) != 1 {
		t.Errorf("results = %d, want 1", len(results))
	}
	if errs == nil || !errs.HasErrors() {
		t.Fatal("expected collected errors")
	}
	if len(errs.Errors) != 1 || !errors.Is(errs.Errors[0].Err, sentinel) {
		t.Errorf("errors = %v", errs.Errors)
	}
}

func TestMapFilesWithContextCanceled(t *testing.T) {
	files := writeFixtures(t, 4)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, errs := MapFilesWithContext(ctx, files, 1, func(p *parser.Parser, path string) (string, error) {
		return path, nil
	}, nil)

	if errs == nil || !errs.HasErrors() {
		t.Error("expected context errors after cancellation")
	}
}

func TestProcessingErrors(t *testing.T) {
	errs := &ProcessingErrors{}
	if errs.HasErrors() {
		t.Error("new collection should be empty")
	}
	if errs.Error() != "no errors" {
		t.Errorf("empty Error() = %q", errs.Error())
	}

	errs.Add("a.ts", errors.New("first"))
	if !errs.HasErrors() {
		t.Error("expected errors after Add")
	}
	if errs.Error() != "a.ts: first" {
		t.Errorf("single Error() = %q", errs.Error())
	}

	errs.Add("b.ts", errors.New("second"))
	if errs.Error() == "a.ts: first" {
		t.Error("multi-error message should mention the count")
	}
}
