package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

func TestInternalImportForbiddenPredicate(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{"mapcore/internal/editor", true},
		{"example.com/mod/internal/x", true},
		{"mapcore/pkg/geom", false},
	}
	for _, c := range cases {
		if got := InternalImportForbidden(c.in); got != c.want {
			t.Fatalf("InternalImportForbidden(%q)=%v want %v", c.in, got, c.want)
		}
	}
}

func TestNonStdlibImportForbiddenPredicate(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{"github.com/google/uuid", true},
		{"modernc.org/sqlite", true},
		{"encoding/json", false},
		{"math", false},
		{"mapcore/pkg/geom", false},
	}
	for _, c := range cases {
		if got := NonStdlibImportForbidden(c.in); got != c.want {
			t.Fatalf("NonStdlibImportForbidden(%q)=%v want %v", c.in, got, c.want)
		}
	}
}

// TestAssertNoDirectImports exercises the success path with a tiny temp
// package carrying only safe imports.
func TestAssertNoDirectImports(t *testing.T) {
	dir := t.TempDir()
	src := []byte("package tmp\nimport \"fmt\"\nfunc X(){fmt.Println(1)}")
	if err := os.WriteFile(filepath.Join(dir, "x.go"), src, 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	AssertNoDirectImports(t, dir, func(string) bool { return false }, "none")
}

func TestAssertNoDirectImportsDetectsViolation(t *testing.T) {
	dir := t.TempDir()
	src := []byte("package tmp\nimport _ \"example.com/mod/internal/x\"\n")
	if err := os.WriteFile(filepath.Join(dir, "x.go"), src, 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	viols, err := directImportViolations(dir, InternalImportForbidden)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(viols) != 1 {
		t.Fatalf("expected one violation, got %v", viols)
	}
}

func TestAssertNoTransitiveDependency(t *testing.T) {
	AssertNoTransitiveDependency(t, ".", func(string) bool { return false }, "none")
}
