package geom_test

import (
	"testing"

	"mapcore/testutil"
)

// Geometry value types stay dependency-free so any tool can vendor them.
func TestGeomImportsNothing(t *testing.T) {
	testutil.AssertNoDirectImports(t, ".", testutil.NonStdlibImportForbidden,
		"pkg/geom must not import third-party packages")
	testutil.AssertNoDirectImports(t, ".", testutil.InternalImportForbidden,
		"pkg/geom must not import internal packages")
}
