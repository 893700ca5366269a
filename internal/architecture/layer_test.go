package architecture_test

import (
	"slices"
	"testing"
)

// allowedImports lists, per package, the module packages it may import.
var allowedImports = map[string][]string{
	internalPkg("ast"):        nil,
	internalPkg("cache"):      nil,
	internalPkg("graphcycle"): nil,
	internalPkg("yangtext"):   {internalPkg("ast")},
	internalPkg("source"):     {internalPkg("ast"), internalPkg("yangtext")},
	internalPkg("repository"): {internalPkg("source")},
	internalPkg("resolver"):   {internalPkg("source")},
	internalPkg("model"):      {internalPkg("ast"), internalPkg("source")},
	modulePath + "/errors":    {internalPkg("source")},
	internalPkg("stmt"): {
		internalPkg("ast"),
		internalPkg("model"),
		internalPkg("source"),
		modulePath + "/errors",
	},
	internalPkg("stmt/rfc6020"): {
		internalPkg("graphcycle"),
		internalPkg("model"),
		internalPkg("source"),
		internalPkg("stmt"),
		internalPkg("yangtext"),
		modulePath + "/errors",
	},
	internalPkg("reactor"): {
		internalPkg("ast"),
		internalPkg("model"),
		internalPkg("resolver"),
		internalPkg("source"),
		internalPkg("stmt"),
		modulePath + "/errors",
	},
}

func TestInternalPackageBoundaries(t *testing.T) {
	t.Parallel()

	graph := collectPackageImports(t)

	for pkg, imports := range graph {
		if !hasPkgPrefix(pkg, modulePath+"/internal") && pkg != modulePath+"/errors" {
			continue
		}
		allowed, ok := allowedImports[pkg]
		if !ok {
			t.Errorf("package %s has no layering entry", pkg)
			continue
		}
		for imp := range imports {
			if !slices.Contains(allowed, imp) {
				t.Errorf("%s imports %s", pkg, imp)
			}
		}
	}
}

// The reactor never depends on the concrete statement set; supports arrive
// through a registry.
func TestReactorDoesNotImportStatementSet(t *testing.T) {
	t.Parallel()

	graph := collectPackageImports(t)
	for imp := range graph[internalPkg("reactor")] {
		if hasPkgPrefix(imp, internalPkg("stmt/rfc6020")) {
			t.Fatalf("reactor imports %s", imp)
		}
	}
}

func TestCommandUsesPublicAPI(t *testing.T) {
	t.Parallel()

	graph := collectPackageImports(t)
	for pkg, imports := range graph {
		if !hasPkgPrefix(pkg, modulePath+"/cmd") {
			continue
		}
		for imp := range imports {
			if hasPkgPrefix(imp, modulePath+"/internal") {
				t.Errorf("%s imports internal package %s", pkg, imp)
			}
		}
	}
}
