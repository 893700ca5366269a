package architecture_test

import (
	"go/ast"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
)

const modulePath = "github.com/jacoelho/yang"

func repoRoot(t *testing.T) string {
	t.Helper()

	dir, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatalf("repository root with go.mod not found from %s", dir)
		}
		dir = parent
	}
}

func internalPkg(name string) string {
	return modulePath + "/internal/" + strings.TrimPrefix(name, "/")
}

func hasPkgPrefix(pkg, prefix string) bool {
	return pkg == prefix || strings.HasPrefix(pkg, prefix+"/")
}

// sourceFiles parses the non-test Go files of one directory.
func sourceFiles(dir string, mode parser.Mode) ([]*ast.File, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	fset := token.NewFileSet()
	var files []*ast.File
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".go") || strings.HasSuffix(name, "_test.go") {
			continue
		}
		f, err := parser.ParseFile(fset, filepath.Join(dir, name), nil, mode)
		if err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	return files, nil
}

// collectPackageImports maps every package of the module to the module
// packages its non-test files import. Directories the go tool ignores are
// skipped.
func collectPackageImports(t *testing.T) map[string]map[string]struct{} {
	t.Helper()

	root := repoRoot(t)
	graph := make(map[string]map[string]struct{})

	err := filepath.WalkDir(root, func(path string, d os.DirEntry, walkErr error) error {
		if walkErr != nil || !d.IsDir() {
			return walkErr
		}
		name := d.Name()
		if path != root && (strings.HasPrefix(name, "_") || strings.HasPrefix(name, ".") || name == "testdata") {
			return filepath.SkipDir
		}
		files, err := sourceFiles(path, parser.ImportsOnly)
		if err != nil || len(files) == 0 {
			return err
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		pkg := modulePath
		if rel != "." {
			pkg += "/" + filepath.ToSlash(rel)
		}
		imports := make(map[string]struct{})
		for _, f := range files {
			for _, imp := range f.Imports {
				p, err := strconv.Unquote(imp.Path.Value)
				if err != nil {
					return err
				}
				if hasPkgPrefix(p, modulePath) {
					imports[p] = struct{}{}
				}
			}
		}
		graph[pkg] = imports
		return nil
	})
	if err != nil {
		t.Fatalf("collect package imports: %v", err)
	}
	if len(graph) == 0 {
		t.Fatal("no packages found")
	}
	return graph
}

// collectRootExports lists the exported identifiers of the root package as
// "kind Name" or "method Recv.Name".
func collectRootExports(t *testing.T) map[string]struct{} {
	t.Helper()

	files, err := sourceFiles(repoRoot(t), 0)
	if err != nil {
		t.Fatalf("parse repo root: %v", err)
	}

	exports := make(map[string]struct{})
	add := func(kind, name string) {
		if ast.IsExported(name) {
			exports[kind+" "+name] = struct{}{}
		}
	}
	for _, f := range files {
		if f.Name.Name != "yang" {
			continue
		}
		for _, decl := range f.Decls {
			switch d := decl.(type) {
			case *ast.GenDecl:
				for _, spec := range d.Specs {
					switch s := spec.(type) {
					case *ast.TypeSpec:
						add("type", s.Name.Name)
					case *ast.ValueSpec:
						for _, n := range s.Names {
							switch d.Tok {
							case token.CONST:
								add("const", n.Name)
							case token.VAR:
								add("var", n.Name)
							}
						}
					}
				}
			case *ast.FuncDecl:
				if d.Recv == nil {
					add("func", d.Name.Name)
					continue
				}
				if recv := receiverTypeName(d.Recv.List[0].Type); ast.IsExported(recv) && ast.IsExported(d.Name.Name) {
					exports["method "+recv+"."+d.Name.Name] = struct{}{}
				}
			}
		}
	}
	return exports
}

func receiverTypeName(expr ast.Expr) string {
	if star, ok := expr.(*ast.StarExpr); ok {
		expr = star.X
	}
	if ident, ok := expr.(*ast.Ident); ok {
		return ident.Name
	}
	return ""
}
