package reactor_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	yangerrors "github.com/jacoelho/yang/errors"
	"github.com/jacoelho/yang/internal/ast"
	"github.com/jacoelho/yang/internal/model"
	"github.com/jacoelho/yang/internal/reactor"
	"github.com/jacoelho/yang/internal/source"
	"github.com/jacoelho/yang/internal/stmt"
	"github.com/jacoelho/yang/internal/stmt/rfc6020"
)

const moduleA = `module a {
  namespace "urn:a";
  prefix a;
  revision 2024-01-01;
  typedef name { type string { length "1..32"; } }
  grouping endpoint {
    leaf host { type name; description "host"; }
    leaf port { type uint16; }
  }
  container top {
    leaf x { type string; }
  }
}`

const moduleB = `module b {
  namespace "urn:b";
  prefix b;
  import a { prefix a; }
  container server {
    uses a:endpoint;
    leaf id { type a:name; }
  }
  augment "/a:top" {
    leaf extra { type string; }
  }
}`

func parse(t *testing.T, texts ...string) []*source.ParsedSource {
	t.Helper()
	out := make([]*source.ParsedSource, 0, len(texts))
	for i, text := range texts {
		src, err := source.Parse([]byte(text), fmt.Sprintf("src%d.yang", i))
		require.NoError(t, err)
		out = append(out, src)
	}
	return out
}

func build(t *testing.T, texts ...string) (*model.SchemaContext, error) {
	t.Helper()
	return reactor.Build(parse(t, texts...), reactor.Options{Registry: rfc6020.NewRegistry()})
}

func mustBuild(t *testing.T, texts ...string) *model.SchemaContext {
	t.Helper()
	sc, err := build(t, texts...)
	require.NoError(t, err)
	return sc
}

func node(t *testing.T, sc *model.SchemaContext, module, path string) *model.DataNode {
	t.Helper()
	m, ok := sc.FindModule(module, "")
	require.True(t, ok, "module %s", module)
	n, ok := sc.FindNodeByNames(m, path)
	require.True(t, ok, "node %s:%s", module, path)
	dn, ok := n.(*model.DataNode)
	require.True(t, ok)
	return dn
}

func requireCode(t *testing.T, err error, code yangerrors.Code) *yangerrors.ReactorError {
	t.Helper()
	require.Error(t, err)
	re, ok := yangerrors.AsReactor(err)
	require.True(t, ok, "want reactor error, got %v", err)
	require.Equal(t, code, re.Code, "error: %v", err)
	return re
}

func TestBuildIndependentOfSourceOrder(t *testing.T) {
	for _, order := range [][]string{{moduleA, moduleB}, {moduleB, moduleA}} {
		sc := mustBuild(t, order...)
		require.Len(t, sc.Modules(), 2)

		host := node(t, sc, "b", "server/host")
		assert.Equal(t, "urn:b", host.Name.Module.Namespace)
		assert.True(t, host.AddedByUses)
		require.NotNil(t, host.Type)
		assert.Equal(t, "string", host.Type.Builtin().Name.Name)

		id := node(t, sc, "b", "server/id")
		require.NotNil(t, id.Type)
		assert.Equal(t, "name", id.Type.Name.Name)
		require.NotNil(t, id.Type.BaseType)
		assert.Equal(t, "1..32", id.Type.BaseType.Restrictions.Length)
	}
}

func TestBuildModulesInSourceOrder(t *testing.T) {
	sc := mustBuild(t, moduleB, moduleA)
	names := make([]string, 0, 2)
	for _, m := range sc.Modules() {
		names = append(names, m.Name)
	}
	assert.Equal(t, []string{"b", "a"}, names)
}

func TestBuildAugmentKeepsAugmentingNamespace(t *testing.T) {
	sc := mustBuild(t, moduleA, moduleB)
	extra := node(t, sc, "a", "top/extra")
	assert.Equal(t, "urn:b", extra.Name.Module.Namespace)
	assert.True(t, extra.Augmenting)
	assert.Equal(t, "(urn:a?revision=2024-01-01)top", extra.SchemaPath[0].String())

	b, ok := sc.FindModule("b", "")
	require.True(t, ok)
	require.Len(t, b.Augments, 1)
	assert.Equal(t, "top", b.Augments[0].Target[0].Name)
}

func TestBuildAugmentWaitsForItsTarget(t *testing.T) {
	const c = `module c {
  namespace "urn:c";
  prefix c;
  import a { prefix a; }
  augment "/a:top/c:mid" {
    leaf deep { type string; }
  }
  augment "/a:top" {
    container mid;
  }
}`
	sc := mustBuild(t, moduleA, c)
	deep := node(t, sc, "a", "top/mid/deep")
	assert.Equal(t, "urn:c", deep.Name.Module.Namespace)
}

func TestBuildAugmentMissingTarget(t *testing.T) {
	const c = `module c {
  namespace "urn:c";
  prefix c;
  import a { prefix a; }
  augment "/a:nowhere" {
    leaf deep { type string; }
  }
}`
	_, err := build(t, moduleA, c)
	re := requireCode(t, err, yangerrors.ErrMissingTarget)
	assert.Equal(t, "augment", re.Keyword)
	assert.Equal(t, 5, re.Line)
	assert.Equal(t, "c", re.Source.Name)
}

func TestBuildUsesRefine(t *testing.T) {
	const m = `module m {
  namespace "urn:m";
  prefix m;
  grouping g {
    leaf x { type string; description "old"; }
    container inner { leaf y { type int8; } }
  }
  container c {
    uses g {
      refine x { description "new"; mandatory true; }
      augment inner { leaf z { type string; } }
    }
  }
}`
	sc := mustBuild(t, m)
	x := node(t, sc, "m", "c/x")
	assert.Equal(t, "new", x.Description)
	assert.True(t, x.Mandatory)
	assert.Equal(t, []string{"c", "x"}, pathNames(x.SchemaPath))

	z := node(t, sc, "m", "c/inner/z")
	assert.True(t, z.Augmenting)
}

func TestBuildNestedUsesAcrossGroupings(t *testing.T) {
	const m = `module m {
  namespace "urn:m";
  prefix m;
  grouping inner { leaf leafy { type string; } }
  grouping outer { container box { uses inner; } }
  container c { uses outer; }
}`
	sc := mustBuild(t, m)
	leafy := node(t, sc, "m", "c/box/leafy")
	assert.True(t, leafy.AddedByUses)
}

func TestBuildUsesRefineThroughNestedUses(t *testing.T) {
	const m = `module m {
  namespace "urn:m";
  prefix m;
  grouping inner { leaf leafy { type string; } }
  grouping outer { container box { uses inner; } }
  container c {
    uses outer {
      refine box/leafy { description "refined"; mandatory true; }
    }
  }
}`
	sc := mustBuild(t, m)
	leafy := node(t, sc, "m", "c/box/leafy")
	assert.Equal(t, "refined", leafy.Description)
	assert.True(t, leafy.Mandatory)
	assert.True(t, leafy.AddedByUses)
}

func TestBuildUsesRefineMissingTarget(t *testing.T) {
	const m = `module m {
  namespace "urn:m";
  prefix m;
  grouping g { leaf x { type string; } }
  container c {
    uses g {
      refine nowhere { description "lost"; }
    }
  }
}`
	_, err := build(t, m)
	re := requireCode(t, err, yangerrors.ErrMissingTarget)
	assert.Equal(t, "refine", re.Keyword)
}

func TestBuildUsesIfFeature(t *testing.T) {
	const m = `module m {
  namespace "urn:m";
  prefix m;
  feature fast;
  grouping g { leaf gated { type string; } }
  container c {
    leaf always { type string; }
    uses g { if-feature fast; }
  }
}`
	for _, enabled := range []bool{true, false} {
		opts := reactor.Options{
			Registry: rfc6020.NewRegistry(),
			Features: func(model.QName) bool { return enabled },
		}
		sc, err := reactor.Build(parse(t, m), opts)
		require.NoError(t, err)

		mod, ok := sc.FindModule("m", "")
		require.True(t, ok)
		_, ok = sc.FindNodeByNames(mod, "c/always")
		assert.True(t, ok)
		_, ok = sc.FindNodeByNames(mod, "c/gated")
		assert.Equal(t, enabled, ok, "features enabled: %v", enabled)
	}
}

func TestBuildGroupingCycle(t *testing.T) {
	const m = `module m {
  namespace "urn:m";
  prefix m;
  grouping ga { container x { uses gb; } }
  grouping gb { container y { uses ga; } }
  container c { uses ga; }
}`
	_, err := build(t, m)
	requireCode(t, err, yangerrors.ErrGroupingCycle)
}

func TestBuildUnknownGrouping(t *testing.T) {
	const m = `module m {
  namespace "urn:m";
  prefix m;
  container c { uses missing; }
}`
	_, err := build(t, m)
	requireCode(t, err, yangerrors.ErrUnknownGrouping)
}

func TestBuildDeviation(t *testing.T) {
	const d = `module d {
  namespace "urn:d";
  prefix d;
  import a { prefix a; }
  deviation "/a:top/a:x" {
    deviate not-supported;
  }
}`
	sc := mustBuild(t, moduleA, d)
	a, _ := sc.FindModule("a", "")
	_, ok := sc.FindNodeByNames(a, "top/x")
	assert.False(t, ok)
	_, ok = sc.FindNodeByNames(a, "top")
	assert.True(t, ok)

	dm, _ := sc.FindModule("d", "")
	require.Len(t, dm.Deviations, 1)
	require.Len(t, dm.Deviations[0].Deviates, 1)
	assert.Equal(t, model.DeviateNotSupported, dm.Deviations[0].Deviates[0].Kind)
}

func TestBuildDeviateAddAndReplace(t *testing.T) {
	const d = `module d {
  namespace "urn:d";
  prefix d;
  import a { prefix a; }
  deviation "/a:top/a:x" {
    deviate add { default "none"; }
    deviate replace { type int32; }
  }
}`
	sc := mustBuild(t, moduleA, d)
	x := node(t, sc, "a", "top/x")
	assert.Equal(t, "none", x.Default)
	assert.Equal(t, "int32", x.Type.Builtin().Name.Name)
}

func TestBuildDeviateAddConflict(t *testing.T) {
	const d = `module d {
  namespace "urn:d";
  prefix d;
  import a { prefix a; }
  deviation "/a:top/a:x" {
    deviate add { type int32; }
  }
}`
	_, err := build(t, moduleA, d)
	requireCode(t, err, yangerrors.ErrInvalidDeviation)
}

const featureModule = `module f {
  namespace "urn:f";
  prefix f;
  feature fast;
  feature turbo { if-feature fast; }
  container c {
    leaf plain { type string; }
    leaf quick { if-feature fast; type string; }
    leaf boosted { if-feature "fast and turbo"; type string; }
    leaf slow { if-feature "not fast"; type string; }
  }
}`

func TestBuildIfFeature(t *testing.T) {
	tests := []struct {
		name    string
		enabled map[string]bool
		present []string
		absent  []string
	}{
		{name: "all enabled", enabled: nil, present: []string{"plain", "quick", "boosted"}, absent: []string{"slow"}},
		{name: "fast only", enabled: map[string]bool{"fast": true}, present: []string{"plain", "quick"}, absent: []string{"boosted", "slow"}},
		{name: "turbo without fast", enabled: map[string]bool{"turbo": true}, present: []string{"plain", "slow"}, absent: []string{"quick", "boosted"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := reactor.Options{Registry: rfc6020.NewRegistry()}
			if tt.enabled != nil {
				opts.Features = func(q model.QName) bool { return tt.enabled[q.Name] }
			}
			sc, err := reactor.Build(parse(t, featureModule), opts)
			require.NoError(t, err)
			m, _ := sc.FindModule("f", "")
			for _, name := range tt.present {
				_, ok := sc.FindNodeByNames(m, "c/"+name)
				assert.True(t, ok, "%s should be present", name)
			}
			for _, name := range tt.absent {
				_, ok := sc.FindNodeByNames(m, "c/"+name)
				assert.False(t, ok, "%s should be absent", name)
			}
		})
	}
}

func TestBuildIfFeatureUndefined(t *testing.T) {
	const m = `module m {
  namespace "urn:m";
  prefix m;
  leaf x { if-feature nope; type string; }
}`
	_, err := build(t, m)
	requireCode(t, err, yangerrors.ErrUnknownFeature)
}

func TestBuildSubmoduleMerged(t *testing.T) {
	const main = `module main {
  namespace "urn:main";
  prefix mn;
  include part;
  container top { uses shared; }
}`
	const part = `submodule part {
  belongs-to main { prefix mn; }
  grouping shared { leaf s { type string; } }
  container fromsub { leaf l { type mn:code; } }
  typedef code { type string; }
}`
	for _, order := range [][]string{{main, part}, {part, main}} {
		sc := mustBuild(t, order...)
		require.Len(t, sc.Modules(), 1)
		m := sc.Modules()[0]
		assert.Equal(t, "main", m.Name)
		require.Len(t, m.Submodules(), 1)
		assert.Equal(t, "part", m.Submodules()[0].Name)
		assert.Equal(t, "main", m.Submodules()[0].BelongsTo)

		l := node(t, sc, "main", "fromsub/l")
		assert.Equal(t, "urn:main", l.Name.Module.Namespace)
		assert.Equal(t, "code", l.Type.Name.Name)
		node(t, sc, "main", "top/s")
	}
}

func TestBuildCardinality(t *testing.T) {
	const m = `module m {
  namespace "urn:m";
  prefix m;
  leaf x {
    type string;
    type int8;
  }
}`
	_, err := build(t, m)
	re := requireCode(t, err, yangerrors.ErrCardinality)
	assert.Equal(t, 4, re.Line)
	assert.Equal(t, "leaf", re.Keyword)
}

func TestBuildMissingRequiredSubstatement(t *testing.T) {
	const m = `module m {
  namespace "urn:m";
  prefix m;
  leaf x;
}`
	_, err := build(t, m)
	requireCode(t, err, yangerrors.ErrCardinality)
}

func TestBuildUnknownPrefix(t *testing.T) {
	const m = `module m {
  namespace "urn:m";
  prefix m;
  leaf x { type zz:thing; }
}`
	_, err := build(t, m)
	requireCode(t, err, yangerrors.ErrUnknownPrefix)
}

func TestBuildUnknownType(t *testing.T) {
	const m = `module m {
  namespace "urn:m";
  prefix m;
  leaf x { type thing; }
}`
	_, err := build(t, m)
	requireCode(t, err, yangerrors.ErrUnknownType)
}

func TestBuildTypedefCycle(t *testing.T) {
	const m = `module m {
  namespace "urn:m";
  prefix m;
  typedef t1 { type t2; }
  typedef t2 { type t1; }
  leaf x { type t1; }
}`
	_, err := build(t, m)
	requireCode(t, err, yangerrors.ErrUnknownType)
}

func TestBuildDuplicateModule(t *testing.T) {
	_, err := build(t, moduleA, moduleA)
	requireCode(t, err, yangerrors.ErrDuplicateModule)
}

func TestBuildInvalidRoot(t *testing.T) {
	src := &source.ParsedSource{
		ID:  source.Identifier{Name: "x"},
		AST: &ast.Statement{Keyword: "container", Argument: "x", HasArgument: true, Pos: ast.Position{Line: 1, Column: 1}},
	}
	_, err := reactor.Build([]*source.ParsedSource{src}, reactor.Options{Registry: rfc6020.NewRegistry()})
	requireCode(t, err, yangerrors.ErrInvalidRoot)
}

func TestBuildExtensions(t *testing.T) {
	const ext = `module ext {
  namespace "urn:ext";
  prefix ext;
  extension note { argument text; }
  ext:note "self";
}`
	const user = `module user {
  namespace "urn:user";
  prefix u;
  import ext { prefix e; }
  container c {
    e:note "hello";
    leaf x { type string; e:note "leaf"; }
  }
}`
	sc := mustBuild(t, user, ext)
	e, _ := sc.FindModule("ext", "")
	require.Len(t, e.Extensions, 1)
	assert.Equal(t, "text", e.Extensions[0].ArgumentName)

	c := node(t, sc, "user", "c")
	var found *model.Unknown
	for _, sub := range c.Substatements() {
		if u, ok := sub.(*model.Unknown); ok {
			found = u
		}
	}
	require.NotNil(t, found)
	assert.Equal(t, "urn:ext", found.Extension.Module.Namespace)
	assert.Equal(t, "note", found.Extension.Name)
	assert.Equal(t, "hello", found.NodeParameter)
}

func TestBuildUndefinedExtension(t *testing.T) {
	const user = `module user {
  namespace "urn:user";
  prefix u;
  import a { prefix a; }
  a:missing "x";
}`
	_, err := build(t, moduleA, user)
	requireCode(t, err, yangerrors.ErrUnknownExtension)
}

func TestBuildOpenconfigVersion(t *testing.T) {
	const oc = `module openconfig-extensions {
  namespace "http://openconfig.net/yang/openconfig-ext";
  prefix oc-ext;
  extension openconfig-version { argument semver; }
}`
	const m = `module m {
  namespace "urn:m";
  prefix m;
  import openconfig-extensions { prefix oc-ext; }
  oc-ext:openconfig-version "1.2.3";
}`
	sc := mustBuild(t, oc, m)
	mod, _ := sc.FindModule("m", "")
	assert.Equal(t, source.SemVer("1.2.3"), mod.SemVer)
}

func TestBuildImportsPickLatestRevision(t *testing.T) {
	const old = `module lib {
  namespace "urn:lib";
  prefix l;
  revision 2020-01-01;
  leaf old { type string; }
}`
	const newer = `module lib {
  namespace "urn:lib";
  prefix l;
  revision 2023-01-01;
  leaf fresh { type string; }
}`
	const user = `module user {
  namespace "urn:user";
  prefix u;
  import lib { prefix l; }
  augment "/l:fresh" { }
}`
	sc := mustBuild(t, old, user, newer)
	lib, ok := sc.FindModule("lib", "")
	require.True(t, ok)
	assert.Equal(t, source.Revision("2023-01-01"), lib.Revision)
	_, ok = sc.FindModule("lib", "2020-01-01")
	assert.True(t, ok)
}

func pathNames(p model.SchemaPath) []string {
	out := make([]string, len(p))
	for i, q := range p {
		out[i] = q.Name
	}
	return out
}

// phaseRecorder logs each hook call as phase:source.
type phaseRecorder struct {
	stmt.BaseSupport
	events *[]string
}

func (r phaseRecorder) record(phase string, ctx stmt.Context) error {
	*r.events = append(*r.events, phase+":"+ctx.Source().Name)
	return nil
}

func (r phaseRecorder) OnPreLinkage(ctx stmt.Context) error { return r.record("1", ctx) }
func (r phaseRecorder) OnLinkage(ctx stmt.Context) error    { return r.record("2", ctx) }
func (r phaseRecorder) OnStatementDefinition(ctx stmt.Context) error {
	return r.record("3", ctx)
}
func (r phaseRecorder) OnFullDeclaration(ctx stmt.Context) error { return r.record("4", ctx) }

func TestBuildPhaseBarrier(t *testing.T) {
	var events []string
	reg := rfc6020.NewRegistry()
	reg.Register(phaseRecorder{BaseSupport: stmt.BaseSupport{Name: "contact"}, events: &events})

	texts := []string{
		strings.Replace(moduleB, "prefix b;", "prefix b;\n  contact \"b\";", 1),
		strings.Replace(moduleA, "prefix a;", "prefix a;\n  contact \"a\";", 1),
	}
	_, err := reactor.Build(parse(t, texts...), reactor.Options{Registry: reg})
	require.NoError(t, err)
	assert.Equal(t, []string{"1:b", "1:a", "2:b", "2:a", "3:b", "3:a", "4:b", "4:a"}, events)
}

func TestBuildUsesResolverLinker(t *testing.T) {
	srcs := parse(t, moduleA, moduleB)
	var calls int
	linker := linkerFunc(func(from source.Identifier, dep source.Dependency) (source.Identifier, bool) {
		calls++
		return srcs[0].ID, dep.Name == "a"
	})
	_, err := reactor.Build(srcs, reactor.Options{Registry: rfc6020.NewRegistry(), Linker: linker})
	require.NoError(t, err)
	assert.Positive(t, calls)

	none := linkerFunc(func(source.Identifier, source.Dependency) (source.Identifier, bool) {
		return source.Identifier{}, false
	})
	_, err = reactor.Build(srcs, reactor.Options{Registry: rfc6020.NewRegistry(), Linker: none})
	requireCode(t, err, yangerrors.ErrUnknownModule)
}

type linkerFunc func(source.Identifier, source.Dependency) (source.Identifier, bool)

func (f linkerFunc) Link(from source.Identifier, dep source.Dependency) (source.Identifier, bool) {
	return f(from, dep)
}
