package stmt

import (
	"errors"
	"slices"
	"testing"

	yangerrors "github.com/jacoelho/yang/errors"
)

func codeOf(t *testing.T, err error) yangerrors.Code {
	t.Helper()
	re, ok := yangerrors.AsReactor(err)
	if !ok {
		t.Fatalf("error = %v, want ReactorError", err)
	}
	return re.Code
}

func TestCardinalitiesCheck(t *testing.T) {
	cards := Cardinalities{
		"description": Optional,
		"type":        Required,
		"must":        Many,
	}
	builtin := func(kw string) bool { return kw == "key" || cards[kw] != (Cardinality{}) }

	tests := []struct {
		name     string
		children []string
		wantErr  bool
	}{
		{name: "minimal", children: []string{"type"}},
		{name: "all", children: []string{"description", "type", "must", "must"}},
		{name: "missing required", children: []string{"description"}, wantErr: true},
		{name: "too many", children: []string{"type", "description", "description"}, wantErr: true},
		{name: "builtin not allowed", children: []string{"type", "key"}, wantErr: true},
		{name: "unknown keyword ignored", children: []string{"type", "frobnicate"}},
		{name: "extension ignored", children: []string{"type", "ex:note", "ex:note"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := cards.Check("leaf", tt.children, builtin)
			if !tt.wantErr {
				if err != nil {
					t.Fatalf("Check() error = %v", err)
				}
				return
			}
			if got := codeOf(t, err); got != yangerrors.ErrCardinality {
				t.Fatalf("code = %s, want %s", got, yangerrors.ErrCardinality)
			}
		})
	}
}

func TestCardinalitiesCheckNilTable(t *testing.T) {
	var cards Cardinalities
	if err := cards.Check("x", []string{"anything", "anything"}, func(string) bool { return true }); err != nil {
		t.Fatalf("Check() error = %v", err)
	}
}

func TestCardinalitiesMerge(t *testing.T) {
	base := Cardinalities{"description": Optional, "type": Required}
	merged := base.Merge(Cardinalities{"type": Optional, "units": Optional})
	if merged["type"] != Optional || merged["units"] != Optional || merged["description"] != Optional {
		t.Fatalf("Merge() = %v", merged)
	}
	if base["type"] != Required {
		t.Fatal("Merge() modified the receiver")
	}
}

func TestCardinalityString(t *testing.T) {
	if got := Many.String(); got != "0..n" {
		t.Fatalf("Many = %q", got)
	}
	if got := Required.String(); got != "1..1" {
		t.Fatalf("Required = %q", got)
	}
}

func TestParseSchemaNodeID(t *testing.T) {
	tests := []struct {
		arg      string
		segments []string
		absolute bool
		wantErr  bool
	}{
		{arg: "/a:top/a:inner", segments: []string{"a:top", "a:inner"}, absolute: true},
		{arg: "inner/leaf", segments: []string{"inner", "leaf"}},
		{arg: "  /x  ", segments: []string{"x"}, absolute: true},
		{arg: "/", wantErr: true},
		{arg: "", wantErr: true},
		{arg: "/a//b", wantErr: true},
	}
	for _, tt := range tests {
		segments, absolute, err := ParseSchemaNodeID(tt.arg)
		if tt.wantErr {
			if err == nil {
				t.Fatalf("ParseSchemaNodeID(%q) error = nil", tt.arg)
			}
			if got := codeOf(t, err); got != yangerrors.ErrInvalidArgument {
				t.Fatalf("ParseSchemaNodeID(%q) code = %s", tt.arg, got)
			}
			continue
		}
		if err != nil {
			t.Fatalf("ParseSchemaNodeID(%q) error = %v", tt.arg, err)
		}
		if !slices.Equal(segments, tt.segments) || absolute != tt.absolute {
			t.Fatalf("ParseSchemaNodeID(%q) = %v, %v", tt.arg, segments, absolute)
		}
	}
}

func TestNotReady(t *testing.T) {
	cause := Errorf(yangerrors.ErrMissingTarget, "no target")
	err := NotReady(cause)
	if !errors.Is(err, ErrNotReady) {
		t.Fatal("NotReady() does not match ErrNotReady")
	}
	if got := Cause(err); got != cause {
		t.Fatalf("Cause() = %v, want %v", got, cause)
	}
	if got := Cause(cause); got != cause {
		t.Fatalf("Cause() of a plain error = %v", got)
	}
	if errors.Is(cause, ErrNotReady) {
		t.Fatal("plain error matches ErrNotReady")
	}
}

func TestRegistry(t *testing.T) {
	unknown := BaseSupport{Name: "<unknown>"}
	r := NewRegistry(unknown)
	r.Register(BaseSupport{Name: "leaf"})
	r.RegisterExtension("ex", "note", BaseSupport{Name: "note"})

	if s, ok := r.Lookup("leaf"); !ok || s.Keyword() != "leaf" {
		t.Fatalf("Lookup(leaf) = %v, %v", s, ok)
	}
	if r.Known("container") {
		t.Fatal("Known(container) = true")
	}
	if _, ok := r.Extension("ex", "note"); !ok {
		t.Fatal("Extension(ex, note) missing")
	}
	if _, ok := r.Extension("other", "note"); ok {
		t.Fatal("Extension keyed by name only")
	}
	if r.Unknown().Keyword() != "<unknown>" {
		t.Fatalf("Unknown() = %v", r.Unknown())
	}

	clone := r.Clone()
	clone.Register(BaseSupport{Name: "container"})
	clone.RegisterExtension("ex", "tag", BaseSupport{Name: "tag"})
	if r.Known("container") {
		t.Fatal("Clone shares keyword table")
	}
	if _, ok := r.Extension("ex", "tag"); ok {
		t.Fatal("Clone shares extension table")
	}
	if !clone.Known("leaf") {
		t.Fatal("Clone lost entries")
	}
}
