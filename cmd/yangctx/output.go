package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-json"

	"github.com/jacoelho/yang"
	yangerrors "github.com/jacoelho/yang/errors"
)

type contextJSON struct {
	Modules []moduleJSON `json:"modules"`
}

type moduleJSON struct {
	Name       string     `json:"name"`
	Revision   string     `json:"revision,omitempty"`
	SemVer     string     `json:"semver,omitempty"`
	Namespace  string     `json:"namespace"`
	Prefix     string     `json:"prefix"`
	Submodules []string   `json:"submodules,omitempty"`
	Features   []string   `json:"features,omitempty"`
	Nodes      []nodeJSON `json:"nodes,omitempty"`
}

type nodeJSON struct {
	Keyword     string     `json:"keyword"`
	Name        string     `json:"name"`
	Namespace   string     `json:"namespace"`
	Type        string     `json:"type,omitempty"`
	Config      bool       `json:"config"`
	Mandatory   bool       `json:"mandatory,omitempty"`
	AddedByUses bool       `json:"addedByUses,omitempty"`
	Augmenting  bool       `json:"augmenting,omitempty"`
	Children    []nodeJSON `json:"children,omitempty"`
}

type diagnosticJSON struct {
	Error       string            `json:"error"`
	Code        string            `json:"code,omitempty"`
	Source      string            `json:"source,omitempty"`
	Line        int               `json:"line,omitempty"`
	Column      int               `json:"column,omitempty"`
	Keyword     string            `json:"keyword,omitempty"`
	Resolved    []string          `json:"resolved,omitempty"`
	Unresolved  []string          `json:"unresolved,omitempty"`
	Unsatisfied []unsatisfiedJSON `json:"unsatisfied,omitempty"`
}

type unsatisfiedJSON struct {
	Source  string   `json:"source"`
	Missing []string `json:"missing"`
}

func writeContext(format string, w io.Writer, sc *yang.SchemaContext) error {
	if format == "json" {
		out := contextJSON{Modules: make([]moduleJSON, 0, len(sc.Modules()))}
		for _, m := range sc.Modules() {
			out.Modules = append(out.Modules, moduleOf(m))
		}
		return writeJSON(w, out)
	}
	var b strings.Builder
	for _, m := range sc.Modules() {
		fmt.Fprintf(&b, "module %s (%s)\n", m.ID, m.Namespace)
		for _, sub := range m.Submodules() {
			fmt.Fprintf(&b, "  include %s\n", sub.ID)
		}
		writeNodes(&b, m.Children(), 1)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func writeNodes(b *strings.Builder, nodes []yang.SchemaNode, depth int) {
	for _, n := range nodes {
		fmt.Fprintf(b, "%s%s %s", strings.Repeat("  ", depth), n.Keyword(), n.QName().Name)
		if t := typeName(n); t != "" {
			fmt.Fprintf(b, ": %s", t)
		}
		b.WriteByte('\n')
		writeNodes(b, n.Children(), depth+1)
	}
}

func typeName(n yang.SchemaNode) string {
	dn, ok := n.(*yang.DataNode)
	if !ok || dn.Type == nil {
		return ""
	}
	name := dn.Type.Name.Name
	if builtin := dn.Type.Builtin(); builtin != nil && builtin.Name.Name != name {
		name += " (" + builtin.Name.Name + ")"
	}
	return name
}

func moduleOf(m *yang.Module) moduleJSON {
	out := moduleJSON{
		Name:      m.Name,
		Revision:  string(m.Revision),
		SemVer:    string(m.SemVer),
		Namespace: m.Namespace,
		Prefix:    m.Prefix,
		Nodes:     nodesOf(m.Children()),
	}
	for _, sub := range m.Submodules() {
		out.Submodules = append(out.Submodules, sub.ID.String())
	}
	for _, f := range m.Features {
		out.Features = append(out.Features, f.Name)
	}
	return out
}

func nodesOf(nodes []yang.SchemaNode) []nodeJSON {
	if len(nodes) == 0 {
		return nil
	}
	out := make([]nodeJSON, 0, len(nodes))
	for _, n := range nodes {
		j := nodeJSON{
			Keyword:   n.Keyword(),
			Name:      n.QName().Name,
			Namespace: n.QName().Module.Namespace,
			Type:      typeName(n),
			Children:  nodesOf(n.Children()),
		}
		if dn, ok := n.(*yang.DataNode); ok {
			j.Config = dn.Config
			j.Mandatory = dn.Mandatory
			j.AddedByUses = dn.AddedByUses
			j.Augmenting = dn.Augmenting
		}
		out = append(out, j)
	}
	return out
}

func diagnosticOf(err error) diagnosticJSON {
	d := diagnosticJSON{Error: err.Error()}
	if re, ok := yangerrors.AsReactor(err); ok {
		d.Code = string(re.Code)
		d.Source = re.Source.String()
		d.Line = re.Line
		d.Column = re.Column
		d.Keyword = re.Keyword
	}
	if rerr, ok := yangerrors.AsResolution(err); ok {
		if rerr.Source != nil {
			d.Source = rerr.Source.String()
		}
		for _, id := range rerr.Resolved {
			d.Resolved = append(d.Resolved, id.String())
		}
		for _, id := range rerr.Unresolved {
			d.Unresolved = append(d.Unresolved, id.String())
		}
		for _, u := range rerr.Unsatisfied {
			j := unsatisfiedJSON{Source: u.Source.String()}
			for _, dep := range u.Missing {
				j.Missing = append(j.Missing, dep.Kind.String()+" "+dep.String())
			}
			d.Unsatisfied = append(d.Unsatisfied, j)
		}
	}
	return d
}

// writeDiagnostics reports a failed assembly: as a JSON document on stdout,
// or as text on stderr.
func writeDiagnostics(format string, stdout, stderr io.Writer, err error) error {
	d := diagnosticOf(err)
	if format == "json" {
		return writeJSON(stdout, d)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "error: %s\n", d.Error)
	if d.Line > 0 {
		fmt.Fprintf(&b, "  at %s:%d:%d (%s)\n", d.Source, d.Line, d.Column, d.Keyword)
	}
	for _, u := range d.Unsatisfied {
		fmt.Fprintf(&b, "  %s is missing %s\n", u.Source, strings.Join(u.Missing, ", "))
	}
	if len(d.Unresolved) > 0 {
		fmt.Fprintf(&b, "  unresolved: %s\n", strings.Join(d.Unresolved, ", "))
	}
	_, werr := io.WriteString(stderr, b.String())
	return werr
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}
