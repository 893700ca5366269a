// Package rfc6020 provides the builtin YANG statement supports.
package rfc6020

import "github.com/jacoelho/yang/internal/stmt"

// OpenconfigExtensionsModule is the module defining openconfig-version.
const OpenconfigExtensionsModule = "openconfig-extensions"

// NewRegistry returns a registry holding every builtin statement support.
func NewRegistry() *stmt.Registry {
	r := stmt.NewRegistry(NewUnknownSupport())
	for _, s := range metaSupports() {
		r.Register(s)
	}
	for _, s := range schemaNodeSupports() {
		r.Register(s)
	}
	base := func(keyword string, cards stmt.Cardinalities) stmt.BaseSupport {
		return stmt.BaseSupport{Name: keyword, Cards: cards}
	}
	r.Register(moduleSupport{BaseSupport: base("module", moduleCards)})
	r.Register(moduleSupport{BaseSupport: base("submodule", submoduleCards), submodule: true})
	r.Register(importSupport{BaseSupport: base("import", importCards)})
	r.Register(includeSupport{BaseSupport: base("include", includeCards)})
	r.Register(belongsToSupport{BaseSupport: base("belongs-to", belongsToCards)})
	r.Register(groupingSupport{BaseSupport: base("grouping", groupingCards)})
	r.Register(usesSupport{BaseSupport: base("uses", usesCards)})
	r.Register(refineSupport{BaseSupport: base("refine", refineCards)})
	r.Register(augmentSupport{BaseSupport: base("augment", augmentCards)})
	r.Register(deviationSupport{BaseSupport: base("deviation", deviationCards)})
	r.Register(deviateSupport{BaseSupport: base("deviate", deviateCards)})
	r.Register(featureSupport{BaseSupport: base("feature", featureCards)})
	r.Register(ifFeatureSupport{BaseSupport: base("if-feature", none)})
	r.Register(identitySupport{BaseSupport: base("identity", identityCards)})
	r.Register(typedefSupport{BaseSupport: base("typedef", typedefCards)})
	r.Register(typeSupport{BaseSupport: base("type", typeCards)})
	r.Register(extensionSupport{BaseSupport: base("extension", extensionCards)})
	r.RegisterExtension(OpenconfigExtensionsModule, "openconfig-version", openconfigVersion())
	return r
}
