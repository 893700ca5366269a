package rfc6020

import "github.com/jacoelho/yang/internal/stmt"

var (
	opt  = stmt.Optional
	one  = stmt.Required
	many = stmt.Many

	none = stmt.Cardinalities{}

	docs = stmt.Cardinalities{"description": opt, "reference": opt}

	dataDefs = stmt.Cardinalities{
		"container": many, "leaf": many, "leaf-list": many, "list": many,
		"choice": many, "anydata": many, "anyxml": many, "uses": many,
	}

	definitions = stmt.Cardinalities{"typedef": many, "grouping": many}
)

func table(parts ...stmt.Cardinalities) stmt.Cardinalities {
	out := stmt.Cardinalities{}
	for _, p := range parts {
		out = out.Merge(p)
	}
	return out
}

var (
	moduleBody = table(docs, definitions, dataDefs, stmt.Cardinalities{
		"yang-version": opt, "import": many, "include": many,
		"organization": opt, "contact": opt, "revision": many,
		"extension": many, "feature": many, "identity": many,
		"augment": many, "rpc": many, "notification": many, "deviation": many,
	})

	moduleCards    = table(moduleBody, stmt.Cardinalities{"namespace": one, "prefix": one})
	submoduleCards = table(moduleBody, stmt.Cardinalities{"belongs-to": one})

	importCards    = table(docs, stmt.Cardinalities{"prefix": one, "revision-date": opt})
	includeCards   = table(docs, stmt.Cardinalities{"revision-date": opt})
	belongsToCards = stmt.Cardinalities{"prefix": one}
	revisionCards  = docs

	statusDocs = table(docs, stmt.Cardinalities{"status": opt})
	guarded    = stmt.Cardinalities{"when": opt, "if-feature": many}

	containerCards = table(statusDocs, guarded, definitions, dataDefs, stmt.Cardinalities{
		"must": many, "presence": opt, "config": opt, "action": many, "notification": many,
	})
	leafCards = table(statusDocs, guarded, stmt.Cardinalities{
		"type": one, "units": opt, "must": many, "default": opt, "config": opt, "mandatory": opt,
	})
	leafListCards = table(statusDocs, guarded, stmt.Cardinalities{
		"type": one, "units": opt, "must": many, "default": many, "config": opt,
		"min-elements": opt, "max-elements": opt, "ordered-by": opt,
	})
	listCards = table(statusDocs, guarded, definitions, dataDefs, stmt.Cardinalities{
		"must": many, "key": opt, "unique": many, "config": opt, "min-elements": opt,
		"max-elements": opt, "ordered-by": opt, "action": many, "notification": many,
	})
	choiceCards = table(statusDocs, guarded, stmt.Cardinalities{
		"default": opt, "config": opt, "mandatory": opt, "case": many,
		"container": many, "leaf": many, "leaf-list": many, "list": many,
		"choice": many, "anydata": many, "anyxml": many,
	})
	caseCards    = table(statusDocs, guarded, dataDefs)
	anyCards     = table(statusDocs, guarded, stmt.Cardinalities{"must": many, "config": opt, "mandatory": opt})
	groupingCards = table(statusDocs, definitions, dataDefs, stmt.Cardinalities{
		"action": many, "notification": many,
	})
	usesCards   = table(statusDocs, guarded, stmt.Cardinalities{"refine": many, "augment": many})
	refineCards = table(docs, stmt.Cardinalities{
		"if-feature": many, "must": many, "presence": opt, "default": many, "config": opt,
		"mandatory": opt, "min-elements": opt, "max-elements": opt,
	})
	augmentCards = table(statusDocs, guarded, dataDefs, stmt.Cardinalities{
		"case": many, "action": many, "notification": many,
	})
	operationCards = table(statusDocs, definitions, stmt.Cardinalities{
		"if-feature": many, "input": opt, "output": opt,
	})
	ioCards           = table(definitions, dataDefs, stmt.Cardinalities{"must": many})
	notificationCards = table(statusDocs, definitions, dataDefs, stmt.Cardinalities{
		"if-feature": many, "must": many,
	})

	typedefCards = table(statusDocs, stmt.Cardinalities{"type": one, "units": opt, "default": opt})
	typeCards    = stmt.Cardinalities{
		"fraction-digits": opt, "range": opt, "length": opt, "pattern": many, "enum": many,
		"bit": many, "path": opt, "require-instance": opt, "base": many, "type": many,
	}
	errorInfo     = stmt.Cardinalities{"error-message": opt, "error-app-tag": opt}
	restrictCards = table(docs, errorInfo)
	patternCards  = table(docs, errorInfo, stmt.Cardinalities{"modifier": opt})
	enumCards     = table(statusDocs, stmt.Cardinalities{"value": opt, "if-feature": many})
	bitCards      = table(statusDocs, stmt.Cardinalities{"position": opt, "if-feature": many})
	mustCards     = table(docs, errorInfo)

	extensionCards = table(statusDocs, stmt.Cardinalities{"argument": opt})
	argumentCards  = stmt.Cardinalities{"yin-element": opt}
	featureCards   = table(statusDocs, stmt.Cardinalities{"if-feature": many})
	identityCards  = table(statusDocs, stmt.Cardinalities{"if-feature": many, "base": many})

	deviationCards = stmt.Cardinalities{"description": opt, "deviate": many, "reference": opt}
	deviateCards   = stmt.Cardinalities{
		"config": opt, "default": many, "mandatory": opt, "max-elements": opt,
		"min-elements": opt, "must": many, "type": opt, "unique": many, "units": opt,
	}
)
