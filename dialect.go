package jsonschema

// Dialect URIs recognized by the standard catalog.
const (
	Dialect202012URI  = "https://json-schema.org/draft/2020-12/schema"
	DialectDraft07URI = "http://json-schema.org/draft-07/schema#"
	DialectDraft04URI = "http://json-schema.org/draft-04/schema#"
	DialectOAS31URI   = "https://spec.openapis.org/oas/3.1/dialect/base"
)

// Dialect bundles a set of keywords, vocabularies, and formats identified by its
// meta-schema URI. Vocabularies are recorded by URI only; this implementation does not
// enforce that a dialect's required vocabulary set is a superset of core, which also
// accommodates OpenAPI's relaxed base dialect.
type Dialect struct {
	URI           string
	Vocabularies  []string
	Keywords      map[string]*KeywordDescriptor
	Formats       map[string]*FormatDef
	RefExclusive  bool // older drafts treated $ref as exclusive of sibling keywords
	BooleanExclusiveBounds bool // draft-04/05: exclusiveMinimum/Maximum are booleans, not numbers
}

// keywordNames returns the dialect's known keyword names, in no particular order.
func (d *Dialect) keywordNames() []string {
	names := make([]string, 0, len(d.Keywords))
	for name := range d.Keywords {
		names = append(names, name)
	}
	return names
}

// descriptorFor looks up a keyword's descriptor in the dialect, falling back to the
// unknown-keyword annotation descriptor.
func (d *Dialect) descriptorFor(name string) *KeywordDescriptor {
	if kw, ok := d.Keywords[name]; ok {
		return kw
	}
	return annotationKeyword(name)
}

// applicatorDependents is a Dependents list naming the virtual "@unevaluated" barrier; a
// keyword carrying it sorts before the unevaluated* keywords that depend on the barrier.
var applicatorDependents = []string{"@unevaluated"}

func leaf(name string) *KeywordDescriptor {
	return &KeywordDescriptor{Name: name}
}

func withDeps(name string, deps ...string) *KeywordDescriptor {
	return &KeywordDescriptor{Name: name, Dependencies: deps}
}

func withDependents(name string, dependents ...string) *KeywordDescriptor {
	return &KeywordDescriptor{Name: name, Dependents: dependents}
}

// core2020Keywords returns the keyword descriptor table shared by dialects built on the
// 2020-12 vocabulary set (Core + Applicator + Unevaluated + Validation + Format-Annotation
// + Content + Meta-Data). Edges encode annotation-driven keyword dependencies and the
// unevaluated barrier.
func core2020Keywords() map[string]*KeywordDescriptor {
	kw := map[string]*KeywordDescriptor{
		// Core
		"$id":            withDependents("$id", "@unevaluated"),
		"$schema":        leaf("$schema"),
		"$ref":           withDependents("$ref", "@unevaluated"),
		"$dynamicRef":    withDependents("$dynamicRef", "@unevaluated"),
		"$anchor":        leaf("$anchor"),
		"$dynamicAnchor": leaf("$dynamicAnchor"),
		"$defs":          leaf("$defs"),
		"definitions":    leaf("definitions"),
		"$comment":       leaf("$comment"),
		"$vocabulary":    leaf("$vocabulary"),

		// Applicators — every in-place applicator precedes @unevaluated.
		"allOf":             withDependents("allOf", "@unevaluated"),
		"anyOf":             withDependents("anyOf", "@unevaluated"),
		"oneOf":             withDependents("oneOf", "@unevaluated"),
		"not":               leaf("not"),
		"if":                leaf("if"),
		"then":              withDeps("then", "if"),
		"else":              withDeps("else", "if"),
		"dependentSchemas":  withDependents("dependentSchemas", "@unevaluated"),
		"prefixItems":       withDependents("prefixItems", "@unevaluated"),
		"items":             withDeps("items", "prefixItems"),
		"contains":          withDependents("contains", "@unevaluated"),
		"properties":        withDependents("properties", "@unevaluated"),
		"patternProperties": withDependents("patternProperties", "@unevaluated"),
		"additionalProperties": {
			Name:         "additionalProperties",
			Dependencies: []string{"properties", "patternProperties"},
			Dependents:   []string{"@unevaluated"},
		},
		"propertyNames": leaf("propertyNames"),

		// Unevaluated — depend on the barrier every applicator above feeds into.
		"unevaluatedItems":      withDeps("unevaluatedItems", "@unevaluated"),
		"unevaluatedProperties": withDeps("unevaluatedProperties", "@unevaluated"),

		// Validation
		"type":              leaf("type"),
		"enum":              leaf("enum"),
		"const":             leaf("const"),
		"multipleOf":        leaf("multipleOf"),
		"maximum":           leaf("maximum"),
		"exclusiveMaximum":  leaf("exclusiveMaximum"),
		"minimum":           leaf("minimum"),
		"exclusiveMinimum":  leaf("exclusiveMinimum"),
		"maxLength":         leaf("maxLength"),
		"minLength":         leaf("minLength"),
		"pattern":           leaf("pattern"),
		"maxItems":          leaf("maxItems"),
		"minItems":          leaf("minItems"),
		"uniqueItems":       leaf("uniqueItems"),
		"maxContains":       withDeps("maxContains", "contains"),
		"minContains":       withDeps("minContains", "contains"),
		"maxProperties":     leaf("maxProperties"),
		"minProperties":     leaf("minProperties"),
		"required":          leaf("required"),
		"dependentRequired": leaf("dependentRequired"),

		// Format
		"format": leaf("format"),

		// Content
		"contentEncoding":  leaf("contentEncoding"),
		"contentMediaType": leaf("contentMediaType"),
		"contentSchema":    withDeps("contentSchema", "contentMediaType"),

		// Meta-Data (annotation-only, never fail validation)
		"title":       leaf("title"),
		"description": leaf("description"),
		"default":     leaf("default"),
		"deprecated":  leaf("deprecated"),
		"readOnly":    leaf("readOnly"),
		"writeOnly":   leaf("writeOnly"),
		"examples":    leaf("examples"),

		"@unevaluated": leaf("@unevaluated"),
	}
	attachStandardOperations(kw)
	return kw
}

// standardDialects builds the four catalog dialects. 2020-12 is the full vocabulary set;
// Draft-07 and Draft-04 are expressed as the 2020-12 table with the documented per-draft
// differences; OAS 3.1 base is 2020-12 extended with annotation-only keywords.
func standardDialects() []*Dialect {
	draft2020 := &Dialect{
		URI:          Dialect202012URI,
		Vocabularies: []string{"core", "applicator", "unevaluated", "validation", "format-annotation", "content", "meta-data"},
		Keywords:     core2020Keywords(),
		Formats:      standardFormatDefs(),
	}

	draft07Keywords := core2020Keywords()
	delete(draft07Keywords, "prefixItems")
	delete(draft07Keywords, "unevaluatedItems")
	delete(draft07Keywords, "unevaluatedProperties")
	delete(draft07Keywords, "$dynamicRef")
	delete(draft07Keywords, "$dynamicAnchor")
	delete(draft07Keywords, "$vocabulary")
	draft07Keywords["items"] = leaf("items") // array-or-schema form, no prefixItems dependency
	draft07Keywords["additionalItems"] = withDeps("additionalItems", "items")
	attachStandardOperations(draft07Keywords)
	draft07 := &Dialect{
		URI:          DialectDraft07URI,
		Vocabularies: []string{"core", "applicator", "validation", "format-annotation", "content"},
		Keywords:     draft07Keywords,
		Formats:      standardFormatDefs(),
		RefExclusive: false,
	}

	draft04Keywords := core2020Keywords()
	delete(draft04Keywords, "prefixItems")
	delete(draft04Keywords, "unevaluatedItems")
	delete(draft04Keywords, "unevaluatedProperties")
	delete(draft04Keywords, "$dynamicRef")
	delete(draft04Keywords, "$dynamicAnchor")
	delete(draft04Keywords, "$vocabulary")
	delete(draft04Keywords, "$id")
	draft04Keywords["id"] = leaf("id")
	draft04Keywords["items"] = leaf("items")
	draft04Keywords["additionalItems"] = withDeps("additionalItems", "items")
	attachStandardOperations(draft04Keywords)
	draft04 := &Dialect{
		URI:                    DialectDraft04URI,
		Vocabularies:           []string{"core", "applicator", "validation"},
		Keywords:               draft04Keywords,
		Formats:                standardFormatDefs(),
		BooleanExclusiveBounds: true,
	}

	oasKeywords := core2020Keywords()
	oasKeywords["discriminator"] = leaf("discriminator")
	oasKeywords["xml"] = leaf("xml")
	oasKeywords["externalDocs"] = leaf("externalDocs")
	oasKeywords["example"] = leaf("example")
	attachStandardOperations(oasKeywords)
	oas31 := &Dialect{
		URI:          DialectOAS31URI,
		Vocabularies: []string{"core", "applicator", "unevaluated", "validation", "format-annotation", "content", "meta-data", "oas-base"},
		Keywords:     oasKeywords,
		Formats:      standardFormatDefs(),
	}

	return []*Dialect{draft2020, draft07, draft04, oas31}
}
