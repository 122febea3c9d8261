package jsonschema

import "sync"

// defaultDialect is the 2020-12 catalog dialect used when a schema node carries no dialect
// of its own, i.e. one built through the Keyword DSL rather than compiled through a Context.
var (
	defaultDialectOnce sync.Once
	defaultDialectTbl  *Dialect
)

func defaultDialect() *Dialect {
	defaultDialectOnce.Do(func() {
		defaultDialectTbl = &Dialect{
			URI:          Dialect202012URI,
			Vocabularies: []string{"core", "applicator", "unevaluated", "validation", "format-annotation", "content", "meta-data"},
			Keywords:     core2020Keywords(),
			Formats:      standardFormatDefs(),
		}
	})
	return defaultDialectTbl
}

// effectiveDialect returns the dialect this node was compiled under, or the default 2020-12
// dialect for a constructor-built schema that never went through a Context.
func (s *Schema) effectiveDialect() *Dialect {
	if s.dialect != nil {
		return s.dialect
	}
	return defaultDialect()
}

// keywordProgram returns the cached sorted keyword program, computing and caching it on
// first use for a schema node that was never routed through Context.Compile's
// buildKeywordProgram pass (constructor usage, or a node reached before that pass ran).
func (s *Schema) keywordProgram() []string {
	if s.program != nil {
		return s.program
	}
	sorted, err := sortKeywords(s.presentKeywords(), s.effectiveDialect().Keywords)
	if err != nil {
		// A cycle here would also have surfaced from buildKeywordProgram at compile time;
		// fall back to declaration order rather than drop evaluation entirely.
		return s.presentKeywords()
	}
	s.program = sorted
	return s.program
}

// runKeywordParse walks this resource's sorted keyword program and its nested schemas,
// invoking each present keyword's parse operation. Structural concerns that span the whole
// resource tree (base URI resolution, anchor scoping, reference resolution) stay in
// initializeSchemaCore and resolveReferences; what runs here is the remainder: per-keyword
// parse work that only needs the node itself, such as compiling a regular expression.
func (s *Schema) runKeywordParse() error {
	if s == nil || s.Boolean != nil {
		return nil
	}

	dialect := s.effectiveDialect()
	for _, name := range s.keywordProgram() {
		if IsVirtual(name) {
			continue
		}
		descriptor := dialect.descriptorFor(name)
		if descriptor.Parse == nil {
			continue
		}
		if err := descriptor.Parse(s); err != nil {
			return err
		}
	}

	for _, child := range s.subschemas() {
		if err := child.runKeywordParse(); err != nil {
			return err
		}
	}
	return nil
}

// groupValidate adapts a keyword group's shared evaluator (evaluateNumeric, evaluateString,
// evaluateArray, evaluateObject, evaluateContent all check several keywords together) into a
// single keyword's ValidateFunc: the group runs once, from whichever of its keywords the
// program reaches first, and every other member of the group defers to it.
func groupValidate(owner func(*Schema) string, self string, run func(*Schema, any, *DynamicScope, *EvaluationResult, map[string]bool, map[int]bool)) ValidateFunc {
	return func(schema *Schema, instance any, scope *DynamicScope, result *EvaluationResult, evaluatedProps map[string]bool, evaluatedItems map[int]bool) {
		if owner(schema) != self {
			return
		}
		run(schema, instance, scope, result, evaluatedProps, evaluatedItems)
	}
}

func numericOwner(schema *Schema) string {
	switch {
	case schema.MultipleOf != nil:
		return "multipleOf"
	case schema.Maximum != nil:
		return "maximum"
	case schema.ExclusiveMaximum != nil:
		return "exclusiveMaximum"
	case schema.Minimum != nil:
		return "minimum"
	case schema.ExclusiveMinimum != nil:
		return "exclusiveMinimum"
	default:
		return ""
	}
}

func stringOwner(schema *Schema) string {
	switch {
	case schema.MaxLength != nil:
		return "maxLength"
	case schema.MinLength != nil:
		return "minLength"
	case schema.Pattern != nil:
		return "pattern"
	default:
		return ""
	}
}

func arrayOwner(schema *Schema) string {
	switch {
	case len(schema.PrefixItems) > 0:
		return "prefixItems"
	case schema.Items != nil:
		return "items"
	case schema.Contains != nil:
		return "contains"
	case schema.MaxContains != nil:
		return "maxContains"
	case schema.MinContains != nil:
		return "minContains"
	case schema.MaxItems != nil:
		return "maxItems"
	case schema.MinItems != nil:
		return "minItems"
	case schema.UniqueItems != nil:
		return "uniqueItems"
	default:
		return ""
	}
}

func objectOwner(schema *Schema) string {
	switch {
	case schema.Properties != nil:
		return "properties"
	case schema.PatternProperties != nil:
		return "patternProperties"
	case schema.AdditionalProperties != nil:
		return "additionalProperties"
	case schema.PropertyNames != nil:
		return "propertyNames"
	case schema.MaxProperties != nil:
		return "maxProperties"
	case schema.MinProperties != nil:
		return "minProperties"
	case len(schema.Required) > 0:
		return "required"
	case len(schema.DependentRequired) > 0:
		return "dependentRequired"
	default:
		return ""
	}
}

func contentOwner(schema *Schema) string {
	switch {
	case schema.ContentEncoding != nil:
		return "contentEncoding"
	case schema.ContentMediaType != nil:
		return "contentMediaType"
	case schema.ContentSchema != nil:
		return "contentSchema"
	default:
		return ""
	}
}

func runNumericGroup(schema *Schema, instance any, _ *DynamicScope, result *EvaluationResult, _ map[string]bool, _ map[int]bool) {
	for _, err := range evaluateNumeric(schema, instance) {
		//nolint:errcheck
		result.AddError(err)
	}
}

func runStringGroup(schema *Schema, instance any, _ *DynamicScope, result *EvaluationResult, _ map[string]bool, _ map[int]bool) {
	for _, err := range evaluateString(schema, instance) {
		//nolint:errcheck
		result.AddError(err)
	}
}

func runArrayGroup(schema *Schema, instance any, scope *DynamicScope, result *EvaluationResult, evaluatedProps map[string]bool, evaluatedItems map[int]bool) {
	results, errs := evaluateArray(schema, instance, evaluatedProps, evaluatedItems, scope)
	for _, r := range results {
		//nolint:errcheck
		result.AddDetail(r)
	}
	for _, err := range errs {
		//nolint:errcheck
		result.AddError(err)
	}
}

func runObjectGroup(schema *Schema, instance any, scope *DynamicScope, result *EvaluationResult, evaluatedProps map[string]bool, evaluatedItems map[int]bool) {
	results, errs := evaluateObject(schema, instance, evaluatedProps, evaluatedItems, scope)
	for _, r := range results {
		//nolint:errcheck
		result.AddDetail(r)
	}
	for _, err := range errs {
		//nolint:errcheck
		result.AddError(err)
	}
}

func runContentGroup(schema *Schema, instance any, scope *DynamicScope, result *EvaluationResult, evaluatedProps map[string]bool, evaluatedItems map[int]bool) {
	detail, err := evaluateContent(schema, instance, evaluatedProps, evaluatedItems, scope)
	if detail != nil {
		//nolint:errcheck
		result.AddDetail(detail)
	}
	if err != nil {
		//nolint:errcheck
		result.AddError(err)
	}
}

// attachStandardOperations populates Parse/Validate on every descriptor in a dialect's
// keyword table. Called once when a table is built and again after a per-dialect table is
// derived from it by deleting and re-adding entries, so overridden descriptors (draft-07's
// array-form "items", draft-04's "id") carry the same operations as their 2020-12 source.
func attachStandardOperations(kw map[string]*KeywordDescriptor) {
	for name, d := range kw {
		attachOperation(d, name)
	}
}

func attachOperation(d *KeywordDescriptor, name string) {
	switch name {
	case "pattern":
		d.Parse = func(schema *Schema) error {
			if schema.Pattern != nil {
				_, _ = getCompiledPattern(schema)
			}
			return nil
		}
		d.Validate = groupValidate(stringOwner, "pattern", runStringGroup)
	case "patternProperties":
		d.Parse = func(schema *Schema) error {
			schema.compilePatterns()
			return nil
		}
		d.Validate = groupValidate(objectOwner, "patternProperties", runObjectGroup)
	case "$anchor":
		d.Parse = func(schema *Schema) error {
			if schema.Anchor != "" {
				schema.setAnchor(schema.Anchor)
			}
			return nil
		}
	case "$dynamicAnchor":
		d.Parse = func(schema *Schema) error {
			if schema.DynamicAnchor != "" {
				schema.setDynamicAnchor(schema.DynamicAnchor)
			}
			return nil
		}

	case "type":
		d.Validate = func(schema *Schema, instance any, _ *DynamicScope, result *EvaluationResult, _ map[string]bool, _ map[int]bool) {
			if err := evaluateType(schema, instance); err != nil {
				//nolint:errcheck
				result.AddError(err)
			}
		}
	case "enum":
		d.Validate = func(schema *Schema, instance any, _ *DynamicScope, result *EvaluationResult, _ map[string]bool, _ map[int]bool) {
			if err := evaluateEnum(schema, instance); err != nil {
				//nolint:errcheck
				result.AddError(err)
			}
		}
	case "const":
		d.Validate = func(schema *Schema, instance any, _ *DynamicScope, result *EvaluationResult, _ map[string]bool, _ map[int]bool) {
			if err := evaluateConst(schema, instance); err != nil {
				//nolint:errcheck
				result.AddError(err)
			}
		}
	case "format":
		d.Validate = func(schema *Schema, instance any, _ *DynamicScope, result *EvaluationResult, _ map[string]bool, _ map[int]bool) {
			if err := evaluateFormat(schema, instance); err != nil {
				//nolint:errcheck
				result.AddError(err)
			}
		}

	case "multipleOf", "maximum", "exclusiveMaximum", "minimum", "exclusiveMinimum":
		d.Validate = groupValidate(numericOwner, name, runNumericGroup)
	case "maxLength", "minLength":
		d.Validate = groupValidate(stringOwner, name, runStringGroup)
	case "prefixItems", "items", "contains", "maxContains", "minContains", "maxItems", "minItems", "uniqueItems":
		d.Validate = groupValidate(arrayOwner, name, runArrayGroup)
	case "properties", "additionalProperties", "propertyNames", "maxProperties", "minProperties", "required", "dependentRequired":
		d.Validate = groupValidate(objectOwner, name, runObjectGroup)
	case "contentEncoding", "contentMediaType", "contentSchema":
		d.Validate = groupValidate(contentOwner, name, runContentGroup)

	case "allOf":
		d.Validate = func(schema *Schema, instance any, scope *DynamicScope, result *EvaluationResult, evaluatedProps map[string]bool, evaluatedItems map[int]bool) {
			results, err := evaluateAllOf(schema, instance, evaluatedProps, evaluatedItems, scope)
			for _, r := range results {
				//nolint:errcheck
				result.AddDetail(r)
			}
			if err != nil {
				//nolint:errcheck
				result.AddError(err)
			}
		}
	case "anyOf":
		d.Validate = func(schema *Schema, instance any, scope *DynamicScope, result *EvaluationResult, evaluatedProps map[string]bool, evaluatedItems map[int]bool) {
			results, err := evaluateAnyOf(schema, instance, evaluatedProps, evaluatedItems, scope)
			for _, r := range results {
				//nolint:errcheck
				result.AddDetail(r)
			}
			if err != nil {
				//nolint:errcheck
				result.AddError(err)
			}
		}
	case "oneOf":
		d.Validate = func(schema *Schema, instance any, scope *DynamicScope, result *EvaluationResult, evaluatedProps map[string]bool, evaluatedItems map[int]bool) {
			results, err := evaluateOneOf(schema, instance, evaluatedProps, evaluatedItems, scope)
			for _, r := range results {
				//nolint:errcheck
				result.AddDetail(r)
			}
			if err != nil {
				//nolint:errcheck
				result.AddError(err)
			}
		}
	case "not":
		d.Validate = func(schema *Schema, instance any, scope *DynamicScope, result *EvaluationResult, evaluatedProps map[string]bool, evaluatedItems map[int]bool) {
			detail, err := evaluateNot(schema, instance, evaluatedProps, evaluatedItems, scope)
			if detail != nil {
				//nolint:errcheck
				result.AddDetail(detail)
			}
			if err != nil {
				//nolint:errcheck
				result.AddError(err)
			}
		}
	case "if":
		d.Validate = func(schema *Schema, instance any, scope *DynamicScope, result *EvaluationResult, evaluatedProps map[string]bool, evaluatedItems map[int]bool) {
			results, err := evaluateConditional(schema, instance, evaluatedProps, evaluatedItems, scope)
			for _, r := range results {
				//nolint:errcheck
				result.AddDetail(r)
			}
			if err != nil {
				//nolint:errcheck
				result.AddError(err)
			}
		}
	case "dependentSchemas":
		d.Validate = func(schema *Schema, instance any, scope *DynamicScope, result *EvaluationResult, evaluatedProps map[string]bool, evaluatedItems map[int]bool) {
			results, err := evaluateDependentSchemas(schema, instance, evaluatedProps, evaluatedItems, scope)
			for _, r := range results {
				//nolint:errcheck
				result.AddDetail(r)
			}
			if err != nil {
				//nolint:errcheck
				result.AddError(err)
			}
		}
	case "unevaluatedProperties":
		d.Validate = func(schema *Schema, instance any, scope *DynamicScope, result *EvaluationResult, evaluatedProps map[string]bool, evaluatedItems map[int]bool) {
			results, err := evaluateUnevaluatedProperties(schema, instance, evaluatedProps, evaluatedItems, scope)
			for _, r := range results {
				//nolint:errcheck
				result.AddDetail(r)
			}
			if err != nil {
				//nolint:errcheck
				result.AddError(err)
			}
		}
	case "unevaluatedItems":
		d.Validate = func(schema *Schema, instance any, scope *DynamicScope, result *EvaluationResult, evaluatedProps map[string]bool, evaluatedItems map[int]bool) {
			results, err := evaluateUnevaluatedItems(schema, instance, evaluatedProps, evaluatedItems, scope)
			for _, r := range results {
				//nolint:errcheck
				result.AddDetail(r)
			}
			if err != nil {
				//nolint:errcheck
				result.AddError(err)
			}
		}

	case "$ref":
		d.Validate = func(schema *Schema, instance any, scope *DynamicScope, result *EvaluationResult, evaluatedProps map[string]bool, evaluatedItems map[int]bool) {
			if schema.ResolvedRef == nil {
				return
			}
			refResult, props, items := schema.ResolvedRef.evaluate(instance, scope)
			if refResult != nil {
				//nolint:errcheck
				result.AddDetail(refResult)
				if !refResult.IsValid() {
					//nolint:errcheck
					result.AddError(NewEvaluationError("$ref", "ref_mismatch", "Value does not match the reference schema"))
				}
			}
			mergeStringMaps(evaluatedProps, props)
			mergeIntMaps(evaluatedItems, items)
		}
	case "$dynamicRef":
		d.Validate = func(schema *Schema, instance any, scope *DynamicScope, result *EvaluationResult, evaluatedProps map[string]bool, evaluatedItems map[int]bool) {
			if schema.ResolvedDynamicRef == nil {
				return
			}
			anchorSchema := schema.ResolvedDynamicRef
			_, anchor := splitRef(schema.DynamicRef)
			if !isJSONPointer(anchor) {
				if dynamicAnchor := schema.ResolvedDynamicRef.DynamicAnchor; dynamicAnchor != "" {
					if found := scope.LookupDynamicAnchor(dynamicAnchor); found != nil {
						anchorSchema = found
					}
				}
			}
			dynamicRefResult, props, items := anchorSchema.evaluate(instance, scope)
			if dynamicRefResult != nil {
				//nolint:errcheck
				result.AddDetail(dynamicRefResult)
				if !dynamicRefResult.IsValid() {
					//nolint:errcheck
					result.AddError(NewEvaluationError("$dynamicRef", "dynamic_ref_mismatch", "Value does not match the dynamic reference schema"))
				}
			}
			mergeStringMaps(evaluatedProps, props)
			mergeIntMaps(evaluatedItems, items)
		}
	}
}
