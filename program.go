package jsonschema

// presentKeywords lists the keyword names actually set on this schema node, in their
// struct declaration order, plus any unrecognized keywords preserved on Extra. This is
// the "keys present in the node" input to the parse pipeline's keyword program step.
func (s *Schema) presentKeywords() []string {
	var names []string

	add := func(present bool, name string) {
		if present {
			names = append(names, name)
		}
	}

	add(s.ID != "", "$id")
	add(s.Schema != "", "$schema")
	add(s.Ref != "", "$ref")
	add(s.DynamicRef != "", "$dynamicRef")
	add(s.Anchor != "", "$anchor")
	add(s.DynamicAnchor != "", "$dynamicAnchor")
	add(s.Defs != nil, "$defs")

	add(s.AllOf != nil, "allOf")
	add(s.AnyOf != nil, "anyOf")
	add(s.OneOf != nil, "oneOf")
	add(s.Not != nil, "not")
	add(s.If != nil, "if")
	add(s.Then != nil, "then")
	add(s.Else != nil, "else")
	add(s.DependentSchemas != nil, "dependentSchemas")

	add(len(s.PrefixItems) > 0, "prefixItems")
	add(s.Items != nil, "items")
	add(s.Contains != nil, "contains")

	add(s.Properties != nil, "properties")
	add(s.PatternProperties != nil, "patternProperties")
	add(s.AdditionalProperties != nil, "additionalProperties")
	add(s.PropertyNames != nil, "propertyNames")

	add(s.Type != nil, "type")
	add(s.Enum != nil, "enum")
	add(s.Const != nil, "const")

	add(s.MultipleOf != nil, "multipleOf")
	add(s.Maximum != nil, "maximum")
	add(s.ExclusiveMaximum != nil, "exclusiveMaximum")
	add(s.Minimum != nil, "minimum")
	add(s.ExclusiveMinimum != nil, "exclusiveMinimum")

	add(s.MaxLength != nil, "maxLength")
	add(s.MinLength != nil, "minLength")
	add(s.Pattern != nil, "pattern")

	add(s.MaxItems != nil, "maxItems")
	add(s.MinItems != nil, "minItems")
	add(s.UniqueItems != nil, "uniqueItems")
	add(s.MaxContains != nil, "maxContains")
	add(s.MinContains != nil, "minContains")
	add(s.UnevaluatedItems != nil, "unevaluatedItems")

	add(s.MaxProperties != nil, "maxProperties")
	add(s.MinProperties != nil, "minProperties")
	add(len(s.Required) > 0, "required")
	add(len(s.DependentRequired) > 0, "dependentRequired")
	add(s.UnevaluatedProperties != nil, "unevaluatedProperties")

	add(s.Format != nil, "format")

	add(s.ContentEncoding != nil, "contentEncoding")
	add(s.ContentMediaType != nil, "contentMediaType")
	add(s.ContentSchema != nil, "contentSchema")

	add(s.Title != nil, "title")
	add(s.Description != nil, "description")
	add(s.Default != nil, "default")
	add(s.Deprecated != nil, "deprecated")
	add(s.ReadOnly != nil, "readOnly")
	add(s.WriteOnly != nil, "writeOnly")
	add(s.Examples != nil, "examples")

	for name := range s.Extra {
		names = append(names, name)
	}

	return names
}

// buildKeywordProgram computes and caches this resource's sorted keyword program, and
// recurses into every nested schema node reachable from this one so the whole document
// carries a program. A boolean schema and a schema with no dialect (constructor usage,
// never compiled through a Context) are no-ops.
func (s *Schema) buildKeywordProgram() error {
	if s == nil || s.Boolean != nil {
		return nil
	}

	if s.dialect != nil {
		names := s.presentKeywords()
		sorted, err := sortKeywords(names, s.dialect.Keywords)
		if err != nil {
			return err
		}
		s.program = sorted
	}

	for _, child := range s.subschemas() {
		if err := child.buildKeywordProgram(); err != nil {
			return err
		}
	}
	return nil
}

// subschemas returns every directly nested schema node, propagating the parent's dialect
// since a nested schema without its own $schema inherits the enclosing resource's dialect.
func (s *Schema) subschemas() []*Schema {
	var out []*Schema
	collect := func(child *Schema) {
		if child == nil {
			return
		}
		if child.dialect == nil {
			child.dialect = s.dialect
		}
		out = append(out, child)
	}

	for _, sub := range s.AllOf {
		collect(sub)
	}
	for _, sub := range s.AnyOf {
		collect(sub)
	}
	for _, sub := range s.OneOf {
		collect(sub)
	}
	collect(s.Not)
	collect(s.If)
	collect(s.Then)
	collect(s.Else)
	for _, sub := range s.DependentSchemas {
		collect(sub)
	}
	for _, sub := range s.PrefixItems {
		collect(sub)
	}
	collect(s.Items)
	collect(s.Contains)
	if s.Properties != nil {
		for _, sub := range *s.Properties {
			collect(sub)
		}
	}
	if s.PatternProperties != nil {
		for _, sub := range *s.PatternProperties {
			collect(sub)
		}
	}
	collect(s.AdditionalProperties)
	collect(s.PropertyNames)
	collect(s.UnevaluatedItems)
	collect(s.UnevaluatedProperties)
	collect(s.ContentSchema)
	for _, sub := range s.Defs {
		collect(sub)
	}

	return out
}
