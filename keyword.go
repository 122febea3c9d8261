package jsonschema

import "strings"

// ParseFunc parses a keyword's raw value on a schema node at the time the node is
// discovered by the parser pipeline. It is invoked with the schema node
// already populated (unmarshaling already bound the keyword's field); ParseFunc exists
// for keywords whose parse has a side effect beyond field population — registering a
// resource, an anchor, or a pending reference.
type ParseFunc func(schema *Schema) error

// ValidateFunc validates a keyword on a schema node against an instance value, recording
// errors and annotations on result.
type ValidateFunc func(schema *Schema, instance any, scope *DynamicScope, result *EvaluationResult, evaluatedProps map[string]bool, evaluatedItems map[int]bool)

// KeywordDescriptor is the extensible, open-set representation of a keyword: a name, its dependency/dependent edges, and its two
// operations. Dialects are maps from keyword name to *KeywordDescriptor; nothing in the
// sort or dispatch machinery depends on a concrete Go type per keyword.
type KeywordDescriptor struct {
	Name         string
	Dependencies []string // names (possibly virtual, i.e. "@"-prefixed) that must precede this keyword
	Dependents   []string // names (possibly virtual) that must follow this keyword
	Parse        ParseFunc
	Validate     ValidateFunc
}

// IsVirtual reports whether a keyword name is a virtual ordering barrier rather than a
// concrete keyword.
func IsVirtual(name string) bool {
	return strings.HasPrefix(name, "@")
}

// annotationKeyword is the descriptor assigned to any key present in a schema object that
// the current dialect does not recognize. Its parse accepts any value; its validate
// records the raw value as an annotation at the current location.
func annotationKeyword(name string) *KeywordDescriptor {
	return &KeywordDescriptor{
		Name: name,
		Parse: func(schema *Schema) error {
			return nil
		},
		Validate: func(schema *Schema, instance any, scope *DynamicScope, result *EvaluationResult, evaluatedProps map[string]bool, evaluatedItems map[int]bool) {
			if v, ok := schema.Extra[name]; ok {
				//nolint:errcheck
				result.AddAnnotation(name, v)
			}
		},
	}
}

// sortKeywords produces a dependency-respecting stable order for a set of keyword names
// present on one schema node, per the sort contract:
//   - every real dependency of K precedes K when present in the list;
//   - every real dependent of K follows K when present in the list;
//   - a virtual barrier mentioned by some K's dependents and some K''s dependencies orders
//     the first before the second;
//   - keywords unconstrained by the above retain their original relative order.
//
// descriptors maps every keyword name (including virtual barriers implied by the dialect)
// to its descriptor. Returns ErrCycleDetected naming the participating keys if no such
// order exists.
func sortKeywords(names []string, descriptors map[string]*KeywordDescriptor) ([]string, error) {
	n := len(names)
	if n <= 1 {
		return append([]string(nil), names...), nil
	}

	index := make(map[string]int, n)
	order := append([]string(nil), names...)
	for i, name := range order {
		index[name] = i
	}

	// before[a][b] = true means a must precede b, derived from direct dependency edges and
	// from virtual barriers shared between a dependent-side mention and a dependency-side
	// mention.
	before := func(a, b string) bool {
		da := descriptors[a]
		db := descriptors[b]
		if da == nil || db == nil {
			return false
		}
		// da lists b (or a barrier b shares) as a dependent.
		for _, dep := range da.Dependents {
			if dep == b {
				return true
			}
			for _, bdep := range db.Dependencies {
				if bdep == dep {
					return true
				}
			}
		}
		// db lists a (or a barrier a shares) as a dependency.
		for _, dep := range db.Dependencies {
			if dep == a {
				return true
			}
		}
		return false
	}

	maxIterations := n * n
	for iter := 0; iter < maxIterations; iter++ {
		swapped := false
		for i := 0; i < len(order)-1; i++ {
			a, b := order[i], order[i+1]
			if before(a, b) && before(b, a) {
				return nil, cycleError(order, descriptors)
			}
			// a should come after b: move b before a, preserving everything else's
			// relative order (tie-break: never move a keyword already consistent).
			if before(b, a) && !before(a, b) {
				order[i], order[i+1] = order[i+1], order[i]
				swapped = true
			}
		}
		if !swapped {
			return order, nil
		}
	}

	return nil, cycleError(order, descriptors)
}

// cycleError identifies keywords that must each precede the other, or that remain out of
// order after the sort's iteration cap is exhausted, and reports them via ErrCycleDetected.
func cycleError(order []string, descriptors map[string]*KeywordDescriptor) error {
	var participants []string
	for i := 0; i < len(order); i++ {
		for j := 0; j < len(order); j++ {
			if i == j {
				continue
			}
			a, b := order[i], order[j]
			da, db := descriptors[a], descriptors[b]
			if da == nil || db == nil {
				continue
			}
			aBeforeB := dependsOn(da, b, descriptors)
			bBeforeA := dependsOn(db, a, descriptors)
			if aBeforeB && bBeforeA {
				participants = append(participants, a, b)
			}
		}
	}
	if len(participants) == 0 {
		participants = order
	}
	return &CycleDetectedError{Keywords: dedupe(participants)}
}

func dependsOn(d *KeywordDescriptor, target string, descriptors map[string]*KeywordDescriptor) bool {
	for _, dep := range d.Dependents {
		if dep == target {
			return true
		}
		if t := descriptors[target]; t != nil {
			for _, tdep := range t.Dependencies {
				if tdep == dep {
					return true
				}
			}
		}
	}
	return false
}

func dedupe(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		if !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
	}
	return out
}

// CycleDetectedError reports a keyword dependency cycle found while sorting a schema
// object's keyword program.
type CycleDetectedError struct {
	Keywords []string
}

func (e *CycleDetectedError) Error() string {
	return "jsonschema: cycle detected among keywords: " + strings.Join(e.Keywords, ", ")
}

func (e *CycleDetectedError) Unwrap() error {
	return ErrCycleDetected
}
