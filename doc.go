// Package jsonschema implements a multi-dialect JSON Schema validator for Go,
// covering the 2020-12, Draft-07, and Draft-04 dialects plus the OpenAPI 3.1
// base dialect, with an extensible keyword registry and format catalog.
//
// Credit to https://github.com/santhosh-tekuri/jsonschema for format validators.
package jsonschema
