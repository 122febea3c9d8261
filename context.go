package jsonschema

import (
	"context"
	"encoding/base64"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"sync"
	"time"

	"github.com/go-json-experiment/json"

	"github.com/goccy/go-yaml"
)

// ValidationMode controls how the "format" keyword is enforced during validation.
// It composes with a dialect's own format vocabulary, which may treat format as
// annotation-only or as an assertion.
type ValidationMode string

const (
	// FormatOff never fails validation on an unrecognized or non-conforming format; format
	// values are still attached as annotations.
	FormatOff ValidationMode = "off"
	// FormatKnown fails validation only for known format names whose value does not conform.
	FormatKnown ValidationMode = "known"
	// FormatStrict additionally fails validation when the format name itself is not registered.
	FormatStrict ValidationMode = "strict"
)

// FormatDef defines a custom format validation rule
type FormatDef struct {
	// Type specifies which JSON Schema type this format applies to (optional)
	// Supported values: "string", "number", "integer", "boolean", "array", "object"
	// Empty string means applies to all types
	Type string

	// Validate is the validation function
	Validate func(any) bool
}

// Context represents a JSON Schema ctx that manages schema compilation, the dialect
// catalog, and all registries (schemas, formats, loaders, regex cache) shared across
// every schema parsed through it.
type Context struct {
	mu             sync.RWMutex                                       // Protects concurrent access to schemas map
	schemas        map[string]*Schema                                 // Cache of compiled schemas.
	unresolvedRefs map[string][]*Schema                               // Track schemas that have unresolved references by URI
	Decoders       map[string]func(string) ([]byte, error)            // Decoders for various encoding formats.
	MediaTypes     map[string]func([]byte) (any, error)               // Media type handlers for unmarshalling data.
	Loaders        map[string]func(url string) (io.ReadCloser, error) // Functions to load schemas from URLs.
	DefaultBaseURI string                                             // Base URI used to resolve relative references.
	PreserveExtra  bool                                               // Keep unrecognized keywords on Schema.Extra after parse.

	// ValidationMode controls format enforcement; former: the boolean AssertFormat flag.
	ValidationMode ValidationMode

	// dialects is the URI -> Dialect catalog.
	dialects       map[string]*Dialect
	defaultDialect *Dialect

	// JSON encoder/decoder configuration
	jsonEncoder func(v any) ([]byte, error)
	jsonDecoder func(data []byte, v any) error

	// regexCache memoizes compiled patterns by source string.
	regexCache   map[string]*regexp.Regexp
	regexCacheMu sync.RWMutex

	// Custom format registry
	customFormats   map[string]*FormatDef // Registry for custom format definitions
	customFormatsRW sync.RWMutex          // Protects concurrent access to custom formats
}

// NewContext creates a new Context instance and initializes it with default settings:
// the 2020-12 dialect as default, annotation-only format mode, and the standard loaders.
func NewContext() *Context {
	ctx := &Context{
		schemas:        make(map[string]*Schema),
		unresolvedRefs: make(map[string][]*Schema),
		Decoders:       make(map[string]func(string) ([]byte, error)),
		MediaTypes:     make(map[string]func([]byte) (any, error)),
		Loaders:        make(map[string]func(url string) (io.ReadCloser, error)),
		DefaultBaseURI: "",
		ValidationMode: FormatOff,
		dialects:       make(map[string]*Dialect),
		regexCache:     make(map[string]*regexp.Regexp),
		customFormats:  make(map[string]*FormatDef),

		// Default to go-json-experiment JSON implementation
		jsonEncoder: func(v any) ([]byte, error) { return json.Marshal(v) },
		jsonDecoder: func(data []byte, v any) error { return json.Unmarshal(data, v) },
	}
	ctx.initDefaults()
	ctx.registerStandardDialects()
	return ctx
}

// WithEncoderJSON configures custom JSON encoder implementation
func (c *Context) WithEncoderJSON(encoder func(v any) ([]byte, error)) *Context {
	c.jsonEncoder = encoder
	return c
}

// WithDecoderJSON configures custom JSON decoder implementation
func (c *Context) WithDecoderJSON(decoder func(data []byte, v any) error) *Context {
	c.jsonDecoder = decoder
	return c
}

// Compile compiles a JSON schema and caches it under its $id, or under the first URI given when the schema has no $id; a schema with neither is not cached.
func (c *Context) Compile(jsonSchema []byte, uris ...string) (*Schema, error) {
	schema, err := newSchema(jsonSchema)
	if err != nil {
		return nil, err
	}

	if schema.ID == "" && len(uris) > 0 {
		schema.ID = uris[0]
	}

	uri := schema.ID

	if uri != "" && isValidURI(uri) {
		schema.uri = uri

		c.mu.RLock()
		existingSchema, exists := c.schemas[uri]
		c.mu.RUnlock()

		if exists {
			return existingSchema, nil
		}
	}

	dialect, err := c.dialectFor(schema)
	if err != nil {
		return nil, err
	}
	schema.dialect = dialect

	schema.initializeSchema(c, nil)

	if err := schema.validateRegexSyntax(); err != nil {
		return nil, err
	}

	if err := schema.buildKeywordProgram(); err != nil {
		return nil, err
	}

	if err := schema.runKeywordParse(); err != nil {
		return nil, err
	}

	c.mu.Lock()
	if schema.uri != "" && isValidURI(schema.uri) {
		c.schemas[schema.uri] = schema
	}

	// Track unresolved references from this schema
	c.trackUnresolvedReferences(schema)

	// If this schema has a URI, check if any previously compiled schemas were waiting for it
	var schemasToResolve []*Schema
	if schema.uri != "" {
		if waitingSchemas, exists := c.unresolvedRefs[schema.uri]; exists {
			schemasToResolve = make([]*Schema, len(waitingSchemas))
			copy(schemasToResolve, waitingSchemas)
			delete(c.unresolvedRefs, schema.uri) // Clear the waiting list
		}
	}
	c.mu.Unlock()

	// Only re-resolve schemas that were actually waiting for this URI
	for _, waitingSchema := range schemasToResolve {
		waitingSchema.ResolveUnresolvedReferences()
		// Re-track any still unresolved references
		c.mu.Lock()
		c.trackUnresolvedReferences(waitingSchema)
		c.mu.Unlock()
	}

	return schema, nil
}

// dialectFor resolves the dialect a schema declares via $schema, defaulting to the
// context's default dialect when absent.
func (c *Context) dialectFor(schema *Schema) (*Dialect, error) {
	if schema.Schema == "" {
		if c.defaultDialect == nil {
			return nil, ErrUnknownDialect
		}
		return c.defaultDialect, nil
	}

	c.mu.RLock()
	dialect, ok := c.dialects[schema.Schema]
	c.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownDialect, schema.Schema)
	}
	return dialect, nil
}

// trackUnresolvedReferences tracks which schemas have unresolved references to which URIs
// This method should be called with mutex locked
func (c *Context) trackUnresolvedReferences(schema *Schema) {
	unresolvedURIs := schema.GetUnresolvedReferenceURIs()
	for _, uri := range unresolvedURIs {
		if c.unresolvedRefs[uri] == nil {
			c.unresolvedRefs[uri] = make([]*Schema, 0)
		}
		// Check if schema is already in the list to avoid duplicates
		found := false
		for _, existing := range c.unresolvedRefs[uri] {
			if existing == schema {
				found = true
				break
			}
		}
		if !found {
			c.unresolvedRefs[uri] = append(c.unresolvedRefs[uri], schema)
		}
	}
}

// resolveSchemaURL attempts to fetch and compile a schema from a URL.
func (c *Context) resolveSchemaURL(url string) (*Schema, error) {
	id, anchor := splitRef(url)

	c.mu.RLock()
	schema, exists := c.schemas[id]
	c.mu.RUnlock()

	if exists {
		return schema, nil // Return cached schema if available
	}

	loader, ok := c.Loaders[getURLScheme(url)]
	if !ok {
		return nil, ErrNoLoaderRegistered
	}

	body, err := loader(url)
	if err != nil {
		return nil, err
	}
	defer body.Close() //nolint:errcheck

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, ErrDataRead
	}

	compiledSchema, err := c.Compile(data, id)

	if err != nil {
		return nil, err
	}

	if anchor != "" {
		return compiledSchema.resolveAnchor(anchor)
	}

	return compiledSchema, nil
}

// SetSchema associates a specific schema with a URI.
func (c *Context) SetSchema(uri string, schema *Schema) *Context {
	c.mu.Lock()
	c.schemas[uri] = schema
	c.mu.Unlock()
	return c
}

// GetSchema retrieves a schema by reference. If the schema is not found in the cache and the ref is a URL, it tries to resolve it.
func (c *Context) GetSchema(ref string) (*Schema, error) {
	baseURI, anchor := splitRef(ref)

	c.mu.RLock()
	schema, exists := c.schemas[baseURI]
	c.mu.RUnlock()

	if exists {
		if baseURI == ref {
			return schema, nil
		}
		return schema.resolveAnchor(anchor)
	}

	return c.resolveSchemaURL(ref)
}

// SetDefaultBaseURI sets the default base URL for resolving relative references.
func (c *Context) SetDefaultBaseURI(baseURI string) *Context {
	c.DefaultBaseURI = baseURI
	return c
}

// SetAssertFormat enables or disables format assertion. Former: the only format knob before
// ValidationMode existed; kept for source compatibility, mapped onto the tri-state mode.
func (c *Context) SetAssertFormat(assert bool) *Context {
	if assert {
		c.ValidationMode = FormatKnown
	} else {
		c.ValidationMode = FormatOff
	}
	return c
}

// SetPreserveExtra controls whether keywords outside the known set are kept on
// Schema.Extra after parse, so annotation-keyword validation has a value to attach.
func (c *Context) SetPreserveExtra(preserve bool) *Context {
	c.PreserveExtra = preserve
	return c
}

// SetValidationMode sets the format enforcement mode directly.
func (c *Context) SetValidationMode(mode ValidationMode) *Context {
	c.ValidationMode = mode
	return c
}

// AssertFormat reports whether format assertion is currently anything other than off.
func (c *Context) AssertFormat() bool {
	return c.ValidationMode != FormatOff
}

// RegisterDialect adds or replaces a dialect in the context's catalog, keyed by its
// meta-schema URI.
func (c *Context) RegisterDialect(dialect *Dialect) *Context {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dialects[dialect.URI] = dialect
	return c
}

// SetDefaultDialect sets the dialect used when a schema declares no $schema.
func (c *Context) SetDefaultDialect(dialect *Dialect) *Context {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.defaultDialect = dialect
	c.dialects[dialect.URI] = dialect
	return c
}

// Dialect looks up a registered dialect by its meta-schema URI.
func (c *Context) Dialect(uri string) (*Dialect, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	d, ok := c.dialects[uri]
	return d, ok
}

// registerStandardDialects registers the four catalog dialects and makes 2020-12 the
// default.
func (c *Context) registerStandardDialects() {
	for _, d := range standardDialects() {
		c.dialects[d.URI] = d
	}
	c.defaultDialect = c.dialects[Dialect202012URI]
}

// patternFor returns a compiled regex for pattern, compiling and memoizing on first use.
func (c *Context) patternFor(pattern string) (*regexp.Regexp, error) {
	c.regexCacheMu.RLock()
	re, ok := c.regexCache[pattern]
	c.regexCacheMu.RUnlock()
	if ok {
		return re, nil
	}

	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}

	c.regexCacheMu.Lock()
	c.regexCache[pattern] = re
	c.regexCacheMu.Unlock()
	return re, nil
}

// RegisterDecoder adds a new decoder function for a specific encoding.
func (c *Context) RegisterDecoder(encodingName string, decoderFunc func(string) ([]byte, error)) *Context {
	c.Decoders[encodingName] = decoderFunc
	return c
}

// RegisterMediaType adds a new unmarshal function for a specific media type.
func (c *Context) RegisterMediaType(mediaTypeName string, unmarshalFunc func([]byte) (any, error)) *Context {
	c.MediaTypes[mediaTypeName] = unmarshalFunc
	return c
}

// RegisterLoader adds a new loader function for a specific URI scheme.
func (c *Context) RegisterLoader(scheme string, loaderFunc func(url string) (io.ReadCloser, error)) *Context {
	c.Loaders[scheme] = loaderFunc
	return c
}

// initDefaults initializes default values for decoders, media types, and loaders.
func (c *Context) initDefaults() {
	c.Decoders["base64"] = base64.StdEncoding.DecodeString
	c.setupMediaTypes()
	c.setupLoaders()
}

// setupMediaTypes configures default media type handlers.
func (c *Context) setupMediaTypes() {
	c.MediaTypes["application/json"] = func(data []byte) (any, error) {
		var temp any
		if err := c.jsonDecoder(data, &temp); err != nil {
			return nil, ErrJSONUnmarshal
		}
		return temp, nil
	}

	c.MediaTypes["application/xml"] = func(data []byte) (any, error) {
		var temp any
		if err := xml.Unmarshal(data, &temp); err != nil {
			return nil, ErrXMLUnmarshal
		}
		return temp, nil
	}

	c.MediaTypes["application/yaml"] = func(data []byte) (any, error) {
		var temp any
		if err := yaml.Unmarshal(data, &temp); err != nil {
			return nil, ErrYAMLUnmarshal
		}
		return temp, nil
	}
}

// setupLoaders configures default loaders for fetching schemas via HTTP/HTTPS.
func (c *Context) setupLoaders() {
	client := &http.Client{
		Timeout: 10 * time.Second, // Set a reasonable timeout for network requests.
	}

	defaultHTTPLoader := func(url string) (io.ReadCloser, error) {
		req, err := http.NewRequestWithContext(context.Background(), "GET", url, nil)
		if err != nil {
			return nil, err
		}

		resp, err := client.Do(req)
		if err != nil {
			return nil, ErrNetworkFetch
		}

		if resp.StatusCode != http.StatusOK {
			err = resp.Body.Close()
			if err != nil {
				return nil, err
			}
			return nil, ErrInvalidStatusCode
		}

		return resp.Body, nil
	}

	c.RegisterLoader("http", defaultHTTPLoader)
	c.RegisterLoader("https", defaultHTTPLoader)
}

// CompileBatch compiles multiple schemas efficiently by deferring reference resolution
// until all schemas are compiled. This is the most efficient approach when you have
// many schemas with interdependencies.
func (c *Context) CompileBatch(schemas map[string][]byte) (map[string]*Schema, error) {
	compiledSchemas := make(map[string]*Schema)

	// First pass: compile all schemas without resolving references
	for id, schemaBytes := range schemas {
		schema, err := newSchema(schemaBytes)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrSchemaCompilation, id, err)
		}

		if schema.ID == "" {
			schema.ID = id
		}
		schema.uri = schema.ID

		dialect, err := c.dialectFor(schema)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrSchemaCompilation, id, err)
		}
		schema.dialect = dialect

		// Initialize schema structure but skip reference resolution
		schema.ctx = c
		// Initialize basic properties without resolving references
		schema.initializeSchemaWithoutReferences(c, nil)

		compiledSchemas[id] = schema

		c.mu.Lock()
		if schema.uri != "" && isValidURI(schema.uri) {
			c.schemas[schema.uri] = schema
		}
		c.mu.Unlock()
	}

	// Second pass: resolve all references at once
	for id, schema := range compiledSchemas {
		schema.resolveReferences()
		if err := schema.validateRegexSyntax(); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrSchemaCompilation, id, err)
		}
		if err := schema.buildKeywordProgram(); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrSchemaCompilation, id, err)
		}
		if err := schema.runKeywordParse(); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrSchemaCompilation, id, err)
		}
	}

	return compiledSchemas, nil
}

// RegisterFormat registers a custom format.
// The optional typeName parameter specifies which JSON Schema type the format applies to
// (e.g., "string", "number"). If omitted, the format applies to all types.
func (c *Context) RegisterFormat(name string, validator func(any) bool, typeName ...string) *Context {
	c.customFormatsRW.Lock()
	defer c.customFormatsRW.Unlock()

	var t string
	if len(typeName) > 0 {
		t = typeName[0]
	}

	c.customFormats[name] = &FormatDef{
		Type:     t,
		Validate: validator,
	}
	return c
}

// UnregisterFormat removes a custom format.
func (c *Context) UnregisterFormat(name string) *Context {
	c.customFormatsRW.Lock()
	defer c.customFormatsRW.Unlock()

	delete(c.customFormats, name)
	return c
}
