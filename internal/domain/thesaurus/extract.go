// Package thesaurus extracts synonym lists from thesaurus provider documents.
//
// Provider documents are untrusted: every nesting level is type-checked and the
// first violation aborts extraction. Partial results are never returned.
package thesaurus

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"unicode/utf8"

	"github.com/kailas-cloud/wordser/internal/domain"
)

var errInvalidUTF8 = errors.New("invalid utf-8 in document")

// Kind classifies where extraction failed.
type Kind string

const (
	// KindMalformedJSON means the body is not a valid UTF-8 JSON array.
	KindMalformedJSON Kind = "malformed_json"
	// KindEmptyDocument means the provider returned an empty entry list.
	KindEmptyDocument Kind = "empty_document"
	// KindMissingField means a required key is absent or null.
	KindMissingField Kind = "missing_field"
	// KindUnexpectedShape means a node has the wrong JSON type.
	KindUnexpectedShape Kind = "unexpected_shape"
)

// ExtractionError describes the first failure point in a provider document.
type ExtractionError struct {
	Kind  Kind
	Path  string // JSON path of the offending node, e.g. $[0].meta.syns[1][0]
	Field string // set for KindMissingField
	Err   error  // underlying decode error, if any
}

func (e *ExtractionError) Error() string {
	switch e.Kind {
	case KindMalformedJSON:
		return fmt.Sprintf("thesaurus document: malformed json: %v", e.Err)
	case KindMissingField:
		return fmt.Sprintf("thesaurus document: missing field %q at %s", e.Field, e.Path)
	default:
		return fmt.Sprintf("thesaurus document: %s at %s", e.Kind, e.Path)
	}
}

// Unwrap maps the extraction kind onto the domain error taxonomy.
func (e *ExtractionError) Unwrap() error {
	if e.Kind == KindMalformedJSON {
		return domain.ErrUpstreamMalformed
	}
	return domain.ErrUpstreamUnexpectedShape
}

// Extract returns the synonyms found at $[0].meta.syns, flattened cluster by
// cluster in document order.
func Extract(raw []byte) ([]string, error) {
	if !utf8.Valid(raw) {
		return nil, &ExtractionError{Kind: KindMalformedJSON, Path: "$", Err: errInvalidUTF8}
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, &ExtractionError{Kind: KindMalformedJSON, Path: "$", Err: err}
	}
	entries, ok := doc.([]any)
	if !ok {
		return nil, &ExtractionError{
			Kind: KindMalformedJSON,
			Path: "$",
			Err:  fmt.Errorf("expected array of entries, got %s", typeName(doc)),
		}
	}
	if len(entries) == 0 {
		return nil, &ExtractionError{Kind: KindEmptyDocument, Path: "$"}
	}

	// Unknown words come back as a list of spelling suggestions (strings),
	// which fails here as an unexpected shape.
	entry, err := object(entries[0], "$[0]")
	if err != nil {
		return nil, err
	}
	metaVal, err := field(entry, "meta", "$[0]")
	if err != nil {
		return nil, err
	}
	meta, ok := metaVal.(map[string]any)
	if !ok {
		return nil, &ExtractionError{Kind: KindMissingField, Path: "$[0].meta", Field: "meta"}
	}
	syns, err := field(meta, "syns", "$[0].meta")
	if err != nil {
		return nil, err
	}

	clusters, err := stringClusters(syns, "$[0].meta.syns")
	if err != nil {
		return nil, err
	}
	return flatten(clusters), nil
}

// stringClusters validates v as an array of arrays of strings.
func stringClusters(v any, path string) ([][]string, error) {
	outer, err := array(v, path)
	if err != nil {
		return nil, err
	}
	clusters := make([][]string, 0, len(outer))
	for i, c := range outer {
		cpath := path + "[" + strconv.Itoa(i) + "]"
		inner, err := array(c, cpath)
		if err != nil {
			return nil, err
		}
		cluster := make([]string, 0, len(inner))
		for j, s := range inner {
			word, err := str(s, cpath+"["+strconv.Itoa(j)+"]")
			if err != nil {
				return nil, err
			}
			cluster = append(cluster, word)
		}
		clusters = append(clusters, cluster)
	}
	return clusters, nil
}

func flatten(clusters [][]string) []string {
	n := 0
	for _, c := range clusters {
		n += len(c)
	}
	out := make([]string, 0, n)
	for _, c := range clusters {
		out = append(out, c...)
	}
	return out
}

func field(obj map[string]any, key, path string) (any, error) {
	v, ok := obj[key]
	if !ok || v == nil {
		return nil, &ExtractionError{Kind: KindMissingField, Path: path + "." + key, Field: key}
	}
	return v, nil
}

func object(v any, path string) (map[string]any, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return nil, shapeError(path)
	}
	return m, nil
}

func array(v any, path string) ([]any, error) {
	a, ok := v.([]any)
	if !ok {
		return nil, shapeError(path)
	}
	return a, nil
}

func str(v any, path string) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", shapeError(path)
	}
	return s, nil
}

func shapeError(path string) error {
	return &ExtractionError{Kind: KindUnexpectedShape, Path: path}
}

func typeName(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "bool"
	case float64:
		return "number"
	case string:
		return "string"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}
