// Package serdes converts between user document types and the raw JSON the
// Data API speaks. Collections are generic over the document type; the codec
// is the pluggable seam that lets callers swap encoding/json for something
// custom without touching the client.
package serdes

import "encoding/json"

// Document is the schemaless document shape used when callers do not bring
// their own struct type.
type Document = map[string]any

// Row is the tabular counterpart of Document, used by table reads.
type Row = map[string]any

// Codec serializes documents for the wire and deserializes raw response
// items back into the caller's type.
type Codec[T any] interface {
	Serialize(doc T) (json.RawMessage, error)
	Deserialize(raw json.RawMessage) (T, error)
}

type jsonCodec[T any] struct{}

// JSON returns the default codec backed by encoding/json.
func JSON[T any]() Codec[T] {
	return jsonCodec[T]{}
}

func (jsonCodec[T]) Serialize(doc T) (json.RawMessage, error) {
	return json.Marshal(doc)
}

func (jsonCodec[T]) Deserialize(raw json.RawMessage) (T, error) {
	var out T

	if err := json.Unmarshal(raw, &out); err != nil {
		var zero T

		return zero, err
	}

	return out, nil
}

// Funcs adapts a pair of functions into a Codec. Either function may be nil,
// in which case the default JSON behavior applies for that direction.
func Funcs[T any](
	serialize func(doc T) (json.RawMessage, error),
	deserialize func(raw json.RawMessage) (T, error),
) Codec[T] {
	return funcCodec[T]{serialize: serialize, deserialize: deserialize}
}

type funcCodec[T any] struct {
	serialize   func(doc T) (json.RawMessage, error)
	deserialize func(raw json.RawMessage) (T, error)
}

func (c funcCodec[T]) Serialize(doc T) (json.RawMessage, error) {
	if c.serialize == nil {
		return jsonCodec[T]{}.Serialize(doc)
	}

	return c.serialize(doc)
}

func (c funcCodec[T]) Deserialize(raw json.RawMessage) (T, error) {
	if c.deserialize == nil {
		return jsonCodec[T]{}.Deserialize(raw)
	}

	return c.deserialize(raw)
}
