// Package models holds the data shapes passed between pipeline stages:
// raw documents, flattened records, the rectangular dataset built from them,
// and references to objects read from and staged to object storage.
package models

// RawDocument is one decoded JSON object. Values are string, int64, float64,
// bool, nil, []interface{} or a nested map[string]interface{}.
type RawDocument = map[string]interface{}

// FlatRecord is a single-level mapping from a snake_cased compound column name
// to a scalar value. No value is itself a mapping.
type FlatRecord map[string]interface{}

// ObjectRef identifies an object in a bucket.
type ObjectRef struct {
	Bucket string `json:"bucket"`
	Key    string `json:"key"`
	Size   int64  `json:"size"`
}

// StagedChunk is an immutable reference to one serialized partition of a
// Dataset written to object storage.
type StagedChunk struct {
	Bucket string `json:"bucket"`
	Key    string `json:"key"`
	Rows   int    `json:"rows"`
	Bytes  int    `json:"bytes"`
}
