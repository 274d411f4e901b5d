/*
Package model provides a SQLite-backed character n-gram model that
implements the names.Predictor contract. One database file holds one
model: transition frequencies are learned from a corpus with Train,
queried with backoff during Predict, and can be exported, imported,
inspected and pruned. Any other Predictor implementation can be swapped
in; this one exists so the toolkit works end to end without an external
inference runtime.
*/
package model
