/*
Package names implements the core pipeline for character-level name
synthesis: a fixed character vocabulary, expansion of raw names into
(prefix, next-character) training pairs, one-hot window encoding shared
by training and inference, temperature-scaled categorical sampling, and
an autoregressive generator that drives any model implementing the
Predictor contract.

The package owns no model weights and no persistence; see pkg/model for
a bundled SQLite-backed predictor and pkg/corpus for name ingestion.
*/
package names
