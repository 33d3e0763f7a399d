// Package domain contains the core value types of the retrieval-augmented
// generation pipeline: conversation messages, query results, and the error
// taxonomy shared by all layers.
package domain
