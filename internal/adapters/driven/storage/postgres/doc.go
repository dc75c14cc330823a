// Package postgres provides a vector index backed by PostgreSQL with the
// pgvector extension.
//
// Similarity is computed by the database with the cosine distance operator
// (<=>). The embedding column is an unconstrained vector so collections of
// different dimensions can share a table; the dimension of each collection
// is recorded in docchatter_collections and enforced on every write.
package postgres
