// Package domain contains the core business entities and errors for
// DocFoundry: documentation collections fetched from source control,
// the documents and embedded chunks derived from them, and the results
// of ingestion runs and retrieval queries.
//
// The domain layer has no dependencies on adapters or external services.
package domain
