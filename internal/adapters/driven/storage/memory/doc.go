// Package memory provides in-memory implementations of the storage
// ports. Used in tests and as a fallback when durable storage is
// unavailable. All implementations are safe for concurrent use.
package memory
