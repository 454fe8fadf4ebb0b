// Package resolver defines the core types and collaborator interfaces shared by
// the resolution engine: results, the failure taxonomy, store and fetch
// contracts, and the absolute-URL gate every strategy applies to a candidate.
package resolver
