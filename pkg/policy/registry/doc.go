// Package registry serves policy documents to the pipeline with a short
// TTL cache in front of the durable store.
//
// Reads favor availability: a missing store or a transient read failure is
// logged and downgraded to an empty list so document intake keeps running.
// Writes favor correctness: they require a store, validate the document,
// surface NotFound, and invalidate the cache so the next read observes the
// write.
package registry
