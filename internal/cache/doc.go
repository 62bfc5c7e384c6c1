// Package cache holds the local derived state kept next to the remote
// contact store: a TTL-bounded JSON snapshot of the contact list and a
// sqlite index from email address to contact ID.
//
// Both caches implement the engine's invalidation contract: targeted
// deletions evict individual contact IDs, clearing the address book
// wipes them entirely. They are advisory performance layers; losing
// either is never an error for the operation that triggered the
// invalidation.
package cache
