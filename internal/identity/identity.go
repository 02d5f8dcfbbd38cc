// Package identity computes the stable identifiers that make graph nodes and
// edges mergeable across repeated analysis runs.
//
// EntityID and RelationshipID are pure functions of their inputs: re-analyzing
// unchanged source yields byte-identical identifiers, which is what lets the
// graph store upsert instead of duplicate. InstanceID is a cheap per-run tag
// and must never be persisted as a join key.
package identity

import (
	"encoding/hex"
	"fmt"
	"sync/atomic"

	"github.com/zeebo/xxh3"
)

// sep is a NUL byte so that concatenated inputs stay injective:
// ("ab","c") and ("a","bc") hash differently.
const sep = "\x00"

// EntityID returns the content-addressed identifier for an entity.
// kind is the entity kind, qualifiedID the fully qualified declaration name
// (e.g. "geo.Circle.Area"), and scopeID an optional containing-scope
// identifier (repository or module id) for multi-tenant isolation.
func EntityID(kind, qualifiedID, scopeID string) string {
	return hash(kind + sep + qualifiedID + sep + scopeID)
}

// RelationshipID returns the content-addressed identifier for an edge.
func RelationshipID(edgeType, sourceID, targetID, scopeID string) string {
	return hash(edgeType + sep + sourceID + sep + targetID + sep + scopeID)
}

func hash(s string) string {
	sum := xxh3.Hash128([]byte(s)).Bytes()
	return hex.EncodeToString(sum[:])
}

// Counter hands out per-run instance numbers. The zero value is ready to use
// and safe for concurrent visitors.
type Counter struct {
	n atomic.Int64
}

// Next returns the next instance number.
func (c *Counter) Next() int64 {
	return c.n.Add(1)
}

// InstanceID returns a human-readable per-run tag for a node instance.
// It is non-deterministic across runs (counter-based) and exists only for
// local cross-referencing in logs and debug output.
func InstanceID(counter int64, kind, identifier, location string) string {
	if location == "" {
		return fmt.Sprintf("n%d:%s:%s", counter, kind, identifier)
	}
	return fmt.Sprintf("n%d:%s:%s@%s", counter, kind, identifier, location)
}
