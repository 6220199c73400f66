// Package gapr implements matrix seriation: reordering the rows or columns
// of a data matrix so that similar items end up next to each other.
//
// The pipeline computes a pairwise proximity matrix (distance, correlation,
// or binary association), builds an agglomerative clustering tree from it,
// and then resolves the left/right orientation of every tree node, since a
// dendrogram over n items fixes the grouping but leaves 2^(n-1) equivalent
// leaf orders. The resolved leaf order is the seriation.
//
// Basic usage:
//
//	cfg := gapr.DefaultConfig()
//	cfg.Proximity = gapr.ProximityPearson
//	result, err := gapr.Seriate(data, cfg)
//	// result.Order is the 1-based left-to-right item order
//	// result.Left/Right/Height describe the flip-resolved dendrogram
//
// For precomputed proximity matrices:
//
//	result, err := gapr.SeriatePrecomputed(prox, n, cfg)
//
// # Flip policies
//
// Three policies decide each node's child orientation. "external" follows a
// target order, by default the rank-2 ellipse order of the proximity matrix
// (EllipseSort), which projects items onto the plane of the two leading
// eigenvectors and reads them off by angle. "uncle" places each child next
// to the subtree its leaves are closest to on average; "grandpa" does the
// same against the grandparent's other branch, which resists pockets of
// locally misleading similarity:
//
//	cfg.Flip = gapr.FlipUncle
//	cfg.Flip = gapr.FlipGrandpa
//
// How well an order approaches Robinson form can be scored with AR, GAR and
// RGAR, which count anti-Robinson events of the reordered matrix.
package gapr
