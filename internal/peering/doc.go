// Package peering implements the graceful-close ("BYE") handshake between
// two endpoints, and the liveness status a peering reports to its owner.
package peering
