// Package types defines the value types shared across the broker: endpoint
// and peering identifiers, topics, data messages and the logical timestamp.
//
// These are pure value types with no dependency on any other broker package,
// mirroring the lowest layer of a typical dep2p-style module.
package types
