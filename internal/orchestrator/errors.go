package orchestrator

import "errors"

// ErrPeerExists is returned by AddPeering for a peer_id already registered.
var ErrPeerExists = errors.New("orchestrator: peer already exists")

// ErrPeerNotFound is returned by operations naming an unregistered
// peer_id — the peer_invalid error kind.
var ErrPeerNotFound = errors.New("orchestrator: peer not found")
