// Package store holds the orchestrator's bounded dedup cache, which keeps a
// flood-forwarded data_message from being redelivered locally or
// re-forwarded once it has already been routed once.
package store
