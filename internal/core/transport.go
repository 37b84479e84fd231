// Package core holds the transport-facing contracts shared by the
// coordinator and its adapters.
package core

// Frame is a marshaled signaling payload.
type Frame []byte

// SignalConnection abstracts the per-client messaging transport.
// Owned by the adapter; the adapter must Close() it.
type SignalConnection interface {
	TrySend(Frame) error
	Close()
}
