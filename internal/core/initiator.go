package core

import "github.com/dkeye/Meet/internal/domain"

// IsInitiator decides which side of a peer pair sends the initial offer.
// Both clients evaluate it independently against the current connection
// ids and must agree, so the comparison has to be total and commutative:
// the lexicographically smaller id initiates. Every code path that creates
// a peer link (initial roster, late joiner, reconnect) goes through this
// one function.
func IsInitiator(local, remote domain.ConnectionID) bool {
	return local < remote
}
