// Package challenge issues liveness challenges.
package challenge

import (
	"math/rand/v2"

	"github.com/veridion-labs/facegate/internal/domain"
)

// Issuer selects challenges uniformly from the fixed vocabulary. It keeps
// no history: consecutive repeats are allowed.
type Issuer struct {
	intn func(n int) int
}

// NewIssuer creates an Issuer backed by the default random source.
func NewIssuer() *Issuer {
	return &Issuer{intn: rand.IntN}
}

// Issue returns one challenge. The caller is expected to echo the label
// back on the verify call; no session state is created here.
func (i *Issuer) Issue() domain.Challenge {
	return domain.Challenges[i.intn(len(domain.Challenges))]
}
