package domain

import "time"

// SignatureDate stamps a state-changing result with who caused it and when.
// Every broadcast event carries one so subscribers can audit and order.
type SignatureDate struct {
	Signer string    `json:"signer"`
	At     time.Time `json:"at"`
}

func Sign(userID string) SignatureDate {
	return SignatureDate{Signer: userID, At: time.Now().UTC()}
}

func (s SignatureDate) IsZero() bool {
	return s.Signer == "" && s.At.IsZero()
}
