package domain

import "strings"

// SessionID identifies a session for its whole lifetime. It is the kind
// prefix followed by 32 lowercase hex characters.
type SessionID string

func (id SessionID) String() string { return string(id) }

// Kind selects the backend a session runs on.
type Kind int

const (
	KindPlaintext Kind = iota
	KindHomomorphic
)

const (
	prefixPlaintext   = "open"
	prefixHomomorphic = "enc"
)

// Prefix returns the session id prefix for the kind.
func (k Kind) Prefix() string {
	if k == KindHomomorphic {
		return prefixHomomorphic
	}
	return prefixPlaintext
}

func (k Kind) String() string {
	switch k {
	case KindPlaintext:
		return "plaintext"
	case KindHomomorphic:
		return "homomorphic"
	default:
		return "unknown"
	}
}

// KindOf infers the backend kind from a session id prefix.
func KindOf(id SessionID) (Kind, bool) {
	switch {
	case strings.HasPrefix(string(id), prefixHomomorphic):
		return KindHomomorphic, true
	case strings.HasPrefix(string(id), prefixPlaintext):
		return KindPlaintext, true
	default:
		return 0, false
	}
}
