package audit

import (
	"fmt"
	"strings"
)

// Kind classifies an audit failure.
type Kind int

const (
	// KindChain: epochs out of order or published too far apart.
	KindChain Kind = iota
	// KindStale: the newest epoch is older than the maximum epoch interval.
	KindStale
	// KindSkew: a server timestamp lies in the future of the trusted clock.
	KindSkew
	// KindCertificate: an epoch certificate does not cover its epoch.
	KindCertificate
	// KindObsolescence: an obsolescence token is malformed or too old.
	KindObsolescence
	// KindCancelled: the run was cancelled before all checks ran.
	KindCancelled
)

var kindNames = map[Kind]string{
	KindChain:        "chain",
	KindStale:        "stale",
	KindSkew:         "skew",
	KindCertificate:  "certificate",
	KindObsolescence: "obsolescence",
	KindCancelled:    "cancelled",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Failure is a single failed check.
type Failure struct {
	Kind    Kind
	EpochID uint64
	Email   string
	Err     error
}

func (f *Failure) Error() string {
	var b strings.Builder
	b.WriteString("audit: ")
	b.WriteString(f.Kind.String())
	if f.EpochID != 0 {
		fmt.Fprintf(&b, ": epoch %d", f.EpochID)
	}
	if f.Email != "" {
		b.WriteString(": ")
		b.WriteString(f.Email)
	}
	if f.Err != nil {
		b.WriteString(": ")
		b.WriteString(f.Err.Error())
	}
	return b.String()
}

func (f *Failure) Unwrap() error {
	return f.Err
}
