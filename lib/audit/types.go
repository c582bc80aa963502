package audit

// Certificate is the validity window of the certificate published with an
// epoch. All fields are Unix seconds.
type Certificate struct {
	NotBefore int64 `yaml:"not_before"`
	NotAfter  int64 `yaml:"not_after"`
	IssuedAt  int64 `yaml:"issued_at"`
}

// IsZero reports whether no certificate was supplied.
func (c Certificate) IsZero() bool {
	return c == Certificate{}
}

// Epoch is one checkpoint of the transparency log.
type Epoch struct {
	ID          uint64      `yaml:"id"`
	Timestamp   int64       `yaml:"timestamp"`
	TreeHash    string      `yaml:"tree_hash"`
	Certificate Certificate `yaml:"certificate"`
}

// SignedKeyList is the part of an address's key list the auditor looks at.
// A non-empty ObsolescenceToken marks the list obsolete.
type SignedKeyList struct {
	Email             string `yaml:"email"`
	Revision          int    `yaml:"revision"`
	MinEpochID        uint64 `yaml:"min_epoch_id"`
	ObsolescenceToken string `yaml:"obsolescence_token"`
}

// Record is a locally stored audit record waiting for its self-audit.
type Record struct {
	Email     string `yaml:"email"`
	Timestamp int64  `yaml:"timestamp"`
}

// Chain is the input of one audit run. Epochs are expected in publication
// order.
type Chain struct {
	Epochs   []Epoch         `yaml:"epochs"`
	KeyLists []SignedKeyList `yaml:"key_lists"`
	Records  []Record        `yaml:"records"`
}

// Latest returns the newest epoch, or false for an empty chain.
func (c *Chain) Latest() (Epoch, bool) {
	if len(c.Epochs) == 0 {
		return Epoch{}, false
	}
	return c.Epochs[len(c.Epochs)-1], true
}

// EpochFor returns the first epoch whose ID is at least minID.
func (c *Chain) EpochFor(minID uint64) (Epoch, bool) {
	for _, ep := range c.Epochs {
		if ep.ID >= minID {
			return ep, true
		}
	}
	return Epoch{}, false
}
