package epoch

import (
	"strconv"

	"github.com/samber/oops"
)

// ObsolescencePrefixLen is the number of leading hexadecimal characters of an
// obsolescence token that encode its timestamp.
const ObsolescencePrefixLen = 16

// ParseError is returned when an obsolescence token does not start with a
// hexadecimal timestamp.
type ParseError struct {
	// Token is the offending prefix, or the whole token when it is shorter
	// than ObsolescencePrefixLen.
	Token string
	Err   error
}

func (e *ParseError) Error() string {
	return "epoch: malformed obsolescence token " + strconv.Quote(e.Token) + ": " + e.Err.Error()
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ParseObsolescenceTimestamp extracts the timestamp encoded in the first 16
// characters of an obsolescence token. The value is returned as read; callers
// decide whether it is plausible.
func ParseObsolescenceTimestamp(token string) (uint64, error) {
	if len(token) < ObsolescencePrefixLen {
		log.WithField("length", len(token)).Debug("Obsolescence token too short")
		return 0, &ParseError{
			Token: token,
			Err:   oops.Errorf("need %d hex characters, got %d", ObsolescencePrefixLen, len(token)),
		}
	}
	prefix := token[:ObsolescencePrefixLen]
	// no sign and no "_" separators with an explicit base
	v, err := strconv.ParseUint(prefix, 16, 64)
	if err != nil {
		log.WithField("prefix", prefix).Debug("Obsolescence token prefix is not hexadecimal")
		return 0, &ParseError{
			Token: prefix,
			Err:   oops.Wrapf(err, "parse hex timestamp"),
		}
	}
	return v, nil
}

// FormatObsolescenceTimestamp renders ts as the zero-padded 16 character
// prefix used by obsolescence tokens.
func FormatObsolescenceTimestamp(ts uint64) string {
	s := strconv.FormatUint(ts, 16)
	for len(s) < ObsolescencePrefixLen {
		s = "0" + s
	}
	return s
}
