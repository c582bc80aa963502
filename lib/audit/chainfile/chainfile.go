// Package chainfile reads audit input from YAML files.
package chainfile

import (
	"errors"
	"io"
	"os"

	"github.com/go-i2p/go-ktaudit/lib/audit"
	"github.com/go-i2p/logger"
	"github.com/samber/oops"
	"gopkg.in/yaml.v3"
)

var log = logger.GetGoI2PLogger()

// Load reads and decodes the chain file at path.
func Load(path string) (*audit.Chain, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, oops.Wrapf(err, "open chain file %s", path)
	}
	defer f.Close()

	chain, err := Decode(f)
	if err != nil {
		return nil, oops.Wrapf(err, "load chain file %s", path)
	}
	log.WithFields(logger.Fields{
		"path":      path,
		"epochs":    len(chain.Epochs),
		"key_lists": len(chain.KeyLists),
		"records":   len(chain.Records),
	}).Debug("Loaded chain file")
	return chain, nil
}

// Decode reads a single YAML document. Unknown keys are rejected so that a
// misspelt field cannot silently become a zero timestamp. An empty document
// decodes to an empty chain.
func Decode(r io.Reader) (*audit.Chain, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	chain := &audit.Chain{}
	if err := dec.Decode(chain); err != nil {
		if errors.Is(err, io.EOF) {
			return chain, nil
		}
		return nil, oops.Wrapf(err, "decode chain")
	}
	return chain, nil
}

// Encode writes chain as YAML.
func Encode(w io.Writer, chain *audit.Chain) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(chain); err != nil {
		return oops.Wrapf(err, "encode chain")
	}
	return enc.Close()
}
