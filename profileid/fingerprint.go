package profileid

import (
	"cmp"
	"crypto/sha256"
	"fmt"
	"slices"

	"golang.org/x/crypto/cryptobyte"
	"golang.org/x/crypto/cryptobyte/asn1"
)

// Profile is the set of options a capture was made with. This
// structure is only used for creating a SHA-256 fingerprint, so that
// sessions made with identical settings can be grouped.
//
// Profile is represented in ASN.1 as
//
//	Profile ::= SEQUENCE OF Option
type Profile struct {
	Options []Option
}

// Option is a single key/value pair.
//
//	Option ::= SEQUENCE {
//	  key OctetString,
//	  value OctetString }
type Option struct {
	Key   string
	Value string
}

// FromMap builds a Profile from flattened parameters. Options with an
// empty value are left out, so adding a new unset option does not
// change existing fingerprints.
func FromMap(values map[string]string) *Profile {
	p := &Profile{Options: make([]Option, 0, len(values))}
	for k, v := range values {
		if v == "" {
			continue
		}
		p.Options = append(p.Options, Option{Key: k, Value: v})
	}
	return p
}

// Serialize encodes the profile with its options sorted by key, so the
// encoding does not depend on the order they were added in.
func Serialize(p *Profile) ([]byte, error) {
	if p == nil {
		return nil, fmt.Errorf("input must not be nil")
	}
	opts := slices.Clone(p.Options)
	slices.SortFunc(opts, func(a, b Option) int {
		if c := cmp.Compare(a.Key, b.Key); c != 0 {
			return c
		}
		return cmp.Compare(a.Value, b.Value)
	})
	b := cryptobyte.NewBuilder(make([]byte, 0, 16))
	b.AddASN1(asn1.SEQUENCE, func(outer *cryptobyte.Builder) {
		for _, o := range opts {
			outer.AddASN1(asn1.SEQUENCE, func(child *cryptobyte.Builder) {
				child.AddASN1OctetString([]byte(o.Key))
				child.AddASN1OctetString([]byte(o.Value))
			})
		}
	})
	return b.Bytes()
}

// Fingerprint returns a SHA-256 hash of the given Profile.
func Fingerprint(p *Profile) ([]byte, error) {
	b, err := Serialize(p)
	if err != nil {
		return []byte{}, err
	}
	result := sha256.Sum256(b)
	return result[:], nil
}
