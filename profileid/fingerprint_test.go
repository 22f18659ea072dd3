package profileid

import (
	"bytes"
	"encoding/hex"
	"testing"
)

func TestSerializeNullProfile(t *testing.T) {
	var p *Profile = nil
	_, err := Serialize(p)
	if err == nil {
		t.Errorf("Passed in nil profile but got no error")
	}
}

func TestSerialize(t *testing.T) {
	tests := map[string]struct {
		input    *Profile
		expected []byte
	}{
		"empty profile": {
			input: &Profile{},
			// SEQUENCE {}
			expected: []byte{0x30, 0x00},
		},
		"one option": {
			input: &Profile{
				Options: []Option{{Key: "hue", Value: "0"}},
			},
			// SEQUENCE { SEQUENCE { OCTET_STRING { "hue" } OCTET_STRING { "0" } } }
			expected: []byte{0x30, 0x0a, 0x30, 0x08, 0x04, 0x03, 'h', 'u', 'e', 0x04, 0x01, '0'},
		},
		"two options": {
			input: &Profile{
				Options: []Option{
					{Key: "channel", Value: "5"},
					{Key: "driver", Value: "v4l2"},
				},
			},
			// SEQUENCE {
			//   SEQUENCE { OCTET_STRING { "channel" } OCTET_STRING { "5" } }
			//   SEQUENCE { OCTET_STRING { "driver" } OCTET_STRING { "v4l2" } }
			// }
			expected: []byte{
				0x30, 0x1e, 0x30, 0x0c, 0x04, 0x07, 0x63, 0x68, 0x61, 0x6e, 0x6e, 0x65, 0x6c, 0x04, 0x01, 0x35,
				0x30, 0x0e, 0x04, 0x06, 0x64, 0x72, 0x69, 0x76, 0x65, 0x72, 0x04, 0x04, 0x76, 0x34, 0x6c, 0x32,
			},
		},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			result, err := Serialize(tt.input)
			if err != nil {
				t.Errorf("unexpected error when serializing %+v", err.Error())
				return
			}
			if !bytes.Equal(result, tt.expected) {
				t.Errorf("got %x; want %x", result, tt.expected)
			}
		})
	}
}

func TestFingerprintNullProfile(t *testing.T) {
	var p *Profile = nil
	_, err := Fingerprint(p)
	if err == nil {
		t.Errorf("Passed in nil profile but got no error")
	}
}

func TestFingerprint(t *testing.T) {
	tests := map[string]struct {
		input    *Profile
		expected string
	}{
		"empty": {
			input:    &Profile{},
			expected: "e4f60d0aa6d7f3d3b6a6494b1c861b99f649c6f9ec51abaf201b20f297327c95",
		},
		"two options": {
			input: FromMap(map[string]string{
				"channel": "5",
				"driver":  "v4l2",
				"hue":     "",
			}),
			expected: "4d355eaabb4eda5f1f057f07621e7890ad279f8d9df4f1329fc2db9f76896942",
		},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			result, err := Fingerprint(tt.input)
			if err != nil {
				t.Errorf("unexpected error when fingerprinting %+v", err.Error())
				return
			}
			enc := hex.EncodeToString(result)
			if enc != tt.expected {
				t.Errorf("got %s; want %s", enc, tt.expected)
			}
		})
	}
}

func TestAlternateOrdersSameFingerprint(t *testing.T) {
	p1 := &Profile{
		Options: []Option{{Key: "a", Value: "1"}, {Key: "b", Value: "2"}},
	}
	p2 := &Profile{
		Options: []Option{{Key: "b", Value: "2"}, {Key: "a", Value: "1"}},
	}
	f1, err := Fingerprint(p1)
	if err != nil {
		t.Fatalf("unexpected error when fingerprinting %+v", err.Error())
	}
	f2, err := Fingerprint(p2)
	if err != nil {
		t.Fatalf("unexpected error when fingerprinting %+v", err.Error())
	}
	if !bytes.Equal(f1, f2) {
		t.Errorf("serialization was not order-agnostic")
	}
}
