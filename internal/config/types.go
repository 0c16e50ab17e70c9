package config

import (
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"time"
)

// Duration is a time.Duration that koanf can fill from "30s"-style strings
// in YAML files and environment variables.
type Duration time.Duration

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	switch {
	case err != nil:
		return err
	case v < 0:
		return fmt.Errorf("negative duration %q", text)
	}
	*d = Duration(v)
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

func (d Duration) Duration() time.Duration { return time.Duration(d) }

const redacted = "[REDACTED]"

// Secret holds a credential such as the admin token. It prints and encodes
// as a placeholder; only Value and Equal see the real string.
type Secret string

func (s Secret) String() string {
	if s.IsSet() {
		return redacted
	}
	return ""
}

func (s Secret) GoString() string { return "Secret(" + redacted + ")" }

func (s Secret) MarshalJSON() ([]byte, error) { return json.Marshal(s.String()) }

func (s *Secret) UnmarshalText(text []byte) error {
	*s = Secret(text)
	return nil
}

func (s Secret) Value() string { return string(s) }

func (s Secret) IsSet() bool { return s != "" }

// Equal compares in constant time. An unset secret equals nothing.
func (s Secret) Equal(candidate string) bool {
	return s.IsSet() && subtle.ConstantTimeCompare([]byte(s), []byte(candidate)) == 1
}
