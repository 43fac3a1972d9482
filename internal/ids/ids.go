// Package ids converts internal row ids to the prefixed public identifiers
// exposed by the API ("resv_12", "evt_7") and back.
package ids

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Kind is an entity kind that owns an identifier prefix.
type Kind string

const (
	Food        Kind = "food"
	Wine        Kind = "wine"
	Reservation Kind = "resv"
	Lead        Kind = "lead"
	Event       Kind = "evt"
)

const separator = "_"

// ErrMalformed is returned for identifiers that cannot be decoded for the
// requested kind. Callers treat it as "not found".
var ErrMalformed = errors.New("malformed identifier")

// Encode returns the public identifier for a row id.
func Encode(kind Kind, id int64) string {
	return string(kind) + separator + strconv.FormatInt(id, 10)
}

// Decode extracts the row id from a public identifier of the given kind.
func Decode(kind Kind, public string) (int64, error) {
	got, id, err := Parse(public)
	if err != nil {
		return 0, err
	}
	if got != kind {
		return 0, fmt.Errorf("%w: expected %s prefix", ErrMalformed, kind)
	}
	return id, nil
}

// Parse splits any public identifier into its kind and row id.
func Parse(public string) (Kind, int64, error) {
	prefix, raw, ok := strings.Cut(public, separator)
	if !ok || raw == "" {
		return "", 0, ErrMalformed
	}
	kind := Kind(prefix)
	if !kind.valid() {
		return "", 0, fmt.Errorf("%w: unknown prefix %q", ErrMalformed, prefix)
	}
	for _, c := range raw {
		if c < '0' || c > '9' {
			return "", 0, ErrMalformed
		}
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return "", 0, ErrMalformed
	}
	return kind, id, nil
}

func (k Kind) valid() bool {
	switch k {
	case Food, Wine, Reservation, Lead, Event:
		return true
	}
	return false
}
