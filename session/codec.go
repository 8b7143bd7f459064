package session

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrMalformedIdentity is returned when the stored projection does not
// decode into a well-formed identity. Durable storage is free-form data
// under someone else's control; a shape mismatch yields this error and
// an absent identity, never a partially populated one.
var ErrMalformedIdentity = errors.New("malformed identity projection")

// EncodeProjection serializes a projection for the durable slot.
func EncodeProjection(p Projection) ([]byte, error) {
	if err := validateProjection(p); err != nil {
		return nil, err
	}
	return json.Marshal(p)
}

// DecodeProjection parses and validates bytes read back from the durable
// slot. Unknown fields, wrong types, and out-of-range values all fail
// with [ErrMalformedIdentity].
func DecodeProjection(data []byte) (Projection, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var p Projection
	if err := dec.Decode(&p); err != nil {
		return Projection{}, fmt.Errorf("%w: %v", ErrMalformedIdentity, err)
	}
	if dec.More() {
		return Projection{}, fmt.Errorf("%w: trailing data", ErrMalformedIdentity)
	}
	if err := validateProjection(p); err != nil {
		return Projection{}, err
	}
	return p, nil
}

func validateProjection(p Projection) error {
	switch {
	case p.ID <= 0:
		return fmt.Errorf("%w: non-positive id", ErrMalformedIdentity)
	case p.Name == "":
		return fmt.Errorf("%w: empty name", ErrMalformedIdentity)
	case p.Email == "":
		return fmt.Errorf("%w: empty email", ErrMalformedIdentity)
	case !p.Role.Valid():
		return fmt.Errorf("%w: role out of range", ErrMalformedIdentity)
	}
	return nil
}
