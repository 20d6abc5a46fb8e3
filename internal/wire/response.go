package wire

import (
	"encoding/json"
	"errors"
	"fmt"
)

// UnknownKindError reports a response whose discriminator key is not part of
// the protocol. It is distinct from a plain decode failure so callers can
// report the two conditions separately.
type UnknownKindError struct {
	Key string
}

func (e *UnknownKindError) Error() string {
	return fmt.Sprintf("unknown type of response: %q", e.Key)
}

// IsUnknownKind reports whether err stems from an unknown response key
func IsUnknownKind(err error) bool {
	var unknown *UnknownKindError
	return errors.As(err, &unknown)
}

// DataAsset is an asset resolved by an external resolver: a set of variant
// URLs keyed by trait, e.g. "1x", "2x", "dark".
type DataAsset struct {
	Variants map[string]string `json:"variants"`
}

// Response is a reply from an external reference resolver. Exactly one of
// the variant fields is set.
//
// BundleIdentifier is only legal as the very first reply a child resolver
// ever sends (the handshake); after that it must be reported as a protocol
// violation.
type Response struct {
	// BundleIdentifier is the handshake variant
	BundleIdentifier *string

	// ErrorMessage is the peer's failure variant, forwarded verbatim
	ErrorMessage *string

	// ResolvedInformation answers topic and symbol requests
	ResolvedInformation *ResolvedInformation

	// Asset answers asset requests
	Asset *DataAsset
}

// Kind returns the response's variant key, for error messages
func (r Response) Kind() string {
	switch {
	case r.BundleIdentifier != nil:
		return "bundleIdentifier"
	case r.ErrorMessage != nil:
		return "errorMessage"
	case r.ResolvedInformation != nil:
		return "resolvedInformation"
	case r.Asset != nil:
		return "asset"
	default:
		return "empty"
	}
}

// MarshalJSON encodes the response as a single-key object
func (r Response) MarshalJSON() ([]byte, error) {
	switch {
	case r.BundleIdentifier != nil:
		return json.Marshal(map[string]string{"bundleIdentifier": *r.BundleIdentifier})
	case r.ErrorMessage != nil:
		return json.Marshal(map[string]string{"errorMessage": *r.ErrorMessage})
	case r.ResolvedInformation != nil:
		return json.Marshal(map[string]*ResolvedInformation{"resolvedInformation": r.ResolvedInformation})
	case r.Asset != nil:
		return json.Marshal(map[string]*DataAsset{"asset": r.Asset})
	default:
		return nil, fmt.Errorf("response has no variant set")
	}
}

// UnmarshalJSON decodes a single-key response object
func (r *Response) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw) != 1 {
		return fmt.Errorf("response must have exactly one variant key, got %d", len(raw))
	}

	*r = Response{}
	for key, value := range raw {
		switch key {
		case "bundleIdentifier":
			var id string
			if err := json.Unmarshal(value, &id); err != nil {
				return err
			}
			r.BundleIdentifier = &id
		case "errorMessage":
			var msg string
			if err := json.Unmarshal(value, &msg); err != nil {
				return err
			}
			r.ErrorMessage = &msg
		case "resolvedInformation":
			var info ResolvedInformation
			if err := json.Unmarshal(value, &info); err != nil {
				return err
			}
			r.ResolvedInformation = &info
		case "asset":
			var asset DataAsset
			if err := json.Unmarshal(value, &asset); err != nil {
				return err
			}
			r.Asset = &asset
		default:
			return &UnknownKindError{Key: key}
		}
	}
	return nil
}
