// Package wire defines the JSON messages exchanged with an external
// reference resolver, and the newline-delimited framing they travel in.
//
// Every message is a single-key JSON object whose key names the variant and
// whose value is the payload. A message with zero, multiple, or unknown keys
// fails decoding.
package wire

import (
	"encoding/json"
	"fmt"
)

// AssetReference identifies an asset within a documentation bundle
type AssetReference struct {
	AssetName        string `json:"assetName"`
	BundleIdentifier string `json:"bundleIdentifier"`
}

// Request is a request to an external reference resolver. Exactly one of the
// variant fields is set.
type Request struct {
	// Topic is the topic URL to resolve, for topic requests
	Topic *string

	// Symbol is the precise symbol identifier to resolve, for symbol requests
	Symbol *string

	// Asset identifies the asset to resolve, for asset requests
	Asset *AssetReference
}

// NewTopicRequest creates a request to resolve a topic URL
func NewTopicRequest(topicURL string) Request {
	return Request{Topic: &topicURL}
}

// NewSymbolRequest creates a request to resolve a precise symbol identifier
func NewSymbolRequest(preciseIdentifier string) Request {
	return Request{Symbol: &preciseIdentifier}
}

// NewAssetRequest creates a request to resolve a named asset in a bundle
func NewAssetRequest(assetName, bundleIdentifier string) Request {
	return Request{Asset: &AssetReference{AssetName: assetName, BundleIdentifier: bundleIdentifier}}
}

// Description returns a human-readable description of the request, used only
// in error messages.
func (r Request) Description() string {
	switch {
	case r.Topic != nil:
		return fmt.Sprintf("topic: '%s'", *r.Topic)
	case r.Symbol != nil:
		return fmt.Sprintf("symbol: '%s'", *r.Symbol)
	case r.Asset != nil:
		return fmt.Sprintf("asset with name: '%s' in bundle: '%s'", r.Asset.AssetName, r.Asset.BundleIdentifier)
	default:
		return "empty request"
	}
}

// MarshalJSON encodes the request as a single-key object
func (r Request) MarshalJSON() ([]byte, error) {
	switch {
	case r.Topic != nil:
		return json.Marshal(map[string]string{"topic": *r.Topic})
	case r.Symbol != nil:
		return json.Marshal(map[string]string{"symbol": *r.Symbol})
	case r.Asset != nil:
		return json.Marshal(map[string]*AssetReference{"asset": r.Asset})
	default:
		return nil, fmt.Errorf("request has no variant set")
	}
}

// UnmarshalJSON decodes a single-key request object. Used by peers decoding
// host requests; an unknown key is the peer-side UNKNOWN_REQUEST_KIND
// contract.
func (r *Request) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw) != 1 {
		return fmt.Errorf("request must have exactly one variant key, got %d", len(raw))
	}

	*r = Request{}
	for key, value := range raw {
		switch key {
		case "topic":
			var topic string
			if err := json.Unmarshal(value, &topic); err != nil {
				return err
			}
			r.Topic = &topic
		case "symbol":
			var symbol string
			if err := json.Unmarshal(value, &symbol); err != nil {
				return err
			}
			r.Symbol = &symbol
		case "asset":
			var asset AssetReference
			if err := json.Unmarshal(value, &asset); err != nil {
				return err
			}
			r.Asset = &asset
		default:
			return fmt.Errorf("unknown type of request: %q", key)
		}
	}
	return nil
}
