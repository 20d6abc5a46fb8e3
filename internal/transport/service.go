package transport

import (
	"encoding/json"

	"docbridge/internal/errors"
	"docbridge/internal/service"
	"docbridge/internal/wire"
)

// ServiceTransport talks to an already-running documentation service through
// a correlated request/response client. No handshake is performed; the
// primary bundle identifier is supplied to the resolver at construction.
type ServiceTransport struct {
	client service.Client
}

// NewServiceTransport wraps a documentation-service client
func NewServiceTransport(client service.Client) *ServiceTransport {
	return &ServiceTransport{client: client}
}

// SendAndWait forwards the encoded request under the resolve-reference
// message kind and decodes the correlated reply.
func (t *ServiceTransport) SendAndWait(req *wire.Request) (wire.Response, error) {
	if req == nil {
		return wire.Response{}, errors.NewBridgeError(errors.ServiceUnavailable,
			"documentation service transport does not perform a handshake", nil)
	}

	payload, err := json.Marshal(*req)
	if err != nil {
		return wire.Response{}, errors.NewRequestEncodeFailed(req.Description(), err)
	}

	msg := service.NewMessage(service.MessageKindResolveRequest, nil)
	if err := service.PackPayload(&msg, payload); err != nil {
		return wire.Response{}, errors.NewRequestEncodeFailed(req.Description(), err)
	}

	reply, err := t.client.Request(msg)
	if err != nil {
		return wire.Response{}, errors.NewServiceUnavailable(err)
	}
	if reply.Kind != service.MessageKindResolveResponse {
		return wire.Response{}, errors.NewUnexpectedResponse(reply.Kind, req.Description())
	}

	raw, err := service.UnpackPayload(reply)
	if err != nil {
		return wire.Response{}, errors.NewResponseDecodeFailed(reply.Payload, err)
	}

	resp, err := wire.DecodeResponse(raw)
	if err != nil {
		if wire.IsUnknownKind(err) {
			return wire.Response{}, errors.NewInvalidResponseKind()
		}
		return wire.Response{}, errors.NewResponseDecodeFailed(raw, err)
	}
	return resp, nil
}
