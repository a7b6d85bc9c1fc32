// Package rpc declares the gRPC surface of the service: request and reply
// messages, service descriptors, and client stubs. Messages travel as JSON
// through a codec registered under the "json" content subtype.
package rpc

import (
	"encoding/json"

	"google.golang.org/grpc"
	"google.golang.org/grpc/encoding"
)

// ContentSubtype is the codec name negotiated in the content-type header
// (application/grpc+json).
const ContentSubtype = "json"

type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error)      { return json.Marshal(v) }
func (jsonCodec) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }
func (jsonCodec) Name() string                       { return ContentSubtype }

func init() {
	encoding.RegisterCodec(jsonCodec{})
}

// JSON selects the json codec on a client call.
func JSON() grpc.CallOption {
	return grpc.CallContentSubtype(ContentSubtype)
}
