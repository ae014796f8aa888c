package v1

import "encoding/json"

// jsonCodec implements encoding.Codec by marshaling with encoding/json
// instead of protobuf. It lets this package's plain structs travel over
// gRPC without a protoc-generated Marshal/Unmarshal pair; the server and
// every client dial with grpc.ForceCodec/grpc.ForceServerCodec set to an
// instance of this type (see internal/server/grpc and
// internal/deltaclient).
type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (jsonCodec) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

func (jsonCodec) Name() string { return "json" }

// Codec is the shared codec instance for the docstream wire types.
var Codec = jsonCodec{}
