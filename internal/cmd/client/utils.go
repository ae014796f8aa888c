package client

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"os"
	"unicode/utf8"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	v1 "github.com/rzbill/docstream/api/docstream/v1"
)

// GRPCAddrFunc resolves the sequencer's gRPC address, letting the
// standalone binary and any embedding application override discovery.
type GRPCAddrFunc func() string

// grpcAddrFromEnv returns the gRPC server address from DOCSTREAM_GRPC or a
// default.
func grpcAddrFromEnv() string {
	if addr := os.Getenv("DOCSTREAM_GRPC"); addr != "" {
		return addr
	}
	return "127.0.0.1:50051"
}

// dialGRPCContext dials the sequencer with insecure transport for
// local/dev use, forced onto the hand-authored JSON codec.
func dialGRPCContext(ctx context.Context, addr string) (*grpc.ClientConn, error) {
	return grpc.NewClient(addr,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.ForceCodec(v1.Codec)),
	)
}

// withSequencerClient provides a SequencerClient and ensures the
// connection is closed.
func withSequencerClient(ctx context.Context, addr string, fn func(v1.SequencerClient) error) error {
	conn, err := dialGRPCContext(ctx, addr)
	if err != nil {
		return err
	}
	defer func() { _ = conn.Close() }()
	return fn(v1.NewSequencerClient(conn))
}

// decodedContent renders a message's content as JSON when it looks like
// JSON, else as UTF-8 text, else base64, matching how an operator
// eyeballing a tail would want it printed.
func decodedContent(content []byte) map[string]any {
	out := map[string]any{}
	if len(content) > 0 && (content[0] == '{' || content[0] == '[') {
		var v any
		if json.Unmarshal(content, &v) == nil {
			out["content_json"] = v
			return out
		}
	}
	if utf8.Valid(content) {
		out["content_text"] = string(content)
		return out
	}
	out["content_b64"] = base64.StdEncoding.EncodeToString(content)
	return out
}
