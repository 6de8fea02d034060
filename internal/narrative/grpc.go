package narrative

import (
	"context"
	"encoding/json"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/medichat-ai/insights-engine/internal/insight"
)

// #region service
// The narrator service carries google.protobuf.Struct in both directions so
// the request and reply keep the same JSON shapes as the OpenAI path.

const (
	narratorServiceName    = "medichat.narrative.v1.Narrator"
	narratorGenerateMethod = "/" + narratorServiceName + "/Generate"
)

// NarratorServiceClient is the client API for the Narrator service.
type NarratorServiceClient interface {
	Generate(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
}

type narratorServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewNarratorServiceClient wraps a connection.
func NewNarratorServiceClient(cc grpc.ClientConnInterface) NarratorServiceClient {
	return &narratorServiceClient{cc: cc}
}

func (c *narratorServiceClient) Generate(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, narratorGenerateMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// NarratorServer is the server API for the Narrator service.
type NarratorServer interface {
	Generate(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)
}

// RegisterNarratorServer attaches srv to a gRPC server.
func RegisterNarratorServer(s grpc.ServiceRegistrar, srv NarratorServer) {
	s.RegisterService(&NarratorServiceDesc, srv)
}

func generateHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(NarratorServer).Generate(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: narratorGenerateMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(NarratorServer).Generate(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

// NarratorServiceDesc describes the Narrator service for registration.
var NarratorServiceDesc = grpc.ServiceDesc{
	ServiceName: narratorServiceName,
	HandlerType: (*NarratorServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Generate", Handler: generateHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "medichat/narrative/v1/narrator.proto",
}

// #endregion service

// #region client

// GRPCNarrator delegates narration to a sidecar model service.
type GRPCNarrator struct {
	conn   *grpc.ClientConn
	client NarratorServiceClient
}

// NewGRPCNarrator connects to the narrator service at addr. The connection
// is established lazily on the first call.
func NewGRPCNarrator(addr string) (*GRPCNarrator, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("grpc dial %s: %w", addr, err)
	}
	return &GRPCNarrator{conn: conn, client: NewNarratorServiceClient(conn)}, nil
}

// NewGRPCNarratorWithService creates a narrator over an injected client.
// Used for testing without a real gRPC connection.
func NewGRPCNarratorWithService(svc NarratorServiceClient) *GRPCNarrator {
	return &GRPCNarrator{client: svc}
}

// Close shuts down the connection, if one is owned.
func (g *GRPCNarrator) Close() error {
	if g.conn == nil {
		return nil
	}
	return g.conn.Close()
}

// Narrate sends the request as a Struct and returns the reply as JSON.
func (g *GRPCNarrator) Narrate(ctx context.Context, req insight.NarrativeRequest) (string, error) {
	b, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}
	in := new(structpb.Struct)
	if err := protojson.Unmarshal(b, in); err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	out, err := g.client.Generate(ctx, in)
	if err != nil {
		return "", fmt.Errorf("generate rpc: %w", err)
	}
	if out == nil || len(out.GetFields()) == 0 {
		return "", ErrEmptyOutput
	}

	text, err := protojson.Marshal(out)
	if err != nil {
		return "", fmt.Errorf("decode reply: %w", err)
	}
	return string(text), nil
}

// #endregion client
