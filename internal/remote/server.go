package remote

import (
	"context"
	"fmt"
	"net"
	"strings"
	"sync"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/danielpatrickdp/narsvm/internal/navm"
	"github.com/danielpatrickdp/narsvm/internal/runtime"
)

// Server executes remote commands on one session, one at a time.
type Server struct {
	mu      sync.Mutex
	session *runtime.Session
	logger  *zap.Logger
}

// NewServer wraps session. logger may be nil.
func NewServer(session *runtime.Session, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{session: session, logger: logger}
}

// Execute runs one command line.
func (s *Server) Execute(ctx context.Context, in *wrapperspb.StringValue) (*structpb.Struct, error) {
	if err := ctx.Err(); err != nil {
		return nil, status.FromContextError(err).Err()
	}
	line := strings.TrimSpace(in.GetValue())
	if line == "" {
		return nil, status.Error(codes.InvalidArgument, "empty command")
	}

	s.mu.Lock()
	res := s.session.Execute(line)
	clock := s.session.Reasoner().Clock()
	terminated := s.session.Terminated()
	s.mu.Unlock()

	reply, err := encodeReply(Reply{Outputs: res.Outputs, Clock: clock, Terminated: terminated})
	if err != nil {
		s.logger.Error("encode reply", zap.String("line", line), zap.Error(err))
		return nil, status.Errorf(codes.Internal, "encode reply: %v", err)
	}
	return reply, nil
}

// Serve runs a gRPC server for srv on lis until ctx is cancelled.
func Serve(ctx context.Context, lis net.Listener, srv *Server, opts ...grpc.ServerOption) error {
	gs := grpc.NewServer(opts...)
	RegisterReasonerServer(gs, srv)

	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			gs.GracefulStop()
		case <-done:
		}
	}()
	defer close(done)

	srv.logger.Info("grpc listening", zap.String("addr", lis.Addr().String()))
	if err := gs.Serve(lis); err != nil {
		return fmt.Errorf("grpc serve: %w", err)
	}
	return nil
}

// #region wire

// Reply is the decoded result of one remote command.
type Reply struct {
	Outputs    []navm.Output
	Clock      int64
	Terminated bool
}

func encodeReply(r Reply) (*structpb.Struct, error) {
	outs := make([]any, len(r.Outputs))
	for i, o := range r.Outputs {
		m := map[string]any{"type": string(o.Type), "content": o.Content}
		if o.Narsese != "" {
			m["narsese"] = o.Narsese
		}
		outs[i] = m
	}
	return structpb.NewStruct(map[string]any{
		"outputs":    outs,
		"clock":      float64(r.Clock),
		"terminated": r.Terminated,
	})
}

func decodeReply(s *structpb.Struct) (Reply, error) {
	fields := s.GetFields()
	list, ok := fields["outputs"]
	if !ok || list.GetListValue() == nil {
		return Reply{}, fmt.Errorf("decode reply: missing outputs list")
	}
	var r Reply
	for i, v := range list.GetListValue().GetValues() {
		m := v.GetStructValue()
		if m == nil {
			return Reply{}, fmt.Errorf("decode reply: output %d is not an object", i)
		}
		f := m.GetFields()
		r.Outputs = append(r.Outputs, navm.Output{
			Type:    navm.OutputType(f["type"].GetStringValue()),
			Content: f["content"].GetStringValue(),
			Narsese: f["narsese"].GetStringValue(),
		})
	}
	r.Clock = int64(fields["clock"].GetNumberValue())
	r.Terminated = fields["terminated"].GetBoolValue()
	return r, nil
}

// #endregion wire
