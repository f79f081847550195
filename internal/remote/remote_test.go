package remote

import (
	"context"
	"errors"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/danielpatrickdp/narsvm/internal/navm"
	"github.com/danielpatrickdp/narsvm/internal/reasoner"
	"github.com/danielpatrickdp/narsvm/internal/runtime"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// #region helpers

// startServer serves a fresh session over an in-memory listener and returns
// a connected client. Cleanup stops both.
func startServer(t *testing.T) *Client {
	t.Helper()
	session, err := runtime.New(reasoner.DefaultParameters(), "nal", runtime.Options{})
	require.NoError(t, err)

	lis := bufconn.Listen(1 << 20)
	ctx, cancel := context.WithCancel(context.Background())
	served := make(chan error, 1)
	go func() { served <- Serve(ctx, lis, NewServer(session, nil)) }()

	client, err := NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		client.Close()
		cancel()
		require.NoError(t, <-served)
	})
	return client
}

type mockService struct {
	resp *structpb.Struct
	err  error
	got  string
}

func (m *mockService) Execute(_ context.Context, in *wrapperspb.StringValue, _ ...grpc.CallOption) (*structpb.Struct, error) {
	m.got = in.GetValue()
	return m.resp, m.err
}

// #endregion helpers

// #region server-tests

func TestExecute_RoundTrip(t *testing.T) {
	client := startServer(t)
	ctx := context.Background()

	reply, err := client.Execute(ctx, "NSE <robin --> bird>.")
	require.NoError(t, err)
	require.Len(t, reply.Outputs, 1)
	assert.Equal(t, navm.OutIn, reply.Outputs[0].Type)
	assert.Equal(t, "<robin --> bird>. %1.0000;0.9000%", reply.Outputs[0].Narsese)

	reply, err = client.Execute(ctx, "CYC 3")
	require.NoError(t, err)
	assert.Equal(t, int64(3), reply.Clock)

	reply, err = client.Execute(ctx, "INF clock")
	require.NoError(t, err)
	assert.Equal(t, []navm.Output{navm.Info("clock: 3")}, reply.Outputs)

	reply, err = client.Execute(ctx, "EXI")
	require.NoError(t, err)
	assert.True(t, reply.Terminated)
}

func TestExecute_EmptyLine(t *testing.T) {
	client := startServer(t)
	_, err := client.Execute(context.Background(), "   ")
	require.Error(t, err)
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestServer_CancelledContext(t *testing.T) {
	session, err := runtime.New(reasoner.DefaultParameters(), "void", runtime.Options{})
	require.NoError(t, err)
	srv := NewServer(session, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = srv.Execute(ctx, wrapperspb.String("HLP"))
	assert.Equal(t, codes.Canceled, status.Code(err))
}

// #endregion server-tests

// #region client-tests

func TestNewClient_Lazy(t *testing.T) {
	client, err := NewClient("localhost:0")
	require.NoError(t, err)
	require.NoError(t, client.Close())
}

func TestClientWithService(t *testing.T) {
	resp, err := encodeReply(Reply{
		Outputs: []navm.Output{{Type: navm.OutAnswer, Content: "a", Narsese: "<a --> b>. %1.0000;0.9000%"}, navm.Comment("c")},
		Clock:   12,
	})
	require.NoError(t, err)
	mock := &mockService{resp: resp}
	c := NewClientWithService(mock)

	reply, err := c.Execute(context.Background(), "CYC 12")
	require.NoError(t, err)
	assert.Equal(t, "CYC 12", mock.got)
	assert.Equal(t, int64(12), reply.Clock)
	assert.Equal(t, "<a --> b>. %1.0000;0.9000%", reply.Outputs[0].Narsese)
	assert.Equal(t, navm.Comment("c"), reply.Outputs[1])
	assert.NoError(t, c.Close())
}

func TestClientWithService_Errors(t *testing.T) {
	c := NewClientWithService(&mockService{err: errors.New("unavailable")})
	_, err := c.Execute(context.Background(), "HLP")
	assert.ErrorContains(t, err, "execute rpc: unavailable")

	bad, err := structpb.NewStruct(map[string]any{"outputs": "nope"})
	require.NoError(t, err)
	c = NewClientWithService(&mockService{resp: bad})
	_, err = c.Execute(context.Background(), "HLP")
	assert.ErrorContains(t, err, "missing outputs list")

	bad, err = structpb.NewStruct(map[string]any{"outputs": []any{"flat"}})
	require.NoError(t, err)
	c = NewClientWithService(&mockService{resp: bad})
	_, err = c.Execute(context.Background(), "HLP")
	assert.ErrorContains(t, err, "not an object")
}

// #endregion client-tests
