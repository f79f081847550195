package remote

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// #region client-struct
// Client wraps the gRPC connection to a narsvm server.
type Client struct {
	conn   *grpc.ClientConn
	client ReasonerClient
}
// #endregion client-struct

// #region constructor
// NewClient connects to a narsvm server. Extra options follow the insecure
// transport credentials.
func NewClient(addr string, opts ...grpc.DialOption) (*Client, error) {
	opts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)
	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("grpc dial %s: %w", addr, err)
	}
	return &Client{
		conn:   conn,
		client: NewReasonerClient(conn),
	}, nil
}

// NewClientWithService creates a Client with an injected service implementation.
// Used for testing without a real gRPC connection.
func NewClientWithService(svc ReasonerClient) *Client {
	return &Client{client: svc}
}

// #endregion constructor

// #region close
// Close shuts down the gRPC connection.
func (c *Client) Close() error {
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}
// #endregion close

// #region execute
// Execute sends one command line and returns the outputs it produced.
func (c *Client) Execute(ctx context.Context, line string) (Reply, error) {
	resp, err := c.client.Execute(ctx, wrapperspb.String(line))
	if err != nil {
		return Reply{}, fmt.Errorf("execute rpc: %w", err)
	}
	return decodeReply(resp)
}
// #endregion execute
