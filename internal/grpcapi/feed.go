package grpcapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/newosoal21-pixel/mceremony-reservation/internal/facility/broadcast"
)

const (
	ServiceName     = "facility.v1.ChangeFeed"
	SubscribeMethod = "/" + ServiceName + "/Subscribe"
)

// ChangeFeedServer streams every change event as a google.protobuf.Struct
// carrying the same keys as the websocket JSON.
type ChangeFeedServer interface {
	Subscribe(*emptypb.Empty, grpc.ServerStream) error
}

var changeFeedDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ChangeFeedServer)(nil),
	Streams: []grpc.StreamDesc{{
		StreamName:    "Subscribe",
		Handler:       subscribeHandler,
		ServerStreams: true,
	}},
	Metadata: "facility/v1/change_feed.proto",
}

func subscribeHandler(srv any, stream grpc.ServerStream) error {
	in := new(emptypb.Empty)
	if err := stream.RecvMsg(in); err != nil {
		return err
	}
	return srv.(ChangeFeedServer).Subscribe(in, stream)
}

// Feed adapts a broadcast hub subscription to the gRPC stream.
type Feed struct {
	hub *broadcast.Hub
}

func NewFeed(hub *broadcast.Hub) *Feed {
	return &Feed{hub: hub}
}

func (f *Feed) Subscribe(_ *emptypb.Empty, stream grpc.ServerStream) error {
	sub, err := f.hub.Subscribe(0)
	switch {
	case errors.Is(err, broadcast.ErrTooManySubscribers):
		return status.Error(codes.ResourceExhausted, "too many subscribers")
	case errors.Is(err, broadcast.ErrHubClosed):
		return status.Error(codes.Unavailable, "shutting down")
	case err != nil:
		return status.Errorf(codes.Internal, "subscribe: %v", err)
	}
	defer f.hub.Unsubscribe(sub)

	ctx := stream.Context()
	for {
		select {
		case <-ctx.Done():
			return status.FromContextError(ctx.Err()).Err()
		case msg, ok := <-sub.Messages():
			if !ok {
				return status.Error(codes.Unavailable, "subscription closed")
			}
			ev, err := eventStruct(msg)
			if err != nil {
				return status.Errorf(codes.Internal, "encode event: %v", err)
			}
			if err := stream.SendMsg(ev); err != nil {
				return err
			}
		}
	}
}

func eventStruct(msg []byte) (*structpb.Struct, error) {
	var m map[string]any
	if err := json.Unmarshal(msg, &m); err != nil {
		return nil, err
	}
	return structpb.NewStruct(m)
}

// FeedClient reads a ChangeFeed stream.
type FeedClient struct {
	stream grpc.ClientStream
}

// Subscribe opens a ChangeFeed stream on cc.
func Subscribe(ctx context.Context, cc grpc.ClientConnInterface) (*FeedClient, error) {
	stream, err := cc.NewStream(ctx, &changeFeedDesc.Streams[0], SubscribeMethod)
	if err != nil {
		return nil, err
	}
	if err := stream.SendMsg(&emptypb.Empty{}); err != nil {
		return nil, fmt.Errorf("send subscribe: %w", err)
	}
	if err := stream.CloseSend(); err != nil {
		return nil, fmt.Errorf("close send: %w", err)
	}
	return &FeedClient{stream: stream}, nil
}

// Recv blocks for the next event.
func (c *FeedClient) Recv() (*structpb.Struct, error) {
	ev := new(structpb.Struct)
	if err := c.stream.RecvMsg(ev); err != nil {
		return nil, err
	}
	return ev, nil
}
