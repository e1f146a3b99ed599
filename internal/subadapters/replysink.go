package subadapters

import (
	"errors"

	"github.com/JLoveI/EventStore/internal/subscription"
)

// ErrReplyTargetInvalid is returned by ChannelReplySink.Send when the
// replyTarget a client registered with is not a chan subscription.DeliveredEvent.
var ErrReplyTargetInvalid = errors.New("subadapters: reply target is not a delivery channel")

// ErrReplyChannelFull is returned when a client's delivery channel has no
// room; the engine treats this the same as any other Send error: logged,
// with the event left in flight until it times out and is retried.
var ErrReplyChannelFull = errors.New("subadapters: reply channel full")

// ChannelReplySink delivers events to clients over an in-process Go
// channel, the reply-target shape a client supplies when it joins a group
// (AddClient's replyTarget argument). It is the concrete collaborator used
// by cmd/subengine, standing in for whatever real transport a deployment
// would otherwise plug in (a streaming RPC, a websocket writer, and so on).
type ChannelReplySink struct{}

func NewChannelReplySink() *ChannelReplySink { return &ChannelReplySink{} }

func (s *ChannelReplySink) Send(replyTarget any, event subscription.DeliveredEvent) error {
	ch, ok := replyTarget.(chan subscription.DeliveredEvent)
	if !ok {
		return ErrReplyTargetInvalid
	}
	select {
	case ch <- event:
		return nil
	default:
		return ErrReplyChannelFull
	}
}
