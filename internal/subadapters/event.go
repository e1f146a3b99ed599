package subadapters

import (
	"encoding/binary"
	"errors"

	"github.com/google/uuid"

	"github.com/JLoveI/EventStore/internal/eventlog"
	"github.com/JLoveI/EventStore/internal/subscription"
)

var errShortHeader = errors.New("subadapters: truncated event header")

// EncodeEvent splits a StreamEvent into the header/payload shape the log
// storage expects. The header carries everything but the bulk event Data;
// EventNumber and Position are derived from the log's own sequence number
// and are not stored in the header. Callers appending new events (the
// publish path) use this directly; decodeStreamEvent is its inverse on the
// read path.
func EncodeEvent(ev subscription.StreamEvent) eventlog.AppendRecord {
	header := make([]byte, 0, 16+2+len(ev.EventType)+4+len(ev.Metadata))
	header = append(header, ev.EventID[:]...)

	var typeLen [2]byte
	binary.BigEndian.PutUint16(typeLen[:], uint16(len(ev.EventType)))
	header = append(header, typeLen[:]...)
	header = append(header, ev.EventType...)

	var metaLen [4]byte
	binary.BigEndian.PutUint32(metaLen[:], uint32(len(ev.Metadata)))
	header = append(header, metaLen[:]...)
	header = append(header, ev.Metadata...)

	return eventlog.AppendRecord{Header: header, Payload: ev.Data}
}

// decodeStreamEvent rebuilds a StreamEvent from a log item. The item's
// sequence number becomes the event's EventNumber and its Token-derived
// position becomes Position.
func decodeStreamEvent(item eventlog.Item) (subscription.StreamEvent, error) {
	h := item.Header
	if len(h) < 16+2 {
		return subscription.StreamEvent{}, errShortHeader
	}
	var id uuid.UUID
	copy(id[:], h[:16])
	h = h[16:]

	typeLen := binary.BigEndian.Uint16(h[:2])
	h = h[2:]
	if len(h) < int(typeLen)+4 {
		return subscription.StreamEvent{}, errShortHeader
	}
	eventType := string(h[:typeLen])
	h = h[typeLen:]

	metaLen := binary.BigEndian.Uint32(h[:4])
	h = h[4:]
	if len(h) < int(metaLen) {
		return subscription.StreamEvent{}, errShortHeader
	}
	metadata := append([]byte(nil), h[:metaLen]...)

	pos := eventlog.TokenFromSeq(item.Seq)
	return subscription.StreamEvent{
		EventNumber: item.Seq,
		EventID:     id,
		EventType:   eventType,
		Data:        item.Payload,
		Metadata:    metadata,
		Position:    pos[:],
	}, nil
}
