package eventlog

import (
	"encoding/binary"

	"github.com/cockroachdb/pebble"
)

// Token encodes a read position as a big-endian sequence number.
type Token [8]byte

// TokenFromSeq builds a Token for the given sequence number.
func TokenFromSeq(seq uint64) Token { var t Token; binary.BigEndian.PutUint64(t[:], seq); return t }

// Seq returns the sequence number encoded by the token.
func (t Token) Seq() uint64 { return binary.BigEndian.Uint64(t[:]) }

// ReadOptions controls a forward page read.
type ReadOptions struct {
	Start Token // zero value begins from the first entry
	Limit int
}

// Item is a single decoded log entry.
type Item struct {
	Seq     uint64
	Header  []byte
	Payload []byte
}

// Read returns up to Limit items starting at Start (inclusive), and the
// token to resume from on the next call. An empty result with a next token
// equal to Start means the log has no more entries past that point.
func (l *Log) Read(opts ReadOptions) ([]Item, Token) {
	startSeq := opts.Start.Seq()
	startKey := KeyLogEntry(l.namespace, l.topic, l.part, startSeq)
	low := KeyLogEntry(l.namespace, l.topic, l.part, 0)
	hi := append(KeyLogEntry(l.namespace, l.topic, l.part, ^uint64(0)), 0x00)

	iter, err := l.db.NewIter(&pebble.IterOptions{LowerBound: low, UpperBound: hi})
	items := make([]Item, 0, maxInt(1, opts.Limit))
	next := opts.Start
	if err != nil {
		return items, next
	}
	defer iter.Close()

	var ok bool
	if startSeq == 0 {
		ok = iter.First()
	} else {
		ok = iter.SeekGE(startKey)
	}
	for ok && (opts.Limit == 0 || len(items) < opts.Limit) {
		seq := binary.BigEndian.Uint64(iter.Key()[len(startKey)-8:])
		dec, decOK := DecodeRecord(iter.Value())
		if decOK {
			items = append(items, Item{Seq: seq, Header: dec.Header, Payload: dec.Payload})
			next = TokenFromSeq(seq + 1)
		}
		ok = iter.Next()
	}
	return items, next
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
