// Package eventlog implements a Pebble-backed append-only event log.
//
// # Overview
//
// The log is partitioned by namespace/topic/partition and persisted in
// Pebble. Keys are lexicographically ordered for efficient range scans:
//   - ns/{ns}/log/{topic}/{part_be4}/m           (partition metadata: lastSeq)
//   - ns/{ns}/log/{topic}/{part_be4}/e/{seq_be8} (entries)
//   - ns/{ns}/cursor/{topic}/{group}/{part_be4}  (durable group cursors)
//
// Records are stored as: varint(headerLen) | header | payload | crc32c(header|payload).
//
// This package is the underlying log storage collaborator behind the
// persistent subscription engine: internal/subadapters wraps a *Log to
// satisfy the engine's EventLoader and CheckpointReader/CheckpointWriter
// capability interfaces.
//
//	l, _ := OpenLog(db, ns, topic, part)
//	seqs, _ := l.Append(ctx, []AppendRecord{{Header: h, Payload: p}})
//	items, next := l.Read(ReadOptions{Start: TokenFromSeq(seqs[0]), Limit: 100})
//	woke := l.WaitForAppend(200 * time.Millisecond)
//	_ = l.CommitCursor("groupA", TokenFromSeq(seqs[len(seqs)-1]))
package eventlog
