// Package auditchain implements the append-only, hash-chained event log
// (C7). A Chain is the single serializing writer spec §5 calls for: its
// mutex is the only hot mutable resource in the pipeline, guarding
// lastSeq/lastHash exactly as the teacher's resource-pool packages guard
// their own hot state with a single lock rather than lock-free tricks.
package auditchain

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/R3E-Network/fin-training-governance/internal/canonicaljson"
	"github.com/R3E-Network/fin-training-governance/internal/model"
	"github.com/R3E-Network/fin-training-governance/pkg/config"
)

var zeroHash = fmt.Sprintf("%064d", 0)

// Chain is the single-writer actor owning AuditEvent.Append. Readers
// (Verify, ShouldArchive, Events) may run concurrently with each other
// but Append always serializes through mu.
type Chain struct {
	mu        sync.Mutex
	events    []model.AuditEvent
	lastSeq   int64
	lastHash  string
	hasEvents bool
	retention config.RetentionConfig
	now       func() time.Time
}

// New constructs an empty Chain. retention classifies event types to
// durations per spec §6; now is injectable for deterministic tests.
func New(retention config.RetentionConfig) *Chain {
	return &Chain{retention: retention, now: time.Now}
}

// eventDraft is everything a caller supplies; Chain fills in Seq,
// PrevHash, SelfHash and defaults Ts/ID if left zero.
type eventDraft = model.AuditEvent

// Append computes seq, prev_hash and self_hash and persists the event in
// memory, returning the assigned sequence number. Canonical JSON (spec
// §9) is computed over the event with SelfHash cleared, so the hash
// never depends on itself.
func (c *Chain) Append(draft eventDraft) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	seq := int64(0)
	prevHash := zeroHash
	if c.hasEvents {
		seq = c.lastSeq + 1
		prevHash = c.lastHash
	}

	event := draft
	event.Seq = seq
	event.PrevHash = prevHash
	event.SelfHash = ""
	if event.Ts.IsZero() {
		event.Ts = c.now().UTC()
	} else {
		event.Ts = event.Ts.UTC()
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}

	selfHash, err := canonicaljson.Hash(event)
	if err != nil {
		return 0, fmt.Errorf("auditchain: hash event: %w", err)
	}
	event.SelfHash = selfHash

	c.events = append(c.events, event)
	c.lastSeq = seq
	c.lastHash = selfHash
	c.hasEvents = true

	return seq, nil
}

// Len returns the current chain length.
func (c *Chain) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.events)
}

// Events returns a copy of events in [from, to] inclusive, for callers
// that need read access outside Verify.
func (c *Chain) Events(from, to int64) []model.AuditEvent {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []model.AuditEvent
	for _, e := range c.events {
		if e.Seq >= from && e.Seq <= to {
			out = append(out, e)
		}
	}
	return out
}

// Verify recomputes every event's hash in [from, to] and checks the
// chain link to its predecessor. It returns false and the first failing
// seq on the first mismatch found (spec §8 property 4, scenario S3).
func (c *Chain) Verify(from, to int64) (bool, *int64) {
	c.mu.Lock()
	events := make([]model.AuditEvent, len(c.events))
	copy(events, c.events)
	c.mu.Unlock()

	prevHash := zeroHash
	if from > 0 {
		for _, e := range events {
			if e.Seq == from-1 {
				prevHash = e.SelfHash
				break
			}
		}
	}

	for _, e := range events {
		if e.Seq < from || e.Seq > to {
			continue
		}
		if e.PrevHash != prevHash {
			seq := e.Seq
			return false, &seq
		}
		recomputed := e
		recomputed.SelfHash = ""
		wantHash, err := canonicaljson.Hash(recomputed)
		if err != nil || wantHash != e.SelfHash {
			seq := e.Seq
			return false, &seq
		}
		prevHash = e.SelfHash
	}
	return true, nil
}

// ShouldArchive reports whether an event of eventType recorded at ts has
// exceeded its configured retention duration as of now.
func (c *Chain) ShouldArchive(eventType string, ts time.Time) bool {
	duration, err := c.retention.RetentionFor(eventType)
	if err != nil {
		return false
	}
	return c.now().Sub(ts) > duration
}

// RecordTokenRead implements tokenstore.Auditor: every reverse-mapping
// read gets its own audit event, never carrying the resolved plaintext
// (spec §9 "Reverse-token store confidentiality").
func (c *Chain) RecordTokenRead(tokenText, piiKind string) {
	_, _ = c.Append(model.AuditEvent{
		EventType:    model.EventTokenReverseLookupRead,
		Severity:     model.SeverityWarning,
		ResourceType: "token",
		ResourceID:   tokenText,
		Action:       "resolve",
		Metadata:     map[string]any{"pii_kind": piiKind},
	})
}

// CorruptEventForTest overwrites a stored event's Action field without
// recomputing its hash, simulating tamper for integrity tests (spec
// scenario S3). It must never be called outside tests.
func (c *Chain) CorruptEventForTest(seq int64, action string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.events {
		if c.events[i].Seq == seq {
			c.events[i].Action = action
			return
		}
	}
}
