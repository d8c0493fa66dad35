package transport

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/goliatone/go-contractkit/core"
)

const KindMemory = "memory"

// MemorySink keeps delivered envelopes so a messaging verifier can read back
// what a contract triggered.
type MemorySink struct {
	kind string

	mu        sync.RWMutex
	envelopes []core.Envelope
}

func NewMemorySink(kind string) *MemorySink {
	kind = strings.TrimSpace(strings.ToLower(kind))
	if kind == "" {
		kind = KindMemory
	}
	return &MemorySink{kind: kind, envelopes: []core.Envelope{}}
}

func (s *MemorySink) Kind() string {
	if s == nil {
		return ""
	}
	return s.kind
}

func (s *MemorySink) Send(ctx context.Context, envelope core.Envelope) error {
	if s == nil {
		return fmt.Errorf("transport: memory sink is nil")
	}
	if ctx != nil {
		if err := ctx.Err(); err != nil {
			return err
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.envelopes = append(s.envelopes, envelope)
	return nil
}

func (s *MemorySink) Envelopes() []core.Envelope {
	if s == nil {
		return nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]core.Envelope(nil), s.envelopes...)
}

// Last returns the most recently delivered envelope.
func (s *MemorySink) Last() (core.Envelope, bool) {
	if s == nil {
		return core.Envelope{}, false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.envelopes) == 0 {
		return core.Envelope{}, false
	}
	return s.envelopes[len(s.envelopes)-1], true
}

func (s *MemorySink) Reset() {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.envelopes = []core.Envelope{}
}

var _ core.EnvelopeSink = (*MemorySink)(nil)
