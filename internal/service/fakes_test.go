package service

import (
	"context"
	"sync"
)

// recordingMailer captures outgoing mail and can be told to fail.
type recordingMailer struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

type sentMail struct {
	To, Subject, Body string
}

func (m *recordingMailer) Send(_ context.Context, to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentMail{To: to, Subject: subject, Body: body})
	return nil
}

func (m *recordingMailer) to(address string) []sentMail {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []sentMail
	for _, mail := range m.sent {
		if mail.To == address {
			out = append(out, mail)
		}
	}
	return out
}

// mapCache is an in-process UnreadCache.
type mapCache struct {
	mu          sync.Mutex
	counts      map[string]int64
	invalidated []string
}

func newMapCache() *mapCache {
	return &mapCache{counts: map[string]int64{}}
}

func (c *mapCache) Get(_ context.Context, userID string) (int64, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	count, ok := c.counts[userID]
	return count, ok, nil
}

func (c *mapCache) Set(_ context.Context, userID string, count int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counts[userID] = count
	return nil
}

func (c *mapCache) Invalidate(_ context.Context, userID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.counts, userID)
	c.invalidated = append(c.invalidated, userID)
	return nil
}
