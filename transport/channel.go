package transport

import (
	"context"
	"sync"
	"time"
)

// Channel is an in-process Transport. Every topic is an append-only log with
// a single partition; each consumer group keeps its own cursor into the log.
// It exists for tests and examples, not for durability.
type Channel struct {
	mu     sync.Mutex
	topics map[string]*channelTopic
	closed bool
	done   chan struct{}
}

var _ Transport = (*Channel)(nil)

// NewChannel returns an empty hub.
func NewChannel() *Channel {
	return &Channel{
		topics: make(map[string]*channelTopic),
		done:   make(chan struct{}),
	}
}

type channelTopic struct {
	mu     sync.Mutex
	log    []*Record
	notify chan struct{}
	groups map[string]int
}

func (c *Channel) topic(name string) *channelTopic {
	c.mu.Lock()
	defer c.mu.Unlock()
	t, ok := c.topics[name]
	if !ok {
		t = &channelTopic{
			notify: make(chan struct{}),
			groups: make(map[string]int),
		}
		c.topics[name] = t
	}
	return t
}

// Consumer subscribes a group to the topic. Latest start positions the
// group's cursor at the current end of the log.
func (c *Channel) Consumer(cfg ConsumerConfig) (Consumer, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, ErrClosed
	}
	c.mu.Unlock()

	t := c.topic(cfg.Topic)
	t.mu.Lock()
	if _, ok := t.groups[cfg.Group]; !ok {
		switch cfg.StartOffset {
		case StartEarliest:
			t.groups[cfg.Group] = 0
		default:
			t.groups[cfg.Group] = len(t.log)
		}
	}
	t.mu.Unlock()

	return &channelConsumer{
		hub:   c,
		topic: t,
		group: cfg.Group,
		max:   cfg.MaxPollRecords,
	}, nil
}

// Producer returns a producer writing into the hub.
func (c *Channel) Producer() (Producer, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, ErrClosed
	}
	return &channelProducer{hub: c}, nil
}

// EnsureTopic creates the topic's log if it does not exist yet.
func (c *Channel) EnsureTopic(_ context.Context, topic string) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	c.mu.Unlock()
	c.topic(topic)
	return nil
}

// Close wakes all blocked polls; subsequent operations return ErrClosed.
func (c *Channel) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	close(c.done)
	return nil
}

// Records returns a copy of the topic's log, for assertions in tests.
func (c *Channel) Records(topic string) []*Record {
	t := c.topic(topic)
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]*Record, len(t.log))
	copy(out, t.log)
	return out
}

type channelConsumer struct {
	hub   *Channel
	topic *channelTopic
	group string
	max   int
}

func (c *channelConsumer) Poll(ctx context.Context) ([]*Record, error) {
	for {
		c.topic.mu.Lock()
		next := c.topic.groups[c.group]
		if next < len(c.topic.log) {
			end := len(c.topic.log)
			if c.max > 0 && end-next > c.max {
				end = next + c.max
			}
			batch := make([]*Record, 0, end-next)
			for _, r := range c.topic.log[next:end] {
				cp := *r
				batch = append(batch, &cp)
			}
			c.topic.groups[c.group] = end
			c.topic.mu.Unlock()
			return batch, nil
		}
		wait := c.topic.notify
		c.topic.mu.Unlock()

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-c.hub.done:
			return nil, ErrClosed
		case <-wait:
		}
	}
}

// Mark is a no-op; the hub has no restarts to commit for.
func (c *channelConsumer) Mark(...*Record) {}

func (c *channelConsumer) Close() error { return nil }

type channelProducer struct {
	hub *Channel
}

func (p *channelProducer) Produce(_ context.Context, rec *Record) error {
	p.hub.mu.Lock()
	if p.hub.closed {
		p.hub.mu.Unlock()
		return ErrClosed
	}
	p.hub.mu.Unlock()

	t := p.hub.topic(rec.Topic)
	t.mu.Lock()
	stored := *rec
	stored.Partition = 0
	stored.Offset = int64(len(t.log))
	if stored.Timestamp.IsZero() {
		stored.Timestamp = time.Now()
	}
	t.log = append(t.log, &stored)
	close(t.notify)
	t.notify = make(chan struct{})
	t.mu.Unlock()
	return nil
}

func (p *channelProducer) Close() error { return nil }
