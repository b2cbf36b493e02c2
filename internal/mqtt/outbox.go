package mqtt

import "log/slog"

// bufferedMsg stores a serialized MQTT message for replay after reconnection.
type bufferedMsg struct {
	topic    string
	payload  []byte
	qos      byte
	retained bool
}

// outbox queues messages while the broker is unreachable. When full, the
// oldest QoS 0 button event is evicted first; lifecycle events (QoS 1) are
// only evicted when nothing else is left.
// Not safe for concurrent use; callers synchronize.
type outbox struct {
	msgs     []bufferedMsg
	capacity int
	dropped  int // since the last drain
	logger   *slog.Logger
}

func newOutbox(capacity int, logger *slog.Logger) *outbox {
	if logger == nil {
		logger = slog.Default()
	}
	return &outbox{
		msgs:     make([]bufferedMsg, 0, capacity),
		capacity: capacity,
		logger:   logger,
	}
}

func (o *outbox) push(msg bufferedMsg) {
	if o.capacity <= 0 {
		o.dropped++
		return
	}
	if len(o.msgs) == o.capacity {
		if o.dropped == 0 {
			o.logger.Warn("mqtt outbox full, dropping oldest button events", "capacity", o.capacity)
		}
		o.evict()
		o.dropped++
	}
	o.msgs = append(o.msgs, msg)
}

// evict removes the oldest QoS 0 message, or the oldest message if all are
// lifecycle events.
func (o *outbox) evict() {
	victim := 0
	for i, m := range o.msgs {
		if m.qos == 0 {
			victim = i
			break
		}
	}
	o.msgs = append(o.msgs[:victim], o.msgs[victim+1:]...)
}

// drain returns the queued messages oldest first and empties the outbox.
func (o *outbox) drain() []bufferedMsg {
	if len(o.msgs) == 0 {
		o.dropped = 0
		return nil
	}
	out := o.msgs
	o.msgs = make([]bufferedMsg, 0, o.capacity)
	if o.dropped > 0 {
		o.logger.Warn("mqtt outbox dropped messages while disconnected", "dropped", o.dropped)
		o.dropped = 0
	}
	return out
}

func (o *outbox) len() int {
	return len(o.msgs)
}
