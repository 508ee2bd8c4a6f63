// Package mailtest records notifications instead of sending them.
package mailtest

import (
	"strconv"
	"strings"
	"sync"
)

// Message is one recorded notification.
type Message struct {
	To   string
	Body string
}

// Recorder satisfies the notifier contract synchronously.
type Recorder struct {
	mu   sync.Mutex
	msgs []Message
}

func (r *Recorder) Notify(to, body string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, Message{To: to, Body: body})
}

// Messages returns everything recorded so far.
func (r *Recorder) Messages() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Message(nil), r.msgs...)
}

// Last returns the newest message sent to addr.
func (r *Recorder) Last(addr string) (Message, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.msgs) - 1; i >= 0; i-- {
		if r.msgs[i].To == addr {
			return r.msgs[i], true
		}
	}
	return Message{}, false
}

// LastCode extracts the trailing confirmation code of the newest message to
// addr, or 0 when there is none.
func (r *Recorder) LastCode(addr string) int {
	m, ok := r.Last(addr)
	if !ok {
		return 0
	}
	i := strings.LastIndex(m.Body, " ")
	code, err := strconv.Atoi(m.Body[i+1:])
	if err != nil {
		return 0
	}
	return code
}
