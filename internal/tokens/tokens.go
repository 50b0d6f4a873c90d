package tokens

import (
	"sync"
	"sync/atomic"

	"github.com/pkoukk/tiktoken-go"

	"llm-playground/internal/models"
)

const encodingName = "cl100k_base"

// Per-message framing overhead and reply priming used by OpenAI-style chat formats.
const (
	perMessage = 4
	replyPrime = 3
)

type encodeFunc func(string) int

// Counter estimates prompt size for request logging. It is approximate for
// non-OpenAI models.
type Counter struct {
	load   func() (encodeFunc, error)
	once   sync.Once
	ready  chan struct{}
	encode atomic.Pointer[encodeFunc]
}

// NewCounter creates a counter backed by the cl100k_base encoding.
func NewCounter() *Counter {
	return newCounter(loadEncoding)
}

func newCounter(load func() (encodeFunc, error)) *Counter {
	return &Counter{load: load, ready: make(chan struct{})}
}

func loadEncoding() (encodeFunc, error) {
	encoder, err := tiktoken.GetEncoding(encodingName)
	if err != nil {
		return nil, err
	}
	return func(text string) int {
		return len(encoder.Encode(text, nil, nil))
	}, nil
}

// Warm starts loading the encoding in the background. The first load may download
// the BPE ranks; the returned channel is closed once loading has finished,
// successfully or not.
func (c *Counter) Warm() <-chan struct{} {
	c.once.Do(func() {
		go func() {
			defer close(c.ready)
			fn, err := c.load()
			if err != nil {
				return
			}
			c.encode.Store(&fn)
		}()
	})
	return c.ready
}

// Count returns the number of tokens in text. Until the encoding is available it
// returns a chars/4 estimate instead of waiting.
func (c *Counter) Count(text string) int {
	c.Warm()
	if fn := c.encode.Load(); fn != nil {
		return (*fn)(text)
	}
	return estimate(text)
}

// CountMessages estimates the prompt tokens of a conversation. Only text is
// counted; images and audio are ignored.
func (c *Counter) CountMessages(messages []models.Message) int {
	total := 0
	for _, msg := range messages {
		total += c.Count(msg.Role) + perMessage
		if msg.IsText() {
			total += c.Count(msg.Text)
			continue
		}
		for _, part := range msg.Parts {
			if part.Kind == models.PartText {
				total += c.Count(part.Text)
			}
		}
	}
	return total + replyPrime
}

func estimate(text string) int {
	return (len(text) + 3) / 4
}
