package tokens

import (
	"errors"
	"testing"
	"time"

	"llm-playground/internal/models"
)

func newEstimatingCounter(t *testing.T) *Counter {
	t.Helper()
	c := newCounter(func() (encodeFunc, error) { return estimate, nil })
	<-c.Warm()
	return c
}

func TestEstimate(t *testing.T) {
	tests := []struct {
		text string
		want int
	}{
		{"", 0},
		{"a", 1},
		{"abcd", 1},
		{"abcde", 2},
	}

	for _, tt := range tests {
		if got := estimate(tt.text); got != tt.want {
			t.Errorf("estimate(%q) = %d, want %d", tt.text, got, tt.want)
		}
	}
}

func TestCountMessages(t *testing.T) {
	c := newEstimatingCounter(t)

	messages := []models.Message{
		{Role: models.RoleUser, Text: "abcdefgh"},
		{Role: models.RoleUser, Parts: []models.ContentPart{
			models.TextPart("abcd"),
			models.ImagePart("data:image/png;base64,AAAA", ""),
		}},
	}

	// user=1 + 4 + 2, user=1 + 4 + 1, priming 3
	if got := c.CountMessages(messages); got != 16 {
		t.Errorf("CountMessages() = %d, want 16", got)
	}
	if got := c.CountMessages(nil); got != replyPrime {
		t.Errorf("CountMessages(nil) = %d, want %d", got, replyPrime)
	}
}

func TestCountDoesNotWaitForEncoding(t *testing.T) {
	release := make(chan struct{})
	c := newCounter(func() (encodeFunc, error) {
		<-release
		return func(string) int { return 100 }, nil
	})

	done := make(chan int, 1)
	go func() { done <- c.Count("abcdefgh") }()

	select {
	case got := <-done:
		if got != 2 {
			t.Errorf("Count() while loading = %d, want estimate 2", got)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Count() blocked on encoding load")
	}

	close(release)
	<-c.Warm()
	if got := c.Count("abcdefgh"); got != 100 {
		t.Errorf("Count() after load = %d, want 100", got)
	}
}

func TestCountFallsBackWhenEncodingUnavailable(t *testing.T) {
	calls := 0
	c := newCounter(func() (encodeFunc, error) {
		calls++
		return nil, errors.New("offline")
	})
	<-c.Warm()

	if got := c.Count("abcde"); got != 2 {
		t.Errorf("Count() = %d, want estimate 2", got)
	}
	<-c.Warm()
	if calls != 1 {
		t.Errorf("load called %d times, want 1", calls)
	}
}
