package prompts

import (
	"fmt"
	"unicode/utf8"

	"github.com/pkoukk/tiktoken-go"
)

const ApproxEncoding = "approx"

type TokenCounter interface {
	Count(text string) int
}

// On error the approximate counter is still returned.
func NewTokenCounter(encoding string) (TokenCounter, error) {
	if encoding == "" || encoding == ApproxEncoding {
		return ApproxCounter{}, nil
	}
	enc, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		return ApproxCounter{}, fmt.Errorf("load tiktoken encoding %q: %w", encoding, err)
	}
	return &tiktokenCounter{enc: enc}, nil
}

type tiktokenCounter struct {
	enc *tiktoken.Tiktoken
}

func (c *tiktokenCounter) Count(text string) int {
	if text == "" {
		return 0
	}
	return len(c.enc.Encode(text, nil, nil))
}

// ApproxCounter assumes roughly four characters per token.
type ApproxCounter struct{}

func (ApproxCounter) Count(text string) int {
	runes := utf8.RuneCountInString(text)
	if runes == 0 {
		return 0
	}
	return (runes + 3) / 4
}

type Budget struct {
	counter TokenCounter
	limit   int
}

func NewBudget(counter TokenCounter, contextSize int) *Budget {
	if counter == nil {
		counter = ApproxCounter{}
	}
	return &Budget{counter: counter, limit: contextSize}
}

func (b *Budget) Fits(prompt string, reserve int) bool {
	return b.counter.Count(prompt)+reserve <= b.limit
}
