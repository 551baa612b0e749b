package tokens

import (
	"fmt"
	"unicode/utf8"

	"github.com/pkoukk/tiktoken-go"
)

// DefaultEncoding is used when a model has no encoding of its own.
const DefaultEncoding = "cl100k_base"

// Encoder counts and trims text in model tokens.
type Encoder interface {
	Count(text string) int
	// Head keeps at most max tokens from the start of text.
	Head(text string, max int) string
	// Tail keeps at most max tokens from the end of text.
	Tail(text string, max int) string
}

// TiktokenEncoder implements Encoder using tiktoken-go
type TiktokenEncoder struct {
	encoding *tiktoken.Tiktoken
}

// NewTiktokenEncoder creates a new tiktoken encoder
func NewTiktokenEncoder(encodingName string) (*TiktokenEncoder, error) {
	encoding, err := tiktoken.GetEncoding(encodingName)
	if err != nil {
		return nil, fmt.Errorf("failed to get encoding %s: %w", encodingName, err)
	}
	return &TiktokenEncoder{encoding: encoding}, nil
}

func (e *TiktokenEncoder) Count(text string) int {
	return len(e.encoding.Encode(text, nil, nil))
}

func (e *TiktokenEncoder) Head(text string, max int) string {
	toks := e.encoding.Encode(text, nil, nil)
	if len(toks) <= max {
		return text
	}
	if max <= 0 {
		return ""
	}
	return e.encoding.Decode(toks[:max])
}

func (e *TiktokenEncoder) Tail(text string, max int) string {
	toks := e.encoding.Encode(text, nil, nil)
	if len(toks) <= max {
		return text
	}
	if max <= 0 {
		return ""
	}
	return e.encoding.Decode(toks[len(toks)-max:])
}

// RuneEncoder approximates tokens as four runes each. It needs no BPE data,
// so it is the fallback when tiktoken cannot load its ranks.
type RuneEncoder struct{}

const runesPerToken = 4

func (RuneEncoder) Count(text string) int {
	n := utf8.RuneCountInString(text)
	return (n + runesPerToken - 1) / runesPerToken
}

func (RuneEncoder) Head(text string, max int) string {
	r := []rune(text)
	limit := max * runesPerToken
	if limit < 0 {
		limit = 0
	}
	if len(r) <= limit {
		return text
	}
	return string(r[:limit])
}

func (RuneEncoder) Tail(text string, max int) string {
	r := []rune(text)
	limit := max * runesPerToken
	if limit < 0 {
		limit = 0
	}
	if len(r) <= limit {
		return text
	}
	return string(r[len(r)-limit:])
}

// ForModel returns the tiktoken encoder for model, the default encoding when the
// model is unknown, and a RuneEncoder when neither can be loaded.
func ForModel(model string) Encoder {
	if model != "" {
		if enc, err := tiktoken.EncodingForModel(model); err == nil {
			return &TiktokenEncoder{encoding: enc}
		}
	}
	if enc, err := NewTiktokenEncoder(DefaultEncoding); err == nil {
		return enc
	}
	return RuneEncoder{}
}
