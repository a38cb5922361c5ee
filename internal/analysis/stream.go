package analysis

type streamState uint8

const (
	stateNotStarted streamState = iota
	stateAvailable
	stateExhausted
)

// TokenStream exposes a segmented word sequence one token at a time.
//
// Consumers call Advance and then read Token until Advance returns false.
// Offsets are reconstructed from cumulative byte lengths, so the words must
// concatenate back to the source text. A TokenStream is single-use and not
// safe for concurrent use.
type TokenStream struct {
	words  []string
	next   int
	cursor int
	state  streamState
	token  Token
}

// NewTokenStream wraps an already segmented word sequence. The stream takes
// ownership of words.
func NewTokenStream(words []string) *TokenStream {
	return &TokenStream{words: words}
}

// Advance moves to the next token. It returns false once the words are
// exhausted and keeps returning false afterwards.
func (ts *TokenStream) Advance() bool {
	if ts.state == stateExhausted {
		return false
	}
	if ts.next >= len(ts.words) {
		ts.state = stateExhausted
		return false
	}

	word := ts.words[ts.next]
	ts.words[ts.next] = ""

	ts.token = Token{
		Text:           word,
		OffsetFrom:     ts.cursor,
		OffsetTo:       ts.cursor + len(word),
		Position:       ts.next,
		PositionLength: 1,
	}
	ts.cursor = ts.token.OffsetTo
	ts.next++
	ts.state = stateAvailable
	return true
}

// Token returns the most recently produced token, or the zero Token before
// the first successful Advance.
func (ts *TokenStream) Token() Token {
	return ts.token
}

// TokenMut returns a pointer to the current token so filters can rewrite it
// in place.
func (ts *TokenStream) TokenMut() *Token {
	return &ts.token
}

// Exhausted reports whether Advance has returned false.
func (ts *TokenStream) Exhausted() bool {
	return ts.state == stateExhausted
}

// Process drains the stream, calling fn for every token.
func (ts *TokenStream) Process(fn func(Token)) int {
	n := 0
	for ts.Advance() {
		fn(ts.token)
		n++
	}
	return n
}
