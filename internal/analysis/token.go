package analysis

// Token is a single indexable unit of text.
//
// OffsetFrom and OffsetTo are byte offsets into the original text and form a
// half-open interval. Position is the zero-based ordinal of the token among
// the tokens emitted for that text.
type Token struct {
	Text           string
	OffsetFrom     int
	OffsetTo       int
	Position       int
	PositionLength int
}

// Len returns the byte length of the token's span.
func (t Token) Len() int {
	return t.OffsetTo - t.OffsetFrom
}
