package update

const (
	tokenNotSet = "<not set>"
	tokenEmpty  = "<empty>"
	tokenMask   = "***"

	// minTokenLengthForHint is the longest token that is masked completely.
	minTokenLengthForHint = 6
)

// HideToken renders a credential for log output without revealing it.
// Tokens longer than six characters keep their first and last two characters.
func HideToken(token *string) string {
	if token == nil {
		return tokenNotSet
	}
	t := *token
	if t == "" {
		return tokenEmpty
	}
	if len(t) <= minTokenLengthForHint {
		return tokenMask
	}
	return t[:2] + tokenMask + t[len(t)-2:]
}
