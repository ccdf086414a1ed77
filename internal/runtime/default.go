package runtime

// DefaultChain builds the standard discovery chain: an optional user
// override first, then $PATH, then platform-specific well-known install
// locations.
func DefaultChain(override string) Chain {
	var strategies []Strategy
	if override != "" {
		strategies = append(strategies, FromBinDir(override))
	}
	strategies = append(strategies, FromPath())
	for _, pattern := range platformGlobs() {
		strategies = append(strategies, FromGlob(pattern))
	}
	return NewChain(strategies...)
}
