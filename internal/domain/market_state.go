package domain

// MarketState is the typed current on-ledger state of a market object,
// hydrated through the batched object fetch. It carries the mutable side of
// a MarketSnapshot; the immutable side (question, created time) comes from
// the MarketCreated event.
type MarketState struct {
	ID           string
	YesRiskTotal int64
	NoRiskTotal  int64
	YesCount     int64
	NoCount      int64
	Locked       bool
	Resolved     bool
	Outcome      *bool
}
