package model

// Position is a liquidity position as returned by the position service,
// kept as a raw record and enriched in place.
type Position = Record

// PositionPage is one page of a wallet's positions.
type PositionPage struct {
	Positions []Position `json:"positions"`
	Total     int        `json:"total"`
}

// TokenAmount is a human-formatted amount of one position leg.
type TokenAmount struct {
	Address  string `json:"sc_address"`
	Symbol   string `json:"symbol"`
	Decimals int    `json:"decimals"`
	Raw      string `json:"raw"`
	Amount   string `json:"amount"`
}
