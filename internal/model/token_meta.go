package model

// TokenMeta is a DEX-listed fungible token joined with its NEP-148 metadata.
type TokenMeta struct {
	Address  string `json:"sc_address"`
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Decimals int    `json:"decimals"`
	Spec     string `json:"spec,omitempty"`
}
