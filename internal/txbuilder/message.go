package txbuilder

import (
	"encoding/json"
	"fmt"
)

// Message is one instruction in the msg array of an ft_transfer_call to the
// DEX. The contract executes messages in array order.
type Message interface {
	json.Marshaler
	message()
}

// Deposit credits the transferred tokens to the sender's DEX balance.
type Deposit struct{}

func (Deposit) message() {}

func (Deposit) MarshalJSON() ([]byte, error) {
	return []byte(`"Deposit"`), nil
}

// SwapExactIn swaps Amount of TokenIn, failing if the output is below
// AmountLimit. Amounts are base-unit integer strings.
type SwapExactIn struct {
	TokenIn     string `json:"token_in"`
	TokenOut    string `json:"token_out"`
	Amount      string `json:"amount"`
	AmountLimit string `json:"amount_limit"`
}

func (SwapExactIn) message() {}

func (s SwapExactIn) MarshalJSON() ([]byte, error) {
	type body SwapExactIn
	return json.Marshal(struct {
		SwapExactIn body `json:"SwapExactIn"`
	}{body(s)})
}

// AmountRange bounds the amount of one token a position may take.
type AmountRange struct {
	Min string `json:"min"`
	Max string `json:"max"`
}

// PositionSpec describes a concentrated liquidity position.
type PositionSpec struct {
	AmountRanges [2]AmountRange `json:"amount_ranges"`
	TicksRange   [2]int         `json:"ticks_range"`
}

// OpenPosition opens a position in the pool of Tokens at FeeRate.
type OpenPosition struct {
	Tokens   [2]string    `json:"tokens"`
	FeeRate  int          `json:"fee_rate"`
	Position PositionSpec `json:"position"`
}

func (OpenPosition) message() {}

func (o OpenPosition) MarshalJSON() ([]byte, error) {
	type body OpenPosition
	return json.Marshal(struct {
		OpenPosition body `json:"OpenPosition"`
	}{body(o)})
}

// Withdraw returns the sender's whole DEX balance of Token to the wallet.
type Withdraw struct {
	Token string
}

func (Withdraw) message() {}

func (w Withdraw) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string][3]any{
		"Withdraw": {w.Token, "0", nil},
	})
}

// EncodeMessages renders msgs as the JSON string carried in the msg argument.
func EncodeMessages(msgs ...Message) (string, error) {
	b, err := json.Marshal(msgs)
	if err != nil {
		return "", fmt.Errorf("encode dex messages: %w", err)
	}
	return string(b), nil
}
