package txbuilder

import (
	"errors"
	"fmt"

	"veaxAgent/internal/amount"
)

// Gas budgets and attached deposits used by the plans.
const (
	GasStorageDeposit = "30000000000000"
	GasTransferCall   = "200000000000000"
	GasRegisterTokens = "200000000000000"
	GasWrap           = "30000000000000"

	OneYocto    = "1"
	ZeroDeposit = "0"

	// AccountCreationCost is the wrap-contract storage deposit in NEAR.
	AccountCreationCost = "0.042"
)

// Transaction is a group of actions for one receiver, signed as one
// transaction by the wallet.
type Transaction struct {
	ReceiverID string   `json:"receiverId"`
	Actions    []Action `json:"actions"`
}

// Action is a single function call.
type Action struct {
	Type   string       `json:"type"`
	Params FunctionCall `json:"params"`
}

// FunctionCall is the payload of a FunctionCall action.
type FunctionCall struct {
	MethodName string `json:"methodName"`
	Args       any    `json:"args"`
	Gas        string `json:"gas"`
	Deposit    string `json:"deposit"`
}

// Call builds a FunctionCall action.
func Call(method string, args any, gas, deposit string) Action {
	if args == nil {
		args = struct{}{}
	}
	return Action{
		Type: "FunctionCall",
		Params: FunctionCall{
			MethodName: method,
			Args:       args,
			Gas:        gas,
			Deposit:    deposit,
		},
	}
}

type storageDepositArgs struct {
	AccountID        string `json:"account_id"`
	RegistrationOnly bool   `json:"registration_only"`
}

type transferCallArgs struct {
	ReceiverID string `json:"receiver_id"`
	Amount     string `json:"amount"`
	Msg        string `json:"msg"`
}

type registerTokensArgs struct {
	TokenIDs []string `json:"token_ids"`
}

type withdrawArgs struct {
	Amount string `json:"amount"`
}

// Builder assembles unsigned transaction plans against one DEX deployment.
type Builder struct {
	dex  string
	wrap string
}

// New returns a builder for the given DEX and wrapped-NEAR contracts.
func New(dex, wrap string) *Builder {
	return &Builder{dex: dex, wrap: wrap}
}

func (b *Builder) DEX() string  { return b.dex }
func (b *Builder) Wrap() string { return b.wrap }

func (b *Builder) storageDeposit(account, deposit string) Action {
	return Call("storage_deposit", storageDepositArgs{
		AccountID:        account,
		RegistrationOnly: false,
	}, GasStorageDeposit, deposit)
}

func (b *Builder) transferCall(token, amt string, msgs ...Message) (Transaction, error) {
	msg, err := EncodeMessages(msgs...)
	if err != nil {
		return Transaction{}, err
	}
	return Transaction{
		ReceiverID: token,
		Actions: []Action{Call("ft_transfer_call", transferCallArgs{
			ReceiverID: b.dex,
			Amount:     amt,
			Msg:        msg,
		}, GasTransferCall, OneYocto)},
	}, nil
}

// SwapParams describes a single-hop swap. Amounts are base units.
type SwapParams struct {
	Account     string
	TokenIn     string
	TokenOut    string
	AmountIn    string
	AmountLimit string
}

// Swap returns [DEX storage_deposit, token_in ft_transfer_call] where the
// transfer carries Deposit, SwapExactIn and a Withdraw for both tokens.
func (b *Builder) Swap(p SwapParams) ([]Transaction, error) {
	if p.Account == "" || p.TokenIn == "" || p.TokenOut == "" {
		return nil, errors.New("swap: account and tokens are required")
	}
	transfer, err := b.transferCall(p.TokenIn, p.AmountIn,
		Deposit{},
		SwapExactIn{
			TokenIn:     p.TokenIn,
			TokenOut:    p.TokenOut,
			Amount:      p.AmountIn,
			AmountLimit: p.AmountLimit,
		},
		Withdraw{Token: p.TokenIn},
		Withdraw{Token: p.TokenOut},
	)
	if err != nil {
		return nil, err
	}
	return []Transaction{
		{ReceiverID: b.dex, Actions: []Action{b.storageDeposit(p.Account, ZeroDeposit)}},
		transfer,
	}, nil
}

// Hop is one leg of a routed swap.
type Hop struct {
	TokenIn     string
	TokenOut    string
	AmountIn    string
	AmountLimit string
}

// DoubleSwap chains two swaps in one transfer; only the final token is
// withdrawn.
func (b *Builder) DoubleSwap(account string, first, second Hop) ([]Transaction, error) {
	if first.TokenOut != second.TokenIn {
		return nil, fmt.Errorf("double swap: hops do not connect (%s != %s)", first.TokenOut, second.TokenIn)
	}
	transfer, err := b.transferCall(first.TokenIn, first.AmountIn,
		Deposit{},
		SwapExactIn{TokenIn: first.TokenIn, TokenOut: first.TokenOut, Amount: first.AmountIn, AmountLimit: first.AmountLimit},
		SwapExactIn{TokenIn: second.TokenIn, TokenOut: second.TokenOut, Amount: second.AmountIn, AmountLimit: second.AmountLimit},
		Withdraw{Token: second.TokenOut},
	)
	if err != nil {
		return nil, err
	}
	return []Transaction{
		{ReceiverID: b.dex, Actions: []Action{b.storageDeposit(account, ZeroDeposit)}},
		transfer,
	}, nil
}

// LiquidityParams describes a new position. Amounts are base units and
// StorageDeposit is in yoctoNEAR.
type LiquidityParams struct {
	Account        string
	TokenA         string
	TokenB         string
	FeeRate        int
	Ticks          [2]int
	MinA, MaxA     string
	MinB, MaxB     string
	StorageDeposit string
	Register       []string
}

// AddLiquidity returns the DEX storage/registration group followed by a
// deposit of token A and a deposit of token B that opens the position.
func (b *Builder) AddLiquidity(p LiquidityParams) ([]Transaction, error) {
	if p.Account == "" || p.TokenA == "" || p.TokenB == "" {
		return nil, errors.New("add liquidity: account and tokens are required")
	}
	deposit := p.StorageDeposit
	if deposit == "" {
		deposit = ZeroDeposit
	}

	dexActions := []Action{b.storageDeposit(p.Account, deposit)}
	if len(p.Register) > 0 {
		dexActions = append(dexActions, Call("register_tokens", registerTokensArgs{
			TokenIDs: p.Register,
		}, GasRegisterTokens, OneYocto))
	}

	depositA, err := b.transferCall(p.TokenA, p.MaxA, Deposit{})
	if err != nil {
		return nil, err
	}
	open, err := b.transferCall(p.TokenB, p.MaxB,
		Deposit{},
		OpenPosition{
			Tokens:  [2]string{p.TokenA, p.TokenB},
			FeeRate: p.FeeRate,
			Position: PositionSpec{
				AmountRanges: [2]AmountRange{
					{Min: p.MinA, Max: p.MaxA},
					{Min: p.MinB, Max: p.MaxB},
				},
				TicksRange: p.Ticks,
			},
		},
		Withdraw{Token: p.TokenA},
		Withdraw{Token: p.TokenB},
	)
	if err != nil {
		return nil, err
	}

	return []Transaction{
		{ReceiverID: b.dex, Actions: dexActions},
		depositA,
		open,
	}, nil
}

// WrapNear deposits yocto NEAR into the wrap contract, registering storage
// first when the account has none there.
func (b *Builder) WrapNear(yocto string, needsStorage bool) ([]Transaction, error) {
	actions := make([]Action, 0, 2)
	if needsStorage {
		cost, err := amount.ParseNear(AccountCreationCost)
		if err != nil {
			return nil, err
		}
		actions = append(actions, Call("storage_deposit", nil, GasWrap, cost))
	}
	actions = append(actions, Call("near_deposit", nil, GasWrap, yocto))
	return []Transaction{{ReceiverID: b.wrap, Actions: actions}}, nil
}

// UnwrapNear withdraws yocto wNEAR back to native NEAR.
func (b *Builder) UnwrapNear(yocto string) []Transaction {
	return []Transaction{{
		ReceiverID: b.wrap,
		Actions:    []Action{Call("near_withdraw", withdrawArgs{Amount: yocto}, GasWrap, OneYocto)},
	}}
}
