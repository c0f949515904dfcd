package near

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"veaxAgent/internal/rpc"
)

// Finality values accepted by the NEAR query endpoint.
const (
	FinalityFinal      = "final"
	FinalityOptimistic = "optimistic"
)

// ErrAccountNotFound is returned by ViewAccount for accounts that do not exist.
var ErrAccountNotFound = errors.New("account does not exist")

// ViewError is a contract execution failure reported inside a successful
// query response.
type ViewError struct {
	Account string
	Method  string
	Message string
}

func (e *ViewError) Error() string {
	return fmt.Sprintf("view %s.%s: %s", e.Account, e.Method, e.Message)
}

type callFunctionParams struct {
	RequestType string `json:"request_type"`
	Finality    string `json:"finality"`
	AccountID   string `json:"account_id"`
	MethodName  string `json:"method_name"`
	ArgsBase64  string `json:"args_base64"`
}

type viewAccountParams struct {
	RequestType string `json:"request_type"`
	Finality    string `json:"finality"`
	AccountID   string `json:"account_id"`
}

type callFunctionResult struct {
	Result []int  `json:"result"`
	Error  string `json:"error"`
}

// Client issues read-only queries against a NEAR RPC node.
type Client struct {
	rpc    rpc.Caller
	logger *zap.Logger

	mu        sync.RWMutex
	metaCache map[string]FTMetadata
}

// NewClient wraps an RPC caller pointed at a NEAR node.
func NewClient(caller rpc.Caller, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		rpc:       caller,
		logger:    logger.Named("near"),
		metaCache: make(map[string]FTMetadata),
	}
}

// CallFunction runs a view method on account with JSON args and decodes the
// JSON returned by the contract into out.
func (c *Client) CallFunction(ctx context.Context, account, method string, args any, out any) error {
	return c.callFunction(ctx, FinalityFinal, account, method, args, out)
}

func (c *Client) callFunction(ctx context.Context, finality, account, method string, args any, out any) error {
	if args == nil {
		args = struct{}{}
	}
	encoded, err := json.Marshal(args)
	if err != nil {
		return fmt.Errorf("marshal %s args: %w", method, err)
	}

	var res callFunctionResult
	err = c.rpc.Call(ctx, "query", callFunctionParams{
		RequestType: "call_function",
		Finality:    finality,
		AccountID:   account,
		MethodName:  method,
		ArgsBase64:  base64.StdEncoding.EncodeToString(encoded),
	}, &res)
	if err != nil {
		return fmt.Errorf("view %s.%s: %w", account, method, err)
	}
	if res.Error != "" {
		return &ViewError{Account: account, Method: method, Message: res.Error}
	}

	raw, err := resultBytes(res.Result)
	if err != nil {
		return fmt.Errorf("view %s.%s: %w", account, method, err)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s.%s result: %w", account, method, err)
	}
	return nil
}

// resultBytes converts the byte array a contract returns into raw bytes.
func resultBytes(values []int) ([]byte, error) {
	buf := make([]byte, len(values))
	for i, v := range values {
		if v < 0 || v > 255 {
			return nil, fmt.Errorf("result byte %d out of range: %d", i, v)
		}
		buf[i] = byte(v)
	}
	return buf, nil
}
