package veax

import (
	"context"

	"veaxAgent/internal/model"
	"veaxAgent/internal/rpc"
)

// PositionsPageSize is the page size used for position listings.
const PositionsPageSize = 10

// PositionClient talks to the liquidity-position service.
type PositionClient struct {
	rpc rpc.Caller
}

func NewPositionClient(caller rpc.Caller) *PositionClient {
	return &PositionClient{rpc: caller}
}

// List returns one page of account's positions, oldest first.
func (c *PositionClient) List(ctx context.Context, account string, page int) (model.PositionPage, error) {
	if page < 1 {
		page = 1
	}
	var out model.PositionPage
	err := c.rpc.Call(ctx, "liquidity_positions_list", map[string]any{
		"account_id": account,
		"filter": ListFilter{
			Page:  page,
			Limit: PositionsPageSize,
			Sort:  SortNone,
		},
	}, &out)
	return out, err
}

// Details returns one position by id.
func (c *PositionClient) Details(ctx context.Context, id string) (model.Position, error) {
	var out model.Position
	err := c.rpc.Call(ctx, "liquidity_position_details", map[string]string{"id": id}, &out)
	return out, err
}
