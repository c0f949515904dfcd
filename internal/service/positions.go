package service

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"veaxAgent/internal/amount"
	"veaxAgent/internal/model"
)

// Positions lists a wallet's positions with token metadata and formatted
// amounts attached.
func (s *Service) Positions(ctx context.Context, wallet, page string) (model.PositionPage, error) {
	if err := requireParams("walletAddress is required", wallet); err != nil {
		return model.PositionPage{}, err
	}
	out, err := s.positions.List(ctx, wallet, parsePage(page))
	if err != nil {
		return model.PositionPage{}, err
	}
	if out.Positions == nil {
		out.Positions = []model.Position{}
	}
	s.enrichPositions(ctx, out.Positions...)
	return out, nil
}

// Position returns one enriched position.
func (s *Service) Position(ctx context.Context, id string) (model.Position, error) {
	if err := requireParams("positionId is required", id); err != nil {
		return nil, err
	}
	pos, err := s.positions.Details(ctx, strings.TrimSpace(id))
	if err != nil {
		return nil, err
	}
	if len(pos) == 0 {
		return nil, notFound("Position %s not found", id)
	}
	s.enrichPositions(ctx, pos)
	return pos, nil
}

// enrichPositions adds "token_metadata" and, when the position carries
// base-unit "amounts", "formatted_amounts". Metadata failures leave the
// position as returned upstream.
func (s *Service) enrichPositions(ctx context.Context, positions ...model.Position) {
	unique := make(map[string]struct{})
	for _, p := range positions {
		tokens, _ := p.Strings("tokens")
		for _, t := range tokens {
			unique[t] = struct{}{}
		}
	}
	if len(unique) == 0 {
		return
	}

	addrs := make([]string, 0, len(unique))
	for a := range unique {
		addrs = append(addrs, a)
	}
	metas := make([]*model.TokenMeta, len(addrs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.fanout)
	for i, addr := range addrs {
		g.Go(func() error {
			meta, err := s.tokens.Metadata(gctx, addr)
			if err != nil {
				s.logger.Warn("position token metadata failed", zap.String("token", addr), zap.Error(err))
				return nil
			}
			metas[i] = &meta
			return nil
		})
	}
	_ = g.Wait()

	byAddr := make(map[string]model.TokenMeta, len(addrs))
	for i, m := range metas {
		if m != nil {
			byAddr[addrs[i]] = *m
		}
	}

	for _, p := range positions {
		tokens, _ := p.Strings("tokens")
		if len(tokens) == 0 {
			continue
		}
		metaList := make([]model.TokenMeta, 0, len(tokens))
		for _, t := range tokens {
			m, ok := byAddr[t]
			if !ok {
				metaList = nil
				break
			}
			metaList = append(metaList, m)
		}
		if metaList == nil {
			continue
		}
		_ = p.Set("token_metadata", metaList)

		amounts, ok := p.Strings("amounts")
		if !ok || len(amounts) != len(metaList) {
			continue
		}
		formatted := make([]model.TokenAmount, 0, len(amounts))
		for i, raw := range amounts {
			human, err := amount.ToHuman(raw, metaList[i].Decimals)
			if err != nil {
				formatted = nil
				break
			}
			formatted = append(formatted, model.TokenAmount{
				Address:  metaList[i].Address,
				Symbol:   metaList[i].Symbol,
				Decimals: metaList[i].Decimals,
				Raw:      raw,
				Amount:   human,
			})
		}
		if formatted != nil {
			_ = p.Set("formatted_amounts", formatted)
		}
	}
}
