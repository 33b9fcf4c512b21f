package service

import (
	"github.com/mmynk/settleup/internal/calculator"
	"github.com/mmynk/settleup/internal/models"
	"github.com/mmynk/settleup/pkg/api"
)

func toAPIUser(u *models.User) *api.User {
	return &api.User{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		CreatedAt:   u.CreatedAt,
	}
}

func toAPIGroup(g *models.Group) *api.Group {
	return &api.Group{
		ID:        g.ID,
		Name:      g.Name,
		Members:   g.Members,
		CreatedAt: g.CreatedAt,
	}
}

func toAPIExpense(e *models.Expense) *api.Expense {
	return &api.Expense{
		ID:          e.ID,
		GroupID:     e.GroupID,
		PayerID:     e.PayerID,
		Amount:      e.Amount,
		SplitMethod: e.SplitMethod,
		Shares:      e.Shares,
		Description: e.Description,
		CreatedAt:   e.CreatedAt,
	}
}

func toAPISettlement(s *models.Settlement) *api.Settlement {
	return &api.Settlement{
		ID:         s.ID,
		GroupID:    s.GroupID,
		FromUserID: s.FromUserID,
		ToUserID:   s.ToUserID,
		Amount:     s.Amount,
		CreatedAt:  s.CreatedAt,
		CreatedBy:  s.CreatedBy,
		Note:       s.Note,
	}
}

func toAPISettlements(settlements []*models.Settlement) []*api.Settlement {
	out := make([]*api.Settlement, len(settlements))
	for i, s := range settlements {
		out[i] = toAPISettlement(s)
	}
	return out
}

// toAPIBalances lists balances in member order.
func toAPIBalances(members []string, balances calculator.Balances[string], names map[string]string) []*api.Balance {
	out := make([]*api.Balance, len(members))
	for i, id := range members {
		out[i] = &api.Balance{UserID: id, DisplayName: names[id], Amount: balances[id]}
	}
	return out
}

func toAPITransfers(transfers []calculator.Transfer[string], names map[string]string) []*api.Transfer {
	out := make([]*api.Transfer, len(transfers))
	for i, t := range transfers {
		out[i] = &api.Transfer{
			FromUserID: t.From,
			FromName:   names[t.From],
			ToUserID:   t.To,
			ToName:     names[t.To],
			Amount:     t.Amount,
		}
	}
	return out
}
