package repository

import (
	"context"
	"fmt"

	"github.com/speechtospeechai/accounts-service/internal/models"
)

// GetPlan возвращает тариф по его коду.
func (s *Storage) GetPlan(ctx context.Context, codeName string) (*models.Plan, error) {
	const op = "storage.GetPlan"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT code_name, price, credits, days, is_subscription
			  FROM plans
			  WHERE code_name = $1`
	p := &models.Plan{}
	if err := s.DB.QueryRowContext(ctx, query, codeName).Scan(&p.CodeName,
		&p.Price, &p.Credits, &p.Days, &p.IsSubscription); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return p, nil
}

// ListPlans возвращает весь каталог тарифов.
func (s *Storage) ListPlans(ctx context.Context) ([]*models.Plan, error) {
	const op = "storage.ListPlans"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT code_name, price, credits, days, is_subscription
			  FROM plans
			  ORDER BY price`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Plan
	for rows.Next() {
		p := &models.Plan{}
		if err = rows.Scan(&p.CodeName, &p.Price, &p.Credits, &p.Days,
			&p.IsSubscription); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
