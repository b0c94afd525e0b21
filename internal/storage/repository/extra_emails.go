package repository

import (
	"context"
	"fmt"

	"github.com/speechtospeechai/accounts-service/internal/models"
)

// CreateExtraEmail сохраняет дополнительный адрес аккаунта и возвращает его ID.
func (s *Storage) CreateExtraEmail(ctx context.Context, accountUID, email string) (int, error) {
	const op = "storage.CreateExtraEmail"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var id int
	query := `INSERT INTO extra_emails (account_uid, email)
			  VALUES ($1, $2)
			  RETURNING id`
	if err := s.DB.QueryRowContext(ctx, query, accountUID, email).Scan(&id); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return id, nil
}

// ExtraEmailExists проверяет, зарегистрирован ли адрес у данного аккаунта.
func (s *Storage) ExtraEmailExists(ctx context.Context, accountUID, email string) (bool, error) {
	const op = "storage.ExtraEmailExists"
	select {
	case <-ctx.Done():
		return false, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var exists bool
	query := `SELECT EXISTS (
			      SELECT 1 FROM extra_emails
			      WHERE account_uid = $1 AND email = $2
			  )`
	if err := s.DB.QueryRowContext(ctx, query, accountUID, email).Scan(&exists); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return exists, nil
}

// ListExtraEmails возвращает дополнительные адреса аккаунта.
func (s *Storage) ListExtraEmails(ctx context.Context, accountUID string) ([]*models.ExtraEmail, error) {
	const op = "storage.ListExtraEmails"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, account_uid, email
			  FROM extra_emails
			  WHERE account_uid = $1
			  ORDER BY id`
	rows, err := s.DB.QueryContext(ctx, query, accountUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.ExtraEmail
	for rows.Next() {
		e := &models.ExtraEmail{}
		if err = rows.Scan(&e.ID, &e.AccountUID, &e.Email); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, e)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
