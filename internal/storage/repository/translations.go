package repository

import (
	"context"
	"fmt"

	"github.com/speechtospeechai/accounts-service/internal/models"
)

// ListLanguages возвращает все языки сайта.
func (s *Storage) ListLanguages(ctx context.Context) ([]*models.Language, error) {
	const op = "storage.ListLanguages"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT iso, name FROM languages ORDER BY iso`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Language
	for rows.Next() {
		l := &models.Language{}
		if err = rows.Scan(&l.ISO, &l.Name); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, l)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// GetTextByLang возвращает каталог переводов языка как map ключ → текст.
func (s *Storage) GetTextByLang(ctx context.Context, iso string) (map[string]string, error) {
	const op = "storage.GetTextByLang"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT code_name, text FROM translations WHERE language = $1`
	rows, err := s.DB.QueryContext(ctx, query, iso)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	result := make(map[string]string)
	for rows.Next() {
		var codeName, text string
		if err = rows.Scan(&codeName, &text); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result[codeName] = text
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
