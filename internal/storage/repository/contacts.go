package repository

import (
	"context"
	"fmt"

	"github.com/magabrotheeeer/gridnode/internal/models"
)

// CreateContact добавляет заявку с формы обратной связи.
func (s *Storage) CreateContact(ctx context.Context, c *models.Contact) error {
	const op = "storage.CreateContact"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}

	query := `INSERT INTO contacts (id, name, email, company, message, created_at)
			  VALUES ($1, $2, $3, $4, $5, $6)`
	if _, err := s.DB.ExecContext(ctx, query,
		c.ID, c.Name, c.Email, c.Company, c.Message, c.Timestamp); err != nil {
		return mapError(op, err)
	}
	return nil
}

// ListContacts возвращает заявки в порядке поступления.
func (s *Storage) ListContacts(ctx context.Context) ([]*models.Contact, error) {
	const op = "storage.ListContacts"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}
	rows, err := s.DB.QueryContext(ctx, `SELECT id, name, email, company, message, created_at
			  FROM contacts
			  ORDER BY seq`)
	if err != nil {
		return nil, mapError(op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	result := make([]*models.Contact, 0)
	for rows.Next() {
		var c models.Contact
		if err := rows.Scan(&c.ID, &c.Name, &c.Email, &c.Company, &c.Message, &c.Timestamp); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
