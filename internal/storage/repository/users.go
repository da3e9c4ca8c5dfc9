package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/magabrotheeeer/gridnode/internal/models"
)

const userColumns = `id, email, role, is_verified, subscription_plan, subscription_expiry,
	scans_used, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner, extra ...any) (*models.User, error) {
	u := &models.User{}
	var expiry sql.NullTime
	dest := append([]any{&u.ID, &u.Email, &u.Role, &u.IsVerified, &u.SubscriptionPlan,
		&expiry, &u.ScansUsed, &u.CreatedAt}, extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	if expiry.Valid {
		t := expiry.Time
		u.SubscriptionExpiry = &t
	}
	return u, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

// UpsertAccount создаёт или обновляет строку реестра. У существующей строки
// обновляются только данные входа: тариф, срок и счётчик проверок меняют
// UpdatePlan и CreateScanLog. Пустой PasswordHash не затирает сохранённый хеш.
func (s *Storage) UpsertAccount(ctx context.Context, acc models.Account) error {
	const op = "storage.UpsertAccount"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}

	query := `INSERT INTO users (id, email, role, is_verified, subscription_plan,
			      subscription_expiry, scans_used, password_hash)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			  ON CONFLICT (id) DO UPDATE SET
			      email = EXCLUDED.email,
			      role = EXCLUDED.role,
			      is_verified = EXCLUDED.is_verified,
			      password_hash = COALESCE(NULLIF(EXCLUDED.password_hash, ''), users.password_hash),
			      updated_at = NOW()`
	_, err := s.DB.ExecContext(ctx, query,
		acc.ID, acc.Email, acc.Role, acc.IsVerified, string(acc.SubscriptionPlan),
		nullTime(acc.SubscriptionExpiry), acc.ScansUsed, acc.PasswordHash)
	if err != nil {
		return mapError(op, err)
	}
	return nil
}

// GetAccountByEmail возвращает последнюю зарегистрированную учётную запись с этим email.
func (s *Storage) GetAccountByEmail(ctx context.Context, email string) (*models.Account, error) {
	const op = "storage.GetAccountByEmail"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	query := `SELECT ` + userColumns + `, password_hash
			  FROM users
			  WHERE email = $1
			  ORDER BY created_at DESC
			  LIMIT 1`
	var hash string
	u, err := scanUser(s.DB.QueryRowContext(ctx, query, email), &hash)
	if err != nil {
		return nil, mapError(op, err)
	}
	return &models.Account{User: *u, PasswordHash: hash}, nil
}

// GetUser возвращает пользователя по идентификатору.
func (s *Storage) GetUser(ctx context.Context, id string) (*models.User, error) {
	const op = "storage.GetUser"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	u, err := scanUser(s.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, mapError(op, err)
	}
	return u, nil
}

// ListUsers возвращает всех пользователей, новые первыми.
func (s *Storage) ListUsers(ctx context.Context) ([]*models.User, error) {
	const op = "storage.ListUsers"
	return s.queryUsers(ctx, op, `SELECT `+userColumns+` FROM users ORDER BY created_at DESC`)
}

// UpdatePlan записывает тариф и дату его окончания.
func (s *Storage) UpdatePlan(ctx context.Context, id string, plan models.Plan, expiry *time.Time) error {
	const op = "storage.UpdatePlan"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}

	res, err := s.DB.ExecContext(ctx, `UPDATE users
			  SET subscription_plan = $2, subscription_expiry = $3, updated_at = NOW()
			  WHERE id = $1`, id, string(plan), nullTime(expiry))
	if err != nil {
		return mapError(op, err)
	}
	return expectAffected(op, res)
}

// FindExpiredPlans возвращает платные тарифы, срок которых истёк к моменту now.
func (s *Storage) FindExpiredPlans(ctx context.Context, now time.Time) ([]*models.User, error) {
	const op = "storage.FindExpiredPlans"
	return s.queryUsers(ctx, op, `SELECT `+userColumns+`
			  FROM users
			  WHERE subscription_plan <> 'free'
			    AND role <> 'admin'
			    AND subscription_expiry IS NOT NULL
			    AND subscription_expiry <= $1`, now)
}

// FindPlansExpiringBetween возвращает платные тарифы, истекающие в [from, to).
func (s *Storage) FindPlansExpiringBetween(ctx context.Context, from, to time.Time) ([]*models.User, error) {
	const op = "storage.FindPlansExpiringBetween"
	return s.queryUsers(ctx, op, `SELECT `+userColumns+`
			  FROM users
			  WHERE subscription_plan <> 'free'
			    AND role <> 'admin'
			    AND subscription_expiry >= $1
			    AND subscription_expiry < $2`, from, to)
}

// DowngradeToFree переводит пользователя на бесплатный тариф.
func (s *Storage) DowngradeToFree(ctx context.Context, id string) error {
	return s.UpdatePlan(ctx, id, models.PlanFree, nil)
}

// CountUsers возвращает число строк реестра.
func (s *Storage) CountUsers(ctx context.Context) (int, error) {
	const op = "storage.CountUsers"
	if err := checkCtx(ctx, op); err != nil {
		return 0, err
	}
	var n int
	if err := s.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		return 0, mapError(op, err)
	}
	return n, nil
}

func (s *Storage) queryUsers(ctx context.Context, op, query string, args ...any) ([]*models.User, error) {
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}
	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError(op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	result := make([]*models.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

func expectAffected(op string, res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, models.ErrNotFound)
	}
	return nil
}
