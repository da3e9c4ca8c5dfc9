package repository

import (
	"context"
	"fmt"

	"github.com/magabrotheeeer/gridnode/internal/models"
)

const depositColumns = `payment_id, order_id, user_id, user_email, plan_id, network, pay_address,
	pay_amount, pay_currency, qr_code, status, created_at, updated_at`

func scanDeposit(row rowScanner) (*models.Deposit, error) {
	var d models.Deposit
	if err := row.Scan(&d.PaymentID, &d.OrderID, &d.UserID, &d.UserEmail, &d.PlanID,
		&d.Network, &d.PayAddress, &d.PayAmount, &d.PayCurrency, &d.QRCode, &d.Status,
		&d.CreatedAt, &d.UpdatedAt); err != nil {
		return nil, err
	}
	return &d, nil
}

// CreateDeposit сохраняет выставленный счёт. Повтор payment_id или order_id
// возвращает models.ErrDuplicate.
func (s *Storage) CreateDeposit(ctx context.Context, d *models.Deposit) error {
	const op = "storage.CreateDeposit"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}

	query := `INSERT INTO deposits (payment_id, order_id, user_id, user_email, plan_id, network,
			      pay_address, pay_amount, pay_currency, qr_code, status, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $12)`
	_, err := s.DB.ExecContext(ctx, query,
		d.PaymentID, d.OrderID, d.UserID, d.UserEmail, string(d.PlanID), d.Network,
		d.PayAddress, d.PayAmount, d.PayCurrency, d.QRCode, d.Status, d.CreatedAt)
	if err != nil {
		return mapError(op, err)
	}
	return nil
}

// GetDeposit возвращает счёт по payment_id.
func (s *Storage) GetDeposit(ctx context.Context, paymentID string) (*models.Deposit, error) {
	const op = "storage.GetDeposit"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	d, err := scanDeposit(s.DB.QueryRowContext(ctx,
		`SELECT `+depositColumns+` FROM deposits WHERE payment_id = $1`, paymentID))
	if err != nil {
		return nil, mapError(op, err)
	}
	return d, nil
}

// UpdateDepositStatus меняет статус счёта, если он ещё в статусе from.
// Возвращает false, если статус уже был изменён другим запросом.
func (s *Storage) UpdateDepositStatus(ctx context.Context, paymentID, from, to string) (bool, error) {
	const op = "storage.UpdateDepositStatus"
	if err := checkCtx(ctx, op); err != nil {
		return false, err
	}

	res, err := s.DB.ExecContext(ctx, `UPDATE deposits
			  SET status = $3, updated_at = NOW()
			  WHERE payment_id = $1 AND status = $2`, paymentID, from, to)
	if err != nil {
		return false, mapError(op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return n == 1, nil
}

// ListDeposits возвращает все счета, новые первыми.
func (s *Storage) ListDeposits(ctx context.Context) ([]*models.Deposit, error) {
	const op = "storage.ListDeposits"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}
	rows, err := s.DB.QueryContext(ctx, `SELECT `+depositColumns+` FROM deposits ORDER BY created_at DESC`)
	if err != nil {
		return nil, mapError(op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	result := make([]*models.Deposit, 0)
	for rows.Next() {
		d, err := scanDeposit(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
