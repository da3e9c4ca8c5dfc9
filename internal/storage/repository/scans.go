package repository

import (
	"context"
	"fmt"

	"github.com/magabrotheeeer/gridnode/internal/models"
)

// CreateScanLog добавляет запись в журнал проверок и увеличивает счётчик
// проверок пользователя в реестре. Возвращает ID записи.
func (s *Storage) CreateScanLog(ctx context.Context, log *models.ScanLog) (int64, error) {
	const op = "storage.CreateScanLog"
	if err := checkCtx(ctx, op); err != nil {
		return 0, err
	}

	query := `WITH inserted AS (
			      INSERT INTO scan_logs (user_id, user_email, wallet_address, risk_level, score, created_at)
			      VALUES ($1, $2, $3, $4, $5, $6)
			      RETURNING id, user_id
			  ), bumped AS (
			      UPDATE users SET scans_used = scans_used + 1, updated_at = NOW()
			      WHERE id = (SELECT user_id FROM inserted)
			  )
			  SELECT id FROM inserted`
	var id int64
	if err := s.DB.QueryRowContext(ctx, query,
		log.UserID, log.UserEmail, log.WalletAddress, string(log.RiskLevel), log.Score,
		log.Timestamp).Scan(&id); err != nil {
		return 0, mapError(op, err)
	}
	return id, nil
}

// ListScanLogs возвращает последние limit записей журнала; limit <= 0 снимает ограничение.
func (s *Storage) ListScanLogs(ctx context.Context, limit int) ([]*models.ScanLog, error) {
	const op = "storage.ListScanLogs"
	query := `SELECT id, user_id, user_email, wallet_address, risk_level, score, created_at
			  FROM scan_logs
			  ORDER BY created_at DESC, id DESC`
	if limit > 0 {
		return s.queryScanLogs(ctx, op, query+` LIMIT $1`, limit)
	}
	return s.queryScanLogs(ctx, op, query)
}

// ListUserScanLogs возвращает последние limit проверок пользователя.
func (s *Storage) ListUserScanLogs(ctx context.Context, userID string, limit int) ([]*models.ScanLog, error) {
	const op = "storage.ListUserScanLogs"
	return s.queryScanLogs(ctx, op, `SELECT id, user_id, user_email, wallet_address, risk_level, score, created_at
			  FROM scan_logs
			  WHERE user_id = $1
			  ORDER BY created_at DESC, id DESC
			  LIMIT $2`, userID, limit)
}

// CountScanLogs возвращает общее число проверок.
func (s *Storage) CountScanLogs(ctx context.Context) (int, error) {
	const op = "storage.CountScanLogs"
	if err := checkCtx(ctx, op); err != nil {
		return 0, err
	}
	var n int
	if err := s.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM scan_logs`).Scan(&n); err != nil {
		return 0, mapError(op, err)
	}
	return n, nil
}

func (s *Storage) queryScanLogs(ctx context.Context, op, query string, args ...any) ([]*models.ScanLog, error) {
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

	result := make([]*models.ScanLog, 0)
	for rows.Next() {
		var l models.ScanLog
		if err := rows.Scan(&l.ID, &l.UserID, &l.UserEmail, &l.WalletAddress,
			&l.RiskLevel, &l.Score, &l.Timestamp); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
