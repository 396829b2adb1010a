package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"kesef/internal/core"
)

const txColumns = `id, user_id, type, description, amount_cents, category, date, is_outlier,
	latitude, longitude, address, place_name, created_at`

func (r *SQLiteRepository) InsertTransaction(ctx context.Context, tx core.Transaction) error {
	var lat, lon sql.NullFloat64
	var addr, place sql.NullString
	if tx.Location != nil {
		lat = sql.NullFloat64{Float64: tx.Location.Latitude, Valid: true}
		lon = sql.NullFloat64{Float64: tx.Location.Longitude, Valid: true}
		addr = sql.NullString{String: tx.Location.Address, Valid: true}
		place = sql.NullString{String: tx.Location.PlaceName, Valid: true}
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO transactions (`+txColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		tx.ID, tx.UserID, string(tx.Type), tx.Description, tx.Amount.Cents, tx.Category, tx.Date,
		boolToInt(tx.IsOutlier), lat, lon, addr, place, formatTime(tx.CreatedAt))
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction saved to SQLite",
		"transaction_id", tx.ID,
		"user_id", tx.UserID,
		"amount_cents", tx.Amount.Cents,
		"is_outlier", tx.IsOutlier)
	return nil
}

func (r *SQLiteRepository) GetTransaction(ctx context.Context, id string) (core.Transaction, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+txColumns+` FROM transactions WHERE id = ?`, id)
	tx, err := scanTransaction(row)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction %s: %w", id, err)
	}
	return tx, nil
}

func (r *SQLiteRepository) ListTransactions(ctx context.Context, userID string, limit int) ([]core.Transaction, error) {
	query := `SELECT ` + txColumns + ` FROM transactions WHERE user_id = ?
		ORDER BY date DESC, created_at DESC, id DESC`
	args := []any{userID}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	txs := make([]core.Transaction, 0)
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		txs = append(txs, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return txs, nil
}

func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("transaction %s: %w", id, core.ErrNotFound)
	}
	slog.InfoContext(ctx, "Transaction deleted from SQLite", "transaction_id", id)
	return nil
}

func scanTransaction(s scanner) (core.Transaction, error) {
	var (
		tx        core.Transaction
		txType    string
		isOutlier int
		lat, lon  sql.NullFloat64
		addr      sql.NullString
		place     sql.NullString
		createdAt string
	)
	err := s.Scan(&tx.ID, &tx.UserID, &txType, &tx.Description, &tx.Amount.Cents, &tx.Category, &tx.Date,
		&isOutlier, &lat, &lon, &addr, &place, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, core.ErrNotFound
	}
	if err != nil {
		return core.Transaction{}, err
	}
	tx.Type = core.TransactionType(txType)
	tx.IsOutlier = isOutlier != 0
	tx.CreatedAt = parseTime(createdAt)
	if lat.Valid && lon.Valid {
		tx.Location = &core.Location{
			Latitude:  lat.Float64,
			Longitude: lon.Float64,
			Address:   addr.String,
			PlaceName: place.String,
		}
	}
	return tx, nil
}
