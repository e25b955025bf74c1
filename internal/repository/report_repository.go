package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/ndewijer/Crypto-Cost-Basis-Backend/internal/model"
)

// ReportRepository stores the cost basis reports of the most recent basis run per user.
type ReportRepository struct {
	db *sql.DB
}

// NewReportRepository creates a new ReportRepository with the provided database connection.
func NewReportRepository(db *sql.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// ReplaceReports swaps the stored reports of userID for reports in one database transaction.
// Reports without an ID get a new one.
func (r *ReportRepository) ReplaceReports(ctx context.Context, userID, method string, reports []*model.CostBasisReport) error {
	dbTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer dbTx.Rollback() //nolint:errcheck // no-op after Commit

	if _, err := dbTx.ExecContext(ctx, `DELETE FROM basis_report WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("failed to clear basis reports: %w", err)
	}

	stmt, err := dbTx.PrepareContext(ctx, `INSERT INTO basis_report (
			id, user_id, asset, secondary_asset, quantity, basis, proceeds, adjustment,
			date_purchased, date_sold, long_term, rounding, method, seq
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare basis report insert: %w", err)
	}
	defer stmt.Close()

	for i, rep := range reports {
		if rep.ID == "" {
			rep.ID = uuid.New().String()
		}
		rep.UserID = userID
		var secondary sql.NullString
		if rep.SecondaryAsset != "" {
			secondary = sql.NullString{String: rep.SecondaryAsset, Valid: true}
		}
		_, err := stmt.ExecContext(ctx,
			rep.ID, userID, rep.Asset, secondary,
			rep.Quantity, rep.Basis, rep.Proceeds, rep.Adjustment,
			formatTime(rep.DatePurchased), formatTime(rep.DateSold),
			rep.LongTerm, rep.Rounding.String(), method, i,
		)
		if err != nil {
			return fmt.Errorf("failed to insert basis report: %w", err)
		}
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("failed to commit basis reports: %w", err)
	}
	return nil
}

// GetReports retrieves the stored reports of userID in the order they were produced, together
// with the pool method of the run that produced them. The method is empty when nothing is stored.
func (r *ReportRepository) GetReports(ctx context.Context, userID string) ([]*model.CostBasisReport, string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT
			id, user_id, asset, secondary_asset, quantity, basis, proceeds, adjustment,
			date_purchased, date_sold, long_term, rounding, method
		FROM basis_report
		WHERE user_id = ?
		ORDER BY seq ASC`, userID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to query basis_report table: %w", err)
	}
	defer rows.Close()

	reports := []*model.CostBasisReport{}
	var method string
	for rows.Next() {
		var rep model.CostBasisReport
		var secondary sql.NullString
		var purchasedStr, soldStr, roundingStr string
		err := rows.Scan(
			&rep.ID,
			&rep.UserID,
			&rep.Asset,
			&secondary,
			&rep.Quantity,
			&rep.Basis,
			&rep.Proceeds,
			&rep.Adjustment,
			&purchasedStr,
			&soldStr,
			&rep.LongTerm,
			&roundingStr,
			&method,
		)
		if err != nil {
			return nil, "", fmt.Errorf("failed to scan basis_report table results: %w", err)
		}
		rep.SecondaryAsset = secondary.String
		if rep.DatePurchased, err = ParseTime(purchasedStr); err != nil {
			return nil, "", err
		}
		if rep.DateSold, err = ParseTime(soldStr); err != nil {
			return nil, "", err
		}
		if rep.Rounding, err = model.ParseRounding(roundingStr); err != nil {
			return nil, "", err
		}
		reports = append(reports, &rep)
	}
	if err := rows.Err(); err != nil {
		return nil, "", fmt.Errorf("error iterating basis_report table: %w", err)
	}
	return reports, method, nil
}
