package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/fundsim/Paper-Trading-Backend/internal/apperrors"
	"github.com/fundsim/Paper-Trading-Backend/internal/model"
)

// FundRepository provides data access methods for the fund and nav_price tables.
type FundRepository struct {
	db *sql.DB
}

// NewFundRepository creates a new FundRepository with the provided database connection.
func NewFundRepository(db *sql.DB) *FundRepository {
	return &FundRepository{db: db}
}

// GetAllFunds retrieves the fund catalogue ordered by scheme code.
func (r *FundRepository) GetAllFunds(ctx context.Context) ([]model.Fund, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT scheme_code, name, fund_house, category
		FROM fund
		ORDER BY scheme_code ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query fund table: %w", err)
	}
	defer rows.Close()

	funds := []model.Fund{}
	for rows.Next() {
		var f model.Fund
		var fundHouse, category sql.NullString
		if err := rows.Scan(&f.SchemeCode, &f.Name, &fundHouse, &category); err != nil {
			return nil, fmt.Errorf("failed to scan fund table results: %w", err)
		}
		f.FundHouse = fundHouse.String
		f.Category = category.String
		funds = append(funds, f)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating fund table: %w", err)
	}
	return funds, nil
}

// GetFund retrieves one fund by scheme code.
func (r *FundRepository) GetFund(ctx context.Context, schemeCode string) (model.Fund, error) {
	var f model.Fund
	var fundHouse, category sql.NullString

	err := r.db.QueryRowContext(ctx, `
		SELECT scheme_code, name, fund_house, category
		FROM fund
		WHERE scheme_code = ?
	`, schemeCode).Scan(&f.SchemeCode, &f.Name, &fundHouse, &category)
	if err == sql.ErrNoRows {
		return model.Fund{}, apperrors.ErrFundNotFound
	}
	if err != nil {
		return model.Fund{}, fmt.Errorf("failed to query fund table: %w", err)
	}

	f.FundHouse = fundHouse.String
	f.Category = category.String
	return f, nil
}

// UpsertFund inserts or refreshes a catalogue entry.
func (r *FundRepository) UpsertFund(ctx context.Context, f model.Fund) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO fund (scheme_code, name, fund_house, category)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(scheme_code) DO UPDATE SET
			name = excluded.name,
			fund_house = excluded.fund_house,
			category = excluded.category
	`, f.SchemeCode, f.Name, f.FundHouse, f.Category)
	if err != nil {
		return fmt.Errorf("failed to upsert fund: %w", err)
	}
	return nil
}

// GetLatestNav retrieves the most recent NAV for a scheme.
func (r *FundRepository) GetLatestNav(ctx context.Context, schemeCode string) (model.NavPrice, error) {
	var n model.NavPrice

	err := r.db.QueryRowContext(ctx, `
		SELECT id, scheme_code, date, nav
		FROM nav_price
		WHERE scheme_code = ?
		ORDER BY date DESC
		LIMIT 1
	`, schemeCode).Scan(&n.ID, &n.SchemeCode, &n.Date, &n.Nav)
	if err == sql.ErrNoRows {
		return model.NavPrice{}, apperrors.ErrNavNotFound
	}
	if err != nil {
		return model.NavPrice{}, fmt.Errorf("failed to query nav_price table: %w", err)
	}
	return n, nil
}

// GetNavHistory retrieves NAVs for a scheme within an inclusive date range,
// oldest first.
func (r *FundRepository) GetNavHistory(ctx context.Context, schemeCode, startDate, endDate string) ([]model.NavPrice, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, scheme_code, date, nav
		FROM nav_price
		WHERE scheme_code = ? AND date >= ? AND date <= ?
		ORDER BY date ASC
	`, schemeCode, startDate, endDate)
	if err != nil {
		return nil, fmt.Errorf("failed to query nav_price table: %w", err)
	}
	defer rows.Close()

	prices := []model.NavPrice{}
	for rows.Next() {
		var n model.NavPrice
		if err := rows.Scan(&n.ID, &n.SchemeCode, &n.Date, &n.Nav); err != nil {
			return nil, fmt.Errorf("failed to scan nav_price table results: %w", err)
		}
		prices = append(prices, n)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating nav_price table: %w", err)
	}
	return prices, nil
}

// UpsertNav inserts or refreshes the NAV for one scheme and date.
func (r *FundRepository) UpsertNav(ctx context.Context, schemeCode, date string, nav float64) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO nav_price (id, scheme_code, date, nav)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(scheme_code, date) DO UPDATE SET nav = excluded.nav
	`, uuid.New().String(), schemeCode, date, nav)
	if err != nil {
		return fmt.Errorf("failed to upsert nav price: %w", err)
	}
	return nil
}
