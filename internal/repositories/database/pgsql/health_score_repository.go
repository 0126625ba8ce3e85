package pgsql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/exitdebt/exitdebt_backend/internal/apperrors"
	"github.com/exitdebt/exitdebt_backend/internal/core/domain"
	portsrepo "github.com/exitdebt/exitdebt_backend/internal/core/ports/repositories"
	"github.com/exitdebt/exitdebt_backend/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxHealthScoreRepository struct {
	BaseRepository
}

func newPgxHealthScoreRepository(db *pgxpool.Pool) portsrepo.HealthScoreRepository {
	return &PgxHealthScoreRepository{BaseRepository: BaseRepository{Pool: db}}
}

var _ portsrepo.HealthScoreRepository = (*PgxHealthScoreRepository)(nil)

func toModelHealthScore(d domain.HealthScoreRecord) (models.HealthScore, error) {
	flagged := d.Result.FlaggedAccounts
	if flagged == nil {
		flagged = []domain.FlaggedAccount{}
	}
	flaggedJSON, err := json.Marshal(flagged)
	if err != nil {
		return models.HealthScore{}, fmt.Errorf("failed to encode flagged accounts: %w", err)
	}
	return models.HealthScore{
		HealthScoreID:    d.ID,
		SubjectID:        d.SubjectID,
		Source:           string(d.Source),
		Score:            d.Result.Score,
		Category:         string(d.Result.Category),
		TotalOutstanding: d.Result.TotalOutstanding,
		TotalEMI:         d.Result.TotalEMI,
		AvgRate:          d.Result.AvgRate,
		DTIRatio:         d.Result.DTIRatio,
		SavingsEst:       d.Result.SavingsEst,
		MonthlyIncome:    d.MonthlyIncome,
		FlaggedAccounts:  flaggedJSON,
		CreatedAt:        d.CreatedAt,
	}, nil
}

func toDomainHealthScore(m models.HealthScore) (domain.HealthScoreRecord, error) {
	flagged := []domain.FlaggedAccount{}
	if len(m.FlaggedAccounts) > 0 {
		if err := json.Unmarshal(m.FlaggedAccounts, &flagged); err != nil {
			return domain.HealthScoreRecord{}, fmt.Errorf("failed to decode flagged accounts for %s: %w", m.HealthScoreID, err)
		}
	}
	return domain.HealthScoreRecord{
		ID:            m.HealthScoreID,
		SubjectID:     m.SubjectID,
		Source:        domain.DebtAccountSource(m.Source),
		MonthlyIncome: m.MonthlyIncome,
		Result: domain.HealthScoreResult{
			Score:            m.Score,
			Category:         domain.HealthCategory(m.Category),
			TotalOutstanding: m.TotalOutstanding,
			TotalEMI:         m.TotalEMI,
			AvgRate:          m.AvgRate,
			DTIRatio:         m.DTIRatio,
			SavingsEst:       m.SavingsEst,
			FlaggedAccounts:  flagged,
		},
		CreatedAt: m.CreatedAt,
	}, nil
}

func toModelDebtAccount(d domain.DebtAccount, subjectID, healthScoreID string) models.DebtAccount {
	return models.DebtAccount{
		AccountID:      uuid.NewString(),
		SubjectID:      subjectID,
		HealthScoreID:  healthScoreID,
		LenderName:     d.LenderName,
		AccountType:    string(d.AccountType),
		Outstanding:    d.Outstanding,
		InterestRate:   d.InterestRate,
		EMIAmount:      d.EMIAmount,
		Status:         string(d.Status),
		Utilization:    d.Utilization,
		PaymentHistory: d.PaymentHistory,
		DueDay:         d.DueDay,
	}
}

const healthScoreColumns = `health_score_id, subject_id, source, score, category, total_outstanding, total_emi,
	avg_rate, dti_ratio, savings_est, monthly_income, flagged_accounts, created_at`

// SaveHealthCheck writes the bureau report (if any), the account snapshot and
// the score in one transaction.
func (r *PgxHealthScoreRepository) SaveHealthCheck(ctx context.Context, snapshot portsrepo.HealthCheckSnapshot) error {
	record, err := toModelHealthScore(snapshot.Record)
	if err != nil {
		return err
	}

	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	if snapshot.Report != nil {
		report := models.BureauReport{
			ReportID:         snapshot.Report.ID,
			SubjectID:        snapshot.Report.SubjectID,
			CreditScore:      snapshot.Report.CreditScore,
			EncryptedRawData: snapshot.Report.EncryptedRawData,
			PulledAt:         snapshot.Report.PulledAt,
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO bureau_reports (report_id, subject_id, credit_score, encrypted_raw_data, pulled_at)
			VALUES ($1, $2, $3, $4, $5);`,
			report.ReportID, report.SubjectID, report.CreditScore, report.EncryptedRawData, report.PulledAt,
		)
		if err != nil {
			return apperrors.NewAppError(500, "failed to insert bureau report "+report.ReportID, err)
		}
	}

	_, err = tx.Exec(ctx, `INSERT INTO health_scores (`+healthScoreColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13);`,
		record.HealthScoreID,
		record.SubjectID,
		record.Source,
		record.Score,
		record.Category,
		record.TotalOutstanding,
		record.TotalEMI,
		record.AvgRate,
		record.DTIRatio,
		record.SavingsEst,
		record.MonthlyIncome,
		record.FlaggedAccounts,
		record.CreatedAt,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to insert health score "+record.HealthScoreID, err)
	}

	if len(snapshot.Accounts) > 0 {
		batch := &pgx.Batch{}
		accountQuery := `
			INSERT INTO debt_accounts (account_id, subject_id, health_score_id, lender_name, account_type, outstanding,
				interest_rate, emi_amount, status, utilization, payment_history, due_day)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12);
		`
		for _, acc := range snapshot.Accounts {
			m := toModelDebtAccount(acc, record.SubjectID, record.HealthScoreID)
			batch.Queue(accountQuery,
				m.AccountID,
				m.SubjectID,
				m.HealthScoreID,
				m.LenderName,
				m.AccountType,
				m.Outstanding,
				m.InterestRate,
				m.EMIAmount,
				m.Status,
				m.Utilization,
				m.PaymentHistory,
				m.DueDay,
			)
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return apperrors.NewAppError(500, "failed to insert debt accounts for health score "+record.HealthScoreID, err)
		}
	}

	return r.Commit(ctx, tx)
}

func (r *PgxHealthScoreRepository) FindHealthScoreByID(ctx context.Context, id string) (*domain.HealthScoreRecord, error) {
	query := `SELECT ` + healthScoreColumns + ` FROM health_scores WHERE health_score_id = $1;`
	m, err := scanHealthScore(r.Pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find health score %s: %w", id, err)
	}
	d, err := toDomainHealthScore(m)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *PgxHealthScoreRepository) FindLatestBureauReport(ctx context.Context, subjectID string) (*domain.StoredBureauReport, error) {
	query := `
		SELECT report_id, subject_id, credit_score, encrypted_raw_data, pulled_at
		FROM bureau_reports
		WHERE subject_id = $1
		ORDER BY pulled_at DESC
		LIMIT 1;
	`
	var m models.BureauReport
	err := r.Pool.QueryRow(ctx, query, subjectID).Scan(
		&m.ReportID,
		&m.SubjectID,
		&m.CreditScore,
		&m.EncryptedRawData,
		&m.PulledAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find bureau report for subject %s: %w", subjectID, err)
	}
	return &domain.StoredBureauReport{
		ID:               m.ReportID,
		SubjectID:        m.SubjectID,
		CreditScore:      m.CreditScore,
		EncryptedRawData: m.EncryptedRawData,
		PulledAt:         m.PulledAt,
	}, nil
}

// ListHealthScores pages newest first on (created_at, health_score_id).
func (r *PgxHealthScoreRepository) ListHealthScores(ctx context.Context, subjectID string, limit int, after *portsrepo.HistoryCursor) ([]domain.HealthScoreRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	var (
		rows pgx.Rows
		err  error
	)
	orderBy := `ORDER BY created_at DESC, health_score_id DESC`
	if after != nil {
		query := `SELECT ` + healthScoreColumns + ` FROM health_scores
			WHERE subject_id = $1 AND (created_at, health_score_id) < ($2, $3) ` + orderBy + ` LIMIT $4;`
		rows, err = r.Pool.Query(ctx, query, subjectID, after.CreatedAt, after.ID, limit)
	} else {
		query := `SELECT ` + healthScoreColumns + ` FROM health_scores
			WHERE subject_id = $1 ` + orderBy + ` LIMIT $2;`
		rows, err = r.Pool.Query(ctx, query, subjectID, limit)
	}
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query health scores for subject "+subjectID, err)
	}
	defer rows.Close()

	records := make([]domain.HealthScoreRecord, 0, limit)
	for rows.Next() {
		m, scanErr := scanHealthScore(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan health score row: %w", scanErr)
		}
		d, convErr := toDomainHealthScore(m)
		if convErr != nil {
			return nil, convErr
		}
		records = append(records, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating health score rows: %w", err)
	}
	return records, nil
}

func scanHealthScore(row pgx.Row) (models.HealthScore, error) {
	var m models.HealthScore
	err := row.Scan(
		&m.HealthScoreID,
		&m.SubjectID,
		&m.Source,
		&m.Score,
		&m.Category,
		&m.TotalOutstanding,
		&m.TotalEMI,
		&m.AvgRate,
		&m.DTIRatio,
		&m.SavingsEst,
		&m.MonthlyIncome,
		&m.FlaggedAccounts,
		&m.CreatedAt,
	)
	return m, err
}
