package data

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"

	"github.com/iWorld-y/startup_pulse/app/display/internal/domain"
	"github.com/iWorld-y/startup_pulse/app/display/internal/repo"
	"github.com/iWorld-y/startup_pulse/app/startup_pulse/pkg/briefing"
	"github.com/iWorld-y/startup_pulse/app/startup_pulse/pkg/model"
)

type signalRepo struct {
	data *Data
	log  *log.Helper
}

func NewSignalRepo(data *Data, logger log.Logger) repo.SignalRepo {
	return &signalRepo{
		data: data,
		log:  log.NewHelper(logger),
	}
}

// ListSignals 每家公司只取最近一次分析，按分析时间倒序分页
func (r *signalRepo) ListSignals(ctx context.Context, page, pageSize int) ([]*domain.SignalSummary, int, error) {
	offset := (page - 1) * pageSize

	rows, err := r.data.db.QueryContext(ctx, `
		SELECT DISTINCT ON (rr.company_id)
			rr.company_id, c.name, c.batch, rr.pulse_report, rr.created_at
		FROM report_runs rr
		JOIN companies c ON c.id = rr.company_id
		ORDER BY rr.company_id, rr.created_at DESC
		LIMIT $1 OFFSET $2`, pageSize, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var summaries []*domain.SignalSummary
	for rows.Next() {
		var (
			s         domain.SignalSummary
			pulseJSON []byte
			createdAt sql.NullTime
		)
		if err := rows.Scan(&s.CompanyID, &s.CompanyName, &s.Batch, &pulseJSON, &createdAt); err != nil {
			return nil, 0, err
		}
		if createdAt.Valid {
			s.CreatedAt = createdAt.Time.Format("2006-01-02 15:04:05")
		}
		if len(pulseJSON) > 0 {
			var pr model.PulseReport
			if err := json.Unmarshal(pulseJSON, &pr); err != nil {
				r.log.Warnf("failed to decode pulse report for %s: %v", s.CompanyID, err)
			} else {
				s.DensityScore = pr.Cadence.DensityScore
				s.DensityLabel = pr.Cadence.DensityLabel
				s.Trend = pr.Cadence.Trend
				s.SignalCount = len(pr.HealthSignals)
			}
		}
		summaries = append(summaries, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	var total int
	if err := r.data.db.QueryRowContext(ctx,
		`SELECT COUNT(DISTINCT company_id) FROM report_runs`).Scan(&total); err != nil {
		return nil, 0, err
	}

	return summaries, total, nil
}

// GetLatestByCompany 取出最近一次分析的两份报告与简报
func (r *signalRepo) GetLatestByCompany(ctx context.Context, companyID string) (*domain.SignalDetail, error) {
	var (
		d            domain.SignalDetail
		analystJSON  []byte
		pulseJSON    []byte
		briefingJSON []byte
		createdAt    sql.NullTime
	)
	err := r.data.db.QueryRowContext(ctx, `
		SELECT rr.company_id, c.name, c.batch,
			rr.analyst_report, rr.pulse_report, rr.briefing, rr.created_at
		FROM report_runs rr
		JOIN companies c ON c.id = rr.company_id
		WHERE rr.company_id = $1
		ORDER BY rr.created_at DESC
		LIMIT 1`, companyID).
		Scan(&d.CompanyID, &d.CompanyName, &d.Batch, &analystJSON, &pulseJSON, &briefingJSON, &createdAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NotFound("SIGNAL_NOT_FOUND", "no analysis found for company")
		}
		return nil, err
	}
	if createdAt.Valid {
		d.CreatedAt = createdAt.Time.Format("2006-01-02 15:04:05")
	}

	if len(analystJSON) > 0 {
		var ar model.AnalystReport
		if err := json.Unmarshal(analystJSON, &ar); err != nil {
			return nil, err
		}
		d.Analyst = &ar
	}
	if len(pulseJSON) > 0 {
		var pr model.PulseReport
		if err := json.Unmarshal(pulseJSON, &pr); err != nil {
			return nil, err
		}
		d.Pulse = &pr
	}
	if len(briefingJSON) > 0 {
		var br briefing.Briefing
		if err := json.Unmarshal(briefingJSON, &br); err != nil {
			r.log.Warnf("failed to decode briefing for %s: %v", companyID, err)
		} else {
			d.Briefing = &br
		}
	}

	return &d, nil
}
