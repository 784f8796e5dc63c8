package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/lib/pq"

	"github.com/iWorld-y/startup_pulse/app/startup_pulse/pkg/config"
	"github.com/iWorld-y/startup_pulse/app/startup_pulse/pkg/model"
)

// Storage Postgres 记录存储，同时承担报告持久化
type Storage struct {
	db *sql.DB
}

// NewStorage 建立数据库连接并初始化表结构
func NewStorage(cfg config.DBConfig) (*Storage, error) {
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &Storage{db: db}
	if err := s.initSchema(); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return s, nil
}

func (s *Storage) Close() error {
	return s.db.Close()
}

func (s *Storage) initSchema() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS companies (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			batch TEXT DEFAULT '',
			description TEXT DEFAULT '',
			achievement_override DOUBLE PRECISION
		)`,
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			company_id TEXT NOT NULL REFERENCES companies(id),
			session_date TEXT DEFAULT '',
			title TEXT DEFAULT '',
			summary TEXT DEFAULT '',
			follow_up TEXT DEFAULT '',
			session_types TEXT[] DEFAULT '{}',
			mentors TEXT[] DEFAULT '{}'
		)`,
		`CREATE TABLE IF NOT EXISTS expert_requests (
			id TEXT PRIMARY KEY,
			company_id TEXT NOT NULL REFERENCES companies(id),
			status TEXT DEFAULT '',
			urgency TEXT DEFAULT '',
			requested_at TIMESTAMP,
			summary TEXT DEFAULT '',
			problem TEXT DEFAULT '',
			desired_expertise TEXT DEFAULT '',
			support_types TEXT[] DEFAULT '{}'
		)`,
		`CREATE TABLE IF NOT EXISTS retrospectives (
			id TEXT PRIMARY KEY,
			company_id TEXT NOT NULL REFERENCES companies(id),
			review_date TEXT DEFAULT '',
			keep_note TEXT DEFAULT '',
			problem_note TEXT DEFAULT '',
			try_note TEXT DEFAULT ''
		)`,
		`CREATE TABLE IF NOT EXISTS kpi_items (
			id TEXT PRIMARY KEY,
			company_id TEXT NOT NULL REFERENCES companies(id),
			level TEXT DEFAULT '',
			name TEXT DEFAULT '',
			target TEXT DEFAULT '',
			achieved BOOLEAN,
			rate DOUBLE PRECISION,
			rate_text TEXT DEFAULT ''
		)`,
		`CREATE TABLE IF NOT EXISTS kpi_values (
			id SERIAL PRIMARY KEY,
			item_id TEXT NOT NULL,
			company_id TEXT NOT NULL REFERENCES companies(id),
			period TEXT DEFAULT '',
			current_value DOUBLE PRECISION DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS report_runs (
			id SERIAL PRIMARY KEY,
			company_id TEXT NOT NULL REFERENCES companies(id),
			narrative TEXT DEFAULT '',
			analyst_report JSONB,
			pulse_report JSONB,
			briefing JSONB,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
	}

	for _, q := range queries {
		if _, err := s.db.Exec(q); err != nil {
			return err
		}
	}
	return nil
}

// GetCompany 公司档案；不存在时返回 (nil, nil)
func (s *Storage) GetCompany(ctx context.Context, id string) (*model.CompanyProfile, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, batch, description, achievement_override FROM companies WHERE id = $1`, id)

	var c model.CompanyProfile
	var override sql.NullFloat64
	if err := row.Scan(&c.ID, &c.Name, &c.Batch, &c.Description, &override); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	if override.Valid {
		v := override.Float64
		c.AchievementOverride = &v
	}
	return &c, nil
}

// ListCompanyIDs 全部公司 ID，按 ID 排序
func (s *Storage) ListCompanyIDs(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM companies ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ListSessions 公司的全部会话记录
func (s *Storage) ListSessions(ctx context.Context, companyID string) ([]model.Session, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, session_date, title, summary, follow_up, session_types, mentors
		 FROM sessions WHERE company_id = $1`, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []model.Session
	for rows.Next() {
		var sess model.Session
		if err := rows.Scan(&sess.ID, &sess.Date, &sess.Title, &sess.Summary, &sess.FollowUp,
			pq.Array(&sess.Types), pq.Array(&sess.Mentors)); err != nil {
			return nil, err
		}
		sessions = append(sessions, sess)
	}
	return sessions, rows.Err()
}

// ListExpertRequests 公司的全部专家请求
func (s *Storage) ListExpertRequests(ctx context.Context, companyID string) ([]model.ExpertRequest, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, status, urgency, requested_at, summary, problem, desired_expertise, support_types
		 FROM expert_requests WHERE company_id = $1`, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var requests []model.ExpertRequest
	for rows.Next() {
		var req model.ExpertRequest
		var requestedAt sql.NullTime
		if err := rows.Scan(&req.ID, &req.Status, &req.Urgency, &requestedAt,
			&req.Summary, &req.Problem, &req.DesiredExpertise, pq.Array(&req.SupportTypes)); err != nil {
			return nil, err
		}
		if requestedAt.Valid {
			req.RequestedAt = requestedAt.Time
		}
		requests = append(requests, req)
	}
	return requests, rows.Err()
}

// ListRetrospectives 公司的全部复盘记录
func (s *Storage) ListRetrospectives(ctx context.Context, companyID string) ([]model.Retrospective, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, review_date, keep_note, problem_note, try_note
		 FROM retrospectives WHERE company_id = $1`, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var retros []model.Retrospective
	for rows.Next() {
		var r model.Retrospective
		if err := rows.Scan(&r.ID, &r.ReviewDate, &r.Keep, &r.Problem, &r.Try); err != nil {
			return nil, err
		}
		retros = append(retros, r)
	}
	return retros, rows.Err()
}

// ListKPIItems 公司的全部 KPI 目标项
func (s *Storage) ListKPIItems(ctx context.Context, companyID string) ([]model.KPIItem, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, level, name, target, achieved, rate, rate_text
		 FROM kpi_items WHERE company_id = $1`, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []model.KPIItem
	for rows.Next() {
		var item model.KPIItem
		var achieved sql.NullBool
		var rate sql.NullFloat64
		if err := rows.Scan(&item.ID, &item.Level, &item.Name, &item.Target,
			&achieved, &rate, &item.RateText); err != nil {
			return nil, err
		}
		if achieved.Valid {
			v := achieved.Bool
			item.Achieved = &v
		}
		if rate.Valid {
			v := rate.Float64
			item.Rate = &v
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// ListKPIValues 公司的全部 KPI 测量值
func (s *Storage) ListKPIValues(ctx context.Context, companyID string) ([]model.KPIValue, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT item_id, period, current_value FROM kpi_values WHERE company_id = $1`, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var values []model.KPIValue
	for rows.Next() {
		var v model.KPIValue
		if err := rows.Scan(&v.ItemID, &v.Period, &v.Value); err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, rows.Err()
}

// ListPriorReports 公司的历史分析记录（按时间倒序）
func (s *Storage) ListPriorReports(ctx context.Context, companyID string) ([]model.PriorReport, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT created_at, narrative FROM report_runs
		 WHERE company_id = $1 ORDER BY created_at DESC`, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var priors []model.PriorReport
	for rows.Next() {
		var p model.PriorReport
		if err := rows.Scan(&p.GeneratedAt, &p.Summary); err != nil {
			return nil, err
		}
		priors = append(priors, p)
	}
	return priors, rows.Err()
}

// SaveReportRun 持久化一次分析运行的两份报告与可选简报
func (s *Storage) SaveReportRun(ctx context.Context, companyID string,
	analyst *model.AnalystReport, pulse *model.PulseReport, briefing any) error {

	analystJSON, err := json.Marshal(analyst)
	if err != nil {
		return fmt.Errorf("marshal analyst report: %w", err)
	}
	pulseJSON, err := json.Marshal(pulse)
	if err != nil {
		return fmt.Errorf("marshal pulse report: %w", err)
	}

	var briefingJSON []byte
	if briefing != nil {
		briefingJSON, err = json.Marshal(briefing)
		if err != nil {
			return fmt.Errorf("marshal briefing: %w", err)
		}
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO report_runs (company_id, narrative, analyst_report, pulse_report, briefing)
		 VALUES ($1, $2, $3, $4, $5)`,
		companyID, analyst.Narrative, analystJSON, pulseJSON, nullableBytes(briefingJSON))
	return err
}

func nullableBytes(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return b
}
