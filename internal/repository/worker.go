// Package repository 提供数据访问层
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/xuanban/xuanban/pkg/model"
)

// WorkerRepositoryInterface 员工仓储接口
type WorkerRepositoryInterface interface {
	Create(ctx context.Context, worker *model.Worker) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Worker, error)
	Update(ctx context.Context, worker *model.Worker) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filter ListFilter) ([]*model.Worker, int, error)

	// 指定休息日请求
	SaveDayOffRequest(ctx context.Context, req *model.DayOffRequest) error
	GetDayOffRequest(ctx context.Context, workerID uuid.UUID) (*model.DayOffRequest, error)
}

// WorkerRepository 员工仓储实现
type WorkerRepository struct {
	db DB
}

// NewWorkerRepository 创建员工仓储
func NewWorkerRepository(db DB) *WorkerRepository {
	return &WorkerRepository{db: db}
}

// Create 创建员工
func (r *WorkerRepository) Create(ctx context.Context, worker *model.Worker) error {
	if worker.ID == uuid.Nil {
		worker.ID = uuid.New()
	}
	now := time.Now()
	worker.CreatedAt = now
	worker.UpdatedAt = now

	criteriaJSON, err := json.Marshal(worker.Criteria)
	if err != nil {
		return fmt.Errorf("序列化偏好准则失败: %w", err)
	}

	query := `
		INSERT INTO workers (
			id, org_id, name, code, email, status, hire_date,
			criteria, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err = r.db.ExecContext(ctx, query,
		worker.ID, worker.OrgID, worker.Name, worker.Code, worker.Email,
		worker.Status, worker.HireDate, criteriaJSON,
		worker.CreatedAt, worker.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("创建员工失败: %w", err)
	}

	return nil
}

// GetByID 根据ID获取员工
func (r *WorkerRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Worker, error) {
	query := `
		SELECT id, org_id, name, code, email, status, hire_date,
			criteria, created_at, updated_at
		FROM workers
		WHERE id = $1
	`

	return r.scanWorker(r.db.QueryRowContext(ctx, query, id))
}

// Update 更新员工
func (r *WorkerRepository) Update(ctx context.Context, worker *model.Worker) error {
	worker.UpdatedAt = time.Now()

	criteriaJSON, err := json.Marshal(worker.Criteria)
	if err != nil {
		return fmt.Errorf("序列化偏好准则失败: %w", err)
	}

	query := `
		UPDATE workers SET
			name = $2, code = $3, email = $4, status = $5, hire_date = $6,
			criteria = $7, updated_at = $8
		WHERE id = $1
	`

	_, err = r.db.ExecContext(ctx, query,
		worker.ID, worker.Name, worker.Code, worker.Email, worker.Status,
		worker.HireDate, criteriaJSON, worker.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("更新员工失败: %w", err)
	}

	return nil
}

// Delete 删除员工
func (r *WorkerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM day_off_requests WHERE worker_id = $1", id); err != nil {
		return fmt.Errorf("删除休息日请求失败: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, "DELETE FROM workers WHERE id = $1", id); err != nil {
		return fmt.Errorf("删除员工失败: %w", err)
	}

	return nil
}

// List 列出员工
func (r *WorkerRepository) List(ctx context.Context, filter ListFilter) ([]*model.Worker, int, error) {
	var conditions []string
	var args []interface{}
	argNum := 1

	if filter.OrgID != nil {
		conditions = append(conditions, fmt.Sprintf("org_id = $%d", argNum))
		args = append(args, *filter.OrgID)
		argNum++
	}

	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argNum))
		args = append(args, filter.Status)
		argNum++
	}

	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(name ILIKE $%d OR code ILIKE $%d)", argNum, argNum))
		args = append(args, "%"+filter.Search+"%")
		argNum++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM workers %s", whereClause)
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("统计员工数量失败: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT id, org_id, name, code, email, status, hire_date,
			criteria, created_at, updated_at
		FROM workers %s
		ORDER BY %s %s
		LIMIT $%d OFFSET $%d
	`, whereClause, filter.OrderBy, filter.OrderDir, argNum, argNum+1)

	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("查询员工列表失败: %w", err)
	}
	defer rows.Close()

	var workers []*model.Worker
	for rows.Next() {
		w, err := r.scanWorkerRow(rows)
		if err != nil {
			return nil, 0, err
		}
		workers = append(workers, w)
	}

	return workers, total, nil
}

// SaveDayOffRequest 保存休息日请求（每员工一条，存在则覆盖）
func (r *WorkerRepository) SaveDayOffRequest(ctx context.Context, req *model.DayOffRequest) error {
	if req.ID == uuid.Nil {
		req.ID = uuid.New()
	}
	now := time.Now()
	req.CreatedAt = now
	req.UpdatedAt = now

	query := `
		INSERT INTO day_off_requests (id, worker_id, dates, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (worker_id) DO UPDATE SET
			dates = EXCLUDED.dates,
			updated_at = EXCLUDED.updated_at
	`

	_, err := r.db.ExecContext(ctx, query,
		req.ID, req.WorkerID, pq.Array(req.Dates), req.CreatedAt, req.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("保存休息日请求失败: %w", err)
	}

	return nil
}

// GetDayOffRequest 获取员工的休息日请求
func (r *WorkerRepository) GetDayOffRequest(ctx context.Context, workerID uuid.UUID) (*model.DayOffRequest, error) {
	query := `
		SELECT id, worker_id, dates, created_at, updated_at
		FROM day_off_requests
		WHERE worker_id = $1
	`

	req := &model.DayOffRequest{}
	err := r.db.QueryRowContext(ctx, query, workerID).Scan(
		&req.ID, &req.WorkerID, pq.Array(&req.Dates), &req.CreatedAt, &req.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("查询休息日请求失败: %w", err)
	}

	return req, nil
}

// scanWorker 扫描单行员工
func (r *WorkerRepository) scanWorker(row *sql.Row) (*model.Worker, error) {
	w := &model.Worker{}
	var criteriaJSON []byte

	err := row.Scan(
		&w.ID, &w.OrgID, &w.Name, &w.Code, &w.Email, &w.Status, &w.HireDate,
		&criteriaJSON, &w.CreatedAt, &w.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("扫描员工失败: %w", err)
	}

	if len(criteriaJSON) > 0 && string(criteriaJSON) != "null" {
		w.Criteria = &model.PreferenceCriteria{}
		if err := json.Unmarshal(criteriaJSON, w.Criteria); err != nil {
			return nil, fmt.Errorf("反序列化偏好准则失败: %w", err)
		}
	}

	return w, nil
}

// scanWorkerRow 从多行结果扫描
func (r *WorkerRepository) scanWorkerRow(rows *sql.Rows) (*model.Worker, error) {
	w := &model.Worker{}
	var criteriaJSON []byte

	err := rows.Scan(
		&w.ID, &w.OrgID, &w.Name, &w.Code, &w.Email, &w.Status, &w.HireDate,
		&criteriaJSON, &w.CreatedAt, &w.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("扫描员工失败: %w", err)
	}

	if len(criteriaJSON) > 0 && string(criteriaJSON) != "null" {
		w.Criteria = &model.PreferenceCriteria{}
		if err := json.Unmarshal(criteriaJSON, w.Criteria); err != nil {
			return nil, fmt.Errorf("反序列化偏好准则失败: %w", err)
		}
	}

	return w, nil
}
