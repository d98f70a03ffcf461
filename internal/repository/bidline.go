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
	"github.com/xuanban/xuanban/pkg/model"
	"github.com/xuanban/xuanban/pkg/stats"
)

// BidLineRepositoryInterface 竞标班表仓储接口
type BidLineRepositoryInterface interface {
	Create(ctx context.Context, line *model.BidLine) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.BidLine, error)
	Update(ctx context.Context, line *model.BidLine) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filter ListFilter) ([]*model.BidLine, int, error)
	ListByOrg(ctx context.Context, orgID uuid.UUID) ([]*model.BidLine, error)

	// 指标快照：批量填充结果的物化存储
	SaveMetricsSnapshot(ctx context.Context, lineID uuid.UUID, metrics *stats.ScheduleMetrics) error
	GetMetricsSnapshot(ctx context.Context, lineID uuid.UUID) (*stats.ScheduleMetrics, time.Time, error)
}

// BidLineRepository 竞标班表仓储实现
type BidLineRepository struct {
	db DB
}

// NewBidLineRepository 创建竞标班表仓储
func NewBidLineRepository(db DB) *BidLineRepository {
	return &BidLineRepository{db: db}
}

// Create 创建竞标班表
func (r *BidLineRepository) Create(ctx context.Context, line *model.BidLine) error {
	if line.ID == uuid.Nil {
		line.ID = uuid.New()
	}
	now := time.Now()
	line.CreatedAt = now
	line.UpdatedAt = now

	patternJSON, err := json.Marshal(line.Pattern)
	if err != nil {
		return fmt.Errorf("序列化周期模式失败: %w", err)
	}

	query := `
		INSERT INTO bid_lines (
			id, org_id, group_code, name, pattern,
			start_date, cycle_length, repeat_count, is_active,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err = r.db.ExecContext(ctx, query,
		line.ID, line.OrgID, line.GroupCode, line.Name, patternJSON,
		line.Period.StartDate, line.Period.CycleLength, line.Period.RepeatCount, line.IsActive,
		line.CreatedAt, line.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("创建竞标班表失败: %w", err)
	}

	return nil
}

// GetByID 根据ID获取竞标班表
func (r *BidLineRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.BidLine, error) {
	query := `
		SELECT id, org_id, group_code, name, pattern,
			start_date, cycle_length, repeat_count, is_active,
			created_at, updated_at
		FROM bid_lines
		WHERE id = $1
	`

	return r.scanBidLine(r.db.QueryRowContext(ctx, query, id))
}

// Update 更新竞标班表
func (r *BidLineRepository) Update(ctx context.Context, line *model.BidLine) error {
	line.UpdatedAt = time.Now()

	patternJSON, err := json.Marshal(line.Pattern)
	if err != nil {
		return fmt.Errorf("序列化周期模式失败: %w", err)
	}

	query := `
		UPDATE bid_lines SET
			group_code = $2, name = $3, pattern = $4,
			start_date = $5, cycle_length = $6, repeat_count = $7,
			is_active = $8, updated_at = $9
		WHERE id = $1
	`

	_, err = r.db.ExecContext(ctx, query,
		line.ID, line.GroupCode, line.Name, patternJSON,
		line.Period.StartDate, line.Period.CycleLength, line.Period.RepeatCount,
		line.IsActive, line.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("更新竞标班表失败: %w", err)
	}

	return nil
}

// Delete 删除竞标班表
func (r *BidLineRepository) Delete(ctx context.Context, id uuid.UUID) error {
	// 先删除指标快照
	if _, err := r.db.ExecContext(ctx, "DELETE FROM bid_line_metrics WHERE line_id = $1", id); err != nil {
		return fmt.Errorf("删除指标快照失败: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, "DELETE FROM bid_lines WHERE id = $1", id); err != nil {
		return fmt.Errorf("删除竞标班表失败: %w", err)
	}

	return nil
}

// List 列出竞标班表
func (r *BidLineRepository) List(ctx context.Context, filter ListFilter) ([]*model.BidLine, int, error) {
	var conditions []string
	var args []interface{}
	argNum := 1

	if filter.OrgID != nil {
		conditions = append(conditions, fmt.Sprintf("org_id = $%d", argNum))
		args = append(args, *filter.OrgID)
		argNum++
	}

	if filter.GroupCode != "" {
		conditions = append(conditions, fmt.Sprintf("group_code = $%d", argNum))
		args = append(args, filter.GroupCode)
		argNum++
	}

	if filter.Status == "active" {
		conditions = append(conditions, "is_active = true")
	} else if filter.Status == "inactive" {
		conditions = append(conditions, "is_active = false")
	}

	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("name ILIKE $%d", argNum))
		args = append(args, "%"+filter.Search+"%")
		argNum++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	// 计数
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM bid_lines %s", whereClause)
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("统计竞标班表数量失败: %w", err)
	}

	// 查询
	query := fmt.Sprintf(`
		SELECT id, org_id, group_code, name, pattern,
			start_date, cycle_length, repeat_count, is_active,
			created_at, updated_at
		FROM bid_lines %s
		ORDER BY %s %s
		LIMIT $%d OFFSET $%d
	`, whereClause, filter.OrderBy, filter.OrderDir, argNum, argNum+1)

	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("查询竞标班表列表失败: %w", err)
	}
	defer rows.Close()

	var lines []*model.BidLine
	for rows.Next() {
		line, err := r.scanBidLineRow(rows)
		if err != nil {
			return nil, 0, err
		}
		lines = append(lines, line)
	}

	return lines, total, nil
}

// ListByOrg 列出组织下所有激活的竞标班表
func (r *BidLineRepository) ListByOrg(ctx context.Context, orgID uuid.UUID) ([]*model.BidLine, error) {
	query := `
		SELECT id, org_id, group_code, name, pattern,
			start_date, cycle_length, repeat_count, is_active,
			created_at, updated_at
		FROM bid_lines
		WHERE org_id = $1 AND is_active = true
		ORDER BY group_code, name
	`

	rows, err := r.db.QueryContext(ctx, query, orgID)
	if err != nil {
		return nil, fmt.Errorf("查询组织竞标班表失败: %w", err)
	}
	defer rows.Close()

	var lines []*model.BidLine
	for rows.Next() {
		line, err := r.scanBidLineRow(rows)
		if err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}

	return lines, nil
}

// SaveMetricsSnapshot 保存指标快照（存在则覆盖）
func (r *BidLineRepository) SaveMetricsSnapshot(ctx context.Context, lineID uuid.UUID, metrics *stats.ScheduleMetrics) error {
	metricsJSON, err := json.Marshal(metrics)
	if err != nil {
		return fmt.Errorf("序列化指标失败: %w", err)
	}

	query := `
		INSERT INTO bid_line_metrics (line_id, metrics, computed_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (line_id) DO UPDATE SET
			metrics = EXCLUDED.metrics,
			computed_at = EXCLUDED.computed_at
	`

	if _, err := r.db.ExecContext(ctx, query, lineID, metricsJSON, time.Now()); err != nil {
		return fmt.Errorf("保存指标快照失败: %w", err)
	}

	return nil
}

// GetMetricsSnapshot 获取指标快照
func (r *BidLineRepository) GetMetricsSnapshot(ctx context.Context, lineID uuid.UUID) (*stats.ScheduleMetrics, time.Time, error) {
	query := `SELECT metrics, computed_at FROM bid_line_metrics WHERE line_id = $1`

	var metricsJSON []byte
	var computedAt time.Time
	err := r.db.QueryRowContext(ctx, query, lineID).Scan(&metricsJSON, &computedAt)
	if err == sql.ErrNoRows {
		return nil, time.Time{}, nil
	}
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("查询指标快照失败: %w", err)
	}

	metrics := &stats.ScheduleMetrics{}
	if err := json.Unmarshal(metricsJSON, metrics); err != nil {
		return nil, time.Time{}, fmt.Errorf("反序列化指标失败: %w", err)
	}

	return metrics, computedAt, nil
}

// scanBidLine 扫描单行竞标班表
func (r *BidLineRepository) scanBidLine(row *sql.Row) (*model.BidLine, error) {
	line := &model.BidLine{}
	var patternJSON []byte

	err := row.Scan(
		&line.ID, &line.OrgID, &line.GroupCode, &line.Name, &patternJSON,
		&line.Period.StartDate, &line.Period.CycleLength, &line.Period.RepeatCount, &line.IsActive,
		&line.CreatedAt, &line.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("扫描竞标班表失败: %w", err)
	}

	if err := json.Unmarshal(patternJSON, &line.Pattern); err != nil {
		return nil, fmt.Errorf("反序列化周期模式失败: %w", err)
	}

	return line, nil
}

// scanBidLineRow 从多行结果扫描
func (r *BidLineRepository) scanBidLineRow(rows *sql.Rows) (*model.BidLine, error) {
	line := &model.BidLine{}
	var patternJSON []byte

	err := rows.Scan(
		&line.ID, &line.OrgID, &line.GroupCode, &line.Name, &patternJSON,
		&line.Period.StartDate, &line.Period.CycleLength, &line.Period.RepeatCount, &line.IsActive,
		&line.CreatedAt, &line.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("扫描竞标班表失败: %w", err)
	}

	if err := json.Unmarshal(patternJSON, &line.Pattern); err != nil {
		return nil, fmt.Errorf("反序列化周期模式失败: %w", err)
	}

	return line, nil
}
