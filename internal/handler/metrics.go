// Package handler 提供HTTP请求处理器
package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	appmetrics "github.com/xuanban/xuanban/internal/metrics"
	"github.com/xuanban/xuanban/internal/repository"
	"github.com/xuanban/xuanban/pkg/errors"
	"github.com/xuanban/xuanban/pkg/holiday"
	"github.com/xuanban/xuanban/pkg/logger"
	"github.com/xuanban/xuanban/pkg/stats"
)

// MetricsHandler 班表指标处理器
type MetricsHandler struct {
	analyzer     *stats.ScheduleAnalyzer
	holidays     holiday.Provider
	jurisdiction string
	lines        repository.BidLineRepositoryInterface // 可为 nil（纯计算模式）
}

// NewMetricsHandler 创建班表指标处理器
func NewMetricsHandler(provider holiday.Provider, jurisdiction string, lines repository.BidLineRepositoryInterface) *MetricsHandler {
	return &MetricsHandler{
		analyzer:     stats.NewScheduleAnalyzer(),
		holidays:     provider,
		jurisdiction: jurisdiction,
		lines:        lines,
	}
}

// ComputeRequest 指标计算请求
type ComputeRequest struct {
	Line         LineInput `json:"line"`
	Mode         string    `json:"mode,omitempty"` // cycle/period，默认 period
	Scale        bool      `json:"scale,omitempty"` // cycle 模式下是否按重复次数缩放
	Jurisdiction string    `json:"jurisdiction,omitempty"`
}

// ComputeResponse 指标计算响应
type ComputeResponse struct {
	LineID   string                 `json:"line_id"`
	LineName string                 `json:"line_name,omitempty"`
	Metrics  *stats.ScheduleMetrics `json:"metrics"`
	Duration string                 `json:"duration"`
}

// Compute 计算单条班表的结构指标
func (h *MetricsHandler) Compute(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持POST方法"))
		return
	}

	var req ComputeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "解析请求失败"))
		return
	}

	mode := req.Mode
	if mode == "" {
		mode = stats.ModePeriod
	}
	if mode != stats.ModeCycle && mode != stats.ModePeriod {
		respondError(w, errors.InvalidInput("mode", "必须为 cycle 或 period"))
		return
	}

	line, appErr := req.Line.toBidLine()
	if appErr != nil {
		respondError(w, appErr)
		return
	}

	jurisdiction := req.Jurisdiction
	if jurisdiction == "" {
		jurisdiction = h.jurisdiction
	}
	holidayDates := resolveHolidays(h.holidays, jurisdiction, line.Period)

	start := time.Now()
	var m *stats.ScheduleMetrics
	var err error
	if mode == stats.ModeCycle {
		m, err = h.analyzer.AnalyzeCycle(line.Pattern, line.Period, holidayDates)
		if err == nil && req.Scale {
			m.Scale(line.Period.RepeatCount)
		}
	} else {
		m, err = h.analyzer.AnalyzeBidPeriod(line.Pattern, line.Period, holidayDates)
	}
	if err != nil {
		appmetrics.RecordMetricsComputed(mode, false)
		respondError(w, asAppError(err))
		return
	}
	appmetrics.RecordMetricsComputed(mode, true)

	respondJSON(w, http.StatusOK, ComputeResponse{
		LineID:   line.ID.String(),
		LineName: line.Name,
		Metrics:  m,
		Duration: time.Since(start).String(),
	})
}

// PopulateRequest 批量指标填充请求
type PopulateRequest struct {
	Lines        []LineInput `json:"lines"`
	Jurisdiction string      `json:"jurisdiction,omitempty"`
	Persist      bool        `json:"persist,omitempty"` // 是否保存指标快照
}

// PopulateItem 单条填充结果
type PopulateItem struct {
	Index    int                    `json:"index"`
	LineID   string                 `json:"line_id,omitempty"`
	LineName string                 `json:"line_name,omitempty"`
	Metrics  *stats.ScheduleMetrics `json:"metrics,omitempty"`
	Error    string                 `json:"error,omitempty"`
}

// PopulateResponse 批量指标填充响应
type PopulateResponse struct {
	Items    []PopulateItem `json:"items"`
	Total    int            `json:"total"`
	Failed   int            `json:"failed"`
	Duration string         `json:"duration"`
}

// Populate 批量计算班表指标，单条失败不阻断整批
func (h *MetricsHandler) Populate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持POST方法"))
		return
	}

	var req PopulateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "解析请求失败"))
		return
	}

	if len(req.Lines) == 0 {
		respondError(w, errors.InvalidInput("lines", "班表列表不能为空"))
		return
	}

	if req.Persist && h.lines == nil {
		respondError(w, errors.New(errors.CodeInvalidInput, "当前部署未启用指标持久化"))
		return
	}

	jurisdiction := req.Jurisdiction
	if jurisdiction == "" {
		jurisdiction = h.jurisdiction
	}

	start := time.Now()
	items := make([]PopulateItem, len(req.Lines))
	failed := 0

	for i, in := range req.Lines {
		items[i].Index = i
		items[i].LineName = in.Name

		line, appErr := in.toBidLine()
		if appErr != nil {
			items[i].Error = appErr.Message
			failed++
			appmetrics.RecordMetricsComputed(stats.ModePeriod, false)
			continue
		}
		items[i].LineID = line.ID.String()

		holidayDates := resolveHolidays(h.holidays, jurisdiction, line.Period)
		m, err := h.analyzer.AnalyzeBidPeriod(line.Pattern, line.Period, holidayDates)
		if err != nil {
			items[i].Error = err.Error()
			failed++
			appmetrics.RecordMetricsComputed(stats.ModePeriod, false)
			continue
		}
		appmetrics.RecordMetricsComputed(stats.ModePeriod, true)
		items[i].Metrics = m

		if req.Persist {
			if err := h.lines.SaveMetricsSnapshot(r.Context(), line.ID, m); err != nil {
				logger.WithError(err).Str("line_id", line.ID.String()).Msg("保存指标快照失败")
				items[i].Error = "指标已计算但快照保存失败"
			}
		}
	}

	respondJSON(w, http.StatusOK, PopulateResponse{
		Items:    items,
		Total:    len(req.Lines),
		Failed:   failed,
		Duration: time.Since(start).String(),
	})
}

// SnapshotResponse 指标快照响应
type SnapshotResponse struct {
	LineID     string                 `json:"line_id"`
	Metrics    *stats.ScheduleMetrics `json:"metrics"`
	ComputedAt string                 `json:"computed_at"`
}

// Snapshot 读取已保存的指标快照
func (h *MetricsHandler) Snapshot(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持GET方法"))
		return
	}

	if h.lines == nil {
		respondError(w, errors.New(errors.CodeInvalidInput, "当前部署未启用指标持久化"))
		return
	}

	idStr := r.URL.Query().Get("line_id")
	lineID, err := uuid.Parse(idStr)
	if err != nil {
		respondError(w, errors.InvalidInput("line_id", "无效的班表ID格式"))
		return
	}

	m, computedAt, err := h.lines.GetMetricsSnapshot(r.Context(), lineID)
	if err != nil {
		respondError(w, asAppError(err))
		return
	}
	if m == nil {
		respondError(w, errors.NotFoundResource("指标快照", idStr))
		return
	}

	respondJSON(w, http.StatusOK, SnapshotResponse{
		LineID:     idStr,
		Metrics:    m,
		ComputedAt: computedAt.Format(time.RFC3339),
	})
}
