// Package handler 提供HTTP请求处理器
package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/xuanban/xuanban/internal/metrics"
	"github.com/xuanban/xuanban/internal/repository"
	"github.com/xuanban/xuanban/pkg/errors"
	"github.com/xuanban/xuanban/pkg/holiday"
	"github.com/xuanban/xuanban/pkg/model"
	"github.com/xuanban/xuanban/pkg/scorer"
)

// ScoreHandler 偏好评分处理器
// workerRepo 可为 nil（纯计算部署），此时按员工ID加载保存偏好的路径不可用
type ScoreHandler struct {
	scorer       *scorer.Scorer
	batch        *scorer.ParallelScorer
	holidays     holiday.Provider
	jurisdiction string
	workerRepo   repository.WorkerRepositoryInterface
}

// NewScoreHandler 创建偏好评分处理器
func NewScoreHandler(provider holiday.Provider, jurisdiction string, batchWorkers int, workerRepo repository.WorkerRepositoryInterface) *ScoreHandler {
	return &ScoreHandler{
		scorer:       scorer.NewScorer(),
		batch:        scorer.NewParallelScorer(batchWorkers),
		holidays:     provider,
		jurisdiction: jurisdiction,
		workerRepo:   workerRepo,
	}
}

// SingleScoreRequest 单表评分请求
// criteria 为空且带 worker_id 时使用该员工保存的偏好准则
type SingleScoreRequest struct {
	Line         LineInput        `json:"line"`
	Catalog      []ShiftCodeInput `json:"catalog,omitempty"`
	Criteria     *CriteriaInput   `json:"criteria,omitempty"`
	WorkerID     string           `json:"worker_id,omitempty"`
	Jurisdiction string           `json:"jurisdiction,omitempty"`
}

// SingleScoreResponse 单表评分响应
type SingleScoreResponse struct {
	Result   *scorer.MatchResult `json:"result"`
	Duration string              `json:"duration"`
}

// ScoreSingle 对单条班表评分
func (h *ScoreHandler) ScoreSingle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持POST方法"))
		return
	}

	var req SingleScoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "解析请求失败"))
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

	criteria := req.Criteria.toCriteria()
	if req.Criteria == nil && req.WorkerID != "" {
		loaded, appErr := h.loadWorkerCriteria(r, req.WorkerID)
		if appErr != nil {
			respondError(w, appErr)
			return
		}
		criteria = loaded
	}

	start := time.Now()
	holidayDates := resolveHolidays(h.holidays, jurisdiction, line.Period)

	result, err := h.scorer.Score(line, toCatalog(req.Catalog), criteria, holidayDates)
	if err != nil {
		metrics.RecordLineScored(false, true)
		respondError(w, asAppError(err))
		return
	}
	metrics.RecordLineScored(result.Excluded, false)

	respondJSON(w, http.StatusOK, SingleScoreResponse{
		Result:   result,
		Duration: time.Since(start).String(),
	})
}

// loadWorkerCriteria 读取员工保存的偏好准则
func (h *ScoreHandler) loadWorkerCriteria(r *http.Request, workerID string) (*model.PreferenceCriteria, *errors.AppError) {
	if h.workerRepo == nil {
		return nil, errors.New(errors.CodeInvalidInput, "当前部署未启用员工持久化")
	}
	id, err := uuid.Parse(workerID)
	if err != nil {
		return nil, errors.InvalidInput("worker_id", "无效的员工ID格式: "+workerID)
	}
	worker, err := h.workerRepo.GetByID(r.Context(), id)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeDatabaseError, "查询员工失败")
	}
	if worker == nil {
		return nil, errors.NotFoundResource("员工", workerID)
	}
	// 员工未保存偏好时使用默认准则
	if worker.Criteria == nil {
		return model.NewPreferenceCriteria(), nil
	}
	return worker.Criteria, nil
}

// FilterScoreRequest 批量筛选评分请求
type FilterScoreRequest struct {
	Lines        []LineInput      `json:"lines"`
	Catalog      []ShiftCodeInput `json:"catalog,omitempty"`
	Criteria     *CriteriaInput   `json:"criteria,omitempty"`
	Jurisdiction string           `json:"jurisdiction,omitempty"`
	IncludeAll   bool             `json:"include_all,omitempty"` // true 时返回全部结果而不仅是正分
}

// FilterScoreResponse 批量筛选评分响应
type FilterScoreResponse struct {
	Matches  []*scorer.MatchResult `json:"matches"`
	Failures []scorer.BatchResult  `json:"failures,omitempty"`
	Total    int                   `json:"total"`
	Duration string                `json:"duration"`
}

// ScoreFilter 批量评分并按得分降序筛选
func (h *ScoreHandler) ScoreFilter(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持POST方法"))
		return
	}

	var req FilterScoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "解析请求失败"))
		return
	}

	if len(req.Lines) == 0 {
		respondError(w, errors.InvalidInput("lines", "班表列表不能为空"))
		return
	}

	lines := make([]*model.BidLine, 0, len(req.Lines))
	for i, in := range req.Lines {
		line, appErr := in.toBidLine()
		if appErr != nil {
			respondError(w, appErr.WithField("index", i))
			return
		}
		lines = append(lines, line)
	}

	jurisdiction := req.Jurisdiction
	if jurisdiction == "" {
		jurisdiction = h.jurisdiction
	}

	// 节假日按第一条班表的周期解析：同一批次共享竞标周期
	holidayDates := resolveHolidays(h.holidays, jurisdiction, lines[0].Period)

	start := time.Now()
	results := h.batch.ScoreBatch(r.Context(), lines, toCatalog(req.Catalog), req.Criteria.toCriteria(), holidayDates)
	duration := time.Since(start)

	failures := scorer.Failures(results)
	metrics.RecordScoreBatch(len(failures) == 0, duration)

	var matches []*scorer.MatchResult
	if req.IncludeAll {
		for _, br := range results {
			if br.Err == nil && br.Result != nil {
				matches = append(matches, br.Result)
			}
		}
	} else {
		matches = scorer.FilterPositive(results)
	}

	respondJSON(w, http.StatusOK, FilterScoreResponse{
		Matches:  matches,
		Failures: failures,
		Total:    len(req.Lines),
		Duration: duration.String(),
	})
}
