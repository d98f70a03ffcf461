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
	"github.com/xuanban/xuanban/pkg/mirror"
	"github.com/xuanban/xuanban/pkg/model"
	"github.com/xuanban/xuanban/pkg/validator"
)

// ConflictHandler 休息日冲突与镜像匹配处理器
// workers 可为 nil（纯计算部署），此时按员工ID读写休息日请求的路径不可用
type ConflictHandler struct {
	detector *validator.DayOffDetector
	matcher  *mirror.Matcher
	workers  repository.WorkerRepositoryInterface
}

// NewConflictHandler 创建冲突处理器
func NewConflictHandler(workers repository.WorkerRepositoryInterface) *ConflictHandler {
	return &ConflictHandler{
		detector: validator.NewDayOffDetector(),
		matcher:  mirror.NewMatcher(),
		workers:  workers,
	}
}

// DayOffRequest 休息日冲突检测请求
// dates 为空且带 worker_id 时使用该员工保存的休息日请求
type DayOffRequest struct {
	Line     LineInput        `json:"line"`
	Dates    []string         `json:"dates,omitempty"` // 请求休息的日期 YYYY-MM-DD
	WorkerID string           `json:"worker_id,omitempty"`
	Catalog  []ShiftCodeInput `json:"catalog,omitempty"`
}

// DayOffResponse 休息日冲突检测响应
type DayOffResponse struct {
	Report   *validator.DayOffReport `json:"report"`
	Duration string                  `json:"duration"`
}

// DetectDayOff 检测请求休息日与班表的冲突
func (h *ConflictHandler) DetectDayOff(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持POST方法"))
		return
	}

	var req DayOffRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "解析请求失败"))
		return
	}

	line, appErr := req.Line.toBidLine()
	if appErr != nil {
		respondError(w, appErr)
		return
	}

	dates := req.Dates
	if len(dates) == 0 && req.WorkerID != "" {
		loaded, appErr := h.loadSavedDates(r, req.WorkerID)
		if appErr != nil {
			respondError(w, appErr)
			return
		}
		dates = loaded
	}

	start := time.Now()
	report, err := h.detector.Detect(line, dates, toCatalog(req.Catalog))
	if err != nil {
		respondError(w, asAppError(err))
		return
	}

	respondJSON(w, http.StatusOK, DayOffResponse{
		Report:   report,
		Duration: time.Since(start).String(),
	})
}

// loadSavedDates 读取员工保存的休息日请求日期
func (h *ConflictHandler) loadSavedDates(r *http.Request, workerID string) ([]string, *errors.AppError) {
	if h.workers == nil {
		return nil, errors.New(errors.CodeInvalidInput, "当前部署未启用员工持久化")
	}
	id, err := uuid.Parse(workerID)
	if err != nil {
		return nil, errors.InvalidInput("worker_id", "无效的员工ID格式: "+workerID)
	}
	saved, err := h.workers.GetDayOffRequest(r.Context(), id)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeDatabaseError, "查询休息日请求失败")
	}
	if saved == nil {
		return nil, errors.NotFoundResource("休息日请求", workerID)
	}
	return saved.Dates, nil
}

// SaveDayOffInput 保存休息日请求输入
type SaveDayOffInput struct {
	WorkerID string   `json:"worker_id"`
	Dates    []string `json:"dates"` // YYYY-MM-DD
}

// SaveDayOff 保存员工的休息日请求（每员工一条，覆盖式）
func (h *ConflictHandler) SaveDayOff(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持POST方法"))
		return
	}
	if h.workers == nil {
		respondError(w, errors.New(errors.CodeInvalidInput, "当前部署未启用员工持久化"))
		return
	}

	var in SaveDayOffInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "解析请求失败"))
		return
	}

	workerID, err := uuid.Parse(in.WorkerID)
	if err != nil {
		respondError(w, errors.InvalidInput("worker_id", "无效的员工ID格式: "+in.WorkerID))
		return
	}
	for _, date := range in.Dates {
		if _, err := model.ParseDate(date); err != nil {
			respondError(w, errors.New(errors.CodeInvalidDate, "无效的日期格式: "+date))
			return
		}
	}

	req := &model.DayOffRequest{WorkerID: workerID, Dates: in.Dates}
	if err := h.workers.SaveDayOffRequest(r.Context(), req); err != nil {
		respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "保存休息日请求失败"))
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"id":        req.ID,
		"worker_id": req.WorkerID,
		"dates":     req.Dates,
	})
}

// MirrorRequest 镜像班表匹配请求
type MirrorRequest struct {
	Reference  LineInput        `json:"reference"`
	Candidates []LineInput      `json:"candidates"`
	OffDates   []string         `json:"off_dates,omitempty"` // 为空时从参考班表推导
	Catalog    []ShiftCodeInput `json:"catalog,omitempty"`
}

// MirrorResponse 镜像班表匹配响应
type MirrorResponse struct {
	Candidates []mirror.MirrorCandidate  `json:"candidates"`
	Skipped    []mirror.SkippedCandidate `json:"skipped,omitempty"`
	Duration   string                    `json:"duration"`
}

// FindMirrors 查找休息日重合的镜像班表
func (h *ConflictHandler) FindMirrors(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持POST方法"))
		return
	}

	var req MirrorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "解析请求失败"))
		return
	}

	reference, appErr := req.Reference.toBidLine()
	if appErr != nil {
		respondError(w, appErr)
		return
	}

	candidates := make([]*model.BidLine, 0, len(req.Candidates))
	for i, in := range req.Candidates {
		c, appErr := in.toBidLine()
		if appErr != nil {
			respondError(w, appErr.WithField("index", i))
			return
		}
		candidates = append(candidates, c)
	}

	start := time.Now()
	matches, skipped, err := h.matcher.FindMirrors(reference, candidates, req.OffDates, toCatalog(req.Catalog))
	if err != nil {
		metrics.RecordMirrorSearch(false)
		respondError(w, asAppError(err))
		return
	}
	metrics.RecordMirrorSearch(true)

	respondJSON(w, http.StatusOK, MirrorResponse{
		Candidates: matches,
		Skipped:    skipped,
		Duration:   time.Since(start).String(),
	})
}
