// Package handler 提供HTTP请求处理器
package handler

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/xuanban/xuanban/internal/presets"
	"github.com/xuanban/xuanban/pkg/errors"
	"github.com/xuanban/xuanban/pkg/holiday"
	"github.com/xuanban/xuanban/pkg/model"
)

// LineInput 竞标班表输入
type LineInput struct {
	ID          string            `json:"id,omitempty"`
	Name        string            `json:"name,omitempty"`
	GroupCode   string            `json:"group_code,omitempty"`
	Pattern     map[string]string `json:"pattern,omitempty"`       // 1-based 日序号 -> 班次代码或休息标记
	PatternList []string          `json:"pattern_list,omitempty"`  // 有序槽位序列，与 pattern 二选一
	OffSentinel string            `json:"off_sentinel,omitempty"`  // 默认 "----"
	StartDate   string            `json:"start_date"`              // YYYY-MM-DD
	CycleLength int               `json:"cycle_length,omitempty"`  // 0 时由模式长度推导
	RepeatCount int               `json:"repeat_count"`
}

// ShiftCodeInput 班次代码输入
type ShiftCodeInput struct {
	Code      string `json:"code"`
	BeginTime string `json:"begin_time"` // HH:MM
	EndTime   string `json:"end_time"`   // HH:MM
}

// CriteriaInput 偏好准则输入
type CriteriaInput struct {
	Groups          []string  `json:"groups,omitempty"`
	ShiftCodes      []string  `json:"shift_codes,omitempty"`
	ShiftCategories []string  `json:"shift_categories,omitempty"`
	ShiftLengths    []int     `json:"shift_lengths,omitempty"`
	DaysOff         []string  `json:"days_off,omitempty"`
	MandatoryGroup  bool      `json:"mandatory_group,omitempty"`
	MandatoryShift  bool      `json:"mandatory_shift,omitempty"`
	Preset          string    `json:"preset,omitempty"` // 预设名称，weights 为空时生效
	Weights         *model.CriteriaWeights `json:"weights,omitempty"`
}

// toBidLine 转换班表输入
func (in *LineInput) toBidLine() (*model.BidLine, *errors.AppError) {
	var pattern model.CyclePattern
	var err error

	switch {
	case len(in.Pattern) > 0:
		pattern, err = model.ParsePattern(in.Pattern, in.OffSentinel)
	case len(in.PatternList) > 0:
		pattern, err = model.ParsePatternSlice(in.PatternList, in.OffSentinel)
	default:
		return nil, errors.InvalidInput("pattern", "周期模式不能为空")
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInvalidCycle, "周期模式解析失败")
	}

	line := &model.BidLine{
		Name:      in.Name,
		GroupCode: in.GroupCode,
		Pattern:   pattern,
		Period: model.BidPeriod{
			StartDate:   in.StartDate,
			CycleLength: in.CycleLength,
			RepeatCount: in.RepeatCount,
		},
		IsActive: true,
	}

	if in.ID != "" {
		id, parseErr := uuid.Parse(in.ID)
		if parseErr != nil {
			return nil, errors.InvalidInput("id", "无效的班表ID格式: "+in.ID)
		}
		line.ID = id
	} else {
		line.ID = uuid.New()
	}

	return line, nil
}

// toCatalog 转换班次目录输入
func toCatalog(inputs []ShiftCodeInput) model.ShiftCatalog {
	codes := make([]*model.ShiftCode, 0, len(inputs))
	for _, in := range inputs {
		codes = append(codes, &model.ShiftCode{
			Code:      in.Code,
			BeginTime: in.BeginTime,
			EndTime:   in.EndTime,
		})
	}
	return model.NewShiftCatalog(codes)
}

// toCriteria 转换偏好准则输入
func (in *CriteriaInput) toCriteria() *model.PreferenceCriteria {
	criteria := model.NewPreferenceCriteria()
	if in == nil {
		return criteria
	}

	criteria.Groups = in.Groups
	criteria.ShiftCodes = in.ShiftCodes
	criteria.ShiftLengths = in.ShiftLengths
	criteria.DaysOff = in.DaysOff
	criteria.MandatoryGroup = in.MandatoryGroup
	criteria.MandatoryShift = in.MandatoryShift

	for _, c := range in.ShiftCategories {
		criteria.ShiftCategories = append(criteria.ShiftCategories, model.ShiftCategory(c))
	}

	switch {
	case in.Weights != nil:
		criteria.Weights = *in.Weights
	case in.Preset != "":
		if preset, ok := presets.FindPreset(in.Preset); ok {
			criteria.Weights = preset.Weights
		}
	}

	return criteria
}

// resolveHolidays 为竞标周期解析节假日集合
func resolveHolidays(provider holiday.Provider, jurisdiction string, period model.BidPeriod) map[string]bool {
	if provider == nil {
		return nil
	}
	years := period.Years()
	if len(years) == 0 {
		return nil
	}
	dates, err := provider.HolidayDates(jurisdiction, years)
	if err != nil {
		return nil
	}
	return dates
}

// respondJSON 返回JSON响应
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError 返回错误响应
func respondError(w http.ResponseWriter, err *errors.AppError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(err.HTTPStatus)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"error":   true,
		"code":    err.Code,
		"message": err.Message,
		"fields":  err.Fields,
	})
}

// asAppError 将任意错误转换为AppError
func asAppError(err error) *errors.AppError {
	if appErr, ok := err.(*errors.AppError); ok {
		return appErr
	}
	return errors.Wrap(err, errors.CodeInternal, err.Error())
}
