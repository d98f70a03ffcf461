// Package model 定义竞标班表分析引擎的核心数据模型
package model

import (
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// DefaultOffSentinel 历史数据中的休息日标记
// 引擎接受任意配置的标记值，不应在其他位置硬编码比较
const DefaultOffSentinel = "----"

// SlotKind 周期日槽位类型
type SlotKind string

const (
	SlotOff   SlotKind = "off"   // 休息日
	SlotShift SlotKind = "shift" // 工作班次
)

// SlotAssignment 周期日槽位分配（带标签联合，消除魔法字符串比较）
type SlotAssignment struct {
	Kind SlotKind `json:"kind"`
	Code string   `json:"code,omitempty"` // Kind == SlotShift 时有效
}

// IsWorking 检查槽位是否为工作日
func (s SlotAssignment) IsWorking() bool {
	return s.Kind == SlotShift
}

// OffSlot 返回休息日槽位
func OffSlot() SlotAssignment {
	return SlotAssignment{Kind: SlotOff}
}

// ShiftSlot 返回工作班次槽位
func ShiftSlot(code string) SlotAssignment {
	return SlotAssignment{Kind: SlotShift, Code: code}
}

// CyclePattern 周期模式：定长的有序槽位序列，每个周期日一个
// 周期长度由已填充的槽位数量推导，不做硬编码
type CyclePattern []SlotAssignment

// Length 返回周期长度（天）
func (p CyclePattern) Length() int {
	return len(p)
}

// At 返回指定周期日（1-based）的槽位
func (p CyclePattern) At(cycleDayIndex int) (SlotAssignment, error) {
	if cycleDayIndex < 1 || cycleDayIndex > len(p) {
		return SlotAssignment{}, fmt.Errorf("周期日序号 %d 超出范围 [1, %d]", cycleDayIndex, len(p))
	}
	return p[cycleDayIndex-1], nil
}

// WorkingDays 返回单周期内的工作日数
func (p CyclePattern) WorkingDays() int {
	count := 0
	for _, slot := range p {
		if slot.IsWorking() {
			count++
		}
	}
	return count
}

// DistinctShiftCodes 返回模式中实际使用的去重班次代码（按首次出现顺序）
func (p CyclePattern) DistinctShiftCodes() []string {
	seen := make(map[string]bool)
	var codes []string
	for _, slot := range p {
		if slot.IsWorking() && !seen[slot.Code] {
			seen[slot.Code] = true
			codes = append(codes, slot.Code)
		}
	}
	return codes
}

// ParsePattern 从日序号到原始值的映射解析周期模式
// 键为 1-based 周期日序号（可带前导零），值为班次代码或休息标记
// sentinel 为空时使用 DefaultOffSentinel
func ParsePattern(slots map[string]string, sentinel string) (CyclePattern, error) {
	if sentinel == "" {
		sentinel = DefaultOffSentinel
	}
	if len(slots) == 0 {
		return nil, fmt.Errorf("周期模式为空")
	}

	pattern := make(CyclePattern, len(slots))
	filled := make([]bool, len(slots))
	for key, raw := range slots {
		idx, err := strconv.Atoi(key)
		if err != nil {
			return nil, fmt.Errorf("周期日序号 '%s' 无法解析: %w", key, err)
		}
		if idx < 1 || idx > len(slots) {
			return nil, fmt.Errorf("周期日序号 %d 超出范围 [1, %d]", idx, len(slots))
		}
		if filled[idx-1] {
			return nil, fmt.Errorf("周期日序号 %d 重复", idx)
		}
		filled[idx-1] = true
		if raw == sentinel {
			pattern[idx-1] = OffSlot()
		} else {
			pattern[idx-1] = ShiftSlot(raw)
		}
	}
	return pattern, nil
}

// ParsePatternSlice 从有序原始值序列解析周期模式
func ParsePatternSlice(raw []string, sentinel string) (CyclePattern, error) {
	if sentinel == "" {
		sentinel = DefaultOffSentinel
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("周期模式为空")
	}
	pattern := make(CyclePattern, len(raw))
	for i, v := range raw {
		if v == sentinel {
			pattern[i] = OffSlot()
		} else {
			pattern[i] = ShiftSlot(v)
		}
	}
	return pattern, nil
}

// BidPeriod 竞标周期：定义周期模式在日历上的平铺范围
type BidPeriod struct {
	StartDate   string `json:"start_date" db:"start_date"` // YYYY-MM-DD（无时间部分）
	CycleLength int    `json:"cycle_length" db:"cycle_length"`
	RepeatCount int    `json:"repeat_count" db:"repeat_count"`
}

// TotalDays 返回竞标周期覆盖的总天数
func (bp *BidPeriod) TotalDays() int {
	return bp.CycleLength * bp.RepeatCount
}

// Start 返回解析后的起始日期
func (bp *BidPeriod) Start() (time.Time, error) {
	return ParseDate(bp.StartDate)
}

// Years 返回竞标周期跨越的所有年份
func (bp *BidPeriod) Years() []int {
	start, err := bp.Start()
	if err != nil {
		return nil
	}
	end := start.AddDate(0, 0, bp.TotalDays()-1)
	var years []int
	for y := start.Year(); y <= end.Year(); y++ {
		years = append(years, y)
	}
	return years
}

// BidLine 竞标班表：可被认领的命名循环班表
type BidLine struct {
	BaseModel
	OrgID     uuid.UUID    `json:"org_id" db:"org_id"`
	GroupCode string       `json:"group_code" db:"group_code"` // 所属班组
	Name      string       `json:"name" db:"name"`
	Pattern   CyclePattern `json:"pattern" db:"pattern"`
	Period    BidPeriod    `json:"period" db:"-"`
	IsActive  bool         `json:"is_active" db:"is_active"`
}

// ResolvedDay 解析后的日历日（派生数据，按请求重新计算，不做持久化）
type ResolvedDay struct {
	Date          string         `json:"date"` // YYYY-MM-DD
	Weekday       time.Weekday   `json:"weekday"`
	CycleDayIndex int            `json:"cycle_day_index"` // 1-based
	Assignment    SlotAssignment `json:"assignment"`
}

// DayOffRequest 指定日期休息请求（独立于任何班表）
type DayOffRequest struct {
	BaseModel
	WorkerID uuid.UUID `json:"worker_id" db:"worker_id"`
	Dates    []string  `json:"dates" db:"dates"` // YYYY-MM-DD，无序集合
}
