// Package model 定义竞标班表分析引擎的核心数据模型
package model

import (
	"time"
)

// ShiftCategory 班次类别（按开始时间划分）
type ShiftCategory string

const (
	CategoryMorning   ShiftCategory = "morning"   // 早班 (06:00-14:00 开始)
	CategoryAfternoon ShiftCategory = "afternoon" // 午班 (14:00-22:00 开始)
	CategoryNight     ShiftCategory = "night"     // 夜班 (22:00-06:00 开始)
)

// ShiftCode 班次代码定义
// 开始/结束时间为墙钟 HH:MM，结束早于开始表示跨午夜
type ShiftCode struct {
	Code      string `json:"code" db:"code"`
	BeginTime string `json:"begin_time" db:"begin_time"` // HH:MM
	EndTime   string `json:"end_time" db:"end_time"`     // HH:MM
}

// CrossesMidnight 检查班次是否跨午夜
func (s *ShiftCode) CrossesMidnight() bool {
	begin, err1 := time.Parse(TimeLayout, s.BeginTime)
	end, err2 := time.Parse(TimeLayout, s.EndTime)
	if err1 != nil || err2 != nil {
		return false
	}
	return end.Before(begin)
}

// DurationMinutes 计算班次时长（分钟）
// 跨午夜班次按次日结束计算
func (s *ShiftCode) DurationMinutes() int {
	begin, err1 := time.Parse(TimeLayout, s.BeginTime)
	end, err2 := time.Parse(TimeLayout, s.EndTime)
	if err1 != nil || err2 != nil {
		return 0
	}
	minutes := int(end.Sub(begin).Minutes())
	if minutes <= 0 {
		minutes += 24 * 60
	}
	return minutes
}

// DurationHours 返回班次时长（小时）
func (s *ShiftCode) DurationHours() float64 {
	return float64(s.DurationMinutes()) / 60.0
}

// Category 返回班次类别
func (s *ShiftCode) Category() ShiftCategory {
	begin, err := time.Parse(TimeLayout, s.BeginTime)
	if err != nil {
		return CategoryMorning
	}
	hour := begin.Hour()
	switch {
	case hour >= 6 && hour < 14:
		return CategoryMorning
	case hour >= 14 && hour < 22:
		return CategoryAfternoon
	default:
		return CategoryNight
	}
}

// ShiftCatalog 班次代码目录（只读查找表，由调用方提供）
type ShiftCatalog map[string]*ShiftCode

// NewShiftCatalog 从班次定义列表构建目录
func NewShiftCatalog(codes []*ShiftCode) ShiftCatalog {
	catalog := make(ShiftCatalog, len(codes))
	for _, c := range codes {
		catalog[c.Code] = c
	}
	return catalog
}

// Lookup 查找班次代码
func (c ShiftCatalog) Lookup(code string) (*ShiftCode, bool) {
	s, ok := c[code]
	return s, ok
}

// CodesByCategory 返回指定类别的所有代码
func (c ShiftCatalog) CodesByCategory(category ShiftCategory) []string {
	var codes []string
	for code, s := range c {
		if s.Category() == category {
			codes = append(codes, code)
		}
	}
	return codes
}

// CodesByLength 返回指定时长（小时，向下取整）的所有代码
func (c ShiftCatalog) CodesByLength(hours int) []string {
	var codes []string
	for code, s := range c {
		if int(s.DurationHours()) == hours {
			codes = append(codes, code)
		}
	}
	return codes
}

// ExpandSelection 将类别/时长筛选展开为具体代码集合
// 直接选中的代码与展开结果取并集
func (c ShiftCatalog) ExpandSelection(codes []string, categories []ShiftCategory, lengths []int) map[string]bool {
	selected := make(map[string]bool)
	for _, code := range codes {
		selected[code] = true
	}
	for _, category := range categories {
		for _, code := range c.CodesByCategory(category) {
			selected[code] = true
		}
	}
	for _, hours := range lengths {
		for _, code := range c.CodesByLength(hours) {
			selected[code] = true
		}
	}
	return selected
}
