// Package stats 提供班表结构指标分析功能
package stats

import (
	"strconv"
	"strings"
	"time"

	"github.com/xuanban/xuanban/pkg/cycle"
	"github.com/xuanban/xuanban/pkg/model"
)

// 指标计算模式
// 单周期模式的可数指标需要调用方显式按重复次数缩放；
// 完整周期模式直接在平铺后的全序列上计算，无需缩放
const (
	ModeCycle  = "cycle"  // 单周期
	ModePeriod = "period" // 完整竞标周期
)

// SixPlusBucket 连班/连休直方图的上溢桶
const SixPlusBucket = "6+"

// BlockHistogram 连续天数块直方图，桶为 "1".."5" 和 "6+"
type BlockHistogram map[string]int

// bucketKey 返回块长度对应的桶
func bucketKey(length int) string {
	if length >= 6 {
		return SixPlusBucket
	}
	return strconv.Itoa(length)
}

// Add 将一个块计入直方图
func (h BlockHistogram) Add(length int) {
	if length <= 0 {
		return
	}
	h[bucketKey(length)]++
}

// Count 返回指定块长度的计数
func (h BlockHistogram) Count(length int) int {
	return h[bucketKey(length)]
}

// TotalBlocks 返回块总数
func (h BlockHistogram) TotalBlocks() int {
	total := 0
	for _, c := range h {
		total += c
	}
	return total
}

// ScheduleMetrics 班表结构指标（派生聚合，引擎不持久化）
type ScheduleMetrics struct {
	Mode     string `json:"mode"`      // cycle/period
	ScaledBy int    `json:"scaled_by"` // 已应用的缩放倍数（1 表示未缩放）

	WorkDays int `json:"work_days"`
	OffDays  int `json:"off_days"`

	// 周末分类：以周六日期为配对键，每对只计入一个类别
	WeekendsWorked int `json:"weekends_worked"` // 周六周日均工作
	SaturdaysOnly  int `json:"saturdays_only"`  // 仅周六工作
	SundaysOnly    int `json:"sundays_only"`    // 仅周日工作
	WeekendsOff    int `json:"weekends_off"`    // 周六周日均休息

	WorkBlocks BlockHistogram `json:"work_blocks"`
	OffBlocks  BlockHistogram `json:"off_blocks"`

	// 节假日重叠：始终基于完整平铺序列才是精确值
	HolidaysWorked int `json:"holidays_worked"`
	HolidaysOff    int `json:"holidays_off"`

	DistinctShiftCodes []string `json:"distinct_shift_codes"`
	ShiftSummary       string   `json:"shift_summary"` // 展示用摘要，不参与评分
}

// TotalWeekendPairs 返回序列覆盖的周末对总数
func (m *ScheduleMetrics) TotalWeekendPairs() int {
	return m.WeekendsWorked + m.SaturdaysOnly + m.SundaysOnly + m.WeekendsOff
}

// Scale 将单周期指标统一缩放到完整竞标周期
// 一次性应用于全部可数指标，避免散落在各处的部分缩放；
// 节假日计数不做线性缩放：节假日落在哪次重复取决于真实日历，
// 精确值必须通过 AnalyzeBidPeriod 的完整平铺计算
func (m *ScheduleMetrics) Scale(repeatCount int) {
	if repeatCount <= 1 || m.Mode != ModeCycle || m.ScaledBy > 1 {
		return
	}
	m.WorkDays *= repeatCount
	m.OffDays *= repeatCount
	m.WeekendsWorked *= repeatCount
	m.SaturdaysOnly *= repeatCount
	m.SundaysOnly *= repeatCount
	m.WeekendsOff *= repeatCount
	for k := range m.WorkBlocks {
		m.WorkBlocks[k] *= repeatCount
	}
	for k := range m.OffBlocks {
		m.OffBlocks[k] *= repeatCount
	}
	m.ScaledBy = repeatCount
}

// ScheduleAnalyzer 班表指标分析器
type ScheduleAnalyzer struct {
	resolver *cycle.Resolver
}

// NewScheduleAnalyzer 创建班表指标分析器
func NewScheduleAnalyzer() *ScheduleAnalyzer {
	return &ScheduleAnalyzer{resolver: cycle.NewResolver()}
}

// AnalyzeDays 对时间有序的解析日序列做单遍统计
// mode 记录调用方传入的是单周期还是完整平铺序列，避免静默猜测
func (a *ScheduleAnalyzer) AnalyzeDays(days []model.ResolvedDay, holidays map[string]bool, mode string) *ScheduleMetrics {
	m := &ScheduleMetrics{
		Mode:       mode,
		ScaledBy:   1,
		WorkBlocks: make(BlockHistogram),
		OffBlocks:  make(BlockHistogram),
	}
	if len(days) == 0 {
		m.ShiftSummary = summarizeShiftCodes(nil)
		return m
	}

	// 周末配对状态：键为周六日期
	type weekendPair struct {
		satPresent, satWorked bool
		sunPresent, sunWorked bool
	}
	weekends := make(map[string]*weekendPair)
	var weekendOrder []string

	pairFor := func(satKey string) *weekendPair {
		p, ok := weekends[satKey]
		if !ok {
			p = &weekendPair{}
			weekends[satKey] = p
			weekendOrder = append(weekendOrder, satKey)
		}
		return p
	}

	workRun := 0
	offRun := 0
	seen := make(map[string]bool)

	for _, day := range days {
		working := day.Assignment.IsWorking()

		// 连班/连休计数器：类型切换时刷入直方图
		if working {
			if offRun > 0 {
				m.OffBlocks.Add(offRun)
				offRun = 0
			}
			workRun++
			m.WorkDays++
		} else {
			if workRun > 0 {
				m.WorkBlocks.Add(workRun)
				workRun = 0
			}
			offRun++
			m.OffDays++
		}

		// 周末分类：周日与其前一天的周六配对
		switch day.Weekday {
		case time.Saturday:
			p := pairFor(day.Date)
			p.satPresent = true
			p.satWorked = working
		case time.Sunday:
			d, err := model.ParseDate(day.Date)
			if err == nil {
				p := pairFor(model.FormatDate(d.AddDate(0, 0, -1)))
				p.sunPresent = true
				p.sunWorked = working
			}
		}

		// 节假日重叠：不在节假日集合中的日期一律忽略
		if holidays[day.Date] {
			if working {
				m.HolidaysWorked++
			} else {
				m.HolidaysOff++
			}
		}

		if working && !seen[day.Assignment.Code] {
			seen[day.Assignment.Code] = true
			m.DistinctShiftCodes = append(m.DistinctShiftCodes, day.Assignment.Code)
		}
	}

	// 刷入末尾未闭合的块
	if workRun > 0 {
		m.WorkBlocks.Add(workRun)
	}
	if offRun > 0 {
		m.OffBlocks.Add(offRun)
	}

	// 归类周末对（类别互斥且完备）
	for _, key := range weekendOrder {
		p := weekends[key]
		switch {
		case p.satWorked && p.sunWorked:
			m.WeekendsWorked++
		case p.satWorked:
			m.SaturdaysOnly++
		case p.sunWorked:
			m.SundaysOnly++
		default:
			m.WeekendsOff++
		}
	}

	m.ShiftSummary = summarizeShiftCodes(m.DistinctShiftCodes)
	return m
}

// AnalyzeCycle 在单个周期上计算指标
// 节假日计数只覆盖第一次重复；调用方负责用 Scale 缩放可数指标
func (a *ScheduleAnalyzer) AnalyzeCycle(pattern model.CyclePattern, period model.BidPeriod, holidays map[string]bool) (*ScheduleMetrics, error) {
	days, err := a.resolver.ResolveCycle(pattern, period)
	if err != nil {
		return nil, err
	}
	return a.AnalyzeDays(days, holidays, ModeCycle), nil
}

// AnalyzeBidPeriod 在完整平铺序列上计算指标（节假日重叠的精确路径）
func (a *ScheduleAnalyzer) AnalyzeBidPeriod(pattern model.CyclePattern, period model.BidPeriod, holidays map[string]bool) (*ScheduleMetrics, error) {
	days, err := a.resolver.Resolve(pattern, period)
	if err != nil {
		return nil, err
	}
	return a.AnalyzeDays(days, holidays, ModePeriod), nil
}

// summarizeShiftCodes 生成班次代码展示摘要
func summarizeShiftCodes(codes []string) string {
	switch {
	case len(codes) == 0:
		return "无班次"
	case len(codes) == 1:
		return codes[0]
	case len(codes) <= 3:
		return strings.Join(codes, "/")
	default:
		return "混合班次"
	}
}
