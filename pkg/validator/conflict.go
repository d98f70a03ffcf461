// Package validator 提供休息日请求与班表的冲突检测
package validator

import (
	"math"
	"sort"

	"github.com/xuanban/xuanban/pkg/cycle"
	"github.com/xuanban/xuanban/pkg/model"
)

// ConflictDetail 单个请求日期的冲突详情
type ConflictDetail struct {
	Date          string `json:"date"`
	CycleDayIndex int    `json:"cycle_day_index"`
	ShiftCode     string `json:"shift_code"`
	BeginTime     string `json:"begin_time,omitempty"` // 未知代码时为空
	EndTime       string `json:"end_time,omitempty"`
}

// DayOffReport 休息日冲突检测报告
type DayOffReport struct {
	MatchingDates   []string         `json:"matching_dates"` // 班表中恰为休息日的请求日期
	Conflicts       []ConflictDetail `json:"conflicts"`      // 班表中为工作日的请求日期
	MatchPercentage int              `json:"match_percentage"`
	NoRequests      bool             `json:"no_requests"`                // 请求集合为空（空集视为 100% 满足）
	UnresolvedCodes []string         `json:"unresolved_codes,omitempty"` // 目录中查不到的班次代码
}

// MatchedCount 返回匹配的请求日期数
func (r *DayOffReport) MatchedCount() int {
	return len(r.MatchingDates)
}

// DayOffDetector 休息日冲突检测器
type DayOffDetector struct {
	resolver *cycle.Resolver
}

// NewDayOffDetector 创建休息日冲突检测器
func NewDayOffDetector() *DayOffDetector {
	return &DayOffDetector{resolver: cycle.NewResolver()}
}

// Detect 将员工的指定休息日期与班表的实际工作日比对
// 请求日期必须全部落在该班表自己的竞标周期内，越界属于调用方错误并立即上报
func (d *DayOffDetector) Detect(line *model.BidLine, requestedDates []string, catalog model.ShiftCatalog) (*DayOffReport, error) {
	report := &DayOffReport{
		MatchingDates: []string{},
		Conflicts:     []ConflictDetail{},
	}

	if len(requestedDates) == 0 {
		report.NoRequests = true
		report.MatchPercentage = 100
		return report, nil
	}

	// 去重并排序，保证可复现输出
	dates := dedupSorted(requestedDates)
	seenUnresolved := make(map[string]bool)

	for _, date := range dates {
		idx, err := d.resolver.DayIndexFor(date, line.Period)
		if err != nil {
			return nil, err
		}
		assignment, err := line.Pattern.At(idx)
		if err != nil {
			return nil, err
		}

		if !assignment.IsWorking() {
			report.MatchingDates = append(report.MatchingDates, date)
			continue
		}

		detail := ConflictDetail{
			Date:          date,
			CycleDayIndex: idx,
			ShiftCode:     assignment.Code,
		}
		if shift, ok := catalog.Lookup(assignment.Code); ok {
			detail.BeginTime = shift.BeginTime
			detail.EndTime = shift.EndTime
		} else if !seenUnresolved[assignment.Code] {
			// 未知代码按"工作日、时长未知"处理，单独上报而不中止检测
			seenUnresolved[assignment.Code] = true
			report.UnresolvedCodes = append(report.UnresolvedCodes, assignment.Code)
		}
		report.Conflicts = append(report.Conflicts, detail)
	}

	report.MatchPercentage = int(math.Round(
		100 * float64(len(report.MatchingDates)) / float64(len(dates))))
	return report, nil
}

// dedupSorted 去重并升序排序日期
func dedupSorted(dates []string) []string {
	seen := make(map[string]bool, len(dates))
	var out []string
	for _, d := range dates {
		if !seen[d] {
			seen[d] = true
			out = append(out, d)
		}
	}
	sort.Strings(out)
	return out
}
