// Package cycle 提供周期模式与日历日期之间的映射
package cycle

import (
	"fmt"

	"github.com/xuanban/xuanban/pkg/errors"
	"github.com/xuanban/xuanban/pkg/model"
)

// Resolver 日历解析器
// 将短周期模式平铺到完整竞标周期，并支持日期到周期日的逆向查询
type Resolver struct{}

// NewResolver 创建日历解析器
func NewResolver() *Resolver {
	return &Resolver{}
}

// ValidatePeriod 校验竞标周期参数
func (r *Resolver) ValidatePeriod(period *model.BidPeriod) error {
	if period.CycleLength <= 0 {
		return errors.InvalidCycle("cycle_length", period.CycleLength)
	}
	if period.RepeatCount < 1 {
		return errors.InvalidCycle("repeat_count", period.RepeatCount)
	}
	if _, err := period.Start(); err != nil {
		return errors.InvalidInput("start_date", period.StartDate).WithCause(err)
	}
	return nil
}

// normalize 校验模式与周期的一致性
// 周期长度未指定时由模式槽位数推导
func (r *Resolver) normalize(pattern model.CyclePattern, period *model.BidPeriod) error {
	if len(pattern) == 0 {
		return errors.InvalidInput("pattern", "周期模式为空")
	}
	if period.CycleLength == 0 {
		period.CycleLength = pattern.Length()
	}
	if err := r.ValidatePeriod(period); err != nil {
		return err
	}
	if pattern.Length() != period.CycleLength {
		return errors.InvalidInput("pattern",
			fmt.Sprintf("模式长度 %d 与周期长度 %d 不一致", pattern.Length(), period.CycleLength))
	}
	return nil
}

// Resolve 将周期模式平铺到完整竞标周期
// 返回长度为 cycleLength × repeatCount 的时间有序序列
// 星期几由真实日历日期推导，而非周期位置：周期相对真实星期会漂移，这是预期行为
func (r *Resolver) Resolve(pattern model.CyclePattern, period model.BidPeriod) ([]model.ResolvedDay, error) {
	if err := r.normalize(pattern, &period); err != nil {
		return nil, err
	}

	start, _ := period.Start()
	total := period.TotalDays()
	days := make([]model.ResolvedDay, total)
	for d := 0; d < total; d++ {
		idx := (d % period.CycleLength) + 1
		date := start.AddDate(0, 0, d)
		days[d] = model.ResolvedDay{
			Date:          model.FormatDate(date),
			Weekday:       date.Weekday(),
			CycleDayIndex: idx,
			Assignment:    pattern[idx-1],
		}
	}
	return days, nil
}

// ResolveCycle 只解析单个周期（第一次重复）
// 连班/休息块统计在单周期上计算后按重复次数缩放即可；
// 节假日重叠必须使用 Resolve 的完整平铺序列
func (r *Resolver) ResolveCycle(pattern model.CyclePattern, period model.BidPeriod) ([]model.ResolvedDay, error) {
	single := period
	single.RepeatCount = 1
	return r.Resolve(pattern, single)
}

// DayOffset 计算日期相对周期起始日的偏移（0-based）
// 负偏移或超出周期范围属于调用方错误，不做静默截断
func (r *Resolver) DayOffset(date string, period model.BidPeriod) (int, error) {
	if err := r.ValidatePeriod(&period); err != nil {
		return 0, err
	}
	d, err := model.ParseDate(date)
	if err != nil {
		return 0, errors.New(errors.CodeInvalidDate, err.Error()).WithField("date", date)
	}
	start, _ := period.Start()
	offset := model.DaysBetween(start, d)
	if offset < 0 || offset >= period.TotalDays() {
		return 0, errors.DateOutOfPeriod(date, period.StartDate, period.TotalDays())
	}
	return offset, nil
}

// DayIndexFor 逆向查询：由日历日期推导周期日序号（1-based）
func (r *Resolver) DayIndexFor(date string, period model.BidPeriod) (int, error) {
	offset, err := r.DayOffset(date, period)
	if err != nil {
		return 0, err
	}
	return (offset % period.CycleLength) + 1, nil
}

// DateFor 正向查询：由周期日序号和重复序号（0-based）推导日历日期
func (r *Resolver) DateFor(cycleDayIndex, repeat int, period model.BidPeriod) (string, error) {
	if err := r.ValidatePeriod(&period); err != nil {
		return "", err
	}
	if cycleDayIndex < 1 || cycleDayIndex > period.CycleLength {
		return "", errors.InvalidCycle("cycle_day_index", cycleDayIndex)
	}
	if repeat < 0 || repeat >= period.RepeatCount {
		return "", errors.InvalidCycle("repeat", repeat)
	}
	start, _ := period.Start()
	offset := repeat*period.CycleLength + cycleDayIndex - 1
	return model.FormatDate(start.AddDate(0, 0, offset)), nil
}

// AssignmentOn 查询指定日历日期的槽位分配
func (r *Resolver) AssignmentOn(pattern model.CyclePattern, period model.BidPeriod, date string) (model.SlotAssignment, error) {
	if err := r.normalize(pattern, &period); err != nil {
		return model.SlotAssignment{}, err
	}
	idx, err := r.DayIndexFor(date, period)
	if err != nil {
		return model.SlotAssignment{}, err
	}
	return pattern[idx-1], nil
}

// OffDates 返回竞标周期内所有休息日的日历日期（时间有序）
func (r *Resolver) OffDates(pattern model.CyclePattern, period model.BidPeriod) ([]string, error) {
	days, err := r.Resolve(pattern, period)
	if err != nil {
		return nil, err
	}
	var dates []string
	for _, day := range days {
		if !day.Assignment.IsWorking() {
			dates = append(dates, day.Date)
		}
	}
	return dates, nil
}
