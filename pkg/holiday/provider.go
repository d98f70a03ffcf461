// Package holiday 提供按辖区/年份的节假日日期查询
package holiday

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rickar/cal/v2"
	"github.com/rickar/cal/v2/ca"
	"github.com/rickar/cal/v2/us"

	"github.com/xuanban/xuanban/pkg/logger"
	"github.com/xuanban/xuanban/pkg/model"
)

// Provider 节假日提供器接口
// 引擎只依赖此接口，由调用方构造并注入，引擎自身从不访问网络
type Provider interface {
	// HolidayDates 返回指定辖区在给定年份集合内的全部节假日日期
	// 键为 YYYY-MM-DD 日期字符串
	HolidayDates(jurisdiction string, years []int) (map[string]bool, error)
}

// CalendarProvider 基于日历规则的节假日提供器
// 按 辖区+年份 惰性记忆化，支持并发读取；
// 同一键的并发首次计算允许各自执行一次，结果相同，只损失效率不影响正确性
type CalendarProvider struct {
	mu        sync.RWMutex
	calendars map[string]*cal.Calendar
	cache     map[string]map[string]bool // jurisdiction/year -> 日期集合
	log       *logger.EngineLogger

	// 缓存命中观察回调，服务装配层注入用于上报监控计数
	onCacheLookup func(hit bool)
}

// NewCalendarProvider 创建节假日提供器（内置 us/ca 辖区）
func NewCalendarProvider() *CalendarProvider {
	p := &CalendarProvider{
		calendars: make(map[string]*cal.Calendar),
		cache:     make(map[string]map[string]bool),
		log:       logger.NewEngineLogger(),
	}
	p.register("us", us.Holidays)
	p.register("ca", ca.Holidays)
	return p
}

// register 注册辖区日历
func (p *CalendarProvider) register(jurisdiction string, holidays []*cal.Holiday) {
	c := &cal.Calendar{Name: jurisdiction, Cacheable: true}
	c.AddHoliday(holidays...)
	p.calendars[jurisdiction] = c
}

// Register 注册自定义辖区日历
func (p *CalendarProvider) Register(jurisdiction string, holidays []*cal.Holiday) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.register(strings.ToLower(jurisdiction), holidays)
}

// SetCacheObserver 设置缓存命中观察回调
// 必须在开始服务请求之前调用
func (p *CalendarProvider) SetCacheObserver(fn func(hit bool)) {
	p.onCacheLookup = fn
}

// HolidayDates 返回辖区在给定年份内的节假日日期集合
// 未知辖区降级为内置回退集合，不返回错误：节假日指标只是近似，不能阻断评分
func (p *CalendarProvider) HolidayDates(jurisdiction string, years []int) (map[string]bool, error) {
	jurisdiction = strings.ToLower(jurisdiction)
	merged := make(map[string]bool)
	for _, year := range years {
		for date := range p.datesForYear(jurisdiction, year) {
			merged[date] = true
		}
	}
	return merged, nil
}

// datesForYear 返回单个辖区/年份的节假日集合（带缓存）
func (p *CalendarProvider) datesForYear(jurisdiction string, year int) map[string]bool {
	key := fmt.Sprintf("%s/%d", jurisdiction, year)

	p.mu.RLock()
	cached, ok := p.cache[key]
	p.mu.RUnlock()
	if p.onCacheLookup != nil {
		p.onCacheLookup(ok)
	}
	if ok {
		return cached
	}

	dates := p.computeYear(jurisdiction, year)

	p.mu.Lock()
	p.cache[key] = dates
	p.mu.Unlock()

	return dates
}

// computeYear 计算单年节假日日期
func (p *CalendarProvider) computeYear(jurisdiction string, year int) map[string]bool {
	p.mu.RLock()
	calendar, ok := p.calendars[jurisdiction]
	p.mu.RUnlock()

	if !ok {
		p.log.HolidayFallback(jurisdiction, "辖区未注册")
		return fallbackDates(year)
	}

	dates := make(map[string]bool)
	for _, h := range calendar.Holidays {
		actual, _ := h.Calc(year)
		if actual.IsZero() {
			continue
		}
		dates[model.FormatDate(actual)] = true
	}
	return dates
}

// fallbackDates 返回最小的手工计算回退集合（固定日期节假日）
// 外部节假日源不可用时保证评分继续进行，指标变为近似值
func fallbackDates(year int) map[string]bool {
	fixed := []time.Time{
		time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC),   // 元旦
		time.Date(year, time.July, 1, 0, 0, 0, 0, time.UTC),      // 国庆（加拿大日）
		time.Date(year, time.December, 25, 0, 0, 0, 0, time.UTC), // 圣诞
	}
	dates := make(map[string]bool, len(fixed))
	for _, d := range fixed {
		dates[model.FormatDate(d)] = true
	}
	return dates
}

// StaticProvider 固定日期集合提供器（测试和手工配置使用）
type StaticProvider struct {
	dates map[string]bool
}

// NewStaticProvider 创建固定集合提供器
func NewStaticProvider(dates []string) *StaticProvider {
	set := make(map[string]bool, len(dates))
	for _, d := range dates {
		set[d] = true
	}
	return &StaticProvider{dates: set}
}

// HolidayDates 返回固定集合（忽略辖区和年份）
func (p *StaticProvider) HolidayDates(_ string, _ []int) (map[string]bool, error) {
	out := make(map[string]bool, len(p.dates))
	for d := range p.dates {
		out[d] = true
	}
	return out, nil
}
