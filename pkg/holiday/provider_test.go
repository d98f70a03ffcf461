package holiday

import (
	"testing"
)

func TestStaticProvider(t *testing.T) {
	p := NewStaticProvider([]string{"2026-01-01", "2026-12-25"})

	dates, err := p.HolidayDates("任意辖区", []int{2026})
	if err != nil {
		t.Fatalf("HolidayDates failed: %v", err)
	}

	if len(dates) != 2 || !dates["2026-01-01"] || !dates["2026-12-25"] {
		t.Errorf("Unexpected static dates: %v", dates)
	}
}

func TestCalendarProvider_US(t *testing.T) {
	p := NewCalendarProvider()

	dates, err := p.HolidayDates("us", []int{2026})
	if err != nil {
		t.Fatalf("HolidayDates failed: %v", err)
	}

	// 元旦与圣诞为固定日期节假日
	if !dates["2026-01-01"] {
		t.Error("Expected 2026-01-01 in us holidays")
	}
	if !dates["2026-12-25"] {
		t.Error("Expected 2026-12-25 in us holidays")
	}
	// 加拿大日不属于美国辖区
	if dates["2026-07-01"] {
		t.Error("Did not expect 2026-07-01 in us holidays")
	}
}

func TestCalendarProvider_CA(t *testing.T) {
	p := NewCalendarProvider()

	dates, err := p.HolidayDates("ca", []int{2026})
	if err != nil {
		t.Fatalf("HolidayDates failed: %v", err)
	}

	if !dates["2026-07-01"] {
		t.Error("Expected Canada Day 2026-07-01 in ca holidays")
	}
}

func TestCalendarProvider_CaseInsensitive(t *testing.T) {
	p := NewCalendarProvider()

	upper, err := p.HolidayDates("US", []int{2026})
	if err != nil {
		t.Fatalf("HolidayDates failed: %v", err)
	}
	lower, err := p.HolidayDates("us", []int{2026})
	if err != nil {
		t.Fatalf("HolidayDates failed: %v", err)
	}

	if len(upper) != len(lower) {
		t.Errorf("Expected case-insensitive jurisdiction, got %d vs %d dates", len(upper), len(lower))
	}
}

func TestCalendarProvider_UnknownJurisdictionFallback(t *testing.T) {
	p := NewCalendarProvider()

	// 未知辖区降级为回退集合，不返回错误
	dates, err := p.HolidayDates("mars", []int{2026})
	if err != nil {
		t.Fatalf("Expected fallback without error, got %v", err)
	}

	expected := []string{"2026-01-01", "2026-07-01", "2026-12-25"}
	if len(dates) != len(expected) {
		t.Fatalf("Expected %d fallback dates, got %d: %v", len(expected), len(dates), dates)
	}
	for _, d := range expected {
		if !dates[d] {
			t.Errorf("Expected fallback date %s", d)
		}
	}
}

func TestCalendarProvider_MultiYear(t *testing.T) {
	p := NewCalendarProvider()

	dates, err := p.HolidayDates("us", []int{2025, 2026})
	if err != nil {
		t.Fatalf("HolidayDates failed: %v", err)
	}

	// 跨年份合并
	if !dates["2025-12-25"] || !dates["2026-01-01"] {
		t.Error("Expected holidays from both years in merged set")
	}
}

func TestCalendarProvider_CacheObserver(t *testing.T) {
	p := NewCalendarProvider()

	hits := 0
	misses := 0
	p.SetCacheObserver(func(hit bool) {
		if hit {
			hits++
		} else {
			misses++
		}
	})

	// 首次查询未命中，重复查询命中
	if _, err := p.HolidayDates("us", []int{2026}); err != nil {
		t.Fatalf("HolidayDates failed: %v", err)
	}
	if misses != 1 || hits != 0 {
		t.Errorf("Expected 1 miss after first lookup, got hits=%d misses=%d", hits, misses)
	}

	if _, err := p.HolidayDates("us", []int{2026}); err != nil {
		t.Fatalf("HolidayDates failed: %v", err)
	}
	if hits != 1 || misses != 1 {
		t.Errorf("Expected 1 hit and 1 miss, got hits=%d misses=%d", hits, misses)
	}

	// 新年份是新的缓存键
	if _, err := p.HolidayDates("us", []int{2026, 2027}); err != nil {
		t.Fatalf("HolidayDates failed: %v", err)
	}
	if hits != 2 || misses != 2 {
		t.Errorf("Expected 2 hits and 2 misses, got hits=%d misses=%d", hits, misses)
	}
}

func TestCalendarProvider_CacheConsistency(t *testing.T) {
	p := NewCalendarProvider()

	first, err := p.HolidayDates("us", []int{2026})
	if err != nil {
		t.Fatalf("HolidayDates failed: %v", err)
	}
	second, err := p.HolidayDates("us", []int{2026})
	if err != nil {
		t.Fatalf("HolidayDates failed: %v", err)
	}

	if len(first) != len(second) {
		t.Fatalf("Expected stable cached result, got %d vs %d", len(first), len(second))
	}
	for d := range first {
		if !second[d] {
			t.Errorf("Expected cached result to contain %s", d)
		}
	}
}
