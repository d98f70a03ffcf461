package model

import (
	"testing"
)

func TestParsePattern(t *testing.T) {
	slots := map[string]string{
		"1": "07AJ",
		"2": "07AJ",
		"3": "----",
		"4": "15NT",
		"5": "----",
	}

	pattern, err := ParsePattern(slots, "")
	if err != nil {
		t.Fatalf("ParsePattern failed: %v", err)
	}

	if pattern.Length() != 5 {
		t.Errorf("Expected length 5, got %d", pattern.Length())
	}
	if pattern.WorkingDays() != 3 {
		t.Errorf("Expected 3 working days, got %d", pattern.WorkingDays())
	}

	slot, err := pattern.At(3)
	if err != nil {
		t.Fatalf("At(3) failed: %v", err)
	}
	if slot.IsWorking() {
		t.Error("Expected day 3 to be off")
	}

	slot, _ = pattern.At(4)
	if !slot.IsWorking() || slot.Code != "15NT" {
		t.Errorf("Expected day 4 to be shift 15NT, got %+v", slot)
	}
}

func TestParsePattern_LeadingZeroKeys(t *testing.T) {
	slots := map[string]string{
		"01": "07AJ",
		"02": "----",
	}

	pattern, err := ParsePattern(slots, "")
	if err != nil {
		t.Fatalf("ParsePattern failed: %v", err)
	}
	if pattern.Length() != 2 {
		t.Errorf("Expected length 2, got %d", pattern.Length())
	}
}

func TestParsePattern_CustomSentinel(t *testing.T) {
	slots := map[string]string{
		"1": "OFF",
		"2": "07AJ",
	}

	pattern, err := ParsePattern(slots, "OFF")
	if err != nil {
		t.Fatalf("ParsePattern failed: %v", err)
	}

	slot, _ := pattern.At(1)
	if slot.IsWorking() {
		t.Error("Expected custom sentinel to produce an off slot")
	}
}

func TestParsePattern_Errors(t *testing.T) {
	// 空模式
	if _, err := ParsePattern(map[string]string{}, ""); err == nil {
		t.Error("Expected error for empty pattern")
	}

	// 序号超出范围
	if _, err := ParsePattern(map[string]string{"1": "A", "3": "B"}, ""); err == nil {
		t.Error("Expected error for out-of-range index")
	}

	// 非数字序号
	if _, err := ParsePattern(map[string]string{"a": "A"}, ""); err == nil {
		t.Error("Expected error for non-numeric index")
	}
}

func TestParsePatternSlice(t *testing.T) {
	pattern, err := ParsePatternSlice([]string{"07AJ", "----", "15NT"}, "")
	if err != nil {
		t.Fatalf("ParsePatternSlice failed: %v", err)
	}
	if pattern.Length() != 3 {
		t.Errorf("Expected length 3, got %d", pattern.Length())
	}
	if pattern.WorkingDays() != 2 {
		t.Errorf("Expected 2 working days, got %d", pattern.WorkingDays())
	}
}

func TestCyclePattern_At_OutOfRange(t *testing.T) {
	pattern := CyclePattern{ShiftSlot("07AJ")}

	if _, err := pattern.At(0); err == nil {
		t.Error("Expected error for index 0")
	}
	if _, err := pattern.At(2); err == nil {
		t.Error("Expected error for index beyond length")
	}
}

func TestCyclePattern_DistinctShiftCodes(t *testing.T) {
	pattern := CyclePattern{
		ShiftSlot("07AJ"),
		ShiftSlot("15NT"),
		OffSlot(),
		ShiftSlot("07AJ"),
		ShiftSlot("23GT"),
	}

	codes := pattern.DistinctShiftCodes()
	if len(codes) != 3 {
		t.Fatalf("Expected 3 distinct codes, got %d", len(codes))
	}
	// 按首次出现顺序
	expected := []string{"07AJ", "15NT", "23GT"}
	for i, code := range expected {
		if codes[i] != code {
			t.Errorf("Expected code %s at position %d, got %s", code, i, codes[i])
		}
	}
}

func TestBidPeriod_TotalDays(t *testing.T) {
	period := BidPeriod{StartDate: "2026-01-05", CycleLength: 7, RepeatCount: 8}
	if period.TotalDays() != 56 {
		t.Errorf("Expected 56 total days, got %d", period.TotalDays())
	}
}

func TestBidPeriod_Years(t *testing.T) {
	// 跨年周期
	period := BidPeriod{StartDate: "2025-12-01", CycleLength: 28, RepeatCount: 2}
	years := period.Years()
	if len(years) != 2 || years[0] != 2025 || years[1] != 2026 {
		t.Errorf("Expected [2025 2026], got %v", years)
	}

	// 单年周期
	period = BidPeriod{StartDate: "2026-01-05", CycleLength: 7, RepeatCount: 4}
	years = period.Years()
	if len(years) != 1 || years[0] != 2026 {
		t.Errorf("Expected [2026], got %v", years)
	}
}

func TestDaysBetween(t *testing.T) {
	d1, _ := ParseDate("2026-01-05")
	d2, _ := ParseDate("2026-01-12")
	if got := DaysBetween(d1, d2); got != 7 {
		t.Errorf("Expected 7 days, got %d", got)
	}
	if got := DaysBetween(d2, d1); got != -7 {
		t.Errorf("Expected -7 days, got %d", got)
	}
}
