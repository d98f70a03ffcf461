package model

import (
	"testing"
)

func TestShiftCode_Duration(t *testing.T) {
	tests := []struct {
		code    string
		begin   string
		end     string
		minutes int
		crosses bool
	}{
		{"07AJ", "07:00", "15:30", 510, false},
		{"15NT", "15:00", "23:00", 480, false},
		{"23GT", "23:00", "07:00", 480, true}, // 跨午夜夜班
		{"00FD", "00:00", "08:30", 510, false},
	}

	for _, tt := range tests {
		s := &ShiftCode{Code: tt.code, BeginTime: tt.begin, EndTime: tt.end}
		if got := s.DurationMinutes(); got != tt.minutes {
			t.Errorf("%s: expected %d minutes, got %d", tt.code, tt.minutes, got)
		}
		if got := s.CrossesMidnight(); got != tt.crosses {
			t.Errorf("%s: expected crosses=%v, got %v", tt.code, tt.crosses, got)
		}
	}
}

func TestShiftCode_Category(t *testing.T) {
	tests := []struct {
		begin    string
		expected ShiftCategory
	}{
		{"06:00", CategoryMorning},
		{"07:30", CategoryMorning},
		{"14:00", CategoryAfternoon},
		{"21:59", CategoryAfternoon},
		{"22:00", CategoryNight},
		{"03:00", CategoryNight},
	}

	for _, tt := range tests {
		s := &ShiftCode{Code: "X", BeginTime: tt.begin, EndTime: "23:59"}
		if got := s.Category(); got != tt.expected {
			t.Errorf("begin=%s: expected %s, got %s", tt.begin, tt.expected, got)
		}
	}
}

func TestShiftCatalog_Lookup(t *testing.T) {
	catalog := NewShiftCatalog([]*ShiftCode{
		{Code: "07AJ", BeginTime: "07:00", EndTime: "15:00"},
	})

	if _, ok := catalog.Lookup("07AJ"); !ok {
		t.Error("Expected 07AJ to be found")
	}
	if _, ok := catalog.Lookup("99XX"); ok {
		t.Error("Expected 99XX to be missing")
	}
}

func TestShiftCatalog_ExpandSelection(t *testing.T) {
	catalog := NewShiftCatalog([]*ShiftCode{
		{Code: "07AJ", BeginTime: "07:00", EndTime: "15:00"}, // 早班 8h
		{Code: "08BJ", BeginTime: "08:00", EndTime: "16:00"}, // 早班 8h
		{Code: "15NT", BeginTime: "15:00", EndTime: "23:00"}, // 午班 8h
		{Code: "07LG", BeginTime: "07:00", EndTime: "19:00"}, // 早班 12h
	})

	// 按类别展开
	selected := catalog.ExpandSelection(nil, []ShiftCategory{CategoryMorning}, nil)
	if len(selected) != 3 {
		t.Errorf("Expected 3 morning codes, got %d", len(selected))
	}
	if !selected["07AJ"] || !selected["08BJ"] || !selected["07LG"] {
		t.Errorf("Unexpected morning selection: %v", selected)
	}

	// 按时长展开
	selected = catalog.ExpandSelection(nil, nil, []int{12})
	if len(selected) != 1 || !selected["07LG"] {
		t.Errorf("Expected only 07LG for 12h, got %v", selected)
	}

	// 直接代码与类别取并集
	selected = catalog.ExpandSelection([]string{"15NT"}, nil, []int{12})
	if len(selected) != 2 || !selected["15NT"] || !selected["07LG"] {
		t.Errorf("Expected union {15NT, 07LG}, got %v", selected)
	}
}
