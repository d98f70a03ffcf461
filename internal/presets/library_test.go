package presets

import (
	"testing"

	"github.com/xuanban/xuanban/pkg/model"
)

func TestGetCriteria(t *testing.T) {
	criteria := GetCriteria()

	if len(criteria) != 8 {
		t.Fatalf("Expected 8 criteria, got %d", len(criteria))
	}

	expected := []string{
		"group", "days_off", "shift",
		"four_day_block", "five_day_block",
		"weekend", "saturday", "sunday",
	}
	for i, name := range expected {
		if criteria[i].Name != name {
			t.Errorf("Expected criterion %s at position %d, got %s", name, i, criteria[i].Name)
		}
	}

	for _, c := range criteria {
		if c.Min != -5 || c.Max != 5 {
			t.Errorf("Expected weight range [-5, 5] for %s, got [%v, %v]", c.Name, c.Min, c.Max)
		}
		// 连班和周末类准则默认禁用，班组/休息日/班次默认启用
		switch c.Name {
		case "group", "days_off", "shift":
			if c.Default != 1 {
				t.Errorf("Expected default 1 for %s, got %v", c.Name, c.Default)
			}
		default:
			if c.Default != 0 {
				t.Errorf("Expected default 0 for %s, got %v", c.Name, c.Default)
			}
		}
	}
}

func TestFindPreset(t *testing.T) {
	preset, ok := FindPreset("balanced")
	if !ok {
		t.Fatal("Expected balanced preset to exist")
	}
	if preset.Weights != model.DefaultWeights() {
		t.Errorf("Expected balanced preset to use default weights, got %+v", preset.Weights)
	}

	if _, ok := FindPreset("不存在"); ok {
		t.Error("Expected lookup miss for unknown preset")
	}
}

func TestGetPresets_WeekendPair(t *testing.T) {
	guardian, ok := FindPreset("weekend_guardian")
	if !ok {
		t.Fatal("Expected weekend_guardian preset")
	}
	if guardian.Weights.Weekend <= 1 {
		t.Errorf("Expected boosted weekend weight, got %v", guardian.Weights.Weekend)
	}

	worker, ok := FindPreset("weekend_worker")
	if !ok {
		t.Fatal("Expected weekend_worker preset")
	}
	// 周末工作预设翻转周末类权重方向
	if worker.Weights.Weekend >= 0 || worker.Weights.Saturday >= 0 || worker.Weights.Sunday >= 0 {
		t.Errorf("Expected negative weekend-family weights, got %+v", worker.Weights)
	}
}

func TestGetLibrary(t *testing.T) {
	lib := GetLibrary()

	if len(lib.Criteria) != 8 {
		t.Errorf("Expected 8 criteria in library, got %d", len(lib.Criteria))
	}
	if len(lib.Presets) != 6 {
		t.Errorf("Expected 6 presets in library, got %d", len(lib.Presets))
	}

	// 预设名称唯一
	seen := make(map[string]bool)
	for _, p := range lib.Presets {
		if seen[p.Name] {
			t.Errorf("Duplicate preset name %s", p.Name)
		}
		seen[p.Name] = true
	}
}
