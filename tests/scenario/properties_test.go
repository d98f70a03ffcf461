package scenario

import (
	"strconv"
	"testing"

	"github.com/xuanban/xuanban/pkg/cycle"
	"github.com/xuanban/xuanban/pkg/model"
	"github.com/xuanban/xuanban/pkg/scorer"
	"github.com/xuanban/xuanban/pkg/stats"
	"github.com/xuanban/xuanban/pkg/validator"
)

// 覆盖不同结构的周期模式
var propertyPatterns = [][]string{
	{"07AJ", "07AJ", "07AJ", "07AJ", "07AJ", "----", "----"},
	{"23GT", "----", "23GT", "----", "23GT", "----", "23GT"},
	{"15NT", "15NT", "15NT", "15NT", "15NT", "15NT", "----"},
	{"----", "----", "----", "----", "----", "----", "----"},
	{"07AJ", "07AJ", "07AJ", "07AJ", "07AJ", "07AJ", "07AJ"},
}

// TestBlockHistogramConsistency 工作块直方图各桶计数×桶长之和等于工作日总数
// 6+ 桶无法精确还原长度，选用不产生 6+ 块的模式
func TestBlockHistogramConsistency(t *testing.T) {
	analyzer := stats.NewScheduleAnalyzer()
	for _, slots := range propertyPatterns[:2] {
		pattern := mustPattern(t, slots)
		m, err := analyzer.AnalyzeBidPeriod(pattern, biddingPeriod, nil)
		if err != nil {
			t.Fatalf("AnalyzeBidPeriod failed: %v", err)
		}

		workSum := 0
		for bucket, count := range m.WorkBlocks {
			length, err := strconv.Atoi(bucket)
			if err != nil {
				t.Fatalf("Unexpected overflow bucket %s for pattern %v", bucket, slots)
			}
			workSum += length * count
		}
		if workSum != m.WorkDays {
			t.Errorf("Pattern %v: block sum %d != work days %d", slots, workSum, m.WorkDays)
		}

		offSum := 0
		for bucket, count := range m.OffBlocks {
			length, err := strconv.Atoi(bucket)
			if err != nil {
				t.Fatalf("Unexpected overflow bucket %s for pattern %v", bucket, slots)
			}
			offSum += length * count
		}
		if offSum != m.OffDays {
			t.Errorf("Pattern %v: off-block sum %d != off days %d", slots, offSum, m.OffDays)
		}
	}
}

// TestWeekendCategoriesExhaustive 每个周末对恰好归入一个类别
func TestWeekendCategoriesExhaustive(t *testing.T) {
	analyzer := stats.NewScheduleAnalyzer()
	for _, slots := range propertyPatterns {
		pattern := mustPattern(t, slots)
		m, err := analyzer.AnalyzeBidPeriod(pattern, biddingPeriod, nil)
		if err != nil {
			t.Fatalf("AnalyzeBidPeriod failed: %v", err)
		}

		// 56 天周一起始覆盖 8 个完整周末对
		if m.TotalWeekendPairs() != 8 {
			t.Errorf("Pattern %v: expected 8 weekend pairs, got %d (worked=%d satOnly=%d sunOnly=%d off=%d)",
				slots, m.TotalWeekendPairs(),
				m.WeekendsWorked, m.SaturdaysOnly, m.SundaysOnly, m.WeekendsOff)
		}
	}
}

// TestCycleTilingPeriodic 平铺是周期性的：第 d 天的分配等于模式第 (d mod L)+1 槽
func TestCycleTilingPeriodic(t *testing.T) {
	resolver := cycle.NewResolver()
	for _, slots := range propertyPatterns {
		pattern := mustPattern(t, slots)
		days, err := resolver.Resolve(pattern, biddingPeriod)
		if err != nil {
			t.Fatalf("Resolve failed: %v", err)
		}

		for d, day := range days {
			idx := (d % biddingPeriod.CycleLength) + 1
			expected, err := pattern.At(idx)
			if err != nil {
				t.Fatalf("At(%d) failed: %v", idx, err)
			}
			if day.Assignment != expected || day.CycleDayIndex != idx {
				t.Errorf("Pattern %v day %d: expected slot %d assignment %+v, got %+v",
					slots, d, idx, expected, day.Assignment)
			}
		}
	}
}

// TestScoreMonotonicWeight 加重单项权重且该项为满分时总分不降低
func TestScoreMonotonicWeight(t *testing.T) {
	s := scorer.NewScorer()
	// 周末全休的班表：整周末准则满分
	line := buildLine(t, "白班", "ICU",
		[]string{"07AJ", "07AJ", "07AJ", "07AJ", "07AJ", "----", "----"}, "2026-01-05")

	prev := -1.0
	for _, w := range []float64{1, 2, 3, 5} {
		criteria := model.NewPreferenceCriteria()
		criteria.ShiftCodes = []string{"15NT"}
		criteria.Weights.Weekend = w

		result, err := s.Score(line, biddingCatalog(), criteria, nil)
		if err != nil {
			t.Fatalf("Score failed: %v", err)
		}
		if result.Score < prev {
			t.Errorf("Weight %v: score %v dropped below %v", w, result.Score, prev)
		}
		prev = result.Score
	}
}

// TestDayOffBoundaryPercentages 全冲突为 0%，全匹配为 100%
func TestDayOffBoundaryPercentages(t *testing.T) {
	line := buildLine(t, "白班", "ICU",
		[]string{"07AJ", "07AJ", "07AJ", "07AJ", "07AJ", "----", "----"}, "2026-01-05")

	resolver := cycle.NewResolver()
	offDates, err := resolver.OffDates(line.Pattern, line.Period)
	if err != nil {
		t.Fatalf("OffDates failed: %v", err)
	}

	detector := validator.NewDayOffDetector()
	full, err := detector.Detect(line, offDates[:4], biddingCatalog())
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if full.MatchPercentage != 100 {
		t.Errorf("Expected 100%% for all-off request set, got %d%%", full.MatchPercentage)
	}

	// 全部落在工作日
	workDates := []string{"2026-01-05", "2026-01-06", "2026-01-07"}
	none, err := detector.Detect(line, workDates, biddingCatalog())
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if none.MatchPercentage != 0 {
		t.Errorf("Expected 0%% for all-conflict request set, got %d%%", none.MatchPercentage)
	}
}
