package mirror

import (
	"testing"

	"github.com/google/uuid"

	"github.com/xuanban/xuanban/pkg/model"
)

func testCatalog() model.ShiftCatalog {
	return model.NewShiftCatalog([]*model.ShiftCode{
		{Code: "07AJ", BeginTime: "07:00", EndTime: "15:30"},
		{Code: "15NT", BeginTime: "15:00", EndTime: "23:30"},
	})
}

// newLine 构造周期模式班表：workDays 个 code 槽位 + 补足到 7 天的休息
func newLine(name, code, group, startDate string, workDays, repeat int) *model.BidLine {
	pattern := make(model.CyclePattern, 0, 7)
	for i := 0; i < workDays; i++ {
		pattern = append(pattern, model.ShiftSlot(code))
	}
	for len(pattern) < 7 {
		pattern = append(pattern, model.OffSlot())
	}
	line := &model.BidLine{
		Name:      name,
		GroupCode: group,
		Pattern:   pattern,
		Period:    model.BidPeriod{StartDate: startDate, CycleLength: 7, RepeatCount: repeat},
	}
	line.ID = uuid.New()
	return line
}

func TestFindMirrors_InferredOffDates(t *testing.T) {
	m := NewMatcher()
	// 参考班表周一起始，休息日为每周周六周日
	reference := newLine("参考", "07AJ", "A", "2026-01-05", 5, 8)
	twin := newLine("镜像", "07AJ", "B", "2026-01-05", 5, 8)

	ranked, skipped, err := m.FindMirrors(reference, []*model.BidLine{twin}, nil, testCatalog())
	if err != nil {
		t.Fatalf("FindMirrors failed: %v", err)
	}
	if len(skipped) != 0 {
		t.Errorf("Expected no skipped candidates, got %v", skipped)
	}
	if len(ranked) != 1 {
		t.Fatalf("Expected 1 candidate, got %d", len(ranked))
	}

	c := ranked[0]
	if c.MatchPercentage != 100 || c.MatchedOffDayCount != 16 || c.TotalRequestedOffDayCount != 16 {
		t.Errorf("Expected full overlap on 16 inferred off days, got %+v", c)
	}
	if c.SharedShiftCodeScore != 2 {
		t.Errorf("Expected shared code score 2, got %d", c.SharedShiftCodeScore)
	}
}

func TestFindMirrors_Threshold(t *testing.T) {
	m := NewMatcher()
	reference := newLine("参考", "07AJ", "A", "2026-01-05", 5, 1)
	offDates := []string{"2026-01-08", "2026-01-09", "2026-01-10", "2026-01-11"}

	// 休息 3 天（周四五六日中的 4 天里休 3 天），达到门槛 2
	above := newLine("过线", "15NT", "B", "2026-01-05", 4, 1)
	// 仅周日休息，1 < 2 被过滤
	below := newLine("落选", "15NT", "B", "2026-01-05", 6, 1)

	ranked, _, err := m.FindMirrors(reference, []*model.BidLine{above, below}, offDates, testCatalog())
	if err != nil {
		t.Fatalf("FindMirrors failed: %v", err)
	}

	if len(ranked) != 1 {
		t.Fatalf("Expected only the above-threshold candidate, got %d", len(ranked))
	}
	if ranked[0].LineID != above.ID {
		t.Error("Expected above-threshold candidate kept")
	}
	if ranked[0].MatchedOffDayCount != 3 || ranked[0].MatchPercentage != 75 {
		t.Errorf("Unexpected match counts: %+v", ranked[0])
	}
}

func TestFindMirrors_ThresholdMinimumOne(t *testing.T) {
	m := NewMatcher()
	reference := newLine("参考", "07AJ", "A", "2026-01-05", 5, 1)
	// 单个目标休息日：门槛取下限 1
	offDates := []string{"2026-01-10"}

	match := newLine("休周六", "15NT", "B", "2026-01-05", 5, 1)
	miss := newLine("全工作", "15NT", "B", "2026-01-04", 7, 1)

	ranked, _, err := m.FindMirrors(reference, []*model.BidLine{match, miss}, offDates, testCatalog())
	if err != nil {
		t.Fatalf("FindMirrors failed: %v", err)
	}

	if len(ranked) != 1 || ranked[0].LineID != match.ID {
		t.Errorf("Expected only the matching candidate, got %v", ranked)
	}
}

func TestFindMirrors_ExcludesSelf(t *testing.T) {
	m := NewMatcher()
	reference := newLine("参考", "07AJ", "A", "2026-01-05", 5, 2)
	twin := newLine("镜像", "07AJ", "A", "2026-01-05", 5, 2)

	ranked, _, err := m.FindMirrors(reference, []*model.BidLine{reference, twin}, nil, testCatalog())
	if err != nil {
		t.Fatalf("FindMirrors failed: %v", err)
	}

	if len(ranked) != 1 || ranked[0].LineID != twin.ID {
		t.Errorf("Expected reference line excluded from candidates, got %v", ranked)
	}
}

func TestFindMirrors_Ordering(t *testing.T) {
	m := NewMatcher()
	reference := newLine("参考", "07AJ", "A", "2026-01-05", 5, 2)

	// 三个候选休息日完全重合：匹配率并列，按代码重合分次级排序
	sameGroup := newLine("同班组", "15NT", "A", "2026-01-05", 5, 2)   // +10
	sameCode := newLine("同代码", "07AJ", "B", "2026-01-05", 5, 2)    // +2
	unrelated := newLine("无重合", "15NT", "B", "2026-01-05", 5, 2)   // 0

	ranked, _, err := m.FindMirrors(reference,
		[]*model.BidLine{unrelated, sameCode, sameGroup}, nil, testCatalog())
	if err != nil {
		t.Fatalf("FindMirrors failed: %v", err)
	}

	if len(ranked) != 3 {
		t.Fatalf("Expected 3 candidates, got %d", len(ranked))
	}
	if ranked[0].LineID != sameGroup.ID || ranked[1].LineID != sameCode.ID || ranked[2].LineID != unrelated.ID {
		t.Errorf("Expected order 同班组/同代码/无重合, got %s %s %s",
			ranked[0].LineName, ranked[1].LineName, ranked[2].LineName)
	}
	if ranked[0].SharedShiftCodeScore != 10 || ranked[1].SharedShiftCodeScore != 2 {
		t.Errorf("Unexpected secondary scores: %+v", ranked)
	}
}

func TestFindMirrors_StableOnFullTie(t *testing.T) {
	m := NewMatcher()
	reference := newLine("参考", "07AJ", "A", "2026-01-05", 5, 1)

	first := newLine("甲", "15NT", "B", "2026-01-05", 5, 1)
	second := newLine("乙", "15NT", "B", "2026-01-05", 5, 1)

	ranked, _, err := m.FindMirrors(reference, []*model.BidLine{first, second}, nil, testCatalog())
	if err != nil {
		t.Fatalf("FindMirrors failed: %v", err)
	}

	// 匹配率与代码分完全并列时保持输入顺序
	if len(ranked) != 2 || ranked[0].LineID != first.ID || ranked[1].LineID != second.ID {
		t.Errorf("Expected input order preserved on full tie, got %v", ranked)
	}
}

func TestFindMirrors_NoOffDays(t *testing.T) {
	m := NewMatcher()
	// 参考班表全工作，休息日为空：空结果而非错误
	reference := newLine("全工作", "07AJ", "A", "2026-01-05", 7, 2)
	candidate := newLine("候选", "15NT", "B", "2026-01-05", 5, 2)

	ranked, skipped, err := m.FindMirrors(reference, []*model.BidLine{candidate}, nil, testCatalog())
	if err != nil {
		t.Fatalf("FindMirrors failed: %v", err)
	}
	if len(ranked) != 0 || len(skipped) != 0 {
		t.Errorf("Expected empty result for reference with no off days, got %v %v", ranked, skipped)
	}
}

func TestFindMirrors_SkipsUnresolvable(t *testing.T) {
	m := NewMatcher()
	reference := newLine("参考", "07AJ", "A", "2026-01-05", 5, 2)

	// 周期不覆盖参考休息日的候选解析失败，跳过但不阻断整批
	short := newLine("短周期", "15NT", "B", "2026-02-01", 5, 1)
	good := newLine("正常", "15NT", "B", "2026-01-05", 5, 2)

	ranked, skipped, err := m.FindMirrors(reference, []*model.BidLine{short, good}, nil, testCatalog())
	if err != nil {
		t.Fatalf("FindMirrors failed: %v", err)
	}

	if len(skipped) != 1 || skipped[0].Index != 0 || skipped[0].LineID != short.ID {
		t.Errorf("Expected short-period candidate skipped, got %v", skipped)
	}
	if skipped[0].Reason == "" {
		t.Error("Expected skip reason populated")
	}
	if len(ranked) != 1 || ranked[0].LineID != good.ID {
		t.Errorf("Expected remaining candidate ranked, got %v", ranked)
	}
}
