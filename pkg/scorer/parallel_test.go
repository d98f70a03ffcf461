package scorer

import (
	"context"
	"testing"

	"github.com/xuanban/xuanban/pkg/model"
)

func TestParallelScorer_ScoreBatch(t *testing.T) {
	p := NewParallelScorer(4)
	lines := []*model.BidLine{
		mondayLine("07AJ", "A"),
		wednesdayLine("15NT", "B"),
		mondayLine("23GT", "A"),
	}

	results := p.ScoreBatch(context.Background(), lines, testCatalog(), model.NewPreferenceCriteria(), nil)

	if len(results) != 3 {
		t.Fatalf("Expected 3 results, got %d", len(results))
	}
	// 完成顺序无要求，结果必须按输入顺序归位
	for i, br := range results {
		if br.Index != i {
			t.Errorf("Expected index %d at position %d, got %d", i, i, br.Index)
		}
		if br.Err != nil {
			t.Errorf("Unexpected error at %d: %v", i, br.Err)
		}
		if br.Result == nil || br.Result.LineID != lines[i].ID {
			t.Errorf("Result %d does not match input line", i)
		}
	}
}

func TestParallelScorer_FailureIsolation(t *testing.T) {
	p := NewParallelScorer(2)
	bad := mondayLine("07AJ", "A")
	bad.Period.StartDate = "not-a-date"
	lines := []*model.BidLine{
		mondayLine("07AJ", "A"),
		bad,
		mondayLine("15NT", "B"),
	}

	results := p.ScoreBatch(context.Background(), lines, testCatalog(), model.NewPreferenceCriteria(), nil)

	if results[1].Err == nil || results[1].ErrMsg == "" {
		t.Error("Expected failure for invalid line")
	}
	// 单条失败不影响其余结果
	if results[0].Err != nil || results[2].Err != nil {
		t.Error("Expected other lines to score despite one failure")
	}

	failed := Failures(results)
	if len(failed) != 1 || failed[0].Index != 1 {
		t.Errorf("Expected single failure at index 1, got %v", failed)
	}
}

func TestParallelScorer_EmptyBatch(t *testing.T) {
	p := NewParallelScorer(4)
	results := p.ScoreBatch(context.Background(), nil, testCatalog(), nil, nil)
	if results != nil {
		t.Errorf("Expected nil results for empty batch, got %v", results)
	}
}

func TestNewParallelScorer_DefaultWorkers(t *testing.T) {
	p := NewParallelScorer(0)
	if p.workers != 4 {
		t.Errorf("Expected default worker count 4, got %d", p.workers)
	}
}

func TestFilterPositive(t *testing.T) {
	p := NewParallelScorer(4)
	criteria := model.NewPreferenceCriteria()
	criteria.Groups = []string{"A"}
	criteria.MandatoryGroup = true
	criteria.Weights.Weekend = 1

	lines := []*model.BidLine{
		mondayLine("07AJ", "A"),    // 满分
		wednesdayLine("07AJ", "A"), // 周末工作扣分
		mondayLine("07AJ", "B"),    // 硬性筛选落选
	}
	bad := mondayLine("07AJ", "A")
	bad.Period.StartDate = "bad"
	lines = append(lines, bad)

	results := p.ScoreBatch(context.Background(), lines, testCatalog(), criteria, nil)
	kept := FilterPositive(results)

	if len(kept) != 2 {
		t.Fatalf("Expected 2 kept results, got %d", len(kept))
	}
	// 按得分降序
	if kept[0].Score < kept[1].Score {
		t.Errorf("Expected descending order, got %v then %v", kept[0].Score, kept[1].Score)
	}
	if kept[0].LineID != lines[0].ID {
		t.Error("Expected full-score line first")
	}
	for _, r := range kept {
		if r.Excluded {
			t.Error("Excluded results must not pass the filter")
		}
	}
}

func TestFilterPositive_StableOnTies(t *testing.T) {
	a := &MatchResult{Score: 80, LineName: "甲"}
	b := &MatchResult{Score: 80, LineName: "乙"}
	results := []BatchResult{
		{Index: 0, Result: a},
		{Index: 1, Result: b},
	}

	kept := FilterPositive(results)
	if len(kept) != 2 || kept[0] != a || kept[1] != b {
		t.Error("Expected input order preserved on equal scores")
	}
}
