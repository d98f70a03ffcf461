// Package mirror 提供按休息日重合度排名相似班表的功能
package mirror

import (
	"sort"

	"github.com/google/uuid"

	"github.com/xuanban/xuanban/pkg/cycle"
	"github.com/xuanban/xuanban/pkg/model"
	"github.com/xuanban/xuanban/pkg/validator"
)

// 次级排名加分
const (
	sharedCodeBonus = 2  // 每个与参考班表共享的去重班次代码
	sameGroupBonus  = 10 // 同班组熟悉度加分，有意远大于代码重合
)

// MirrorCandidate 镜像班表候选
type MirrorCandidate struct {
	LineID                    uuid.UUID `json:"line_id"`
	LineName                  string    `json:"line_name,omitempty"`
	MatchedOffDayCount        int       `json:"matched_off_day_count"`
	TotalRequestedOffDayCount int       `json:"total_requested_off_day_count"`
	MatchPercentage           int       `json:"match_percentage"`
	SharedShiftCodeScore      int       `json:"shared_shift_code_score"`
}

// SkippedCandidate 解析失败被跳过的候选（单条失败不阻断整批排名）
type SkippedCandidate struct {
	Index  int       `json:"index"`
	LineID uuid.UUID `json:"line_id"`
	Reason string    `json:"reason"`
}

// Matcher 镜像班表匹配器
type Matcher struct {
	resolver *cycle.Resolver
	detector *validator.DayOffDetector
}

// NewMatcher 创建镜像班表匹配器
func NewMatcher() *Matcher {
	return &Matcher{
		resolver: cycle.NewResolver(),
		detector: validator.NewDayOffDetector(),
	}
}

// FindMirrors 按参考班表的休息日对候选班表排名
// offDates 为空时由参考班表自身的休息日推导；
// 候选入选门槛为目标休息日的一半（向下取整，最少 1 天）在候选班表中同样休息
func (m *Matcher) FindMirrors(reference *model.BidLine, candidates []*model.BidLine, offDates []string, catalog model.ShiftCatalog) ([]MirrorCandidate, []SkippedCandidate, error) {
	if offDates == nil {
		inferred, err := m.resolver.OffDates(reference.Pattern, reference.Period)
		if err != nil {
			return nil, nil, err
		}
		offDates = inferred
	}

	// 零休息日：空结果而非错误
	if len(offDates) == 0 {
		return []MirrorCandidate{}, nil, nil
	}

	threshold := len(offDates) / 2
	if threshold < 1 {
		threshold = 1
	}

	referenceCodes := make(map[string]bool)
	for _, code := range reference.Pattern.DistinctShiftCodes() {
		referenceCodes[code] = true
	}

	var ranked []MirrorCandidate
	var skipped []SkippedCandidate

	for i, candidate := range candidates {
		if candidate.ID == reference.ID {
			continue
		}

		report, err := m.detector.Detect(candidate, offDates, catalog)
		if err != nil {
			skipped = append(skipped, SkippedCandidate{
				Index:  i,
				LineID: candidate.ID,
				Reason: err.Error(),
			})
			continue
		}

		if report.MatchedCount() < threshold {
			continue
		}

		ranked = append(ranked, MirrorCandidate{
			LineID:                    candidate.ID,
			LineName:                  candidate.Name,
			MatchedOffDayCount:        report.MatchedCount(),
			TotalRequestedOffDayCount: len(offDates),
			MatchPercentage:           report.MatchPercentage,
			SharedShiftCodeScore:      m.sharedCodeScore(reference, candidate, referenceCodes),
		})
	}

	// 稳定排序：匹配率降序，代码重合分降序，其余保持输入顺序
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].MatchPercentage != ranked[j].MatchPercentage {
			return ranked[i].MatchPercentage > ranked[j].MatchPercentage
		}
		return ranked[i].SharedShiftCodeScore > ranked[j].SharedShiftCodeScore
	})

	return ranked, skipped, nil
}

// sharedCodeScore 计算次级排名分：共享代码每个 +2，同班组 +10
func (m *Matcher) sharedCodeScore(reference, candidate *model.BidLine, referenceCodes map[string]bool) int {
	score := 0
	for _, code := range candidate.Pattern.DistinctShiftCodes() {
		if referenceCodes[code] {
			score += sharedCodeBonus
		}
	}
	if candidate.GroupCode != "" && candidate.GroupCode == reference.GroupCode {
		score += sameGroupBonus
	}
	return score
}
