// Package scorer 提供班表与员工加权偏好的匹配评分
package scorer

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/xuanban/xuanban/pkg/cycle"
	"github.com/xuanban/xuanban/pkg/errors"
	"github.com/xuanban/xuanban/pkg/model"
	"github.com/xuanban/xuanban/pkg/stats"
)

// MatchResult 匹配评分结果（按 班表×偏好 组合即时计算，引擎不持久化）
type MatchResult struct {
	LineID          uuid.UUID              `json:"line_id"`
	LineName        string                 `json:"line_name,omitempty"`
	Score           float64                `json:"score"` // 0..100
	Excluded        bool                   `json:"excluded"`
	Metrics         *stats.ScheduleMetrics `json:"metrics,omitempty"`
	Explanation     []string               `json:"explanation"`
	UnresolvedCodes []string               `json:"unresolved_codes,omitempty"`
}

// Scorer 偏好评分器
// 纯函数式：无共享可变状态，相同输入产生逐字节相同的得分与解释
type Scorer struct {
	resolver *cycle.Resolver
	analyzer *stats.ScheduleAnalyzer
}

// NewScorer 创建偏好评分器
func NewScorer() *Scorer {
	return &Scorer{
		resolver: cycle.NewResolver(),
		analyzer: stats.NewScheduleAnalyzer(),
	}
}

// Score 对单个班表按偏好准则评分
// holidays 可为 nil，只影响返回指标中的节假日计数，不参与评分
func (s *Scorer) Score(line *model.BidLine, catalog model.ShiftCatalog, criteria *model.PreferenceCriteria, holidays map[string]bool) (*MatchResult, error) {
	if line == nil {
		return nil, errors.InvalidInput("line", "班表为空")
	}
	if criteria == nil {
		criteria = model.NewPreferenceCriteria()
	}

	metrics, err := s.analyzer.AnalyzeBidPeriod(line.Pattern, line.Period, holidays)
	if err != nil {
		return nil, err
	}

	result := &MatchResult{
		LineID:   line.ID,
		LineName: line.Name,
		Metrics:  metrics,
	}

	// 未在目录中定义的班次代码按"工作日、时长未知"处理并上报，不阻断整批计算
	for _, code := range metrics.DistinctShiftCodes {
		if _, ok := catalog.Lookup(code); !ok {
			result.UnresolvedCodes = append(result.UnresolvedCodes, code)
		}
	}

	w := criteria.Weights
	partials := []*PartialScore{
		s.scoreGroup(line, criteria, w.Group),
		s.scoreDaysOff(line, criteria, w.DaysOff),
		s.scoreShift(metrics, catalog, criteria, w.Shift),
		s.scoreBlock(metrics, 4, w.FourDayBlock, TypeFourDayBlock),
		s.scoreBlock(metrics, 5, w.FiveDayBlock, TypeFiveDayBlock),
		s.scoreWeekendFamily(metrics.WeekendsWorked, metrics.TotalWeekendPairs(), w.Weekend, TypeWeekend),
		s.scoreWeekendFamily(metrics.SaturdaysOnly, metrics.TotalWeekendPairs(), w.Saturday, TypeSaturday),
		s.scoreWeekendFamily(metrics.SundaysOnly, metrics.TotalWeekendPairs(), w.Sunday, TypeSunday),
	}

	// 硬性筛选：零交集时得分恰为 0，下游按非正分过滤
	if excluded, reason := s.checkMandatory(line, metrics, catalog, criteria); excluded {
		result.Excluded = true
		result.Score = 0
		result.Explanation = []string{reason}
		return result, nil
	}

	result.Score = combine(partials)
	for _, p := range partials {
		result.Explanation = append(result.Explanation, p.Phrase())
	}
	return result, nil
}

// checkMandatory 检查硬性筛选条件
func (s *Scorer) checkMandatory(line *model.BidLine, metrics *stats.ScheduleMetrics, catalog model.ShiftCatalog, criteria *model.PreferenceCriteria) (bool, string) {
	if criteria.MandatoryGroup && len(criteria.Groups) > 0 && !containsString(criteria.Groups, line.GroupCode) {
		return true, fmt.Sprintf("硬性筛选: 班组 %s 不在选中班组内", line.GroupCode)
	}
	if criteria.MandatoryShift && criteria.HasShiftSelection() {
		selected := catalog.ExpandSelection(criteria.ShiftCodes, criteria.ShiftCategories, criteria.ShiftLengths)
		if countIntersection(metrics.DistinctShiftCodes, selected) == 0 {
			return true, "硬性筛选: 班次代码与选中集合零交集"
		}
	}
	return false, ""
}

// scoreGroup 班组归属准则：未选择班组时中性满分
func (s *Scorer) scoreGroup(line *model.BidLine, criteria *model.PreferenceCriteria, weight float64) *PartialScore {
	p := &PartialScore{Type: TypeGroup, Weight: weight, Active: weight != 0}
	if len(criteria.Groups) == 0 {
		p.Score = 1.0
		p.Note = "未选择班组"
		return p
	}
	if containsString(criteria.Groups, line.GroupCode) {
		p.Score = 1.0
	}
	return p
}

// scoreDaysOff 指定休息日准则：请求日期中落在休息日的比例
// 超出竞标周期的请求日期不参与比例计算，只在解释中说明（单条过期请求不应拉零整批得分）
func (s *Scorer) scoreDaysOff(line *model.BidLine, criteria *model.PreferenceCriteria, weight float64) *PartialScore {
	p := &PartialScore{Type: TypeDaysOff, Weight: weight, Active: weight != 0}
	if len(criteria.DaysOff) == 0 {
		p.Score = 1.0
		p.Note = "未请求休息日"
		return p
	}

	free := 0
	considered := 0
	skipped := 0
	for _, date := range criteria.DaysOff {
		assignment, err := s.resolver.AssignmentOn(line.Pattern, line.Period, date)
		if err != nil {
			skipped++
			continue
		}
		considered++
		if !assignment.IsWorking() {
			free++
		}
	}

	if considered == 0 {
		p.Score = 1.0
		p.Note = "请求日期均不在竞标周期内"
		return p
	}
	p.Score = float64(free) / float64(considered)
	p.Note = fmt.Sprintf("%d/%d 天休息", free, considered)
	if skipped > 0 {
		p.Note += fmt.Sprintf(", %d 天超出周期", skipped)
	}
	return p
}

// scoreShift 班次代码准则：班表去重代码落在选中集合内的比例
// 类别/时长筛选先展开为具体代码集合再比较
func (s *Scorer) scoreShift(metrics *stats.ScheduleMetrics, catalog model.ShiftCatalog, criteria *model.PreferenceCriteria, weight float64) *PartialScore {
	p := &PartialScore{Type: TypeShift, Weight: weight, Active: weight != 0}
	if !criteria.HasShiftSelection() {
		p.Score = 1.0
		p.Note = "未选择班次"
		return p
	}
	if len(metrics.DistinctShiftCodes) == 0 {
		p.Score = 1.0
		p.Note = "班表无班次"
		return p
	}
	selected := catalog.ExpandSelection(criteria.ShiftCodes, criteria.ShiftCategories, criteria.ShiftLengths)
	matched := countIntersection(metrics.DistinctShiftCodes, selected)
	p.Score = float64(matched) / float64(len(metrics.DistinctShiftCodes))
	p.Note = fmt.Sprintf("%d/%d 个代码匹配", matched, len(metrics.DistinctShiftCodes))
	return p
}

// scoreBlock 连班块长度准则：目标长度块占全部连班块的比例
// 默认权重为 0（禁用）：多数员工对块长度无偏好，启用后对排序影响显著
func (s *Scorer) scoreBlock(metrics *stats.ScheduleMetrics, length int, weight float64, ctype CriterionType) *PartialScore {
	p := &PartialScore{Type: ctype, Weight: weight, Active: weight != 0}
	if !p.Active {
		return p
	}
	total := metrics.WorkBlocks.TotalBlocks()
	if total == 0 {
		p.Score = 0
		p.Note = "无连班块"
		return p
	}
	count := metrics.WorkBlocks.Count(length)
	p.Score = float64(count) / float64(total)
	p.Note = fmt.Sprintf("%d/%d 个连班块", count, total)
	return p
}

// scoreWeekendFamily 周末类准则：默认越少越好
// 权重为负表示偏好相反方向（计数越多得分越高），绝对值参与归一化
func (s *Scorer) scoreWeekendFamily(count, totalPairs int, weight float64, ctype CriterionType) *PartialScore {
	p := &PartialScore{Type: ctype, Weight: weight, Active: weight != 0}
	if !p.Active {
		return p
	}
	if totalPairs == 0 {
		p.Score = 1.0
		p.Note = "周期内无周末"
		return p
	}
	fraction := float64(count) / float64(totalPairs)
	if weight < 0 {
		p.Score = fraction
	} else {
		p.Score = 1.0 - fraction
	}
	p.Note = fmt.Sprintf("%d/%d 个周末", count, totalPairs)
	return p
}

// containsString 检查字符串是否在切片内
func containsString(items []string, target string) bool {
	for _, item := range items {
		if item == target {
			return true
		}
	}
	return false
}

// countIntersection 统计代码列表与选中集合的交集大小
func countIntersection(codes []string, selected map[string]bool) int {
	count := 0
	for _, code := range codes {
		if selected[code] {
			count++
		}
	}
	return count
}
