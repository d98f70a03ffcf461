// Package scorer 提供班表与员工加权偏好的匹配评分
package scorer

import (
	"fmt"
	"math"
)

// CriterionType 评分准则类型
type CriterionType string

const (
	TypeGroup        CriterionType = "group"          // 班组归属
	TypeDaysOff      CriterionType = "days_off"       // 指定休息日
	TypeShift        CriterionType = "shift"          // 班次代码
	TypeFourDayBlock CriterionType = "four_day_block" // 4天连班
	TypeFiveDayBlock CriterionType = "five_day_block" // 5天连班
	TypeWeekend      CriterionType = "weekend"        // 整周末
	TypeSaturday     CriterionType = "saturday"       // 仅周六
	TypeSunday       CriterionType = "sunday"         // 仅周日
)

// criterionOrder 准则的固定评估与解释顺序
// 解释列表必须按此顺序输出，保证相同输入产生逐字节相同的结果
var criterionOrder = []CriterionType{
	TypeGroup,
	TypeDaysOff,
	TypeShift,
	TypeFourDayBlock,
	TypeFiveDayBlock,
	TypeWeekend,
	TypeSaturday,
	TypeSunday,
}

// criterionLabels 准则展示名称
var criterionLabels = map[CriterionType]string{
	TypeGroup:        "班组匹配",
	TypeDaysOff:      "休息日匹配",
	TypeShift:        "班次匹配",
	TypeFourDayBlock: "4天连班",
	TypeFiveDayBlock: "5天连班",
	TypeWeekend:      "周末工作",
	TypeSaturday:     "周六工作",
	TypeSunday:       "周日工作",
}

// PartialScore 单项准则的独立得分
type PartialScore struct {
	Type   CriterionType `json:"type"`
	Weight float64       `json:"weight"` // 原始权重（可为负）
	Score  float64       `json:"score"`  // [0, 1]
	Active bool          `json:"active"` // 权重非零
	Note   string        `json:"note,omitempty"`
}

// WeightedValue 返回参与求和的加权值
// 负权重表示偏好相反方向，曲线已在计算 Score 时翻转，这里取绝对值
func (p *PartialScore) WeightedValue() float64 {
	return math.Abs(p.Weight) * p.Score
}

// Phrase 生成该准则的解释短语
func (p *PartialScore) Phrase() string {
	label := criterionLabels[p.Type]
	if !p.Active {
		return fmt.Sprintf("%s: 未启用", label)
	}
	phrase := fmt.Sprintf("%s: %.0f%% (权重 %.1f)", label, p.Score*100, p.Weight)
	if p.Note != "" {
		phrase += "，" + p.Note
	}
	return phrase
}

// combine 将各项加权得分归一化为 0..100 的最终分
// 无任何启用准则时为中性满分
func combine(partials []*PartialScore) float64 {
	weightSum := 0.0
	valueSum := 0.0
	for _, p := range partials {
		if !p.Active {
			continue
		}
		weightSum += math.Abs(p.Weight)
		valueSum += p.WeightedValue()
	}
	if weightSum == 0 {
		return 100
	}
	score := valueSum / weightSum * 100
	// 固定到一位小数，保证确定性输出
	return math.Round(score*10) / 10
}
