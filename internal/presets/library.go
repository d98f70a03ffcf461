// Package presets 偏好准则预设库
package presets

import (
	"github.com/xuanban/xuanban/pkg/model"
)

// CriterionInfo 准则说明
type CriterionInfo struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	Description string `json:"description"`
	Default     float64 `json:"default"`
	Min         float64 `json:"min"`
	Max         float64 `json:"max"`
}

// PresetDefinition 权重预设定义
type PresetDefinition struct {
	Name        string                `json:"name"`
	DisplayName string                `json:"display_name"`
	Category    string                `json:"category"`
	Description string                `json:"description"`
	Weights     model.CriteriaWeights `json:"weights"`
}

// LibraryResponse 预设库响应
type LibraryResponse struct {
	Criteria []CriterionInfo    `json:"criteria"`
	Presets  []PresetDefinition `json:"presets"`
}

// GetCriteria 获取全部准则说明
func GetCriteria() []CriterionInfo {
	return []CriterionInfo{
		{
			Name:        "group",
			DisplayName: "班组归属",
			Description: "班表所属班组落在选中班组列表中时得满分。未选择班组时该准则中性。",
			Default:     1, Min: -5, Max: 5,
		},
		{
			Name:        "days_off",
			DisplayName: "指定休息日",
			Description: "指定的休息日期中有多少落在班表的休息日上。超出竞标周期的日期会被跳过并在解释中说明。",
			Default:     1, Min: -5, Max: 5,
		},
		{
			Name:        "shift",
			DisplayName: "班次匹配",
			Description: "班表实际使用的班次代码与选中班次（按代码、类别或时长）的匹配比例。",
			Default:     1, Min: -5, Max: 5,
		},
		{
			Name:        "four_day_block",
			DisplayName: "4天连班",
			Description: "4天连续工作块在全部工作块中的占比。默认禁用（权重0）。",
			Default:     0, Min: -5, Max: 5,
		},
		{
			Name:        "five_day_block",
			DisplayName: "5天连班",
			Description: "5天连续工作块在全部工作块中的占比。默认禁用（权重0）。",
			Default:     0, Min: -5, Max: 5,
		},
		{
			Name:        "weekend",
			DisplayName: "整周末休息",
			Description: "周六周日都休息的周末占比。权重为负表示偏好在周末工作。默认禁用（权重0）。",
			Default:     0, Min: -5, Max: 5,
		},
		{
			Name:        "saturday",
			DisplayName: "周六休息",
			Description: "不工作的周六占比。权重为负表示偏好周六工作。默认禁用（权重0）。",
			Default:     0, Min: -5, Max: 5,
		},
		{
			Name:        "sunday",
			DisplayName: "周日休息",
			Description: "不工作的周日占比。权重为负表示偏好周日工作。默认禁用（权重0）。",
			Default:     0, Min: -5, Max: 5,
		},
	}
}

// GetPresets 获取权重预设库
func GetPresets() []PresetDefinition {
	return []PresetDefinition{
		{
			Name:        "balanced",
			DisplayName: "均衡偏好",
			Category:    "通用",
			Description: "默认权重：班组、休息日、班次各占一份，连班与周末类准则禁用。",
			Weights:     model.DefaultWeights(),
		},
		{
			Name:        "weekend_guardian",
			DisplayName: "周末优先",
			Category:    "休息保障",
			Description: "加重整周末和周六周日休息的权重，适合重视家庭时间的员工。",
			Weights: model.CriteriaWeights{
				Group: 1, DaysOff: 1, Shift: 1,
				Weekend: 3, Saturday: 2, Sunday: 2,
			},
		},
		{
			Name:        "weekend_worker",
			DisplayName: "周末工作",
			Category:    "排班模式",
			Description: "周末类权重取负值，偏好在周末上班换取工作日休息。",
			Weights: model.CriteriaWeights{
				Group: 1, DaysOff: 1, Shift: 1,
				Weekend: -2, Saturday: -1, Sunday: -1,
			},
		},
		{
			Name:        "long_block",
			DisplayName: "长连班偏好",
			Category:    "排班模式",
			Description: "启用4天和5天连班准则，偏好集中工作换取集中休息。",
			Weights: model.CriteriaWeights{
				Group: 1, DaysOff: 1, Shift: 1,
				FourDayBlock: 2, FiveDayBlock: 3,
				Weekend: 1, Saturday: 1, Sunday: 1,
			},
		},
		{
			Name:        "shift_focused",
			DisplayName: "班次优先",
			Category:    "偏好",
			Description: "加重班次代码匹配的权重，适合对具体班次有强偏好的员工。",
			Weights: model.CriteriaWeights{
				Group: 1, DaysOff: 1, Shift: 4,
				Weekend: 1, Saturday: 1, Sunday: 1,
			},
		},
		{
			Name:        "days_off_focused",
			DisplayName: "指定休息日优先",
			Category:    "偏好",
			Description: "加重指定休息日的权重，适合有固定私人安排的员工。",
			Weights: model.CriteriaWeights{
				Group: 1, DaysOff: 4, Shift: 1,
				Weekend: 1, Saturday: 1, Sunday: 1,
			},
		},
	}
}

// GetLibrary 获取完整预设库
func GetLibrary() LibraryResponse {
	return LibraryResponse{
		Criteria: GetCriteria(),
		Presets:  GetPresets(),
	}
}

// FindPreset 按名称查找预设
func FindPreset(name string) (PresetDefinition, bool) {
	for _, p := range GetPresets() {
		if p.Name == name {
			return p, true
		}
	}
	return PresetDefinition{}, false
}
