// Package model 定义竞标班表分析引擎的核心数据模型
package model

import (
	"github.com/google/uuid"
)

// Worker 轮班员工
type Worker struct {
	BaseModel
	OrgID    uuid.UUID `json:"org_id" db:"org_id"`
	Name     string    `json:"name" db:"name"`
	Code     string    `json:"code" db:"code"`
	Email    string    `json:"email,omitempty" db:"email"`
	Status   string    `json:"status" db:"status"` // active/inactive/leave
	HireDate string    `json:"hire_date" db:"hire_date"`

	// 竞标偏好
	Criteria *PreferenceCriteria `json:"criteria,omitempty" db:"criteria"`
}

// IsActive 检查员工是否在职
func (w *Worker) IsActive() bool {
	return w.Status == "active"
}

// CriteriaWeights 偏好准则权重
// 权重为 0 表示禁用该准则；周末类权重为负表示偏好相反方向。
// 班组/休息日/班次权重默认为 1（无选择时中性满分，不影响结果）；
// 连班和周末类权重默认为 0：未显式启用的准则不得惩罚任何班表，
// 否则零筛选零请求的空偏好集会把周末工作的班表拉到 100 分以下
type CriteriaWeights struct {
	Group        float64 `json:"group"`          // 班组归属
	DaysOff      float64 `json:"days_off"`       // 指定休息日
	Shift        float64 `json:"shift"`          // 班次代码
	FourDayBlock float64 `json:"four_day_block"` // 4天连班
	FiveDayBlock float64 `json:"five_day_block"` // 5天连班
	Weekend      float64 `json:"weekend"`        // 整周末
	Saturday     float64 `json:"saturday"`       // 仅周六
	Sunday       float64 `json:"sunday"`         // 仅周日
}

// DefaultWeights 返回默认权重
func DefaultWeights() CriteriaWeights {
	return CriteriaWeights{
		Group:        1,
		DaysOff:      1,
		Shift:        1,
		FourDayBlock: 0,
		FiveDayBlock: 0,
		Weekend:      0,
		Saturday:     0,
		Sunday:       0,
	}
}

// PreferenceCriteria 员工加权偏好准则
type PreferenceCriteria struct {
	// 筛选条件
	Groups          []string        `json:"groups,omitempty"`           // 选中的班组
	ShiftCodes      []string        `json:"shift_codes,omitempty"`      // 直接选中的班次代码
	ShiftCategories []ShiftCategory `json:"shift_categories,omitempty"` // 选中的班次类别
	ShiftLengths    []int           `json:"shift_lengths,omitempty"`    // 选中的班次时长（小时）
	DaysOff         []string        `json:"days_off,omitempty"`         // 指定休息日期 YYYY-MM-DD

	// 硬性筛选：选中项零交集时得分必须为 0
	MandatoryGroup bool `json:"mandatory_group,omitempty"`
	MandatoryShift bool `json:"mandatory_shift,omitempty"`

	Weights CriteriaWeights `json:"weights"`
}

// NewPreferenceCriteria 创建带默认权重的偏好准则
func NewPreferenceCriteria() *PreferenceCriteria {
	return &PreferenceCriteria{
		Weights: DefaultWeights(),
	}
}

// HasShiftSelection 检查是否选择了任何班次筛选条件
func (c *PreferenceCriteria) HasShiftSelection() bool {
	return len(c.ShiftCodes) > 0 || len(c.ShiftCategories) > 0 || len(c.ShiftLengths) > 0
}
