// Package handler 提供HTTP请求处理器
package handler

import (
	"net/http"

	"github.com/xuanban/xuanban/internal/presets"
	"github.com/xuanban/xuanban/pkg/errors"
)

// PresetsHandler 偏好预设处理器
type PresetsHandler struct{}

// NewPresetsHandler 创建偏好预设处理器
func NewPresetsHandler() *PresetsHandler {
	return &PresetsHandler{}
}

// Library 返回准则说明与权重预设库
func (h *PresetsHandler) Library(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持GET方法"))
		return
	}

	respondJSON(w, http.StatusOK, presets.GetLibrary())
}
