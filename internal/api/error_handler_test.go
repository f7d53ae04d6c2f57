package api_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Mingzhe994/work-calendar-page/internal/api"
	"github.com/Mingzhe994/work-calendar-page/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

// statusFor 跑一遍错误翻译拿到 HTTP 状态码
func statusFor(err error) int {
	gin.SetMode(gin.TestMode)
	recorder := httptest.NewRecorder()
	ctx, _ := gin.CreateTestContext(recorder)
	api.ServiceError(ctx, err)
	return recorder.Code
}

// TestServiceErrorMapping 服务层错误到 HTTP 状态码的映射
func TestServiceErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code int
	}{
		{"任务不存在", service.ErrTaskNotFound, http.StatusNotFound},
		{"工作流不存在", service.ErrWorkflowNotFound, http.StatusNotFound},
		{"无权访问", service.ErrNotAuthorized, http.StatusForbidden},
		{"名称重复", service.ErrDuplicateName, http.StatusConflict},
		{"状态不允许", service.ErrInvalidState, http.StatusConflict},
		{"非法状态值", service.ErrInvalidStatus, http.StatusBadRequest},
		{"非法进展值", service.ErrInvalidProgress, http.StatusBadRequest},
		{"非法日期", service.ErrInvalidDate, http.StatusBadRequest},
		{"下标越界", service.ErrIndexOutOfRange, http.StatusBadRequest},
		{"空内容", service.ErrEmptyContent, http.StatusBadRequest},
		{"凭证无效", service.ErrInvalidCredentials, http.StatusUnauthorized},
		{"工作流被占用", &service.WorkflowInUseError{Count: 2}, http.StatusConflict},
		{"存储故障", &service.StorageError{Err: errors.New("disk io")}, http.StatusInternalServerError},
		{"未知错误", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.code, statusFor(tc.err))
		})
	}
}
