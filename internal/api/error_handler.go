package api

import (
	"errors"
	"net/http"

	"github.com/Mingzhe994/work-calendar-page/internal/service"
	"github.com/gin-gonic/gin"
)

// ServiceError 将服务层错误翻译为 HTTP 响应
// 服务层只返回分类后的错误值,状态码映射集中在这里,
// 校验失败与存储故障对调用方是可区分的
func ServiceError(c *gin.Context, err error) {
	var inUse *service.WorkflowInUseError
	if errors.As(err, &inUse) {
		Error(c, http.StatusConflict, "workflow in use", inUse.Error())
		return
	}

	var storage *service.StorageError
	if errors.As(err, &storage) {
		GetLogger().WithField("error", storage.Err.Error()).Error("storage failure")
		Error(c, http.StatusInternalServerError, "internal server error", "storage failure")
		return
	}

	switch {
	case errors.Is(err, service.ErrTaskNotFound),
		errors.Is(err, service.ErrWorkflowNotFound),
		errors.Is(err, service.ErrIssueNotFound),
		errors.Is(err, service.ErrUserNotFound):
		Error(c, http.StatusNotFound, "resource not found", err.Error())
	case errors.Is(err, service.ErrNotAuthorized):
		Error(c, http.StatusForbidden, "not authorized", err.Error())
	case errors.Is(err, service.ErrDuplicateName),
		errors.Is(err, service.ErrUsernameTaken),
		errors.Is(err, service.ErrEmailTaken):
		Error(c, http.StatusConflict, "duplicate resource", err.Error())
	case errors.Is(err, service.ErrInvalidState):
		Error(c, http.StatusConflict, "invalid state", err.Error())
	case errors.Is(err, service.ErrInvalidStatus),
		errors.Is(err, service.ErrInvalidProgress),
		errors.Is(err, service.ErrInvalidPriority),
		errors.Is(err, service.ErrInvalidDate),
		errors.Is(err, service.ErrIndexOutOfRange),
		errors.Is(err, service.ErrEmptyContent):
		Error(c, http.StatusBadRequest, "invalid request", err.Error())
	case errors.Is(err, service.ErrInvalidCredentials):
		Error(c, http.StatusUnauthorized, "invalid credentials", err.Error())
	default:
		Error(c, http.StatusInternalServerError, "internal server error", err.Error())
	}
}
