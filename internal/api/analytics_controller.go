package api

import (
	"github.com/Mingzhe994/work-calendar-page/internal/service"
	"github.com/gin-gonic/gin"
)

// AnalyticsController 统计控制器
type AnalyticsController struct {
	analyticsService service.AnalyticsService
}

// NewAnalyticsController 创建统计控制器
func NewAnalyticsController(analyticsService service.AnalyticsService) *AnalyticsController {
	return &AnalyticsController{
		analyticsService: analyticsService,
	}
}

// GetAnalytics 返回任务完成情况统计
func (c *AnalyticsController) GetAnalytics(ctx *gin.Context) {
	data, err := c.analyticsService.GetAnalytics(CurrentUserID(ctx))
	if err != nil {
		ServiceError(ctx, err)
		return
	}

	Success(ctx, data)
}
