package service_test

import (
	"testing"
	"time"

	"github.com/Mingzhe994/work-calendar-page/internal/model"
	"github.com/Mingzhe994/work-calendar-page/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestAnalyticsEmpty 没有任务时所有统计为零值
func TestAnalyticsEmpty(t *testing.T) {
	db := setupTestDB(t)
	svc := service.NewAnalyticsService(db)

	data, err := svc.GetAnalytics(testUserID)
	require.NoError(t, err)
	assert.Zero(t, data.TotalCompleted)
	assert.Zero(t, data.MonthOverMonthChange)
	assert.Empty(t, data.TopTaskType)
	assert.Len(t, data.Chart.Labels, 6)
	assert.Len(t, data.Chart.Data, 6)
}

// TestAnalyticsCounts 完成数量、环比与最多类型
func TestAnalyticsCounts(t *testing.T) {
	db := setupTestDB(t)
	svc := service.NewAnalyticsService(db)

	userID := testUserID
	now := model.BeijingNow()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	lastMonth := monthStart.AddDate(0, 0, -10)

	mkTask := func(taskType string, completed time.Time) *model.TaskModel {
		created := completed.AddDate(0, 0, -2)
		return &model.TaskModel{
			Title:       "完成的任务",
			TaskType:    taskType,
			StartDate:   model.DateOf(created),
			Status:      model.TaskStatusCompleted,
			Priority:    model.PriorityMedium,
			CreatedAt:   created,
			UpdatedAt:   completed,
			CompletedAt: &completed,
			UserID:      &userID,
		}
	}

	// 本月两条"商业计划",上月一条"管理报告"
	require.NoError(t, db.Create(mkTask("商业计划", now)).Error)
	require.NoError(t, db.Create(mkTask("商业计划", now)).Error)
	require.NoError(t, db.Create(mkTask("管理报告", lastMonth)).Error)

	// 其他用户的任务不计入
	otherID := uint(2)
	other := mkTask("商业计划", now)
	other.UserID = &otherID
	require.NoError(t, db.Create(other).Error)

	data, err := svc.GetAnalytics(userID)
	require.NoError(t, err)

	assert.Equal(t, int64(2), data.MonthlyCompleted)
	assert.Equal(t, int64(1), data.LastMonthCompleted)
	assert.Equal(t, float64(100), data.MonthOverMonthChange)
	assert.Equal(t, int64(3), data.TotalCompleted)
	assert.Equal(t, "商业计划", data.TopTaskType)
	assert.Equal(t, float64(2), data.AverageDays)
}
