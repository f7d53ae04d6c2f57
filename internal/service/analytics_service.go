package service

import (
	"fmt"
	"time"

	"github.com/Mingzhe994/work-calendar-page/internal/model"
	"gorm.io/gorm"
)

// AnalyticsService 分析统计服务接口
// 只读汇总查询,全部按归属用户过滤
type AnalyticsService interface {
	GetAnalytics(userID uint) (*AnalyticsData, error)
}

// AnalyticsData 完成情况统计
type AnalyticsData struct {
	MonthlyCompleted      int64     `json:"monthly_completed"`
	LastMonthCompleted    int64     `json:"last_month_completed"`
	MonthOverMonthChange  float64   `json:"month_over_month_change"`
	AverageDays           float64   `json:"average_days"`
	TotalCompleted        int64     `json:"total_completed"`
	TopTaskType           string    `json:"top_task_type"`
	Chart                 ChartData `json:"chart_data"`
}

// ChartData 最近六个月完成数量的图表数据
type ChartData struct {
	Labels []string `json:"labels"`
	Data   []int64  `json:"data"`
}

// analyticsService 分析统计服务实现
type analyticsService struct {
	db *gorm.DB
}

// NewAnalyticsService 创建分析统计服务
func NewAnalyticsService(db *gorm.DB) AnalyticsService {
	return &analyticsService{db: db}
}

// GetAnalytics 获取完成情况统计
func (s *analyticsService) GetAnalytics(userID uint) (*AnalyticsData, error) {
	now := model.BeijingNow()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	lastMonthStart := monthStart.AddDate(0, -1, 0)

	completed := func() *gorm.DB {
		return s.db.Model(&model.TaskModel{}).
			Where("status = ?", model.TaskStatusCompleted).
			Where("user_id = ?", userID)
	}

	var monthlyCompleted int64
	if err := completed().Where("completed_at >= ?", monthStart).Count(&monthlyCompleted).Error; err != nil {
		return nil, wrapStorage(err)
	}

	var lastMonthCompleted int64
	if err := completed().
		Where("completed_at >= ? AND completed_at < ?", lastMonthStart, monthStart).
		Count(&lastMonthCompleted).Error; err != nil {
		return nil, wrapStorage(err)
	}

	var change float64
	switch {
	case lastMonthCompleted > 0:
		change = roundTo1(float64(monthlyCompleted-lastMonthCompleted) / float64(lastMonthCompleted) * 100)
	case monthlyCompleted > 0:
		change = 100
	}

	// 平均完成天数
	var completedTasks []*model.TaskModel
	if err := completed().Where("completed_at IS NOT NULL").Find(&completedTasks).Error; err != nil {
		return nil, wrapStorage(err)
	}
	var totalDays, taskCount int64
	for _, task := range completedTasks {
		days := int64(task.CompletedAt.Sub(task.CreatedAt).Hours() / 24)
		totalDays += days
		taskCount++
	}
	var averageDays float64
	if taskCount > 0 {
		averageDays = roundTo1(float64(totalDays) / float64(taskCount))
	}

	var totalCompleted int64
	if err := completed().Count(&totalCompleted).Error; err != nil {
		return nil, wrapStorage(err)
	}

	// 完成数量最多的任务类型
	var typeCounts []struct {
		TaskType string
		Count    int64
	}
	if err := completed().
		Select("task_type, COUNT(*) as count").
		Group("task_type").
		Order("count DESC").
		Scan(&typeCounts).Error; err != nil {
		return nil, wrapStorage(err)
	}
	topTaskType := ""
	if len(typeCounts) > 0 {
		topTaskType = typeCounts[0].TaskType
	}

	// 最近六个月的完成数量
	chart := ChartData{
		Labels: make([]string, 0, 6),
		Data:   make([]int64, 0, 6),
	}
	for i := 5; i >= 0; i-- {
		start := monthStart.AddDate(0, -i, 0)
		end := start.AddDate(0, 1, 0)

		var count int64
		if err := completed().
			Where("completed_at >= ? AND completed_at < ?", start, end).
			Count(&count).Error; err != nil {
			return nil, wrapStorage(err)
		}
		chart.Labels = append(chart.Labels, fmt.Sprintf("%d月", int(start.Month())))
		chart.Data = append(chart.Data, count)
	}

	return &AnalyticsData{
		MonthlyCompleted:     monthlyCompleted,
		LastMonthCompleted:   lastMonthCompleted,
		MonthOverMonthChange: change,
		AverageDays:          averageDays,
		TotalCompleted:       totalCompleted,
		TopTaskType:          topTaskType,
		Chart:                chart,
	}, nil
}

func roundTo1(v float64) float64 {
	if v < 0 {
		return float64(int64(v*10-0.5)) / 10
	}
	return float64(int64(v*10+0.5)) / 10
}
