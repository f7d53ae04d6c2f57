package service_test

import (
	"testing"

	"github.com/Mingzhe994/work-calendar-page/internal/model"
	"github.com/Mingzhe994/work-calendar-page/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestIssueLifecycle 创建、更新、解决
func TestIssueLifecycle(t *testing.T) {
	db := setupTestDB(t)
	svc := service.NewIssueService(db)

	issue, err := svc.Create(testUserID, &service.CreateIssueRequest{
		Title:       "数据口径不一致",
		Description: "两份报表数字对不上",
		Priority:    model.PriorityHigh,
	})
	require.NoError(t, err)
	assert.Equal(t, model.IssueStatusOpen, issue.Status)
	assert.Empty(t, issue.Solutions)

	newTitle := "报表口径不一致"
	updated, err := svc.Update(testUserID, issue.ID, &service.UpdateIssueRequest{Title: &newTitle})
	require.NoError(t, err)
	assert.Equal(t, "报表口径不一致", updated.Title)

	require.NoError(t, svc.Resolve(testUserID, issue.ID))

	got, err := svc.Get(testUserID, issue.ID)
	require.NoError(t, err)
	assert.Equal(t, model.IssueStatusResolved, got.Status)
	assert.NotNil(t, got.ResolvedAt)
}

// TestIssueOwnerIsolation 问题的归属校验
func TestIssueOwnerIsolation(t *testing.T) {
	db := setupTestDB(t)
	svc := service.NewIssueService(db)

	issue, err := svc.Create(testUserID, &service.CreateIssueRequest{Title: "私有问题"})
	require.NoError(t, err)

	_, err = svc.Get(2, issue.ID)
	assert.ErrorIs(t, err, service.ErrNotAuthorized)

	_, err = svc.Get(testUserID, 9999)
	assert.ErrorIs(t, err, service.ErrIssueNotFound)
}

// TestIssueSolutions 解决方案的追加与成功标记
func TestIssueSolutions(t *testing.T) {
	db := setupTestDB(t)
	svc := service.NewIssueService(db)

	issue, err := svc.Create(testUserID, &service.CreateIssueRequest{Title: "构建缓慢"})
	require.NoError(t, err)

	solutions, err := svc.AddSolution(testUserID, issue.ID, "开启增量构建")
	require.NoError(t, err)
	solutions, err = svc.AddSolution(testUserID, issue.ID, "升级构建机")
	require.NoError(t, err)
	assert.Equal(t, []string{"开启增量构建", "升级构建机"}, solutions)

	_, err = svc.MarkSolutionSuccessful(testUserID, issue.ID, 5)
	assert.ErrorIs(t, err, service.ErrIndexOutOfRange)

	marked, err := svc.MarkSolutionSuccessful(testUserID, issue.ID, 1)
	require.NoError(t, err)
	require.NotNil(t, marked.SuccessfulSolution)
	assert.Equal(t, "升级构建机", *marked.SuccessfulSolution)

	// 标记存储的是当时的文本值,之后列表变化不影响已存标记
	_, err = svc.AddSolution(testUserID, issue.ID, "清理依赖")
	require.NoError(t, err)
	got, err := svc.Get(testUserID, issue.ID)
	require.NoError(t, err)
	assert.Equal(t, "升级构建机", *got.SuccessfulSolution)
}

// TestIssueList 列表过滤与排序选项
func TestIssueList(t *testing.T) {
	db := setupTestDB(t)
	svc := service.NewIssueService(db)

	open, err := svc.Create(testUserID, &service.CreateIssueRequest{
		Title: "未解决", Priority: model.PriorityLow,
	})
	require.NoError(t, err)
	resolved, err := svc.Create(testUserID, &service.CreateIssueRequest{
		Title: "已解决", Priority: model.PriorityHigh,
	})
	require.NoError(t, err)
	require.NoError(t, svc.Resolve(testUserID, resolved.ID))

	onlyOpen, err := svc.List(testUserID, &service.ListIssuesOptions{OnlyOpen: true})
	require.NoError(t, err)
	require.Len(t, onlyOpen, 1)
	assert.Equal(t, open.ID, onlyOpen[0].ID)

	all, err := svc.List(testUserID, &service.ListIssuesOptions{IncludeResolved: true})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

// TestIssueDelete 删除问题
func TestIssueDelete(t *testing.T) {
	db := setupTestDB(t)
	svc := service.NewIssueService(db)

	issue, err := svc.Create(testUserID, &service.CreateIssueRequest{Title: "待删除"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(testUserID, issue.ID))

	_, err = svc.Get(testUserID, issue.ID)
	assert.ErrorIs(t, err, service.ErrIssueNotFound)
}
