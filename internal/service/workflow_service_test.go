package service_test

import (
	"fmt"
	"testing"

	"github.com/Mingzhe994/work-calendar-page/internal/model"
	"github.com/Mingzhe994/work-calendar-page/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// createGlobalWorkflow 建一条全局工作流
func createGlobalWorkflow(t *testing.T, svc service.WorkflowService, name string, steps []string) *service.WorkflowDTO {
	t.Helper()
	workflow, err := svc.Create(nil, &service.CreateWorkflowRequest{
		Name:  name,
		Steps: steps,
	})
	require.NoError(t, err)
	return workflow
}

// TestWorkflowCreateAndGet 创建并读取工作流
func TestWorkflowCreateAndGet(t *testing.T) {
	db := setupTestDB(t)
	svc := service.NewWorkflowService(db, nil)

	created := createGlobalWorkflow(t, svc, "商业计划", []string{"市场调研", "撰写计划书"})

	got, err := svc.Get(testUserID, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "商业计划", got.Name)
	assert.Equal(t, []string{"市场调研", "撰写计划书"}, got.Steps)
	assert.False(t, got.IsDefault)
}

// TestWorkflowDuplicateNameScoped 名称唯一性按归属范围检查
func TestWorkflowDuplicateNameScoped(t *testing.T) {
	db := setupTestDB(t)
	svc := service.NewWorkflowService(db, nil)

	createGlobalWorkflow(t, svc, "商业计划", nil)

	_, err := svc.Create(nil, &service.CreateWorkflowRequest{Name: "商业计划"})
	assert.ErrorIs(t, err, service.ErrDuplicateName)

	// 同名的用户工作流不冲突
	userID := testUserID
	_, err = svc.Create(&userID, &service.CreateWorkflowRequest{Name: "商业计划"})
	assert.NoError(t, err)
}

// TestWorkflowOwnerIsolation 他人的工作流不可访问,全局工作流所有人可见
func TestWorkflowOwnerIsolation(t *testing.T) {
	db := setupTestDB(t)
	svc := service.NewWorkflowService(db, nil)

	userID := uint(2)
	private, err := svc.Create(&userID, &service.CreateWorkflowRequest{Name: "私有流程"})
	require.NoError(t, err)

	_, err = svc.Get(testUserID, private.ID)
	assert.ErrorIs(t, err, service.ErrNotAuthorized)

	global := createGlobalWorkflow(t, svc, "公共流程", nil)
	_, err = svc.Get(testUserID, global.ID)
	assert.NoError(t, err)

	_, err = svc.Get(testUserID, 9999)
	assert.ErrorIs(t, err, service.ErrWorkflowNotFound)
}

// TestEditGuardBlocksStructuralChanges 有活动任务引用时拒绝结构性修改
func TestEditGuardBlocksStructuralChanges(t *testing.T) {
	db := setupTestDB(t)
	svc := service.NewWorkflowService(db, nil)
	tasks := service.NewTaskService(db)

	workflow := createGlobalWorkflow(t, svc, "管理报告", []string{"收集数据", "撰写报告"})

	// 两个活动任务按名称引用该工作流
	for i := 0; i < 2; i++ {
		_, err := tasks.Create(testUserID, &service.CreateTaskRequest{
			Title: fmt.Sprintf("报告任务 %d", i), TaskType: "管理报告",
		})
		require.NoError(t, err)
	}

	_, err := svc.AddStep(testUserID, workflow.ID, "提交评审")
	var inUse *service.WorkflowInUseError
	require.ErrorAs(t, err, &inUse)
	assert.Equal(t, int64(2), inUse.Count)

	steps := []string{"只剩一步"}
	_, err = svc.Update(testUserID, workflow.ID, &service.UpdateWorkflowRequest{Steps: &steps})
	assert.ErrorAs(t, err, &inUse)

	err = svc.Delete(testUserID, workflow.ID)
	assert.ErrorAs(t, err, &inUse)
}

// TestEditGuardIgnoresCompletedTasks 已完成任务不阻止修改
func TestEditGuardIgnoresCompletedTasks(t *testing.T) {
	db := setupTestDB(t)
	svc := service.NewWorkflowService(db, nil)
	tasks := service.NewTaskService(db)

	workflow := createGlobalWorkflow(t, svc, "管理报告", []string{"收集数据"})

	task, err := tasks.Create(testUserID, &service.CreateTaskRequest{
		Title: "已完成的报告", TaskType: "管理报告",
	})
	require.NoError(t, err)
	require.NoError(t, tasks.Complete(testUserID, task.ID))

	// 其他类型的活动任务也不计数
	_, err = tasks.Create(testUserID, &service.CreateTaskRequest{
		Title: "别的任务", TaskType: "临时报告",
	})
	require.NoError(t, err)

	steps, err := svc.AddStep(testUserID, workflow.ID, "撰写报告")
	require.NoError(t, err)
	assert.Equal(t, []string{"收集数据", "撰写报告"}, steps)
}

// TestEditGuardAllowsMetadataChanges 名称与描述修改不受守卫约束
func TestEditGuardAllowsMetadataChanges(t *testing.T) {
	db := setupTestDB(t)
	svc := service.NewWorkflowService(db, nil)
	tasks := service.NewTaskService(db)

	workflow := createGlobalWorkflow(t, svc, "管理报告", []string{"收集数据"})

	_, err := tasks.Create(testUserID, &service.CreateTaskRequest{
		Title: "活动任务", TaskType: "管理报告",
	})
	require.NoError(t, err)

	newName := "管理汇报"
	newDesc := "描述更新"
	updated, err := svc.Update(testUserID, workflow.ID, &service.UpdateWorkflowRequest{
		Name:        &newName,
		Description: &newDesc,
	})
	require.NoError(t, err)
	assert.Equal(t, "管理汇报", updated.Name)
	assert.Equal(t, "描述更新", updated.Description)
}

// TestStepMutations 步骤的增删改与排序
func TestStepMutations(t *testing.T) {
	db := setupTestDB(t)
	svc := service.NewWorkflowService(db, nil)

	workflow := createGlobalWorkflow(t, svc, "创新管理", []string{"提出想法", "评估"})

	steps, err := svc.UpdateStepAt(testUserID, workflow.ID, 1, "可行性评估")
	require.NoError(t, err)
	assert.Equal(t, []string{"提出想法", "可行性评估"}, steps)

	steps, err = svc.AddStep(testUserID, workflow.ID, "立项")
	require.NoError(t, err)
	assert.Equal(t, []string{"提出想法", "可行性评估", "立项"}, steps)

	steps, err = svc.ReorderSteps(testUserID, workflow.ID, []string{"立项", "提出想法", "可行性评估"})
	require.NoError(t, err)
	assert.Equal(t, []string{"立项", "提出想法", "可行性评估"}, steps)

	steps, err = svc.DeleteStepAt(testUserID, workflow.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"提出想法", "可行性评估"}, steps)

	_, err = svc.UpdateStepAt(testUserID, workflow.ID, 5, "越界")
	assert.ErrorIs(t, err, service.ErrIndexOutOfRange)

	_, err = svc.DeleteStepAt(testUserID, workflow.ID, -1)
	assert.ErrorIs(t, err, service.ErrIndexOutOfRange)
}

// TestSetDefaultExclusive 同一范围内任意时刻至多一个默认工作流
func TestSetDefaultExclusive(t *testing.T) {
	db := setupTestDB(t)
	svc := service.NewWorkflowService(db, nil)

	first := createGlobalWorkflow(t, svc, "流程一", nil)
	second := createGlobalWorkflow(t, svc, "流程二", nil)

	_, err := svc.SetDefault(testUserID, first.ID)
	require.NoError(t, err)
	_, err = svc.SetDefault(testUserID, second.ID)
	require.NoError(t, err)

	var count int64
	require.NoError(t, db.Model(&model.WorkflowModel{}).
		Where("is_default = ? AND user_id IS NULL", true).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	got, err := svc.Get(testUserID, second.ID)
	require.NoError(t, err)
	assert.True(t, got.IsDefault)
}

// TestCreateDefaultExclusive 创建时携带默认标记同样保证范围内至多一个默认
func TestCreateDefaultExclusive(t *testing.T) {
	db := setupTestDB(t)
	svc := service.NewWorkflowService(db, nil)

	first, err := svc.Create(nil, &service.CreateWorkflowRequest{
		Name: "流程一", Steps: []string{"步骤一"}, IsDefault: true,
	})
	require.NoError(t, err)
	assert.True(t, first.IsDefault)

	second, err := svc.Create(nil, &service.CreateWorkflowRequest{
		Name: "流程二", Steps: []string{"步骤一"}, IsDefault: true,
	})
	require.NoError(t, err)
	assert.True(t, second.IsDefault)

	var count int64
	require.NoError(t, db.Model(&model.WorkflowModel{}).
		Where("is_default = ? AND user_id IS NULL", true).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	got, err := svc.Get(testUserID, first.ID)
	require.NoError(t, err)
	assert.False(t, got.IsDefault)

	// 用户范围的默认标记与全局范围互不影响
	userID := uint(9)
	_, err = svc.Create(&userID, &service.CreateWorkflowRequest{
		Name: "流程三", IsDefault: true,
	})
	require.NoError(t, err)

	require.NoError(t, db.Model(&model.WorkflowModel{}).
		Where("is_default = ? AND user_id IS NULL", true).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

// TestCopyDefaultsForUser 副本命名与幂等性
func TestCopyDefaultsForUser(t *testing.T) {
	db := setupTestDB(t)
	svc := service.NewWorkflowService(db, nil)

	createGlobalWorkflow(t, svc, "商业计划", []string{"市场调研"})
	// 名称已带旧后缀的全局工作流,复制前剥离
	createGlobalWorkflow(t, svc, "管理报告 (用户ID: 42)", []string{"收集数据"})

	userID := uint(7)
	require.NoError(t, svc.CopyDefaultsForUser(userID))
	// 再次复制不产生重复
	require.NoError(t, svc.CopyDefaultsForUser(userID))

	copies, err := svc.List(&userID)
	require.NoError(t, err)
	require.Len(t, copies, 2)

	names := []string{copies[0].Name, copies[1].Name}
	assert.Contains(t, names, "商业计划 (用户ID: 7)")
	assert.Contains(t, names, "管理报告 (用户ID: 7)")
}

// TestInitializeDefaults 目录注入与跳过逻辑
func TestInitializeDefaults(t *testing.T) {
	db := setupTestDB(t)
	catalog := map[string][]string{
		"商业计划": {"市场调研", "撰写计划书"},
		"管理报告": {"收集数据", "撰写报告"},
	}
	svc := service.NewWorkflowService(db, catalog)

	require.NoError(t, svc.InitializeDefaults(catalog))

	workflows, err := svc.List(nil)
	require.NoError(t, err)
	assert.Len(t, workflows, 2)
	for _, workflow := range workflows {
		assert.False(t, workflow.IsDefault)
		assert.Contains(t, workflow.Description, "默认")
	}

	// 已有工作流时再次初始化不生效
	require.NoError(t, svc.InitializeDefaults(map[string][]string{"新类型": {"步骤"}}))
	workflows, err = svc.List(nil)
	require.NoError(t, err)
	assert.Len(t, workflows, 2)
}

// TestStepsByTaskType 用户副本优先,数据库没有时回退配置目录
func TestStepsByTaskType(t *testing.T) {
	db := setupTestDB(t)
	catalog := map[string][]string{"目录类型": {"目录步骤"}}
	svc := service.NewWorkflowService(db, catalog)

	createGlobalWorkflow(t, svc, "商业计划", []string{"全局步骤"})

	userID := testUserID
	_, err := svc.Create(&userID, &service.CreateWorkflowRequest{
		Name:  "商业计划",
		Steps: []string{"用户步骤"},
	})
	require.NoError(t, err)

	steps, err := svc.StepsByTaskType("商业计划", &userID)
	require.NoError(t, err)
	assert.Equal(t, []string{"用户步骤"}, steps)

	other := uint(9)
	steps, err = svc.StepsByTaskType("商业计划", &other)
	require.NoError(t, err)
	assert.Equal(t, []string{"全局步骤"}, steps)

	steps, err = svc.StepsByTaskType("目录类型", &userID)
	require.NoError(t, err)
	assert.Equal(t, []string{"目录步骤"}, steps)

	_, err = svc.StepsByTaskType("未知类型", &userID)
	assert.ErrorIs(t, err, service.ErrWorkflowNotFound)
}

// TestWorkflowInUseErrorMessage 守卫错误携带活动任务数
func TestWorkflowInUseErrorMessage(t *testing.T) {
	err := &service.WorkflowInUseError{Count: 3}
	assert.Contains(t, err.Error(), "3")
}
