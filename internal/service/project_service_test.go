package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"taskman/internal/model"
	"taskman/pkg/rbac"
)

func projectServiceFixture() (*ProjectService, *fakeProjectStore, *fakeTaskStore, *fakeUserStore) {
	projects := newFakeProjectStore()
	tasks := newFakeTaskStore()
	users := newFakeUserStore()
	svc := NewProjectService(projects, tasks, users, zap.NewNop())
	return svc, projects, tasks, users
}

func TestProjectListVisibility(t *testing.T) {
	svc, projects, _, _ := projectServiceFixture()
	projects.add(model.Project{Name: "managed", ManagerID: 5})
	projects.add(model.Project{Name: "member", Team: []model.UserRef{{ID: 5}}})
	projects.add(model.Project{Name: "unrelated", ManagerID: 9})

	all, err := svc.List(context.Background(), identity(1, rbac.RoleAdmin))
	require.NoError(t, err)
	assert.Len(t, all, 3)

	mine, err := svc.List(context.Background(), identity(5, rbac.RoleEmployee))
	require.NoError(t, err)
	assert.Len(t, mine, 2)
}

func TestProjectGetAccess(t *testing.T) {
	svc, projects, _, _ := projectServiceFixture()
	p := projects.add(model.Project{Name: "guarded", ManagerID: 5, Team: []model.UserRef{{ID: 6}}})

	for _, actor := range []model.Identity{
		identity(1, rbac.RoleAdmin),
		identity(5, rbac.RoleProjectManager),
		identity(6, rbac.RoleEmployee),
	} {
		got, err := svc.Get(context.Background(), actor, p.ID)
		require.NoError(t, err)
		assert.Equal(t, "guarded", got.Name)
	}

	_, err := svc.Get(context.Background(), identity(7, rbac.RoleDesigner), p.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.Get(context.Background(), identity(1, rbac.RoleAdmin), 999)
	assert.ErrorIs(t, err, ErrProjectNotFound)
}

func TestProjectCreateValidatesManager(t *testing.T) {
	svc, _, _, users := projectServiceFixture()
	manager := users.add(userFixture("pm@example.com", rbac.RoleProjectManager))

	p, err := svc.Create(context.Background(), CreateProjectInput{
		Name:      "Website",
		StartDate: time.Now(),
		EndDate:   time.Now().Add(30 * 24 * time.Hour),
		ManagerID: manager.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, model.ProjectStatusPlanning, p.Status)

	_, err = svc.Create(context.Background(), CreateProjectInput{
		Name:      "Ghost ship",
		ManagerID: 999,
	})
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestProjectUpdateRequiresMembership(t *testing.T) {
	svc, projects, _, _ := projectServiceFixture()
	p := projects.add(model.Project{Name: "original", ManagerID: 5, Status: model.ProjectStatusPlanning})

	name := "renamed"
	_, err := svc.Update(context.Background(), identity(7, rbac.RoleEmployee), p.ID, UpdateProjectInput{Name: &name})
	assert.ErrorIs(t, err, ErrForbidden)

	got, err := svc.Update(context.Background(), identity(5, rbac.RoleProjectManager), p.ID, UpdateProjectInput{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "renamed", got.Name)
}

func TestProjectUpdateRejectsBadStatus(t *testing.T) {
	svc, projects, _, _ := projectServiceFixture()
	p := projects.add(model.Project{Name: "original", ManagerID: 5, Status: model.ProjectStatusPlanning})

	bad := "archived"
	_, err := svc.Update(context.Background(), identity(5, rbac.RoleProjectManager), p.ID, UpdateProjectInput{Status: &bad})
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestProjectDeleteCascadesTasks(t *testing.T) {
	svc, projects, tasks, _ := projectServiceFixture()
	p := projects.add(model.Project{Name: "doomed"})
	tasks.add(model.Task{Title: "t1", ProjectID: p.ID, Status: model.TaskStatusPending})
	tasks.add(model.Task{Title: "t2", ProjectID: p.ID, Status: model.TaskStatusPending})
	survivor := tasks.add(model.Task{Title: "t3", ProjectID: 999, Status: model.TaskStatusPending})

	require.NoError(t, svc.Delete(context.Background(), p.ID))

	remaining, err := tasks.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, survivor.ID, remaining[0].ID)

	assert.ErrorIs(t, svc.Delete(context.Background(), p.ID), ErrProjectNotFound)
}

func TestProjectTeamManagement(t *testing.T) {
	svc, projects, _, users := projectServiceFixture()
	p := projects.add(model.Project{Name: "staffed"})
	member := users.add(userFixture("dev@example.com", rbac.RoleEmployee))

	got, err := svc.AddTeamMember(context.Background(), p.ID, member.ID)
	require.NoError(t, err)
	assert.True(t, got.HasMember(member.ID))

	_, err = svc.AddTeamMember(context.Background(), p.ID, 999)
	assert.ErrorIs(t, err, ErrUserNotFound)

	got, err = svc.RemoveTeamMember(context.Background(), p.ID, member.ID)
	require.NoError(t, err)
	assert.False(t, got.HasMember(member.ID))
}

func TestMilestoneLifecycle(t *testing.T) {
	svc, projects, _, _ := projectServiceFixture()
	p := projects.add(model.Project{Name: "phased", ManagerID: 5})
	actor := identity(5, rbac.RoleProjectManager)

	got, err := svc.AddMilestone(context.Background(), actor, p.ID, AddMilestoneInput{
		Title:   "Design sign-off",
		DueDate: time.Now().Add(7 * 24 * time.Hour),
	})
	require.NoError(t, err)
	require.Len(t, got.Milestones, 1)
	assert.False(t, got.Milestones[0].Completed)

	got, err = svc.CompleteMilestone(context.Background(), actor, p.ID, got.Milestones[0].ID, true)
	require.NoError(t, err)
	assert.True(t, got.Milestones[0].Completed)

	_, err = svc.CompleteMilestone(context.Background(), actor, p.ID, 999, true)
	assert.ErrorIs(t, err, ErrMilestoneNotFound)
}

func TestAddDocumentRecordsUploader(t *testing.T) {
	svc, projects, _, _ := projectServiceFixture()
	p := projects.add(model.Project{Name: "documented", Team: []model.UserRef{{ID: 6}}})

	got, err := svc.AddDocument(context.Background(), identity(6, rbac.RoleEmployee), p.ID, AddDocumentInput{
		Name: "contract.pdf",
		URL:  "https://files.example.com/contract.pdf",
		Type: "pdf",
	})
	require.NoError(t, err)
	require.Len(t, got.Documents, 1)
	assert.Equal(t, 6, got.Documents[0].UploadedBy)

	_, err = svc.AddDocument(context.Background(), identity(9, rbac.RoleEmployee), p.ID, AddDocumentInput{Name: "x", URL: "https://x"})
	assert.ErrorIs(t, err, ErrForbidden)
}
