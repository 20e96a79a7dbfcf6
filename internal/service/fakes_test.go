package service

import (
	"context"
	"sort"

	"github.com/jackc/pgx/v5"

	"taskman/internal/model"
	"taskman/internal/util"
	"taskman/pkg/rbac"
)

// userFixture builds a user whose password is "correct-password".
func userFixture(email, role string) model.User {
	hash, err := util.HashPassword("correct-password")
	if err != nil {
		panic(err)
	}
	return model.User{
		Name:         "Test User",
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		Department:   "Other",
		Permissions:  rbac.DefaultPermissions(role),
	}
}

// In-memory stand-ins for the repositories. Missing rows surface as
// pgx.ErrNoRows, same as the real thing.

type fakeUserStore struct {
	nextID    int
	users     map[int]*model.User
	err       error
	deleteErr error
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{nextID: 1, users: map[int]*model.User{}}
}

func (f *fakeUserStore) add(u model.User) *model.User {
	u.ID = f.nextID
	f.nextID++
	f.users[u.ID] = &u
	return &u
}

func (f *fakeUserStore) Create(ctx context.Context, u *model.User) error {
	if f.err != nil {
		return f.err
	}
	u.ID = f.nextID
	f.nextID++
	cp := *u
	f.users[u.ID] = &cp
	return nil
}

func (f *fakeUserStore) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, u := range f.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeUserStore) FindByID(ctx context.Context, id int) (*model.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	u, ok := f.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUserStore) UpdatePermissions(ctx context.Context, id int, permissions []string) error {
	u, ok := f.users[id]
	if !ok {
		return pgx.ErrNoRows
	}
	u.Permissions = permissions
	return nil
}

func (f *fakeUserStore) List(ctx context.Context) ([]model.User, error) {
	ids := make([]int, 0, len(f.users))
	for id := range f.users {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	out := make([]model.User, 0, len(ids))
	for _, id := range ids {
		out = append(out, *f.users[id])
	}
	return out, nil
}

func (f *fakeUserStore) Update(ctx context.Context, u *model.User) error {
	if _, ok := f.users[u.ID]; !ok {
		return pgx.ErrNoRows
	}
	cp := *u
	f.users[u.ID] = &cp
	return nil
}

func (f *fakeUserStore) UpdateRole(ctx context.Context, id int, role string, permissions []string) error {
	u, ok := f.users[id]
	if !ok {
		return pgx.ErrNoRows
	}
	u.Role = role
	u.Permissions = permissions
	return nil
}

func (f *fakeUserStore) Delete(ctx context.Context, id int) (int64, error) {
	if f.deleteErr != nil {
		return 0, f.deleteErr
	}
	if _, ok := f.users[id]; !ok {
		return 0, nil
	}
	delete(f.users, id)
	return 1, nil
}

type fakeProjectStore struct {
	nextID   int
	projects map[int]*model.Project
}

func newFakeProjectStore() *fakeProjectStore {
	return &fakeProjectStore{nextID: 1, projects: map[int]*model.Project{}}
}

func (f *fakeProjectStore) add(p model.Project) *model.Project {
	p.ID = f.nextID
	f.nextID++
	f.projects[p.ID] = &p
	return &p
}

func (f *fakeProjectStore) Insert(ctx context.Context, p *model.Project) error {
	p.ID = f.nextID
	f.nextID++
	cp := *p
	f.projects[p.ID] = &cp
	return nil
}

func (f *fakeProjectStore) ListAll(ctx context.Context) ([]model.Project, error) {
	ids := make([]int, 0, len(f.projects))
	for id := range f.projects {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	out := make([]model.Project, 0, len(ids))
	for _, id := range ids {
		out = append(out, *f.projects[id])
	}
	return out, nil
}

func (f *fakeProjectStore) ListVisibleTo(ctx context.Context, userID int) ([]model.Project, error) {
	all, _ := f.ListAll(ctx)
	out := []model.Project{}
	for _, p := range all {
		if p.ManagerID == userID || p.HasMember(userID) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeProjectStore) FindByID(ctx context.Context, id int) (*model.Project, error) {
	p, ok := f.projects[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *p
	return &cp, nil
}

func (f *fakeProjectStore) Update(ctx context.Context, p *model.Project) error {
	if _, ok := f.projects[p.ID]; !ok {
		return pgx.ErrNoRows
	}
	cp := *p
	f.projects[p.ID] = &cp
	return nil
}

func (f *fakeProjectStore) Delete(ctx context.Context, id int) (int64, error) {
	if _, ok := f.projects[id]; !ok {
		return 0, nil
	}
	delete(f.projects, id)
	return 1, nil
}

func (f *fakeProjectStore) AddTeamMember(ctx context.Context, projectID, userID int) error {
	p, ok := f.projects[projectID]
	if !ok {
		return pgx.ErrNoRows
	}
	if !p.HasMember(userID) {
		p.Team = append(p.Team, model.UserRef{ID: userID})
	}
	return nil
}

func (f *fakeProjectStore) RemoveTeamMember(ctx context.Context, projectID, userID int) error {
	p, ok := f.projects[projectID]
	if !ok {
		return pgx.ErrNoRows
	}
	team := p.Team[:0]
	for _, m := range p.Team {
		if m.ID != userID {
			team = append(team, m)
		}
	}
	p.Team = team
	return nil
}

func (f *fakeProjectStore) AddMilestone(ctx context.Context, m *model.Milestone) error {
	p, ok := f.projects[m.ProjectID]
	if !ok {
		return pgx.ErrNoRows
	}
	m.ID = len(p.Milestones) + 1
	p.Milestones = append(p.Milestones, *m)
	return nil
}

func (f *fakeProjectStore) SetMilestoneCompleted(ctx context.Context, projectID, milestoneID int, completed bool) (int64, error) {
	p, ok := f.projects[projectID]
	if !ok {
		return 0, nil
	}
	for i := range p.Milestones {
		if p.Milestones[i].ID == milestoneID {
			p.Milestones[i].Completed = completed
			return 1, nil
		}
	}
	return 0, nil
}

func (f *fakeProjectStore) AddDocument(ctx context.Context, d *model.Document) error {
	p, ok := f.projects[d.ProjectID]
	if !ok {
		return pgx.ErrNoRows
	}
	d.ID = len(p.Documents) + 1
	p.Documents = append(p.Documents, *d)
	return nil
}

type fakeTaskStore struct {
	nextID        int
	tasks         map[int]*model.Task
	statusWrites  int
	commentWrites int
}

func newFakeTaskStore() *fakeTaskStore {
	return &fakeTaskStore{nextID: 1, tasks: map[int]*model.Task{}}
}

func (f *fakeTaskStore) add(t model.Task) *model.Task {
	t.ID = f.nextID
	f.nextID++
	f.tasks[t.ID] = &t
	return &t
}

func (f *fakeTaskStore) Insert(ctx context.Context, t *model.Task) error {
	t.ID = f.nextID
	f.nextID++
	cp := *t
	f.tasks[t.ID] = &cp
	return nil
}

func (f *fakeTaskStore) ListAll(ctx context.Context) ([]model.Task, error) {
	ids := make([]int, 0, len(f.tasks))
	for id := range f.tasks {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	out := make([]model.Task, 0, len(ids))
	for _, id := range ids {
		out = append(out, *f.tasks[id])
	}
	return out, nil
}

func (f *fakeTaskStore) ListByAssignee(ctx context.Context, userID int) ([]model.Task, error) {
	all, _ := f.ListAll(ctx)
	out := []model.Task{}
	for _, t := range all {
		if t.IsAssignedTo(userID) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeTaskStore) FindByID(ctx context.Context, id int) (*model.Task, error) {
	t, ok := f.tasks[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *t
	return &cp, nil
}

func (f *fakeTaskStore) Update(ctx context.Context, t *model.Task) error {
	if _, ok := f.tasks[t.ID]; !ok {
		return pgx.ErrNoRows
	}
	cp := *t
	f.tasks[t.ID] = &cp
	return nil
}

func (f *fakeTaskStore) UpdateStatus(ctx context.Context, id int, status string) error {
	t, ok := f.tasks[id]
	if !ok {
		return pgx.ErrNoRows
	}
	t.Status = status
	f.statusWrites++
	return nil
}

func (f *fakeTaskStore) Delete(ctx context.Context, id int) (int64, error) {
	if _, ok := f.tasks[id]; !ok {
		return 0, nil
	}
	delete(f.tasks, id)
	return 1, nil
}

func (f *fakeTaskStore) DeleteByProject(ctx context.Context, projectID int) (int64, error) {
	var n int64
	for id, t := range f.tasks {
		if t.ProjectID == projectID {
			delete(f.tasks, id)
			n++
		}
	}
	return n, nil
}

func (f *fakeTaskStore) AddComment(ctx context.Context, c *model.Comment) error {
	t, ok := f.tasks[c.TaskID]
	if !ok {
		return pgx.ErrNoRows
	}
	c.ID = len(t.Comments) + 1
	t.Comments = append(t.Comments, *c)
	f.commentWrites++
	return nil
}

func (f *fakeTaskStore) AddAttachment(ctx context.Context, a *model.Attachment) error {
	t, ok := f.tasks[a.TaskID]
	if !ok {
		return pgx.ErrNoRows
	}
	a.ID = len(t.Attachments) + 1
	t.Attachments = append(t.Attachments, *a)
	return nil
}

type publishedEvent struct {
	routingKey string
	payload    any
}

type fakePublisher struct {
	events []publishedEvent
	err    error
}

func (f *fakePublisher) Publish(routingKey string, payload any) error {
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, publishedEvent{routingKey: routingKey, payload: payload})
	return nil
}

type fakeNotificationStore struct {
	notifications []model.Notification
	readIDs       []int
}

func (f *fakeNotificationStore) ListByUser(ctx context.Context, userID int) ([]model.Notification, error) {
	out := []model.Notification{}
	for _, n := range f.notifications {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (f *fakeNotificationStore) MarkRead(ctx context.Context, id, userID int) (int64, error) {
	for i, n := range f.notifications {
		if n.ID == id && n.UserID == userID {
			f.notifications[i].Read = true
			f.readIDs = append(f.readIDs, id)
			return 1, nil
		}
	}
	return 0, nil
}
