package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/huangang/sprintdesk/backend/internal/models"
	"github.com/huangang/sprintdesk/backend/pkg/response"
)

func newTaskService(t *testing.T) (*TaskService, *stubGenerator, *models.Project) {
	t.Helper()
	db := setupTestDB(t)
	gen := &stubGenerator{reply: "generated description"}
	return NewTaskService(db, gen), gen, mkProject(t, db, "Apollo")
}

func TestTaskService_CreateAssignsSequentialCodes(t *testing.T) {
	svc, _, project := newTaskService(t)

	for i, want := range []int{1001, 1002, 1003} {
		task, err := svc.Create(context.Background(), &CreateTaskRequest{
			Title:       "Task",
			WorkType:    models.WorkTypeTask,
			Description: "already written",
			ProjectID:   project.ID,
		})
		if err != nil {
			t.Fatalf("create %d failed: %v", i, err)
		}
		if task.Code != want {
			t.Errorf("task %d code = %d, expected %d", i, task.Code, want)
		}
	}
}

func TestTaskService_CreateDefaultsWorkflowAndPriority(t *testing.T) {
	svc, _, project := newTaskService(t)

	task, err := svc.Create(context.Background(), &CreateTaskRequest{
		Title:       "Fix login",
		WorkType:    models.WorkTypeBug,
		Description: "steps",
		ProjectID:   project.ID,
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if task.Workflow != models.WorkflowBacklog {
		t.Errorf("workflow = %q, expected %q", task.Workflow, models.WorkflowBacklog)
	}
	if task.Priority != models.PriorityMedium {
		t.Errorf("priority = %q, expected %q", task.Priority, models.PriorityMedium)
	}
}

func TestTaskService_CreateConcurrentCodesUnique(t *testing.T) {
	svc, _, project := newTaskService(t)

	const n = 10
	var wg sync.WaitGroup
	var mu sync.Mutex
	codes := make(map[int]bool)
	errs := make([]error, 0)

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			task, err := svc.Create(context.Background(), &CreateTaskRequest{
				Title:       "Concurrent",
				WorkType:    models.WorkTypeTask,
				Description: "d",
				ProjectID:   project.ID,
			})
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, err)
				return
			}
			codes[task.Code] = true
		}()
	}
	wg.Wait()

	if len(errs) > 0 {
		t.Fatalf("concurrent creates failed: %v", errs[0])
	}
	if len(codes) != n {
		t.Fatalf("expected %d distinct codes, got %d", n, len(codes))
	}
	for code := 1001; code <= 1000+n; code++ {
		if !codes[code] {
			t.Errorf("code %d missing from allocated set", code)
		}
	}
}

func TestTaskService_CreateUnknownProject(t *testing.T) {
	svc, _, _ := newTaskService(t)

	_, err := svc.Create(context.Background(), &CreateTaskRequest{
		Title:       "Orphan",
		WorkType:    models.WorkTypeTask,
		Description: "d",
		ProjectID:   9999,
	})
	wantKind(t, err, response.KindNotFound)
}

func TestTaskService_CreateInvalidVocabulary(t *testing.T) {
	svc, _, project := newTaskService(t)

	_, err := svc.Create(context.Background(), &CreateTaskRequest{
		Title:       "Bad type",
		WorkType:    "Epic",
		Description: "d",
		ProjectID:   project.ID,
	})
	wantKind(t, err, response.KindValidation)
}

func TestTaskService_CreateGeneratesDescription(t *testing.T) {
	svc, gen, project := newTaskService(t)

	task, err := svc.Create(context.Background(), &CreateTaskRequest{
		Title:     "Ship login",
		WorkType:  models.WorkTypeStory,
		ProjectID: project.ID,
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if gen.callCount() != 1 {
		t.Fatalf("generator called %d times, expected 1", gen.callCount())
	}
	wantPrompt := DescriptionPrompt("Ship login")
	if gen.prompts[0] != wantPrompt {
		t.Errorf("prompt = %q, expected %q", gen.prompts[0], wantPrompt)
	}
	if task.Description != "generated description" {
		t.Errorf("description = %q, expected generated text", task.Description)
	}
}

func TestTaskService_CreateSkipsGenerationWhenDescriptionGiven(t *testing.T) {
	svc, gen, project := newTaskService(t)

	_, err := svc.Create(context.Background(), &CreateTaskRequest{
		Title:       "Documented",
		WorkType:    models.WorkTypeTask,
		Description: "hand-written",
		ProjectID:   project.ID,
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if gen.callCount() != 0 {
		t.Errorf("generator called %d times, expected 0", gen.callCount())
	}
}

func TestTaskService_CreateGenerationFailureNothingPersisted(t *testing.T) {
	svc, gen, project := newTaskService(t)
	gen.err = errors.New("upstream down")

	_, err := svc.Create(context.Background(), &CreateTaskRequest{
		Title:     "Doomed",
		WorkType:  models.WorkTypeTask,
		ProjectID: project.ID,
	})
	wantKind(t, err, response.KindGeneration)

	var count int64
	svc.db.Model(&models.Task{}).Count(&count)
	if count != 0 {
		t.Errorf("expected no persisted tasks after generation failure, got %d", count)
	}
}

func TestTaskService_CodesNotReusedAfterDelete(t *testing.T) {
	svc, _, project := newTaskService(t)

	first, err := svc.Create(context.Background(), &CreateTaskRequest{
		Title: "First", WorkType: models.WorkTypeTask, Description: "d", ProjectID: project.ID,
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if err := svc.Delete(first.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	second, err := svc.Create(context.Background(), &CreateTaskRequest{
		Title: "Second", WorkType: models.WorkTypeTask, Description: "d", ProjectID: project.ID,
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if second.Code != first.Code+1 {
		t.Errorf("code after delete = %d, expected %d", second.Code, first.Code+1)
	}
}

func TestTaskService_SprintMustBelongToProject(t *testing.T) {
	svc, _, project := newTaskService(t)
	other := mkProject(t, svc.db, "Zephyr")
	sprint := mkSprint(t, svc.db, other.ID, "2026-03-02", "2026-03-13")

	_, err := svc.Create(context.Background(), &CreateTaskRequest{
		Title:       "Misplaced",
		WorkType:    models.WorkTypeTask,
		Description: "d",
		ProjectID:   project.ID,
		SprintID:    &sprint.ID,
	})
	wantKind(t, err, response.KindValidation)
}

func TestTaskService_ListUnassignedModes(t *testing.T) {
	svc, _, project := newTaskService(t)
	user := mkUser(t, svc.db, "dev@example.com")
	sprint := mkSprint(t, svc.db, project.ID, "2026-03-02", "2026-03-13")

	mk := func(title string, sprintID, userID *uint) {
		t.Helper()
		_, err := svc.Create(context.Background(), &CreateTaskRequest{
			Title: title, WorkType: models.WorkTypeTask, Description: "d",
			ProjectID: project.ID, SprintID: sprintID, UserID: userID,
		})
		if err != nil {
			t.Fatalf("create %q failed: %v", title, err)
		}
	}
	mk("backlog", nil, nil)
	mk("user only", nil, &user.ID)
	mk("sprint only", &sprint.ID, nil)
	mk("fully assigned", &sprint.ID, &user.ID)

	cases := []struct {
		name  string
		mode  UnassignedMode
		want  int
		title string
	}{
		{"default no sprint", UnassignedMode{}, 2, ""},
		{"by user", UnassignedMode{UserID: &user.ID}, 1, "user only"},
		{"by sprint", UnassignedMode{SprintID: &sprint.ID}, 1, "sprint only"},
		{"backlog only", UnassignedMode{BacklogOnly: true}, 1, "backlog"},
	}
	for _, tc := range cases {
		tasks, err := svc.ListUnassigned(project.ID, tc.mode)
		if err != nil {
			t.Fatalf("%s: %v", tc.name, err)
		}
		if len(tasks) != tc.want {
			t.Errorf("%s: got %d tasks, expected %d", tc.name, len(tasks), tc.want)
			continue
		}
		if tc.title != "" && tasks[0].Title != tc.title {
			t.Errorf("%s: got %q, expected %q", tc.name, tasks[0].Title, tc.title)
		}
	}

	_, err := svc.ListUnassigned(project.ID, UnassignedMode{UserID: &user.ID, BacklogOnly: true})
	wantKind(t, err, response.KindValidation)
}

func TestTaskService_UpdateProjectMoveRevalidatesSprint(t *testing.T) {
	svc, _, projectA := newTaskService(t)
	projectB := mkProject(t, svc.db, "Zephyr")
	sprintA := mkSprint(t, svc.db, projectA.ID, "2026-03-02", "2026-03-13")

	task, err := svc.Create(context.Background(), &CreateTaskRequest{
		Title: "Mover", WorkType: models.WorkTypeTask, Description: "d",
		ProjectID: projectA.ID, SprintID: &sprintA.ID,
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	// Moving the task alone would leave it attached to a sprint of its old
	// project.
	_, err = svc.Update(context.Background(), task.ID, &UpdateTaskRequest{ProjectID: &projectB.ID})
	wantKind(t, err, response.KindValidation)

	reloaded, err := svc.GetByID(task.ID)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if reloaded.ProjectID != projectA.ID {
		t.Errorf("project_id = %d, expected rejected move to leave %d", reloaded.ProjectID, projectA.ID)
	}

	// Dropping the sprint in the same update makes the move legal.
	if _, err := svc.Update(context.Background(), task.ID, &UpdateTaskRequest{
		ProjectID:    &projectB.ID,
		RemoveSprint: true,
	}); err != nil {
		t.Fatalf("move with sprint removal failed: %v", err)
	}

	reloaded, err = svc.GetByID(task.ID)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if reloaded.ProjectID != projectB.ID {
		t.Errorf("project_id = %d, expected %d", reloaded.ProjectID, projectB.ID)
	}
	if reloaded.SprintID != nil {
		t.Errorf("sprint_id = %v, expected nil after the move", *reloaded.SprintID)
	}
}

func TestTaskService_CreateBadRefsSkipGeneration(t *testing.T) {
	svc, gen, _ := newTaskService(t)

	_, err := svc.Create(context.Background(), &CreateTaskRequest{
		Title:     "Doomed",
		WorkType:  models.WorkTypeTask,
		ProjectID: 9999,
	})
	wantKind(t, err, response.KindNotFound)
	if gen.callCount() != 0 {
		t.Errorf("generator called %d times for a create that cannot succeed, expected 0", gen.callCount())
	}
}

func TestTaskService_UpdateBadRefsSkipGeneration(t *testing.T) {
	svc, gen, project := newTaskService(t)

	task, err := svc.Create(context.Background(), &CreateTaskRequest{
		Title: "Stable", WorkType: models.WorkTypeTask, Description: "d", ProjectID: project.ID,
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	empty := ""
	badProject := uint(9999)
	_, err = svc.Update(context.Background(), task.ID, &UpdateTaskRequest{
		Description: &empty,
		ProjectID:   &badProject,
	})
	wantKind(t, err, response.KindNotFound)
	if gen.callCount() != 0 {
		t.Errorf("generator called %d times for an update that cannot succeed, expected 0", gen.callCount())
	}
}

func TestTaskService_UpdateClearedDescriptionRegenerates(t *testing.T) {
	svc, gen, project := newTaskService(t)

	task, err := svc.Create(context.Background(), &CreateTaskRequest{
		Title: "Regen", WorkType: models.WorkTypeTask, Description: "old text", ProjectID: project.ID,
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	empty := ""
	updated, err := svc.Update(context.Background(), task.ID, &UpdateTaskRequest{Description: &empty})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if gen.callCount() != 1 {
		t.Fatalf("generator called %d times, expected 1", gen.callCount())
	}
	if updated.Description != "generated description" {
		t.Errorf("description = %q, expected regenerated text", updated.Description)
	}
}

func TestTaskService_UpdateSetAndRemoveSprintConflict(t *testing.T) {
	svc, _, project := newTaskService(t)
	sprint := mkSprint(t, svc.db, project.ID, "2026-03-02", "2026-03-13")

	task, err := svc.Create(context.Background(), &CreateTaskRequest{
		Title: "Torn", WorkType: models.WorkTypeTask, Description: "d", ProjectID: project.ID,
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	_, err = svc.Update(context.Background(), task.ID, &UpdateTaskRequest{
		SprintID:     &sprint.ID,
		RemoveSprint: true,
	})
	wantKind(t, err, response.KindValidation)
}

func TestTaskService_UpdateMoveToBacklog(t *testing.T) {
	svc, _, project := newTaskService(t)
	sprint := mkSprint(t, svc.db, project.ID, "2026-03-02", "2026-03-13")

	task, err := svc.Create(context.Background(), &CreateTaskRequest{
		Title: "Mover", WorkType: models.WorkTypeTask, Description: "d",
		ProjectID: project.ID, SprintID: &sprint.ID,
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if _, err := svc.Update(context.Background(), task.ID, &UpdateTaskRequest{RemoveSprint: true}); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	reloaded, err := svc.GetByID(task.ID)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if reloaded.SprintID != nil {
		t.Errorf("sprint_id = %v, expected nil after removal", *reloaded.SprintID)
	}
}

func TestTaskService_RegenerateDescription(t *testing.T) {
	svc, gen, project := newTaskService(t)

	task, err := svc.Create(context.Background(), &CreateTaskRequest{
		Title: "Redo", WorkType: models.WorkTypeTask, Description: "stale", ProjectID: project.ID,
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if _, err := svc.RegenerateDescription(context.Background(), task.ID, ""); err != nil {
		t.Fatalf("regenerate failed: %v", err)
	}
	if gen.prompts[0] != DescriptionPrompt("Redo") {
		t.Errorf("prompt = %q, expected default template", gen.prompts[0])
	}

	if _, err := svc.RegenerateDescription(context.Background(), task.ID, "explain the Redo task"); err != nil {
		t.Fatalf("regenerate with custom prompt failed: %v", err)
	}
	if gen.prompts[1] != "explain the Redo task" {
		t.Errorf("custom prompt = %q, expected pass-through", gen.prompts[1])
	}

	reloaded, err := svc.GetByID(task.ID)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if reloaded.Description != "generated description" {
		t.Errorf("description = %q, expected overwrite", reloaded.Description)
	}
}

func TestTaskService_DeleteClearsChildren(t *testing.T) {
	svc, _, project := newTaskService(t)

	parent, err := svc.Create(context.Background(), &CreateTaskRequest{
		Title: "Parent", WorkType: models.WorkTypeStory, Description: "d", ProjectID: project.ID,
	})
	if err != nil {
		t.Fatalf("create parent failed: %v", err)
	}
	child, err := svc.Create(context.Background(), &CreateTaskRequest{
		Title: "Child", WorkType: models.WorkTypeTask, Description: "d",
		ProjectID: project.ID, ParentTaskID: &parent.ID,
	})
	if err != nil {
		t.Fatalf("create child failed: %v", err)
	}

	if err := svc.Delete(parent.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	reloaded, err := svc.GetByID(child.ID)
	if err != nil {
		t.Fatalf("reload child failed: %v", err)
	}
	if reloaded.ParentTaskID != nil {
		t.Errorf("child parent_task_id = %v, expected nil", *reloaded.ParentTaskID)
	}
}

func TestTaskService_DeleteNotFound(t *testing.T) {
	svc, _, _ := newTaskService(t)
	wantKind(t, svc.Delete(404), response.KindNotFound)
}
