package controller_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lshigami/classroom/config"
	"github.com/lshigami/classroom/internal/controller"
	"github.com/lshigami/classroom/internal/controller/student"
	"github.com/lshigami/classroom/internal/controller/teacher"
	"github.com/lshigami/classroom/internal/dto"
	"github.com/lshigami/classroom/internal/model"
	"github.com/lshigami/classroom/internal/repository"
	"github.com/lshigami/classroom/internal/service"
)

type nopNotifier struct{}

func (nopNotifier) Notify() {}

func newRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	problems := repository.NewProblemRepository()
	pool := repository.NewPoolRepository()
	submissions := repository.NewSubmissionRepository()
	generator, err := service.NewGeminiLLMService(&config.Config{})
	require.NoError(t, err)

	problemSvc := service.NewProblemService(problems, pool, submissions, generator, nopNotifier{})
	gradingSvc := service.NewGradingService(problems, submissions, nopNotifier{})
	submissionSvc := service.NewSubmissionService(problems, submissions, gradingSvc, nopNotifier{})
	catalogSvc := service.NewCatalogService(problems, pool, submissions)

	r := gin.New()
	api := r.Group("/api/v1", controller.Identity())
	teacher.NewTeacherProblemController(problemSvc, catalogSvc, gradingSvc).RegisterRoutes(api.Group("/teacher"))
	student.NewStudentProblemController(problemSvc, submissionSvc, catalogSvc).RegisterRoutes(api.Group("/student"))
	return r
}

func do(t *testing.T, r *gin.Engine, method, path string, who model.Identity, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if who.UserID != "" {
		req.Header.Set(controller.HeaderUserID, who.UserID)
		req.Header.Set(controller.HeaderUserRole, string(who.Role))
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

var (
	author  = model.Identity{UserID: "t-1", Role: model.RoleTeacher}
	other   = model.Identity{UserID: "t-2", Role: model.RoleTeacher}
	pupil   = model.Identity{UserID: "s-1", Role: model.RoleStudent}
	capital = dto.ProblemRequest{
		Title:        "Capital of France",
		Description:  "Which city is the capital of France?",
		Subject:      "Geography",
		Difficulty:   model.DifficultyEasy,
		Kind:         model.KindMultipleChoice,
		Options:      []string{"Paris", "Lyon", "Nice", "Lille"},
		CorrectIndex: 1,
		Explanation:  "Paris is the capital.",
	}
	essay = dto.ProblemRequest{
		Title:        "Water cycle",
		Description:  "Explain the water cycle.",
		Subject:      "Science",
		Difficulty:   model.DifficultyMedium,
		Kind:         model.KindEssay,
		SampleAnswer: "Evaporation, condensation, precipitation.",
	}
)

func TestIdentity_RejectsMissingOrUnknownCaller(t *testing.T) {
	r := newRouter(t)

	w := do(t, r, http.MethodGet, "/api/v1/student/problems", model.Identity{}, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(t, r, http.MethodGet, "/api/v1/student/problems", model.Identity{UserID: "x", Role: "principal"}, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestErrorMapping(t *testing.T) {
	r := newRouter(t)

	w := do(t, r, http.MethodPost, "/api/v1/teacher/problems", pupil, capital)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = do(t, r, http.MethodPost, "/api/v1/teacher/problems", author, dto.ProblemRequest{Title: "only a title"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.NotEmpty(t, decode[dto.ErrorResponse](t, w).Details)

	bad := capital
	bad.CorrectIndex = 7
	w = do(t, r, http.MethodPost, "/api/v1/teacher/problems", author, bad)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "correct_index", decode[dto.ErrorResponse](t, w).Field)

	w = do(t, r, http.MethodGet, "/api/v1/teacher/problems/missing", author, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, r, http.MethodPost, "/api/v1/teacher/problems/generate", author, dto.GenerateProblemsRequest{
		Subject: "Math", Difficulty: model.DifficultyEasy, Kind: model.KindMultipleChoice, Count: 2,
	})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	w = do(t, r, http.MethodGet, "/api/v1/teacher/grading/feedback-suggestion?score=abc", author, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = do(t, r, http.MethodGet, "/api/v1/teacher/grading/feedback-suggestion?score=95", author, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, decode[dto.FeedbackSuggestionResponse](t, w).Feedback)
}

func TestMultipleChoiceFlow(t *testing.T) {
	r := newRouter(t)

	w := do(t, r, http.MethodPost, "/api/v1/teacher/problems", author, capital)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[dto.ProblemResponse](t, w)
	assert.Equal(t, model.OriginAuthored, created.Origin)
	base := "/api/v1/student/problems/" + created.ID

	w = do(t, r, http.MethodGet, "/api/v1/student/problems", pupil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "correct_index")
	listed := decode[[]dto.StudentProblemResponse](t, w)
	require.Len(t, listed, 1)
	assert.Equal(t, model.StatusUnattempted, listed[0].Status)

	w = do(t, r, http.MethodPost, base+"/submit", pupil, dto.AnswerRequest{Answer: "1"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, model.StatusUnattempted, decode[dto.ErrorResponse](t, w).CurrentStatus)

	w = do(t, r, http.MethodPost, base+"/open", pupil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, model.StatusInProgress, decode[dto.SubmissionResponse](t, w).Status)

	w = do(t, r, http.MethodPut, base+"/draft", pupil, dto.AnswerRequest{Answer: "2"})
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, r, http.MethodPost, base+"/submit", pupil, dto.AnswerRequest{Answer: "5"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodPost, base+"/submit", pupil, dto.AnswerRequest{Answer: "1"})
	require.Equal(t, http.StatusOK, w.Code)
	sub := decode[dto.SubmissionResponse](t, w)
	assert.Equal(t, model.StatusCompleted, sub.Status)
	assert.Equal(t, 100, sub.Score)
	assert.Contains(t, sub.Feedback, "Correct!")

	w = do(t, r, http.MethodPost, base+"/submit", pupil, dto.AnswerRequest{Answer: "2"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, model.StatusCompleted, decode[dto.ErrorResponse](t, w).CurrentStatus)

	w = do(t, r, http.MethodGet, base, pupil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	view := decode[dto.StudentProblemResponse](t, w)
	assert.Equal(t, model.StatusCompleted, view.Status)
	require.NotNil(t, view.Score)
	assert.Equal(t, 100, *view.Score)

	w = do(t, r, http.MethodGet, "/api/v1/student/progress", pupil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	prog := decode[dto.ProgressResponse](t, w)
	assert.Equal(t, 1, prog.Completed)
	assert.Equal(t, 100.0, prog.AverageScore)

	w = do(t, r, http.MethodGet, "/api/v1/teacher/problems", author, nil)
	require.Equal(t, http.StatusOK, w.Code)
	mine := decode[[]dto.TeacherProblemResponse](t, w)
	require.Len(t, mine, 1)
	assert.Equal(t, 1, mine[0].Attempts)
	assert.Equal(t, 1, mine[0].Completions)
}

func TestEssayGradingFlow(t *testing.T) {
	r := newRouter(t)

	w := do(t, r, http.MethodPost, "/api/v1/teacher/problems", author, essay)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	id := decode[dto.ProblemResponse](t, w).ID
	base := "/api/v1/student/problems/" + id

	require.Equal(t, http.StatusOK, do(t, r, http.MethodPost, base+"/open", pupil, nil).Code)
	w = do(t, r, http.MethodPost, base+"/submit", pupil, dto.AnswerRequest{Answer: "Water evaporates and falls as rain."})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, model.StatusSubmitted, decode[dto.SubmissionResponse](t, w).Status)

	w = do(t, r, http.MethodGet, "/api/v1/teacher/grading/pending", author, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]dto.SubmissionResponse](t, w), 1)

	score := 85
	gradePath := "/api/v1/teacher/grading/" + id + "/students/" + pupil.UserID
	w = do(t, r, http.MethodPost, gradePath, other, dto.GradeRequest{Score: &score, Feedback: "Good"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = do(t, r, http.MethodPost, gradePath, author, map[string]any{"feedback": "Good"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodPost, gradePath, author, dto.GradeRequest{Score: &score, Feedback: "Good"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	graded := decode[dto.SubmissionResponse](t, w)
	assert.Equal(t, model.StatusCompleted, graded.Status)
	assert.Equal(t, 85, graded.Score)
	assert.Equal(t, author.UserID, graded.GradedBy)

	w = do(t, r, http.MethodPost, gradePath, author, dto.GradeRequest{Score: &score, Feedback: "Again"})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestRepositoryAndImport(t *testing.T) {
	r := newRouter(t)

	w := do(t, r, http.MethodPost, "/api/v1/teacher/problems/import", author, dto.ImportProblemsRequest{
		Problems: []dto.ProblemRequest{capital, {Title: "Broken", Description: "No key", Difficulty: model.DifficultyHard, Kind: model.KindShortAnswer}},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	imported := decode[dto.ImportResponse](t, w)
	assert.Equal(t, 1, imported.Created)
	assert.Equal(t, 1, imported.Failed)
	require.NotNil(t, imported.Rows[0].Problem)
	require.NotNil(t, imported.Rows[1].Error)
	id := imported.Rows[0].Problem.ID

	w = do(t, r, http.MethodPost, "/api/v1/teacher/problems/"+id+"/repository", author, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	entry := decode[dto.PoolEntryResponse](t, w)

	w = do(t, r, http.MethodPost, "/api/v1/teacher/problems/"+id+"/repository", author, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = do(t, r, http.MethodGet, "/api/v1/teacher/repository", other, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]dto.PoolEntryResponse](t, w), 1)

	w = do(t, r, http.MethodGet, "/api/v1/student/repository", pupil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "correct_index")
	assert.Len(t, decode[[]dto.StudentProblemResponse](t, w), 1)

	copyPath := "/api/v1/teacher/repository/" + entry.ID + "/copy"
	w = do(t, r, http.MethodPost, copyPath, other, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	copied := decode[dto.ProblemResponse](t, w)
	assert.Equal(t, other.UserID, copied.CreatedBy)
	assert.Equal(t, author.UserID, copied.OriginalAuthor)
	assert.Equal(t, model.OriginImportedFromRepository, copied.Origin)

	w = do(t, r, http.MethodPost, copyPath, other, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = do(t, r, http.MethodDelete, "/api/v1/teacher/problems/"+id, other, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = do(t, r, http.MethodDelete, "/api/v1/teacher/problems/"+id, author, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = do(t, r, http.MethodGet, "/api/v1/student/problems/"+id, pupil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestParseAndAcceptDrafts(t *testing.T) {
	r := newRouter(t)

	raw := "Problem 1:\nTitle: Sum\nContent: 2 + 2 = ?\nOption1: 3\nOption2: 4\nOption3: 5\nOption4: 6\nAnswer: 2\nExplanation: Basic addition.\n"
	w := do(t, r, http.MethodPost, "/api/v1/teacher/problems/parse", author, dto.ParseProblemsRequest{Raw: raw, Kind: model.KindMultipleChoice})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	drafts := decode[dto.DraftsResponse](t, w)
	require.Equal(t, 1, drafts.Count)

	w = do(t, r, http.MethodPost, "/api/v1/teacher/problems/drafts", author, dto.AcceptDraftsRequest{
		Defaults: dto.DraftDefaults{Subject: "Math", Difficulty: model.DifficultyEasy, Kind: model.KindMultipleChoice},
		Drafts:   drafts.Drafts,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	accepted := decode[dto.ImportResponse](t, w)
	require.Equal(t, 1, accepted.Created)
	assert.Equal(t, model.OriginAIGenerated, accepted.Rows[0].Problem.Origin)
	assert.Equal(t, 2, accepted.Rows[0].Problem.CorrectIndex)
}

func TestRoleGuards_KeepAnswerKeysFromStudents(t *testing.T) {
	r := newRouter(t)
	admin := model.Identity{UserID: "root", Role: model.RoleAdmin}

	w := do(t, r, http.MethodPost, "/api/v1/teacher/problems", author, capital)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	id := decode[dto.ProblemResponse](t, w).ID
	require.Equal(t, http.StatusCreated, do(t, r, http.MethodPost, "/api/v1/teacher/problems/"+id+"/repository", author, nil).Code)

	for _, path := range []string{
		"/api/v1/teacher/problems/" + id,
		"/api/v1/teacher/problems",
		"/api/v1/teacher/repository",
		"/api/v1/teacher/submissions",
	} {
		w = do(t, r, http.MethodGet, path, pupil, nil)
		assert.Equal(t, http.StatusForbidden, w.Code, path)
		assert.NotContains(t, w.Body.String(), "correct_index", path)
		assert.NotContains(t, w.Body.String(), "Paris is the capital.", path)
	}

	w = do(t, r, http.MethodGet, "/api/v1/teacher/problems/"+id, other, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = do(t, r, http.MethodGet, "/api/v1/teacher/problems/"+id, admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, decode[dto.ProblemResponse](t, w).CorrectIndex)

	w = do(t, r, http.MethodGet, "/api/v1/teacher/problems/"+id, author, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, r, http.MethodGet, "/api/v1/student/problems", author, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
