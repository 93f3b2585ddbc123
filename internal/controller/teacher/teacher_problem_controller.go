package teacher

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jinzhu/copier"
	"github.com/lshigami/classroom/internal/controller"
	"github.com/lshigami/classroom/internal/dto"
	"github.com/lshigami/classroom/internal/model"
	"github.com/lshigami/classroom/internal/parser"
	"github.com/lshigami/classroom/internal/service"
)

type TeacherProblemController struct {
	problemService service.ProblemService
	catalogService service.CatalogService
	gradingService service.GradingService
}

func NewTeacherProblemController(
	problemService service.ProblemService,
	catalogService service.CatalogService,
	gradingService service.GradingService,
) *TeacherProblemController {
	return &TeacherProblemController{
		problemService: problemService,
		catalogService: catalogService,
		gradingService: gradingService,
	}
}

// RegisterRoutes mounts the teacher API on group. group must already run the
// identity middleware; students are refused here.
func (c *TeacherProblemController) RegisterRoutes(group *gin.RouterGroup) {
	group.Use(controller.RequireRole(model.RoleTeacher, model.RoleAdmin))

	problems := group.Group("/problems")
	problems.GET("", c.ListProblems)
	problems.POST("", c.CreateProblem)
	problems.POST("/import", c.ImportProblems)
	problems.POST("/generate", c.GenerateProblems)
	problems.POST("/parse", c.ParseProblems)
	problems.POST("/drafts", c.AcceptDrafts)
	problems.GET("/:problem_id", c.GetProblem)
	problems.PUT("/:problem_id", c.UpdateProblem)
	problems.DELETE("/:problem_id", c.DeleteProblem)
	problems.POST("/:problem_id/repository", c.RegisterToRepository)

	repo := group.Group("/repository")
	repo.GET("", c.ListRepository)
	repo.POST("/:entry_id/copy", c.CopyFromRepository)

	group.GET("/submissions", c.ListSubmissions)

	grading := group.Group("/grading")
	grading.GET("/pending", c.PendingSubmissions)
	grading.GET("/feedback-suggestion", c.SuggestFeedback)
	grading.POST("/:problem_id/students/:student_id", c.GradeSubmission)
}

// ListProblems godoc
// @Summary (Teacher) List own problems
// @Description Lists the caller's problems with attempt and completion counts. Admins see every author.
// @Tags Teacher - Problems
// @Produce json
// @Param X-User-ID header string true "Caller id"
// @Param X-User-Role header string true "teacher or admin"
// @Param kind query string false "multiple_choice, short_answer or essay"
// @Param difficulty query string false "easy, medium or hard"
// @Param subject query string false "Subject"
// @Param school_level query string false "School level"
// @Param grade query string false "Grade"
// @Param topic query string false "Topic"
// @Param q query string false "Search in title and description"
// @Param sort query string false "created_at, title or difficulty"
// @Param order query string false "asc or desc"
// @Success 200 {array} dto.TeacherProblemResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Router /teacher/problems [get]
func (c *TeacherProblemController) ListProblems(ctx *gin.Context) {
	var q dto.ProblemQuery
	if err := ctx.ShouldBindQuery(&q); err != nil {
		controller.BindError(ctx, err, "teacher.ListProblems")
		return
	}
	views, err := c.catalogService.ListProblems(controller.Caller(ctx), q.Filter())
	if err != nil {
		controller.Fail(ctx, err, "teacher.ListProblems")
		return
	}
	resp := make([]dto.TeacherProblemResponse, len(views))
	for i, v := range views {
		resp[i] = dto.TeacherProblemResponse{
			ProblemResponse: controller.ToProblemResponse(v.Problem),
			Attempts:        v.Attempts,
			Completions:     v.Completions,
		}
	}
	ctx.JSON(http.StatusOK, resp)
}

// CreateProblem godoc
// @Summary (Teacher) Create a problem
// @Description Multiple choice problems need options and a 1-based correct_index; short answer and essay problems need a sample answer.
// @Tags Teacher - Problems
// @Accept json
// @Produce json
// @Param X-User-ID header string true "Caller id"
// @Param X-User-Role header string true "teacher or admin"
// @Param problem body dto.ProblemRequest true "Problem"
// @Success 201 {object} dto.ProblemResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Router /teacher/problems [post]
func (c *TeacherProblemController) CreateProblem(ctx *gin.Context) {
	var req dto.ProblemRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		controller.BindError(ctx, err, "teacher.CreateProblem")
		return
	}
	p, err := c.problemService.Create(controller.Caller(ctx), controller.ToProblemInput(req))
	if err != nil {
		controller.Fail(ctx, err, "teacher.CreateProblem")
		return
	}
	ctx.JSON(http.StatusCreated, controller.ToProblemResponse(p))
}

// ImportProblems godoc
// @Summary (Teacher) Bulk import problems
// @Description Creates one problem per valid row and reports the outcome of every row.
// @Tags Teacher - Problems
// @Accept json
// @Produce json
// @Param X-User-ID header string true "Caller id"
// @Param X-User-Role header string true "teacher or admin"
// @Param rows body dto.ImportProblemsRequest true "Rows"
// @Success 200 {object} dto.ImportResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Router /teacher/problems/import [post]
func (c *TeacherProblemController) ImportProblems(ctx *gin.Context) {
	var req dto.ImportProblemsRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		controller.BindError(ctx, err, "teacher.ImportProblems")
		return
	}
	rows := make([]model.ProblemInput, len(req.Problems))
	for i, r := range req.Problems {
		rows[i] = controller.ToProblemInput(r)
	}
	results, err := c.problemService.Import(controller.Caller(ctx), rows)
	if err != nil {
		controller.Fail(ctx, err, "teacher.ImportProblems")
		return
	}
	ctx.JSON(http.StatusOK, toImportResponse(results))
}

// GenerateProblems godoc
// @Summary (Teacher) Generate problem drafts with AI
// @Description Asks the text generator for problems and returns the parsed drafts for review. Nothing is saved. An empty list means nothing usable was generated.
// @Tags Teacher - Problems
// @Accept json
// @Produce json
// @Param X-User-ID header string true "Caller id"
// @Param X-User-Role header string true "teacher or admin"
// @Param request body dto.GenerateProblemsRequest true "Generation request"
// @Success 200 {object} dto.DraftsResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 503 {object} dto.ErrorResponse "Generator not configured"
// @Router /teacher/problems/generate [post]
func (c *TeacherProblemController) GenerateProblems(ctx *gin.Context) {
	var req dto.GenerateProblemsRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		controller.BindError(ctx, err, "teacher.GenerateProblems")
		return
	}
	var genReq service.GenerationRequest
	copier.Copy(&genReq, &req)
	drafts, err := c.problemService.Generate(ctx.Request.Context(), controller.Caller(ctx), genReq)
	if err != nil {
		controller.Fail(ctx, err, "teacher.GenerateProblems")
		return
	}
	ctx.JSON(http.StatusOK, toDraftsResponse(drafts))
}

// ParseProblems godoc
// @Summary (Teacher) Parse field-tagged problem text
// @Description Parses text in the generator's format into drafts without saving them.
// @Tags Teacher - Problems
// @Accept json
// @Produce json
// @Param X-User-ID header string true "Caller id"
// @Param X-User-Role header string true "teacher or admin"
// @Param request body dto.ParseProblemsRequest true "Raw text"
// @Success 200 {object} dto.DraftsResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /teacher/problems/parse [post]
func (c *TeacherProblemController) ParseProblems(ctx *gin.Context) {
	var req dto.ParseProblemsRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		controller.BindError(ctx, err, "teacher.ParseProblems")
		return
	}
	drafts, err := c.problemService.ParseDrafts(controller.Caller(ctx), req.Raw, req.Kind)
	if err != nil {
		controller.Fail(ctx, err, "teacher.ParseProblems")
		return
	}
	ctx.JSON(http.StatusOK, toDraftsResponse(drafts))
}

// AcceptDrafts godoc
// @Summary (Teacher) Save reviewed drafts
// @Description Validates every draft strictly and saves the valid ones as AI generated problems.
// @Tags Teacher - Problems
// @Accept json
// @Produce json
// @Param X-User-ID header string true "Caller id"
// @Param X-User-Role header string true "teacher or admin"
// @Param request body dto.AcceptDraftsRequest true "Drafts and defaults"
// @Success 200 {object} dto.ImportResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /teacher/problems/drafts [post]
func (c *TeacherProblemController) AcceptDrafts(ctx *gin.Context) {
	var req dto.AcceptDraftsRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		controller.BindError(ctx, err, "teacher.AcceptDrafts")
		return
	}
	var defaults service.GenerationRequest
	copier.Copy(&defaults, &req.Defaults)
	drafts := make([]parser.Draft, len(req.Drafts))
	copier.Copy(&drafts, &req.Drafts)

	results, err := c.problemService.AcceptDrafts(controller.Caller(ctx), defaults, drafts)
	if err != nil {
		controller.Fail(ctx, err, "teacher.AcceptDrafts")
		return
	}
	ctx.JSON(http.StatusOK, toImportResponse(results))
}

// GetProblem godoc
// @Summary (Teacher) Get a problem
// @Description Only the author and admins may read a problem with its answer key.
// @Tags Teacher - Problems
// @Produce json
// @Param X-User-ID header string true "Caller id"
// @Param X-User-Role header string true "teacher or admin"
// @Param problem_id path string true "Problem id"
// @Success 200 {object} dto.ProblemResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /teacher/problems/{problem_id} [get]
func (c *TeacherProblemController) GetProblem(ctx *gin.Context) {
	p, err := c.problemService.View(controller.Caller(ctx), ctx.Param("problem_id"))
	if err != nil {
		controller.Fail(ctx, err, "teacher.GetProblem")
		return
	}
	ctx.JSON(http.StatusOK, controller.ToProblemResponse(p))
}

// UpdateProblem godoc
// @Summary (Teacher) Replace a problem's fields
// @Description Only the author may edit a problem.
// @Tags Teacher - Problems
// @Accept json
// @Produce json
// @Param X-User-ID header string true "Caller id"
// @Param X-User-Role header string true "teacher or admin"
// @Param problem_id path string true "Problem id"
// @Param problem body dto.ProblemRequest true "Problem"
// @Success 200 {object} dto.ProblemResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /teacher/problems/{problem_id} [put]
func (c *TeacherProblemController) UpdateProblem(ctx *gin.Context) {
	var req dto.ProblemRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		controller.BindError(ctx, err, "teacher.UpdateProblem")
		return
	}
	p, err := c.problemService.Update(controller.Caller(ctx), ctx.Param("problem_id"), controller.ToProblemInput(req))
	if err != nil {
		controller.Fail(ctx, err, "teacher.UpdateProblem")
		return
	}
	ctx.JSON(http.StatusOK, controller.ToProblemResponse(p))
}

// DeleteProblem godoc
// @Summary (Teacher) Delete a problem
// @Description Tombstones the problem. Existing submissions keep their reference.
// @Tags Teacher - Problems
// @Param X-User-ID header string true "Caller id"
// @Param X-User-Role header string true "teacher or admin"
// @Param problem_id path string true "Problem id"
// @Success 204
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /teacher/problems/{problem_id} [delete]
func (c *TeacherProblemController) DeleteProblem(ctx *gin.Context) {
	if err := c.problemService.Delete(controller.Caller(ctx), ctx.Param("problem_id")); err != nil {
		controller.Fail(ctx, err, "teacher.DeleteProblem")
		return
	}
	ctx.Status(http.StatusNoContent)
}

// RegisterToRepository godoc
// @Summary (Teacher) Share a problem in the repository
// @Tags Teacher - Repository
// @Produce json
// @Param X-User-ID header string true "Caller id"
// @Param X-User-Role header string true "teacher or admin"
// @Param problem_id path string true "Problem id"
// @Success 201 {object} dto.PoolEntryResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse "Already in the repository"
// @Router /teacher/problems/{problem_id}/repository [post]
func (c *TeacherProblemController) RegisterToRepository(ctx *gin.Context) {
	entry, err := c.problemService.RegisterToPool(controller.Caller(ctx), ctx.Param("problem_id"))
	if err != nil {
		controller.Fail(ctx, err, "teacher.RegisterToRepository")
		return
	}
	ctx.JSON(http.StatusCreated, controller.ToPoolEntryResponse(entry))
}

// ListRepository godoc
// @Summary (Teacher) Browse the shared repository
// @Tags Teacher - Repository
// @Produce json
// @Param X-User-ID header string true "Caller id"
// @Param X-User-Role header string true "teacher or admin"
// @Param kind query string false "multiple_choice, short_answer or essay"
// @Param difficulty query string false "easy, medium or hard"
// @Param subject query string false "Subject"
// @Param q query string false "Search in title and description"
// @Param sort query string false "created_at, title or difficulty"
// @Param order query string false "asc or desc"
// @Success 200 {array} dto.PoolEntryResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /teacher/repository [get]
func (c *TeacherProblemController) ListRepository(ctx *gin.Context) {
	var q dto.ProblemQuery
	if err := ctx.ShouldBindQuery(&q); err != nil {
		controller.BindError(ctx, err, "teacher.ListRepository")
		return
	}
	entries, err := c.catalogService.ListPool(controller.Caller(ctx), q.Filter())
	if err != nil {
		controller.Fail(ctx, err, "teacher.ListRepository")
		return
	}
	ctx.JSON(http.StatusOK, controller.ToPoolEntryResponses(entries))
}

// CopyFromRepository godoc
// @Summary (Teacher) Add a repository problem to my problems
// @Tags Teacher - Repository
// @Produce json
// @Param X-User-ID header string true "Caller id"
// @Param X-User-Role header string true "teacher or admin"
// @Param entry_id path string true "Repository entry id"
// @Success 201 {object} dto.ProblemResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse "Already in my problems"
// @Router /teacher/repository/{entry_id}/copy [post]
func (c *TeacherProblemController) CopyFromRepository(ctx *gin.Context) {
	p, err := c.problemService.CopyFromPool(controller.Caller(ctx), ctx.Param("entry_id"))
	if err != nil {
		controller.Fail(ctx, err, "teacher.CopyFromRepository")
		return
	}
	ctx.JSON(http.StatusCreated, controller.ToProblemResponse(p))
}

// ListSubmissions godoc
// @Summary (Teacher) List submissions on my problems
// @Tags Teacher - Grading
// @Produce json
// @Param X-User-ID header string true "Caller id"
// @Param X-User-Role header string true "teacher or admin"
// @Param student_id query string false "Student id"
// @Param problem_id query string false "Problem id"
// @Param status query string false "in_progress, submitted or completed"
// @Success 200 {array} dto.SubmissionResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /teacher/submissions [get]
func (c *TeacherProblemController) ListSubmissions(ctx *gin.Context) {
	var q dto.SubmissionQuery
	if err := ctx.ShouldBindQuery(&q); err != nil {
		controller.BindError(ctx, err, "teacher.ListSubmissions")
		return
	}
	subs, err := c.catalogService.ListSubmissions(controller.Caller(ctx), q.Filter())
	if err != nil {
		controller.Fail(ctx, err, "teacher.ListSubmissions")
		return
	}
	ctx.JSON(http.StatusOK, controller.ToSubmissionResponses(subs))
}

// PendingSubmissions godoc
// @Summary (Teacher) Answers waiting for my grade
// @Tags Teacher - Grading
// @Produce json
// @Param X-User-ID header string true "Caller id"
// @Param X-User-Role header string true "teacher or admin"
// @Success 200 {array} dto.SubmissionResponse
// @Router /teacher/grading/pending [get]
func (c *TeacherProblemController) PendingSubmissions(ctx *gin.Context) {
	subs, err := c.gradingService.PendingForGrader(controller.Caller(ctx))
	if err != nil {
		controller.Fail(ctx, err, "teacher.PendingSubmissions")
		return
	}
	ctx.JSON(http.StatusOK, controller.ToSubmissionResponses(subs))
}

// SuggestFeedback godoc
// @Summary (Teacher) Suggested feedback for a score
// @Description Returns a starting point derived from the score band. Nothing is stored.
// @Tags Teacher - Grading
// @Produce json
// @Param X-User-ID header string true "Caller id"
// @Param X-User-Role header string true "teacher or admin"
// @Param score query int true "Score between 0 and 100"
// @Success 200 {object} dto.FeedbackSuggestionResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /teacher/grading/feedback-suggestion [get]
func (c *TeacherProblemController) SuggestFeedback(ctx *gin.Context) {
	score, err := strconv.Atoi(ctx.Query("score"))
	if err != nil {
		controller.Fail(ctx, model.NewValidationError("score", "score must be an integer"), "teacher.SuggestFeedback")
		return
	}
	feedback, err := c.gradingService.SuggestFeedback(score)
	if err != nil {
		controller.Fail(ctx, err, "teacher.SuggestFeedback")
		return
	}
	ctx.JSON(http.StatusOK, dto.FeedbackSuggestionResponse{Score: score, Feedback: feedback})
}

// GradeSubmission godoc
// @Summary (Teacher) Grade a free text answer
// @Description Only the problem's author may grade. The submission must be in the submitted state.
// @Tags Teacher - Grading
// @Accept json
// @Produce json
// @Param X-User-ID header string true "Caller id"
// @Param X-User-Role header string true "teacher or admin"
// @Param problem_id path string true "Problem id"
// @Param student_id path string true "Student id"
// @Param grade body dto.GradeRequest true "Score and feedback"
// @Success 200 {object} dto.SubmissionResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse "Not in the submitted state"
// @Router /teacher/grading/{problem_id}/students/{student_id} [post]
func (c *TeacherProblemController) GradeSubmission(ctx *gin.Context) {
	var req dto.GradeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		controller.BindError(ctx, err, "teacher.GradeSubmission")
		return
	}
	sub, err := c.gradingService.ManualGrade(controller.Caller(ctx), ctx.Param("student_id"), ctx.Param("problem_id"), *req.Score, req.Feedback)
	if err != nil {
		controller.Fail(ctx, err, "teacher.GradeSubmission")
		return
	}
	ctx.JSON(http.StatusOK, controller.ToSubmissionResponse(sub))
}

func toDraftsResponse(drafts []parser.Draft) dto.DraftsResponse {
	out := make([]dto.DraftDTO, len(drafts))
	copier.Copy(&out, &drafts)
	return dto.DraftsResponse{Drafts: out, Count: len(out)}
}

func toImportResponse(results []service.ImportResult) dto.ImportResponse {
	resp := dto.ImportResponse{Rows: make([]dto.ImportRowResponse, len(results))}
	for i, r := range results {
		row := dto.ImportRowResponse{Row: r.Row}
		if r.Err != nil {
			body := controller.ErrorBody(r.Err)
			row.Error = &body
			resp.Failed++
		} else {
			p := controller.ToProblemResponse(*r.Problem)
			row.Problem = &p
			resp.Created++
		}
		resp.Rows[i] = row
	}
	return resp
}
