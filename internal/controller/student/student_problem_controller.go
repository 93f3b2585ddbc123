package student

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jinzhu/copier"
	"github.com/lshigami/classroom/internal/controller"
	"github.com/lshigami/classroom/internal/dto"
	"github.com/lshigami/classroom/internal/model"
	"github.com/lshigami/classroom/internal/service"
)

type StudentProblemController struct {
	problemService    service.ProblemService
	submissionService service.SubmissionService
	catalogService    service.CatalogService
}

func NewStudentProblemController(
	problemService service.ProblemService,
	submissionService service.SubmissionService,
	catalogService service.CatalogService,
) *StudentProblemController {
	return &StudentProblemController{
		problemService:    problemService,
		submissionService: submissionService,
		catalogService:    catalogService,
	}
}

func (c *StudentProblemController) RegisterRoutes(group *gin.RouterGroup) {
	group.Use(controller.RequireRole(model.RoleStudent))

	problems := group.Group("/problems")
	problems.GET("", c.ListProblems)
	problems.GET("/:problem_id", c.GetProblem)
	problems.POST("/:problem_id/open", c.OpenProblem)
	problems.PUT("/:problem_id/draft", c.SaveDraft)
	problems.POST("/:problem_id/submit", c.Submit)
	problems.GET("/:problem_id/submission", c.GetSubmission)

	group.GET("/submissions", c.ListSubmissions)
	group.GET("/progress", c.GetProgress)
	group.GET("/repository", c.ListRepository)
}

// ListProblems godoc
// @Summary (Student) Browse problems
// @Description Lists live problems with the caller's own attempt status. Answer keys are never included.
// @Tags Student - Problems
// @Produce json
// @Param X-User-ID header string true "Caller id"
// @Param X-User-Role header string true "student"
// @Param kind query string false "multiple_choice, short_answer or essay"
// @Param difficulty query string false "easy, medium or hard"
// @Param subject query string false "Subject"
// @Param school_level query string false "School level"
// @Param grade query string false "Grade"
// @Param topic query string false "Topic"
// @Param author query string false "Author id"
// @Param q query string false "Search in title and description"
// @Param status query string false "unattempted, in_progress, submitted or completed"
// @Param sort query string false "created_at, title or difficulty"
// @Param order query string false "asc or desc"
// @Success 200 {array} dto.StudentProblemResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /student/problems [get]
func (c *StudentProblemController) ListProblems(ctx *gin.Context) {
	var q dto.ProblemQuery
	if err := ctx.ShouldBindQuery(&q); err != nil {
		controller.BindError(ctx, err, "student.ListProblems")
		return
	}
	views, err := c.catalogService.ListProblems(controller.Caller(ctx), q.Filter())
	if err != nil {
		controller.Fail(ctx, err, "student.ListProblems")
		return
	}
	resp := make([]dto.StudentProblemResponse, len(views))
	for i, v := range views {
		resp[i] = toStudentProblem(v.Problem, v.Status, v.Score)
	}
	ctx.JSON(http.StatusOK, resp)
}

// GetProblem godoc
// @Summary (Student) Get a problem
// @Tags Student - Problems
// @Produce json
// @Param X-User-ID header string true "Caller id"
// @Param X-User-Role header string true "student"
// @Param problem_id path string true "Problem id"
// @Success 200 {object} dto.StudentProblemResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /student/problems/{problem_id} [get]
func (c *StudentProblemController) GetProblem(ctx *gin.Context) {
	id := controller.Caller(ctx)
	if err := id.RequireStudent(); err != nil {
		controller.Fail(ctx, err, "student.GetProblem")
		return
	}
	p, err := c.problemService.Get(ctx.Param("problem_id"))
	if err != nil {
		controller.Fail(ctx, err, "student.GetProblem")
		return
	}
	status := model.StatusUnattempted
	var score *int
	if sub, err := c.submissionService.Get(id, p.ID); err == nil {
		status = sub.Status
		if sub.Status == model.StatusCompleted {
			s := sub.Score
			score = &s
		}
	}
	ctx.JSON(http.StatusOK, toStudentProblem(p, status, score))
}

// OpenProblem godoc
// @Summary (Student) Start working on a problem
// @Description Creates the attempt on first open. Opening again returns the existing attempt unchanged.
// @Tags Student - Submissions
// @Produce json
// @Param X-User-ID header string true "Caller id"
// @Param X-User-Role header string true "student"
// @Param problem_id path string true "Problem id"
// @Success 200 {object} dto.SubmissionResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /student/problems/{problem_id}/open [post]
func (c *StudentProblemController) OpenProblem(ctx *gin.Context) {
	sub, err := c.submissionService.Open(controller.Caller(ctx), ctx.Param("problem_id"))
	if err != nil {
		controller.Fail(ctx, err, "student.OpenProblem")
		return
	}
	ctx.JSON(http.StatusOK, controller.ToSubmissionResponse(sub))
}

// SaveDraft godoc
// @Summary (Student) Save a draft answer
// @Tags Student - Submissions
// @Accept json
// @Produce json
// @Param X-User-ID header string true "Caller id"
// @Param X-User-Role header string true "student"
// @Param problem_id path string true "Problem id"
// @Param answer body dto.AnswerRequest true "Draft"
// @Success 200 {object} dto.SubmissionResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse "Not in progress"
// @Router /student/problems/{problem_id}/draft [put]
func (c *StudentProblemController) SaveDraft(ctx *gin.Context) {
	var req dto.AnswerRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		controller.BindError(ctx, err, "student.SaveDraft")
		return
	}
	sub, err := c.submissionService.SaveDraft(controller.Caller(ctx), ctx.Param("problem_id"), req.Answer)
	if err != nil {
		controller.Fail(ctx, err, "student.SaveDraft")
		return
	}
	ctx.JSON(http.StatusOK, controller.ToSubmissionResponse(sub))
}

// Submit godoc
// @Summary (Student) Submit an answer
// @Description Multiple choice answers are graded immediately and completed. Free text answers wait for the author's grade.
// @Tags Student - Submissions
// @Accept json
// @Produce json
// @Param X-User-ID header string true "Caller id"
// @Param X-User-Role header string true "student"
// @Param problem_id path string true "Problem id"
// @Param answer body dto.AnswerRequest true "Answer, the 1-based option number for multiple choice"
// @Success 200 {object} dto.SubmissionResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse "Not in progress"
// @Router /student/problems/{problem_id}/submit [post]
func (c *StudentProblemController) Submit(ctx *gin.Context) {
	var req dto.AnswerRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		controller.BindError(ctx, err, "student.Submit")
		return
	}
	sub, err := c.submissionService.Submit(controller.Caller(ctx), ctx.Param("problem_id"), req.Answer)
	if err != nil {
		controller.Fail(ctx, err, "student.Submit")
		return
	}
	ctx.JSON(http.StatusOK, controller.ToSubmissionResponse(sub))
}

// GetSubmission godoc
// @Summary (Student) My attempt on a problem
// @Tags Student - Submissions
// @Produce json
// @Param X-User-ID header string true "Caller id"
// @Param X-User-Role header string true "student"
// @Param problem_id path string true "Problem id"
// @Success 200 {object} dto.SubmissionResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /student/problems/{problem_id}/submission [get]
func (c *StudentProblemController) GetSubmission(ctx *gin.Context) {
	sub, err := c.submissionService.Get(controller.Caller(ctx), ctx.Param("problem_id"))
	if err != nil {
		controller.Fail(ctx, err, "student.GetSubmission")
		return
	}
	ctx.JSON(http.StatusOK, controller.ToSubmissionResponse(sub))
}

// ListSubmissions godoc
// @Summary (Student) My attempts
// @Tags Student - Submissions
// @Produce json
// @Param X-User-ID header string true "Caller id"
// @Param X-User-Role header string true "student"
// @Param problem_id query string false "Problem id"
// @Param status query string false "in_progress, submitted or completed"
// @Success 200 {array} dto.SubmissionResponse
// @Router /student/submissions [get]
func (c *StudentProblemController) ListSubmissions(ctx *gin.Context) {
	var q dto.SubmissionQuery
	if err := ctx.ShouldBindQuery(&q); err != nil {
		controller.BindError(ctx, err, "student.ListSubmissions")
		return
	}
	subs, err := c.catalogService.ListSubmissions(controller.Caller(ctx), q.Filter())
	if err != nil {
		controller.Fail(ctx, err, "student.ListSubmissions")
		return
	}
	ctx.JSON(http.StatusOK, controller.ToSubmissionResponses(subs))
}

// GetProgress godoc
// @Summary (Student) My progress
// @Tags Student - Submissions
// @Produce json
// @Param X-User-ID header string true "Caller id"
// @Param X-User-Role header string true "student"
// @Success 200 {object} dto.ProgressResponse
// @Router /student/progress [get]
func (c *StudentProblemController) GetProgress(ctx *gin.Context) {
	prog, err := c.submissionService.Progress(controller.Caller(ctx))
	if err != nil {
		controller.Fail(ctx, err, "student.GetProgress")
		return
	}
	var resp dto.ProgressResponse
	copier.Copy(&resp, &prog)
	ctx.JSON(http.StatusOK, resp)
}

// ListRepository godoc
// @Summary (Student) Browse the shared repository
// @Description Answer keys are not included.
// @Tags Student - Problems
// @Produce json
// @Param X-User-ID header string true "Caller id"
// @Param X-User-Role header string true "student"
// @Param kind query string false "multiple_choice, short_answer or essay"
// @Param difficulty query string false "easy, medium or hard"
// @Param subject query string false "Subject"
// @Param q query string false "Search in title and description"
// @Success 200 {array} dto.StudentProblemResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /student/repository [get]
func (c *StudentProblemController) ListRepository(ctx *gin.Context) {
	var q dto.ProblemQuery
	if err := ctx.ShouldBindQuery(&q); err != nil {
		controller.BindError(ctx, err, "student.ListRepository")
		return
	}
	entries, err := c.catalogService.ListPool(controller.Caller(ctx), q.Filter())
	if err != nil {
		controller.Fail(ctx, err, "student.ListRepository")
		return
	}
	resp := make([]dto.StudentProblemResponse, len(entries))
	for i, e := range entries {
		resp[i] = toStudentProblem(e.Problem, "", nil)
	}
	ctx.JSON(http.StatusOK, resp)
}

func toStudentProblem(p model.Problem, status model.SubmissionStatus, score *int) dto.StudentProblemResponse {
	var resp dto.StudentProblemResponse
	copier.Copy(&resp, &p)
	resp.Status = status
	resp.Score = score
	return resp
}
