package controller

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/vhducng/certprep/internal/dto"
	"github.com/vhducng/certprep/internal/service"
)

type TestController struct {
	assembler  service.TestAssemblerService
	testQuery  service.TestQueryService
	submission service.SubmissionService
}

func NewTestController(
	assembler service.TestAssemblerService,
	testQuery service.TestQueryService,
	submission service.SubmissionService,
) *TestController {
	return &TestController{
		assembler:  assembler,
		testQuery:  testQuery,
		submission: submission,
	}
}

// GenerateTest godoc
// @Summary Generate a practice test from a study guide URL
// @Description Extracts the study guide, optionally blends in related content via search, asks the model for questions and persists the resulting test. Returns the full test including the answer key.
// @Tags Tests
// @Accept json
// @Produce json
// @Param request body dto.GenerateTestRequest true "Study guide URL, certification name and optional question count (default 40)"
// @Success 200 {object} dto.TestWithAnswersDTO
// @Failure 400 {object} dto.ErrorResponse "Missing or invalid fields"
// @Failure 422 {object} dto.ErrorResponse "Study guide yielded no usable content"
// @Failure 502 {object} dto.ErrorResponse "Upstream fetch, search or generation failure"
// @Router /api/generate-test [post]
func (c *TestController) GenerateTest(ctx *gin.Context) {
	var req dto.GenerateTestRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}

	log.Info().
		Str("study_guide_url", req.StudyGuideURL).
		Str("certification", req.CertificationName).
		Int("question_count", req.QuestionCount).
		Msg("Received test generation request")

	// Generation keeps running and the test is still persisted even if the
	// client disconnects mid-pipeline.
	genCtx := context.WithoutCancel(ctx.Request.Context())

	test, err := c.assembler.Assemble(genCtx, req.StudyGuideURL, req.CertificationName, req.QuestionCount)
	if err != nil {
		log.Error().Err(err).Str("study_guide_url", req.StudyGuideURL).Msg("Test generation failed")
		respondError(ctx, err)
		return
	}

	resp, err := c.testQuery.GetTestWithAnswers(test.ID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"test": resp})
}

// ListTests godoc
// @Summary List generated tests
// @Tags Tests
// @Produce json
// @Success 200 {array} dto.TestSummaryDTO
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/tests [get]
func (c *TestController) ListTests(ctx *gin.Context) {
	tests, err := c.testQuery.ListTests()
	if err != nil {
		log.Error().Err(err).Msg("Failed to list tests")
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, tests)
}

// GetTest godoc
// @Summary Get a test for taking
// @Description Returns the test with correct answers and explanations stripped from every question.
// @Tags Tests
// @Produce json
// @Param id path string true "Test ID"
// @Success 200 {object} dto.TestDTO
// @Failure 404 {object} dto.ErrorResponse "Unknown test id"
// @Router /api/test/{id} [get]
func (c *TestController) GetTest(ctx *gin.Context) {
	test, err := c.testQuery.GetTestForTaking(ctx.Param("id"))
	if err != nil {
		log.Warn().Err(err).Str("test_id", ctx.Param("id")).Msg("Test lookup failed")
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"test": test})
}

// GetTestAnswers godoc
// @Summary Get a test including its answer key
// @Tags Tests
// @Produce json
// @Param id path string true "Test ID"
// @Success 200 {object} dto.TestWithAnswersDTO
// @Failure 404 {object} dto.ErrorResponse "Unknown test id"
// @Router /api/test/{id}/answers [get]
func (c *TestController) GetTestAnswers(ctx *gin.Context) {
	test, err := c.testQuery.GetTestWithAnswers(ctx.Param("id"))
	if err != nil {
		log.Warn().Err(err).Str("test_id", ctx.Param("id")).Msg("Test answers lookup failed")
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"test": test})
}

// SubmitTest godoc
// @Summary Submit answers for a test
// @Description Scores the submitted answers against the stored answer key and records a new session. Re-attempts create new sessions.
// @Tags Tests
// @Accept json
// @Produce json
// @Param id path string true "Test ID"
// @Param submission body dto.SubmitAnswersRequest true "Map of question id to selected option strings"
// @Success 200 {object} dto.SubmitResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid body"
// @Failure 404 {object} dto.ErrorResponse "Unknown test id"
// @Router /api/test/{id}/submit [post]
func (c *TestController) SubmitTest(ctx *gin.Context) {
	var req dto.SubmitAnswersRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}

	result, err := c.submission.Submit(ctx.Param("id"), req)
	if err != nil {
		log.Warn().Err(err).Str("test_id", ctx.Param("id")).Msg("Submission failed")
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, result)
}

// ListSessions godoc
// @Summary List past submission sessions for a test
// @Tags Tests
// @Produce json
// @Param id path string true "Test ID"
// @Success 200 {array} dto.SessionSummaryDTO
// @Failure 404 {object} dto.ErrorResponse "Unknown test id"
// @Router /api/test/{id}/sessions [get]
func (c *TestController) ListSessions(ctx *gin.Context) {
	sessions, err := c.testQuery.ListSessions(ctx.Param("id"))
	if err != nil {
		log.Warn().Err(err).Str("test_id", ctx.Param("id")).Msg("Session listing failed")
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, sessions)
}
