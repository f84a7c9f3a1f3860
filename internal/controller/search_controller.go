package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/vhducng/certprep/internal/dto"
	"github.com/vhducng/certprep/internal/service"
)

type SearchController struct {
	searchService service.SearchService
}

func NewSearchController(searchService service.SearchService) *SearchController {
	return &SearchController{searchService: searchService}
}

// Search godoc
// @Summary Search for study material
// @Description Runs a keyword search against the configured search provider.
// @Tags Search
// @Produce json
// @Param q query string true "Search query"
// @Success 200 {object} dto.SearchResponse
// @Failure 400 {object} dto.ErrorResponse "Missing query"
// @Failure 503 {object} dto.ErrorResponse "Search provider not configured"
// @Router /api/search [get]
func (c *SearchController) Search(ctx *gin.Context) {
	query := ctx.Query("q")
	if query == "" {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Query parameter 'q' is required"})
		return
	}

	results, err := c.searchService.Search(ctx.Request.Context(), query, 10)
	if err != nil {
		log.Warn().Err(err).Str("query", query).Msg("Search request failed")
		respondError(ctx, err)
		return
	}

	resp := dto.SearchResponse{Results: make([]dto.SearchResultDTO, 0, len(results))}
	for _, r := range results {
		resp.Results = append(resp.Results, dto.SearchResultDTO{Title: r.Title, URL: r.URL, Snippet: r.Snippet})
	}
	ctx.JSON(http.StatusOK, resp)
}
