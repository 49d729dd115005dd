package http

import (
	"net/http"
	"strconv"

	"hacker-feed/domain/model"
	"hacker-feed/infrastructure/logger"
	"hacker-feed/usecase"

	"github.com/gin-gonic/gin"
)

// cacheControl lets the CDN serve a page for five minutes and revalidate
// in the background for one more.
const cacheControl = "s-maxage=300, stale-while-revalidate=60"

type IStoryHandler interface {
	GetStories(c *gin.Context)
}

type StoryHandler struct {
	StoryUsecase usecase.IStoryUsecase
}

func NewStoryHandler(storyUsecase usecase.IStoryUsecase) IStoryHandler {
	return &StoryHandler{StoryUsecase: storyUsecase}
}

// GetStories serves GET /stories?type={category}&page={n}. Invalid or
// missing parameters fall back to the top-stories category and page 1
// rather than erroring.
func (h *StoryHandler) GetStories(c *gin.Context) {
	category := c.DefaultQuery("type", model.CategoryTop)
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}

	stories, err := h.StoryUsecase.GetPage(c.Request.Context(), category, page)
	if err != nil {
		logger.GetLogger().WithFields(map[string]interface{}{
			"type":  category,
			"page":  page,
			"error": err,
		}).Error("Error while fetching stories")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch stories"})
		return
	}

	c.Header("Cache-Control", cacheControl)
	c.JSON(http.StatusOK, stories)
}
