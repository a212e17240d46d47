package controller

import (
	"net/http"

	"github.com/gitlytics/gitlytics/config"
	"github.com/gitlytics/gitlytics/model"
	"github.com/gitlytics/gitlytics/service"
	"github.com/gin-gonic/gin"
)

type APIController interface {
	GetUserAnalytics(ctx *gin.Context)
}

type apiController struct {
	analyticsService service.AnalyticsService
	config           config.Config
}

func NewAPIController(config config.Config, analyticsService service.AnalyticsService) APIController {
	return apiController{
		analyticsService: analyticsService,
		config:           config,
	}
}

func (s apiController) GetUserAnalytics(c *gin.Context) {
	analytics, err := s.analyticsService.Aggregate(c.Request.Context(), c.Param("username"))

	if err != nil {
		apiErr := model.AsAPIError(err)
		c.JSON(statusFor(apiErr), apiErr)
		return
	}

	c.JSON(http.StatusOK, analytics)
}

// statusFor guards against a zero status sneaking into the response
func statusFor(apiErr *model.APIError) int {
	if apiErr.Status == 0 {
		return http.StatusInternalServerError
	}

	return apiErr.Status
}
