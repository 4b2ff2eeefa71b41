package handler

import (
	"github.com/labstack/echo/v4"
	"net/http"
	"promptlib/cmd/internal/contract"
	"promptlib/cmd/internal/utils"
	"time"
)

func HealthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, &contract.HealthResponse{
		Status:    "ok",
		Timestamp: utils.FormatInstant(time.Now()),
	})
}
