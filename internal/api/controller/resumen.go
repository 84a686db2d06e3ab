package controller

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

func (c *Controller) GetResumen(ctx echo.Context) error {
	filter, err := bindFilter(ctx)
	if err != nil {
		return err
	}

	summary, err := c.service.Summary(ctx.Request().Context(), filter)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, summary)
}

func (c *Controller) GetResumenDepartamento(ctx echo.Context) error {
	filter, err := bindFilter(ctx)
	if err != nil {
		return err
	}

	rows, err := c.service.DepartmentSummaries(ctx.Request().Context(), filter)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, rows)
}

func (c *Controller) Healthz(ctx echo.Context) error {
	if err := c.db.Ping(ctx.Request().Context()); err != nil {
		return ctx.JSON(http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "error": err.Error()})
	}
	return ctx.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
