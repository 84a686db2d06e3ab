package controller

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

func (c *Controller) GetDetallados(ctx echo.Context) error {
	filter, page, err := bindList(ctx)
	if err != nil {
		return err
	}

	rows, count, err := c.service.Detail(ctx.Request().Context(), filter, page)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, paginated(c.requestURL(ctx), count, page, rows))
}

func (c *Controller) GetAnual(ctx echo.Context) error {
	filter, page, err := bindList(ctx)
	if err != nil {
		return err
	}

	rows, err := c.service.Yearly(ctx.Request().Context(), filter)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, paginatedSlice(c.requestURL(ctx), rows, page))
}

func (c *Controller) GetMensual(ctx echo.Context) error {
	filter, page, err := bindList(ctx)
	if err != nil {
		return err
	}

	rows, err := c.service.Monthly(ctx.Request().Context(), filter)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, paginatedSlice(c.requestURL(ctx), rows, page))
}

func (c *Controller) GetPorUbicacion(ctx echo.Context) error {
	filter, page, err := bindList(ctx)
	if err != nil {
		return err
	}

	rows, err := c.service.ByLocation(ctx.Request().Context(), filter)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, paginatedSlice(c.requestURL(ctx), rows, page))
}

func (c *Controller) GetPorEvento(ctx echo.Context) error {
	filter, page, err := bindList(ctx)
	if err != nil {
		return err
	}

	rows, err := c.service.ByEvent(ctx.Request().Context(), filter)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, paginatedSlice(c.requestURL(ctx), rows, page))
}

func (c *Controller) GetEventosPorDepartamento(ctx echo.Context) error {
	filter, page, err := bindList(ctx)
	if err != nil {
		return err
	}

	rows, err := c.service.EventByDepartment(ctx.Request().Context(), filter)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, paginatedSlice(c.requestURL(ctx), rows, page))
}

func (c *Controller) GetDepartamentoApilado(ctx echo.Context) error {
	filter, err := bindFilter(ctx)
	if err != nil {
		return err
	}

	rows, err := c.service.StackedByDepartment(ctx.Request().Context(), filter)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, rows)
}

func (c *Controller) GetConteoEventos(ctx echo.Context) error {
	var q eventCountsQuery
	if err := ctx.Bind(&q); err != nil {
		return err
	}
	filter, err := q.FilterQuery.Filter()
	if err != nil {
		return err
	}

	rows, err := c.service.EventCounts(ctx.Request().Context(), filter, q.Nivel)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, rows)
}

func (c *Controller) GetTendenciaDepartamento(ctx echo.Context) error {
	filter, err := bindFilter(ctx)
	if err != nil {
		return err
	}

	rows, err := c.service.DepartmentTrend(ctx.Request().Context(), filter)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, rows)
}

func (c *Controller) GetTendenciaMensual(ctx echo.Context) error {
	filter, err := bindFilter(ctx)
	if err != nil {
		return err
	}

	rows, err := c.service.MonthlyTrend(ctx.Request().Context(), filter)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, rows)
}

func (c *Controller) GetDistribucionMensual(ctx echo.Context) error {
	filter, err := bindFilter(ctx)
	if err != nil {
		return err
	}

	rows, err := c.service.MonthlyDistribution(ctx.Request().Context(), filter)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, rows)
}

func (c *Controller) GetEvolucionProducto(ctx echo.Context) error {
	filter, err := bindFilter(ctx)
	if err != nil {
		return err
	}

	rows, err := c.service.ProductEvolution(ctx.Request().Context(), filter)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, rows)
}

func (c *Controller) GetTotalesPorEvento(ctx echo.Context) error {
	filter, err := bindFilter(ctx)
	if err != nil {
		return err
	}

	rows, err := c.service.EventTotals(ctx.Request().Context(), filter)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, rows)
}

func (c *Controller) GetComposicionPorEvento(ctx echo.Context) error {
	filter, err := bindFilter(ctx)
	if err != nil {
		return err
	}

	rows, err := c.service.EventComposition(ctx.Request().Context(), filter)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, rows)
}

func (c *Controller) GetEventosAnual(ctx echo.Context) error {
	filter, err := bindFilter(ctx)
	if err != nil {
		return err
	}

	rows, err := c.service.EventsByYear(ctx.Request().Context(), filter)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, rows)
}

func (c *Controller) GetIncendiosAnual(ctx echo.Context) error {
	filter, err := bindFilter(ctx)
	if err != nil {
		return err
	}

	rows, err := c.service.FireStats(ctx.Request().Context(), filter)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, rows)
}
