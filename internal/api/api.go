package api

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ougirez/ayudas/internal/api/controller"
	"github.com/ougirez/ayudas/internal/cache"
	"github.com/ougirez/ayudas/internal/config"
	"github.com/ougirez/ayudas/internal/pkg/store"
	"github.com/ougirez/ayudas/internal/service/ayudas"
)

const apiPrefix = "/api/v1"

type APIService struct {
	router        *echo.Echo
	ayudasService *ayudas.Service
}

func (svc *APIService) Serve(addr string) error {
	if err := svc.router.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (svc *APIService) Shutdown(ctx context.Context) error {
	return svc.router.Shutdown(ctx)
}

// Handler exposes the router, mostly for tests.
func (svc *APIService) Handler() http.Handler {
	return svc.router
}

func NewAPIService(cfg config.ServerConfig, st store.Store, c cache.Cache) (*APIService, error) {
	svc := &APIService{router: echo.New()}

	var publicURL *url.URL
	if cfg.PublicURL != "" {
		u, err := url.Parse(cfg.PublicURL)
		if err != nil {
			return nil, err
		}
		publicURL = u
	}

	svc.router.HideBanner = true
	svc.router.Logger.SetLevel(log.WARN)
	svc.router.Server.ReadTimeout = cfg.ReadTimeout
	svc.router.Server.WriteTimeout = cfg.WriteTimeout

	svc.router.Validator = NewValidator()
	svc.router.Binder = NewBinder()
	svc.router.JSONSerializer = JSONSerializer{}
	svc.router.HTTPErrorHandler = httpErrorHandler

	svc.router.Pre(middleware.AddTrailingSlashWithConfig(middleware.TrailingSlashConfig{
		Skipper: func(c echo.Context) bool {
			return !strings.HasPrefix(c.Request().URL.Path, apiPrefix)
		},
	}))
	svc.router.Use(middleware.Recover())
	svc.router.Use(RequestIDMiddleware)
	svc.router.Use(requestLogger())
	svc.router.Use(MetricsMiddleware)
	svc.router.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodHead, http.MethodOptions},
	}))

	svc.ayudasService = ayudas.NewAyudasService(st, c)
	cntrl := controller.NewController(svc.ayudasService, st, publicURL)

	svc.router.GET("/healthz", cntrl.Healthz)
	svc.router.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	asistencias := svc.router.Group(apiPrefix + "/asistencias")
	asistencias.GET("/detallados/", cntrl.GetDetallados)
	asistencias.GET("/anual/", cntrl.GetAnual)
	asistencias.GET("/mensual/", cntrl.GetMensual)
	asistencias.GET("/ubicacion/", cntrl.GetPorUbicacion)
	asistencias.GET("/evento/", cntrl.GetPorEvento)
	asistencias.GET("/evento_por_departamento/", cntrl.GetEventosPorDepartamento)
	asistencias.GET("/departamento/apilado/", cntrl.GetDepartamentoApilado)
	asistencias.GET("/eventos/conteo/", cntrl.GetConteoEventos)
	asistencias.GET("/tendencia/departamento/", cntrl.GetTendenciaDepartamento)
	asistencias.GET("/tendencia/mensual/", cntrl.GetTendenciaMensual)
	asistencias.GET("/distribucion/mensual/", cntrl.GetDistribucionMensual)
	asistencias.GET("/evolucion/producto/", cntrl.GetEvolucionProducto)
	asistencias.GET("/evento/totales/", cntrl.GetTotalesPorEvento)
	asistencias.GET("/evento/composicion/", cntrl.GetComposicionPorEvento)
	asistencias.GET("/evento/anual/", cntrl.GetEventosAnual)
	asistencias.GET("/incendios/anual/", cntrl.GetIncendiosAnual)
	asistencias.GET("/resumen/", cntrl.GetResumen)
	asistencias.GET("/resumen/departamento/", cntrl.GetResumenDepartamento)

	return svc, nil
}
