package controller

import (
	"context"
	"net/url"

	"github.com/ougirez/ayudas/internal/service/ayudas"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type Controller struct {
	service   *ayudas.Service
	db        Pinger
	publicURL *url.URL
}

func NewController(service *ayudas.Service, db Pinger, publicURL *url.URL) *Controller {
	return &Controller{service: service, db: db, publicURL: publicURL}
}
