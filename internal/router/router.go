// Package router wires repositories, services and handlers and registers
// the HTTP routes.
package router

import (
	"strconv"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/venue-booking/internal/config"
	"github.com/iliyamo/venue-booking/internal/handler"
	"github.com/iliyamo/venue-booking/internal/middleware"
	"github.com/iliyamo/venue-booking/internal/queue"
	"github.com/iliyamo/venue-booking/internal/repository"
	"github.com/iliyamo/venue-booking/internal/service"
	"github.com/iliyamo/venue-booking/internal/storage"
)

// Server is the HTTP surface plus the background work main runs next to it.
type Server struct {
	Echo   *echo.Echo
	Images *service.ImageService
}

// Handlers groups the resource handlers registered under /api.
type Handlers struct {
	Auth         *handler.AuthHandler
	Users        *handler.UsersHandler
	Artists      *handler.ArtistsHandler
	Events       *handler.EventsHandler
	EventArtists *handler.EventArtistsHandler
	Images       *handler.ImagesHandler
}

// New builds the whole application on top of an open database. rdb may be
// nil, which disables rate limiting and caching; pub may be nil, which
// drops roster notifications.
func New(cfg config.Config, log *logrus.Entry, db *sqlx.DB, rdb *redis.Client, files *storage.Store, pub queue.Publisher) *Server {
	users := repository.NewUserRepo(db)
	artists := repository.NewArtistRepo(db)
	events := repository.NewEventRepo(db)
	bookings := repository.NewBookingRepo(db)
	images := repository.NewImageRepo(db)
	tokens := repository.NewTokenRepo(db)

	authSvc := service.NewAuthService(users, tokens, service.AuthConfig{
		Secret:         cfg.JWTSecret,
		AccessTTLMin:   cfg.AccessTTLMin,
		RefreshTTLDays: cfg.RefreshTTLDays,
		BcryptCost:     cfg.BcryptCost,
	})
	imageSvc := service.NewImageService(events, images, files, cfg.OrphanGrace, log)
	rosterSvc := service.NewRosterService(bookings, events, pub, log)

	h := Handlers{
		Auth:         handler.NewAuthHandler(authSvc, users, cfg.JWTSecret, log),
		Users:        handler.NewUsersHandler(users, authSvc, cfg.BcryptCost, log),
		Artists:      handler.NewArtistsHandler(artists, events, log),
		Events:       handler.NewEventsHandler(events, imageSvc, log),
		EventArtists: handler.NewEventArtistsHandler(bookings, events, rosterSvc, log),
		Images:       handler.NewImagesHandler(imageSvc, log),
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = handler.ErrorHandler(log)
	e.Use(echomw.Recover(), echomw.RequestID(), middleware.RequestLogger(log))
	e.Use(middleware.NewTokenBucket(cfg.RateLimit, rdb, log))

	RegisterRoutes(e, handler.NewHealthHandler(db), cfg.UploadDir, cfg.UploadURLPrefix)
	RegisterAuth(e, h.Auth, cfg.JWTSecret, middleware.NewCacheInvalidator(cfg.Cache, rdb, log))

	var guard []echo.MiddlewareFunc
	if cfg.RequireAuth {
		guard = append(guard, middleware.JWTAuth(cfg.JWTSecret))
	}
	guard = append(guard, middleware.NewRedisCache(cfg.Cache, rdb, log))
	RegisterAPI(e, h, cfg.UploadMaxBytes, guard...)

	return &Server{Echo: e, Images: imageSvc}
}

// RegisterRoutes registers routes that never require authentication: the
// health check and the uploaded files.
func RegisterRoutes(e *echo.Echo, health *handler.HealthHandler, uploadDir, urlPrefix string) {
	e.GET("/healthz", health.Health)
	if uploadDir != "" {
		e.Static("/"+strings.Trim(urlPrefix, "/"), uploadDir)
	}
}

// RegisterAuth registers the session endpoints under /api/auth. Only /me
// needs an access token. onUserCreated runs around registration, which adds
// a row to the users resource.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string, onUserCreated ...echo.MiddlewareFunc) {
	g := e.Group("/api/auth")
	g.POST("/register", a.Register, onUserCreated...)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	g.POST("/refresh-access", a.RefreshAccess)
	g.POST("/logout", a.Logout)
	g.GET("/me", a.Me, middleware.JWTAuth(jwtSecret))
}

// RegisterAPI registers the resource routes. mw runs in front of every one
// of them; uploads are additionally capped at maxUpload bytes.
func RegisterAPI(e *echo.Echo, h Handlers, maxUpload int64, mw ...echo.MiddlewareFunc) {
	g := e.Group("/api", mw...)

	g.GET("/users", h.Users.List)
	g.POST("/users", h.Users.Create)
	g.GET("/users/:id", h.Users.Get)
	g.PUT("/users/:id", h.Users.Update)
	g.DELETE("/users/:id", h.Users.Delete)

	g.GET("/artists", h.Artists.List)
	g.POST("/artists", h.Artists.Create)
	g.GET("/artists/:id", h.Artists.Get)
	g.PUT("/artists/:id", h.Artists.Update)
	g.DELETE("/artists/:id", h.Artists.Delete)
	g.GET("/artists/:id/events", h.Artists.ListEvents)

	g.GET("/events", h.Events.List)
	g.POST("/events", h.Events.Create)
	g.GET("/events/calendar", h.Events.Calendar)
	g.GET("/events/:id", h.Events.Get)
	g.PUT("/events/:id", h.Events.Update)
	g.DELETE("/events/:id", h.Events.Delete)

	g.GET("/events/:id/artists", h.EventArtists.List)
	g.POST("/events/:id/artists", h.EventArtists.Replace)

	g.GET("/events/:id/images", h.Images.List)
	var limit []echo.MiddlewareFunc
	if maxUpload > 0 {
		limit = append(limit, echomw.BodyLimit(strconv.FormatInt(maxUpload, 10)+"B"))
	}
	g.POST("/events/:id/images", h.Images.Upload, limit...)
	g.DELETE("/events/:id/images", h.Images.Delete)
}
