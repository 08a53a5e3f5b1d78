package server

import (
	"context"
	"crypto/subtle"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	log "github.com/sirupsen/logrus"

	"github.com/Makepad-fr/bingo/internal/model"
)

// Source hands out a freshly loaded card per request.
type Source interface {
	Game(ctx context.Context) (*model.Game, error)
}

type Options struct {
	Token     string // bearer token required on /api; empty disables auth
	StaticDir string // served at / when set
}

// New builds the echo instance serve listens with.
func New(src Source, opt Options, logger *log.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(requestLogger(logger))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))
	if opt.StaticDir != "" {
		e.Static("/", opt.StaticDir)
	}
	Register(e, src, opt.Token, logger)
	return e
}

// Register wires up the bingo routes on the provided Echo instance.
func Register(e *echo.Echo, src Source, token string, logger *log.Logger) {
	e.GET("/healthz", healthz)

	api := e.Group("/api")
	if token != "" {
		api.Use(middleware.KeyAuthWithConfig(middleware.KeyAuthConfig{
			Validator: func(key string, c echo.Context) (bool, error) {
				return subtle.ConstantTimeCompare([]byte(key), []byte(token)) == 1, nil
			},
			ErrorHandler: func(err error, c echo.Context) error {
				return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
			},
		}))
	}
	api.GET("/bingo", getBingo(src, logger))
	api.GET("/bingo/export", exportBingo(src, logger))
}

func healthz(c echo.Context) error {
	return c.NoContent(http.StatusOK)
}

func getBingo(src Source, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) error {
		g, err := src.Game(c.Request().Context())
		if err != nil {
			logger.WithError(err).Error("load bingo")
			return c.String(http.StatusInternalServerError, err.Error())
		}
		logger.WithField("items", g.Len()).Debug("serving bingo")
		return c.JSON(http.StatusOK, g)
	}
}

func exportBingo(src Source, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) error {
		g, err := src.Game(c.Request().Context())
		if err != nil {
			logger.WithError(err).Error("load bingo")
			return c.String(http.StatusInternalServerError, err.Error())
		}
		return c.JSONBlob(http.StatusOK, g.Save())
	}
}

func requestLogger(logger *log.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			entry := logger.WithFields(log.Fields{
				"method":  v.Method,
				"uri":     v.URI,
				"status":  v.Status,
				"latency": v.Latency,
			})
			if v.Error != nil {
				entry.WithError(v.Error).Warn("request failed")
				return nil
			}
			entry.Info("request")
			return nil
		},
	})
}
