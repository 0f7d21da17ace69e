package main

import (
	"net/http"

	"farmrecords/pkg/config"
	"farmrecords/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// app carries the handles every controller needs.
type app struct {
	cfg    *config.Config
	db     *gorm.DB
	log    *zap.Logger
	secret []byte
}

func newApp(cfg *config.Config, db *gorm.DB, log *zap.Logger) *app {
	return &app{cfg: cfg, db: db, log: log, secret: []byte(cfg.Session.Secret)}
}

func (a *app) router() (*gin.Engine, error) {
	tmpl, err := loadTemplates()
	if err != nil {
		return nil, err
	}
	r := gin.New()
	r.Use(logger.GinLogger(a.log), gin.Recovery())
	r.SetHTMLTemplate(tmpl)
	if a.cfg.Security.CSRF {
		r.Use(a.csrfMiddleware())
	}
	a.setupRoutes(r)
	return r, nil
}

// render adds the values every page uses (CSRF token, pending flash, signed
// in account) to data.
func (a *app) render(c *gin.Context, status int, page string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	data["csrf"] = c.GetString(csrfField)
	if _, ok := data["flash"]; !ok {
		if f := a.popFlash(c); f != nil {
			data["flash"] = f
		}
	}
	if acc := accountFrom(c); acc != nil {
		data["account"] = acc
	}
	c.HTML(status, page, data)
}

func (a *app) serverError(c *gin.Context, err error) {
	_ = c.Error(err)
	a.log.Error("request failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
	c.String(http.StatusInternalServerError, "internal server error")
}
