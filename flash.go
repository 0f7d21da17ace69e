package main

import (
	"strings"

	"github.com/gin-gonic/gin"
)

const flashCookie = "farm_flash"

type flashMessage struct {
	Kind    string
	Message string
}

const (
	flashSuccess = "success"
	flashDanger  = "danger"
	flashInfo    = "info"
)

// setFlash stores one notice for the next rendered page.
func (a *app) setFlash(c *gin.Context, kind, msg string) {
	a.setCookie(c, flashCookie, kind+":"+msg, 0)
}

// popFlash reads and clears the pending notice.
func (a *app) popFlash(c *gin.Context) *flashMessage {
	raw, err := c.Cookie(flashCookie)
	if err != nil || raw == "" {
		return nil
	}
	a.setCookie(c, flashCookie, "", -1)
	kind, msg, ok := strings.Cut(raw, ":")
	if !ok {
		return &flashMessage{Kind: flashInfo, Message: raw}
	}
	return &flashMessage{Kind: kind, Message: msg}
}
