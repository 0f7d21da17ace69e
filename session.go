package main

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"time"

	"farmrecords/models"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"
)

const accountKey = "account"

var ErrNoSession = errors.New("no active session")

type sessionClaims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// startSession stores the hash of a fresh session id and hands the browser a
// signed token carrying the raw id. The token has no expiry unless
// session.ttl is set.
func (a *app) startSession(c *gin.Context, acc *models.Account) error {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return fmt.Errorf("generate session id: %w", err)
	}
	sid := hex.EncodeToString(b)
	now := time.Now()

	s := models.Session{AccountID: acc.ID, TokenHash: hashToken(sid)}
	claims := sessionClaims{
		SessionID: sid,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  acc.Username,
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	maxAge := 0
	if ttl := a.cfg.Session.TTL; ttl > 0 {
		exp := now.Add(ttl)
		s.ExpiresAt = &exp
		claims.ExpiresAt = jwt.NewNumericDate(exp)
		maxAge = int(ttl.Seconds())
	}
	if err := a.db.Create(&s).Error; err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return fmt.Errorf("sign session: %w", err)
	}
	a.setCookie(c, a.cfg.Session.Cookie, token, maxAge)
	return nil
}

// currentAccount resolves the session cookie to its account. Any bad,
// revoked or expired token yields ErrNoSession.
func (a *app) currentAccount(c *gin.Context) (*models.Account, error) {
	s, err := a.activeSession(c)
	if err != nil {
		return nil, err
	}
	var acc models.Account
	if err := a.db.First(&acc, s.AccountID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoSession
		}
		return nil, fmt.Errorf("load account: %w", err)
	}
	return &acc, nil
}

// endSession revokes the server-side row and clears the cookie.
func (a *app) endSession(c *gin.Context) error {
	defer a.setCookie(c, a.cfg.Session.Cookie, "", -1)
	s, err := a.activeSession(c)
	if errors.Is(err, ErrNoSession) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := a.db.Model(s).Update("revoked", true).Error; err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}

func (a *app) activeSession(c *gin.Context) (*models.Session, error) {
	raw, err := c.Cookie(a.cfg.Session.Cookie)
	if err != nil || raw == "" {
		return nil, ErrNoSession
	}
	var claims sessionClaims
	_, err = jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || claims.SessionID == "" {
		return nil, ErrNoSession
	}
	var s models.Session
	err = a.db.Where("token_hash = ? AND revoked = ?", hashToken(claims.SessionID), false).First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if s.ExpiresAt != nil && time.Now().After(*s.ExpiresAt) {
		return nil, ErrNoSession
	}
	return &s, nil
}

// loginRequired redirects to /login when there is no session and otherwise
// stores the account in the context.
func (a *app) loginRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		acc, err := a.currentAccount(c)
		if errors.Is(err, ErrNoSession) {
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
			return
		}
		if err != nil {
			a.serverError(c, err)
			c.Abort()
			return
		}
		c.Set(accountKey, acc)
		c.Next()
	}
}

// accountFrom returns the account set by loginRequired, or nil.
func accountFrom(c *gin.Context) *models.Account {
	v, ok := c.Get(accountKey)
	if !ok {
		return nil
	}
	acc, _ := v.(*models.Account)
	return acc
}

func hashToken(raw string) string {
	h := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(h[:])
}

func (a *app) setCookie(c *gin.Context, name, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(name, value, maxAge, "/", "", a.cfg.Session.SecureCookie, true)
}
