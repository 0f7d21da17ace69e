package main

import (
	"errors"
	"net/http"

	"farmrecords/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func (a *app) setupRoutes(r *gin.Engine) {
	r.GET("/", a.homeHandler)
	handle(r, a.loginHandler, "/login", http.MethodGet, http.MethodPost)
	handle(r, a.registerHandler, "/register", http.MethodGet, http.MethodPost)
	if a.cfg.Server.Debug {
		r.GET("/create", a.createTablesHandler)
	}

	authGroup := r.Group("")
	authGroup.Use(a.loginRequired())
	handle(authGroup, a.dashboardHandler, "/dashboard", http.MethodGet, http.MethodPost)
	handle(authGroup, a.createProfileHandler, "/farmerprofile", http.MethodGet, http.MethodPost)
	authGroup.GET("/viewprofile", a.viewProfileHandler)
	handle(authGroup, a.updateProfileHandler, "/updateprofile",
		http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete)
	handle(authGroup, a.produceHandler, "/produce/:type", http.MethodGet, http.MethodPost)
	handle(authGroup, a.logoutHandler, "/logout", http.MethodGet, http.MethodPost)
}

func handle(r gin.IRoutes, h gin.HandlerFunc, path string, methods ...string) {
	for _, m := range methods {
		r.Handle(m, path, h)
	}
}

func formView(form any, errs FieldErrors) gin.H {
	if errs == nil {
		errs = FieldErrors{}
	}
	return gin.H{"form": form, "errors": errs}
}

func (a *app) homeHandler(c *gin.Context) {
	a.render(c, http.StatusOK, "home.html", nil)
}

// createTablesHandler is only routed in debug mode.
func (a *app) createTablesHandler(c *gin.Context) {
	if err := migrate(a.db); err != nil {
		a.serverError(c, err)
		return
	}
	c.String(http.StatusOK, "All tables created")
}

func (a *app) loginHandler(c *gin.Context) {
	if c.Request.Method == http.MethodGet {
		a.render(c, http.StatusOK, "login.html", formView(loginForm{}, nil))
		return
	}
	var form loginForm
	errs := bindForm(c, &form)
	password := form.Password
	form.Password = ""
	if !errs.Empty() {
		a.render(c, http.StatusUnprocessableEntity, "login.html", formView(form, errs))
		return
	}
	acc, err := authenticate(a.db, form.Username, password)
	if errors.Is(err, ErrInvalidCredentials) {
		a.log.Info("login failed", zap.String("username", form.Username))
		view := formView(form, nil)
		view["flash"] = &flashMessage{Kind: flashDanger, Message: "Invalid username or password."}
		a.render(c, http.StatusUnauthorized, "login.html", view)
		return
	}
	if err != nil {
		a.serverError(c, err)
		return
	}
	if err := a.startSession(c, acc); err != nil {
		a.serverError(c, err)
		return
	}
	c.Redirect(http.StatusFound, "/dashboard")
}

func (a *app) registerHandler(c *gin.Context) {
	if c.Request.Method == http.MethodGet {
		a.render(c, http.StatusOK, "register.html", formView(registrationForm{}, nil))
		return
	}
	var form registrationForm
	errs := bindForm(c, &form)
	if err := form.checkUnique(a.db, errs); err != nil {
		a.serverError(c, err)
		return
	}
	password := form.Password
	form.Password = ""
	if !errs.Empty() {
		a.render(c, http.StatusUnprocessableEntity, "register.html", formView(form, errs))
		return
	}
	acc, err := registerAccount(a.db, form.Username, password)
	if errors.Is(err, ErrDuplicateUsername) {
		errs.Add("username", msgUsernameTaken)
		a.render(c, http.StatusUnprocessableEntity, "register.html", formView(form, errs))
		return
	}
	if err != nil {
		a.serverError(c, err)
		return
	}
	a.log.Info("account registered", zap.String("username", acc.Username), zap.Uint("id", acc.ID))
	a.setFlash(c, flashSuccess, "Account created, please log in.")
	c.Redirect(http.StatusFound, "/login")
}

func (a *app) dashboardHandler(c *gin.Context) {
	acc := accountFrom(c)
	profile, err := findProfile(a.db, acc.Username)
	if err != nil {
		a.serverError(c, err)
		return
	}
	a.render(c, http.StatusOK, "dashboard.html", gin.H{
		"profile":  profile,
		"produces": models.ProduceTypes,
	})
}

func (a *app) createProfileHandler(c *gin.Context) {
	acc := accountFrom(c)
	existing, err := findProfile(a.db, acc.Username)
	if err != nil {
		a.serverError(c, err)
		return
	}
	if existing != nil {
		c.Redirect(http.StatusFound, "/updateprofile")
		return
	}
	if c.Request.Method == http.MethodGet {
		a.render(c, http.StatusOK, "farmerprofile.html", a.profileView(farmerProfileForm{}, nil))
		return
	}
	var form farmerProfileForm
	errs := bindForm(c, &form)
	if err := form.checkUnique(a.db, errs); err != nil {
		a.serverError(c, err)
		return
	}
	if !errs.Empty() {
		a.render(c, http.StatusUnprocessableEntity, "farmerprofile.html", a.profileView(form, errs))
		return
	}
	p := form.profile(acc.Username)
	if err := a.db.Create(&p).Error; err != nil {
		if isUniqueConstraintError(err) {
			errs.Add("national_id", msgNationalIDTaken)
			a.render(c, http.StatusUnprocessableEntity, "farmerprofile.html", a.profileView(form, errs))
			return
		}
		a.serverError(c, err)
		return
	}
	a.setFlash(c, flashSuccess, "Farmer profile created.")
	c.Redirect(http.StatusFound, "/dashboard")
}

func (a *app) profileView(form any, errs FieldErrors) gin.H {
	view := formView(form, errs)
	view["genders"] = models.Genders
	return view
}

func (a *app) viewProfileHandler(c *gin.Context) {
	profile, err := findProfile(a.db, accountFrom(c).Username)
	if err != nil {
		a.serverError(c, err)
		return
	}
	a.render(c, http.StatusOK, "viewprofile.html", gin.H{"profile": profile})
}

// updateProfileHandler overlays the submitted fields on the stored profile.
// Concurrent updates are last write wins.
func (a *app) updateProfileHandler(c *gin.Context) {
	p, err := findProfile(a.db, accountFrom(c).Username)
	if err != nil {
		a.serverError(c, err)
		return
	}
	if p == nil {
		c.Redirect(http.StatusFound, "/farmerprofile")
		return
	}
	if c.Request.Method == http.MethodGet {
		a.render(c, http.StatusOK, "updateprofile.html", a.profileView(profileUpdateFormFrom(p), nil))
		return
	}
	var form profileUpdateForm
	errs := bindForm(c, &form)
	if err := form.checkUnique(a.db, errs, p); err != nil {
		a.serverError(c, err)
		return
	}
	if !errs.Empty() {
		a.render(c, http.StatusUnprocessableEntity, "updateprofile.html", a.profileView(form, errs))
		return
	}
	form.apply(p)
	if err := a.db.Save(p).Error; err != nil {
		if isUniqueConstraintError(err) {
			errs.Add("national_id", msgNationalIDTaken)
			a.render(c, http.StatusUnprocessableEntity, "updateprofile.html", a.profileView(form, errs))
			return
		}
		a.serverError(c, err)
		return
	}
	a.setFlash(c, flashSuccess, "Farmer profile updated.")
	c.Redirect(http.StatusFound, "/dashboard")
}

func (a *app) produceHandler(c *gin.Context) {
	kind := models.ProduceType(c.Param("type"))
	if !validProduce(kind) {
		c.String(http.StatusNotFound, "unknown produce type")
		return
	}
	profile, err := findProfile(a.db, accountFrom(c).Username)
	if err != nil {
		a.serverError(c, err)
		return
	}
	if profile == nil {
		a.setFlash(c, flashInfo, "Create a farmer profile first.")
		c.Redirect(http.StatusFound, "/dashboard")
		return
	}

	var form produceForm
	errs := FieldErrors{}
	status := http.StatusOK
	if c.Request.Method == http.MethodPost {
		errs = bindForm(c, &form)
		if errs.Empty() {
			date, qty := form.parse(errs)
			if errs.Empty() {
				if err := recordHarvest(a.db, kind, profile.ID, date, qty); err != nil {
					a.serverError(c, err)
					return
				}
				a.setFlash(c, flashSuccess, kind.Label()+" harvest recorded.")
				c.Redirect(http.StatusFound, "/produce/"+string(kind))
				return
			}
		}
		status = http.StatusUnprocessableEntity
	}

	entries, err := listHarvests(a.db, kind, profile.ID)
	if err != nil {
		a.serverError(c, err)
		return
	}
	view := formView(form, errs)
	view["kind"] = kind
	view["entries"] = entries
	view["total"] = totalQuantity(entries)
	a.render(c, status, "produce.html", view)
}

func (a *app) logoutHandler(c *gin.Context) {
	if err := a.endSession(c); err != nil {
		a.serverError(c, err)
		return
	}
	c.Redirect(http.StatusFound, "/login")
}
