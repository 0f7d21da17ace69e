package main

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"time"

	"farmrecords/models"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
	"gorm.io/gorm"
)

const dateLayout = "2006-01-02"

const (
	msgUsernameTaken   = "That username already exists. Please choose a different one."
	msgNationalIDTaken = "That national ID is already registered."
)

func init() {
	// report errors under the form field name, not the Go field name
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("form"), ",")
			if name == "-" {
				return ""
			}
			return name
		})
	}
}

// FieldErrors maps a form field name to its messages.
type FieldErrors map[string][]string

func (fe FieldErrors) Add(field, msg string) {
	fe[field] = append(fe[field], msg)
}

func (fe FieldErrors) Has(field string) bool {
	return len(fe[field]) > 0
}

func (fe FieldErrors) Empty() bool {
	return len(fe) == 0
}

func (fe FieldErrors) Error() string {
	fields := lo.Keys(fe)
	sort.Strings(fields)
	return strings.Join(lo.Map(fields, func(f string, _ int) string {
		return f + ": " + strings.Join(fe[f], " ")
	}), "; ")
}

type registrationForm struct {
	Username string `form:"username" binding:"required,min=4,max=20"`
	Password string `form:"password" binding:"required,min=8,max=20"`
}

type loginForm struct {
	Username string `form:"username" binding:"required,min=4,max=20"`
	Password string `form:"password" binding:"required,min=8,max=20"`
}

type farmerProfileForm struct {
	FirstName   string `form:"first_name" binding:"required,min=3,max=20"`
	Surname     string `form:"surname" binding:"required,min=3,max=20"`
	Mobile      string `form:"mobile" binding:"required,min=10,max=12"`
	Gender      string `form:"gender" binding:"required,oneof=Male Female"`
	DateOfBirth string `form:"date_of_birth" binding:"required,datetime=2006-01-02"`
	NationalID  string `form:"national_id" binding:"required,min=5,max=12"`
}

// profileUpdateForm carries the same rules but every field is optional; only
// submitted fields are applied to the stored profile.
type profileUpdateForm struct {
	FirstName   string `form:"first_name" binding:"omitempty,min=3,max=20"`
	Surname     string `form:"surname" binding:"omitempty,min=3,max=20"`
	Mobile      string `form:"mobile" binding:"omitempty,min=10,max=12"`
	Gender      string `form:"gender" binding:"omitempty,oneof=Male Female"`
	DateOfBirth string `form:"date_of_birth" binding:"omitempty,datetime=2006-01-02"`
	NationalID  string `form:"national_id" binding:"omitempty,min=5,max=12"`
}

type produceForm struct {
	HarvestDate string `form:"harvest_date" binding:"required,datetime=2006-01-02"`
	Quantity    string `form:"quantity" binding:"required,numeric"`
}

// bindForm binds urlencoded fields and runs the struct's tag rules. The
// result is never nil.
func bindForm(c *gin.Context, form any) FieldErrors {
	return fieldErrorsFrom(c.ShouldBindWith(form, binding.Form))
}

// validateForm runs tag rules on a struct filled outside a request.
func validateForm(form any) FieldErrors {
	return fieldErrorsFrom(binding.Validator.ValidateStruct(form))
}

func fieldErrorsFrom(err error) FieldErrors {
	errs := FieldErrors{}
	if err == nil {
		return errs
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		errs.Add("form", err.Error())
		return errs
	}
	for _, fe := range verrs {
		errs.Add(fe.Field(), fieldMessage(fe))
	}
	return errs
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "min":
		return fmt.Sprintf("Field must be at least %s characters long.", fe.Param())
	case "max":
		return fmt.Sprintf("Field must be at most %s characters long.", fe.Param())
	case "oneof":
		return "Not a valid choice."
	case "datetime":
		return "Not a valid date value."
	case "numeric":
		return "Not a valid number."
	}
	return fmt.Sprintf("Failed %s validation.", fe.Tag())
}

// checkUnique adds an error when the username is already registered. It is
// skipped when the field already failed its own rules.
func (f registrationForm) checkUnique(db *gorm.DB, errs FieldErrors) error {
	if errs.Has("username") {
		return nil
	}
	taken, err := usernameTaken(db, f.Username)
	if err != nil {
		return err
	}
	if taken {
		errs.Add("username", msgUsernameTaken)
	}
	return nil
}

func (f farmerProfileForm) checkUnique(db *gorm.DB, errs FieldErrors) error {
	return checkNationalID(db, errs, f.NationalID, 0)
}

// checkUnique ignores the profile's own national ID.
func (f profileUpdateForm) checkUnique(db *gorm.DB, errs FieldErrors, p *models.FarmerProfile) error {
	if f.NationalID == "" || f.NationalID == p.NationalID {
		return nil
	}
	return checkNationalID(db, errs, f.NationalID, p.ID)
}

func checkNationalID(db *gorm.DB, errs FieldErrors, nationalID string, exceptID uint) error {
	if errs.Has("national_id") {
		return nil
	}
	taken, err := nationalIDTaken(db, nationalID, exceptID)
	if err != nil {
		return err
	}
	if taken {
		errs.Add("national_id", msgNationalIDTaken)
	}
	return nil
}

// profile builds a new profile owned by username. The form must be valid.
func (f farmerProfileForm) profile(username string) models.FarmerProfile {
	dob, _ := time.Parse(dateLayout, f.DateOfBirth)
	return models.FarmerProfile{
		Username:    username,
		FirstName:   f.FirstName,
		Surname:     f.Surname,
		Mobile:      f.Mobile,
		Gender:      models.Gender(f.Gender),
		DateOfBirth: dob,
		NationalID:  f.NationalID,
	}
}

// apply overlays the submitted fields; ID and Username are never touched.
func (f profileUpdateForm) apply(p *models.FarmerProfile) {
	if f.FirstName != "" {
		p.FirstName = f.FirstName
	}
	if f.Surname != "" {
		p.Surname = f.Surname
	}
	if f.Mobile != "" {
		p.Mobile = f.Mobile
	}
	if f.Gender != "" {
		p.Gender = models.Gender(f.Gender)
	}
	if f.DateOfBirth != "" {
		if dob, err := time.Parse(dateLayout, f.DateOfBirth); err == nil {
			p.DateOfBirth = dob
		}
	}
	if f.NationalID != "" {
		p.NationalID = f.NationalID
	}
}

func profileUpdateFormFrom(p *models.FarmerProfile) profileUpdateForm {
	return profileUpdateForm{
		FirstName:   p.FirstName,
		Surname:     p.Surname,
		Mobile:      p.Mobile,
		Gender:      string(p.Gender),
		DateOfBirth: p.DateOfBirth.Format(dateLayout),
		NationalID:  p.NationalID,
	}
}

// parse converts a tag-valid form; a non-positive quantity is reported as a
// field error.
func (f produceForm) parse(errs FieldErrors) (time.Time, float64) {
	date, _ := time.Parse(dateLayout, f.HarvestDate)
	qty, err := strconv.ParseFloat(f.Quantity, 64)
	if err != nil || qty <= 0 {
		errs.Add("quantity", "Quantity must be greater than zero.")
	}
	return date, qty
}
