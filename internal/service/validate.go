package service

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/omarshaarawi/scrimbot/internal/models"
)

const (
	maxGames    = 99
	dateRule    = "required,datetime=2006-01-02"
	scrimIDRule = "len=6,number"
)

var (
	validate     = newValidator()
	teamNameRule = "required,max=" + strconv.Itoa(models.MaxTeamNameLength)
)

// inputErrors maps the field that failed validation to the error the user sees.
var inputErrors = map[string]*Error{
	"Date":      ErrInvalidDate,
	"Time":      ErrInvalidTime,
	"Games":     ErrInvalidGames,
	"OtherInfo": ErrInvalidInfo,
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	mustRegister(v, "scrimtime", func(fl validator.FieldLevel) bool {
		_, err := NormalizeTime(fl.Field().String())
		return err == nil
	})
	mustRegister(v, "gamecount", func(fl validator.FieldLevel) bool {
		n, err := strconv.Atoi(fl.Field().String())
		return err == nil && n >= 1 && n <= maxGames
	})
	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("registering %s validation: %v", tag, err))
	}
}

// checkInput validates a tagged command input and reports the first failing
// field as its domain error.
func checkInput(in any) error {
	err := validate.Struct(in)
	var fields validator.ValidationErrors
	if !errors.As(err, &fields) {
		return err
	}
	if e, ok := inputErrors[fields[0].StructField()]; ok {
		return e
	}
	return fmt.Errorf("unexpected validation failure on %s: %w", fields[0].Namespace(), err)
}

func checkTeamName(name string) error {
	if validate.Var(name, teamNameRule) != nil {
		return ErrInvalidTeamName
	}
	return nil
}

// ParseDate accepts a calendar date written as YYYY-MM-DD.
func ParseDate(s string) (string, error) {
	s = strings.TrimSpace(s)
	if validate.Var(s, dateRule) != nil {
		return "", ErrInvalidDate
	}
	return s, nil
}

func validScrimID(id string) bool {
	return validate.Var(id, scrimIDRule) == nil
}
