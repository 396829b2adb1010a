package http

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"kesef/internal/core"
	"kesef/internal/services"
)

type registerRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type locationRequest struct {
	Latitude  *float64 `json:"latitude" validate:"required,gte=-90,lte=90"`
	Longitude *float64 `json:"longitude" validate:"required,gte=-180,lte=180"`
	Address   string   `json:"address" validate:"max=200"`
	PlaceName string   `json:"placeName" validate:"max=200"`
}

type transactionRequest struct {
	// UserID may name the owner; only admins can add for someone else.
	UserID      string           `json:"userId"`
	Type        string           `json:"type" validate:"required,oneof=income expense"`
	Description string           `json:"description" validate:"max=100"`
	Amount      *core.Money      `json:"amount" validate:"required"`
	Category    string           `json:"category" validate:"required,max=50"`
	Date        string           `json:"date" validate:"required,datetime=2006-01-02"`
	Location    *locationRequest `json:"location"`
}

func (t transactionRequest) input() services.TransactionInput {
	in := services.TransactionInput{
		Type:        core.TransactionType(t.Type),
		Description: t.Description,
		Amount:      *t.Amount,
		Category:    t.Category,
		Date:        t.Date,
	}
	if t.Location != nil {
		in.Location = &core.Location{
			Latitude:  *t.Location.Latitude,
			Longitude: *t.Location.Longitude,
			Address:   t.Location.Address,
			PlaceName: t.Location.PlaceName,
		}
	}
	return in
}

type goalRequest struct {
	Category string `json:"category" validate:"required,max=50"`
	Goal     string `json:"goal" validate:"required,oneof=less more"`
}

type habitRequest struct {
	Description string     `json:"description" validate:"max=100"`
	Amount      core.Money `json:"amount"`
	Frequency   string     `json:"frequency" validate:"required,oneof=daily weekly monthly"`
}

type preferencesRequest struct {
	UserID string         `json:"userId"`
	Goals  []goalRequest  `json:"goals" validate:"max=50,dive"`
	Habits []habitRequest `json:"habits" validate:"max=50,dive"`
}

func (p preferencesRequest) domain() ([]core.Goal, []core.Habit) {
	goals := make([]core.Goal, len(p.Goals))
	for i, g := range p.Goals {
		goals[i] = core.Goal{Category: strings.TrimSpace(g.Category), Goal: core.GoalDirection(g.Goal)}
	}
	habits := make([]core.Habit, len(p.Habits))
	for i, h := range p.Habits {
		habits[i] = core.Habit{Description: strings.TrimSpace(h.Description), Amount: h.Amount, Frequency: core.Frequency(h.Frequency)}
	}
	return goals, habits
}

type makeAdminRequest struct {
	Email string `json:"email" validate:"required,email"`
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

type fieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func describeValidation(errs validator.ValidationErrors) []fieldError {
	out := make([]fieldError, 0, len(errs))
	for _, fe := range errs {
		out = append(out, fieldError{Field: fieldPath(fe), Message: validationMessage(fe)})
	}
	return out
}

// fieldPath drops the top-level struct name from the namespace.
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return fe.Field()
}

func validationMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return "invalid email address"
	case "min":
		return field + " must be at least " + fe.Param() + " characters"
	case "max":
		return field + " must be at most " + fe.Param() + " long"
	case "gte":
		return field + " must be at least " + fe.Param()
	case "lte":
		return field + " must be at most " + fe.Param()
	case "oneof":
		return field + " must be one of: " + fe.Param()
	case "datetime":
		return field + " must be a date in YYYY-MM-DD format"
	default:
		return field + " failed " + fe.Tag() + " validation"
	}
}
