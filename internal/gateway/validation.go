package gateway

import (
	"fmt"
	"strings"
	"time"

	"shareit/internal/models"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

type bookingPayload struct {
	ItemID int64            `json:"itemId" validate:"gt=0"`
	Start  models.Timestamp `json:"start"`
	End    models.Timestamp `json:"end"`
}

type itemCreatePayload struct {
	Name        *string `json:"name" validate:"required,notblank"`
	Description *string `json:"description" validate:"required,notblank"`
	Available   *bool   `json:"available" validate:"required"`
	RequestID   *int64  `json:"requestId" validate:"omitempty,gt=0"`
}

type itemUpdatePayload struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Available   *bool   `json:"available"`
}

type commentPayload struct {
	Text string `json:"text" validate:"notblank"`
}

type requestPayload struct {
	Description string `json:"description" validate:"notblank"`
}

type userCreatePayload struct {
	Name  string `json:"name" validate:"notblank"`
	Email string `json:"email" validate:"required,email"`
}

type userUpdatePayload struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
}

// Validator checks payload shape before a call reaches the core server.
type Validator struct {
	validate *validator.Validate
	now      func() time.Time
}

func NewValidator() *Validator {
	v := validator.New()
	_ = v.RegisterValidation("notblank", validators.NotBlank)
	return &Validator{validate: v, now: time.Now}
}

func (v *Validator) Struct(s any) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s: failed on %s", fe.Field(), fe.Tag()))
	}
	return fmt.Errorf("%s", strings.Join(msgs, "; "))
}

func (v *Validator) Booking(p bookingPayload) error {
	if err := v.Struct(p); err != nil {
		return err
	}
	if p.Start.IsZero() || p.End.IsZero() {
		return fmt.Errorf("start and end are required")
	}
	now := v.now()
	if p.Start.Before(now) {
		return fmt.Errorf("start must not be in the past")
	}
	if !p.End.After(now) {
		return fmt.Errorf("end must be in the future")
	}
	return nil
}

func (v *Validator) ItemUpdate(p itemUpdatePayload) error {
	if p.Name != nil {
		if err := v.validate.Var(*p.Name, "notblank"); err != nil {
			return fmt.Errorf("name must not be blank")
		}
	}
	if p.Description != nil {
		if err := v.validate.Var(*p.Description, "notblank"); err != nil {
			return fmt.Errorf("description must not be blank")
		}
	}
	return nil
}

func (v *Validator) UserUpdate(p userUpdatePayload) error {
	if p.Name != nil {
		if err := v.validate.Var(*p.Name, "notblank"); err != nil {
			return fmt.Errorf("name must not be blank")
		}
	}
	if p.Email != nil {
		if err := v.validate.Var(*p.Email, "required,email"); err != nil {
			return fmt.Errorf("email %q is not valid", *p.Email)
		}
	}
	return nil
}
