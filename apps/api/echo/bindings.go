package echoapi

import (
	"github.com/go-playground/validator/v10"

	"github.com/anwesha-dev/campusflow-ai/core"
	"github.com/anwesha-dev/campusflow-ai/core/auth"
	"github.com/anwesha-dev/campusflow-ai/core/fee"
)

type (
	LoginRequest struct {
		Email    string    `json:"email" validate:"required,email"`
		Password string    `json:"password" validate:"required"`
		Role     auth.Role `json:"role" validate:"required,oneof=student admin"`
	}

	LoginResponse struct {
		Token string    `json:"token"`
		User  auth.User `json:"user"`
	}

	SelectRequest struct {
		InstallmentID string `json:"installment_id" validate:"required,slug"`
	}

	MethodRequest struct {
		Method fee.Method `json:"method" validate:"required,oneof=upi card netbanking wallet"`
	}

	SubmitRequest struct {
		Wait bool `json:"wait" query:"wait"` // block until the receipt is ready
	}

	SubmitResponse struct {
		Flow    fee.Flow     `json:"flow"`
		Receipt *fee.Receipt `json:"receipt,omitempty"`
	}

	LateFeeResponse struct {
		Applied bool        `json:"applied"`
		Summary fee.Summary `json:"summary"`
	}

	// StreamMessage is the first message of the events stream.
	StreamMessage struct {
		Type string   `json:"type"`
		Flow fee.Flow `json:"flow"`
	}
)

func (lr *LoginRequest) Validate(validate *validator.Validate) error {
	lr.Role = auth.Role(core.CleanString(string(lr.Role), true /* lower */))
	return validate.Struct(lr)
}

func (sr *SelectRequest) Validate(validate *validator.Validate) error {
	sr.InstallmentID = core.CleanString(sr.InstallmentID, true /* lower */)
	return validate.Struct(sr)
}

func (mr *MethodRequest) Validate(validate *validator.Validate) error {
	mr.Method = fee.Method(core.CleanString(string(mr.Method), true /* lower */))
	return validate.Struct(mr)
}
