package handler

import (
	"errors"
	"net/http"
	"reflect"

	"lunapos/internal/apierror"
	"lunapos/internal/middleware"
	"lunapos/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

func init() {
	// Register decimal.Decimal as a numeric type so that validator tags like
	// min=0, gt=0, required work without panicking ("Bad field type decimal.Decimal").
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if v, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := v.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
}

// bindAndValidate binds JSON body and runs go-playground/validator tags.
// Returns false and writes the error response if validation fails —
// the caller should return immediately without writing another response.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid JSON: "+err.Error()))
		return false
	}
	if err := validate.Struct(req); err != nil {
		fields := make(map[string]string)
		for _, fe := range err.(validator.ValidationErrors) {
			fields[fe.Field()] = fe.Tag()
		}
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(fields))
		return false
	}
	return true
}

// operatorID extracts the operator UUID from the verified JWT claims.
// A token whose subject is not a UUID is rejected outright rather than
// silently collapsing into the nil UUID.
func operatorID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(middleware.GetClaims(c).OperatorID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, apierror.NewCoded("invalid_token", "token subject is not a valid operator id"))
		return uuid.Nil, false
	}
	return id, true
}

// writeServiceError maps domain sentinel errors to stable HTTP responses.
// Anything unmapped becomes a generic 400 so internals never leak.
func writeServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, apierror.NewCoded("not_found", err.Error()))
	case errors.Is(err, service.ErrInsufficientStock):
		c.JSON(http.StatusConflict, apierror.NewCoded("insufficient_stock", err.Error()))
	case errors.Is(err, service.ErrOverpayment):
		c.JSON(http.StatusConflict, apierror.NewCoded("overpayment", err.Error()))
	case errors.Is(err, service.ErrAlreadyOpenSession):
		c.JSON(http.StatusConflict, apierror.NewCoded("session_already_open", err.Error()))
	case errors.Is(err, service.ErrClosedRegister):
		c.JSON(http.StatusConflict, apierror.NewCoded("register_closed", err.Error()))
	case errors.Is(err, service.ErrInvalidDiscount):
		c.JSON(http.StatusUnprocessableEntity, apierror.NewCoded("invalid_discount", err.Error()))
	default:
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
	}
}
