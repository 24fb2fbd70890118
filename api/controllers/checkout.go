package controllers

import (
	"net/http"

	"github.com/qrobotics/qrobotics-backend/api/responses"
	"github.com/qrobotics/qrobotics-backend/api/validators"
	checkoutsvc "github.com/qrobotics/qrobotics-backend/internal/checkout"
	pkgerrors "github.com/qrobotics/qrobotics-backend/pkg/errors"
	"github.com/qrobotics/qrobotics-backend/pkg/logger"
)

type checkoutShippingRequest struct {
	Line1  string  `json:"line1" validate:"required"`
	Line2  *string `json:"line2,omitempty"`
	City   string  `json:"city" validate:"required"`
	State  string  `json:"state" validate:"required"`
	Postal string  `json:"postal" validate:"required"`
	Phone  *string `json:"phone,omitempty"`
}

type checkoutRequest struct {
	AddressID int64                    `json:"address_id,omitempty" validate:"omitempty,min=1"`
	Shipping  *checkoutShippingRequest `json:"shipping,omitempty"`
}

// Checkout converts the caller's cart into an order.
func Checkout(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		userID, err := currentUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload checkoutRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := checkoutsvc.PlaceOrderInput{AddressID: payload.AddressID}
		if payload.Shipping != nil {
			input.Shipping = &checkoutsvc.ShippingInput{
				Line1:  payload.Shipping.Line1,
				Line2:  payload.Shipping.Line2,
				City:   payload.Shipping.City,
				State:  payload.Shipping.State,
				Postal: payload.Shipping.Postal,
				Phone:  payload.Shipping.Phone,
			}
		}

		order, err := svc.PlaceOrder(r.Context(), userID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}
