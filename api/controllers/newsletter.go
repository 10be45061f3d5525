package controllers

import (
	"net/http"

	"github.com/grocerrypoint/grocerrypoint-backend/api/responses"
	"github.com/grocerrypoint/grocerrypoint-backend/api/validators"
	"github.com/grocerrypoint/grocerrypoint-backend/internal/newsletter"
	pkgerrors "github.com/grocerrypoint/grocerrypoint-backend/pkg/errors"
	"github.com/grocerrypoint/grocerrypoint-backend/pkg/logger"
)

type newsletterRequest struct {
	Email string `json:"email" validate:"required,max=254"`
}

// NewsletterSubscribe adds the email to the marketing list.
func NewsletterSubscribe(svc newsletter.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "newsletter service unavailable"))
			return
		}

		var payload newsletterRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Subscribe(r.Context(), payload.Email)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}
