package api

import (
	"errors"

	"github.com/danielgtaylor/huma/v2"
	"github.com/smazurov/keycolor/internal/bootstrap"
	"github.com/smazurov/keycolor/internal/ratbag"
	"github.com/smazurov/keycolor/internal/session"
)

// toHTTPError maps workflow errors onto HTTP statuses: rejected input is
// 400, a missing tool 503 and a tool that ran and failed 502.
func toHTTPError(err error) error {
	msg := session.ErrorMessage(err)
	switch {
	case session.IsValidation(err):
		return huma.Error400BadRequest(msg)
	case ratbag.IsToolNotFound(err):
		return huma.Error503ServiceUnavailable(msg)
	case ratbag.IsToolFailed(err):
		return huma.Error502BadGateway(msg)
	}

	var berr *bootstrap.Error
	if errors.As(err, &berr) {
		return huma.Error502BadGateway(berr.Error())
	}
	return huma.Error500InternalServerError(msg)
}
