package otel

import (
	"go.opentelemetry.io/otel"

	"github.com/greenbasket/grocer/internal/constants"
)

var Tracer = otel.Tracer(constants.AppUserService)
