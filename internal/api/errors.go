// internal/api/errors.go
package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/render"

	"github.com/tamzrod/luxtronik-replicator/internal/coordinator"
	"github.com/tamzrod/luxtronik-replicator/internal/luxtronik"
	"github.com/tamzrod/luxtronik-replicator/internal/registry"
	"github.com/tamzrod/luxtronik-replicator/internal/transport"
)

var (
	errNoSnapshot = errors.New("no snapshot yet")
	errNoIdentity = errors.New("identity not available from this snapshot")
)

// ErrResponse renders an error as {"status": ..., "error": ...}.
type ErrResponse struct {
	Err            error `json:"-"`
	HTTPStatusCode int   `json:"-"`

	StatusText string `json:"status"`
	ErrorText  string `json:"error,omitempty"`
}

func (e *ErrResponse) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.HTTPStatusCode)
	return nil
}

func newErr(code int, err error) render.Renderer {
	return &ErrResponse{
		Err:            err,
		HTTPStatusCode: code,
		StatusText:     http.StatusText(code),
		ErrorText:      err.Error(),
	}
}

func ErrInvalidRequest(err error) render.Renderer { return newErr(http.StatusBadRequest, err) }
func ErrNotFound(err error) render.Renderer       { return newErr(http.StatusNotFound, err) }
func ErrUnprocessable(err error) render.Renderer  { return newErr(http.StatusUnprocessableEntity, err) }
func ErrUnavailable(err error) render.Renderer    { return newErr(http.StatusServiceUnavailable, err) }
func ErrBadGateway(err error) render.Renderer     { return newErr(http.StatusBadGateway, err) }
func ErrInternal(err error) render.Renderer       { return newErr(http.StatusInternalServerError, err) }

// errFor maps domain errors onto HTTP statuses.
func errFor(err error) render.Renderer {
	switch {
	case errors.Is(err, registry.ErrUnknownName),
		errors.Is(err, registry.ErrUnknownIndex),
		errors.Is(err, luxtronik.ErrFieldMissing):
		return ErrNotFound(err)
	case errors.Is(err, registry.ErrOutOfRange),
		errors.Is(err, registry.ErrNotWritable),
		errors.Is(err, luxtronik.ErrNotParameter):
		return ErrUnprocessable(err)
	case errors.Is(err, coordinator.ErrShutdown),
		errors.Is(err, transport.ErrBusy):
		return ErrUnavailable(err)
	case errors.Is(err, transport.ErrTransport):
		return ErrBadGateway(err)
	}
	return ErrInternal(err)
}
