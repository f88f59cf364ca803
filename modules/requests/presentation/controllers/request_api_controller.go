package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/campuslabs/softreq/modules/requests/domain/aggregates/request"
	"github.com/campuslabs/softreq/modules/requests/presentation/mappers"
	"github.com/campuslabs/softreq/modules/requests/services"
	"github.com/campuslabs/softreq/pkg/application"
	"github.com/campuslabs/softreq/pkg/authn"
	"github.com/campuslabs/softreq/pkg/authz"
	"github.com/campuslabs/softreq/pkg/composables"
	"github.com/campuslabs/softreq/pkg/intl"
	"github.com/campuslabs/softreq/pkg/middleware"
	"github.com/campuslabs/softreq/pkg/serrors"
)

const BasePath = "/api/solicitacoes"

type RequestAPIController struct {
	app      application.Application
	requests *services.RequestService
	verifier authn.Verifier
	basePath string
}

func NewRequestAPIController(app application.Application, verifier authn.Verifier) application.Controller {
	return &RequestAPIController{
		app:      app,
		requests: app.Service(services.RequestService{}).(*services.RequestService),
		verifier: verifier,
		basePath: BasePath,
	}
}

func (c *RequestAPIController) Key() string {
	return c.basePath
}

func (c *RequestAPIController) Register(r *mux.Router) {
	router := r.PathPrefix(c.basePath).Subrouter()
	router.Use(middleware.Authenticate(c.verifier))

	router.HandleFunc("", c.ListAll).Methods(http.MethodGet)
	router.HandleFunc("/", c.ListAll).Methods(http.MethodGet)
	router.HandleFunc("/minhas", c.ListOwn).Methods(http.MethodGet)
	router.HandleFunc("", c.Create).Methods(http.MethodPost)
	router.HandleFunc("/", c.Create).Methods(http.MethodPost)
	router.HandleFunc("/{id}", c.UpdateStatus).Methods(http.MethodPut)
	router.HandleFunc("/{id}", c.Delete).Methods(http.MethodDelete)
}

func (c *RequestAPIController) ListAll(w http.ResponseWriter, r *http.Request) {
	principal, ok := c.principal(w, r)
	if !ok {
		return
	}
	items, err := c.requests.ListAll(r.Context(), principal)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mappers.RequestsToResponses(items))
}

func (c *RequestAPIController) ListOwn(w http.ResponseWriter, r *http.Request) {
	principal, ok := c.principal(w, r)
	if !ok {
		return
	}
	items, err := c.requests.ListOwn(r.Context(), principal)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mappers.RequestsToResponses(items))
}

func (c *RequestAPIController) Create(w http.ResponseWriter, r *http.Request) {
	principal, ok := c.principal(w, r)
	if !ok {
		return
	}

	var dto request.CreateDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "REQUEST_INVALID_JSON",
			intl.Localize(r.Context(), "Requests.Errors.InvalidJSON", nil, "invalid json"))
		return
	}

	created, err := c.requests.Create(r.Context(), principal, dto)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.Header().Set("Location", c.basePath+"/"+strconv.FormatInt(created.ID(), 10))
	writeJSON(w, http.StatusCreated, mappers.RequestToResponse(created))
}

func (c *RequestAPIController) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	principal, ok := c.principal(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var dto request.UpdateStatusDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "REQUEST_INVALID_JSON",
			intl.Localize(r.Context(), "Requests.Errors.InvalidJSON", nil, "invalid json"))
		return
	}

	updated, err := c.requests.UpdateStatus(r.Context(), principal, id, dto.Status)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mappers.RequestToResponse(updated))
}

func (c *RequestAPIController) Delete(w http.ResponseWriter, r *http.Request) {
	principal, ok := c.principal(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := c.requests.Delete(r.Context(), principal, id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (c *RequestAPIController) principal(w http.ResponseWriter, r *http.Request) (authz.Principal, bool) {
	p, err := composables.UsePrincipal(r.Context())
	if err != nil {
		writeAPIError(w, r, http.StatusUnauthorized, "AUTH_UNAUTHENTICATED",
			intl.Localize(r.Context(), "Errors.Unauthenticated", nil, "authentication required"))
		return authz.Principal{}, false
	}
	return p, true
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		writeAPIError(w, r, http.StatusBadRequest, "REQUEST_INVALID_ID",
			intl.Localize(r.Context(), "Requests.Errors.InvalidID", nil, "invalid request id"))
		return 0, false
	}
	return id, true
}

func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var status int
	switch {
	case errors.Is(err, authz.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, request.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, request.ErrInvalidStatus), errors.Is(err, request.ErrInvalidTransition):
		status = http.StatusUnprocessableEntity
	}

	var coded *serrors.BaseError
	if status == 0 || !errors.As(err, &coded) {
		composables.UseLogger(r.Context()).WithError(err).Error("request lifecycle call failed")
		writeAPIError(w, r, http.StatusInternalServerError, "REQUEST_INTERNAL",
			intl.Localize(r.Context(), "Requests.Errors.Internal", nil, "internal error"))
		return
	}
	writeAPIError(w, r, status, coded.Code, localizeError(r, coded))
}

// localizeError renders the error's locale key in the negotiated language,
// falling back to its English message.
func localizeError(r *http.Request, err *serrors.BaseError) string {
	return intl.Localize(r.Context(), err.LocaleKey, err.TemplateData, err.Message)
}
