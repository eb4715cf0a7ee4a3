package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/harrylevesque/clientdir/internal/auth"
	"github.com/harrylevesque/clientdir/internal/geocoding"
	"github.com/harrylevesque/clientdir/internal/mapregion"
	"github.com/harrylevesque/clientdir/internal/metrics"
	"github.com/harrylevesque/clientdir/internal/models"
	"github.com/harrylevesque/clientdir/internal/ratelimit"
	"github.com/harrylevesque/clientdir/internal/remote"
	"github.com/harrylevesque/clientdir/internal/utils"
	"github.com/harrylevesque/clientdir/internal/validate"
)

const maxBodyBytes = 1 << 20

// ClientService is the client directory behind the /clients endpoints.
type ClientService interface {
	Clients(ctx context.Context) ([]models.Client, error)
	Search(ctx context.Context, query string) ([]models.Client, error)
	CreateClient(ctx context.Context, in models.ClientInput) (models.Client, error)
	ClientByID(ctx context.Context, id int) (models.Client, error)
	UpdateClient(ctx context.Context, c models.Client) (models.Client, error)
	DeleteClient(ctx context.Context, id int) error
}

// PostalService looks up and geocodes postal codes.
type PostalService interface {
	Lookup(ctx context.Context, cep string) (*models.PostalAddress, error)
	Resolve(ctx context.Context, cep string) models.Geo
}

// Accounts is the account store behind the /auth endpoints.
type Accounts interface {
	Login(username, password string) (models.PublicUser, error)
	Register(r models.Registration) (models.PublicUser, error)
	UserByID(id int) (models.PublicUser, error)
}

// Handlers serves the directory API.
type Handlers struct {
	clients  ClientService
	postal   PostalService
	accounts Accounts
	sessions *auth.Sessions
	limiter  *ratelimit.Limiter
	log      logrus.FieldLogger
}

// Deps are the services a Handlers is built from. Limiter may be nil.
type Deps struct {
	Clients  ClientService
	Postal   PostalService
	Accounts Accounts
	Sessions *auth.Sessions
	Limiter  *ratelimit.Limiter
	Logger   logrus.FieldLogger
}

func NewHandlers(d Deps) *Handlers {
	log := d.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Handlers{
		clients:  d.Clients,
		postal:   d.Postal,
		accounts: d.Accounts,
		sessions: d.Sessions,
		limiter:  d.Limiter,
		log:      log,
	}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string            `json:"token"`
	ExpiresAt time.Time         `json:"expires_at"`
	User      models.PublicUser `json:"user"`
}

func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.ErrorResponse(w, r, err)
		return
	}
	if !validate.Credentials(req.Username, req.Password) {
		h.ErrorResponse(w, r, utils.New(http.StatusBadRequest, "please fill in every field"))
		return
	}
	if !h.limiter.Allow(clientIP(r), time.Now()) {
		metrics.RecordLogin("throttled")
		h.ErrorResponse(w, r, utils.New(http.StatusTooManyRequests, "too many login attempts, try again later"))
		return
	}

	user, err := h.accounts.Login(req.Username, req.Password)
	if err != nil {
		metrics.RecordLogin("rejected")
		h.ErrorResponse(w, r, err)
		return
	}
	metrics.RecordLogin("accepted")
	sess := h.sessions.Issue(user.ID)
	logger(r).WithField("user_id", user.ID).Info("user logged in")
	JSONResponse(w, http.StatusOK, loginResponse{Token: sess.Token, ExpiresAt: sess.ExpiresAt, User: user})
}

func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) {
	var req models.Registration
	if err := decodeJSON(w, r, &req); err != nil {
		h.ErrorResponse(w, r, err)
		return
	}
	if fields := validate.RegistrationErrors(req); len(fields) > 0 {
		h.ErrorResponse(w, r, utils.Invalid("invalid registration", fields))
		return
	}

	user, err := h.accounts.Register(req)
	if err != nil {
		h.ErrorResponse(w, r, err)
		return
	}
	logger(r).WithField("user_id", user.ID).Info("user registered")
	JSONResponse(w, http.StatusCreated, user)
}

func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	if err := h.sessions.Revoke(sess.Token); err != nil {
		h.ErrorResponse(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.accounts.UserByID(sessionFrom(r.Context()).UserID)
	if err != nil {
		h.ErrorResponse(w, r, err)
		return
	}
	JSONResponse(w, http.StatusOK, user)
}

func (h *Handlers) ListClients(w http.ResponseWriter, r *http.Request) {
	list, err := h.clients.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		h.ErrorResponse(w, r, upstream(err, "failed to load clients, try again"))
		return
	}
	JSONResponse(w, http.StatusOK, list)
}

func (h *Handlers) CreateClient(w http.ResponseWriter, r *http.Request) {
	var in models.ClientInput
	if err := decodeJSON(w, r, &in); err != nil {
		h.ErrorResponse(w, r, err)
		return
	}
	in.Phone = validate.Digits(in.Phone)
	in.Address.Zipcode = validate.Digits(in.Address.Zipcode)
	if fields := validate.ClientErrors(in); len(fields) > 0 {
		h.ErrorResponse(w, r, utils.Invalid("invalid client", fields))
		return
	}

	c, err := h.clients.CreateClient(r.Context(), in)
	if err != nil {
		h.ErrorResponse(w, r, upstream(err, "failed to register client, try again"))
		return
	}
	logger(r).WithField("client_id", c.ID).Info("client created")
	JSONResponse(w, http.StatusCreated, c)
}

func (h *Handlers) GetClient(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.ErrorResponse(w, r, err)
		return
	}
	c, err := h.clients.ClientByID(r.Context(), id)
	if err != nil {
		h.ErrorResponse(w, r, upstream(err, "failed to load client, try again"))
		return
	}
	JSONResponse(w, http.StatusOK, c)
}

func (h *Handlers) UpdateClient(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.ErrorResponse(w, r, err)
		return
	}
	var c models.Client
	if err := decodeJSON(w, r, &c); err != nil {
		h.ErrorResponse(w, r, err)
		return
	}
	c.ID = id
	c.Phone = validate.Digits(c.Phone)
	c.Address.Zipcode = validate.Digits(c.Address.Zipcode)
	in := models.ClientInput{Name: c.Name, Email: c.Email, Phone: c.Phone, Address: c.Address}
	if fields := validate.ClientErrors(in); len(fields) > 0 {
		h.ErrorResponse(w, r, utils.Invalid("invalid client", fields))
		return
	}

	updated, err := h.clients.UpdateClient(r.Context(), c)
	if err != nil {
		h.ErrorResponse(w, r, upstream(err, "failed to update client, try again"))
		return
	}
	JSONResponse(w, http.StatusOK, updated)
}

func (h *Handlers) DeleteClient(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.ErrorResponse(w, r, err)
		return
	}
	if err := h.clients.DeleteClient(r.Context(), id); err != nil {
		h.ErrorResponse(w, r, upstream(err, "failed to delete client, try again"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) Region(w http.ResponseWriter, r *http.Request) {
	list, err := h.clients.Clients(r.Context())
	if err != nil {
		h.ErrorResponse(w, r, upstream(err, "failed to load clients, try again"))
		return
	}
	JSONResponse(w, http.StatusOK, mapregion.Frame(list))
}

func (h *Handlers) LookupCEP(w http.ResponseWriter, r *http.Request) {
	addr, err := h.postal.Lookup(r.Context(), mux.Vars(r)["cep"])
	switch {
	case errors.Is(err, geocoding.ErrInvalidCEP):
		h.ErrorResponse(w, r, utils.New(http.StatusBadRequest, err.Error()))
		return
	case errors.Is(err, geocoding.ErrCEPNotFound):
		h.ErrorResponse(w, r, utils.New(http.StatusNotFound, err.Error()))
		return
	case err != nil:
		h.ErrorResponse(w, r, upstream(err, "postal code lookup failed, try again"))
		return
	}
	JSONResponse(w, http.StatusOK, addr)
}

type coordinatesResponse struct {
	CEP string  `json:"cep"`
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

func (h *Handlers) ResolveCEP(w http.ResponseWriter, r *http.Request) {
	cep := mux.Vars(r)["cep"]
	geo := h.postal.Resolve(r.Context(), cep)
	JSONResponse(w, http.StatusOK, coordinatesResponse{CEP: validate.FormatCEP(cep), Lat: geo.Lat, Lng: geo.Lng})
}

// JSONResponse writes a JSON response.
func JSONResponse(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// ErrorResponse writes err as {"error": ...} with the matching status.
func (h *Handlers) ErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	var apiErr *utils.APIError
	switch {
	case errors.As(err, &apiErr):
	case errors.Is(err, auth.ErrInvalidCredentials):
		apiErr = &utils.APIError{Code: http.StatusUnauthorized, Message: "invalid username or password"}
	case errors.Is(err, auth.ErrUserExists):
		apiErr = &utils.APIError{Code: http.StatusConflict, Message: err.Error()}
	case errors.Is(err, auth.ErrUserNotFound):
		apiErr = &utils.APIError{Code: http.StatusNotFound, Message: err.Error()}
	case errors.Is(err, auth.ErrSessionNotFound), errors.Is(err, auth.ErrSessionExpired):
		apiErr = &utils.APIError{Code: http.StatusUnauthorized, Message: err.Error()}
	default:
		apiErr = &utils.APIError{Code: http.StatusInternalServerError, Message: "internal error"}
	}
	if apiErr.Code >= http.StatusInternalServerError {
		logger(r).WithError(err).Error("request failed")
	}
	JSONResponse(w, apiErr.Code, apiErr)
}

// upstream maps a users-backend failure: a backend 404 stays a 404,
// anything else is a 502 with message.
func upstream(err error, message string) error {
	if remote.IsNotFound(err) {
		return utils.New(http.StatusNotFound, "client not found")
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	return &utils.APIError{Code: http.StatusBadGateway, Message: message}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return utils.New(http.StatusBadRequest, "invalid request body")
	}
	return nil
}

func pathID(r *http.Request) (int, error) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil || id <= 0 {
		return 0, utils.New(http.StatusBadRequest, "invalid client id")
	}
	return id, nil
}
