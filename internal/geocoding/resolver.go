// Package geocoding resolves Brazilian postal codes (CEP) to coordinates
// through the ViaCEP lookup service.
package geocoding

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"

	"github.com/harrylevesque/clientdir/internal/metrics"
	"github.com/harrylevesque/clientdir/internal/models"
	"github.com/harrylevesque/clientdir/internal/validate"
)

const DefaultBaseURL = "https://viacep.com.br"

// Fallback is the Brasília city center, returned whenever a postal code
// cannot be resolved.
var Fallback = models.Geo{Lat: -15.7801, Lng: -47.9292}

var (
	// ErrCEPNotFound is returned when the lookup service does not know the code.
	ErrCEPNotFound = errors.New("cep not found")
	// ErrInvalidCEP is returned when the code does not have 8 digits.
	ErrInvalidCEP = errors.New("cep must have 8 digits")
)

// CoordinateFunc maps the digits of a known postal code to coordinates.
type CoordinateFunc func(digits string) models.Geo

// Resolver turns postal codes into addresses and coordinates.
type Resolver struct {
	baseURL     string
	client      *http.Client
	log         logrus.FieldLogger
	coordinates CoordinateFunc
}

type Option func(*Resolver)

func WithHTTPClient(c *http.Client) Option {
	return func(r *Resolver) { r.client = c }
}

func WithLogger(l logrus.FieldLogger) Option {
	return func(r *Resolver) { r.log = l }
}

// WithCoordinates replaces the seeded coordinate mapping, e.g. with a real
// geocoder.
func WithCoordinates(fn CoordinateFunc) Option {
	return func(r *Resolver) { r.coordinates = fn }
}

// New creates a Resolver against baseURL (DefaultBaseURL when empty).
func New(baseURL string, opts ...Option) *Resolver {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	r := &Resolver{
		baseURL:     strings.TrimRight(baseURL, "/"),
		client:      &http.Client{Timeout: 10 * time.Second},
		log:         logrus.StandardLogger(),
		coordinates: SeededCoordinates,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Lookup fetches the address registered for cep. Punctuation in cep is
// ignored.
func (r *Resolver) Lookup(ctx context.Context, cep string) (*models.PostalAddress, error) {
	digits := validate.Digits(cep)
	if len(digits) != 8 {
		return nil, ErrInvalidCEP
	}

	url := fmt.Sprintf("%s/ws/%s/json/", r.baseURL, digits)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build cep request: %w", err)
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("lookup cep %s: %w", digits, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read cep response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("lookup cep %s: unexpected status %d", digits, resp.StatusCode)
	}
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("lookup cep %s: malformed response", digits)
	}

	res := gjson.ParseBytes(body)
	// ViaCEP has sent both {"erro": true} and {"erro": "true"}.
	if res.Get("erro").Bool() {
		return nil, ErrCEPNotFound
	}
	return &models.PostalAddress{
		CEP:      res.Get("cep").String(),
		Street:   res.Get("logradouro").String(),
		District: res.Get("bairro").String(),
		City:     res.Get("localidade").String(),
		State:    res.Get("uf").String(),
	}, nil
}

// Resolve returns coordinates for cep. It never fails: unknown codes and
// lookup errors yield Fallback.
func (r *Resolver) Resolve(ctx context.Context, cep string) models.Geo {
	digits := validate.Digits(cep)
	_, err := r.Lookup(ctx, digits)
	switch {
	case errors.Is(err, ErrCEPNotFound), errors.Is(err, ErrInvalidCEP):
		r.log.WithField("cep", digits).Warn("cep not found, using fallback coordinates")
		metrics.RecordGeocode("not_found")
		return Fallback
	case err != nil:
		r.log.WithError(err).WithField("cep", digits).Warn("cep lookup failed, using fallback coordinates")
		metrics.RecordGeocode("error")
		return Fallback
	}
	metrics.RecordGeocode("resolved")
	return r.coordinates(digits)
}

// SeededCoordinates derives a deterministic point around Brasília from the
// first five digits of the code. It stands in for real geocoding.
func SeededCoordinates(digits string) models.Geo {
	if len(digits) < 5 {
		return Fallback
	}
	seed, err := strconv.Atoi(digits[:5])
	if err != nil {
		return Fallback
	}
	return models.Geo{
		Lat: Fallback.Lat + float64(seed%10)*0.5 - 2.5,
		Lng: Fallback.Lng + float64(seed%7)*0.7 - 2.1,
	}
}
