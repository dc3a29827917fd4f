package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/sdko-org/areacheck/internal/geometry"
	"github.com/sdko-org/areacheck/internal/models"
	"github.com/sdko-org/areacheck/internal/profile"
	"github.com/sdko-org/areacheck/internal/validate"
	"github.com/sirupsen/logrus"
)

// Validator turns raw parameters into a point.
type Validator interface {
	Validate(params map[string]string) (geometry.Point, error)
}

// Evaluator decides membership of a point.
type Evaluator interface {
	Contains(p geometry.Point) bool
}

// History records a result and returns the caller's history, newest first.
type History interface {
	AddAndList(key string, result models.CheckResult) []models.CheckResult
}

type PipelineOptions struct {
	Scope        profile.Scope
	MaxBodyBytes int64
	Now          func() time.Time
}

// Pipeline answers hit-check requests: read body, parse, validate,
// evaluate, record, respond.
type Pipeline struct {
	validator Validator
	region    Evaluator
	history   History
	scope     profile.Scope
	maxBody   int64
	now       func() time.Time
	log       *logrus.Entry
}

func NewPipeline(logger *logrus.Logger, validator Validator, region Evaluator, history History, opts PipelineOptions) *Pipeline {
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = 8192
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Pipeline{
		validator: validator,
		region:    region,
		history:   history,
		scope:     opts.Scope,
		maxBody:   opts.MaxBodyBytes,
		now:       opts.Now,
		log:       logger.WithField("component", "check_pipeline"),
	}
}

// Handle processes one request. It never panics; unexpected failures become
// a 500 response.
func (p *Pipeline) Handle(req *Request) (resp *Response) {
	start := p.now()
	log := p.log.WithFields(logrus.Fields{
		"method":    req.Method,
		"path":      req.Path,
		"client_ip": req.RemoteAddr,
	})

	defer func() {
		if rec := recover(); rec != nil {
			log.WithField("panic", fmt.Sprint(rec)).Error("Check failed unexpectedly")
			rejectedTotal.WithLabelValues("internal").Inc()
			resp = errorResponse(http.StatusInternalServerError, start, internalErrorMessage)
		}
		checkDuration.WithLabelValues(strconv.Itoa(resp.Status)).Observe(p.now().Sub(start).Seconds())
	}()

	if !strings.EqualFold(req.Method, http.MethodPost) {
		rejectedTotal.WithLabelValues("method").Inc()
		resp = errorResponse(http.StatusMethodNotAllowed, start, "Only POST is allowed for this endpoint")
		resp.Header.Set("Allow", http.MethodPost)
		return resp
	}

	params, err := p.params(req)
	if err != nil {
		var te *TransportError
		if !errors.As(err, &te) {
			panic(err)
		}
		log.WithError(err).Warn("Rejected request body")
		rejectedTotal.WithLabelValues("transport").Inc()
		return errorResponse(te.Status, start, te.Message)
	}

	point, err := p.validator.Validate(params)
	if err != nil {
		messages := []string{err.Error()}
		var verrs validate.Errors
		if errors.As(err, &verrs) {
			messages = verrs.Messages()
		}
		log.WithField("errors", messages).Debug("Validation failed")
		rejectedTotal.WithLabelValues("validation").Inc()
		return errorResponse(http.StatusUnprocessableEntity, start, messages...)
	}

	hit := p.region.Contains(point)
	result := models.CheckResult{
		Point:   point,
		Hit:     hit,
		Time:    start.UTC(),
		Elapsed: p.now().Sub(start),
		Client:  req.RemoteAddr,
	}
	history := p.history.AddAndList(p.scope.Key(req.RemoteAddr), result)

	if hit {
		checksTotal.WithLabelValues("hit").Inc()
	} else {
		checksTotal.WithLabelValues("miss").Inc()
	}
	log.WithFields(logrus.Fields{
		"hit":     hit,
		"x":       point.X,
		"y":       point.Y,
		"r":       point.R,
		"history": len(history),
	}).Debug("Check evaluated")

	return jsonResponse(http.StatusOK, successPayload(result, history))
}

func (p *Pipeline) params(req *Request) (map[string]string, error) {
	body, err := readBody(req, p.maxBody)
	if err != nil {
		return nil, err
	}
	return decodeParams(req.ContentType, req.Query, body)
}

// Serve answers requests from src until ctx ends or src is closed. Each
// response is handed back before the next request is pulled.
func (p *Pipeline) Serve(ctx context.Context, src Source) error {
	for {
		ex, err := src.Next(ctx)
		if err != nil {
			if errors.Is(err, ErrSourceClosed) || ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("accept request: %w", err)
		}

		resp := p.Handle(ex.Request())
		if err := ex.Respond(resp); err != nil {
			p.log.WithError(err).Warn("Failed to deliver response")
		}
	}
}
