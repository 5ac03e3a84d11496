package oracle

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// requestOptions holds everything a Config can mutate, the same
// functional-options shape used throughout this repository for call-time
// configuration.
type requestOptions struct {
	ctx         context.Context
	log         *logrus.Logger
	logFields   logrus.Fields
	adminAPIKey string
	httpClient  *http.Client
	id          string
}

// Config mutates request options; pass zero or more to Client methods.
type Config func(*requestOptions)

// WithContext attaches ctx to the request, bounding every suspension point
// (spec.md §5) by its deadline.
func WithContext(ctx context.Context) Config {
	return func(o *requestOptions) { o.ctx = ctx }
}

// WithLog sets the logger used for this request's diagnostics.
func WithLog(log *logrus.Logger) Config {
	return func(o *requestOptions) { o.log = log }
}

// WithLogField records a structured field in the request's options. The
// transport's own log lines are written through the WithLog logger directly
// and do not carry these fields.
func WithLogField(key string, value any) Config {
	return func(o *requestOptions) {
		if o.logFields == nil {
			o.logFields = logrus.Fields{}
		}
		o.logFields[key] = value
	}
}

// WithAdminAPIKey overrides the "x-admin-api-key" header value. spec.md §9
// flags the fixed "qwerty" value as a development artefact to be exposed as
// configuration rather than hardcoded; this is that knob. Defaults to
// "qwerty" for compatibility with existing oracle deployments.
func WithAdminAPIKey(key string) Config {
	return func(o *requestOptions) { o.adminAPIKey = key }
}

// WithHTTPClient overrides the *http.Client used for this request.
func WithHTTPClient(client *http.Client) Config {
	return func(o *requestOptions) { o.httpClient = client }
}

// WithID sets the request/job identifier; a random UUID is generated when
// omitted.
func WithID(id string) Config {
	return func(o *requestOptions) { o.id = id }
}

func applyConfigs(configs ...Config) *requestOptions {
	o := &requestOptions{
		log:         logrus.New(),
		adminAPIKey: "qwerty",
	}
	for _, c := range configs {
		if c != nil {
			c(o)
		}
	}
	if o.id == "" {
		o.id = uuid.NewString()
	}
	return o
}

func (o *requestOptions) logger() *logrus.Entry {
	log := o.log
	if log == nil {
		log = logrus.New()
	}
	fields := o.logFields
	if fields == nil {
		fields = logrus.Fields{}
	}
	fields["request_id"] = o.id
	return log.WithFields(fields)
}
