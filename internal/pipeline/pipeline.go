// Package pipeline evaluates an ordered chain of request guards with
// short-circuit AND semantics: every guard must pass for the request to
// reach its handler. Guards are pure functions over an explicit request
// snapshot; accumulated context travels in the snapshot rather than as
// hidden mutation of the inbound request.
package pipeline

import (
	"context"

	"github.com/campuskit/access-service/internal/domain"
)

// Request is the snapshot threaded through the guard chain.
type Request struct {
	// ClientKey identifies the caller for rate limiting, typically the
	// source address.
	ClientKey string
	// BearerToken is the raw credential extracted from the request.
	BearerToken string
	// Body is the raw request payload for the validation stage.
	Body []byte

	// Principal is attached by the authentication guard.
	Principal *domain.Principal
	// Payload is the decoded, schema-checked body attached by the
	// validation guard.
	Payload any
}

// WithPrincipal returns a copy carrying the resolved principal.
func (r *Request) WithPrincipal(p *domain.Principal) *Request {
	next := *r
	next.Principal = p
	return &next
}

// WithPayload returns a copy carrying the validated payload.
func (r *Request) WithPayload(payload any) *Request {
	next := *r
	next.Payload = payload
	return &next
}

// Guard inspects the request and either returns the (possibly
// augmented) request to continue with, or a terminal error.
type Guard func(ctx context.Context, req *Request) (*Request, error)

// Chain is an ordered guard list.
type Chain []Guard

// Run evaluates guards in order and stops at the first failure.
func (c Chain) Run(ctx context.Context, req *Request) (*Request, error) {
	for _, guard := range c {
		next, err := guard(ctx, req)
		if err != nil {
			return nil, err
		}
		if next != nil {
			req = next
		}
	}
	return req, nil
}
