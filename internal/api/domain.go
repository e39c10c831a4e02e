package api

import (
	"github.com/JaimeStill/halalcheck/internal/classification"
	"github.com/JaimeStill/halalcheck/internal/comments"
	"github.com/JaimeStill/halalcheck/internal/polls"
	"github.com/JaimeStill/halalcheck/internal/products"
	"github.com/JaimeStill/halalcheck/internal/requests"
)

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Classification classification.System
	Requests       requests.System
	Polls          polls.System
	Products       products.System
	Comments       comments.System
}

// NewDomain creates all domain systems from the API runtime.
func NewDomain(runtime *Runtime) *Domain {
	classifier := classification.New(
		runtime.Store,
		runtime.Generator,
		runtime.Storage,
		runtime.Loader,
		runtime.Logger,
	)

	return &Domain{
		Classification: classifier,
		Requests: requests.New(
			runtime.Store,
			classifier,
			runtime.Loader,
			runtime.Logger,
		),
		Polls: polls.New(
			runtime.Store,
			runtime.Loader,
			runtime.Logger,
		),
		Products: products.New(
			runtime.Store,
			classifier,
			runtime.Loader,
			runtime.Logger,
			runtime.Pagination,
		),
		Comments: comments.New(
			runtime.Store,
			runtime.Logger,
		),
	}
}
