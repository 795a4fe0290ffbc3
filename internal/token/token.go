package token

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	appErrors "github.com/unclebandit/quickreview-backend/internal/errors"
	"github.com/unclebandit/quickreview-backend/internal/metrics"
)

// MaxAttempts is how many candidates Reserve draws before giving up.
const MaxAttempts = 5

// Store answers whether a reference is already taken.
type Store interface {
	Exists(ctx context.Context, reference string) (bool, error)
}

// InsertFunc persists a row under the candidate reference. It returns
// appErrors.ErrDuplicate when the reference was taken concurrently.
type InsertFunc func(ctx context.Context, reference string) error

// Generator produces collision-checked campaign item references.
type Generator struct {
	store Store
	newID func() (string, error)
}

func NewGenerator(store Store) *Generator {
	return &Generator{store: store, newID: randomID}
}

func randomID() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// Reserve draws candidates until one is free and insert accepts it.
func (g *Generator) Reserve(ctx context.Context, insert InsertFunc) (string, error) {
	for attempt := 1; attempt <= MaxAttempts; attempt++ {
		ref, err := g.newID()
		if err != nil {
			return "", appErrors.Internal("failed to generate reference", err)
		}

		taken, err := g.store.Exists(ctx, ref)
		if err != nil {
			return "", appErrors.Internal("failed to check reference", err)
		}
		if taken {
			metrics.RecordTokenCollision()
			continue
		}

		err = insert(ctx, ref)
		if errors.Is(err, appErrors.ErrDuplicate) {
			metrics.RecordTokenCollision()
			continue
		}
		if err != nil {
			return "", err
		}
		return ref, nil
	}

	metrics.RecordTokenExhausted()
	return "", appErrors.ResourceExhausted(
		"Unable to generate unique reference",
		fmt.Errorf("%d attempts exhausted", MaxAttempts),
	)
}
