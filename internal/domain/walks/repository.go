package walks

import (
	"context"
	"errors"

	"petfy/internal/ports/kv"
)

// Repository guarda la colección completa de una sesión (walkRequests).
type Repository interface {
	Load(ctx context.Context, store kv.Store) ([]WalkRequest, error)
	Save(ctx context.Context, store kv.Store, all []WalkRequest) error
}

type kvRepository struct{}

// NewKVRepository guarda la colección como un array JSON bajo walkRequests.
func NewKVRepository() Repository {
	return kvRepository{}
}

// Load: clave ausente o JSON corrupto => colección vacía.
func (kvRepository) Load(ctx context.Context, store kv.Store) ([]WalkRequest, error) {
	var all []WalkRequest
	_, err := kv.ReadJSON(ctx, store, kv.KeyWalkRequests, &all)
	if errors.Is(err, kv.ErrMalformed) {
		return []WalkRequest{}, nil
	}
	if err != nil {
		return nil, err
	}
	if all == nil {
		all = []WalkRequest{}
	}
	return all, nil
}

func (kvRepository) Save(ctx context.Context, store kv.Store, all []WalkRequest) error {
	if all == nil {
		all = []WalkRequest{}
	}
	return kv.WriteJSON(ctx, store, kv.KeyWalkRequests, all)
}
