package repo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/fitsync/fitsync/internal/apiclient"
	"github.com/fitsync/fitsync/internal/models"
	"github.com/fitsync/fitsync/internal/store"
)

// SearchOptions filters a food catalog search.
type SearchOptions struct {
	Query string
	Limit int
}

// FoodRepo serves the food catalog. Remote-preferred: search and lookups hit
// the server and write through to the cache; the cache answers offline.
type FoodRepo struct {
	st  *store.Store
	api *apiclient.Client
	net Reachability
}

// NewFoodRepo creates the food catalog repository.
func NewFoodRepo(st *store.Store, api *apiclient.Client, net Reachability) *FoodRepo {
	if net == nil {
		net = AlwaysReachable()
	}
	return &FoodRepo{st: st, api: api, net: net}
}

// Strategy reports the repository's fallback policy.
func (r *FoodRepo) Strategy() Strategy { return StrategyRemotePreferred }

// Get returns one catalog item, preferring the server. Absence is (nil, nil).
func (r *FoodRepo) Get(ctx context.Context, id string) (*models.Food, error) {
	if r.net.IsReachable() {
		remote, err := r.api.GetFood(ctx, id)
		switch {
		case err == nil:
			if err := r.st.UpsertFood(remote); err != nil {
				return nil, fmt.Errorf("cache food: %w", err)
			}
			return remote, nil
		case errors.Is(err, apiclient.ErrNotFound):
			return nil, nil
		case !apiclient.Unavailable(err):
			return nil, err
		default:
			slog.Debug("food fetch failed, falling back to cache", "err", err)
		}
	}
	return r.st.GetFood(id)
}

// Search queries the remote catalog, caching every hit; offline or on remote
// failure it searches the cache instead.
func (r *FoodRepo) Search(ctx context.Context, opts SearchOptions) ([]models.Food, error) {
	if r.net.IsReachable() {
		remote, err := r.api.SearchFoods(ctx, opts.Query, opts.Limit)
		switch {
		case err == nil:
			for i := range remote {
				if err := r.st.UpsertFood(&remote[i]); err != nil {
					return nil, fmt.Errorf("cache food: %w", err)
				}
			}
			return remote, nil
		case !apiclient.Unavailable(err):
			return nil, err
		default:
			slog.Debug("food search failed, falling back to cache", "err", err)
		}
	}
	return r.st.SearchFoods(opts.Query, opts.Limit)
}

// GetAllLocal returns cached foods without touching the network.
func (r *FoodRepo) GetAllLocal() ([]models.Food, error) {
	return r.st.SearchFoods("", 0)
}

// Save writes a custom food remote-first; on remote failure the local copy is
// the sole record until the next save.
func (r *FoodRepo) Save(ctx context.Context, f *models.Food) (*models.Food, error) {
	if r.net.IsReachable() {
		remote, err := r.api.SaveFood(ctx, f)
		switch {
		case err == nil:
			if err := r.st.UpsertFood(remote); err != nil {
				return nil, fmt.Errorf("cache food: %w", err)
			}
			return remote, nil
		case !apiclient.Unavailable(err):
			return nil, err
		default:
			slog.Debug("food save failed, keeping local copy", "err", err)
		}
	}
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	if err := r.st.UpsertFood(f); err != nil {
		return nil, fmt.Errorf("persist food: %w", err)
	}
	return f, nil
}

// Update applies a partial patch locally and pushes the merged food when
// reachable.
func (r *FoodRepo) Update(ctx context.Context, id string, patch map[string]any) (*models.Food, error) {
	patch["id"] = id
	if err := r.st.UpsertRow("foods", patch); err != nil {
		return nil, fmt.Errorf("persist food patch: %w", err)
	}
	merged, err := r.st.GetFood(id)
	if err != nil {
		return nil, err
	}
	if merged == nil {
		return nil, nil
	}
	if r.net.IsReachable() {
		if remote, err := r.api.SaveFood(ctx, merged); err == nil {
			if err := r.st.UpsertFood(remote); err != nil {
				return nil, fmt.Errorf("cache food: %w", err)
			}
			return remote, nil
		} else if !apiclient.Unavailable(err) {
			return nil, err
		} else {
			slog.Debug("food patch push failed, keeping local copy", "err", err)
		}
	}
	return merged, nil
}

// Delete removes the food remotely when possible and always drops the cached
// row. A remote failure is not surfaced; the cache row is gone either way.
func (r *FoodRepo) Delete(ctx context.Context, id string) error {
	if r.net.IsReachable() {
		if err := r.api.DeleteFood(ctx, id); err != nil && !errors.Is(err, apiclient.ErrNotFound) {
			if !apiclient.Unavailable(err) {
				return err
			}
			slog.Debug("food delete failed remotely", "err", err)
		}
	}
	return r.st.DeleteRow("foods", id)
}
