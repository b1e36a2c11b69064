package repo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/fitsync/fitsync/internal/apiclient"
	"github.com/fitsync/fitsync/internal/models"
	"github.com/fitsync/fitsync/internal/store"
)

// ProfileRepo serves user profiles. Remote-preferred: the server copy wins
// when reachable, the cache answers when it is not.
type ProfileRepo struct {
	st  *store.Store
	api *apiclient.Client
	net Reachability
}

// NewProfileRepo creates the profile repository.
func NewProfileRepo(st *store.Store, api *apiclient.Client, net Reachability) *ProfileRepo {
	if net == nil {
		net = AlwaysReachable()
	}
	return &ProfileRepo{st: st, api: api, net: net}
}

// Strategy reports the repository's fallback policy.
func (r *ProfileRepo) Strategy() Strategy { return StrategyRemotePreferred }

// Get returns the profile, preferring the server and writing through to the
// cache. Absence is (nil, nil). A 401 is surfaced so the caller can prompt
// re-authentication.
func (r *ProfileRepo) Get(ctx context.Context, id string) (*models.Profile, error) {
	if r.net.IsReachable() {
		remote, err := r.api.GetProfile(ctx, id)
		switch {
		case err == nil:
			if err := r.st.UpsertProfile(remote); err != nil {
				return nil, fmt.Errorf("cache profile: %w", err)
			}
			return remote, nil
		case errors.Is(err, apiclient.ErrNotFound):
			return nil, nil
		case !apiclient.Unavailable(err):
			return nil, err
		default:
			slog.Debug("profile fetch failed, falling back to cache", "err", err)
		}
	}
	return r.st.GetProfile(id)
}

// GetAllLocal returns every cached profile without touching the network.
func (r *ProfileRepo) GetAllLocal() ([]models.Profile, error) {
	return r.st.ListProfiles()
}

// Save writes the profile remote-first. When the remote write fails the local
// copy becomes the sole record until the user saves again; nothing is queued.
func (r *ProfileRepo) Save(ctx context.Context, p *models.Profile) (*models.Profile, error) {
	if r.net.IsReachable() {
		remote, err := r.api.SaveProfile(ctx, p)
		switch {
		case err == nil:
			if err := r.st.UpsertProfile(remote); err != nil {
				return nil, fmt.Errorf("cache profile: %w", err)
			}
			return remote, nil
		case !apiclient.Unavailable(err):
			return nil, err
		default:
			slog.Debug("profile save failed, keeping local copy", "err", err)
		}
	}
	if err := r.st.UpsertProfile(p); err != nil {
		return nil, fmt.Errorf("persist profile: %w", err)
	}
	return p, nil
}

// Update applies a partial patch locally and pushes the merged profile to the
// server when reachable.
func (r *ProfileRepo) Update(ctx context.Context, id string, patch map[string]any) (*models.Profile, error) {
	patch["id"] = id
	if err := r.st.UpsertRow("user_profiles", patch); err != nil {
		return nil, fmt.Errorf("persist profile patch: %w", err)
	}
	merged, err := r.st.GetProfile(id)
	if err != nil {
		return nil, err
	}
	if merged == nil {
		return nil, nil
	}
	if r.net.IsReachable() {
		if remote, err := r.api.SaveProfile(ctx, merged); err == nil {
			if err := r.st.UpsertProfile(remote); err != nil {
				return nil, fmt.Errorf("cache profile: %w", err)
			}
			return remote, nil
		} else if !apiclient.Unavailable(err) {
			return nil, err
		} else {
			slog.Debug("profile patch push failed, keeping local copy", "err", err)
		}
	}
	return merged, nil
}

// Delete drops the cached profile row. Profiles are not deletable server-side
// from this client; only the local cache is cleared (logout path).
func (r *ProfileRepo) Delete(id string) error {
	return r.st.DeleteRow("user_profiles", id)
}
