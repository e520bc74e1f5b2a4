package preset

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// globalKey is the key used for the machine-wide selection in ScopeGlobal.
const globalKey = "default"

type Resolver interface {
	// Resolve picks the preset for userKey: the user's saved choice first,
	// then the machine-wide choice, then the configured fallback.
	Resolve(ctx context.Context, userKey string) (Preset, error)
}

func NewResolver(registry *Registry, repository Repository, fallbackPresetID PresetID) (Resolver, error) {
	// Validate the fallback preset ID exists in the registry
	if _, ok := registry.Get(fallbackPresetID); !ok {
		return nil, fmt.Errorf("fallback preset ID %s not found in registry", fallbackPresetID)
	}

	return &resolverImpl{
		registry:         registry,
		repository:       repository,
		fallbackPresetID: fallbackPresetID,
	}, nil
}

type resolverImpl struct {
	registry         *Registry
	repository       Repository
	fallbackPresetID PresetID
}

func (r *resolverImpl) Resolve(ctx context.Context, userKey string) (Preset, error) {
	presetID, err := r.resolveID(ctx, userKey)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			// just log the error to notify about the issue, but use the fallback preset ID
			slog.Warn("failed to resolve preset ID", "userKey", userKey, "error", err)
		}
		presetID = r.fallbackPresetID
	}

	preset, ok := r.registry.Get(presetID)
	if !ok {
		slog.Error("preset not found in registry", "presetID", presetID, "userKey", userKey)
		return Preset{}, fmt.Errorf("preset not found for ID %s", presetID)
	}
	return preset, nil
}

func (r *resolverImpl) resolveID(ctx context.Context, userKey string) (PresetID, error) {
	presetID, err := r.repository.Find(ctx, ScopeUser, userKey)
	if err == nil {
		return presetID, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return "", err
	}

	presetID, err = r.repository.Find(ctx, ScopeGlobal, globalKey)
	if err == nil {
		return presetID, nil
	}
	return "", err
}
