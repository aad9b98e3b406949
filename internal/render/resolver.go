package render

import (
	"context"
	"log/slog"
	"strings"

	"github.com/amishk599/resumegen/internal/model"
)

// ProfileResolver finds a routing profile fronting a given model family.
type ProfileResolver struct {
	registry model.ProfileRegistry
	logger   *slog.Logger
}

// NewProfileResolver creates a resolver over registry. A nil registry never
// resolves anything.
func NewProfileResolver(registry model.ProfileRegistry, logger *slog.Logger) *ProfileResolver {
	return &ProfileResolver{registry: registry, logger: logger}
}

// Resolve performs a one-off lookup with no caching.
func (r *ProfileResolver) Resolve(ctx context.Context, modelPrefix string) (model.RoutingProfile, bool) {
	return r.Session().Resolve(ctx, modelPrefix)
}

// Session returns a lookup scope for one orchestration run. The registry is
// listed at most once per successful scan and results are memoized per prefix.
func (r *ProfileResolver) Session() *ResolverSession {
	return &ResolverSession{
		resolver: r,
		matches:  make(map[string]resolved),
	}
}

type resolved struct {
	profile model.RoutingProfile
	ok      bool
}

// ResolverSession is owned by a single run and is not safe for concurrent use.
type ResolverSession struct {
	resolver *ProfileResolver
	profiles []model.RoutingProfile
	loaded   bool
	matches  map[string]resolved
}

// Resolve returns the first profile with an underlying model reference
// containing modelPrefix. Registry failures resolve to (zero, false).
func (s *ResolverSession) Resolve(ctx context.Context, modelPrefix string) (model.RoutingProfile, bool) {
	if modelPrefix == "" || s.resolver.registry == nil {
		return model.RoutingProfile{}, false
	}
	if r, ok := s.matches[modelPrefix]; ok {
		return r.profile, r.ok
	}

	if !s.loaded {
		profiles, err := s.resolver.registry.ListProfiles(ctx)
		if err != nil {
			// Not memoized: a later prefix gets a fresh scan.
			s.resolver.logger.Warn("profile registry unavailable", "prefix", modelPrefix, "error", err)
			return model.RoutingProfile{}, false
		}
		s.profiles = profiles
		s.loaded = true
	}

	profile, ok := MatchProfile(s.profiles, modelPrefix)
	s.matches[modelPrefix] = resolved{profile: profile, ok: ok}
	if ok {
		s.resolver.logger.Info("resolved routing profile", "prefix", modelPrefix, "profile", profile.ID)
	} else {
		s.resolver.logger.Info("no routing profile for model", "prefix", modelPrefix, "profiles_scanned", len(s.profiles))
	}
	return profile, ok
}

// MatchProfile scans profiles in order and returns the first whose model
// references textually contain modelPrefix.
func MatchProfile(profiles []model.RoutingProfile, modelPrefix string) (model.RoutingProfile, bool) {
	if modelPrefix == "" {
		return model.RoutingProfile{}, false
	}
	for _, p := range profiles {
		for _, ref := range p.Models {
			if strings.Contains(ref, modelPrefix) {
				return p, true
			}
		}
	}
	return model.RoutingProfile{}, false
}
