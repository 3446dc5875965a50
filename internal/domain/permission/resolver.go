package permission

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// SupportStateChecker reports live support-session state. Implementations
// must consult authoritative storage on every call, never a cached value.
type SupportStateChecker interface {
	IsReadOnlyActive(ctx context.Context, sessionID uuid.UUID) (bool, error)
	ImpersonationState(ctx context.Context, sessionID uuid.UUID) (active, readOnly bool, err error)
}

// Resolver combines role defaults, group grants and per-user overrides into
// an effective capability set.
type Resolver struct {
	repo    Repository
	support SupportStateChecker
}

// NewResolver creates the resolver. support may be nil when enhanced checks
// are not needed (e.g. in isolated tests).
func NewResolver(repo Repository, support SupportStateChecker) *Resolver {
	return &Resolver{repo: repo, support: support}
}

// Resolve returns the effective capability set for a user, total over
// AllFlags. Layering, most specific wins:
//
//	override entry > any group grant > role default > false
//
// A user without a role record resolves to all-false rather than erroring.
func (r *Resolver) Resolve(ctx context.Context, userID uuid.UUID) (Set, error) {
	set := make(Set, len(AllFlags))
	for _, flag := range AllFlags {
		set[flag] = false
	}

	role, err := r.repo.GetUserRole(ctx, userID)
	if err != nil {
		return nil, err
	}
	if role == nil {
		log.Warn().Str("user_id", userID.String()).Msg("User has no role record, resolving fail-closed")
	} else {
		for _, flag := range AllFlags {
			if role.Permissions[flag] {
				set[flag] = true
			}
		}
	}

	groups, err := r.repo.ListGroupsForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	for _, group := range groups {
		for _, flag := range AllFlags {
			if group.Permissions[flag] {
				set[flag] = true
			}
		}
	}

	override, err := r.repo.GetOverride(ctx, userID)
	if err != nil {
		return nil, err
	}
	if override != nil {
		// Only flags explicitly listed by the override apply; the rest
		// keep their group/role value.
		for flag, allowed := range override.Permissions {
			if flag.Valid() {
				set[flag] = allowed
			}
		}
	}

	return set, nil
}

// Check is a single-flag projection of Resolve.
func (r *Resolver) Check(ctx context.Context, userID uuid.UUID, flag Flag) (bool, error) {
	set, err := r.Resolve(ctx, userID)
	if err != nil {
		return false, err
	}
	return set.Has(flag), nil
}

// CheckEnhanced is Check with support-session awareness: a mutating flag is
// forced false while the caller operates under an active read-only support
// session. supportSessionID is uuid.Nil when no session is bound. The
// session state is read fresh from storage so that a mode toggle or end is
// observed by the very next check.
func (r *Resolver) CheckEnhanced(ctx context.Context, userID uuid.UUID, flag Flag, supportSessionID uuid.UUID) (bool, error) {
	allowed, err := r.Check(ctx, userID, flag)
	if err != nil || !allowed {
		return false, err
	}

	if supportSessionID == uuid.Nil || !flag.Mutating() || r.support == nil {
		return allowed, nil
	}

	readOnly, err := r.support.IsReadOnlyActive(ctx, supportSessionID)
	if err != nil {
		return false, err
	}
	if readOnly {
		return false, nil
	}
	return allowed, nil
}

// ResolveImpersonated returns the effective capability set for a request
// operating under a bound support session. Operators have no tenant user
// record, so the set derives from the session itself: every flag when no
// access scopes were granted, the scoped flags otherwise, with mutating
// flags withheld while the session's live mode is read-only. The session
// state is read fresh from storage so a toggle or end is observed by the
// very next request.
func (r *Resolver) ResolveImpersonated(ctx context.Context, sessionID uuid.UUID, scopes []string) (Set, error) {
	set := make(Set, len(AllFlags))
	for _, flag := range AllFlags {
		set[flag] = false
	}

	if r.support == nil || sessionID == uuid.Nil {
		return set, nil
	}
	active, readOnly, err := r.support.ImpersonationState(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !active {
		return set, nil
	}

	for _, flag := range AllFlags {
		if len(scopes) > 0 && !scopeGrants(scopes, flag) {
			continue
		}
		set[flag] = !flag.Mutating() || !readOnly
	}
	return set, nil
}

// CheckImpersonated is a single-flag projection of ResolveImpersonated.
func (r *Resolver) CheckImpersonated(ctx context.Context, sessionID uuid.UUID, scopes []string, flag Flag) (bool, error) {
	if r.support == nil || sessionID == uuid.Nil || !flag.Valid() {
		return false, nil
	}
	active, readOnly, err := r.support.ImpersonationState(ctx, sessionID)
	if err != nil {
		return false, err
	}
	if !active {
		return false, nil
	}
	if len(scopes) > 0 && !scopeGrants(scopes, flag) {
		return false, nil
	}
	if flag.Mutating() && readOnly {
		return false, nil
	}
	return true, nil
}

func scopeGrants(scopes []string, flag Flag) bool {
	for _, scope := range scopes {
		if scope == string(flag) {
			return true
		}
	}
	return false
}
