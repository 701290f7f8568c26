// Package keys is the single source of truth for cache key and tag naming.
//
// Every key lives in a prefix namespace (e.g. "scholarship:details:42"), and
// the namespace decides the default TTL applied when a caller sets a value
// without an explicit TTL. Callers outside this module must use these
// constants rather than re-spelling the literals.
package keys

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"
)

// Key prefix namespaces.
const (
	PrefixSearch      = "search:"
	PrefixScholarship = "scholarship:"
	PrefixProfile     = "profile:"
	PrefixStats       = "stats:"
	PrefixAPI         = "api:"
	PrefixAI          = "ai:"
	PrefixSession     = "session:"
	PrefixRate        = "rate:"
)

// Invalidation tag constants.
const (
	TagScholarships = "scholarships"
	TagProfiles     = "profiles"
	TagSearch       = "search"
	TagStats        = "stats"
	TagAI           = "ai"
	TagUserData     = "user_data"
	TagPublicData   = "public_data"
	TagAdminData    = "admin_data"
)

// FallbackTTL applies to keys whose prefix is not registered.
const FallbackTTL = 10 * time.Minute

// defaultTTLs maps a prefix namespace to the TTL used when Set is called
// without an explicit TTL.
var defaultTTLs = map[string]time.Duration{
	PrefixSearch:      10 * time.Minute,
	PrefixScholarship: time.Hour,
	PrefixProfile:     30 * time.Minute,
	PrefixStats:       5 * time.Minute,
	PrefixAPI:         10 * time.Minute,
	PrefixAI:          30 * time.Minute,
	PrefixSession:     24 * time.Hour,
	PrefixRate:        time.Minute,
}

// DefaultTTL returns the default TTL for a key based on its prefix namespace.
func DefaultTTL(key string) time.Duration {
	for prefix, ttl := range defaultTTLs {
		if strings.HasPrefix(key, prefix) {
			return ttl
		}
	}
	return FallbackTTL
}

// Search builds a deterministic key for a search-results page. Filter values
// are sorted by name so logically identical queries share one entry.
func Search(query string, page int, filters url.Values) string {
	parts := []string{fmt.Sprintf("q=%s", query), fmt.Sprintf("page=%d", page)}

	if len(filters) > 0 {
		names := make([]string, 0, len(filters))
		for name := range filters {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			parts = append(parts, fmt.Sprintf("%s=%s", name, filters.Get(name)))
		}
	}

	return PrefixSearch + strings.Join(parts, ":")
}

// ScholarshipDetails builds the key for one scholarship's detail payload.
func ScholarshipDetails(id string) string {
	return PrefixScholarship + "details:" + id
}

// FeaturedScholarships is the key for the featured-scholarship list.
func FeaturedScholarships() string {
	return PrefixScholarship + "featured"
}

// Profile builds the key for a user profile payload.
func Profile(userID string) string {
	return PrefixProfile + userID
}

// AggregateStats is the key for platform-wide aggregate statistics.
func AggregateStats() string {
	return PrefixStats + "aggregate"
}

// Countries is the key for the country reference list.
func Countries() string {
	return PrefixAPI + "countries"
}

// FieldsOfStudy is the key for the field-of-study reference list.
func FieldsOfStudy() string {
	return PrefixAPI + "fields"
}
