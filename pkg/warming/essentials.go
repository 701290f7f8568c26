package warming

import (
	"time"

	"github.com/almonzeir/myscholar-cache/pkg/keys"
)

// Essential is one entry of the ahead-of-time warmup catalog.
type Essential struct {
	Key  string
	TTL  time.Duration
	Tags []string
	Load Loader
}

// DefaultEssentials is the fixed catalog of high-value keys warmed on a
// schedule: reference lists that back the search filters plus the landing
// page's featured scholarships and aggregate stats.
func DefaultEssentials() []Essential {
	return []Essential{
		{
			Key:  keys.Countries(),
			TTL:  24 * time.Hour,
			Tags: []string{keys.TagPublicData},
			Load: StaticLoader([]string{
				"Germany", "France", "Netherlands", "Sweden", "United Kingdom",
				"United States", "Canada", "Australia", "Japan", "Malaysia",
			}),
		},
		{
			Key:  keys.FieldsOfStudy(),
			TTL:  24 * time.Hour,
			Tags: []string{keys.TagPublicData},
			Load: StaticLoader([]string{
				"Computer Science", "Engineering", "Medicine", "Law",
				"Business", "Physics", "Mathematics", "Social Sciences",
			}),
		},
		{
			Key:  keys.FeaturedScholarships(),
			TTL:  time.Hour,
			Tags: []string{keys.TagScholarships, keys.TagPublicData},
			Load: StaticLoader([]map[string]any{
				{"id": "daad-epos", "name": "DAAD EPOS", "country": "Germany"},
				{"id": "chevening", "name": "Chevening", "country": "United Kingdom"},
				{"id": "erasmus-mundus", "name": "Erasmus Mundus", "country": "EU"},
			}),
		},
		{
			Key:  keys.AggregateStats(),
			TTL:  5 * time.Minute,
			Tags: []string{keys.TagStats, keys.TagPublicData},
			Load: StaticLoader(map[string]int{
				"scholarships": 1240,
				"countries":    87,
				"fields":       42,
			}),
		},
	}
}
