package sanitizer

import (
	"strings"

	"bookspace/pkg/model"
)

func NormalizeStringSlice(items []string, normalizer func(string) string) []string {
	if len(items) == 0 {
		return []string{}
	}

	seen := make(map[string]bool)
	result := make([]string, 0, len(items))

	for _, item := range items {
		normalized := normalizer(item)

		if normalized == "" {
			continue
		}

		if seen[normalized] {
			continue
		}

		seen[normalized] = true
		result = append(result, normalized)
	}

	return result
}

// NormalizeFacilities trims facility names and emails and drops entries
// without a name. Names are compared case-insensitively; the first wins.
func NormalizeFacilities(facilities []model.Facility) []model.Facility {
	if len(facilities) == 0 {
		return []model.Facility{}
	}

	seen := make(map[string]bool)
	result := make([]model.Facility, 0, len(facilities))

	for _, f := range facilities {
		name := NormalizeName(f.Name)
		if name == "" {
			continue
		}
		key := strings.ToLower(name)
		if seen[key] {
			continue
		}
		seen[key] = true
		result = append(result, model.Facility{
			Name:  name,
			Email: NormalizeEmail(f.Email),
		})
	}

	return result
}
