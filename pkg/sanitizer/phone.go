package sanitizer

import (
	"fmt"
	"slices"
	"strings"
	"sync/atomic"

	"github.com/nyaruka/phonenumbers"
)

// DefaultRegions are tried in order for numbers typed without a country
// code.
var DefaultRegions = []string{"IL", "US"}

var regions atomic.Pointer[[]string]

func init() {
	regions.Store(&DefaultRegions)
}

// SetRegions replaces the ordered region list used for national numbers.
// An empty list restores DefaultRegions.
func SetRegions(list []string) error {
	if len(list) == 0 {
		regions.Store(&DefaultRegions)
		return nil
	}

	normalized := make([]string, 0, len(list))
	for _, region := range list {
		region = strings.ToUpper(strings.TrimSpace(region))
		if !IsSupportedRegion(region) {
			return fmt.Errorf("unsupported phone region %q", region)
		}
		if !slices.Contains(normalized, region) {
			normalized = append(normalized, region)
		}
	}
	regions.Store(&normalized)
	return nil
}

// Regions returns a copy of the active region list.
func Regions() []string {
	return slices.Clone(*regions.Load())
}

func IsSupportedRegion(region string) bool {
	return phonenumbers.GetSupportedRegions()[region]
}

// NormalizePhone returns phone in E.164 form. A leading international "00"
// is read as "+". National numbers take the first region they are valid in.
// Input that is not a valid number comes back trimmed.
func NormalizePhone(phone string) string {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return ""
	}
	if rest, ok := strings.CutPrefix(phone, "00"); ok {
		phone = "+" + rest
	}

	if strings.HasPrefix(phone, "+") {
		if formatted, ok := format(phone, "ZZ"); ok {
			return formatted
		}
		return phone
	}

	for _, region := range *regions.Load() {
		if formatted, ok := format(phone, region); ok {
			return formatted
		}
	}
	return phone
}

func format(phone, region string) (string, bool) {
	parsed, err := phonenumbers.Parse(phone, region)
	if err != nil || !phonenumbers.IsValidNumber(parsed) {
		return "", false
	}
	return phonenumbers.Format(parsed, phonenumbers.E164), true
}
