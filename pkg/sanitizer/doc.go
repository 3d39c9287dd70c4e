// Package sanitizer normalises guest and operator input before validation.
//
// Every function is idempotent and never fails: input it cannot make sense
// of comes back trimmed so the validators can reject it with a field error.
//
//   - Phones become E.164 ("+14155550100"); national numbers try each of Regions() in order.
//   - Names, notes and table numbers have whitespace runs collapsed.
//   - Zone labels become lowercase tokens: "Main Hall" is "main_hall".
//   - Slugs from a URL are trimmed and lowercased.
package sanitizer
