package roster

import (
	"encoding/json"
	"strings"

	"volunteer_hub_backend/internal/models"
)

// Facet is the status filter applied independently of the text query.
type Facet string

const (
	FacetAll          Facet = "all"
	FacetCheckedIn    Facet = "in"     // strictly checked in
	FacetNotCheckedIn Facet = "not-in" // running-late and not-checked-in alike
)

// ParseFacet maps a query-string value to a Facet, defaulting to all.
func ParseFacet(s string) Facet {
	switch Facet(strings.ToLower(strings.TrimSpace(s))) {
	case FacetCheckedIn:
		return FacetCheckedIn
	case FacetNotCheckedIn:
		return FacetNotCheckedIn
	default:
		return FacetAll
	}
}

// BuildSearchText concatenates the searchable fragments of a signup into one
// lower-cased, whitespace-collapsed blob: name, phone (raw and digits-only),
// role label, and every point-of-contact name/email/phone across all three
// historical POC shapes. Malformed fragments are skipped, never fatal; this
// is read-only presentation logic over data this code does not own.
func BuildSearchText(signup *models.VolunteerSignup, role *models.VolunteerRole) string {
	parts := make([]string, 0, 8)
	add := func(s string) {
		s = strings.TrimSpace(s)
		if s != "" {
			parts = append(parts, s)
		}
	}
	addPhone := func(p *string) {
		if p == nil {
			return
		}
		add(*p)
		add(digitsOnly(*p))
	}

	add(signup.Name)
	addPhone(signup.Phone)
	if signup.Email != nil {
		add(*signup.Email)
	}

	if role != nil {
		add(role.RoleLabel)
		for i := range role.PocContacts {
			poc := role.PocContacts[i]
			add(poc.Name)
			if poc.Email != nil {
				add(*poc.Email)
			}
			addPhone(poc.Phone)
		}
		if role.PocContact != nil {
			add(role.PocContact.Name)
			if role.PocContact.Email != nil {
				add(*role.PocContact.Email)
			}
			addPhone(role.PocContact.Phone)
		}
		for _, s := range decodeSuggestedPoc(role.SuggestedPoc) {
			add(s)
		}
	}

	return strings.ToLower(strings.Join(strings.Fields(strings.Join(parts, " ")), " "))
}

// decodeSuggestedPoc handles the oldest POC shape: a JSON string or a JSON
// array of strings. Anything else is silently dropped.
func decodeSuggestedPoc(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}
	var single string
	if err := json.Unmarshal(raw, &single); err == nil {
		return []string{single}
	}
	var many []string
	if err := json.Unmarshal(raw, &many); err == nil {
		return many
	}
	return nil
}

// Matches reports whether a query hits a search blob: either the trimmed
// lower-cased query is a substring of the blob, or the query's digits-only
// form is a non-empty substring of the blob's digits-only content. The digit
// path makes phone search work regardless of punctuation.
func Matches(searchText, query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	if strings.Contains(searchText, q) {
		return true
	}
	qDigits := digitsOnly(q)
	return qDigits != "" && strings.Contains(digitsOnly(searchText), qDigits)
}

// MatchesFacet applies the status facet to a signup.
func MatchesFacet(s *models.VolunteerSignup, facet Facet) bool {
	switch facet {
	case FacetCheckedIn:
		return IsCheckedIn(s)
	case FacetNotCheckedIn:
		return !IsCheckedIn(s)
	default:
		return true
	}
}

// Filter projects the rows matching both the text query and the facet. Roles
// are supplied by id so the blob can include role labels and POC fragments.
// Pure and unindexed: rosters top out at a few hundred rows per event.
func Filter(rows []models.VolunteerSignup, rolesByID map[string]*models.VolunteerRole, query string, facet Facet) []models.VolunteerSignup {
	out := make([]models.VolunteerSignup, 0, len(rows))
	for i := range rows {
		row := &rows[i]
		if !MatchesFacet(row, facet) {
			continue
		}
		if query != "" && !Matches(BuildSearchText(row, rolesByID[row.RoleID]), query) {
			continue
		}
		out = append(out, *row)
	}
	return out
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
