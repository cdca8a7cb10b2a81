package gong

import (
	"sort"
	"strings"
)

// isNoiseParty reports whether a party is a recording artifact rather
// than a person (merged audio tracks, notetaker bots).
func isNoiseParty(name string) bool {
	switch name {
	case "Merged Audio", "Fireflies.Ai Notetaker", "Fireflies.ai Notetaker":
		return true
	}
	return strings.Contains(name, "Fireflies") && strings.Contains(name, "Notetaker")
}

// FilterCallsByEmails filters calls to those with at least one participant
// matching the given emails or domains. Matching is case-insensitive;
// domains may carry a leading "@". Returns the filtered calls and the
// distinct participant emails that matched. Empty filters return all calls.
func FilterCallsByEmails(calls []Call, emails, domains []string) ([]Call, []string) {
	if len(emails) == 0 && len(domains) == 0 {
		return calls, nil
	}

	emailSet := make(map[string]bool, len(emails))
	for _, e := range emails {
		emailSet[strings.ToLower(e)] = true
	}
	domainSet := make(map[string]bool, len(domains))
	for _, d := range domains {
		domainSet[strings.TrimPrefix(strings.ToLower(d), "@")] = true
	}

	var filtered []Call
	matched := make(map[string]bool)

	for _, call := range calls {
		for _, party := range call.Parties {
			email := strings.ToLower(party.EmailAddress)
			if email == "" {
				continue
			}

			if emailSet[email] {
				filtered = append(filtered, call)
				matched[email] = true
				break
			}

			if at := strings.LastIndex(email, "@"); at >= 0 && domainSet[email[at+1:]] {
				filtered = append(filtered, call)
				matched[email] = true
				break
			}
		}
	}

	matchedEmails := make([]string, 0, len(matched))
	for email := range matched {
		matchedEmails = append(matchedEmails, email)
	}
	sort.Strings(matchedEmails)

	return filtered, matchedEmails
}

// MatchingCallIDs returns the IDs of calls matching the email/domain filter
func MatchingCallIDs(calls []Call, emails, domains []string) []string {
	filtered, _ := FilterCallsByEmails(calls, emails, domains)

	ids := make([]string, 0, len(filtered))
	for _, call := range filtered {
		if id := call.ID(); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

// ExtractExternalEmails returns the distinct emails of all non-internal
// participants across the given calls
func ExtractExternalEmails(calls []Call) []string {
	seen := make(map[string]bool)

	for _, call := range calls {
		for _, party := range call.Parties {
			if strings.EqualFold(party.Affiliation, "internal") {
				continue
			}
			if party.EmailAddress == "" {
				continue
			}
			seen[strings.ToLower(party.EmailAddress)] = true
		}
	}

	emails := make([]string, 0, len(seen))
	for email := range seen {
		emails = append(emails, email)
	}
	sort.Strings(emails)

	return emails
}

// ExtractParticipants categorizes a call's participants by affiliation,
// dropping recording artifacts. Parties without an internal affiliation
// are treated as external.
func ExtractParticipants(call *Call) Participants {
	participants := Participants{
		Internal: []Participant{},
		External: []Participant{},
	}

	for _, party := range call.Parties {
		name := party.DisplayName()
		if isNoiseParty(name) {
			continue
		}

		p := Participant{Name: name, Email: party.EmailAddress}
		if strings.EqualFold(party.Affiliation, "internal") {
			participants.Internal = append(participants.Internal, p)
		} else {
			participants.External = append(participants.External, p)
		}
	}

	return participants
}
