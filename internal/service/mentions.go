package service

import (
	"regexp"

	"github.com/google/uuid"
)

// mentionPattern matches stable-ID mention tokens of the form
// "@[<uuid>:Display Name]". Matching on the ID rather than the display name
// keeps mentions unambiguous when two participants share a name.
var mentionPattern = regexp.MustCompile(
	`@\[([0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}):[^\]]*\]`,
)

// ExtractMentions returns the user IDs mentioned in the body, deduplicated,
// in order of first appearance. Tokens that do not parse as a UUID are
// ignored.
func ExtractMentions(body string) []uuid.UUID {
	matches := mentionPattern.FindAllStringSubmatch(body, -1)
	if len(matches) == 0 {
		return nil
	}

	seen := make(map[uuid.UUID]struct{}, len(matches))
	mentions := make([]uuid.UUID, 0, len(matches))
	for _, m := range matches {
		id, err := uuid.Parse(m[1])
		if err != nil {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		mentions = append(mentions, id)
	}

	return mentions
}
