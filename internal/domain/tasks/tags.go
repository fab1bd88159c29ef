package tasks

import "regexp"

var tagPattern = regexp.MustCompile(`[#@][\w-]+`)

// ExtractTags returns the #tags and @mentions embedded in text, in order of
// first appearance and without duplicates.
func ExtractTags(text string) (tags, mentions []string) {
	seen := make(map[string]struct{})
	for _, token := range tagPattern.FindAllString(text, -1) {
		if _, ok := seen[token]; ok {
			continue
		}
		seen[token] = struct{}{}

		if token[0] == '@' {
			mentions = append(mentions, token)
		} else {
			tags = append(tags, token)
		}
	}
	return tags, mentions
}
