package locale

import (
	"cmp"
	"regexp"
	"slices"
	"strconv"
	"strings"
)

// maxHeaderLength caps Accept-Language parsing. RFC 7231 sets no limit, but
// 4KB is generous for legitimate headers while bounding malicious ones.
const maxHeaderLength = 4096

// tagPattern admits plain language tags ("pt") and language-region tags
// ("pt-BR"). Anything else, including wildcards and extended subtags, is
// discarded before negotiation.
var tagPattern = regexp.MustCompile(`^[a-z]{2}(-[A-Z]{2})?$`)

type candidate struct {
	tag     string
	quality float64
}

// parseCandidates parses an Accept-Language header into negotiation
// candidates ordered by descending quality.
func parseCandidates(header string) []candidate {
	if len(header) > maxHeaderLength {
		header = header[:maxHeaderLength]
	}

	var candidates []candidate

	for part := range strings.SplitSeq(header, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		quality := 1.0
		tag := part

		if idx := strings.Index(part, ";"); idx != -1 {
			tag = strings.TrimSpace(part[:idx])
			qPart := strings.TrimSpace(part[idx+1:])
			if strings.HasPrefix(qPart, "q=") {
				if q, err := strconv.ParseFloat(qPart[2:], 64); err == nil && q >= 0 && q <= 1 {
					quality = q
				}
			}
		}

		if !tagPattern.MatchString(tag) {
			continue
		}

		candidates = append(candidates, candidate{tag: tag, quality: quality})
	}

	slices.SortStableFunc(candidates, func(a, b candidate) int {
		return cmp.Compare(b.quality, a.quality)
	})

	return candidates
}
