package couchpotato

import "strings"

// sourceQualities maps CouchPotato quality identifiers onto source tokens.
// Not every CouchPotato quality has an exact counterpart.
var sourceQualities = map[string]string{
	"BR-Disk": "remux",  // nearest
	"brrip":   "bluray",
	"dvdr":    "dvdrip", // nearest
	"dvdrip":  "dvdrip",
	"scr":     "dvdscr",
	"r5":      "r5",
	"tc":      "tc",
	"ts":      "ts",
	"cam":     "cam",
}

// resolutionQualities maps CouchPotato quality identifiers onto resolution tokens.
var resolutionQualities = map[string]string{
	"1080p": "1080p",
	"720p":  "720p",
}

// QualityRequirement converts a quality profile into a requirement string of
// the form "<resolutions> <sources>", each part a '|'-joined alternation,
// e.g. "1080p|720p bluray". Only trailing space is trimmed, so a profile with
// sources but no resolutions yields " bluray". Unknown identifiers are
// ignored, and a profile listing the same quality twice (3D variants do this)
// yields the token once.
func QualityRequirement(profile Profile) string {
	resolutions := mapQualities(profile.Qualities, resolutionQualities)
	sources := mapQualities(profile.Qualities, sourceQualities)
	return strings.TrimRight(resolutions+" "+sources, " ")
}

// UnmappedQualities returns the identifiers in profile that neither table knows.
func UnmappedQualities(profile Profile) []string {
	var out []string
	for _, q := range profile.Qualities {
		_, isRes := resolutionQualities[q]
		_, isSrc := sourceQualities[q]
		if !isRes && !isSrc {
			out = append(out, q)
		}
	}
	return out
}

// mapQualities translates qualities through table, deduplicating mapped
// tokens and keeping first-seen order.
func mapQualities(qualities []string, table map[string]string) string {
	seen := make(map[string]bool, len(qualities))
	tokens := make([]string, 0, len(qualities))
	for _, q := range qualities {
		token, ok := table[q]
		if !ok || seen[token] {
			continue
		}
		seen[token] = true
		tokens = append(tokens, token)
	}
	return strings.Join(tokens, "|")
}
