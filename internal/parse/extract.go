// Package parse turns source-specific transcript formats into unified messages.
package parse

import (
	"regexp"
	"strings"
)

// userQueryRe captures the authoritative user text when present. Whatever
// other tags surround it, the tagged region wins.
var userQueryRe = regexp.MustCompile(`(?s)<user_query>(.*?)</user_query>`)

// wrapperTags are system/metadata regions that tooling injects around the
// user's actual prose. They are removed whole; prose outside them is kept.
var wrapperTags = []string{
	"system-reminder",
	"command-name",
	"command-message",
	"command-args",
	"local-command-stdout",
	"local-command-caveat",
	"environment_context",
	"additional_data",
	"attached_files",
	"file_contents",
	"user_rules",
	"custom_instructions",
}

var wrapperRes = compileWrapperRes()

func compileWrapperRes() []*regexp.Regexp {
	res := make([]*regexp.Regexp, 0, len(wrapperTags))
	for _, tag := range wrapperTags {
		res = append(res, regexp.MustCompile(`(?s)<`+tag+`(?:\s[^>]*)?>.*?</`+tag+`>`))
	}
	return res
}

// ExtractUserText reduces raw user content to the human-authored message.
// If a <user_query> region exists its trimmed inner text is returned;
// otherwise every known wrapper-tag region is removed and the remainder
// trimmed. The function is idempotent.
func ExtractUserText(raw string) string {
	if m := userQueryRe.FindStringSubmatch(raw); m != nil {
		return strings.TrimSpace(m[1])
	}

	out := raw
	for _, re := range wrapperRes {
		out = re.ReplaceAllString(out, "")
	}
	return strings.TrimSpace(out)
}
