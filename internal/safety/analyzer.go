package safety

import "strings"

// splitSegments breaks a compound command on shell chaining operators so
// a guarded verb cannot hide behind an innocuous prefix. "||" is split
// before "|"; the empty segments that produces are dropped.
func splitSegments(command string) []string {
	parts := []string{command}
	for _, sep := range []string{"&&", "||", ";", "|", "\n"} {
		var next []string
		for _, p := range parts {
			next = append(next, strings.Split(p, sep)...)
		}
		parts = next
	}
	var out []string
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// normalize lowercases a command and collapses whitespace runs so prefix
// and pattern checks are not defeated by spacing or case tricks.
func normalize(command string) string {
	return strings.ToLower(strings.Join(strings.Fields(command), " "))
}

func firstToken(command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// hasDangerousRedirect reports whether the command writes to a file
// through a shell redirect. Descriptor duplication (2>&1) and discards to
// /dev/null are not file writes; any other > or >> target is. Redirect
// characters inside single or double quotes are plain text.
func hasDangerousRedirect(command string) bool {
	inSingle, inDouble := false, false
	runes := []rune(command)
	for i := 0; i < len(runes); i++ {
		switch {
		case runes[i] == '\'' && !inDouble:
			inSingle = !inSingle
		case runes[i] == '"' && !inSingle:
			inDouble = !inDouble
		case runes[i] == '>' && !inSingle && !inDouble:
			if dangerousRedirectAt(runes, i) {
				return true
			}
			if i+1 < len(runes) && runes[i+1] == '>' {
				i++ // the second arrow of >> was handled above
			}
		}
	}
	return false
}

func dangerousRedirectAt(runes []rune, i int) bool {
	j := i + 1
	if j < len(runes) && runes[j] == '>' {
		j++
	}
	if j < len(runes) && runes[j] == '&' {
		return false // descriptor duplication, not a file write
	}
	for j < len(runes) && (runes[j] == ' ' || runes[j] == '\t') {
		j++
	}
	start := j
	for j < len(runes) && runes[j] != ' ' && runes[j] != '\t' {
		j++
	}
	return string(runes[start:j]) != "/dev/null"
}
