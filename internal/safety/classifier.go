// Package safety classifies shell commands before a guarded session runs
// them. The pipeline order is fixed and testable: the dangerous floor
// first (destructive commands, privilege escalation, publish and install
// verbs, file-writing redirects), then patterns registered per tool, then
// a built-in read-only allow-list, then default deny. Registration can
// narrow what runs; nothing can widen past the floor.
package safety

import (
	"fmt"
	"regexp"
	"strings"
)

// Result is the verdict for one command.
type Result struct {
	Allowed bool
	Access  Access
	Reason  string
}

// dangerousCommands are prefixes blocked in every segment of a command,
// regardless of registry state.
var dangerousCommands = []string{
	"rm -rf", "rm -fr", "rm /",
	"sudo", "doas", "su -",
	"chmod 777", "chmod -r 777", "chown -r",
	"git push", "git reset --hard", "git clean -fd",
	"npm install", "npm uninstall", "npm publish",
	"pip install", "gem install", "cargo install", "go install",
	"dd if=", "mkfs", "fdisk",
	"mv /", "cp -r /",
	"shutdown", "reboot", "halt", "poweroff",
	"kill -9", "killall", "pkill",
	"shred", "truncate",
}

// dangerousPatterns are substrings blocked anywhere in a command. Command
// substitution is here because it smuggles arbitrary commands past every
// other check.
var dangerousPatterns = []string{
	":(){",
	"| sh", "|sh",
	"| bash", "|bash",
	"$(", "`",
	"/dev/sd", "/dev/nvme", "/dev/disk",
}

// readOnlyCommands are single commands that cannot modify state on their
// own. Writes through redirects are caught before this stage.
var readOnlyCommands = map[string]bool{
	"ls": true, "pwd": true, "cat": true, "head": true, "tail": true,
	"less": true, "more": true, "grep": true, "rg": true, "find": true,
	"echo": true, "printf": true, "date": true, "whoami": true, "id": true,
	"uname": true, "hostname": true, "env": true, "printenv": true,
	"which": true, "type": true, "file": true, "stat": true, "wc": true,
	"sort": true, "uniq": true, "cut": true, "tr": true, "diff": true,
	"du": true, "df": true, "ps": true, "uptime": true, "free": true,
	"true": true, "basename": true, "dirname": true, "readlink": true,
	"realpath": true, "md5sum": true, "sha256sum": true,
}

// readOnlyPrefixes cover subcommand tools whose read-only surface is a
// subset of their verbs.
var readOnlyPrefixes = []string{
	"git status", "git log", "git diff", "git show", "git branch",
	"git remote", "git stash list", "git blame",
	"go version", "go env", "go list",
	"npm ls", "npm list", "npm view", "npm outdated",
	"docker ps", "docker images",
	"kubectl get", "kubectl describe",
}

// Classifier applies the guard pipeline against a pattern registry and
// the set of guarded tools from project config.
type Classifier struct {
	registry *Registry
	guarded  map[string]bool
}

// NewClassifier returns a classifier over the given registry. A nil
// registry means no registered patterns, not a panic.
func NewClassifier(reg *Registry, guardedTools []string) *Classifier {
	if reg == nil {
		reg = NewRegistry()
	}
	guarded := make(map[string]bool, len(guardedTools))
	for _, t := range guardedTools {
		guarded[strings.TrimSpace(t)] = true
	}
	return &Classifier{registry: reg, guarded: guarded}
}

// Registry exposes the classifier's pattern registry for registration.
func (c *Classifier) Registry() *Registry {
	return c.registry
}

// Guarded reports whether a tool requires an approved plan before use.
func (c *Classifier) Guarded(tool string) bool {
	return c.guarded[tool]
}

// Check classifies a command. Compound commands pass only if every
// segment passes; the first blocking segment decides the verdict.
func (c *Classifier) Check(command string) Result {
	trimmed := strings.TrimSpace(command)
	if trimmed == "" {
		return Result{Allowed: false, Reason: "empty command"}
	}

	segs := splitSegments(trimmed)

	// The dangerous floor comes before everything else, including the
	// registry: no registration can allow a destructive command.
	for _, seg := range segs {
		norm := normalize(seg)
		for _, prefix := range dangerousCommands {
			if matchesDangerousPrefix(norm, prefix) {
				return Result{Allowed: false, Reason: fmt.Sprintf("dangerous command: %q is always blocked", prefix)}
			}
		}
	}
	full := normalize(trimmed)
	for _, pat := range dangerousPatterns {
		if strings.Contains(full, pat) {
			return Result{Allowed: false, Reason: fmt.Sprintf("dangerous pattern: %q is always blocked", pat)}
		}
	}
	if hasDangerousRedirect(trimmed) {
		return Result{Allowed: false, Reason: "dangerous redirect: command writes to a file"}
	}

	var verdict Result
	for i, seg := range segs {
		r := c.checkSegment(seg)
		if !r.Allowed {
			return r
		}
		if i == 0 {
			verdict = r
		}
	}
	if len(segs) > 1 {
		verdict.Reason = "every segment allowed"
	}
	return verdict
}

// checkSegment resolves one simple command: registered write patterns
// deny, registered read patterns allow, the built-in read-only list
// allows, and anything left is denied by default.
func (c *Classifier) checkSegment(seg string) Result {
	norm := normalize(seg)
	tool := firstToken(norm)

	if pats := c.registry.Lookup(tool); len(pats) > 0 {
		for _, p := range pats {
			if p.Access == WriteAccess && globMatch(p.Glob, norm) {
				return Result{
					Allowed: false,
					Access:  WriteAccess,
					Reason:  fmt.Sprintf("matches registered pattern %q: WRITE operation is blocked", p.Glob),
				}
			}
		}
		for _, p := range pats {
			if p.Access == ReadAccess && globMatch(p.Glob, norm) {
				return Result{
					Allowed: true,
					Access:  ReadAccess,
					Reason:  fmt.Sprintf("matches registered read pattern %q", p.Glob),
				}
			}
		}
	}

	if readOnlyCommands[tool] {
		return Result{Allowed: true, Access: ReadAccess, Reason: "read-only command"}
	}
	for _, prefix := range readOnlyPrefixes {
		if norm == prefix || strings.HasPrefix(norm, prefix+" ") {
			return Result{Allowed: true, Access: ReadAccess, Reason: "read-only command"}
		}
	}

	return Result{
		Allowed: false,
		Reason:  fmt.Sprintf("command %q is not registered and not read-only: denied by default", tool),
	}
}

// matchesDangerousPrefix reports whether a normalized segment starts with
// a blocked prefix. Word entries must end at a token boundary so "shred"
// does not match "shredder"; entries ending in a symbol ("dd if=",
// "rm /") match as plain prefixes.
func matchesDangerousPrefix(norm, prefix string) bool {
	if !strings.HasPrefix(norm, prefix) {
		return false
	}
	if len(norm) == len(prefix) {
		return true
	}
	last := prefix[len(prefix)-1]
	if (last >= 'a' && last <= 'z') || (last >= '0' && last <= '9') {
		switch norm[len(prefix)] {
		case ' ', '/', '=', '.', ';':
			return true
		}
		return false
	}
	return true
}

// globMatch matches a shell-style glob (* and ?) against a whole
// normalized command.
func globMatch(glob, command string) bool {
	var b strings.Builder
	b.WriteString("^")
	for _, r := range strings.ToLower(glob) {
		switch r {
		case '*':
			b.WriteString(".*")
		case '?':
			b.WriteString(".")
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	b.WriteString("$")
	matched, err := regexp.MatchString(b.String(), command)
	return err == nil && matched
}
