// Package protocol interprets the player's line-oriented control protocol:
// unsolicited status-change notifications, command acknowledgments, and
// data responses, none of which carry an explicit tag on the wire.
package protocol

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/vlcbridge/vlcbridge/internal/domain"
	"github.com/vlcbridge/vlcbridge/internal/player"
	"go.uber.org/zap"
)

// statusLine is the outer shape of a notification. Group 1 is the
// parenthesized payload; the optional ":<tail>" after the closing
// parenthesis is ignored.
var statusLine = regexp.MustCompile(`^status change: \( (.*?) \)(:.*)?\s*$`)

// winDrivePath matches Windows drive-letter sources, e.g. "C:/Movies/a.mp4"
var winDrivePath = regexp.MustCompile(`^[A-Z]:/`)

// Rule is one immutable entry of the status-change table. The table is
// ordered and first match wins; Apply receives the pattern's submatches.
type Rule struct {
	Label   string
	Pattern *regexp.Regexp
	Apply   func(groups []string)
}

// StatusParser matches notification payloads against the rule table and
// mutates the player accordingly
type StatusParser struct {
	logger *zap.Logger
	rules  []Rule
}

// NewStatusParser builds the parser with its rule table bound to p.
//
// The table reproduces the player's reporting quirks on purpose:
// "pause state: 4" maps to Stopped even though "pause state: 3" means
// Paused, and a "new input" report also forces the Playing state. Both
// mappings are part of the observed protocol contract.
func NewStatusParser(logger *zap.Logger, p *player.Player) *StatusParser {
	rules := []Rule{
		{
			Label:   "volume",
			Pattern: regexp.MustCompile(`^audio volume: (-?[0-9]+)$`),
			Apply: func(groups []string) {
				v, err := strconv.Atoi(groups[1])
				if err != nil {
					logger.Warn("Unparseable volume report", zap.String("value", groups[1]))
					return
				}
				p.SetVolume(v)
			},
		},
		{
			Label:   "stop",
			Pattern: regexp.MustCompile(`^stop state: 0$`),
			Apply:   func([]string) { p.SetState(domain.StateStopped) },
		},
		{
			Label:   "play",
			Pattern: regexp.MustCompile(`^play state: 2$`),
			Apply:   func([]string) { p.SetState(domain.StatePlaying) },
		},
		{
			Label:   "play",
			Pattern: regexp.MustCompile(`^play state: 3$`),
			Apply:   func([]string) { p.SetState(domain.StatePlaying) },
		},
		{
			Label:   "play",
			Pattern: regexp.MustCompile(`^play state: 4$`),
			Apply:   func([]string) { p.SetState(domain.StatePlaying) },
		},
		{
			Label:   "pause",
			Pattern: regexp.MustCompile(`^pause state: 3$`),
			Apply:   func([]string) { p.SetState(domain.StatePaused) },
		},
		{
			Label:   "stop",
			Pattern: regexp.MustCompile(`^pause state: 4$`),
			Apply:   func([]string) { p.SetState(domain.StateStopped) },
		},
		{
			Label:   "input source",
			Pattern: regexp.MustCompile(`^new input: file:///(.*?)$`),
			Apply: func(groups []string) {
				src := NormalizeSource(groups[1])
				p.SetSource(src)
				p.SetState(domain.StatePlaying)
				logger.Info("New input", zap.String("source", src))
			},
		},
	}
	return &StatusParser{logger: logger, rules: rules}
}

// MatchStatusLine reports whether line is a notification and, if so,
// returns its parenthesized payload
func MatchStatusLine(line string) (payload string, ok bool) {
	m := statusLine.FindStringSubmatch(line)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// HandlePayload evaluates the rule table against payload in order and
// applies the first matching rule. It reports whether any rule matched;
// an unmatched payload leaves the player untouched.
func (sp *StatusParser) HandlePayload(payload string) bool {
	for _, r := range sp.rules {
		if m := r.Pattern.FindStringSubmatch(payload); m != nil {
			r.Apply(m)
			return true
		}
	}
	return false
}

// NormalizeSource rewrites forward slashes to backslashes for
// Windows drive-letter sources; other paths pass through unchanged
func NormalizeSource(src string) string {
	if winDrivePath.MatchString(src) {
		return strings.ReplaceAll(src, "/", `\`)
	}
	return src
}
