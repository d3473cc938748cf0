// Package resolver implements the rule resolution engine: ranking matching
// rules and groups for a download and selecting one destination
package resolver

import (
	"sort"
	"strings"

	"download-router/pkg/models"
	"download-router/pkg/pathutil"
)

// conflictWindow is how close to the top priority a match must be to count
// as tied with it
const conflictWindow = 0.01

// Input carries everything resolution needs. Rules and groups are the full
// stored sets; resolution itself never touches the store.
type Input struct {
	URL      string
	Filename string
	Rules    []models.Rule
	Groups   map[string]models.Group
	Settings models.Settings
}

// Decision is the outcome of resolving one download
type Decision struct {
	Domain    string
	Extension string
	Filename  string

	// RelativePath is the path handed to the browser, relative to the
	// downloads root
	RelativePath string
	// AbsoluteDestination is set when the winning folder is an absolute
	// path; the file lands at the root and is moved after completion
	AbsoluteDestination string
	NeedsMove           bool

	// Final is nil when resolution is ambiguous and conflict handling is
	// deferred to the user
	Final     *models.Match
	Conflicts []models.Match
	Matches   []models.Match
}

// Routed reports whether a non-default rule decided the destination
func (d *Decision) Routed() bool {
	return d.Final != nil && d.Final.Source != models.SourceDefault
}

// Resolve deterministically selects one destination for a download, or
// signals genuine ambiguity via a nil Final and a populated Conflicts list.
func Resolve(in Input) Decision {
	filename := pathutil.Filename(in.Filename)
	extension := pathutil.Extension(filename)
	domain := pathutil.NormalizeDomain(in.URL)

	decision := Decision{
		Domain:    domain,
		Extension: extension,
		Filename:  filename,
	}

	matches := collectMatches(domain, extension, in.Rules, in.Groups)
	decision.Matches = matches

	if len(matches) == 0 {
		fallback := models.Match{
			Source:   models.SourceDefault,
			Folder:   in.Settings.DefaultFolder,
			Priority: models.DefaultMatchPriority,
		}
		decision.Final = &fallback
		decision.applyFolder(fallback.Folder, filename)
		return decision
	}

	tied := tiedWithTop(matches)
	switch {
	case len(tied) == 1:
		decision.Final = &tied[0]
	case in.Settings.ConflictResolution == models.ConflictAsk:
		// Genuine ambiguity: leave the decision to the confirmation UI.
		// The first tied match is only used for the initial path display.
		decision.Conflicts = tied
	default:
		// Auto mode picks the stable-sort winner
		decision.Final = &tied[0]
	}

	display := decision.Final
	if display == nil {
		display = &tied[0]
	}
	decision.applyFolder(display.Folder, filename)

	return decision
}

// collectMatches gathers domain, extension and filetype matches in the fixed
// tie-break order and sorts them ascending by priority.
func collectMatches(domain, extension string, rules []models.Rule, groups map[string]models.Group) []models.Match {
	var matches []models.Match
	var domainPriorities []float64

	// Domain matches: bidirectional substring, so "github.com" matches
	// "gist.github.com" and a rule for "mail.google.com" still matches the
	// broader "google.com".
	if domain != "unknown" {
		for _, rule := range rules {
			if !rule.Enabled || rule.Type != models.RuleTypeDomain {
				continue
			}
			value := strings.ToLower(strings.TrimSpace(rule.Value))
			if value == "" {
				continue
			}
			if strings.Contains(domain, value) || strings.Contains(value, domain) {
				priority := models.PriorityOrDefault(rule.Priority, models.DefaultRulePriority)
				matches = append(matches, models.Match{
					Source:   models.SourceDomain,
					Value:    rule.Value,
					Folder:   rule.Folder,
					Priority: priority,
				})
				domainPriorities = append(domainPriorities, priority)
			}
		}
	}

	// Extension matches: a file with no extension matches nothing
	if extension != "" {
		for _, rule := range rules {
			if !rule.Enabled || rule.Type != models.RuleTypeExtension {
				continue
			}
			if containsExtension(rule.Value, extension) {
				matches = append(matches, models.Match{
					Source:   models.SourceExtension,
					Value:    rule.Value,
					Folder:   rule.Folder,
					Priority: models.PriorityOrDefault(rule.Priority, models.DefaultRulePriority),
				})
			}
		}
	}

	// Filetype matches synthesized from enabled groups. Group iteration is
	// name-ordered so resolution stays deterministic.
	if extension != "" {
		names := make([]string, 0, len(groups))
		for name := range groups {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			group := groups[name]
			if !group.Enabled || !containsExtension(group.Extensions, extension) {
				continue
			}

			priority := models.PriorityOrDefault(group.Priority, models.DefaultGroupPriority)
			if group.OverrideDomainRules && len(domainPriorities) > 0 {
				// Boost past every domain match, floored at 0.1
				priority = minFloat(domainPriorities) - 0.1
				if priority < 0.1 {
					priority = 0.1
				}
			}

			matches = append(matches, models.Match{
				Source:    models.SourceFiletype,
				Value:     group.Extensions,
				Folder:    group.Folder,
				Priority:  priority,
				GroupName: group.Name,
			})
		}
	}

	// Stable sort keeps the append order (domain < extension < filetype)
	// as the tie-break for equal priorities
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Priority < matches[j].Priority
	})

	return matches
}

// tiedWithTop returns every match within the conflict window of the best one
func tiedWithTop(matches []models.Match) []models.Match {
	top := matches[0].Priority
	tied := []models.Match{matches[0]}
	for _, m := range matches[1:] {
		if m.Priority-top <= conflictWindow {
			tied = append(tied, m)
		}
	}
	return tied
}

// applyFolder fills the path fields of the decision from the chosen folder
func (d *Decision) applyFolder(folder, filename string) {
	if pathutil.IsAbsolute(folder) {
		// The browser cannot write outside its downloads root: land at the
		// root and defer placement to the post-download move
		d.RelativePath = filename
		d.AbsoluteDestination = folder
		d.NeedsMove = true
		return
	}
	d.RelativePath = pathutil.BuildRelativePath(folder, filename)
}

func containsExtension(commaList, extension string) bool {
	for _, entry := range strings.Split(commaList, ",") {
		if strings.ToLower(strings.TrimSpace(entry)) == extension {
			return true
		}
	}
	return false
}

func minFloat(values []float64) float64 {
	min := values[0]
	for _, v := range values[1:] {
		if v < min {
			min = v
		}
	}
	return min
}
