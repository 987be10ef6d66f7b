package mapper

import (
	"regexp"
	"strings"

	"github.com/matsen/skillpath/internal/taxonomy"
)

// MaxPhraseWords is the longest noun phrase emitted as a candidate.
const MaxPhraseWords = 3

// tokenPattern matches words, keeping inner punctuation used by skill names
// such as "node.js", "c++", "c#", and "ci/cd".
var tokenPattern = regexp.MustCompile(`[A-Za-z0-9][A-Za-z0-9+#./\-]*[A-Za-z0-9+#]|[A-Za-z0-9]`)

// clauseBreak reports whether the text between two tokens ends a clause.
func clauseBreak(gap string) bool {
	return strings.ContainsAny(gap, ".,;:!?()[]{}\"\n\t|•")
}

// termPattern is a compiled matcher for one taxonomy surface form.
type termPattern struct {
	term taxonomy.Term
	re   *regexp.Regexp
}

// compileTerms builds one pattern per term, longest first. Terms of two
// characters or fewer (e.g. "Go", "ml") match only as written or in upper
// case so that common words are not taken for skills.
func compileTerms(terms []taxonomy.Term) []termPattern {
	patterns := make([]termPattern, 0, len(terms))
	for _, t := range terms {
		body := "(?i:" + regexp.QuoteMeta(t.Text) + ")"
		if len(t.Text) <= 2 {
			body = regexp.QuoteMeta(t.Text)
			if upper := strings.ToUpper(t.Text); upper != t.Text {
				body += "|" + regexp.QuoteMeta(upper)
			}
		}
		re := regexp.MustCompile(`(?:^|[^A-Za-z0-9+#.])(` + body + `)(?:$|[^A-Za-z0-9+#])`)
		patterns = append(patterns, termPattern{term: t, re: re})
	}
	return patterns
}

// shortForms maps each lower-cased term of two characters or fewer to the
// spellings accepted for it: as written and in upper case.
func shortForms(terms []taxonomy.Term) map[string][]string {
	forms := make(map[string][]string)
	for _, t := range terms {
		if len(t.Text) > 2 {
			continue
		}
		key := strings.ToLower(t.Text)
		forms[key] = append(forms[key], t.Text, strings.ToUpper(t.Text))
	}
	return forms
}

// miscasedShortTerm reports whether c is a short taxonomy term spelled in
// neither accepted form, like "go" in prose for Go.
func miscasedShortTerm(c string, forms map[string][]string) bool {
	if len(c) > 2 {
		return false
	}
	accepted, ok := forms[strings.ToLower(c)]
	if !ok {
		return false
	}
	for _, f := range accepted {
		if c == f {
			return false
		}
	}
	return true
}

// match is an alias hit at a byte offset in the text.
type match struct {
	pos  int
	text string
}

// matchTerms finds every taxonomy term in text. Matched spans are blanked in
// the returned text so shorter terms and phrase extraction do not see them
// again.
func matchTerms(text string, patterns []termPattern) ([]match, string) {
	masked := []byte(text)
	var found []match
	for _, p := range patterns {
		for _, loc := range p.re.FindAllStringSubmatchIndex(string(masked), -1) {
			start, end := loc[2], loc[3]
			found = append(found, match{pos: start, text: text[start:end]})
			for i := start; i < end; i++ {
				masked[i] = ' '
			}
		}
	}
	return found, string(masked)
}

// nounPhrases splits text into clauses and returns runs of content words,
// chunked to at most MaxPhraseWords words each.
func nounPhrases(text string) []string {
	var phrases []string
	var run []string
	flush := func() {
		for len(run) > 0 {
			n := len(run)
			if n > MaxPhraseWords {
				n = MaxPhraseWords
			}
			phrases = append(phrases, strings.Join(run[:n], " "))
			run = run[n:]
		}
	}

	last := 0
	for _, loc := range tokenPattern.FindAllStringIndex(text, -1) {
		if clauseBreak(text[last:loc[0]]) {
			flush()
		}
		last = loc[1]

		word := strings.ToLower(text[loc[0]:loc[1]])
		if isStopword(word) {
			flush()
			continue
		}
		run = append(run, word)
	}
	flush()
	return phrases
}

func isStopword(word string) bool {
	if stopwords[word] {
		return true
	}
	for _, r := range word {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// stopwords separate noun phrases: function words, conjunctions, and the
// filler common in resumes and job postings.
var stopwords = toSet(`a about above across after again against all also am an and any are as at
be because been before being below between both but by can could did do does doing done
down during each either etc few for from further had has have having he her here hers him
his how i if in into is it its itself just me more most my myself no nor not of off on once
only or other our ours out over own per same she should so some such than that the their
them then there these they this those through to too under until up very via was we were
what when where which while who whom why will with within without would you your yours
ability able experience experienced expert familiar familiarity knowledge looking plus
preferred proficiency proficient required requirements responsibilities role skills
strong team understanding using work worked working year years`)

func toSet(words string) map[string]bool {
	set := make(map[string]bool)
	for _, w := range strings.Fields(words) {
		set[w] = true
	}
	return set
}
