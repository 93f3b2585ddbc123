// Package parser turns field-tagged problem text, typed by a teacher or produced by
// a text-generation model, into problem drafts. Parsing is lenient and pure: a field
// that does not match is simply absent, and validation happens when a draft is saved.
package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/lshigami/classroom/internal/model"
)

// MaxOptions is the number of numbered option markers recognised per block.
const MaxOptions = 4

// Draft is an unvalidated problem-shaped record. Pointer fields distinguish
// "absent" from a zero value.
type Draft struct {
	Kind            model.ProblemKind `json:"kind"`
	Title           string            `json:"title"`
	Description     string            `json:"description"`
	Options         []string          `json:"options,omitempty"`
	CorrectIndex    *int              `json:"correct_index,omitempty"`
	Explanation     string            `json:"explanation,omitempty"`
	SampleAnswer    string            `json:"sample_answer,omitempty"`
	GradingCriteria string            `json:"grading_criteria,omitempty"`
	ExpectedMinutes *int              `json:"expected_minutes,omitempty"`
}

// Markers may appear mid-line and may carry markdown emphasis or heading marks,
// as in "**Title:** A" or "## Problem 2:". A value may start on the line after
// its marker.
const (
	lead  = `[*_#]*[ \t]*\b`
	colon = `[ \t]*[*_]*[ \t]*:[*_]*[ \t]*`
	wrap  = `(?:\n[ \t]*)?`
)

var (
	blockSplitter = regexp.MustCompile(lead + `Problem[ \t]*\d+` + colon)

	titlePattern        = linePattern("Title")
	optionPattern       = regexp.MustCompile(lead + `Option[ \t]*(\d*)` + colon + wrap + `(.*)`)
	answerPattern       = numberPattern("Answer")
	expectedTimePattern = numberPattern("Expected time")

	mcContentPattern     = sectionPattern("Content", `Option[ \t]*\d*`, "Answer", "Explanation", "Expected time")
	explanationPattern   = sectionPattern("Explanation", "Expected time")
	textContentPattern   = sectionPattern("Content", "Sample answer", "Grading criteria", "Expected time")
	sampleAnswerPattern  = sectionPattern("Sample answer", "Grading criteria", "Expected time")
	gradingCriteriaPatrn = sectionPattern("Grading criteria", "Expected time")

	// markerLine recognises a value that is really the next field's marker, left
	// behind when a single-line field is blank.
	markerLine = regexp.MustCompile(`^[*_#]*[ \t]*(?:Problem[ \t]*\d+|Title|Content|Option[ \t]*\d*|Answer|Explanation|Expected time|Sample answer|Grading criteria)` + colon)
)

// linePattern matches a single-line field.
func linePattern(marker string) *regexp.Regexp {
	return regexp.MustCompile(lead + marker + colon + wrap + `(.*)`)
}

// numberPattern matches a field holding a whole number, on its line or the next.
func numberPattern(marker string) *regexp.Regexp {
	return regexp.MustCompile(lead + marker + colon + `\s*(\d+)`)
}

// sectionPattern matches a possibly multi-line field that runs until one of the
// following markers starts a line, or the block ends.
func sectionPattern(marker string, next ...string) *regexp.Regexp {
	return regexp.MustCompile(fmt.Sprintf(`(?s)%s%s%s(.*?)(?:\n[ \t]*[*_#]*[ \t]*(?:%s)%s|\z)`,
		lead, marker, colon, strings.Join(next, "|"), colon))
}

// Parse dispatches on kind. An unknown kind yields no drafts.
func Parse(raw string, kind model.ProblemKind) []Draft {
	switch kind {
	case model.KindMultipleChoice:
		return ParseMultipleChoice(raw)
	case model.KindShortAnswer, model.KindEssay:
		return ParseFreeText(raw, kind)
	}
	return []Draft{}
}

// ParseMultipleChoice reads blocks tagged with Title, Content, Option1..4, Answer,
// Explanation and Expected time.
func ParseMultipleChoice(raw string) []Draft {
	drafts := []Draft{}
	for _, block := range splitBlocks(raw) {
		d := Draft{
			Kind:            model.KindMultipleChoice,
			Title:           capture(titlePattern, block),
			Description:     capture(mcContentPattern, block),
			Options:         options(block),
			CorrectIndex:    captureInt(answerPattern, block),
			Explanation:     capture(explanationPattern, block),
			ExpectedMinutes: captureInt(expectedTimePattern, block),
		}
		if d.Title == "" || d.Description == "" {
			continue
		}
		drafts = append(drafts, d)
	}
	return drafts
}

// ParseFreeText reads blocks tagged with Title, Content, Sample answer, Grading
// criteria and Expected time. kind is stamped on every draft.
func ParseFreeText(raw string, kind model.ProblemKind) []Draft {
	drafts := []Draft{}
	for _, block := range splitBlocks(raw) {
		d := Draft{
			Kind:            kind,
			Title:           capture(titlePattern, block),
			Description:     capture(textContentPattern, block),
			SampleAnswer:    capture(sampleAnswerPattern, block),
			GradingCriteria: capture(gradingCriteriaPatrn, block),
			ExpectedMinutes: captureInt(expectedTimePattern, block),
		}
		if d.Title == "" || d.Description == "" {
			continue
		}
		drafts = append(drafts, d)
	}
	return drafts
}

func splitBlocks(raw string) []string {
	raw = strings.ReplaceAll(raw, "\r\n", "\n")
	parts := blockSplitter.Split(raw, -1)
	blocks := make([]string, 0, len(parts))
	for _, p := range parts {
		if strings.TrimSpace(p) == "" {
			continue
		}
		blocks = append(blocks, p)
	}
	return blocks
}

func capture(re *regexp.Regexp, block string) string {
	m := re.FindStringSubmatch(block)
	if m == nil {
		return ""
	}
	return value(m[1])
}

func value(s string) string {
	s = strings.TrimSpace(s)
	if markerLine.MatchString(s) {
		return ""
	}
	return s
}

func captureInt(re *regexp.Regexp, block string) *int {
	m := re.FindStringSubmatch(block)
	if m == nil {
		return nil
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return nil
	}
	return &n
}

// options collects Option1..Option4 in index order, first match per index, followed
// by any unnumbered "Option:" lines in the order they appear, capped at MaxOptions.
func options(block string) []string {
	var numbered [MaxOptions]string
	var found [MaxOptions]bool
	var unnumbered []string

	for _, m := range optionPattern.FindAllStringSubmatch(block, -1) {
		text := value(m[2])
		if text == "" {
			continue
		}
		if m[1] == "" {
			unnumbered = append(unnumbered, text)
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil || n < 1 || n > MaxOptions || found[n-1] {
			continue
		}
		numbered[n-1], found[n-1] = text, true
	}

	var out []string
	for i := range numbered {
		if found[i] {
			out = append(out, numbered[i])
		}
	}
	for _, o := range unnumbered {
		if len(out) == MaxOptions {
			break
		}
		out = append(out, o)
	}
	return out
}
