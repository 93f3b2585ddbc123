package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lshigami/classroom/internal/model"
)

const fourOptionBlock = `Problem 1:
Title: Capital of France
Content: Which city is the capital of France?
Option1: Paris
Option2: Lyon
Option3: Nice
Option4: Lille
Answer: 2
Explanation: Paris has been the capital
since the 10th century.
Expected time: 3
`

func TestParseMultipleChoice_FullBlock(t *testing.T) {
	drafts := ParseMultipleChoice(fourOptionBlock)

	require.Len(t, drafts, 1)
	d := drafts[0]
	assert.Equal(t, model.KindMultipleChoice, d.Kind)
	assert.Equal(t, "Capital of France", d.Title)
	assert.Equal(t, "Which city is the capital of France?", d.Description)
	assert.Equal(t, []string{"Paris", "Lyon", "Nice", "Lille"}, d.Options)
	require.NotNil(t, d.CorrectIndex)
	assert.Equal(t, 2, *d.CorrectIndex)
	assert.Equal(t, "Paris has been the capital\nsince the 10th century.", d.Explanation)
	require.NotNil(t, d.ExpectedMinutes)
	assert.Equal(t, 3, *d.ExpectedMinutes)
}

func TestParseMultipleChoice_UnnumberedOptions(t *testing.T) {
	raw := "Problem 1:\nTitle: T\nContent: C\nOption: a\nOption: b\nOption: c\nOption: d\nAnswer: 2\n"

	drafts := ParseMultipleChoice(raw)

	require.Len(t, drafts, 1)
	assert.Len(t, drafts[0].Options, 4)
	require.NotNil(t, drafts[0].CorrectIndex)
	assert.Equal(t, 2, *drafts[0].CorrectIndex)
}

func TestParseMultipleChoice_MinimalAndEmpty(t *testing.T) {
	drafts := ParseMultipleChoice("Problem 1:\nTitle: T\nContent: C\nOption1: A\nAnswer: 1\n")
	require.Len(t, drafts, 1)
	assert.Equal(t, "T", drafts[0].Title)
	assert.Equal(t, "C", drafts[0].Description)
	assert.Equal(t, []string{"A"}, drafts[0].Options)
	require.NotNil(t, drafts[0].CorrectIndex)
	assert.Equal(t, 1, *drafts[0].CorrectIndex)

	empty := ParseMultipleChoice("")
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestParseMultipleChoice_Leniency(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		wantCount int
	}{
		{name: "missing title", raw: "Problem 1:\nContent: C\nOption1: A\nAnswer: 1\n", wantCount: 0},
		{name: "missing content", raw: "Problem 1:\nTitle: T\nOption1: A\nAnswer: 1\n", wantCount: 0},
		{name: "blank title", raw: "Problem 1:\nTitle:   \nContent: C\n", wantCount: 0},
		{name: "no markers at all", raw: "the model refused to answer", wantCount: 0},
		{
			name:      "one good block among bad ones",
			raw:       "Problem 1:\nContent: C\nProblem 2:\nTitle: T2\nContent: C2\nOption1: x\nAnswer: 1\nProblem 3:\nTitle: T3\n",
			wantCount: 1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotPanics(t, func() {
				assert.Len(t, ParseMultipleChoice(tt.raw), tt.wantCount)
			})
		})
	}
}

func TestParseMultipleChoice_NonNumericAnswerStillEmitted(t *testing.T) {
	raw := "Problem 1:\nTitle: T\nContent: C\nOption1: A\nOption2: B\nAnswer: B\n"

	drafts := ParseMultipleChoice(raw)

	require.Len(t, drafts, 1)
	assert.Nil(t, drafts[0].CorrectIndex)
	assert.Len(t, drafts[0].Options, 2)
}

func TestParseMultipleChoice_FirstMatchWins(t *testing.T) {
	raw := "Problem 1:\nTitle: First\nTitle: Second\nContent: C\nOption1: A\nOption1: B\nAnswer: 1\nAnswer: 3\n"

	drafts := ParseMultipleChoice(raw)

	require.Len(t, drafts, 1)
	assert.Equal(t, "First", drafts[0].Title)
	assert.Equal(t, []string{"A"}, drafts[0].Options)
	assert.Equal(t, 1, *drafts[0].CorrectIndex)
}

func TestParseMultipleChoice_MultipleBlocksAndCRLF(t *testing.T) {
	raw := "Here are your problems.\r\n\r\nProblem 1:\r\nTitle: A\r\nContent: first\r\nOption1: x\r\nAnswer: 1\r\n" +
		"Problem 2:\r\nTitle: B\r\nContent: second\r\nline two\r\nOption1: y\r\nOption2: z\r\nAnswer: 2\r\n"

	drafts := ParseMultipleChoice(raw)

	require.Len(t, drafts, 2)
	assert.Equal(t, "A", drafts[0].Title)
	assert.Equal(t, "second\nline two", drafts[1].Description)
	assert.Equal(t, []string{"y", "z"}, drafts[1].Options)
}

func TestParseFreeText(t *testing.T) {
	raw := `Problem 1:
Title: Environment essay
Content: Describe the main causes of pollution.
Give two solutions.
Sample answer: Industry and traffic are the main causes.
Grading criteria: 1. causes (40) 2. solutions (40) 3. structure (20)
Expected time: 15

Problem 2:
Title: Capital
Content: Name the capital of Korea.
`
	drafts := ParseFreeText(raw, model.KindEssay)

	require.Len(t, drafts, 2)
	first := drafts[0]
	assert.Equal(t, model.KindEssay, first.Kind)
	assert.Equal(t, "Describe the main causes of pollution.\nGive two solutions.", first.Description)
	assert.Equal(t, "Industry and traffic are the main causes.", first.SampleAnswer)
	assert.Equal(t, "1. causes (40) 2. solutions (40) 3. structure (20)", first.GradingCriteria)
	require.NotNil(t, first.ExpectedMinutes)
	assert.Equal(t, 15, *first.ExpectedMinutes)

	second := drafts[1]
	assert.Equal(t, "Name the capital of Korea.", second.Description)
	assert.Empty(t, second.SampleAnswer)
	assert.Nil(t, second.ExpectedMinutes)
}

func TestParse_Dispatch(t *testing.T) {
	assert.Len(t, Parse(fourOptionBlock, model.KindMultipleChoice), 1)

	short := Parse("Problem 1:\nTitle: T\nContent: C\nSample answer: S\n", model.KindShortAnswer)
	require.Len(t, short, 1)
	assert.Equal(t, model.KindShortAnswer, short[0].Kind)

	assert.Empty(t, Parse(fourOptionBlock, model.ProblemKind("matching")))
}

func TestParse_Deterministic(t *testing.T) {
	first := ParseMultipleChoice(fourOptionBlock)
	second := ParseMultipleChoice(fourOptionBlock)
	assert.Equal(t, first, second)
}

func TestParseMultipleChoice_GeneratorShapes(t *testing.T) {
	raw := "Here are your problems. Problem 1: Title: A\nContent: body A\nOption1: x\nOption2: y\nAnswer: 1\n\n" +
		"**Problem 2:**\n**Title:** B\n**Content:** body B\n**Option1:** p\n**Option2:** q\n**Answer:** 2\n**Explanation:** because\n\n" +
		"## Problem 3:\nTitle:\nC\nContent:\nbody C\nOption1:\nr\nAnswer:\n1\n"

	drafts := ParseMultipleChoice(raw)

	require.Len(t, drafts, 3)
	assert.Equal(t, "A", drafts[0].Title)
	assert.Equal(t, "body A", drafts[0].Description)
	assert.Equal(t, []string{"x", "y"}, drafts[0].Options)

	second := drafts[1]
	assert.Equal(t, "B", second.Title)
	assert.Equal(t, "body B", second.Description)
	assert.Equal(t, []string{"p", "q"}, second.Options)
	require.NotNil(t, second.CorrectIndex)
	assert.Equal(t, 2, *second.CorrectIndex)
	assert.Equal(t, "because", second.Explanation)

	third := drafts[2]
	assert.Equal(t, "C", third.Title)
	assert.Equal(t, "body C", third.Description)
	assert.Equal(t, []string{"r"}, third.Options)
	require.NotNil(t, third.CorrectIndex)
	assert.Equal(t, 1, *third.CorrectIndex)
}

func TestParseFreeText_TitleOnNextLine(t *testing.T) {
	drafts := ParseFreeText("Problem 1:\nTitle:\nReal title\nContent: C\nSample answer:\nS\n", model.KindEssay)

	require.Len(t, drafts, 1)
	assert.Equal(t, "Real title", drafts[0].Title)
	assert.Equal(t, "C", drafts[0].Description)
	assert.Equal(t, "S", drafts[0].SampleAnswer)
}

func TestParse_MarkerNeedsWordBoundary(t *testing.T) {
	drafts := ParseMultipleChoice("Problem 1:\nSubTitle: wrong\nTitle: right\nContent: C\nOption1: A\nAnswer: 1\n")

	require.Len(t, drafts, 1)
	assert.Equal(t, "right", drafts[0].Title)
}
