package oracle

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/intervu-ai/intervu-server/internal/domain"
	"github.com/intervu-ai/intervu-server/pkg/genai"
)

const maxResumeContextChars = 3000

const generateQuestionPrompt = `You are a senior full-stack interviewer for React/Node roles.
Generate 1 SHORT interview question at difficulty: %s.%s

CRITICAL REQUIREMENTS:
- Question must be MAXIMUM 2 LINES (1-2 short sentences)
- ONLY ask about content EXPLICITLY present in the resume
- Focus on ONE concept at a time - keep it simple and direct
- NO coding questions, NO code snippets
- Question should be clear and easy to answer verbally

Return ONLY a valid JSON object with this exact structure (no markdown, no extra text):
{
  "text": "short question (maximum 2 lines)",
  "rubric": "key points expected in answer",
  "gradingHints": "scoring criteria"
}`

const resumeContextTemplate = `

Candidate's Resume Content:
%s

IMPORTANT INSTRUCTIONS:
- ONLY ask questions about skills/technologies/projects that are EXPLICITLY mentioned in the resume above
- DO NOT assume or infer skills that are not clearly stated
- Extract actual project names and technologies from the text above
- If you cannot find clear skills or projects, ask general full-stack questions`

const gradeAnswerPrompt = `You are grading a technical interview answer. Grade objectively based on what is written.

Question: %s
Expected Answer Points: %s
Grading Criteria: %s

Candidate's Written Answer:
%s
%s

GRADING INSTRUCTIONS:
- Score from 0-10 based on the WRITTEN answer
- If answer is empty/minimal and there is a recording, give 5/10 (assume verbal explanation)
- If answer is empty with NO recording, give 0-2/10
- Feedback should be 2-3 SHORT bullet points (no asterisks, no markdown)
- Focus on what is GOOD and what is MISSING

CRITICAL: Return ONLY valid JSON with NO markdown formatting:
{"score": 7, "feedback": "Good explanation of X. Missing details about Y."}`

const finalSummaryPrompt = `You are a senior technical interviewer. Based on the following interview performance, provide:
1. A final overall score (0-100)
2. A brief summary of strengths and areas for improvement

Interview Performance:
%s

Return ONLY valid JSON: {"finalScore": 0-100, "summary": "brief summary text"}`

type geminiOracle struct {
	client *genai.Client
}

// NewGeminiOracle returns the Gemini-backed oracle implementation.
func NewGeminiOracle(client *genai.Client) Oracle {
	return &geminiOracle{client: client}
}

func (o *geminiOracle) GenerateQuestion(ctx context.Context, difficulty domain.Difficulty, resumeText string) (*domain.Question, error) {
	resumeContext := ""
	if resumeText != "" {
		if len(resumeText) > maxResumeContextChars {
			resumeText = resumeText[:maxResumeContextChars]
		}
		resumeContext = fmt.Sprintf(resumeContextTemplate, resumeText)
	}

	prompt := fmt.Sprintf(generateQuestionPrompt, strings.ToUpper(string(difficulty)), resumeContext)

	raw, err := o.client.GenerateJSON(ctx, prompt)
	if err != nil {
		return nil, err
	}

	var payload struct {
		Text         string `json:"text"`
		Rubric       string `json:"rubric"`
		GradingHints string `json:"gradingHints"`
	}
	if err := json.Unmarshal([]byte(stripCodeFences(raw)), &payload); err != nil {
		return nil, fmt.Errorf("decode question payload: %w", err)
	}
	if strings.TrimSpace(payload.Text) == "" {
		return nil, ErrEmptyQuestion
	}

	return &domain.Question{
		ID:           uuid.New(),
		Text:         strings.TrimSpace(payload.Text),
		Difficulty:   difficulty,
		TimeLimitSec: difficulty.TimeLimitSec(),
		Rubric:       payload.Rubric,
		GradingHints: payload.GradingHints,
	}, nil
}

func (o *geminiOracle) GradeAnswer(ctx context.Context, question domain.Question, answer domain.Answer) (Grade, error) {
	answerText := answer.Text
	if strings.TrimSpace(answerText) == "" {
		answerText = "(No written answer provided)"
	}

	recordingNote := "NOTE: Candidate provided ONLY written text (no recording)."
	if answer.RecordingBlobID != "" {
		recordingNote = "NOTE: Candidate also provided a video/audio recording. Be lenient - they may have explained more verbally."
	}

	prompt := fmt.Sprintf(gradeAnswerPrompt,
		question.Text,
		question.Rubric,
		question.GradingHints,
		answerText,
		recordingNote,
	)

	raw, err := o.client.GenerateJSON(ctx, prompt)
	if err != nil {
		return Grade{}, err
	}

	var payload struct {
		Score    *int   `json:"score"`
		Feedback string `json:"feedback"`
	}
	if err := json.Unmarshal([]byte(stripCodeFences(raw)), &payload); err != nil {
		return Grade{}, fmt.Errorf("decode grade payload: %w", err)
	}
	if payload.Score == nil {
		return Grade{}, ErrMalformedGrade
	}

	return Grade{
		Score:    clamp(*payload.Score, 0, 10),
		Feedback: cleanFeedback(payload.Feedback),
	}, nil
}

func (o *geminiOracle) GenerateFinalSummary(ctx context.Context, answers []domain.Answer, questions []domain.Question) (Summary, error) {
	prompt := fmt.Sprintf(finalSummaryPrompt, buildPerformanceContext(answers, questions))

	raw, err := o.client.GenerateJSON(ctx, prompt)
	if err != nil {
		return Summary{}, err
	}

	var payload struct {
		FinalScore *int   `json:"finalScore"`
		Summary    string `json:"summary"`
	}
	if err := json.Unmarshal([]byte(stripCodeFences(raw)), &payload); err != nil {
		return Summary{}, fmt.Errorf("decode summary payload: %w", err)
	}
	if payload.FinalScore == nil || strings.TrimSpace(payload.Summary) == "" {
		return Summary{}, ErrMalformedResult
	}

	return Summary{
		FinalScore: clamp(*payload.FinalScore, 0, 100),
		Summary:    strings.TrimSpace(payload.Summary),
	}, nil
}

func buildPerformanceContext(answers []domain.Answer, questions []domain.Question) string {
	byID := make(map[uuid.UUID]domain.Question, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}

	var b strings.Builder
	for i, ans := range answers {
		q := byID[ans.QuestionID]
		score := 0
		if ans.LlmScore != nil {
			score = *ans.LlmScore
		}
		feedback := ans.LlmFeedback
		if feedback == "" {
			feedback = "N/A"
		}
		answerText := ans.Text
		if strings.TrimSpace(answerText) == "" {
			answerText = "(No answer)"
		}
		fmt.Fprintf(&b, "Q%d [%s]: %s\nAnswer: %s\nScore: %d/10\nFeedback: %s\n\n",
			i+1, q.Difficulty, q.Text, answerText, score, feedback)
	}
	return b.String()
}

// stripCodeFences tolerates models that wrap JSON in markdown fences despite
// the JSON response MIME type.
func stripCodeFences(raw string) string {
	raw = strings.ReplaceAll(raw, "```json", "")
	raw = strings.ReplaceAll(raw, "```", "")
	return strings.TrimSpace(raw)
}

func cleanFeedback(feedback string) string {
	return strings.TrimSpace(strings.ReplaceAll(feedback, "*", ""))
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
