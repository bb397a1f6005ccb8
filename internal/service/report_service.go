package service

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/intervu-ai/intervu-server/internal/domain"

	"github.com/go-pdf/fpdf"
	"github.com/google/uuid"
)

type reportService struct {
	dashboard domain.DashboardService
}

func NewReportService(dashboard domain.DashboardService) domain.ReportService {
	return &reportService{dashboard: dashboard}
}

// SessionReport renders the session as a PDF: candidate header, per-question
// answers with scores and feedback, and the final summary.
func (s *reportService) SessionReport(ctx context.Context, sessionID uuid.UUID) ([]byte, error) {
	detail, err := s.dashboard.GetSessionDetail(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, "Interview Report")
	pdf.Ln(12)

	s.writeHeader(pdf, detail)
	s.writeQuestions(pdf, detail.Session)
	s.writeSummary(pdf, detail.Session)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render report: %w", err)
	}
	return buf.Bytes(), nil
}

func (s *reportService) writeHeader(pdf *fpdf.Fpdf, detail *domain.SessionDetail) {
	pdf.SetFont("Helvetica", "", 11)

	name, email := "Unknown", "-"
	if detail.Candidate != nil {
		if detail.Candidate.Name != "" {
			name = detail.Candidate.Name
		}
		if detail.Candidate.Email != "" {
			email = detail.Candidate.Email
		}
	}

	pdf.Cell(0, 6, fmt.Sprintf("Candidate: %s", name))
	pdf.Ln(6)
	pdf.Cell(0, 6, fmt.Sprintf("Email: %s", email))
	pdf.Ln(6)
	pdf.Cell(0, 6, fmt.Sprintf("Session: %s", detail.Session.ID))
	pdf.Ln(6)
	pdf.Cell(0, 6, fmt.Sprintf("Status: %s", detail.Session.Status))
	pdf.Ln(6)
	pdf.Cell(0, 6, fmt.Sprintf("Date: %s", detail.Session.CreatedAt.Format(time.RFC1123)))
	pdf.Ln(10)
}

func (s *reportService) writeQuestions(pdf *fpdf.Fpdf, session *domain.Session) {
	answersByQuestion := make(map[uuid.UUID]domain.Answer, len(session.Answers))
	for _, answer := range session.Answers {
		answersByQuestion[answer.QuestionID] = answer
	}

	for i, question := range session.Questions {
		pdf.SetFont("Helvetica", "B", 12)
		pdf.MultiCell(0, 6, fmt.Sprintf("Q%d (%s): %s", i+1, question.Difficulty, question.Text), "", "L", false)
		pdf.Ln(1)

		pdf.SetFont("Helvetica", "", 11)
		answer, ok := answersByQuestion[question.ID]
		if !ok {
			pdf.MultiCell(0, 6, "Not answered.", "", "L", false)
			pdf.Ln(4)
			continue
		}

		text := answer.Text
		if text == "" {
			text = "(empty answer)"
		}
		pdf.MultiCell(0, 6, fmt.Sprintf("Answer: %s", text), "", "L", false)

		if answer.LlmScore != nil {
			pdf.MultiCell(0, 6, fmt.Sprintf("Score: %d/10", *answer.LlmScore), "", "L", false)
		}
		if answer.LlmFeedback != "" {
			pdf.MultiCell(0, 6, fmt.Sprintf("Feedback: %s", answer.LlmFeedback), "", "L", false)
		}
		if answer.AutoSubmitted {
			pdf.MultiCell(0, 6, "Submitted automatically on timer expiry.", "", "L", false)
		}
		pdf.Ln(4)
	}
}

func (s *reportService) writeSummary(pdf *fpdf.Fpdf, session *domain.Session) {
	pdf.SetFont("Helvetica", "B", 13)
	pdf.Cell(0, 8, "Overall Result")
	pdf.Ln(9)

	pdf.SetFont("Helvetica", "", 11)
	if session.FinalScore != nil {
		pdf.Cell(0, 6, fmt.Sprintf("Final Score: %d/100", *session.FinalScore))
		pdf.Ln(6)
	}
	if session.FinalSummary != "" {
		pdf.MultiCell(0, 6, session.FinalSummary, "", "L", false)
	}
}
