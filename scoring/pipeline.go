package scoring

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/prepview/backend/session"
)

// CreateFeedbackParams are the fields of the initial feedback submission.
// FeedbackID may be pre-allocated by the caller; when empty the store
// generates one.
type CreateFeedbackParams struct {
	InterviewID string
	UserID      string
	Transcript  []session.Message
	FeedbackID  string
}

// FeedbackUpdate is the partial update applied once scores are computed.
type FeedbackUpdate struct {
	TotalScore          int
	CategoryScores      []CategoryScore
	Strengths           []string
	AreasForImprovement []string
	FinalAssessment     string
}

// FeedbackStore persists feedback records. UpdateFeedback rejects the write
// when userID does not own the record.
type FeedbackStore interface {
	CreateFeedback(ctx context.Context, p CreateFeedbackParams) (feedbackID string, err error)
	UpdateFeedback(ctx context.Context, feedbackID, userID string, update FeedbackUpdate) error
}

// StatusUpdater transitions an interview's status, rejecting callers that do
// not own the interview. A Pipeline with a nil StatusUpdater skips the
// transition entirely.
type StatusUpdater interface {
	UpdateInterviewStatus(ctx context.Context, interviewID, userID, status string) error
}

// Navigator signals where the user should land after the pipeline runs.
type Navigator interface {
	Navigate(path string)
}

const submitTimeout = 30 * time.Second

// Pipeline is the post-session feedback submission flow: transcript
// analysis, scoring, persistence, interview status transition and
// navigation. It implements session.Finisher. Feedback here is best-effort:
// a failed submission is logged and the user is routed to a fallback surface
// instead of a dead end.
type Pipeline struct {
	Store      FeedbackStore
	Interviews StatusUpdater
	Nav        Navigator
}

func (p *Pipeline) SessionFinished(sc session.Context, transcript []session.Message) {
	if sc.Mode == session.ModeGenerate {
		// Question-generation sessions produce no scored feedback.
		p.Nav.Navigate("/")
		return
	}

	if len(transcript) == 0 {
		slog.Info("Session finished with empty transcript, skipping feedback", "interview_id", sc.InterviewID)
		return
	}

	if sc.InterviewID == "" || sc.UserID == "" || sc.FeedbackID == "" {
		slog.Error("Missing required IDs for feedback",
			"interview_id", sc.InterviewID, "user_id", sc.UserID, "feedback_id", sc.FeedbackID)
		p.Nav.Navigate("/")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), submitTimeout)
	defer cancel()

	// Interviews is nil when the session user does not own the interview:
	// the status transition would only be rejected by the ownership check,
	// so the caller leaves it unwired.
	if p.Interviews != nil {
		if err := p.Interviews.UpdateInterviewStatus(ctx, sc.InterviewID, sc.UserID, "completed"); err != nil {
			slog.Error("Failed to update interview status", "error", err, "interview_id", sc.InterviewID)
		}
	}

	feedback := Synthesize(transcript)

	feedbackID, err := p.Store.CreateFeedback(ctx, CreateFeedbackParams{
		InterviewID: sc.InterviewID,
		UserID:      sc.UserID,
		Transcript:  transcript,
		FeedbackID:  sc.FeedbackID,
	})
	if err != nil {
		slog.Error("Failed to save feedback", "error", err, "interview_id", sc.InterviewID)
		p.Nav.Navigate("/")
		return
	}

	if err := p.Store.UpdateFeedback(ctx, feedbackID, sc.UserID, FeedbackUpdate{
		TotalScore:          feedback.TotalScore,
		CategoryScores:      feedback.CategoryScores,
		Strengths:           feedback.Strengths,
		AreasForImprovement: feedback.AreasForImprovement,
		FinalAssessment:     feedback.FinalAssessment,
	}); err != nil {
		// The scored update is best-effort; the created record still has
		// the transcript, so continue to the feedback page.
		slog.Error("Failed to update feedback with scores", "error", err, "feedback_id", feedbackID)
	}

	slog.Info("Feedback pipeline completed",
		"interview_id", sc.InterviewID, "feedback_id", feedbackID, "total_score", feedback.TotalScore)
	p.Nav.Navigate(fmt.Sprintf("/interview/%s/feedback", sc.InterviewID))
}
