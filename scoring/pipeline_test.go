package scoring

import (
	"context"
	"sync"
	"testing"

	"github.com/prepview/backend/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	mu         sync.Mutex
	createErr  error
	updateErr  error
	created    []CreateFeedbackParams
	updates    []FeedbackUpdate
	updatedIDs []string
}

func (s *fakeStore) CreateFeedback(ctx context.Context, p CreateFeedbackParams) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		return "", s.createErr
	}
	s.created = append(s.created, p)
	id := p.FeedbackID
	if id == "" {
		id = "generated-id"
	}
	return id, nil
}

func (s *fakeStore) UpdateFeedback(ctx context.Context, feedbackID, userID string, update FeedbackUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.updateErr != nil {
		return s.updateErr
	}
	s.updatedIDs = append(s.updatedIDs, feedbackID)
	s.updates = append(s.updates, update)
	return nil
}

type fakeStatusUpdater struct {
	mu       sync.Mutex
	err      error
	statuses []string
}

func (u *fakeStatusUpdater) UpdateInterviewStatus(ctx context.Context, interviewID, userID, status string) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.statuses = append(u.statuses, status)
	return u.err
}

type fakeNavigator struct {
	mu    sync.Mutex
	paths []string
}

func (n *fakeNavigator) Navigate(path string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.paths = append(n.paths, path)
}

func (n *fakeNavigator) visited() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.paths...)
}

func interviewContext() session.Context {
	return session.Context{
		UserID:      "user-1",
		InterviewID: "interview-1",
		FeedbackID:  "feedback-1",
		Mode:        session.ModeInterview,
	}
}

func answeredTranscript() []session.Message {
	return []session.Message{
		{Role: session.RoleAssistant, Content: "Explain hashing."},
		{Role: session.RoleUser, Content: "I used a binary search algorithm and considered edge cases"},
	}
}

func TestPipelineSubmitsFeedback(t *testing.T) {
	store := &fakeStore{}
	interviews := &fakeStatusUpdater{}
	nav := &fakeNavigator{}
	p := &Pipeline{Store: store, Interviews: interviews, Nav: nav}

	p.SessionFinished(interviewContext(), answeredTranscript())

	require.Len(t, store.created, 1)
	assert.Equal(t, "interview-1", store.created[0].InterviewID)
	assert.Equal(t, "feedback-1", store.created[0].FeedbackID)
	assert.Len(t, store.created[0].Transcript, 2)

	require.Len(t, store.updates, 1)
	assert.Equal(t, []string{"feedback-1"}, store.updatedIDs)
	assert.Equal(t, 75, store.updates[0].TotalScore)
	assert.Len(t, store.updates[0].CategoryScores, 3)

	assert.Equal(t, []string{"completed"}, interviews.statuses)
	assert.Equal(t, []string{"/interview/interview-1/feedback"}, nav.visited())
}

func TestPipelineGenerateModeSkipsScoring(t *testing.T) {
	store := &fakeStore{}
	nav := &fakeNavigator{}
	p := &Pipeline{Store: store, Interviews: &fakeStatusUpdater{}, Nav: nav}

	sc := interviewContext()
	sc.Mode = session.ModeGenerate
	p.SessionFinished(sc, answeredTranscript())

	assert.Empty(t, store.created)
	assert.Equal(t, []string{"/"}, nav.visited())
}

func TestPipelineEmptyTranscriptDoesNothing(t *testing.T) {
	store := &fakeStore{}
	nav := &fakeNavigator{}
	p := &Pipeline{Store: store, Interviews: &fakeStatusUpdater{}, Nav: nav}

	p.SessionFinished(interviewContext(), nil)

	assert.Empty(t, store.created)
	assert.Empty(t, nav.visited())
}

func TestPipelineMissingIDsRoutesHome(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*session.Context)
	}{
		{"missing interview id", func(sc *session.Context) { sc.InterviewID = "" }},
		{"missing user id", func(sc *session.Context) { sc.UserID = "" }},
		{"missing feedback id", func(sc *session.Context) { sc.FeedbackID = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &fakeStore{}
			nav := &fakeNavigator{}
			p := &Pipeline{Store: store, Interviews: &fakeStatusUpdater{}, Nav: nav}

			sc := interviewContext()
			tt.mutate(&sc)
			p.SessionFinished(sc, answeredTranscript())

			assert.Empty(t, store.created)
			assert.Equal(t, []string{"/"}, nav.visited())
		})
	}
}

func TestPipelineCreateFailureRoutesHome(t *testing.T) {
	store := &fakeStore{createErr: assert.AnError}
	nav := &fakeNavigator{}
	p := &Pipeline{Store: store, Interviews: &fakeStatusUpdater{}, Nav: nav}

	p.SessionFinished(interviewContext(), answeredTranscript())

	assert.Empty(t, store.updates)
	assert.Equal(t, []string{"/"}, nav.visited())
}

func TestPipelineWithoutStatusUpdaterStillSubmits(t *testing.T) {
	// Sessions on another user's interview are wired without a status
	// updater; feedback is still created and the user lands on its page.
	store := &fakeStore{}
	nav := &fakeNavigator{}
	p := &Pipeline{Store: store, Nav: nav}

	p.SessionFinished(interviewContext(), answeredTranscript())

	require.Len(t, store.created, 1)
	assert.Equal(t, []string{"/interview/interview-1/feedback"}, nav.visited())
}

func TestPipelineContinuesPastBestEffortFailures(t *testing.T) {
	// A failed status transition and a failed score update still land the
	// user on the feedback page; the created record has the transcript.
	store := &fakeStore{updateErr: assert.AnError}
	interviews := &fakeStatusUpdater{err: assert.AnError}
	nav := &fakeNavigator{}
	p := &Pipeline{Store: store, Interviews: interviews, Nav: nav}

	p.SessionFinished(interviewContext(), answeredTranscript())

	require.Len(t, store.created, 1)
	assert.Equal(t, []string{"/interview/interview-1/feedback"}, nav.visited())
}
