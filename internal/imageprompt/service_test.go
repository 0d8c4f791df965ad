package imageprompt

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"imageprompt/internal/domain"
)

type stubWorkflow struct {
	uploadFile *domain.RemoteFile
	uploadErr  error
	run        *domain.WorkflowRun
	runErr     error
	pollOutput string
	pollErr    error

	uploads  int
	runs     int
	polls    int
	lastRun  domain.WorkflowInput
	deadline bool
}

func (s *stubWorkflow) UploadFile(ctx context.Context, asset *domain.UploadedAsset) (*domain.RemoteFile, error) {
	s.uploads++
	_, s.deadline = ctx.Deadline()
	return s.uploadFile, s.uploadErr
}

func (s *stubWorkflow) RunWorkflow(ctx context.Context, in domain.WorkflowInput) (*domain.WorkflowRun, error) {
	s.runs++
	s.lastRun = in
	return s.run, s.runErr
}

func (s *stubWorkflow) PollExecution(ctx context.Context, executeID string) (string, error) {
	s.polls++
	return s.pollOutput, s.pollErr
}

func jpeg(size int) *domain.UploadedAsset {
	return &domain.UploadedAsset{Filename: "cat.jpg", MediaType: "image/jpeg", Size: int64(size), Data: bytes.Repeat([]byte{0xff}, size)}
}

func newTestService(t *testing.T, wf Workflow) *Service {
	t.Helper()
	svc, err := NewService(Options{Workflow: wf, MaxUploadBytes: 10 << 20, Timeout: time.Minute})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestNewServiceRequiresWorkflow(t *testing.T) {
	if _, err := NewService(Options{}); err == nil {
		t.Fatalf("expected error without workflow")
	}
	svc, err := NewService(Options{Workflow: &stubWorkflow{}})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	if svc.MaxUploadBytes() != domain.DefaultMaxUploadBytes {
		t.Fatalf("MaxUploadBytes = %d", svc.MaxUploadBytes())
	}
}

func TestGenerateRejectsInvalidInputWithoutCalls(t *testing.T) {
	tests := []struct {
		name   string
		asset  *domain.UploadedAsset
		reason error
	}{
		{name: "missing", reason: domain.ErrMissingFile},
		{name: "gif", asset: &domain.UploadedAsset{Filename: "a.gif", MediaType: "image/gif", Size: 3, Data: []byte("GIF")}, reason: domain.ErrUnsupportedType},
		{name: "oversized", asset: jpeg(10<<20 + 1), reason: domain.ErrFileTooLarge},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			wf := &stubWorkflow{}
			svc := newTestService(t, wf)

			_, err := svc.Generate(context.Background(), Request{Asset: tc.asset})
			if !errors.Is(err, tc.reason) {
				t.Fatalf("err = %v, want %v", err, tc.reason)
			}
			if wf.uploads+wf.runs+wf.polls != 0 {
				t.Fatalf("expected no outbound calls, got uploads=%d runs=%d polls=%d", wf.uploads, wf.runs, wf.polls)
			}
		})
	}
}

func TestGenerateStopsAfterUploadFailure(t *testing.T) {
	wf := &stubWorkflow{uploadErr: &domain.UpstreamError{Stage: domain.StageUpload, Code: 4100, Message: "token invalid"}}
	svc := newTestService(t, wf)

	_, err := svc.Generate(context.Background(), Request{Asset: jpeg(16)})
	var upstream *domain.UpstreamError
	if !errors.As(err, &upstream) {
		t.Fatalf("err = %v, want UpstreamError", err)
	}
	if wf.runs != 0 || wf.polls != 0 {
		t.Fatalf("workflow must not run after failed upload: runs=%d polls=%d", wf.runs, wf.polls)
	}
}

func TestGenerateInlineResultSkipsPolling(t *testing.T) {
	wf := &stubWorkflow{
		uploadFile: &domain.RemoteFile{ID: "f1"},
		run:        &domain.WorkflowRun{Output: "a cat on a red sofa"},
	}
	svc := newTestService(t, wf)

	res, err := svc.Generate(context.Background(), Request{Asset: jpeg(16), PromptType: domain.PromptTypeMidjourney})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if res.Prompt != "a cat on a red sofa" {
		t.Fatalf("prompt = %q", res.Prompt)
	}
	if wf.polls != 0 {
		t.Fatalf("polls = %d, want 0", wf.polls)
	}
	if wf.lastRun.FileID != "f1" || wf.lastRun.PromptType != domain.PromptTypeMidjourney {
		t.Fatalf("run input = %+v", wf.lastRun)
	}
	if wf.lastRun.UserQuery != domain.PromptTypeMidjourney.DefaultQuery() {
		t.Fatalf("user query = %q, want default", wf.lastRun.UserQuery)
	}
	if !wf.deadline {
		t.Fatalf("expected workflow context to carry a deadline")
	}
}

func TestGeneratePollsExecution(t *testing.T) {
	wf := &stubWorkflow{
		uploadFile: &domain.RemoteFile{ID: "f1"},
		run:        &domain.WorkflowRun{ExecuteID: "e1"},
		pollOutput: "a cat on a red sofa",
	}
	svc := newTestService(t, wf)

	res, err := svc.Generate(context.Background(), Request{Asset: jpeg(2 << 20), UserQuery: "  describe the lighting  "})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if res.Prompt != "a cat on a red sofa" || res.ExecuteID != "e1" {
		t.Fatalf("result = %+v", res)
	}
	if res.FileName != "cat.jpg" || res.FileSize != 2<<20 {
		t.Fatalf("file metadata = %q %d", res.FileName, res.FileSize)
	}
	if res.PromptType != domain.PromptTypeGeneral {
		t.Fatalf("prompt type = %q", res.PromptType)
	}
	if wf.lastRun.UserQuery != "describe the lighting" {
		t.Fatalf("user query = %q", wf.lastRun.UserQuery)
	}
	if wf.polls != 1 {
		t.Fatalf("polls = %d, want 1", wf.polls)
	}
}

func TestGeneratePropagatesPollErrors(t *testing.T) {
	wf := &stubWorkflow{
		uploadFile: &domain.RemoteFile{ID: "f1"},
		run:        &domain.WorkflowRun{ExecuteID: "e1"},
		pollErr:    &domain.TimeoutError{ExecuteID: "e1", Attempts: 30},
	}
	svc := newTestService(t, wf)

	_, err := svc.Generate(context.Background(), Request{Asset: jpeg(16)})
	var timeout *domain.TimeoutError
	if !errors.As(err, &timeout) {
		t.Fatalf("err = %v, want TimeoutError", err)
	}
}
