package coze

import (
	"context"
	"time"

	"imageprompt/internal/domain"
)

// PollExecution waits one interval before every status check and stops on
// the first terminal state. Only a running state is retried; any failed
// check ends the poll. Cancelling ctx stops the wait immediately.
func (c *Client) PollExecution(ctx context.Context, executeID string) (string, error) {
	timer := time.NewTimer(c.pollInterval)
	defer timer.Stop()

	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-timer.C:
		}

		status, err := c.WorkflowStatus(ctx, executeID)
		if err != nil {
			return "", err
		}
		switch status.State {
		case domain.ExecutionSuccess:
			c.log(ctx).Debug().
				Str("execute_id", executeID).
				Int("attempt", attempt).
				Msg("coze: execution succeeded")
			return status.Output, nil
		case domain.ExecutionFailed:
			msg := status.Message
			if msg == "" {
				msg = "workflow execution failed"
			}
			return "", &domain.UpstreamError{Stage: domain.StageWorkflow, Message: msg, ExecuteID: executeID}
		}

		c.log(ctx).Debug().
			Str("execute_id", executeID).
			Int("attempt", attempt).
			Int("max_attempts", c.maxAttempts).
			Msg("coze: execution still running")
		timer.Reset(c.pollInterval)
	}

	return "", &domain.TimeoutError{ExecuteID: executeID, Attempts: c.maxAttempts}
}
