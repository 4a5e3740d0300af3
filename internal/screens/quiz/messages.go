package quiz

import (
	"github.com/abhisek/levo/internal/practice"
	"github.com/abhisek/levo/internal/screens/summary"
)

// loadedMsg is sent when the questions have been fetched.
type loadedMsg struct {
	Set Set
	Err error
}

// gradedMsg is sent when an answer has been graded.
type gradedMsg struct {
	Outcome practice.Outcome
	Err     error
}

// finishedMsg is sent when the run has been reported.
type finishedMsg struct {
	Result summary.Result
	Err    error
}
