package ui

import "bookprog/internal/progress"

type progressMsg struct {
	M *progress.Message
}

type producerDoneMsg struct {
	Err error
}
