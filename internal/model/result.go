// SPDX-License-Identifier: AGPL-3.0-only
package model

import "time"

// Result captures the outcome of one conversation run.
type Result struct {
	ConversationID string    `json:"conversation_id"`
	Prompt         string    `json:"prompt"`
	Output         string    `json:"output"`
	Error          string    `json:"error,omitempty"`
	Rounds         int       `json:"rounds"`
	ToolCalls      int       `json:"tool_calls"`
	StartTime      time.Time `json:"start_time"`
	EndTime        time.Time `json:"end_time"`
	Duration       string    `json:"duration"`
}

// ResultStore persists conversation run results. Only run outcomes are
// stored; message histories live in memory for the conversation's
// lifetime only.
type ResultStore interface {
	SaveResult(result *Result) error
	GetLatestResult(conversationID string) (*Result, error)
	GetResults(conversationID string, limit int) ([]*Result, error)
	Close() error
}
