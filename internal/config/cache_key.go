package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// CandidateSessionKey returns the cache key holding a candidate's active
// token id, used to enforce single-device login.
func (r *CacheKeyStruct) CandidateSessionKey(candidateID string) string {
	return fmt.Sprintf("login:candidate:%s", candidateID)
}

// ExamPaperKey returns the cache key for an exam's candidate-facing paper.
func (r *CacheKeyStruct) ExamPaperKey(examID string) string {
	return fmt.Sprintf("exam:%s:paper", examID)
}

// SessionClockChannel returns the Redis PubSub channel for a session's clock
// events.
func (r *CacheKeyStruct) SessionClockChannel(sessionID string) string {
	return fmt.Sprintf("session:%s:clock", sessionID)
}

var CacheKey = NewCacheKeyStruct()
