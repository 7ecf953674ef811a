package domain

import "errors"

var (
	// ErrInvalidActivation is returned for a malformed activation target (negative index, bad round number).
	ErrInvalidActivation = errors.New("invalid activation target")
	// ErrInvalidInput is returned when a request is missing required fields.
	ErrInvalidInput = errors.New("invalid input")
	// ErrRoundNotFound indicates an unknown round reference.
	ErrRoundNotFound = errors.New("round not found")
	// ErrQuestionNotFound indicates an unknown question reference.
	ErrQuestionNotFound = errors.New("question not found")
	// ErrParticipantNotFound indicates an unknown participant.
	ErrParticipantNotFound = errors.New("participant not found")
	// ErrDuplicateSubmission is returned when a participant already answered a question.
	ErrDuplicateSubmission = errors.New("answer already submitted for this question")
	// ErrDuplicateParticipant is returned when an employee id is already registered.
	ErrDuplicateParticipant = errors.New("employee id already registered")
	// ErrPersistence wraps store failures.
	ErrPersistence = errors.New("persistence failure")
	// ErrInvalidScope indicates an unrecognized leaderboard scope.
	ErrInvalidScope = errors.New("invalid leaderboard scope")
	// ErrNoActiveQuestion is returned when nothing is live.
	ErrNoActiveQuestion = errors.New("no active question")
)
