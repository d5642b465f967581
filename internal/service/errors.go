package service

import "errors"

// ErrRunInProgress means another ingestion run holds the run lock
var ErrRunInProgress = errors.New("an ingestion run is already in progress")

// ErrValidation marks request errors detected before any external call.
// Wrapped with details; handlers map it to a 400.
var ErrValidation = errors.New("validation failed")
