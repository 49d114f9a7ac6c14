package main

import "errors"

// Sentinel errors for command operations
var (
	ErrPositionRequired  = errors.New("either --line or --start/--end is required")
	ErrPositionAmbiguous = errors.New("--line and --start/--end are mutually exclusive")
	ErrNoMatch           = errors.New("no node matches the position")
)
