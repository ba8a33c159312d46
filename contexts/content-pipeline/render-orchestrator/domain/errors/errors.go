package errors

import "errors"

var (
	ErrRenderNotFound     = errors.New("render job not found")
	ErrInvalidScriptEvent = errors.New("script event payload missing script_id or poi_id")
	ErrInvalidListFilter  = errors.New("invalid list filter")
	ErrJobNotPublishable  = errors.New("only completed render jobs can be published")
	ErrDuplicateScene     = errors.New("scene number already exists for this render job")
)
