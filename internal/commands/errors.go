package commands

import (
	"context"
	"errors"

	goerrors "github.com/goliatone/go-errors"
)

// Text codes attached to handler errors.
const (
	CodeMessageRejected = "COMMAND_VALIDATION_FAILED"
	CodeCanceled        = "COMMAND_CONTEXT_CANCELED"
	CodeTimeout         = "COMMAND_CONTEXT_TIMEOUT"
	CodeContextError    = "COMMAND_CONTEXT_ERROR"
	CodeExecuteFailed   = "COMMAND_EXECUTION_FAILED"
)

type stage int

const (
	stageValidate stage = iota
	stageContext
	stageExecute
)

// classify tags err with the category and code of the stage it escaped from.
// Errors already carrying a go-errors category are returned unchanged, so field
// validation failures raised by the save path keep their own codes.
func classify(s stage, err error) error {
	if err == nil || goerrors.IsWrapped(err) {
		return err
	}

	switch s {
	case stageValidate:
		return goerrors.Wrap(err, goerrors.CategoryValidation, "command validation failed").
			WithTextCode(CodeMessageRejected)
	case stageContext:
		switch {
		case errors.Is(err, context.Canceled):
			return goerrors.Wrap(err, goerrors.CategoryCommand, "command execution cancelled").
				WithTextCode(CodeCanceled)
		case errors.Is(err, context.DeadlineExceeded):
			return goerrors.Wrap(err, goerrors.CategoryCommand, "command execution deadline exceeded").
				WithTextCode(CodeTimeout)
		default:
			return goerrors.Wrap(err, goerrors.CategoryCommand, "command context error").
				WithTextCode(CodeContextError)
		}
	default:
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return classify(stageContext, err)
		}
		return goerrors.Wrap(err, goerrors.CategoryCommand, "command execution failed").
			WithTextCode(CodeExecuteFailed)
	}
}
