package commands

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCodeOf_UnclassifiedErrorIsRuntimeFailure(t *testing.T) {
	assert.Equal(t, ExitRuntimeFailure, CodeOf(errors.New("boom")))
}

func TestCodeOf_NilErrorIsSuccess(t *testing.T) {
	assert.Equal(t, ExitSuccess, CodeOf(nil))
}

func TestCodeOf_ClassifiedError(t *testing.T) {
	err := withCode(ExitNotInitialised, errors.New("not initialised"))
	assert.Equal(t, ExitNotInitialised, CodeOf(err))
}

func TestCodeOf_ClassificationSurvivesWrapping(t *testing.T) {
	err := fmt.Errorf("loading configuration: %w", withCode(ExitInputInvalid, errors.New("bad toml")))
	assert.Equal(t, ExitInputInvalid, CodeOf(err))
}

func TestWithCode_NilErrorStaysNil(t *testing.T) {
	assert.Nil(t, withCode(ExitRuntimeFailure, nil))
}
