package validator

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Title  string `json:"title" validate:"required"`
	Rating int    `json:"rating" validate:"min=1,max=5"`
}

func TestDescribe_UsesJSONNames(t *testing.T) {
	err := Get().Struct(sample{Rating: 6})
	require.Error(t, err)

	msg := Describe(err)
	assert.Contains(t, msg, "title: required")
	assert.Contains(t, msg, "rating: max=5")
}

func TestDescribe_PassesThroughOtherErrors(t *testing.T) {
	assert.Equal(t, "boom", Describe(errors.New("boom")))
}
