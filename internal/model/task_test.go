package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTaskStatusValid(t *testing.T) {
	for _, s := range []TaskStatus{StatusTodo, StatusInProgress, StatusReview, StatusBlocked, StatusFinished} {
		assert.True(t, s.Valid(), s)
	}
	assert.False(t, TaskStatus("DONE").Valid())
	assert.False(t, TaskStatus("").Valid())
}
