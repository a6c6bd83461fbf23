package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWriteResult_Processed(t *testing.T) {
	r := WriteResult{Inserted: 3, Updated: 2, Skipped: 4, Failed: 1}
	assert.Equal(t, 10, r.Processed())

	var empty WriteResult
	assert.Zero(t, empty.Processed())
}

func TestWriteResult_Add(t *testing.T) {
	r := WriteResult{Inserted: 1, Errors: []string{"a"}}
	r.Add(WriteResult{Updated: 2, Failed: 1, Errors: []string{"b"}})
	r.Add(WriteResult{Skipped: 5})

	assert.Equal(t, 1, r.Inserted)
	assert.Equal(t, 2, r.Updated)
	assert.Equal(t, 5, r.Skipped)
	assert.Equal(t, 1, r.Failed)
	assert.Equal(t, []string{"a", "b"}, r.Errors)
	assert.Equal(t, 9, r.Processed())
}
