package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppendMissing(t *testing.T) {
	testCases := []struct {
		name      string
		list      []string
		ids       []string
		wantList  []string
		wantAdded []string
	}{
		{
			name:      "append to empty list",
			list:      nil,
			ids:       []string{"a", "b"},
			wantList:  []string{"a", "b"},
			wantAdded: []string{"a", "b"},
		},
		{
			name:      "skip already linked",
			list:      []string{"a"},
			ids:       []string{"a", "b", "a"},
			wantList:  []string{"a", "b"},
			wantAdded: []string{"b"},
		},
		{
			name:      "duplicates in input added once",
			list:      []string{"x"},
			ids:       []string{"b", "c", "b"},
			wantList:  []string{"x", "b", "c"},
			wantAdded: []string{"b", "c"},
		},
		{
			name:      "nothing new",
			list:      []string{"a", "b"},
			ids:       []string{"b", "a"},
			wantList:  []string{"a", "b"},
			wantAdded: []string{},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			list, added := AppendMissing(tc.list, tc.ids)
			assert.Equal(t, tc.wantList, list)
			assert.Equal(t, tc.wantAdded, added)
		})
	}
}

func TestAppendMissing_DoesNotAliasInput(t *testing.T) {
	list := make([]string, 1, 10)
	list[0] = "a"

	result, _ := AppendMissing(list, []string{"b"})
	result[0] = "changed"

	assert.Equal(t, "a", list[0])
}

func TestRemoveValue(t *testing.T) {
	list := []string{"a", "b", "c"}

	result, ok := RemoveValue(list, "b")
	assert.True(t, ok)
	assert.Equal(t, []string{"a", "c"}, result)
	assert.Equal(t, []string{"a", "b", "c"}, list)

	result, ok = RemoveValue(result, "b")
	assert.False(t, ok)
	assert.Equal(t, []string{"a", "c"}, result)
}

func TestQuestion_HasKeyword(t *testing.T) {
	q := &Question{Keywords: []string{"capital", "europe"}}

	assert.True(t, q.HasKeyword("capital"))
	assert.False(t, q.HasKeyword("Capital"))
	assert.False(t, q.HasKeyword("cap"))
}

func TestClone_NilSlicesBecomeEmpty(t *testing.T) {
	q := (&Question{Options: []string{"a", "b"}}).Clone()
	assert.NotNil(t, q.Keywords)
	assert.Empty(t, q.Keywords)

	quiz := (&Quiz{}).Clone()
	assert.NotNil(t, quiz.Questions)
	assert.Empty(t, quiz.Questions)
}
