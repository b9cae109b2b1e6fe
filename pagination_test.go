package spacetraveling

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func summaries(uids ...string) []PostSummary {
	out := make([]PostSummary, 0, len(uids))
	for _, uid := range uids {
		out = append(out, PostSummary{UID: uid, Link: PostLink(uid)})
	}
	return out
}

func TestPaginationHasMore(t *testing.T) {
	assert.True(t, PostPagination{NextPage: "https://repo.test/api/v2/documents/search?page=2"}.HasMore())
	assert.False(t, PostPagination{}.HasMore())
}

func TestPaginationAppend(t *testing.T) {
	first := PostPagination{NextPage: "cursor-2", Results: summaries("a", "b")}
	second := PostPagination{NextPage: "cursor-3", Results: summaries("c")}
	last := PostPagination{Results: summaries("d")}

	got := first.Append(second)
	assert.Equal(t, summaries("a", "b", "c"), got.Results)
	assert.Equal(t, "cursor-3", got.NextPage)

	got = got.Append(last)
	assert.Equal(t, summaries("a", "b", "c", "d"), got.Results)
	assert.False(t, got.HasMore())
}

func TestPaginationAppendLeavesReceiverAlone(t *testing.T) {
	first := PostPagination{NextPage: "cursor-2", Results: make([]PostSummary, 2, 8)}
	copy(first.Results, summaries("a", "b"))

	_ = first.Append(PostPagination{Results: summaries("c")})
	_ = first.Append(PostPagination{Results: summaries("x")})

	assert.Equal(t, summaries("a", "b"), first.Results)
	assert.Equal(t, "cursor-2", first.NextPage)
	assert.Equal(t, "x", first.Append(PostPagination{Results: summaries("x")}).Results[2].UID)
}

func TestPaginationAppendEmptyPage(t *testing.T) {
	first := PostPagination{NextPage: "cursor-2", Results: summaries("a")}

	got := first.Append(PostPagination{Results: []PostSummary{}})
	assert.Equal(t, summaries("a"), got.Results)
	assert.False(t, got.HasMore())
}
