package exports

import (
	"encoding/csv"
	"os"
	"testing"

	"github.com/fluffyriot/birdseye/internal/scraper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleResult() *scraper.AggregateResult {
	return &scraper.AggregateResult{
		Profile: scraper.ProfileSummary{Username: "alice"},
		Tweets: scraper.FeedResult{
			Kind:       scraper.KindTweets,
			Complete:   true,
			StopReason: scraper.ReasonStall,
			Items: []scraper.ExtractedItem{
				{ID: "1001", Kind: scraper.KindTweets, Author: "alice", Content: "hello, world", Timestamp: "2024-06-01T12:00:00Z", Screenshot: "outputs/screenshots/a.webp"},
				{ID: "1002", Kind: scraper.KindTweets, Author: "alice", Content: "commas, \"quotes\" and\nnewlines"},
			},
		},
		Followers: scraper.FeedResult{
			Kind:       scraper.KindFollowers,
			Complete:   false,
			StopReason: scraper.ReasonError,
			Err:        "tab crashed",
			Items: []scraper.ExtractedItem{
				{ID: "h_abc", Kind: scraper.KindFollowers, Author: "bob", AuthorBio: "builder"},
			},
		},
	}
}

func TestGenerateItemsCsv(t *testing.T) {
	dir := t.TempDir()
	path, err := GenerateItemsCsv(dir, "alice", sampleResult())
	require.NoError(t, err)
	require.NotEmpty(t, path)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 4)

	assert.Equal(t, "kind", rows[0][0])
	assert.Equal(t, []string{"tweets", "1001", "alice", "", "2024-06-01T12:00:00Z", "hello, world", "", "outputs/screenshots/a.webp", "true", "stall detected"}, rows[1])
	assert.Equal(t, "commas, \"quotes\" and\nnewlines", rows[2][5])
	assert.Equal(t, []string{"followers", "h_abc", "bob", "builder", "", "", "", "", "false", "feed error"}, rows[3])
}

func TestGenerateItemsCsvEmptyResult(t *testing.T) {
	path, err := GenerateItemsCsv(t.TempDir(), "alice", &scraper.AggregateResult{})
	require.NoError(t, err)
	assert.Equal(t, "", path)
}
