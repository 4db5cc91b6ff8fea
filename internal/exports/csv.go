package exports

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fluffyriot/birdseye/internal/scraper"
)

// GenerateItemsCsv writes every extracted item of a scrape into one CSV
// file and returns its path. An empty result produces no file.
func GenerateItemsCsv(dir, handle string, result *scraper.AggregateResult) (string, error) {
	feeds := []scraper.FeedResult{result.Tweets, result.Retweets, result.Followers, result.Following}

	total := 0
	for _, f := range feeds {
		total += len(f.Items)
	}
	if total == 0 {
		return "", nil
	}

	filename := filepath.Join(dir, fmt.Sprintf("export_%s_%s.csv", handle, time.Now().Format("20060102_150405")))
	file, err := os.Create(filename)
	if err != nil {
		return "", err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write([]string{
		"kind",
		"id",
		"author",
		"author_bio",
		"timestamp",
		"content",
		"quoted_content",
		"screenshot",
		"feed_complete",
		"stop_reason",
	}); err != nil {
		return "", err
	}

	for _, f := range feeds {
		complete := "false"
		if f.Complete {
			complete = "true"
		}
		for _, item := range f.Items {
			if err := writer.Write([]string{
				string(item.Kind),
				item.ID,
				item.Author,
				item.AuthorBio,
				item.Timestamp,
				item.Content,
				item.Quoted,
				item.Screenshot,
				complete,
				f.StopReason,
			}); err != nil {
				return "", err
			}
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", err
	}
	return filename, nil
}
