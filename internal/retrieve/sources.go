package retrieve

import (
	"context"
	"fmt"

	"github.com/ppiankov/crosscheck/internal/model"
)

// SourceText is the retrieved text of one citation, named for the
// verification engine.
type SourceText struct {
	Name string
	URL  string
	Text string
}

// RecordSources retrieves the text of every citation on a record, using the
// archive for idempotent re-runs: an already archived source is read back
// instead of refetched unless force is set. Per-citation failures never
// abort the record; they are returned as strategy-failure strings.
func (c *Client) RecordSources(ctx context.Context, rec *model.IncidentRecord, archive *Archive, force bool) ([]SourceText, []string) {
	var texts []SourceText
	var failures []string

	for i, src := range rec.Sources {
		name := src.Name
		if name == "" {
			name = fmt.Sprintf("source_%d", i)
		}

		if archive != nil && !force {
			if text, ok := archive.Text(rec.ID, i); ok {
				texts = append(texts, SourceText{Name: name, URL: src.URL, Text: text})
				continue
			}
		}

		doc, fetchErrs := c.Fetch(ctx, src.URL)
		if doc == nil {
			for _, fe := range fetchErrs {
				failures = append(failures, fmt.Sprintf("%s: %s", src.URL, fe.Error()))
			}
			continue
		}

		if archive != nil {
			if err := archive.Put(rec.ID, i, doc); err != nil {
				// Archive problems are reported but the text is still usable.
				failures = append(failures, fmt.Sprintf("%s: archive: %v", src.URL, err))
			}
		}
		texts = append(texts, SourceText{Name: name, URL: src.URL, Text: doc.Text})
	}

	return texts, failures
}
